package lms

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/lmsctl/dispatch"
)

var groupUID = uuid.MustParse("9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d")

func TestCreateUser(t *testing.T) {
	f := newFakeLMS(t)
	f.handle("GET /create-user", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "legacy-key", q.Get("secretkey"))
		assert.Equal(t, "sean.doe", q.Get("username"))
		assert.Equal(t, "Denver", q.Get("site"))
		assert.Equal(t, "n/a", q.Get("phone"))
		assert.Equal(t, "3-5-2024", q.Get("hiredate"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte("Created User sean.doe"))
	})
	f.reply("POST /users", `<ArrayOfUser>
		<User><Username>sean.doe2</Username><UserID>4</UserID></User>
		<User><Username>Sean.Doe</Username><UserID>5</UserID><NodeID>77</NodeID><Firstname>Sean</Firstname></User>
	</ArrayOfUser>`)

	client := newTestClient(t, f)
	user, err := client.CreateUser(context.Background(), NewUser{
		ContextNodeID: 10,
		Site:          "Denver",
		Username:      "sean.doe",
		Firstname:     "Sean",
		Lastname:      "Doe",
		Email:         "sean@example.com",
		Password:      "hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, user.UserID)
	assert.Equal(t, 77, user.NodeID)
	assert.Contains(t, f.lastBody("POST /users"), "<SearchString>sean.doe</SearchString>")
}

func TestCreateUserRejected(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("GET /create-user", "Username already exists")
	f.reply("POST /users", `<ArrayOfUser/>`)

	client := newTestClient(t, f)
	_, err := client.CreateUser(context.Background(), NewUser{Username: "sean.doe"})
	require.Error(t, err)
	assert.True(t, dispatch.IsApplication(err))
	assert.Equal(t, "Username already exists", dispatch.ServerMessage(err))
	assert.Zero(t, f.count("POST /users"))
}

func TestAddGroupMembers(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr bool
	}{
		{
			name: "added",
			reply: `<ArrayOfServiceResultOfGroupMemberItem>
				<ServiceResultOfGroupMemberItem><Success>true</Success></ServiceResultOfGroupMemberItem>
				<ServiceResultOfGroupMemberItem><Success>true</Success></ServiceResultOfGroupMemberItem>
			</ArrayOfServiceResultOfGroupMemberItem>`,
		},
		{
			name: "already members",
			reply: `<ArrayOfServiceResultOfGroupMemberItem>
				<ServiceResultOfGroupMemberItem><Message>No new group members</Message><Success>false</Success></ServiceResultOfGroupMemberItem>
				<ServiceResultOfGroupMemberItem><Message>No new group members</Message><Success>false</Success></ServiceResultOfGroupMemberItem>
			</ArrayOfServiceResultOfGroupMemberItem>`,
		},
		{
			name: "one failed",
			reply: `<ArrayOfServiceResultOfGroupMemberItem>
				<ServiceResultOfGroupMemberItem><Success>true</Success></ServiceResultOfGroupMemberItem>
				<ServiceResultOfGroupMemberItem><Message>Member node not found</Message><Success>false</Success></ServiceResultOfGroupMemberItem>
			</ArrayOfServiceResultOfGroupMemberItem>`,
			wantErr: true,
		},
		{name: "empty", reply: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeLMS(t)
			f.reply("POST /group/"+groupUID.String()+"/members", tt.reply)

			client := newTestClient(t, f)
			err := client.AddGroupMembers(context.Background(), groupUID, []int{77, 78})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dispatch.IsApplication(err))
				return
			}
			require.NoError(t, err)

			body := f.lastBody("POST /group/" + groupUID.String() + "/members")
			assert.Contains(t, body, "<ArrayOfGroupMemberItem>")
			assert.Contains(t, body, "<MemberNodeID>78</MemberNodeID>")
			assert.Contains(t, body, "<GroupNodeUID>"+groupUID.String()+"</GroupNodeUID>")
			assert.Contains(t, body, "<DTOState>Created</DTOState>")
		})
	}
}

func TestDeleteGroupMembersDoesNotTolerate(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("PUT /group/"+groupUID.String()+"/members", `<ArrayOfServiceResultOfGroupMemberItem>
		<ServiceResultOfGroupMemberItem><Message>No new group members</Message><Success>false</Success></ServiceResultOfGroupMemberItem>
	</ArrayOfServiceResultOfGroupMemberItem>`)

	client := newTestClient(t, f)
	err := client.DeleteGroupMembers(context.Background(), groupUID, []int{77})
	require.Error(t, err)
	assert.Contains(t, f.lastBody("PUT /group/"+groupUID.String()+"/members"), "<DTOState>Deleted</DTOState>")
}

func TestGetGroupByExternalID(t *testing.T) {
	other := uuid.MustParse("11111111-2222-4333-8444-555555555555")
	f := newFakeLMS(t)
	f.reply("POST /groups", `<ArrayOfNode>
		<Node><Name>Forklift Operators</Name><NodeUID>`+other.String()+`</NodeUID><NodeDetail><ExternalID>FO-1</ExternalID></NodeDetail><TypeID>2</TypeID></Node>
		<Node><Name>Forklift Operators</Name><NodeUID>`+groupUID.String()+`</NodeUID><NodeDetail><ExternalID>FO-2</ExternalID></NodeDetail><TypeID>2</TypeID></Node>
	</ArrayOfNode>`)
	f.reply("GET /node/"+groupUID.String(), `<Node>
		<Name>Forklift Operators</Name><NodeID>88</NodeID><NodeUID>`+groupUID.String()+`</NodeUID><TypeID>2</TypeID><SubTypeID>5</SubTypeID>
		<NodeDetail><ExternalID>FO-2</ExternalID><DynamicGroup>true</DynamicGroup><DynamicGroupConditions>Title = 'Operator'</DynamicGroupConditions><DynamicGroupTargetNodeID>20</DynamicGroupTargetNodeID></NodeDetail>
	</Node>`)

	client := newTestClient(t, f)
	group, err := client.GetGroupByExternalID(context.Background(), 10, "Forklift Operators", "FO-2")
	require.NoError(t, err)
	assert.Equal(t, 88, group.NodeID)
	assert.Equal(t, "FO-2", group.ExternalID)
	assert.Equal(t, "Title = 'Operator'", group.DynamicGroupLogic)
	require.NotNil(t, group.DynamicGroupTargetNodeID)
	assert.Equal(t, 20, *group.DynamicGroupTargetNodeID)
	assert.Contains(t, f.lastBody("POST /groups"), "<NodeSubType>Group</NodeSubType>")
}
