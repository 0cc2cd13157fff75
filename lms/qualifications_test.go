package lms

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/lmsctl/dispatch"
)

type testLink struct {
	Target  int
	Order   int
	Touched bool
	New     bool
}

var testLinkAccess = linkAccess[testLink]{
	target: func(l *testLink) int { return l.Target },
	order:  func(l *testLink) *int { return &l.Order },
	touch:  func(l *testLink) { l.Touched = true },
	create: func(target, order int) testLink { return testLink{Target: target, Order: order, New: true} },
}

func TestReconcileLinks(t *testing.T) {
	existing := []testLink{{Target: 1, Order: 1}, {Target: 2, Order: 2}, {Target: 3, Order: 3}}

	got := reconcileLinks(existing, []int{3, 4, 1}, testLinkAccess, false)
	assert.Equal(t, []testLink{
		{Target: 3, Order: 1, Touched: true},
		{Target: 4, Order: 2, New: true},
		{Target: 1, Order: 3, Touched: true},
	}, got)
}

func TestReconcileLinksTouchAll(t *testing.T) {
	existing := []testLink{{Target: 1, Order: 1}, {Target: 2, Order: 2}}

	untouched := reconcileLinks(existing, []int{1, 2}, testLinkAccess, false)
	assert.Equal(t, []testLink{{Target: 1, Order: 1}, {Target: 2, Order: 2}}, untouched)

	existing = []testLink{{Target: 1, Order: 1}, {Target: 2, Order: 2}}
	touched := reconcileLinks(existing, []int{1, 2}, testLinkAccess, true)
	assert.Equal(t, []testLink{{Target: 1, Order: 1, Touched: true}, {Target: 2, Order: 2, Touched: true}}, touched)

	assert.Empty(t, reconcileLinks([]testLink{{Target: 1, Order: 1}}, nil, testLinkAccess, false))
}

const forkliftQualification = `<Qualification>
	<Name>Forklift Cert</Name><NodeID>31</NodeID><QualificationID>42</QualificationID><RegistryID>131</RegistryID>
	<QualificationRequirements>
		<QualificationRequirement><DisplayOrder>1</DisplayOrder><LinkUID>11111111-1111-1111-1111-111111111111</LinkUID><QualificationID>42</QualificationID><RequirementID>1</RequirementID></QualificationRequirement>
		<QualificationRequirement><DisplayOrder>2</DisplayOrder><LinkUID>22222222-2222-2222-2222-222222222222</LinkUID><QualificationID>42</QualificationID><RequirementID>2</RequirementID></QualificationRequirement>
		<QualificationRequirement><DisplayOrder>3</DisplayOrder><LinkUID>33333333-3333-3333-3333-333333333333</LinkUID><QualificationID>42</QualificationID><RequirementID>3</RequirementID></QualificationRequirement>
	</QualificationRequirements>
</Qualification>`

func TestGetQualification(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("POST /nodes", `<ArrayOfNode><Node><Name>Forklift Cert</Name><NodeID>31</NodeID><ObjectID>131</ObjectID><ParentID>10</ParentID><TypeID>5</TypeID><SubTypeID>6</SubTypeID></Node></ArrayOfNode>`)
	f.reply("POST /qualifications", `<ArrayOfQualification>`+forkliftQualification+`</ArrayOfQualification>`)

	ctx := context.Background()
	client := newTestClient(t, f)
	qual, err := client.GetQualification(ctx, 10, "Forklift Cert")
	require.NoError(t, err)
	assert.Equal(t, 42, qual.QualificationID)
	assert.Equal(t, 10, qual.ParentID)
	assert.Equal(t, []int{1, 2, 3}, qual.RequirementIDs)
	assert.Contains(t, f.lastBody("POST /qualifications"), "<NodeID>31</NodeID>")

	_, err = client.GetQualification(ctx, 10, "Forklift Cert")
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("POST /qualifications"))
}

func TestUpdateQualificationReordersRequirements(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("GET /qualification/42", forkliftQualification)
	f.reply("PUT /qualification", `<ServiceResultOfQualification>
		<ObjectIdentity><Name>Forklift Cert</Name><ObjectID>42</ObjectID></ObjectIdentity>
		<Success>true</Success>
	</ServiceResultOfQualification>`)

	client := newTestClient(t, f)
	_, err := client.UpdateQualification(context.Background(), 42, []int{3, 4, 1}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("GET /qualification/42"))

	body := f.lastBody("PUT /qualification")
	assert.Contains(t, body, "<DTOState>Updated</DTOState>")
	assert.NotContains(t, body, "<RequirementID>2</RequirementID>")

	i3 := strings.Index(body, "<RequirementID>3</RequirementID>")
	i4 := strings.Index(body, "<RequirementID>4</RequirementID>")
	i1 := strings.Index(body, "<RequirementID>1</RequirementID>")
	require.True(t, i3 >= 0 && i4 >= 0 && i1 >= 0)
	assert.Less(t, i3, i4)
	assert.Less(t, i4, i1)

	assert.Contains(t, body, "<LinkUID>"+testUID.String()+"</LinkUID>")
	assert.Contains(t, body, "<CreatedDate>2024-03-05T14:30:00</CreatedDate>")
	assert.Contains(t, body, "<LinkUID>11111111-1111-1111-1111-111111111111</LinkUID>")
}

func TestUpdateQualificationKeepsCachedLookup(t *testing.T) {
	tests := []struct {
		name       string
		invalidate bool
		wantLists  int
	}{
		{name: "default", wantLists: 1},
		{name: "invalidate on write", invalidate: true, wantLists: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeLMS(t)
			f.reply("POST /nodes", `<ArrayOfNode><Node><Name>Forklift Cert</Name><NodeID>31</NodeID><ObjectID>131</ObjectID><ParentID>10</ParentID><TypeID>5</TypeID><SubTypeID>6</SubTypeID></Node></ArrayOfNode>`)
			f.reply("POST /qualifications", `<ArrayOfQualification>`+forkliftQualification+`</ArrayOfQualification>`)
			f.reply("GET /qualification/42", forkliftQualification)
			f.reply("PUT /qualification", `<ServiceResultOfQualification>
				<ObjectIdentity><Name>Forklift Cert</Name><ObjectID>42</ObjectID></ObjectIdentity>
				<Success>true</Success>
			</ServiceResultOfQualification>`)

			ctx := context.Background()
			client := newTestClient(t, f, WithInvalidateOnWrite(tt.invalidate))

			before, err := client.GetQualification(ctx, 10, "Forklift Cert")
			require.NoError(t, err)
			_, err = client.UpdateQualification(ctx, 42, []int{1}, "")
			require.NoError(t, err)
			after, err := client.GetQualification(ctx, 10, "Forklift Cert")
			require.NoError(t, err)

			assert.Equal(t, tt.wantLists, f.count("POST /qualifications"))
			if !tt.invalidate {
				assert.Same(t, before, after)
			}
		})
	}
}

func TestUpdateQualificationMissing(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("GET /qualification/42", "")

	client := newTestClient(t, f)
	_, err := client.UpdateQualification(context.Background(), 42, []int{1}, "")
	require.ErrorIs(t, err, ErrQualificationNotFound)
	assert.Equal(t, dispatch.KindPrecondition, dispatch.Classify(err))
}

func TestUpdateQualificationRejected(t *testing.T) {
	f := newFakeLMS(t)
	f.reply("GET /qualification/42", forkliftQualification)
	f.reply("PUT /qualification", `<ServiceResultOfQualification><Message>Requirement 4 does not exist</Message><Success>false</Success></ServiceResultOfQualification>`)

	client := newTestClient(t, f)
	_, err := client.UpdateQualification(context.Background(), 42, []int{4}, "")
	require.Error(t, err)
	assert.True(t, dispatch.IsApplication(err))
	assert.Equal(t, "Requirement 4 does not exist", dispatch.ServerMessage(err))
}
