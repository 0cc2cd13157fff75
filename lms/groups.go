package lms

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/s0up4200/lmsctl/dispatch"
	"github.com/s0up4200/lmsctl/xmlwire"
)

// noNewMembers is the message the service returns for a membership that
// already exists.
const noNewMembers = "No new group members"

// NewGroup describes a group to create. A dynamic group needs both
// TargetNodeID and Logic.
type NewGroup struct {
	ParentID     int
	Name         string
	Description  string
	TargetNodeID *int
	Logic        string
	ExternalID   string
}

func groupMembersPath(groupUID uuid.UUID) string {
	return fmt.Sprintf("/group/%s/members", groupUID)
}

// GetGroupMembers lists the members of a group.
func (c *Client) GetGroupMembers(ctx context.Context, groupUID uuid.UUID) ([]GroupMemberItem, error) {
	const op = "GetGroupMembers"
	body, err := c.dispatcher.Get(ctx, op, groupMembersPath(groupUID), nil)
	if err != nil {
		return nil, err
	}
	if xmlwire.IsEmpty(body) {
		return nil, c.rejected(op, fmt.Sprintf("no member list returned for %s", groupUID), body)
	}
	return dispatch.DecodeList[GroupMemberItem](c.dispatcher, op, body)
}

// AddGroupMembers adds member nodes to a group. Members that already belong
// to the group do not count as failures when every item reports so.
func (c *Client) AddGroupMembers(ctx context.Context, groupUID uuid.UUID, nodeIDs []int) error {
	return c.changeMembers(ctx, "AddGroupMembers", http.MethodPost, groupUID, nodeIDs, DTOStateCreated, noNewMembers)
}

// DeleteGroupMembers removes member nodes from a group.
func (c *Client) DeleteGroupMembers(ctx context.Context, groupUID uuid.UUID, nodeIDs []int) error {
	return c.changeMembers(ctx, "DeleteGroupMembers", http.MethodPut, groupUID, nodeIDs, DTOStateDeleted, "")
}

func (c *Client) changeMembers(ctx context.Context, op, method string, groupUID uuid.UUID, nodeIDs []int, state DTOState, tolerated string) error {
	items := make([]GroupMemberItem, len(nodeIDs))
	for i, id := range nodeIDs {
		items[i] = GroupMemberItem{
			DTOState:     state,
			GroupNodeUID: xmlwire.NewUUID(groupUID),
			MemberNodeID: id,
			NodeState:    NodeStateActive,
		}
	}

	payload, err := xmlwire.MarshalList("GroupMemberItem", items)
	if err != nil {
		return c.dispatcher.Report(op, &dispatch.ProtocolError{Op: op, Err: err})
	}

	body, err := c.dispatcher.Send(ctx, op, method, groupMembersPath(groupUID), nil, payload)
	if err != nil {
		return err
	}
	if xmlwire.IsEmpty(body) {
		return c.rejected(op, fmt.Sprintf("no result returned for group %s", groupUID), body)
	}

	results, err := dispatch.DecodeList[ServiceResult[GroupMemberItem]](c.dispatcher, op, body)
	if err != nil {
		return err
	}

	failed, skipped := 0, 0
	firstMessage := ""
	for _, r := range results {
		if !r.IsSuccess() {
			failed++
			if firstMessage == "" {
				firstMessage = r.Message
			}
		}
		if tolerated != "" && r.Message == tolerated {
			skipped++
		}
	}
	if failed == 0 || (tolerated != "" && skipped == len(results)) {
		c.logger.Debug().
			Str("op", op).
			Stringer("group", groupUID).
			Int("members", len(nodeIDs)).
			Msg("Group membership updated")
		return nil
	}

	message := fmt.Sprintf("%d of %d member changes failed: %s", failed, len(results), firstMessage)
	return c.rejected(op, message, body)
}

// GetGroupByExternalID searches for groups by name under contextNodeID and
// returns the one whose external id matches, or the first hit when none do.
func (c *Client) GetGroupByExternalID(ctx context.Context, contextNodeID int, search, externalID string) (*GroupInfo, error) {
	const op = "GetGroupByExternalID"
	spec := SimpleQuerySpec{
		ContextNodeID: optionalID(contextNodeID),
		NodeState:     NodeStateActive,
		NodeSubType:   NodeSubTypeGroup.String(),
		NodeType:      NodeTypeOrganizationalUnit.String(),
		SearchString:  search,
	}

	groups, err := queryList[Node](ctx, c, op, "/groups", spec)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("group %q: %w", search, ErrNotFound)
	}

	match := groups[0]
	if externalID != "" {
		for _, g := range groups {
			if g.NodeDetail != nil && g.NodeDetail.ExternalID == externalID {
				match = g
				break
			}
		}
	}
	return c.GetGroupByUID(ctx, match.NodeUID.Value())
}

// GetGroupByUID loads a group node with its details.
func (c *Client) GetGroupByUID(ctx context.Context, nodeUID uuid.UUID) (*GroupInfo, error) {
	node, err := getOne[Node](ctx, c, "GetGroupByUID", "/node/"+nodeUID.String(), nil)
	if err != nil {
		return nil, err
	}
	return groupInfo(*node), nil
}

// CreateGroup creates a group and reads it back, since the create response
// carries no node UID.
func (c *Client) CreateGroup(ctx context.Context, g NewGroup) (*GroupInfo, error) {
	const op = "CreateGroup"
	node := newNode(g.Name, NodeTypeOrganizationalUnit, NodeSubTypeGroup)
	node.ParentID = &g.ParentID
	node.NodeDetail.Description = g.Description
	node.NodeDetail.ExternalID = g.ExternalID
	if g.TargetNodeID != nil && g.Logic != "" {
		node.NodeDetail.DynamicGroup = true
		node.NodeDetail.DynamicGroupConditions = g.Logic
		node.NodeDetail.DynamicGroupTargetNodeID = g.TargetNodeID
	}

	body, err := c.dispatcher.Send(ctx, op, http.MethodPost, "/node", nil, node)
	if err != nil {
		return nil, err
	}
	if xmlwire.IsEmpty(body) {
		return nil, c.rejected(op, fmt.Sprintf("error creating group %q", g.Name), body)
	}

	c.logger.Info().Str("name", g.Name).Int("parent_id", g.ParentID).Msg("Created group")
	return c.GetGroupByExternalID(ctx, g.ParentID, g.Name, g.ExternalID)
}
