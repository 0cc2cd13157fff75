package lms

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/s0up4200/lmsctl/dispatch"
	"github.com/s0up4200/lmsctl/xmlwire"
)

// AdvancedAssignment assigns a qualification found by attribute to a user
// found by username, user id or external id.
type AdvancedAssignment struct {
	// LookupName and LookupValue are the attribute name and value that
	// identify the qualification.
	LookupName  string
	LookupValue string
	// UserLookupType is one of username, userid or externalid.
	UserLookupType string
	UserLookup     string
	DaysToLaunch   int
	DaysToComplete int
}

func trainingPath(nodeUID uuid.UUID) string {
	return "/node/" + nodeUID.String() + "/training"
}

func assignmentInfo(a NodeAssignment) AssignmentInfo {
	info := AssignmentInfo{NodeID: a.NodeID}
	switch {
	case a.Qualification != nil:
		info.Qualification = &QualificationInfo{QualificationID: a.Qualification.QualificationID, Name: a.Qualification.Name}
	case a.QualificationID != nil:
		info.Qualification = &QualificationInfo{QualificationID: *a.QualificationID}
	}
	switch {
	case a.Activity != nil:
		info.Activity = &ActivityInfo{ActivityID: a.Activity.ActivityID, Name: a.Activity.Name}
	case a.ActivityID != nil:
		info.Activity = &ActivityInfo{ActivityID: *a.ActivityID}
	}
	return info
}

// GetAssignments lists the training assigned to a node.
func (c *Client) GetAssignments(ctx context.Context, nodeUID uuid.UUID) ([]AssignmentInfo, error) {
	assignments, err := getList[NodeAssignment](ctx, c, "GetAssignments", trainingPath(nodeUID), nil)
	if err != nil {
		return nil, err
	}

	infos := make([]AssignmentInfo, len(assignments))
	for i, a := range assignments {
		infos[i] = assignmentInfo(a)
	}
	return infos, nil
}

// AssignTraining assigns qualifications or activities to a node and returns
// the assignments the service created.
func (c *Client) AssignTraining(ctx context.Context, nodeUID uuid.UUID, assignments ...NodeAssignment) ([]AssignmentInfo, error) {
	const op = "AssignTraining"
	payload, err := xmlwire.MarshalList("NodeAssignment", assignments)
	if err != nil {
		return nil, c.dispatcher.Report(op, &dispatch.ProtocolError{Op: op, Err: err})
	}

	body, err := c.dispatcher.Send(ctx, op, http.MethodPost, trainingPath(nodeUID), nil, payload)
	if err != nil {
		return nil, err
	}
	created, err := dispatch.DecodeList[NodeAssignment](c.dispatcher, op, body)
	if err != nil {
		return nil, err
	}

	infos := make([]AssignmentInfo, len(created))
	for i, a := range created {
		infos[i] = assignmentInfo(a)
	}
	c.logger.Info().
		Stringer("node", nodeUID).
		Int("assigned", len(infos)).
		Msg("Assigned training")
	return infos, nil
}

// AssignQualification assigns one qualification to a node.
func (c *Client) AssignQualification(ctx context.Context, nodeUID uuid.UUID, qualificationID int) ([]AssignmentInfo, error) {
	return c.AssignTraining(ctx, nodeUID, NodeAssignment{QualificationID: &qualificationID})
}

// AssignActivity assigns one activity to a node.
func (c *Client) AssignActivity(ctx context.Context, nodeUID uuid.UUID, activityID int) ([]AssignmentInfo, error) {
	return c.AssignTraining(ctx, nodeUID, NodeAssignment{ActivityID: &activityID})
}

// AssignQualificationAdvanced assigns a qualification through the legacy
// advanced assignment endpoint.
func (c *Client) AssignQualificationAdvanced(ctx context.Context, a AdvancedAssignment) error {
	query := url.Values{}
	query.Set("trainingtype", "qualification")
	query.Set("lookupname", a.LookupName)
	query.Set("lookupvalue", a.LookupValue)
	query.Set("userlookuptype", a.UserLookupType)
	query.Set("userlookup", a.UserLookup)
	query.Set("daystolaunch", strconv.Itoa(a.DaysToLaunch))
	query.Set("daystocomplete", strconv.Itoa(a.DaysToComplete))

	_, err := c.dispatcher.Legacy(ctx, "AssignQualificationAdvanced", "/advanced-assign-training", query,
		"00101 SUCCESS", "Training directly assigned to User")
	return err
}
