package filter

import (
	"slices"
	"strings"

	"github.com/s0up4200/lmsctl/lms"
)

// NodeEnv exposes a directory node to filter expressions.
func NodeEnv(n *lms.NodeInfo, env map[string]any) {
	if n == nil {
		n = &lms.NodeInfo{}
	}
	env["name"] = n.Name
	env["externalId"] = n.ExternalID
	env["nodeId"] = n.NodeID
	env["parentId"] = n.ParentID
	env["objectId"] = n.ObjectID
	env["nodeType"] = n.TypeID.String()
	env["subType"] = n.SubTypeID.String()
	env["uid"] = n.NodeUID.String()
	env["isUser"] = n.TypeID == lms.NodeTypePrincipal
}

// QualificationEnv exposes a qualification to filter expressions.
func QualificationEnv(q *lms.QualificationInfo, env map[string]any) {
	if q == nil {
		q = &lms.QualificationInfo{}
	}
	ids := q.RequirementIDs
	if ids == nil {
		ids = []int{}
	}
	env["name"] = q.Name
	env["externalId"] = q.ExternalID
	env["sku"] = q.SKU
	env["qualificationId"] = q.QualificationID
	env["registryId"] = q.RegistryID
	env["parentId"] = q.ParentID
	env["requirementIds"] = ids
	env["requirementCount"] = len(ids)
	env["hasRequirement"] = func(id int) bool {
		return slices.Contains(ids, id)
	}
}

// ActivityEnv exposes an activity to filter expressions.
func ActivityEnv(a *lms.ActivityInfo, env map[string]any) {
	if a == nil {
		a = &lms.ActivityInfo{}
	}
	env["name"] = a.Name
	env["externalId"] = a.ExternalID
	env["externalVersion"] = a.ExternalVersion
	env["activityId"] = a.ActivityID
	env["registryId"] = a.RegistryID
	env["fileId"] = a.FileID
	env["culture"] = a.Culture
	env["activityDuration"] = a.Duration
	env["description"] = a.Description
	env["field4"] = a.Field4
	env["hasThumbnail"] = a.ThumbnailURL != ""
	env["sunset"] = strings.Contains(a.Name, "(Sunset on ")
}
