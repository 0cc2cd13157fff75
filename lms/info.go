package lms

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Facades flatten wire objects into the values callers and the cache work
// with. Cached facades are shared; treat them as read-only.

// NodeInfo is a directory node.
type NodeInfo struct {
	Name       string      `json:"name"`
	ExternalID string      `json:"externalId,omitempty"`
	ParentID   int         `json:"parentId"`
	NodeID     int         `json:"nodeId"`
	TypeID     NodeType    `json:"typeId"`
	SubTypeID  NodeSubType `json:"subTypeId,omitempty"`
	ObjectID   int         `json:"objectId,omitempty"`
	NodeUID    uuid.UUID   `json:"nodeUid"`
}

// GroupInfo is a group node with its dynamic membership rule.
type GroupInfo struct {
	NodeInfo
	DynamicGroupTargetNodeID *int              `json:"dynamicGroupTargetNodeId,omitempty"`
	DynamicGroupLogic        string            `json:"dynamicGroupLogic,omitempty"`
	Members                  []GroupMemberInfo `json:"members,omitempty"`
}

// GroupMemberInfo is one membership of a group.
type GroupMemberInfo struct {
	UserID  int `json:"userId"`
	GroupID int `json:"groupId"`
}

// UserInfo is a user account and its principal node.
type UserInfo struct {
	Username   string    `json:"username"`
	Firstname  string    `json:"firstname"`
	Lastname   string    `json:"lastname"`
	Email      string    `json:"email"`
	ExternalID string    `json:"externalId,omitempty"`
	UserID     int       `json:"userId"`
	NodeID     int       `json:"nodeId"`
	UserUID    uuid.UUID `json:"userUid"`
	NodeUID    uuid.UUID `json:"nodeUid"`
}

// QualificationInfo is a qualification with its requirements in display
// order.
type QualificationInfo struct {
	Name            string            `json:"name"`
	RegistryID      int               `json:"registryId"`
	QualificationID int               `json:"qualificationId"`
	ParentID        int               `json:"parentId"`
	ExternalID      string            `json:"externalId,omitempty"`
	SKU             string            `json:"sku,omitempty"`
	RequirementIDs  []int             `json:"requirementIds"`
	Requirements    []RequirementInfo `json:"requirements,omitempty"`
}

// RequirementInfo is a requirement with its activities in display order.
type RequirementInfo struct {
	Name          string         `json:"name"`
	RegistryID    int            `json:"registryId"`
	RequirementID int            `json:"requirementId"`
	ParentID      int            `json:"parentId"`
	ExternalID    string         `json:"externalId,omitempty"`
	RegistryName  string         `json:"registryName,omitempty"`
	ActivityIDs   []int          `json:"activityIds"`
	Activities    []ActivityInfo `json:"activities,omitempty"`
}

// ActivityInfo is an activity joined with its current file version.
type ActivityInfo struct {
	Name            string    `json:"name"`
	RegistryID      int       `json:"registryId"`
	ActivityID      int       `json:"activityId"`
	ExternalID      string    `json:"externalId,omitempty"`
	ExternalVersion string    `json:"externalVersion,omitempty"`
	ThumbnailURL    string    `json:"thumbnailUrl,omitempty"`
	FileID          int       `json:"fileId,omitempty"`
	FileUID         uuid.UUID `json:"fileUid"`
	FileVersionUID  uuid.UUID `json:"fileVersionUid"`
	ParentLookupID  int       `json:"parentLookupId,omitempty"`
	Culture         string    `json:"culture,omitempty"`
	Duration        int       `json:"duration,omitempty"`
	Description     string    `json:"description,omitempty"`
	Field4          string    `json:"field4,omitempty"`
}

// FileInfo is a repository file and its current version.
type FileInfo struct {
	Name            string    `json:"name"`
	RepositoryID    int       `json:"repositoryId"`
	FileID          int       `json:"fileId"`
	FileUID         uuid.UUID `json:"fileUid"`
	FileVersionUID  uuid.UUID `json:"fileVersionUid"`
	ExternalID      string    `json:"externalId,omitempty"`
	ExternalVersion string    `json:"externalVersion,omitempty"`
	Culture         string    `json:"culture,omitempty"`
}

// ThumbnailInfo is an activity thumbnail, base64 encoded.
type ThumbnailInfo struct {
	ActivityID int    `json:"activityId"`
	Image      string `json:"image"`
}

// AttributeValue is one stored value of an asset attribute.
type AttributeValue struct {
	AssetAttributeValueID int    `json:"assetAttributeValueId"`
	ObjectType            string `json:"objectType"`
	ObjectID              string `json:"objectId"`
	AttributeName         string `json:"attributeName"`
	Value                 string `json:"value"`
	ValueID               int    `json:"valueId,omitempty"`
}

// CompletionInfo is a completion record summarized for display.
type CompletionInfo struct {
	CompletionID   int       `json:"completionId"`
	User           string    `json:"user"`
	Activity       string    `json:"activity,omitempty"`
	CompletionDate time.Time `json:"completionDate"`
	Description    string    `json:"description,omitempty"`
}

// CatalogInfo is a catalog and its price list.
type CatalogInfo struct {
	CatalogUID     uuid.UUID           `json:"catalogUid"`
	CatalogID      int                 `json:"catalogId"`
	PriceListItems []PriceListItemInfo `json:"priceListItems"`
}

// PriceListItemInfo is one priced qualification or activity.
type PriceListItemInfo struct {
	PriceListUID    uuid.UUID `json:"priceListUid"`
	Price           float64   `json:"price"`
	ActivityID      *int      `json:"activityId,omitempty"`
	QualificationID *int      `json:"qualificationId,omitempty"`
}

// AssignmentInfo is training assigned to a node.
type AssignmentInfo struct {
	NodeID        int                `json:"nodeId"`
	Qualification *QualificationInfo `json:"qualification,omitempty"`
	Activity      *ActivityInfo      `json:"activity,omitempty"`
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func nodeInfo(n Node) *NodeInfo {
	info := &NodeInfo{
		Name:      n.Name,
		ParentID:  deref(n.ParentID),
		NodeID:    deref(n.NodeID),
		TypeID:    NodeType(n.TypeID),
		SubTypeID: NodeSubType(deref(n.SubTypeID)),
		ObjectID:  deref(n.ObjectID),
		NodeUID:   n.NodeUID.Value(),
	}
	if n.NodeDetail != nil {
		info.ExternalID = n.NodeDetail.ExternalID
	}
	return info
}

func groupInfo(n Node) *GroupInfo {
	g := &GroupInfo{NodeInfo: *nodeInfo(n)}
	if d := n.NodeDetail; d != nil {
		g.DynamicGroupTargetNodeID = d.DynamicGroupTargetNodeID
		g.DynamicGroupLogic = d.DynamicGroupConditions
	}
	return g
}

func userInfo(u User) *UserInfo {
	return &UserInfo{
		Username:   u.Username,
		Firstname:  u.Firstname,
		Lastname:   u.Lastname,
		Email:      u.EMail,
		ExternalID: u.ExternalID,
		UserID:     u.UserID,
		NodeID:     u.NodeID,
		UserUID:    u.UserUID.Value(),
		NodeUID:    u.NodeUID.Value(),
	}
}

func qualificationInfo(q Qualification, parentID int) *QualificationInfo {
	info := &QualificationInfo{
		Name:            q.Name,
		RegistryID:      q.RegistryID,
		QualificationID: q.QualificationID,
		ParentID:        parentID,
		ExternalID:      q.ExternalID,
		SKU:             q.SKU,
		RequirementIDs:  []int{},
	}

	links := slices.Clone(q.QualificationRequirements)
	slices.SortStableFunc(links, func(a, b QualificationRequirement) int {
		return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
	})
	for _, link := range links {
		info.RequirementIDs = append(info.RequirementIDs, link.RequirementID)
		if link.Requirement != nil {
			info.Requirements = append(info.Requirements, *requirementInfo(*link.Requirement, q.NodeID))
		}
	}
	return info
}

func requirementInfo(r Requirement, parentID int) *RequirementInfo {
	info := &RequirementInfo{
		Name:          r.Name,
		RegistryID:    r.RegistryID,
		RequirementID: r.RequirementID,
		ParentID:      parentID,
		ExternalID:    r.ExternalID,
		ActivityIDs:   []int{},
	}
	if r.Registry != nil {
		info.RegistryName = r.Registry.Name
	}

	links := slices.Clone(r.RequirementActivities)
	slices.SortStableFunc(links, func(a, b RequirementActivity) int {
		return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
	})
	for _, link := range links {
		info.ActivityIDs = append(info.ActivityIDs, link.ActivityID)
		activity := ActivityInfo{ActivityID: link.ActivityID}
		if link.Activity != nil {
			activity.Name = link.Activity.Name
		}
		info.Activities = append(info.Activities, activity)
	}
	return info
}

func activityInfo(a Activity, parentLookupID int) *ActivityInfo {
	info := &ActivityInfo{
		Name:           a.Name,
		RegistryID:     a.RegistryID,
		ActivityID:     a.ActivityID,
		ParentLookupID: parentLookupID,
		Field4:         a.Field4,
	}
	if v := a.CurrentVersion; v != nil {
		info.Duration = deref(v.Duration)
		info.Description = v.Description
		info.FileVersionUID = v.FileVersionUID.Value()
		if f := v.File; f != nil {
			info.ExternalID = f.ExternalID
			info.ExternalVersion = f.ExternalVersion
			info.Culture = cmp.Or(f.Culture, defaultCulture)
			info.FileID = f.FileID
			info.FileUID = f.FileUID.Value()
		}
	}
	return info
}

func fileInfo(f File) *FileInfo {
	info := &FileInfo{
		Name:            f.Name,
		RepositoryID:    f.RepositoryID,
		FileID:          f.FileID,
		FileUID:         f.FileUID.Value(),
		ExternalID:      f.ExternalID,
		ExternalVersion: f.ExternalVersion,
		Culture:         f.Culture,
	}
	if f.CurrentVersion != nil {
		info.FileVersionUID = f.CurrentVersion.FileVersionUID.UUID
	}
	return info
}

func completionInfo(r CompletionRecord) CompletionInfo {
	info := CompletionInfo{
		CompletionID:   r.CompletionID,
		CompletionDate: r.CompletionDate.Time,
		Description:    r.Description,
	}
	if u := r.User; u != nil {
		info.User = fmt.Sprintf("%s %s (%s)", u.Firstname, u.Lastname, u.Username)
	}
	if r.Activity != nil {
		info.Activity = r.Activity.Name
	}
	return info
}

func priceListItemInfo(p PriceList) PriceListItemInfo {
	item := PriceListItemInfo{
		PriceListUID: p.PriceListUID.Value(),
		Price:        p.Price,
	}
	if a := p.NodeAssignment; a != nil {
		switch {
		case a.Activity != nil:
			item.ActivityID = a.ActivityID
		case a.Qualification != nil:
			item.QualificationID = a.QualificationID
		}
	}
	return item
}
