package lms

import (
	"github.com/s0up4200/lmsctl/xmlwire"
)

// Wire types. Go type names double as the XML root element names, and fields
// are declared in ordinal order because the service's contract serializer
// rejects out-of-order elements.

// SimpleQuerySpec is the body of every POST query endpoint.
type SimpleQuerySpec struct {
	ContextNodeID *int      `xml:"ContextNodeID,omitempty"`
	MaxResults    int       `xml:"MaxResults,omitempty"`
	Name          string    `xml:"Name,omitempty"`
	NodeID        *int      `xml:"NodeID,omitempty"`
	NodeState     NodeState `xml:"NodeState,omitempty"`
	NodeSubType   string    `xml:"NodeSubType,omitempty"`
	NodeType      string    `xml:"NodeType,omitempty"`
	ObjectID      *int      `xml:"ObjectID,omitempty"`
	SearchString  string    `xml:"SearchString,omitempty"`
}

// ObjectIdentity names the object a ServiceResult refers to.
type ObjectIdentity struct {
	Name     string `xml:"Name"`
	ObjectID *int   `xml:"ObjectID"`
}

// ServiceResult is the envelope returned by create and update endpoints.
type ServiceResult[T any] struct {
	Message        string          `xml:"Message"`
	Object         *T              `xml:"Object"`
	ObjectIdentity *ObjectIdentity `xml:"ObjectIdentity"`
	Success        bool            `xml:"Success"`
}

// IsSuccess reports whether the service accepted the request.
func (r *ServiceResult[T]) IsSuccess() bool {
	return r != nil && r.Success
}

// ObjectID returns the identity's object id, or 0.
func (r *ServiceResult[T]) ObjectID() int {
	if r == nil || r.ObjectIdentity == nil || r.ObjectIdentity.ObjectID == nil {
		return 0
	}
	return *r.ObjectIdentity.ObjectID
}

// ObjectName returns the identity's name, or "".
func (r *ServiceResult[T]) ObjectName() string {
	if r == nil || r.ObjectIdentity == nil {
		return ""
	}
	return r.ObjectIdentity.Name
}

// Node is a directory node: organization, unit, user, repository or registry.
type Node struct {
	DTOState        DTOState      `xml:"DTOState,omitempty"`
	Name            string        `xml:"Name"`
	NodeDetail      *NodeDetail   `xml:"NodeDetail,omitempty"`
	NodeID          *int          `xml:"NodeID,omitempty"`
	NodeState       NodeState     `xml:"NodeState,omitempty"`
	NodeUID         *xmlwire.UUID `xml:"NodeUID,omitempty"`
	ObjectID        *int          `xml:"ObjectID,omitempty"`
	ParentID        *int          `xml:"ParentID,omitempty"`
	ParentSubTypeID *int          `xml:"ParentSubTypeID,omitempty"`
	ParentTypeID    *int          `xml:"ParentTypeID,omitempty"`
	SubTypeID       *int          `xml:"SubTypeID,omitempty"`
	TypeID          int           `xml:"TypeID"`
}

// NodeDetail carries the optional descriptive fields of a node.
type NodeDetail struct {
	DTOState                 DTOState  `xml:"DTOState,omitempty"`
	Description              string    `xml:"Description,omitempty"`
	DynamicGroup             bool      `xml:"DynamicGroup"`
	DynamicGroupConditions   string    `xml:"DynamicGroupConditions,omitempty"`
	DynamicGroupTargetNodeID *int      `xml:"DynamicGroupTargetNodeID,omitempty"`
	ExternalID               string    `xml:"ExternalID,omitempty"`
	NodeState                NodeState `xml:"NodeState,omitempty"`
}

// User is a principal node's account record.
type User struct {
	EMail      string        `xml:"EMail"`
	ExternalID string        `xml:"ExternalID"`
	Firstname  string        `xml:"Firstname"`
	Lastname   string        `xml:"Lastname"`
	NodeID     int           `xml:"NodeID"`
	NodeUID    *xmlwire.UUID `xml:"NodeUID"`
	UserID     int           `xml:"UserID"`
	UserUID    xmlwire.UUID  `xml:"UserUID"`
	Username   string        `xml:"Username"`
}

// GroupMemberItem links a member node to a group.
type GroupMemberItem struct {
	DTOState      DTOState      `xml:"DTOState,omitempty"`
	GroupNodeID   *int          `xml:"GroupNodeID,omitempty"`
	GroupNodeUID  *xmlwire.UUID `xml:"GroupNodeUID,omitempty"`
	MemberNodeID  int           `xml:"MemberNodeID"`
	MemberNodeUID *xmlwire.UUID `xml:"MemberNodeUID,omitempty"`
	NodeState     NodeState     `xml:"NodeState,omitempty"`
}

// Qualification is an ordered set of requirements.
type Qualification struct {
	CompleteItemsModeID       CompleteItemsMode          `xml:"CompleteItemsModeID,omitempty"`
	CompleteItemsOrderModeID  CompleteItemsOrderMode     `xml:"CompleteItemsOrderModeID,omitempty"`
	CreatedDate               *xmlwire.Time              `xml:"CreatedDate,omitempty"`
	DTOState                  DTOState                   `xml:"DTOState,omitempty"`
	ExternalID                string                     `xml:"ExternalID,omitempty"`
	Name                      string                     `xml:"Name"`
	NodeID                    int                        `xml:"NodeID,omitempty"`
	QualificationID           int                        `xml:"QualificationID,omitempty"`
	QualificationRequirements []QualificationRequirement `xml:"QualificationRequirements>QualificationRequirement"`
	RegistryID                int                        `xml:"RegistryID"`
	SKU                       string                     `xml:"SKU,omitempty"`
	StateID                   int                        `xml:"StateID"`
}

// QualificationRequirement links a requirement into a qualification.
type QualificationRequirement struct {
	CreatedDate     *xmlwire.Time `xml:"CreatedDate,omitempty"`
	DTOState        DTOState      `xml:"DTOState,omitempty"`
	DisplayOrder    int           `xml:"DisplayOrder"`
	LinkUID         *xmlwire.UUID `xml:"LinkUID,omitempty"`
	QualificationID int           `xml:"QualificationID"`
	Requirement     *Requirement  `xml:"Requirement,omitempty"`
	RequirementID   int           `xml:"RequirementID"`
	UpdatedDate     *xmlwire.Time `xml:"UpdatedDate,omitempty"`
}

// Requirement is an ordered set of activities.
type Requirement struct {
	CompleteItemsModeID       CompleteItemsMode          `xml:"CompleteItemsModeID,omitempty"`
	CompleteItemsOrderModeID  CompleteItemsOrderMode     `xml:"CompleteItemsOrderModeID,omitempty"`
	CreatedDate               *xmlwire.Time              `xml:"CreatedDate,omitempty"`
	DTOState                  DTOState                   `xml:"DTOState,omitempty"`
	ExternalID                string                     `xml:"ExternalID,omitempty"`
	Name                      string                     `xml:"Name"`
	NodeID                    int                        `xml:"NodeID,omitempty"`
	Registry                  *Node                      `xml:"Registry,omitempty"`
	RegistryID                int                        `xml:"RegistryID"`
	RequirementActivities     []RequirementActivity      `xml:"RequirementActivities>RequirementActivity"`
	RequirementCompetentUsers []RequirementCompetentUser `xml:"RequirementCompetentUsers>RequirementCompetentUser"`
	RequirementDetail         *RequirementDetail         `xml:"RequirementDetail,omitempty"`
	RequirementID             int                        `xml:"RequirementID"`
}

// RequirementActivity links an activity into a requirement.
type RequirementActivity struct {
	Activity      *Activity     `xml:"Activity,omitempty"`
	ActivityID    int           `xml:"ActivityID"`
	CreatedDate   *xmlwire.Time `xml:"CreatedDate,omitempty"`
	DTOState      DTOState      `xml:"DTOState,omitempty"`
	DisplayOrder  int           `xml:"DisplayOrder"`
	LinkUID       *xmlwire.UUID `xml:"LinkUID,omitempty"`
	RequirementID int           `xml:"RequirementID"`
	UpdatedDate   *xmlwire.Time `xml:"UpdatedDate,omitempty"`
}

// RequirementDetail holds a requirement's optional settings.
type RequirementDetail struct {
	DTOState DTOState `xml:"DTOState,omitempty"`
}

// RequirementCompetentUser names a user allowed to sign off a requirement.
type RequirementCompetentUser struct {
	DTOState DTOState `xml:"DTOState,omitempty"`
	UserID   int      `xml:"UserID"`
}

// Activity is a launchable training item.
type Activity struct {
	ActivityID         int              `xml:"ActivityID,omitempty"`
	ActivityType       *ActivityType    `xml:"ActivityType,omitempty"`
	CurrentVersion     *ActivityVersion `xml:"CurrentVersion,omitempty"`
	DTOState           DTOState         `xml:"DTOState,omitempty"`
	Field4             string           `xml:"Field4,omitempty"`
	IsMobileCompatible bool             `xml:"IsMobileCompatible"`
	LaunchData         string           `xml:"LaunchData,omitempty"`
	Name               string           `xml:"Name"`
	RegistryID         int              `xml:"RegistryID"`
	TypeID             ActivityKind     `xml:"TypeID,omitempty"`
}

// ActivityType is the numeric type reported in activity listings.
type ActivityType struct {
	TypeID int `xml:"TypeID"`
}

// ActivityVersion binds an activity to a version of a repository file.
type ActivityVersion struct {
	Description    string        `xml:"Description,omitempty"`
	Duration       *int          `xml:"Duration,omitempty"`
	File           *File         `xml:"File,omitempty"`
	FileID         *int          `xml:"FileID,omitempty"`
	FileVersionUID *xmlwire.UUID `xml:"FileVersionUID,omitempty"`
	Height         int           `xml:"Height,omitempty"`
	Width          int           `xml:"Width,omitempty"`
}

// File is a content package stored in a repository.
type File struct {
	Culture          string        `xml:"Culture,omitempty"`
	CurrentVersion   *FileVersion  `xml:"CurrentVersion,omitempty"`
	Description      string        `xml:"Description,omitempty"`
	ExternalID       string        `xml:"ExternalID,omitempty"`
	ExternalVersion  string        `xml:"ExternalVersion,omitempty"`
	Field2           string        `xml:"Field2,omitempty"`
	Field3           string        `xml:"Field3,omitempty"`
	FileID           int           `xml:"FileID,omitempty"`
	FileUID          *xmlwire.UUID `xml:"FileUID,omitempty"`
	LicenseTypeID    LicenseType   `xml:"LicenseTypeID,omitempty"`
	Name             string        `xml:"Name"`
	OwnerPrincipleID int           `xml:"OwnerPrincipleID"`
	RepositoryID     int           `xml:"RepositoryID"`
	TypeID           FileType      `xml:"TypeID,omitempty"`
	URL              string        `xml:"URL,omitempty"`
}

// FileVersion identifies one uploaded revision of a file.
type FileVersion struct {
	FileVersionUID xmlwire.UUID `xml:"FileVersionUID"`
}

// UpdatedFile points the service at a new package for an existing file.
type UpdatedFile struct {
	CID     string `xml:"CID"`
	Url     string `xml:"Url"`
	Version string `xml:"Version"`
}

// TrainingImage is an activity thumbnail.
type TrainingImage struct {
	ActivityID *int   `xml:"ActivityID"`
	Image      string `xml:"Image"`
}

// NodeAssignment assigns a qualification or activity to a node.
type NodeAssignment struct {
	Activity        *Activity                  `xml:"Activity,omitempty"`
	ActivityID      *int                       `xml:"ActivityID,omitempty"`
	LaunchRules     []NodeAssignmentLaunchRule `xml:"LaunchRules>NodeAssignmentLaunchRule,omitempty"`
	NodeID          int                        `xml:"NodeID,omitempty"`
	Qualification   *Qualification             `xml:"Qualification,omitempty"`
	QualificationID *int                       `xml:"QualificationID,omitempty"`
	ScheduleCount   int                        `xml:"ScheduleCount,omitempty"`
	Schedules       []NodeAssignmentSchedule   `xml:"Schedules>NodeAssignmentSchedule,omitempty"`
}

// NodeAssignmentLaunchRule is a named rule on an assignment such as
// daystolaunch.
type NodeAssignmentLaunchRule struct {
	DTOState                   DTOState  `xml:"DTOState,omitempty"`
	LaunchRuleTemplateID       int       `xml:"LaunchRuleTemplateID"`
	NodeAssignmentLaunchRuleID int       `xml:"NodeAssignmentLaunchRuleID"`
	NodeState                  NodeState `xml:"NodeState,omitempty"`
	ParentObjectName           string    `xml:"ParentObjectName"`
	Value                      string    `xml:"Value"`
}

// NodeAssignmentSchedule is when an assignment becomes active.
type NodeAssignmentSchedule struct {
	DTOState  DTOState     `xml:"DTOState,omitempty"`
	NodeState NodeState    `xml:"NodeState,omitempty"`
	StartDate xmlwire.Time `xml:"StartDate"`
}

// CompletionRecord is a user's completion of an activity.
type CompletionRecord struct {
	Activity       *Activity    `xml:"Activity"`
	CompletionDate xmlwire.Time `xml:"CompletionDate"`
	CompletionID   int          `xml:"CompletionID"`
	Description    string       `xml:"Description"`
	User           *User        `xml:"User"`
}

// Catalog is a storefront price list.
type Catalog struct {
	CatalogID  int          `xml:"CatalogID"`
	CatalogUID xmlwire.UUID `xml:"CatalogUID"`
	PriceList  []PriceList  `xml:"PriceList>PriceList"`
}

// PriceList is one priced item of a catalog.
type PriceList struct {
	CatalogID      int             `xml:"CatalogID"`
	MSRPrice       float64         `xml:"MSRPrice"`
	NodeAssignment *NodeAssignment `xml:"NodeAssignment,omitempty"`
	Price          float64         `xml:"Price"`
	PriceListUID   *xmlwire.UUID   `xml:"PriceListUID,omitempty"`
	WholesalePrice float64         `xml:"WholesalePrice"`
}

// Asset is an object's set of custom attribute values.
type Asset struct {
	AssetObjectID *int       `xml:"AssetObjectID"`
	AssetType     *AssetType `xml:"AssetType"`
}

// AssetType groups the attributes defined for an object type.
type AssetType struct {
	AssetAttributes []AssetAttribute `xml:"AssetAttributes>AssetAttribute"`
}

// AssetAttribute is one attribute definition and its values.
type AssetAttribute struct {
	AttributeValues []AssetAttributeValue `xml:"AttributeValues>AssetAttributeValue"`
}

// AssetAttributeValue is a stored attribute value.
type AssetAttributeValue struct {
	AssetAttributeValueID int    `xml:"AssetAttributeValueID"`
	Value                 string `xml:"Value"`
	ValueID               *int   `xml:"ValueID"`
}
