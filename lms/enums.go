package lms

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NodeType is the numeric type of a directory node.
type NodeType int

const (
	NodeTypeOrganization NodeType = iota + 1
	NodeTypeOrganizationalUnit
	NodeTypePrincipal
	NodeTypeRepository
	NodeTypeStorage
)

var nodeTypeNames = map[NodeType]string{
	NodeTypeOrganization:       "Organization",
	NodeTypeOrganizationalUnit: "OrganizationalUnit",
	NodeTypePrincipal:          "Principal",
	NodeTypeRepository:         "Repository",
	NodeTypeStorage:            "Storage",
}

// String returns the name the service uses for t, or "" for the zero value.
// Decorated node names are built from it.
func (t NodeType) String() string {
	if t == 0 {
		return ""
	}
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}
	return strconv.Itoa(int(t))
}

// ParseNodeType looks up a node type by name, ignoring case. An empty string
// is the zero type, which matches any type.
func ParseNodeType(s string) (NodeType, error) {
	if s == "" {
		return 0, nil
	}
	for t, name := range nodeTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

// NodeSubType refines a NodeType. The zero value means no subtype.
type NodeSubType int

const (
	NodeSubTypeRegion NodeSubType = iota + 1
	NodeSubTypeSite
	NodeSubTypeDepartment
	NodeSubTypeTeam
	NodeSubTypeGroup
	NodeSubTypeRegistry
)

var nodeSubTypeNames = map[NodeSubType]string{
	NodeSubTypeRegion:     "Region",
	NodeSubTypeSite:       "Site",
	NodeSubTypeDepartment: "Department",
	NodeSubTypeTeam:       "Team",
	NodeSubTypeGroup:      "Group",
	NodeSubTypeRegistry:   "Registry",
}

// String returns the subtype name, or "" for the zero value.
func (t NodeSubType) String() string {
	if t == 0 {
		return ""
	}
	if name, ok := nodeSubTypeNames[t]; ok {
		return name
	}
	return strconv.Itoa(int(t))
}

// ParseNodeSubType looks up a subtype by name, ignoring case. An empty string
// is the zero subtype.
func ParseNodeSubType(s string) (NodeSubType, error) {
	if s == "" {
		return 0, nil
	}
	for t, name := range nodeSubTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown node subtype %q", s)
}

// DTOState tells the service what to do with an object in a payload.
type DTOState string

const (
	DTOStateUnchanged DTOState = "Unchanged"
	DTOStateCreated   DTOState = "Created"
	DTOStateUpdated   DTOState = "Updated"
	DTOStateDeleted   DTOState = "Deleted"
)

// NodeState is the lifecycle state of a node.
type NodeState string

const (
	NodeStateActive   NodeState = "Active"
	NodeStateInactive NodeState = "Inactive"
)

// ActivityKind is the activity type name sent when creating activities.
type ActivityKind string

const ActivityKindSCORMCBT ActivityKind = "SCORM_CBT"

// activityTypeSCORMCBT is the numeric form of ActivityKindSCORMCBT reported
// in listings.
const activityTypeSCORMCBT = 2

// CompleteItemsMode controls how many child items complete a parent.
type CompleteItemsMode string

const CompleteAllItems CompleteItemsMode = "AllItems"

// CompleteItemsOrderMode controls the order child items must be completed in.
type CompleteItemsOrderMode string

const CompleteAnyOrder CompleteItemsOrderMode = "AnyOrder"

// FileType is the numeric content package type of a repository file.
type FileType int

const (
	FileTypeSCORM FileType = iota + 1
	FileTypeAICC
)

// LicenseType is the numeric license kind of a repository file.
type LicenseType int

const LicenseTypeCommercial LicenseType = 1

// PlayMode controls how the player presents a course.
type PlayMode int

const (
	PlayModeStandardAndFullScreen    PlayMode = 100000000
	PlayModeStandardOnly             PlayMode = 100000001
	PlayModeFullScreenOnly           PlayMode = 100000002
	PlayModeFullScreenOnlyWhenMobile PlayMode = 100000003
)

var playModeNames = map[PlayMode]string{
	PlayModeStandardAndFullScreen:    "standardAndFullScreen",
	PlayModeStandardOnly:             "standardOnly",
	PlayModeFullScreenOnly:           "fullScreenOnly",
	PlayModeFullScreenOnlyWhenMobile: "fullScreenOnlyWhenMobile",
}

func (m PlayMode) String() string {
	if name, ok := playModeNames[m]; ok {
		return name
	}
	return strconv.Itoa(int(m))
}

// ParsePlayMode looks up a play mode by name, ignoring case.
func ParsePlayMode(s string) (PlayMode, error) {
	for m, name := range playModeNames {
		if strings.EqualFold(name, s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown play mode %q", s)
}

// LaunchParameters is the optional launch data attached to a new activity.
type LaunchParameters struct {
	PlayMode     *PlayMode
	PassingScore *float64
}

// HasValues reports whether any parameter is set.
func (p *LaunchParameters) HasValues() bool {
	return p != nil && (p.PlayMode != nil || p.PassingScore != nil)
}

// String encodes the parameters as launch data, e.g.
// "playMode=standardOnly&passingScore=80".
func (p *LaunchParameters) String() string {
	if p == nil {
		return ""
	}
	var parts []string
	if p.PlayMode != nil {
		parts = append(parts, "playMode="+p.PlayMode.String())
	}
	if p.PassingScore != nil {
		parts = append(parts, "passingScore="+formatWhole(*p.PassingScore))
	}
	return strings.Join(parts, "&")
}

// formatWhole rounds half away from zero and groups thousands with commas.
func formatWhole(f float64) string {
	n := int64(math.Round(f))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}
