package lms

import "fmt"

// NodeKey looks up a directory node. Zero fields are unspecified. A key with
// a NodeID matches on the id alone; otherwise the name must match the node
// name or one of its decorated forms ("<name> <subtype>", "<name> <type>").
type NodeKey struct {
	NodeID    int         `validate:"gte=0"`
	ParentID  int         `validate:"gte=0"`
	Name      string      `validate:"required_without=NodeID"`
	TypeID    NodeType    `validate:"gte=0"`
	SubTypeID NodeSubType `validate:"gte=0"`
}

func (k NodeKey) String() string {
	if k.NodeID != 0 {
		return fmt.Sprintf("node(id=%d)", k.NodeID)
	}
	return fmt.Sprintf("node(parent=%d,name=%q,type=%s,subtype=%s)", k.ParentID, k.Name, k.TypeID, k.SubTypeID)
}

// Names returns the node names k accepts, most specific first.
func (k NodeKey) Names() []string {
	names := []string{k.Name}
	if k.SubTypeID != 0 {
		names = append(names, k.Name+" "+k.SubTypeID.String())
	}
	if k.TypeID != 0 {
		names = append(names, k.Name+" "+k.TypeID.String())
	}
	return names
}

// Matches reports whether n is the node k describes.
func (k NodeKey) Matches(n *NodeInfo) bool {
	if n == nil {
		return false
	}
	if k.NodeID != 0 {
		return n.NodeID == k.NodeID
	}
	if k.TypeID != 0 && n.TypeID != k.TypeID {
		return false
	}
	if k.ParentID != 0 && n.ParentID != k.ParentID {
		return false
	}
	if k.SubTypeID != 0 && n.SubTypeID != k.SubTypeID {
		return false
	}
	for _, name := range k.Names() {
		if n.Name == name {
			return true
		}
	}
	return false
}

// QualificationKey looks up a qualification by name under a parent node.
type QualificationKey struct {
	ParentID int    `validate:"gte=0"`
	Name     string `validate:"required"`
}

func (k QualificationKey) String() string {
	return fmt.Sprintf("qualification(parent=%d,name=%q)", k.ParentID, k.Name)
}

func (k QualificationKey) Matches(q *QualificationInfo) bool {
	return q != nil && q.ParentID == k.ParentID && q.Name == k.Name
}

// RequirementKey looks up a requirement by name under a parent node.
type RequirementKey struct {
	ParentID int    `validate:"gte=0"`
	Name     string `validate:"required"`
}

func (k RequirementKey) String() string {
	return fmt.Sprintf("requirement(parent=%d,name=%q)", k.ParentID, k.Name)
}

func (k RequirementKey) Matches(r *RequirementInfo) bool {
	return r != nil && r.ParentID == k.ParentID && r.Name == k.Name
}

// AttributeKey looks up the values of one asset attribute on one object.
type AttributeKey struct {
	ObjectType    string `validate:"required"`
	ObjectID      string `validate:"required"`
	AttributeName string `validate:"required"`
}

func (k AttributeKey) String() string {
	return fmt.Sprintf("attribute(%s/%s/%s)", k.ObjectType, k.ObjectID, k.AttributeName)
}

func (k AttributeKey) Matches(values []AttributeValue) bool {
	if len(values) == 0 {
		return false
	}
	v := values[0]
	return v.ObjectType == k.ObjectType && v.ObjectID == k.ObjectID && v.AttributeName == k.AttributeName
}

// ThumbnailKey looks up the thumbnail of an activity.
type ThumbnailKey struct {
	ActivityID int `validate:"gt=0"`
}

func (k ThumbnailKey) String() string {
	return fmt.Sprintf("thumbnail(activity=%d)", k.ActivityID)
}

func (k ThumbnailKey) Matches(t *ThumbnailInfo) bool {
	return t != nil && t.ActivityID == k.ActivityID
}
