package lms

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/s0up4200/lmsctl/cache"
)

func TestNodeKeyNames(t *testing.T) {
	tests := []struct {
		name string
		key  NodeKey
		want []string
	}{
		{name: "plain", key: NodeKey{Name: "Acme Corp"}, want: []string{"Acme Corp"}},
		{name: "type only", key: NodeKey{Name: "Content", TypeID: NodeTypeRepository}, want: []string{"Content", "Content Repository"}},
		{
			name: "type and subtype",
			key:  NodeKey{Name: "Safety", TypeID: NodeTypeStorage, SubTypeID: NodeSubTypeRegistry},
			want: []string{"Safety", "Safety Registry", "Safety Storage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Names())
		})
	}
}

func TestNodeKeyMatches(t *testing.T) {
	registry := &NodeInfo{
		Name:      "Safety Registry",
		NodeID:    31,
		ParentID:  10,
		TypeID:    NodeTypeStorage,
		SubTypeID: NodeSubTypeRegistry,
	}

	tests := []struct {
		name string
		key  NodeKey
		want bool
	}{
		{name: "by id", key: NodeKey{NodeID: 31}, want: true},
		{name: "other id", key: NodeKey{NodeID: 32, Name: "Safety Registry"}},
		{name: "decorated name", key: NodeKey{Name: "Safety", ParentID: 10, TypeID: NodeTypeStorage, SubTypeID: NodeSubTypeRegistry}, want: true},
		{name: "exact name any parent", key: NodeKey{Name: "Safety Registry"}, want: true},
		{name: "wrong parent", key: NodeKey{Name: "Safety Registry", ParentID: 11}},
		{name: "wrong type", key: NodeKey{Name: "Safety Registry", TypeID: NodeTypeRepository}},
		{name: "wrong subtype", key: NodeKey{Name: "Safety Registry", SubTypeID: NodeSubTypeSite}},
		{name: "undecorated without type", key: NodeKey{Name: "Safety"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Matches(registry))
		})
	}
	assert.False(t, NodeKey{NodeID: 31}.Matches(nil))
}

func TestKeyValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   any
		valid bool
	}{
		{name: "node by id", key: NodeKey{NodeID: 4}, valid: true},
		{name: "node by name", key: NodeKey{Name: "Acme Corp"}, valid: true},
		{name: "empty node key", key: NodeKey{}},
		{name: "negative parent", key: NodeKey{Name: "x", ParentID: -1}},
		{name: "qualification", key: QualificationKey{ParentID: 10, Name: "Forklift Cert"}, valid: true},
		{name: "unnamed qualification", key: QualificationKey{ParentID: 10}},
		{name: "requirement", key: RequirementKey{Name: "Pre-shift inspection"}, valid: true},
		{name: "attribute", key: AttributeKey{ObjectType: "Activity", ObjectID: "7", AttributeName: "Vendor"}, valid: true},
		{name: "attribute without object", key: AttributeKey{ObjectType: "Activity", AttributeName: "Vendor"}},
		{name: "thumbnail", key: ThumbnailKey{ActivityID: 7}, valid: true},
		{name: "thumbnail without id", key: ThumbnailKey{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cache.Validate(tt.key)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, cache.ErrInvalidKey)
		})
	}
}

func TestAttributeKeyMatches(t *testing.T) {
	key := AttributeKey{ObjectType: "Activity", ObjectID: "7", AttributeName: "Vendor"}
	assert.True(t, key.Matches([]AttributeValue{{ObjectType: "Activity", ObjectID: "7", AttributeName: "Vendor"}}))
	assert.False(t, key.Matches([]AttributeValue{{ObjectType: "Activity", ObjectID: "8", AttributeName: "Vendor"}}))
	assert.False(t, key.Matches(nil))
}
