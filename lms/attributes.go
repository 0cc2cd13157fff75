package lms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/s0up4200/lmsctl/xmlwire"
)

func assetPath(objectType, objectID, name string) string {
	return "/" + url.PathEscape(objectType) + "/" + url.PathEscape(objectID) + "/asset/" + url.PathEscape(name)
}

func attributeValue(objectType, objectID, name string, v AssetAttributeValue) AttributeValue {
	return AttributeValue{
		AssetAttributeValueID: v.AssetAttributeValueID,
		ObjectType:            objectType,
		ObjectID:              objectID,
		AttributeName:         name,
		Value:                 v.Value,
		ValueID:               deref(v.ValueID),
	}
}

// GetAttributeValues lists every value of attributeName on objects of
// objectType under contextNodeID. The values of each object are cached.
func (c *Client) GetAttributeValues(ctx context.Context, contextNodeID int, objectType, attributeName string) ([]AttributeValue, error) {
	query := url.Values{}
	query.Set("AttributeName", attributeName)
	query.Set("ContextNodeID", strconv.Itoa(contextNodeID))

	assets, err := getList[Asset](ctx, c, "GetAttributeValues", "/assets/"+url.PathEscape(objectType), query)
	if err != nil {
		return nil, err
	}

	var values []AttributeValue
	for _, asset := range assets {
		if asset.AssetObjectID == nil || asset.AssetType == nil {
			continue
		}
		objectID := strconv.Itoa(*asset.AssetObjectID)

		var group []AttributeValue
		for _, attr := range asset.AssetType.AssetAttributes {
			for _, v := range attr.AttributeValues {
				group = append(group, attributeValue(objectType, objectID, attributeName, v))
			}
		}
		if len(group) > 0 {
			remember(c, c.attributes, AttributeKey{ObjectType: objectType, ObjectID: objectID, AttributeName: attributeName}, group)
		}
		values = append(values, group...)
	}
	return values, nil
}

// GetAssetValues returns the values of one attribute on one object. An
// attribute with no values yields an empty slice.
func (c *Client) GetAssetValues(ctx context.Context, objectType, objectID, attributeName string) ([]AttributeValue, error) {
	const op = "GetAssetValues"
	key := AttributeKey{ObjectType: objectType, ObjectID: objectID, AttributeName: attributeName}

	values, err := resolve(ctx, c, c.attributes, key, func(ctx context.Context) ([]AttributeValue, error) {
		raw, err := getList[AssetAttributeValue](ctx, c, op, assetPath(objectType, objectID, attributeName), nil)
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		values := make([]AttributeValue, len(raw))
		for i, v := range raw {
			values[i] = attributeValue(objectType, objectID, attributeName, v)
		}
		return values, nil
	})
	if errors.Is(err, ErrNotFound) {
		return []AttributeValue{}, nil
	}
	return values, err
}

// GetAssetValue returns the single value of an attribute on an object.
func (c *Client) GetAssetValue(ctx context.Context, objectType, objectID, attributeName string) (*AttributeValue, error) {
	values, err := c.GetAssetValues(ctx, objectType, objectID, attributeName)
	if err != nil {
		return nil, err
	}

	v, err := single(c, "GetAssetValue", values, func(AttributeValue) bool { return true },
		AttributeKey{ObjectType: objectType, ObjectID: objectID, AttributeName: attributeName}.String())
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateAssetValue stores a new attribute value on an object.
func (c *Client) CreateAssetValue(ctx context.Context, objectType, objectID, attributeName, valueID, value string) error {
	if err := c.writeAssetValue(ctx, "CreateAssetValue", http.MethodPost, assetPath(objectType, objectID, attributeName), valueID, value); err != nil {
		return err
	}
	forget(c, c.attributes, AttributeKey{ObjectType: objectType, ObjectID: objectID, AttributeName: attributeName})
	return nil
}

// UpdateAssetValue replaces a stored attribute value, addressed by its
// AssetAttributeValueID.
func (c *Client) UpdateAssetValue(ctx context.Context, objectType, objectID string, assetAttributeValueID int, valueID, value string) error {
	endpoint := assetPath(objectType, objectID, strconv.Itoa(assetAttributeValueID))
	if err := c.writeAssetValue(ctx, "UpdateAssetValue", http.MethodPut, endpoint, valueID, value); err != nil {
		return err
	}
	c.forgetAttributeValue(objectType, objectID, assetAttributeValueID)
	return nil
}

func (c *Client) writeAssetValue(ctx context.Context, op, method, endpoint, valueID, value string) error {
	query := url.Values{}
	query.Set("AssetValueID", valueID)
	_, err := submit[Asset](ctx, c, op, method, endpoint, query, xmlwire.NewString(value))
	return err
}

func (c *Client) forgetAttributeValue(objectType, objectID string, assetAttributeValueID int) {
	for _, group := range c.attributes.Values() {
		for _, v := range group {
			if v.ObjectType == objectType && v.ObjectID == objectID && v.AssetAttributeValueID == assetAttributeValueID {
				forget(c, c.attributes, AttributeKey{ObjectType: objectType, ObjectID: objectID, AttributeName: v.AttributeName})
				break
			}
		}
	}
}
