package lms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/s0up4200/lmsctl/xmlwire"
)

// GetQualifications lists the qualifications under contextNodeID and caches
// each one.
func (c *Client) GetQualifications(ctx context.Context, contextNodeID int) ([]*QualificationInfo, error) {
	const op = "GetQualifications"
	results, err := queryList[Qualification](ctx, c, op, "/qualifications", SimpleQuerySpec{ContextNodeID: &contextNodeID})
	if err != nil {
		return nil, err
	}

	quals := make([]*QualificationInfo, 0, len(results))
	for _, q := range results {
		info := qualificationInfo(q, contextNodeID)
		remember(c, c.qualifications, QualificationKey{ParentID: contextNodeID, Name: info.Name}, info)
		quals = append(quals, info)
	}
	return quals, nil
}

// SearchQualifications searches qualifications, including child registries,
// and keeps the active ones. Results are not cached.
func (c *Client) SearchQualifications(ctx context.Context, contextNodeID int, search string) ([]*QualificationInfo, error) {
	const op = "SearchQualifications"
	query := url.Values{}
	query.Set("search", search)

	results, err := getList[Qualification](ctx, c, op, "/qualification/includechildren", query)
	if err != nil {
		return nil, err
	}

	quals := make([]*QualificationInfo, 0, len(results))
	for _, q := range results {
		if q.StateID != 0 {
			continue
		}
		quals = append(quals, qualificationInfo(q, contextNodeID))
	}
	return quals, nil
}

// GetQualification finds a qualification by name. The registry searched is
// the one under parentID that carries the qualification's name; when it
// cannot be found the error wraps ErrRegistryNotFound.
func (c *Client) GetQualification(ctx context.Context, parentID int, name string) (*QualificationInfo, error) {
	const op = "GetQualification"
	key := QualificationKey{ParentID: parentID, Name: name}

	return resolve(ctx, c, c.qualifications, key, func(ctx context.Context) (*QualificationInfo, error) {
		registry, err := c.requireNode(ctx, op, ErrRegistryNotFound, parentID, name, NodeTypeStorage, NodeSubTypeRegistry)
		if err != nil {
			return nil, err
		}

		spec := SimpleQuerySpec{Name: name, NodeID: &registry.NodeID}
		results, err := queryList[Qualification](ctx, c, op, "/qualifications", spec)
		if err != nil {
			return nil, err
		}
		q, err := single(c, op, results, func(q Qualification) bool { return q.Name == name }, fmt.Sprintf("qualification %q", name))
		if err != nil {
			return nil, err
		}
		return qualificationInfo(q, parentID), nil
	})
}

// GetQualificationByID loads the full qualification, links included.
func (c *Client) GetQualificationByID(ctx context.Context, qualificationID int) (*Qualification, error) {
	return getOne[Qualification](ctx, c, "GetQualificationByID", "/qualification/"+strconv.Itoa(qualificationID), nil)
}

// CreateQualification creates an empty qualification in the registry named
// registryName under parentID.
func (c *Client) CreateQualification(ctx context.Context, parentID int, registryName, name, sku, externalID string) (*QualificationInfo, error) {
	const op = "CreateQualification"
	registry, err := c.requireNode(ctx, op, ErrRegistryNotFound, parentID, registryName, NodeTypeStorage, NodeSubTypeRegistry)
	if err != nil {
		return nil, err
	}

	qual := Qualification{
		CompleteItemsModeID:      CompleteAllItems,
		CompleteItemsOrderModeID: CompleteAnyOrder,
		CreatedDate:              &xmlwire.Time{Time: c.opts.now()},
		DTOState:                 DTOStateCreated,
		ExternalID:               externalID,
		Name:                     name,
		RegistryID:               registry.ObjectID,
		SKU:                      sku,
	}

	result, err := submit[Qualification](ctx, c, op, http.MethodPost, "/qualification", nil, qual)
	if err != nil {
		return nil, err
	}

	info := &QualificationInfo{
		Name:            result.ObjectName(),
		RegistryID:      registry.ObjectID,
		QualificationID: result.ObjectID(),
		ParentID:        parentID,
		ExternalID:      externalID,
		SKU:             sku,
		RequirementIDs:  []int{},
	}
	c.logger.Info().Str("name", info.Name).Int("qualification_id", info.QualificationID).Msg("Created qualification")
	return info, nil
}

// UpdateQualification sets the qualification's requirements to
// requirementIDs, in order, and renames it when name is not empty. The
// updated qualification is read back.
func (c *Client) UpdateQualification(ctx context.Context, qualificationID int, requirementIDs []int, name string) (*QualificationInfo, error) {
	const op = "UpdateQualification"
	qual, err := c.GetQualificationByID(ctx, qualificationID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, c.precondition(op, fmt.Errorf("%w: %d: %w", ErrQualificationNotFound, qualificationID, err))
	}

	if name != "" {
		qual.Name = name
	}
	qual.DTOState = DTOStateUpdated

	now := c.opts.now()
	qual.QualificationRequirements = reconcileLinks(qual.QualificationRequirements, requirementIDs, linkAccess[QualificationRequirement]{
		target: func(l *QualificationRequirement) int { return l.RequirementID },
		order:  func(l *QualificationRequirement) *int { return &l.DisplayOrder },
		touch: func(l *QualificationRequirement) {
			l.DTOState = DTOStateUpdated
			l.UpdatedDate = &xmlwire.Time{Time: now}
		},
		create: func(target, order int) QualificationRequirement {
			return QualificationRequirement{
				CreatedDate:     &xmlwire.Time{Time: now.UTC()},
				DTOState:        DTOStateCreated,
				DisplayOrder:    order,
				LinkUID:         xmlwire.NewUUID(c.opts.newUID()),
				QualificationID: qual.QualificationID,
				RequirementID:   target,
			}
		},
	}, false)

	result, err := submit[Qualification](ctx, c, op, http.MethodPut, "/qualification", nil, qual)
	if err != nil {
		return nil, err
	}

	updated, err := c.GetQualificationByID(ctx, result.ObjectID())
	if err != nil {
		return nil, err
	}
	c.forgetQualification(qualificationID)
	return qualificationInfo(*updated, 0), nil
}

// forgetQualification drops cached lookups of a qualification that changed.
func (c *Client) forgetQualification(qualificationID int) {
	for _, q := range c.qualifications.Values() {
		if q.QualificationID == qualificationID {
			forget(c, c.qualifications, QualificationKey{ParentID: q.ParentID, Name: q.Name})
		}
	}
}
