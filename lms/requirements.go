package lms

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/s0up4200/lmsctl/xmlwire"
)

// GetRequirements lists the requirements under contextNodeID and caches
// each one. A requirement's parent is taken from the node cache when its
// registry node is known there.
func (c *Client) GetRequirements(ctx context.Context, contextNodeID int) ([]*RequirementInfo, error) {
	const op = "GetRequirements"
	results, err := queryList[Requirement](ctx, c, op, "/requirements", SimpleQuerySpec{ContextNodeID: &contextNodeID})
	if err != nil {
		return nil, err
	}

	reqs := make([]*RequirementInfo, 0, len(results))
	for _, r := range results {
		parentID := contextNodeID
		if r.NodeID != 0 {
			if node, ok := c.nodes.Find(NodeKey{NodeID: r.NodeID}); ok {
				parentID = node.ParentID
			}
		}
		info := requirementInfo(r, parentID)
		remember(c, c.requirements, RequirementKey{ParentID: parentID, Name: info.Name}, info)
		reqs = append(reqs, info)
	}
	return reqs, nil
}

// GetRequirement finds a requirement by name, ignoring case, in the registry
// registryName under parentID. A registry holding a single requirement
// yields it whatever its name.
func (c *Client) GetRequirement(ctx context.Context, parentID int, registryName, name string) (*RequirementInfo, error) {
	const op = "GetRequirement"
	key := RequirementKey{ParentID: parentID, Name: name}

	return resolve(ctx, c, c.requirements, key, func(ctx context.Context) (*RequirementInfo, error) {
		registry, err := c.requireNode(ctx, op, ErrRegistryNotFound, parentID, registryName, NodeTypeStorage, NodeSubTypeRegistry)
		if err != nil {
			return nil, err
		}

		spec := SimpleQuerySpec{Name: name, NodeID: &registry.NodeID}
		results, err := queryList[Requirement](ctx, c, op, "/requirements", spec)
		if err != nil {
			return nil, err
		}
		if len(results) == 1 {
			return requirementInfo(results[0], parentID), nil
		}
		r, err := single(c, op, results, func(r Requirement) bool { return strings.EqualFold(r.Name, name) }, fmt.Sprintf("requirement %q", name))
		if err != nil {
			return nil, err
		}
		return requirementInfo(r, parentID), nil
	})
}

// GetRequirementByID loads the full requirement, links included.
func (c *Client) GetRequirementByID(ctx context.Context, requirementID int) (*Requirement, error) {
	return getOne[Requirement](ctx, c, "GetRequirementByID", "/requirement/"+strconv.Itoa(requirementID), nil)
}

// CreateRequirement creates an empty requirement in the registry named
// registryName under parentID.
func (c *Client) CreateRequirement(ctx context.Context, parentID int, registryName, name, externalID string) (*RequirementInfo, error) {
	const op = "CreateRequirement"
	registry, err := c.requireNode(ctx, op, ErrRegistryNotFound, parentID, registryName, NodeTypeStorage, NodeSubTypeRegistry)
	if err != nil {
		return nil, err
	}

	req := Requirement{
		CompleteItemsModeID:      CompleteAllItems,
		CompleteItemsOrderModeID: CompleteAnyOrder,
		CreatedDate:              &xmlwire.Time{Time: c.opts.now()},
		DTOState:                 DTOStateCreated,
		ExternalID:               externalID,
		Name:                     name,
		RegistryID:               registry.ObjectID,
		RequirementDetail:        &RequirementDetail{DTOState: DTOStateCreated},
		RequirementID:            -1,
	}

	result, err := submit[Requirement](ctx, c, op, http.MethodPost, "/requirement", nil, req)
	if err != nil {
		return nil, err
	}

	info := &RequirementInfo{
		Name:          result.ObjectName(),
		RegistryID:    registry.ObjectID,
		RequirementID: result.ObjectID(),
		ParentID:      parentID,
		ExternalID:    externalID,
		RegistryName:  registryName,
		ActivityIDs:   []int{},
	}
	c.logger.Info().Str("name", info.Name).Int("requirement_id", info.RequirementID).Msg("Created requirement")
	return info, nil
}

// UpdateRequirement sets the requirement's activities to activityIDs, in
// order, and renames it when name is not empty. Every surviving link is
// marked updated because the service orders activities by position rather
// than by display order. The updated requirement is read back.
func (c *Client) UpdateRequirement(ctx context.Context, requirementID int, activityIDs []int, name string) (*RequirementInfo, error) {
	const op = "UpdateRequirement"
	req, err := c.GetRequirementByID(ctx, requirementID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, c.precondition(op, fmt.Errorf("%w: %d: %w", ErrRequirementNotFound, requirementID, err))
	}

	if name != "" {
		req.Name = name
	}
	req.DTOState = DTOStateUpdated

	now := c.opts.now()
	req.RequirementActivities = reconcileLinks(req.RequirementActivities, activityIDs, linkAccess[RequirementActivity]{
		target: func(l *RequirementActivity) int { return l.ActivityID },
		order:  func(l *RequirementActivity) *int { return &l.DisplayOrder },
		touch: func(l *RequirementActivity) {
			l.DTOState = DTOStateUpdated
			l.UpdatedDate = &xmlwire.Time{Time: now}
		},
		create: func(target, order int) RequirementActivity {
			return RequirementActivity{
				ActivityID:    target,
				CreatedDate:   &xmlwire.Time{Time: now.UTC()},
				DTOState:      DTOStateCreated,
				DisplayOrder:  order,
				LinkUID:       xmlwire.NewUUID(c.opts.newUID()),
				RequirementID: req.RequirementID,
			}
		},
	}, true)

	result, err := submit[Requirement](ctx, c, op, http.MethodPut, "/requirement", nil, req)
	if err != nil {
		return nil, err
	}

	updated, err := c.GetRequirementByID(ctx, result.ObjectID())
	if err != nil {
		return nil, err
	}
	c.forgetRequirement(requirementID)
	return requirementInfo(*updated, 0), nil
}

func (c *Client) forgetRequirement(requirementID int) {
	for _, r := range c.requirements.Values() {
		if r.RequirementID == requirementID {
			forget(c, c.requirements, RequirementKey{ParentID: r.ParentID, Name: r.Name})
		}
	}
}
