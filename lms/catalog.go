package lms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/s0up4200/lmsctl/dispatch"
	"github.com/s0up4200/lmsctl/xmlwire"
)

// Launch rules attached to every new price list item.
const (
	defaultDaysToLaunch   = "30"
	defaultDaysToComplete = "2"
)

// PriceListItemSpec describes a price list entry. Exactly one of ActivityID
// and QualificationID should be set. PriceListUID is only used by updates.
type PriceListItemSpec struct {
	CatalogID       int
	CatalogUID      uuid.UUID
	PriceListUID    uuid.UUID
	ActivityID      *int
	QualificationID *int
	Price           float64
}

func (s PriceListItemSpec) trainingID() int {
	if s.ActivityID != nil {
		return *s.ActivityID
	}
	return deref(s.QualificationID)
}

func priceListPath(catalogUID uuid.UUID) string {
	return "/catalog/" + catalogUID.String() + "/pricelist"
}

// GetCatalog returns a catalog and the price list entries that carry an
// assignment.
func (c *Client) GetCatalog(ctx context.Context, catalogUID uuid.UUID) (*CatalogInfo, error) {
	catalog, err := getOne[Catalog](ctx, c, "GetCatalog", "/catalog/"+catalogUID.String(), nil)
	if err != nil {
		return nil, err
	}

	info := &CatalogInfo{
		CatalogUID: catalog.CatalogUID.UUID,
		CatalogID:  catalog.CatalogID,
	}
	for _, p := range catalog.PriceList {
		if p.NodeAssignment == nil {
			continue
		}
		info.PriceListItems = append(info.PriceListItems, priceListItemInfo(p))
	}
	return info, nil
}

// CreatePriceListItem prices an activity or qualification in a catalog. New
// entries launch within 30 days and must be completed within 2, starting
// today.
func (c *Client) CreatePriceListItem(ctx context.Context, spec PriceListItemSpec) (*PriceListItemInfo, error) {
	now := c.opts.now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	item := PriceList{
		CatalogID: spec.CatalogID,
		Price:     spec.Price,
		NodeAssignment: &NodeAssignment{
			ActivityID:      spec.ActivityID,
			QualificationID: spec.QualificationID,
			LaunchRules: []NodeAssignmentLaunchRule{
				{
					NodeAssignmentLaunchRuleID: -1,
					DTOState:                   DTOStateCreated,
					NodeState:                  NodeStateActive,
					LaunchRuleTemplateID:       1,
					ParentObjectName:           "daystolaunch",
					Value:                      defaultDaysToLaunch,
				},
				{
					NodeAssignmentLaunchRuleID: -2,
					DTOState:                   DTOStateCreated,
					NodeState:                  NodeStateActive,
					LaunchRuleTemplateID:       2,
					ParentObjectName:           "daystocomplete",
					Value:                      defaultDaysToComplete,
				},
			},
			Schedules: []NodeAssignmentSchedule{
				{DTOState: DTOStateCreated, NodeState: NodeStateActive, StartDate: xmlwire.Time{Time: today}},
			},
			ScheduleCount: 1,
		},
	}
	return c.savePriceListItem(ctx, "CreatePriceListItem", http.MethodPost, "creating", spec, item)
}

// UpdatePriceListItem changes the price or training of an existing entry.
func (c *Client) UpdatePriceListItem(ctx context.Context, spec PriceListItemSpec) (*PriceListItemInfo, error) {
	item := PriceList{
		CatalogID:    spec.CatalogID,
		Price:        spec.Price,
		PriceListUID: xmlwire.NewUUID(spec.PriceListUID),
		NodeAssignment: &NodeAssignment{
			ActivityID:      spec.ActivityID,
			QualificationID: spec.QualificationID,
		},
	}
	return c.savePriceListItem(ctx, "UpdatePriceListItem", http.MethodPut, "updating", spec, item)
}

func (c *Client) savePriceListItem(ctx context.Context, op, method, verb string, spec PriceListItemSpec, item PriceList) (*PriceListItemInfo, error) {
	body, err := c.dispatcher.Send(ctx, op, method, priceListPath(spec.CatalogUID), nil, item)
	if err != nil {
		return nil, err
	}
	if xmlwire.IsEmpty(body) {
		return nil, c.rejected(op, fmt.Sprintf("error %s price list item for %d", verb, spec.trainingID()), body)
	}

	result := new(ServiceResult[PriceList])
	if err := c.dispatcher.Decode(op, body, result); err != nil {
		return nil, err
	}
	if !result.IsSuccess() {
		return nil, c.rejected(op, result.Message, body)
	}
	if result.Object == nil {
		return nil, c.dispatcher.Report(op, &dispatch.ProtocolError{Op: op, Err: errors.New("result carries no price list item")})
	}

	info := priceListItemInfo(*result.Object)
	c.logger.Info().
		Str("catalog", spec.CatalogUID.String()).
		Int("training", spec.trainingID()).
		Float64("price", info.Price).
		Msg("Saved price list item")
	return &info, nil
}
