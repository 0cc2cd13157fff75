package lms

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// completionDateLayout is the date format the completions endpoint parses.
const completionDateLayout = "1/2/2006 3:04:05 PM"

// GetCompletionsByDate lists completions recorded under a node between from
// and to.
func (c *Client) GetCompletionsByDate(ctx context.Context, nodeUID uuid.UUID, from, to time.Time) ([]CompletionInfo, error) {
	query := url.Values{}
	query.Set("from", from.Format(completionDateLayout))
	query.Set("to", to.Format(completionDateLayout))

	records, err := getList[CompletionRecord](ctx, c, "GetCompletionsByDate", "/node/"+nodeUID.String()+"/completions", query)
	if err != nil {
		return nil, err
	}

	completions := make([]CompletionInfo, len(records))
	for i, r := range records {
		completions[i] = completionInfo(r)
	}

	c.logger.Debug().
		Stringer("node", nodeUID).
		Int("count", len(completions)).
		Msg("Retrieved completions")
	return completions, nil
}
