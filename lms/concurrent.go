package lms

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// LoadRequirements looks up several requirements in parallel. Results keep
// the order of names. The first failure cancels the remaining lookups.
func (c *Client) LoadRequirements(ctx context.Context, parentID int, registryName string, names []string) ([]*RequirementInfo, error) {
	return loadAll(ctx, c, names, func(ctx context.Context, name string) (*RequirementInfo, error) {
		return c.GetRequirement(ctx, parentID, registryName, name)
	})
}

// LoadQualifications looks up several qualifications in parallel, keeping
// the order of names.
func (c *Client) LoadQualifications(ctx context.Context, parentID int, names []string) ([]*QualificationInfo, error) {
	return loadAll(ctx, c, names, func(ctx context.Context, name string) (*QualificationInfo, error) {
		return c.GetQualification(ctx, parentID, name)
	})
}

func loadAll[T any](ctx context.Context, c *Client, names []string, load func(context.Context, string) (T, error)) ([]T, error) {
	results := make([]T, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.concurrency)
	for i, name := range names {
		g.Go(func() error {
			v, err := load(ctx, name)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
