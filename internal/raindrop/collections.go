package raindrop

import (
	"context"
	"log/slog"

	"github.com/starford/laguz/internal/models"
)

// Collections fetches the full collection forest: root collections plus
// every nested group. The two endpoints can overlap; later items win by
// identifier so the result has no duplicates.
func (c *Client) Collections(ctx context.Context) ([]models.Collection, error) {
	var roots collectionsResponse
	if err := c.get(ctx, "/rest/v1/collections", nil, &roots); err != nil {
		return nil, err
	}
	var children collectionsResponse
	if err := c.get(ctx, "/rest/v1/collections/childrens", nil, &children); err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Collection, len(roots.Items)+len(children.Items))
	order := make([]int64, 0, len(roots.Items)+len(children.Items))
	for _, it := range append(roots.Items, children.Items...) {
		if _, seen := byID[it.ID]; !seen {
			order = append(order, it.ID)
		}
		byID[it.ID] = mapCollection(it)
	}

	out := make([]models.Collection, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}

	c.logger.Debug("fetched collections", slog.Int("count", len(out)))
	return out, nil
}
