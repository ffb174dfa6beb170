package raindrop

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/starford/laguz/internal/models"
)

// Bookmarks fetches every bookmark in collectionID, walking pages until
// the upstream count is exhausted. collectionID 0 means all collections.
func (c *Client) Bookmarks(ctx context.Context, collectionID int64) ([]models.Bookmark, error) {
	var out []models.Bookmark
	for page := 0; ; page++ {
		q := url.Values{}
		q.Set("perpage", strconv.Itoa(c.pageSize))
		q.Set("page", strconv.Itoa(page))
		q.Set("sort", "-created")

		var resp raindropsResponse
		path := fmt.Sprintf("/rest/v1/raindrops/%d", collectionID)
		if err := c.get(ctx, path, q, &resp); err != nil {
			return nil, err
		}

		for _, it := range resp.Items {
			out = append(out, mapBookmark(it))
		}

		c.logger.Debug("fetched bookmark page",
			slog.Int("page", page),
			slog.Int("items", len(resp.Items)),
			slog.Int("total", resp.Count))

		if len(resp.Items) == 0 || len(resp.Items) < c.pageSize || len(out) >= resp.Count {
			break
		}
	}
	return out, nil
}
