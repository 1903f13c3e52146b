package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/ping13/star-collector/pkg/clients/mastodon"
	"github.com/ping13/star-collector/pkg/logging"
	"github.com/ping13/star-collector/pkg/models"
)

// PageSize is the fixed number of records requested per page.
const PageSize = 40

// PageFetcher retrieves one page of posts from a status-list endpoint.
type PageFetcher interface {
	FetchPage(ctx context.Context, endpoint string, q mastodon.PageQuery) ([]models.PostRecord, error)
}

// Collector walks one logical source with cursor-based pagination until the
// source is exhausted, a rate limit hits, or the fetch budget is reached.
type Collector struct {
	fetcher PageFetcher
	logger  logging.Logger
	metrics *Metrics
}

type Option func(*Collector)

// WithMetrics records page and rate-limit counters during collection.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Collector) {
		c.metrics = metrics
	}
}

func New(fetcher PageFetcher, logger logging.Logger, opts ...Option) *Collector {
	c := &Collector{fetcher: fetcher, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect fetches pages from endpoint until done. A rate-limit signal at any
// point is a soft stop: whatever has been accumulated is returned without an
// error. A transport or decode failure on the very first page is a hard
// failure; on later pages it stops collection with the accumulated records.
// Collection also stops on an empty page, a short page (end of data), or once
// pages*PageSize exceeds budget, so the source is never over-fetched beyond
// what will ultimately be kept.
func (c *Collector) Collect(ctx context.Context, endpoint string, budget int) ([]models.PostRecord, error) {
	var collected []models.PostRecord
	cursor := ""

	for page := 1; ; page++ {
		records, err := c.fetcher.FetchPage(ctx, endpoint, mastodon.PageQuery{Limit: PageSize, MaxID: cursor})
		if errors.Is(err, mastodon.ErrRateLimited) {
			c.metrics.IncRateLimitStops(endpoint)
			c.logger.WithFields(logging.Fields{
				"endpoint":  endpoint,
				"page":      page,
				"collected": len(collected),
			}).Warn("Rate limited, stopping collection for this source")
			return collected, nil
		}
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("fetching first page of %s: %w", endpoint, err)
			}
			c.logger.WithFields(logging.Fields{
				"endpoint":  endpoint,
				"page":      page,
				"collected": len(collected),
				"error":     err.Error(),
			}).Warn("Page fetch failed, keeping records collected so far")
			return collected, nil
		}

		if len(records) == 0 {
			return collected, nil
		}

		collected = append(collected, records...)
		c.metrics.IncPages(endpoint)
		c.logger.WithFields(logging.Fields{
			"endpoint":  endpoint,
			"page":      page,
			"count":     len(records),
			"collected": len(collected),
		}).Debug("Fetched page")

		if len(records) < PageSize {
			return collected, nil
		}
		if page*PageSize > budget {
			return collected, nil
		}

		cursor = records[len(records)-1].ID
	}
}
