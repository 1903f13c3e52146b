package feed

import (
	"context"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ping13/star-collector/pkg/logging"
)

// ExtraSources merges entries from additional RSS/Atom feeds into the
// output, alongside the Mastodon posts. Each feed contributes at most limit
// entries, newest first. A feed that cannot be fetched or parsed is skipped;
// the extra sources never fail the main pipeline.
type ExtraSources struct {
	urls   []string
	limit  int
	parser *gofeed.Parser
	logger logging.Logger
}

func NewExtraSources(urls []string, limit int, logger logging.Logger) *ExtraSources {
	parser := gofeed.NewParser()
	parser.UserAgent = "star-collector/1.0"
	return &ExtraSources{
		urls:   urls,
		limit:  limit,
		parser: parser,
		logger: logger,
	}
}

// Collect fetches every configured feed and returns its newest entries as
// feed items paired with their publication times.
func (s *ExtraSources) Collect(ctx context.Context) []entry {
	var entries []entry

	for _, feedURL := range s.urls {
		parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			s.logger.WithFields(logging.Fields{
				"feed_url": feedURL,
				"error":    err.Error(),
			}).Warn("Skipping extra feed")
			continue
		}

		items := parsed.Items
		sort.SliceStable(items, func(i, j int) bool {
			return publishedAt(items[i]).After(publishedAt(items[j]))
		})
		if len(items) > s.limit {
			items = items[:s.limit]
		}

		for _, it := range items {
			entries = append(entries, entry{
				published: publishedAt(it),
				item:      itemFromFeedEntry(it),
			})
		}

		s.logger.WithFields(logging.Fields{
			"feed_url": feedURL,
			"count":    len(items),
		}).Debug("Collected extra feed entries")
	}

	return entries
}

func publishedAt(it *gofeed.Item) time.Time {
	if it.PublishedParsed != nil {
		return *it.PublishedParsed
	}
	if it.UpdatedParsed != nil {
		return *it.UpdatedParsed
	}
	return time.Time{}
}

// itemFromFeedEntry maps an upstream feed entry onto the document model.
// Unlike post items, the entry's own title and description pass through, and
// the GUID stays a permalink when it is the entry link.
func itemFromFeedEntry(it *gofeed.Item) Item {
	guid := it.GUID
	isPermaLink := "false"
	if guid == "" {
		guid = it.Link
		isPermaLink = "true"
	}

	item := Item{
		Title:       it.Title,
		Link:        it.Link,
		GUID:        GUID{IsPermaLink: isPermaLink, Value: guid},
		Description: it.Description,
		Categories:  it.Categories,
	}
	if t := publishedAt(it); !t.IsZero() {
		item.PubDate = t.Format("Mon, 02 Jan 2006 15:04:05 -0700")
	}
	return item
}
