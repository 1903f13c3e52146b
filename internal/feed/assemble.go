package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ping13/star-collector/internal/config"
	"github.com/ping13/star-collector/pkg/clients/mastodon"
	"github.com/ping13/star-collector/pkg/logging"
	"github.com/ping13/star-collector/pkg/models"
)

// Source abstracts the paginated collector so the assembler can be tested
// without HTTP.
type Source interface {
	Collect(ctx context.Context, endpoint string, budget int) ([]models.PostRecord, error)
}

// Assembler runs both collections, merges them, and produces the final feed
// document. All state lives within one Assemble call; nothing persists
// across invocations.
type Assembler struct {
	cfg    config.FeedConfig
	source Source
	extras *ExtraSources
	logger logging.Logger
}

type AssemblerOption func(*Assembler)

// WithExtraSources merges additional RSS/Atom feeds into the output.
func WithExtraSources(extras *ExtraSources) AssemblerOption {
	return func(a *Assembler) {
		a.extras = extras
	}
}

func NewAssembler(cfg config.FeedConfig, source Source, logger logging.Logger, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		cfg:    cfg,
		source: source,
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// entry pairs a rendered item with its publication time so items from all
// sources can be ordered together.
type entry struct {
	published time.Time
	item      Item
}

// Assemble fetches favourites and bookmarks, deduplicates by post ID, sorts
// newest first, truncates to the configured limit, and builds the document.
// Both sources are always attempted; a hard failure on either source's first
// page fails the whole assembly. selfURL becomes the feed's atom self link.
func (a *Assembler) Assemble(ctx context.Context, selfURL string) (*Document, error) {
	var favourites, bookmarks []models.PostRecord

	// The two sources are independent; fetching them concurrently is a
	// latency optimization only. Merge order stays deterministic:
	// favourites first, bookmarks second.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		favourites, err = a.source.Collect(gctx, mastodon.EndpointFavourites, a.cfg.ItemLimit)
		return err
	})
	g.Go(func() error {
		var err error
		bookmarks, err = a.source.Collect(gctx, mastodon.EndpointBookmarks, a.cfg.ItemLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assembling feed: %w", err)
	}

	merged := make([]models.PostRecord, 0, len(favourites)+len(bookmarks))
	merged = append(merged, favourites...)
	merged = append(merged, bookmarks...)

	if a.cfg.PublicOnly {
		merged = keepPublic(merged)
	}

	posts := dedupe(merged)
	a.logger.WithFields(logging.Fields{
		"favourites": len(favourites),
		"bookmarks":  len(bookmarks),
		"unique":     len(posts),
	}).Debug("Merged and deduplicated posts")

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if len(posts) > a.cfg.ItemLimit {
		posts = posts[:a.cfg.ItemLimit]
	}

	entries := make([]entry, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, entry{published: post.CreatedAt, item: BuildItem(post)})
	}

	if a.extras != nil {
		extra := a.extras.Collect(ctx)
		if len(extra) > 0 {
			entries = append(entries, extra...)
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].published.After(entries[j].published)
			})
		}
	}

	doc := NewDocument(
		fmt.Sprintf("Mastodon favourites and bookmarks of @%s", a.cfg.Username),
		a.cfg.ChannelLink(),
		fmt.Sprintf("A feed of the Mastodon favourites and bookmarks of @%s", a.cfg.Username),
		selfURL,
	)
	for _, e := range entries {
		doc.Channel.Items = append(doc.Channel.Items, e.item)
	}

	a.logger.WithField("items", len(doc.Channel.Items)).Info("Feed assembled")
	return doc, nil
}

// dedupe removes records sharing an ID. A record keeps the position of its
// first occurrence, but the last occurrence's value wins, so a post that is
// both favourited and bookmarked collapses to the bookmark record.
func dedupe(records []models.PostRecord) []models.PostRecord {
	index := make(map[string]int, len(records))
	unique := make([]models.PostRecord, 0, len(records))
	for _, r := range records {
		if at, seen := index[r.ID]; seen {
			unique[at] = r
			continue
		}
		index[r.ID] = len(unique)
		unique = append(unique, r)
	}
	return unique
}

func keepPublic(records []models.PostRecord) []models.PostRecord {
	public := records[:0]
	for _, r := range records {
		if r.IsPublic() {
			public = append(public, r)
		}
	}
	return public
}
