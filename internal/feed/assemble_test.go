package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ping13/star-collector/internal/config"
	"github.com/ping13/star-collector/pkg/clients/mastodon"
	"github.com/ping13/star-collector/pkg/logging"
	"github.com/ping13/star-collector/pkg/models"
)

type sourceStub struct {
	favourites []models.PostRecord
	bookmarks  []models.PostRecord
	favErr     error
	markErr    error
}

func (s *sourceStub) Collect(ctx context.Context, endpoint string, budget int) ([]models.PostRecord, error) {
	switch endpoint {
	case mastodon.EndpointFavourites:
		return s.favourites, s.favErr
	case mastodon.EndpointBookmarks:
		return s.bookmarks, s.markErr
	default:
		return nil, errors.New("unknown endpoint")
	}
}

func post(id string, created time.Time) models.PostRecord {
	return models.PostRecord{
		ID:           id,
		AuthorHandle: "alice",
		ContentHTML:  "<p>post " + id + "</p>",
		URL:          "https://mastodon.example/@alice/" + id,
		CreatedAt:    created,
		Visibility:   "public",
	}
}

func testConfig(limit int) config.FeedConfig {
	return config.FeedConfig{
		AccessToken:     "tok",
		InstanceBaseURL: "https://mastodon.example",
		Username:        "alice",
		ItemLimit:       limit,
	}
}

func TestAssembleMergesDedupesAndSorts(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	shared := post("7", base.Add(time.Hour))
	source := &sourceStub{
		favourites: []models.PostRecord{shared, post("1", base)},
		bookmarks:  []models.PostRecord{post("9", base.Add(2 * time.Hour)), shared},
	}

	a := NewAssembler(testConfig(10), source, logging.NewLogger())
	doc, err := a.Assemble(context.Background(), "https://feeds.example/feed")
	require.NoError(t, err)

	// Two sources, one overlapping post: exactly 3 items, newest first.
	require.Len(t, doc.Channel.Items, 3)
	assert.Equal(t, "9", doc.Channel.Items[0].GUID.Value)
	assert.Equal(t, "7", doc.Channel.Items[1].GUID.Value)
	assert.Equal(t, "1", doc.Channel.Items[2].GUID.Value)
}

func TestAssembleLaterSourceWinsOnCollision(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fav := post("7", created)
	fav.ContentHTML = "<p>favourite copy</p>"
	mark := post("7", created)
	mark.ContentHTML = "<p>bookmark copy</p>"

	source := &sourceStub{
		favourites: []models.PostRecord{fav},
		bookmarks:  []models.PostRecord{mark},
	}

	a := NewAssembler(testConfig(10), source, logging.NewLogger())
	doc, err := a.Assemble(context.Background(), "https://feeds.example/feed")
	require.NoError(t, err)

	require.Len(t, doc.Channel.Items, 1)
	assert.Contains(t, doc.Channel.Items[0].Description, "bookmark copy")
}

func TestAssembleDedupIsIdempotent(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &sourceStub{
		favourites: []models.PostRecord{post("1", base), post("2", base.Add(time.Minute)), post("1", base)},
		bookmarks:  []models.PostRecord{post("2", base.Add(time.Minute))},
	}

	a := NewAssembler(testConfig(10), source, logging.NewLogger())

	first, err := a.Assemble(context.Background(), "https://feeds.example/feed")
	require.NoError(t, err)
	second, err := a.Assemble(context.Background(), "https://feeds.example/feed")
	require.NoError(t, err)

	require.Len(t, first.Channel.Items, 2)
	assert.Equal(t, first.Channel.Items, second.Channel.Items)
}

func TestAssembleStableOrderForEqualTimestamps(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &sourceStub{
		favourites: []models.PostRecord{post("a", created), post("b", created), post("c", created)},
	}

	a := NewAssembler(testConfig(10), source, logging.NewLogger())
	doc, err := a.Assemble(context.Background(), "https://feeds.example/feed")
	require.NoError(t, err)

	require.Len(t, doc.Channel.Items, 3)
	// Equal timestamps keep their insertion order.
	assert.Equal(t, "a", doc.Channel.Items[0].GUID.Value)
	assert.Equal(t, "b", doc.Channel.Items[1].GUID.Value)
	assert.Equal(t, "c", doc.Channel.Items[2].GUID.Value)
}

func TestAssembleEnforcesItemLimit(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var favourites []models.PostRecord
	for i := 0; i < 8; i++ {
		favourites = append(favourites, post(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute)))
	}
	source := &sourceStub{favourites: favourites}

	a := NewAssembler(testConfig(3), source, logging.NewLogger())
	doc, err := a.Assemble(context.Background(), "https://feeds.example/feed")
	require.NoError(t, err)

	require.Len(t, doc.Channel.Items, 3)
	// The newest three survive truncation.
	assert.Equal(t, "h", doc.Channel.Items[0].GUID.Value)
}

func TestAssembleFailsWhenEitherSourceFails(t *testing.T) {
	source := &sourceStub{favErr: errors.New("connection refused")}
	a := NewAssembler(testConfig(5), source, logging.NewLogger())

	_, err := a.Assemble(context.Background(), "https://feeds.example/feed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	source = &sourceStub{markErr: errors.New("connection reset")}
	a = NewAssembler(testConfig(5), source, logging.NewLogger())
	_, err = a.Assemble(context.Background(), "https://feeds.example/feed")
	require.Error(t, err)
}

func TestAssembleEmptySourcesYieldEmptyDocument(t *testing.T) {
	a := NewAssembler(testConfig(5), &sourceStub{}, logging.NewLogger())

	doc, err := a.Assemble(context.Background(), "https://feeds.example/feed")
	require.NoError(t, err)
	assert.Empty(t, doc.Channel.Items)
}

func TestAssembleChannelMetadata(t *testing.T) {
	a := NewAssembler(testConfig(5), &sourceStub{}, logging.NewLogger())

	doc, err := a.Assemble(context.Background(), "https://feeds.example/feed.rss")
	require.NoError(t, err)

	assert.Contains(t, doc.Channel.Title, "@alice")
	assert.Equal(t, "https://mastodon.example/@alice", doc.Channel.Link)
	assert.Contains(t, doc.Channel.Description, "@alice")
	assert.Equal(t, "https://feeds.example/feed.rss", doc.Channel.SelfLink.Href)
	assert.Equal(t, "self", doc.Channel.SelfLink.Rel)
}

func TestAssemblePublicOnlyFilter(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	private := post("2", base.Add(time.Minute))
	private.Visibility = "private"
	source := &sourceStub{
		favourites: []models.PostRecord{post("1", base), private},
	}

	cfg := testConfig(10)
	cfg.PublicOnly = true
	a := NewAssembler(cfg, source, logging.NewLogger())

	doc, err := a.Assemble(context.Background(), "https://feeds.example/feed")
	require.NoError(t, err)
	require.Len(t, doc.Channel.Items, 1)
	assert.Equal(t, "1", doc.Channel.Items[0].GUID.Value)
}
