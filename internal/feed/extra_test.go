package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ping13/star-collector/pkg/logging"
)

const extraFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Blog</title>
    <link>https://blog.example</link>
    <description>Posts</description>
    <item>
      <title>Older post</title>
      <link>https://blog.example/older</link>
      <guid isPermaLink="false">blog-older</guid>
      <pubDate>Mon, 01 Jan 2024 10:00:00 +0000</pubDate>
      <description>older body</description>
    </item>
    <item>
      <title>Newer post</title>
      <link>https://blog.example/newer</link>
      <pubDate>Tue, 02 Jan 2024 10:00:00 +0000</pubDate>
      <description>newer body</description>
    </item>
  </channel>
</rss>`

func TestExtraSourcesCollect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, extraFeedXML)
	}))
	defer srv.Close()

	extras := NewExtraSources([]string{srv.URL}, 10, logging.NewLogger())
	entries := extras.Collect(context.Background())

	require.Len(t, entries, 2)
	assert.Equal(t, "Newer post", entries[0].item.Title)
	assert.Equal(t, "Older post", entries[1].item.Title)
	assert.True(t, entries[0].published.After(entries[1].published))

	// An explicit GUID passes through; a missing one falls back to the link.
	assert.Equal(t, "https://blog.example/newer", entries[0].item.GUID.Value)
	assert.Equal(t, "true", entries[0].item.GUID.IsPermaLink)
	assert.Equal(t, "blog-older", entries[1].item.GUID.Value)
	assert.Equal(t, "false", entries[1].item.GUID.IsPermaLink)
}

func TestExtraSourcesRespectsLimitPerFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, extraFeedXML)
	}))
	defer srv.Close()

	extras := NewExtraSources([]string{srv.URL}, 1, logging.NewLogger())
	entries := extras.Collect(context.Background())

	require.Len(t, entries, 1)
	assert.Equal(t, "Newer post", entries[0].item.Title)
}

func TestExtraSourcesSkipsBrokenFeeds(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, extraFeedXML)
	}))
	defer healthy.Close()

	extras := NewExtraSources([]string{broken.URL, healthy.URL}, 10, logging.NewLogger())
	entries := extras.Collect(context.Background())

	// The broken feed is skipped, the healthy one still contributes.
	require.Len(t, entries, 2)
}

func TestExtraSourcesMergeIntoAssembly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, extraFeedXML)
	}))
	defer srv.Close()

	extras := NewExtraSources([]string{srv.URL}, 10, logging.NewLogger())
	a := NewAssembler(testConfig(10), &sourceStub{}, logging.NewLogger(), WithExtraSources(extras))

	doc, err := a.Assemble(context.Background(), "https://feeds.example/feed")
	require.NoError(t, err)
	require.Len(t, doc.Channel.Items, 2)
	assert.Equal(t, "Newer post", doc.Channel.Items[0].Title)
}
