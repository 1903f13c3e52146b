package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ping13/star-collector/pkg/logging"
	"github.com/ping13/star-collector/pkg/middleware"
)

const feedContentType = "application/rss+xml; charset=utf-8"

type FeedHandler struct {
	assembler FeedAssembler
	selfURL   string
	logger    logging.Logger
	metrics   *FeedMetrics
}

// NewFeedHandler builds the handler serving the rendered feed. selfURL, when
// non-empty, overrides the request-derived URL in the feed's self link,
// which matters behind proxies that rewrite the public address entirely.
func NewFeedHandler(assembler FeedAssembler, selfURL string, logger logging.Logger, metrics *FeedMetrics) *FeedHandler {
	return &FeedHandler{
		assembler: assembler,
		selfURL:   selfURL,
		logger:    logger,
		metrics:   metrics,
	}
}

func (h *FeedHandler) Handle(c *gin.Context) {
	selfURL := h.selfURL
	if selfURL == "" {
		selfURL = requestURL(c)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	log := middleware.GetContextLogger(c, h.logger)

	doc, err := h.assembler.Assemble(ctx, selfURL)
	if err != nil {
		h.metrics.IncFeed("assembly_error")
		log.WithField("error", err.Error()).Error("Failed to assemble feed")

		c.String(http.StatusBadGateway, "Failed to build feed: the upstream instance could not be reached.\n")
		return
	}

	body, err := doc.Render()
	if err != nil {
		h.metrics.IncFeed("render_error")
		log.WithField("error", err.Error()).Error("Failed to render feed")

		c.String(http.StatusInternalServerError, "Failed to render feed.\n")
		return
	}

	if len(doc.Channel.Items) == 0 {
		h.metrics.IncFeed("empty")
		log.Warn("Serving empty feed")
	} else {
		h.metrics.IncFeed("success")
	}

	c.Data(http.StatusOK, feedContentType, body)
}

// requestURL reconstructs the externally visible URL of the request,
// trusting the usual proxy headers for scheme and host.
func requestURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		scheme = strings.TrimSpace(parts[0])
	}

	host := c.Request.Host
	if forwarded := c.GetHeader("X-Forwarded-Host"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		host = strings.TrimSpace(parts[0])
	}

	return scheme + "://" + host + c.Request.URL.RequestURI()
}
