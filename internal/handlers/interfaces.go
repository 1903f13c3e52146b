package handlers

import (
	"context"

	"github.com/ping13/star-collector/internal/feed"
)

type FeedAssembler interface {
	Assemble(ctx context.Context, selfURL string) (*feed.Document, error)
}
