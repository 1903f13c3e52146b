package models

import "time"

// Media attachment kinds as reported by the source instance. Anything else
// is rendered as a plain link.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaGifv  = "gifv"
)

// MediaAttachment is one media file attached to a post.
type MediaAttachment struct {
	Kind        string
	URL         string
	Description string
	SizeBytes   int64
}

// PostRecord is the normalized representation of one fetched post. ID is the
// sole deduplication key across sources.
type PostRecord struct {
	ID               string
	AuthorHandle     string
	ContentHTML      string
	URL              string
	CreatedAt        time.Time
	Visibility       string
	MediaAttachments []MediaAttachment
}

// IsPublic reports whether the post is visible to everyone. Records fetched
// from sources that do not carry a visibility field count as public.
func (p PostRecord) IsPublic() bool {
	return p.Visibility == "" || p.Visibility == "public"
}
