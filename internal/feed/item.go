package feed

import (
	"fmt"
	"html"
	"regexp"

	"github.com/ping13/star-collector/pkg/models"
)

// titleRuneLimit is the number of display characters of post content kept in
// the item title. The cut is on runes, not bytes, so multi-byte text is never
// split mid-codepoint.
const titleRuneLimit = 100

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// BuildItem converts one post into a syndication item.
func BuildItem(post models.PostRecord) Item {
	item := Item{
		Title:       buildTitle(post),
		Link:        post.URL,
		GUID:        GUID{IsPermaLink: "false", Value: post.ID},
		PubDate:     post.CreatedAt.Format("Mon, 02 Jan 2006 15:04:05 -0700"),
		Description: buildDescription(post),
	}

	for _, m := range post.MediaAttachments {
		item.Enclosures = append(item.Enclosures, Enclosure{
			URL:    m.URL,
			Type:   enclosureType(m.Kind),
			Length: m.SizeBytes,
		})
	}

	return item
}

// buildTitle renders "@{handle}: {first 100 characters of plain text}...".
// The ellipsis is appended unconditionally, also for short content.
func buildTitle(post models.PostRecord) string {
	plain := htmlTagRe.ReplaceAllString(post.ContentHTML, "")
	runes := []rune(plain)
	if len(runes) > titleRuneLimit {
		runes = runes[:titleRuneLimit]
	}
	return fmt.Sprintf("@%s: %s...", post.AuthorHandle, string(runes))
}

// buildDescription assembles the rich-text body, a link back to the original
// post, and a rendered attachments section, then escapes the whole fragment
// once so it is embedded as literal text rather than markup. Strict readers
// never see raw HTML from the source instance.
func buildDescription(post models.PostRecord) string {
	desc := post.ContentHTML
	desc += fmt.Sprintf("\n<p><a href='%s'>Link to original post</a></p>\n", html.EscapeString(post.URL))

	if len(post.MediaAttachments) > 0 {
		desc += "\n<h3>Attachments:</h3>\n"
		for _, m := range post.MediaAttachments {
			desc += renderAttachment(m)
		}
	}

	return html.EscapeString(desc)
}

// renderAttachment converts one attachment into an embeddable markup
// fragment. Interpolated values are escaped so hostile alt text or URLs
// cannot break out of the fragment.
func renderAttachment(m models.MediaAttachment) string {
	u := html.EscapeString(m.URL)
	switch m.Kind {
	case models.MediaImage, models.MediaGifv:
		return fmt.Sprintf("<p><img src='%s' alt='%s' style='max-width:100%%;'/></p>\n", u, html.EscapeString(m.Description))
	case models.MediaVideo:
		return fmt.Sprintf("<p><video src='%s' controls style='max-width:100%%;'>Your reader does not support the video tag.</video></p>\n", u)
	default:
		return fmt.Sprintf("<p>Attachment: <a href='%s'>%s</a></p>\n", u, html.EscapeString(m.Kind))
	}
}

// enclosureType maps an attachment kind to an enclosure MIME type. The
// mapping is coarse on purpose: the source does not declare real content
// types, so images stay image/jpeg and everything else claims video/mp4.
func enclosureType(kind string) string {
	switch kind {
	case models.MediaImage, models.MediaGifv:
		return "image/jpeg"
	default:
		return "video/mp4"
	}
}
