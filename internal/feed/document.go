package feed

import (
	"bytes"
	"encoding/xml"
)

// Namespace declarations carried on the rss root. Media RSS is declared
// though unused by plain enclosures; some readers expect it.
const (
	atomNS  = "http://www.w3.org/2005/Atom"
	mediaNS = "http://search.yahoo.com/mrss/"
)

// Document is the typed model of the rendered RSS 2.0 feed. It is built once
// by the assembler and serialized in a single pass, in document order.
type Document struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	AtomNS  string   `xml:"xmlns:atom,attr"`
	MediaNS string   `xml:"xmlns:media,attr"`
	Channel Channel  `xml:"channel"`
}

type Channel struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	SelfLink    AtomLink `xml:"atom:link"`
	Items       []Item   `xml:"item"`
}

// AtomLink is the feed's self-referential link.
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type Item struct {
	Title       string      `xml:"title"`
	Link        string      `xml:"link"`
	GUID        GUID        `xml:"guid"`
	PubDate     string      `xml:"pubDate"`
	Description string      `xml:"description"`
	Enclosures  []Enclosure `xml:"enclosure"`
	Categories  []string    `xml:"category,omitempty"`
}

// GUID is an opaque identifier, not a dereferenceable URL, so isPermaLink is
// always false for post items.
type GUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type Enclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int64  `xml:"length,attr"`
}

// NewDocument builds an empty feed document with channel metadata filled in.
func NewDocument(title, link, description, selfURL string) *Document {
	return &Document{
		Version: "2.0",
		AtomNS:  atomNS,
		MediaNS: mediaNS,
		Channel: Channel{
			Title:       title,
			Link:        link,
			Description: description,
			SelfLink: AtomLink{
				Href: selfURL,
				Rel:  "self",
				Type: "application/rss+xml",
			},
		},
	}
}

// Render serializes the document as a well-formed XML byte sequence. All
// character data is escaped here exactly once; earlier stages hand over
// strings whose HTML-level escaping is already settled.
func (d *Document) Render() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}
