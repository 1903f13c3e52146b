package mastodon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ping13/star-collector/pkg/models"
)

// Status is the wire representation of a Mastodon status, reduced to the
// fields the feed uses. See https://docs.joinmastodon.org/entities/Status/
type Status struct {
	ID               string       `json:"id"`
	CreatedAt        string       `json:"created_at"`
	URL              string       `json:"url"`
	Content          string       `json:"content"`
	Visibility       string       `json:"visibility"`
	Account          Account      `json:"account"`
	MediaAttachments []Attachment `json:"media_attachments"`
}

type Account struct {
	Acct        string `json:"acct"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type Attachment struct {
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Meta        struct {
		Original struct {
			Size ByteSize `json:"size"`
		} `json:"original"`
	} `json:"meta"`
}

// ByteSize decodes a declared media byte length. Instances report it as a
// number, a numeric string, or not at all; anything unusable decodes to zero.
type ByteSize int64

func (b *ByteSize) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*b = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*b = 0
			return nil
		}
		*b = ByteSize(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		*b = 0
		return nil
	}
	*b = ByteSize(n)
	return nil
}

// handle returns the account's handle, preferring the federated acct form.
func (a Account) handle() string {
	if a.Acct != "" {
		return a.Acct
	}
	return a.Username
}

// ToPostRecord normalizes the wire status into the feed's post model. An
// unparseable creation timestamp makes the whole page undecodable.
func (s Status) ToPostRecord() (models.PostRecord, error) {
	createdAt, err := time.Parse(time.RFC3339, s.CreatedAt)
	if err != nil {
		return models.PostRecord{}, fmt.Errorf("failed to decode response: status %s: %w", s.ID, err)
	}

	record := models.PostRecord{
		ID:           s.ID,
		AuthorHandle: s.Account.handle(),
		ContentHTML:  s.Content,
		URL:          s.URL,
		CreatedAt:    createdAt,
		Visibility:   s.Visibility,
	}
	for _, m := range s.MediaAttachments {
		record.MediaAttachments = append(record.MediaAttachments, models.MediaAttachment{
			Kind:        m.Type,
			URL:         m.URL,
			Description: m.Description,
			SizeBytes:   int64(m.Meta.Original.Size),
		})
	}

	return record, nil
}
