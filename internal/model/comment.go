package model

import "time"

// Comment is a single piece of anonymous feedback.
// IDs are assigned by the repository on insert and increase monotonically.
// A comment is immutable after insert; the only lifecycle transition left
// is deletion, which also removes the referenced attachment, if any.
type Comment struct {
	ID            int64     `json:"id"`
	Text          string    `json:"text"`
	AttachmentRef *string   `json:"attachment_ref"`
	CreatedAt     time.Time `json:"created_at"`
}

// HasAttachment reports whether the comment carries a stored attachment.
func (c *Comment) HasAttachment() bool {
	return c.AttachmentRef != nil && *c.AttachmentRef != ""
}
