package model

import "time"

// Attachment references an uploaded file. URL and Name are always set or cleared together.
type Attachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// ChangelogEntry is a versioned note attached to a document.
type ChangelogEntry struct {
	ID          string      `json:"id"`
	DocumentID  string      `json:"doc_id"`
	Version     string      `json:"version"`
	Description string      `json:"description"`
	Attachment  *Attachment `json:"attachment,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ChangelogPatch replaces version and description and optionally changes the attachment.
// RemoveAttachment wins over Attachment.
type ChangelogPatch struct {
	Version          string
	Description      string
	Attachment       *Attachment
	RemoveAttachment bool
}
