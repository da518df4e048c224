// Package models defines the core domain types for Lightbox.
package models

import (
	"errors"
	"strings"
	"time"
)

// AttachmentKind classifies what an attachment contains.
type AttachmentKind string

const (
	AttachmentKindImage    AttachmentKind = "image"
	AttachmentKindVideo    AttachmentKind = "video"
	AttachmentKindAudio    AttachmentKind = "audio"
	AttachmentKindDocument AttachmentKind = "document"
	AttachmentKindFile     AttachmentKind = "file"
)

var (
	ErrInvalidAttachmentKind = errors.New("invalid attachment kind")
	ErrMissingSource         = errors.New("attachment source is required")
)

// Valid reports whether k is a known kind.
func (k AttachmentKind) Valid() bool {
	switch k {
	case AttachmentKindImage, AttachmentKindVideo, AttachmentKindAudio,
		AttachmentKindDocument, AttachmentKindFile:
		return true
	}
	return false
}

// KindFromMime maps a MIME type onto an AttachmentKind, defaulting to the
// generic file kind.
func KindFromMime(mime string) AttachmentKind {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "image/"):
		return AttachmentKindImage
	case strings.HasPrefix(mime, "video/"):
		return AttachmentKindVideo
	case strings.HasPrefix(mime, "audio/"):
		return AttachmentKindAudio
	case strings.HasPrefix(mime, "text/"),
		mime == "application/pdf",
		mime == "application/json",
		strings.HasSuffix(mime, "+json"),
		strings.HasSuffix(mime, "markdown"):
		return AttachmentKindDocument
	default:
		return AttachmentKindFile
	}
}

// Attachment is a file attached to a message.
type Attachment struct {
	// ID is the unique identifier for the attachment row.
	ID string `json:"id"`

	// MessageID is the message this attachment belongs to.
	MessageID string `json:"message_id"`

	// Kind classifies the content for preview selection.
	Kind AttachmentKind `json:"kind"`

	// Source locates the content: a URL, a local path, or a blob reference.
	Source string `json:"source"`

	// Name is the display file name.
	Name string `json:"name"`

	// MimeType is the declared content type, when known.
	MimeType string `json:"mime_type,omitempty"`

	// SizeBytes is the content length, when known.
	SizeBytes int64 `json:"size_bytes,omitempty"`

	// Width and Height carry pixel dimensions for images and videos.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// DurationSeconds carries the play length for audio and video.
	DurationSeconds float64 `json:"duration_seconds,omitempty"`

	// Position orders attachments within their message.
	Position int `json:"position"`

	// CreatedAt is when the attachment row was stored.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the attachment for storage.
func (a *Attachment) Validate() error {
	v := &ValidationErrors{}
	if strings.TrimSpace(a.Source) == "" {
		v.Add("source", ErrMissingSource)
	}
	if a.Kind == "" {
		v.AddMessage("kind", "attachment kind is required")
	} else if !a.Kind.Valid() {
		v.Add("kind", ErrInvalidAttachmentKind)
	}
	if a.SizeBytes < 0 {
		v.AddMessage("size_bytes", "size cannot be negative")
	}
	if a.Position < 0 {
		v.AddMessage("position", "position cannot be negative")
	}
	return v.Err()
}
