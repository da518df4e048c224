package models

import (
	"errors"
	"testing"
)

func TestKindFromMime(t *testing.T) {
	cases := []struct {
		mime string
		want AttachmentKind
	}{
		{"image/png", AttachmentKindImage},
		{"IMAGE/JPEG", AttachmentKindImage},
		{"video/mp4", AttachmentKindVideo},
		{"audio/ogg", AttachmentKindAudio},
		{"text/markdown", AttachmentKindDocument},
		{"application/pdf", AttachmentKindDocument},
		{"application/ld+json", AttachmentKindDocument},
		{"application/zip", AttachmentKindFile},
		{"", AttachmentKindFile},
	}
	for _, tc := range cases {
		if got := KindFromMime(tc.mime); got != tc.want {
			t.Fatalf("KindFromMime(%q) = %q, want %q", tc.mime, got, tc.want)
		}
	}
}

func TestAttachmentValidate(t *testing.T) {
	att := Attachment{Kind: AttachmentKindImage, Source: "https://cdn/a.png", Name: "a.png"}
	if err := att.Validate(); err != nil {
		t.Fatalf("valid attachment rejected: %v", err)
	}

	att = Attachment{Kind: "hologram", Source: "x"}
	err := att.Validate()
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !errors.Is(err, ErrInvalidAttachmentKind) {
		t.Fatalf("expected ErrInvalidAttachmentKind, got %v", err)
	}

	att = Attachment{Kind: AttachmentKindImage}
	if err := att.Validate(); !errors.Is(err, ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource, got %v", err)
	}
}

func TestMessageValidateFlattensAttachmentFields(t *testing.T) {
	msg := Message{
		ConversationID: "c1",
		Author:         "ada",
		Attachments: []Attachment{
			{Kind: AttachmentKindImage, Source: "ok.png"},
			{Kind: AttachmentKindImage},
		},
	}

	err := msg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}

	var list *ValidationErrors
	if !errors.As(err, &list) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(list.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(list.Errors), err)
	}
	if list.Errors[0].Field != "attachments[1].source" {
		t.Fatalf("expected field attachments[1].source, got %q", list.Errors[0].Field)
	}
}

func TestMessageValidateRequiresContent(t *testing.T) {
	msg := Message{ConversationID: "c1", Author: "ada"}
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for empty message")
	}

	msg.Body = "hello"
	if err := msg.Validate(); err != nil {
		t.Fatalf("body-only message rejected: %v", err)
	}

	msg.Body = ""
	msg.Attachments = []Attachment{{Kind: AttachmentKindImage, Source: "a.png"}}
	if err := msg.Validate(); err != nil {
		t.Fatalf("attachment-only message rejected: %v", err)
	}
}

func TestConversationValidate(t *testing.T) {
	conv := Conversation{Title: "  "}
	if err := conv.Validate(); err == nil {
		t.Fatal("expected error for blank title")
	}
	conv.Title = "design review"
	if err := conv.Validate(); err != nil {
		t.Fatalf("valid conversation rejected: %v", err)
	}
}
