package domain

import "context"

// MessageRef identifies a delivered outbound message.
type MessageRef string

// Button is a single keyboard button.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data,omitempty"`
}

// Keyboard is the input affordance attached to a message.
type Keyboard struct {
	Kind KeyboardKind `json:"kind"`
	Rows [][]Button   `json:"rows,omitempty"`
}

// SendOptions tunes a text delivery.
type SendOptions struct {
	Keyboard  *Keyboard
	ParseMode string
}

// Messenger is the outbound half of the messaging channel.
// Media references are either local file paths or opaque remote handles.
type Messenger interface {
	SendText(ctx context.Context, to UserID, text string, opts SendOptions) (MessageRef, error)
	SendVoice(ctx context.Context, to UserID, ref, caption string) error
	SendVideo(ctx context.Context, to UserID, ref, caption string) error
	AnswerSelection(ctx context.Context, to UserID, selectionID, text string, alert bool) error
	DeleteMessage(ctx context.Context, to UserID, ref MessageRef) error
}

// SessionStore holds in-flight sessions, one per user.
type SessionStore interface {
	Get(userID UserID) (*Session, bool)
	Save(session *Session)
	Delete(userID UserID)
	Count() int
}

// MediaStore is the media reference store. Get returns "" for unset keys.
type MediaStore interface {
	Get(key MediaKey) string
	Set(ctx context.Context, key MediaKey, ref string) error
	All() map[MediaKey]string
}

// CaptureRegistry tracks operators waiting to register a clip.
type CaptureRegistry interface {
	Arm(userID UserID, key MediaKey)
	// Take consumes the pending key for userID, if any.
	Take(userID UserID) (MediaKey, bool)
}

// ReviewerStore is the ordered list of authorized reviewers. The first
// registered reviewer is the primary one.
type ReviewerStore interface {
	ListReviewers(ctx context.Context) ([]UserID, error)
	AddReviewer(ctx context.Context, id UserID) error
	RemoveReviewer(ctx context.Context, id UserID) error
}
