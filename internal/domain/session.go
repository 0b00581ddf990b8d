package domain

import (
	"strconv"
	"strings"
	"time"
)

// UserID is the numeric identity of a chat participant.
type UserID int64

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseUserID accepts a positive decimal id.
func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidUserID
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidUserID
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidUserID
	}
	return UserID(n), nil
}

// User describes the sender of an event.
type User struct {
	ID       UserID `json:"id"`
	FullName string `json:"full_name"`
	Username string `json:"username,omitempty"`
}

// Answer is one recorded response.
type Answer struct {
	Kind  AnswerKind `json:"kind"`
	Value string     `json:"value"`
}

func TextValue(v string) Answer      { return Answer{Kind: AnswerText, Value: v} }
func ChoiceValue(v string) Answer    { return Answer{Kind: AnswerChoice, Value: v} }
func MediaReference(v string) Answer { return Answer{Kind: AnswerMedia, Value: v} }

// Answers is an insertion-ordered mapping from question label to answer.
// The zero value is ready to use.
type Answers struct {
	keys   []string
	values map[string]Answer
}

// Set records an answer. Overwriting keeps the first position.
func (a *Answers) Set(label string, v Answer) {
	if a.values == nil {
		a.values = make(map[string]Answer)
	}
	if _, ok := a.values[label]; !ok {
		a.keys = append(a.keys, label)
	}
	a.values[label] = v
}

func (a *Answers) Get(label string) (Answer, bool) {
	v, ok := a.values[label]
	return v, ok
}

func (a *Answers) Len() int {
	return len(a.keys)
}

// Keys returns labels in insertion order.
func (a *Answers) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Each calls fn for every answer in insertion order.
func (a *Answers) Each(fn func(label string, v Answer)) {
	for _, k := range a.keys {
		fn(k, a.values[k])
	}
}

// Session is the in-memory conversational progress of one user.
type Session struct {
	UserID      UserID
	State       State
	Answers     Answers
	MenuMessage MessageRef
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSession creates a session positioned at StateStart.
func NewSession(userID UserID, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		State:     StateStart,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
