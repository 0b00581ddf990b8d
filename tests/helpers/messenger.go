package helpers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xiaot623/anketa/internal/domain"
)

// ErrSendFailed is returned for recipients configured to fail.
var ErrSendFailed = errors.New("send failed")

// Sent is one outbound operation captured by RecordingMessenger.
type Sent struct {
	Op        string // text, voice, video, ack, delete
	To        domain.UserID
	Text      string
	Ref       string
	Alert     bool
	ParseMode string
	Keyboard  *domain.Keyboard
	MessageID domain.MessageRef
}

// RecordingMessenger implements domain.Messenger in memory.
type RecordingMessenger struct {
	mu       sync.Mutex
	sent     []Sent
	failFor  map[domain.UserID]bool
	failOps  map[string]bool
	sequence int
}

func NewRecordingMessenger() *RecordingMessenger {
	return &RecordingMessenger{failFor: map[domain.UserID]bool{}, failOps: map[string]bool{}}
}

// FailFor makes every send to id fail.
func (m *RecordingMessenger) FailFor(id domain.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[id] = true
}

// FailOp makes every operation of the given kind fail.
func (m *RecordingMessenger) FailOp(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOps[op] = true
}

func (m *RecordingMessenger) record(s Sent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[s.To] || m.failOps[s.Op] {
		return fmt.Errorf("%s to %s: %w", s.Op, s.To, ErrSendFailed)
	}
	m.sent = append(m.sent, s)
	return nil
}

func (m *RecordingMessenger) SendText(_ context.Context, to domain.UserID, text string, opts domain.SendOptions) (domain.MessageRef, error) {
	m.mu.Lock()
	m.sequence++
	ref := domain.MessageRef(fmt.Sprintf("msg-%d", m.sequence))
	m.mu.Unlock()

	err := m.record(Sent{Op: "text", To: to, Text: text, ParseMode: opts.ParseMode, Keyboard: opts.Keyboard, MessageID: ref})
	if err != nil {
		return "", err
	}
	return ref, nil
}

func (m *RecordingMessenger) SendVoice(_ context.Context, to domain.UserID, ref, caption string) error {
	return m.record(Sent{Op: "voice", To: to, Ref: ref, Text: caption})
}

func (m *RecordingMessenger) SendVideo(_ context.Context, to domain.UserID, ref, caption string) error {
	return m.record(Sent{Op: "video", To: to, Ref: ref, Text: caption})
}

func (m *RecordingMessenger) AnswerSelection(_ context.Context, to domain.UserID, _ string, text string, alert bool) error {
	return m.record(Sent{Op: "ack", To: to, Text: text, Alert: alert})
}

func (m *RecordingMessenger) DeleteMessage(_ context.Context, to domain.UserID, ref domain.MessageRef) error {
	return m.record(Sent{Op: "delete", To: to, MessageID: ref})
}

// All returns every recorded operation.
func (m *RecordingMessenger) All() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sent, len(m.sent))
	copy(out, m.sent)
	return out
}

// To returns operations addressed to id.
func (m *RecordingMessenger) To(id domain.UserID) []Sent {
	var out []Sent
	for _, s := range m.All() {
		if s.To == id {
			out = append(out, s)
		}
	}
	return out
}

// Last returns the most recent operation addressed to id.
func (m *RecordingMessenger) Last(id domain.UserID) (Sent, bool) {
	sent := m.To(id)
	if len(sent) == 0 {
		return Sent{}, false
	}
	return sent[len(sent)-1], true
}

// Reset drops everything recorded so far.
func (m *RecordingMessenger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}
