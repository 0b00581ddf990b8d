// Package flow implements the questionnaire state machine.
package flow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/xiaot623/anketa/internal/dispatch"
	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/logging"
	"github.com/xiaot623/anketa/internal/metrics"
)

// Outcome is what handling one event did to the session.
type Outcome string

const (
	OutcomeStarted   Outcome = "started"
	OutcomeAdvanced  Outcome = "advanced"
	OutcomeRejected  Outcome = "rejected"
	OutcomeStale     Outcome = "stale"
	OutcomeCompleted Outcome = "completed"
	OutcomeNoSession Outcome = "no_session"
)

// Rejection reasons reported to metrics.
const (
	reasonStale  = "stale_selection"
	reasonChoice = "choice_required"
	reasonPhone  = "phone"
	reasonDate   = "date"
	reasonVoice  = "voice"
	reasonVideo  = "video"
)

// Machine drives one session per user through the questionnaire.
// It is not safe for concurrent use; events must arrive serially.
type Machine struct {
	steps      map[domain.State]*step
	menu       *domain.Keyboard
	messenger  domain.Messenger
	sessions   domain.SessionStore
	media      domain.MediaStore
	dispatcher *dispatch.Dispatcher
	metrics    metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// Config wires a Machine.
type Config struct {
	JobTypes   []string
	Messenger  domain.Messenger
	Sessions   domain.SessionStore
	Media      domain.MediaStore
	Dispatcher *dispatch.Dispatcher
	Metrics    metrics.Recorder
	Logger     *slog.Logger
	Now        func() time.Time
}

// NewMachine creates a new Machine.
func NewMachine(cfg Config) *Machine {
	m := &Machine{
		steps:      buildSteps(cfg.JobTypes),
		menu:       CategoryKeyboard(cfg.JobTypes),
		messenger:  cfg.Messenger,
		sessions:   cfg.Sessions,
		media:      cfg.Media,
		dispatcher: cfg.Dispatcher,
		metrics:    cfg.Metrics,
		logger:     logging.OrDiscard(cfg.Logger),
		now:        cfg.Now,
	}
	if m.metrics == nil {
		m.metrics = metrics.Nop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Start discards any prior progress and opens a new session.
func (m *Machine) Start(ctx context.Context, user domain.User) Outcome {
	s := domain.NewSession(user.ID, m.now())
	m.sessions.Save(s)

	m.sendClip(ctx, user.ID, domain.MediaStartVideo, StartCaption, m.messenger.SendVideo)

	s.State = domain.StateSelectCategory
	ref, err := m.messenger.SendText(ctx, user.ID, MenuText, domain.SendOptions{Keyboard: m.menu})
	if err != nil {
		m.logger.Warn("failed to send category menu", "user_id", user.ID, "error", err)
	}
	s.MenuMessage = ref
	m.touch(s)
	return OutcomeStarted
}

// Handle applies one non-start event to the sender's session.
func (m *Machine) Handle(ctx context.Context, ev domain.Event) Outcome {
	if ev.Kind == domain.EventStart {
		return m.Start(ctx, ev.From)
	}

	s, ok := m.sessions.Get(ev.From.ID)
	var st *step
	if ok {
		st = m.steps[s.State]
	}

	if ev.Kind == domain.EventSelection {
		if st == nil || (st.input != inputChoice && st.input != inputChoiceOrText) ||
			ev.Selection.Kind != st.choice || !st.accepts(ev.Selection.Value) {
			return m.stale(ctx, ev)
		}
		return m.accept(ctx, ev, s, st, domain.ChoiceValue(ev.Selection.Value))
	}

	if st == nil {
		if ev.Kind == domain.EventText {
			m.reply(ctx, ev.From.ID, StartHint, nil)
		}
		return OutcomeNoSession
	}

	log := m.logger.With("user_id", ev.From.ID, "state", s.State)

	switch st.input {
	case inputChoice:
		log.Debug("selection required")
		m.metrics.IncRejection(reasonChoice)
		m.prompt(ctx, s, st)
		return OutcomeRejected

	case inputChoiceOrText:
		text := strings.TrimSpace(ev.Text)
		if ev.Kind == domain.EventText && st.accepts(text) {
			return m.accept(ctx, ev, s, st, domain.ChoiceValue(text))
		}
		return m.accept(ctx, ev, s, st, domain.TextValue(freeText(ev)))

	case inputText:
		return m.accept(ctx, ev, s, st, domain.TextValue(freeText(ev)))

	case inputPhone:
		if ev.Kind == domain.EventContact && ev.Phone != "" {
			return m.accept(ctx, ev, s, st, domain.TextValue(ev.Phone))
		}
		if ev.Kind == domain.EventText && ValidatePhone(ev.Text) {
			return m.accept(ctx, ev, s, st, domain.TextValue(strings.TrimSpace(ev.Text)))
		}
		return m.reject(ctx, ev, reasonPhone, PhoneRetry, ContactKeyboard())

	case inputDate:
		if ev.Kind == domain.EventText && ValidateDate(ev.Text) {
			return m.accept(ctx, ev, s, st, domain.TextValue(strings.TrimSpace(ev.Text)))
		}
		return m.reject(ctx, ev, reasonDate, DateRetry, nil)

	case inputVoice:
		if ev.Kind == domain.EventVoice && ev.FileID != "" {
			return m.accept(ctx, ev, s, st, domain.MediaReference(ev.FileID))
		}
		return m.reject(ctx, ev, reasonVoice, VoiceRetry, nil)

	case inputVideo:
		if (ev.Kind == domain.EventVideo || ev.Kind == domain.EventVideoNote) && ev.FileID != "" {
			return m.accept(ctx, ev, s, st, domain.MediaReference(ev.FileID))
		}
		return m.reject(ctx, ev, reasonVideo, VideoRetry, nil)
	}
	return OutcomeRejected
}

// accept records the answer for st and follows its edge.
func (m *Machine) accept(ctx context.Context, ev domain.Event, s *domain.Session, st *step, v domain.Answer) Outcome {
	s.Answers.Set(st.label, v)

	if ev.Kind == domain.EventSelection {
		if err := m.messenger.AnswerSelection(ctx, ev.From.ID, ev.SelectionID, st.ack, false); err != nil {
			m.logger.Warn("failed to acknowledge selection", "user_id", ev.From.ID, "error", err)
		}
	}
	if st.state == domain.StateSelectCategory && s.MenuMessage != "" {
		if err := m.messenger.DeleteMessage(ctx, ev.From.ID, s.MenuMessage); err != nil {
			m.logger.Warn("failed to delete category menu", "user_id", ev.From.ID, "error", err)
		}
		s.MenuMessage = ""
	}

	if st.next.to == "" {
		m.finish(ctx, ev.From, s)
		return OutcomeCompleted
	}

	if st.next.relay != "" {
		next := m.steps[st.next.to]
		if st.next.via != "" {
			s.State = st.next.via
		}
		send := m.messenger.SendVoice
		if st.next.relay == domain.MediaVideoPrompt {
			send = m.messenger.SendVideo
		}
		m.sendClip(ctx, ev.From.ID, st.next.relay, next.prompt, send)
		s.State = next.state
		m.touch(s)
		return OutcomeAdvanced
	}

	next := m.steps[st.next.to]
	s.State = next.state
	m.touch(s)
	m.prompt(ctx, s, next)
	return OutcomeAdvanced
}

// finish dispatches the submission, acknowledges the user and clears the session.
func (m *Machine) finish(ctx context.Context, user domain.User, s *domain.Session) {
	defer func() {
		m.sessions.Delete(user.ID)
		m.metrics.SetActiveSessions(m.sessions.Count())
	}()

	res := m.dispatcher.Dispatch(ctx, user, &s.Answers)
	if len(res.Failed) > 0 {
		m.logger.Warn("submission not delivered to every reviewer", "user_id", user.ID, "failed", len(res.Failed))
	}
	m.reply(ctx, user.ID, CompletionText, RemoveKeyboard())
}

func (m *Machine) reject(ctx context.Context, ev domain.Event, reason, text string, kb *domain.Keyboard) Outcome {
	m.metrics.IncRejection(reason)
	m.reply(ctx, ev.From.ID, text, kb)
	return OutcomeRejected
}

func (m *Machine) stale(ctx context.Context, ev domain.Event) Outcome {
	m.metrics.IncRejection(reasonStale)
	if err := m.messenger.AnswerSelection(ctx, ev.From.ID, ev.SelectionID, StaleNotice, true); err != nil {
		m.logger.Warn("failed to send stale notice", "user_id", ev.From.ID, "error", err)
	}
	return OutcomeStale
}

// prompt sends the question of st. The category menu reference is kept so
// the menu can be removed once a category is picked.
func (m *Machine) prompt(ctx context.Context, s *domain.Session, st *step) {
	ref := m.reply(ctx, s.UserID, st.prompt, st.keyboard)
	if st.state == domain.StateSelectCategory && ref != "" {
		s.MenuMessage = ref
	}
}

func (m *Machine) reply(ctx context.Context, to domain.UserID, text string, kb *domain.Keyboard) domain.MessageRef {
	ref, err := m.messenger.SendText(ctx, to, text, domain.SendOptions{Keyboard: kb})
	if err != nil {
		m.logger.Warn("failed to send message", "user_id", to, "error", err)
	}
	return ref
}

// sendClip sends the stored clip for key with caption, falling back to the
// caption as plain text when the clip is unset or cannot be sent.
func (m *Machine) sendClip(ctx context.Context, to domain.UserID, key domain.MediaKey, caption string,
	send func(ctx context.Context, to domain.UserID, ref, caption string) error) {
	ref := m.media.Get(key)
	if ref != "" {
		err := send(ctx, to, ref, caption)
		if err == nil {
			return
		}
		m.logger.Warn("failed to send prompt clip, falling back to text", "user_id", to, "key", key, "error", err)
	} else {
		m.logger.Info("prompt clip not set, falling back to text", "user_id", to, "key", key)
	}
	m.metrics.IncPromptFallback(string(key))
	m.reply(ctx, to, caption, nil)
}

func (m *Machine) touch(s *domain.Session) {
	s.UpdatedAt = m.now()
	m.sessions.Save(s)
	m.metrics.SetActiveSessions(m.sessions.Count())
}

// freeText is the recorded value of a free-text answer. Non-text input
// records an empty answer.
func freeText(ev domain.Event) string {
	if ev.Kind != domain.EventText {
		return ""
	}
	return strings.TrimSpace(ev.Text)
}
