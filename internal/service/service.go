// Package service runs the serial event dispatcher and the operator commands.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/flow"
	"github.com/xiaot623/anketa/internal/logging"
	"github.com/xiaot623/anketa/internal/metrics"
	"github.com/xiaot623/anketa/internal/policy"
)

// ErrQueueFull is returned by Submit when the event queue is saturated.
var ErrQueueFull = errors.New("event queue full")

// Dependencies wires a Service.
type Dependencies struct {
	Machine   *flow.Machine
	Messenger domain.Messenger
	Sessions  domain.SessionStore
	Media     domain.MediaStore
	Captures  domain.CaptureRegistry
	Reviewers domain.ReviewerStore
	Policy    *policy.Engine
	Metrics   metrics.Recorder
	Logger    *slog.Logger
}

type Service struct {
	machine      *flow.Machine
	messenger    domain.Messenger
	sessions     domain.SessionStore
	media        domain.MediaStore
	captures     domain.CaptureRegistry
	reviewers    domain.ReviewerStore
	policyEngine *policy.Engine
	metrics      metrics.Recorder
	logger       *slog.Logger

	events chan domain.Event
}

func New(deps Dependencies, queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = 1
	}
	s := &Service{
		machine:      deps.Machine,
		messenger:    deps.Messenger,
		sessions:     deps.Sessions,
		media:        deps.Media,
		captures:     deps.Captures,
		reviewers:    deps.Reviewers,
		policyEngine: deps.Policy,
		metrics:      deps.Metrics,
		logger:       logging.OrDiscard(deps.Logger),
		events:       make(chan domain.Event, queueSize),
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop()
	}
	return s
}

// Submit queues an event for Run. It never blocks.
func (s *Service) Submit(ctx context.Context, ev domain.Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Run handles queued events one at a time until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent routes one event to capture, a command, or the questionnaire.
func (s *Service) HandleEvent(ctx context.Context, ev domain.Event) {
	s.metrics.IncEvent(string(ev.Kind))

	if ev.Kind.IsMedia() {
		if key, ok := s.captures.Take(ev.From.ID); ok {
			s.capture(ctx, ev, key)
			return
		}
	}

	if ev.Kind == domain.EventText && strings.HasPrefix(strings.TrimSpace(ev.Text), "/") {
		if s.handleCommand(ctx, ev) {
			return
		}
	}

	outcome := s.machine.Handle(ctx, ev)
	s.logger.Debug("event handled", "user_id", ev.From.ID, "kind", ev.Kind, "outcome", outcome)
}

// ActiveSessions returns the number of questionnaires in progress.
func (s *Service) ActiveSessions() int {
	return s.sessions.Count()
}

func (s *Service) reply(ctx context.Context, to domain.UserID, text, parseMode string) {
	if _, err := s.messenger.SendText(ctx, to, text, domain.SendOptions{ParseMode: parseMode}); err != nil {
		s.logger.Warn("failed to send reply", "user_id", to, "error", err)
	}
}
