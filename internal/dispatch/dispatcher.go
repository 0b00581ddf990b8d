package dispatch

import (
	"context"
	"log/slog"

	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/logging"
	"github.com/xiaot623/anketa/internal/metrics"
)

// Result summarizes one fan-out.
type Result struct {
	Delivered int
	Failed    []domain.UserID
}

// Dispatcher fans a completed questionnaire out to every reviewer.
type Dispatcher struct {
	messenger domain.Messenger
	reviewers domain.ReviewerStore
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(messenger domain.Messenger, reviewers domain.ReviewerStore, rec metrics.Recorder, logger *slog.Logger) *Dispatcher {
	if rec == nil {
		rec = metrics.Nop()
	}
	return &Dispatcher{
		messenger: messenger,
		reviewers: reviewers,
		metrics:   rec,
		logger:    logging.OrDiscard(logger),
	}
}

// Dispatch sends the report, then the voice and video answers, to each
// reviewer. A reviewer whose report fails is skipped; media failures are
// logged and do not count against the reviewer.
func (d *Dispatcher) Dispatch(ctx context.Context, user domain.User, answers *domain.Answers) Result {
	var res Result

	ids, err := d.reviewers.ListReviewers(ctx)
	if err != nil {
		d.logger.Error("failed to list reviewers", "user_id", user.ID, "error", err)
		return res
	}

	text := RenderReport(user, answers)
	voice, hasVoice := answers.Get(domain.LabelVoice)
	video, hasVideo := answers.Get(domain.LabelVideo)

	for _, id := range ids {
		log := d.logger.With("reviewer_id", id, "user_id", user.ID)

		if _, err := d.messenger.SendText(ctx, id, text, domain.SendOptions{ParseMode: domain.ParseModeMarkdown}); err != nil {
			log.Error("failed to deliver report", "error", err)
			d.metrics.IncDelivery("text", metrics.StatusFailed)
			res.Failed = append(res.Failed, id)
			continue
		}
		d.metrics.IncDelivery("text", metrics.StatusOK)
		res.Delivered++

		if hasVoice {
			d.forward(log, "voice", func() error {
				return d.messenger.SendVoice(ctx, id, voice.Value, VoiceCaption)
			})
		}
		if hasVideo {
			d.forward(log, "video", func() error {
				return d.messenger.SendVideo(ctx, id, video.Value, VideoCaption)
			})
		}
	}

	d.metrics.IncSubmission()
	d.logger.Info("submission dispatched", "user_id", user.ID, "delivered", res.Delivered, "failed", len(res.Failed))
	return res
}

func (d *Dispatcher) forward(log *slog.Logger, kind string, send func() error) {
	if err := send(); err != nil {
		log.Warn("failed to forward media", "kind", kind, "error", err)
		d.metrics.IncDelivery(kind, metrics.StatusFailed)
		return
	}
	d.metrics.IncDelivery(kind, metrics.StatusOK)
}
