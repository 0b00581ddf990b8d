package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/anketa/internal/domain"
)

// capture stores the attachment of ev as the clip for key. The event is
// consumed and never reaches the questionnaire.
func (s *Service) capture(ctx context.Context, ev domain.Event, key domain.MediaKey) {
	to := ev.From.ID
	if ev.FileID == "" {
		s.reply(ctx, to, msgCaptureNoFileID, "")
		return
	}

	if err := s.media.Set(ctx, key, ev.FileID); err != nil {
		// The new reference is already served from memory.
		s.logger.Error("failed to persist captured media", "key", key, "user_id", to, "error", err)
	}
	s.logger.Info("media captured", "key", key, "user_id", to, "kind", ev.Kind)
	s.reply(ctx, to, fmt.Sprintf("✅ Saved `%s` as file_id:\n`%s`", key, ev.FileID), domain.ParseModeMarkdown)
}
