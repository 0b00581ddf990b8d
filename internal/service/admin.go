package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/anketa/internal/domain"
)

// MediaRefs returns every known media reference.
func (s *Service) MediaRefs() map[domain.MediaKey]string {
	return s.media.All()
}

// MediaRef returns the reference for key.
func (s *Service) MediaRef(key string) (string, error) {
	k, err := domain.ParseMediaKey(key)
	if err != nil {
		return "", err
	}
	return s.media.Get(k), nil
}

// SetMediaRef replaces the reference for key.
func (s *Service) SetMediaRef(ctx context.Context, key, ref string) error {
	k, err := domain.ParseMediaKey(key)
	if err != nil {
		return err
	}
	if err := s.media.Set(ctx, k, ref); err != nil {
		return fmt.Errorf("failed to set media: %w", err)
	}
	s.logger.Info("media reference updated", "key", k)
	return nil
}

func (s *Service) ListReviewers(ctx context.Context) ([]domain.UserID, error) {
	return s.reviewers.ListReviewers(ctx)
}

func (s *Service) AddReviewer(ctx context.Context, id domain.UserID) error {
	if err := s.reviewers.AddReviewer(ctx, id); err != nil {
		return err
	}
	s.logger.Info("reviewer added", "reviewer_id", id, "by", "api")
	return nil
}

func (s *Service) RemoveReviewer(ctx context.Context, id domain.UserID) error {
	if err := s.reviewers.RemoveReviewer(ctx, id); err != nil {
		return err
	}
	s.logger.Info("reviewer removed", "reviewer_id", id, "by", "api")
	return nil
}
