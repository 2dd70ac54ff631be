package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ProgressService records per-topic attempt counters.
type ProgressService struct {
	progressRepo *repository.ProgressRepository
	rdb          redis.Cmdable
}

// NewProgressService creates a new ProgressService.
func NewProgressService(progressRepo *repository.ProgressRepository, rdb redis.Cmdable) *ProgressService {
	return &ProgressService{progressRepo: progressRepo, rdb: rdb}
}

// Record writes one answered question straight to the database.
func (s *ProgressService) Record(ctx context.Context, userID uuid.UUID, section, topic string, correct bool) error {
	return s.progressRepo.Increment(ctx, userID, section, topic, correct)
}

// List returns a user's progress rows, never nil.
func (s *ProgressService) List(ctx context.Context, userID uuid.UUID) ([]model.TopicProgress, error) {
	rows, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.TopicProgress{}
	}
	return rows, nil
}

// Enqueue queues an answered question for the progress worker. Without
// Redis the event is written synchronously.
func (s *ProgressService) Enqueue(ctx context.Context, ev model.ProgressEvent) error {
	if s.rdb == nil {
		userID, err := uuid.Parse(ev.UserID)
		if err != nil {
			return fmt.Errorf("parse user id: %w", err)
		}
		return s.Record(ctx, userID, ev.Section, ev.Topic, ev.IsCorrect)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal progress event: %w", err)
	}
	return s.rdb.RPush(ctx, config.WorkerKey.PersistProgressQueue, payload).Err()
}
