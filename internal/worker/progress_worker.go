package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ProgressStore persists one answered question.
type ProgressStore interface {
	Increment(ctx context.Context, userID uuid.UUID, section, topic string, correct bool) error
}

// ProgressWorker consumes persist_progress_queue and UPSERTs topic counters.
type ProgressWorker struct {
	store      ProgressStore
	rdb        redis.Cmdable
	log        zerolog.Logger
	retryDelay time.Duration
}

// NewProgressWorker creates a new ProgressWorker.
func NewProgressWorker(store ProgressStore, rdb redis.Cmdable, log zerolog.Logger) *ProgressWorker {
	return &ProgressWorker{
		store:      store,
		rdb:        rdb,
		log:        log.With().Str("component", "progress_worker").Logger(),
		retryDelay: 5 * time.Second,
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ProgressWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ProgressWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistProgressQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	if err := w.handle(ctx, result[1]); err != nil {
		w.log.Error().Err(err).Msg("Persist error, retrying")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.PersistProgressQueue, result[1])
		select {
		case <-time.After(w.retryDelay):
		case <-ctx.Done():
		}
	}
}

// handle persists one raw queue item. Malformed items are logged and dropped.
func (w *ProgressWorker) handle(ctx context.Context, raw string) error {
	var ev model.ProgressEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error, dropping item")
		return nil
	}
	userID, err := uuid.Parse(ev.UserID)
	if err != nil {
		w.log.Error().Err(err).Str("user_id", ev.UserID).Msg("Invalid user id, dropping item")
		return nil
	}

	return w.store.Increment(ctx, userID, ev.Section, ev.Topic, ev.IsCorrect)
}

// drain processes all remaining items in the queue before shutdown.
func (w *ProgressWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistProgressQueue).Result()
		if err != nil {
			break
		}

		if err := w.handle(ctx, result); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistProgressQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
