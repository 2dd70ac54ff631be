package repository

import (
	"context"

	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProgressRepository handles per-topic progress counters.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

// Increment adds one attempt (and one correct answer if correct) to a topic,
// creating the row on first use.
func (r *ProgressRepository) Increment(ctx context.Context, userID uuid.UUID, section, topic string, correct bool) error {
	correctDelta := 0
	if correct {
		correctDelta = 1
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_progress (user_id, section, topic, attempted, correct)
		 VALUES ($1, $2, $3, 1, $4)
		 ON CONFLICT (user_id, section, topic) DO UPDATE
		 SET attempted = user_progress.attempted + 1,
		     correct = user_progress.correct + EXCLUDED.correct,
		     updated_at = NOW()`,
		userID, section, topic, correctDelta,
	)
	return err
}

// ListByUser returns all topic progress rows of a user.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.TopicProgress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, section, topic, attempted, correct, updated_at
		 FROM user_progress WHERE user_id = $1
		 ORDER BY section, topic`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TopicProgress
	for rows.Next() {
		var p model.TopicProgress
		if err := rows.Scan(&p.UserID, &p.Section, &p.Topic, &p.Attempted, &p.Correct, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
