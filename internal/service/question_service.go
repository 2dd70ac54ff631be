package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Question loading errors. All three end the loading phase; none is retried.
var (
	ErrMissingParameter = errors.New("section or topic not specified")
	ErrEmptyResult      = errors.New("no questions found for this topic")
)

// FetchError wraps a failed request to the question source.
type FetchError struct {
	Section string
	Topic   string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch questions for %s/%s: %v", e.Section, e.Topic, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// QuestionService loads question sets with a Redis read-through cache.
type QuestionService struct {
	source repository.QuestionSource
	rdb    redis.Cmdable
	ttl    time.Duration
	log    zerolog.Logger
}

// NewQuestionService creates a QuestionService. rdb may be nil to disable caching.
func NewQuestionService(source repository.QuestionSource, rdb redis.Cmdable, ttl time.Duration, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		source: source,
		rdb:    rdb,
		ttl:    ttl,
		log:    log.With().Str("component", "question_service").Logger(),
	}
}

// Load returns the questions of section/topic in source order.
//
// It fails with ErrMissingParameter before any I/O when either identifier is
// blank, with *FetchError when the source cannot deliver, and with
// ErrEmptyResult on an empty array. If ctx ends first, ctx.Err() is returned.
func (s *QuestionService) Load(ctx context.Context, section, topic string) ([]model.Question, error) {
	section = strings.TrimSpace(section)
	topic = strings.TrimSpace(topic)
	if section == "" || topic == "" {
		return nil, ErrMissingParameter
	}
	if !repository.ValidSegment(section) || !repository.ValidSegment(topic) {
		return nil, &FetchError{Section: section, Topic: topic, Err: repository.ErrInvalidSegment}
	}

	if qs, ok := s.fromCache(ctx, section, topic); ok {
		return qs, nil
	}

	raw, err := s.source.Fetch(ctx, section, topic)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		s.log.Warn().Err(err).
			Str("source", s.source.Describe(section, topic)).
			Msg("Question fetch failed")
		return nil, &FetchError{Section: section, Topic: topic, Err: err}
	}

	var questions []model.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, &FetchError{Section: section, Topic: topic, Err: fmt.Errorf("decode questions: %w", err)}
	}
	if len(questions) == 0 {
		return nil, ErrEmptyResult
	}

	s.toCache(ctx, section, topic, raw)
	return questions, nil
}

func (s *QuestionService) fromCache(ctx context.Context, section, topic string) ([]model.Question, bool) {
	if s.rdb == nil {
		return nil, false
	}
	key := config.CacheKey.QuestionSetKey(section, topic)

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("Question cache read failed")
		}
		return nil, false
	}

	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil || len(questions) == 0 {
		s.rdb.Del(ctx, key)
		return nil, false
	}
	return questions, true
}

func (s *QuestionService) toCache(ctx context.Context, section, topic string, raw []byte) {
	if s.rdb == nil || s.ttl <= 0 {
		return
	}
	key := config.CacheKey.QuestionSetKey(section, topic)
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Question cache write failed")
	}
}

// Invalidate drops the cached payload of section/topic.
func (s *QuestionService) Invalidate(ctx context.Context, section, topic string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, config.CacheKey.QuestionSetKey(section, topic)).Err()
}
