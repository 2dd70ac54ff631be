package model

import (
	"time"

	"github.com/google/uuid"
)

// TopicProgress counts a user's attempts on one topic.
type TopicProgress struct {
	UserID    uuid.UUID `json:"-"`
	Section   string    `json:"section"`
	Topic     string    `json:"topic"`
	Attempted int       `json:"attempted"`
	Correct   int       `json:"correct"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordProgressRequest is the payload for recording one answered question.
type RecordProgressRequest struct {
	Section   string `json:"section" binding:"required,max=50"`
	Topic     string `json:"topic" binding:"required,max=100"`
	IsCorrect bool   `json:"is_correct"`
}

// ProgressEvent is the queued form of one answered question.
type ProgressEvent struct {
	UserID    string `json:"user_id"`
	Section   string `json:"section"`
	Topic     string `json:"topic"`
	IsCorrect bool   `json:"is_correct"`
}
