package repository

import (
	"context"

	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository stores reader comments.
type CommentRepository interface {
	ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Comment, error)
	Create(ctx context.Context, comment *model.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a GORM-backed CommentRepository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}
