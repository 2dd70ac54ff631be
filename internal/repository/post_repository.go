package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDuplicateSlug = errors.New("post with this slug already exists")
	ErrPostNotFound  = errors.New("post not found")
)

// PostRepository is the blog store.
type PostRepository interface {
	List(ctx context.Context, f model.PostFilter) ([]model.Post, int64, error)
	Featured(ctx context.Context, f model.PostFilter, limit int) ([]model.Post, error)
	Categories(ctx context.Context) ([]string, error)
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Create(ctx context.Context, post *model.Post) error
	IncrementViews(ctx context.Context, slug string) (*model.Post, error)
	IncrementLikes(ctx context.Context, slug string) (*model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a GORM-backed PostRepository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// likePrefix escapes LIKE wildcards and appends a trailing %.
func likePrefix(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s) + "%"
}

func (r *postRepository) filtered(ctx context.Context, f model.PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Post{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		q = q.Where("title LIKE ?", likePrefix(f.Search))
	}
	return q
}

func (r *postRepository) sorted(ctx context.Context, f model.PostFilter) *gorm.DB {
	if f.Oldest {
		return r.filtered(ctx, f).Order("created_at ASC")
	}
	return r.filtered(ctx, f).Order("created_at DESC")
}

func (r *postRepository) List(ctx context.Context, f model.PostFilter) ([]model.Post, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []model.Post
	err := r.sorted(ctx, f).
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) Featured(ctx context.Context, f model.PostFilter, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.sorted(ctx, f).Where("featured = ?", true).Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *postRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (r *postRepository) IncrementViews(ctx context.Context, slug string) (*model.Post, error) {
	return r.increment(ctx, slug, "views")
}

func (r *postRepository) IncrementLikes(ctx context.Context, slug string) (*model.Post, error) {
	return r.increment(ctx, slug, "likes")
}

// increment bumps a counter column and returns the updated post.
func (r *postRepository) increment(ctx context.Context, slug, column string) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Post{}).
			Where("slug = ?", slug).
			UpdateColumn(column, gorm.Expr(column+" + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return tx.Where("slug = ?", slug).First(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}
