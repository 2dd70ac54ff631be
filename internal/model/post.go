package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPostCategory is assigned to posts created without a category.
const DefaultPostCategory = "General"

// Post is a blog article.
type Post struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null;index" json:"title"`
	Slug        string    `gorm:"not null;uniqueIndex" json:"slug"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Excerpt     string    `gorm:"type:text" json:"excerpt"`
	Author      string    `gorm:"not null" json:"author"`
	AuthorImage string    `json:"author_image"`
	Image       string    `json:"image"`
	Category    string    `gorm:"not null;default:General;index" json:"category"`
	Featured    bool      `gorm:"not null;default:false" json:"featured"`
	Views       int       `gorm:"not null;default:0" json:"views"`
	Likes       int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was set.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Comment is a reader comment on a post.
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID when none was set.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// PostFilter narrows a post listing.
type PostFilter struct {
	Category string
	Search   string
	Oldest   bool
	Page     int
	Limit    int
}

// PostListResponse is one page of posts plus listing metadata.
type PostListResponse struct {
	Posts         []Post   `json:"posts"`
	Total         int64    `json:"total"`
	Page          int      `json:"page"`
	Limit         int      `json:"limit"`
	Categories    []string `json:"categories"`
	FeaturedPosts []Post   `json:"featured_posts"`
}

// CreatePostRequest is the payload for publishing a post.
type CreatePostRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Slug        string `json:"slug" binding:"required,max=255"`
	Content     string `json:"content" binding:"required"`
	Excerpt     string `json:"excerpt"`
	Author      string `json:"author" binding:"required,max=100"`
	AuthorImage string `json:"author_image" binding:"omitempty,max=500"`
	Image       string `json:"image" binding:"omitempty,max=500"`
	Category    string `json:"category" binding:"omitempty,max=50"`
	Featured    bool   `json:"featured"`
}

// CreateCommentRequest is the payload for commenting on a post.
type CreateCommentRequest struct {
	PostID  string `json:"post_id" binding:"required,uuid"`
	Content string `json:"content" binding:"required,min=1,max=2000"`
}
