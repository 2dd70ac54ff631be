package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/repository"
	"github.com/google/uuid"
)

const (
	DefaultPostLimit  = 9
	MaxPostLimit      = 50
	MaxPostPage       = 10000
	FeaturedPostLimit = 3
	excerptLength     = 100
)

// PostService handles the blog.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

// NewPostService creates a new PostService.
func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) *PostService {
	return &PostService{postRepo: postRepo, commentRepo: commentRepo}
}

// NormaliseFilter applies paging defaults and bounds.
func NormaliseFilter(f model.PostFilter) model.PostFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPostPage {
		f.Page = MaxPostPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultPostLimit
	}
	if f.Limit > MaxPostLimit {
		f.Limit = MaxPostLimit
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Category = strings.TrimSpace(f.Category)
	return f
}

// List returns one page of posts with the category list and featured posts.
func (s *PostService) List(ctx context.Context, f model.PostFilter) (*model.PostListResponse, error) {
	f = NormaliseFilter(f)

	posts, total, err := s.postRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	categories, err := s.postRepo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	featured, err := s.postRepo.Featured(ctx, f, FeaturedPostLimit)
	if err != nil {
		return nil, err
	}

	if posts == nil {
		posts = []model.Post{}
	}
	if categories == nil {
		categories = []string{}
	}
	if featured == nil {
		featured = []model.Post{}
	}

	return &model.PostListResponse{
		Posts:         posts,
		Total:         total,
		Page:          f.Page,
		Limit:         f.Limit,
		Categories:    categories,
		FeaturedPosts: featured,
	}, nil
}

// View returns a post and counts the view.
func (s *PostService) View(ctx context.Context, slug string) (*model.Post, error) {
	return s.postRepo.IncrementViews(ctx, slug)
}

// Like adds a like to a post.
func (s *PostService) Like(ctx context.Context, slug string) (*model.Post, error) {
	return s.postRepo.IncrementLikes(ctx, slug)
}

// BuildPost fills in excerpt and category defaults.
func BuildPost(req *model.CreatePostRequest) *model.Post {
	excerpt := strings.TrimSpace(req.Excerpt)
	if excerpt == "" {
		excerpt = truncateRunes(req.Content, excerptLength) + "..."
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = model.DefaultPostCategory
	}

	return &model.Post{
		Title:       strings.TrimSpace(req.Title),
		Slug:        strings.TrimSpace(req.Slug),
		Content:     req.Content,
		Excerpt:     excerpt,
		Author:      strings.TrimSpace(req.Author),
		AuthorImage: req.AuthorImage,
		Image:       req.Image,
		Category:    category,
		Featured:    req.Featured,
	}
}

// Create publishes a post. A taken slug returns repository.ErrDuplicateSlug.
func (s *PostService) Create(ctx context.Context, req *model.CreatePostRequest) (*model.Post, error) {
	post := BuildPost(req)
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Comments lists the comments of a post, newest first.
func (s *PostService) Comments(ctx context.Context, slug string) ([]model.Comment, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

// AddComment stores a comment by user on a post.
func (s *PostService) AddComment(ctx context.Context, user *model.User, postID uuid.UUID, content string) (*model.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:  postID,
		UserID:  user.ID,
		Name:    user.FullName,
		Content: strings.TrimSpace(content),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
