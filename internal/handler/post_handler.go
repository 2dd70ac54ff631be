package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/catprepedge/catprep-backend/internal/middleware"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/repository"
	"github.com/catprepedge/catprep-backend/internal/response"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/catprepedge/catprep-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PostHandler serves the blog.
type PostHandler struct {
	postService *service.PostService
	userService *service.UserService
	log         zerolog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postService *service.PostService, userService *service.UserService, log zerolog.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		userService: userService,
		log:         log.With().Str("component", "post_handler").Logger(),
	}
}

// ListPosts godoc
// GET /api/v1/posts?category=&search=&sort=newest|oldest&page=1&limit=9
func (h *PostHandler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultPostLimit)))

	resp, err := h.postService.List(c.Request.Context(), model.PostFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Oldest:   c.Query("sort") == "oldest",
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("List posts failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// GetPost godoc
// GET /api/v1/posts/:slug
// Returns the post and counts one view.
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.View(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failPost(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"post": post})
}

// LikePost godoc
// POST /api/v1/posts/:slug/like
func (h *PostHandler) LikePost(c *gin.Context) {
	post, err := h.postService.Like(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failPost(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"likes": post.Likes})
}

// ListComments godoc
// GET /api/v1/posts/:slug/comments
func (h *PostHandler) ListComments(c *gin.Context) {
	comments, err := h.postService.Comments(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failPost(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"comments": comments})
}

// AddComment godoc
// POST /api/v1/comments
// Adds a comment as the authenticated user.
func (h *PostHandler) AddComment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateCommentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	userID, err := claims.UserUUID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	comment, err := h.postService.AddComment(c.Request.Context(), user, postID, req.Content)
	if err != nil {
		failPost(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"comment": comment})
}

// CreatePost godoc
// POST /api/v1/admin/posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req model.CreatePostRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	post, err := h.postService.Create(c.Request.Context(), &req)
	if err != nil {
		failPost(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"post": post})
}

func failPost(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, repository.ErrDuplicateSlug):
		response.Fail(c, http.StatusConflict, response.ErrSlugTaken)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
