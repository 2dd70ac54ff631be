package handler

import (
	"errors"
	"net/http"

	"github.com/catprepedge/catprep-backend/internal/response"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// QuestionHandler serves question sets over plain HTTP.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListQuestions godoc
// GET /api/v1/questions?section=QA&topic=Averages
// Returns the question set of a topic in source order.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	section, topic := c.Query("section"), c.Query("topic")

	questions, err := h.questionService.Load(c.Request.Context(), section, topic)
	if err != nil {
		failQuestionLoad(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"section":   section,
		"topic":     topic,
		"total":     len(questions),
		"questions": questions,
	})
}

// InvalidateCache godoc
// DELETE /api/v1/admin/questions/cache?section=QA&topic=Averages
// Drops the cached copy of a question set.
func (h *QuestionHandler) InvalidateCache(c *gin.Context) {
	section, topic := c.Query("section"), c.Query("topic")
	if section == "" || topic == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingParameter)
		return
	}

	if err := h.questionService.Invalidate(c.Request.Context(), section, topic); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question cache cleared"})
}

func failQuestionLoad(c *gin.Context, err error) {
	var fetchErr *service.FetchError
	switch {
	case errors.Is(err, service.ErrMissingParameter):
		response.Fail(c, http.StatusBadRequest, response.ErrMissingParameter)
	case errors.Is(err, service.ErrEmptyResult):
		response.Fail(c, http.StatusNotFound, response.ErrNoQuestions)
	case errors.As(err, &fetchErr):
		response.Fail(c, http.StatusBadGateway, response.ErrFetchFailed)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
