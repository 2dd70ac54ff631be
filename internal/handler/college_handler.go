package handler

import (
	"errors"
	"net/http"

	"github.com/catprepedge/catprep-backend/internal/response"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// CollegeHandler serves college information.
type CollegeHandler struct {
	collegeService *service.CollegeService
}

// NewCollegeHandler creates a new CollegeHandler.
func NewCollegeHandler(collegeService *service.CollegeService) *CollegeHandler {
	return &CollegeHandler{collegeService: collegeService}
}

// ListColleges godoc
// GET /api/v1/colleges?search=&location=
func (h *CollegeHandler) ListColleges(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"colleges":  h.collegeService.List(c.Query("search"), c.Query("location")),
		"locations": h.collegeService.Locations(),
	})
}

// GetCollege godoc
// GET /api/v1/colleges/:id
func (h *CollegeHandler) GetCollege(c *gin.Context) {
	college, err := h.collegeService.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCollegeNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"college": college})
}
