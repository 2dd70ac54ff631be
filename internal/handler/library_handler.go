package handler

import (
	"net/http"
	"strconv"

	"github.com/catprepedge/catprep-backend/internal/middleware"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/response"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// LibraryHandler serves the PDF library.
type LibraryHandler struct {
	libraryService *service.LibraryService
}

// NewLibraryHandler creates a new LibraryHandler.
func NewLibraryHandler(libraryService *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

// ListResources godoc
// GET /api/v1/library?search=&section=&tag=&page=1&per_page=24
// Premium links are only included for premium and admin users.
func (h *LibraryHandler) ListResources(c *gin.Context) {
	h.list(c, false)
}

// ListPremiumResources godoc
// GET /api/v1/library/premium
// Lists only the premium resources. Requires a premium or admin account.
func (h *LibraryHandler) ListPremiumResources(c *gin.Context) {
	h.list(c, true)
}

func (h *LibraryHandler) list(c *gin.Context, premiumOnly bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "24"))

	role := model.RoleFree
	if claims := middleware.GetClaims(c); claims != nil {
		role = claims.Role
	}

	resp, pagination := h.libraryService.List(model.LibraryFilter{
		Search:      c.Query("search"),
		Section:     c.Query("section"),
		Tag:         c.Query("tag"),
		PremiumOnly: premiumOnly,
		Page:        page,
		PerPage:     perPage,
	}, role)

	response.SuccessWithPagination(c, http.StatusOK, resp, pagination)
}
