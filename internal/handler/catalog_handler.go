package handler

import (
	"net/http"

	"github.com/catprepedge/catprep-backend/internal/response"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the mock-test catalogue.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListSections godoc
// GET /api/v1/mock-tests
func (h *CatalogHandler) ListSections(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"sections": h.catalogService.Sections()})
}

// GetSection godoc
// GET /api/v1/mock-tests/:code
func (h *CatalogHandler) GetSection(c *gin.Context) {
	section, ok := h.catalogService.Section(c.Param("code"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"section": section})
}
