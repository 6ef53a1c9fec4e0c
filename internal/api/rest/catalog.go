package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/v1/catalog
func (s *Server) listCatalog(c *gin.Context) {
	skip, ok := queryInt(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return
	}
	activeOnly, ok := queryBool(c, "active_only", true)
	if !ok {
		return
	}

	result, err := s.catalogService.List(c.Request.Context(), skip, limit, c.Query("search"), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/catalog/:id
func (s *Server) getCatalogPlant(c *gin.Context) {
	catalogID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := s.catalogService.Get(c.Request.Context(), catalogID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
