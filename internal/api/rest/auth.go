package rest

import (
	"net/http"

	"github.com/easygrow/plantcore/internal/auth"
	"github.com/easygrow/plantcore/internal/types"
	"github.com/gin-gonic/gin"
)

// POST /api/v1/auth/register
func (s *Server) register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := s.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// POST /api/v1/auth/login
func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"usuario" binding:"required"`
		Password string `json:"contrasena" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := s.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/users
func (s *Server) listUsers(c *gin.Context) {
	skip, ok := queryInt(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 10)
	if !ok {
		return
	}

	result, err := s.authService.ListUsers(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/users/me
func (s *Server) getCurrentUser(c *gin.Context) {
	userID, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.NewErrorResponse("AUTH_401", "not authenticated", nil))
		return
	}

	profile, err := s.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GET /api/v1/users/search/username/:username
func (s *Server) getUserByUsername(c *gin.Context) {
	profile, err := s.authService.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GET /api/v1/users/:id
func (s *Server) getUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	profile, err := s.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
