package rest

import (
	"net/http"

	"github.com/easygrow/plantcore/internal/devices"
	"github.com/gin-gonic/gin"
)

// POST /api/v1/devices
func (s *Server) assignDevice(c *gin.Context) {
	var req devices.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := s.deviceService.Assign(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// PATCH /api/v1/devices/:id
func (s *Server) renameDevice(c *gin.Context) {
	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"nombre_dispositivo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	device, err := s.deviceService.Rename(c.Request.Context(), deviceID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, device)
}

// GET /api/v1/devices/user/:user_id
func (s *Server) listUserDevices(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	result, err := s.deviceService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
