package rest

import (
	"net/http"
	"time"

	"github.com/easygrow/plantcore/internal/auth"
	"github.com/easygrow/plantcore/internal/garden"
	"github.com/easygrow/plantcore/internal/types"
	"github.com/gin-gonic/gin"
)

// POST /api/v1/plants
func (s *Server) createPlant(c *gin.Context) {
	var body struct {
		CatalogID  int64   `json:"id_catalogo" binding:"required"`
		UserID     int64   `json:"id_usuario" binding:"required"`
		DeviceID   *int64  `json:"id_dispositivo"`
		CustomName *string `json:"nombre_personalizado"`
		Location   *string `json:"ubicacion"`
		PlantedOn  *string `json:"fecha_plantacion"`
		Notes      *string `json:"notas_usuario"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	req := garden.CreatePlantRequest{
		CatalogID:  body.CatalogID,
		UserID:     body.UserID,
		DeviceID:   body.DeviceID,
		CustomName: body.CustomName,
		Location:   body.Location,
		Notes:      body.Notes,
	}

	if body.PlantedOn != nil {
		plantedOn, ok := parseDate(c, *body.PlantedOn, "fecha_plantacion")
		if !ok {
			return
		}
		req.PlantedOn = plantedOn
	}

	result, err := s.plantService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func parseDate(c *gin.Context, raw, name string) (*time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, true
		}
	}
	c.JSON(http.StatusBadRequest, types.NewErrorResponse(
		"BAD_REQUEST_400", name+" must be an RFC3339 timestamp or YYYY-MM-DD date", nil))
	return nil, false
}

// GET /api/v1/plants/:id
func (s *Server) getPlant(c *gin.Context) {
	plantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.NewErrorResponse("AUTH_401", "not authenticated", nil))
		return
	}

	result, err := s.plantService.Get(c.Request.Context(), plantID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DELETE /api/v1/plants/:id
func (s *Server) deletePlant(c *gin.Context) {
	plantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.NewErrorResponse("AUTH_401", "not authenticated", nil))
		return
	}

	result, err := s.plantService.SoftDelete(c.Request.Context(), plantID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DELETE /api/v1/plants/:id/permanent
func (s *Server) deletePlantPermanently(c *gin.Context) {
	plantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.NewErrorResponse("AUTH_401", "not authenticated", nil))
		return
	}

	result, err := s.plantService.HardDelete(c.Request.Context(), plantID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/plants/user/:user_id
func (s *Server) listUserPlants(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	activeOnly, ok := queryBool(c, "active_only", true)
	if !ok {
		return
	}

	result, err := s.plantService.ListByUser(c.Request.Context(), userID, activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/plants/device/:device_id
func (s *Server) listDevicePlants(c *gin.Context) {
	deviceID, ok := pathID(c, "device_id")
	if !ok {
		return
	}
	activeOnly, ok := queryBool(c, "active_only", true)
	if !ok {
		return
	}

	result, err := s.plantService.ListByDevice(c.Request.Context(), deviceID, activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/plants/user/:user_id/device/:device_id
func (s *Server) listUserDevicePlants(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	deviceID, ok := pathID(c, "device_id")
	if !ok {
		return
	}
	activeOnly, ok := queryBool(c, "active_only", true)
	if !ok {
		return
	}

	result, err := s.plantService.ListByUserAndDevice(c.Request.Context(), userID, deviceID, activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
