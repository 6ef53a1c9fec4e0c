package rest

import (
	"net/http"

	"github.com/easygrow/plantcore/internal/sensors"
	"github.com/gin-gonic/gin"
)

// GET /api/v1/sensors/types
func (s *Server) listSensorTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tipos": sensors.KnownTypes(),
	})
}

// POST /api/v1/sensors
func (s *Server) createSensor(c *gin.Context) {
	var req sensors.CreateSensorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sensor, err := s.sensorService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sensor)
}

// GET /api/v1/sensors/:sensor_id
func (s *Server) getSensor(c *gin.Context) {
	sensorID, ok := pathID(c, "sensor_id")
	if !ok {
		return
	}

	result, err := s.sensorService.Get(c.Request.Context(), sensorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/sensors/device/:device_id
func (s *Server) listDeviceSensors(c *gin.Context) {
	deviceID, ok := pathID(c, "device_id")
	if !ok {
		return
	}

	result, err := s.sensorService.ListByDevice(c.Request.Context(), deviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// POST /api/v1/sensors/readings
func (s *Server) createReading(c *gin.Context) {
	var req sensors.CreateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := s.sensorService.CreateReading(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GET /api/v1/sensors/:sensor_id/readings
func (s *Server) listSensorReadings(c *gin.Context) {
	sensorID, ok := pathID(c, "sensor_id")
	if !ok {
		return
	}
	skip, ok := queryInt(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 100)
	if !ok {
		return
	}
	dateFrom, ok := queryDate(c, "date_from")
	if !ok {
		return
	}
	dateTo, ok := queryDate(c, "date_to")
	if !ok {
		return
	}

	result, err := s.sensorService.ListSensorReadings(c.Request.Context(), sensorID, skip, limit, dateFrom, dateTo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/sensors/device/:device_id/readings
func (s *Server) listDeviceReadings(c *gin.Context) {
	deviceID, ok := pathID(c, "device_id")
	if !ok {
		return
	}
	skip, ok := queryInt(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 100)
	if !ok {
		return
	}
	dateFrom, ok := queryDate(c, "date_from")
	if !ok {
		return
	}
	dateTo, ok := queryDate(c, "date_to")
	if !ok {
		return
	}

	var sensorType *string
	if t := c.Query("sensor_type"); t != "" {
		sensorType = &t
	}

	result, err := s.sensorService.ListDeviceReadings(c.Request.Context(), deviceID, sensorType, skip, limit, dateFrom, dateTo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/sensors/device/:device_id/readings/latest
func (s *Server) latestDeviceReadings(c *gin.Context) {
	deviceID, ok := pathID(c, "device_id")
	if !ok {
		return
	}

	result, err := s.sensorService.Latest(c.Request.Context(), deviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// typeWindow builds a handler for one sensor type's trailing-window
// listing (humidity, environment, light, water-level).
func (s *Server) typeWindow(sensorType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID, ok := pathID(c, "device_id")
		if !ok {
			return
		}
		skip, ok := queryInt(c, "skip", 0)
		if !ok {
			return
		}
		limit, ok := queryInt(c, "limit", 50)
		if !ok {
			return
		}
		hours, ok := queryInt(c, "hours", 24)
		if !ok {
			return
		}

		result, err := s.sensorService.TypeWindow(c.Request.Context(), deviceID, sensorType, skip, limit, hours)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
