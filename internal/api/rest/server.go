package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/easygrow/plantcore/internal/api/websocket"
	"github.com/easygrow/plantcore/internal/auth"
	"github.com/easygrow/plantcore/internal/config"
	"github.com/easygrow/plantcore/internal/devices"
	"github.com/easygrow/plantcore/internal/garden"
	"github.com/easygrow/plantcore/internal/sensors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
	server *http.Server
	wsHub  *websocket.Hub

	authService    *auth.Service
	deviceService  *devices.Service
	catalogService *garden.CatalogService
	plantService   *garden.PlantService
	sensorService  *sensors.Service
}

type Services struct {
	Auth    *auth.Service
	Devices *devices.Service
	Catalog *garden.CatalogService
	Plants  *garden.PlantService
	Sensors *sensors.Service
}

func NewServer(cfg *config.Config, svc Services, wsHub *websocket.Hub, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:         gin.New(),
		logger:         logger,
		wsHub:          wsHub,
		authService:    svc.Auth,
		deviceService:  svc.Devices,
		catalogService: svc.Catalog,
		plantService:   svc.Plants,
		sensorService:  svc.Sensors,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware())

	// Public routes (no auth required)
	s.router.GET("/health", s.healthCheck)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// ==================== AUTH (PUBLIC) ====================
		authPublic := v1.Group("/auth")
		{
			authPublic.POST("/register", s.register)
			authPublic.POST("/login", s.login)
		}

		// ==================== USERS ====================
		users := v1.Group("/users")
		users.Use(s.authService.AuthMiddleware())
		{
			users.GET("", s.listUsers)
			users.GET("/me", s.getCurrentUser)
			users.GET("/:id", s.getUser)
			users.GET("/search/username/:username", s.getUserByUsername)
		}

		// ==================== DEVICES ====================
		deviceRoutes := v1.Group("/devices")
		deviceRoutes.Use(s.authService.AuthMiddleware())
		{
			deviceRoutes.POST("", s.assignDevice)
			deviceRoutes.PATCH("/:id", s.renameDevice)
			deviceRoutes.GET("/user/:user_id", s.listUserDevices)
		}

		// ==================== CATALOG (PUBLIC) ====================
		catalog := v1.Group("/catalog")
		{
			catalog.GET("", s.listCatalog)
			catalog.GET("/:id", s.getCatalogPlant)
		}

		// ==================== PLANTS ====================
		plants := v1.Group("/plants")
		plants.Use(s.authService.AuthMiddleware())
		{
			plants.POST("", s.createPlant)
			plants.GET("/:id", s.getPlant)
			plants.DELETE("/:id", s.deletePlant)
			plants.DELETE("/:id/permanent", s.deletePlantPermanently)
			plants.GET("/user/:user_id", s.listUserPlants)
			plants.GET("/device/:device_id", s.listDevicePlants)
			plants.GET("/user/:user_id/device/:device_id", s.listUserDevicePlants)
		}

		// ==================== SENSORS & READINGS ====================
		sensorRoutes := v1.Group("/sensors")
		sensorRoutes.Use(s.authService.AuthMiddleware())
		{
			sensorRoutes.GET("/types", s.listSensorTypes)
			sensorRoutes.POST("", s.createSensor)
			sensorRoutes.GET("/:sensor_id", s.getSensor)
			sensorRoutes.GET("/:sensor_id/readings", s.listSensorReadings)
			sensorRoutes.POST("/readings", s.createReading)
			sensorRoutes.GET("/device/:device_id", s.listDeviceSensors)
			sensorRoutes.GET("/device/:device_id/readings", s.listDeviceReadings)
			sensorRoutes.GET("/device/:device_id/readings/latest", s.latestDeviceReadings)
			sensorRoutes.GET("/device/:device_id/humidity", s.typeWindow("YL-69"))
			sensorRoutes.GET("/device/:device_id/environment", s.typeWindow("DHT22"))
			sensorRoutes.GET("/device/:device_id/light", s.typeWindow("BH1750"))
			sensorRoutes.GET("/device/:device_id/water-level", s.typeWindow("HC-SR04"))
		}

		// ==================== WEBSOCKET (PUBLIC - Auth via first message) ====================
		ws := v1.Group("/ws")
		{
			ws.GET("/live", s.wsLiveConnection)
			ws.GET("/status", s.wsStatus)
		}
	}
}

// WebSocket handlers
func (s *Server) wsLiveConnection(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

func (s *Server) wsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": s.wsHub.GetClientCount(),
	})
}

// Health check (public)
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}
