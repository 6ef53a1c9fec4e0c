package garden

import (
	"context"
	"strings"
	"time"

	"github.com/easygrow/plantcore/internal/storage"
	"github.com/easygrow/plantcore/internal/types"
	"go.uber.org/zap"
)

// PlantStore is the slice of the storage layer the planting service needs.
type PlantStore interface {
	CreatePlant(ctx context.Context, plant *storage.Plant) (*storage.PlantWithCatalog, error)
	GetPlantByIDAndUser(ctx context.Context, plantID, userID int64) (*storage.PlantWithCatalog, error)
	ListPlantsByUser(ctx context.Context, userID int64, activeOnly bool) ([]*storage.PlantWithCatalog, error)
	ListPlantsByDevice(ctx context.Context, deviceID int64, activeOnly bool) ([]*storage.PlantWithCatalog, error)
	ListPlantsByUserAndDevice(ctx context.Context, userID, deviceID int64, activeOnly bool) ([]*storage.PlantWithCatalog, error)
	SoftDeletePlant(ctx context.Context, plantID int64) error
	HardDeletePlant(ctx context.Context, plantID int64) error
	GetActiveCatalogPlant(ctx context.Context, catalogID int64) (*storage.CatalogPlant, error)
	GetUserByID(ctx context.Context, userID int64) (*storage.User, error)
	GetDeviceByID(ctx context.Context, deviceID int64) (*storage.Device, error)
	GetDeviceByIDAndUser(ctx context.Context, deviceID, userID int64) (*storage.Device, error)
}

type PlantService struct {
	store  PlantStore
	logger *zap.Logger
}

func NewPlantService(store PlantStore, logger *zap.Logger) *PlantService {
	return &PlantService{store: store, logger: logger}
}

type CreatePlantRequest struct {
	CatalogID  int64      `json:"id_catalogo" binding:"required"`
	UserID     int64      `json:"id_usuario" binding:"required"`
	DeviceID   *int64     `json:"id_dispositivo"`
	CustomName *string    `json:"nombre_personalizado"`
	Location   *string    `json:"ubicacion"`
	PlantedOn  *time.Time `json:"fecha_plantacion"`
	Notes      *string    `json:"notas_usuario"`
}

type CreatePlantResult struct {
	Msg   string                    `json:"msg"`
	Plant *storage.PlantWithCatalog `json:"planta"`
}

// DeviceInfo is the typed optional device sub-record embedded in planting
// details.
type DeviceInfo struct {
	ID         int64   `json:"id_dispositivo"`
	MACAddress string  `json:"mac_address"`
	Name       *string `json:"nombre_dispositivo"`
}

type PlantDetail struct {
	*storage.PlantWithCatalog
	DaysSincePlanting *int        `json:"dias_desde_plantacion"`
	Device            *DeviceInfo `json:"dispositivo_info,omitempty"`
}

type UserPlantList struct {
	UserID int64                       `json:"user_id"`
	Plants []*storage.PlantWithCatalog `json:"plantas"`
	storage.PlantCounts
}

type DevicePlantList struct {
	DeviceID   int64                       `json:"device_id"`
	MACAddress string                      `json:"mac_address"`
	DeviceName *string                     `json:"nombre_dispositivo"`
	Plants     []*storage.PlantWithCatalog `json:"plantas"`
	storage.PlantCounts
}

type UserDevicePlantList struct {
	UserID   int64                       `json:"user_id"`
	DeviceID int64                       `json:"device_id"`
	Plants   []*storage.PlantWithCatalog `json:"plantas"`
	storage.PlantCounts
}

type DeleteResult struct {
	Msg                string `json:"msg"`
	PlantID            int64  `json:"plant_id"`
	DeletedPermanently bool   `json:"deleted_permanently"`
}

func trimmed(value *string, field string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	t := strings.TrimSpace(*value)
	if t == "" {
		return nil, types.InvalidInput(field + " must not be empty")
	}
	return &t, nil
}

// Create validates every reference before inserting: the catalog entry must
// exist and be active, the user must exist, and a device, when given, must
// belong to that same user. Each failure names its reason.
func (s *PlantService) Create(ctx context.Context, req CreatePlantRequest) (*CreatePlantResult, error) {
	if req.CatalogID <= 0 || req.UserID <= 0 {
		return nil, types.InvalidInput("ids must be positive")
	}
	if req.DeviceID != nil && *req.DeviceID <= 0 {
		return nil, types.InvalidInput("device id must be positive")
	}

	customName, err := trimmed(req.CustomName, "custom name")
	if err != nil {
		return nil, err
	}
	location, err := trimmed(req.Location, "location")
	if err != nil {
		return nil, err
	}

	catalogPlant, err := s.store.GetActiveCatalogPlant(ctx, req.CatalogID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	if req.DeviceID != nil {
		if _, err := s.store.GetDeviceByIDAndUser(ctx, *req.DeviceID, req.UserID); err != nil {
			if types.KindOf(err) == types.KindNotFound {
				return nil, types.InvalidInput("device does not exist or does not belong to the user")
			}
			return nil, err
		}
	}

	plant, err := s.store.CreatePlant(ctx, &storage.Plant{
		CatalogID:  req.CatalogID,
		UserID:     req.UserID,
		DeviceID:   req.DeviceID,
		CustomName: customName,
		Location:   location,
		PlantedOn:  req.PlantedOn,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Planting created",
		zap.Int64("plant_id", plant.ID),
		zap.Int64("user_id", plant.UserID),
		zap.Int64("catalog_id", plant.CatalogID))

	return &CreatePlantResult{
		Msg:   "plant '" + catalogPlant.CommonName + "' created successfully",
		Plant: plant,
	}, nil
}

// Get returns a planting with derived fields: days since planting (only
// when a planting date is set) and the attached device, if any.
func (s *PlantService) Get(ctx context.Context, plantID, userID int64) (*PlantDetail, error) {
	if plantID <= 0 || userID <= 0 {
		return nil, types.InvalidInput("ids must be positive")
	}

	plant, err := s.store.GetPlantByIDAndUser(ctx, plantID, userID)
	if err != nil {
		return nil, err
	}

	detail := &PlantDetail{PlantWithCatalog: plant}

	if plant.PlantedOn != nil {
		days := daysSince(*plant.PlantedOn, time.Now())
		detail.DaysSincePlanting = &days
	}

	if plant.DeviceID != nil {
		device, err := s.store.GetDeviceByID(ctx, *plant.DeviceID)
		if err != nil {
			return nil, err
		}
		detail.Device = &DeviceInfo{
			ID:         device.ID,
			MACAddress: device.MACAddress,
			Name:       device.Name,
		}
	}

	return detail, nil
}

// daysSince counts whole calendar days between the planting date and now.
func daysSince(plantedOn, now time.Time) int {
	planted := time.Date(plantedOn.Year(), plantedOn.Month(), plantedOn.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(planted).Hours() / 24)
}

func (s *PlantService) ListByUser(ctx context.Context, userID int64, activeOnly bool) (*UserPlantList, error) {
	if userID <= 0 {
		return nil, types.InvalidInput("user id must be positive")
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	plants, err := s.store.ListPlantsByUser(ctx, userID, activeOnly)
	if err != nil {
		return nil, err
	}
	return &UserPlantList{UserID: userID, Plants: plants, PlantCounts: storage.CountPlants(plants)}, nil
}

func (s *PlantService) ListByDevice(ctx context.Context, deviceID int64, activeOnly bool) (*DevicePlantList, error) {
	if deviceID <= 0 {
		return nil, types.InvalidInput("device id must be positive")
	}
	device, err := s.store.GetDeviceByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	plants, err := s.store.ListPlantsByDevice(ctx, deviceID, activeOnly)
	if err != nil {
		return nil, err
	}
	return &DevicePlantList{
		DeviceID:    device.ID,
		MACAddress:  device.MACAddress,
		DeviceName:  device.Name,
		Plants:      plants,
		PlantCounts: storage.CountPlants(plants),
	}, nil
}

func (s *PlantService) ListByUserAndDevice(ctx context.Context, userID, deviceID int64, activeOnly bool) (*UserDevicePlantList, error) {
	if userID <= 0 || deviceID <= 0 {
		return nil, types.InvalidInput("ids must be positive")
	}
	if _, err := s.store.GetDeviceByIDAndUser(ctx, deviceID, userID); err != nil {
		return nil, err
	}

	plants, err := s.store.ListPlantsByUserAndDevice(ctx, userID, deviceID, activeOnly)
	if err != nil {
		return nil, err
	}
	return &UserDevicePlantList{
		UserID:      userID,
		DeviceID:    deviceID,
		Plants:      plants,
		PlantCounts: storage.CountPlants(plants),
	}, nil
}

// SoftDelete marks a planting inactive. Deleting an already-inactive
// planting is rejected rather than silently accepted.
func (s *PlantService) SoftDelete(ctx context.Context, plantID, userID int64) (*DeleteResult, error) {
	if plantID <= 0 || userID <= 0 {
		return nil, types.InvalidInput("ids must be positive")
	}

	plant, err := s.store.GetPlantByIDAndUser(ctx, plantID, userID)
	if err != nil {
		return nil, err
	}
	if !plant.Active {
		return nil, types.InvalidInput("plant is already deleted")
	}

	if err := s.store.SoftDeletePlant(ctx, plantID); err != nil {
		return nil, err
	}

	s.logger.Info("Planting soft-deleted",
		zap.Int64("plant_id", plantID),
		zap.Int64("user_id", userID))

	return &DeleteResult{Msg: "plant deleted", PlantID: plantID}, nil
}

// HardDelete removes the planting row permanently. Scoped to the owning
// user like the soft delete.
func (s *PlantService) HardDelete(ctx context.Context, plantID, userID int64) (*DeleteResult, error) {
	if plantID <= 0 || userID <= 0 {
		return nil, types.InvalidInput("ids must be positive")
	}

	if _, err := s.store.GetPlantByIDAndUser(ctx, plantID, userID); err != nil {
		return nil, err
	}

	if err := s.store.HardDeletePlant(ctx, plantID); err != nil {
		return nil, err
	}

	s.logger.Info("Planting permanently deleted",
		zap.Int64("plant_id", plantID),
		zap.Int64("user_id", userID))

	return &DeleteResult{Msg: "plant permanently deleted", PlantID: plantID, DeletedPermanently: true}, nil
}
