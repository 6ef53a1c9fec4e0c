package devices

import (
	"context"
	"strings"

	"github.com/easygrow/plantcore/internal/storage"
	"github.com/easygrow/plantcore/internal/types"
	"go.uber.org/zap"
)

// Store is the slice of the storage layer the device service needs.
type Store interface {
	CreateDevice(ctx context.Context, macAddress string, name *string, userID int64) (*storage.Device, error)
	UpdateDeviceName(ctx context.Context, deviceID int64, name string) (*storage.Device, error)
	ListDevicesByUser(ctx context.Context, userID int64) ([]*storage.Device, error)
	GetUserByID(ctx context.Context, userID int64) (*storage.User, error)
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

type AssignRequest struct {
	UserID     int64  `json:"user_id" binding:"required"`
	MACAddress string `json:"mac_address" binding:"required"`
	Name       string `json:"nombre_dispositivo"`
}

type AssignResult struct {
	Msg    string          `json:"msg"`
	Device *storage.Device `json:"dispositivo"`
}

type DeviceList struct {
	UserID  int64             `json:"user_id"`
	Devices []*storage.Device `json:"devices"`
	Total   int               `json:"total_devices"`
}

// Assign binds a hardware address to a user. The MAC is canonicalized
// server-side; the unique index decides duplicates, including under
// concurrent assignment of the same address.
func (s *Service) Assign(ctx context.Context, req AssignRequest) (*AssignResult, error) {
	if req.UserID <= 0 {
		return nil, types.InvalidInput("user_id must be positive")
	}

	mac, err := CanonicalMAC(req.MACAddress)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	var name *string
	if n := strings.TrimSpace(req.Name); n != "" {
		name = &n
	}

	device, err := s.store.CreateDevice(ctx, mac, name, req.UserID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Device assigned",
		zap.Int64("device_id", device.ID),
		zap.String("mac_address", device.MACAddress),
		zap.Int64("user_id", device.UserID))

	return &AssignResult{Msg: "device assigned successfully", Device: device}, nil
}

// Rename updates the display name of a device.
func (s *Service) Rename(ctx context.Context, deviceID int64, name string) (*storage.Device, error) {
	if deviceID <= 0 {
		return nil, types.InvalidInput("device id must be positive")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.InvalidInput("device name must not be empty")
	}
	return s.store.UpdateDeviceName(ctx, deviceID, name)
}

// ListByUser returns the user's devices; no devices is an empty list, not
// an error.
func (s *Service) ListByUser(ctx context.Context, userID int64) (*DeviceList, error) {
	if userID <= 0 {
		return nil, types.InvalidInput("user id must be positive")
	}
	devices, err := s.store.ListDevicesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &DeviceList{UserID: userID, Devices: devices, Total: len(devices)}, nil
}
