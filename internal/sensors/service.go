package sensors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/easygrow/plantcore/internal/storage"
	"github.com/easygrow/plantcore/internal/types"
	"go.uber.org/zap"
)

const trailingStatsWindow = 24 * time.Hour

// Store is the slice of the storage layer the sensor service needs.
type Store interface {
	CreateSensor(ctx context.Context, sensorType, unit string, description *string, deviceID int64) (*storage.Sensor, error)
	GetSensorByID(ctx context.Context, sensorID int64) (*storage.Sensor, error)
	ListSensorsByDevice(ctx context.Context, deviceID int64, sensorType *string) ([]*storage.Sensor, error)
	GetSensorStats(ctx context.Context, sensorID int64, since time.Time) (*storage.SensorStats, error)
	CreateReading(ctx context.Context, sensorID int64, value float64) (*storage.Reading, error)
	ListSensorReadings(ctx context.Context, sensorID int64, skip, limit int, dateFrom, dateTo *time.Time) ([]*storage.ReadingWithSensor, error)
	CountSensorReadings(ctx context.Context, sensorID int64, dateFrom, dateTo *time.Time) (int64, error)
	ListDeviceReadings(ctx context.Context, deviceID int64, sensorType *string, skip, limit int, dateFrom, dateTo *time.Time) ([]*storage.ReadingWithSensor, error)
	CountDeviceReadings(ctx context.Context, deviceID int64, sensorType *string, dateFrom, dateTo *time.Time) (int64, error)
	LatestReadingsByDevice(ctx context.Context, deviceID int64) ([]*storage.SensorLatest, error)
	GetDeviceByID(ctx context.Context, deviceID int64) (*storage.Device, error)
}

// Broadcaster pushes freshly ingested readings to live subscribers. The
// websocket hub satisfies it; a nil broadcaster disables live updates.
type Broadcaster interface {
	BroadcastReading(reading *storage.ReadingWithSensor)
}

type Service struct {
	store       Store
	broadcaster Broadcaster
	logger      *zap.Logger
}

func NewService(store Store, broadcaster Broadcaster, logger *zap.Logger) *Service {
	return &Service{store: store, broadcaster: broadcaster, logger: logger}
}

// DeviceSummary is the typed device sub-record embedded in sensor details.
type DeviceSummary struct {
	ID         int64   `json:"id_dispositivo"`
	MACAddress string  `json:"mac_address"`
	Name       *string `json:"nombre_dispositivo"`
}

type SensorList struct {
	Sensors  []*storage.Sensor `json:"sensores"`
	DeviceID int64             `json:"dispositivo_id"`
	Total    int               `json:"total_sensores"`
}

type SensorDetail struct {
	*storage.Sensor
	Device *DeviceSummary `json:"dispositivo_info"`
	storage.SensorStats
}

type CreateSensorRequest struct {
	DeviceID    int64   `json:"id_dispositivo" binding:"required"`
	Type        string  `json:"tipo_sensor" binding:"required"`
	Unit        string  `json:"unidad_medida"`
	Description *string `json:"descripcion"`
}

type CreateReadingRequest struct {
	SensorID int64   `json:"id_sensor" binding:"required"`
	Value    float64 `json:"valor"`
}

type CreateReadingResult struct {
	Msg     string                     `json:"msg"`
	Reading *storage.ReadingWithSensor `json:"lectura"`
}

type DateRange struct {
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
}

type SensorReadingList struct {
	Readings  []*storage.ReadingWithSensor `json:"lecturas"`
	SensorID  int64                        `json:"sensor_id"`
	Total     int64                        `json:"total"`
	Skip      int                          `json:"skip"`
	Limit     int                          `json:"limit"`
	DateRange *DateRange                   `json:"date_range"`
}

type DeviceReadingList struct {
	Readings        []*storage.ReadingWithSensor `json:"lecturas"`
	DeviceID        int64                        `json:"dispositivo_id"`
	Total           int64                        `json:"total"`
	Skip            int                          `json:"skip"`
	Limit           int                          `json:"limit"`
	IncludedSensors []string                     `json:"sensores_incluidos"`
	DateRange       *DateRange                   `json:"date_range"`
}

type LatestReadings struct {
	DeviceID    int64                   `json:"dispositivo_id"`
	Readings    []*storage.SensorLatest `json:"lecturas_por_sensor"`
	LastUpdated time.Time               `json:"ultima_actualizacion"`
}

type TypeWindowReadings struct {
	DeviceID     int64                        `json:"dispositivo_id"`
	SensorType   string                       `json:"sensor_type"`
	Readings     []*storage.ReadingWithSensor `json:"lecturas"`
	Total        int64                        `json:"total"`
	Skip         int                          `json:"skip"`
	Limit        int                          `json:"limit"`
	Period       string                       `json:"periodo"`
	SensorsFound int                          `json:"sensores_incluidos"`
}

// ListByDevice returns the device's sensors ordered by type. The device
// must exist even when it has no sensors yet.
func (s *Service) ListByDevice(ctx context.Context, deviceID int64) (*SensorList, error) {
	if deviceID <= 0 {
		return nil, types.InvalidInput("device id must be positive")
	}
	if _, err := s.store.GetDeviceByID(ctx, deviceID); err != nil {
		return nil, err
	}

	sensors, err := s.store.ListSensorsByDevice(ctx, deviceID, nil)
	if err != nil {
		return nil, err
	}
	return &SensorList{Sensors: sensors, DeviceID: deviceID, Total: len(sensors)}, nil
}

// Get returns one sensor with its reading statistics and owning device.
func (s *Service) Get(ctx context.Context, sensorID int64) (*SensorDetail, error) {
	if sensorID <= 0 {
		return nil, types.InvalidInput("sensor id must be positive")
	}

	sensor, err := s.store.GetSensorByID(ctx, sensorID)
	if err != nil {
		return nil, err
	}

	device, err := s.store.GetDeviceByID(ctx, sensor.DeviceID)
	if err != nil {
		return nil, err
	}

	stats, err := s.store.GetSensorStats(ctx, sensorID, time.Now().Add(-trailingStatsWindow))
	if err != nil {
		return nil, err
	}

	return &SensorDetail{
		Sensor: sensor,
		Device: &DeviceSummary{
			ID:         device.ID,
			MACAddress: device.MACAddress,
			Name:       device.Name,
		},
		SensorStats: *stats,
	}, nil
}

// Create registers a sensor on a device. The type must be in the registry;
// a missing unit falls back to the type's default.
func (s *Service) Create(ctx context.Context, req CreateSensorRequest) (*storage.Sensor, error) {
	if req.DeviceID <= 0 {
		return nil, types.InvalidInput("device id must be positive")
	}

	info, err := LookupType(strings.TrimSpace(req.Type))
	if err != nil {
		return nil, err
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = info.DefaultUnit
	}

	if _, err := s.store.GetDeviceByID(ctx, req.DeviceID); err != nil {
		return nil, err
	}

	sensor, err := s.store.CreateSensor(ctx, info.Name, unit, req.Description, req.DeviceID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sensor created",
		zap.Int64("sensor_id", sensor.ID),
		zap.String("sensor_type", sensor.Type),
		zap.Int64("device_id", sensor.DeviceID))

	return sensor, nil
}

// CreateReading appends a sample for an existing sensor. The timestamp is
// assigned by the database. The new reading is broadcast to live
// subscribers after the insert commits.
func (s *Service) CreateReading(ctx context.Context, req CreateReadingRequest) (*CreateReadingResult, error) {
	if req.SensorID <= 0 {
		return nil, types.InvalidInput("sensor id must be positive")
	}

	sensor, err := s.store.GetSensorByID(ctx, req.SensorID)
	if err != nil {
		return nil, err
	}

	reading, err := s.store.CreateReading(ctx, req.SensorID, req.Value)
	if err != nil {
		return nil, err
	}

	enriched := &storage.ReadingWithSensor{
		Reading:    *reading,
		SensorType: sensor.Type,
		Unit:       sensor.Unit,
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastReading(enriched)
	}

	return &CreateReadingResult{Msg: "reading created successfully", Reading: enriched}, nil
}

func validatePage(skip, limit, maxLimit int) error {
	if skip < 0 {
		return types.InvalidInput("skip must be zero or greater")
	}
	if limit <= 0 || limit > maxLimit {
		return types.InvalidInput(fmt.Sprintf("limit must be between 1 and %d", maxLimit))
	}
	return nil
}

func rangeOf(dateFrom, dateTo *time.Time) *DateRange {
	if dateFrom == nil && dateTo == nil {
		return nil
	}
	return &DateRange{DateFrom: dateFrom, DateTo: dateTo}
}

// ListSensorReadings pages one sensor's history newest first. Date bounds
// are inclusive; the total counts the filtered set.
func (s *Service) ListSensorReadings(ctx context.Context, sensorID int64, skip, limit int, dateFrom, dateTo *time.Time) (*SensorReadingList, error) {
	if sensorID <= 0 {
		return nil, types.InvalidInput("sensor id must be positive")
	}
	if err := validatePage(skip, limit, 1000); err != nil {
		return nil, err
	}

	if _, err := s.store.GetSensorByID(ctx, sensorID); err != nil {
		return nil, err
	}

	readings, err := s.store.ListSensorReadings(ctx, sensorID, skip, limit, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountSensorReadings(ctx, sensorID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	return &SensorReadingList{
		Readings:  readings,
		SensorID:  sensorID,
		Total:     total,
		Skip:      skip,
		Limit:     limit,
		DateRange: rangeOf(dateFrom, dateTo),
	}, nil
}

// ListDeviceReadings unions the readings of all the device's sensors,
// optionally narrowed to one type. The included-sensors list names the
// distinct types present in the returned page, not in the full set.
func (s *Service) ListDeviceReadings(ctx context.Context, deviceID int64, sensorType *string, skip, limit int, dateFrom, dateTo *time.Time) (*DeviceReadingList, error) {
	if deviceID <= 0 {
		return nil, types.InvalidInput("device id must be positive")
	}
	if err := validatePage(skip, limit, 1000); err != nil {
		return nil, err
	}

	if _, err := s.store.GetDeviceByID(ctx, deviceID); err != nil {
		return nil, err
	}

	readings, err := s.store.ListDeviceReadings(ctx, deviceID, sensorType, skip, limit, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountDeviceReadings(ctx, deviceID, sensorType, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	included := make([]string, 0)
	for _, reading := range readings {
		if !seen[reading.SensorType] {
			seen[reading.SensorType] = true
			included = append(included, reading.SensorType)
		}
	}

	return &DeviceReadingList{
		Readings:        readings,
		DeviceID:        deviceID,
		Total:           total,
		Skip:            skip,
		Limit:           limit,
		IncludedSensors: included,
		DateRange:       rangeOf(dateFrom, dateTo),
	}, nil
}

// Latest resolves each sensor's most recent reading. The device-level
// last-updated timestamp is the max over all sensors, falling back to the
// current time when the device has no readings at all.
func (s *Service) Latest(ctx context.Context, deviceID int64) (*LatestReadings, error) {
	if deviceID <= 0 {
		return nil, types.InvalidInput("device id must be positive")
	}
	if _, err := s.store.GetDeviceByID(ctx, deviceID); err != nil {
		return nil, err
	}

	latest, err := s.store.LatestReadingsByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	lastUpdated := time.Now()
	if len(latest) > 0 {
		lastUpdated = latest[0].Reading.RecordedAt
		for _, entry := range latest[1:] {
			if entry.Reading.RecordedAt.After(lastUpdated) {
				lastUpdated = entry.Reading.RecordedAt
			}
		}
	}

	return &LatestReadings{DeviceID: deviceID, Readings: latest, LastUpdated: lastUpdated}, nil
}

// TypeWindow returns one sensor type's readings over the trailing window.
// A device with no sensors of that type yields an empty result, not an
// error.
func (s *Service) TypeWindow(ctx context.Context, deviceID int64, sensorType string, skip, limit, hours int) (*TypeWindowReadings, error) {
	if deviceID <= 0 {
		return nil, types.InvalidInput("device id must be positive")
	}
	if err := validatePage(skip, limit, 500); err != nil {
		return nil, err
	}
	if hours < 1 || hours > 168 {
		return nil, types.InvalidInput("hours must be between 1 and 168")
	}

	info, err := LookupType(sensorType)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetDeviceByID(ctx, deviceID); err != nil {
		return nil, err
	}

	result := &TypeWindowReadings{
		DeviceID:   deviceID,
		SensorType: info.Name,
		Readings:   make([]*storage.ReadingWithSensor, 0),
		Skip:       skip,
		Limit:      limit,
		Period:     fmt.Sprintf("últimas %d horas", hours),
	}

	typed, err := s.store.ListSensorsByDevice(ctx, deviceID, &info.Name)
	if err != nil {
		return nil, err
	}
	result.SensorsFound = len(typed)
	if len(typed) == 0 {
		return result, nil
	}

	dateFrom := time.Now().Add(-time.Duration(hours) * time.Hour)
	readings, err := s.store.ListDeviceReadings(ctx, deviceID, &info.Name, skip, limit, &dateFrom, nil)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountDeviceReadings(ctx, deviceID, &info.Name, &dateFrom, nil)
	if err != nil {
		return nil, err
	}

	result.Readings = readings
	result.Total = total
	return result, nil
}
