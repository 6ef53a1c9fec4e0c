package sensors

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/easygrow/plantcore/internal/storage"
	"github.com/easygrow/plantcore/internal/types"
	"go.uber.org/zap"
)

type fakeStore struct {
	devices  map[int64]*storage.Device
	sensors  map[int64]*storage.Sensor
	readings []*storage.Reading
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		devices: map[int64]*storage.Device{
			1: {ID: 1, MACAddress: "AA:BB:CC:DD:EE:FF", UserID: 1},
		},
		sensors: make(map[int64]*storage.Sensor),
		nextID:  1,
	}
}

func (f *fakeStore) addSensor(sensorType, unit string, deviceID int64) *storage.Sensor {
	sensor := &storage.Sensor{ID: f.nextID, Type: sensorType, Unit: unit, DeviceID: deviceID}
	f.nextID++
	f.sensors[sensor.ID] = sensor
	return sensor
}

func (f *fakeStore) addReading(sensorID int64, value float64, at time.Time) *storage.Reading {
	reading := &storage.Reading{ID: f.nextID, Value: value, RecordedAt: at, SensorID: sensorID}
	f.nextID++
	f.readings = append(f.readings, reading)
	return reading
}

func (f *fakeStore) CreateSensor(_ context.Context, sensorType, unit string, description *string, deviceID int64) (*storage.Sensor, error) {
	sensor := f.addSensor(sensorType, unit, deviceID)
	sensor.Description = description
	return sensor, nil
}

func (f *fakeStore) GetSensorByID(_ context.Context, sensorID int64) (*storage.Sensor, error) {
	sensor, ok := f.sensors[sensorID]
	if !ok {
		return nil, types.NotFound("sensor not found")
	}
	return sensor, nil
}

func (f *fakeStore) ListSensorsByDevice(_ context.Context, deviceID int64, sensorType *string) ([]*storage.Sensor, error) {
	sensors := make([]*storage.Sensor, 0)
	for _, sensor := range f.sensors {
		if sensor.DeviceID != deviceID {
			continue
		}
		if sensorType != nil && sensor.Type != *sensorType {
			continue
		}
		sensors = append(sensors, sensor)
	}
	sort.Slice(sensors, func(i, j int) bool { return sensors[i].Type < sensors[j].Type })
	return sensors, nil
}

func (f *fakeStore) GetSensorStats(_ context.Context, sensorID int64, since time.Time) (*storage.SensorStats, error) {
	stats := &storage.SensorStats{}
	var sum float64
	var windowCount int64
	for _, reading := range f.readings {
		if reading.SensorID != sensorID {
			continue
		}
		stats.TotalReadings++
		at := reading.RecordedAt
		if stats.LastReading == nil || at.After(*stats.LastReading) {
			stats.LastReading = &at
		}
		if !at.Before(since) {
			sum += reading.Value
			windowCount++
		}
	}
	if windowCount > 0 {
		avg := sum / float64(windowCount)
		stats.TrailingAvg = &avg
	}
	return stats, nil
}

func (f *fakeStore) CreateReading(_ context.Context, sensorID int64, value float64) (*storage.Reading, error) {
	return f.addReading(sensorID, value, time.Now()), nil
}

func (f *fakeStore) matchingReadings(sensorOK func(*storage.Sensor) bool, dateFrom, dateTo *time.Time) []*storage.ReadingWithSensor {
	matched := make([]*storage.ReadingWithSensor, 0)
	for _, reading := range f.readings {
		sensor := f.sensors[reading.SensorID]
		if sensor == nil || !sensorOK(sensor) {
			continue
		}
		if dateFrom != nil && reading.RecordedAt.Before(*dateFrom) {
			continue
		}
		if dateTo != nil && reading.RecordedAt.After(*dateTo) {
			continue
		}
		matched = append(matched, &storage.ReadingWithSensor{
			Reading:    *reading,
			SensorType: sensor.Type,
			Unit:       sensor.Unit,
		})
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RecordedAt.After(matched[j].RecordedAt)
	})
	return matched
}

func page(readings []*storage.ReadingWithSensor, skip, limit int) []*storage.ReadingWithSensor {
	if skip >= len(readings) {
		return []*storage.ReadingWithSensor{}
	}
	end := skip + limit
	if end > len(readings) {
		end = len(readings)
	}
	return readings[skip:end]
}

func (f *fakeStore) ListSensorReadings(_ context.Context, sensorID int64, skip, limit int, dateFrom, dateTo *time.Time) ([]*storage.ReadingWithSensor, error) {
	matched := f.matchingReadings(func(s *storage.Sensor) bool { return s.ID == sensorID }, dateFrom, dateTo)
	return page(matched, skip, limit), nil
}

func (f *fakeStore) CountSensorReadings(_ context.Context, sensorID int64, dateFrom, dateTo *time.Time) (int64, error) {
	matched := f.matchingReadings(func(s *storage.Sensor) bool { return s.ID == sensorID }, dateFrom, dateTo)
	return int64(len(matched)), nil
}

func (f *fakeStore) ListDeviceReadings(_ context.Context, deviceID int64, sensorType *string, skip, limit int, dateFrom, dateTo *time.Time) ([]*storage.ReadingWithSensor, error) {
	matched := f.matchingReadings(func(s *storage.Sensor) bool {
		return s.DeviceID == deviceID && (sensorType == nil || s.Type == *sensorType)
	}, dateFrom, dateTo)
	return page(matched, skip, limit), nil
}

func (f *fakeStore) CountDeviceReadings(_ context.Context, deviceID int64, sensorType *string, dateFrom, dateTo *time.Time) (int64, error) {
	matched := f.matchingReadings(func(s *storage.Sensor) bool {
		return s.DeviceID == deviceID && (sensorType == nil || s.Type == *sensorType)
	}, dateFrom, dateTo)
	return int64(len(matched)), nil
}

func (f *fakeStore) LatestReadingsByDevice(_ context.Context, deviceID int64) ([]*storage.SensorLatest, error) {
	latestBySensor := make(map[int64]*storage.Reading)
	for _, reading := range f.readings {
		sensor := f.sensors[reading.SensorID]
		if sensor == nil || sensor.DeviceID != deviceID {
			continue
		}
		current := latestBySensor[reading.SensorID]
		if current == nil || reading.RecordedAt.After(current.RecordedAt) {
			latestBySensor[reading.SensorID] = reading
		}
	}

	latest := make([]*storage.SensorLatest, 0, len(latestBySensor))
	for sensorID, reading := range latestBySensor {
		latest = append(latest, &storage.SensorLatest{
			Sensor:  *f.sensors[sensorID],
			Reading: *reading,
		})
	}
	return latest, nil
}

func (f *fakeStore) GetDeviceByID(_ context.Context, deviceID int64) (*storage.Device, error) {
	device, ok := f.devices[deviceID]
	if !ok {
		return nil, types.NotFound("device not found")
	}
	return device, nil
}

type fakeBroadcaster struct {
	readings []*storage.ReadingWithSensor
}

func (f *fakeBroadcaster) BroadcastReading(reading *storage.ReadingWithSensor) {
	f.readings = append(f.readings, reading)
}

func TestCreateSensorDefaultsUnit(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, zap.NewNop())

	sensor, err := svc.Create(context.Background(), CreateSensorRequest{
		DeviceID: 1,
		Type:     "YL-69",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sensor.Unit != "%" {
		t.Errorf("Expected default unit %%, got %s", sensor.Unit)
	}

	// Explicit unit wins (DHT22 reports humidity as well).
	humidity, err := svc.Create(context.Background(), CreateSensorRequest{
		DeviceID: 1,
		Type:     "DHT22",
		Unit:     "%",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if humidity.Unit != "%" {
		t.Errorf("Expected explicit unit to win, got %s", humidity.Unit)
	}
}

func TestCreateSensorUnknownType(t *testing.T) {
	svc := NewService(newFakeStore(), nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateSensorRequest{DeviceID: 1, Type: "DS18B20"})
	if types.KindOf(err) != types.KindInvalidInput {
		t.Errorf("Expected InvalidInput for unknown type, got %v", err)
	}
}

func TestCreateReadingBroadcasts(t *testing.T) {
	store := newFakeStore()
	sensor := store.addSensor("YL-69", "%", 1)
	broadcaster := &fakeBroadcaster{}
	svc := NewService(store, broadcaster, zap.NewNop())

	result, err := svc.CreateReading(context.Background(), CreateReadingRequest{
		SensorID: sensor.ID,
		Value:    42.5,
	})
	if err != nil {
		t.Fatalf("CreateReading failed: %v", err)
	}

	if result.Reading.Value != 42.5 {
		t.Errorf("Expected value 42.5, got %f", result.Reading.Value)
	}
	if result.Reading.SensorType != "YL-69" {
		t.Errorf("Expected sensor type on the wire shape, got %s", result.Reading.SensorType)
	}
	if len(broadcaster.readings) != 1 {
		t.Fatalf("Expected 1 broadcast, got %d", len(broadcaster.readings))
	}
	if broadcaster.readings[0].Value != 42.5 {
		t.Errorf("Expected broadcast value 42.5, got %f", broadcaster.readings[0].Value)
	}
}

func TestCreateReadingUnknownSensor(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeBroadcaster{}, zap.NewNop())

	_, err := svc.CreateReading(context.Background(), CreateReadingRequest{SensorID: 99, Value: 1})
	if types.KindOf(err) != types.KindNotFound {
		t.Errorf("Expected NotFound for unknown sensor, got %v", err)
	}
}

func TestListSensorReadingsValidation(t *testing.T) {
	store := newFakeStore()
	sensor := store.addSensor("YL-69", "%", 1)
	svc := NewService(store, nil, zap.NewNop())

	if _, err := svc.ListSensorReadings(context.Background(), sensor.ID, -1, 100, nil, nil); types.KindOf(err) != types.KindInvalidInput {
		t.Errorf("Expected InvalidInput for negative skip, got %v", err)
	}
	if _, err := svc.ListSensorReadings(context.Background(), sensor.ID, 0, 1001, nil, nil); types.KindOf(err) != types.KindInvalidInput {
		t.Errorf("Expected InvalidInput for limit above 1000, got %v", err)
	}
	if _, err := svc.ListSensorReadings(context.Background(), sensor.ID, 0, 1000, nil, nil); err != nil {
		t.Errorf("Expected limit 1000 to be accepted, got %v", err)
	}
}

func TestListSensorReadingsTotalCountsFilteredSet(t *testing.T) {
	store := newFakeStore()
	sensor := store.addSensor("YL-69", "%", 1)
	now := time.Now()
	for i := 0; i < 5; i++ {
		store.addReading(sensor.ID, float64(i), now.Add(-time.Duration(i)*time.Hour))
	}
	svc := NewService(store, nil, zap.NewNop())

	result, err := svc.ListSensorReadings(context.Background(), sensor.ID, 0, 2, nil, nil)
	if err != nil {
		t.Fatalf("ListSensorReadings failed: %v", err)
	}

	if len(result.Readings) != 2 {
		t.Errorf("Expected page of 2, got %d", len(result.Readings))
	}
	if result.Total != 5 {
		t.Errorf("Expected total 5 regardless of page size, got %d", result.Total)
	}
	if !result.Readings[0].RecordedAt.After(result.Readings[1].RecordedAt) {
		t.Error("Expected newest-first ordering")
	}
	if result.DateRange != nil {
		t.Error("Expected nil date range when no bounds given")
	}
}

func TestListDeviceReadingsIncludedSensorsArePageScoped(t *testing.T) {
	store := newFakeStore()
	moisture := store.addSensor("YL-69", "%", 1)
	light := store.addSensor("BH1750", "lux", 1)
	now := time.Now()
	// Light readings are newer, so a page of 2 only sees BH1750.
	store.addReading(light.ID, 500, now)
	store.addReading(light.ID, 510, now.Add(-time.Minute))
	store.addReading(moisture.ID, 40, now.Add(-time.Hour))
	svc := NewService(store, nil, zap.NewNop())

	result, err := svc.ListDeviceReadings(context.Background(), 1, nil, 0, 2, nil, nil)
	if err != nil {
		t.Fatalf("ListDeviceReadings failed: %v", err)
	}

	if result.Total != 3 {
		t.Errorf("Expected total 3, got %d", result.Total)
	}
	if len(result.IncludedSensors) != 1 || result.IncludedSensors[0] != "BH1750" {
		t.Errorf("Expected page-scoped included sensors [BH1750], got %v", result.IncludedSensors)
	}
}

func TestLatestPicksMostRecentPerSensor(t *testing.T) {
	store := newFakeStore()
	sensor := store.addSensor("YL-69", "%", 1)
	other := store.addSensor("BH1750", "lux", 1)
	now := time.Now()
	store.addReading(sensor.ID, 10, now.Add(-2*time.Hour))
	store.addReading(sensor.ID, 20, now.Add(-time.Hour))
	newest := store.addReading(other.ID, 500, now.Add(-time.Minute))
	svc := NewService(store, nil, zap.NewNop())

	result, err := svc.Latest(context.Background(), 1)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}

	if len(result.Readings) != 2 {
		t.Fatalf("Expected one entry per sensor, got %d", len(result.Readings))
	}
	for _, entry := range result.Readings {
		if entry.Sensor.ID == sensor.ID && entry.Reading.Value != 20 {
			t.Errorf("Expected most recent moisture reading 20, got %f", entry.Reading.Value)
		}
	}
	if !result.LastUpdated.Equal(newest.RecordedAt) {
		t.Errorf("Expected last-updated %v, got %v", newest.RecordedAt, result.LastUpdated)
	}
}

func TestLatestWithNoReadingsFallsBackToNow(t *testing.T) {
	store := newFakeStore()
	store.addSensor("YL-69", "%", 1)
	svc := NewService(store, nil, zap.NewNop())

	before := time.Now()
	result, err := svc.Latest(context.Background(), 1)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}

	if len(result.Readings) != 0 {
		t.Errorf("Expected no entries, got %d", len(result.Readings))
	}
	if result.LastUpdated.Before(before) {
		t.Error("Expected last-updated to fall back to the current time")
	}
}

func TestTypeWindowValidation(t *testing.T) {
	svc := NewService(newFakeStore(), nil, zap.NewNop())

	if _, err := svc.TypeWindow(context.Background(), 1, "YL-69", 0, 50, 0); types.KindOf(err) != types.KindInvalidInput {
		t.Errorf("Expected InvalidInput for zero hours, got %v", err)
	}
	if _, err := svc.TypeWindow(context.Background(), 1, "YL-69", 0, 50, 169); types.KindOf(err) != types.KindInvalidInput {
		t.Errorf("Expected InvalidInput for hours above 168, got %v", err)
	}
	if _, err := svc.TypeWindow(context.Background(), 1, "YL-69", 0, 501, 24); types.KindOf(err) != types.KindInvalidInput {
		t.Errorf("Expected InvalidInput for limit above 500, got %v", err)
	}
	if _, err := svc.TypeWindow(context.Background(), 1, "DS18B20", 0, 50, 24); types.KindOf(err) != types.KindInvalidInput {
		t.Errorf("Expected InvalidInput for unknown sensor type, got %v", err)
	}
}

func TestTypeWindowNoSensorsOfType(t *testing.T) {
	store := newFakeStore()
	store.addSensor("BH1750", "lux", 1)
	svc := NewService(store, nil, zap.NewNop())

	result, err := svc.TypeWindow(context.Background(), 1, "YL-69", 0, 50, 24)
	if err != nil {
		t.Fatalf("TypeWindow failed: %v", err)
	}

	if result.SensorsFound != 0 {
		t.Errorf("Expected no sensors of type, got %d", result.SensorsFound)
	}
	if len(result.Readings) != 0 || result.Total != 0 {
		t.Errorf("Expected empty result, got %d readings, total %d", len(result.Readings), result.Total)
	}
}

func TestTypeWindowFiltersByAge(t *testing.T) {
	store := newFakeStore()
	sensor := store.addSensor("YL-69", "%", 1)
	now := time.Now()
	store.addReading(sensor.ID, 35, now.Add(-time.Hour))
	store.addReading(sensor.ID, 30, now.Add(-48*time.Hour))
	svc := NewService(store, nil, zap.NewNop())

	result, err := svc.TypeWindow(context.Background(), 1, "YL-69", 0, 50, 24)
	if err != nil {
		t.Fatalf("TypeWindow failed: %v", err)
	}

	if result.Total != 1 {
		t.Errorf("Expected only the reading inside the window, got total %d", result.Total)
	}
	if result.SensorsFound != 1 {
		t.Errorf("Expected 1 sensor of type, got %d", result.SensorsFound)
	}
	if len(result.Readings) != 1 || result.Readings[0].Value != 35 {
		t.Errorf("Expected the recent reading only, got %+v", result.Readings)
	}
}

func TestSensorDetailStats(t *testing.T) {
	store := newFakeStore()
	sensor := store.addSensor("YL-69", "%", 1)
	now := time.Now()
	store.addReading(sensor.ID, 40, now.Add(-time.Hour))
	store.addReading(sensor.ID, 50, now.Add(-2*time.Hour))
	store.addReading(sensor.ID, 99, now.Add(-30*24*time.Hour))
	svc := NewService(store, nil, zap.NewNop())

	detail, err := svc.Get(context.Background(), sensor.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if detail.TotalReadings != 3 {
		t.Errorf("Expected 3 total readings, got %d", detail.TotalReadings)
	}
	if detail.TrailingAvg == nil || *detail.TrailingAvg != 45 {
		t.Errorf("Expected trailing average 45 over the last day, got %v", detail.TrailingAvg)
	}
	if detail.Device == nil || detail.Device.MACAddress != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("Expected embedded device summary, got %+v", detail.Device)
	}
}
