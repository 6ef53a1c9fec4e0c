package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/easygrow/plantcore/internal/storage"
)

func TestNewReadingMessage(t *testing.T) {
	reading := &storage.ReadingWithSensor{
		Reading: storage.Reading{
			ID:         7,
			Value:      42.5,
			RecordedAt: time.Now(),
			SensorID:   3,
		},
		SensorType: "YL-69",
		Unit:       "%",
	}

	msg := NewReadingMessage(reading)

	if msg.Type != MessageTypeReading {
		t.Errorf("Expected message type %s, got %s", MessageTypeReading, msg.Type)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Failed to marshal message: %v", err)
	}

	var decoded struct {
		Type string `json:"type"`
		Data struct {
			ID         int64   `json:"id_lectura"`
			Value      float64 `json:"valor"`
			SensorType string  `json:"tipo_sensor"`
			Unit       string  `json:"unidad_medida"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}

	if decoded.Type != "reading" {
		t.Errorf("Expected type reading on the wire, got %s", decoded.Type)
	}
	if decoded.Data.ID != 7 || decoded.Data.Value != 42.5 {
		t.Errorf("Expected reading fields to carry through, got %+v", decoded.Data)
	}
	if decoded.Data.SensorType != "YL-69" || decoded.Data.Unit != "%" {
		t.Errorf("Expected sensor type and unit on the wire, got %+v", decoded.Data)
	}
}
