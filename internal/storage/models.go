package storage

import (
	"time"
)

// Column and JSON names keep the Spanish identifiers of the existing
// EasyGrow schema so deployed devices and the frontend keep working.

type User struct {
	ID           int64     `json:"id_usuario"`
	FullName     string    `json:"nombre_completo"`
	Phone        *string   `json:"telefono"`
	Email        string    `json:"correo"`
	Username     string    `json:"usuario"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	RegisteredAt time.Time `json:"fecha_registro"`
}

type Device struct {
	ID         int64     `json:"id_dispositivo"`
	MACAddress string    `json:"mac_address"`
	Name       *string   `json:"nombre_dispositivo"`
	AssignedAt time.Time `json:"fecha_asignacion"`
	UserID     int64     `json:"id_usuario"`
}

type CatalogPlant struct {
	ID             int64     `json:"id_catalogo"`
	CommonName     string    `json:"nombre_comun"`
	ScientificName string    `json:"nombre_cientifico"`
	Description    *string   `json:"descripcion"`
	MaxHeightCM    *int      `json:"altura_maxima_cm"`
	CareNotes      *string   `json:"cuidados_especiales,omitempty"`
	ImageRef       *string   `json:"imagen_referencia"`
	Active         bool      `json:"activo"`
	CreatedAt      time.Time `json:"fecha_creacion"`
}

// CatalogSummary is the slice of catalog data embedded in planting
// responses.
type CatalogSummary struct {
	ID             int64   `json:"id_catalogo"`
	CommonName     string  `json:"nombre_comun"`
	ScientificName string  `json:"nombre_cientifico"`
	Description    *string `json:"descripcion"`
	MaxHeightCM    *int    `json:"altura_maxima_cm"`
	CareNotes      *string `json:"cuidados_especiales"`
	ImageRef       *string `json:"imagen_referencia"`
}

type Plant struct {
	ID           int64      `json:"id_planta"`
	CatalogID    int64      `json:"id_catalogo"`
	UserID       int64      `json:"id_usuario"`
	DeviceID     *int64     `json:"id_dispositivo"`
	CustomName   *string    `json:"nombre_personalizado"`
	Location     *string    `json:"ubicacion"`
	PlantedOn    *time.Time `json:"fecha_plantacion"`
	RegisteredAt time.Time  `json:"fecha_registro"`
	Notes        *string    `json:"notas_usuario"`
	Active       bool       `json:"activa"`
}

// PlantWithCatalog joins a planting with its catalog entry, the shape every
// planting listing returns.
type PlantWithCatalog struct {
	Plant
	Catalog CatalogSummary `json:"catalogo_info"`
}

type Sensor struct {
	ID          int64   `json:"id_sensor"`
	Type        string  `json:"tipo_sensor"`
	Unit        string  `json:"unidad_medida"`
	Description *string `json:"descripcion"`
	DeviceID    int64   `json:"id_dispositivo"`
}

type Reading struct {
	ID         int64     `json:"id_lectura"`
	Value      float64   `json:"valor"`
	RecordedAt time.Time `json:"fecha_hora"`
	SensorID   int64     `json:"id_sensor"`
}

// ReadingWithSensor carries the owning sensor's type and unit alongside a
// reading row, matching the wire shape of reading listings.
type ReadingWithSensor struct {
	Reading
	SensorType string `json:"tipo_sensor"`
	Unit       string `json:"unidad_medida"`
}

// SensorLatest is one entry of the latest-per-sensor aggregation.
type SensorLatest struct {
	Sensor  Sensor  `json:"sensor_info"`
	Reading Reading `json:"ultima_lectura"`
}

// SensorStats aggregates a sensor's reading history. TrailingAvg is nil
// when no reading falls inside the trailing window.
type SensorStats struct {
	TotalReadings int64      `json:"total_lecturas"`
	LastReading   *time.Time `json:"ultima_lectura"`
	TrailingAvg   *float64   `json:"promedio_24h"`
}
