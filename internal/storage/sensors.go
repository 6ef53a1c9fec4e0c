package storage

import (
	"context"
	"errors"
	"time"

	"github.com/easygrow/plantcore/internal/types"
	"github.com/jackc/pgx/v5"
)

func (p *PostgresClient) CreateSensor(ctx context.Context, sensorType, unit string, description *string, deviceID int64) (*Sensor, error) {
	var sensor Sensor
	err := p.pool.QueryRow(ctx, `
		INSERT INTO sensores (tipo_sensor, unidad_medida, descripcion, id_dispositivo)
		VALUES ($1, $2, $3, $4)
		RETURNING id_sensor, tipo_sensor, unidad_medida, descripcion, id_dispositivo
	`, sensorType, unit, description, deviceID).Scan(
		&sensor.ID, &sensor.Type, &sensor.Unit, &sensor.Description, &sensor.DeviceID,
	)
	if err != nil {
		return nil, storageError("create sensor", err)
	}
	return &sensor, nil
}

func (p *PostgresClient) GetSensorByID(ctx context.Context, sensorID int64) (*Sensor, error) {
	var sensor Sensor
	err := p.pool.QueryRow(ctx, `
		SELECT id_sensor, tipo_sensor, unidad_medida, descripcion, id_dispositivo
		FROM sensores
		WHERE id_sensor = $1
	`, sensorID).Scan(
		&sensor.ID, &sensor.Type, &sensor.Unit, &sensor.Description, &sensor.DeviceID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("sensor not found")
		}
		return nil, storageError("get sensor", err)
	}
	return &sensor, nil
}

// ListSensorsByDevice returns the device's sensors ordered by type. The
// optional sensorType narrows to one type.
func (p *PostgresClient) ListSensorsByDevice(ctx context.Context, deviceID int64, sensorType *string) ([]*Sensor, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id_sensor, tipo_sensor, unidad_medida, descripcion, id_dispositivo
		FROM sensores
		WHERE id_dispositivo = $1
		  AND ($2::text IS NULL OR tipo_sensor = $2)
		ORDER BY tipo_sensor
	`, deviceID, sensorType)
	if err != nil {
		return nil, storageError("list sensors", err)
	}
	defer rows.Close()

	sensors := make([]*Sensor, 0)
	for rows.Next() {
		var sensor Sensor
		err := rows.Scan(
			&sensor.ID, &sensor.Type, &sensor.Unit, &sensor.Description, &sensor.DeviceID,
		)
		if err != nil {
			return nil, storageError("scan sensor", err)
		}
		sensors = append(sensors, &sensor)
	}
	return sensors, nil
}

// GetSensorStats aggregates reading count, most recent timestamp, and the
// mean of readings recorded since the given cutoff (nil when none fall in
// the window).
func (p *PostgresClient) GetSensorStats(ctx context.Context, sensorID int64, since time.Time) (*SensorStats, error) {
	var stats SensorStats
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       MAX(fecha_hora),
		       AVG(valor) FILTER (WHERE fecha_hora >= $2)
		FROM lecturas
		WHERE id_sensor = $1
	`, sensorID, since).Scan(&stats.TotalReadings, &stats.LastReading, &stats.TrailingAvg)
	if err != nil {
		return nil, storageError("get sensor stats", err)
	}
	return &stats, nil
}
