package storage

import (
	"context"
	"time"
)

// CreateReading appends one sample. The timestamp is assigned by the
// database at ingestion, never taken from the client.
func (p *PostgresClient) CreateReading(ctx context.Context, sensorID int64, value float64) (*Reading, error) {
	var reading Reading
	err := p.pool.QueryRow(ctx, `
		INSERT INTO lecturas (valor, id_sensor)
		VALUES ($1, $2)
		RETURNING id_lectura, valor, fecha_hora, id_sensor
	`, value, sensorID).Scan(
		&reading.ID, &reading.Value, &reading.RecordedAt, &reading.SensorID,
	)
	if err != nil {
		return nil, storageError("create reading", err)
	}
	return &reading, nil
}

const readingWithSensorColumns = `
	l.id_lectura, l.valor, l.fecha_hora, l.id_sensor, s.tipo_sensor, s.unidad_medida`

func (p *PostgresClient) scanReadings(ctx context.Context, query string, args ...any) ([]*ReadingWithSensor, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("list readings", err)
	}
	defer rows.Close()

	readings := make([]*ReadingWithSensor, 0)
	for rows.Next() {
		var reading ReadingWithSensor
		err := rows.Scan(
			&reading.ID, &reading.Value, &reading.RecordedAt, &reading.SensorID,
			&reading.SensorType, &reading.Unit,
		)
		if err != nil {
			return nil, storageError("scan reading", err)
		}
		readings = append(readings, &reading)
	}
	return readings, nil
}

// ListSensorReadings pages through one sensor's history, newest first.
// Date bounds are inclusive on both ends.
func (p *PostgresClient) ListSensorReadings(ctx context.Context, sensorID int64, skip, limit int, dateFrom, dateTo *time.Time) ([]*ReadingWithSensor, error) {
	return p.scanReadings(ctx, `
		SELECT `+readingWithSensorColumns+`
		FROM lecturas l
		JOIN sensores s ON s.id_sensor = l.id_sensor
		WHERE l.id_sensor = $1
		  AND ($2::timestamptz IS NULL OR l.fecha_hora >= $2)
		  AND ($3::timestamptz IS NULL OR l.fecha_hora <= $3)
		ORDER BY l.fecha_hora DESC
		OFFSET $4 LIMIT $5
	`, sensorID, dateFrom, dateTo, skip, limit)
}

// CountSensorReadings counts the filtered set, not the page.
func (p *PostgresClient) CountSensorReadings(ctx context.Context, sensorID int64, dateFrom, dateTo *time.Time) (int64, error) {
	var total int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM lecturas
		WHERE id_sensor = $1
		  AND ($2::timestamptz IS NULL OR fecha_hora >= $2)
		  AND ($3::timestamptz IS NULL OR fecha_hora <= $3)
	`, sensorID, dateFrom, dateTo).Scan(&total)
	if err != nil {
		return 0, storageError("count readings", err)
	}
	return total, nil
}

// ListDeviceReadings unions the readings of all the device's sensors,
// optionally narrowed to one sensor type, with the same inclusive date
// bounds and ordering as the per-sensor listing.
func (p *PostgresClient) ListDeviceReadings(ctx context.Context, deviceID int64, sensorType *string, skip, limit int, dateFrom, dateTo *time.Time) ([]*ReadingWithSensor, error) {
	return p.scanReadings(ctx, `
		SELECT `+readingWithSensorColumns+`
		FROM lecturas l
		JOIN sensores s ON s.id_sensor = l.id_sensor
		WHERE s.id_dispositivo = $1
		  AND ($2::text IS NULL OR s.tipo_sensor = $2)
		  AND ($3::timestamptz IS NULL OR l.fecha_hora >= $3)
		  AND ($4::timestamptz IS NULL OR l.fecha_hora <= $4)
		ORDER BY l.fecha_hora DESC
		OFFSET $5 LIMIT $6
	`, deviceID, sensorType, dateFrom, dateTo, skip, limit)
}

func (p *PostgresClient) CountDeviceReadings(ctx context.Context, deviceID int64, sensorType *string, dateFrom, dateTo *time.Time) (int64, error) {
	var total int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM lecturas l
		JOIN sensores s ON s.id_sensor = l.id_sensor
		WHERE s.id_dispositivo = $1
		  AND ($2::text IS NULL OR s.tipo_sensor = $2)
		  AND ($3::timestamptz IS NULL OR l.fecha_hora >= $3)
		  AND ($4::timestamptz IS NULL OR l.fecha_hora <= $4)
	`, deviceID, sensorType, dateFrom, dateTo).Scan(&total)
	if err != nil {
		return 0, storageError("count device readings", err)
	}
	return total, nil
}

// LatestReadingsByDevice resolves each sensor's single most recent reading.
// Sensors without readings are omitted.
func (p *PostgresClient) LatestReadingsByDevice(ctx context.Context, deviceID int64) ([]*SensorLatest, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT DISTINCT ON (l.id_sensor)
			s.id_sensor, s.tipo_sensor, s.unidad_medida, s.descripcion, s.id_dispositivo,
			l.id_lectura, l.valor, l.fecha_hora, l.id_sensor
		FROM lecturas l
		JOIN sensores s ON s.id_sensor = l.id_sensor
		WHERE s.id_dispositivo = $1
		ORDER BY l.id_sensor, l.fecha_hora DESC
	`, deviceID)
	if err != nil {
		return nil, storageError("get latest readings", err)
	}
	defer rows.Close()

	latest := make([]*SensorLatest, 0)
	for rows.Next() {
		var entry SensorLatest
		err := rows.Scan(
			&entry.Sensor.ID, &entry.Sensor.Type, &entry.Sensor.Unit,
			&entry.Sensor.Description, &entry.Sensor.DeviceID,
			&entry.Reading.ID, &entry.Reading.Value, &entry.Reading.RecordedAt,
			&entry.Reading.SensorID,
		)
		if err != nil {
			return nil, storageError("scan latest reading", err)
		}
		latest = append(latest, &entry)
	}
	return latest, nil
}
