package storage

import (
	"context"
	"errors"

	"github.com/easygrow/plantcore/internal/types"
	"github.com/jackc/pgx/v5"
)

// CreateDevice binds a hardware address to a user. The unique index on
// mac_address is the authority on duplicates; a concurrent second writer
// surfaces here as a Conflict.
func (p *PostgresClient) CreateDevice(ctx context.Context, macAddress string, name *string, userID int64) (*Device, error) {
	var device Device
	err := p.pool.QueryRow(ctx, `
		INSERT INTO dispositivos (mac_address, nombre_dispositivo, id_usuario)
		VALUES ($1, $2, $3)
		RETURNING id_dispositivo, mac_address, nombre_dispositivo, fecha_asignacion, id_usuario
	`, macAddress, name, userID).Scan(
		&device.ID, &device.MACAddress, &device.Name, &device.AssignedAt, &device.UserID,
	)
	if err != nil {
		return nil, storageError("create device", err)
	}
	return &device, nil
}

func (p *PostgresClient) GetDeviceByID(ctx context.Context, deviceID int64) (*Device, error) {
	var device Device
	err := p.pool.QueryRow(ctx, `
		SELECT id_dispositivo, mac_address, nombre_dispositivo, fecha_asignacion, id_usuario
		FROM dispositivos
		WHERE id_dispositivo = $1
	`, deviceID).Scan(
		&device.ID, &device.MACAddress, &device.Name, &device.AssignedAt, &device.UserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("device not found")
		}
		return nil, storageError("get device", err)
	}
	return &device, nil
}

// GetDeviceByIDAndUser resolves a device only when it belongs to the given
// user, backing the ownership checks on planting creation and deletion.
func (p *PostgresClient) GetDeviceByIDAndUser(ctx context.Context, deviceID, userID int64) (*Device, error) {
	var device Device
	err := p.pool.QueryRow(ctx, `
		SELECT id_dispositivo, mac_address, nombre_dispositivo, fecha_asignacion, id_usuario
		FROM dispositivos
		WHERE id_dispositivo = $1 AND id_usuario = $2
	`, deviceID, userID).Scan(
		&device.ID, &device.MACAddress, &device.Name, &device.AssignedAt, &device.UserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("device not found for this user")
		}
		return nil, storageError("get device", err)
	}
	return &device, nil
}

func (p *PostgresClient) UpdateDeviceName(ctx context.Context, deviceID int64, name string) (*Device, error) {
	var device Device
	err := p.pool.QueryRow(ctx, `
		UPDATE dispositivos
		SET nombre_dispositivo = $1
		WHERE id_dispositivo = $2
		RETURNING id_dispositivo, mac_address, nombre_dispositivo, fecha_asignacion, id_usuario
	`, name, deviceID).Scan(
		&device.ID, &device.MACAddress, &device.Name, &device.AssignedAt, &device.UserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("device not found")
		}
		return nil, storageError("update device", err)
	}
	return &device, nil
}

// ListDevicesByUser returns an empty slice when the user has no devices.
func (p *PostgresClient) ListDevicesByUser(ctx context.Context, userID int64) ([]*Device, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id_dispositivo, mac_address, nombre_dispositivo, fecha_asignacion, id_usuario
		FROM dispositivos
		WHERE id_usuario = $1
		ORDER BY fecha_asignacion DESC
	`, userID)
	if err != nil {
		return nil, storageError("list devices", err)
	}
	defer rows.Close()

	devices := make([]*Device, 0)
	for rows.Next() {
		var device Device
		err := rows.Scan(
			&device.ID, &device.MACAddress, &device.Name, &device.AssignedAt, &device.UserID,
		)
		if err != nil {
			return nil, storageError("scan device", err)
		}
		devices = append(devices, &device)
	}
	return devices, nil
}
