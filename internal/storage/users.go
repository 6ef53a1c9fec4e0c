package storage

import (
	"context"
	"errors"

	"github.com/easygrow/plantcore/internal/types"
	"github.com/jackc/pgx/v5"
)

// CreateUser inserts a new user row. The password hash must already be
// computed; plaintext never reaches this layer.
func (p *PostgresClient) CreateUser(ctx context.Context, fullName string, phone *string, email, username, passwordHash string) (*User, error) {
	var user User
	err := p.pool.QueryRow(ctx, `
		INSERT INTO usuarios (nombre_completo, telefono, correo, usuario, contrasena)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id_usuario, nombre_completo, telefono, correo, usuario, fecha_registro
	`, fullName, phone, email, username, passwordHash).Scan(
		&user.ID, &user.FullName, &user.Phone, &user.Email, &user.Username, &user.RegisteredAt,
	)
	if err != nil {
		return nil, storageError("create user", err)
	}
	return &user, nil
}

// GetUserByUsername returns the user including the stored password hash,
// for credential verification.
func (p *PostgresClient) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := p.pool.QueryRow(ctx, `
		SELECT id_usuario, nombre_completo, telefono, correo, usuario, contrasena, fecha_registro
		FROM usuarios
		WHERE usuario = $1
	`, username).Scan(
		&user.ID, &user.FullName, &user.Phone, &user.Email, &user.Username,
		&user.PasswordHash, &user.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("user not found")
		}
		return nil, storageError("get user", err)
	}
	return &user, nil
}

func (p *PostgresClient) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	var user User
	err := p.pool.QueryRow(ctx, `
		SELECT id_usuario, nombre_completo, telefono, correo, usuario, fecha_registro
		FROM usuarios
		WHERE id_usuario = $1
	`, userID).Scan(
		&user.ID, &user.FullName, &user.Phone, &user.Email, &user.Username, &user.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("user not found")
		}
		return nil, storageError("get user", err)
	}
	return &user, nil
}

func (p *PostgresClient) ListUsers(ctx context.Context, skip, limit int) ([]*User, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id_usuario, nombre_completo, telefono, correo, usuario, fecha_registro
		FROM usuarios
		ORDER BY fecha_registro DESC
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, storageError("list users", err)
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		var user User
		err := rows.Scan(
			&user.ID, &user.FullName, &user.Phone, &user.Email, &user.Username, &user.RegisteredAt,
		)
		if err != nil {
			return nil, storageError("scan user", err)
		}
		users = append(users, &user)
	}
	return users, nil
}

func (p *PostgresClient) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM usuarios`).Scan(&total); err != nil {
		return 0, storageError("count users", err)
	}
	return total, nil
}
