package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/easygrow/plantcore/internal/config"
	"github.com/easygrow/plantcore/internal/types"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

type PostgresClient struct {
	pool *pgxpool.Pool
}

func NewPostgresClient(cfg config.DatabaseConfig) (*PostgresClient, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{pool: pool}, nil
}

// Migrate applies the embedded schema. All statements are idempotent.
func (p *PostgresClient) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (p *PostgresClient) Close() {
	p.pool.Close()
}

func (p *PostgresClient) Pool() *pgxpool.Pool {
	return p.pool
}

// Postgres error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// classifyPgError turns constraint violations into typed domain errors.
// Uniqueness under concurrent writers is decided here: the second writer's
// unique violation becomes a Conflict, never a retry.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		switch {
		case strings.Contains(pgErr.ConstraintName, "correo"):
			return types.Conflict("email already registered")
		case strings.Contains(pgErr.ConstraintName, "usuario"):
			return types.Conflict("username already exists")
		case strings.Contains(pgErr.ConstraintName, "mac_address"):
			return types.Conflict("device with this MAC address is already registered")
		case strings.Contains(pgErr.ConstraintName, "nombre_cientifico"):
			return types.Conflict("catalog entry with this scientific name already exists")
		default:
			return types.Conflict("duplicate value violates a uniqueness rule")
		}
	case pgForeignKeyViolation:
		switch {
		case strings.Contains(pgErr.ConstraintName, "id_catalogo"):
			return types.InvalidInput("referenced catalog entry is not valid")
		case strings.Contains(pgErr.ConstraintName, "id_usuario"):
			return types.InvalidInput("referenced user is not valid")
		case strings.Contains(pgErr.ConstraintName, "id_dispositivo"):
			return types.InvalidInput("referenced device is not valid")
		case strings.Contains(pgErr.ConstraintName, "id_sensor"):
			return types.InvalidInput("referenced sensor is not valid")
		default:
			return types.InvalidInput("referenced record is not valid")
		}
	case pgCheckViolation:
		return types.InvalidInput("value violates a database check constraint")
	}

	return nil
}

// storageError wraps a raw pgx error into the domain error model.
func storageError(op string, err error) error {
	if classified := classifyPgError(err); classified != nil {
		return classified
	}
	return types.Internal(fmt.Sprintf("failed to %s", op), err)
}
