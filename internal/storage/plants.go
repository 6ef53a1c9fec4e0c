package storage

import (
	"context"
	"errors"

	"github.com/easygrow/plantcore/internal/types"
	"github.com/jackc/pgx/v5"
)

const plantWithCatalogColumns = `
	p.id_planta, p.id_catalogo, p.id_usuario, p.id_dispositivo,
	p.nombre_personalizado, p.ubicacion, p.fecha_plantacion, p.fecha_registro,
	p.notas_usuario, p.activa,
	c.id_catalogo, c.nombre_comun, c.nombre_cientifico, c.descripcion,
	c.altura_maxima_cm, c.cuidados_especiales, c.imagen_referencia`

func scanPlantWithCatalog(row pgx.Row) (*PlantWithCatalog, error) {
	var plant PlantWithCatalog
	err := row.Scan(
		&plant.ID, &plant.CatalogID, &plant.UserID, &plant.DeviceID,
		&plant.CustomName, &plant.Location, &plant.PlantedOn, &plant.RegisteredAt,
		&plant.Notes, &plant.Active,
		&plant.Catalog.ID, &plant.Catalog.CommonName, &plant.Catalog.ScientificName,
		&plant.Catalog.Description, &plant.Catalog.MaxHeightCM, &plant.Catalog.CareNotes,
		&plant.Catalog.ImageRef,
	)
	if err != nil {
		return nil, err
	}
	return &plant, nil
}

// CreatePlant inserts a planting and returns it joined with its catalog
// entry. Foreign key violations surface as typed InvalidInput errors with
// the offending reference named.
func (p *PostgresClient) CreatePlant(ctx context.Context, plant *Plant) (*PlantWithCatalog, error) {
	var plantID int64
	err := p.pool.QueryRow(ctx, `
		INSERT INTO plantas
			(id_catalogo, id_usuario, id_dispositivo, nombre_personalizado,
			 ubicacion, fecha_plantacion, notas_usuario, activa)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING id_planta
	`, plant.CatalogID, plant.UserID, plant.DeviceID, plant.CustomName,
		plant.Location, plant.PlantedOn, plant.Notes).Scan(&plantID)
	if err != nil {
		return nil, storageError("create plant", err)
	}

	return p.GetPlantByID(ctx, plantID)
}

func (p *PostgresClient) GetPlantByID(ctx context.Context, plantID int64) (*PlantWithCatalog, error) {
	plant, err := scanPlantWithCatalog(p.pool.QueryRow(ctx, `
		SELECT `+plantWithCatalogColumns+`
		FROM plantas p
		JOIN catalogo_plantas c ON c.id_catalogo = p.id_catalogo
		WHERE p.id_planta = $1
	`, plantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("plant not found")
		}
		return nil, storageError("get plant", err)
	}
	return plant, nil
}

// GetPlantByIDAndUser scopes lookup to the requesting user, preventing
// cross-user reads and deletions.
func (p *PostgresClient) GetPlantByIDAndUser(ctx context.Context, plantID, userID int64) (*PlantWithCatalog, error) {
	plant, err := scanPlantWithCatalog(p.pool.QueryRow(ctx, `
		SELECT `+plantWithCatalogColumns+`
		FROM plantas p
		JOIN catalogo_plantas c ON c.id_catalogo = p.id_catalogo
		WHERE p.id_planta = $1 AND p.id_usuario = $2
	`, plantID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("plant not found for this user")
		}
		return nil, storageError("get plant", err)
	}
	return plant, nil
}

func (p *PostgresClient) listPlants(ctx context.Context, where string, activeOnly bool, args ...any) ([]*PlantWithCatalog, error) {
	query := `
		SELECT ` + plantWithCatalogColumns + `
		FROM plantas p
		JOIN catalogo_plantas c ON c.id_catalogo = p.id_catalogo
		WHERE ` + where
	if activeOnly {
		query += ` AND p.activa`
	}
	query += ` ORDER BY p.fecha_registro DESC`

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("list plants", err)
	}
	defer rows.Close()

	plants := make([]*PlantWithCatalog, 0)
	for rows.Next() {
		plant, err := scanPlantWithCatalog(rows)
		if err != nil {
			return nil, storageError("scan plant", err)
		}
		plants = append(plants, plant)
	}
	return plants, nil
}

func (p *PostgresClient) ListPlantsByUser(ctx context.Context, userID int64, activeOnly bool) ([]*PlantWithCatalog, error) {
	return p.listPlants(ctx, `p.id_usuario = $1`, activeOnly, userID)
}

func (p *PostgresClient) ListPlantsByDevice(ctx context.Context, deviceID int64, activeOnly bool) ([]*PlantWithCatalog, error) {
	return p.listPlants(ctx, `p.id_dispositivo = $1`, activeOnly, deviceID)
}

func (p *PostgresClient) ListPlantsByUserAndDevice(ctx context.Context, userID, deviceID int64, activeOnly bool) ([]*PlantWithCatalog, error) {
	return p.listPlants(ctx, `p.id_usuario = $1 AND p.id_dispositivo = $2`, activeOnly, userID, deviceID)
}

// SoftDeletePlant flips the active flag. The caller is responsible for the
// already-inactive check; here a missing row is the only failure.
func (p *PostgresClient) SoftDeletePlant(ctx context.Context, plantID int64) error {
	result, err := p.pool.Exec(ctx, `
		UPDATE plantas SET activa = FALSE WHERE id_planta = $1
	`, plantID)
	if err != nil {
		return storageError("soft delete plant", err)
	}
	if result.RowsAffected() == 0 {
		return types.NotFound("plant not found")
	}
	return nil
}

// HardDeletePlant removes the row permanently.
func (p *PostgresClient) HardDeletePlant(ctx context.Context, plantID int64) error {
	result, err := p.pool.Exec(ctx, `
		DELETE FROM plantas WHERE id_planta = $1
	`, plantID)
	if err != nil {
		return storageError("hard delete plant", err)
	}
	if result.RowsAffected() == 0 {
		return types.NotFound("plant not found")
	}
	return nil
}

// PlantCounts aggregates a set of plantings the way the listing endpoints
// report them.
type PlantCounts struct {
	Total      int `json:"total_plantas"`
	Active     int `json:"plantas_activas"`
	WithDevice int `json:"plantas_con_dispositivo"`
}

// CountPlants derives the aggregate counts from an already-loaded list.
// Listing and counting share one query round trip this way.
func CountPlants(plants []*PlantWithCatalog) PlantCounts {
	counts := PlantCounts{Total: len(plants)}
	for _, plant := range plants {
		if plant.Active {
			counts.Active++
		}
		if plant.DeviceID != nil {
			counts.WithDevice++
		}
	}
	return counts
}
