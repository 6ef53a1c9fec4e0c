package storage

import (
	"context"
	"errors"

	"github.com/easygrow/plantcore/internal/types"
	"github.com/jackc/pgx/v5"
)

const catalogColumns = `
	id_catalogo, nombre_comun, nombre_cientifico, descripcion, altura_maxima_cm,
	cuidados_especiales, imagen_referencia, activo, fecha_creacion`

func scanCatalogPlant(row pgx.Row) (*CatalogPlant, error) {
	var plant CatalogPlant
	err := row.Scan(
		&plant.ID, &plant.CommonName, &plant.ScientificName, &plant.Description,
		&plant.MaxHeightCM, &plant.CareNotes, &plant.ImageRef, &plant.Active, &plant.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &plant, nil
}

// ListCatalogPlants applies the active filter and the case-insensitive
// substring search over common and scientific name, ordered by common name.
func (p *PostgresClient) ListCatalogPlants(ctx context.Context, skip, limit int, search *string, activeOnly bool) ([]*CatalogPlant, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+catalogColumns+`
		FROM catalogo_plantas
		WHERE (NOT $1 OR activo)
		  AND ($2::text IS NULL OR nombre_comun ILIKE '%' || $2 || '%'
		       OR nombre_cientifico ILIKE '%' || $2 || '%')
		ORDER BY nombre_comun
		OFFSET $3 LIMIT $4
	`, activeOnly, search, skip, limit)
	if err != nil {
		return nil, storageError("list catalog plants", err)
	}
	defer rows.Close()

	plants := make([]*CatalogPlant, 0)
	for rows.Next() {
		plant, err := scanCatalogPlant(rows)
		if err != nil {
			return nil, storageError("scan catalog plant", err)
		}
		plants = append(plants, plant)
	}
	return plants, nil
}

// CountCatalogPlants counts the full filtered set, independent of the
// pagination window.
func (p *PostgresClient) CountCatalogPlants(ctx context.Context, search *string, activeOnly bool) (int64, error) {
	var total int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM catalogo_plantas
		WHERE (NOT $1 OR activo)
		  AND ($2::text IS NULL OR nombre_comun ILIKE '%' || $2 || '%'
		       OR nombre_cientifico ILIKE '%' || $2 || '%')
	`, activeOnly, search).Scan(&total)
	if err != nil {
		return 0, storageError("count catalog plants", err)
	}
	return total, nil
}

// GetCatalogPlant returns the entry regardless of its active flag.
func (p *PostgresClient) GetCatalogPlant(ctx context.Context, catalogID int64) (*CatalogPlant, error) {
	plant, err := scanCatalogPlant(p.pool.QueryRow(ctx, `
		SELECT `+catalogColumns+`
		FROM catalogo_plantas
		WHERE id_catalogo = $1
	`, catalogID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("catalog plant not found")
		}
		return nil, storageError("get catalog plant", err)
	}
	return plant, nil
}

// GetActiveCatalogPlant resolves the entry only when active, the rule for
// creating new plantings.
func (p *PostgresClient) GetActiveCatalogPlant(ctx context.Context, catalogID int64) (*CatalogPlant, error) {
	plant, err := scanCatalogPlant(p.pool.QueryRow(ctx, `
		SELECT `+catalogColumns+`
		FROM catalogo_plantas
		WHERE id_catalogo = $1 AND activo
	`, catalogID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("catalog plant not found or inactive")
		}
		return nil, storageError("get catalog plant", err)
	}
	return plant, nil
}

// CatalogPlantStats counts active plantings of a catalog entry and the
// distinct users growing it.
func (p *PostgresClient) CatalogPlantStats(ctx context.Context, catalogID int64) (plantings, users int64, err error) {
	err = p.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT id_usuario)
		FROM plantas
		WHERE id_catalogo = $1 AND activa
	`, catalogID).Scan(&plantings, &users)
	if err != nil {
		return 0, 0, storageError("get catalog stats", err)
	}
	return plantings, users, nil
}

// UpsertCatalogPlant inserts or refreshes a seed entry keyed by scientific
// name. The active flag is not overwritten so operators can retire entries.
func (p *PostgresClient) UpsertCatalogPlant(ctx context.Context, plant *CatalogPlant) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO catalogo_plantas
			(nombre_comun, nombre_cientifico, descripcion, altura_maxima_cm,
			 cuidados_especiales, imagen_referencia, activo)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		ON CONFLICT (nombre_cientifico)
		DO UPDATE SET
			nombre_comun = EXCLUDED.nombre_comun,
			descripcion = EXCLUDED.descripcion,
			altura_maxima_cm = EXCLUDED.altura_maxima_cm,
			cuidados_especiales = EXCLUDED.cuidados_especiales,
			imagen_referencia = EXCLUDED.imagen_referencia
	`, plant.CommonName, plant.ScientificName, plant.Description,
		plant.MaxHeightCM, plant.CareNotes, plant.ImageRef)
	if err != nil {
		return storageError("upsert catalog plant", err)
	}
	return nil
}
