package garden

import (
	"context"
	"strings"

	"github.com/easygrow/plantcore/internal/storage"
	"github.com/easygrow/plantcore/internal/types"
	"go.uber.org/zap"
)

// CatalogStore is the slice of the storage layer the catalog service needs.
type CatalogStore interface {
	ListCatalogPlants(ctx context.Context, skip, limit int, search *string, activeOnly bool) ([]*storage.CatalogPlant, error)
	CountCatalogPlants(ctx context.Context, search *string, activeOnly bool) (int64, error)
	GetCatalogPlant(ctx context.Context, catalogID int64) (*storage.CatalogPlant, error)
	CatalogPlantStats(ctx context.Context, catalogID int64) (plantings, users int64, err error)
	UpsertCatalogPlant(ctx context.Context, plant *storage.CatalogPlant) error
}

type CatalogService struct {
	store  CatalogStore
	logger *zap.Logger
}

func NewCatalogService(store CatalogStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

type CatalogList struct {
	Plants     []*storage.CatalogPlant `json:"plantas"`
	Total      int64                   `json:"total"`
	Skip       int                     `json:"skip"`
	Limit      int                     `json:"limit"`
	SearchTerm *string                 `json:"search_term"`
}

// CatalogDetail enriches a catalog entry with usage statistics.
type CatalogDetail struct {
	*storage.CatalogPlant
	TotalPlantings int64 `json:"total_plantas_registradas"`
	ActiveUsers    int64 `json:"usuarios_activos"`
}

// List pages through the catalog. The total always reflects the filtered
// set, independent of skip/limit.
func (s *CatalogService) List(ctx context.Context, skip, limit int, search string, activeOnly bool) (*CatalogList, error) {
	if skip < 0 {
		return nil, types.InvalidInput("skip must be zero or greater")
	}
	if limit <= 0 || limit > 100 {
		return nil, types.InvalidInput("limit must be between 1 and 100")
	}

	var searchTerm *string
	if t := strings.TrimSpace(search); t != "" {
		searchTerm = &t
	}

	plants, err := s.store.ListCatalogPlants(ctx, skip, limit, searchTerm, activeOnly)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountCatalogPlants(ctx, searchTerm, activeOnly)
	if err != nil {
		return nil, err
	}

	return &CatalogList{
		Plants:     plants,
		Total:      total,
		Skip:       skip,
		Limit:      limit,
		SearchTerm: searchTerm,
	}, nil
}

// Get returns one catalog entry with its planting statistics.
func (s *CatalogService) Get(ctx context.Context, catalogID int64) (*CatalogDetail, error) {
	if catalogID <= 0 {
		return nil, types.InvalidInput("catalog id must be positive")
	}

	plant, err := s.store.GetCatalogPlant(ctx, catalogID)
	if err != nil {
		return nil, err
	}

	plantings, users, err := s.store.CatalogPlantStats(ctx, catalogID)
	if err != nil {
		return nil, err
	}

	return &CatalogDetail{
		CatalogPlant:   plant,
		TotalPlantings: plantings,
		ActiveUsers:    users,
	}, nil
}
