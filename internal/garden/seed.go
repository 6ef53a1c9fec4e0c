package garden

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	_ "embed"

	"github.com/easygrow/plantcore/internal/storage"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed schema/catalog-seed-v1.json
var catalogSeedSchemaJSON string

// SeedFile is the on-disk catalog seed format. The file is YAML; it is
// validated against the embedded JSON schema after decoding.
type SeedFile struct {
	Version int         `yaml:"version" json:"version"`
	Plants  []SeedPlant `yaml:"plantas" json:"plantas"`
}

type SeedPlant struct {
	CommonName     string  `yaml:"nombre_comun" json:"nombre_comun"`
	ScientificName string  `yaml:"nombre_cientifico" json:"nombre_cientifico"`
	Description    *string `yaml:"descripcion" json:"descripcion,omitempty"`
	MaxHeightCM    *int    `yaml:"altura_maxima_cm" json:"altura_maxima_cm,omitempty"`
	CareNotes      *string `yaml:"cuidados_especiales" json:"cuidados_especiales,omitempty"`
	ImageRef       *string `yaml:"imagen_referencia" json:"imagen_referencia,omitempty"`
}

type SeedValidator struct {
	schema *jsonschema.Schema
}

func NewSeedValidator() (*SeedValidator, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource("catalog-seed-v1.json",
		strings.NewReader(catalogSeedSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("catalog-seed-v1.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &SeedValidator{schema: schema}, nil
}

// Validate round-trips the decoded seed through JSON so the schema sees
// the same shape the struct tags describe.
func (v *SeedValidator) Validate(seed *SeedFile) error {
	data, err := json.Marshal(seed)
	if err != nil {
		return fmt.Errorf("failed to marshal seed: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}

// LoadSeedFile reads and validates a catalog seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	validator, err := NewSeedValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(&seed); err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}

	return &seed, nil
}

// Seed upserts the seed file's entries into the catalog, keyed by
// scientific name. Entries an administrator has deactivated stay
// deactivated. A missing seed file is not an error; the catalog simply
// starts empty.
func (s *CatalogService) Seed(ctx context.Context, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.logger.Info("No catalog seed file found, skipping", zap.String("path", path))
		return nil
	}

	seed, err := LoadSeedFile(path)
	if err != nil {
		return err
	}

	for _, entry := range seed.Plants {
		plant := &storage.CatalogPlant{
			CommonName:     entry.CommonName,
			ScientificName: entry.ScientificName,
			Description:    entry.Description,
			MaxHeightCM:    entry.MaxHeightCM,
			CareNotes:      entry.CareNotes,
			ImageRef:       entry.ImageRef,
		}
		if err := s.store.UpsertCatalogPlant(ctx, plant); err != nil {
			return fmt.Errorf("failed to seed catalog entry %q: %w", entry.ScientificName, err)
		}
	}

	s.logger.Info("Catalog seeded",
		zap.String("path", path),
		zap.Int("entries", len(seed.Plants)))

	return nil
}
