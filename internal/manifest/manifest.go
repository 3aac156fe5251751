// Package manifest loads batch descriptions that list several patch files
// to apply in order, each with its own strip count and target directory.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Entry names one patch file and how to apply it.
type Entry struct {
	File  string `json:"file"`
	Strip int    `json:"strip"`
	Dir   string `json:"dir,omitempty"`
}

// Manifest is an ordered list of patch applications.
type Manifest struct {
	Patches []Entry `json:"patches"`
}

var (
	schemaLoader     gojsonschema.JSONLoader
	schemaLoaderErr  error
	schemaLoaderOnce sync.Once
)

type validationError struct {
	issues []string
}

func (e validationError) Error() string {
	if len(e.issues) == 0 {
		return "manifest failed schema validation"
	}
	return strings.Join(e.issues, "; ")
}

func manifestSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"patches"},
		"properties": map[string]any{
			"patches": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"file"},
					"properties": map[string]any{
						"file":  map[string]any{"type": "string", "minLength": 1},
						"strip": map[string]any{"type": "integer", "minimum": 0},
						"dir":   map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func loadSchema() (gojsonschema.JSONLoader, error) {
	schemaLoaderOnce.Do(func() {
		schemaLoader = gojsonschema.NewGoLoader(manifestSchema())
	})
	if schemaLoaderErr != nil {
		return nil, schemaLoaderErr
	}
	return schemaLoader, nil
}

func validateAgainstSchema(raw []byte) error {
	loader, err := loadSchema()
	if err != nil {
		return fmt.Errorf("manifest: load schema: %w", err)
	}

	result, err := gojsonschema.Validate(loader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("manifest: schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return validationError{issues: issues}
}

// Decode validates raw JSON against the manifest schema and unmarshals it.
func Decode(raw []byte) (*Manifest, error) {
	if err := validateAgainstSchema(raw); err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	return &m, nil
}

// Load reads and decodes a manifest file from disk.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	m, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}
	return m, nil
}
