package doctype

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"vellum/internal/domain"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Definition describes one document type: its display identity, how its
// sequential numbers are formatted, and which payload sections must be
// present and valid before the document can be completed.
type Definition struct {
	Type             string   `yaml:"type"`
	DisplayName      string   `yaml:"display_name"`
	NumberPrefix     string   `yaml:"number_prefix"`
	NumberPadding    int      `yaml:"number_padding"`
	RequiredSections []string `yaml:"required_sections"`
}

// FormatNumber renders an allocated raw number with the type prefix,
// e.g. CON-000042.
func (d Definition) FormatNumber(n int) string {
	return fmt.Sprintf("%s-%0*d", d.NumberPrefix, d.NumberPadding, n)
}

// Registry holds the known document types, loaded from embedded YAML files.
type Registry struct {
	defs map[string]Definition
	mu   sync.RWMutex
}

// NewRegistry creates a registry and loads every embedded definition file.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		defs: make(map[string]Definition),
	}

	entries, err := fs.Glob(configFiles, "config/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob doctype configs: %w", err)
	}

	for _, name := range entries {
		if err := r.loadFile(name); err != nil {
			return nil, err
		}
	}

	if len(r.defs) == 0 {
		return nil, fmt.Errorf("no document type definitions found")
	}

	return r, nil
}

// loadFile loads one document type definition file
func (r *Registry) loadFile(name string) error {
	data, err := configFiles.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}

	if def.Type == "" || def.NumberPrefix == "" {
		return fmt.Errorf("%s: type and number_prefix are required", name)
	}
	if def.NumberPadding <= 0 {
		def.NumberPadding = 6
	}

	r.mu.Lock()
	r.defs[def.Type] = def
	r.mu.Unlock()

	return nil
}

// Get returns the definition for a document type. Unknown types are a
// validation error - the caller sent a type the system does not issue.
func (r *Registry) Get(docType string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[docType]
	if !ok {
		return Definition{}, &domain.ValidationError{
			Message: "unknown document type",
			Fields:  map[string]string{"document_type": fmt.Sprintf("unknown document type %q", docType)},
		}
	}
	return def, nil
}

// Types returns the known type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.defs))
	for t := range r.defs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
