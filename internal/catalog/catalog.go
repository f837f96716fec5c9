// Package catalog loads the embedded clinical catalog: known departments,
// the encryption scope, and fallback values for clinical fields.
package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"medchain/internal/domain/models"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Catalog is read-only after Load and safe for concurrent use
type Catalog struct {
	departments []Department
	byName      map[string]*Department
	sensitive   []string
	defaults    Defaults
}

// Load parses the embedded catalog file
func Load() (*Catalog, error) {
	data, err := configFiles.ReadFile("config/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML and checks it against the record's fields
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	c := &Catalog{
		departments: file.Departments,
		byName:      make(map[string]*Department, len(file.Departments)),
		defaults:    file.Defaults,
	}
	for i := range c.departments {
		d := &c.departments[i]
		if d.Name == "" {
			return nil, fmt.Errorf("department %d has no name", i)
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate department %q", d.Name)
		}
		c.byName[d.Name] = d
	}

	known := make(map[string]bool)
	for _, name := range models.FieldNames() {
		known[name] = true
	}
	seen := make(map[string]bool)
	for _, field := range file.SensitiveFields {
		if !known[field] {
			return nil, fmt.Errorf("unknown sensitive field %q", field)
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		c.sensitive = append(c.sensitive, field)
	}
	if len(c.sensitive) == 0 {
		return nil, fmt.Errorf("catalog declares no sensitive fields")
	}

	return c, nil
}

// Departments returns all departments in catalog order
func (c *Catalog) Departments() []Department {
	out := make([]Department, len(c.departments))
	copy(out, c.departments)
	return out
}

// IsDepartment reports whether name is a known department
func (c *Catalog) IsDepartment(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// SensitiveFields returns the encryption scope in canonical field order
func (c *Catalog) SensitiveFields() []string {
	out := make([]string, 0, len(c.sensitive))
	for _, name := range models.FieldNames() {
		for _, s := range c.sensitive {
			if s == name {
				out = append(out, name)
			}
		}
	}
	return out
}

// Defaults returns the fallback diagnosis and treatment
func (c *Catalog) Defaults() Defaults {
	return c.defaults
}
