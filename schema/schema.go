// Package schema holds the static table of known physical columns per
// table that the generator consults to decide between a direct column
// reference and JSON extraction through the properties column.
package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Table names the two tables the generator ever emits SQL against.
const (
	Nodes = "nodes"
	Edges = "edges"
)

// Schema is a per-table set of column names that are real columns rather
// than JSON keys inside properties.
type Schema struct {
	tables map[string]map[string]struct{}
}

// yamlSchema is the on-disk representation: table name to column list.
type yamlSchema struct {
	Tables map[string][]string `yaml:"tables"`
}

// Default returns the built-in column set matching the fixed schema
// contract: nodes(uuid, type, group_id, name, summary, properties,
// created_at, valid_at, invalid_at) and edges(uuid, source, target,
// relation_type, group_id, properties, fact, episodes, created_at,
// valid_at, invalid_at). properties, source, and target are excluded:
// properties is the JSON column itself, and source/target are join
// columns, never accessed via dotted property syntax.
func Default() *Schema {
	return &Schema{
		tables: map[string]map[string]struct{}{
			Nodes: set("uuid", "type", "group_id", "name", "summary", "created_at", "valid_at", "invalid_at"),
			Edges: set("uuid", "group_id", "relation_type", "fact", "episodes", "created_at", "valid_at", "invalid_at"),
		},
	}
}

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// IsColumn reports whether key names a physical column on table, as
// opposed to a key that must route through JSON extraction.
func (s *Schema) IsColumn(table, key string) bool {
	if s == nil {
		return false
	}
	cols, ok := s.tables[table]
	if !ok {
		return false
	}
	_, ok = cols[key]
	return ok
}

// Load reads a YAML schema override from path, resolved relative to
// baseDir if not absolute, and merges it on top of Default(): named
// tables replace the default column list for that table, tables absent
// from the file keep their default columns.
func Load(path, baseDir string) (*Schema, error) {
	if path == "" {
		return Default(), nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("schema: reading %s: %w", path, err)
	}
	var ys yamlSchema
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return nil, fmt.Errorf("schema: parsing %s: %w", path, err)
	}
	out := Default()
	for table, cols := range ys.Tables {
		out.tables[table] = set(cols...)
	}
	return out, nil
}
