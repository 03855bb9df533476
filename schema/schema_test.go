package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()

	assert.True(t, s.IsColumn(Nodes, "uuid"))
	assert.True(t, s.IsColumn(Nodes, "type"))
	assert.True(t, s.IsColumn(Nodes, "name"))
	assert.True(t, s.IsColumn(Nodes, "summary"))
	assert.False(t, s.IsColumn(Nodes, "properties"))
	assert.False(t, s.IsColumn(Nodes, "age"))

	assert.True(t, s.IsColumn(Edges, "relation_type"))
	assert.True(t, s.IsColumn(Edges, "fact"))
	assert.False(t, s.IsColumn(Edges, "name"))
	assert.False(t, s.IsColumn(Edges, "source"))
}

func TestLoad_Override(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	schemaPath := filepath.Join(tmpDir, "schema.yaml")

	yamlContent := `
tables:
  nodes: [uuid, type, group_id, tier]
`
	require.NoError(t, os.WriteFile(schemaPath, []byte(yamlContent), 0o644))

	s, err := Load(schemaPath, "")
	require.NoError(t, err)

	assert.True(t, s.IsColumn(Nodes, "tier"))
	assert.False(t, s.IsColumn(Nodes, "name"), "override replaces, not merges, the table's column list")
	assert.True(t, s.IsColumn(Edges, "relation_type"), "tables absent from the override keep their defaults")
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	s, err := Load("", "")
	require.NoError(t, err)
	assert.True(t, s.IsColumn(Nodes, "uuid"))
}

func TestLoad_RelativeToBaseDir(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "s.yaml"), []byte("tables:\n  nodes: [uuid]\n"), 0o644))

	s, err := Load("s.yaml", tmpDir)
	require.NoError(t, err)
	assert.True(t, s.IsColumn(Nodes, "uuid"))
	assert.False(t, s.IsColumn(Nodes, "type"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml", t.TempDir())
	require.Error(t, err)
}
