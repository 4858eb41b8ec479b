package properties

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "b.ism", `
# comment line
FloorArea = 120.5
  wallArea =1,2,3
weatherFilePath= ./ORD.epw
floorarea = 99
`)

	p, err := Load(path)
	require.NoError(t, err)

	v, ok := p.Float("floorarea")
	require.True(t, ok)
	assert.InDelta(t, 120.5, v, 1e-12, "duplicate key keeps the first value")

	w, ok := p.Get("WEATHERFILEPATH")
	require.True(t, ok)
	assert.Equal(t, "./ORD.epw", w)

	vec, err := p.FloatVector("WallArea")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, vec)

	assert.Equal(t, []string{"floorarea", "wallarea", "weatherfilepath"}, p.Keys())
}

func TestBuildingOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	building := writeFile(t, dir, "b.ism", "terrainClass = 0.9\n")
	defaults := writeFile(t, dir, "d.ism", "terrainclass = 0.5\nfloorArea = 10\n")

	p, err := Load(building, defaults)
	require.NoError(t, err)

	tc, _ := p.Float("terrainclass")
	assert.InDelta(t, 0.9, tc, 1e-12)
	fa, _ := p.Float("floorarea")
	assert.InDelta(t, 10, fa, 1e-12)
}

func TestReadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{"no equals", "floorarea 10\n", "invalid format in file"},
		{"empty key", " = 10\n", "missing property key"},
		{"empty value", "floorarea = \n", "missing property value"},
		{"bang is not a comment", "! note\n", "invalid format in file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.ism", "# header\n"+tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))
			assert.Contains(t, err.Error(), tt.msg)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ism"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFloatAccessors(t *testing.T) {
	p := New()
	p.Set("name", "office")
	p.Set("vec", "1, x, 3")

	_, ok := p.Float("name")
	assert.False(t, ok)
	_, ok = p.Float("missing")
	assert.False(t, ok)

	_, err := p.FloatVector("vec")
	assert.ErrorIs(t, err, ErrSyntax)
	_, err = p.FloatVector("missing")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestReadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "b.yaml", `
terrainClass: 0.9
heatingFuelType: gas
wallArea: [1, 2.5, 3]
occupancyDayFirst: 1
`)
	p, err := Load(path)
	require.NoError(t, err)

	tc, ok := p.Float("terrainclass")
	require.True(t, ok)
	assert.InDelta(t, 0.9, tc, 1e-12)

	fuel, _ := p.Get("heatingfueltype")
	assert.Equal(t, "gas", fuel)

	vec, err := p.FloatVector("wallarea")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3}, vec)

	day, _ := p.Get("occupancydayfirst")
	assert.Equal(t, "1", day)
}

func TestReadYAMLRejectsNested(t *testing.T) {
	path := writeFile(t, t.TempDir(), "b.yml", "structure:\n  floorArea: 10\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrSyntax)
}
