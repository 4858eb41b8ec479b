package isomodel

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testData = filepath.Join("..", "..", "test_data")

func fixture(name string) string {
	return filepath.Join(testData, name)
}

func loadDefaultsFixture(t *testing.T) *UserModel {
	t.Helper()
	m := NewUserModel()
	require.NoError(t, m.Load(fixture("defaults_test_building.ism"), fixture("defaults_test_defaults.ism")))
	return m
}

// writeBuilding copies a fixture into a temp dir next to the weather file,
// applying key replacements
func writeBuilding(t *testing.T, src string, replace map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	epw, err := os.ReadFile(fixture("synthetic.epw"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "synthetic.epw"), epw, 0o644))

	raw, err := os.ReadFile(fixture(src))
	require.NoError(t, err)

	var out []string
	for _, line := range strings.Split(string(raw), "\n") {
		key, _, found := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if v, ok := replace[key]; found && ok {
			if v != "" {
				out = append(out, key+" = "+v)
			}
			continue
		}
		out = append(out, line)
	}

	path := filepath.Join(dir, src)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(out, "\n")), 0o644))
	return path
}

func TestLoadWithDefaults(t *testing.T) {
	m := loadDefaultsFixture(t)

	assert.True(t, m.Loaded())
	assert.InDelta(t, 0.9, m.TerrainClass(), 1e-12)
	assert.Equal(t, "synthetic.epw", m.WeatherFilePath())
	assert.Equal(t, "./schedule.txt", m.ScheduleFilePath())

	assert.InDelta(t, 10000, m.Structure().FloorArea, 1e-9)
	assert.InDelta(t, 3, m.Cooling().COP, 1e-9)
	assert.Equal(t, FuelGas, m.Heating().EnergyType)
	assert.Equal(t, VentilationMechanical, m.Ventilation().Type)
	assert.Equal(t, BEMNone, m.Building().BuildingEnergyManagement)
	assert.InDelta(t, 500, m.Building().ExternalEquipment, 1e-9)

	// optional values not present fall back to defaults
	assert.InDelta(t, 7, m.Heating().DTSupp, 1e-9)
	assert.InDelta(t, 0.25, m.Structure().WinFF, 1e-9)
	assert.InDelta(t, 2.5, m.SimulationSettings().Hci, 1e-9)
	assert.True(t, m.Cooling().ForcedAir)

	require.NotNil(t, m.Weather())
	assert.Equal(t, "725300", m.Weather().Data.StationID)
	require.NotNil(t, m.WeatherSummary())
}

func TestSurfaceVectorOrder(t *testing.T) {
	m := loadDefaultsFixture(t)
	u := m.Structure().WallU

	// file order is N, NE, E, SE, S, SW, W, NW, Roof
	assert.InDelta(t, 0.55, u[South], 1e-12)
	assert.InDelta(t, 0.54, u[SouthEast], 1e-12)
	assert.InDelta(t, 0.53, u[East], 1e-12)
	assert.InDelta(t, 0.52, u[NorthEast], 1e-12)
	assert.InDelta(t, 0.51, u[North], 1e-12)
	assert.InDelta(t, 0.58, u[NorthWest], 1e-12)
	assert.InDelta(t, 0.57, u[West], 1e-12)
	assert.InDelta(t, 0.56, u[SouthWest], 1e-12)
	assert.InDelta(t, 0.3, u[Roof], 1e-12)

	assert.InDelta(t, 250, m.Structure().WindowArea[South], 1e-12)
	assert.InDelta(t, 200, m.Structure().WindowArea[North], 1e-12)
}

func TestLoadBuilding(t *testing.T) {
	m := NewUserModel()
	require.NoError(t, m.LoadBuilding(fixture("single_building.ism")))

	assert.InDelta(t, 0.7, m.TerrainClass(), 1e-12)
	assert.Equal(t, FuelElectric, m.Heating().EnergyType)
	assert.Equal(t, FuelElectric, m.Heating().HotWaterEnergyType)
	assert.Equal(t, BEMAdvanced, m.Building().BuildingEnergyManagement)
	assert.Empty(t, m.DefaultsPath())
}

func TestLoadYAMLBuilding(t *testing.T) {
	m := NewUserModel()
	require.NoError(t, m.LoadBuilding(fixture("test_bldg.yaml")))

	assert.InDelta(t, 0.9, m.TerrainClass(), 1e-12)
	assert.Equal(t, BEMSimple, m.Building().BuildingEnergyManagement)
	assert.InDelta(t, 8, m.Heating().DTSupp, 1e-12)
	assert.False(t, m.Cooling().ForcedAir)
	assert.True(t, m.Heating().ForcedAir)
	assert.InDelta(t, 0.55, m.Structure().WallU[South], 1e-12)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		replace map[string]string
		want    error
		msg     string
	}{
		{
			name:    "missing required key",
			replace: map[string]string{"floorArea": ""},
			want:    ErrMalformedFile,
			msg:     "floorarea building parameter is missing",
		},
		{
			name:    "non numeric",
			replace: map[string]string{"coolingSystemCOP": "three"},
			want:    ErrMalformedFile,
			msg:     "coolingsystemcop",
		},
		{
			name:    "bad fuel",
			replace: map[string]string{"heatingFuelType": "coal"},
			want:    ErrMalformedFile,
			msg:     "heatingFuelType parameter must be one of 'gas' or 'electric'",
		},
		{
			name:    "short vector",
			replace: map[string]string{"wallU": "0.5, 0.5"},
			want:    ErrMalformedFile,
			msg:     "it must have 9",
		},
		{
			name:    "syntax",
			replace: map[string]string{"floorArea": "10000\nthis line has no separator"},
			want:    ErrMalformedFile,
			msg:     "invalid format",
		},
		{
			name:    "missing weather",
			replace: map[string]string{"weatherFilePath": "nowhere.epw"},
			want:    ErrMissingFile,
			msg:     "nowhere.epw",
		},
		{
			name:    "no weather key",
			replace: map[string]string{"weatherFilePath": ""},
			want:    ErrMalformedFile,
			msg:     "weatherFilePath building parameter is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeBuilding(t, "single_building.ism", tt.replace)
			m := NewUserModel()
			err := m.LoadBuilding(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Contains(t, err.Error(), tt.msg)

			var le *LoadError
			assert.True(t, errors.As(err, &le))
			assert.False(t, m.Loaded())
		})
	}
}

func TestLoadMissingFiles(t *testing.T) {
	m := NewUserModel()

	err := m.Load(fixture("no_such_building.ism"), fixture("defaults_test_defaults.ism"))
	require.ErrorIs(t, err, ErrMissingFile)

	err = m.Load(fixture("defaults_test_building.ism"), fixture("no_such_defaults.ism"))
	require.ErrorIs(t, err, ErrMissingFile)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, fixture("no_such_defaults.ism"), le.Path)

	err = m.LoadBuilding(t.TempDir())
	require.ErrorIs(t, err, ErrUnreadableFile)
}

func TestSetPropertyOverridesFiles(t *testing.T) {
	m := NewUserModel()
	m.SetProperty(" TerrainClass ", "0.5")
	m.SetProperty("heatingFuelType", "electric")
	require.NoError(t, m.Load(fixture("defaults_test_building.ism"), fixture("defaults_test_defaults.ism")))

	assert.InDelta(t, 0.5, m.TerrainClass(), 1e-12, "override beats the building file")
	assert.Equal(t, FuelElectric, m.Heating().EnergyType, "override beats the defaults file")
	assert.InDelta(t, 10000, m.Structure().FloorArea, 1e-9)

	bad := NewUserModel()
	bad.SetProperty("floorArea", "large")
	err := bad.Load(fixture("defaults_test_building.ism"), fixture("defaults_test_defaults.ism"))
	assert.ErrorIs(t, err, ErrMalformedFile)
	assert.Contains(t, err.Error(), `floorarea cannot be converted to a number: "large"`)
}

func TestNotLoaded(t *testing.T) {
	m := NewUserModel()
	_, err := m.ToMonthlyModel()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = m.ToHourlyModel()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Nil(t, m.WeatherSummary())
}

func TestToModelCopiesParams(t *testing.T) {
	m := loadDefaultsFixture(t)
	before := m.Params()

	mm, err := m.ToMonthlyModel()
	require.NoError(t, err)
	mm.Structure.FloorArea = 1
	mm.Structure.WallU[South] = 99

	hm, err := m.ToHourlyModel()
	require.NoError(t, err)
	hm.Heating.TemperatureSetPointOccupied = 30

	if diff := cmp.Diff(before, m.Params()); diff != "" {
		t.Errorf("user model changed (-before +after):\n%s", diff)
	}
	assert.Same(t, m.Weather(), mm.Weather())
	assert.Same(t, m.Weather(), hm.Weather())
}

func TestWeatherCacheSharesData(t *testing.T) {
	cache := NewWeatherCache()

	a := NewUserModel()
	a.UseWeatherCache(cache)
	require.NoError(t, a.Load(fixture("defaults_test_building.ism"), fixture("defaults_test_defaults.ism")))

	b := NewUserModel()
	b.UseWeatherCache(cache)
	require.NoError(t, b.LoadBuilding(fixture("single_building.ism")))

	assert.Equal(t, 1, cache.Len())
	assert.Same(t, a.Weather(), b.Weather())
}

func TestWeatherCacheError(t *testing.T) {
	cache := NewWeatherCache()
	_, err := cache.Load(filepath.Join(t.TempDir(), "missing.epw"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, 0, cache.Len())
}
