package batch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Argonne-National-Laboratory/ISOmodel/pkg/isomodel"
	"github.com/Argonne-National-Laboratory/ISOmodel/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testData = filepath.Join("..", "..", "test_data")

func fixture(name string) string {
	return filepath.Join(testData, name)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", Monthly},
		{"monthly", Monthly},
		{"hourly", HourlyByMonth},
		{"Hourly-By-Month", HourlyByMonth},
		{"hourly-by-hour", HourlyByHour},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseMode("daily")
	assert.Error(t, err)
	assert.Equal(t, "hourly-by-hour", HourlyByHour.String())
	assert.Equal(t, models.MethodHourly, HourlyByHour.Method())
}

func TestSimulate(t *testing.T) {
	job := Job{Building: fixture("defaults_test_building.ism"), Defaults: fixture("defaults_test_defaults.ism")}

	res := Simulate(context.Background(), nil, job, Monthly)
	require.NoError(t, res.Err)
	require.Len(t, res.EndUses, 12)
	assert.Greater(t, res.Total(), 0.0)

	run := res.Run()
	assert.Equal(t, models.MethodMonthly, run.Method)
	assert.Equal(t, "725300", run.Station)
	assert.Equal(t, "synthetic.epw", run.WeatherPath)
	assert.InDelta(t, 10000, run.FloorArea, 1e-9)
	require.Len(t, run.Periods, 12)
	assert.Equal(t, 1, run.Periods[0].Period)
	assert.Len(t, run.Periods[0].EndUses, isomodel.NumEndUses)
	assert.Contains(t, run.Periods[0].EndUses, "GasHeat")
	assert.InDelta(t, res.Total(), run.TotalEUI, 1e-9)

	hourly := Simulate(context.Background(), nil, job, HourlyByHour)
	require.NoError(t, hourly.Err)
	assert.Len(t, hourly.EndUses, 8760)
}

func TestSimulateOverrides(t *testing.T) {
	job := Job{
		Building:  fixture("defaults_test_building.ism"),
		Defaults:  fixture("defaults_test_defaults.ism"),
		Overrides: map[string]string{"heatingFuelType": "electric"},
	}

	res := Simulate(context.Background(), nil, job, Monthly)
	require.NoError(t, res.Err)
	assert.Equal(t, isomodel.FuelElectric, res.Model.Heating().EnergyType)

	var elecHeat, gasHeat float64
	for _, e := range res.EndUses {
		v, _ := e.EndUse(isomodel.ElecHeat)
		elecHeat += v
		v, _ = e.EndUse(isomodel.GasHeat)
		gasHeat += v
	}
	assert.Greater(t, elecHeat, 0.0)
	assert.Zero(t, gasHeat)
}

func TestRunAll(t *testing.T) {
	jobs := []Job{
		{Building: fixture("single_building.ism")},
		{Building: fixture("missing.ism")},
		{Building: fixture("defaults_test_building.ism"), Defaults: fixture("defaults_test_defaults.ism")},
		{Building: fixture("test_bldg.yaml")},
	}

	results, err := RunAll(context.Background(), jobs, HourlyByMonth, 2)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, r := range results {
		assert.Equal(t, jobs[i], r.Job, "results keep job order")
	}
	assert.ErrorIs(t, results[1].Err, isomodel.ErrMissingFile)
	for _, i := range []int{0, 2, 3} {
		require.NoError(t, results[i].Err)
		assert.Len(t, results[i].EndUses, 12)
	}

	// every building shares the same weather
	assert.Same(t, results[0].Model.Weather(), results[2].Model.Weather())
	assert.Same(t, results[0].Model.Weather(), results[3].Model.Weather())
}

func TestRunAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunAll(ctx, []Job{{Building: fixture("single_building.ism")}}, Monthly, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
