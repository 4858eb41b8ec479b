package isomodel

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyFixture(t *testing.T) *MonthlyModel {
	t.Helper()
	mm, err := loadDefaultsFixture(t).ToMonthlyModel()
	require.NoError(t, err)
	return mm
}

func endUse(t *testing.T, e EndUses, u EndUse) float64 {
	t.Helper()
	v, err := e.EndUse(u)
	require.NoError(t, err)
	return v
}

func requireFinite(t *testing.T, results []EndUses) {
	t.Helper()
	for i, r := range results {
		for _, u := range AllEndUses() {
			v := endUse(t, r, u)
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "period %d %s = %v", i, u, v)
		}
	}
}

func TestMonthlySimulate(t *testing.T) {
	results := monthlyFixture(t).Simulate()
	require.Len(t, results, 12)
	requireFinite(t, results)

	jan, jul := results[0], results[6]
	assert.Greater(t, endUse(t, jan, GasHeat), endUse(t, jul, GasHeat))
	assert.Greater(t, endUse(t, jan, GasHeat), 0.0)
	assert.Greater(t, endUse(t, jul, ElecCool), endUse(t, jan, ElecCool))
	assert.Greater(t, TotalEnergyUse(results), 0.0)

	for i, r := range results {
		// gas heating fixture with no gas appliances
		assert.Zero(t, endUse(t, r, ElecHeat), "month %d", i+1)
		assert.Zero(t, endUse(t, r, GasEquip), "month %d", i+1)
		assert.Zero(t, endUse(t, r, ElecEquipExt), "month %d", i+1)
		assert.Zero(t, endUse(t, r, ElecDHW), "month %d", i+1)
		assert.Greater(t, endUse(t, r, ElecFans), 0.0, "month %d", i+1)
	}
}

func TestMonthlyProratedEndUses(t *testing.T) {
	mm := monthlyFixture(t)
	results := mm.Simulate()

	// ten occupied hours a day, five days a week
	f := 50.0 / 168
	plug := 8*f + 2*(1-f)
	assert.InDelta(t, 744*plug/1000, endUse(t, results[0], ElecEquipInt), 1e-9)
	assert.InDelta(t, 672*plug/1000, endUse(t, results[1], ElecEquipInt), 1e-9)

	ht := mm.Heating
	yearly := ht.HotWaterDemand * (ht.HotWaterSetT - ht.HotWaterSupplyT) * mm.Physical.RhoCpWater
	janDHW := 31 * yearly / 365 / ht.HotWaterDistributionEfficiency / 3.6 / ht.HotWaterSystemEfficiency / mm.Structure.FloorArea
	// tight enough to catch a single-precision kWh to MJ factor
	assert.InEpsilon(t, janDHW, endUse(t, results[0], GasDHW), 1e-12)

	// interior lighting is spread by the length of the month
	jan := endUse(t, results[0], ElecIntLights)
	feb := endUse(t, results[1], ElecIntLights)
	require.Greater(t, feb, 0.0)
	assert.InDelta(t, 31.0/28.0, jan/feb, 1e-9)

	// exterior lights run longer in the winter nights
	assert.Greater(t, endUse(t, results[11], ElecExtLights), endUse(t, results[5], ElecExtLights))
}

func TestMonthlyDeterministic(t *testing.T) {
	mm := monthlyFixture(t)
	first := mm.Simulate()
	second := mm.Simulate()
	if diff := cmp.Diff(first, second, cmp.AllowUnexported(EndUses{})); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

func TestMonthlyElectricHeating(t *testing.T) {
	m := NewUserModel()
	require.NoError(t, m.LoadBuilding(fixture("single_building.ism")))
	mm, err := m.ToMonthlyModel()
	require.NoError(t, err)

	results := mm.Simulate()
	require.Len(t, results, 12)
	requireFinite(t, results)

	assert.Greater(t, endUse(t, results[0], ElecHeat), 0.0)
	assert.Greater(t, endUse(t, results[0], ElecDHW), 0.0)
	for _, r := range results {
		assert.Zero(t, endUse(t, r, GasHeat))
		assert.Zero(t, endUse(t, r, GasDHW))
	}
}

func TestMonthlyParameterSensitivity(t *testing.T) {
	base := monthlyFixture(t)
	baseHeat := annual(base.Simulate(), GasHeat)

	insulated := monthlyFixture(t)
	for i := range insulated.Structure.WallU {
		insulated.Structure.WallU[i] /= 2
		insulated.Structure.WindowU[i] /= 2
	}
	assert.Less(t, annual(insulated.Simulate(), GasHeat), baseHeat)

	efficient := monthlyFixture(t)
	efficient.Heating.Efficiency = 0.95
	assert.Less(t, annual(efficient.Simulate(), GasHeat), baseHeat)
}

func TestShadingDeviceFactor(t *testing.T) {
	assert.Equal(t, 0.5, shadingDeviceFactor(1))
	assert.Equal(t, 0.35, shadingDeviceFactor(2))
	assert.Equal(t, 1.0, shadingDeviceFactor(3))
	assert.Equal(t, 1.0, shadingDeviceFactor(0))
	assert.Equal(t, 1.0, shadingDeviceFactor(7))
}

func TestDiv(t *testing.T) {
	assert.Equal(t, 2.0, div(4, 2))
	assert.Equal(t, math.MaxFloat64, div(1, 0))
	assert.Equal(t, math.MaxFloat64, div(0, 0))
}

func annual(results []EndUses, u EndUse) float64 {
	var sum float64
	for _, r := range results {
		sum += r.values[u]
	}
	return sum
}
