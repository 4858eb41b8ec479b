package isomodel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlyFixture(t *testing.T) *HourlyModel {
	t.Helper()
	hm, err := loadDefaultsFixture(t).ToHourlyModel()
	require.NoError(t, err)
	return hm
}

func TestHourlySimulate(t *testing.T) {
	hm := hourlyFixture(t)
	hours := hm.Simulate(false)
	require.Len(t, hours, 8760)
	requireFinite(t, hours)

	for i, r := range hours {
		assert.Zero(t, endUse(t, r, ElecHeat), "hour %d", i)
		assert.Zero(t, endUse(t, r, GasCool), "hour %d", i)
		assert.Zero(t, endUse(t, r, GasEquip), "hour %d", i)
		assert.Zero(t, endUse(t, r, GasDHW), "hour %d", i)
		assert.InDelta(t, 500.0/10000/1000, endUse(t, r, ElecEquipExt), 1e-15, "hour %d", i)
		assert.GreaterOrEqual(t, endUse(t, r, GasHeat), 0.0, "hour %d", i)
		assert.GreaterOrEqual(t, endUse(t, r, ElecCool), 0.0, "hour %d", i)
	}
}

func TestHourlySchedules(t *testing.T) {
	hours := hourlyFixture(t).Simulate(false)

	// January 1 is a Monday; noon is occupied
	monday := hours[12]
	saturday := hours[5*24+12]
	assert.InDelta(t, 8.0/1000, endUse(t, monday, ElecEquipInt), 1e-12)
	assert.InDelta(t, 2.0/1000, endUse(t, saturday, ElecEquipInt), 1e-12)

	// exterior lights switch off while the sun is up
	noon := 180*24 + 12
	assert.Zero(t, endUse(t, hours[noon], ElecExtLights))
	assert.Greater(t, endUse(t, hours[180*24], ElecExtLights), 0.0)
}

func TestHourlyAggregateByMonth(t *testing.T) {
	hm := hourlyFixture(t)
	hours := hm.Simulate(false)
	byMonth := hm.Simulate(true)
	require.Len(t, byMonth, 12)

	for m := 0; m < 12; m++ {
		for _, u := range AllEndUses() {
			var sum float64
			for h := monthEndHours[m]; h < monthEndHours[m+1]; h++ {
				sum += hours[h].values[u]
			}
			assert.InDelta(t, sum, endUse(t, byMonth[m], u), 1e-9, "month %d %s", m+1, u)
		}
	}

	assert.Greater(t, endUse(t, byMonth[0], GasHeat), endUse(t, byMonth[6], GasHeat))
	assert.Greater(t, endUse(t, byMonth[6], ElecCool), endUse(t, byMonth[0], ElecCool))
}

func TestHourlyDeterministic(t *testing.T) {
	hm := hourlyFixture(t)
	first := hm.Simulate(true)
	second := hm.Simulate(true)
	if diff := cmp.Diff(first, second, cmp.AllowUnexported(EndUses{})); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

func TestHourlyAgreesWithMonthly(t *testing.T) {
	m := loadDefaultsFixture(t)
	mm, err := m.ToMonthlyModel()
	require.NoError(t, err)
	hm, err := m.ToHourlyModel()
	require.NoError(t, err)

	monthly := mm.Simulate()
	hourly := hm.Simulate(true)

	// the hourly schedule counts the last occupied hour, the monthly one does not
	assert.InEpsilon(t, annual(monthly, ElecEquipInt), annual(hourly, ElecEquipInt), 0.1)
	assert.Greater(t, annual(hourly, GasHeat), 0.0)
	assert.Greater(t, annual(monthly, GasHeat), 0.0)
}

func TestEffectiveMassArea(t *testing.T) {
	assert.Equal(t, 2.5, effectiveMassArea(100))
	assert.InDelta(t, 3.0, effectiveMassArea(260), 1e-12)
	assert.InDelta(t, 3.25, effectiveMassArea(315), 1e-12)
	assert.Equal(t, 3.5, effectiveMassArea(400))
}

func TestLightingControl(t *testing.T) {
	lt := DefaultParams().Lighting
	b := Building{LightingOccupancySensor: 1}

	lt.DimmingFraction = 1
	ratio, lux := lightingControl(b, lt)
	assert.Equal(t, lt.ManualSwitchAd, ratio)
	assert.Equal(t, lt.ManualSwitchLux, lux)

	lt.DimmingFraction = 0.8
	ratio, lux = lightingControl(b, lt)
	assert.Equal(t, lt.AutomaticAd, ratio)
	assert.Equal(t, lt.AutomaticLux, lux)

	b.LightingOccupancySensor = 0.9
	ratio, lux = lightingControl(b, lt)
	assert.Equal(t, lt.PresenceAutoAd, ratio)
	assert.Equal(t, lt.PresenceAutoLux, lux)
}
