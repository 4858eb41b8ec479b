package isomodel

import (
	"context"
	"math"
	"time"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/logging"
	"github.com/Argonne-National-Laboratory/ISOmodel/internal/weather"
)

// monthEndHours holds the first hour of each month plus the year end
var monthEndHours = [months + 1]int{0, 744, 1416, 2160, 2880, 3624, 4344, 5088, 5832, 6552, 7296, 8016, 8760}

const wattHoursToKWh = 1.0 / 1000

// HourlyModel runs the ISO 13790 simple hourly (5R1C) method
type HourlyModel struct {
	Params
	weather *weather.Weather
}

// Weather returns the shared weather data
func (m *HourlyModel) Weather() *weather.Weather { return m.weather }

// Simulate returns 8760 hourly results, or twelve monthly sums when
// aggregateByMonth is set. Values are in kWh/m².
func (m *HourlyModel) Simulate(aggregateByMonth bool) []EndUses {
	return m.SimulateContext(context.Background(), aggregateByMonth)
}

// SimulateContext is Simulate with a context carrying the logger
func (m *HourlyModel) SimulateContext(ctx context.Context, aggregateByMonth bool) []EndUses {
	log := logging.FromContext(ctx)
	start := time.Now()

	c := newHourlyCalc(&m.Params)
	log.Log(ctx, logging.LevelTrace, "hourly model coefficients",
		"cm", c.cm,
		"am", c.am,
		"h_ms", c.hMs,
		"h_em", c.hem,
		"h_tr_is", c.hTrIs,
		"q4pa", c.q4Pa)

	w := m.weather
	hours := make([]hourResult, hoursInYear)
	var radiation [NumSurfaces]float64
	tmt1, tiHeatCool := 20.0, 20.0
	for i := 0; i < hoursInYear; i++ {
		copy(radiation[:weather.NumSurfaces], w.Surface[i][:])
		radiation[Roof] = w.Data.GlobalHorizontal[i]

		hours[i] = c.hour(w.Frame.DayOfWeek[i], w.Frame.Hour[i],
			w.Data.WindSpeed[i], w.Data.DryBulb[i], &radiation, &tmt1, &tiHeatCool)
	}

	results := c.endUses(hours)
	if aggregateByMonth {
		results = sumByMonth(results)
	}
	log.Debug("hourly simulation complete",
		"results", len(results),
		"total_kwh_m2", TotalEnergyUse(results),
		"elapsed", time.Since(start))
	return results
}

// hourResult holds the loads of one hour in W/m²
type hourResult struct {
	needHeat      float64
	needCool      float64
	lighting      float64
	exteriorLight float64
	fan           float64
	pump          float64
	plug          float64
	exteriorEquip float64
	dhw           float64
}

// weekSchedule is indexed by hour of day then day of week (Monday first)
type weekSchedule [hoursInDay][weather.DaysInWeek]float64

func (s *weekSchedule) at(dayOfWeek, hourOfDay int) float64 {
	return s[hourOfDay][dayOfWeek-1]
}

type hourlyCalc struct {
	p *Params

	ventilation      weekSchedule
	exteriorEquip    weekSchedule
	interiorEquip    weekSchedule
	exteriorLighting weekSchedule
	interiorLighting weekSchedule
	heatingSetpoint  weekSchedule
	coolingSetpoint  weekSchedule

	maxRatioElectricLighting float64
	elightNatural            float64
	naturalLightedRatio      float64

	naturalLightRatio   [NumSurfaces]float64
	solarRatio          [NumSurfaces]float64
	solarShadeReduction [NumSurfaces]float64
	shadingUsePerWPerM2 float64

	q4Pa  float64
	hMs   float64
	hTrIs float64
	cm    float64
	am    float64

	hWindow     float64
	prsInterior float64
	prsSolar    float64
	prmInterior float64
	prmSolar    float64
	hTrMs       float64
	hem         float64

	windImpactHz          float64
	windImpactSupplyRatio float64
}

func newHourlyCalc(p *Params) *hourlyCalc {
	c := &hourlyCalc{p: p}
	c.populateSchedules()
	c.initialize()
	return c
}

// populateSchedules builds the fixed weekly schedules from the occupancy window
func (c *hourlyCalc) populateSchedules() {
	pop, b, lt := c.p.Population, c.p.Building, c.p.Lighting
	dayStart, dayEnd := int(pop.DaysStart), int(pop.DaysEnd)
	hourStart, hourEnd := int(pop.HoursStart), int(pop.HoursEnd)

	for h := 0; h < hoursInDay; h++ {
		hourOccupied := h >= hourStart && h <= hourEnd
		for d := 0; d < weather.DaysInWeek; d++ {
			dayOccupied := d+1 >= dayStart && d+1 <= dayEnd
			occupied := hourOccupied && dayOccupied

			c.ventilation[h][d] = 0
			if hourOccupied {
				c.ventilation[h][d] = c.p.Ventilation.SupplyRate
			}
			c.exteriorEquip[h][d] = b.ExternalEquipment
			// exterior lights only run after sunset
			c.exteriorLighting[h][d] = 1
			if occupied {
				c.interiorEquip[h][d] = b.ElectricApplianceHeatGainOccupied
				c.interiorLighting[h][d] = lt.PowerDensityOccupied
				c.heatingSetpoint[h][d] = c.p.Heating.TemperatureSetPointOccupied
				c.coolingSetpoint[h][d] = c.p.Cooling.TemperatureSetPointOccupied
			} else {
				c.interiorEquip[h][d] = b.ElectricApplianceHeatGainUnoccupied
				c.interiorLighting[h][d] = lt.PowerDensityUnoccupied
				c.heatingSetpoint[h][d] = c.p.Heating.TemperatureSetPointUnoccupied
				c.coolingSetpoint[h][d] = c.p.Cooling.TemperatureSetPointUnoccupied
			}
		}
	}
}

// lightingControl picks the daylight ratio and design illuminance for the
// installed combination of occupancy and daylight sensors
func lightingControl(b Building, lt Lighting) (ratio, lux float64) {
	occupancySensor := b.LightingOccupancySensor < 1
	daylightSensor := lt.DimmingFraction < 1
	switch {
	case occupancySensor && daylightSensor:
		return lt.PresenceAutoAd, lt.PresenceAutoLux
	case occupancySensor:
		return lt.PresenceSensorAd, lt.PresenceSensorLux
	case daylightSensor:
		return lt.AutomaticAd, lt.AutomaticLux
	default:
		return lt.ManualSwitchAd, lt.ManualSwitchLux
	}
}

// effectiveMassArea follows ISO 13790 table 12 for the thermal mass class
func effectiveMassArea(cm float64) float64 {
	switch {
	case cm > 370:
		return 3.5
	case cm > 260:
		return 3.0 + 0.5*((cm-260)/110)
	case cm > 165:
		return 2.5 + 0.5*((cm-165)/95)
	default:
		return 2.5
	}
}

func (c *hourlyCalc) initialize() {
	s, v, set := c.p.Structure, c.p.Ventilation, c.p.Settings
	floor := s.FloorArea

	c.maxRatioElectricLighting, c.elightNatural = lightingControl(c.p.Building, c.p.Lighting)
	c.naturalLightedRatio = math.Max(0.0001, c.p.Lighting.NaturallyLightedArea) / floor

	var hWindow, hWall float64
	for i := 0; i < NumSurfaces; i++ {
		// the shading device code stands in for the glazing SHGC here
		transmittance := s.WindowShadingDevice[i] / 0.87
		lighted := s.WindowArea[i] * transmittance
		c.naturalLightRatio[i] = lighted / floor

		opaque := s.WallArea[i] * s.WallAbsorption[i] * s.WallU[i] * s.RSe
		withShade := opaque + s.WindowArea[i]*s.WindowShadingCorrection[i]
		withoutShade := opaque + s.WindowArea[i]*s.WindowSHGC[i]
		c.solarRatio[i] = withoutShade / floor
		c.solarShadeReduction[i] = withShade/floor - c.solarRatio[i]

		windowH := s.WindowArea[i] * s.WindowU[i]
		hWindow += windowH
		hWall += s.WallArea[i] * s.WallU[i]
	}
	c.shadingUsePerWPerM2 = s.ShadingFactorAtMaxUse / s.IrradianceForMaxShadingUse

	// ISO 15242 air leakage
	v8 := 0.19 * (v.N50 * (floor * s.BuildingHeight))
	c.q4Pa = math.Max(0.000001, v8/floor)

	// ISO 13790 12.2.2
	c.hMs = set.Hci + set.Hri*1.2
	hIs := 1 / (1/set.Hci - 1/c.hMs)
	c.hTrIs = hIs * s.TotalAreaPerFloorArea

	var wallArea float64
	for _, a := range s.WallArea {
		wallArea += a
	}
	c.cm = s.InteriorHeatCapacity/1000 + (s.WallHeatCapacity*wallArea/floor)/1000
	c.am = effectiveMassArea(c.cm)

	c.hWindow = hWindow / floor

	prs := (s.TotalAreaPerFloorArea - c.am - c.hWindow/c.hMs) / s.TotalAreaPerFloorArea
	c.prsInterior = (1 - set.PhiIntFractionToAirNode) * prs
	c.prsSolar = (1 - set.PhiSolFractionToAirNode) * prs

	prm := c.am / s.TotalAreaPerFloorArea
	c.prmInterior = (1 - set.PhiIntFractionToAirNode) * prm
	c.prmSolar = (1 - set.PhiSolFractionToAirNode) * prm

	c.hTrMs = c.hMs * c.am
	hOpaque := math.Max(hWall/floor, 0.000001)
	c.hem = 1 / (1/hOpaque - 1/c.hTrMs)

	c.windImpactHz = math.Max(0.1, v.HZone)
	c.windImpactSupplyRatio = math.Max(0.00001, v.FanControlFactor)
}

// hour advances the 5R1C network by one hour. tmt1 is the thermal mass
// temperature and tiHeatCool the air temperature carried between hours.
func (c *hourlyCalc) hour(dayOfWeek, hourOfDay int, windMps, temperature float64,
	radiation *[NumSurfaces]float64, tmt1, tiHeatCool *float64) hourResult {
	s, v, lt := c.p.Structure, c.p.Ventilation, c.p.Lighting
	floor := s.FloorArea
	var r hourResult

	// L/s to m³/h per m² of floor
	ventExhaust := c.ventilation.at(dayOfWeek, hourOfDay) * 3.6 / floor
	interiorLighting := c.interiorLighting.at(dayOfWeek, hourOfDay)
	heatingSetpoint := c.heatingSetpoint.at(dayOfWeek, hourOfDay)
	coolingSetpoint := c.coolingSetpoint.at(dayOfWeek, hourOfDay)

	r.exteriorEquip = c.exteriorEquip.at(dayOfWeek, hourOfDay) / floor
	r.plug = c.interiorEquip.at(dayOfWeek, hourOfDay)

	invAreaRatio := 53.0 / c.naturalLightedRatio
	var lightingLevel, solarGain float64
	for i := 0; i < NumSurfaces; i++ {
		sr := radiation[i]
		clipped := math.Min(s.IrradianceForMaxShadingUse, sr)
		lightingLevel += invAreaRatio * sr * c.naturalLightRatio[i]
		solarGain += sr * (c.solarRatio[i] + c.solarShadeReduction[i]*c.shadingUsePerWPerM2*clipped)
	}

	naturalArea := math.Max(0, c.maxRatioElectricLighting*(1-lightingLevel/c.elightNatural))
	totalArea := naturalArea*c.naturalLightedRatio + (1-c.naturalLightedRatio)*c.maxRatioElectricLighting

	phiIllum := totalArea * interiorLighting * lt.ElecInternalGains
	r.lighting = totalArea * interiorLighting

	// ISO 13790 10.4.2
	phiInt := r.plug + phiIllum
	phiIa := c.p.Settings.PhiSolFractionToAirNode*solarGain + c.p.Settings.PhiIntFractionToAirNode*phiInt
	phiIa10 := phiIa + 10

	// ISO 15242 supply and exhaust balance
	qSupply := ventExhaust * c.windImpactSupplyRatio
	exhaustSupply := -(qSupply - ventExhaust)
	tAfterExchange := (1-v.HeatRecoveryEfficiency)*temperature + v.HeatRecoveryEfficiency*20
	tSupplied := math.Max(v.VentPreheatDegC, tAfterExchange)

	// ISO 15242 6.7.1 steps 1 and 2
	qWind := 0.0769 * c.q4Pa * math.Pow(v.DCp*windMps*windMps, 0.667)
	qStack := 0.0146 * c.q4Pa * math.Pow(0.5*c.windImpactHz*math.Max(0.00001, math.Abs(temperature-*tiHeatCool)), 0.667)
	qExfiltration := math.Max(0, math.Max(qStack, qWind)-math.Abs(exhaustSupply)*(0.5*qStack+0.667*qWind/(qStack+qWind)))

	qEnvelope := math.Max(0, exhaustSupply) + qExfiltration
	qEntering := qEnvelope + qSupply

	// ISO 13790 9.3
	tSup := (temperature*qEnvelope + tSupplied*qSupply) / qEntering
	hei := 0.34 * qEntering

	h1 := 1 / (1/hei + 1/c.hTrIs)
	h2 := h1 + c.hWindow
	h3 := 1 / (1/h2 + 1/c.hTrMs)

	phiSt := c.prsSolar*solarGain + c.prsInterior*phiInt
	phiM := c.prmSolar*solarGain + c.prmInterior*phiInt

	cmTerm := c.cm / 3.6
	h3hemHalf := 0.5 * (h3 + c.hem)

	// airTemperature solves the network for a given air node heat flow
	airTemperature := func(phiAir float64) (ti, tmNext float64) {
		phiMTot := phiM + c.hem*temperature + h3*(phiSt+c.hWindow*temperature+h1*(phiAir/hei+tSup))/h2
		tmNext = (*tmt1*(cmTerm-h3hemHalf) + phiMTot) / (cmTerm + h3hemHalf)
		tm := 0.5 * (*tmt1 + tmNext)
		ts := (c.hTrMs*tm + phiSt + c.hWindow*temperature + h1*(tSup+phiAir/hei)) / (c.hTrMs + c.hWindow + h1)
		ti = (c.hTrIs*ts + hei*tSup + phiAir) / (c.hTrIs + hei)
		return ti, tmNext
	}

	ti10, _ := airTemperature(phiIa10)
	ti0, _ := airTemperature(phiIa)

	denom := ti10 - ti0
	phiCooling := 10 * (coolingSetpoint - ti0) / denom
	phiHeating := 10 * (heatingSetpoint - ti0) / denom
	phiActual := math.Max(0, phiHeating) + math.Min(phiCooling, 0)

	r.needCool = math.Max(0, -phiActual)
	r.needHeat = math.Max(0, phiActual)

	ht, cl := c.p.Heating, c.p.Cooling
	tSupHt := ht.TemperatureSetPointOccupied + ht.DTSupp
	tSupCl := cl.TemperatureSetPointOccupied - cl.DTSupp
	rhoCp := c.p.Physical.RhoCpAir * 277.777778

	var airHt, airCl float64
	if ht.ForcedAir {
		airHt = r.needHeat / ((tSupHt-*tiHeatCool)*rhoCp + dblMin)
	}
	if cl.ForcedAir {
		airCl = r.needCool / ((*tiHeatCool-tSupCl)*rhoCp + dblMin)
	}
	airTot := math.Max(airHt+airCl, ventExhaust)
	r.fan = airTot * v.FanPower * 1000 / 3600

	switch {
	case r.needCool > 0:
		r.pump = cl.EPumps * cl.PumpControlReduction
	case r.needHeat > 0:
		r.pump = ht.EPumps * ht.PumpControlReduction
	}

	if radiation[Roof] <= 0 {
		r.exteriorLight = lt.ExteriorEnergy * c.exteriorLighting.at(dayOfWeek, hourOfDay) / floor
	}

	*tiHeatCool, *tmt1 = airTemperature(phiActual + phiIa)
	return r
}

// endUses applies distribution and generation efficiencies to the hourly
// loads and converts them to kWh/m²
func (c *hourlyCalc) endUses(hours []hourResult) []EndUses {
	ht, cl := c.p.Heating, c.p.Cooling

	var needHeatYr, needCoolYr float64
	for _, h := range hours {
		needHeatYr += h.needHeat
		needCoolYr += h.needCool
	}
	fDemHt := math.Max(needHeatYr/(needCoolYr+needHeatYr), 0.1)
	fDemCl := math.Max(1-fDemHt, 0.1)
	etaDistHt := 1 / (1 + ht.HVACLossFactor + ht.HotColdWasteFactor/fDemHt)
	etaDistCl := 1 / (1 + cl.HVACLossFactor + ht.HotColdWasteFactor/fDemCl)

	results := make([]EndUses, len(hours))
	for i, h := range hours {
		heat := h.needHeat / etaDistHt / ht.Efficiency
		cool := h.needCool / etaDistCl / cl.COP

		r := &results[i]
		if ht.EnergyType == FuelElectric {
			r.values[ElecHeat] = heat * wattHoursToKWh
		} else {
			r.values[GasHeat] = heat * wattHoursToKWh
		}
		r.values[ElecCool] = cool * wattHoursToKWh
		r.values[ElecIntLights] = h.lighting * wattHoursToKWh
		r.values[ElecExtLights] = h.exteriorLight * wattHoursToKWh
		r.values[ElecFans] = h.fan * wattHoursToKWh
		r.values[ElecPump] = h.pump * wattHoursToKWh
		r.values[ElecEquipInt] = h.plug * wattHoursToKWh
		r.values[ElecEquipExt] = h.exteriorEquip * wattHoursToKWh
		r.values[ElecDHW] = h.dhw * wattHoursToKWh
	}
	return results
}

// sumByMonth folds 8760 hourly results into calendar months
func sumByMonth(hourly []EndUses) []EndUses {
	monthly := make([]EndUses, months)
	for m := 0; m < months; m++ {
		for h := monthEndHours[m]; h < monthEndHours[m+1]; h++ {
			for u := EndUse(0); u < NumEndUses; u++ {
				monthly[m].add(u, hourly[h].values[u])
			}
		}
	}
	return monthly
}
