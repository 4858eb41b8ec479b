package isomodel

import (
	"context"
	"math"
	"time"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/logging"
	"github.com/Argonne-National-Laboratory/ISOmodel/internal/weather"
)

const (
	months       = weather.MonthsInYear
	hoursInDay   = weather.HoursInDay
	hoursInWeek  = 168
	hoursInYear  = weather.HoursInYear
	daysInYear   = weather.DaysInYear
	kWh2MJ       = 3.6 // exact; a single-precision 3.6 shifts DHW results by about 3e-8 relative
	weekdayStart = 7

	// dblMin is the smallest normal float64, added to denominators that may be zero
	dblMin = 2.2250738585072014e-308
)

var (
	daysInMonth        [months]float64
	hoursInMonth       [months]float64
	megasecondsInMonth [months]float64
	monthFraction      [months]float64
)

func init() {
	for m := 0; m < months; m++ {
		d := float64(weather.MonthLength(m + 1))
		daysInMonth[m] = d
		hoursInMonth[m] = d * hoursInDay
		megasecondsInMonth[m] = d * 86400 / 1e6
		monthFraction[m] = d / daysInYear
	}
}

// div divides a by b, yielding math.MaxFloat64 when b is zero
func div(a, b float64) float64 {
	if b == 0 {
		return math.MaxFloat64
	}
	return a / b
}

// MonthlyModel runs the ISO 13790 monthly quasi-steady-state method
type MonthlyModel struct {
	Params
	weather *weather.Weather
}

// Weather returns the shared weather data
func (m *MonthlyModel) Weather() *weather.Weather { return m.weather }

// Simulate returns twelve results, January first, in kWh/m²
func (m *MonthlyModel) Simulate() []EndUses {
	return m.SimulateContext(context.Background())
}

// SimulateContext is Simulate with a context carrying the logger
func (m *MonthlyModel) SimulateContext(ctx context.Context) []EndUses {
	log := logging.FromContext(ctx)
	start := time.Now()

	c := &monthlyCalc{p: &m.Params, w: m.weather.Summary}
	c.scheduleAndOccupancy()
	c.solarRadiationBreakdown()
	c.lightingEnergyUse()
	c.envelope()
	c.windowSolarGain()
	c.solarHeatGain()
	c.heatGains()
	c.unoccupiedHeatGain()
	c.interiorTemperature()
	c.ventilation()
	c.heatingAndCooling()
	c.hvac()
	c.pumps()
	c.hotWater()
	results := c.output()

	for i := 0; i < months; i++ {
		log.Log(ctx, logging.LevelTrace, "monthly needs",
			"month", i+1,
			"heating_mj", c.needHeat[i],
			"cooling_mj", c.needCool[i],
			"heat_setpoint", c.thAvg[i],
			"cool_setpoint", c.tcAvg[i])
	}
	log.Debug("monthly simulation complete",
		"total_kwh_m2", TotalEnergyUse(results),
		"elapsed", time.Since(start))
	return results
}

// monthlyCalc carries intermediate values between the steps of one run
type monthlyCalc struct {
	p *Params
	w *weather.Summary

	// schedule
	fracWkDay, fracWkNt, fracWkeTot  float64
	hoursOccPerDay, hoursUnoccPerDay float64
	wkOccMs, wkUnoccMs               [months]float64
	wkeOccMs, wkeUnoccMs             [months]float64
	clockOcc, clockUnocc             [hoursInDay]float64

	// weather breakdown
	tdbtDay, tdbtNt                          [months]float64
	fracPghWkNt, fracPghWkeDay, fracPghWkeNt [months]float64
	hrsSunDown                               [months]float64

	// lighting
	qIllumOcc, qIllumUnocc, qIllumTotYr float64
	qIllum, qIllumExt                   [months]float64

	// envelope and solar
	hTr               float64
	winASol, wallASol [NumSurfaces]float64
	winHr, wallRsc    [NumSurfaces]float64
	eSol              [months]float64

	// gains
	phiIntAvg, phiPlugAvg, phiIllumAvg float64
	phiWkNt, phiWkeDay, phiWkeNt       float64
	phiITot                            float64
	pTotWkNt, pTotWkeDay, pTotWkeNt    [months]float64

	// temperatures and flows
	tau          float64
	thAvg, tcAvg [months]float64
	hveHt, hveCl [months]float64

	// needs and delivered energy
	needHeat, needCool     [months]float64
	needHeatYr, needCoolYr float64
	fan                    [months]float64
	elecHeat, gasHeat      [months]float64
	elecCool, gasCool      [months]float64
	pump                   [months]float64
	dhwElec, dhwGas        [months]float64
}

func (c *monthlyCalc) scheduleAndOccupancy() {
	pop := c.p.Population

	c.hoursOccPerDay = pop.HoursEnd - pop.HoursStart
	if c.hoursOccPerDay < 0 {
		c.hoursOccPerDay += hoursInDay
	}
	daysOcc := pop.DaysEnd - pop.DaysStart + 1
	if daysOcc < 0 {
		daysOcc += 7
	}

	wkOccHours := c.hoursOccPerDay * daysOcc
	c.fracWkDay = wkOccHours / hoursInWeek
	c.hoursUnoccPerDay = hoursInDay - c.hoursOccPerDay
	wkUnoccHours := (daysOcc - 1) * c.hoursUnoccPerDay
	c.fracWkNt = wkUnoccHours / hoursInWeek

	wkeHours := hoursInWeek - wkOccHours - wkUnoccHours
	c.fracWkeTot = wkeHours / hoursInWeek
	wkeOccHours := (7 - daysOcc) * c.hoursOccPerDay
	fracWkeDay := wkeOccHours / hoursInWeek
	fracWkeNt := (wkeHours - wkeOccHours) / hoursInWeek

	for i := 0; i < months; i++ {
		ms := megasecondsInMonth[i]
		c.wkOccMs[i] = ms * c.fracWkDay
		c.wkUnoccMs[i] = ms * c.fracWkNt
		c.wkeOccMs[i] = ms * fracWkeDay
		c.wkeUnoccMs[i] = ms * fracWkeNt
	}

	for h := 0; h < hoursInDay; h++ {
		offset := float64(h - weekdayStart)
		if offset >= 0 && offset < c.hoursOccPerDay {
			c.clockOcc[h] = 1
		} else {
			c.clockUnocc[h] = 1
		}
	}
}

func (c *monthlyCalc) solarRadiationBreakdown() {
	var occHours, unoccHours float64
	for h := 0; h < hoursInDay; h++ {
		occHours += c.clockOcc[h]
		unoccHours += c.clockUnocc[h]
	}

	for i := 0; i < months; i++ {
		var tDay, tNt, eDay, eNt float64
		for h := 0; h < hoursInDay; h++ {
			tDay += c.w.HourlyDryBulb[i][h] * c.clockOcc[h]
			tNt += c.w.HourlyDryBulb[i][h] * c.clockUnocc[h]
			eDay += c.w.HourlyGlobalHorizontal[i][h] * c.clockOcc[h]
			eNt += c.w.HourlyGlobalHorizontal[i][h] * c.clockUnocc[h]
		}
		c.tdbtDay[i] = div(tDay, occHours)
		c.tdbtNt[i] = div(tNt, unoccHours)
		eghDay := div(eDay, occHours)
		eghNt := div(eNt, unoccHours)

		wkDay := eghDay * c.wkOccMs[i]
		wkNt := eghNt * c.wkUnoccMs[i]
		wkeDay := eghDay * c.wkeOccMs[i]
		wkeNt := eghNt * c.wkeUnoccMs[i]
		total := wkDay + wkNt + wkeDay + wkeNt
		c.fracPghWkNt[i] = div(wkNt, total)
		c.fracPghWkeDay[i] = div(wkeDay, total)
		c.fracPghWkeNt[i] = div(wkeNt, total)

		sunUp, sunDown := 0, 0
		for h := 0; h < hoursInDay; h++ {
			if c.w.HourlyGlobalHorizontal[i][h] != 0 {
				sunUp = h
				break
			}
		}
		for h := hoursInDay - 1; h >= 0; h-- {
			if c.w.HourlyGlobalHorizontal[i][h] != 0 {
				sunDown = h
				break
			}
		}
		fracUp := float64(sunDown-sunUp+1) / hoursInDay
		c.hrsSunDown[i] = (1 - fracUp) * hoursInMonth[i]
	}
}

// lightingEnergyUse follows prEN 15193:2006
func (c *monthlyCalc) lightingEnergyUse() {
	lt, pop, b := c.p.Lighting, c.p.Population, c.p.Building
	floor := c.p.Structure.FloorArea

	dayHours := math.Min(lt.NDayEnd, pop.HoursEnd) - math.Max(pop.HoursStart, lt.NDayStart)
	if dayHours < 0 {
		dayHours += hoursInDay
	}
	daysOcc := pop.DaysEnd - pop.DaysStart + 1
	if daysOcc < 0 {
		daysOcc += 7
	}
	tDay := dayHours * daysOcc * lt.NWeeks

	nightHours := math.Max(lt.NDayStart-pop.HoursStart, 0) + math.Max(pop.HoursEnd-lt.NDayEnd, 0)
	tNight := nightHours * daysOcc * lt.NWeeks
	tUnocc := hoursInYear - tDay - tNight

	c.qIllumOcc = floor * lt.PowerDensityOccupied * b.ConstantIllumination * b.LightingOccupancySensor *
		(tDay*lt.DimmingFraction + tNight) / 1000
	c.qIllumUnocc = floor * lt.PowerDensityUnoccupied * tUnocc / 1000
	c.qIllumTotYr = c.qIllumOcc + c.qIllumUnocc

	for i := 0; i < months; i++ {
		c.qIllum[i] = monthFraction[i] * c.qIllumTotYr
		c.qIllumExt[i] = c.hrsSunDown[i] * lt.ExteriorEnergy / 1000
	}
}

// envelope computes the direct transmission coefficient (ISO 13790 8.3)
func (c *monthlyCalc) envelope() {
	s := c.p.Structure
	for i := 0; i < NumSurfaces; i++ {
		c.hTr += s.WallArea[i]*s.WallU[i] + s.WindowArea[i]*s.WindowU[i]
	}
}

// shadingDeviceFactors maps window shading device codes 1..3
var shadingDeviceFactors = [3]float64{0.5, 0.35, 1.0}

func shadingDeviceFactor(code float64) float64 {
	idx := int(code) - 1
	if idx < 0 || idx >= len(shadingDeviceFactors) {
		return 1
	}
	return shadingDeviceFactors[idx]
}

func (c *monthlyCalc) windowSolarGain() {
	s := c.p.Structure
	frame := 1 - s.WinFF
	for i := 0; i < NumSurfaces; i++ {
		gGl := s.WindowSHGC[i] * s.WinFW
		c.winASol[i] = shadingDeviceFactor(s.WindowShadingDevice[i]) * gGl * frame * s.WindowArea[i]
		c.wallRsc[i] = s.RScExt
		c.winHr[i] = s.WallEmissivity[i] * 5
		c.wallASol[i] = s.WallAbsorption[i] * c.wallRsc[i] * s.WallU[i] * s.WallArea[i]
	}
}

// formFactors between each surface and the sky; the roof sees the whole sky
var formFactors = [NumSurfaces]float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 1}

const skyTemperatureDifference = 11.0

func (c *monthlyCalc) solarHeatGain() {
	s := c.p.Structure
	for i := 0; i < months; i++ {
		var winPhi, wallPhi float64
		for j := 0; j < NumSurfaces; j++ {
			var irradiance float64
			if j < weather.NumSurfaces {
				irradiance = c.w.Solar[i][j]
			} else {
				irradiance = c.w.GlobalHorizontal[i]
			}
			winPhi += s.WindowShadingCorrection[j] * c.winASol[j] * irradiance

			phiR := c.wallRsc[j] * s.WallU[j] * s.WallArea[j] * c.winHr[j] * skyTemperatureDifference
			wallPhi += c.wallASol[j]*irradiance - phiR*formFactors[j]
		}
		c.eSol[i] = (winPhi + wallPhi) * megasecondsInMonth[i]
	}
}

func (c *monthlyCalc) heatGains() {
	pop, b := c.p.Population, c.p.Building
	floor := c.p.Structure.FloorArea
	f := c.fracWkDay

	phiIntOcc := pop.HeatGainPerPerson / pop.DensityOccupied
	phiIntUnocc := pop.HeatGainPerPerson / pop.DensityUnoccupied
	c.phiIntAvg = f*phiIntOcc + (1-f)*phiIntUnocc

	phiPlugOcc := b.ElectricApplianceHeatGainOccupied + b.GasApplianceHeatGainOccupied
	phiPlugUnocc := b.ElectricApplianceHeatGainUnoccupied + b.GasApplianceHeatGainUnoccupied
	c.phiPlugAvg = phiPlugOcc*f + phiPlugUnocc*(1-f)

	phiIllumUnocc := c.qIllumUnocc / floor / hoursInYear / (1 - f) * 1000
	c.phiIllumAvg = c.qIllumTotYr / floor / hoursInYear * 1000

	unocc := phiIntUnocc + phiPlugUnocc + phiIllumUnocc
	c.phiWkNt, c.phiWkeDay, c.phiWkeNt = unocc, unocc, unocc

	c.phiITot = (c.phiIntAvg + c.phiPlugAvg + c.phiIllumAvg) * floor
}

func (c *monthlyCalc) unoccupiedHeatGain() {
	floor := c.p.Structure.FloorArea
	for i := 0; i < months; i++ {
		c.pTotWkNt[i] = div(c.wkUnoccMs[i]*c.phiWkNt*floor+c.eSol[i]*c.fracPghWkNt[i], c.wkUnoccMs[i])
		c.pTotWkeDay[i] = div(c.wkeOccMs[i]*c.phiWkeDay*floor+c.eSol[i]*c.fracPghWkeDay[i], c.wkeOccMs[i])
		c.pTotWkeNt[i] = div(c.wkeUnoccMs[i]*c.phiWkeNt*floor+c.eSol[i]*c.fracPghWkeNt[i], c.wkeUnoccMs[i])
	}
}

func bemSetpointAdjustment(bem BEMType) float64 {
	switch bem {
	case BEMSimple:
		return 0.5
	case BEMAdvanced:
		return 1
	default:
		return 0
	}
}

// setbackProfile returns the mean zone temperature over the five weekly
// periods after free floating from start, floored at the unoccupied setpoint
func (c *monthlyCalc) setbackProfile(start, first, unoccSetpoint float64, ti, te, dT [5]float64) [5]float64 {
	var decayed [4]float64
	t := start
	for k := 0; k < 4; k++ {
		t = (t-te[k]-dT[k])*math.Exp(-ti[k]/c.tau) + te[k] + dT[k]
		decayed[k] = t
	}

	var initial [5]float64
	initial[0] = first
	for k := 1; k < 5; k++ {
		initial[k] = math.Max(decayed[k-1], unoccSetpoint)
	}

	var avg [5]float64
	for k := 0; k < 5; k++ {
		v := c.tau/ti[k]*(initial[k]-te[k]-dT[k])*(1-math.Exp(-ti[k]/c.tau)) + te[k] + dT[k]
		avg[k] = math.Max(v, unoccSetpoint)
	}
	return avg
}

func (c *monthlyCalc) interiorTemperature() {
	s, ht, cl := c.p.Structure, c.p.Heating, c.p.Cooling

	adj := bemSetpointAdjustment(c.p.Building.BuildingEnergyManagement)
	htCtrl := ht.TemperatureSetPointOccupied - adj
	clCtrl := cl.TemperatureSetPointOccupied + adj
	htUnocc := ht.TemperatureSetPointUnoccupied
	clUnocc := cl.TemperatureSetPointUnoccupied

	var wallArea float64
	for _, a := range s.WallArea {
		wallArea += a
	}
	cm := s.InteriorHeatCapacity*s.FloorArea + s.WallHeatCapacity*wallArea
	hTot := c.hTr + c.p.Ventilation.HVe
	c.tau = cm / hTot / 3600

	ti := [5]float64{c.hoursUnoccPerDay, c.hoursOccPerDay, c.hoursUnoccPerDay, c.hoursOccPerDay, c.hoursUnoccPerDay}

	for i := 0; i < months; i++ {
		dT := [5]float64{
			c.pTotWkNt[i] / hTot,
			c.pTotWkeDay[i] / hTot,
			c.pTotWkeNt[i] / hTot,
			c.pTotWkeDay[i] / hTot,
			c.pTotWkeNt[i] / hTot,
		}
		te := [5]float64{c.tdbtNt[i], c.tdbtDay[i], c.tdbtNt[i], c.tdbtDay[i], c.tdbtNt[i]}

		thWkDay, thWkNt, thWkeAvg := htCtrl, htCtrl, htCtrl
		if ht.CtrlFlag == 1 {
			tb := c.setbackProfile(htCtrl, htCtrl, htUnocc, ti, te, dT)
			thWkeAvg = mean5(tb)
			thWkNt = tb[1]
		}

		tcWkDay, tcWkNt, tcWkeAvg := clCtrl, clCtrl, clCtrl
		if cl.CtrlFlag == 1 {
			// the cooling profile starts from the heating control setpoint
			td := c.setbackProfile(clCtrl, math.Min(htCtrl, clUnocc), clUnocc, ti, te, dT)
			tcWkeAvg = mean5(td)
			tcWkNt = td[1]
		}

		thWkAvg := thWkDay*c.fracWkDay + thWkNt*c.fracWkNt + thWkeAvg*c.fracWkeTot
		tcWkAvg := tcWkDay*c.fracWkDay + tcWkNt*c.fracWkNt + tcWkeAvg*c.fracWkeTot
		c.thAvg[i] = math.Min(thWkAvg, htCtrl)
		c.tcAvg[i] = math.Min(tcWkAvg, clCtrl)
	}
}

func mean5(v [5]float64) float64 {
	return (v[0] + v[1] + v[2] + v[3] + v[4]) / 5
}

// ventilation combines ISO 15242 stack and wind infiltration with the
// mechanical supply
func (c *monthlyCalc) ventilation() {
	s, v, pop := c.p.Structure, c.p.Ventilation, c.p.Population
	terrain := c.p.Location.Terrain

	height := math.Max(0.1, s.BuildingHeight)
	qvSupp := v.SupplyRate / s.FloorArea / 3.6
	qvExt := -(qvSupp - v.SupplyDifference/s.FloorArea/3.6)
	qvDiff := qvSupp + qvExt
	outdoorFrac := 1 - v.ExhaustAirRecirculated

	q4 := s.InfiltrationRate
	hStack := v.ZoneFrac * height

	var opFrac float64
	switch v.VentRateFlag {
	case 0:
		opFrac = 1
	case 1:
		opFrac = c.fracWkDay
	default:
		opFrac = c.fracWkDay + (1-c.fracWkDay)*pop.DensityOccupied/pop.DensityUnoccupied
	}
	var mech float64
	if v.Type != VentilationNatural {
		mech = opFrac * qvSupp * outdoorFrac * (1 - v.HeatRecoveryEfficiency)
	}

	rhoCp := c.p.Physical.RhoCpAir * 1e6
	for i := 0; i < months; i++ {
		tOut := c.w.DryBulb[i]
		wind := c.w.WindSpeed[i]

		stackHt := math.Max(v.StackCoeff*q4*math.Pow(math.Abs(tOut-c.thAvg[i])*hStack, v.StackExp), 0.001)
		stackCl := math.Max(v.StackCoeff*q4*math.Pow(math.Abs(tOut-c.tcAvg[i])*hStack, v.StackExp), 0.001)
		windFlow := math.Pow(wind*wind*v.DCp*terrain, v.WindExp) * q4 * v.WindCoeff

		swHt := math.Max(stackHt, windFlow) + div(stackHt*windFlow*0.14, q4)
		swCl := math.Max(stackCl, windFlow) + div(stackCl*windFlow*0.14, q4)
		infHt := swHt + math.Max(0, -qvDiff)
		infCl := swCl + math.Max(0, -qvDiff)

		c.hveHt[i] = (infHt + mech) * rhoCp / 3600
		c.hveCl[i] = (infCl + mech) * rhoCp / 3600
	}
}

func utilisation(gamma, a float64) float64 {
	return (1 - math.Pow(gamma, a)) / (1 - math.Pow(gamma, a+1))
}

func (c *monthlyCalc) heatingAndCooling() {
	s, ht, cl, v := c.p.Structure, c.p.Heating, c.p.Cooling, c.p.Ventilation
	rhoCp := c.p.Physical.RhoCpAir
	aH := ht.AH0 + c.tau/ht.TauH0

	tSupHt := ht.TemperatureSetPointOccupied + ht.DTSupp
	tSupCl := cl.TemperatureSetPointOccupied - cl.DTSupp

	for i := 0; i < months; i++ {
		ms := megasecondsInMonth[i]
		tOut := c.w.DryBulb[i]
		gain := ms*c.phiITot + c.eSol[i]

		qtHt := (c.thAvg[i] - tOut) * ms * c.hTr
		qvHt := c.hveHt[i] * s.FloorArea * (c.thAvg[i] - tOut) * ms
		qHt := qtHt + qvHt
		gammaHt := div(gain, qHt+dblMin)
		var etaHt float64
		if gammaHt > 0 {
			etaHt = utilisation(gammaHt, aH)
		} else {
			etaHt = 1 / (gammaHt + dblMin)
		}
		c.needHeat[i] = qHt - etaHt*gain
		c.needHeatYr += c.needHeat[i]

		qtCl := (c.tcAvg[i] - tOut) * c.hTr * ms
		qvCl := c.hveCl[i] * s.FloorArea * (c.tcAvg[i] - tOut) * ms
		qCl := qtCl + qvCl
		gammaCl := div(qCl, gain+dblMin)
		etaCl := 1.0
		if gammaCl > 0 {
			etaCl = utilisation(gammaCl, aH)
		}
		c.needCool[i] = gain - etaCl*qCl
		c.needCoolYr += c.needCool[i]

		airHt := div(c.needHeat[i], (tSupHt-c.thAvg[i])*rhoCp+dblMin)
		airCl := div(c.needCool[i], (c.tcAvg[i]-tSupCl)*rhoCp+dblMin)
		airTot := math.Max(airHt+airCl, ms*v.SupplyRate*c.fracWkDay*1e6/1000)
		fanEnergy := airTot * v.FanPower * v.FanControlFactor / 1000
		c.fan[i] = fanEnergy / s.FloorArea / 3.6
	}
}

func (c *monthlyCalc) hvac() {
	ht, cl := c.p.Heating, c.p.Cooling
	ieer := cl.COP * cl.PartialLoadValue

	fDemHt := math.Max(c.needHeatYr/(c.needCoolYr+c.needHeatYr), 0.1)
	fDemCl := math.Max(1-fDemHt, 0.1)
	etaDistHt := 1 / (1 + ht.HVACLossFactor + ht.HotColdWasteFactor/fDemHt)
	etaDistCl := 1 / (1 + cl.HVACLossFactor + ht.HotColdWasteFactor/fDemCl)

	for i := 0; i < months; i++ {
		lossHt := div(c.needHeat[i]*(1-etaDistHt), etaDistHt)
		lossCl := div(c.needCool[i]*(1-etaDistCl), etaDistCl)

		var sysHt, districtHt, sysCl, districtCl float64
		if ht.DHYesNo == 1 {
			districtHt = c.needHeat[i] + lossHt
		} else {
			sysHt = div(lossHt+c.needHeat[i], ht.Efficiency+dblMin)
		}
		if cl.DCYesNo == 1 {
			districtCl = c.needCool[i] + lossCl
		} else {
			sysCl = div(lossCl+c.needCool[i], ieer+dblMin)
		}

		dcElec := div(districtCl*(1-cl.EtaDCFracAbs), cl.EtaDCCOP*cl.EtaDCNetwork)
		dcAbs := div(districtCl*(1-cl.FracDCFree), cl.EtaDCCOPAbs)
		dhTotal := div(districtHt*(1-ht.FracDHFree), ht.EtaDHSys*ht.EtaDHNetwork)

		c.elecCool[i] = sysCl + dcElec
		c.gasCool[i] = dcAbs
		if ht.EnergyType == FuelElectric {
			c.elecHeat[i] = sysHt
			c.gasHeat[i] = dhTotal
		} else {
			c.elecHeat[i] = 0
			c.gasHeat[i] = sysHt + dhTotal
		}
	}
}

// pumps distributes annual pump energy over the months by mode fraction
func (c *monthlyCalc) pumps() {
	ht, cl := c.p.Heating, c.p.Cooling
	floor := c.p.Structure.FloorArea

	var yrHt, yrCl float64
	for i := 0; i < months; i++ {
		yrHt += megasecondsInMonth[i] * ht.EPumps
		yrCl += megasecondsInMonth[i] * cl.EPumps
	}

	var fracHt, fracCl, fracTot [months]float64
	var sumHt, sumCl, sumTot float64
	for i := 0; i < months; i++ {
		both := c.needHeat[i] + c.needCool[i]
		fracHt[i] = div(c.needHeat[i], both)
		fracCl[i] = div(c.needCool[i], both)
		fracTot[i] = div(both, c.needHeatYr+c.needCoolYr)
		sumHt += fracHt[i]
		sumCl += fracCl[i]
		sumTot += fracTot[i]
	}

	pumpsHt := yrHt * ht.PumpControlReduction * floor
	pumpsCl := yrCl * cl.PumpControlReduction * floor
	for i := 0; i < months; i++ {
		if pumpsHt == 0 || pumpsCl == 0 {
			c.pump[i] = div(fracHt[i]*pumpsHt, sumHt) + div(fracCl[i]*pumpsCl, sumCl)
		} else {
			c.pump[i] = div(fracTot[i]*(pumpsHt+pumpsCl), sumTot)
		}
	}
}

func (c *monthlyCalc) hotWater() {
	ht := c.p.Heating
	yearly := ht.HotWaterDemand * (ht.HotWaterSetT - ht.HotWaterSupplyT) * c.p.Physical.RhoCpWater

	for i := 0; i < months; i++ {
		demand := div(daysInMonth[i]*yearly/daysInYear, ht.HotWaterDistributionEfficiency) / kWh2MJ
		need := math.Max(div(demand, ht.HotWaterSystemEfficiency), 0)
		if ht.HotWaterEnergyType == FuelElectric {
			c.dhwElec[i] = need
		} else {
			c.dhwGas[i] = need
		}
	}
}

func (c *monthlyCalc) output() []EndUses {
	b := c.p.Building
	floor := c.p.Structure.FloorArea
	f := c.fracWkDay

	plugElec := b.ElectricApplianceHeatGainOccupied*f + b.ElectricApplianceHeatGainUnoccupied*(1-f)
	plugGas := b.GasApplianceHeatGainOccupied*f + b.GasApplianceHeatGainUnoccupied*(1-f)

	perArea := func(v float64) float64 { return div(v, floor) }
	perAreaKWh := func(mj float64) float64 { return div(div(mj, floor), kWh2MJ) }

	results := make([]EndUses, months)
	for i := 0; i < months; i++ {
		r := &results[i]
		r.values[ElecHeat] = perAreaKWh(c.elecHeat[i])
		r.values[ElecCool] = perAreaKWh(c.elecCool[i])
		r.values[ElecIntLights] = perArea(c.qIllum[i])
		r.values[ElecExtLights] = perArea(c.qIllumExt[i])
		r.values[ElecFans] = c.fan[i]
		r.values[ElecPump] = perAreaKWh(c.pump[i])
		r.values[ElecEquipInt] = hoursInMonth[i] * plugElec / 1000
		r.values[ElecEquipExt] = 0
		r.values[ElecDHW] = perArea(c.dhwElec[i])
		r.values[GasHeat] = perAreaKWh(c.gasHeat[i])
		r.values[GasCool] = perAreaKWh(c.gasCool[i])
		r.values[GasEquip] = hoursInMonth[i] * plugGas / 1000
		r.values[GasDHW] = perArea(c.dhwGas[i])
	}
	return results
}
