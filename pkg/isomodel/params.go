package isomodel

// NumSurfaces is the number of envelope surfaces: eight vertical
// orientations plus the roof
const NumSurfaces = 9

// Surface order for every nine-value Structure array
const (
	South = iota
	SouthEast
	East
	NorthEast
	North
	NorthWest
	West
	SouthWest
	Roof
)

// FuelType is the energy carrier selected for heating or hot water
type FuelType int

const (
	FuelElectric FuelType = 1
	FuelGas      FuelType = 2
)

func (f FuelType) String() string {
	switch f {
	case FuelElectric:
		return "electric"
	case FuelGas:
		return "gas"
	}
	return "unknown"
}

// VentilationType selects how outdoor air reaches the zone
type VentilationType int

const (
	VentilationMechanical VentilationType = 1
	VentilationCombined   VentilationType = 2
	VentilationNatural    VentilationType = 3
)

func (v VentilationType) String() string {
	switch v {
	case VentilationMechanical:
		return "mechanical"
	case VentilationCombined:
		return "combined"
	case VentilationNatural:
		return "natural"
	}
	return "unknown"
}

// BEMType is the level of building energy management
type BEMType int

const (
	BEMNone     BEMType = 1
	BEMSimple   BEMType = 2
	BEMAdvanced BEMType = 3
)

func (b BEMType) String() string {
	switch b {
	case BEMNone:
		return "none"
	case BEMSimple:
		return "simple"
	case BEMAdvanced:
		return "advanced"
	}
	return "unknown"
}

// Population describes occupancy. Days run 1..7 from Monday, hours 0..23.
type Population struct {
	DaysStart         float64
	DaysEnd           float64
	HoursStart        float64
	HoursEnd          float64
	DensityOccupied   float64 // m²/person
	DensityUnoccupied float64 // m²/person
	HeatGainPerPerson float64 // W/person
}

// Location holds site parameters
type Location struct {
	Terrain float64
}

// Building holds appliance, lighting control and energy management parameters
type Building struct {
	LightingOccupancySensor             float64
	ConstantIllumination                float64
	ElectricApplianceHeatGainOccupied   float64 // W/m²
	ElectricApplianceHeatGainUnoccupied float64 // W/m²
	GasApplianceHeatGainOccupied        float64 // W/m²
	GasApplianceHeatGainUnoccupied      float64 // W/m²
	BuildingEnergyManagement            BEMType
	ExternalEquipment                   float64 // W

	ElectricAppliancePowerFixedOccupied   float64
	ElectricAppliancePowerFixedUnoccupied float64
	GasAppliancePowerFixedOccupied        float64
	GasAppliancePowerFixedUnoccupied      float64
}

// Structure holds geometry and envelope properties. Arrays are indexed by
// the surface constants South..Roof.
type Structure struct {
	FloorArea            float64 // m²
	BuildingHeight       float64 // m
	InfiltrationRate     float64 // m³/m²/h at 4 Pa
	InteriorHeatCapacity float64 // J/K/m²
	WallHeatCapacity     float64 // J/K/m²

	WallArea                [NumSurfaces]float64
	WallU                   [NumSurfaces]float64
	WallEmissivity          [NumSurfaces]float64
	WallAbsorption          [NumSurfaces]float64
	WindowArea              [NumSurfaces]float64
	WindowU                 [NumSurfaces]float64
	WindowSHGC              [NumSurfaces]float64
	WindowShadingCorrection [NumSurfaces]float64
	WindowShadingDevice     [NumSurfaces]float64

	RSe                        float64
	IrradianceForMaxShadingUse float64
	ShadingFactorAtMaxUse      float64
	TotalAreaPerFloorArea      float64
	WinFF                      float64
	WinFW                      float64
	RScExt                     float64
	InfiltrationRateUnoccupied float64
}

// Lighting holds interior and exterior lighting parameters
type Lighting struct {
	PowerDensityOccupied   float64 // W/m²
	PowerDensityUnoccupied float64 // W/m²
	DimmingFraction        float64
	ExteriorEnergy         float64 // W

	NDayStart             float64
	NDayEnd               float64
	NWeeks                float64
	ElecInternalGains     float64
	PermLightPowerDensity float64
	PresenceSensorAd      float64
	AutomaticAd           float64
	PresenceAutoAd        float64
	ManualSwitchAd        float64
	PresenceSensorLux     float64
	AutomaticLux          float64
	PresenceAutoLux       float64
	ManualSwitchLux       float64
	NaturallyLightedArea  float64

	PowerFixedOccupied   float64
	PowerFixedUnoccupied float64
}

// Ventilation holds mechanical ventilation and infiltration model parameters
type Ventilation struct {
	Type                   VentilationType
	SupplyRate             float64 // L/s
	SupplyDifference       float64 // L/s
	HeatRecoveryEfficiency float64
	ExhaustAirRecirculated float64
	FanPower               float64 // W/(L/s)
	FanControlFactor       float64

	SupplyRateUnoccupied       float64
	SupplyDifferenceUnoccupied float64

	VentPreheatDegC float64
	N50             float64
	HZone           float64
	PExp            float64
	ZoneFrac        float64
	StackExp        float64
	StackCoeff      float64
	WindExp         float64
	WindCoeff       float64
	DCp             float64
	VentRateFlag    float64
	HVe             float64
}

// Heating holds heating, distribution and hot water parameters
type Heating struct {
	TemperatureSetPointOccupied    float64
	TemperatureSetPointUnoccupied  float64
	HVACLossFactor                 float64
	HotColdWasteFactor             float64
	Efficiency                     float64
	EnergyType                     FuelType
	PumpControlReduction           float64
	HotWaterDemand                 float64 // m³/yr
	HotWaterDistributionEfficiency float64
	HotWaterSystemEfficiency       float64
	HotWaterEnergyType             FuelType

	DTSupp          float64
	ForcedAir       bool
	EPumps          float64
	CtrlFlag        float64
	AH0             float64
	TauH0           float64
	DHYesNo         float64
	EtaDHNetwork    float64
	EtaDHSys        float64
	FracDHFree      float64
	HotWaterSetT    float64
	HotWaterSupplyT float64
}

// Cooling holds cooling and district cooling parameters
type Cooling struct {
	TemperatureSetPointOccupied   float64
	TemperatureSetPointUnoccupied float64
	COP                           float64
	PartialLoadValue              float64
	HVACLossFactor                float64
	PumpControlReduction          float64

	ForcedAir    bool
	CtrlFlag     float64
	DTSupp       float64
	DCYesNo      float64
	EtaDCNetwork float64
	EtaDCCOP     float64
	EtaDCFracAbs float64
	EtaDCCOPAbs  float64
	FracDCFree   float64
	EPumps       float64
}

// PhysicalQuantities holds material constants
type PhysicalQuantities struct {
	RhoCpAir   float64 // MJ/m³K
	RhoCpWater float64 // MJ/m³K
}

// SimulationSettings holds hourly 5R1C model coefficients
type SimulationSettings struct {
	PhiIntFractionToAirNode float64
	PhiSolFractionToAirNode float64
	Hci                     float64
	Hri                     float64
}

// Params is the full set of inputs shared by both simulation methods
type Params struct {
	Population  Population
	Location    Location
	Building    Building
	Structure   Structure
	Lighting    Lighting
	Ventilation Ventilation
	Heating     Heating
	Cooling     Cooling
	Physical    PhysicalQuantities
	Settings    SimulationSettings
}

// DefaultParams returns the values used when optional properties are absent
func DefaultParams() Params {
	return Params{
		Structure: Structure{
			RSe:                        0.04,
			IrradianceForMaxShadingUse: 500,
			ShadingFactorAtMaxUse:      0.5,
			TotalAreaPerFloorArea:      4.5,
			WinFF:                      0.25,
			WinFW:                      0.9,
			RScExt:                     0.04,
		},
		Lighting: Lighting{
			NDayStart:         7,
			NDayEnd:           18,
			NWeeks:            50,
			ElecInternalGains: 1,
			PresenceSensorAd:  0.6,
			AutomaticAd:       0.8,
			PresenceAutoAd:    0.6,
			ManualSwitchAd:    1,
			PresenceSensorLux: 500,
			AutomaticLux:      300,
			PresenceAutoLux:   300,
			ManualSwitchLux:   500,
		},
		Ventilation: Ventilation{
			VentPreheatDegC: -50,
			N50:             2,
			HZone:           39,
			PExp:            0.65,
			ZoneFrac:        0.7,
			StackExp:        0.667,
			StackCoeff:      0.0146,
			WindExp:         0.667,
			WindCoeff:       0.0769,
			DCp:             0.75,
			VentRateFlag:    1,
		},
		Heating: Heating{
			DTSupp:          7,
			ForcedAir:       true,
			EPumps:          0.25,
			CtrlFlag:        1,
			AH0:             1,
			TauH0:           15,
			EtaDHNetwork:    0.9,
			EtaDHSys:        0.87,
			HotWaterSetT:    60,
			HotWaterSupplyT: 20,
		},
		Cooling: Cooling{
			ForcedAir:    true,
			CtrlFlag:     1,
			DTSupp:       7,
			EtaDCNetwork: 0.9,
			EtaDCCOP:     5.5,
			EtaDCCOPAbs:  1,
			EPumps:       0.25,
		},
		Physical: PhysicalQuantities{
			RhoCpAir:   1.22521 * 0.001012,
			RhoCpWater: 4.1813,
		},
		Settings: SimulationSettings{
			PhiIntFractionToAirNode: 0.5,
			Hci:                     2.5,
			Hri:                     5.5,
		},
	}
}
