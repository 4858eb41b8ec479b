package isomodel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/logging"
	"github.com/Argonne-National-Laboratory/ISOmodel/internal/properties"
	"github.com/Argonne-National-Laboratory/ISOmodel/internal/weather"
)

// UserModel holds the building description read from .ism files and the
// weather it references. Convert it with ToMonthlyModel or ToHourlyModel to
// run a simulation.
type UserModel struct {
	params           Params
	buildingPath     string
	defaultsPath     string
	weatherFilePath  string
	scheduleFilePath string
	weather          *weather.Weather
	cache            *WeatherCache
	overrides        map[string]string
	loaded           bool
}

// NewUserModel returns an empty model. Load must succeed before it can be
// converted to a simulation.
func NewUserModel() *UserModel {
	return &UserModel{params: DefaultParams()}
}

// UseWeatherCache makes Load share parsed weather through c
func (m *UserModel) UseWeatherCache(c *WeatherCache) {
	m.cache = c
}

// SetProperty makes key read as value on the next load, whatever the
// building and defaults files say
func (m *UserModel) SetProperty(key, value string) {
	if m.overrides == nil {
		m.overrides = make(map[string]string)
	}
	m.overrides[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
}

// Load reads a building file and a defaults file. Properties set in the
// building file override the defaults.
func (m *UserModel) Load(buildingPath, defaultsPath string) error {
	return m.LoadContext(context.Background(), buildingPath, defaultsPath)
}

// LoadBuilding reads a single building file that sets every required property
func (m *UserModel) LoadBuilding(buildingPath string) error {
	return m.LoadContext(context.Background(), buildingPath, "")
}

// LoadContext is Load with a context carrying the logger. An empty
// defaultsPath loads the building file alone.
func (m *UserModel) LoadContext(ctx context.Context, buildingPath, defaultsPath string) error {
	log := logging.FromContext(ctx)
	start := time.Now()

	paths := []string{buildingPath}
	if defaultsPath != "" {
		paths = append(paths, defaultsPath)
	}

	props := properties.New()
	for key, value := range m.overrides {
		props.Set(key, value)
	}
	if len(m.overrides) > 0 {
		log.Debug("applied property overrides", "count", len(m.overrides))
	}
	for _, path := range paths {
		if err := checkFile(path); err != nil {
			return err
		}
		if err := props.ReadFile(path); err != nil {
			return &LoadError{Path: path, Err: classify(err)}
		}
		log.Debug("read properties", "path", path, "keys", props.Len())
	}

	params, err := paramsFromProperties(props)
	if err != nil {
		return &LoadError{Path: buildingPath, Err: err}
	}

	weatherRef, _ := props.Get("weatherfilepath")
	scheduleRef, _ := props.Get("schedulefilepath")

	weatherPath, err := resolveWeatherPath(buildingPath, weatherRef)
	if err != nil {
		return err
	}

	var w *weather.Weather
	if m.cache != nil {
		w, err = m.cache.Load(weatherPath)
	} else {
		w, err = weather.Load(weatherPath)
	}
	if err != nil {
		return &LoadError{Path: weatherPath, Err: classify(err)}
	}

	m.params = params
	m.buildingPath = buildingPath
	m.defaultsPath = defaultsPath
	m.weatherFilePath = weatherRef
	m.scheduleFilePath = scheduleRef
	m.weather = w
	m.loaded = true

	log.Debug("loaded building",
		"building", buildingPath,
		"defaults", defaultsPath,
		"weather", weatherPath,
		"station", w.Data.StationID,
		"city", w.Data.City,
		"elapsed", time.Since(start))
	return nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &LoadError{Path: path, Err: ErrMissingFile}
		}
		return &LoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrUnreadableFile, err)}
	}
	if info.IsDir() {
		return &LoadError{Path: path, Err: fmt.Errorf("%w: is a directory", ErrUnreadableFile)}
	}
	return nil
}

// classify maps parser and filesystem errors onto the load error kinds
func classify(err error) error {
	switch {
	case errors.Is(err, properties.ErrSyntax), errors.Is(err, weather.ErrFormat):
		return fmt.Errorf("%w: %v", ErrMalformedFile, err)
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrMissingFile, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
}

// resolveWeatherPath uses ref as given when it exists, otherwise relative to
// the building file's directory
func resolveWeatherPath(buildingPath, ref string) (string, error) {
	normalized := filepath.FromSlash(strings.ReplaceAll(ref, `\`, "/"))
	if _, err := os.Stat(normalized); err == nil {
		return normalized, nil
	}

	candidate := filepath.Join(filepath.Dir(buildingPath), strings.TrimLeft(normalized, string(filepath.Separator)))
	if _, err := os.Stat(candidate); err != nil {
		return "", &LoadError{Path: ref, Err: fmt.Errorf("%w: weather file not found", ErrMissingFile)}
	}
	return candidate, nil
}

// Loaded reports whether a building has been loaded
func (m *UserModel) Loaded() bool { return m.loaded }

// TerrainClass returns the terrain class of the site
func (m *UserModel) TerrainClass() float64 { return m.params.Location.Terrain }

// Params returns a copy of every parameter group
func (m *UserModel) Params() Params { return m.params }

func (m *UserModel) Population() Population                 { return m.params.Population }
func (m *UserModel) Location() Location                     { return m.params.Location }
func (m *UserModel) Building() Building                     { return m.params.Building }
func (m *UserModel) Structure() Structure                   { return m.params.Structure }
func (m *UserModel) Lighting() Lighting                     { return m.params.Lighting }
func (m *UserModel) Ventilation() Ventilation               { return m.params.Ventilation }
func (m *UserModel) Heating() Heating                       { return m.params.Heating }
func (m *UserModel) Cooling() Cooling                       { return m.params.Cooling }
func (m *UserModel) PhysicalQuantities() PhysicalQuantities { return m.params.Physical }
func (m *UserModel) SimulationSettings() SimulationSettings { return m.params.Settings }


// BuildingPath returns the building file given to Load
func (m *UserModel) BuildingPath() string { return m.buildingPath }

// DefaultsPath returns the defaults file given to Load
func (m *UserModel) DefaultsPath() string { return m.defaultsPath }

// WeatherFilePath returns the weather path as written in the building file
func (m *UserModel) WeatherFilePath() string { return m.weatherFilePath }

// ScheduleFilePath returns the optional schedule path from the building file
func (m *UserModel) ScheduleFilePath() string { return m.scheduleFilePath }

// Weather returns the loaded weather, or nil before Load
func (m *UserModel) Weather() *weather.Weather { return m.weather }

// WeatherSummary returns the monthly weather means, or nil before Load
func (m *UserModel) WeatherSummary() *weather.Summary {
	if m.weather == nil {
		return nil
	}
	return m.weather.Summary
}

// ToMonthlyModel returns a monthly simulation holding copies of the parameters
func (m *UserModel) ToMonthlyModel() (*MonthlyModel, error) {
	if !m.loaded {
		return nil, ErrNotLoaded
	}
	return &MonthlyModel{Params: m.params, weather: m.weather}, nil
}

// ToHourlyModel returns an hourly simulation holding copies of the parameters
func (m *UserModel) ToHourlyModel() (*HourlyModel, error) {
	if !m.loaded {
		return nil, ErrNotLoaded
	}
	return &HourlyModel{Params: m.params, weather: m.weather}, nil
}

// propertyReader collects the first error while reading many properties
type propertyReader struct {
	props *properties.Properties
	err   error
}

func (r *propertyReader) float(key string) float64 {
	if r.err != nil {
		return 0
	}
	if v, ok := r.props.Float(key); ok {
		return v
	}
	raw, ok := r.props.Get(key)
	if !ok {
		r.err = malformed("%s building parameter is missing", key)
		return 0
	}
	r.err = malformed("%s cannot be converted to a number: %q", key, raw)
	return 0
}

func (r *propertyReader) optional(key string, dst *float64) {
	if r.err != nil || !r.props.Contains(key) {
		return
	}
	*dst = r.float(key)
}

func (r *propertyReader) optionalBool(key string, dst *bool) {
	if r.err != nil {
		return
	}
	raw, ok := r.props.Get(key)
	if !ok {
		return
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		*dst = b
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.err = malformed("%s must be true or false: %q", key, raw)
		return
	}
	*dst = v != 0
}

func (r *propertyReader) enum(key string, choices map[string]int, msg string) int {
	if r.err != nil {
		return 0
	}
	raw, ok := r.props.Get(key)
	if !ok {
		r.err = malformed("%s building parameter is missing", key)
		return 0
	}
	v, ok := choices[strings.ToLower(raw)]
	if !ok {
		r.err = malformed("%s", msg)
		return 0
	}
	return v
}

// surfaces reads a nine-value vector in file order N, NE, E, SE, S, SW, W, NW,
// Roof and returns it in surface order S, SE, E, NE, N, NW, W, SW, Roof
func (r *propertyReader) surfaces(key string) [NumSurfaces]float64 {
	var out [NumSurfaces]float64
	if r.err != nil {
		return out
	}
	if !r.props.Contains(key) {
		r.err = malformed("%s building parameter is missing", key)
		return out
	}
	values, err := r.props.FloatVector(key)
	if err != nil {
		r.err = fmt.Errorf("%w: %v", ErrMalformedFile, err)
		return out
	}
	if len(values) != NumSurfaces {
		r.err = malformed("invalid number of values for %s parameter, it must have %d", key, NumSurfaces)
		return out
	}
	copy(out[:], values)
	out[0], out[4] = out[4], out[0]
	out[1], out[3] = out[3], out[1]
	out[5], out[7] = out[7], out[5]
	return out
}

var (
	fuelChoices        = map[string]int{"electric": int(FuelElectric), "gas": int(FuelGas)}
	ventilationChoices = map[string]int{
		"mechanical": int(VentilationMechanical),
		"combined":   int(VentilationCombined),
		"natural":    int(VentilationNatural),
	}
	bemChoices = map[string]int{"none": int(BEMNone), "simple": int(BEMSimple), "advanced": int(BEMAdvanced)}
)

func paramsFromProperties(props *properties.Properties) (Params, error) {
	p := DefaultParams()
	r := &propertyReader{props: props}

	required := []struct {
		key string
		dst *float64
	}{
		{"terrainclass", &p.Location.Terrain},
		{"buildingheight", &p.Structure.BuildingHeight},
		{"floorarea", &p.Structure.FloorArea},
		{"occupancydayfirst", &p.Population.DaysStart},
		{"occupancydaylast", &p.Population.DaysEnd},
		{"occupancyhourfirst", &p.Population.HoursStart},
		{"occupancyhourlast", &p.Population.HoursEnd},
		{"peopledensityoccupied", &p.Population.DensityOccupied},
		{"peopledensityunoccupied", &p.Population.DensityUnoccupied},
		{"lightingpowerdensityoccupied", &p.Lighting.PowerDensityOccupied},
		{"lightingpowerdensityunoccupied", &p.Lighting.PowerDensityUnoccupied},
		{"electricappliancepowerdensityoccupied", &p.Building.ElectricApplianceHeatGainOccupied},
		{"electricappliancepowerdensityunoccupied", &p.Building.ElectricApplianceHeatGainUnoccupied},
		{"gasappliancepowerdensityoccupied", &p.Building.GasApplianceHeatGainOccupied},
		{"gasappliancepowerdensityunoccupied", &p.Building.GasApplianceHeatGainUnoccupied},
		{"exteriorlightingpower", &p.Lighting.ExteriorEnergy},
		{"hvacwastefactor", &p.Heating.HotColdWasteFactor},
		{"hvacheatinglossfactor", &p.Heating.HVACLossFactor},
		{"hvaccoolinglossfactor", &p.Cooling.HVACLossFactor},
		{"daylightsensordimmingfraction", &p.Lighting.DimmingFraction},
		{"lightingoccupancysensordimmingfraction", &p.Building.LightingOccupancySensor},
		{"constantilluminationcontrolmultiplier", &p.Building.ConstantIllumination},
		{"coolingsystemcop", &p.Cooling.COP},
		{"coolingsystemiplvtocopratio", &p.Cooling.PartialLoadValue},
		{"heatingsystemefficiency", &p.Heating.Efficiency},
		{"ventilationintakerateoccupied", &p.Ventilation.SupplyRate},
		{"ventilationexhaustrateoccupied", &p.Ventilation.SupplyDifference},
		{"heatrecovery", &p.Ventilation.HeatRecoveryEfficiency},
		{"exhaustairrecirculation", &p.Ventilation.ExhaustAirRecirculated},
		{"infiltrationrateoccupied", &p.Structure.InfiltrationRate},
		{"dhwdemand", &p.Heating.HotWaterDemand},
		{"dhwsystemefficiency", &p.Heating.HotWaterSystemEfficiency},
		{"dhwdistributionefficiency", &p.Heating.HotWaterDistributionEfficiency},
		{"interiorheatcapacity", &p.Structure.InteriorHeatCapacity},
		{"exteriorheatcapacity", &p.Structure.WallHeatCapacity},
		{"heatingpumpcontrol", &p.Heating.PumpControlReduction},
		{"coolingpumpcontrol", &p.Cooling.PumpControlReduction},
		{"heatgainperperson", &p.Population.HeatGainPerPerson},
		{"specificfanpower", &p.Ventilation.FanPower},
		{"fanflowcontrolfactor", &p.Ventilation.FanControlFactor},
		{"coolingsetpointoccupied", &p.Cooling.TemperatureSetPointOccupied},
		{"coolingsetpointunoccupied", &p.Cooling.TemperatureSetPointUnoccupied},
		{"heatingsetpointoccupied", &p.Heating.TemperatureSetPointOccupied},
		{"heatingsetpointunoccupied", &p.Heating.TemperatureSetPointUnoccupied},
	}
	for _, f := range required {
		*f.dst = r.float(f.key)
	}

	p.Heating.EnergyType = FuelType(r.enum("heatingfueltype", fuelChoices,
		"heatingFuelType parameter must be one of 'gas' or 'electric'"))
	p.Heating.HotWaterEnergyType = FuelType(r.enum("dhwfueltype", fuelChoices,
		"dhwFuelType parameter must be one of 'gas' or 'electric'"))
	p.Ventilation.Type = VentilationType(r.enum("ventilationtype", ventilationChoices,
		"ventilationType parameter must be one of 'mechanical', 'natural', or 'combined'"))
	p.Building.BuildingEnergyManagement = BEMType(r.enum("bemtype", bemChoices,
		"bemType parameter must be one of 'none', 'simple', or 'advanced'"))

	p.Structure.WallArea = r.surfaces("wallarea")
	p.Structure.WallU = r.surfaces("wallu")
	p.Structure.WallEmissivity = r.surfaces("wallemissivity")
	p.Structure.WallAbsorption = r.surfaces("wallabsorption")
	p.Structure.WindowArea = r.surfaces("windowarea")
	p.Structure.WindowU = r.surfaces("windowu")
	p.Structure.WindowSHGC = r.surfaces("windowshgc")
	p.Structure.WindowShadingCorrection = r.surfaces("windowscf")
	p.Structure.WindowShadingDevice = r.surfaces("windowsdf")

	optional := []struct {
		key string
		dst *float64
	}{
		{"ventilationintakerateunoccupied", &p.Ventilation.SupplyRateUnoccupied},
		{"ventilationexhaustrateunoccupied", &p.Ventilation.SupplyDifferenceUnoccupied},
		{"infiltrationrateunoccupied", &p.Structure.InfiltrationRateUnoccupied},
		{"lightingpowerfixedoccupied", &p.Lighting.PowerFixedOccupied},
		{"lightingpowerfixedunoccupied", &p.Lighting.PowerFixedUnoccupied},
		{"electricappliancepowerfixedoccupied", &p.Building.ElectricAppliancePowerFixedOccupied},
		{"electricappliancepowerfixedunoccupied", &p.Building.ElectricAppliancePowerFixedUnoccupied},
		{"gasappliancepowerfixedoccupied", &p.Building.GasAppliancePowerFixedOccupied},
		{"gasappliancepowerfixedunoccupied", &p.Building.GasAppliancePowerFixedUnoccupied},
		{"externalequipment", &p.Building.ExternalEquipment},

		{"r_se", &p.Structure.RSe},
		{"irradianceformaxshadinguse", &p.Structure.IrradianceForMaxShadingUse},
		{"shadingfactoratmaxuse", &p.Structure.ShadingFactorAtMaxUse},
		{"totalareaperfloorarea", &p.Structure.TotalAreaPerFloorArea},
		{"win_ff", &p.Structure.WinFF},
		{"win_f_w", &p.Structure.WinFW},
		{"r_sc_ext", &p.Structure.RScExt},

		{"n_day_start", &p.Lighting.NDayStart},
		{"n_day_end", &p.Lighting.NDayEnd},
		{"n_weeks", &p.Lighting.NWeeks},
		{"elecinternalgains", &p.Lighting.ElecInternalGains},
		{"permlightpowerdensity", &p.Lighting.PermLightPowerDensity},
		{"presencesensorad", &p.Lighting.PresenceSensorAd},
		{"automaticad", &p.Lighting.AutomaticAd},
		{"presenceautoad", &p.Lighting.PresenceAutoAd},
		{"manualswitchad", &p.Lighting.ManualSwitchAd},
		{"presencesensorlux", &p.Lighting.PresenceSensorLux},
		{"automaticlux", &p.Lighting.AutomaticLux},
		{"presenceautolux", &p.Lighting.PresenceAutoLux},
		{"manualswitchlux", &p.Lighting.ManualSwitchLux},
		{"naturallylightedarea", &p.Lighting.NaturallyLightedArea},

		{"ventpreheatdegc", &p.Ventilation.VentPreheatDegC},
		{"n50", &p.Ventilation.N50},
		{"hzone", &p.Ventilation.HZone},
		{"p_exp", &p.Ventilation.PExp},
		{"zone_frac", &p.Ventilation.ZoneFrac},
		{"stack_exp", &p.Ventilation.StackExp},
		{"stack_coeff", &p.Ventilation.StackCoeff},
		{"wind_exp", &p.Ventilation.WindExp},
		{"wind_coeff", &p.Ventilation.WindCoeff},
		{"dcp", &p.Ventilation.DCp},
		{"vent_rate_flag", &p.Ventilation.VentRateFlag},
		{"h_ve", &p.Ventilation.HVe},

		{"dt_supp_ht", &p.Heating.DTSupp},
		{"e_pumps_ht", &p.Heating.EPumps},
		{"t_ht_ctrl_flag", &p.Heating.CtrlFlag},
		{"a_h0", &p.Heating.AH0},
		{"tau_h0", &p.Heating.TauH0},
		{"dh_yesno", &p.Heating.DHYesNo},
		{"eta_dh_network", &p.Heating.EtaDHNetwork},
		{"eta_dh_sys", &p.Heating.EtaDHSys},
		{"frac_dh_free", &p.Heating.FracDHFree},
		{"dhw_tset", &p.Heating.HotWaterSetT},
		{"dhw_tsupply", &p.Heating.HotWaterSupplyT},

		{"t_cl_ctrl_flag", &p.Cooling.CtrlFlag},
		{"dt_supp_cl", &p.Cooling.DTSupp},
		{"dc_yesno", &p.Cooling.DCYesNo},
		{"eta_dc_network", &p.Cooling.EtaDCNetwork},
		{"eta_dc_cop", &p.Cooling.EtaDCCOP},
		{"eta_dc_frac_abs", &p.Cooling.EtaDCFracAbs},
		{"eta_dc_cop_abs", &p.Cooling.EtaDCCOPAbs},
		{"frac_dc_free", &p.Cooling.FracDCFree},
		{"e_pumps_cl", &p.Cooling.EPumps},

		{"rhocpair", &p.Physical.RhoCpAir},
		{"rhocpwater", &p.Physical.RhoCpWater},

		{"phiintfractiontoairnode", &p.Settings.PhiIntFractionToAirNode},
		{"phisolfractiontoairnode", &p.Settings.PhiSolFractionToAirNode},
		{"hci", &p.Settings.Hci},
		{"hri", &p.Settings.Hri},
	}
	for _, f := range optional {
		r.optional(f.key, f.dst)
	}
	r.optionalBool("forcedairheating", &p.Heating.ForcedAir)
	r.optionalBool("forcedaircooling", &p.Cooling.ForcedAir)

	if r.err == nil {
		if ref, ok := props.Get("weatherfilepath"); !ok || ref == "" {
			r.err = malformed("weatherFilePath building parameter is missing")
		}
	}

	return p, r.err
}
