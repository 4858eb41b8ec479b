package models

import "time"

// Simulation methods stored with a run
const (
	MethodMonthly = "monthly"
	MethodHourly  = "hourly"
)

// Run is one stored simulation of a building
type Run struct {
	ID           string    `json:"id"` // uuid
	BuildingPath string    `json:"building_path"`
	DefaultsPath string    `json:"defaults_path,omitempty"`
	WeatherPath  string    `json:"weather_path"`
	Station      string    `json:"station"`
	Method       string    `json:"method"` // "monthly" or "hourly"
	FloorArea    float64   `json:"floor_area"`
	TotalEUI     float64   `json:"total_eui"` // kWh/m² over all periods
	CreatedAt    time.Time `json:"created_at"`
	Published    bool      `json:"published"`

	Periods []PeriodResult `json:"periods,omitempty"`
}

// PeriodResult holds the end uses of one month or hour of a run, in kWh/m²
type PeriodResult struct {
	Period  int                `json:"period"` // 1-based month or hour of year
	EndUses map[string]float64 `json:"end_uses"`
}

// Total sums every end use of the period
func (p PeriodResult) Total() float64 {
	var sum float64
	for _, v := range p.EndUses {
		sum += v
	}
	return sum
}
