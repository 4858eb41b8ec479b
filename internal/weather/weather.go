// Package weather reads EnergyPlus weather files and derives the solar and
// monthly climate data used by the isomodel simulations.
package weather

import "fmt"

// Weather bundles a year of observations with its derived radiation data.
// It is read-only once built and may be shared between simulations.
type Weather struct {
	Path    string
	Data    *Data
	Frame   *TimeFrame
	Surface [][NumSurfaces]float64
	Summary *Summary
}

// New derives surface radiation and monthly means from d
func New(d *Data) *Weather {
	tf := NewTimeFrame()
	surface := SolarRadiation(d, tf)
	return &Weather{
		Data:    d,
		Frame:   tf,
		Surface: surface,
		Summary: Summarize(d, tf, surface),
	}
}

// Load reads an EPW file and derives its radiation data
func Load(path string) (*Weather, error) {
	d, err := LoadEPW(path)
	if err != nil {
		return nil, fmt.Errorf("loading weather: %w", err)
	}
	w := New(d)
	w.Path = path
	return w, nil
}
