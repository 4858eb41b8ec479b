package isomodel

import (
	"fmt"
	"strings"
)

// EndUse identifies one energy end use in a result
type EndUse int

const (
	ElecHeat EndUse = iota
	ElecCool
	ElecIntLights
	ElecExtLights
	ElecFans
	ElecPump
	ElecEquipInt
	ElecEquipExt
	ElecDHW
	GasHeat
	GasCool
	GasEquip
	GasDHW
)

// NumEndUses is the size of the end use enumeration
const NumEndUses = 13

// Fuel is the energy carrier of an end use
type Fuel int

const (
	Electricity Fuel = iota
	Gas
)

func (f Fuel) String() string {
	switch f {
	case Electricity:
		return "electricity"
	case Gas:
		return "gas"
	}
	return fmt.Sprintf("Fuel(%d)", int(f))
}

// Category is the building system an end use belongs to
type Category int

const (
	HeatingCategory Category = iota
	CoolingCategory
	InteriorLighting
	ExteriorLighting
	Fans
	Pumps
	InteriorEquipment
	ExteriorEquipment
	WaterSystems
)

var categoryNames = [...]string{
	"heating", "cooling", "interior lights", "exterior lights", "fans",
	"pumps", "interior equipment", "exterior equipment", "water systems",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

var endUseInfo = [NumEndUses]struct {
	name     string
	fuel     Fuel
	category Category
}{
	{"ElecHeat", Electricity, HeatingCategory},
	{"ElecCool", Electricity, CoolingCategory},
	{"ElecIntLights", Electricity, InteriorLighting},
	{"ElecExtLights", Electricity, ExteriorLighting},
	{"ElecFans", Electricity, Fans},
	{"ElecPump", Electricity, Pumps},
	{"ElecEquipInt", Electricity, InteriorEquipment},
	{"ElecEquipExt", Electricity, ExteriorEquipment},
	{"ElecDHW", Electricity, WaterSystems},
	{"GasHeat", Gas, HeatingCategory},
	{"GasCool", Gas, CoolingCategory},
	{"GasEquip", Gas, InteriorEquipment},
	{"GasDHW", Gas, WaterSystems},
}

// AllEndUses lists the enumeration in result order
func AllEndUses() []EndUse {
	out := make([]EndUse, NumEndUses)
	for i := range out {
		out[i] = EndUse(i)
	}
	return out
}

// Valid reports whether u is part of the enumeration
func (u EndUse) Valid() bool {
	return u >= 0 && u < NumEndUses
}

func (u EndUse) String() string {
	if !u.Valid() {
		return fmt.Sprintf("EndUse(%d)", int(u))
	}
	return endUseInfo[u].name
}

// Fuel returns the energy carrier of u
func (u EndUse) Fuel() Fuel {
	if !u.Valid() {
		return -1
	}
	return endUseInfo[u].fuel
}

// Category returns the building system of u
func (u EndUse) Category() Category {
	if !u.Valid() {
		return -1
	}
	return endUseInfo[u].category
}

// ParseEndUse resolves a case-insensitive end use name. The historical
// spelling "ElectDHW" is accepted for ElecDHW.
func ParseEndUse(name string) (EndUse, error) {
	n := strings.TrimSpace(name)
	if strings.EqualFold(n, "ElectDHW") {
		return ElecDHW, nil
	}
	for i, info := range endUseInfo {
		if strings.EqualFold(n, info.name) {
			return EndUse(i), nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownEndUse, name)
}

// EndUses holds one period's energy use per end use, in kWh/m²
type EndUses struct {
	values [NumEndUses]float64
}

// EndUse returns the value for u
func (e EndUses) EndUse(u EndUse) (float64, error) {
	if !u.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownEndUse, int(u))
	}
	return e.values[u], nil
}

// Set stores the value for u
func (e *EndUses) Set(u EndUse, v float64) error {
	if !u.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownEndUse, int(u))
	}
	e.values[u] = v
	return nil
}

func (e *EndUses) add(u EndUse, v float64) {
	e.values[u] += v
}

// Values returns a copy of every value in enumeration order
func (e EndUses) Values() []float64 {
	out := make([]float64, NumEndUses)
	copy(out, e.values[:])
	return out
}

// Total sums every end use
func (e EndUses) Total() float64 {
	var sum float64
	for _, v := range e.values {
		sum += v
	}
	return sum
}

// FuelTotal sums the end uses of one fuel
func (e EndUses) FuelTotal(f Fuel) float64 {
	var sum float64
	for i, v := range e.values {
		if endUseInfo[i].fuel == f {
			sum += v
		}
	}
	return sum
}

// TotalEnergyUse sums every end use of every result
func TotalEnergyUse(results []EndUses) float64 {
	var sum float64
	for _, r := range results {
		sum += r.Total()
	}
	return sum
}
