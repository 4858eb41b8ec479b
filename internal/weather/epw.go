package weather

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrFormat marks an EPW file that could not be parsed
var ErrFormat = errors.New("invalid epw data")

// EPW column indexes for the fields the engine uses
const (
	colDryBulb           = 6
	colDewPoint          = 7
	colRelHumidity       = 8
	colGlobalHorizontal  = 13
	colDirectNormal      = 14
	colDiffuseHorizontal = 15
	colWindSpeed         = 21

	headerLines = 8
)

// Location is the station header of an EPW file
type Location struct {
	City      string  `json:"city"`
	StationID string  `json:"station_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	TimeZone  int     `json:"time_zone"`
}

// Data holds one year of hourly observations
type Data struct {
	Location

	DryBulb           []float64 // °C
	DewPoint          []float64 // °C
	RelHumidity       []float64 // %
	GlobalHorizontal  []float64 // W/m²
	DirectNormal      []float64 // W/m²
	DiffuseHorizontal []float64 // W/m²
	WindSpeed         []float64 // m/s
}

// LoadEPW reads an EnergyPlus weather file
func LoadEPW(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening weather file %s: %w", path, err)
	}
	defer f.Close()

	return ParseEPW(f, path)
}

// ParseEPW reads EPW content from r. name is used in error messages.
func ParseEPW(r io.Reader, name string) (*Data, error) {
	d := &Data{
		DryBulb:           make([]float64, HoursInYear),
		DewPoint:          make([]float64, HoursInYear),
		RelHumidity:       make([]float64, HoursInYear),
		GlobalHorizontal:  make([]float64, HoursInYear),
		DirectNormal:      make([]float64, HoursInYear),
		DiffuseHorizontal: make([]float64, HoursInYear),
		WindSpeed:         make([]float64, HoursInYear),
	}
	columns := []struct {
		index int
		dst   []float64
	}{
		{colDryBulb, d.DryBulb},
		{colDewPoint, d.DewPoint},
		{colRelHumidity, d.RelHumidity},
		{colGlobalHorizontal, d.GlobalHorizontal},
		{colDirectNormal, d.DirectNormal},
		{colDiffuseHorizontal, d.DiffuseHorizontal},
		{colWindSpeed, d.WindSpeed},
	}

	scanner := bufio.NewScanner(r)
	lineNum, row := 0, 0
	for scanner.Scan() && row < HoursInYear {
		lineNum++
		line := scanner.Text()

		if lineNum == 1 {
			loc, err := parseHeader(line)
			if err != nil {
				return nil, fmt.Errorf("%w: %s line 1: %v", ErrFormat, name, err)
			}
			d.Location = loc
			continue
		}
		if lineNum <= headerLines {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) <= colWindSpeed {
			return nil, fmt.Errorf("%w: %s line %d: expected at least %d fields, got %d",
				ErrFormat, name, lineNum, colWindSpeed+1, len(fields))
		}
		for _, c := range columns {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[c.index]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s line %d field %d: %q is not a number",
					ErrFormat, name, lineNum, c.index+1, fields[c.index])
			}
			c.dst[row] = v
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading weather file %s: %w", name, err)
	}
	if lineNum == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrFormat, name)
	}
	if row < HoursInYear {
		return nil, fmt.Errorf("%w: %s has %d hourly rows, need %d", ErrFormat, name, row, HoursInYear)
	}

	return d, nil
}

func parseHeader(line string) (Location, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 9 || !strings.EqualFold(strings.TrimSpace(fields[0]), "LOCATION") {
		return Location{}, errors.New("missing LOCATION header")
	}

	num := func(i int) (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return 0, fmt.Errorf("header field %d: %q is not a number", i+1, fields[i])
		}
		return v, nil
	}

	lat, err := num(6)
	if err != nil {
		return Location{}, err
	}
	lon, err := num(7)
	if err != nil {
		return Location{}, err
	}
	tz, err := num(8)
	if err != nil {
		return Location{}, err
	}

	return Location{
		City:      strings.TrimSpace(fields[1]),
		StationID: strings.TrimSpace(fields[5]),
		Latitude:  lat,
		Longitude: lon,
		TimeZone:  int(tz),
	}, nil
}
