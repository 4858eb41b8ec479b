// Package batch loads and simulates buildings, one at a time or many in
// parallel with a shared weather cache.
package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/logging"
	"github.com/Argonne-National-Laboratory/ISOmodel/pkg/isomodel"
	"github.com/Argonne-National-Laboratory/ISOmodel/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Mode selects the simulation method and result resolution
type Mode int

const (
	Monthly Mode = iota
	HourlyByMonth
	HourlyByHour
)

var modeNames = [...]string{"monthly", "hourly-by-month", "hourly-by-hour"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Method returns the stored method name
func (m Mode) Method() string {
	if m == Monthly {
		return models.MethodMonthly
	}
	return models.MethodHourly
}

// ParseMode accepts the mode names plus "hourly" for HourlyByMonth
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "":
		return Monthly, nil
	case "hourly", "hourly-by-month":
		return HourlyByMonth, nil
	case "hourly-by-hour":
		return HourlyByHour, nil
	}
	return 0, fmt.Errorf("unknown mode %q (monthly, hourly-by-month or hourly-by-hour)", s)
}

// Job names a building, its optional defaults file and property overrides
// applied on top of both
type Job struct {
	Building  string
	Defaults  string
	Overrides map[string]string
}

// Result is the outcome of one job. Err is set when loading failed.
type Result struct {
	Job     Job
	Mode    Mode
	Model   *isomodel.UserModel
	EndUses []isomodel.EndUses
	Elapsed time.Duration
	Err     error
}

// Total returns the summed energy use over all periods in kWh/m²
func (r Result) Total() float64 {
	return isomodel.TotalEnergyUse(r.EndUses)
}

// Run converts a successful result into a storable run
func (r Result) Run() models.Run {
	run := models.Run{
		BuildingPath: r.Job.Building,
		DefaultsPath: r.Job.Defaults,
		Method:       r.Mode.Method(),
		TotalEUI:     r.Total(),
		CreatedAt:    time.Now().UTC(),
	}
	if r.Model != nil {
		run.WeatherPath = r.Model.WeatherFilePath()
		run.FloorArea = r.Model.Structure().FloorArea
		if w := r.Model.Weather(); w != nil {
			run.Station = w.Data.StationID
		}
	}
	for i, e := range r.EndUses {
		p := models.PeriodResult{Period: i + 1, EndUses: make(map[string]float64, isomodel.NumEndUses)}
		for _, u := range isomodel.AllEndUses() {
			v, _ := e.EndUse(u)
			p.EndUses[u.String()] = v
		}
		run.Periods = append(run.Periods, p)
	}
	return run
}

// Simulate loads one building and runs it in the given mode. cache may be nil.
func Simulate(ctx context.Context, cache *isomodel.WeatherCache, job Job, mode Mode) Result {
	log := logging.FromContext(ctx)
	start := time.Now()
	res := Result{Job: job, Mode: mode}

	m := isomodel.NewUserModel()
	if cache != nil {
		m.UseWeatherCache(cache)
	}
	for key, value := range job.Overrides {
		m.SetProperty(key, value)
	}
	if err := m.LoadContext(ctx, job.Building, job.Defaults); err != nil {
		res.Err = err
		return res
	}
	res.Model = m

	switch mode {
	case Monthly:
		mm, err := m.ToMonthlyModel()
		if err != nil {
			res.Err = err
			return res
		}
		res.EndUses = mm.SimulateContext(ctx)
	default:
		hm, err := m.ToHourlyModel()
		if err != nil {
			res.Err = err
			return res
		}
		res.EndUses = hm.SimulateContext(ctx, mode == HourlyByMonth)
	}

	res.Elapsed = time.Since(start)
	log.Info("simulated building",
		"building", job.Building,
		"mode", mode.String(),
		"total_kwh_m2", res.Total(),
		"elapsed", res.Elapsed)
	return res
}

// RunAll simulates every job with at most workers running at once. Results
// come back in job order; a failed load is reported in its Result and does
// not stop the others. The returned error is only set when ctx is done.
func RunAll(ctx context.Context, jobs []Job, mode Mode, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}

	cache := isomodel.NewWeatherCache()
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Simulate(ctx, cache, job, mode)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch interrupted: %w", err)
	}

	logging.FromContext(ctx).Debug("batch complete", "jobs", len(jobs), "weather_files", cache.Len())
	return results, nil
}
