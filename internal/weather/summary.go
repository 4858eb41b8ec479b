package weather

// Summary holds the monthly averages the monthly method runs on
type Summary struct {
	DryBulb          [MonthsInYear]float64
	DewPoint         [MonthsInYear]float64
	RelHumidity      [MonthsInYear]float64
	WindSpeed        [MonthsInYear]float64
	GlobalHorizontal [MonthsInYear]float64

	// Solar is the mean total irradiance per vertical surface
	Solar [MonthsInYear][NumSurfaces]float64

	// Hour-of-day means for each month
	HourlyDryBulb          [MonthsInYear][HoursInDay]float64
	HourlyDewPoint         [MonthsInYear][HoursInDay]float64
	HourlyGlobalHorizontal [MonthsInYear][HoursInDay]float64
}

// Summarize averages hourly data and surface irradiance by month
func Summarize(d *Data, tf *TimeFrame, surfaces [][NumSurfaces]float64) *Summary {
	s := &Summary{}
	var counts [MonthsInYear]int

	for i := 0; i < HoursInYear; i++ {
		m := tf.Month[i] - 1
		h := tf.Hour[i]
		counts[m]++

		s.DryBulb[m] += d.DryBulb[i]
		s.DewPoint[m] += d.DewPoint[i]
		s.RelHumidity[m] += d.RelHumidity[i]
		s.WindSpeed[m] += d.WindSpeed[i]
		s.GlobalHorizontal[m] += d.GlobalHorizontal[i]

		s.HourlyDryBulb[m][h] += d.DryBulb[i]
		s.HourlyDewPoint[m][h] += d.DewPoint[i]
		s.HourlyGlobalHorizontal[m][h] += d.GlobalHorizontal[i]

		for k := 0; k < NumSurfaces; k++ {
			s.Solar[m][k] += surfaces[i][k]
		}
	}

	for m := 0; m < MonthsInYear; m++ {
		inv := 1 / float64(max(counts[m], 1))
		s.DryBulb[m] *= inv
		s.DewPoint[m] *= inv
		s.RelHumidity[m] *= inv
		s.WindSpeed[m] *= inv
		s.GlobalHorizontal[m] *= inv
		for k := 0; k < NumSurfaces; k++ {
			s.Solar[m][k] *= inv
		}

		days := float64(MonthLength(m + 1))
		for h := 0; h < HoursInDay; h++ {
			s.HourlyDryBulb[m][h] /= days
			s.HourlyDewPoint[m][h] /= days
			s.HourlyGlobalHorizontal[m][h] /= days
		}
	}
	return s
}
