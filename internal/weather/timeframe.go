package weather

const (
	// HoursInYear is the length of every simulated year; leap days are ignored
	HoursInYear  = 8760
	MonthsInYear = 12
	HoursInDay   = 24
	DaysInWeek   = 7
	DaysInYear   = 365
)

var daysInMonth = [MonthsInYear]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// MonthLength returns the number of days in month (1..12)
func MonthLength(month int) int {
	if month < 1 || month > MonthsInYear {
		return 0
	}
	return daysInMonth[month-1]
}

// TimeFrame maps each hour of a non-leap year to its calendar position
type TimeFrame struct {
	// Month is 1..12
	Month [HoursInYear]int
	// Day is the day of month, 1..31
	Day [HoursInYear]int
	// Hour is the hour of day, 0..23
	Hour [HoursInYear]int
	// DayOfYear is 1..365
	DayOfYear [HoursInYear]int
	// DayOfWeek is 1..7, with January 1 as day 1 (Monday)
	DayOfWeek [HoursInYear]int
}

// NewTimeFrame builds the calendar for a non-leap year
func NewTimeFrame() *TimeFrame {
	tf := &TimeFrame{}
	hourOfYear, dayOfYear := 0, 0
	for month := 1; month <= MonthsInYear; month++ {
		for day := 1; day <= MonthLength(month); day++ {
			dayOfYear++
			for hour := 0; hour < HoursInDay; hour++ {
				tf.Month[hourOfYear] = month
				tf.Day[hourOfYear] = day
				tf.Hour[hourOfYear] = hour
				tf.DayOfYear[hourOfYear] = dayOfYear
				tf.DayOfWeek[hourOfYear] = (dayOfYear-1)%DaysInWeek + 1
				hourOfYear++
			}
		}
	}
	return tf
}
