package models

import "time"

var weekdayNames = [7]string{"DOMINGO", "LUNES", "MARTES", "MIÉRCOLES", "JUEVES", "VIERNES", "SÁBADO"}

var weekdayCodes = [7]string{"DOM", "LUN", "MAR", "MIE", "JUE", "VIE", "SAB"}

// WeekdayName returns the Spanish upper-case name of d.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// WeekdayCode returns the three letter route code of d.
func WeekdayCode(d time.Weekday) string {
	return weekdayCodes[d]
}

// ParseWeekdayCode resolves a route code back to its weekday.
func ParseWeekdayCode(code string) (time.Weekday, bool) {
	for i, c := range weekdayCodes {
		if c == code {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// DateLayout is the calendar-date key format used across tables.
const DateLayout = "2006-01-02"
