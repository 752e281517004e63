package etl

import "time"

// LastNTradingDays returns the last n US trading days (most recent first).
// It excludes Saturdays, Sundays, and NYSE full-closure holidays.
func LastNTradingDays(n int, from time.Time) []time.Time {
	out := make([]time.Time, 0, n)
	d := truncateToDate(from)

	for len(out) < n {
		if IsTradingDay(d) {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, -1)
	}
	return out
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsTradingDay reports whether d is a regular US equity session day.
func IsTradingDay(d time.Time) bool {
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, closed := marketHolidays(d.Year())[d.Format("2006-01-02")]
	return !closed
}

// marketHolidays returns the full-closure days of year keyed as yyyy-mm-dd.
func marketHolidays(year int) map[string]struct{} {
	out := make(map[string]struct{})
	add := func(t time.Time) { out[t.Format("2006-01-02")] = struct{}{} }

	add(observed(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)))   // New Year's Day
	add(nthWeekday(year, time.January, time.Monday, 3))                     // Martin Luther King Jr. Day
	add(nthWeekday(year, time.February, time.Monday, 3))                    // Washington's Birthday
	add(easterSunday(year).AddDate(0, 0, -2))                               // Good Friday
	add(lastWeekday(year, time.May, time.Monday))                           // Memorial Day
	add(observed(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC)))     // Juneteenth
	add(observed(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)))      // Independence Day
	add(nthWeekday(year, time.September, time.Monday, 1))                   // Labor Day
	add(nthWeekday(year, time.November, time.Thursday, 4))                  // Thanksgiving
	add(observed(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC))) // Christmas

	// Next year's New Year's Day shifts onto Dec 31 when it falls on a Saturday.
	add(observed(time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)))

	return out
}

// observed applies the exchange shift: Saturday holidays close the prior
// Friday, Sunday holidays the following Monday.
func observed(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	}
	return t
}

func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(n-1)*7)
}

func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	last := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(last.Weekday()) - int(wd) + 7) % 7
	return last.AddDate(0, 0, -offset)
}

// easterSunday returns the date of Easter Sunday for a given year
// (Meeus/Jones/Butcher algorithm).
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
