package etl

import (
	"testing"
	"time"
)

func TestIsTradingDay_WeekendsAndFixed(t *testing.T) {
	// Weekend
	if IsTradingDay(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)) { // Saturday
		t.Fatal("Saturday should not be a trading day")
	}
	// Fixed holiday 04-Jul (Independence Day)
	if IsTradingDay(time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("July 4 should not be a trading day")
	}
	// Regular Tuesday
	if !IsTradingDay(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("Jan 9 2024 should be a trading day")
	}
}

func TestIsTradingDay_FloatingHolidays(t *testing.T) {
	cases := []struct {
		name string
		date time.Time
	}{
		{"Martin Luther King Jr. Day", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"Washington's Birthday", time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC)},
		{"Good Friday", time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)},
		{"Memorial Day", time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC)},
		{"Labor Day", time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)},
		{"Thanksgiving", time.Date(2024, 11, 28, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if IsTradingDay(c.date) {
				t.Fatalf("%s should not be a trading day", c.date.Format("2006-01-02"))
			}
		})
	}
}

func TestIsTradingDay_ObservedShifts(t *testing.T) {
	// Independence Day 2020 fell on a Saturday; the Friday before was closed.
	if IsTradingDay(time.Date(2020, 7, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("July 3 2020 should be an observed holiday")
	}
	// Christmas 2022 fell on a Sunday; the Monday after was closed.
	if IsTradingDay(time.Date(2022, 12, 26, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("Dec 26 2022 should be an observed holiday")
	}
	// A Saturday New Year's Day shifts the closure onto the prior Dec 31.
	if IsTradingDay(time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("Dec 31 2021 should be an observed holiday")
	}
}

func TestLastNTradingDays_CountAndOrder(t *testing.T) {
	from := time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC) // MLK Monday
	days := LastNTradingDays(5, from)
	if len(days) != 5 {
		t.Fatalf("want 5 got %d", len(days))
	}
	for i := range days {
		if i > 0 && !days[i].Before(days[i-1]) {
			t.Fatal("dates should be strictly decreasing")
		}
		if !IsTradingDay(days[i]) {
			t.Fatalf("non-trading day returned: %s", days[i].Format("2006-01-02"))
		}
	}
	// Jan 15 2024 is a holiday, so the window ends on Friday the 12th.
	if got := days[0].Format("2006-01-02"); got != "2024-01-12" {
		t.Fatalf("want 2024-01-12 got %s", got)
	}
}
