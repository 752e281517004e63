package models

import (
	"testing"
	"time"
)

func TestPriceRecord_Key(t *testing.T) {
	rec := PriceRecord{
		Symbol: "AAPL",
		Date:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	got := rec.Key()
	want := PriceKey{Symbol: "AAPL", Date: "2024-01-02"}
	if got != want {
		t.Fatalf("Key() = %+v, want %+v", got, want)
	}
}

func TestPriceKey_MapEquality(t *testing.T) {
	// Same calendar date built in different locations must collide once
	// formatted; PriceKey exists precisely to make that safe as a map key.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	a := PriceRecord{Symbol: "MSFT", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	b := PriceRecord{Symbol: "MSFT", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, ny)}

	seen := map[PriceKey]struct{}{a.Key(): {}}
	if _, ok := seen[b.Key()]; !ok {
		t.Fatalf("keys for the same calendar date did not collide: %+v vs %+v", a.Key(), b.Key())
	}
}
