package pricing

import (
	"testing"

	"bookminton/pkg/model"
)

var (
	badminton = model.Sport{ID: "badminton", Name: "Badminton"}
	tennis    = model.Sport{ID: "tennis", Name: "Tennis"}
)

func interval(start, end string) model.Interval {
	s, _ := model.ParseTimeOfDay(start)
	e, _ := model.ParseEndTime(end)
	return model.Interval{Start: s, End: e}
}

func TestCalculatePrice(t *testing.T) {
	table := []model.SportPricing{
		{Sport: badminton, PricePerHour: 50000},
		{Sport: tennis, PricePerHour: 80000},
		{Sport: badminton, PricePerHour: 99999},
	}

	tests := []struct {
		name    string
		sportID string
		iv      model.Interval
		want    float64
	}{
		{name: "two hours of badminton", sportID: "badminton", iv: interval("10:00", "12:00"), want: 100000},
		{name: "second sport in table", sportID: "tennis", iv: interval("10:00", "11:00"), want: 80000},
		{name: "fractional hour truncated", sportID: "badminton", iv: interval("10:00", "11:30"), want: 50000},
		{name: "under one hour is free", sportID: "badminton", iv: interval("10:00", "10:45"), want: 0},
		{name: "sport not offered", sportID: "futsal", iv: interval("10:00", "12:00"), want: 0},
		{name: "empty interval", sportID: "badminton", iv: interval("12:00", "10:00"), want: 0},
		{name: "until midnight", sportID: "badminton", iv: interval("22:00", "00:00"), want: 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePrice(tt.sportID, table, tt.iv)
			if got != tt.want {
				t.Errorf("CalculatePrice(%s, %s) = %v, want %v", tt.sportID, tt.iv, got, tt.want)
			}
		})
	}
}

func TestNewQuote(t *testing.T) {
	table := []model.SportPricing{{Sport: badminton, PricePerHour: 60000}}

	q := NewQuote("badminton", table, interval("08:00", "11:00"))
	if !q.Offered || q.Hours != 3 || q.PricePerHour != 60000 || q.Amount != 180000 {
		t.Errorf("unexpected quote: %+v", q)
	}

	q = NewQuote("tennis", table, interval("08:00", "11:00"))
	if q.Offered || q.Amount != 0 || q.Hours != 3 {
		t.Errorf("unexpected quote for missing sport: %+v", q)
	}
}
