package model

type CourtStatus string

const (
	CourtAvailable   CourtStatus = "AVAILABLE"
	CourtReserved    CourtStatus = "RESERVED"
	CourtUnavailable CourtStatus = "UNAVAILABLE"
)

type Sport struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SportPricing struct {
	Sport        Sport   `json:"sport"`
	PricePerHour float64 `json:"price_per_hour"`
}

type Court struct {
	ID     string         `json:"id"`
	Number string         `json:"number"`
	Sports []SportPricing `json:"sports"`
	Status CourtStatus    `json:"status"`
}

type Venue struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Facilities []string  `json:"facilities"`
	Courts     []Court   `json:"courts"`
	OpenHours  OpenHours `json:"open_hours"`
}

func (v Venue) Court(courtID string) (Court, bool) {
	for _, c := range v.Courts {
		if c.ID == courtID {
			return c, true
		}
	}
	return Court{}, false
}
