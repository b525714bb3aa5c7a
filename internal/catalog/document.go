package catalog

import (
	"bookminton/pkg/model"
	"bookminton/pkg/sanitizer"

	"github.com/google/uuid"
)

// namespace seeds the name-based IDs given to catalog entries that do not carry one.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("bookminton/catalog"))

// Document is the on-disk and in-database shape of the catalog.
type Document struct {
	Sports []SportDocument `yaml:"sports" bson:"sports" validate:"required,min=1,dive"`
	Venues []VenueDocument `yaml:"venues" bson:"venues" validate:"required,min=1,dive"`
}

type SportDocument struct {
	ID   string `yaml:"id" bson:"_id" validate:"required,max=50"`
	Name string `yaml:"name" bson:"name" validate:"required,max=100"`
}

type VenueDocument struct {
	ID         string          `yaml:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,max=100"`
	Name       string          `yaml:"name" bson:"name" validate:"required,max=100"`
	Address    string          `yaml:"address" bson:"address" validate:"max=200"`
	Facilities []string        `yaml:"facilities" bson:"facilities" validate:"max=50"`
	Open       string          `yaml:"open" bson:"open" validate:"required,hhmm"`
	Close      string          `yaml:"close" bson:"close" validate:"required,hhmm"`
	Courts     []CourtDocument `yaml:"courts" bson:"courts" validate:"required,min=1,dive"`
	Position   int             `yaml:"-" bson:"position"`
}

type CourtDocument struct {
	ID     string            `yaml:"id,omitempty" bson:"id,omitempty" validate:"omitempty,max=100"`
	Number string            `yaml:"number" bson:"number" validate:"required,max=100"`
	Status string            `yaml:"status,omitempty" bson:"status,omitempty" validate:"omitempty,oneof=AVAILABLE RESERVED UNAVAILABLE"`
	Sports []PricingDocument `yaml:"sports" bson:"sports" validate:"required,min=1,dive"`
}

type PricingDocument struct {
	Sport        string  `yaml:"sport" bson:"sport" validate:"required"`
	PricePerHour float64 `yaml:"price_per_hour" bson:"price_per_hour" validate:"gte=0"`
}

// toModel converts a validated document. Times have already been checked by the validator.
func (d Document) toModel() []model.Venue {
	sports := make(map[string]model.Sport, len(d.Sports))
	for _, s := range d.Sports {
		sports[s.ID] = model.Sport{ID: s.ID, Name: sanitizer.SanitizeDisplayText(s.Name)}
	}

	venues := make([]model.Venue, 0, len(d.Venues))
	for _, vd := range d.Venues {
		venues = append(venues, vd.toModel(sports))
	}
	return venues
}

// WithResolvedIDs returns a copy of d in which every venue and court carries its
// effective ID and venues are numbered by position. Loading the copy yields the same
// catalog as loading d.
func (d Document) WithResolvedIDs() Document {
	out := Document{
		Sports: append([]SportDocument(nil), d.Sports...),
		Venues: make([]VenueDocument, 0, len(d.Venues)),
	}
	for i, vd := range d.Venues {
		vd.ID = vd.resolvedID()
		vd.Position = i
		courts := make([]CourtDocument, 0, len(vd.Courts))
		for _, cd := range vd.Courts {
			cd.ID = cd.resolvedID(vd.ID)
			courts = append(courts, cd)
		}
		vd.Courts = courts
		out.Venues = append(out.Venues, vd)
	}
	return out
}

func (vd VenueDocument) resolvedID() string {
	if vd.ID != "" {
		return vd.ID
	}
	key := sanitizer.SanitizeKey(sanitizer.SanitizeDisplayText(vd.Name))
	return uuid.NewSHA1(namespace, []byte("venue/"+key)).String()
}

func (cd CourtDocument) resolvedID(venueID string) string {
	if cd.ID != "" {
		return cd.ID
	}
	key := sanitizer.SanitizeKey(sanitizer.SanitizeDisplayText(cd.Number))
	return uuid.NewSHA1(namespace, []byte(venueID+"/court/"+key)).String()
}

func (vd VenueDocument) toModel(sports map[string]model.Sport) model.Venue {
	id := vd.resolvedID()

	open, _ := model.ParseTimeOfDay(vd.Open)
	closing, _ := model.ParseEndTime(vd.Close)

	venue := model.Venue{
		ID:         id,
		Name:       sanitizer.SanitizeDisplayText(vd.Name),
		Address:    sanitizer.SanitizeDisplayText(vd.Address),
		Facilities: sanitizer.SanitizeFacilities(vd.Facilities),
		Courts:     make([]model.Court, 0, len(vd.Courts)),
		OpenHours:  model.OpenHours{Open: open, Close: closing},
	}

	for _, cd := range vd.Courts {
		venue.Courts = append(venue.Courts, cd.toModel(id, sports))
	}
	return venue
}

func (cd CourtDocument) toModel(venueID string, sports map[string]model.Sport) model.Court {
	id := cd.resolvedID(venueID)

	status := model.CourtStatus(cd.Status)
	if status == "" {
		status = model.CourtAvailable
	}

	court := model.Court{
		ID:     id,
		Number: sanitizer.SanitizeDisplayText(cd.Number),
		Status: status,
		Sports: make([]model.SportPricing, 0, len(cd.Sports)),
	}
	for _, pd := range cd.Sports {
		court.Sports = append(court.Sports, model.SportPricing{
			Sport:        sports[pd.Sport],
			PricePerHour: pd.PricePerHour,
		})
	}
	return court
}
