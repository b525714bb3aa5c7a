// Package catalog holds the static set of venues, courts and sports. It is built once
// at startup and never changes afterwards.
package catalog

import (
	"bookminton/pkg/model"
)

type Catalog struct {
	venues []model.Venue
	index  map[string]int
	sports []model.Sport
}

// New builds a catalog from venues in the given order. The slice is copied.
func New(venues []model.Venue) *Catalog {
	c := &Catalog{
		venues: make([]model.Venue, 0, len(venues)),
		index:  make(map[string]int, len(venues)),
	}

	seen := make(map[string]struct{})
	for _, v := range venues {
		v = copyVenue(v)
		c.index[v.ID] = len(c.venues)
		c.venues = append(c.venues, v)

		for _, court := range v.Courts {
			for _, p := range court.Sports {
				if _, ok := seen[p.Sport.ID]; ok {
					continue
				}
				seen[p.Sport.ID] = struct{}{}
				c.sports = append(c.sports, p.Sport)
			}
		}
	}
	return c
}

// Venues returns every venue in catalog order.
func (c *Catalog) Venues() []model.Venue {
	out := make([]model.Venue, 0, len(c.venues))
	for _, v := range c.venues {
		out = append(out, copyVenue(v))
	}
	return out
}

func (c *Catalog) Venue(id string) (model.Venue, bool) {
	i, ok := c.index[id]
	if !ok {
		return model.Venue{}, false
	}
	return copyVenue(c.venues[i]), true
}

// Court resolves a court together with the venue it belongs to.
func (c *Catalog) Court(venueID, courtID string) (model.Venue, model.Court, bool) {
	venue, ok := c.Venue(venueID)
	if !ok {
		return model.Venue{}, model.Court{}, false
	}
	court, ok := venue.Court(courtID)
	if !ok {
		return model.Venue{}, model.Court{}, false
	}
	return venue, court, true
}

// Sports lists each sport offered anywhere, in order of first appearance.
func (c *Catalog) Sports() []model.Sport {
	return append([]model.Sport(nil), c.sports...)
}

func (c *Catalog) Sport(id string) (model.Sport, bool) {
	for _, s := range c.sports {
		if s.ID == id {
			return s, true
		}
	}
	return model.Sport{}, false
}

func copyVenue(v model.Venue) model.Venue {
	v.Facilities = append([]string(nil), v.Facilities...)
	courts := make([]model.Court, len(v.Courts))
	for i, court := range v.Courts {
		court.Sports = append([]model.SportPricing(nil), court.Sports...)
		courts[i] = court
	}
	v.Courts = courts
	return v
}
