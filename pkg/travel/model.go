// Package travel holds the read-only data the globe consumes from its host:
// the country directory, travel statuses, pinned locations, members, their
// relationships and upcoming events.
package travel

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// Status is the travel status of a single country.
type Status int

const (
	StatusNone Status = iota
	StatusVisited
	StatusLived
	StatusBucketList
)

var statusNames = map[Status]string{
	StatusNone:       "none",
	StatusVisited:    "visited",
	StatusLived:      "lived",
	StatusBucketList: "bucket-list",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "none"
}

// ParseStatus accepts the names produced by String. Unknown names map to StatusNone.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "visited":
		return StatusVisited
	case "lived":
		return StatusLived
	case "bucket-list", "bucketlist", "bucket_list", "wishlist":
		return StatusBucketList
	default:
		return StatusNone
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return fmt.Errorf("travel status: %w", err)
	}
	*s = ParseStatus(name)
	return nil
}

// CountryRecord is one entry of the host's country directory. Coordinates
// are orb points, so longitude comes first.
type CountryRecord struct {
	ID       string    `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Centroid orb.Point `json:"centroid"`
}

type Location struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Coordinate orb.Point `json:"coordinate"`
	Category   string    `json:"category"`
}

type Member struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Coordinate  orb.Point `json:"coordinate"`
	CountryCode string    `json:"country_code"`
}

type Relationship struct {
	FromID   string `json:"from_id"`
	ToID     string `json:"to_id"`
	Category string `json:"category"`
}

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Coordinate  orb.Point `json:"coordinate"`
	CountryCode string    `json:"country_code"`
	StartDate   time.Time `json:"start_date"`
}

// Inputs is one snapshot of everything the host feeds into the globe. The
// engine never mutates an Inputs value it has been given.
type Inputs struct {
	Countries     []CountryRecord       `json:"countries"`
	Statuses      map[string]Status     `json:"statuses"`
	Locations     map[string][]Location `json:"locations"`
	Members       []Member              `json:"members"`
	Relationships []Relationship        `json:"relationships"`
	Events        []Event               `json:"events"`
}

// StatusOf returns the travel status of a country id, StatusNone when unknown.
func (in Inputs) StatusOf(countryID string) Status {
	return in.Statuses[countryID]
}

// CountryByID performs a linear lookup in the directory.
func (in Inputs) CountryByID(id string) (CountryRecord, bool) {
	for _, c := range in.Countries {
		if c.ID == id {
			return c, true
		}
	}
	return CountryRecord{}, false
}

// WithStatus returns a copy of the inputs with one status replaced. The
// receiver's map is left untouched.
func (in Inputs) WithStatus(countryID string, s Status) Inputs {
	statuses := make(map[string]Status, len(in.Statuses)+1)
	for k, v := range in.Statuses {
		statuses[k] = v
	}
	if s == StatusNone {
		delete(statuses, countryID)
	} else {
		statuses[countryID] = s
	}
	in.Statuses = statuses
	return in
}
