package globeengine

import (
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"github.com/sudorandom/travel-globe/pkg/travel"
)

// Layers are the user toggles for the optional overlays. Members and Events
// are mutually exclusive; see View.SetLayers.
type Layers struct {
	Members bool
	Events  bool
	// Categories enables relationship categories. Nil enables all of them.
	Categories map[string]bool
	// SelectedMember narrows the member scope to one member and its links.
	SelectedMember string
}

func (l Layers) categoryEnabled(c string) bool {
	if l.Categories == nil {
		return true
	}
	return l.Categories[c]
}

type PinKind int

const (
	PinLocation PinKind = iota
	PinMember
	PinEvent
)

func (k PinKind) String() string {
	switch k {
	case PinMember:
		return "member"
	case PinEvent:
		return "event"
	default:
		return "location"
	}
}

type Pin struct {
	Kind       PinKind
	ID         string
	Label      string
	Coordinate orb.Point
	Category   string
	// CountryID is the owning country when known.
	CountryID string
}

// key identifies a pin across kinds for hover and selection.
func (p Pin) key() string { return p.Kind.String() + ":" + p.ID }

type Edge struct {
	FromID, ToID string
	From, To     orb.Point
	Category     string
}

// Snapshot is the immutable per-frame view of the inputs after layer and
// focus filtering.
type Snapshot struct {
	Locations []Pin
	Members   []Pin
	Events    []Pin
	Edges     []Edge
}

// PinCount is the number of pins that will be drawn.
func (s Snapshot) PinCount() int { return len(s.Locations) + len(s.Members) + len(s.Events) }

// Gather filters in by layers and the focused country. It allocates fresh
// slices every call and never writes to in.
func Gather(in travel.Inputs, layers Layers, focusCountry string) Snapshot {
	var snap Snapshot
	codeOf := make(map[string]string, len(in.Countries))
	countryOfCode := make(map[string]string, len(in.Countries))
	for _, c := range in.Countries {
		code := strings.ToUpper(c.Code)
		codeOf[c.ID] = code
		countryOfCode[code] = c.ID
	}

	ids := make([]string, 0, len(in.Locations))
	for id := range in.Locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, cid := range ids {
		for _, l := range in.Locations[cid] {
			snap.Locations = append(snap.Locations, Pin{
				Kind: PinLocation, ID: l.ID, Label: l.Name, Coordinate: l.Coordinate,
				Category: l.Category, CountryID: cid,
			})
		}
	}

	members := make(map[string]travel.Member, len(in.Members))
	for _, m := range in.Members {
		members[m.ID] = m
	}

	// focus scope: a selected member wins over a focused country
	var scopeCode string
	selected, hasSelected := members[layers.SelectedMember]
	switch {
	case hasSelected:
		scopeCode = strings.ToUpper(selected.CountryCode)
	case focusCountry != "":
		scopeCode = codeOf[focusCountry]
	}

	if layers.Members {
		linked := map[string]bool{}
		if hasSelected {
			linked[selected.ID] = true
			for _, r := range in.Relationships {
				if !layers.categoryEnabled(r.Category) {
					continue
				}
				if r.FromID == selected.ID {
					linked[r.ToID] = true
				} else if r.ToID == selected.ID {
					linked[r.FromID] = true
				}
			}
		}
		for _, m := range in.Members {
			if hasSelected && !linked[m.ID] {
				continue
			}
			if !hasSelected && scopeCode != "" && !strings.EqualFold(m.CountryCode, scopeCode) {
				continue
			}
			snap.Members = append(snap.Members, Pin{
				Kind: PinMember, ID: m.ID, Label: m.Name, Coordinate: m.Coordinate,
				Category: "member", CountryID: countryOfCode[strings.ToUpper(m.CountryCode)],
			})
		}

		for _, r := range in.Relationships {
			if !layers.categoryEnabled(r.Category) {
				continue
			}
			from, okFrom := members[r.FromID]
			to, okTo := members[r.ToID]
			if !okFrom || !okTo {
				continue
			}
			switch {
			case hasSelected:
				if r.FromID != selected.ID && r.ToID != selected.ID {
					continue
				}
			case scopeCode != "":
				if !strings.EqualFold(from.CountryCode, scopeCode) && !strings.EqualFold(to.CountryCode, scopeCode) {
					continue
				}
			}
			snap.Edges = append(snap.Edges, Edge{
				FromID: r.FromID, ToID: r.ToID,
				From: from.Coordinate, To: to.Coordinate,
				Category: r.Category,
			})
		}
	}

	if layers.Events && !layers.Members {
		for _, e := range in.Events {
			if scopeCode != "" && !strings.EqualFold(e.CountryCode, scopeCode) {
				continue
			}
			snap.Events = append(snap.Events, Pin{
				Kind: PinEvent, ID: e.ID, Label: e.Title, Coordinate: e.Coordinate,
				Category: "event", CountryID: countryOfCode[strings.ToUpper(e.CountryCode)],
			})
		}
	}
	return snap
}
