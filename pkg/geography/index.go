package geography

import (
	"log"
	"strings"

	"github.com/biter777/countries"

	"github.com/sudorandom/travel-globe/pkg/travel"
)

// Entry links one loaded region to its ISO alpha-2 code and, when the host
// directory knows the code, to the host's country id.
type Entry struct {
	Region    RegionID
	Code      string
	CountryID string
	feature   int
}

// Index is a bidirectional lookup between region ids, country codes and
// country ids. It is built once per geometry load and never mutated.
type Index struct {
	features  []Feature
	entries   []Entry
	byRegion  map[RegionID]int
	byCode    map[string]int
	byCountry map[string]int
	// directory codes, including countries missing from the geometry
	codeToCountry map[string]string
	countryToCode map[string]string
}

// CodeForRegion resolves an ISO 3166-1 numeric id to an upper-case alpha-2 code.
func CodeForRegion(id RegionID) (string, bool) {
	c := countries.ByNumeric(int(id))
	if c == countries.Unknown {
		return "", false
	}
	return strings.ToUpper(c.Alpha2()), true
}

// NameForCode returns the English short name for an alpha-2 code.
func NameForCode(code string) string {
	c := countries.ByName(code)
	if c == countries.Unknown {
		return code
	}
	name := c.String()
	if i := strings.Index(name, " ("); i != -1 {
		name = name[:i]
	}
	return name
}

func BuildIndex(features []Feature, directory []travel.CountryRecord) *Index {
	idx := &Index{
		features:      features,
		byRegion:      make(map[RegionID]int, len(features)),
		byCode:        make(map[string]int, len(features)),
		byCountry:     make(map[string]int, len(features)),
		codeToCountry: make(map[string]string, len(directory)),
		countryToCode: make(map[string]string, len(directory)),
	}
	for _, c := range directory {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if code == "" || c.ID == "" {
			continue
		}
		idx.codeToCountry[code] = c.ID
		idx.countryToCode[c.ID] = code
	}

	unresolved := 0
	for i, f := range features {
		code, ok := CodeForRegion(f.ID)
		if !ok {
			unresolved++
			continue
		}
		if _, dup := idx.byRegion[f.ID]; dup {
			continue
		}
		e := Entry{Region: f.ID, Code: code, CountryID: idx.codeToCountry[code], feature: i}
		pos := len(idx.entries)
		idx.entries = append(idx.entries, e)
		idx.byRegion[f.ID] = pos
		idx.byCode[code] = pos
		if e.CountryID != "" {
			idx.byCountry[e.CountryID] = pos
		}
	}
	if unresolved > 0 {
		log.Printf("[geo] %d regions have no ISO numeric mapping", unresolved)
	}
	return idx
}

func (idx *Index) Len() int { return len(idx.entries) }

// Entries returns the index entries in geometry order.
func (idx *Index) Entries() []Entry { return idx.entries }

func (idx *Index) ByRegion(id RegionID) (Entry, bool) {
	pos, ok := idx.byRegion[id]
	if !ok {
		return Entry{}, false
	}
	return idx.entries[pos], true
}

func (idx *Index) ByCode(code string) (Entry, bool) {
	pos, ok := idx.byCode[strings.ToUpper(code)]
	if !ok {
		return Entry{}, false
	}
	return idx.entries[pos], true
}

func (idx *Index) ByCountry(countryID string) (Entry, bool) {
	pos, ok := idx.byCountry[countryID]
	if !ok {
		return Entry{}, false
	}
	return idx.entries[pos], true
}

// Feature returns the geometry an entry was built from.
func (idx *Index) Feature(e Entry) *Feature {
	if e.feature < 0 || e.feature >= len(idx.features) {
		return nil
	}
	return &idx.features[e.feature]
}

// CountryForCode maps a country code to the host's country id using the
// directory, whether or not geometry exists for it.
func (idx *Index) CountryForCode(code string) (string, bool) {
	id, ok := idx.codeToCountry[strings.ToUpper(code)]
	return id, ok
}

func (idx *Index) CodeForCountry(countryID string) (string, bool) {
	code, ok := idx.countryToCode[countryID]
	return code, ok
}
