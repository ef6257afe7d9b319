// Package sources names the well-known datasets the viewer reads and loads
// the host's travel inputs document.
package sources

const (
	// WorldAtlasCountriesURL is the world-atlas 1:110m country TopoJSON with
	// ISO 3166-1 numeric ids.
	WorldAtlasCountriesURL = "https://cdn.jsdelivr.net/npm/world-atlas@2/countries-110m.json"
	// NaturalEarthCountriesURL is the Natural Earth admin-0 GeoJSON. Its
	// ISO_N3 property carries the numeric id.
	NaturalEarthCountriesURL = "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_110m_admin_0_countries.geojson"
)
