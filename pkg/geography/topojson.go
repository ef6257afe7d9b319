package geography

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type topology struct {
	Type      string                    `json:"type"`
	Transform *topoTransform            `json:"transform"`
	Objects   map[string]topoCollection `json:"objects"`
	Arcs      [][][2]float64            `json:"arcs"`
}

type topoTransform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoCollection struct {
	Type       string         `json:"type"`
	Geometries []topoGeometry `json:"geometries"`
}

type topoGeometry struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id"`
	Arcs       json.RawMessage `json:"arcs"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

// IsTopoJSON sniffs the payload for a TopoJSON topology header.
func IsTopoJSON(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte(`"Topology"`))
}

// DecodeTopoJSON decodes a world-atlas style topology. The "countries"
// object is used when present, otherwise the first geometry collection.
func DecodeTopoJSON(data []byte) ([]Feature, error) {
	var topo topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("parsing topojson: %w", err)
	}
	if topo.Type != "Topology" {
		return nil, fmt.Errorf("parsing topojson: unexpected type %q", topo.Type)
	}

	coll, ok := topo.Objects["countries"]
	if !ok {
		for _, c := range topo.Objects {
			if c.Type == "GeometryCollection" {
				coll, ok = c, true
				break
			}
		}
	}
	if !ok {
		return nil, ErrNoFeatures
	}

	arcs := decodeArcs(topo.Arcs, topo.Transform)
	var features []Feature
	skipped := 0
	for _, g := range coll.Geometries {
		id, err := parseRegionID(g.ID)
		if err != nil {
			skipped++
			continue
		}
		mp, err := topoMultiPolygon(g, arcs)
		if err != nil {
			log.Printf("[geo] Skipping region %d: %v", id, err)
			skipped++
			continue
		}
		if f, ok := newFeature(id, g.Properties.Name, mp); ok {
			features = append(features, f)
		}
	}
	if skipped > 0 {
		log.Printf("[geo] Skipped %d topology geometries without a usable id or arcs", skipped)
	}
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	return features, nil
}

// decodeArcs turns quantized, delta-encoded arcs into absolute lon/lat points.
func decodeArcs(raw [][][2]float64, t *topoTransform) []orb.LineString {
	arcs := make([]orb.LineString, len(raw))
	for i, arc := range raw {
		ls := make(orb.LineString, len(arc))
		var x, y float64
		for j, p := range arc {
			if t == nil {
				ls[j] = orb.Point{p[0], p[1]}
				continue
			}
			x += p[0]
			y += p[1]
			ls[j] = orb.Point{x*t.Scale[0] + t.Translate[0], y*t.Scale[1] + t.Translate[1]}
		}
		arcs[i] = ls
	}
	return arcs
}

func topoMultiPolygon(g topoGeometry, arcs []orb.LineString) (orb.MultiPolygon, error) {
	switch g.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return nil, err
		}
		poly, err := topoPolygon(rings, arcs)
		if err != nil {
			return nil, err
		}
		return orb.MultiPolygon{poly}, nil
	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return nil, err
		}
		mp := make(orb.MultiPolygon, 0, len(polys))
		for _, rings := range polys {
			poly, err := topoPolygon(rings, arcs)
			if err != nil {
				return nil, err
			}
			mp = append(mp, poly)
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func topoPolygon(rings [][]int, arcs []orb.LineString) (orb.Polygon, error) {
	poly := make(orb.Polygon, 0, len(rings))
	for _, ring := range rings {
		var r orb.Ring
		for k, idx := range ring {
			reversed := idx < 0
			if reversed {
				idx = ^idx
			}
			if idx >= len(arcs) {
				return nil, fmt.Errorf("arc index %d out of range", idx)
			}
			arc := arcs[idx]
			pts := make([]orb.Point, len(arc))
			copy(pts, arc)
			if reversed {
				for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
					pts[i], pts[j] = pts[j], pts[i]
				}
			}
			// consecutive arcs share their joining vertex
			if k > 0 && len(pts) > 0 {
				pts = pts[1:]
			}
			r = append(r, pts...)
		}
		poly = append(poly, r)
	}
	return poly, nil
}

func parseRegionID(raw json.RawMessage) (RegionID, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("missing id")
	}
	s := strings.Trim(string(raw), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("non-numeric id %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid id %d", n)
	}
	return RegionID(n), nil
}
