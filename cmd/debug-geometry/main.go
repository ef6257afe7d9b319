package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/sudorandom/travel-globe/pkg/geography"
	"github.com/sudorandom/travel-globe/pkg/globeengine"
	"github.com/sudorandom/travel-globe/pkg/sources"
	"github.com/sudorandom/travel-globe/pkg/utils"
)

var cli struct {
	Source   string        `help:"Geometry source URL." default:"${topojson}"`
	Fallback string        `help:"Fallback geometry source URL." default:"${geojson}"`
	CacheDir string        `help:"Geometry cache directory. Empty disables caching."`
	Inputs   string        `help:"Travel inputs document used to link regions to country ids."`
	Code     string        `arg:"" optional:"" help:"ISO alpha-2 code to inspect, e.g. JP."`
	Width    int           `help:"Viewport width for projected output." default:"1280"`
	Height   int           `help:"Viewport height for projected output." default:"720"`
	Timeout  time.Duration `help:"Fetch timeout." default:"30s"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("debug-geometry"),
		kong.Description("Print region index stats and project a country."),
		kong.Vars{
			"topojson": sources.WorldAtlasCountriesURL,
			"geojson":  sources.NaturalEarthCountriesURL,
		},
	)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	ctx, cancel := context.WithTimeout(context.Background(), cli.Timeout)
	defer cancel()

	var cache *utils.BlobCache
	if cli.CacheDir != "" {
		c, err := utils.OpenBlobCache(cli.CacheDir)
		if err != nil {
			log.Fatalf("Failed to open cache: %v", err)
		}
		defer c.Close()
		cache = c
		err = cache.ForEach(func(k, v []byte) error {
			fmt.Printf("cached %s (%d KB)\n", k, len(v)/1024)
			return nil
		})
		if err != nil {
			log.Printf("Failed to list cache: %v", err)
		}
	}

	inputs, err := sources.LoadInputs(ctx, http.DefaultClient, cli.Inputs)
	if err != nil {
		log.Fatalf("Failed to load inputs: %v", err)
	}

	l := &geography.Loader{PrimaryURL: cli.Source, FallbackURL: cli.Fallback, Cache: cache}
	l.OnAttempt = func(source string, err error) {
		if err != nil {
			fmt.Printf("source %s: FAILED (%v)\n", source, err)
			return
		}
		fmt.Printf("source %s: ok\n", source)
	}
	features, err := l.Load(ctx)
	if err != nil {
		log.Fatalf("No geometry: %v", err)
	}
	idx := geography.BuildIndex(features, inputs.Countries)

	linked := 0
	vertices := 0
	for _, e := range idx.Entries() {
		if e.CountryID != "" {
			linked++
		}
		for _, poly := range idx.Feature(e).Polygons {
			for _, ring := range poly {
				vertices += len(ring)
			}
		}
	}
	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Features:        %d\n", len(features))
	fmt.Printf("Indexed regions: %d\n", idx.Len())
	fmt.Printf("Unresolved ids:  %d\n", len(features)-idx.Len())
	fmt.Printf("Linked to ids:   %d of %d directory entries\n", linked, len(inputs.Countries))
	fmt.Printf("Vertices:        %d\n", vertices)
	fmt.Printf("--------------------------------------------------\n")

	if cli.Code == "" {
		printLargest(idx, 10)
		return
	}
	e, ok := idx.ByCode(cli.Code)
	if !ok {
		log.Fatalf("No region for code %s", cli.Code)
	}
	inspect(idx, e)
}

func printLargest(idx *geography.Index, n int) {
	type area struct {
		code string
		a    float64
	}
	var areas []area
	for _, e := range idx.Entries() {
		areas = append(areas, area{e.Code, planar.Area(idx.Feature(e).Polygons)})
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i].a > areas[j].a })
	if len(areas) > n {
		areas = areas[:n]
	}
	fmt.Printf("Largest regions (planar square degrees):\n")
	for _, a := range areas {
		fmt.Printf("  %s %-24s %10.1f\n", a.code, geography.NameForCode(a.code), a.a)
	}
}

func inspect(idx *geography.Index, e geography.Entry) {
	f := idx.Feature(e)
	centroid, _ := planar.CentroidArea(f.Polygons)
	fmt.Printf("%s (%s), region %d, country id %q\n", geography.NameForCode(e.Code), strings.ToUpper(e.Code), e.Region, e.CountryID)
	fmt.Printf("  polygons: %d\n", len(f.Polygons))
	fmt.Printf("  bound:    [%.2f, %.2f] - [%.2f, %.2f]\n", f.Bound.Min[0], f.Bound.Min[1], f.Bound.Max[0], f.Bound.Max[1])
	fmt.Printf("  centroid: (%.3f, %.3f)\n", centroid[0], centroid[1])

	cfg := globeengine.DefaultConfig()
	vp := globeengine.Viewport{Width: float64(cli.Width), Height: float64(cli.Height)}
	base := 0.45 * min(vp.Width, vp.Height)
	rot := globeengine.RotationState{Lon: -centroid[0], Lat: -centroid[1]}
	ext := globeengine.ExtentOf(f, centroid)

	for _, view := range []struct {
		name  string
		zoom  float64
		focus *globeengine.FocusExtent
	}{
		{"globe", 1, nil},
		{"map", cfg.FlyToZoom, &ext},
	} {
		proj := globeengine.NewProjection(rot, view.zoom, vp, base, view.focus)
		x, y, ok := proj.Project(centroid)
		fmt.Printf("  %-5s zoom %.1f scale %.1f: centroid -> (%.1f, %.1f) visible=%v\n", view.name, view.zoom, proj.Scale(), x, y, ok)
		corners := []orb.Point{f.Bound.Min, f.Bound.Max}
		for _, c := range corners {
			if cx, cy, ok := proj.Project(c); ok {
				fmt.Printf("        corner (%.2f, %.2f) -> (%.1f, %.1f)\n", c[0], c[1], cx, cy)
			}
		}
	}
}
