package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/silbinarywolf/preferdiscretegpu"

	"github.com/sudorandom/travel-globe/pkg/geography"
	"github.com/sudorandom/travel-globe/pkg/globeengine"
	"github.com/sudorandom/travel-globe/pkg/sources"
	"github.com/sudorandom/travel-globe/pkg/utils"
)

type CLI struct {
	Inputs       string `help:"Travel inputs JSON document (path or URL)."`
	Feed         string `help:"Websocket URL streaming input updates."`
	GeometryURL  string `help:"Primary country geometry source." default:"${topojson}"`
	FallbackURL  string `help:"Fallback country geometry source." default:"${geojson}"`
	CacheDir     string `help:"Directory for the geometry cache. Empty disables caching." default:"data/cache"`
	AssetDir     string `help:"Directory holding label.ttf and other assets." default:"data"`
	CaptureDir   string `help:"Where P writes frame captures." default:"captures"`
	MetricsAddr  string `help:"Serve Prometheus metrics on this address, e.g. :9090."`
	Width        int    `help:"Initial window width." default:"1280"`
	Height       int    `help:"Initial window height." default:"720"`
	TPS          int    `help:"Ticks per second." default:"60"`
	Style        string `help:"Background style." enum:"minimal,standard" default:"minimal"`
	NoAutoRotate bool   `help:"Disable idle auto-rotation."`
	Members      bool   `help:"Show members and their relationships." xor:"layer"`
	Events       bool   `help:"Show upcoming events." xor:"layer"`
	FlyTo        string `help:"Country id to fly to on start."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("globe-viewer"),
		kong.Description("Interactive travel globe."),
		kong.Vars{
			"topojson": sources.WorldAtlasCountriesURL,
			"geojson":  sources.NaturalEarthCountriesURL,
		},
	)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	inputs, err := sources.LoadInputs(ctx, http.DefaultClient, cli.Inputs)
	if err != nil {
		log.Fatalf("Failed to load inputs: %v", err)
	}

	cfg := globeengine.DefaultConfig()
	cfg.Width, cfg.Height = cli.Width, cli.Height
	cfg.FPS = cli.TPS
	cfg.AssetBasePath = cli.AssetDir
	cfg.FrameCaptureDir = cli.CaptureDir
	cfg.Style = globeengine.MapStyle(cli.Style)
	cfg.AutoRotate = !cli.NoAutoRotate

	if cli.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		cfg.Metrics = reg
		go serveMetrics(cli.MetricsAddr, reg)
	}

	engine := globeengine.NewEngine(cfg, inputs)
	defer engine.Close()
	engine.View.SetLayers(globeengine.Layers{Members: cli.Members, Events: cli.Events})
	engine.View.OnCountrySelected = func(id string) { log.Printf("[viewer] Selected country %s", id) }
	engine.View.OnMemberSelected = func(id string) { log.Printf("[viewer] Selected member %s", id) }
	engine.View.OnEventSelected = func(id string) { log.Printf("[viewer] Selected event %s", id) }

	var cache *utils.BlobCache
	if cli.CacheDir != "" {
		cache, err = utils.OpenBlobCache(cli.CacheDir)
		if err != nil {
			log.Printf("Geometry cache unavailable, fetching directly: %v", err)
			cache = nil
		} else {
			defer func() {
				if err := cache.Close(); err != nil {
					log.Printf("Error closing geometry cache: %v", err)
				}
			}()
		}
	}
	loader := &geography.Loader{
		PrimaryURL:  cli.GeometryURL,
		FallbackURL: cli.FallbackURL,
		Client:      &http.Client{Timeout: 30 * time.Second},
		Cache:       cache,
		OnAttempt:   engine.View.Metrics().ObserveGeometryLoad,
	}
	engine.LoadGeography(ctx, loader)

	if cli.Feed != "" {
		go engine.ListenToFeed(ctx, cli.Feed)
	}
	if cli.FlyTo != "" {
		id := cli.FlyTo
		engine.Post(func(v *globeengine.View) {
			if !v.FlyToCountry(id, time.Now()) {
				log.Printf("[viewer] Unknown country id %q", id)
			}
		})
	}

	ebiten.SetTPS(cli.TPS)
	ebiten.SetWindowSize(cli.Width, cli.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("Travel Globe")
	if err := ebiten.RunGame(engine); err != nil {
		log.Fatal(err)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	log.Printf("[metrics] Listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[metrics] Server stopped: %v", err)
	}
}
