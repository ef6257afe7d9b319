package globeengine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/sudorandom/travel-globe/pkg/geography"
	"github.com/sudorandom/travel-globe/pkg/travel"
)

// Engine runs a View inside an ebiten game loop. Background work (geometry
// loading, the live feed) hands results to the loop through Post so the view
// is only ever touched from Update.
type Engine struct {
	View *View

	cfg       Config
	font      *text.GoTextFaceSource
	canvas    *ebiten.Image
	renderer  *ImageRenderer
	updates   chan func(*View)
	done      chan struct{}
	closeOnce sync.Once

	cursorX, cursorY int
	pressed          bool
	captureNext      bool
}

func NewEngine(cfg Config, inputs travel.Inputs) *Engine {
	return &Engine{
		View:    NewView(cfg, inputs),
		cfg:     cfg,
		font:    loadFontSource(cfg.AssetBasePath),
		updates: make(chan func(*View), 64),
		done:    make(chan struct{}),
	}
}

// Post queues fn to run on the frame loop. It blocks while the queue is
// full and gives up once the engine is closed.
func (e *Engine) Post(fn func(*View)) {
	select {
	case e.updates <- fn:
	case <-e.done:
	}
}

// LoadGeography loads boundaries in the background. Failure leaves the view
// rendering pins only.
func (e *Engine) LoadGeography(ctx context.Context, l *geography.Loader) {
	go func() {
		features, err := l.Load(ctx)
		if err != nil {
			e.Post(func(v *View) { v.SetGeographyError(err) })
			return
		}
		e.Post(func(v *View) {
			v.SetGeography(features, geography.BuildIndex(features, v.Inputs().Countries))
		})
	}()
}

func (e *Engine) drainUpdates() {
	for {
		select {
		case fn := <-e.updates:
			fn(e.View)
		default:
			return
		}
	}
}

func (e *Engine) Update() error {
	now := time.Now()
	e.drainUpdates()
	e.handleInput(now)
	e.View.Frame(now)
	return nil
}

func (e *Engine) handleInput(now time.Time) {
	x, y := ebiten.CursorPosition()
	fx, fy := float64(x), float64(y)
	moved := x != e.cursorX || y != e.cursorY
	e.cursorX, e.cursorY = x, y

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		e.pressed = true
		e.View.PointerDown(fx, fy, now)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		e.pressed = false
		e.View.PointerUp(fx, fy, now)
	case e.pressed && moved:
		e.View.PointerMove(fx, fy, now)
	case !e.pressed && moved:
		e.View.Hover(fx, fy)
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		e.View.Wheel(wy, fx, fy, now)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		e.View.Key(KeyZoomIn, now)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		e.View.Key(KeyZoomOut, now)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		e.View.Key(KeyReset, now)
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		e.captureNext = true
	}
}

func (e *Engine) Draw(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if e.canvas == nil || e.canvas.Bounds().Dx() != w || e.canvas.Bounds().Dy() != h {
		if e.canvas != nil {
			e.canvas.Deallocate()
		}
		e.canvas = ebiten.NewImage(w, h)
		e.renderer = NewImageRenderer(e.canvas, e.font)
		e.View.Resize(w, h)
		e.View.sched.Invalidate("canvas")
	}
	now := time.Now()
	e.View.Render(e.renderer, now)
	screen.DrawImage(e.canvas, nil)

	if e.captureNext {
		e.captureNext = false
		e.captureFrame(e.canvas, now)
	}
}

func (e *Engine) Layout(w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return e.cfg.Width, e.cfg.Height
	}
	return w, h
}

// Close stops camera motion. Pending posts are dropped.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.View.Close()
		log.Printf("[engine] Closed")
	})
}
