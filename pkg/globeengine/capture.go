package globeengine

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func (e *Engine) captureFrame(img *ebiten.Image, timestamp time.Time) {
	dir := e.cfg.FrameCaptureDir
	if dir == "" {
		return
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	img.ReadPixels(rgba.Pix)

	go func() {
		path, err := writeCapture(dir, rgba, timestamp)
		if err != nil {
			log.Printf("[capture] %v", err)
			return
		}
		log.Printf("[capture] Captured frame: %s", path)
	}()
}

// writeCapture encodes img as a timestamped PNG in dir.
func writeCapture(dir string, img image.Image, timestamp time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating capture directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("globe-%s.png", timestamp.Format("20060102-150405.000")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating capture file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encoding capture: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing capture file: %w", err)
	}
	return path, nil
}
