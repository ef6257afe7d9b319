package globeengine

import (
	"bytes"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// labelFontFile is looked up under Config.AssetBasePath.
const labelFontFile = "label.ttf"

// loadFontSource prefers a font shipped with the host's assets and falls
// back to Go Regular.
func loadFontSource(basePath string) *text.GoTextFaceSource {
	if basePath != "" {
		path := filepath.Join(basePath, labelFontFile)
		if data, err := os.ReadFile(path); err == nil {
			s, err := text.NewGoTextFaceSource(bytes.NewReader(data))
			if err == nil {
				return s
			}
			log.Printf("[assets] Ignoring %s: %v", path, err)
		}
	}
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Printf("[assets] Labels disabled: %v", err)
		return nil
	}
	return s
}
