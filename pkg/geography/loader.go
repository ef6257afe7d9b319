package geography

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/sudorandom/travel-globe/pkg/utils"
)

// Loader fetches boundary geometry from a primary source and falls back to a
// secondary one. Either source may be TopoJSON or GeoJSON.
type Loader struct {
	PrimaryURL  string
	FallbackURL string
	Client      *http.Client
	Cache       *utils.BlobCache

	// OnAttempt, when set, observes every source attempt.
	OnAttempt func(source string, err error)
}

// Decode detects the encoding of data and decodes it.
func Decode(data []byte) ([]Feature, error) {
	if IsTopoJSON(data) {
		return DecodeTopoJSON(data)
	}
	return DecodeGeoJSON(data)
}

// Load returns the decoded features of the first source that succeeds. When
// every source fails the returned error joins one LoadError per source.
func (l *Loader) Load(ctx context.Context) ([]Feature, error) {
	var errs []error
	for _, src := range []string{l.PrimaryURL, l.FallbackURL} {
		if src == "" {
			continue
		}
		features, err := l.loadOne(ctx, src)
		if l.OnAttempt != nil {
			l.OnAttempt(src, err)
		}
		if err == nil {
			log.Printf("[geo] Loaded %d regions from %s", len(features), src)
			return features, nil
		}
		log.Printf("[geo] Source %s failed: %v", src, err)
		errs = append(errs, &LoadError{Source: src, Err: err})
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, &LoadError{Source: "<none>", Err: errors.New("no geometry source configured")}
	}
	return nil, errors.Join(errs...)
}

func (l *Loader) loadOne(ctx context.Context, src string) ([]Feature, error) {
	data, err := utils.FetchCached(ctx, l.Client, l.Cache, src, "[geo]")
	if err != nil {
		return nil, err
	}
	features, err := Decode(data)
	if err != nil && l.Cache != nil {
		// a corrupt cached copy must not pin the failure
		if derr := l.Cache.Delete(src); derr != nil {
			log.Printf("[geo] Failed to evict %s from cache: %v", src, derr)
		}
	}
	return features, err
}
