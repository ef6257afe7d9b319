// Package utils provides cached HTTP fetching and the on-disk blob cache used by the geography loader.
package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

var ErrNotFound = errors.New("file not found on server")

// DefaultCacheTTL is how long a fetched dataset stays in the blob cache.
const DefaultCacheTTL = 7 * 24 * time.Hour

type progressWriter struct {
	io.Writer
	total uint64
	last  uint64
	label string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.total += uint64(n)
	if pw.total-pw.last > 1024*1024 { // Log every MB
		log.Printf("%s Downloaded %d KB", pw.label, pw.total/1024)
		pw.last = pw.total
	}
	return n, err
}

// Fetch downloads url into memory.
func Fetch(ctx context.Context, client *http.Client, url, logPrefix string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("%s Error closing response body: %v", logPrefix, err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var buf bytes.Buffer
	pw := &progressWriter{Writer: &buf, label: logPrefix}
	if _, err := io.Copy(pw, resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FetchCached returns the body for url, serving it from cache when present.
// A nil cache streams straight from the network.
func FetchCached(ctx context.Context, client *http.Client, cache *BlobCache, url, logPrefix string) ([]byte, error) {
	if cache != nil {
		data, err := cache.Get(url)
		if err != nil {
			log.Printf("%s Cache read failed for %s: %v", logPrefix, url, err)
		} else if data != nil {
			log.Printf("%s Using cached copy of %s", logPrefix, url)
			return data, nil
		}
	}

	log.Printf("%s Downloading %s", logPrefix, url)
	data, err := Fetch(ctx, client, url, logPrefix)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.Put(url, data, DefaultCacheTTL); err != nil {
			log.Printf("%s Failed to cache %s: %v", logPrefix, url, err)
		}
	}
	return data, nil
}
