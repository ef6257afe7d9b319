package globeengine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sudorandom/travel-globe/pkg/travel"
)

type feedMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type statusPatch struct {
	CountryID string        `json:"country_id"`
	Status    travel.Status `json:"status"`
}

// decodeFeedMessage turns one feed message into an update for the view.
// Unknown message types decode to nil.
func decodeFeedMessage(b []byte) (func(*View), error) {
	var msg feedMessage
	if err := json.Unmarshal(b, &msg); err != nil {
		return nil, fmt.Errorf("decoding feed message: %w", err)
	}
	switch msg.Type {
	case "inputs":
		var in travel.Inputs
		if err := json.Unmarshal(msg.Data, &in); err != nil {
			return nil, fmt.Errorf("decoding inputs: %w", err)
		}
		return func(v *View) { v.SetInputs(in) }, nil
	case "status":
		var p statusPatch
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return nil, fmt.Errorf("decoding status: %w", err)
		}
		if p.CountryID == "" {
			return nil, fmt.Errorf("status message without country_id")
		}
		return func(v *View) { v.SetInputs(v.Inputs().WithStatus(p.CountryID, p.Status)) }, nil
	default:
		return nil, nil
	}
}

// ListenToFeed keeps a websocket connection to url open until ctx is done,
// reconnecting with exponential backoff, and posts every decoded message to
// the frame loop.
func (e *Engine) ListenToFeed(ctx context.Context, url string) {
	listenToFeed(ctx, url, e.Post)
}

func listenToFeed(ctx context.Context, url string, post func(func(*View))) {
	backoff := 1 * time.Second
	for ctx.Err() == nil {
		log.Printf("[feed] Connecting to %s", url)
		c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			log.Printf("[feed] Dial error: %v. Retrying in %v...", err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > 60*time.Second {
				backoff = 60 * time.Second
			}
			continue
		}
		backoff = 1 * time.Second

		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("[feed] Read error: %v. Reconnecting...", err)
				}
				break
			}
			fn, err := decodeFeedMessage(message)
			if err != nil {
				log.Printf("[feed] Dropping message: %v", err)
				continue
			}
			if fn != nil {
				post(fn)
			}
		}
		stop()
		_ = c.Close()
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}
