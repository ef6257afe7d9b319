package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/sudorandom/travel-globe/pkg/travel"
	"github.com/sudorandom/travel-globe/pkg/utils"
)

// LoadInputs reads a travel.Inputs JSON document from a local path or an
// http(s) URL. An empty src yields empty inputs.
func LoadInputs(ctx context.Context, client *http.Client, src string) (travel.Inputs, error) {
	if src == "" {
		return travel.Inputs{}, nil
	}
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		data, err = utils.Fetch(ctx, client, src, "[inputs]")
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return travel.Inputs{}, fmt.Errorf("reading inputs %s: %w", src, err)
	}
	return ParseInputs(data)
}

func ParseInputs(data []byte) (travel.Inputs, error) {
	var in travel.Inputs
	if err := json.Unmarshal(data, &in); err != nil {
		return travel.Inputs{}, fmt.Errorf("decoding inputs: %w", err)
	}
	return in, nil
}
