package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// oficialFuente is the designation the secondary API uses for the BCV rate.
const oficialFuente = "oficial"

// DolarAPISource queries the secondary rate API, which returns every tracked
// monitor as an array. Only the entry tagged as the official rate is used,
// taking its averaged value.
type DolarAPISource struct {
	url    string
	client *http.Client
}

func NewDolarAPISource(url string, timeout time.Duration) *DolarAPISource {
	return &DolarAPISource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *DolarAPISource) Name() string { return "dolarapi" }

type dolarAPIEntry struct {
	Fuente   string   `json:"fuente"`
	Promedio *float64 `json:"promedio"`
}

func (s *DolarAPISource) Fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query dolarapi: %w", err)
	}
	defer resp.Body.Close()

	var entries []dolarAPIEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return decimal.Zero, fmt.Errorf("decode dolarapi payload: %w", err)
	}

	for _, entry := range entries {
		if entry.Fuente != oficialFuente {
			continue
		}
		if entry.Promedio == nil || *entry.Promedio <= 0 {
			return decimal.Zero, fmt.Errorf("dolarapi official entry has no usable promedio")
		}
		return decimal.NewFromFloat(*entry.Promedio), nil
	}
	return decimal.Zero, fmt.Errorf("dolarapi payload has no official entry")
}
