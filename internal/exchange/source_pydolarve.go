package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// PyDolarVeSource queries the pydolarve BCV monitor. The API has shipped two
// payload shapes over time: a top-level price, and the same price nested under
// data.bcv. Both are accepted; anything else is a source failure.
type PyDolarVeSource struct {
	url    string
	client *http.Client
}

func NewPyDolarVeSource(url string, timeout time.Duration) *PyDolarVeSource {
	return &PyDolarVeSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *PyDolarVeSource) Name() string { return "pydolarve" }

type pyDolarVePayload struct {
	Price *float64 `json:"price"`
	Data  struct {
		BCV struct {
			Price *float64 `json:"price"`
		} `json:"bcv"`
	} `json:"data"`
}

func (s *PyDolarVeSource) Fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query pydolarve: %w", err)
	}
	defer resp.Body.Close()

	var payload pyDolarVePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode pydolarve payload: %w", err)
	}

	price := payload.Price
	if price == nil {
		price = payload.Data.BCV.Price
	}
	if price == nil || *price <= 0 {
		return decimal.Zero, fmt.Errorf("pydolarve payload has no usable price")
	}
	return decimal.NewFromFloat(*price), nil
}
