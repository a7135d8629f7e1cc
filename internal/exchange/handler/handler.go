package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"inscripciones/internal/exchange"
	"inscripciones/internal/http/shared"
	"inscripciones/internal/platform/middleware"
	dErrors "inscripciones/pkg/domain-errors"
	"inscripciones/pkg/sentinel"
)

// Service defines the rate operations the handler needs.
type Service interface {
	GetRate(ctx context.Context, sessionID string) (exchange.Rate, error)
	SetManualRate(ctx context.Context, sessionID string, value decimal.Decimal) error
}

// Handler exposes the exchange-rate endpoints: the fallback-chain lookup, the
// manual override entry, and the legacy BCV proxy the dashboard polls.
type Handler struct {
	logger       *slog.Logger
	rates        Service
	jwtValidator middleware.JWTValidator

	proxyUpstream string
	proxyClient   *http.Client
}

func New(rates Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, proxyUpstream string, proxyTimeout time.Duration) *Handler {
	return &Handler{
		logger:        logger,
		rates:         rates,
		jwtValidator:  jwtValidator,
		proxyUpstream: proxyUpstream,
		proxyClient:   &http.Client{Timeout: proxyTimeout},
	}
}

// Register registers the exchange routes with the chi router. The proxy stays
// unauthenticated; rate lookup and manual entry are session-scoped and need a
// token.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/tasa-bcv", h.handleProxy)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/api/tasa", h.handleGetRate)
		r.Post("/api/tasa/manual", h.handleSetManualRate)
	})
}

func (h *Handler) handleGetRate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.GetSessionID(ctx)

	rate, err := h.rates.GetRate(ctx, sessionID)
	if errors.Is(err, sentinel.ErrUnavailable) {
		shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":               "unavailable",
			"manualEntryRequired": true,
		})
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "rate lookup failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to resolve rate"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, rate)
}

type manualRateRequest struct {
	Value decimal.Decimal `json:"value"`
}

func (h *Handler) handleSetManualRate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req manualRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.rates.SetManualRate(ctx, middleware.GetSessionID(ctx), req.Value); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProxy forwards the primary source and normalizes both of its payload
// shapes into {price}. A non-JSON upstream body is a 502 with the raw text so
// operators can see what the API returned.
func (h *Handler) handleProxy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.proxyUpstream, nil)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to build upstream request"))
		return
	}
	resp, err := h.proxyClient.Do(req)
	if err != nil {
		h.logger.WarnContext(ctx, "bcv proxy upstream unreachable", "error", err)
		shared.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "error al obtener la tasa BCV",
			"details": err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to read upstream response"))
		return
	}

	var payload struct {
		Price *float64 `json:"price"`
		Data  struct {
			BCV struct {
				Price *float64 `json:"price"`
			} `json:"bcv"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.WarnContext(ctx, "bcv proxy upstream returned non-JSON", "body", string(body))
		shared.WriteJSON(w, http.StatusBadGateway, map[string]string{
			"error":   "la API externa no responde en formato JSON",
			"details": string(body),
		})
		return
	}

	price := payload.Price
	if price == nil {
		price = payload.Data.BCV.Price
	}
	if price == nil || *price <= 0 {
		h.logger.WarnContext(ctx, "bcv proxy upstream payload has no price", "body", string(body))
		shared.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "no se pudo obtener la tasa",
		})
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]float64{"price": *price})
}
