package exchange

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"inscripciones/internal/platform/metrics"
	dErrors "inscripciones/pkg/domain-errors"
	"inscripciones/pkg/sentinel"
)

// RateSource is one automatic origin for the USD to Bs rate.
type RateSource interface {
	Name() string
	Fetch(ctx context.Context) (decimal.Decimal, error)
}

// Provider runs the ordered fallback chain: primary source, secondary source,
// session manual override. Each GetRate call performs the full chain exactly
// once; there are no retries within a step. Network errors, timeouts, and
// unparseable payloads are all the same outcome for a step: move on.
type Provider struct {
	primary   RateSource
	secondary RateSource
	manual    ManualStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewProvider(primary, secondary RateSource, manual ManualStore, logger *slog.Logger, m *metrics.Metrics) *Provider {
	return &Provider{
		primary:   primary,
		secondary: secondary,
		manual:    manual,
		logger:    logger,
		metrics:   m,
	}
}

// GetRate resolves the current rate for the given session. It returns
// sentinel.ErrUnavailable when every step fails, which signals the caller to
// prompt for manual entry. An automatic success never clears a stored manual
// override; the override simply stops being consulted until it is needed again.
func (p *Provider) GetRate(ctx context.Context, sessionID string) (Rate, error) {
	start := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.RateFetchDuration.Observe(time.Since(start).Seconds())
		}
	}()

	steps := []struct {
		source RateSource
		tag    Source
	}{
		{p.primary, SourceAutomaticPrimary},
		{p.secondary, SourceAutomaticSecondary},
	}
	for _, step := range steps {
		if step.source == nil {
			continue
		}
		value, err := step.source.Fetch(ctx)
		if err != nil || !value.IsPositive() {
			p.recordFailure(ctx, step.source.Name(), err)
			continue
		}
		return Rate{Value: value, Source: step.tag}, nil
	}

	if p.manual != nil && sessionID != "" {
		value, err := p.manual.Get(ctx, sessionID)
		if err == nil && value.IsPositive() {
			return Rate{Value: value, Source: SourceManual}, nil
		}
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			p.logger.WarnContext(ctx, "manual rate lookup failed", "error", err)
		}
	}

	return Rate{}, sentinel.ErrUnavailable
}

// SetManualRate stores a staff-entered override for the session. It is the
// only mutation path for the override.
func (p *Provider) SetManualRate(ctx context.Context, sessionID string, value decimal.Decimal) error {
	if sessionID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "session is required for a manual rate")
	}
	if !value.IsPositive() {
		return dErrors.New(dErrors.CodeBadRequest, "manual rate must be positive")
	}
	if err := p.manual.Set(ctx, sessionID, value); err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to store manual rate")
	}
	if p.metrics != nil {
		p.metrics.ManualRateEntries.Inc()
	}
	return nil
}

func (p *Provider) recordFailure(ctx context.Context, source string, err error) {
	if p.metrics != nil {
		p.metrics.RateSourceFailures.WithLabelValues(source).Inc()
	}
	if err != nil {
		p.logger.WarnContext(ctx, "rate source failed", "source", source, "error", err)
	} else {
		p.logger.WarnContext(ctx, "rate source returned non-positive value", "source", source)
	}
}
