package participant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"inscripciones/internal/audit"
	"inscripciones/internal/exchange"
	"inscripciones/internal/platform/metrics"
	dErrors "inscripciones/pkg/domain-errors"
	"inscripciones/pkg/sentinel"
)

// RateProvider resolves the current exchange rate for a session, walking the
// automatic sources and the session's manual override.
type RateProvider interface {
	GetRate(ctx context.Context, sessionID string) (exchange.Rate, error)
}

// Service orchestrates participant registration, edits, deletion and the
// financial report. Handlers stay thin; domain rules live in the classifier
// and the ledger.
type Service struct {
	store     Store
	validator *Validator
	rates     RateProvider
	audit     audit.Recorder
	metrics   *metrics.Metrics
	logger    *slog.Logger
	fee       decimal.Decimal
	now       func() time.Time
}

type Option func(*Service)

// WithClock overrides the service clock. Tests use it to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, validator *Validator, rates RateProvider, recorder audit.Recorder, m *metrics.Metrics, logger *slog.Logger, fee decimal.Decimal, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: validator,
		rates:     rates,
		audit:     recorder,
		metrics:   m,
		logger:    logger,
		fee:       fee,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest carries everything a registration form submits.
type RegisterRequest struct {
	Cedula          string
	Nombre          string
	Apellido        string
	Telefono        string
	FechaNacimiento string
	Miembro         bool
	Bautizado       bool
	Payment         PaymentInput
	RegisteredBy    string
	SessionID       string
}

// UpdateRequest carries an edit. Payment fields are absolute totals, not
// deltas.
type UpdateRequest struct {
	Cedula          string
	Nombre          string
	Apellido        string
	Telefono        string
	FechaNacimiento string
	Miembro         bool
	Bautizado       bool
	Payment         PaymentInput
	SessionID       string
	Actor           string
}

// fetchedRate adapts a rate resolved ahead of time to the ledger's fetcher
// interface, so validation and the rate lookup can run concurrently.
type fetchedRate struct {
	rate exchange.Rate
	err  error
}

func (f fetchedRate) GetRate(context.Context) (exchange.Rate, error) {
	return f.rate, f.err
}

// resolveRate fetches the rate in parallel with fn. Rate failures never fail
// the group; the ledger records a zero rate instead.
func (s *Service) resolveRate(ctx context.Context, sessionID string, fn func(ctx context.Context) error) (fetchedRate, error) {
	var fetched fetchedRate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return fn(gctx)
	})
	g.Go(func() error {
		fetched.rate, fetched.err = s.rates.GetRate(gctx, sessionID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return fetchedRate{}, err
	}
	return fetched, nil
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (Participant, error) {
	req.Nombre = CapitalizeWords(req.Nombre)
	req.Apellido = CapitalizeWords(req.Apellido)
	req.Cedula = strings.TrimSpace(req.Cedula)

	fetched, err := s.resolveRate(ctx, req.SessionID, func(ctx context.Context) error {
		return s.validator.Validate(ctx, ValidateInput{
			Nombre:          req.Nombre,
			Apellido:        req.Apellido,
			Cedula:          req.Cedula,
			Telefono:        req.Telefono,
			FechaNacimiento: req.FechaNacimiento,
		}, "")
	})
	if err != nil {
		return Participant{}, err
	}

	now := s.now()
	edad, ok := CalculateAge(req.FechaNacimiento, now)
	if !ok {
		return Participant{}, dErrors.NewValidation("datos inválidos", map[string]string{
			"fechaNacimiento": "Fecha de nacimiento inválida",
		})
	}

	base := Participant{
		ID:              uuid.NewString(),
		Cedula:          req.Cedula,
		Nombre:          req.Nombre,
		Apellido:        req.Apellido,
		Telefono:        req.Telefono,
		FechaNacimiento: req.FechaNacimiento,
		Edad:            edad,
		Miembro:         req.Miembro,
		Bautizado:       req.Bautizado,
		RegistradoPor:   req.RegisteredBy,
		CreatedAt:       now,
	}

	p, err := ApplyPayment(ctx, base, req.Payment, fetched, s.fee, now)
	if err != nil {
		return Participant{}, err
	}

	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Participant{}, dErrors.NewValidation("datos inválidos", map[string]string{
				"cedula": "Ya existe un participante con esa cédula",
			})
		}
		return Participant{}, fmt.Errorf("creating participant: %w", err)
	}

	s.metrics.ParticipantsRegistered.Inc()
	s.audit.Record(ctx, audit.Event{
		Actor:         req.RegisteredBy,
		ParticipantID: p.ID,
		Cedula:        p.Cedula,
		Action:        audit.ActionParticipantRegistered,
	})
	if len(p.HistorialPagos) > 0 {
		s.metrics.PaymentsRecorded.Inc()
		s.audit.Record(ctx, audit.Event{
			Actor:         req.RegisteredBy,
			ParticipantID: p.ID,
			Cedula:        p.Cedula,
			Action:        audit.ActionPaymentRecorded,
			Detail:        fmt.Sprintf("monto %s", p.MontoPagado),
		})
	}

	s.logger.InfoContext(ctx, "participant registered",
		"participant_id", p.ID,
		"registered_by", req.RegisteredBy,
	)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Participant, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Participant{}, dErrors.New(dErrors.CodeNotFound, "participante no encontrado")
		}
		return Participant{}, fmt.Errorf("loading participant: %w", err)
	}

	req.Nombre = CapitalizeWords(req.Nombre)
	req.Apellido = CapitalizeWords(req.Apellido)
	req.Cedula = strings.TrimSpace(req.Cedula)
	if req.FechaNacimiento == "" {
		req.FechaNacimiento = existing.FechaNacimiento
	}

	fetched, err := s.resolveRate(ctx, req.SessionID, func(ctx context.Context) error {
		return s.validator.Validate(ctx, ValidateInput{
			Nombre:          req.Nombre,
			Apellido:        req.Apellido,
			Cedula:          req.Cedula,
			Telefono:        req.Telefono,
			FechaNacimiento: req.FechaNacimiento,
		}, existing.ID)
	})
	if err != nil {
		return Participant{}, err
	}

	now := s.now()

	updated := existing
	updated.Cedula = req.Cedula
	updated.Nombre = req.Nombre
	updated.Apellido = req.Apellido
	updated.Telefono = req.Telefono
	updated.FechaNacimiento = req.FechaNacimiento
	updated.Miembro = req.Miembro
	updated.Bautizado = req.Bautizado
	if edad, ok := CalculateAge(req.FechaNacimiento, now); ok {
		updated.Edad = edad
	}

	updated, err = ApplyPayment(ctx, updated, req.Payment, fetched, s.fee, now)
	if err != nil {
		return Participant{}, err
	}
	// ApplyPayment compares against the stored cumulative amount.
	paymentRecorded := len(updated.HistorialPagos) > len(existing.HistorialPagos)

	if err := s.store.Update(ctx, updated); err != nil {
		return Participant{}, fmt.Errorf("updating participant: %w", err)
	}

	s.audit.Record(ctx, audit.Event{
		Actor:         req.Actor,
		ParticipantID: updated.ID,
		Cedula:        updated.Cedula,
		Action:        audit.ActionParticipantUpdated,
	})
	if paymentRecorded {
		s.metrics.PaymentsRecorded.Inc()
		s.audit.Record(ctx, audit.Event{
			Actor:         req.Actor,
			ParticipantID: updated.ID,
			Cedula:        updated.Cedula,
			Action:        audit.ActionPaymentRecorded,
			Detail:        fmt.Sprintf("monto %s", updated.MontoPagado),
		})
	}

	s.logger.InfoContext(ctx, "participant updated", "participant_id", updated.ID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id, actor string) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "participante no encontrado")
		}
		return fmt.Errorf("loading participant: %w", err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting participant: %w", err)
	}

	s.metrics.ParticipantsDeleted.Inc()
	s.audit.Record(ctx, audit.Event{
		Actor:         actor,
		ParticipantID: existing.ID,
		Cedula:        existing.Cedula,
		Action:        audit.ActionParticipantDeleted,
	})
	s.logger.InfoContext(ctx, "participant deleted", "participant_id", id, "actor", actor)
	return nil
}

// Get returns the participant together with its derived payment state.
func (s *Service) Get(ctx context.Context, id string) (Participant, Classification, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Participant{}, Classification{}, dErrors.New(dErrors.CodeNotFound, "participante no encontrado")
		}
		return Participant{}, Classification{}, fmt.Errorf("loading participant: %w", err)
	}
	c, err := p.Classify(s.fee)
	if err != nil {
		return Participant{}, Classification{}, err
	}
	return p, c, nil
}

// List returns participants, optionally filtered by a case-insensitive match
// against name, surname or cedula.
func (s *Service) List(ctx context.Context, query string) ([]Participant, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return all, nil
	}

	var out []Participant
	for _, p := range all {
		haystack := strings.ToLower(p.Nombre + " " + p.Apellido + " " + p.Cedula)
		if strings.Contains(haystack, query) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Report recomputes the financial summary from every record. The rate fetch
// runs concurrently with the list; when no rate resolves the report carries
// USD figures only.
func (s *Service) Report(ctx context.Context, sessionID string) (Report, error) {
	var participants []Participant

	fetched, err := s.resolveRate(ctx, sessionID, func(ctx context.Context) error {
		var err error
		participants, err = s.store.List(ctx)
		if err != nil {
			return fmt.Errorf("listing participants: %w", err)
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	var rate *exchange.Rate
	if fetched.err == nil {
		rate = &fetched.rate
	}
	return Summarize(participants, s.fee, rate)
}
