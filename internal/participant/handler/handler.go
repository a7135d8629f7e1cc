package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"inscripciones/internal/http/shared"
	"inscripciones/internal/participant"
	"inscripciones/internal/platform/middleware"
	dErrors "inscripciones/pkg/domain-errors"
)

// Service defines the participant operations the handler needs.
type Service interface {
	Register(ctx context.Context, req participant.RegisterRequest) (participant.Participant, error)
	Update(ctx context.Context, id string, req participant.UpdateRequest) (participant.Participant, error)
	Delete(ctx context.Context, id, actor string) error
	Get(ctx context.Context, id string) (participant.Participant, participant.Classification, error)
	List(ctx context.Context, query string) ([]participant.Participant, error)
	Report(ctx context.Context, sessionID string) (participant.Report, error)
}

// Handler exposes the participant CRUD endpoints and the financial report.
type Handler struct {
	logger       *slog.Logger
	participants Service
	jwtValidator middleware.JWTValidator
	adminEmails  []string
}

func New(participants Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, adminEmails []string) *Handler {
	return &Handler{
		logger:       logger,
		participants: participants,
		jwtValidator: jwtValidator,
		adminEmails:  adminEmails,
	}
}

// Register registers the participant routes with the chi router. Every route
// requires an authenticated session; the report additionally requires an
// admin email.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/participantes", h.handleRegister)
		r.Get("/participantes", h.handleList)
		r.Get("/participantes/reporte", h.handleReport)
		r.Get("/participantes/{id}", h.handleGet)
		r.Put("/participantes/{id}", h.handleUpdate)
		r.Delete("/participantes/{id}", h.handleDelete)
	})
}

// participantRequest mirrors the registration form payload.
type participantRequest struct {
	Cedula           string          `json:"cedula"`
	Nombre           string          `json:"nombre"`
	Apellido         string          `json:"apellido"`
	Telefono         string          `json:"telefono"`
	FechaNacimiento  string          `json:"fechaNacimiento"`
	Miembro          bool            `json:"miembro"`
	Bautizado        bool            `json:"bautizado"`
	Exento           bool            `json:"exento"`
	MontoPagado      decimal.Decimal `json:"montoPagado"`
	MontoPagado2     decimal.Decimal `json:"montoPagado2"`
	FormaPago        string          `json:"formaPago"`
	SegundaFormaPago string          `json:"segundaFormaPago"`
	Referencia       string          `json:"referencia"`
	ZelleInfo        string          `json:"zelleInfo"`
	Referencia2      string          `json:"referencia2"`
	ZelleInfo2       string          `json:"zelleInfo2"`
}

func (req participantRequest) payment() participant.PaymentInput {
	return participant.PaymentInput{
		Amount:       req.MontoPagado,
		SecondAmount: req.MontoPagado2,
		Method:       participant.PaymentMethod(req.FormaPago),
		SecondMethod: participant.PaymentMethod(req.SegundaFormaPago),
		Referencia:   req.Referencia,
		ZelleInfo:    req.ZelleInfo,
		Referencia2:  req.Referencia2,
		ZelleInfo2:   req.ZelleInfo2,
		Exento:       req.Exento,
	}
}

// participantResponse is a participant plus its derived payment state.
type participantResponse struct {
	participant.Participant
	Estado         participant.Status `json:"estado"`
	SaldoPendiente decimal.Decimal    `json:"saldoPendiente"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	p, err := h.participants.Register(ctx, participant.RegisterRequest{
		Cedula:          req.Cedula,
		Nombre:          req.Nombre,
		Apellido:        req.Apellido,
		Telefono:        req.Telefono,
		FechaNacimiento: req.FechaNacimiento,
		Miembro:         req.Miembro,
		Bautizado:       req.Bautizado,
		Payment:         req.payment(),
		RegisteredBy:    middleware.GetEmail(ctx),
		SessionID:       middleware.GetSessionID(ctx),
	})
	if err != nil {
		h.writeServiceError(ctx, w, "register participant", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	p, err := h.participants.Update(ctx, id, participant.UpdateRequest{
		Cedula:          req.Cedula,
		Nombre:          req.Nombre,
		Apellido:        req.Apellido,
		Telefono:        req.Telefono,
		FechaNacimiento: req.FechaNacimiento,
		Miembro:         req.Miembro,
		Bautizado:       req.Bautizado,
		Payment:         req.payment(),
		SessionID:       middleware.GetSessionID(ctx),
		Actor:           middleware.GetEmail(ctx),
	})
	if err != nil {
		h.writeServiceError(ctx, w, "update participant", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.participants.Delete(ctx, id, middleware.GetEmail(ctx)); err != nil {
		h.writeServiceError(ctx, w, "delete participant", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	p, c, err := h.participants.Get(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "get participant", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, participantResponse{
		Participant:    p,
		Estado:         c.Status,
		SaldoPendiente: c.Owed,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.participants.List(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.writeServiceError(ctx, w, "list participants", err)
		return
	}
	if list == nil {
		list = []participant.Participant{}
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := middleware.GetEmail(ctx)
	if !slices.Contains(h.adminEmails, email) {
		h.logger.WarnContext(ctx, "report access denied",
			"email", email,
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "acceso restringido"))
		return
	}

	report, err := h.participants.Report(ctx, middleware.GetSessionID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "build report", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}

// writeServiceError maps domain errors straight through and masks everything
// else as an internal failure.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	var de *dErrors.Error
	if errors.As(err, &de) {
		shared.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, "failed to "+op,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "internal error"))
}
