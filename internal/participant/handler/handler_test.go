package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscripciones/internal/audit"
	"inscripciones/internal/exchange"
	"inscripciones/internal/participant"
	"inscripciones/internal/platform/metrics"
	"inscripciones/internal/platform/middleware"
	"inscripciones/pkg/testutil"
)

const (
	adminEmail = "admin@example.com"
	staffEmail = "staff@example.com"
)

type fakeValidator struct {
	email string
}

func (f *fakeValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if token != "valid-token" {
		return nil, errors.New("invalid token")
	}
	return &middleware.JWTClaims{
		UserID:    "user-1",
		SessionID: "session-1",
		Email:     f.email,
	}, nil
}

type fixedRates struct{}

func (fixedRates) GetRate(context.Context, string) (exchange.Rate, error) {
	return exchange.Rate{Value: decimal.NewFromInt(36), Source: exchange.SourceAutomaticPrimary}, nil
}

func newTestRouter(t *testing.T, email string) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := participant.NewInMemoryStore()
	service := participant.NewService(
		store,
		participant.NewValidator(store),
		fixedRates{},
		audit.NewPublisher(audit.NewInMemoryStore(), logger),
		metrics.NewWith(prometheus.NewRegistry()),
		logger,
		decimal.NewFromInt(8),
		participant.WithClock(func() time.Time {
			return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
		}),
	)

	h := New(service, logger, &fakeValidator{email: email}, []string{adminEmail})
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func registerBody() map[string]any {
	return map[string]any{
		"cedula":          "12345678",
		"nombre":          "maria",
		"apellido":        "perez",
		"telefono":        "04141234567",
		"fechaNacimiento": "1990-05-10",
		"miembro":         true,
		"montoPagado":     "8",
		"formaPago":       "Efectivo",
	}
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer valid-token")
	return req
}

func Test_Handler_Register(t *testing.T) {
	router := newTestRouter(t, staffEmail)

	req := authed(testutil.NewJSONRequest(t, http.MethodPost, "/participantes", registerBody()))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[participant.Participant](t, rr)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Maria", created.Nombre)
	assert.True(t, created.Pago)
	assert.Equal(t, staffEmail, created.RegistradoPor)
}

func Test_Handler_Register_Unauthorized(t *testing.T) {
	router := newTestRouter(t, staffEmail)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/participantes", registerBody())
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func Test_Handler_Register_ValidationErrors(t *testing.T) {
	router := newTestRouter(t, staffEmail)

	body := registerBody()
	body["cedula"] = "not-digits"
	body["nombre"] = ""

	req := authed(testutil.NewJSONRequest(t, http.MethodPost, "/participantes", body))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	resp := testutil.UnmarshalResponse[map[string]any](t, rr)
	fields, ok := (*resp)["fieldErrors"].(map[string]any)
	require.True(t, ok, "validation response carries per-field messages")
	assert.Equal(t, "Solo números permitidos", fields["cedula"])
	assert.Equal(t, "El nombre es obligatorio", fields["nombre"])
}

func Test_Handler_GetClassifies(t *testing.T) {
	router := newTestRouter(t, staffEmail)

	body := registerBody()
	body["montoPagado"] = "5"
	req := authed(testutil.NewJSONRequest(t, http.MethodPost, "/participantes", body))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[participant.Participant](t, rr)

	req = authed(testutil.NewJSONRequest(t, http.MethodGet, "/participantes/"+created.ID, nil))
	rr = testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	got := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, "partial", (*got)["estado"])
	assert.Equal(t, "3", (*got)["saldoPendiente"])
}

func Test_Handler_Get_NotFound(t *testing.T) {
	router := newTestRouter(t, staffEmail)

	req := authed(testutil.NewJSONRequest(t, http.MethodGet, "/participantes/missing", nil))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func Test_Handler_UpdateAndDelete(t *testing.T) {
	router := newTestRouter(t, staffEmail)

	req := authed(testutil.NewJSONRequest(t, http.MethodPost, "/participantes", registerBody()))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[participant.Participant](t, rr)

	body := registerBody()
	body["telefono"] = "04249998877"
	req = authed(testutil.NewJSONRequest(t, http.MethodPut, "/participantes/"+created.ID, body))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	updated := testutil.UnmarshalResponse[participant.Participant](t, rr)
	assert.Equal(t, "04249998877", updated.Telefono)

	req = authed(testutil.NewJSONRequest(t, http.MethodDelete, "/participantes/"+created.ID, nil))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	req = authed(testutil.NewJSONRequest(t, http.MethodGet, "/participantes/"+created.ID, nil))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func Test_Handler_List(t *testing.T) {
	router := newTestRouter(t, staffEmail)

	req := authed(testutil.NewJSONRequest(t, http.MethodPost, "/participantes", registerBody()))
	testutil.DoRequest(router, req)

	req = authed(testutil.NewJSONRequest(t, http.MethodGet, "/participantes", nil))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	list := testutil.UnmarshalResponse[[]participant.Participant](t, rr)
	assert.Len(t, *list, 1)

	req = authed(testutil.NewJSONRequest(t, http.MethodGet, "/participantes?q=nobody", nil))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	list = testutil.UnmarshalResponse[[]participant.Participant](t, rr)
	assert.Empty(t, *list)
}

func Test_Handler_Report_AdminOnly(t *testing.T) {
	router := newTestRouter(t, staffEmail)

	req := authed(testutil.NewJSONRequest(t, http.MethodGet, "/participantes/reporte", nil))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusForbidden)
}

func Test_Handler_Report_Admin(t *testing.T) {
	router := newTestRouter(t, adminEmail)

	req := authed(testutil.NewJSONRequest(t, http.MethodPost, "/participantes", registerBody()))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	req = authed(testutil.NewJSONRequest(t, http.MethodGet, "/participantes/reporte", nil))
	rr = testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	report := testutil.UnmarshalResponse[participant.Report](t, rr)
	assert.Equal(t, 1, report.TotalParticipants)
	assert.Equal(t, 1, report.Paid)
	require.NotNil(t, report.Local)
}
