package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"verdantcalc/internal/calculator"
	"verdantcalc/internal/observability"
	"verdantcalc/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	observability.Logger = zap.NewNop()
	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}
	return NewRouter(calculator.NewStore())
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if !strings.Contains(w.Body.String(), "promhttp_metric_handler_requests_total") {
		t.Fatal("expected Prometheus exposition format in /metrics body")
	}
}

func TestNewRouterCalculatorSessionSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil)
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	testutil.DecodeJSONBody(t, w.Result().Body, &payload)

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}
	if got := payload["current"]; got != "0" {
		t.Fatalf("expected current %q, got %#v", "0", got)
	}
}

func TestNewRouterEndToEndCalculation(t *testing.T) {
	router := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var created calculator.StateResponse
	testutil.DecodeJSONBody(t, w.Body, &created)
	base := "/calculator/sessions/" + created.ID

	steps := []struct {
		path string
		body any
	}{
		{path: "/digit", body: calculator.DigitRequest{Digit: "3"}},
		{path: "/operation", body: calculator.OperationRequest{Op: "add"}},
		{path: "/digit", body: calculator.DigitRequest{Digit: "4"}},
		{path: "/operation", body: calculator.OperationRequest{Op: "×"}},
		{path: "/digit", body: calculator.DigitRequest{Digit: "2"}},
		{path: "/compute"},
	}

	var state calculator.StateResponse
	for _, step := range steps {
		req := testutil.NewJSONRequest(t, http.MethodPost, base+step.path, step.body)
		w := testutil.ExecuteRequest(req, router)
		testutil.CheckResponseCode(t, http.StatusOK, w.Code)
		testutil.DecodeJSONBody(t, w.Body, &state)
	}

	if state.Current != "14" {
		t.Fatalf("expected (3+4)*2 = 14, got %q", state.Current)
	}
	if state.ClearLabel != "AC" {
		t.Fatalf("expected clear label AC after a result, got %q", state.ClearLabel)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, base, nil), router)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, base, nil), router)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}
