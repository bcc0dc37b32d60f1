package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"verdantcalc/internal/handlers"
	"verdantcalc/internal/observability"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// maxKeysPerRequest bounds POST /keys.
const maxKeysPerRequest = 256

var errBadBody = errors.New("invalid request body")

// Handler serves the calculator sessions held in a Store.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// ---------------------------------------------------------------------------
// Handlers — session lifecycle
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.session.create")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	id, state, err := h.store.Create()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "create", err.Error(), err, statusFor(err), w)
		return
	}

	sessionsActive.Add(ctx, 1)
	span.SetAttributes(attribute.String("calculator.session.id", id))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusCreated, newStateResponse(id, state))
}

// GetSession handles GET /calculator/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "calculator.session.get",
		trace.WithAttributes(attribute.String("calculator.session.id", id)),
	)
	defer span.End()

	state, err := h.store.Get(id)
	if err != nil {
		logger := observability.LoggerWithTrace(ctx)
		observability.RecordError(ctx, span, logger, errorCounter, "get", "session not found", err, statusFor(err), w)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, newStateResponse(id, state))
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "calculator.session.delete",
		trace.WithAttributes(attribute.String("calculator.session.id", id)),
	)
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	if err := h.store.Delete(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "delete", "session not found", err, statusFor(err), w)
		return
	}

	sessionsActive.Add(ctx, -1)
	logger.Info("calculator session deleted", zap.String("session_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Handlers — single keys
// ---------------------------------------------------------------------------

// AppendDigit handles POST /calculator/sessions/{id}/digit
func (h *Handler) AppendDigit(w http.ResponseWriter, r *http.Request) {
	h.handleKey(w, r, "digit", func(r *http.Request) (Key, error) {
		var req DigitRequest
		if err := decodeBody(r, &req); err != nil {
			return Key{}, err
		}
		d, err := ParseDigit(req.Digit)
		if err != nil {
			return Key{}, err
		}
		return Key{Label: req.Digit, Kind: KindDigit, Digit: d}, nil
	})
}

// SelectOperation handles POST /calculator/sessions/{id}/operation
func (h *Handler) SelectOperation(w http.ResponseWriter, r *http.Request) {
	h.handleKey(w, r, "operation", func(r *http.Request) (Key, error) {
		var req OperationRequest
		if err := decodeBody(r, &req); err != nil {
			return Key{}, err
		}
		op, err := ParseOperation(req.Op)
		if err != nil {
			return Key{}, err
		}
		return Key{Label: req.Op, Kind: KindOperation, Op: op}, nil
	})
}

// Compute handles POST /calculator/sessions/{id}/compute
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	h.handleKey(w, r, "compute", fixedKey(Key{Label: "=", Kind: KindEquals}))
}

// Clear handles POST /calculator/sessions/{id}/clear — the C/AC button.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.handleKey(w, r, "clear", fixedKey(Key{Label: "clear", Kind: KindClear}))
}

// Reset handles POST /calculator/sessions/{id}/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.handleKey(w, r, "reset", fixedKey(Key{Label: "reset", Kind: KindReset}))
}

func fixedKey(k Key) func(*http.Request) (Key, error) {
	return func(*http.Request) (Key, error) { return k, nil }
}

// handleKey is the shared implementation for every single-key endpoint: it
// decodes the key, applies it to the session's engine inside a child span and
// records metrics and a trace-correlated log line.
func (h *Handler) handleKey(w http.ResponseWriter, r *http.Request, opName string, decode func(*http.Request) (Key, error)) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.session.id", id),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	key, err := decode(r)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, errorMessage(err), err, http.StatusBadRequest, w)
		return
	}
	span.SetAttributes(
		attribute.String("calculator.key", key.Label),
		attribute.String("calculator.key.kind", string(key.Kind)),
	)

	var (
		before   State
		accepted bool
		elapsed  float64
	)
	state, err := h.store.Update(id, func(e *Engine) {
		before = e.State()
		start := time.Now()
		accepted = key.Press(e)
		elapsed = float64(time.Since(start).Microseconds()) / 1000.0 // ms
	})
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, statusFor(err), w)
		return
	}

	recordKey(ctx, span, logger, key, before, state, accepted, elapsed)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator key applied",
		zap.String("session_id", id),
		zap.String("key", key.Label),
		zap.Bool("accepted", accepted),
		zap.String("current", state.Current),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, newStateResponse(id, state))
}

// ---------------------------------------------------------------------------
// Handler — key sequences (demonstrates nested spans)
// ---------------------------------------------------------------------------

// Keys handles POST /calculator/sessions/{id}/keys — presses a sequence of
// buttons in order, creating a child span for every key. The sequence is
// applied atomically with respect to other requests on the same session.
func (h *Handler) Keys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.keys",
		trace.WithAttributes(
			attribute.String("calculator.session.id", id),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req KeysRequest
	if err := decodeBody(r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	switch {
	case len(req.Keys) == 0:
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "no keys provided", fmt.Errorf("keys array is empty"), http.StatusBadRequest, w)
		return
	case len(req.Keys) > maxKeysPerRequest:
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "too many keys",
			fmt.Errorf("%d keys exceeds limit of %d", len(req.Keys), maxKeysPerRequest), http.StatusBadRequest, w)
		return
	}

	keys := make([]Key, 0, len(req.Keys))
	for i, label := range req.Keys {
		k, err := ParseKey(label)
		if err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, "keys", fmt.Sprintf("%s at position %d", errorMessage(err), i), err, http.StatusBadRequest, w)
			return
		}
		keys = append(keys, k)
	}

	span.SetAttributes(attribute.Int("calculator.keys.count", len(keys)))

	results := make([]KeyResult, 0, len(keys))
	state, err := h.store.Update(id, func(e *Engine) {
		for i, k := range keys {
			before := e.State()
			_, keySpan := tracer.Start(ctx, fmt.Sprintf("calculator.keys.%d.%s", i, k.Kind),
				trace.WithAttributes(
					attribute.Int("calculator.key.index", i),
					attribute.String("calculator.key", k.Label),
					attribute.String("calculator.key.input", before.Current),
				),
			)

			start := time.Now()
			accepted := k.Press(e)
			elapsed := float64(time.Since(start).Microseconds()) / 1000.0
			after := e.State()

			recordKey(ctx, keySpan, logger, k, before, after, accepted, elapsed)
			keySpan.SetAttributes(attribute.String("calculator.key.result", after.Current))
			keySpan.SetStatus(codes.Ok, "")
			keySpan.End()

			results = append(results, KeyResult{Key: k.Label, Accepted: accepted, Current: after.Current})
		}
	})
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "session not found", err, statusFor(err), w)
		return
	}

	span.AddEvent("keys.complete", trace.WithAttributes(
		attribute.String("final_current", state.Current),
		attribute.Int("total_keys", len(keys)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator key sequence applied",
		zap.String("session_id", id),
		zap.Int("keys", len(keys)),
		zap.String("current", state.Current),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, KeysResponse{
		Keys:  results,
		State: newStateResponse(id, state),
	})
}

// recordKey emits the metrics and span events for one applied key. A key
// that turned the display into the error marker counts as a division by zero.
func recordKey(ctx context.Context, span trace.Span, logger *zap.Logger, k Key, before, after State, accepted bool, elapsedMS float64) {
	kind := attribute.String("kind", string(k.Kind))
	keysCounter.Add(ctx, 1, metric.WithAttributes(kind, attribute.Bool("accepted", accepted)))
	keyHistogram.Record(ctx, elapsedMS, metric.WithAttributes(kind))

	if !accepted || !resolvesPending(k, before) {
		return
	}

	op := before.Operation.String()
	opAttrs := metric.WithAttributes(attribute.String("operation", op))
	computeCounter.Add(ctx, 1, opAttrs)

	if after.IsError() {
		errorCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("reason", "division_by_zero"),
		))
		span.AddEvent("computation.division_by_zero", trace.WithAttributes(
			attribute.String("dividend", before.Previous),
		))
		logger.Warn("division by zero",
			zap.String("dividend", before.Previous),
			zap.String("request_id", observability.RequestIDFromContext(ctx)),
		)
		return
	}

	// A chained computation leaves its result as the new previous operand.
	result := after.Current
	if k.Kind == KindOperation {
		result = after.Previous
	}
	if v, ok := parseOperand(result); ok {
		resultGauge.Record(ctx, v, opAttrs)
	}
	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.String("operation", op),
		attribute.String("previous", before.Previous),
		attribute.String("current", before.Current),
		attribute.String("result", result),
	))
}

// resolvesPending reports whether pressing k in state s evaluates the
// pending operation.
func resolvesPending(k Key, s State) bool {
	if s.Operation == OpNone || s.Previous == "" {
		return false
	}
	switch k.Kind {
	case KindEquals:
		return true
	case KindOperation:
		return !s.Overwrite
	}
	return false
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// errorMessage is the client-facing text for a request error.
func errorMessage(err error) string {
	var keyErr *KeyError
	switch {
	case errors.As(err, &keyErr):
		return keyErr.Error()
	case errors.Is(err, ErrUnknownOperation):
		return err.Error()
	default:
		return errBadBody.Error()
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
