package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/iwvelando/car-cost-forecast/internal/config"
	"github.com/iwvelando/car-cost-forecast/internal/forecast"
	"github.com/iwvelando/car-cost-forecast/internal/metrics"
	"github.com/iwvelando/car-cost-forecast/internal/store"
	"github.com/iwvelando/car-cost-forecast/internal/tracing"
	"github.com/iwvelando/car-cost-forecast/pkg/constants"
	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/iwvelando/car-cost-forecast/pkg/loans"
	"github.com/iwvelando/car-cost-forecast/pkg/output"
	"github.com/iwvelando/car-cost-forecast/pkg/projection"
	"github.com/iwvelando/car-cost-forecast/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request ID assigned to every API call.
const RequestIDHeader = "X-Request-ID"

type handler struct {
	logger        *zap.Logger
	presets       store.Store
	maxUploadSize int64
	version       string
	engine        *projection.Engine
	generator     *loans.AmortizationScheduleGenerator
	tracer        trace.Tracer
}

// NewHandler constructs the HTTP handler that serves the projection API. The
// preset store may be nil, in which case preset endpoints answer 503.
func NewHandler(logger *zap.Logger, presets store.Store, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		presets:       presets,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		engine:        projection.NewEngine(logger),
		generator:     loans.NewAmortizationScheduleGenerator(logger),
		tracer:        tracing.Tracer("github.com/iwvelando/car-cost-forecast/internal/server"),
	}

	r := mux.NewRouter()
	r.Use(h.instrument)

	api := r.PathPrefix("/api").Subrouter()

	// Single vehicle projection and loan schedule
	api.HandleFunc("/projection", h.handleProjection).Methods(http.MethodPost)
	api.HandleFunc("/schedule", h.handleSchedule).Methods(http.MethodPost)

	// Multi-scenario configuration upload
	api.HandleFunc("/forecast", h.handleForecast).Methods(http.MethodPost)

	// Named presets
	api.HandleFunc("/presets", h.handleListPresets).Methods(http.MethodGet)
	api.HandleFunc("/presets/{name}", h.handleGetPreset).Methods(http.MethodGet)
	api.HandleFunc("/presets/{name}", h.handlePutPreset).Methods(http.MethodPut)
	api.HandleFunc("/presets/{name}", h.handleDeletePreset).Methods(http.MethodDelete)

	// Version endpoint for client metadata
	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// instrument assigns a request ID, opens a span and records request metrics.
func (h *handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tmpl
			}
		}

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx, span := h.tracer.Start(r.Context(), r.Method+" "+endpoint,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", endpoint),
				attribute.String("request.id", requestID),
			),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
		if endpoint != "/metrics" {
			metrics.Requests.WithLabelValues(endpoint, fmt.Sprintf("%d", rec.status)).Inc()
		}

		h.logger.Debug("request served",
			zap.String("op", "server.instrument"),
			zap.String("requestId", requestID),
			zap.String("method", r.Method),
			zap.String("endpoint", endpoint),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// projectionRequest describes one vehicle, either inline or by preset name.
type projectionRequest struct {
	Name       string                `json:"name"`
	StartDate  string                `json:"startDate"`
	Preset     string                `json:"preset"`
	Parameters *costmodel.Parameters `json:"parameters"`
	Yearly     bool                  `json:"yearly"`
	Categories []string              `json:"categories"`
}

type forecastResponse struct {
	Scenarios []output.Report `json:"scenarios"`
	CSV       string          `json:"csv"`
	Warnings  []string        `json:"warnings,omitempty"`
	Duration  string          `json:"duration"`
}

type presetResponse struct {
	Name       string               `json:"name"`
	Parameters costmodel.Parameters `json:"parameters"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

// requestError carries the HTTP status an error should be answered with.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...interface{}) error {
	return &requestError{status: http.StatusBadRequest, err: fmt.Errorf(format, args...)}
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &requestError{
				status: http.StatusRequestEntityTooLarge,
				err:    fmt.Errorf("request exceeds limit of %d bytes", h.maxUploadSize),
			}
		}
		return badRequest("failed to decode request: %v", err)
	}
	return nil
}

func (h *handler) resolveParameters(ctx context.Context, req projectionRequest) (costmodel.Parameters, error) {
	if req.Preset == "" {
		if req.Parameters == nil {
			return costmodel.Parameters{}, badRequest("either parameters or preset is required")
		}
		return *req.Parameters, nil
	}
	if req.Parameters != nil {
		return costmodel.Parameters{}, badRequest("parameters and preset are mutually exclusive")
	}
	if h.presets == nil {
		return costmodel.Parameters{}, &requestError{status: http.StatusServiceUnavailable, err: errors.New("no preset store configured")}
	}
	params, err := h.presets.Load(ctx, req.Preset)
	h.countPreset("load", err)
	return params, err
}

func (req projectionRequest) options() (output.Options, error) {
	categories, err := config.OutputConfig{Categories: req.Categories}.ParsedCategories()
	if err != nil {
		return output.Options{}, badRequest("%v", err)
	}
	opts := output.Options{Yearly: req.Yearly}
	if len(req.Categories) > 0 {
		opts.Categories = categories
	}
	return opts, nil
}

func (req projectionRequest) name() string {
	if req.Name != "" {
		return req.Name
	}
	if req.Preset != "" {
		return req.Preset
	}
	return "projection"
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjection"
	ctx := r.Context()

	var req projectionRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondErr(ctx, w, err, op)
		return
	}
	opts, err := req.options()
	if err != nil {
		h.respondErr(ctx, w, err, op)
		return
	}
	params, err := h.resolveParameters(ctx, req)
	if err != nil {
		h.respondErr(ctx, w, err, op)
		return
	}

	_, span := h.tracer.Start(ctx, "projection.Run")
	start := time.Now()
	summary, err := h.engine.Run(params)
	metrics.CalculationDuration.WithLabelValues("projection").Observe(time.Since(start).Seconds())
	span.End()
	if err != nil {
		metrics.CalculationErrors.WithLabelValues("projection", projection.ErrorKind(err)).Inc()
		h.respondErr(ctx, w, err, op)
		return
	}

	report, err := output.NewReport(forecast.Forecast{
		Name:       req.name(),
		StartDate:  req.StartDate,
		Parameters: params,
		Summary:    summary,
	}, opts)
	if err != nil {
		h.respondErr(ctx, w, badRequest("%v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	ctx := r.Context()

	var req projectionRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondErr(ctx, w, err, op)
		return
	}
	params, err := h.resolveParameters(ctx, req)
	if err != nil {
		h.respondErr(ctx, w, err, op)
		return
	}

	start := time.Now()
	schedule, err := forecast.BuildSchedule(h.generator, req.name(), params)
	metrics.CalculationDuration.WithLabelValues("schedule").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CalculationErrors.WithLabelValues("schedule", projection.ErrorKind(err)).Inc()
		h.respondErr(ctx, w, err, op)
		return
	}
	schedule.StartDate = req.StartDate

	h.writeJSON(w, http.StatusOK, schedule)
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleForecast"
	ctx := r.Context()

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				errorResponse{Error: fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize)}, op)
			return
		}
		h.respondErr(ctx, w, badRequest("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErr(ctx, w, badRequest("missing configuration file"), op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErr(ctx, w, fmt.Errorf("failed to read configuration: %w", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		h.respondErr(ctx, w, badRequest("%v", err), op)
		return
	}
	if err := cfg.Validate(); err != nil {
		h.respondErr(ctx, w, badRequest("%v", err), op)
		return
	}
	categories, err := cfg.Output.ParsedCategories()
	if err != nil {
		h.respondErr(ctx, w, badRequest("%v", err), op)
		return
	}
	warnings := cfg.ValidateConfiguration()

	if cfg.HasPresets() {
		if h.presets == nil {
			h.respondErr(ctx, w, &requestError{status: http.StatusServiceUnavailable, err: errors.New("no preset store configured")}, op)
			return
		}
		if err := cfg.ResolvePresets(ctx, h.presets); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				err = badRequest("%v", err)
			}
			h.respondErr(ctx, w, err, op)
			return
		}
	}

	results, err := forecast.GetForecast(h.logger, *cfg)
	metrics.CalculationDuration.WithLabelValues("forecast").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CalculationErrors.WithLabelValues("forecast", projection.ErrorKind(err)).Inc()
		h.respondErr(ctx, w, err, op)
		return
	}

	opts := output.Options{Categories: categories, Yearly: cfg.Output.Yearly, CurrencySymbol: cfg.Output.CurrencySymbol}

	reports := make([]output.Report, 0, len(results))
	for _, result := range results {
		report, err := output.NewReport(result, opts)
		if err != nil {
			h.respondErr(ctx, w, badRequest("%v", err), op)
			return
		}
		reports = append(reports, report)
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, results, opts); err != nil {
		h.respondErr(ctx, w, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.Int("scenarios", len(results)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, forecastResponse{
		Scenarios: reports,
		CSV:       csvBuf.String(),
		Warnings:  warnings,
		Duration:  elapsed.String(),
	})
}

func (h *handler) requirePresets(ctx context.Context, w http.ResponseWriter, op string) bool {
	if h.presets != nil {
		return true
	}
	h.respondErr(ctx, w, &requestError{status: http.StatusServiceUnavailable, err: errors.New("no preset store configured")}, op)
	return false
}

func (h *handler) countPreset(operation string, err error) {
	status := "success"
	if errors.Is(err, store.ErrNotFound) {
		status = "not_found"
	} else if err != nil {
		status = "error"
	}
	metrics.PresetOperations.WithLabelValues(operation, status).Inc()
}

func (h *handler) handleListPresets(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListPresets"
	if !h.requirePresets(r.Context(), w, op) {
		return
	}
	names, err := h.presets.List(r.Context())
	h.countPreset("list", err)
	if err != nil {
		h.respondErr(r.Context(), w, err, op)
		return
	}
	if names == nil {
		names = []string{}
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"presets": names})
}

func (h *handler) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetPreset"
	if !h.requirePresets(r.Context(), w, op) {
		return
	}
	name := mux.Vars(r)["name"]
	params, err := h.presets.Load(r.Context(), name)
	h.countPreset("load", err)
	if err != nil {
		h.respondErr(r.Context(), w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, presetResponse{Name: name, Parameters: params})
}

func (h *handler) handlePutPreset(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutPreset"
	if !h.requirePresets(r.Context(), w, op) {
		return
	}
	name := mux.Vars(r)["name"]

	var params costmodel.Parameters
	if err := h.decodeJSON(w, r, &params); err != nil {
		h.respondErr(r.Context(), w, err, op)
		return
	}
	if err := params.Validate(); err != nil {
		h.respondErr(r.Context(), w, err, op)
		return
	}

	err := h.presets.Save(r.Context(), name, params)
	h.countPreset("save", err)
	if err != nil {
		h.respondErr(r.Context(), w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, presetResponse{Name: name, Parameters: params})
}

func (h *handler) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeletePreset"
	if !h.requirePresets(r.Context(), w, op) {
		return
	}
	err := h.presets.Delete(r.Context(), mux.Vars(r)["name"])
	h.countPreset("delete", err)
	if err != nil {
		h.respondErr(r.Context(), w, err, op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"service": constants.ServiceName,
		"version": h.version,
	})
}

// statusFor maps an error onto an HTTP status and the response body.
func statusFor(err error) (int, errorResponse) {
	resp := errorResponse{Error: err.Error()}

	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.status, resp
	}
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, resp
	}

	resp.Kind = projection.ErrorKind(err)
	switch resp.Kind {
	case projection.KindValidation:
		if verr, ok := validation.AsValidationError(err); ok {
			resp.Field = verr.Field
		}
		return http.StatusBadRequest, resp
	case projection.KindUnaffordableTerm, projection.KindNumericOverflow:
		return http.StatusUnprocessableEntity, resp
	}
	resp.Kind = ""
	return http.StatusInternalServerError, resp
}

func (h *handler) respondErr(ctx context.Context, w http.ResponseWriter, err error, op string) {
	status, resp := statusFor(err)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.RecordError(err)
	}
	h.respondErrorWithOp(w, status, resp, op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, resp errorResponse, op string) {
	log := h.logger.Warn
	if status >= http.StatusInternalServerError {
		log = h.logger.Error
	}
	log("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", resp.Error),
	)

	h.writeJSON(w, status, resp)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
