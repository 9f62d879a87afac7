package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/car-cost-forecast/internal/forecast"
	"github.com/iwvelando/car-cost-forecast/internal/store"
	"github.com/iwvelando/car-cost-forecast/pkg/constants"
	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"github.com/iwvelando/car-cost-forecast/pkg/output"
	"go.uber.org/zap"
)

func concreteParameters() costmodel.Parameters {
	return costmodel.Parameters{
		PurchasePrice:       20000,
		MonthlyRunningCost:  100,
		FuelConsumption:     6,
		FinancingYears:      5,
		InsuranceAnnualCost: 600,
		KmPerYear:           12000,
		FuelPrice:           1.80,
		LifetimeYears:       5,
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s := store.NewFileStore(filepath.Join(t.TempDir(), "presets.yaml"))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func doJSON(t *testing.T, h http.Handler, method, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader = http.NoBody
	switch p := payload.(type) {
	case nil:
	case string:
		body = strings.NewReader(p)
	default:
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHandleProjectionSuccess(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, constants.DefaultMaxUploadSizeBytes, "1.0.0")
	params := concreteParameters()

	rr := doJSON(t, handler, http.MethodPost, "/api/projection", projectionRequest{
		Name:       "Concrete",
		StartDate:  "2026-01",
		Parameters: &params,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a request ID header")
	}

	report := decode[output.Report](t, rr)
	if report.Name != "Concrete" {
		t.Errorf("name = %q", report.Name)
	}
	if report.Summary.MonthlyPayment != 333.33 {
		t.Errorf("MonthlyPayment = %.2f, expected 333.33", report.Summary.MonthlyPayment)
	}
	if report.Summary.Months() != 60 {
		t.Errorf("expected 60 months, got %d", report.Summary.Months())
	}
	if report.Summary.TotalLifetimeCost != 35480 {
		t.Errorf("TotalLifetimeCost = %.2f, expected 35480.00", report.Summary.TotalLifetimeCost)
	}
	if report.Periods != nil || report.SelectedTotal != nil {
		t.Error("periods and selected total should only appear when requested")
	}
}

func TestHandleProjectionYearlyCategories(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, 0, "")
	params := concreteParameters()

	rr := doJSON(t, handler, http.MethodPost, "/api/projection", projectionRequest{
		Parameters: &params,
		Yearly:     true,
		Categories: []string{"financing"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	report := decode[output.Report](t, rr)
	if report.Name != "projection" {
		t.Errorf("default name = %q", report.Name)
	}
	if len(report.Periods) != 5 {
		t.Fatalf("expected 5 yearly periods, got %d", len(report.Periods))
	}
	if report.Periods[0].Label != "year 1" {
		t.Errorf("first label = %q", report.Periods[0].Label)
	}
	if report.SelectedTotal == nil || math.Abs(*report.SelectedTotal-20000) > constants.CurrencyTolerance {
		t.Errorf("SelectedTotal = %v, expected 20000", report.SelectedTotal)
	}
}

func TestHandleProjectionRepeatedCategory(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, 0, "")
	params := concreteParameters()

	rr := doJSON(t, handler, http.MethodPost, "/api/projection", projectionRequest{
		Parameters: &params,
		Categories: []string{"fuel", "Fuel", "fuel"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	report := decode[output.Report](t, rr)
	if report.SelectedTotal == nil || math.Abs(*report.SelectedTotal-6480) > constants.CurrencyTolerance {
		t.Errorf("SelectedTotal = %v, expected fuel counted once at 6480", report.SelectedTotal)
	}
}

func TestHandleProjectionErrors(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, constants.DefaultMaxUploadSizeBytes, "")

	negative := concreteParameters()
	negative.PurchasePrice = -1

	overflow := concreteParameters()
	overflow.InterestRate = 1e6
	overflow.FinancingYears = 100
	overflow.LifetimeYears = 100

	valid := concreteParameters()

	tests := []struct {
		name           string
		payload        interface{}
		expectedStatus int
		expectedKind   string
		expectedField  string
	}{
		{"Malformed JSON", "{", http.StatusBadRequest, "", ""},
		{"Unknown field", `{"parameters":{},"colour":"red"}`, http.StatusBadRequest, "", ""},
		{"Missing parameters", projectionRequest{Name: "Nothing"}, http.StatusBadRequest, "", ""},
		{"Preset and parameters", projectionRequest{Preset: "hatchback", Parameters: &valid}, http.StatusBadRequest, "", ""},
		{"Unknown category", projectionRequest{Parameters: &valid, Categories: []string{"tolls"}}, http.StatusBadRequest, "", ""},
		{"Negative price", projectionRequest{Parameters: &negative}, http.StatusBadRequest, "validation", costmodel.FieldPurchasePrice},
		{"Numeric overflow", projectionRequest{Parameters: &overflow}, http.StatusUnprocessableEntity, "numeric_overflow", ""},
		{"Preset without store", projectionRequest{Preset: "hatchback"}, http.StatusServiceUnavailable, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, handler, http.MethodPost, "/api/projection", tt.payload)
			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}

			resp := decode[errorResponse](t, rr)
			if resp.Error == "" {
				t.Error("expected an error message")
			}
			if resp.Kind != tt.expectedKind {
				t.Errorf("kind = %q, expected %q", resp.Kind, tt.expectedKind)
			}
			if resp.Field != tt.expectedField {
				t.Errorf("field = %q, expected %q", resp.Field, tt.expectedField)
			}
		})
	}
}

func TestHandleProjectionTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, 16, "")
	params := concreteParameters()

	rr := doJSON(t, handler, http.MethodPost, "/api/projection", projectionRequest{Parameters: &params})
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleProjectionFromPreset(t *testing.T) {
	presets := newTestStore(t)
	if err := presets.Save(context.Background(), "hatchback", concreteParameters()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	handler := NewHandler(zap.NewNop(), presets, constants.DefaultMaxUploadSizeBytes, "")

	rr := doJSON(t, handler, http.MethodPost, "/api/projection", projectionRequest{Preset: "hatchback"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	report := decode[output.Report](t, rr)
	if report.Name != "hatchback" {
		t.Errorf("name = %q, expected the preset name", report.Name)
	}
	if report.Parameters != concreteParameters() {
		t.Errorf("parameters = %+v", report.Parameters)
	}

	rr = doJSON(t, handler, http.MethodPost, "/api/projection", projectionRequest{Preset: "estate"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown preset, got %d", rr.Code)
	}
}

func TestHandleSchedule(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, constants.DefaultMaxUploadSizeBytes, "")
	params := concreteParameters()
	params.PurchasePrice = 30000
	params.InterestRate = 6
	params.FinancingYears = 3
	params.BalloonPayment = 10000

	rr := doJSON(t, handler, http.MethodPost, "/api/schedule", projectionRequest{
		Name:       "Balloon",
		StartDate:  "2026-03",
		Parameters: &params,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	schedule := decode[forecast.Schedule](t, rr)
	if schedule.Name != "Balloon" || schedule.StartDate != "2026-03" {
		t.Errorf("unexpected schedule metadata: %q %q", schedule.Name, schedule.StartDate)
	}
	if len(schedule.Payments) != 36 {
		t.Fatalf("expected 36 payments, got %d", len(schedule.Payments))
	}
	last := schedule.Payments[35]
	if last.Balloon != 10000 || last.RemainingPrincipal != 0 {
		t.Errorf("final installment = %+v", last)
	}
	if math.Abs(schedule.TotalPaid-schedule.TotalInterest-30000) > 0.05 {
		t.Errorf("principal repaid = %.2f, expected 30000", schedule.TotalPaid-schedule.TotalInterest)
	}
}

func TestHandleScheduleValidation(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, constants.DefaultMaxUploadSizeBytes, "")
	params := concreteParameters()
	params.InterestRate = -2

	rr := doJSON(t, handler, http.MethodPost, "/api/schedule", projectionRequest{Parameters: &params})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if resp := decode[errorResponse](t, rr); resp.Field != costmodel.FieldInterestRate {
		t.Errorf("field = %q, expected %q", resp.Field, costmodel.FieldInterestRate)
	}
}

func TestPresetLifecycle(t *testing.T) {
	handler := NewHandler(zap.NewNop(), newTestStore(t), constants.DefaultMaxUploadSizeBytes, "")
	params := concreteParameters()

	rr := doJSON(t, handler, http.MethodPut, "/api/presets/hatchback", params)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, handler, http.MethodGet, "/api/presets/hatchback", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := decode[presetResponse](t, rr); got.Name != "hatchback" || got.Parameters != params {
		t.Errorf("GET returned %+v", got)
	}

	rr = doJSON(t, handler, http.MethodGet, "/api/presets", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list expected status 200, got %d", rr.Code)
	}
	list := decode[map[string][]string](t, rr)
	if len(list["presets"]) != 1 || list["presets"][0] != "hatchback" {
		t.Errorf("list = %v", list)
	}

	rr = doJSON(t, handler, http.MethodDelete, "/api/presets/hatchback", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("DELETE expected status 204, got %d: %s", rr.Code, rr.Body.String())
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rr = doJSON(t, handler, method, "/api/presets/hatchback", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s after delete: expected status 404, got %d", method, rr.Code)
		}
	}

	rr = doJSON(t, handler, http.MethodGet, "/api/presets", nil)
	if list := decode[map[string][]string](t, rr); list["presets"] == nil || len(list["presets"]) != 0 {
		t.Errorf("expected an empty list, got %v", list)
	}
}

func TestPutPresetRejectsInvalidParameters(t *testing.T) {
	presets := newTestStore(t)
	handler := NewHandler(zap.NewNop(), presets, constants.DefaultMaxUploadSizeBytes, "")
	params := concreteParameters()
	params.LifetimeYears = 0

	rr := doJSON(t, handler, http.MethodPut, "/api/presets/broken", params)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if _, err := presets.Load(context.Background(), "broken"); err == nil {
		t.Error("invalid preset should not have been saved")
	}
}

func TestPresetBlankName(t *testing.T) {
	handler := NewHandler(zap.NewNop(), newTestStore(t), constants.DefaultMaxUploadSizeBytes, "")

	for _, method := range []string{http.MethodPut, http.MethodGet, http.MethodDelete} {
		var payload interface{}
		if method == http.MethodPut {
			payload = concreteParameters()
		}
		rr := doJSON(t, handler, method, "/api/presets/%20", payload)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s expected status 400, got %d: %s", method, rr.Code, rr.Body.String())
			continue
		}
		if resp := decode[errorResponse](t, rr); resp.Field != store.FieldName {
			t.Errorf("%s field = %q, expected %q", method, resp.Field, store.FieldName)
		}
	}
}

func TestPresetsUnavailable(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, constants.DefaultMaxUploadSizeBytes, "")

	for _, target := range []string{"/api/presets", "/api/presets/hatchback"} {
		rr := doJSON(t, handler, http.MethodGet, target, nil)
		if rr.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected status 503, got %d", target, rr.Code)
		}
	}
}

const forecastYAML = `
output:
  categories: [financing, fuel]
  yearly: true
scenarios:
  - name: Concrete
    active: true
    parameters:
      purchasePrice: 20000
      monthlyRunningCost: 100
      fuelConsumption: 6
      financingYears: 5
      insuranceAnnualCost: 600
      kmPerYear: 12000
      fuelPrice: 1.80
      lifetimeYears: 4
  - name: Stored
    active: true
    preset: hatchback
`

func multipartRequest(t *testing.T, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "config.yaml")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleForecastSuccess(t *testing.T) {
	presets := newTestStore(t)
	if err := presets.Save(context.Background(), "hatchback", concreteParameters()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	handler := NewHandler(zap.NewNop(), presets, constants.DefaultMaxUploadSizeBytes, "")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, multipartRequest(t, forecastYAML))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decode[forecastResponse](t, rr)
	if len(resp.Scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(resp.Scenarios))
	}
	if resp.Scenarios[1].Parameters != concreteParameters() {
		t.Errorf("preset parameters not resolved: %+v", resp.Scenarios[1].Parameters)
	}
	if len(resp.Scenarios[0].Periods) != 4 {
		t.Errorf("expected 4 yearly periods, got %d", len(resp.Scenarios[0].Periods))
	}
	if resp.Scenarios[0].SelectedTotal == nil {
		t.Error("expected a selected total for the category subset")
	}
	if !strings.HasPrefix(resp.CSV, "scenario,period,financing,fuel,total") {
		t.Errorf("unexpected CSV header: %q", strings.SplitN(resp.CSV, "\n", 2)[0])
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}

	// The first scenario finances five years over a four year lifetime.
	if len(resp.Warnings) == 0 {
		t.Error("expected a financing horizon warning")
	}
}

func TestHandleForecastRepeatedCategory(t *testing.T) {
	presets := newTestStore(t)
	if err := presets.Save(context.Background(), "hatchback", concreteParameters()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	handler := NewHandler(zap.NewNop(), presets, constants.DefaultMaxUploadSizeBytes, "")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, multipartRequest(t, strings.Replace(forecastYAML, "[financing, fuel]", "[fuel, fuel]", 1)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decode[forecastResponse](t, rr)
	if !strings.HasPrefix(resp.CSV, "scenario,period,fuel,total\n") {
		t.Errorf("unexpected CSV header: %q", strings.SplitN(resp.CSV, "\n", 2)[0])
	}
	stored := resp.Scenarios[1]
	if stored.SelectedTotal == nil || math.Abs(*stored.SelectedTotal-6480) > constants.CurrencyTolerance {
		t.Errorf("SelectedTotal = %v, expected fuel counted once at 6480", stored.SelectedTotal)
	}
}

func TestHandleForecastErrors(t *testing.T) {
	tests := []struct {
		name           string
		presets        bool
		maxUploadSize  int64
		request        func(t *testing.T) *http.Request
		expectedStatus int
	}{
		{
			name:           "Missing file",
			presets:        true,
			maxUploadSize:  constants.DefaultMaxUploadSizeBytes,
			expectedStatus: http.StatusBadRequest,
			request: func(t *testing.T) *http.Request {
				body := &bytes.Buffer{}
				writer := multipart.NewWriter(body)
				_ = writer.WriteField("other", "value")
				_ = writer.Close()
				req := httptest.NewRequest(http.MethodPost, "/api/forecast", body)
				req.Header.Set("Content-Type", writer.FormDataContentType())
				return req
			},
		},
		{
			name:           "Invalid YAML",
			presets:        true,
			maxUploadSize:  constants.DefaultMaxUploadSizeBytes,
			expectedStatus: http.StatusBadRequest,
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "scenarios: [unterminated")
			},
		},
		{
			name:           "Unknown category",
			presets:        true,
			maxUploadSize:  constants.DefaultMaxUploadSizeBytes,
			expectedStatus: http.StatusBadRequest,
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, strings.Replace(forecastYAML, "[financing, fuel]", "[financing, tolls]", 1))
			},
		},
		{
			name:           "Unknown preset",
			presets:        true,
			maxUploadSize:  constants.DefaultMaxUploadSizeBytes,
			expectedStatus: http.StatusNotFound,
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, forecastYAML)
			},
		},
		{
			name:           "No preset store",
			presets:        false,
			maxUploadSize:  constants.DefaultMaxUploadSizeBytes,
			expectedStatus: http.StatusServiceUnavailable,
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, forecastYAML)
			},
		},
		{
			name:           "Upload too large",
			presets:        true,
			maxUploadSize:  64,
			expectedStatus: http.StatusRequestEntityTooLarge,
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, forecastYAML)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var presets store.Store
			if tt.presets {
				presets = newTestStore(t)
			}
			handler := NewHandler(zap.NewNop(), presets, tt.maxUploadSize, "")

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, tt.request(t))
			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, constants.DefaultMaxUploadSizeBytes, "")

	rr := doJSON(t, handler, http.MethodGet, "/api/projection", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{"Explicit version", " 2.3.1 ", "2.3.1"},
		{"Empty version", "", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(zap.NewNop(), nil, constants.DefaultMaxUploadSizeBytes, tt.version)
			rr := doJSON(t, handler, http.MethodGet, "/api/version", nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rr.Code)
			}
			resp := decode[map[string]string](t, rr)
			if resp["version"] != tt.expected {
				t.Errorf("version = %q, expected %q", resp["version"], tt.expected)
			}
			if resp["service"] != constants.ServiceName {
				t.Errorf("service = %q", resp["service"])
			}
		})
	}
}

func TestRequestIDPropagated(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, constants.DefaultMaxUploadSizeBytes, "")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, expected the caller's ID", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, constants.DefaultMaxUploadSizeBytes, "")
	params := concreteParameters()
	doJSON(t, handler, http.MethodPost, "/api/projection", projectionRequest{Parameters: &params})

	rr := doJSON(t, handler, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"car_cost_forecast_requests_total",
		"car_cost_forecast_calculation_duration_seconds",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("metrics output missing %s", metric)
		}
	}
}
