package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/tuition-backend/internal/calendar"
	"github.com/stemsi/tuition-backend/internal/repository"
	"github.com/stemsi/tuition-backend/internal/response"
	"github.com/stemsi/tuition-backend/internal/service"
	"github.com/stemsi/tuition-backend/internal/validator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	os.Exit(m.Run())
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func do(t *testing.T, r http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: body is not an envelope: %s", method, path, w.Body.String())
	}
	return w.Code, env
}

func errorCode(env envelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}

func TestFailWithMapsErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{repository.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
		{fmt.Errorf("load student 3: %w", repository.ErrNotFound), http.StatusNotFound, response.ErrNotFound},
		{errors.Join(repository.ErrDuplicate, errors.New("23505")), http.StatusConflict, response.ErrConflict},
		{repository.ErrClassHasStudents, http.StatusConflict, response.ErrClassHasStudents},
		{service.ErrUnknownStudent, http.StatusBadRequest, response.ErrUnknownReference},
		{service.ErrClassClosed, http.StatusConflict, response.ErrClassClosed},
		{service.ErrNotSuspended, http.StatusConflict, response.ErrNotSuspended},
		{service.ErrAlreadyProrated, http.StatusConflict, response.ErrAlreadyProrated},
		{service.ErrRestartBeforeSuspend, http.StatusBadRequest, response.ErrRestartBeforeSuspend},
		{service.ErrInvalidPeriod, http.StatusBadRequest, response.ErrInvalidPeriod},
		{service.ErrPortalNotFound, http.StatusNotFound, response.ErrPortalNotFound},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
		{errors.New("connection reset"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { failWith(c, tt.err) })
			status, env := do(t, r, http.MethodGet, "/", "")
			if status != tt.status || errorCode(env) != string(tt.code) {
				t.Errorf("got %d %s, want %d %s", status, errorCode(env), tt.status, tt.code)
			}
		})
	}
}

func newClassRouter() *gin.Engine {
	svc := service.NewClassService(nil, nil, nil, service.FixedClock(calendar.MustParse("2024-06-15")), zerolog.Nop())
	h := NewClassHandler(svc)
	r := gin.New()
	r.GET("/classes", h.ListClasses)
	r.GET("/classes/:id", h.GetClass)
	r.POST("/classes", h.CreateClass)
	r.POST("/classes/:id/close", h.CloseClass)
	return r
}

func TestClassHandlerRejectsBadInput(t *testing.T) {
	r := newClassRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   response.ErrCode
		field  string
	}{
		{"non numeric id", http.MethodGet, "/classes/abc", "", response.ErrInvalidID, ""},
		{"zero id", http.MethodGet, "/classes/0", "", response.ErrInvalidID, ""},
		{"unknown status filter", http.MethodGet, "/classes?status=archived", "", response.ErrValidation, "status"},
		{"missing name", http.MethodPost, "/classes", `{"base_fee":100000,"payment_cycle_type":"8-buoi"}`, response.ErrValidation, "name"},
		{"unknown cycle", http.MethodPost, "/classes", `{"name":"Toán 9","base_fee":100000,"payment_cycle_type":"weekly"}`, response.ErrValidation, "payment_cycle_type"},
		{"negative fee", http.MethodPost, "/classes", `{"name":"Toán 9","base_fee":-5,"payment_cycle_type":"1-thang"}`, response.ErrValidation, "base_fee"},
		{"broken json", http.MethodPost, "/classes", `{"name":`, response.ErrValidation, "detail"},
		{"close without reason", http.MethodPost, "/classes/1/close", `{}`, response.ErrValidation, "reason"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, r, tt.method, tt.path, tt.body)
			if status != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", status)
			}
			if errorCode(env) != string(tt.code) {
				t.Errorf("code = %s, want %s", errorCode(env), tt.code)
			}
			if tt.field != "" {
				if _, ok := env.Error.Fields[tt.field]; !ok {
					t.Errorf("fields %v should mention %s", env.Error.Fields, tt.field)
				}
			}
		})
	}
}

func TestAttendanceSummaryRejectsReversedRange(t *testing.T) {
	h := NewAttendanceHandler(service.NewAttendanceService(nil, nil, 1, zerolog.Nop()))
	r := gin.New()
	r.GET("/attendance/summary", h.GetSummary)
	r.POST("/attendance/bulk-delete", h.BulkDelete)

	status, env := do(t, r, http.MethodGet, "/attendance/summary?from=2024-06-30&to=2024-06-01", "")
	if status != http.StatusBadRequest || errorCode(env) != string(response.ErrInvalidPeriod) {
		t.Errorf("reversed range: got %d %s", status, errorCode(env))
	}

	status, env = do(t, r, http.MethodGet, "/attendance/summary?from=30-06-2024", "")
	if status != http.StatusBadRequest || errorCode(env) != string(response.ErrValidation) {
		t.Errorf("malformed date: got %d %s", status, errorCode(env))
	}

	status, env = do(t, r, http.MethodPost, "/attendance/bulk-delete", `{"ids":[]}`)
	if status != http.StatusBadRequest || errorCode(env) != string(response.ErrValidation) {
		t.Errorf("empty bulk delete: got %d %s", status, errorCode(env))
	}
}

func TestPaymentHandlerValidation(t *testing.T) {
	h := NewPaymentHandler(nil)
	r := gin.New()
	r.GET("/payments/quote", h.GetQuote)
	r.POST("/payments", h.CreatePayment)
	r.POST("/payments/:id/prorate", h.ProratePayment)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		field  string
	}{
		{"quote needs a student", http.MethodGet, "/payments/quote", "", "student_id"},
		{"valid_from required", http.MethodPost, "/payments", `{"student_id":1}`, "valid_from"},
		{"bad status", http.MethodPost, "/payments", `{"student_id":1,"valid_from":"2024-06-01","status":"refunded"}`, "status"},
		{"negative sessions", http.MethodPost, "/payments/1/prorate", `{"actual_sessions":-1}`, "actual_sessions"},
		{"prorate cannot reactivate", http.MethodPost, "/payments/1/prorate", `{"student_status":"active"}`, "student_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, r, tt.method, tt.path, tt.body)
			if status != http.StatusBadRequest || errorCode(env) != string(response.ErrValidation) {
				t.Fatalf("got %d %s", status, errorCode(env))
			}
			if _, ok := env.Error.Fields[tt.field]; !ok {
				t.Errorf("fields %v should mention %s", env.Error.Fields, tt.field)
			}
		})
	}
}

func TestPortalRequiresCodeAndPhone(t *testing.T) {
	h := NewPortalHandler(nil)
	r := gin.New()
	r.GET("/portal", h.Lookup)

	status, env := do(t, r, http.MethodGet, "/portal?code=HS001", "")
	if status != http.StatusBadRequest || env.Error.Fields["phone"] == "" {
		t.Errorf("got %d %+v", status, env.Error)
	}
}

func TestFeeModeValidation(t *testing.T) {
	h := NewSettingHandler(nil)
	r := gin.New()
	r.PUT("/settings/fee-mode", h.UpdateFeeMode)

	status, env := do(t, r, http.MethodPut, "/settings/fee-mode", `{"mode":"PER_WEEK"}`)
	if status != http.StatusBadRequest || env.Error.Fields["mode"] == "" {
		t.Errorf("got %d %+v", status, env.Error)
	}
}

func TestHealth(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("refused") }

	r := gin.New()
	r.GET("/ok", NewHealthHandler(map[string]Pinger{"postgres": up, "redis": up}).Health)
	r.GET("/degraded", NewHealthHandler(map[string]Pinger{"postgres": up, "redis": down}).Health)

	status, env := do(t, r, http.MethodGet, "/ok", "")
	if status != http.StatusOK || !strings.Contains(string(env.Data), `"ok"`) {
		t.Errorf("healthy: %d %s", status, env.Data)
	}

	status, env = do(t, r, http.MethodGet, "/degraded", "")
	if status != http.StatusServiceUnavailable || !strings.Contains(string(env.Data), `"redis":"down"`) {
		t.Errorf("degraded: %d %s", status, env.Data)
	}
}
