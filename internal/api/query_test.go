package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/askdb/askdb/internal/executor"
	"github.com/askdb/askdb/internal/llm"
	"github.com/askdb/askdb/internal/pipeline"
	"github.com/askdb/askdb/internal/sqlguard"
)

func TestQueryEndpointReturnsVerifiedResponse(t *testing.T) {
	cfg := loadTestConfig(t, nil)
	runner := &fakeRunner{response: pipeline.Response{
		SQL:  "SELECT COUNT(*) AS count FROM customers WHERE state = 'CA' LIMIT 100",
		Data: []map[string]any{{"count": float64(42)}},
		Verification: pipeline.VerificationResult{
			Status:     pipeline.StatusValid,
			Confidence: 0.95,
			Reason:     "valid, matches question",
		},
	}}
	h := NewHandler(cfg, Dependencies{Runner: runner})

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"How many customers are in California?"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var body struct {
		SQL          string           `json:"sql"`
		Data         []map[string]any `json:"data"`
		Verification struct {
			Status     string  `json:"status"`
			Confidence float64 `json:"confidence"`
			Reason     string  `json:"reason"`
		} `json:"verification"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.SQL == "" || len(body.Data) != 1 || body.Data[0]["count"] != float64(42) {
		t.Fatalf("body = %+v", body)
	}
	if body.Verification.Status != "valid" || body.Verification.Confidence != 0.95 {
		t.Fatalf("verification = %+v", body.Verification)
	}
	if len(runner.questions) != 1 || runner.questions[0] != "How many customers are in California?" {
		t.Fatalf("questions = %v", runner.questions)
	}
}

func TestQueryEndpointRequiresQuestion(t *testing.T) {
	cfg := loadTestConfig(t, nil)
	h := NewHandler(cfg, Dependencies{Runner: &fakeRunner{}})

	for _, payload := range []string{`{}`, `{"question":"  "}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(payload))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("payload %q: status = %d, want 400", payload, rr.Code)
		}
	}
}

func TestQueryEndpointNotConfigured(t *testing.T) {
	cfg := loadTestConfig(t, nil)
	h := NewHandler(cfg, Dependencies{})

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"q"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestQueryEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unsafe sql", fmt.Errorf("sanitize: %w", &sqlguard.UnsafeSQLError{Keyword: "drop"}), http.StatusBadRequest, "UNSAFE_SQL"},
		{"validator rejected", fmt.Errorf("validation: %w", &pipeline.ValidationFailedError{Explanation: "invalid: subquery"}), http.StatusBadRequest, "SQL_VALIDATION_FAILED"},
		{"execution timeout", fmt.Errorf("execution: %w", &executor.QueryTimeoutError{Elapsed: 6 * time.Second, Budget: 5 * time.Second}), http.StatusRequestTimeout, "QUERY_TIMEOUT"},
		{"execution failure", fmt.Errorf("execution: %w", &executor.ExecutionError{Err: fmt.Errorf("missing relation")}), http.StatusBadRequest, "QUERY_EXECUTION_FAILED"},
		{"provider failure", fmt.Errorf("generation: %w", &llm.ProviderError{Status: 503, Body: "down"}), http.StatusBadGateway, "PROVIDER_ERROR"},
		{"unknown failure", fmt.Errorf("schema: boom"), http.StatusInternalServerError, "PIPELINE_ERROR"},
	}

	cfg := loadTestConfig(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(cfg, Dependencies{Runner: &fakeRunner{err: tt.err}})
			req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question":"q"}`))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body["error_code"] != tt.wantCode {
				t.Fatalf("error_code = %v, want %s", body["error_code"], tt.wantCode)
			}
			if body["trace_id"] == "" {
				t.Fatal("expected trace_id on error response")
			}
		})
	}
}
