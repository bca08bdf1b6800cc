package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/askdb/askdb/internal/executor"
	"github.com/askdb/askdb/internal/llm"
	"github.com/askdb/askdb/internal/pipeline"
	"github.com/askdb/askdb/internal/sqlguard"
)

type questionRequest struct {
	Question string `json:"question"`
}

func handleQuestion(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Runner == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "PIPELINE_NOT_CONFIGURED", "question pipeline is not configured", false, nil)
		return
	}

	var request questionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid question request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.Question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	response, err := deps.Runner.Run(r.Context(), request.Question)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// writePipelineError maps the pipeline's typed failures onto HTTP statuses:
// rejected or failing SQL is the client's problem (400), a blown execution
// budget is a request timeout (408), and an upstream model failure is a bad
// gateway (502). Callers never see partial pipeline state.
func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	var unsafeErr *sqlguard.UnsafeSQLError
	if errors.As(err, &unsafeErr) {
		writeError(r.Context(), w, http.StatusBadRequest, "UNSAFE_SQL", "unsafe or invalid SQL generated", false, map[string]any{"details": unsafeErr.Error()})
		return
	}
	var validationErr *pipeline.ValidationFailedError
	if errors.As(err, &validationErr) {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_VALIDATION_FAILED", "SQL validation failed: "+validationErr.Explanation, false, nil)
		return
	}
	var timeoutErr *executor.QueryTimeoutError
	if errors.As(err, &timeoutErr) {
		writeError(r.Context(), w, http.StatusRequestTimeout, "QUERY_TIMEOUT", "query exceeded the execution budget", true, map[string]any{
			"elapsed": timeoutErr.Elapsed.String(),
			"budget":  timeoutErr.Budget.String(),
		})
		return
	}
	var execErr *executor.ExecutionError
	if errors.As(err, &execErr) {
		writeError(r.Context(), w, http.StatusBadRequest, "QUERY_EXECUTION_FAILED", "query execution failed", false, map[string]any{"details": execErr.Error()})
		return
	}
	var providerErr *llm.ProviderError
	if errors.As(err, &providerErr) {
		details := map[string]any{"details": providerErr.Error()}
		if providerErr.Status != 0 {
			details["upstream_status"] = providerErr.Status
		}
		writeError(r.Context(), w, http.StatusBadGateway, "PROVIDER_ERROR", "completion provider call failed", true, details)
		return
	}
	writeError(r.Context(), w, http.StatusInternalServerError, "PIPELINE_ERROR", "question pipeline failed", true, map[string]any{"details": err.Error()})
}
