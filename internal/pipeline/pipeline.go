// Package pipeline sequences the question-to-verified-answer flow: load
// schema, generate SQL, sanitize, validate, execute, verify. Stages run
// strictly in order, the first failure aborts the run, and nothing is
// retried. No stage output outlives the request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/askdb/askdb/internal/executor"
	"github.com/askdb/askdb/internal/llm"
	"github.com/askdb/askdb/internal/observability"
	"github.com/askdb/askdb/internal/prompt"
	"github.com/askdb/askdb/internal/schema"
	"github.com/askdb/askdb/internal/sqlguard"
)

// Stage names, used for error context and failure metrics.
const (
	StageSchema       = "schema"
	StageGeneration   = "generation"
	StageSanitize     = "sanitize"
	StageValidation   = "validation"
	StageExecution    = "execution"
	StageVerification = "verification"
)

// QueryExecutor runs already-gated SQL and materializes the rows.
type QueryExecutor interface {
	Execute(ctx context.Context, sqlText string) (executor.Result, error)
}

// Response is the sole artifact of a successful run.
type Response struct {
	SQL          string             `json:"sql"`
	Data         []map[string]any   `json:"data"`
	Verification VerificationResult `json:"verification"`
}

type Pipeline struct {
	schemaProvider schema.Provider
	completions    llm.Client
	queryExecutor  QueryExecutor
	logger         *slog.Logger
	sampleRows     int
}

func New(provider schema.Provider, completions llm.Client, queryExecutor QueryExecutor, logger *slog.Logger, sampleRows int) *Pipeline {
	if sampleRows <= 0 {
		sampleRows = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		schemaProvider: provider,
		completions:    completions,
		queryExecutor:  queryExecutor,
		logger:         logger,
		sampleRows:     sampleRows,
	}
}

// Run executes the full pipeline for one question. All completion calls use
// temperature 0: generation and validation for reproducibility, verification
// because a safety-adjacent judgment gets no creative variance either.
func (p *Pipeline) Run(ctx context.Context, question string) (Response, error) {
	observability.ObservePipelineStart()

	snapshot, err := p.schemaProvider.Snapshot(ctx)
	if err != nil {
		return p.fail(ctx, StageSchema, err)
	}

	generated, err := p.complete(ctx, prompt.KindGeneration, prompt.Generation(snapshot.Render(), question))
	if err != nil {
		return p.fail(ctx, StageGeneration, err)
	}

	sqlText := sqlguard.StripFences(generated)
	if err := sqlguard.Sanitize(sqlText); err != nil {
		return p.fail(ctx, StageSanitize, err)
	}

	verdict, err := p.complete(ctx, prompt.KindValidation, prompt.Validation(sqlText))
	if err != nil {
		return p.fail(ctx, StageValidation, err)
	}
	if safetyVerdictRejects(verdict) {
		return p.fail(ctx, StageValidation, &ValidationFailedError{Explanation: verdict})
	}

	result, err := p.queryExecutor.Execute(ctx, sqlText)
	if err != nil {
		var timeoutErr *executor.QueryTimeoutError
		if errors.As(err, &timeoutErr) {
			observability.ObserveQueryDuration(timeoutErr.Elapsed, true)
		}
		return p.fail(ctx, StageExecution, err)
	}
	observability.ObserveQueryDuration(result.Duration, false)

	judgment, err := p.complete(ctx, prompt.KindVerification, prompt.Verification(question, sqlText, sampleOf(result.Rows, p.sampleRows)))
	if err != nil {
		return p.fail(ctx, StageVerification, err)
	}
	verification := classifyVerification(judgment)
	observability.ObserveVerificationStatus(verification.Status)

	p.logger.InfoContext(ctx, "pipeline_complete",
		slog.String("sql", sqlText),
		slog.Int("rows", len(result.Rows)),
		slog.String("verification_status", verification.Status),
		slog.Float64("verification_confidence", verification.Confidence),
	)

	return Response{
		SQL:          sqlText,
		Data:         result.Rows,
		Verification: verification,
	}, nil
}

func (p *Pipeline) complete(ctx context.Context, kind, rendered string) (string, error) {
	start := time.Now()
	text, err := p.completions.Complete(ctx, rendered, 0)
	observability.ObserveCompletion(kind, time.Since(start))
	if err != nil {
		return "", err
	}
	return text, nil
}

func (p *Pipeline) fail(ctx context.Context, stage string, err error) (Response, error) {
	observability.ObservePipelineFailure(stage)
	p.logger.WarnContext(ctx, "pipeline_aborted",
		slog.String("stage", stage),
		slog.Any("error", err),
	)
	return Response{}, fmt.Errorf("%s: %w", stage, err)
}

func sampleOf(rows []map[string]any, limit int) []map[string]any {
	if len(rows) <= limit {
		return rows
	}
	return rows[:limit]
}
