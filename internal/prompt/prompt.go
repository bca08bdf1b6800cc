// Package prompt renders the three fixed prompts the pipeline sends to the
// language model. Inputs are interpolated verbatim; the prompts themselves are
// the only instruction surface the generator sees.
package prompt

import (
	"encoding/json"
	"fmt"
)

// Kind labels a prompt for logging and metrics.
const (
	KindGeneration   = "generation"
	KindValidation   = "validation"
	KindVerification = "verification"
)

const generationTemplate = `You are a SQL expert. Given the following database schema, generate a safe, deterministic, and correct SQL SELECT query for the user's question.

Rules:
- SELECT statements only, never modify data.
- No SELECT *; name every column explicitly.
- Every field or aggregation the question asks for must appear in the output.
- Use consistent, non-conflicting table aliases.
- Always end the query with LIMIT 100.
- Use only the provided schema.
- Output only the SQL, no prose and no markdown.

Schema:
%s
Question: %s`

const validationTemplate = `You are a SQL safety validator. Given this SQL query, does it violate any of these rules: no modifications, no SELECT *, no subqueries without WHERE, only use provided schema? Output 'valid', 'warning', or 'invalid' and a short reason.
SQL: %s`

const verificationTemplate = `You are a data verification agent. Given the SQL, the user's question, and the result rows, analyze if the data answers the question, check for anomalies, and explain your reasoning. Output status (valid/warning/invalid), confidence (0-1), and a clear explanation.
Question: %s
SQL: %s
Rows: %s`

// Generation builds the question-to-SQL prompt from the rendered schema text.
func Generation(schemaText, question string) string {
	return fmt.Sprintf(generationTemplate, schemaText, question)
}

// Validation builds the advisory safety-verdict prompt for generated SQL.
func Validation(sql string) string {
	return fmt.Sprintf(validationTemplate, sql)
}

// Verification builds the post-execution judgment prompt. Rows are rendered
// as JSON so the model sees column names alongside values.
func Verification(question, sql string, rows []map[string]any) string {
	rendered, err := json.Marshal(rows)
	if err != nil {
		// Row values come straight from database/sql scans and always
		// marshal; fall back to an empty list rather than failing the run.
		rendered = []byte("[]")
	}
	return fmt.Sprintf(verificationTemplate, question, sql, string(rendered))
}
