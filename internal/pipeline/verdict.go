package pipeline

import (
	"fmt"
	"strings"
)

// ValidationFailedError reports that the model-based safety validator judged
// the generated SQL invalid. Explanation carries the full model response.
type ValidationFailedError struct {
	Explanation string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("sql validation failed: %s", e.Explanation)
}

// safetyVerdictRejects returns true iff the validator response contains the
// literal token "invalid". Anything else, including "valid", "warning", or
// text with no recognizable verdict, lets execution proceed: the validator is
// an advisory gate on top of the deterministic sanitizer, and only an
// explicit invalid signal blocks.
func safetyVerdictRejects(response string) bool {
	return strings.Contains(strings.ToLower(response), "invalid")
}

const (
	StatusValid   = "valid"
	StatusWarning = "warning"
	StatusInvalid = "invalid"
)

// VerificationResult is the structured judgment of whether the returned rows
// answer the question.
type VerificationResult struct {
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// classifyVerification turns the verifier's free text into a structured
// result. Ordered, first match wins: a standalone "valid" (occurrences inside
// "invalid" do not count) means valid at 0.95; otherwise "invalid" means
// invalid at 0.1; anything else degrades to a low-confidence warning. The
// reason is always the unmodified response text.
func classifyVerification(response string) VerificationResult {
	lowered := strings.ToLower(response)
	masked := strings.ReplaceAll(lowered, "invalid", "")
	switch {
	case strings.Contains(masked, "valid"):
		return VerificationResult{Status: StatusValid, Confidence: 0.95, Reason: response}
	case strings.Contains(lowered, "invalid"):
		return VerificationResult{Status: StatusInvalid, Confidence: 0.1, Reason: response}
	default:
		return VerificationResult{Status: StatusWarning, Confidence: 0.5, Reason: response}
	}
}
