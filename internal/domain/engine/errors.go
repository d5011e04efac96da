package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the two fatal empty-result conditions. Both mean the
// reference data has no coverage for this case; neither is retryable here.
var (
	ErrNoRubricMatches = errors.New("no rubric matched the case symptoms")
	ErrEmptyRemedyPool = errors.New("no remedies graded against the selected rubrics")
)

// NoCoverageError wraps an empty-result sentinel with enough context to
// diagnose the data gap: the symptoms attempted and the repertory searched.
type NoCoverageError struct {
	Stage        string
	Repertory    string
	SymptomCodes []string
	Err          error
}

func (e *NoCoverageError) Error() string {
	return fmt.Sprintf("%s: %v (repertory=%s symptoms=[%s])",
		e.Stage, e.Err, e.Repertory, strings.Join(e.SymptomCodes, ", "))
}

func (e *NoCoverageError) Unwrap() error { return e.Err }

// IsNoCoverage reports whether err is one of the empty-result conditions, as
// opposed to a storage or transport failure.
func IsNoCoverage(err error) bool {
	return errors.Is(err, ErrNoRubricMatches) || errors.Is(err, ErrEmptyRemedyPool)
}
