package scoring

import (
	"errors"
	"fmt"
	"strings"
)

var ErrConfigNotFound = errors.New("scoring: configuration not found")

// ValidationError reports malformed configuration or input.
// Problems carry one message per violated invariant so callers can render
// actionable messages.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("scoring: invalid configuration: %s", strings.Join(e.Problems, "; "))
}

// IncompleteScoreError is returned when a criterion in the active
// configuration has no corresponding value. Evaluation is all-or-nothing so
// partial submissions cannot be silently under-scored.
type IncompleteScoreError struct {
	Missing []string
}

func (e *IncompleteScoreError) Error() string {
	return fmt.Sprintf("scoring: missing criterion values: %s", strings.Join(e.Missing, ", "))
}
