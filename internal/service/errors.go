package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors surfaced to controllers. Validation failures carry
// per-field detail and get their own type below.
var (
	ErrPermissionDenied = errors.New("only students may take tests")
	ErrNotFound         = errors.New("record not found")
	ErrNotOwner         = errors.New("attempt belongs to a different student")
	ErrAlreadySubmitted = errors.New("attempt has already been submitted")
	ErrAlreadyFinalized = errors.New("student level has already been determined")
	ErrNoQuestions      = errors.New("test has no questions")
	// ErrNoPlacementCourse is an operator configuration error, not a
	// per-student failure: the affected account is left untouched.
	ErrNoPlacementCourse = errors.New("no placement course is configured")
)

// ValidationError rejects a whole answer submission. Fields maps an input
// field name (question_<id>) to its message; the attempt is not mutated.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
