package domain

import (
	"errors"
	"fmt"
)

// Kind classifies optimization failures so callers can react to them
// without parsing message strings.
type Kind string

const (
	KindInsufficientData      Kind = "insufficient_data"
	KindInvalidWeights        Kind = "invalid_weights"
	KindMissingReferenceRate  Kind = "missing_reference_rate"
	KindInfeasibleConstraints Kind = "infeasible_constraints"
	KindOptimizationFailed    Kind = "optimization_failed"
	KindPostProcessing        Kind = "post_processing"
	KindWindowOutOfRange      Kind = "window_out_of_range"
	KindUnknownObjective      Kind = "unknown_objective"
)

// Error is a structured failure: a kind plus the context needed to report it
// (offending asset, objective, window bounds). No partial result accompanies
// an Error - optimization either fully succeeds or fails.
type Error struct {
	Kind      Kind
	Message   string
	Asset     string // offending asset, when one is identifiable
	Objective string // objective selector, when relevant
	Err       error  // wrapped cause, if any
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Asset != "" {
		msg += fmt.Sprintf(" (asset=%s)", e.Asset)
	}
	if e.Objective != "" {
		msg += fmt.Sprintf(" (objective=%s)", e.Objective)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two domain errors by kind, so errors.Is(err, &Error{Kind: k})
// works as a kind check.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Errorf builds a domain error with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure kind from an error chain. Returns an empty
// kind for errors that did not originate in this taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
