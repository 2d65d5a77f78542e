// Package convert turns raw service records into canonical dry scores.
//
// One conversion function exists per source format. Each resolves the chart
// through the lookup layer, validates and normalizes fields via explicit
// lookup tables, and either emits {Song, Chart, DryScore} or a classified
// failure.
package convert

import (
	"errors"
	"fmt"
)

// FailureKind classifies a per-record conversion failure.
type FailureKind string

// Failure kinds. Per-record failures never abort a batch; they accumulate
// into the import result.
const (
	// KindNotFound: the chart could not be resolved. A normal outcome —
	// skip the record and report it.
	KindNotFound FailureKind = "NotFound"

	// KindInvalidScore: a value was outside its valid domain.
	KindInvalidScore FailureKind = "InvalidScore"

	// KindInternal: a catalog integrity violation, e.g. a chart whose
	// parent song does not exist. Escalated to operators.
	KindInternal FailureKind = "InternalInconsistency"
)

// Failure is a classified per-record conversion failure carrying the raw
// record for external reporting or retry.
type Failure struct {
	Kind    FailureKind
	Message string
	Record  interface{}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// NotFound builds a chart-not-found failure.
func NotFound(record interface{}, format string, args ...interface{}) *Failure {
	return &Failure{Kind: KindNotFound, Message: fmt.Sprintf(format, args...), Record: record}
}

// InvalidScore builds an out-of-domain value failure.
func InvalidScore(record interface{}, format string, args ...interface{}) *Failure {
	return &Failure{Kind: KindInvalidScore, Message: fmt.Sprintf(format, args...), Record: record}
}

// Internal builds a catalog inconsistency failure.
func Internal(record interface{}, format string, args ...interface{}) *Failure {
	return &Failure{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Record: record}
}

// AsFailure extracts a classified Failure from err, if any.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// FatalError aborts an entire import: the batch payload itself was
// malformed, before any record could be processed. Distinguished from
// per-record failures, which never abort the batch.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal import error: %s", e.Message)
}

// Fatal builds a batch-level fatal error.
func Fatal(format string, args ...interface{}) *FatalError {
	return &FatalError{Message: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err is a batch-level fatal error.
func IsFatal(err error) bool {
	var f *FatalError
	return errors.As(err, &f)
}
