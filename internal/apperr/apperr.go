// Package apperr defines the failure kinds shared by the subtitle and dubbing
// pipelines.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Kinds are errors so callers can match them with
// errors.Is(err, apperr.Mux).
type Kind string

func (k Kind) Error() string {
	return string(k)
}

const (
	Input            Kind = "input error"
	ExternalTool     Kind = "external tool error"
	Transcription    Kind = "transcription error"
	Synthesis        Kind = "synthesis error"
	Mux              Kind = "mux error"
	InvalidTimestamp Kind = "invalid timestamp"
)

// Error carries a kind, the thing that failed (file, language, segment) and
// the cause.
type Error struct {
	Kind    Kind
	Subject string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Subject != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Subject, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Subject != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Subject)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New wraps err with a kind and subject.
func New(kind Kind, subject string, err error) error {
	return &Error{Kind: kind, Subject: subject, Err: err}
}

// Newf builds an error of the given kind from a format string.
func Newf(kind Kind, subject, format string, args ...any) error {
	return &Error{Kind: kind, Subject: subject, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the outermost kind in err's chain, or "" when none is set.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return ""
}
