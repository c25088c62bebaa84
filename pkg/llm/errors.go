package llm

import (
	"errors"
	"fmt"
)

// Kind classifies a capability failure.
type Kind string

// Capability failure kinds.
const (
	KindNotALandmark      Kind = "not_a_landmark"
	KindNoAudioProduced   Kind = "no_audio_produced"
	KindNoImageProduced   Kind = "no_image_produced"
	KindInvalidCredential Kind = "invalid_credential"
	KindQuotaExhausted    Kind = "quota_exhausted"
	KindTransient         Kind = "transient"
)

// Retryable reports whether retrying the same operation can succeed without
// user intervention. Only transient failures qualify.
func (k Kind) Retryable() bool {
	return k == KindTransient
}

// CapabilityError is the classified failure surfaced by every capability
// operation. Callers above the client never see a raw provider error.
type CapabilityError struct {
	Kind    Kind
	Op      string // capability operation, e.g. "identify"
	Message string
	Err     error
}

func (e *CapabilityError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return string(e.Kind)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying the same operation can succeed without
// user intervention.
func (e *CapabilityError) Retryable() bool {
	return e.Kind.Retryable()
}

// NewCapabilityError builds a classified error.
func NewCapabilityError(kind Kind, op, message string, err error) *CapabilityError {
	return &CapabilityError{Kind: kind, Op: op, Message: message, Err: err}
}

// AsCapabilityError extracts a CapabilityError from an error chain.
func AsCapabilityError(err error) (*CapabilityError, bool) {
	var ce *CapabilityError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ClassifyStatus maps an HTTP-ish status code from the backend to a failure
// kind. Anything unrecognized counts as transient so the user can retry.
func ClassifyStatus(code int) Kind {
	switch {
	case code == 401 || code == 403:
		return KindInvalidCredential
	case code == 429:
		return KindQuotaExhausted
	default:
		return KindTransient
	}
}
