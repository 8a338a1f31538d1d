package entities

import (
	"errors"
	"fmt"
)

// ReasonCode classifies why a reference, repository or action failed.
type ReasonCode string

const (
	ReasonMalformed         ReasonCode = "malformed"
	ReasonNoCredential      ReasonCode = "no_credential"
	ReasonNotFound          ReasonCode = "not_found"
	ReasonForbidden         ReasonCode = "forbidden"
	ReasonUnauthenticated   ReasonCode = "unauthenticated"
	ReasonUnprocessable     ReasonCode = "unprocessable"
	ReasonMalformedResponse ReasonCode = "malformed_response"
	ReasonTransportError    ReasonCode = "transport_error"
)

var (
	// ErrLicenseAuthorityUnreachable aborts a run: every group shares the
	// enterprise seat pool, so there is no partial substitute for it.
	ErrLicenseAuthorityUnreachable = errors.New("license authority unreachable")

	// ErrBillingProductRequired marks a billing request rejected only because
	// it did not name a security product.
	ErrBillingProductRequired = errors.New("billing request requires a security product")
)

// HostError is a classified failure returned by a RepoHost implementation.
type HostError struct {
	Op     string
	Reason ReasonCode
	Err    error
}

// NewHostError wraps err with an operation name and reason.
func NewHostError(op string, reason ReasonCode, err error) *HostError {
	return &HostError{Op: op, Reason: reason, Err: err}
}

func (e *HostError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
}

func (e *HostError) Unwrap() error {
	return e.Err
}

// ReasonOf maps any error to a reason code. Unclassified errors count as
// transport errors.
func ReasonOf(err error) ReasonCode {
	if err == nil {
		return ""
	}

	var hostErr *HostError
	if errors.As(err, &hostErr) && hostErr.Reason != "" {
		return hostErr.Reason
	}
	if errors.Is(err, ErrMalformedReference) {
		return ReasonMalformed
	}
	if errors.Is(err, ErrBillingProductRequired) {
		return ReasonUnprocessable
	}
	return ReasonTransportError
}

// Stage names the pipeline step that produced an InvalidReference.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageRoute   Stage = "route"
	StageAnalyze Stage = "analyze"
)

// InvalidReference records an input or repository that could not be used.
// It never aborts the run.
type InvalidReference struct {
	Input  string
	Reason ReasonCode
	Stage  Stage
	Detail string
}

// NewInvalidReference builds a record from an error, classifying it.
func NewInvalidReference(input string, stage Stage, err error) InvalidReference {
	record := InvalidReference{Input: input, Reason: ReasonOf(err), Stage: stage}
	if err != nil {
		record.Detail = err.Error()
	}
	return record
}
