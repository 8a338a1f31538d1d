package github

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

// classify converts a go-github error into an *entities.HostError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return entities.NewHostError(op, entities.ReasonTransportError, err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return entities.NewHostError(op, entities.ReasonMalformedResponse, err)
	}

	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return entities.NewHostError(op, reasonForStatus(errResp.Response.StatusCode), err)
	}

	return entities.NewHostError(op, entities.ReasonTransportError, err)
}

func reasonForStatus(status int) entities.ReasonCode {
	switch status {
	case http.StatusUnauthorized:
		return entities.ReasonUnauthenticated
	case http.StatusForbidden:
		return entities.ReasonForbidden
	case http.StatusNotFound, http.StatusGone:
		return entities.ReasonNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return entities.ReasonUnprocessable
	default:
		return entities.ReasonTransportError
	}
}

// isEmptyRepository recognizes the 409 returned when listing commits of a
// repository without any commit.
func isEmptyRepository(err error) bool {
	var errResp *gh.ErrorResponse
	if !errors.As(err, &errResp) || errResp.Response == nil {
		return false
	}
	return errResp.Response.StatusCode == http.StatusConflict &&
		strings.Contains(strings.ToLower(errResp.Message), "empty")
}
