package httputil

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"io"
	"net/http"

	"github.com/matzehuels/seamline/pkg/errors"
)

// MaxBodySize bounds request bodies read by [DecodeJSON].
const MaxBodySize = 8 << 20

// ErrorBody is the JSON body written by [WriteError].
type ErrorBody struct {
	Code  errors.Code `json:"code,omitempty"`
	Error string      `json:"error"`
}

// StatusFor returns the HTTP status code matching err.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case goerrors.Is(err, context.Canceled), goerrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSpec, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidName, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidScaleShape,
		errors.ErrCodeInvalidParameterType, errors.ErrCodeUnknownParameter,
		errors.ErrCodeUnknownPanel, errors.ErrCodeUnknownEdge:
		return http.StatusBadRequest
	case errors.ErrCodeNonCurvedEdge, errors.ErrCodeDegenerateEdge, errors.ErrCodeNonInvertibleValue:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v as indented JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// WriteError writes err as an [ErrorBody]. Internal errors are reported
// without their cause.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	body := ErrorBody{Code: errors.GetCode(err), Error: errors.UserMessage(err)}
	if status == http.StatusInternalServerError {
		body.Error = http.StatusText(status)
	}
	WriteJSON(w, status, body)
}

// DecodeJSON decodes the request body into v. Unknown fields, trailing data
// and bodies over [MaxBodySize] are rejected with INVALID_INPUT.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New(errors.ErrCodeInvalidInput, "request body must contain a single JSON value")
	}
	return nil
}
