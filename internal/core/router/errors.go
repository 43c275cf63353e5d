package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

// statusFor maps a Kind to the HTTP status code the router emits for it.
func statusFor(kind nldierrors.Kind) int {
	switch kind {
	case nldierrors.NotFound:
		return http.StatusNotFound
	case nldierrors.InvalidInput:
		return http.StatusBadRequest
	case nldierrors.RemoteTimeout:
		return http.StatusGatewayTimeout
	case nldierrors.DatabaseUnavailable, nldierrors.RemoteServiceError, nldierrors.GeometryError,
		nldierrors.ConfigurationError, nldierrors.Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the small JSON body emitted for every non-2xx response.
// No stack traces or wrapped causes ever reach the wire.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wireMessage returns the short, pre-set Message of a wrapped *nldierrors.Error,
// never its Cause. Errors that don't carry one (which should not happen once a
// package has wrapped them in a Kind) fall back to a generic message rather
// than risk leaking an unreviewed Error() string onto the wire.
func wireMessage(err error) string {
	var e *nldierrors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// writeError logs the error once with its kind, request path, and full
// cause chain, then writes the mapped status code and a JSON body carrying
// only the error's wire-safe Message, never its wrapped Cause.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := nldierrors.KindOf(err)
	status := statusFor(kind)

	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.ErrorContext(r.Context(), "request failed",
		"path", r.URL.Path, "kind", string(kind), "err", err.Error())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Code: string(kind), Message: wireMessage(err)})
}

// writeNotAcceptable handles the 406 case: an unacceptable Accept header
// or f= query parameter, which is not modeled as an nldierrors.Kind since
// it is a pure content-negotiation failure, never a domain error.
func writeNotAcceptable(w http.ResponseWriter, format string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotAcceptable)
	_ = json.NewEncoder(w).Encode(errorBody{
		Code:    "NotAcceptable",
		Message: "unsupported format: " + format,
	})
}
