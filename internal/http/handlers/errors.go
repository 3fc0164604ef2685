package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	devicedomain "github.com/micro-ha/device-inventory/internal/domain/device"
)

// Codes outside the device error taxonomy, each tied to a single status.
const (
	codeServiceUnavailable = "ServiceUnavailable"
	codeMethodNotAllowed   = "MethodNotAllowed"
)

// writeServiceError translates a service error into the envelope. Causes of
// internal errors are logged and never sent to the client.
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	classified := devicedomain.Classify(err)
	if classified.Code == devicedomain.CodeInternalServerError {
		a.logger.Error(
			"request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", classified.Err,
		)
		a.refreshStore()
	}
	a.writeError(w, classified.Code.HTTPStatus(), string(classified.Code), classified.Message)
}

func (a *API) writeError(w http.ResponseWriter, status int, code string, message string) {
	if a.observer != nil {
		a.observer.ObserveError(code)
	}
	WriteError(w, status, code, message)
}

// NotFound is the fallback for unknown routes.
func (a *API) NotFound(w http.ResponseWriter, _ *http.Request) {
	a.writeError(w, http.StatusNotFound, string(devicedomain.CodeNotFound), "Resource not found.")
}

// MethodNotAllowed is the fallback for known routes hit with another method.
func (a *API) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	a.writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "Method not allowed.")
}
