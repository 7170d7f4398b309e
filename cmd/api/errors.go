// cmd/api/errors.go
// This file contains all error-response helpers for the application.
// Keeping error helpers in a dedicated file makes them easy to find and extend.
package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aoideee/catalogs/internal/data"
)

// logError logs an internal error at ERROR level with the request method and URL for context.
func (app *applicationDependencies) logError(r *http.Request, err error) {
	app.logger.Error(err.Error(),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
		slog.String("request_id", requestID(r)),
	)
}

// errorResponse sends a JSON error envelope with the given status code and message.
// It is the low-level building block used by all the specific error helpers below.
func (app *applicationDependencies) errorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	data := envelope{"error": message}
	err := app.writeJSON(w, status, data, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse logs a 500-level error and sends a generic message to the client.
// We never expose internal error details to the client for security reasons.
func (app *applicationDependencies) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

// notFoundResponse sends a 404 Not Found error.
func (app *applicationDependencies) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

// recordNotFoundResponse sends a 404 naming the identifier that was looked up.
func (app *applicationDependencies) recordNotFoundResponse(w http.ResponseWriter, r *http.Request, err *data.NotFoundError) {
	app.errorResponse(w, r, http.StatusNotFound, err.Error())
}

// methodNotAllowedResponse sends a 405 Method Not Allowed error.
func (app *applicationDependencies) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

// badRequestResponse sends a 400 Bad Request error with the error message from the caller.
func (app *applicationDependencies) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// decodeErrorResponse answers a body that could not be decoded. Field type
// mismatches are reported as validation failures, everything else as 400.
func (app *applicationDependencies) decodeErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *data.ValidationError
	if errors.As(err, &validationErr) {
		app.failedValidationResponse(w, r, map[string]string{validationErr.Field: validationErr.Reason})
		return
	}
	app.badRequestResponse(w, r, err)
}

// failedValidationResponse sends a 422 Unprocessable Entity response containing
// the field-level validation errors.
func (app *applicationDependencies) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

// editConflictResponse sends a 409 Conflict when an identifier is already taken.
func (app *applicationDependencies) editConflictResponse(w http.ResponseWriter, r *http.Request, err *data.ConflictError) {
	app.errorResponse(w, r, http.StatusConflict, err.Error())
}

// rateLimitExceededResponse sends a 429 Too Many Requests error.
func (app *applicationDependencies) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

// catalogErrorResponse maps the catalog error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is treated as a server error.
func (app *applicationDependencies) catalogErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *data.ValidationError
		conflictErr   *data.ConflictError
		notFoundErr   *data.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		app.failedValidationResponse(w, r, map[string]string{validationErr.Field: validationErr.Reason})
	case errors.As(err, &conflictErr):
		app.editConflictResponse(w, r, conflictErr)
	case errors.As(err, &notFoundErr):
		app.recordNotFoundResponse(w, r, notFoundErr)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
