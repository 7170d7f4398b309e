// cmd/api/routes.go
package main

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the middleware chain.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → logRequests → rateLimit → router
//
// Exports live under /v1/export because httprouter does not allow a static
// segment next to the :id wildcard. ctx bounds the middleware's background
// work.
func (app *applicationDependencies) routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	minerals := newCatalogHandlers(app, app.models.Minerals)
	router.HandlerFunc(http.MethodGet, "/v1/minerals", minerals.list)
	router.HandlerFunc(http.MethodPost, "/v1/minerals", minerals.create)
	router.HandlerFunc(http.MethodGet, "/v1/minerals/:id", minerals.show)
	router.HandlerFunc(http.MethodPut, "/v1/minerals/:id", minerals.update)
	router.HandlerFunc(http.MethodDelete, "/v1/minerals/:id", minerals.delete)
	router.HandlerFunc(http.MethodGet, "/v1/minerals/:id/qr", app.mineralQRHandler)
	router.HandlerFunc(http.MethodGet, "/v1/export/minerals", minerals.export)

	games := newCatalogHandlers(app, app.models.Games)
	router.HandlerFunc(http.MethodGet, "/v1/games", games.list)
	router.HandlerFunc(http.MethodPost, "/v1/games", games.create)
	router.HandlerFunc(http.MethodGet, "/v1/games/:id", games.show)
	router.HandlerFunc(http.MethodPut, "/v1/games/:id", games.update)
	router.HandlerFunc(http.MethodDelete, "/v1/games/:id", games.delete)
	router.HandlerFunc(http.MethodGet, "/v1/export/games", games.export)

	return app.recoverPanic(app.logRequests(app.rateLimit(ctx, router)))
}
