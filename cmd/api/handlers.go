// cmd/api/handlers.go
// This file contains the HTTP request handlers. Both catalogs share one
// generic handler set; only the QR endpoint is mineral specific.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aoideee/catalogs/internal/data"
	"github.com/aoideee/catalogs/internal/export"
	"github.com/aoideee/catalogs/internal/render"
)

// healthcheckHandler handles GET /v1/healthcheck.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	env := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.environment,
			"version":     appVersion,
		},
	}
	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// catalogHandlers serves one catalog. Handler methods cannot carry type
// parameters, so the generic state lives on this struct instead of on
// applicationDependencies.
type catalogHandlers[T data.Record[T]] struct {
	app     *applicationDependencies
	catalog *data.Catalog[T]
}

func newCatalogHandlers[T data.Record[T]](app *applicationDependencies, catalog *data.Catalog[T]) catalogHandlers[T] {
	return catalogHandlers[T]{app: app, catalog: catalog}
}

// list handles GET /v1/<plural>.
// Query string: search, sort, page, per_page and one exact-match parameter
// per filterable field.
func (h catalogHandlers[T]) list(w http.ResponseWriter, r *http.Request) {
	q, err := h.readQuery(r)
	if err != nil {
		h.app.catalogErrorResponse(w, r, err)
		return
	}

	records, err := h.catalog.List(r.Context(), q)
	if err != nil {
		h.app.catalogErrorResponse(w, r, err)
		return
	}

	schema := h.catalog.Schema
	env := envelope{
		"message":      fmt.Sprintf("found %d %s on page %d", len(records), schema.Plural, q.Page),
		schema.Plural: records,
	}
	err = h.app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
	}
}

// readQuery collects the list parameters from the query string. Empty values
// count as absent, matching readString.
func (h catalogHandlers[T]) readQuery(r *http.Request) (data.Query, error) {
	qs := r.URL.Query()
	q := data.NewQuery()

	q.Search = h.app.readString(qs, "search", "")
	q.Sort = h.app.readString(qs, "sort", "")
	for _, name := range h.catalog.Schema.FilterNames() {
		if v := h.app.readString(qs, name, ""); v != "" {
			q.Filters[name] = v
		}
	}

	var err error
	if q.Page, err = h.app.readInt(qs, "page", data.DefaultPage); err != nil {
		return q, err
	}
	if q.PerPage, err = h.app.readInt(qs, "per_page", data.DefaultPerPage); err != nil {
		return q, err
	}
	return q, nil
}

// readRecord decodes a request body into T. A JSON value of the wrong type
// for a known field becomes a *data.ValidationError on that field.
func (h catalogHandlers[T]) readRecord(w http.ResponseWriter, r *http.Request) (T, error) {
	var input T
	err := h.app.readJSON(w, r, &input)

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if f, ok := h.catalog.Schema.Field(typeErr.Field); ok {
			return input, &data.ValidationError{Field: f.Name, Reason: f.Kind.Expect()}
		}
	}
	return input, err
}

// show handles GET /v1/<plural>/:id.
func (h catalogHandlers[T]) show(w http.ResponseWriter, r *http.Request) {
	record, err := h.catalog.Get(r.Context(), h.app.readIDParam(r))
	if err != nil {
		h.app.catalogErrorResponse(w, r, err)
		return
	}

	err = h.app.writeJSON(w, http.StatusOK, envelope{h.catalog.Schema.Resource: record}, nil)
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
	}
}

// create handles POST /v1/<plural>.
// It responds 201 with the normalized record and a Location header.
func (h catalogHandlers[T]) create(w http.ResponseWriter, r *http.Request) {
	input, err := h.readRecord(w, r)
	if err != nil {
		h.app.decodeErrorResponse(w, r, err)
		return
	}

	record, err := h.catalog.Create(r.Context(), input)
	if err != nil {
		h.app.catalogErrorResponse(w, r, err)
		return
	}

	schema := h.catalog.Schema
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/%s/%s", schema.Plural, record.Identifier()))

	env := envelope{
		"message":       schema.Resource + " created",
		schema.Resource: record,
	}
	err = h.app.writeJSON(w, http.StatusCreated, env, headers)
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
	}
}

// update handles PUT /v1/<plural>/:id.
// The body must be a complete record whose identifier equals :id.
func (h catalogHandlers[T]) update(w http.ResponseWriter, r *http.Request) {
	input, err := h.readRecord(w, r)
	if err != nil {
		h.app.decodeErrorResponse(w, r, err)
		return
	}

	record, err := h.catalog.Update(r.Context(), h.app.readIDParam(r), input)
	if err != nil {
		h.app.catalogErrorResponse(w, r, err)
		return
	}

	schema := h.catalog.Schema
	env := envelope{
		"message":       schema.Resource + " updated",
		schema.Resource: record,
	}
	err = h.app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
	}
}

// delete handles DELETE /v1/<plural>/:id.
func (h catalogHandlers[T]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.catalog.Delete(r.Context(), h.app.readIDParam(r))
	if err != nil {
		h.app.catalogErrorResponse(w, r, err)
		return
	}

	schema := h.catalog.Schema
	env := envelope{
		"message":  schema.Resource + " successfully deleted",
		schema.Key: id,
	}
	err = h.app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
	}
}

// export handles GET /v1/export/<plural>?format=csv|json|xlsx.
// The whole document is rendered into memory first so a failure never
// reaches the client as a truncated file.
func (h catalogHandlers[T]) export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(h.app.readString(r.URL.Query(), "format", ""))
	if err != nil {
		h.app.catalogErrorResponse(w, r, err)
		return
	}

	records, err := h.catalog.All(r.Context())
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = export.Write(&buf, format, h.catalog.Schema, records)
	if err != nil {
		h.app.serverErrorResponse(w, r, err)
		return
	}

	disposition := "attachment; filename=" + format.Filename(h.catalog.Schema.Plural)
	h.app.writeFile(w, format.ContentType(), disposition, buf.Bytes())
}

// mineralQRHandler handles GET /v1/minerals/:id/qr.
// It responds with a PNG QR code encoding the mineral's text summary.
func (app *applicationDependencies) mineralQRHandler(w http.ResponseWriter, r *http.Request) {
	mineral, err := app.models.Minerals.Get(r.Context(), app.readIDParam(r))
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	png, err := render.QRCode(mineral.Summary())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	disposition := fmt.Sprintf("inline; filename=%s_qr.png", mineral.CatalogID)
	app.writeFile(w, "image/png", disposition, png)
}
