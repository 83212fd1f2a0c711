/*
handlers.go - HTTP API handlers for the budget execution engine

PURPOSE:
  Exposes snapshot computation and catalog maintenance via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  budget engine and the catalog factory.

ENDPOINTS:
  Snapshot:
    GET    /api/clients/{client}/snapshot?year=YYYY   Full snapshot

  Catalog (bodies are JSON arrays of factory row objects, ?year= applies
  to rows without one):
    GET    /api/clients/{client}/roles?year=YYYY
    POST   /api/clients/{client}/roles
    POST   /api/clients/{client}/assignments
    POST   /api/clients/{client}/people
    POST   /api/clients/{client}/rates
    POST   /api/clients/{client}/aliases
    POST   /api/clients/{client}/entities

  Activity:
    POST   /api/clients/{client}/activities/data-quality
    POST   /api/clients/{client}/activities/campaign-units
    POST   /api/clients/{client}/activities/effort-entries

  Bulk:
    POST   /api/clients/{client}/import             Whole catalog document

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    GET    /api/scenarios/current      Currently loaded scenario
    POST   /api/scenarios/load         Load a demo scenario
    POST   /api/scenarios/reset        Clear all data

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Record store (memory or SQLite)
  - Engine: Snapshot computation over Store
  - Catalogs: JSON to budget row conversion

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid year/client, invalid catalog rows, malformed JSON
  - 500: Store failures. A failed fetch never returns a partial snapshot.

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/factory"
)

// maxBodyBytes caps request bodies (catalog imports included).
const maxBodyBytes = 32 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    budget.Store
	Engine   *budget.Engine
	Catalogs *factory.CatalogFactory

	// AllowedOrigins configures CORS. Empty means the local dev origins.
	AllowedOrigins []string

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler over the given store.
func NewHandler(store budget.Store) *Handler {
	return &Handler{
		Store:    store,
		Engine:   budget.NewEngine(store),
		Catalogs: factory.NewCatalogFactory(),
	}
}

// =============================================================================
// SNAPSHOT HANDLERS
// =============================================================================

// GetSnapshot computes a fresh snapshot for the client and year.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	client := budget.ClientID(chi.URLParam(r, "client"))
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	snap, err := h.Engine.ComputeSnapshot(r.Context(), client, year)
	switch {
	case err == nil:
	case budget.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid snapshot request", err)
		return
	case budget.IsFetchError(err):
		writeError(w, http.StatusInternalServerError, "Failed to read snapshot inputs", err)
		return
	default:
		writeError(w, http.StatusInternalServerError, "Failed to compute snapshot", err)
		return
	}

	writeJSON(w, http.StatusOK, toSnapshotDTO(snap))
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListRoles returns the client's roles for a year.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	client := budget.ClientID(chi.URLParam(r, "client"))
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	roles, err := h.Store.Roles(r.Context(), client, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list roles", err)
		return
	}

	dtos := make([]RoleDTO, 0, len(roles))
	for _, role := range budget.SortRoles(roles) {
		dtos = append(dtos, toRoleDTO(role))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateRoles(w http.ResponseWriter, r *http.Request) {
	h.saveRows(w, r, func(d *json.Decoder, cj *factory.CatalogJSON) error { return d.Decode(&cj.Roles) })
}

func (h *Handler) CreateAssignments(w http.ResponseWriter, r *http.Request) {
	h.saveRows(w, r, func(d *json.Decoder, cj *factory.CatalogJSON) error { return d.Decode(&cj.Assignments) })
}

func (h *Handler) CreatePeople(w http.ResponseWriter, r *http.Request) {
	h.saveRows(w, r, func(d *json.Decoder, cj *factory.CatalogJSON) error { return d.Decode(&cj.People) })
}

func (h *Handler) CreateRates(w http.ResponseWriter, r *http.Request) {
	h.saveRows(w, r, func(d *json.Decoder, cj *factory.CatalogJSON) error { return d.Decode(&cj.Rates) })
}

func (h *Handler) CreateAliases(w http.ResponseWriter, r *http.Request) {
	h.saveRows(w, r, func(d *json.Decoder, cj *factory.CatalogJSON) error { return d.Decode(&cj.Aliases) })
}

func (h *Handler) CreateEntities(w http.ResponseWriter, r *http.Request) {
	h.saveRows(w, r, func(d *json.Decoder, cj *factory.CatalogJSON) error { return d.Decode(&cj.Entities) })
}

// =============================================================================
// ACTIVITY HANDLERS
// =============================================================================

func (h *Handler) CreateDataQuality(w http.ResponseWriter, r *http.Request) {
	h.saveRows(w, r, func(d *json.Decoder, cj *factory.CatalogJSON) error { return d.Decode(&cj.DataQuality) })
}

func (h *Handler) CreateCampaignUnits(w http.ResponseWriter, r *http.Request) {
	h.saveRows(w, r, func(d *json.Decoder, cj *factory.CatalogJSON) error { return d.Decode(&cj.CampaignUnits) })
}

func (h *Handler) CreateEffortEntries(w http.ResponseWriter, r *http.Request) {
	h.saveRows(w, r, func(d *json.Decoder, cj *factory.CatalogJSON) error { return d.Decode(&cj.EffortEntries) })
}

// ImportCatalog saves a whole catalog document for the client.
func (h *Handler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	client := budget.ClientID(chi.URLParam(r, "client"))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cat, err := h.Catalogs.ParseCatalog(body, client)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid catalog", err)
		return
	}

	h.save(w, r, client, cat)
}

// saveRows decodes one table from the body, validates it through the
// catalog factory and saves it.
func (h *Handler) saveRows(w http.ResponseWriter, r *http.Request, decode func(*json.Decoder, *factory.CatalogJSON) error) {
	client := budget.ClientID(chi.URLParam(r, "client"))
	cj := factory.CatalogJSON{ClientID: string(client)}

	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		cj.Year = year
	}

	if err := decode(json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)), &cj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cat, err := h.Catalogs.FromJSON(cj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid catalog rows", err)
		return
	}

	h.save(w, r, client, cat)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, client budget.ClientID, cat *factory.Catalog) {
	if err := cat.Save(r.Context(), h.Store); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save rows", err)
		return
	}

	log.Info().Str("client", string(client)).Int("rows", cat.Len()).Str("path", r.URL.Path).Msg("rows saved")
	writeJSON(w, http.StatusCreated, SaveResponse{Saved: cat.Len()})
}

// =============================================================================
// HELPERS
// =============================================================================

// yearParam reads ?year=, defaulting to the current calendar year.
func yearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return time.Now().UTC().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", budget.ErrInvalidYear, raw)
	}
	return year, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg(message)
	}
	writeJSON(w, status, resp)
}
