/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built catalogs that populate the store with realistic
	data for demos. Each scenario is a factory catalog document, so it
	exercises exactly the same parsing and validation as an import.

AVAILABLE SCENARIOS:

	qa-split:       One QA pool split evenly across two full-year people
	mixed-modes:    Proportional and manual roles, entities, aliases,
	                unmapped owners and campaign production
	mid-year-swap:  Two people sharing a pool across a leap year, one
	                leaving on July 1st and the other joining July 2nd

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Parse the scenario catalog via the factory
 3. Save every table

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mixed-modes"}

	GET /api/clients/demo/snapshot?year=2025

ADDING NEW SCENARIOS:
 1. Add a catalog JSON constant
 2. Add an entry to 'scenarios' with ID, name, description and catalog

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Catalog endpoints
  - factory/catalog.go: Catalog JSON schema
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

var errUnknownScenario = errors.New("unknown scenario")

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	catalog string
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "qa-split",
			Name:        "QA Split",
			Description: "$12,000 QA pool split over two full-year people; 70 data-quality hours at $100/day",
			ClientID:    "demo",
			Year:        2025,
		},
		catalog: qaSplitCatalog,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "mixed-modes",
			Name:        "Mixed Modes",
			Description: "Proportional and manual roles, entities, aliases, unmapped owners and campaign production",
			ClientID:    "demo",
			Year:        2025,
		},
		catalog: mixedModesCatalog,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "mid-year-swap",
			Name:        "Mid-Year Swap",
			Description: "One person leaves July 1st, another joins July 2nd (2024, 183 days each)",
			ClientID:    "demo",
			Year:        2024,
		},
		catalog: midYearSwapCatalog,
	},
}

const qaSplitCatalog = `{
	"client_id": "demo",
	"year": 2025,
	"currency": "USD",
	"roles": [{"id": "qa", "name": "QA", "pool_amount": 12000}],
	"people": [{"id": "ana", "name": "Ana"}, {"id": "ben", "name": "Ben"}],
	"assignments": [
		{"id": "qa-ana", "role_id": "qa", "person_id": "ana"},
		{"id": "qa-ben", "role_id": "qa", "person_id": "ben"}
	],
	"rates": [{"id": "rate-ana", "person_id": "ana", "daily_rate": 100}],
	"data_quality": [{"id": "dq-1", "person_id": "ana", "work_hours": 70, "date": "2025-06-15"}]
}`

const mixedModesCatalog = `{
	"client_id": "demo",
	"year": 2025,
	"currency": "EUR",
	"roles": [
		{"id": "qa", "name": "QA", "pool_amount": 24000, "display_order": 1},
		{"id": "prod", "name": "Production", "pool_amount": 50000, "display_order": 2},
		{"id": "ops", "name": "Operations", "pool_amount": 10000, "display_order": 3}
	],
	"people": [
		{"id": "ana", "name": "Ana"},
		{"id": "ben", "name": "Ben"},
		{"id": "cleo", "name": "Cleo"},
		{"id": "dev", "name": "Dev"}
	],
	"assignments": [
		{"id": "qa-ana", "role_id": "qa", "person_id": "ana"},
		{"id": "qa-ben", "role_id": "qa", "person_id": "ben", "start_date": "2025-04-01"},
		{"id": "prod-ana", "role_id": "prod", "person_id": "ana", "allocation_pct": 40},
		{"id": "prod-cleo", "role_id": "prod", "person_id": "cleo", "allocation_amount": 25000},
		{"id": "ops-cleo", "role_id": "ops", "person_id": "cleo", "end_date": "2025-09-30"}
	],
	"rates": [
		{"id": "rate-ana", "person_id": "ana", "daily_rate": 420},
		{"id": "rate-ben", "person_id": "ben", "daily_rate": 380},
		{"id": "rate-cleo", "person_id": "cleo", "daily_rate": 510},
		{"id": "rate-dev", "person_id": "dev", "daily_rate": 300},
		{"id": "rate-agency", "owner_name": "Pixel Agency", "daily_rate": 650}
	],
	"aliases": [
		{"id": "alias-ana", "owner_name": "Ana Lopez", "person_id": "ana"},
		{"id": "alias-cleo", "owner_name": "C. Martin", "person_id": "cleo"}
	],
	"entities": [
		{"id": "ent-ana", "person_id": "ana", "entity": "EMEA"},
		{"id": "ent-ben", "person_id": "ben", "entity": "EMEA"},
		{"id": "ent-cleo", "person_id": "cleo", "entity": "Americas"}
	],
	"data_quality": [
		{"id": "dq-1", "person_id": "ana", "work_hours": 28, "date": "2025-02-10"},
		{"id": "dq-2", "owner_name": "ana lopez", "work_hours": 14, "prep_hours": 3.5, "date": "2025-03-04"},
		{"id": "dq-3", "person_id": "ben", "work_hours": 35, "date": "2025-05-20"},
		{"id": "dq-4", "person_id": "ben", "work_hours": 0, "date": "2025-05-21"}
	],
	"campaign_units": [
		{"id": "cu-1", "owner_name": "C. Martin", "hours_total": 21, "date": "2025-03-15", "brand": "Nova", "market": "US", "segment": "Retail"},
		{"id": "cu-2", "person_id": "ana", "hours_total": 10.5, "date": "2025-04-02", "brand": "Nova", "market": "DE"},
		{"id": "cu-3", "owner_name": "Pixel Agency", "hours_total": 14, "date": "2025-06-30", "brand": "Orbit", "workstream": "Lifecycle"},
		{"id": "cu-4", "owner_name": "Unknown Freelancer", "hours_total": 7, "date": "2025-07-01", "brand": "Orbit"}
	],
	"effort_entries": [
		{"id": "ef-1", "person_id": "cleo", "hours": 14, "date": "2025-08-12", "workstream": "Migration"},
		{"id": "ef-2", "person_id": "dev", "hours": 7, "date": "2025-09-01"},
		{"id": "ef-3", "person_id": "ben", "hours": 3.5}
	]
}`

const midYearSwapCatalog = `{
	"client_id": "demo",
	"year": 2024,
	"currency": "USD",
	"roles": [{"id": "support", "name": "Support", "pool_amount": 1200}],
	"people": [{"id": "ana", "name": "Ana"}, {"id": "ben", "name": "Ben"}],
	"assignments": [
		{"id": "support-ana", "role_id": "support", "person_id": "ana", "end_date": "2024-07-01"},
		{"id": "support-ben", "role_id": "support", "person_id": "ben", "start_date": "2024-07-02"}
	],
	"rates": [
		{"id": "rate-ana", "person_id": "ana", "daily_rate": 100},
		{"id": "rate-ben", "person_id": "ben", "daily_rate": 100}
	],
	"effort_entries": [
		{"id": "ef-1", "person_id": "ana", "hours": 14, "date": "2024-03-01"},
		{"id": "ef-2", "person_id": "ben", "hours": 21, "date": "2024-10-01"}
	]
}`

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, 0, len(scenarios))
	for _, s := range scenarios {
		dtos = append(dtos, s.ScenarioDTO)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	s, ok := findScenario(current)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.LoadScenarioByID(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, errUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LoadScenarioByID resets the store and saves the scenario's catalog.
// Also used by the server's -scenario flag.
func (h *Handler) LoadScenarioByID(ctx context.Context, id string) error {
	s, ok := findScenario(id)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownScenario, id)
	}

	cat, err := h.Catalogs.ParseCatalog([]byte(s.catalog), "")
	if err != nil {
		return fmt.Errorf("parse scenario %s: %w", id, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	h.currentScenario = ""

	if err := cat.Save(ctx, h.Store); err != nil {
		return err
	}
	h.currentScenario = id

	log.Info().Str("scenario", id).Int("rows", cat.Len()).Msg("scenario loaded")
	return nil
}
