/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Snapshot computation over loaded scenarios
- Error mapping (400 for bad input, 500 for store failures)
- Catalog row endpoints and bulk import
- Scenario listing, loading and reset
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/budget/store"
	"github.com/warp/budget-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*Handler, *httptest.Server) {
	t.Helper()
	h := NewHandler(store.NewMemory())
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return h, srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func loadScenario(t *testing.T, srv *httptest.Server, id string) {
	t.Helper()
	code := do(t, srv, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "`+id+`"}`, nil)
	require.Equal(t, http.StatusOK, code)
}

// =============================================================================
// SNAPSHOT
// =============================================================================

func TestGetSnapshot_QAScenario(t *testing.T) {
	// GIVEN: The qa-split scenario
	// WHEN:  The 2025 snapshot is requested
	// THEN:  $1350 of $12000 is spent, all in June under Data Quality
	_, srv := newTestServer(t)
	loadScenario(t, srv, "qa-split")

	var snap SnapshotDTO
	code := do(t, srv, http.MethodGet, "/api/clients/demo/snapshot?year=2025", "", &snap)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "demo", snap.ClientID)
	assert.Equal(t, "USD", snap.Currency)
	assert.InDelta(t, 12000, snap.PlanTotal, 1e-9)
	assert.InDelta(t, 1350, snap.ActualTotal, 1e-9)
	assert.InDelta(t, 10650, snap.Remaining, 1e-9)
	assert.InDelta(t, 0.1125, snap.Utilization, 1e-9)
	assert.InDelta(t, 1350, snap.Monthly.Actual[5], 1e-9)
	assert.InDelta(t, 1350, snap.ScopeTotals["Data Quality"], 1e-9)
	require.NotNil(t, snap.AsOfDate)
	assert.Equal(t, "2025-06-15", *snap.AsOfDate)

	require.Len(t, snap.Roles, 1)
	assert.Equal(t, "qa", snap.Roles[0].ID)
	assert.InDelta(t, 12000, snap.Roles[0].Allocated, 1e-9)
	assert.Equal(t, 1, snap.Counts["data_quality"].Spent)
}

func TestGetSnapshot_MidYearSwap(t *testing.T) {
	// GIVEN: Two people sharing a pool across a leap year, 183 days each
	// THEN:  Plans split evenly and effort is priced at the hourly rate
	_, srv := newTestServer(t)
	loadScenario(t, srv, "mid-year-swap")

	var snap SnapshotDTO
	code := do(t, srv, http.MethodGet, "/api/clients/demo/snapshot?year=2024", "", &snap)
	require.Equal(t, http.StatusOK, code)

	assert.InDelta(t, 1200, snap.PlanTotal, 1e-9)
	assert.InDelta(t, 500, snap.ActualTotal, 1e-9)
	for _, p := range snap.People {
		if p.PersonID == "ana" || p.PersonID == "ben" {
			assert.InDelta(t, 600, p.Plan, 1e-9, p.PersonID)
		}
	}
}

func TestGetSnapshot_MixedModes(t *testing.T) {
	// GIVEN: The mixed-modes scenario with an agency rate and an unknown owner
	// THEN:  Only the priced agency unit counts as unmapped spend
	_, srv := newTestServer(t)
	loadScenario(t, srv, "mixed-modes")

	var snap SnapshotDTO
	code := do(t, srv, http.MethodGet, "/api/clients/demo/snapshot?year=2025", "", &snap)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "EUR", snap.Currency)
	assert.Len(t, snap.Roles, 3)
	assert.Equal(t, 1, snap.UnmappedRecords)
	assert.InDelta(t, 1300, snap.UnmappedTotal, 1e-9, "14h at 650/day")
	assert.Positive(t, snap.ActualTotal)
	assert.Contains(t, snap.Options.Entities, "EMEA")
}

func TestGetSnapshot_InvalidYear(t *testing.T) {
	_, srv := newTestServer(t)

	for _, year := range []string{"abc", "0", "10000"} {
		var resp ErrorResponse
		code := do(t, srv, http.MethodGet, "/api/clients/demo/snapshot?year="+year, "", &resp)
		assert.Equal(t, http.StatusBadRequest, code, year)
		assert.NotEmpty(t, resp.Details, year)
	}
}

func TestGetSnapshot_FetchFailure(t *testing.T) {
	// GIVEN: A store whose campaign table cannot be read
	// THEN:  500, never a partial snapshot
	m := store.NewMemory()
	m.FailOn["campaign_units"] = errors.New("disk on fire")
	srv := httptest.NewServer(NewRouter(NewHandler(m)))
	defer srv.Close()

	var resp ErrorResponse
	code := do(t, srv, http.MethodGet, "/api/clients/demo/snapshot?year=2025", "", &resp)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, resp.Details, "disk on fire")
}

// =============================================================================
// CATALOG
// =============================================================================

func TestCreateRoles_ThenList(t *testing.T) {
	_, srv := newTestServer(t)

	var saved SaveResponse
	code := do(t, srv, http.MethodPost, "/api/clients/acme/roles?year=2025",
		`[{"id": "QA", "pool_amount": 12000, "display_order": 2}, {"id": "Ops", "pool_amount": "500.50", "display_order": 1}]`, &saved)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 2, saved.Saved)

	var roles []RoleDTO
	code = do(t, srv, http.MethodGet, "/api/clients/acme/roles?year=2025", "", &roles)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, roles, 2)
	assert.Equal(t, "Ops", roles[0].ID, "display order")
	assert.InDelta(t, 500.5, roles[0].PoolAmount, 1e-9)
	assert.Equal(t, "USD", roles[1].Currency)

	code = do(t, srv, http.MethodGet, "/api/clients/acme/roles?year=2024", "", &roles)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, roles)
}

func TestCreateRows_BuildSnapshot(t *testing.T) {
	// GIVEN: The QA example posted table by table
	// THEN:  The snapshot matches the scenario load
	_, srv := newTestServer(t)

	posts := []struct{ path, body string }{
		{"/roles?year=2025", `[{"id": "QA", "pool_amount": 12000}]`},
		{"/people", `[{"id": "A", "name": "Alice"}, {"id": "B", "name": "Bob"}]`},
		{"/assignments?year=2025", `[{"role_id": "QA", "person_id": "A"}, {"role_id": "QA", "person_id": "B"}]`},
		{"/rates?year=2025", `[{"person_id": "A", "daily_rate": 100}]`},
		{"/activities/data-quality", `[{"person_id": "A", "work_hours": 70, "date": "2025-06-15"}]`},
	}
	for _, p := range posts {
		code := do(t, srv, http.MethodPost, "/api/clients/acme"+p.path, p.body, nil)
		require.Equal(t, http.StatusCreated, code, p.path)
	}

	var snap SnapshotDTO
	code := do(t, srv, http.MethodGet, "/api/clients/acme/snapshot?year=2025", "", &snap)
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 1350, snap.ActualTotal, 1e-9)
}

func TestCreateRows_Invalid(t *testing.T) {
	_, srv := newTestServer(t)

	var resp ErrorResponse
	code := do(t, srv, http.MethodPost, "/api/clients/acme/rates?year=2025", `[{"daily_rate": 10}]`, &resp)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Details, "person_id")

	code = do(t, srv, http.MethodPost, "/api/clients/acme/activities/effort-entries", `{"not": "an array"}`, &resp)
	assert.Equal(t, http.StatusBadRequest, code)

	code = do(t, srv, http.MethodPost, "/api/clients/acme/roles?year=twenty", `[]`, &resp)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestImportCatalog(t *testing.T) {
	_, srv := newTestServer(t)

	var saved SaveResponse
	code := do(t, srv, http.MethodPost, "/api/clients/acme/import", qaSplitCatalog, &saved)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 7, saved.Saved)

	// Path client wins over the document's client_id.
	var snap SnapshotDTO
	code = do(t, srv, http.MethodGet, "/api/clients/acme/snapshot?year=2025", "", &snap)
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 1350, snap.ActualTotal, 1e-9)

	var resp ErrorResponse
	code = do(t, srv, http.MethodPost, "/api/clients/acme/import", `{"roles": [`, &resp)
	assert.Equal(t, http.StatusBadRequest, code)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_ListLoadReset(t *testing.T) {
	h, srv := newTestServer(t)

	var list []ScenarioDTO
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/scenarios/", "", &list))
	assert.Len(t, list, len(scenarios))

	var current *ScenarioDTO
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/scenarios/current", "", &current))
	assert.Nil(t, current)

	loadScenario(t, srv, "mixed-modes")
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/scenarios/current", "", &current))
	require.NotNil(t, current)
	assert.Equal(t, "mixed-modes", current.ID)

	// Loading another scenario replaces the data.
	loadScenario(t, srv, "qa-split")
	var snap SnapshotDTO
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/clients/demo/snapshot?year=2025", "", &snap))
	assert.InDelta(t, 12000, snap.PlanTotal, 1e-9)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/scenarios/reset", "", nil))
	assert.Empty(t, h.currentScenario)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/clients/demo/snapshot?year=2025", "", &snap))
	assert.Zero(t, snap.PlanTotal)
	assert.Empty(t, snap.Roles)
}

func TestScenarios_Unknown(t *testing.T) {
	_, srv := newTestServer(t)

	var resp ErrorResponse
	code := do(t, srv, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "nope"}`, &resp)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Unknown scenario", resp.Error)
}

func TestScenarios_AllParse(t *testing.T) {
	h := NewHandler(store.NewMemory())
	for _, s := range scenarios {
		_, err := h.Catalogs.ParseCatalog([]byte(s.catalog), "")
		assert.NoError(t, err, s.ID)
	}
}

func TestScenarios_SQLite(t *testing.T) {
	// GIVEN: The SQLite store instead of memory
	// THEN:  Scenario load and snapshot behave the same
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer st.Close()

	srv := httptest.NewServer(NewRouter(NewHandler(st)))
	defer srv.Close()

	loadScenario(t, srv, "qa-split")
	loadScenario(t, srv, "qa-split")

	var snap SnapshotDTO
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/clients/demo/snapshot?year=2025", "", &snap))
	assert.InDelta(t, 1350, snap.ActualTotal, 1e-9)
	assert.InDelta(t, 10650, snap.Remaining, 1e-9)
}
