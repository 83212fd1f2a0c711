// Package store provides Source implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	roles       []budget.Role
	assignments []budget.Assignment
	people      []budget.Person
	rates       []budget.OwnerRate
	aliases     []budget.Alias
	entities    []budget.EntityAssignment
	dataQuality []budget.DataQualityContribution
	campaign    []budget.CampaignUnit
	effort      []budget.EffortEntry

	// FailOn makes reads of the named table fail. Used to test abort paths.
	FailOn map[string]error
}

var _ budget.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{FailOn: make(map[string]error)}
}

// =============================================================================
// WRITES
// =============================================================================

func (m *Memory) AddRoles(rs ...budget.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles = append(m.roles, rs...)
}

func (m *Memory) AddAssignments(as ...budget.Assignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments = append(m.assignments, as...)
}

func (m *Memory) AddPeople(ps ...budget.Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people = append(m.people, ps...)
}

func (m *Memory) AddRates(rs ...budget.OwnerRate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = append(m.rates, rs...)
}

func (m *Memory) AddAliases(as ...budget.Alias) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliases = append(m.aliases, as...)
}

func (m *Memory) AddEntities(es ...budget.EntityAssignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities = append(m.entities, es...)
}

func (m *Memory) AddDataQuality(cs ...budget.DataQualityContribution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dataQuality = append(m.dataQuality, cs...)
}

func (m *Memory) AddCampaignUnits(us ...budget.CampaignUnit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaign = append(m.campaign, us...)
}

func (m *Memory) AddEffortEntries(es ...budget.EffortEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.effort = append(m.effort, es...)
}

// =============================================================================
// UPSERTS (budget.Writer)
// =============================================================================

func (m *Memory) SaveRoles(_ context.Context, rows ...budget.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		r.ID = budget.RoleID(newID(string(r.ID)))
		m.roles = upsert(m.roles, r, func(x budget.Role) string { return string(x.ID) })
	}
	return nil
}

func (m *Memory) SaveAssignments(_ context.Context, rows ...budget.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range rows {
		a.ID = newID(a.ID)
		m.assignments = upsert(m.assignments, a, func(x budget.Assignment) string { return x.ID })
	}
	return nil
}

func (m *Memory) SavePeople(_ context.Context, rows ...budget.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range rows {
		p.ID = budget.PersonID(newID(string(p.ID)))
		m.people = upsert(m.people, p, func(x budget.Person) string { return string(x.ID) })
	}
	return nil
}

func (m *Memory) SaveRates(_ context.Context, rows ...budget.OwnerRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		r.ID = newID(r.ID)
		m.rates = upsert(m.rates, r, func(x budget.OwnerRate) string { return x.ID })
	}
	return nil
}

func (m *Memory) SaveAliases(_ context.Context, rows ...budget.Alias) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range rows {
		a.ID = newID(a.ID)
		m.aliases = upsert(m.aliases, a, func(x budget.Alias) string { return x.ID })
	}
	return nil
}

func (m *Memory) SaveEntities(_ context.Context, rows ...budget.EntityAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range rows {
		e.ID = newID(e.ID)
		m.entities = upsert(m.entities, e, func(x budget.EntityAssignment) string { return x.ID })
	}
	return nil
}

func (m *Memory) SaveDataQuality(_ context.Context, rows ...budget.DataQualityContribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range rows {
		c.ID = newID(c.ID)
		m.dataQuality = upsert(m.dataQuality, c, func(x budget.DataQualityContribution) string { return x.ID })
	}
	return nil
}

func (m *Memory) SaveCampaignUnits(_ context.Context, rows ...budget.CampaignUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range rows {
		u.ID = newID(u.ID)
		m.campaign = upsert(m.campaign, u, func(x budget.CampaignUnit) string { return x.ID })
	}
	return nil
}

func (m *Memory) SaveEffortEntries(_ context.Context, rows ...budget.EffortEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range rows {
		e.ID = newID(e.ID)
		m.effort = upsert(m.effort, e, func(x budget.EffortEntry) string { return x.ID })
	}
	return nil
}

// Reset clears all data (for testing/demo). FailOn is kept.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles, m.assignments, m.people = nil, nil, nil
	m.rates, m.aliases, m.entities = nil, nil, nil
	m.dataQuality, m.campaign, m.effort = nil, nil, nil
	return nil
}

// =============================================================================
// READS (budget.Source)
// =============================================================================

func (m *Memory) Roles(_ context.Context, client budget.ClientID, year int) ([]budget.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FailOn["roles"]; err != nil {
		return nil, err
	}
	return filter(m.roles, func(r budget.Role) bool { return r.ClientID == client && r.Year == year }), nil
}

func (m *Memory) Assignments(_ context.Context, client budget.ClientID, year int) ([]budget.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FailOn["assignments"]; err != nil {
		return nil, err
	}
	return filter(m.assignments, func(a budget.Assignment) bool { return a.ClientID == client && a.Year == year }), nil
}

func (m *Memory) People(_ context.Context, client budget.ClientID) ([]budget.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FailOn["people"]; err != nil {
		return nil, err
	}
	return filter(m.people, func(p budget.Person) bool { return p.ClientID == client }), nil
}

func (m *Memory) OwnerRates(_ context.Context, client budget.ClientID, year int) ([]budget.OwnerRate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FailOn["owner_rates"]; err != nil {
		return nil, err
	}
	return filter(m.rates, func(r budget.OwnerRate) bool { return r.ClientID == client && r.Year == year }), nil
}

func (m *Memory) Aliases(_ context.Context, client budget.ClientID) ([]budget.Alias, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FailOn["aliases"]; err != nil {
		return nil, err
	}
	return filter(m.aliases, func(a budget.Alias) bool { return a.ClientID == client }), nil
}

func (m *Memory) EntityAssignments(_ context.Context, client budget.ClientID, year int) ([]budget.EntityAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FailOn["entity_assignments"]; err != nil {
		return nil, err
	}
	return filter(m.entities, func(e budget.EntityAssignment) bool { return e.ClientID == client && e.Year == year }), nil
}

func (m *Memory) DataQualityContributions(_ context.Context, client budget.ClientID, window budget.Period, page budget.Page) ([]budget.DataQualityContribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FailOn["data_quality_contributions"]; err != nil {
		return nil, err
	}
	rows := filter(m.dataQuality, func(c budget.DataQualityContribution) bool {
		return c.ClientID == client && budget.InWindow(c.Date, window)
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return paginate(rows, page), nil
}

func (m *Memory) CampaignUnits(_ context.Context, client budget.ClientID, window budget.Period, page budget.Page) ([]budget.CampaignUnit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FailOn["campaign_units"]; err != nil {
		return nil, err
	}
	rows := filter(m.campaign, func(u budget.CampaignUnit) bool {
		return u.ClientID == client && budget.InWindow(u.Date, window)
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return paginate(rows, page), nil
}

func (m *Memory) EffortEntries(_ context.Context, client budget.ClientID, window budget.Period, page budget.Page) ([]budget.EffortEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FailOn["effort_entries"]; err != nil {
		return nil, err
	}
	rows := filter(m.effort, func(e budget.EffortEntry) bool {
		return e.ClientID == client && budget.InWindow(e.Date, window)
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return paginate(rows, page), nil
}

// =============================================================================
// HELPERS
// =============================================================================

// filter returns a copy so callers never alias store state.
func filter[T any](rows []T, keep func(T) bool) []T {
	var out []T
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func upsert[T any](rows []T, row T, key func(T) string) []T {
	for i := range rows {
		if key(rows[i]) == key(row) {
			rows[i] = row
			return rows
		}
	}
	return append(rows, row)
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func paginate[T any](rows []T, page budget.Page) []T {
	if page.Offset >= len(rows) {
		return nil
	}
	end := len(rows)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return rows[page.Offset:end]
}
