/*
aggregator.go - Multi-dimensional rollup of priced spend

PURPOSE:
  Folds every priced record into running totals across five intersecting
  dimensions: month, role, entity, scope and person, plus their products.

DIMENSION KEYS:
  scope   ActivityRecord.Scope
  person  person id, or "unmapped"
  entity  the person's entity for the year, or "Unassigned"
  role    from RoleShares, or "unassigned" when the person has none
  month   0..11, only for dated records

TOTAL PRESERVATION:
  Summing any breakdown over its full key set reproduces ActualTotal.
  Monthly series are the one exception: dateless records count toward
  every non-monthly total but skip every monthly series.

  Role attribution splits an amount by the person's shares. The last share
  takes the remainder so the split always sums back to the exact amount.

SEE ALSO:
  - allocator.go: Produces RoleShares
  - spend.go: Produces Spend
*/
package budget

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SERIES - Twelve monthly buckets
// =============================================================================

type Series [12]decimal.Decimal

// Add adds amt to the month bucket.
func (s *Series) Add(month int, amt decimal.Decimal) {
	s[month] = s[month].Add(amt)
}

// Total sums the twelve buckets.
func (s Series) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s {
		total = total.Add(v)
	}
	return total
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator accumulates priced spend. Create with NewAggregator.
type Aggregator struct {
	shares   RoleShares
	entities map[PersonID]string

	ActualTotal     decimal.Decimal
	TotalHours      decimal.Decimal
	TotalDays       decimal.Decimal
	UnmappedTotal   decimal.Decimal
	UnmappedRecords int

	ScopeTotals     map[string]decimal.Decimal
	EntityTotals    map[string]decimal.Decimal
	PersonScope     map[string]map[string]decimal.Decimal
	RoleActual      map[string]decimal.Decimal
	RoleScopeActual map[string]map[string]decimal.Decimal

	MonthlyActual          Series
	MonthlyScope           map[string]*Series
	MonthlyPerson          map[string]*Series
	MonthlyEntity          map[string]*Series
	MonthlyRole            map[string]*Series
	MonthlyPersonScope     map[string]map[string]*Series
	MonthlyEntityScope     map[string]map[string]*Series
	MonthlyRoleScope       map[string]map[string]*Series
	MonthlyEntityRole      map[string]map[string]*Series
	MonthlyEntityRoleScope map[string]map[string]map[string]*Series

	// AsOf is the latest date among aggregated records.
	AsOf *TimePoint
}

// NewAggregator creates an aggregator bound to the plan-side role shares
// and the person -> entity table for the year.
func NewAggregator(shares RoleShares, entities map[PersonID]string) *Aggregator {
	if shares == nil {
		shares = RoleShares{}
	}
	if entities == nil {
		entities = map[PersonID]string{}
	}
	return &Aggregator{
		shares:                 shares,
		entities:               entities,
		ScopeTotals:            make(map[string]decimal.Decimal),
		EntityTotals:           make(map[string]decimal.Decimal),
		PersonScope:            make(map[string]map[string]decimal.Decimal),
		RoleActual:             make(map[string]decimal.Decimal),
		RoleScopeActual:        make(map[string]map[string]decimal.Decimal),
		MonthlyScope:           make(map[string]*Series),
		MonthlyPerson:          make(map[string]*Series),
		MonthlyEntity:          make(map[string]*Series),
		MonthlyRole:            make(map[string]*Series),
		MonthlyPersonScope:     make(map[string]map[string]*Series),
		MonthlyEntityScope:     make(map[string]map[string]*Series),
		MonthlyRoleScope:       make(map[string]map[string]*Series),
		MonthlyEntityRole:      make(map[string]map[string]*Series),
		MonthlyEntityRoleScope: make(map[string]map[string]map[string]*Series),
	}
}

// EntityOf returns the reporting entity for a person key.
func (a *Aggregator) EntityOf(id Identity) string {
	if !id.IsMapped() {
		return UnassignedEntity
	}
	if e, ok := a.entities[id.PersonID]; ok && e != "" {
		return e
	}
	return UnassignedEntity
}

// Add folds one priced record into every structure in lock-step.
// Zero or negative amounts are skipped.
func (a *Aggregator) Add(s Spend) {
	amount := s.Amount
	if !amount.IsPositive() {
		return
	}

	scope := s.Record.Scope
	person := s.Identity.Key()
	entity := a.EntityOf(s.Identity)

	a.ActualTotal = a.ActualTotal.Add(amount)
	a.TotalHours = a.TotalHours.Add(s.Hours)
	a.TotalDays = a.TotalDays.Add(s.Days)
	if !s.Identity.IsMapped() {
		a.UnmappedTotal = a.UnmappedTotal.Add(amount)
		a.UnmappedRecords++
	}

	addTo(a.ScopeTotals, scope, amount)
	addTo(a.EntityTotals, entity, amount)
	addNested(a.PersonScope, person, scope, amount)

	month := -1
	if d := s.Record.Date; d != nil {
		month = d.MonthIndex()
		if a.AsOf == nil || d.After(*a.AsOf) {
			asOf := *d
			a.AsOf = &asOf
		}
		a.MonthlyActual.Add(month, amount)
		series(a.MonthlyScope, scope).Add(month, amount)
		series(a.MonthlyPerson, person).Add(month, amount)
		series(a.MonthlyEntity, entity).Add(month, amount)
		series2(a.MonthlyPersonScope, person, scope).Add(month, amount)
		series2(a.MonthlyEntityScope, entity, scope).Add(month, amount)
	}

	for _, part := range a.splitByRole(s.Identity, amount) {
		addTo(a.RoleActual, part.role, part.amount)
		addNested(a.RoleScopeActual, part.role, scope, part.amount)
		if month >= 0 {
			series(a.MonthlyRole, part.role).Add(month, part.amount)
			series2(a.MonthlyRoleScope, part.role, scope).Add(month, part.amount)
			series2(a.MonthlyEntityRole, entity, part.role).Add(month, part.amount)
			series3(a.MonthlyEntityRoleScope, entity, part.role, scope).Add(month, part.amount)
		}
	}
}

type roleAmount struct {
	role   string
	amount decimal.Decimal
}

// splitByRole never drops an amount: people without shares go to the
// unassigned role.
func (a *Aggregator) splitByRole(id Identity, amount decimal.Decimal) []roleAmount {
	shares := a.shares[id.PersonID]
	if !id.IsMapped() || len(shares) == 0 {
		return []roleAmount{{role: UnassignedRole, amount: amount}}
	}

	parts := make([]roleAmount, len(shares))
	remaining := amount
	for i, sh := range shares {
		part := amount.Mul(sh.Share)
		if i == len(shares)-1 {
			part = remaining
		}
		remaining = remaining.Sub(part)
		parts[i] = roleAmount{role: string(sh.RoleID), amount: part}
	}
	return parts
}

// =============================================================================
// MAP HELPERS
// =============================================================================

func addTo(m map[string]decimal.Decimal, k string, amt decimal.Decimal) {
	m[k] = m[k].Add(amt)
}

func addNested(m map[string]map[string]decimal.Decimal, k1, k2 string, amt decimal.Decimal) {
	inner, ok := m[k1]
	if !ok {
		inner = make(map[string]decimal.Decimal)
		m[k1] = inner
	}
	inner[k2] = inner[k2].Add(amt)
}

func series(m map[string]*Series, k string) *Series {
	s, ok := m[k]
	if !ok {
		s = &Series{}
		m[k] = s
	}
	return s
}

func series2(m map[string]map[string]*Series, k1, k2 string) *Series {
	inner, ok := m[k1]
	if !ok {
		inner = make(map[string]*Series)
		m[k1] = inner
	}
	return series(inner, k2)
}

func series3(m map[string]map[string]map[string]*Series, k1, k2, k3 string) *Series {
	inner, ok := m[k1]
	if !ok {
		inner = make(map[string]map[string]*Series)
		m[k1] = inner
	}
	return series2(inner, k2, k3)
}

func sumValues(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}
