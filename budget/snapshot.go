/*
snapshot.go - Final snapshot assembly

PURPOSE:
  Joins the plan side (Allocation) and the actual side (Aggregator) by
  person key into one per-person table, and computes the top-level scalars.

ROW KEYS:
  The table is the union of people with a plan and people/buckets with
  actual spend. The unmapped bucket is a row of its own with zero plan.

FLAGS:
  IsUnmapped:   spend never resolved to a person
  IsUnassigned: no role allocation exists for the key
  A resolved person can be unassigned; the unmapped bucket is always both.

SCALARS:
  Remaining   = PlanTotal - ActualTotal
  Utilization = ActualTotal / PlanTotal, 0 when PlanTotal is 0
  AsOfDate    = latest date among contributing records
*/
package budget

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SNAPSHOT TYPES
// =============================================================================

// Snapshot is the complete result for one (client, year).
type Snapshot struct {
	ClientID ClientID
	Year     int
	Currency string
	AsOfDate *TimePoint

	PlanTotal            decimal.Decimal
	ActualTotal          decimal.Decimal
	Remaining            decimal.Decimal
	Utilization          decimal.Decimal
	TotalHours           decimal.Decimal
	TotalDays            decimal.Decimal
	UnmappedTotal        decimal.Decimal
	UnmappedRecords      int
	UnassignedRoleActual decimal.Decimal

	Roles      []RoleSummary
	People     []PersonRow
	Options    Options
	Actuals    *Aggregator
	Production *ProductionCalculator

	Counts           map[SourceKind]SourceCounts
	ResolutionCounts map[Resolution]int
}

// RoleSummary compares one role's pool against its attributed actuals.
type RoleSummary struct {
	RoleID      RoleID
	Name        string
	Currency    string
	Mode        AllocationMode
	Pool        decimal.Decimal
	Allocated   decimal.Decimal
	Actual      decimal.Decimal
	Remaining   decimal.Decimal
	Utilization decimal.Decimal
	ByScope     map[string]decimal.Decimal
}

// PersonRow is one line of the per-person table.
type PersonRow struct {
	Key          string
	PersonID     PersonID
	Name         string
	Entity       string
	RoleIDs      []RoleID
	RoleNames    []string
	RoleShares   []RoleShare
	Plan         decimal.Decimal
	Actual       decimal.Decimal
	Remaining    decimal.Decimal
	ScopeSpend   map[string]decimal.Decimal
	IsUnassigned bool
	IsUnmapped   bool
}

// RoleOption is a filterable role.
type RoleOption struct {
	ID   RoleID
	Name string
}

// Options lists values available for downstream filtering.
type Options struct {
	Roles    []RoleOption
	Scopes   []string
	Entities []string
}

// SourceCounts tallies record outcomes for one activity log.
type SourceCounts struct {
	Seen        int
	Ignored     int
	Unspendable int
	Spent       int
	Unmapped    int
}

// =============================================================================
// ASSEMBLER
// =============================================================================

// AssemblyInput carries everything the assembler joins.
type AssemblyInput struct {
	ClientID   ClientID
	Year       int
	Roles      []Role
	People     []Person
	Entities   map[PersonID]string
	Allocation *Allocation
	Actuals    *Aggregator
	Production *ProductionCalculator
	Counts     map[SourceKind]SourceCounts
	Resolution map[Resolution]int
}

// AssembleSnapshot builds the final snapshot.
func AssembleSnapshot(in AssemblyInput) *Snapshot {
	alloc := in.Allocation
	act := in.Actuals

	snap := &Snapshot{
		ClientID:             in.ClientID,
		Year:                 in.Year,
		AsOfDate:             act.AsOf,
		PlanTotal:            alloc.PlanTotal,
		ActualTotal:          act.ActualTotal,
		Remaining:            alloc.PlanTotal.Sub(act.ActualTotal),
		Utilization:          ratio(act.ActualTotal, alloc.PlanTotal),
		TotalHours:           act.TotalHours,
		TotalDays:            act.TotalDays,
		UnmappedTotal:        act.UnmappedTotal,
		UnmappedRecords:      act.UnmappedRecords,
		UnassignedRoleActual: act.RoleActual[UnassignedRole],
		Actuals:              act,
		Production:           in.Production,
		Counts:               in.Counts,
		ResolutionCounts:     in.Resolution,
	}

	roleNames := make(map[RoleID]string)
	for _, role := range SortRoles(in.Roles) {
		if !role.Active {
			continue
		}
		roleNames[role.ID] = role.Name
		if snap.Currency == "" {
			snap.Currency = role.Currency
		}
		actual := act.RoleActual[string(role.ID)]
		snap.Roles = append(snap.Roles, RoleSummary{
			RoleID:      role.ID,
			Name:        role.Name,
			Currency:    role.Currency,
			Mode:        alloc.Modes[role.ID],
			Pool:        role.PoolAmount,
			Allocated:   alloc.RolePlan(role.ID),
			Actual:      actual,
			Remaining:   role.PoolAmount.Sub(actual),
			Utilization: ratio(actual, role.PoolAmount),
			ByScope:     copyAmounts(act.RoleScopeActual[string(role.ID)]),
		})
		snap.Options.Roles = append(snap.Options.Roles, RoleOption{ID: role.ID, Name: role.Name})
	}

	snap.People = assemblePeople(in, roleNames)
	snap.Options.Scopes = sortedKeys(act.ScopeTotals)
	snap.Options.Entities = collectEntities(in.Entities, act.EntityTotals)
	return snap
}

func assemblePeople(in AssemblyInput, roleNames map[RoleID]string) []PersonRow {
	alloc := in.Allocation
	act := in.Actuals

	names := make(map[PersonID]string, len(in.People))
	for _, p := range in.People {
		names[p.ID] = p.Name
	}

	keys := make(map[string]bool)
	for pid := range alloc.ByPerson {
		keys[string(pid)] = true
	}
	for key := range act.PersonScope {
		keys[key] = true
	}

	rows := make([]PersonRow, 0, len(keys))
	for key := range keys {
		row := PersonRow{Key: key, ScopeSpend: copyAmounts(act.PersonScope[key])}
		row.Actual = sumValues(row.ScopeSpend)

		if key == UnmappedKey {
			row.Name = UnmappedLabel
			row.Entity = UnassignedEntity
			row.Plan = decimal.Zero
			row.IsUnmapped = true
			row.IsUnassigned = true
		} else {
			pid := PersonID(key)
			row.PersonID = pid
			row.Name = names[pid]
			if row.Name == "" {
				row.Name = UnknownPersonLabel + " (" + key + ")"
			}
			row.Entity = act.EntityOf(Identity{PersonID: pid})
			row.Plan = alloc.PersonPlan(pid)
			row.RoleShares = alloc.Shares[pid]
			for _, sh := range row.RoleShares {
				row.RoleIDs = append(row.RoleIDs, sh.RoleID)
				row.RoleNames = append(row.RoleNames, roleNames[sh.RoleID])
			}
			row.IsUnassigned = len(row.RoleShares) == 0
		}
		row.Remaining = row.Plan.Sub(row.Actual)
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		ri, rj := rowRank(rows[i]), rowRank(rows[j])
		if ri != rj {
			return ri < rj
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

func rowRank(r PersonRow) int {
	switch {
	case r.IsUnmapped:
		return 2
	case r.IsUnassigned:
		return 1
	default:
		return 0
	}
}

func collectEntities(assigned map[PersonID]string, totals map[string]decimal.Decimal) []string {
	set := make(map[string]decimal.Decimal)
	for _, e := range assigned {
		if e != "" {
			set[e] = decimal.Zero
		}
	}
	for e := range totals {
		set[e] = decimal.Zero
	}
	return sortedKeys(set)
}

// ratio returns num/den, or 0 when den is not positive.
func ratio(num, den decimal.Decimal) decimal.Decimal {
	if !den.IsPositive() {
		return decimal.Zero
	}
	return num.Div(den)
}

func copyAmounts(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
