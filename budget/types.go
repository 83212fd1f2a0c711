/*
Package budget provides the budget execution engine.

PURPOSE:
  This package distributes annual, role-based budget pools across people
  according to time-bounded assignments, then reconciles that plan against
  actual labor spend derived from three activity logs. The result is a
  single Snapshot rolled up by month, role, entity, scope and person.

KEY CONCEPTS IN THIS FILE (types.go):
  - Role: An annual budget pool (e.g., "QA" with $12,000 for 2025)
  - Assignment: A person's time-bounded participation in a role
  - Person, OwnerRate, Alias, EntityAssignment: identity and rate catalog
  - Activity sources: DataQualityContribution, CampaignUnit, EffortEntry

DESIGN PRINCIPLES:
  1. Precision: Money, hours and shares use decimal.Decimal
  2. Explicit inputs: Catalog tables are passed in, never read from globals
  3. Stateless: Every computation is a fresh snapshot for (client, year)
  4. Type Safety: Strong typing for IDs prevents mixing person/role IDs

USAGE:
  engine := &budget.Engine{Source: src}
  snap, err := engine.ComputeSnapshot(ctx, "acme", 2025)
  fmt.Println(snap.PlanTotal, snap.ActualTotal, snap.Utilization)

SEE ALSO:
  - allocator.go: Plan side (role pools -> people)
  - spend.go: Actual side (activity -> money)
  - aggregator.go: Multi-dimensional rollups
  - snapshot.go: Final per-person table
*/
package budget

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ClientID string
type RoleID string
type PersonID string

// =============================================================================
// CATALOG - Read-only tables scoped by client (and year where relevant)
// =============================================================================

// Role is an annual budget pool to be distributed among its assignees.
type Role struct {
	ID           RoleID
	ClientID     ClientID
	Year         int
	Name         string
	PoolAmount   decimal.Decimal
	Currency     string
	Active       bool
	DisplayOrder int
}

// Assignment places a person on a role for part or all of a year.
// Nil StartDate/EndDate means open-ended (defaults to the year bounds).
type Assignment struct {
	ID        string
	ClientID  ClientID
	Year      int
	RoleID    RoleID
	PersonID  PersonID
	StartDate *TimePoint
	EndDate   *TimePoint
	Active    bool

	// Manual allocation. Setting either one switches the whole role to
	// manual mode.
	AllocationAmount *decimal.Decimal
	AllocationPct    *decimal.Decimal
}

// IsManual returns true if the assignment declares a manual allocation.
func (a Assignment) IsManual() bool {
	return a.AllocationAmount != nil || a.AllocationPct != nil
}

// Person is the canonical identity target for allocation and spend.
type Person struct {
	ID       PersonID
	ClientID ClientID
	Name     string
	Active   bool
}

// OwnerRate is a daily rate keyed by person or by free-text owner name.
// Exactly one of PersonID / OwnerName is normally set.
type OwnerRate struct {
	ID        string
	ClientID  ClientID
	Year      int
	PersonID  PersonID
	OwnerName string
	DailyRate decimal.Decimal
	Currency  string
}

// Alias maps a free-text owner name to a person.
type Alias struct {
	ID        string
	ClientID  ClientID
	OwnerName string
	PersonID  PersonID
}

// EntityAssignment places a person in a reporting entity for a year.
type EntityAssignment struct {
	ID       string
	ClientID ClientID
	Year     int
	PersonID PersonID
	Entity   string
}

// =============================================================================
// SENTINEL KEYS AND LABELS
// =============================================================================

const (
	// UnmappedKey is the person key for spend that never resolved to a person.
	UnmappedKey = "unmapped"

	// UnassignedRole is the role key for spend by people without role shares.
	UnassignedRole = "unassigned"

	// UnassignedEntity is the entity for unmapped spend and people without an entity.
	UnassignedEntity = "Unassigned"

	UnmappedLabel      = "Unmapped owners"
	UnknownPersonLabel = "Unknown person"
)

// Scope labels for sources without a workstream.
const (
	ScopeDataQuality        = "Data Quality"
	ScopeCampaignProduction = "Campaign Production"
	ScopeManualEffort       = "Manual Effort"
)

// HoursPerDay is the system-wide day-equivalent convention.
var HoursPerDay = decimal.NewFromInt(7)

// DefaultPrepRatio is applied to work hours when prep hours were not recorded.
var DefaultPrepRatio = decimal.RequireFromString("0.35")
