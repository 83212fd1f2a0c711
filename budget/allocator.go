/*
allocator.go - Role budget allocation (the plan side)

PURPOSE:
  Each active role owns an annual pool. The allocator splits that pool
  across the people assigned to the role for the year.

MODES:
  Manual:
    Any assignment under the role declares an absolute amount or a
    percentage. Each such assignment that overlaps the year receives
    exactly that amount (or pool * pct / 100). Assignments without a
    manual field contribute nothing under a manual role.

  Proportional:
    No manual fields. Overlap days are summed per person and the pool is
    split by each person's share of the role's total active days.

    Example: $1200 pool, A covers Jan-Jun, B covers Jul-Dec
      A: 1200 * 181/365 ≈ 595.07
      B: 1200 * 184/365 ≈ 604.93

ROLE SHARES:
  A person's plan may span several roles. RoleShares records, per person,
  the fraction of their plan that comes from each role. Activity records
  carry no role, so actual spend is attributed back to roles using these
  fractions.

SEE ALSO:
  - time.go: OverlapDays
  - aggregator.go: Consumes RoleShares
*/
package budget

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AllocationMode is how a role's pool was distributed.
type AllocationMode string

const (
	ModeProportional AllocationMode = "proportional"
	ModeManual       AllocationMode = "manual"
)

// RoleShare is one role's fraction of a person's total plan.
type RoleShare struct {
	RoleID RoleID
	Share  decimal.Decimal
}

// RoleShares maps a person to their role fractions, ordered by role
// display order. Shares of one person sum to 1.
type RoleShares map[PersonID][]RoleShare

// Allocation is the plan-side result.
type Allocation struct {
	ByRole   map[RoleID]map[PersonID]decimal.Decimal
	ByPerson map[PersonID]map[RoleID]decimal.Decimal
	Modes    map[RoleID]AllocationMode
	Shares   RoleShares

	// PlanTotal sums every active role's pool, including roles that had
	// no participating assignment.
	PlanTotal decimal.Decimal

	roleOrder map[RoleID]int
}

// PersonPlan returns the person's total plan across roles.
func (a *Allocation) PersonPlan(pid PersonID) decimal.Decimal {
	total := decimal.Zero
	for _, amt := range a.ByPerson[pid] {
		total = total.Add(amt)
	}
	return total
}

// RolePlan returns the sum allocated to people under the role.
func (a *Allocation) RolePlan(rid RoleID) decimal.Decimal {
	total := decimal.Zero
	for _, amt := range a.ByRole[rid] {
		total = total.Add(amt)
	}
	return total
}

// AllocateRoles distributes every active role's pool over its active
// assignments within the window.
func AllocateRoles(roles []Role, assignments []Assignment, window Period) *Allocation {
	alloc := &Allocation{
		ByRole:    make(map[RoleID]map[PersonID]decimal.Decimal),
		ByPerson:  make(map[PersonID]map[RoleID]decimal.Decimal),
		Modes:     make(map[RoleID]AllocationMode),
		Shares:    make(RoleShares),
		PlanTotal: decimal.Zero,
		roleOrder: make(map[RoleID]int),
	}

	byRole := make(map[RoleID][]Assignment)
	for _, a := range assignments {
		if !a.Active {
			continue
		}
		byRole[a.RoleID] = append(byRole[a.RoleID], a)
	}

	for _, role := range SortRoles(roles) {
		if !role.Active {
			continue
		}
		alloc.roleOrder[role.ID] = len(alloc.roleOrder)
		alloc.PlanTotal = alloc.PlanTotal.Add(role.PoolAmount)

		roleAssignments := byRole[role.ID]
		var amounts map[PersonID]decimal.Decimal
		if hasManual(roleAssignments) {
			alloc.Modes[role.ID] = ModeManual
			amounts = allocateManual(role, roleAssignments, window)
		} else {
			alloc.Modes[role.ID] = ModeProportional
			amounts = allocateProportional(role, roleAssignments, window)
		}

		for pid, amt := range amounts {
			alloc.add(role.ID, pid, amt)
		}
	}

	alloc.Shares = alloc.computeShares()
	return alloc
}

func (a *Allocation) add(rid RoleID, pid PersonID, amt decimal.Decimal) {
	if a.ByRole[rid] == nil {
		a.ByRole[rid] = make(map[PersonID]decimal.Decimal)
	}
	a.ByRole[rid][pid] = a.ByRole[rid][pid].Add(amt)

	if a.ByPerson[pid] == nil {
		a.ByPerson[pid] = make(map[RoleID]decimal.Decimal)
	}
	a.ByPerson[pid][rid] = a.ByPerson[pid][rid].Add(amt)
}

func hasManual(assignments []Assignment) bool {
	for _, a := range assignments {
		if a.IsManual() {
			return true
		}
	}
	return false
}

// allocateManual pays manual assignments only. Day-based assignees
// under a manual role get nothing.
func allocateManual(role Role, assignments []Assignment, window Period) map[PersonID]decimal.Decimal {
	out := make(map[PersonID]decimal.Decimal)
	for _, a := range assignments {
		if OverlapDays(a, window) <= 0 {
			continue
		}
		var amt decimal.Decimal
		switch {
		case a.AllocationAmount != nil:
			amt = *a.AllocationAmount
		case a.AllocationPct != nil:
			amt = role.PoolAmount.Mul(*a.AllocationPct).Div(hundred)
		default:
			continue
		}
		out[a.PersonID] = out[a.PersonID].Add(amt)
	}
	return out
}

func allocateProportional(role Role, assignments []Assignment, window Period) map[PersonID]decimal.Decimal {
	personDays := make(map[PersonID]int)
	totalActiveDays := 0
	for _, a := range assignments {
		d := OverlapDays(a, window)
		if d <= 0 {
			continue
		}
		personDays[a.PersonID] += d
		totalActiveDays += d
	}

	out := make(map[PersonID]decimal.Decimal)
	if totalActiveDays <= 0 {
		return out
	}

	total := decimal.NewFromInt(int64(totalActiveDays))
	for pid, d := range personDays {
		out[pid] = role.PoolAmount.Mul(decimal.NewFromInt(int64(d))).Div(total)
	}
	return out
}

// computeShares derives each person's role fractions from ByPerson.
// People whose plan sums to zero get no shares.
func (a *Allocation) computeShares() RoleShares {
	shares := make(RoleShares)
	for pid, roles := range a.ByPerson {
		total := decimal.Zero
		for _, amt := range roles {
			total = total.Add(amt)
		}
		if !total.IsPositive() {
			continue
		}

		var list []RoleShare
		for rid, amt := range roles {
			share := amt.Div(total)
			if share.IsPositive() {
				list = append(list, RoleShare{RoleID: rid, Share: share})
			}
		}
		sort.Slice(list, func(i, j int) bool {
			return a.roleOrder[list[i].RoleID] < a.roleOrder[list[j].RoleID]
		})
		if len(list) > 0 {
			shares[pid] = list
		}
	}
	return shares
}

// SortRoles orders roles by display order, then id.
func SortRoles(roles []Role) []Role {
	out := append([]Role(nil), roles...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}
