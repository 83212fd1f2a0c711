package budget_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// PROPORTIONAL MODE
// =============================================================================

func TestAllocate_Proportional_FullYearSplitEvenly(t *testing.T) {
	// GIVEN: QA pool $12000, A and B assigned for the whole year
	// THEN: $6000 each
	alloc := budget.AllocateRoles(
		[]budget.Role{role("QA", "12000")},
		[]budget.Assignment{fullYear("as-1", "QA", "A"), fullYear("as-2", "QA", "B")},
		budget.YearWindow(2025),
	)

	assertDec(t, "6000", alloc.ByRole["QA"]["A"])
	assertDec(t, "6000", alloc.ByRole["QA"]["B"])
	assertDec(t, "6000", alloc.ByPerson["A"]["QA"])
	assert.Equal(t, budget.ModeProportional, alloc.Modes["QA"])
	assertDec(t, "12000", alloc.PlanTotal)
}

func TestAllocate_Proportional_HalfYearEach(t *testing.T) {
	// GIVEN: 2024 (366 days), pool $1200
	//   A: Jan 1 - Jul 1  (183 days)
	//   B: Jul 2 - open   (183 days)
	// THEN: $600 each
	r := role("R", "1200")
	r.Year = 2024
	a := budget.Assignment{ID: "a", RoleID: "R", PersonID: "A", Active: true, EndDate: date(2024, time.July, 1)}
	b := budget.Assignment{ID: "b", RoleID: "R", PersonID: "B", Active: true, StartDate: date(2024, time.July, 2)}

	alloc := budget.AllocateRoles([]budget.Role{r}, []budget.Assignment{a, b}, budget.YearWindow(2024))

	assertDec(t, "600", alloc.ByRole["R"]["A"])
	assertDec(t, "600", alloc.ByRole["R"]["B"])
}

func TestAllocate_Proportional_PoolConserved(t *testing.T) {
	// GIVEN: $1000 over three equal assignees (non-terminating division)
	// THEN: Shares sum to the pool within tolerance
	alloc := budget.AllocateRoles(
		[]budget.Role{role("R", "1000")},
		[]budget.Assignment{fullYear("1", "R", "A"), fullYear("2", "R", "B"), fullYear("3", "R", "C")},
		budget.YearWindow(2025),
	)

	require.Len(t, alloc.ByRole["R"], 3)
	assertApprox(t, "1000", alloc.RolePlan("R"))
	assertApprox(t, "333.3333333333", alloc.ByRole["R"]["A"])
}

func TestAllocate_Proportional_AssignmentsSummedPerPerson(t *testing.T) {
	// GIVEN: Pool $900
	//   A: Jan (31 days) + Mar (31 days) = 62 days
	//   B: Feb (28 days)
	// THEN: A = 900*62/90 = 620, B = 280
	w := budget.YearWindow(2025)
	as := []budget.Assignment{
		{ID: "1", RoleID: "R", PersonID: "A", Active: true, StartDate: date(2025, time.January, 1), EndDate: date(2025, time.January, 31)},
		{ID: "2", RoleID: "R", PersonID: "A", Active: true, StartDate: date(2025, time.March, 1), EndDate: date(2025, time.March, 31)},
		{ID: "3", RoleID: "R", PersonID: "B", Active: true, StartDate: date(2025, time.February, 1), EndDate: date(2025, time.February, 28)},
	}

	alloc := budget.AllocateRoles([]budget.Role{role("R", "900")}, as, w)

	assertDec(t, "620", alloc.ByRole["R"]["A"])
	assertDec(t, "280", alloc.ByRole["R"]["B"])
}

func TestAllocate_NoParticipants_PoolOnlyInPlanTotal(t *testing.T) {
	// GIVEN: Role with a pool but only an out-of-year assignment
	// THEN: Nobody gets plan, PlanTotal still includes the pool
	out := budget.Assignment{ID: "x", RoleID: "R", PersonID: "A", Active: true,
		StartDate: date(2023, time.January, 1), EndDate: date(2023, time.December, 31)}

	alloc := budget.AllocateRoles([]budget.Role{role("R", "5000")}, []budget.Assignment{out}, budget.YearWindow(2025))

	assert.Empty(t, alloc.ByRole["R"])
	assert.Empty(t, alloc.ByPerson)
	assert.Empty(t, alloc.Shares)
	assertDec(t, "5000", alloc.PlanTotal)
}

func TestAllocate_InactiveRowsIgnored(t *testing.T) {
	inactiveRole := role("OLD", "999")
	inactiveRole.Active = false
	inactiveAssignment := fullYear("2", "R", "B")
	inactiveAssignment.Active = false

	alloc := budget.AllocateRoles(
		[]budget.Role{role("R", "100"), inactiveRole},
		[]budget.Assignment{fullYear("1", "R", "A"), inactiveAssignment, fullYear("3", "OLD", "C")},
		budget.YearWindow(2025),
	)

	assertDec(t, "100", alloc.PlanTotal)
	assertDec(t, "100", alloc.ByRole["R"]["A"])
	assert.NotContains(t, alloc.ByPerson, budget.PersonID("B"))
	assert.NotContains(t, alloc.ByPerson, budget.PersonID("C"))
}

// =============================================================================
// MANUAL MODE
// =============================================================================

func TestAllocate_Manual_PercentIgnoresDateRange(t *testing.T) {
	// GIVEN: $1000 pool, A has allocationPct=50 for March only
	// THEN: A gets exactly $500
	a := budget.Assignment{ID: "1", RoleID: "R", PersonID: "A", Active: true,
		StartDate: date(2025, time.March, 1), EndDate: date(2025, time.March, 31),
		AllocationPct: decPtr("50")}

	alloc := budget.AllocateRoles([]budget.Role{role("R", "1000")}, []budget.Assignment{a}, budget.YearWindow(2025))

	assert.Equal(t, budget.ModeManual, alloc.Modes["R"])
	assertDec(t, "500", alloc.ByRole["R"]["A"])
}

func TestAllocate_Manual_AbsoluteAmount(t *testing.T) {
	a := fullYear("1", "R", "A")
	a.AllocationAmount = decPtr("250")
	b := fullYear("2", "R", "B")
	b.AllocationPct = decPtr("10")

	alloc := budget.AllocateRoles([]budget.Role{role("R", "1000")}, []budget.Assignment{a, b}, budget.YearWindow(2025))

	assertDec(t, "250", alloc.ByRole["R"]["A"])
	assertDec(t, "100", alloc.ByRole["R"]["B"])
}

func TestAllocate_Manual_MixedRoleDayBasedGetsNothing(t *testing.T) {
	// GIVEN: One manual (50%) and one day-based assignee on the same role
	// THEN: The role is manual; the day-based assignee gets nothing
	a := fullYear("1", "R", "A")
	a.AllocationPct = decPtr("50")
	b := fullYear("2", "R", "B")

	alloc := budget.AllocateRoles([]budget.Role{role("R", "1000")}, []budget.Assignment{a, b}, budget.YearWindow(2025))

	assertDec(t, "500", alloc.ByRole["R"]["A"])
	assert.NotContains(t, alloc.ByRole["R"], budget.PersonID("B"))
	assert.NotContains(t, alloc.Shares, budget.PersonID("B"))
}

func TestAllocate_Manual_NoOverlapContributesNothing(t *testing.T) {
	a := budget.Assignment{ID: "1", RoleID: "R", PersonID: "A", Active: true,
		StartDate: date(2026, time.January, 1), AllocationAmount: decPtr("400")}

	alloc := budget.AllocateRoles([]budget.Role{role("R", "1000")}, []budget.Assignment{a}, budget.YearWindow(2025))

	assert.Empty(t, alloc.ByPerson)
}

// =============================================================================
// ROLE SHARES
// =============================================================================

func TestAllocate_RoleShares_SplitByPlan(t *testing.T) {
	// GIVEN: A holds QA (plan 6000) and DEV (plan 2000)
	// THEN: Shares are 0.75 / 0.25, ordered by display order
	qa := role("QA", "12000")
	qa.DisplayOrder = 2
	dev := role("DEV", "2000")
	dev.DisplayOrder = 1

	alloc := budget.AllocateRoles(
		[]budget.Role{qa, dev},
		[]budget.Assignment{fullYear("1", "QA", "A"), fullYear("2", "QA", "B"), fullYear("3", "DEV", "A")},
		budget.YearWindow(2025),
	)

	shares := alloc.Shares["A"]
	require.Len(t, shares, 2)
	assert.Equal(t, budget.RoleID("DEV"), shares[0].RoleID)
	assertDec(t, "0.25", shares[0].Share)
	assert.Equal(t, budget.RoleID("QA"), shares[1].RoleID)
	assertDec(t, "0.75", shares[1].Share)
	assertDec(t, "8000", alloc.PersonPlan("A"))

	require.Len(t, alloc.Shares["B"], 1)
	assertDec(t, "1", alloc.Shares["B"][0].Share)
}

func TestAllocate_RoleShares_ZeroPlanSkipped(t *testing.T) {
	// GIVEN: Manual amount of 0
	// THEN: Person has an allocation entry but no shares (no NaN)
	a := fullYear("1", "R", "A")
	a.AllocationAmount = &decimal.Zero

	alloc := budget.AllocateRoles([]budget.Role{role("R", "1000")}, []budget.Assignment{a}, budget.YearWindow(2025))

	assert.NotContains(t, alloc.Shares, budget.PersonID("A"))
}
