package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(y int, m time.Month, d int) *budget.TimePoint {
	tp := budget.NewTimePoint(y, m, d)
	return &tp
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestStore_CatalogRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveRoles(ctx,
		budget.Role{ID: "QA", ClientID: "acme", Year: 2025, Name: "QA", PoolAmount: dec("12000.50"), Currency: "USD", Active: true, DisplayOrder: 2},
		budget.Role{ID: "DEV", ClientID: "acme", Year: 2025, Name: "Dev", PoolAmount: dec("100"), Currency: "USD", Active: false, DisplayOrder: 1},
		budget.Role{ID: "OLD", ClientID: "acme", Year: 2024, Name: "Old", PoolAmount: dec("1")},
	))
	require.NoError(t, s.SaveAssignments(ctx,
		budget.Assignment{ID: "a1", ClientID: "acme", Year: 2025, RoleID: "QA", PersonID: "A", Active: true,
			StartDate: day(2025, time.March, 1), AllocationPct: decPtr("12.5")},
	))

	roles, err := s.Roles(ctx, "acme", 2025)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, budget.RoleID("DEV"), roles[0].ID, "ordered by display order")
	assert.False(t, roles[0].Active)
	assert.True(t, dec("12000.50").Equal(roles[1].PoolAmount))

	as, err := s.Assignments(ctx, "acme", 2025)
	require.NoError(t, err)
	require.Len(t, as, 1)
	require.NotNil(t, as[0].StartDate)
	assert.Equal(t, "2025-03-01", as[0].StartDate.String())
	assert.Nil(t, as[0].EndDate)
	assert.Nil(t, as[0].AllocationAmount)
	require.NotNil(t, as[0].AllocationPct)
	assert.True(t, dec("12.5").Equal(*as[0].AllocationPct))
	assert.True(t, as[0].IsManual())
}

func TestStore_SaveReplacesByID(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SavePeople(ctx, budget.Person{ID: "A", ClientID: "acme", Name: "Alice", Active: true}))
	require.NoError(t, s.SavePeople(ctx, budget.Person{ID: "A", ClientID: "acme", Name: "Alice B.", Active: true}))
	require.NoError(t, s.SaveRates(ctx, budget.OwnerRate{ClientID: "acme", Year: 2025, OwnerName: "Bob", DailyRate: dec("70")}))

	people, err := s.People(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Alice B.", people[0].Name)

	rates, err := s.OwnerRates(ctx, "acme", 2025)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.NotEmpty(t, rates[0].ID, "generated")
}

func TestStore_ActivityWindowAndPaging(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveEffortEntries(ctx,
		budget.EffortEntry{ID: "e1", ClientID: "acme", PersonID: "A", Hours: dec("7"), Date: day(2025, time.January, 1)},
		budget.EffortEntry{ID: "e2", ClientID: "acme", PersonID: "A", Hours: dec("7"), Date: day(2024, time.December, 31)},
		budget.EffortEntry{ID: "e3", ClientID: "acme", OwnerName: "Bob", Hours: dec("3.5")},
		budget.EffortEntry{ID: "e4", ClientID: "acme", PersonID: "A", Hours: dec("1"), Date: day(2025, time.December, 31), Workstream: "Ops"},
	))
	window := budget.YearWindow(2025)

	first, err := s.EffortEntries(ctx, "acme", window, budget.Page{Offset: 0, Limit: 2})
	require.NoError(t, err)
	rest, err := s.EffortEntries(ctx, "acme", window, budget.Page{Offset: 2, Limit: 2})
	require.NoError(t, err)

	require.Len(t, first, 2)
	require.Len(t, rest, 1)
	assert.Equal(t, "e1", first[0].ID)
	assert.Equal(t, "e3", first[1].ID)
	assert.Nil(t, first[1].Date, "dateless rows pass the window")
	assert.Equal(t, "Ops", rest[0].Workstream)
}

func TestStore_DataQualityPrepNullable(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveDataQuality(ctx,
		budget.DataQualityContribution{ID: "d1", ClientID: "acme", PersonID: "A", WorkHours: dec("70"), Date: day(2025, time.June, 15)},
		budget.DataQualityContribution{ID: "d2", ClientID: "acme", PersonID: "A", WorkHours: dec("70"), PrepHours: decPtr("0"), Date: day(2025, time.June, 16)},
	))

	rows, err := s.DataQualityContributions(ctx, "acme", budget.YearWindow(2025), budget.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].PrepHours)
	require.NotNil(t, rows[1].PrepHours)
	assert.True(t, rows[1].PrepHours.IsZero())
}

func TestStore_EngineEndToEnd(t *testing.T) {
	// GIVEN: QA pool $12000 split over A and B, A logs 70h at $100/day
	// THEN:  The engine reads everything back from SQLite and finds $1350
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveRoles(ctx, budget.Role{ID: "QA", ClientID: "acme", Year: 2025, Name: "QA", PoolAmount: dec("12000"), Currency: "USD", Active: true}))
	require.NoError(t, s.SaveAssignments(ctx,
		budget.Assignment{ID: "a", ClientID: "acme", Year: 2025, RoleID: "QA", PersonID: "A", Active: true},
		budget.Assignment{ID: "b", ClientID: "acme", Year: 2025, RoleID: "QA", PersonID: "B", Active: true},
	))
	require.NoError(t, s.SaveRates(ctx, budget.OwnerRate{ClientID: "acme", Year: 2025, PersonID: "A", DailyRate: dec("100"), Currency: "USD"}))
	require.NoError(t, s.SaveCampaignUnits(ctx,
		budget.CampaignUnit{ID: "c1", ClientID: "acme", PersonID: "A", HoursTotal: dec("94.5"), Date: day(2025, time.June, 15), Brand: "Acme"},
	))

	snap, err := budget.NewEngine(s).ComputeSnapshot(ctx, "acme", 2025)
	require.NoError(t, err)

	assert.True(t, dec("12000").Equal(snap.PlanTotal))
	assert.True(t, dec("1350").Equal(snap.ActualTotal), snap.ActualTotal.String())
	assert.True(t, dec("0.1125").Equal(snap.Utilization))
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SaveAliases(ctx, budget.Alias{ClientID: "acme", OwnerName: "x", PersonID: "A"}))

	require.NoError(t, s.Reset(ctx))

	aliases, err := s.Aliases(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, aliases)
}
