package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/budget/store"
)

func day(y int, m time.Month, d int) *budget.TimePoint {
	tp := budget.NewTimePoint(y, m, d)
	return &tp
}

func TestMemory_SaveUpsertsByID(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.SaveRoles(ctx,
		budget.Role{ID: "QA", ClientID: "acme", Year: 2025, Name: "QA", PoolAmount: decimal.NewFromInt(100)},
	))
	require.NoError(t, m.SaveRoles(ctx,
		budget.Role{ID: "QA", ClientID: "acme", Year: 2025, Name: "Quality", PoolAmount: decimal.NewFromInt(200)},
	))

	roles, err := m.Roles(ctx, "acme", 2025)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "Quality", roles[0].Name)
	assert.True(t, decimal.NewFromInt(200).Equal(roles[0].PoolAmount))
}

func TestMemory_SaveAssignsIDs(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.SaveAliases(ctx,
		budget.Alias{ClientID: "acme", OwnerName: "a", PersonID: "A"},
		budget.Alias{ClientID: "acme", OwnerName: "b", PersonID: "B"},
	))

	aliases, err := m.Aliases(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, aliases, 2)
	assert.NotEmpty(t, aliases[0].ID)
	assert.NotEqual(t, aliases[0].ID, aliases[1].ID)
}

func TestMemory_ActivityWindowAndPaging(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	m.AddEffortEntries(
		budget.EffortEntry{ID: "1", ClientID: "acme", Date: day(2025, time.January, 1)},
		budget.EffortEntry{ID: "2", ClientID: "acme", Date: day(2024, time.December, 31)},
		budget.EffortEntry{ID: "3", ClientID: "acme"},
		budget.EffortEntry{ID: "4", ClientID: "acme", Date: day(2025, time.December, 31)},
		budget.EffortEntry{ID: "5", ClientID: "other", Date: day(2025, time.June, 1)},
	)
	window := budget.YearWindow(2025)

	first, err := m.EffortEntries(ctx, "acme", window, budget.Page{Offset: 0, Limit: 2})
	require.NoError(t, err)
	second, err := m.EffortEntries(ctx, "acme", window, budget.Page{Offset: 2, Limit: 2})
	require.NoError(t, err)

	require.Len(t, first, 2)
	require.Len(t, second, 1)
	assert.Equal(t, "1", first[0].ID)
	assert.Equal(t, "3", first[1].ID, "dateless rows pass the window")
	assert.Equal(t, "4", second[0].ID)
}

func TestMemory_Reset(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	m.AddPeople(budget.Person{ID: "A", ClientID: "acme"})

	require.NoError(t, m.Reset(ctx))

	people, err := m.People(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, people)
}
