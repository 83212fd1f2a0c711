package factory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/budget/store"
	"github.com/warp/budget-engine/factory"
)

const qaCatalog = `{
	"client_id": "ignored",
	"year": 2025,
	"currency": "usd",
	"roles": [{"id": "QA", "pool_amount": 12000}],
	"assignments": [
		{"role_id": "QA", "person_id": "A"},
		{"role_id": "QA", "person_id": "B", "start_date": "2025-01-01", "end_date": "2025-12-31"}
	],
	"people": [{"id": "A", "name": "Alice"}, {"id": "B", "name": "Bob", "active": false}],
	"rates": [{"person_id": "A", "daily_rate": "100"}],
	"aliases": [{"owner_name": "alice a.", "person_id": "A"}],
	"entities": [{"person_id": "A", "entity": "EMEA"}],
	"data_quality": [{"id": "dq-1", "person_id": "A", "work_hours": 70, "date": "2025-06-15"}],
	"campaign_units": [{"owner_name": "Alice A.", "hours_total": 3.5, "brand": "Acme"}],
	"effort_entries": [{"person_id": "B", "hours": 14}]
}`

func TestParseCatalog_AppliesDefaults(t *testing.T) {
	cat, err := factory.NewCatalogFactory().ParseCatalog([]byte(qaCatalog), "acme")
	require.NoError(t, err)

	assert.Equal(t, 11, cat.Len())

	require.Len(t, cat.Roles, 1)
	r := cat.Roles[0]
	assert.Equal(t, budget.ClientID("acme"), r.ClientID, "path client wins")
	assert.Equal(t, 2025, r.Year)
	assert.Equal(t, "QA", r.Name, "name defaults to id")
	assert.Equal(t, "USD", r.Currency, "normalised ISO code")
	assert.True(t, r.Active)
	assert.True(t, decimal.NewFromInt(12000).Equal(r.PoolAmount))

	assert.NotEmpty(t, cat.Assignments[0].ID, "generated")
	assert.Nil(t, cat.Assignments[0].StartDate)
	require.NotNil(t, cat.Assignments[1].EndDate)
	assert.Equal(t, "2025-12-31", cat.Assignments[1].EndDate.String())

	assert.False(t, cat.People[1].Active)
	assert.Equal(t, "dq-1", cat.DataQuality[0].ID)
	assert.Nil(t, cat.DataQuality[0].PrepHours)
	assert.True(t, decimal.RequireFromString("3.5").Equal(cat.CampaignUnits[0].HoursTotal))
}

func TestParseCatalog_ValidationErrors(t *testing.T) {
	doc := `{
		"year": 2025,
		"roles": [{"id": "", "pool_amount": -1, "currency": "XYZ1"}],
		"assignments": [{"role_id": "QA", "person_id": "A", "allocation_pct": 120, "start_date": "01/02/2025"}],
		"rates": [{"daily_rate": 10}],
		"effort_entries": [{"hours": 7}]
	}`

	_, err := factory.NewCatalogFactory().ParseCatalog([]byte(doc), "acme")
	require.Error(t, err)
	assert.ErrorIs(t, err, budget.ErrInvalidCatalog)
	assert.True(t, budget.IsClientError(err))

	var ve *budget.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "roles", ve.Table)

	msg := err.Error()
	for _, want := range []string{
		"roles[0].id",
		"roles[0].pool_amount",
		"roles[0].currency",
		"assignments[0].allocation_pct",
		"assignments[0].start_date",
		"rates[0].person_id",
		"effort_entries[0].person_id",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestParseCatalog_RequiresClientAndYear(t *testing.T) {
	_, err := factory.NewCatalogFactory().ParseCatalog([]byte(`{"roles": [{"id": "QA", "pool_amount": 1}]}`), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id")
	assert.Contains(t, err.Error(), "roles[0].year")
}

func TestParseCatalog_MalformedJSON(t *testing.T) {
	_, err := factory.NewCatalogFactory().ParseCatalog([]byte(`{"roles": [`), "acme")
	assert.ErrorIs(t, err, budget.ErrInvalidCatalog)
}

func TestCatalog_SaveAndCompute(t *testing.T) {
	// GIVEN: The QA catalog saved into a memory store
	// THEN:  A's data-quality work plus the aliased campaign unit are priced
	ctx := context.Background()
	cat, err := factory.NewCatalogFactory().ParseCatalog([]byte(qaCatalog), "acme")
	require.NoError(t, err)

	m := store.NewMemory()
	require.NoError(t, cat.Save(ctx, m))

	snap, err := budget.NewEngine(m).ComputeSnapshot(ctx, "acme", 2025)
	require.NoError(t, err)

	// 1350 (94.5h) + 50 (3.5h via alias); B has no rate.
	assert.Equal(t, "1400", snap.ActualTotal.String())
	assert.Equal(t, "12000", snap.PlanTotal.String())
	assert.Equal(t, 1, snap.Counts[budget.SourceEffort].Unspendable)
}
