package budget_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func date(year int, month time.Month, day int) *budget.TimePoint {
	tp := budget.NewTimePoint(year, month, day)
	return &tp
}

// assertDec checks exact decimal equality with a readable failure.
func assertDec(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), append([]any{"expected %s, got %s", expected, actual.String()}, msgAndArgs...)...)
}

// assertApprox checks equality within 1e-9 (for divisions that do not terminate).
func assertApprox(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	diff := dec(expected).Sub(actual).Abs()
	assert.True(t, diff.LessThan(dec("0.000000001")), append([]any{"expected ~%s, got %s", expected, actual.String()}, msgAndArgs...)...)
}

func role(id string, pool string) budget.Role {
	return budget.Role{
		ID:         budget.RoleID(id),
		ClientID:   "acme",
		Year:       2025,
		Name:       id,
		PoolAmount: dec(pool),
		Currency:   "USD",
		Active:     true,
	}
}

func fullYear(id, roleID, personID string) budget.Assignment {
	return budget.Assignment{
		ID:       id,
		ClientID: "acme",
		Year:     2025,
		RoleID:   budget.RoleID(roleID),
		PersonID: budget.PersonID(personID),
		Active:   true,
	}
}

func personRate(personID, daily string) budget.OwnerRate {
	return budget.OwnerRate{
		ID:        "rate-" + personID,
		ClientID:  "acme",
		Year:      2025,
		PersonID:  budget.PersonID(personID),
		DailyRate: dec(daily),
		Currency:  "USD",
	}
}

func ownerRate(owner, daily string) budget.OwnerRate {
	return budget.OwnerRate{
		ID:        "rate-" + owner,
		ClientID:  "acme",
		Year:      2025,
		OwnerName: owner,
		DailyRate: dec(daily),
		Currency:  "USD",
	}
}
