/*
identity.go - Person identity and rate resolution

PURPOSE:
  Activity records name their owner inconsistently: some carry an explicit
  person id, some only a free-text owner name ("j. smith", "Jane Smith ").
  The resolver maps a raw (personID, ownerName) pair to a canonical person,
  and separately finds the daily rate used to price the record.

RESOLUTION ORDER:
  1. Explicit person id       -> trusted as-is        (path: explicit)
  2. Normalised owner name    -> Alias table lookup   (path: alias)
  3. Neither                  -> unmapped             (path: unresolved)

RATE ORDER:
  1. Rate keyed by the resolved person id
  2. Rate keyed by the normalised raw owner name
  No rate by either path means the record is unspendable. That is not an
  error; the record simply contributes nothing.

NORMALISATION:
  Owner names are trimmed and Unicode case-folded (golang.org/x/text/cases)
  so "ÉMILE Durand" and "émile durand " match the same alias.
*/
package budget

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Resolution records how a person id was obtained.
type Resolution string

const (
	ResolvedExplicit Resolution = "explicit"
	ResolvedAlias    Resolution = "alias"
	Unresolved       Resolution = "unresolved"
)

// Identity is the outcome of resolving a raw record's owner.
type Identity struct {
	PersonID PersonID // empty when unresolved
	Owner    string   // normalised raw owner name, may be empty
	Path     Resolution
}

// IsMapped returns true if the record resolved to a person.
func (id Identity) IsMapped() bool { return id.PersonID != "" }

// Key is the person key used by every person-keyed breakdown.
func (id Identity) Key() string {
	if id.PersonID == "" {
		return UnmappedKey
	}
	return string(id.PersonID)
}

// RateSource tells which table key priced a record.
type RateSource string

const (
	RateByPerson RateSource = "person"
	RateByOwner  RateSource = "owner"
)

// Rate is a resolved daily rate.
type Rate struct {
	Daily    decimal.Decimal
	Currency string
	Source   RateSource
}

// NormalizeOwner trims and case-folds an owner name.
func NormalizeOwner(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// A Caser is stateful; one per call keeps this safe for concurrent use.
	return cases.Fold().String(s)
}

// =============================================================================
// IDENTITY RESOLVER
// =============================================================================

// IdentityResolver holds read-only alias and rate lookups for one snapshot.
type IdentityResolver struct {
	aliases     map[string]PersonID
	personRates map[PersonID]Rate
	ownerRates  map[string]Rate
}

// NewIdentityResolver indexes the alias and rate tables. When a key appears
// more than once, the later row wins.
func NewIdentityResolver(aliases []Alias, rates []OwnerRate) *IdentityResolver {
	r := &IdentityResolver{
		aliases:     make(map[string]PersonID, len(aliases)),
		personRates: make(map[PersonID]Rate),
		ownerRates:  make(map[string]Rate),
	}

	for _, a := range aliases {
		name := NormalizeOwner(a.OwnerName)
		if name == "" || a.PersonID == "" {
			continue
		}
		r.aliases[name] = a.PersonID
	}

	for _, rate := range rates {
		if rate.PersonID != "" {
			r.personRates[rate.PersonID] = Rate{Daily: rate.DailyRate, Currency: rate.Currency, Source: RateByPerson}
		}
		if owner := NormalizeOwner(rate.OwnerName); owner != "" {
			r.ownerRates[owner] = Rate{Daily: rate.DailyRate, Currency: rate.Currency, Source: RateByOwner}
		}
	}

	return r
}

// Resolve maps a raw (personID, ownerName) pair to an Identity.
func (r *IdentityResolver) Resolve(personID PersonID, ownerName string) Identity {
	owner := NormalizeOwner(ownerName)

	if personID != "" {
		return Identity{PersonID: personID, Owner: owner, Path: ResolvedExplicit}
	}
	if owner != "" {
		if pid, ok := r.aliases[owner]; ok {
			return Identity{PersonID: pid, Owner: owner, Path: ResolvedAlias}
		}
	}
	return Identity{Owner: owner, Path: Unresolved}
}

// RateFor finds the daily rate for a resolved identity: person first,
// then owner name.
func (r *IdentityResolver) RateFor(id Identity) (Rate, bool) {
	if id.PersonID != "" {
		if rate, ok := r.personRates[id.PersonID]; ok {
			return rate, true
		}
	}
	if id.Owner != "" {
		if rate, ok := r.ownerRates[id.Owner]; ok {
			return rate, true
		}
	}
	return Rate{}, false
}
