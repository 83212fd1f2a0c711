/*
store.go - Read interface between the engine and the record store

PURPOSE:
  Defines what the engine reads. All catalog tables are scoped by client
  (and year where they carry one); activity logs are scoped by client and
  a date window and are read page by page.

KEY INTERFACES:
  Source: Every table the snapshot needs
  Writer: Catalog and activity writes (API, seed scenarios)
  Store:  Source + Writer

PAGINATION:
  Activity logs can be large. FetchAll reads fixed-size pages until a
  short page comes back. This is the only I/O-shaped concern; the
  computation itself never touches the store.

DATE WINDOW:
  Activity queries return records dated inside the window plus dateless
  records. Dateless records count toward totals but not monthly series.

IMPLEMENTATIONS:
  - budget/store/memory.go: In-memory for tests and dev
  - store/sqlite/sqlite.go: SQLite

SEE ALSO:
  - engine.go: Fetches everything, then computes
*/
package budget

import "context"

// =============================================================================
// SOURCE - Interface for snapshot inputs
// =============================================================================

// Page selects a slice of an ordered result set.
type Page struct {
	Offset int
	Limit  int
}

// Source reads every input table for one snapshot.
type Source interface {
	Roles(ctx context.Context, client ClientID, year int) ([]Role, error)
	Assignments(ctx context.Context, client ClientID, year int) ([]Assignment, error)
	People(ctx context.Context, client ClientID) ([]Person, error)
	OwnerRates(ctx context.Context, client ClientID, year int) ([]OwnerRate, error)
	Aliases(ctx context.Context, client ClientID) ([]Alias, error)
	EntityAssignments(ctx context.Context, client ClientID, year int) ([]EntityAssignment, error)

	DataQualityContributions(ctx context.Context, client ClientID, window Period, page Page) ([]DataQualityContribution, error)
	CampaignUnits(ctx context.Context, client ClientID, window Period, page Page) ([]CampaignUnit, error)
	EffortEntries(ctx context.Context, client ClientID, window Period, page Page) ([]EffortEntry, error)
}

// Writer persists input rows. Rows with an empty ID get a generated one;
// saving an existing ID replaces the row.
type Writer interface {
	SaveRoles(ctx context.Context, rows ...Role) error
	SaveAssignments(ctx context.Context, rows ...Assignment) error
	SavePeople(ctx context.Context, rows ...Person) error
	SaveRates(ctx context.Context, rows ...OwnerRate) error
	SaveAliases(ctx context.Context, rows ...Alias) error
	SaveEntities(ctx context.Context, rows ...EntityAssignment) error
	SaveDataQuality(ctx context.Context, rows ...DataQualityContribution) error
	SaveCampaignUnits(ctx context.Context, rows ...CampaignUnit) error
	SaveEffortEntries(ctx context.Context, rows ...EffortEntry) error

	// Reset removes every row (demo scenarios).
	Reset(ctx context.Context) error
}

// Store is a readable and writable record store.
type Store interface {
	Source
	Writer
}

// DefaultPageSize is used when the engine has no page size configured.
const DefaultPageSize = 1000

// FetchAll reads pages of pageSize until a short page is returned.
func FetchAll[T any](ctx context.Context, pageSize int, fetch func(context.Context, Page) ([]T, error)) ([]T, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var all []T
	for offset := 0; ; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := fetch(ctx, Page{Offset: offset, Limit: pageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

// InWindow reports whether a record date passes the window filter.
// Dateless records always pass.
func InWindow(date *TimePoint, window Period) bool {
	return date == nil || window.Contains(*date)
}
