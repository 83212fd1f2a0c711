/*
Package sqlite provides a SQLite-backed implementation of budget.Store.

PURPOSE:
  Persists the catalog tables (roles, assignments, people, rates, aliases,
  entity assignments) and the three activity logs the snapshot engine
  reads. In production the same queries run against PostgreSQL with only
  minor dialect differences.

INTERFACES IMPLEMENTED:
  budget.Source: Reads for one (client, year) snapshot
  budget.Writer: Upserts keyed by row ID, plus Reset

STORAGE FORMATS:
  - Money, hours and percentages are TEXT decimals (no float rounding)
  - Dates are TEXT YYYY-MM-DD, NULL when unknown. Lexical comparison
    equals date comparison, so window filters stay in SQL.

KEY TABLES:
  roles, role_assignments, people, owner_rates, owner_aliases,
  entity_assignments:          catalog, scoped by client (and year)
  data_quality_contributions,
  campaign_units,
  effort_entries:              activity logs, read page by page

INDEXES:
  Activity logs are indexed on (client_id, date) for the window filter.
  Paging orders by id so pages are stable between calls.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. With PostgreSQL, database-level
  concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL so readers do not block the single writer.

USAGE:
  store, err := sqlite.New("./data/budget.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := budget.NewEngine(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - budget/store.go: Interface definitions
  - budget/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
)

// Store implements budget.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ budget.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Roles (budget pools)
	CREATE TABLE IF NOT EXISTS roles (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		name TEXT NOT NULL,
		pool_amount TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		display_order INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_roles_client_year
		ON roles(client_id, year);

	-- Role assignments (who draws from which pool, when)
	CREATE TABLE IF NOT EXISTS role_assignments (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		role_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		allocation_amount TEXT,
		allocation_pct TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_role_assignments_client_year
		ON role_assignments(client_id, year);

	-- People
	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_people_client
		ON people(client_id);

	-- Daily rates, keyed by person or by raw owner name
	CREATE TABLE IF NOT EXISTS owner_rates (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		person_id TEXT NOT NULL DEFAULT '',
		owner_name TEXT NOT NULL DEFAULT '',
		daily_rate TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_owner_rates_client_year
		ON owner_rates(client_id, year);

	-- Owner name aliases
	CREATE TABLE IF NOT EXISTS owner_aliases (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		owner_name TEXT NOT NULL,
		person_id TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_owner_aliases_client
		ON owner_aliases(client_id);

	-- Entity (business unit) per person per year
	CREATE TABLE IF NOT EXISTS entity_assignments (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		person_id TEXT NOT NULL,
		entity TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entity_assignments_client_year
		ON entity_assignments(client_id, year);

	-- Activity: data-quality contributions
	CREATE TABLE IF NOT EXISTS data_quality_contributions (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		person_id TEXT NOT NULL DEFAULT '',
		owner_name TEXT NOT NULL DEFAULT '',
		work_hours TEXT NOT NULL DEFAULT '0',
		prep_hours TEXT,
		date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_data_quality_client_date
		ON data_quality_contributions(client_id, date);

	-- Activity: campaign production units
	CREATE TABLE IF NOT EXISTS campaign_units (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		person_id TEXT NOT NULL DEFAULT '',
		owner_name TEXT NOT NULL DEFAULT '',
		hours_total TEXT NOT NULL DEFAULT '0',
		date TEXT,
		brand TEXT NOT NULL DEFAULT '',
		market TEXT NOT NULL DEFAULT '',
		segment TEXT NOT NULL DEFAULT '',
		workstream TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_campaign_units_client_date
		ON campaign_units(client_id, date);

	-- Activity: manual effort entries
	CREATE TABLE IF NOT EXISTS effort_entries (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		person_id TEXT NOT NULL DEFAULT '',
		owner_name TEXT NOT NULL DEFAULT '',
		hours TEXT NOT NULL DEFAULT '0',
		date TEXT,
		workstream TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_effort_entries_client_date
		ON effort_entries(client_id, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CATALOG READS (budget.Source)
// =============================================================================

func (s *Store) Roles(ctx context.Context, client budget.ClientID, year int) ([]budget.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, client_id, year, name, pool_amount, currency, active, display_order
		FROM roles
		WHERE client_id = ? AND year = ?
		ORDER BY display_order, id
	`
	return queryRows(ctx, s.db, func(sc scanner) (budget.Role, error) {
		var r budget.Role
		err := sc.Scan(&r.ID, &r.ClientID, &r.Year, &r.Name, &r.PoolAmount, &r.Currency, &r.Active, &r.DisplayOrder)
		return r, err
	}, query, client, year)
}

func (s *Store) Assignments(ctx context.Context, client budget.ClientID, year int) ([]budget.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, client_id, year, role_id, person_id, start_date, end_date, active,
		       allocation_amount, allocation_pct
		FROM role_assignments
		WHERE client_id = ? AND year = ?
		ORDER BY id
	`
	return queryRows(ctx, s.db, func(sc scanner) (budget.Assignment, error) {
		var (
			a           budget.Assignment
			start, end  sql.NullString
			amount, pct decimal.NullDecimal
		)
		if err := sc.Scan(&a.ID, &a.ClientID, &a.Year, &a.RoleID, &a.PersonID, &start, &end, &a.Active, &amount, &pct); err != nil {
			return a, err
		}
		var err error
		if a.StartDate, err = parseDate(start); err != nil {
			return a, err
		}
		if a.EndDate, err = parseDate(end); err != nil {
			return a, err
		}
		a.AllocationAmount = decimalPtr(amount)
		a.AllocationPct = decimalPtr(pct)
		return a, nil
	}, query, client, year)
}

func (s *Store) People(ctx context.Context, client budget.ClientID) ([]budget.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryRows(ctx, s.db, func(sc scanner) (budget.Person, error) {
		var p budget.Person
		err := sc.Scan(&p.ID, &p.ClientID, &p.Name, &p.Active)
		return p, err
	}, "SELECT id, client_id, name, active FROM people WHERE client_id = ? ORDER BY name, id", client)
}

func (s *Store) OwnerRates(ctx context.Context, client budget.ClientID, year int) ([]budget.OwnerRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, client_id, year, person_id, owner_name, daily_rate, currency
		FROM owner_rates
		WHERE client_id = ? AND year = ?
		ORDER BY rowid
	`
	return queryRows(ctx, s.db, func(sc scanner) (budget.OwnerRate, error) {
		var r budget.OwnerRate
		err := sc.Scan(&r.ID, &r.ClientID, &r.Year, &r.PersonID, &r.OwnerName, &r.DailyRate, &r.Currency)
		return r, err
	}, query, client, year)
}

func (s *Store) Aliases(ctx context.Context, client budget.ClientID) ([]budget.Alias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryRows(ctx, s.db, func(sc scanner) (budget.Alias, error) {
		var a budget.Alias
		err := sc.Scan(&a.ID, &a.ClientID, &a.OwnerName, &a.PersonID)
		return a, err
	}, "SELECT id, client_id, owner_name, person_id FROM owner_aliases WHERE client_id = ? ORDER BY rowid", client)
}

func (s *Store) EntityAssignments(ctx context.Context, client budget.ClientID, year int) ([]budget.EntityAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, client_id, year, person_id, entity
		FROM entity_assignments
		WHERE client_id = ? AND year = ?
		ORDER BY rowid
	`
	return queryRows(ctx, s.db, func(sc scanner) (budget.EntityAssignment, error) {
		var e budget.EntityAssignment
		err := sc.Scan(&e.ID, &e.ClientID, &e.Year, &e.PersonID, &e.Entity)
		return e, err
	}, query, client, year)
}

// =============================================================================
// ACTIVITY READS (budget.Source, paged)
// =============================================================================

// windowClause keeps rows dated inside [start, end] plus dateless rows.
const windowClause = `client_id = ? AND (date IS NULL OR (date >= ? AND date <= ?))`

func (s *Store) DataQualityContributions(ctx context.Context, client budget.ClientID, window budget.Period, page budget.Page) ([]budget.DataQualityContribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, client_id, person_id, owner_name, work_hours, prep_hours, date
		FROM data_quality_contributions
		WHERE ` + windowClause + `
		ORDER BY id
		LIMIT ? OFFSET ?
	`
	return queryRows(ctx, s.db, func(sc scanner) (budget.DataQualityContribution, error) {
		var (
			c    budget.DataQualityContribution
			prep decimal.NullDecimal
			date sql.NullString
		)
		if err := sc.Scan(&c.ID, &c.ClientID, &c.PersonID, &c.OwnerName, &c.WorkHours, &prep, &date); err != nil {
			return c, err
		}
		c.PrepHours = decimalPtr(prep)
		var err error
		c.Date, err = parseDate(date)
		return c, err
	}, query, windowArgs(client, window, page)...)
}

func (s *Store) CampaignUnits(ctx context.Context, client budget.ClientID, window budget.Period, page budget.Page) ([]budget.CampaignUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, client_id, person_id, owner_name, hours_total, date, brand, market, segment, workstream
		FROM campaign_units
		WHERE ` + windowClause + `
		ORDER BY id
		LIMIT ? OFFSET ?
	`
	return queryRows(ctx, s.db, func(sc scanner) (budget.CampaignUnit, error) {
		var (
			u    budget.CampaignUnit
			date sql.NullString
		)
		if err := sc.Scan(&u.ID, &u.ClientID, &u.PersonID, &u.OwnerName, &u.HoursTotal, &date,
			&u.Brand, &u.Market, &u.Segment, &u.Workstream); err != nil {
			return u, err
		}
		var err error
		u.Date, err = parseDate(date)
		return u, err
	}, query, windowArgs(client, window, page)...)
}

func (s *Store) EffortEntries(ctx context.Context, client budget.ClientID, window budget.Period, page budget.Page) ([]budget.EffortEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, client_id, person_id, owner_name, hours, date, workstream
		FROM effort_entries
		WHERE ` + windowClause + `
		ORDER BY id
		LIMIT ? OFFSET ?
	`
	return queryRows(ctx, s.db, func(sc scanner) (budget.EffortEntry, error) {
		var (
			e    budget.EffortEntry
			date sql.NullString
		)
		if err := sc.Scan(&e.ID, &e.ClientID, &e.PersonID, &e.OwnerName, &e.Hours, &date, &e.Workstream); err != nil {
			return e, err
		}
		var err error
		e.Date, err = parseDate(date)
		return e, err
	}, query, windowArgs(client, window, page)...)
}

func windowArgs(client budget.ClientID, window budget.Period, page budget.Page) []any {
	limit := page.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	return []any{client, window.Start.String(), window.End.String(), limit, page.Offset}
}

// =============================================================================
// WRITES (budget.Writer)
// =============================================================================

func (s *Store) SaveRoles(ctx context.Context, rows ...budget.Role) error {
	query := `
		INSERT INTO roles (id, client_id, year, name, pool_amount, currency, active, display_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			year = excluded.year,
			name = excluded.name,
			pool_amount = excluded.pool_amount,
			currency = excluded.currency,
			active = excluded.active,
			display_order = excluded.display_order
	`
	return saveRows(ctx, s, "roles", query, rows, func(r budget.Role) []any {
		return []any{newID(string(r.ID)), r.ClientID, r.Year, r.Name, r.PoolAmount.String(), r.Currency, r.Active, r.DisplayOrder}
	})
}

func (s *Store) SaveAssignments(ctx context.Context, rows ...budget.Assignment) error {
	query := `
		INSERT INTO role_assignments
		(id, client_id, year, role_id, person_id, start_date, end_date, active, allocation_amount, allocation_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			year = excluded.year,
			role_id = excluded.role_id,
			person_id = excluded.person_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			active = excluded.active,
			allocation_amount = excluded.allocation_amount,
			allocation_pct = excluded.allocation_pct
	`
	return saveRows(ctx, s, "role_assignments", query, rows, func(a budget.Assignment) []any {
		return []any{newID(a.ID), a.ClientID, a.Year, a.RoleID, a.PersonID,
			dateArg(a.StartDate), dateArg(a.EndDate), a.Active,
			decimalArg(a.AllocationAmount), decimalArg(a.AllocationPct)}
	})
}

func (s *Store) SavePeople(ctx context.Context, rows ...budget.Person) error {
	query := `
		INSERT INTO people (id, client_id, name, active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			name = excluded.name,
			active = excluded.active
	`
	return saveRows(ctx, s, "people", query, rows, func(p budget.Person) []any {
		return []any{newID(string(p.ID)), p.ClientID, p.Name, p.Active}
	})
}

func (s *Store) SaveRates(ctx context.Context, rows ...budget.OwnerRate) error {
	query := `
		INSERT INTO owner_rates (id, client_id, year, person_id, owner_name, daily_rate, currency)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			year = excluded.year,
			person_id = excluded.person_id,
			owner_name = excluded.owner_name,
			daily_rate = excluded.daily_rate,
			currency = excluded.currency
	`
	return saveRows(ctx, s, "owner_rates", query, rows, func(r budget.OwnerRate) []any {
		return []any{newID(r.ID), r.ClientID, r.Year, r.PersonID, r.OwnerName, r.DailyRate.String(), r.Currency}
	})
}

func (s *Store) SaveAliases(ctx context.Context, rows ...budget.Alias) error {
	query := `
		INSERT INTO owner_aliases (id, client_id, owner_name, person_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			owner_name = excluded.owner_name,
			person_id = excluded.person_id
	`
	return saveRows(ctx, s, "owner_aliases", query, rows, func(a budget.Alias) []any {
		return []any{newID(a.ID), a.ClientID, a.OwnerName, a.PersonID}
	})
}

func (s *Store) SaveEntities(ctx context.Context, rows ...budget.EntityAssignment) error {
	query := `
		INSERT INTO entity_assignments (id, client_id, year, person_id, entity)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			year = excluded.year,
			person_id = excluded.person_id,
			entity = excluded.entity
	`
	return saveRows(ctx, s, "entity_assignments", query, rows, func(e budget.EntityAssignment) []any {
		return []any{newID(e.ID), e.ClientID, e.Year, e.PersonID, e.Entity}
	})
}

func (s *Store) SaveDataQuality(ctx context.Context, rows ...budget.DataQualityContribution) error {
	query := `
		INSERT INTO data_quality_contributions (id, client_id, person_id, owner_name, work_hours, prep_hours, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			person_id = excluded.person_id,
			owner_name = excluded.owner_name,
			work_hours = excluded.work_hours,
			prep_hours = excluded.prep_hours,
			date = excluded.date
	`
	return saveRows(ctx, s, "data_quality_contributions", query, rows, func(c budget.DataQualityContribution) []any {
		return []any{newID(c.ID), c.ClientID, c.PersonID, c.OwnerName, c.WorkHours.String(),
			decimalArg(c.PrepHours), dateArg(c.Date)}
	})
}

func (s *Store) SaveCampaignUnits(ctx context.Context, rows ...budget.CampaignUnit) error {
	query := `
		INSERT INTO campaign_units
		(id, client_id, person_id, owner_name, hours_total, date, brand, market, segment, workstream)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			person_id = excluded.person_id,
			owner_name = excluded.owner_name,
			hours_total = excluded.hours_total,
			date = excluded.date,
			brand = excluded.brand,
			market = excluded.market,
			segment = excluded.segment,
			workstream = excluded.workstream
	`
	return saveRows(ctx, s, "campaign_units", query, rows, func(u budget.CampaignUnit) []any {
		return []any{newID(u.ID), u.ClientID, u.PersonID, u.OwnerName, u.HoursTotal.String(),
			dateArg(u.Date), u.Brand, u.Market, u.Segment, u.Workstream}
	})
}

func (s *Store) SaveEffortEntries(ctx context.Context, rows ...budget.EffortEntry) error {
	query := `
		INSERT INTO effort_entries (id, client_id, person_id, owner_name, hours, date, workstream)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			person_id = excluded.person_id,
			owner_name = excluded.owner_name,
			hours = excluded.hours,
			date = excluded.date,
			workstream = excluded.workstream
	`
	return saveRows(ctx, s, "effort_entries", query, rows, func(e budget.EffortEntry) []any {
		return []any{newID(e.ID), e.ClientID, e.PersonID, e.OwnerName, e.Hours.String(),
			dateArg(e.Date), e.Workstream}
	})
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"roles", "role_assignments", "people", "owner_rates", "owner_aliases", "entity_assignments",
		"data_quality_contributions", "campaign_units", "effort_entries",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func queryRows[T any](ctx context.Context, db *sql.DB, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		row, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// saveRows upserts all rows in one transaction.
func saveRows[T any](ctx context.Context, s *Store, table, query string, rows []T, args func(T) []any) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, args(row)...); err != nil {
			return fmt.Errorf("failed to save %s row: %w", table, err)
		}
	}
	return tx.Commit()
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func dateArg(tp *budget.TimePoint) sql.NullString {
	if tp == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: tp.String(), Valid: true}
}

func parseDate(ns sql.NullString) (*budget.TimePoint, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	tp, err := budget.ParseTimePoint(ns.String)
	if err != nil {
		return nil, err
	}
	return &tp, nil
}

func decimalArg(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func decimalPtr(nd decimal.NullDecimal) *decimal.Decimal {
	if !nd.Valid {
		return nil
	}
	d := nd.Decimal
	return &d
}
