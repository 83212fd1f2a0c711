/*
Package factory provides JSON to Go catalog conversion.

PURPOSE:
  Converts JSON catalog documents into budget rows (roles, assignments,
  people, rates, aliases, entities and the three activity logs). This lets
  finance teams load a year's budget and activity exports without code
  changes, and gives the demo scenarios a single text format.

JSON SCHEMA:
  {
    "client_id": "acme",
    "year": 2025,
    "currency": "USD",
    "roles": [
      {"id": "QA", "name": "Quality", "pool_amount": 12000, "display_order": 1}
    ],
    "assignments": [
      {"role_id": "QA", "person_id": "alice", "start_date": "2025-01-01"},
      {"role_id": "QA", "person_id": "bob", "allocation_pct": 50}
    ],
    "people": [{"id": "alice", "name": "Alice"}],
    "rates": [
      {"person_id": "alice", "daily_rate": 100},
      {"owner_name": "Freelance Bob", "daily_rate": "70.50"}
    ],
    "aliases": [{"owner_name": "A. Smith", "person_id": "alice"}],
    "entities": [{"person_id": "alice", "entity": "EMEA"}],
    "data_quality": [{"person_id": "alice", "work_hours": 70, "date": "2025-06-15"}],
    "campaign_units": [{"owner_name": "A. Smith", "hours_total": 3.5, "brand": "Acme"}],
    "effort_entries": [{"person_id": "bob", "hours": 14, "workstream": "Migration"}]
  }

DEFAULTS:
  - client_id and year flow down to every row that omits them
  - currency flows down to roles and rates (USD when absent everywhere)
  - active defaults to true
  - ids are generated for rows other than roles and people

VALIDATION:
  Every invalid field is reported as a *budget.ValidationError; all of
  them are joined so errors.Is(err, budget.ErrInvalidCatalog) holds.

USAGE:
  f := factory.NewCatalogFactory()
  cat, err := f.ParseCatalog(body, "acme")
  if err != nil { ... }
  err = cat.Save(ctx, store)

SEE ALSO:
  - budget/types.go: Row types
  - api/scenarios.go: Demo catalogs in this format
*/
package factory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/warp/budget-engine/budget"
)

// DefaultCurrency applies when neither the row nor the catalog names one.
const DefaultCurrency = "USD"

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// CatalogJSON is the JSON representation of a catalog document.
// Numbers may be JSON numbers or quoted decimal strings.
type CatalogJSON struct {
	ClientID string `json:"client_id,omitempty"`
	Year     int    `json:"year,omitempty"`
	Currency string `json:"currency,omitempty"`

	Roles         []RoleJSON         `json:"roles,omitempty"`
	Assignments   []AssignmentJSON   `json:"assignments,omitempty"`
	People        []PersonJSON       `json:"people,omitempty"`
	Rates         []RateJSON         `json:"rates,omitempty"`
	Aliases       []AliasJSON        `json:"aliases,omitempty"`
	Entities      []EntityJSON       `json:"entities,omitempty"`
	DataQuality   []DataQualityJSON  `json:"data_quality,omitempty"`
	CampaignUnits []CampaignUnitJSON `json:"campaign_units,omitempty"`
	EffortEntries []EffortEntryJSON  `json:"effort_entries,omitempty"`
}

type RoleJSON struct {
	ID           string          `json:"id"`
	ClientID     string          `json:"client_id,omitempty"`
	Year         int             `json:"year,omitempty"`
	Name         string          `json:"name,omitempty"`
	PoolAmount   decimal.Decimal `json:"pool_amount"`
	Currency     string          `json:"currency,omitempty"`
	Active       *bool           `json:"active,omitempty"`
	DisplayOrder int             `json:"display_order,omitempty"`
}

type AssignmentJSON struct {
	ID               string           `json:"id,omitempty"`
	ClientID         string           `json:"client_id,omitempty"`
	Year             int              `json:"year,omitempty"`
	RoleID           string           `json:"role_id"`
	PersonID         string           `json:"person_id"`
	StartDate        string           `json:"start_date,omitempty"`
	EndDate          string           `json:"end_date,omitempty"`
	Active           *bool            `json:"active,omitempty"`
	AllocationAmount *decimal.Decimal `json:"allocation_amount,omitempty"`
	AllocationPct    *decimal.Decimal `json:"allocation_pct,omitempty"`
}

type PersonJSON struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Active   *bool  `json:"active,omitempty"`
}

type RateJSON struct {
	ID        string          `json:"id,omitempty"`
	ClientID  string          `json:"client_id,omitempty"`
	Year      int             `json:"year,omitempty"`
	PersonID  string          `json:"person_id,omitempty"`
	OwnerName string          `json:"owner_name,omitempty"`
	DailyRate decimal.Decimal `json:"daily_rate"`
	Currency  string          `json:"currency,omitempty"`
}

type AliasJSON struct {
	ID        string `json:"id,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	OwnerName string `json:"owner_name"`
	PersonID  string `json:"person_id"`
}

type EntityJSON struct {
	ID       string `json:"id,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Year     int    `json:"year,omitempty"`
	PersonID string `json:"person_id"`
	Entity   string `json:"entity"`
}

type DataQualityJSON struct {
	ID        string           `json:"id,omitempty"`
	ClientID  string           `json:"client_id,omitempty"`
	PersonID  string           `json:"person_id,omitempty"`
	OwnerName string           `json:"owner_name,omitempty"`
	WorkHours decimal.Decimal  `json:"work_hours"`
	PrepHours *decimal.Decimal `json:"prep_hours,omitempty"`
	Date      string           `json:"date,omitempty"`
}

type CampaignUnitJSON struct {
	ID         string          `json:"id,omitempty"`
	ClientID   string          `json:"client_id,omitempty"`
	PersonID   string          `json:"person_id,omitempty"`
	OwnerName  string          `json:"owner_name,omitempty"`
	HoursTotal decimal.Decimal `json:"hours_total"`
	Date       string          `json:"date,omitempty"`
	Brand      string          `json:"brand,omitempty"`
	Market     string          `json:"market,omitempty"`
	Segment    string          `json:"segment,omitempty"`
	Workstream string          `json:"workstream,omitempty"`
}

type EffortEntryJSON struct {
	ID         string          `json:"id,omitempty"`
	ClientID   string          `json:"client_id,omitempty"`
	PersonID   string          `json:"person_id,omitempty"`
	OwnerName  string          `json:"owner_name,omitempty"`
	Hours      decimal.Decimal `json:"hours"`
	Date       string          `json:"date,omitempty"`
	Workstream string          `json:"workstream,omitempty"`
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is a validated set of rows ready to be saved.
type Catalog struct {
	Roles         []budget.Role
	Assignments   []budget.Assignment
	People        []budget.Person
	Rates         []budget.OwnerRate
	Aliases       []budget.Alias
	Entities      []budget.EntityAssignment
	DataQuality   []budget.DataQualityContribution
	CampaignUnits []budget.CampaignUnit
	EffortEntries []budget.EffortEntry
}

// Len is the total number of rows.
func (c *Catalog) Len() int {
	return len(c.Roles) + len(c.Assignments) + len(c.People) + len(c.Rates) +
		len(c.Aliases) + len(c.Entities) +
		len(c.DataQuality) + len(c.CampaignUnits) + len(c.EffortEntries)
}

// Save writes every table. Each table is saved in one call; a failure
// stops at that table.
func (c *Catalog) Save(ctx context.Context, w budget.Writer) error {
	steps := []struct {
		table string
		save  func() error
	}{
		{"roles", func() error { return w.SaveRoles(ctx, c.Roles...) }},
		{"people", func() error { return w.SavePeople(ctx, c.People...) }},
		{"assignments", func() error { return w.SaveAssignments(ctx, c.Assignments...) }},
		{"owner_rates", func() error { return w.SaveRates(ctx, c.Rates...) }},
		{"aliases", func() error { return w.SaveAliases(ctx, c.Aliases...) }},
		{"entity_assignments", func() error { return w.SaveEntities(ctx, c.Entities...) }},
		{"data_quality_contributions", func() error { return w.SaveDataQuality(ctx, c.DataQuality...) }},
		{"campaign_units", func() error { return w.SaveCampaignUnits(ctx, c.CampaignUnits...) }},
		{"effort_entries", func() error { return w.SaveEffortEntries(ctx, c.EffortEntries...) }},
	}
	for _, step := range steps {
		if err := step.save(); err != nil {
			return fmt.Errorf("save %s: %w", step.table, err)
		}
	}
	return nil
}

// =============================================================================
// CATALOG FACTORY
// =============================================================================

// CatalogFactory converts JSON catalogs to budget rows.
type CatalogFactory struct{}

// NewCatalogFactory creates a new catalog factory.
func NewCatalogFactory() *CatalogFactory {
	return &CatalogFactory{}
}

// ParseCatalog parses a JSON document. client, when non-empty, overrides
// the document's client_id.
func (f *CatalogFactory) ParseCatalog(data []byte, client budget.ClientID) (*Catalog, error) {
	var cj CatalogJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return nil, fmt.Errorf("%w: failed to parse catalog JSON: %v", budget.ErrInvalidCatalog, err)
	}
	if client != "" {
		cj.ClientID = string(client)
	}
	return f.FromJSON(cj)
}

// FromJSON validates a CatalogJSON and converts it into rows.
func (f *CatalogFactory) FromJSON(cj CatalogJSON) (*Catalog, error) {
	b := &builder{doc: cj}
	if strings.TrimSpace(cj.ClientID) == "" {
		b.fail("catalog", 0, "client_id", "required")
	}

	cat := &Catalog{}
	for i, rj := range cj.Roles {
		cat.Roles = append(cat.Roles, b.role(i, rj))
	}
	for i, aj := range cj.Assignments {
		cat.Assignments = append(cat.Assignments, b.assignment(i, aj))
	}
	for i, pj := range cj.People {
		cat.People = append(cat.People, b.person(i, pj))
	}
	for i, rj := range cj.Rates {
		cat.Rates = append(cat.Rates, b.rate(i, rj))
	}
	for i, aj := range cj.Aliases {
		cat.Aliases = append(cat.Aliases, b.alias(i, aj))
	}
	for i, ej := range cj.Entities {
		cat.Entities = append(cat.Entities, b.entity(i, ej))
	}
	for i, dj := range cj.DataQuality {
		cat.DataQuality = append(cat.DataQuality, b.dataQuality(i, dj))
	}
	for i, uj := range cj.CampaignUnits {
		cat.CampaignUnits = append(cat.CampaignUnits, b.campaignUnit(i, uj))
	}
	for i, ej := range cj.EffortEntries {
		cat.EffortEntries = append(cat.EffortEntries, b.effortEntry(i, ej))
	}

	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return cat, nil
}

// =============================================================================
// ROW BUILDERS
// =============================================================================

// builder applies document defaults and collects validation errors.
type builder struct {
	doc  CatalogJSON
	errs []error
}

func (b *builder) fail(table string, index int, field, msg string) {
	b.errs = append(b.errs, &budget.ValidationError{Table: table, Index: index, Field: field, Msg: msg})
}

func (b *builder) client(own string) budget.ClientID {
	if b.doc.ClientID != "" {
		return budget.ClientID(b.doc.ClientID)
	}
	return budget.ClientID(own)
}

func (b *builder) year(table string, index int, own int) int {
	y := own
	if y == 0 {
		y = b.doc.Year
	}
	if y < 1 || y > 9999 {
		b.fail(table, index, "year", "required (1-9999)")
	}
	return y
}

func (b *builder) currency(table string, index int, own string) string {
	code := strings.TrimSpace(own)
	if code == "" {
		code = strings.TrimSpace(b.doc.Currency)
	}
	if code == "" {
		return DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		b.fail(table, index, "currency", fmt.Sprintf("%q is not an ISO 4217 code", code))
		return code
	}
	return unit.String()
}

func (b *builder) required(table string, index int, field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		b.fail(table, index, field, "required")
	}
	return value
}

func (b *builder) nonNegative(table string, index int, field string, d decimal.Decimal) {
	if d.IsNegative() {
		b.fail(table, index, field, "must not be negative")
	}
}

func (b *builder) date(table string, index int, field, value string) *budget.TimePoint {
	if value == "" {
		return nil
	}
	tp, err := budget.ParseTimePoint(value)
	if err != nil {
		b.fail(table, index, field, fmt.Sprintf("%q is not a YYYY-MM-DD date", value))
		return nil
	}
	return &tp
}

func (b *builder) owner(table string, index int, personID, ownerName string) {
	if strings.TrimSpace(personID) == "" && strings.TrimSpace(ownerName) == "" {
		b.fail(table, index, "person_id", "person_id or owner_name required")
	}
}

func (b *builder) role(i int, rj RoleJSON) budget.Role {
	const table = "roles"
	id := b.required(table, i, "id", rj.ID)
	name := strings.TrimSpace(rj.Name)
	if name == "" {
		name = id
	}
	b.nonNegative(table, i, "pool_amount", rj.PoolAmount)
	return budget.Role{
		ID:           budget.RoleID(id),
		ClientID:     b.client(rj.ClientID),
		Year:         b.year(table, i, rj.Year),
		Name:         name,
		PoolAmount:   rj.PoolAmount,
		Currency:     b.currency(table, i, rj.Currency),
		Active:       boolOr(rj.Active, true),
		DisplayOrder: rj.DisplayOrder,
	}
}

func (b *builder) assignment(i int, aj AssignmentJSON) budget.Assignment {
	const table = "assignments"
	a := budget.Assignment{
		ID:               newID(aj.ID),
		ClientID:         b.client(aj.ClientID),
		Year:             b.year(table, i, aj.Year),
		RoleID:           budget.RoleID(b.required(table, i, "role_id", aj.RoleID)),
		PersonID:         budget.PersonID(b.required(table, i, "person_id", aj.PersonID)),
		StartDate:        b.date(table, i, "start_date", aj.StartDate),
		EndDate:          b.date(table, i, "end_date", aj.EndDate),
		Active:           boolOr(aj.Active, true),
		AllocationAmount: aj.AllocationAmount,
		AllocationPct:    aj.AllocationPct,
	}
	if aj.AllocationAmount != nil {
		b.nonNegative(table, i, "allocation_amount", *aj.AllocationAmount)
	}
	if aj.AllocationPct != nil && (aj.AllocationPct.IsNegative() || aj.AllocationPct.GreaterThan(decimal.NewFromInt(100))) {
		b.fail(table, i, "allocation_pct", "must be between 0 and 100")
	}
	return a
}

func (b *builder) person(i int, pj PersonJSON) budget.Person {
	const table = "people"
	return budget.Person{
		ID:       budget.PersonID(b.required(table, i, "id", pj.ID)),
		ClientID: b.client(pj.ClientID),
		Name:     strings.TrimSpace(pj.Name),
		Active:   boolOr(pj.Active, true),
	}
}

func (b *builder) rate(i int, rj RateJSON) budget.OwnerRate {
	const table = "rates"
	b.owner(table, i, rj.PersonID, rj.OwnerName)
	b.nonNegative(table, i, "daily_rate", rj.DailyRate)
	return budget.OwnerRate{
		ID:        newID(rj.ID),
		ClientID:  b.client(rj.ClientID),
		Year:      b.year(table, i, rj.Year),
		PersonID:  budget.PersonID(strings.TrimSpace(rj.PersonID)),
		OwnerName: rj.OwnerName,
		DailyRate: rj.DailyRate,
		Currency:  b.currency(table, i, rj.Currency),
	}
}

func (b *builder) alias(i int, aj AliasJSON) budget.Alias {
	const table = "aliases"
	return budget.Alias{
		ID:        newID(aj.ID),
		ClientID:  b.client(aj.ClientID),
		OwnerName: b.required(table, i, "owner_name", aj.OwnerName),
		PersonID:  budget.PersonID(b.required(table, i, "person_id", aj.PersonID)),
	}
}

func (b *builder) entity(i int, ej EntityJSON) budget.EntityAssignment {
	const table = "entities"
	return budget.EntityAssignment{
		ID:       newID(ej.ID),
		ClientID: b.client(ej.ClientID),
		Year:     b.year(table, i, ej.Year),
		PersonID: budget.PersonID(b.required(table, i, "person_id", ej.PersonID)),
		Entity:   b.required(table, i, "entity", ej.Entity),
	}
}

func (b *builder) dataQuality(i int, dj DataQualityJSON) budget.DataQualityContribution {
	const table = "data_quality"
	b.owner(table, i, dj.PersonID, dj.OwnerName)
	if dj.PrepHours != nil {
		b.nonNegative(table, i, "prep_hours", *dj.PrepHours)
	}
	return budget.DataQualityContribution{
		ID:        newID(dj.ID),
		ClientID:  b.client(dj.ClientID),
		PersonID:  budget.PersonID(strings.TrimSpace(dj.PersonID)),
		OwnerName: dj.OwnerName,
		WorkHours: dj.WorkHours,
		PrepHours: dj.PrepHours,
		Date:      b.date(table, i, "date", dj.Date),
	}
}

func (b *builder) campaignUnit(i int, uj CampaignUnitJSON) budget.CampaignUnit {
	const table = "campaign_units"
	b.owner(table, i, uj.PersonID, uj.OwnerName)
	return budget.CampaignUnit{
		ID:         newID(uj.ID),
		ClientID:   b.client(uj.ClientID),
		PersonID:   budget.PersonID(strings.TrimSpace(uj.PersonID)),
		OwnerName:  uj.OwnerName,
		HoursTotal: uj.HoursTotal,
		Date:       b.date(table, i, "date", uj.Date),
		Brand:      uj.Brand,
		Market:     uj.Market,
		Segment:    uj.Segment,
		Workstream: uj.Workstream,
	}
}

func (b *builder) effortEntry(i int, ej EffortEntryJSON) budget.EffortEntry {
	const table = "effort_entries"
	b.owner(table, i, ej.PersonID, ej.OwnerName)
	return budget.EffortEntry{
		ID:         newID(ej.ID),
		ClientID:   b.client(ej.ClientID),
		PersonID:   budget.PersonID(strings.TrimSpace(ej.PersonID)),
		OwnerName:  ej.OwnerName,
		Hours:      ej.Hours,
		Date:       b.date(table, i, "date", ej.Date),
		Workstream: ej.Workstream,
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func newID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}
