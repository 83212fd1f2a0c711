/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the budget model from the external API contract, allowing:
  - Field renaming without breaking clients
  - Decimal values rendered as plain JSON numbers for dashboards
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Small response wrappers

TYPES:
  Snapshot:
    SnapshotDTO, RoleSummaryDTO, PersonRowDTO, MonthlyDTO, ProductionDTO

  Catalog:
    RoleDTO (request bodies reuse factory.*JSON)

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

NUMBERS:
  All money/hour/day figures are converted from decimal.Decimal with
  InexactFloat64. Computation stays exact; only the wire is lossy.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/catalog.go: Request row schemas
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// SNAPSHOT
// =============================================================================

// SnapshotDTO is the full snapshot for one client and year.
type SnapshotDTO struct {
	ClientID string  `json:"client_id"`
	Year     int     `json:"year"`
	Currency string  `json:"currency"`
	AsOfDate *string `json:"as_of_date"`

	PlanTotal            float64 `json:"plan_total"`
	ActualTotal          float64 `json:"actual_total"`
	Remaining            float64 `json:"remaining"`
	Utilization          float64 `json:"utilization"`
	TotalHours           float64 `json:"total_hours"`
	TotalDays            float64 `json:"total_days"`
	UnmappedTotal        float64 `json:"unmapped_total"`
	UnmappedRecords      int     `json:"unmapped_records"`
	UnassignedRoleActual float64 `json:"unassigned_role_actual"`

	Roles   []RoleSummaryDTO `json:"roles"`
	People  []PersonRowDTO   `json:"people"`
	Options OptionsDTO       `json:"options"`

	ScopeTotals     map[string]float64            `json:"scope_totals"`
	EntityTotals    map[string]float64            `json:"entity_totals"`
	RoleActual      map[string]float64            `json:"role_actual"`
	RoleScopeActual map[string]map[string]float64 `json:"role_scope_actual"`
	Monthly         MonthlyDTO                    `json:"monthly"`

	Production       ProductionDTO              `json:"production"`
	Counts           map[string]SourceCountsDTO `json:"counts"`
	ResolutionCounts map[string]int             `json:"resolution_counts"`
}

// MonthlyDTO holds every monthly series (index 0 = January).
type MonthlyDTO struct {
	Actual            [12]float64                                  `json:"actual"`
	ByScope           map[string][12]float64                       `json:"by_scope"`
	ByPerson          map[string][12]float64                       `json:"by_person"`
	ByEntity          map[string][12]float64                       `json:"by_entity"`
	ByRole            map[string][12]float64                       `json:"by_role"`
	ByPersonScope     map[string]map[string][12]float64            `json:"by_person_scope"`
	ByEntityScope     map[string]map[string][12]float64            `json:"by_entity_scope"`
	ByRoleScope       map[string]map[string][12]float64            `json:"by_role_scope"`
	ByEntityRole      map[string]map[string][12]float64            `json:"by_entity_role"`
	ByEntityRoleScope map[string]map[string]map[string][12]float64 `json:"by_entity_role_scope"`
}

// RoleSummaryDTO compares one role's pool to its actuals.
type RoleSummaryDTO struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Currency    string             `json:"currency"`
	Mode        string             `json:"mode"`
	Pool        float64            `json:"pool"`
	Allocated   float64            `json:"allocated"`
	Actual      float64            `json:"actual"`
	Remaining   float64            `json:"remaining"`
	Utilization float64            `json:"utilization"`
	ByScope     map[string]float64 `json:"by_scope"`
}

// PersonRowDTO is one row of the per-person table.
type PersonRowDTO struct {
	Key          string             `json:"key"`
	PersonID     string             `json:"person_id,omitempty"`
	Name         string             `json:"name"`
	Entity       string             `json:"entity"`
	RoleIDs      []string           `json:"role_ids"`
	RoleNames    []string           `json:"role_names"`
	RoleShares   map[string]float64 `json:"role_shares"`
	Plan         float64            `json:"plan"`
	Actual       float64            `json:"actual"`
	Remaining    float64            `json:"remaining"`
	ScopeSpend   map[string]float64 `json:"scope_spend"`
	IsUnassigned bool               `json:"is_unassigned"`
	IsUnmapped   bool               `json:"is_unmapped"`
}

// OptionsDTO lists filter values.
type OptionsDTO struct {
	Roles    []RoleOptionDTO `json:"roles"`
	Scopes   []string        `json:"scopes"`
	Entities []string        `json:"entities"`
}

type RoleOptionDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SourceCountsDTO tallies record outcomes for one activity log.
type SourceCountsDTO struct {
	Seen        int `json:"seen"`
	Ignored     int `json:"ignored"`
	Unspendable int `json:"unspendable"`
	Spent       int `json:"spent"`
	Unmapped    int `json:"unmapped"`
}

// ProductionDTO is the campaign production breakdown.
type ProductionDTO struct {
	Overall  BreakdownDTO            `json:"overall"`
	ByPerson map[string]BreakdownDTO `json:"by_person"`
}

type BreakdownDTO struct {
	Totals    MetricsDTO            `json:"totals"`
	ByBrand   map[string]MetricsDTO `json:"by_brand"`
	ByMarket  map[string]MetricsDTO `json:"by_market"`
	BySegment map[string]MetricsDTO `json:"by_segment"`
	ByScope   map[string]MetricsDTO `json:"by_scope"`
}

type MetricsDTO struct {
	Amount float64 `json:"amount"`
	Hours  float64 `json:"hours"`
	Days   float64 `json:"days"`
	Units  int     `json:"units"`
}

// =============================================================================
// CATALOG
// =============================================================================

// RoleDTO represents a role in API responses.
type RoleDTO struct {
	ID           string  `json:"id"`
	Year         int     `json:"year"`
	Name         string  `json:"name"`
	PoolAmount   float64 `json:"pool_amount"`
	Currency     string  `json:"currency"`
	Active       bool    `json:"active"`
	DisplayOrder int     `json:"display_order"`
}

// SaveResponse reports how many rows a write stored.
type SaveResponse struct {
	Saved int `json:"saved"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ClientID    string `json:"client_id"`
	Year        int    `json:"year"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION
// =============================================================================

func toSnapshotDTO(s *budget.Snapshot) SnapshotDTO {
	act := s.Actuals
	dto := SnapshotDTO{
		ClientID:             string(s.ClientID),
		Year:                 s.Year,
		Currency:             s.Currency,
		PlanTotal:            num(s.PlanTotal),
		ActualTotal:          num(s.ActualTotal),
		Remaining:            num(s.Remaining),
		Utilization:          num(s.Utilization),
		TotalHours:           num(s.TotalHours),
		TotalDays:            num(s.TotalDays),
		UnmappedTotal:        num(s.UnmappedTotal),
		UnmappedRecords:      s.UnmappedRecords,
		UnassignedRoleActual: num(s.UnassignedRoleActual),
		Roles:                make([]RoleSummaryDTO, 0, len(s.Roles)),
		People:               make([]PersonRowDTO, 0, len(s.People)),
		ScopeTotals:          nums(act.ScopeTotals),
		EntityTotals:         nums(act.EntityTotals),
		RoleActual:           nums(act.RoleActual),
		RoleScopeActual:      nums2(act.RoleScopeActual),
		Monthly: MonthlyDTO{
			Actual:            series(act.MonthlyActual),
			ByScope:           seriesMap(act.MonthlyScope),
			ByPerson:          seriesMap(act.MonthlyPerson),
			ByEntity:          seriesMap(act.MonthlyEntity),
			ByRole:            seriesMap(act.MonthlyRole),
			ByPersonScope:     seriesMap2(act.MonthlyPersonScope),
			ByEntityScope:     seriesMap2(act.MonthlyEntityScope),
			ByRoleScope:       seriesMap2(act.MonthlyRoleScope),
			ByEntityRole:      seriesMap2(act.MonthlyEntityRole),
			ByEntityRoleScope: seriesMap3(act.MonthlyEntityRoleScope),
		},
		Counts:           make(map[string]SourceCountsDTO, len(s.Counts)),
		ResolutionCounts: make(map[string]int, len(s.ResolutionCounts)),
	}
	if s.AsOfDate != nil {
		d := s.AsOfDate.String()
		dto.AsOfDate = &d
	}

	for _, r := range s.Roles {
		dto.Roles = append(dto.Roles, RoleSummaryDTO{
			ID:          string(r.RoleID),
			Name:        r.Name,
			Currency:    r.Currency,
			Mode:        string(r.Mode),
			Pool:        num(r.Pool),
			Allocated:   num(r.Allocated),
			Actual:      num(r.Actual),
			Remaining:   num(r.Remaining),
			Utilization: num(r.Utilization),
			ByScope:     nums(r.ByScope),
		})
	}

	for _, p := range s.People {
		row := PersonRowDTO{
			Key:          p.Key,
			PersonID:     string(p.PersonID),
			Name:         p.Name,
			Entity:       p.Entity,
			RoleIDs:      make([]string, 0, len(p.RoleIDs)),
			RoleNames:    p.RoleNames,
			RoleShares:   make(map[string]float64, len(p.RoleShares)),
			Plan:         num(p.Plan),
			Actual:       num(p.Actual),
			Remaining:    num(p.Remaining),
			ScopeSpend:   nums(p.ScopeSpend),
			IsUnassigned: p.IsUnassigned,
			IsUnmapped:   p.IsUnmapped,
		}
		if row.RoleNames == nil {
			row.RoleNames = []string{}
		}
		for _, id := range p.RoleIDs {
			row.RoleIDs = append(row.RoleIDs, string(id))
		}
		for _, sh := range p.RoleShares {
			row.RoleShares[string(sh.RoleID)] = num(sh.Share)
		}
		dto.People = append(dto.People, row)
	}

	dto.Options = OptionsDTO{
		Roles:    make([]RoleOptionDTO, 0, len(s.Options.Roles)),
		Scopes:   nonNil(s.Options.Scopes),
		Entities: nonNil(s.Options.Entities),
	}
	for _, o := range s.Options.Roles {
		dto.Options.Roles = append(dto.Options.Roles, RoleOptionDTO{ID: string(o.ID), Name: o.Name})
	}

	for kind, c := range s.Counts {
		dto.Counts[string(kind)] = SourceCountsDTO(c)
	}
	for path, n := range s.ResolutionCounts {
		dto.ResolutionCounts[string(path)] = n
	}

	if s.Production != nil {
		dto.Production = ProductionDTO{
			Overall:  toBreakdownDTO(s.Production.Overall),
			ByPerson: make(map[string]BreakdownDTO, len(s.Production.ByPerson)),
		}
		for key, b := range s.Production.ByPerson {
			dto.Production.ByPerson[key] = toBreakdownDTO(b)
		}
	}

	return dto
}

func toBreakdownDTO(b *budget.ProductionBreakdown) BreakdownDTO {
	return BreakdownDTO{
		Totals:    toMetricsDTO(&b.Totals),
		ByBrand:   metricsMap(b.ByBrand),
		ByMarket:  metricsMap(b.ByMarket),
		BySegment: metricsMap(b.BySegment),
		ByScope:   metricsMap(b.ByScope),
	}
}

func toMetricsDTO(m *budget.Metrics) MetricsDTO {
	return MetricsDTO{Amount: num(m.Amount), Hours: num(m.Hours), Days: num(m.Days), Units: m.Units}
}

func toRoleDTO(r budget.Role) RoleDTO {
	return RoleDTO{
		ID:           string(r.ID),
		Year:         r.Year,
		Name:         r.Name,
		PoolAmount:   num(r.PoolAmount),
		Currency:     r.Currency,
		Active:       r.Active,
		DisplayOrder: r.DisplayOrder,
	}
}

// =============================================================================
// NUMBER HELPERS
// =============================================================================

func num(d decimal.Decimal) float64 { return d.InexactFloat64() }

func nums(m map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = num(v)
	}
	return out
}

func nums2(m map[string]map[string]decimal.Decimal) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(m))
	for k, v := range m {
		out[k] = nums(v)
	}
	return out
}

func series(s budget.Series) [12]float64 {
	var out [12]float64
	for i, v := range s {
		out[i] = num(v)
	}
	return out
}

func seriesMap(m map[string]*budget.Series) map[string][12]float64 {
	out := make(map[string][12]float64, len(m))
	for k, v := range m {
		out[k] = series(*v)
	}
	return out
}

func seriesMap2(m map[string]map[string]*budget.Series) map[string]map[string][12]float64 {
	out := make(map[string]map[string][12]float64, len(m))
	for k, v := range m {
		out[k] = seriesMap(v)
	}
	return out
}

func seriesMap3(m map[string]map[string]map[string]*budget.Series) map[string]map[string]map[string][12]float64 {
	out := make(map[string]map[string]map[string][12]float64, len(m))
	for k, v := range m {
		out[k] = seriesMap2(v)
	}
	return out
}

func metricsMap(m map[string]*budget.Metrics) map[string]MetricsDTO {
	out := make(map[string]MetricsDTO, len(m))
	for k, v := range m {
		out[k] = toMetricsDTO(v)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
