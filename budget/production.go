package budget

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCTION BREAKDOWN - Campaign units only
// =============================================================================

// Fallback labels for blank campaign dimensions. Blank values are kept
// under these labels so breakdowns always balance with Totals.
const (
	UnknownBrand   = "Unknown brand"
	UnknownMarket  = "Unknown market"
	UnknownSegment = "Unknown segment"
	UnknownScope   = "Unknown scope"
)

// Metrics are the four parallel production measures.
type Metrics struct {
	Amount decimal.Decimal
	Hours  decimal.Decimal
	Days   decimal.Decimal
	Units  int
}

func (m *Metrics) add(s Spend) {
	m.Amount = m.Amount.Add(s.Amount)
	m.Hours = m.Hours.Add(s.Hours)
	m.Days = m.Days.Add(s.Days)
	m.Units++
}

// ProductionBreakdown splits production spend by brand, market, segment
// and scope.
type ProductionBreakdown struct {
	Totals    Metrics
	ByBrand   map[string]*Metrics
	ByMarket  map[string]*Metrics
	BySegment map[string]*Metrics
	ByScope   map[string]*Metrics
}

func newProductionBreakdown() *ProductionBreakdown {
	return &ProductionBreakdown{
		ByBrand:   make(map[string]*Metrics),
		ByMarket:  make(map[string]*Metrics),
		BySegment: make(map[string]*Metrics),
		ByScope:   make(map[string]*Metrics),
	}
}

func (b *ProductionBreakdown) add(s Spend) {
	dims := CampaignDimensions{}
	if s.Record.Campaign != nil {
		dims = *s.Record.Campaign
	}
	b.Totals.add(s)
	metricsFor(b.ByBrand, labelOr(dims.Brand, UnknownBrand)).add(s)
	metricsFor(b.ByMarket, labelOr(dims.Market, UnknownMarket)).add(s)
	metricsFor(b.BySegment, labelOr(dims.Segment, UnknownSegment)).add(s)
	metricsFor(b.ByScope, labelOr(s.Record.Scope, UnknownScope)).add(s)
}

// ProductionCalculator tracks production spend overall and per person key.
type ProductionCalculator struct {
	Overall  *ProductionBreakdown
	ByPerson map[string]*ProductionBreakdown
}

func NewProductionCalculator() *ProductionCalculator {
	return &ProductionCalculator{
		Overall:  newProductionBreakdown(),
		ByPerson: make(map[string]*ProductionBreakdown),
	}
}

// Add folds a priced campaign record. Records from other sources and
// non-positive amounts are ignored.
func (p *ProductionCalculator) Add(s Spend) {
	if s.Record.Source != SourceCampaign || !s.Amount.IsPositive() {
		return
	}
	p.Overall.add(s)

	key := s.Identity.Key()
	b, ok := p.ByPerson[key]
	if !ok {
		b = newProductionBreakdown()
		p.ByPerson[key] = b
	}
	b.add(s)
}

func metricsFor(m map[string]*Metrics, k string) *Metrics {
	v, ok := m[k]
	if !ok {
		v = &Metrics{}
		m[k] = v
	}
	return v
}

func labelOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
