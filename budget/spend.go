/*
spend.go - Activity records and the shared spend primitive

PURPOSE:
  Three activity logs feed the actual side. Each has its own shape and its
  own way of deriving hours:

    DataQualityContribution: hours = work + (prep, or work * 0.35 if unset)
    CampaignUnit:            hours = hours_total
    EffortEntry:             hours = hours

  Every source normalises into one canonical ActivityRecord before pricing,
  so rate and alias semantics are identical for all three.

PRICING:
  days   = hours / 7
  amount = days * dailyRate

  Records with hours <= 0, or without any resolvable rate, contribute
  nothing: no amount, no hours, no days.
*/
package budget

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SOURCE RECORDS
// =============================================================================

// SourceKind identifies which activity log a record came from.
type SourceKind string

const (
	SourceDataQuality SourceKind = "data_quality"
	SourceCampaign    SourceKind = "campaign"
	SourceEffort      SourceKind = "effort"
)

// SourceKinds lists the activity logs in processing order.
var SourceKinds = []SourceKind{SourceDataQuality, SourceCampaign, SourceEffort}

// Activity is any raw record that can be normalised.
type Activity interface {
	Normalize() ActivityRecord
}

// DataQualityContribution is one data-quality work item.
type DataQualityContribution struct {
	ID        string
	ClientID  ClientID
	PersonID  PersonID
	OwnerName string
	WorkHours decimal.Decimal
	PrepHours *decimal.Decimal // nil = not recorded
	Date      *TimePoint
}

func (c DataQualityContribution) Normalize() ActivityRecord {
	prep := c.WorkHours.Mul(DefaultPrepRatio)
	if c.PrepHours != nil {
		prep = *c.PrepHours
	}
	return ActivityRecord{
		Source:    SourceDataQuality,
		SourceID:  c.ID,
		PersonID:  c.PersonID,
		OwnerName: c.OwnerName,
		Hours:     c.WorkHours.Add(prep),
		Date:      c.Date,
		Scope:     ScopeDataQuality,
	}
}

// CampaignUnit is one produced campaign asset.
type CampaignUnit struct {
	ID         string
	ClientID   ClientID
	PersonID   PersonID
	OwnerName  string
	HoursTotal decimal.Decimal
	Date       *TimePoint
	Brand      string
	Market     string
	Segment    string
	Workstream string
}

func (u CampaignUnit) Normalize() ActivityRecord {
	return ActivityRecord{
		Source:    SourceCampaign,
		SourceID:  u.ID,
		PersonID:  u.PersonID,
		OwnerName: u.OwnerName,
		Hours:     u.HoursTotal,
		Date:      u.Date,
		Scope:     scopeOr(u.Workstream, ScopeCampaignProduction),
		Campaign: &CampaignDimensions{
			Brand:   strings.TrimSpace(u.Brand),
			Market:  strings.TrimSpace(u.Market),
			Segment: strings.TrimSpace(u.Segment),
		},
	}
}

// EffortEntry is a manually logged block of work.
type EffortEntry struct {
	ID         string
	ClientID   ClientID
	PersonID   PersonID
	OwnerName  string
	Hours      decimal.Decimal
	Date       *TimePoint
	Workstream string
}

func (e EffortEntry) Normalize() ActivityRecord {
	return ActivityRecord{
		Source:    SourceEffort,
		SourceID:  e.ID,
		PersonID:  e.PersonID,
		OwnerName: e.OwnerName,
		Hours:     e.Hours,
		Date:      e.Date,
		Scope:     scopeOr(e.Workstream, ScopeManualEffort),
	}
}

func scopeOr(workstream, fallback string) string {
	if s := strings.TrimSpace(workstream); s != "" {
		return s
	}
	return fallback
}

// =============================================================================
// CANONICAL RECORD
// =============================================================================

// CampaignDimensions are the production-only dimensions.
type CampaignDimensions struct {
	Brand   string
	Market  string
	Segment string
}

// ActivityRecord is the canonical shape every source normalises into.
type ActivityRecord struct {
	Source    SourceKind
	SourceID  string
	PersonID  PersonID
	OwnerName string
	Hours     decimal.Decimal
	Date      *TimePoint // nil = dateless
	Scope     string
	Campaign  *CampaignDimensions
}

// Spend is a priced activity record.
type Spend struct {
	Record   ActivityRecord
	Identity Identity
	Rate     Rate
	Hours    decimal.Decimal
	Days     decimal.Decimal
	Amount   decimal.Decimal
}

// =============================================================================
// SPEND RESOLVER
// =============================================================================

// Outcome explains what happened to a record.
type Outcome string

const (
	OutcomeSpent       Outcome = "spent"
	OutcomeIgnored     Outcome = "ignored"     // hours <= 0
	OutcomeUnspendable Outcome = "unspendable" // no rate
)

// SpendResolver prices canonical records. It is the one place where hours
// become money.
type SpendResolver struct {
	Identities *IdentityResolver
}

// Resolve prices a record. The Outcome is OutcomeSpent only when the
// returned Spend carries a positive hour quantity and a rate.
func (s *SpendResolver) Resolve(rec ActivityRecord) (Spend, Outcome) {
	if !rec.Hours.IsPositive() {
		return Spend{}, OutcomeIgnored
	}

	id := s.Identities.Resolve(rec.PersonID, rec.OwnerName)
	rate, ok := s.Identities.RateFor(id)
	if !ok {
		return Spend{Record: rec, Identity: id}, OutcomeUnspendable
	}

	days := rec.Hours.Div(HoursPerDay)
	return Spend{
		Record:   rec,
		Identity: id,
		Rate:     rate,
		Hours:    rec.Hours,
		Days:     days,
		Amount:   days.Mul(rate.Daily),
	}, OutcomeSpent
}
