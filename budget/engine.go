/*
engine.go - Snapshot computation entry point

PURPOSE:
  ComputeSnapshot is the one operation the service layer calls:

    snap, err := engine.ComputeSnapshot(ctx, "acme", 2025)

FLOW:
  1. Fetch all nine tables concurrently (errgroup; first failure cancels
     the rest and aborts the snapshot, no partial result)
  2. Allocate role pools (plan side). Must finish before any activity
     record is attributed, since attribution uses the role shares.
  3. Normalise, price and aggregate each activity log once
  4. Assemble the per-person table and scalars

  Steps 2-4 are the pure function Compute(Inputs). It holds no state
  between calls: the same inputs always produce the same snapshot.

CANCELLATION:
  Only the fetch step honours ctx. Compute has no suspension points.
*/
package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes snapshots from a Source.
type Engine struct {
	Source   Source
	PageSize int             // activity page size, DefaultPageSize if 0
	Logger   *zerolog.Logger // global zerolog logger if nil
}

// NewEngine creates an engine with default paging.
func NewEngine(src Source) *Engine {
	return &Engine{Source: src, PageSize: DefaultPageSize}
}

func (e *Engine) logger() *zerolog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return &log.Logger
}

// Inputs are the fully materialised tables for one snapshot.
type Inputs struct {
	ClientID    ClientID
	Year        int
	Roles       []Role
	Assignments []Assignment
	People      []Person
	Rates       []OwnerRate
	Aliases     []Alias
	Entities    []EntityAssignment
	DataQuality []DataQualityContribution
	Campaign    []CampaignUnit
	Effort      []EffortEntry
}

// ComputeSnapshot fetches every input for (client, year) and computes a
// fresh snapshot.
func (e *Engine) ComputeSnapshot(ctx context.Context, client ClientID, year int) (*Snapshot, error) {
	if e.Source == nil {
		return nil, ErrSourceRequired
	}
	if client == "" {
		return nil, ErrInvalidClient
	}
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	started := time.Now()
	in, err := e.Fetch(ctx, client, year)
	if err != nil {
		e.logger().Error().Err(err).Str("client", string(client)).Int("year", year).Msg("snapshot fetch failed")
		return nil, err
	}

	snap := Compute(in)

	e.logger().Debug().
		Str("client", string(client)).
		Int("year", year).
		Int("roles", len(in.Roles)).
		Int("assignments", len(in.Assignments)).
		Int("dataQuality", len(in.DataQuality)).
		Int("campaign", len(in.Campaign)).
		Int("effort", len(in.Effort)).
		Str("plan", snap.PlanTotal.StringFixed(2)).
		Str("actual", snap.ActualTotal.StringFixed(2)).
		Dur("took", time.Since(started)).
		Msg("snapshot computed")

	return snap, nil
}

// Fetch reads every table concurrently. Any failure aborts all reads.
func (e *Engine) Fetch(ctx context.Context, client ClientID, year int) (Inputs, error) {
	in := Inputs{ClientID: client, Year: year}
	window := YearWindow(year)
	src := e.Source

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		in.Roles, err = src.Roles(gctx, client, year)
		return wrapFetch("roles", err)
	})
	g.Go(func() (err error) {
		in.Assignments, err = src.Assignments(gctx, client, year)
		return wrapFetch("assignments", err)
	})
	g.Go(func() (err error) {
		in.People, err = src.People(gctx, client)
		return wrapFetch("people", err)
	})
	g.Go(func() (err error) {
		in.Rates, err = src.OwnerRates(gctx, client, year)
		return wrapFetch("owner_rates", err)
	})
	g.Go(func() (err error) {
		in.Aliases, err = src.Aliases(gctx, client)
		return wrapFetch("aliases", err)
	})
	g.Go(func() (err error) {
		in.Entities, err = src.EntityAssignments(gctx, client, year)
		return wrapFetch("entity_assignments", err)
	})
	g.Go(func() (err error) {
		in.DataQuality, err = FetchAll(gctx, e.PageSize, func(ctx context.Context, p Page) ([]DataQualityContribution, error) {
			return src.DataQualityContributions(ctx, client, window, p)
		})
		return wrapFetch("data_quality_contributions", err)
	})
	g.Go(func() (err error) {
		in.Campaign, err = FetchAll(gctx, e.PageSize, func(ctx context.Context, p Page) ([]CampaignUnit, error) {
			return src.CampaignUnits(ctx, client, window, p)
		})
		return wrapFetch("campaign_units", err)
	})
	g.Go(func() (err error) {
		in.Effort, err = FetchAll(gctx, e.PageSize, func(ctx context.Context, p Page) ([]EffortEntry, error) {
			return src.EffortEntries(ctx, client, window, p)
		})
		return wrapFetch("effort_entries", err)
	})

	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

func wrapFetch(table string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Table: table, Err: err}
}

// =============================================================================
// COMPUTE - Pure snapshot computation
// =============================================================================

// Compute runs allocation, spend resolution, aggregation and assembly over
// already-fetched inputs. Rows carrying a different non-zero Year than
// in.Year are ignored, as are activity records dated outside the year.
func Compute(in Inputs) *Snapshot {
	window := YearWindow(in.Year)

	roles := filterYear(in.Roles, in.Year, func(r Role) int { return r.Year })

	// 1. Plan side. Must complete before any actual is attributed.
	alloc := AllocateRoles(roles,
		filterYear(in.Assignments, in.Year, func(a Assignment) int { return a.Year }),
		window)

	entities := make(map[PersonID]string)
	for _, ea := range filterYear(in.Entities, in.Year, func(e EntityAssignment) int { return e.Year }) {
		entities[ea.PersonID] = ea.Entity
	}

	// 2. Actual side.
	spender := &SpendResolver{
		Identities: NewIdentityResolver(in.Aliases,
			filterYear(in.Rates, in.Year, func(r OwnerRate) int { return r.Year })),
	}
	agg := NewAggregator(alloc.Shares, entities)
	prod := NewProductionCalculator()
	counts := make(map[SourceKind]SourceCounts, len(SourceKinds))
	resolution := make(map[Resolution]int)

	process := func(rec ActivityRecord) {
		if !InWindow(rec.Date, window) {
			return
		}
		c := counts[rec.Source]
		c.Seen++

		spend, outcome := spender.Resolve(rec)
		switch outcome {
		case OutcomeIgnored:
			c.Ignored++
		case OutcomeUnspendable:
			c.Unspendable++
		case OutcomeSpent:
			c.Spent++
			if !spend.Identity.IsMapped() {
				c.Unmapped++
			}
			resolution[spend.Identity.Path]++
			agg.Add(spend)
			prod.Add(spend)
		}
		counts[rec.Source] = c
	}

	for _, r := range in.DataQuality {
		process(r.Normalize())
	}
	for _, r := range in.Campaign {
		process(r.Normalize())
	}
	for _, r := range in.Effort {
		process(r.Normalize())
	}

	// 3. Join.
	return AssembleSnapshot(AssemblyInput{
		ClientID:   in.ClientID,
		Year:       in.Year,
		Roles:      roles,
		People:     in.People,
		Entities:   entities,
		Allocation: alloc,
		Actuals:    agg,
		Production: prod,
		Counts:     counts,
		Resolution: resolution,
	})
}

func filterYear[T any](rows []T, year int, yearOf func(T) int) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if y := yearOf(r); y != 0 && y != year {
			continue
		}
		out = append(out, r)
	}
	return out
}
