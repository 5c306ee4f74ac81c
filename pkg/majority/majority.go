// Package majority computes the winning party and margin of victory per
// region from normalized election records. All computation is single-pass
// over in-memory records; nothing is cached between calls.
package majority

import (
	"fmt"
	"sort"

	"github.com/statline/electstats/pkg/table"
)

// PartyTotal is the aggregated vote count for one (region, party) pair.
type PartyTotal struct {
	// Region is the upper-cased region name.
	Region string `json:"region"`

	// Party is the upper-cased party name.
	Party string `json:"party"`

	// Votes is the summed vote count across all matching records.
	Votes int `json:"votes"`
}

// RegionResult is the computed outcome for one region.
type RegionResult struct {
	// Region is the upper-cased region name.
	Region string `json:"region"`

	// Code is the plotting code (state abbreviation) for the region.
	Code string `json:"code"`

	// WinnerParty is the party with the highest vote total.
	WinnerParty string `json:"winner_party"`

	// WinnerVotes is the winning party's total.
	WinnerVotes int `json:"winner_votes"`

	// Margin is winner votes minus runner-up votes; 0 when only one
	// party is present.
	Margin int `json:"margin"`

	// Color is the display color for the winning party.
	Color string `json:"color"`
}

// Result holds the per-region outcomes plus diagnostics about regions that
// could not be mapped to a plotting code.
type Result struct {
	// Regions are the successfully mapped region results, sorted by
	// region name.
	Regions []RegionResult `json:"regions"`

	// Unmapped lists region names with no plotting code, sorted. They
	// are excluded from Regions, not a failure.
	Unmapped []string `json:"unmapped,omitempty"`
}

// Compute aggregates votes per (region, party) and determines the winner
// and margin for every region. Ties on vote totals resolve to the party
// first encountered in input order: totals are accumulated in first-seen
// order and the descending sort is stable, so the result is deterministic
// for a fixed input file.
//
// Regions absent from codes are excluded and reported in Result.Unmapped.
// An empty record set yields table.ErrNoData.
func Compute(records []table.Record, codes CodeTable, colors ColorTable) (Result, error) {
	if len(records) == 0 {
		return Result{}, fmt.Errorf("majority computation: %w", table.ErrNoData)
	}

	// Accumulate totals preserving first-seen order of regions and of
	// parties within each region.
	regionOrder := make([]string, 0)
	totalsByRegion := make(map[string][]*PartyTotal)
	totalIndex := make(map[string]map[string]*PartyTotal)

	for _, record := range records {
		parties, seen := totalIndex[record.State]
		if !seen {
			parties = make(map[string]*PartyTotal)
			totalIndex[record.State] = parties
			regionOrder = append(regionOrder, record.State)
		}
		total, seen := parties[record.CandidateParty]
		if !seen {
			total = &PartyTotal{Region: record.State, Party: record.CandidateParty}
			parties[record.CandidateParty] = total
			totalsByRegion[record.State] = append(totalsByRegion[record.State], total)
		}
		total.Votes += record.Votes
	}

	result := Result{}
	for _, region := range regionOrder {
		totals := totalsByRegion[region]
		sort.SliceStable(totals, func(i, j int) bool {
			return totals[i].Votes > totals[j].Votes
		})

		winner := totals[0]
		margin := 0
		if len(totals) > 1 {
			margin = winner.Votes - totals[1].Votes
		}

		code, mapped := codes.Code(region)
		if !mapped {
			result.Unmapped = append(result.Unmapped, region)
			continue
		}

		result.Regions = append(result.Regions, RegionResult{
			Region:      region,
			Code:        code,
			WinnerParty: winner.Party,
			WinnerVotes: winner.Votes,
			Margin:      margin,
			Color:       colors.Color(winner.Party),
		})
	}

	sort.Slice(result.Regions, func(i, j int) bool {
		return result.Regions[i].Region < result.Regions[j].Region
	})
	sort.Strings(result.Unmapped)

	return result, nil
}

// ForContest filters records to one contest type and year, then computes
// per-region results. This is the shape every visualization request takes:
// recomputed from scratch each call, no state retained.
func ForContest(records []table.Record, contest table.ContestType, year int, aliases table.AliasTable, codes CodeTable, colors ColorTable) (Result, error) {
	var filtered []table.Record
	for _, record := range table.FilterContest(records, contest, aliases) {
		if record.Year == year {
			filtered = append(filtered, record)
		}
	}
	if len(filtered) == 0 {
		return Result{}, fmt.Errorf("no %s race data for %d: %w", contest, year, table.ErrNoData)
	}
	return Compute(filtered, codes, colors)
}
