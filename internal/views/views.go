package views

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/chartloom-cli/internal/ingest"
)

// Performance tier labels, in classification precedence order.
const (
	TierTop5    = "Top 5"
	TierTop10   = "Top 10"
	TierTop50   = "Top 50"
	TierNoChart = "No Chart"
)

// tierOrder fixes the emission order of the distribution so that repeated
// runs over the same payload serialize identically.
var tierOrder = []string{TierTop5, TierTop10, TierTop50, TierNoChart}

// InvalidRecordError indicates a record violated a structural assumption a
// derivation depends on. The whole build aborts; no partial views.
type InvalidRecordError struct {
	Index  int
	Album  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	if e.Album != "" {
		return fmt.Sprintf("invalid record %d (%s): %s", e.Index, e.Album, e.Reason)
	}
	return fmt.Sprintf("invalid record %d: %s", e.Index, e.Reason)
}

// LinePoint is one step of the chart-performance series.
type LinePoint struct {
	Album    string  `json:"album"`
	Position float64 `json:"position"`
}

// YearCount is one bar of the release-frequency histogram.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// ScatterPoint carries the album name as a display label only.
type ScatterPoint struct {
	Year     int     `json:"year"`
	Position float64 `json:"position"`
	Album    string  `json:"album"`
}

// HeatGrid is a single-row grid: one column per charting record, in table
// order. Columns are NOT merged when years repeat; this mirrors the literal
// reshape the consumer expects, misleading as it can look for same-year
// entries.
type HeatGrid struct {
	Years     []int     `json:"years"`
	Positions []float64 `json:"positions"`
	Label     string    `json:"label"`
}

// TierCount is one slice of the performance-tier distribution.
type TierCount struct {
	Tier  string `json:"tier"`
	Count int    `json:"count"`
}

// Bundle is the fixed-shape output consumed by the rendering collaborator.
// All slices are non-nil so the serialized shape is stable even when empty.
type Bundle struct {
	Line     []LinePoint    `json:"line"`
	Releases []YearCount    `json:"releases"`
	Scatter  []ScatterPoint `json:"scatter"`
	Heat     HeatGrid       `json:"heat"`
	Tiers    []TierCount    `json:"tiers"`
}

// Empty returns a bundle with five empty views.
func Empty() Bundle {
	return Bundle{
		Line:     []LinePoint{},
		Releases: []YearCount{},
		Scatter:  []ScatterPoint{},
		Heat:     HeatGrid{Years: []int{}, Positions: []float64{}, Label: "Chart Position"},
		Tiers:    []TierCount{},
	}
}

// Tier classifies a normalized chart position. First match wins; bracket
// upper bounds are inclusive.
func Tier(pos *float64) string {
	switch {
	case pos == nil:
		return TierNoChart
	case *pos <= 5:
		return TierTop5
	case *pos <= 10:
		return TierTop10
	case *pos <= 50:
		return TierTop50
	default:
		return TierNoChart
	}
}

// Build derives the five views from the table. It is total over well-formed
// tables, including the empty one. A record without a usable year aborts the
// build: the histogram, scatter, and heat grid all need an orderable year,
// and partial results are not returned.
func Build(t ingest.Table) (Bundle, error) {
	for i, r := range t {
		if !r.YearOK {
			return Empty(), &InvalidRecordError{Index: i, Album: r.Album, Reason: "year is missing or not integer-like"}
		}
	}

	b := Empty()
	charting := t.Charting()

	// 1. Chart-performance series, table order.
	for _, r := range charting {
		b.Line = append(b.Line, LinePoint{Album: r.Album, Position: *r.Position})
	}

	// 2. Release frequency over ALL records, ascending year. Years with no
	// releases are absent, not zero-filled.
	counts := make(map[int]int, len(t))
	for _, r := range t {
		counts[r.Year]++
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		b.Releases = append(b.Releases, YearCount{Year: y, Count: counts[y]})
	}

	// 3. Year vs position for charting records, table order.
	for _, r := range charting {
		b.Scatter = append(b.Scatter, ScatterPoint{Year: r.Year, Position: *r.Position, Album: r.Album})
	}

	// 4. Single-row heat grid, one column per charting record.
	for _, r := range charting {
		b.Heat.Years = append(b.Heat.Years, r.Year)
		b.Heat.Positions = append(b.Heat.Positions, *r.Position)
	}

	// 5. Tier distribution over the full table; only non-empty tiers emitted.
	tiers := make(map[string]int, len(tierOrder))
	for _, r := range t {
		tiers[Tier(r.Position)]++
	}
	for _, label := range tierOrder {
		if n := tiers[label]; n > 0 {
			b.Tiers = append(b.Tiers, TierCount{Tier: label, Count: n})
		}
	}

	return b, nil
}
