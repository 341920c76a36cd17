// Package export flattens analysis results to CSV, Excel workbooks, and an
// HTML summary report. It consumes only the flat result structures; nothing
// here reaches back into the engine.
package export

import (
	"strconv"

	"agroyield/domain/core"
	"agroyield/domain/yield"
)

// Report collects the artifacts of one analysis session for exporting
type Report struct {
	Title           string
	GeneratedAt     core.Timestamp
	SnapshotVersion core.VersionTag
	Aggregates      []*yield.AggregateTable
	Normalized      []yield.NormalizedObservation
	Comparison      yield.ComparisonResult
	Ranking         yield.Ranking
}

// undefined marks statistics that could not be computed
const undefined = "n/a"

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatStat(v float64, defined bool) string {
	if !defined {
		return undefined
	}
	return formatFloat(v)
}

// aggregateHeader is the flat column layout shared by the CSV and Excel writers
var aggregateHeader = []string{"group", "count", "missing", "mean", "median", "std_dev", "min", "max"}

func aggregateRow(r yield.AggregateResult) []string {
	return []string{
		string(r.Group),
		strconv.Itoa(r.Count),
		strconv.Itoa(r.MissingCount),
		formatStat(r.Mean, r.HasStats),
		formatStat(r.Median, r.HasStats),
		formatStat(r.StdDev, r.HasStdDev),
		formatStat(r.Min, r.HasStats),
		formatStat(r.Max, r.HasStats),
	}
}

var normalizedHeader = []string{"parcel", "crop", "year", "yield", "baseline", "percent"}

func normalizedRow(n yield.NormalizedObservation) []string {
	o := n.Observation
	yieldStr := undefined
	if !o.Missing {
		yieldStr = formatFloat(o.Yield)
	}
	return []string{
		string(o.Parcel),
		string(o.Crop),
		strconv.Itoa(o.Year),
		yieldStr,
		formatStat(n.Baseline, n.HasBaseline),
		formatStat(n.Percent, n.HasPercent),
	}
}

var rankingHeader = []string{"rank", "id", "metric", "tier"}

func rankingRow(e yield.RankedEntry) []string {
	return []string{
		strconv.Itoa(e.Rank),
		e.ID,
		formatFloat(e.Metric),
		string(e.Tier),
	}
}
