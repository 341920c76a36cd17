package analysis

import (
	"agroyield/domain/yield"

	"github.com/montanaflynn/stats"
)

// groupAccumulator collects the per-group vectors during one snapshot pass
type groupAccumulator struct {
	values  []float64
	missing int
}

// Aggregate computes grouped statistics at the requested granularity.
// Missing yields are excluded from the statistics but counted per group.
// The result table enumerates groups in first-occurrence order; zero-count
// groups appear only when requested via AggregateWithGroups.
func (e *Engine) Aggregate(snap *yield.Snapshot, key yield.GroupKey, filters yield.Filters) (*yield.AggregateTable, error) {
	return e.AggregateWithGroups(snap, key, filters, nil)
}

// AggregateWithGroups is Aggregate with an explicit set of groups that must
// be enumerated even when no observation falls into them (e.g. a crop with
// no data in a requested year), so consumers can render "no data" rather
// than omit the group. Requested groups lead the iteration order.
func (e *Engine) AggregateWithGroups(snap *yield.Snapshot, key yield.GroupKey, filters yield.Filters, requested []yield.GroupValue) (*yield.AggregateTable, error) {
	if _, err := yield.ParseGroupKey(string(key)); err != nil {
		return nil, err
	}

	order := make([]yield.GroupValue, 0, len(requested))
	groups := make(map[yield.GroupValue]*groupAccumulator)

	for _, v := range requested {
		if _, ok := groups[v]; ok {
			continue
		}
		groups[v] = &groupAccumulator{}
		order = append(order, v)
	}

	for i := 0; i < snap.Len(); i++ {
		o := snap.At(i)
		if !filters.Match(o) {
			continue
		}
		v, err := key.ValueFor(o)
		if err != nil {
			return nil, err
		}
		acc, ok := groups[v]
		if !ok {
			acc = &groupAccumulator{}
			groups[v] = acc
			order = append(order, v)
		}
		if o.Missing {
			acc.missing++
		} else {
			acc.values = append(acc.values, o.Yield)
		}
	}

	results := make(map[yield.GroupValue]yield.AggregateResult, len(order))
	for _, v := range order {
		results[v] = summarize(v, groups[v])
	}

	return &yield.AggregateTable{Key: key, Order: order, Results: results}, nil
}

// summarize computes the statistics for one group vector. Zero-count groups
// come back with HasStats false instead of NaN statistics.
func summarize(v yield.GroupValue, acc *groupAccumulator) yield.AggregateResult {
	result := yield.AggregateResult{
		Group:        v,
		Count:        len(acc.values),
		MissingCount: acc.missing,
	}
	if len(acc.values) == 0 {
		return result
	}

	mean, _ := stats.Mean(acc.values)
	median, _ := stats.Median(acc.values)
	min, _ := stats.Min(acc.values)
	max, _ := stats.Max(acc.values)

	result.Mean = mean
	result.Median = median
	result.Min = min
	result.Max = max
	result.HasStats = true

	// Sample standard deviation needs at least two observations; with one
	// it stays undefined rather than zero.
	if len(acc.values) >= 2 {
		sd, err := stats.StandardDeviationSample(acc.values)
		if err == nil {
			result.StdDev = sd
			result.HasStdDev = true
		}
	}

	return result
}
