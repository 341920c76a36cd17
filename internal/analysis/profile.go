package analysis

import (
	"fmt"

	"agroyield/domain/core"
	"agroyield/domain/yield"

	"github.com/montanaflynn/stats"
)

// ProfileParcel summarizes one parcel across the whole snapshot: yield level
// and stability (coefficient of variation), mean percent-of-mean against the
// crop-year cohorts, and the best and worst year by raw yield. Statistics
// over fewer valid observations than they need stay explicitly undefined.
func (e *Engine) ProfileParcel(snap *yield.Snapshot, parcel yield.ParcelID) (yield.ParcelProfile, error) {
	profile := yield.ParcelProfile{Parcel: parcel}

	normalized, err := e.Normalize(snap)
	if err != nil {
		return profile, err
	}

	var (
		values      []float64
		percents    []float64
		crops       = make(map[yield.Crop]bool)
		best, worst = -1, -1
	)
	for i, n := range normalized {
		o := n.Observation
		if o.Parcel != parcel {
			continue
		}
		profile.Observations++
		crops[o.Crop] = true
		if profile.FirstYear == 0 || o.Year < profile.FirstYear {
			profile.FirstYear = o.Year
		}
		if o.Year > profile.LastYear {
			profile.LastYear = o.Year
		}
		if o.Missing {
			profile.MissingCount++
			continue
		}
		values = append(values, o.Yield)
		if n.HasPercent {
			percents = append(percents, n.Percent)
		}
		if best == -1 || o.Yield > normalized[best].Observation.Yield {
			best = i
		}
		if worst == -1 || o.Yield < normalized[worst].Observation.Yield {
			worst = i
		}
	}

	if profile.Observations == 0 {
		return profile, fmt.Errorf("%w: %s", core.ErrParcelNotFound, parcel)
	}
	profile.CropCount = len(crops)

	if len(values) > 0 {
		mean, _ := stats.Mean(values)
		profile.MeanYield = mean
		profile.HasMeanYield = true

		if len(values) >= 2 && mean != 0 {
			sd, err := stats.StandardDeviationSample(values)
			if err == nil {
				profile.CV = sd / mean * 100
				profile.HasCV = true
			}
		}
	}

	if len(percents) > 0 {
		meanPct, _ := stats.Mean(percents)
		profile.MeanPercent = meanPct
		profile.HasMeanPercent = true
		profile.Band = yield.BandFor(meanPct)
	}

	if best >= 0 {
		profile.BestYear = normalized[best].Observation.Year
		profile.BestYearCrop = normalized[best].Observation.Crop
	}
	if worst >= 0 {
		profile.WorstYear = normalized[worst].Observation.Year
		profile.WorstYearCrop = normalized[worst].Observation.Crop
	}

	return profile, nil
}

// ParcelPerformanceEntities turns normalized observations into rankable
// parcel entities whose metric is the mean percent-of-mean. Parcels with no
// defined percent anywhere get an undefined metric and surface as unranked.
func ParcelPerformanceEntities(normalized []yield.NormalizedObservation) []yield.RankableEntity {
	sums := make(map[yield.ParcelID]float64)
	counts := make(map[yield.ParcelID]int)
	var order []yield.ParcelID
	seen := make(map[yield.ParcelID]bool)

	for _, n := range normalized {
		p := n.Observation.Parcel
		if !seen[p] {
			seen[p] = true
			order = append(order, p)
		}
		if n.HasPercent {
			sums[p] += n.Percent
			counts[p]++
		}
	}

	entities := make([]yield.RankableEntity, 0, len(order))
	for _, p := range order {
		ent := yield.RankableEntity{ID: string(p)}
		if counts[p] > 0 {
			ent.Metric = sums[p] / float64(counts[p])
			ent.HasMetric = true
		}
		entities = append(entities, ent)
	}
	return entities
}

// CropPerformanceEntities turns an aggregate table into rankable crop (or
// any other group) entities by mean yield. Zero-count groups get an
// undefined metric.
func CropPerformanceEntities(table *yield.AggregateTable) []yield.RankableEntity {
	entities := make([]yield.RankableEntity, 0, table.Len())
	for _, row := range table.Rows() {
		ent := yield.RankableEntity{ID: string(row.Group)}
		if row.HasStats {
			ent.Metric = row.Mean
			ent.HasMetric = true
		}
		entities = append(entities, ent)
	}
	return entities
}
