package analysis

import (
	"sort"

	"agroyield/domain/yield"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAlpha is the significance threshold used when the caller does not
// supply an override.
const DefaultAlpha = 0.05

// minGroupSize is the fewest valid observations every compared crop group
// needs for the variance-ratio test to run.
const minGroupSize = 2

// CompareCrops runs the one-way variance-ratio (ANOVA) test across the given
// crop groups, filtered by yearRange with missing values excluded. It needs
// at least two crops, each with at least two valid observations; a single
// crop, or any compared group below the minimum, tags the whole result
// insufficient-data without a fabricated statistic. When within-group
// variance is zero for every group the test is reported undefined rather
// than dividing by zero. Pairwise post-hoc tests are out of scope; this is
// the omnibus test only.
func (e *Engine) CompareCrops(snap *yield.Snapshot, crops []yield.Crop, yearRange yield.YearRange, alpha float64) (yield.ComparisonResult, error) {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	result := yield.ComparisonResult{Alpha: alpha}

	// Crops are deduplicated and sorted before anything is computed, so the
	// statistic and the sample-size report are invariant under input order.
	ordered := dedupeSorted(crops)
	if len(ordered) == 0 {
		ordered = snap.Crops()
	}

	vectors := make([][]float64, 0, len(ordered))
	for _, crop := range ordered {
		vec := cropVector(snap, crop, yearRange)
		result.Groups = append(result.Groups, yield.GroupSampleSize{Crop: crop, Count: len(vec)})
		vectors = append(vectors, vec)
	}

	if len(vectors) < 2 {
		result.Status = yield.ComparisonInsufficientData
		return result, nil
	}
	for _, vec := range vectors {
		if len(vec) < minGroupSize {
			result.Status = yield.ComparisonInsufficientData
			return result, nil
		}
	}

	fStat, dfB, dfW, defined := oneWayF(vectors)
	result.DFBetween = dfB
	result.DFWithin = dfW
	if !defined {
		result.Status = yield.ComparisonUndefined
		return result, nil
	}

	fDist := distuv.F{D1: float64(dfB), D2: float64(dfW)}
	pValue := 1 - fDist.CDF(fStat)
	if pValue < 0 {
		pValue = 0
	}

	result.Status = yield.ComparisonComputed
	result.FStatistic = fStat
	result.PValue = pValue
	result.Significant = pValue < alpha
	return result, nil
}

// cropVector collects the valid yields for one crop within the year range,
// in snapshot order
func cropVector(snap *yield.Snapshot, crop yield.Crop, years yield.YearRange) []float64 {
	var vec []float64
	for i := 0; i < snap.Len(); i++ {
		o := snap.At(i)
		if o.Crop != crop || o.Missing || !years.Contains(o.Year) {
			continue
		}
		vec = append(vec, o.Yield)
	}
	return vec
}

// oneWayF computes the F-statistic over k group vectors. defined is false
// when the within-group sum of squares is zero across all groups.
func oneWayF(groups [][]float64) (f float64, dfBetween, dfWithin int, defined bool) {
	k := len(groups)
	total := 0
	grandSum := 0.0
	for _, g := range groups {
		total += len(g)
		for _, x := range g {
			grandSum += x
		}
	}
	grandMean := grandSum / float64(total)

	ssBetween := 0.0
	ssWithin := 0.0
	for _, g := range groups {
		sum := 0.0
		for _, x := range g {
			sum += x
		}
		mean := sum / float64(len(g))
		diff := mean - grandMean
		ssBetween += float64(len(g)) * diff * diff
		for _, x := range g {
			d := x - mean
			ssWithin += d * d
		}
	}

	dfBetween = k - 1
	dfWithin = total - k
	if ssWithin == 0 {
		return 0, dfBetween, dfWithin, false
	}

	f = (ssBetween / float64(dfBetween)) / (ssWithin / float64(dfWithin))
	return f, dfBetween, dfWithin, true
}

func dedupeSorted(crops []yield.Crop) []yield.Crop {
	seen := make(map[yield.Crop]bool, len(crops))
	out := make([]yield.Crop, 0, len(crops))
	for _, c := range crops {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
