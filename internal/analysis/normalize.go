package analysis

import (
	"agroyield/domain/yield"
)

// Normalize derives percent-of-mean yield for every observation relative to
// its (crop, year) cohort. The output is one NormalizedObservation per input
// observation, in snapshot order, so it re-joins cleanly to the original
// table. A baseline of zero or an undefined baseline yields an explicitly
// undefined percent, never an infinity.
func (e *Engine) Normalize(snap *yield.Snapshot) ([]yield.NormalizedObservation, error) {
	cohorts, err := e.Aggregate(snap, yield.GroupByCropYear, yield.Filters{})
	if err != nil {
		return nil, err
	}

	out := make([]yield.NormalizedObservation, 0, snap.Len())
	for i := 0; i < snap.Len(); i++ {
		o := snap.At(i)
		n := yield.NormalizedObservation{Observation: o}

		cohort, ok := cohorts.Get(yield.CropYearValue(o.Crop, o.Year))
		if ok && cohort.HasStats {
			n.Baseline = cohort.Mean
			n.HasBaseline = true
		}
		if n.HasBaseline && n.Baseline != 0 && !o.Missing {
			n.Percent = o.Yield / n.Baseline * 100
			n.HasPercent = true
		}

		out = append(out, n)
	}
	return out, nil
}
