package yield

// AggregateResult holds the grouped statistics for one group value.
// When Count is 0 every statistic is undefined and HasStats is false;
// when Count is 1 the standard deviation is undefined (not zero) and
// HasStdDev is false. NaN is never silently propagated to callers.
type AggregateResult struct {
	Group        GroupValue `json:"group"`
	Count        int        `json:"count"`         // valid (non-missing) observations
	MissingCount int        `json:"missing_count"` // observations excluded as missing
	Mean         float64    `json:"mean"`
	Median       float64    `json:"median"`
	StdDev       float64    `json:"std_dev"`
	Min          float64    `json:"min"`
	Max          float64    `json:"max"`
	HasStats     bool       `json:"has_stats"`
	HasStdDev    bool       `json:"has_std_dev"`
}

// Total returns valid + missing observation count for the group
func (r AggregateResult) Total() int { return r.Count + r.MissingCount }

// AggregateTable is an ordered mapping from group value to AggregateResult.
// Iteration order is first-occurrence order in the snapshot (explicitly
// requested groups first), which keeps repeated runs byte-comparable.
type AggregateTable struct {
	Key     GroupKey                       `json:"key"`
	Order   []GroupValue                   `json:"order"`
	Results map[GroupValue]AggregateResult `json:"results"`
}

// Get returns the result for a group value
func (t *AggregateTable) Get(v GroupValue) (AggregateResult, bool) {
	r, ok := t.Results[v]
	return r, ok
}

// Len returns the number of enumerated groups
func (t *AggregateTable) Len() int { return len(t.Order) }

// Rows returns the results in iteration order
func (t *AggregateTable) Rows() []AggregateResult {
	rows := make([]AggregateResult, 0, len(t.Order))
	for _, v := range t.Order {
		rows = append(rows, t.Results[v])
	}
	return rows
}

// NormalizedObservation pairs an observation with its (crop, year) cohort
// baseline mean and the resulting percent-of-mean. Percent is undefined when
// the observation is missing, or the baseline is undefined or zero.
type NormalizedObservation struct {
	Observation Observation `json:"observation"`
	Baseline    float64     `json:"baseline"`
	HasBaseline bool        `json:"has_baseline"`
	Percent     float64     `json:"percent"`
	HasPercent  bool        `json:"has_percent"`
}

// ComparisonStatus is the explicit outcome variant of a crop comparison.
// Callers can never mistake "no test run" for "no significant difference".
type ComparisonStatus string

const (
	// ComparisonComputed means the F-statistic and p-value are real
	ComparisonComputed ComparisonStatus = "computed"
	// ComparisonInsufficientData means fewer than two groups had two valid observations
	ComparisonInsufficientData ComparisonStatus = "insufficient_data"
	// ComparisonUndefined means within-group variance was zero for every group
	ComparisonUndefined ComparisonStatus = "undefined_test"
)

// GroupSampleSize reports the valid observation count per compared crop
type GroupSampleSize struct {
	Crop  Crop `json:"crop"`
	Count int  `json:"count"`
}

// ComparisonResult is the outcome of the one-way variance-ratio test across
// crop groups. FStatistic/PValue/Significant are meaningful only when Status
// is ComparisonComputed.
type ComparisonResult struct {
	Status      ComparisonStatus  `json:"status"`
	FStatistic  float64           `json:"f_statistic"`
	PValue      float64           `json:"p_value"`
	Alpha       float64           `json:"alpha"`
	Significant bool              `json:"significant"`
	DFBetween   int               `json:"df_between"`
	DFWithin    int               `json:"df_within"`
	Groups      []GroupSampleSize `json:"groups"`
}

// Computed reports whether a real test statistic was produced
func (r ComparisonResult) Computed() bool { return r.Status == ComparisonComputed }

// RankDirection orders a ranking by metric descending or ascending
type RankDirection string

const (
	Descending RankDirection = "desc"
	Ascending  RankDirection = "asc"
)

// ParseRankDirection validates a direction string
func ParseRankDirection(s string) (RankDirection, bool) {
	switch RankDirection(s) {
	case Descending, Ascending:
		return RankDirection(s), true
	}
	return "", false
}

// Tier is a rank-based quartile bucket. Tiers partition by position, not by
// absolute metric thresholds, so tier sizes stay stable under skew.
type Tier string

const (
	TierTop    Tier = "top"
	TierUpper  Tier = "upper"
	TierLower  Tier = "lower"
	TierBottom Tier = "bottom"
)

// RankableEntity is a candidate for ranking: a parcel or crop identifier
// with an extracted metric. HasMetric false marks an undefined metric
// (e.g. missing baseline); such entities are reported unranked.
type RankableEntity struct {
	ID        string  `json:"id"`
	Metric    float64 `json:"metric"`
	HasMetric bool    `json:"has_metric"`
}

// RankedEntry is one position in a ranking
type RankedEntry struct {
	ID     string  `json:"id"`
	Metric float64 `json:"metric"`
	Rank   int     `json:"rank"` // 1-based
	Tier   Tier    `json:"tier"`
}

// Ranking is an ordered leaderboard plus the entities that could not be
// ranked. Order is total and deterministic: ties break by identifier
// ascending.
type Ranking struct {
	Direction RankDirection `json:"direction"`
	Entries   []RankedEntry `json:"entries"`
	Unranked  []string      `json:"unranked,omitempty"`
}

// PerformanceBand is the coarse percent-of-mean class used by the map view:
// below 80% underperforming, 80-100% average, at or above 100% overperforming.
type PerformanceBand string

const (
	BandBelow   PerformanceBand = "below_average"
	BandAverage PerformanceBand = "average"
	BandAbove   PerformanceBand = "above_average"
)

// BandFor classifies a percent-of-mean value
func BandFor(percent float64) PerformanceBand {
	switch {
	case percent < 80:
		return BandBelow
	case percent < 100:
		return BandAverage
	default:
		return BandAbove
	}
}

// ParcelProfile is the per-parcel summary backing the parcel detail view
type ParcelProfile struct {
	Parcel         ParcelID        `json:"parcel"`
	Observations   int             `json:"observations"`
	MissingCount   int             `json:"missing_count"`
	CropCount      int             `json:"crop_count"`
	FirstYear      int             `json:"first_year"`
	LastYear       int             `json:"last_year"`
	MeanYield      float64         `json:"mean_yield"`
	HasMeanYield   bool            `json:"has_mean_yield"`
	CV             float64         `json:"cv"` // coefficient of variation, percent
	HasCV          bool            `json:"has_cv"`
	MeanPercent    float64         `json:"mean_percent"`
	HasMeanPercent bool            `json:"has_mean_percent"`
	Band           PerformanceBand `json:"band,omitempty"`
	BestYear       int             `json:"best_year"`
	BestYearCrop   Crop            `json:"best_year_crop,omitempty"`
	WorstYear      int             `json:"worst_year"`
	WorstYearCrop  Crop            `json:"worst_year_crop,omitempty"`
}
