package yield

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"agroyield/domain/core"
)

// ParcelID identifies a land parcel
type ParcelID string

// Crop identifies a crop by name
type Crop string

func (p ParcelID) String() string { return string(p) }
func (c Crop) String() string     { return string(c) }

// Observation is one per-parcel, per-crop, per-year yield measurement.
// Yield is valid only when Missing is false. Area of 0 means unknown.
// Geometry is an opaque spatial reference consumed only by map collaborators.
type Observation struct {
	Parcel   ParcelID `json:"parcel"`
	Crop     Crop     `json:"crop"`
	Year     int      `json:"year"`
	Yield    float64  `json:"yield"` // t/ha
	Missing  bool     `json:"missing"`
	Area     float64  `json:"area,omitempty"` // ha
	Geometry string   `json:"geometry,omitempty"`
}

// Validate checks the structural invariants of a single observation
func (o Observation) Validate() error {
	if strings.TrimSpace(string(o.Parcel)) == "" {
		return fmt.Errorf("parcel identifier is required")
	}
	if strings.TrimSpace(string(o.Crop)) == "" {
		return fmt.Errorf("crop name is required")
	}
	// The composite group encoding joins parts with this character; letting
	// it into identifiers would merge distinct (parcel, crop) and
	// (crop, year) groups.
	if strings.Contains(string(o.Parcel), compositeSep) {
		return fmt.Errorf("parcel identifier must not contain %q", compositeSep)
	}
	if strings.Contains(string(o.Crop), compositeSep) {
		return fmt.Errorf("crop name must not contain %q", compositeSep)
	}
	if o.Year == 0 {
		return fmt.Errorf("year is required")
	}
	if !o.Missing && (o.Yield < 0 || isNaN(o.Yield)) {
		return fmt.Errorf("yield must be a non-negative number or marked missing, got %v", o.Yield)
	}
	if o.Area < 0 {
		return fmt.Errorf("area must be positive when present, got %v", o.Area)
	}
	return nil
}

func isNaN(f float64) bool { return f != f }

// Snapshot is an immutable, validated collection of observations for one
// analysis session. All analytic results are pure functions of a snapshot;
// recomputation against the same snapshot is reproducible bit-for-bit.
type Snapshot struct {
	id         core.SnapshotID
	version    core.VersionTag
	capturedAt core.Timestamp
	obs        []Observation
}

// NewSnapshot validates and captures a set of observations. The input slice
// is copied; the snapshot never aliases caller memory. Structural input
// errors abort construction before any analysis can run.
func NewSnapshot(observations []Observation) (*Snapshot, error) {
	if len(observations) == 0 {
		return nil, core.ErrEmptySnapshot
	}

	obs := make([]Observation, len(observations))
	copy(obs, observations)

	for i, o := range obs {
		if err := o.Validate(); err != nil {
			return nil, core.NewInvalidObservationError(i, err.Error())
		}
	}

	return &Snapshot{
		id:         core.SnapshotID(core.NewID()),
		version:    computeVersionTag(obs),
		capturedAt: core.Now(),
		obs:        obs,
	}, nil
}

// computeVersionTag derives a content hash over the canonical row encoding,
// so identical data always carries the same tag regardless of capture time.
func computeVersionTag(obs []Observation) core.VersionTag {
	var b strings.Builder
	for _, o := range obs {
		b.WriteString(string(o.Parcel))
		b.WriteByte('|')
		b.WriteString(string(o.Crop))
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(o.Year))
		b.WriteByte('|')
		if o.Missing {
			b.WriteString("missing")
		} else {
			b.WriteString(strconv.FormatFloat(o.Yield, 'g', -1, 64))
		}
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(o.Area, 'g', -1, 64))
		b.WriteByte('\n')
	}
	return core.NewVersionTag([]byte(b.String()))
}

// ID returns the snapshot identifier
func (s *Snapshot) ID() core.SnapshotID { return s.id }

// Version returns the content-derived version tag
func (s *Snapshot) Version() core.VersionTag { return s.version }

// CapturedAt returns the capture timestamp
func (s *Snapshot) CapturedAt() core.Timestamp { return s.capturedAt }

// Len returns the number of observations
func (s *Snapshot) Len() int { return len(s.obs) }

// At returns the observation at index i in capture order
func (s *Snapshot) At(i int) Observation { return s.obs[i] }

// Observations returns a copy of the observation list in capture order
func (s *Snapshot) Observations() []Observation {
	out := make([]Observation, len(s.obs))
	copy(out, s.obs)
	return out
}

// Crops returns the distinct crop names, sorted ascending
func (s *Snapshot) Crops() []Crop {
	seen := make(map[Crop]bool)
	var crops []Crop
	for _, o := range s.obs {
		if !seen[o.Crop] {
			seen[o.Crop] = true
			crops = append(crops, o.Crop)
		}
	}
	sort.Slice(crops, func(i, j int) bool { return crops[i] < crops[j] })
	return crops
}

// Parcels returns the distinct parcel identifiers, sorted ascending
func (s *Snapshot) Parcels() []ParcelID {
	seen := make(map[ParcelID]bool)
	var parcels []ParcelID
	for _, o := range s.obs {
		if !seen[o.Parcel] {
			seen[o.Parcel] = true
			parcels = append(parcels, o.Parcel)
		}
	}
	sort.Slice(parcels, func(i, j int) bool { return parcels[i] < parcels[j] })
	return parcels
}

// Years returns the inclusive [min, max] year range of the snapshot
func (s *Snapshot) Years() (min, max int) {
	for i, o := range s.obs {
		if i == 0 || o.Year < min {
			min = o.Year
		}
		if i == 0 || o.Year > max {
			max = o.Year
		}
	}
	return min, max
}
