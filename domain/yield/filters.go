package yield

// YearRange is an inclusive year interval; a zero bound is unbounded
type YearRange struct {
	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`
}

// Contains reports whether year falls inside the range
func (r YearRange) Contains(year int) bool {
	if r.From != 0 && year < r.From {
		return false
	}
	if r.To != 0 && year > r.To {
		return false
	}
	return true
}

// IsZero reports whether the range is unbounded on both ends
func (r YearRange) IsZero() bool { return r.From == 0 && r.To == 0 }

// Filters narrows the observations an analysis runs over. Empty subsets
// match everything; filters never mutate the snapshot.
type Filters struct {
	Years   YearRange  `json:"years,omitempty"`
	Crops   []Crop     `json:"crops,omitempty"`
	Parcels []ParcelID `json:"parcels,omitempty"`
}

// Match reports whether an observation passes the filter set
func (f Filters) Match(o Observation) bool {
	if !f.Years.Contains(o.Year) {
		return false
	}
	if len(f.Crops) > 0 && !containsCrop(f.Crops, o.Crop) {
		return false
	}
	if len(f.Parcels) > 0 && !containsParcel(f.Parcels, o.Parcel) {
		return false
	}
	return true
}

// IsZero reports whether the filter set matches every observation
func (f Filters) IsZero() bool {
	return f.Years.IsZero() && len(f.Crops) == 0 && len(f.Parcels) == 0
}

func containsCrop(crops []Crop, c Crop) bool {
	for _, crop := range crops {
		if crop == c {
			return true
		}
	}
	return false
}

func containsParcel(parcels []ParcelID, p ParcelID) bool {
	for _, parcel := range parcels {
		if parcel == p {
			return true
		}
	}
	return false
}
