package yield

import (
	"fmt"
	"strconv"
	"strings"

	"agroyield/domain/core"
)

// GroupKey is the closed enumeration of supported partitionings. Free-form
// column combinations are deliberately not supported; each variant has a
// defined composite encoding and missing-data policy.
type GroupKey string

const (
	GroupByParcel     GroupKey = "parcel"
	GroupByCrop       GroupKey = "crop"
	GroupByYear       GroupKey = "year"
	GroupByCropYear   GroupKey = "crop_year"
	GroupByParcelCrop GroupKey = "parcel_crop"
)

// compositeSep joins the parts of a cross-product group value. Observation
// validation rejects it inside parcel and crop identifiers, so composite
// values from distinct parts can never collide.
const compositeSep = "|"

// GroupValue is the natural value of a group: a parcel id, crop name, year,
// or a composite for cross products.
type GroupValue string

func (v GroupValue) String() string { return string(v) }

// ParseGroupKey validates a string against the supported enumeration
func ParseGroupKey(s string) (GroupKey, error) {
	switch GroupKey(s) {
	case GroupByParcel, GroupByCrop, GroupByYear, GroupByCropYear, GroupByParcelCrop:
		return GroupKey(s), nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownGroupKey, s)
}

// ValueFor derives the group value of an observation under this key
func (k GroupKey) ValueFor(o Observation) (GroupValue, error) {
	switch k {
	case GroupByParcel:
		return GroupValue(o.Parcel), nil
	case GroupByCrop:
		return GroupValue(o.Crop), nil
	case GroupByYear:
		return GroupValue(strconv.Itoa(o.Year)), nil
	case GroupByCropYear:
		return CropYearValue(o.Crop, o.Year), nil
	case GroupByParcelCrop:
		return GroupValue(string(o.Parcel) + compositeSep + string(o.Crop)), nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownGroupKey, string(k))
}

// CropYearValue builds the composite group value for a (crop, year) cohort
func CropYearValue(crop Crop, year int) GroupValue {
	return GroupValue(string(crop) + compositeSep + strconv.Itoa(year))
}

// ParcelCropValue builds the composite group value for a (parcel, crop) pair
func ParcelCropValue(parcel ParcelID, crop Crop) GroupValue {
	return GroupValue(string(parcel) + compositeSep + string(crop))
}

// Parts splits a composite group value back into its components
func (v GroupValue) Parts() []string {
	return strings.Split(string(v), compositeSep)
}
