package ports

import (
	"context"

	"agroyield/domain/yield"
)

// ObservationRepository provides read access to stored yield observations.
// The analytics core never talks to storage directly; a repository loads
// rows, the caller captures them into a snapshot, and analysis runs against
// that snapshot only.
type ObservationRepository interface {
	// Load returns observations matching the filters, in stored order
	Load(ctx context.Context, filters yield.Filters) ([]yield.Observation, error)

	// Crops returns the distinct crop names present in the store
	Crops(ctx context.Context) ([]yield.Crop, error)
}
