package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"agroyield/domain/yield"
	"agroyield/ports"

	"github.com/jmoiron/sqlx"
)

// observationRepository implements ports.ObservationRepository over the
// yield_observations table
type observationRepository struct {
	db *sqlx.DB
}

// NewObservationRepository creates a new observation repository
func NewObservationRepository(db *sqlx.DB) ports.ObservationRepository {
	return &observationRepository{db: db}
}

// Load returns observations matching the filters in insertion order.
// A NULL yield_ha column maps to an explicitly missing value, never zero.
func (r *observationRepository) Load(ctx context.Context, filters yield.Filters) ([]yield.Observation, error) {
	query := `SELECT
		parcel_id, crop, year, yield_ha,
		COALESCE(area, 0) AS area, COALESCE(geometry, '') AS geometry
	FROM yield_observations`

	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Years.From != 0 {
		conds = append(conds, "year >= "+arg(filters.Years.From))
	}
	if filters.Years.To != 0 {
		conds = append(conds, "year <= "+arg(filters.Years.To))
	}
	if len(filters.Crops) > 0 {
		placeholders := make([]string, 0, len(filters.Crops))
		for _, c := range filters.Crops {
			placeholders = append(placeholders, arg(string(c)))
		}
		conds = append(conds, "crop IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(filters.Parcels) > 0 {
		placeholders := make([]string, 0, len(filters.Parcels))
		for _, p := range filters.Parcels {
			placeholders = append(placeholders, arg(string(p)))
		}
		conds = append(conds, "parcel_id IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var observations []yield.Observation
	for rows.Next() {
		var (
			o       yield.Observation
			yieldHa sql.NullFloat64
		)
		if err := rows.Scan(&o.Parcel, &o.Crop, &o.Year, &yieldHa, &o.Area, &o.Geometry); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		if yieldHa.Valid {
			o.Yield = yieldHa.Float64
		} else {
			o.Missing = true
		}
		observations = append(observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate observations: %w", err)
	}

	return observations, nil
}

// Crops returns the distinct crop names in the store, sorted ascending
func (r *observationRepository) Crops(ctx context.Context) ([]yield.Crop, error) {
	var names []string
	if err := r.db.SelectContext(ctx, &names, `SELECT DISTINCT crop FROM yield_observations ORDER BY crop`); err != nil {
		return nil, fmt.Errorf("failed to list crops: %w", err)
	}
	crops := make([]yield.Crop, 0, len(names))
	for _, n := range names {
		crops = append(crops, yield.Crop(n))
	}
	return crops, nil
}
