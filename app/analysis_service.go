package app

import (
	"context"

	"agroyield/domain/core"
	"agroyield/domain/yield"
	"agroyield/internal"
	"agroyield/internal/analysis"

	"golang.org/x/sync/errgroup"
)

// Overview bundles the standard analytical sweep over one snapshot: the
// per-key aggregate tables, the normalized observations, the cross-crop
// comparison, and the parcel leaderboard. Everything in it is a flat,
// serializable artifact with no references back into the engine.
type Overview struct {
	SnapshotID    core.SnapshotID               `json:"snapshot_id"`
	Version       core.VersionTag               `json:"version"`
	ByCrop        *yield.AggregateTable         `json:"by_crop"`
	ByYear        *yield.AggregateTable         `json:"by_year"`
	ByParcel      *yield.AggregateTable         `json:"by_parcel"`
	ByCropYear    *yield.AggregateTable         `json:"by_crop_year"`
	Normalized    []yield.NormalizedObservation `json:"normalized"`
	Comparison    yield.ComparisonResult        `json:"comparison"`
	ParcelRanking yield.Ranking                 `json:"parcel_ranking"`
}

// AnalysisService orchestrates engine calls for one analytical request. The
// engine itself is pure, so the service may fan the independent sweeps out
// across goroutines without coordination.
type AnalysisService struct {
	engine *analysis.Engine
	alpha  float64
	log    *internal.Logger
}

// NewAnalysisService creates a service with the given significance threshold
func NewAnalysisService(engine *analysis.Engine, alpha float64, log *internal.Logger) *AnalysisService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &AnalysisService{engine: engine, alpha: alpha, log: log}
}

// Engine exposes the underlying analytics engine
func (s *AnalysisService) Engine() *analysis.Engine { return s.engine }

// Alpha returns the configured significance threshold
func (s *AnalysisService) Alpha() float64 { return s.alpha }

// Overview runs the full standard sweep against a snapshot. Each computation
// reads the immutable snapshot only and writes its own field, so the group
// runs them concurrently.
func (s *AnalysisService) Overview(ctx context.Context, snap *yield.Snapshot) (*Overview, error) {
	ov := &Overview{SnapshotID: snap.ID(), Version: snap.Version()}

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.engine.Aggregate(snap, yield.GroupByCrop, yield.Filters{})
		ov.ByCrop = t
		return err
	})
	g.Go(func() error {
		t, err := s.engine.Aggregate(snap, yield.GroupByYear, yield.Filters{})
		ov.ByYear = t
		return err
	})
	g.Go(func() error {
		t, err := s.engine.Aggregate(snap, yield.GroupByParcel, yield.Filters{})
		ov.ByParcel = t
		return err
	})
	g.Go(func() error {
		t, err := s.engine.Aggregate(snap, yield.GroupByCropYear, yield.Filters{})
		ov.ByCropYear = t
		return err
	})
	g.Go(func() error {
		c, err := s.engine.CompareCrops(snap, snap.Crops(), yield.YearRange{}, s.alpha)
		ov.Comparison = c
		return err
	})
	g.Go(func() error {
		n, err := s.engine.Normalize(snap)
		if err != nil {
			return err
		}
		ov.Normalized = n
		ov.ParcelRanking = s.engine.RankBy(analysis.ParcelPerformanceEntities(n), yield.Descending, 0)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Debug("overview computed for snapshot %s (%d observations)", snap.ID(), snap.Len())
	return ov, nil
}

// Leaderboards returns the top-N and bottom-N parcels by mean percent-of-mean
func (s *AnalysisService) Leaderboards(snap *yield.Snapshot, limit int) (top, bottom yield.Ranking, err error) {
	normalized, err := s.engine.Normalize(snap)
	if err != nil {
		return yield.Ranking{}, yield.Ranking{}, err
	}
	entities := analysis.ParcelPerformanceEntities(normalized)
	top = s.engine.RankBy(entities, yield.Descending, limit)
	bottom = s.engine.RankBy(entities, yield.Ascending, limit)
	return top, bottom, nil
}
