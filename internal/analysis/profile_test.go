package analysis

import (
	"errors"
	"testing"

	"agroyield/domain/core"
	"agroyield/domain/yield"
)

func TestProfileParcel_Summary(t *testing.T) {
	snap := mustSnapshot(t, []yield.Observation{
		{Parcel: "P1", Crop: "WHEAT", Year: 2021, Yield: 4},
		{Parcel: "P1", Crop: "WHEAT", Year: 2022, Yield: 6},
		{Parcel: "P1", Crop: "CORN", Year: 2023, Yield: 8},
		{Parcel: "P1", Crop: "CORN", Year: 2020, Missing: true},
		{Parcel: "P2", Crop: "WHEAT", Year: 2021, Yield: 8},
		{Parcel: "P2", Crop: "WHEAT", Year: 2022, Yield: 6},
		{Parcel: "P2", Crop: "CORN", Year: 2023, Yield: 8},
	})

	profile, err := NewEngine().ProfileParcel(snap, "P1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}

	if profile.Observations != 4 || profile.MissingCount != 1 {
		t.Fatalf("expected 4 observations with 1 missing, got %d/%d", profile.Observations, profile.MissingCount)
	}
	if profile.CropCount != 2 {
		t.Fatalf("expected 2 crops, got %d", profile.CropCount)
	}
	if profile.FirstYear != 2020 || profile.LastYear != 2023 {
		t.Fatalf("expected year span 2020-2023, got %d-%d", profile.FirstYear, profile.LastYear)
	}
	if !profile.HasMeanYield || !approx(profile.MeanYield, 6) {
		t.Fatalf("expected mean yield 6, got %v", profile.MeanYield)
	}
	// Sample stddev of {4,6,8} is 2, so CV is 2/6*100
	if !profile.HasCV || !approx(profile.CV, 2.0/6.0*100) {
		t.Fatalf("expected CV %v, got %v (defined=%t)", 2.0/6.0*100, profile.CV, profile.HasCV)
	}
	if profile.BestYear != 2023 || profile.BestYearCrop != "CORN" {
		t.Fatalf("expected best year 2023 CORN, got %d %s", profile.BestYear, profile.BestYearCrop)
	}
	if profile.WorstYear != 2021 || profile.WorstYearCrop != "WHEAT" {
		t.Fatalf("expected worst year 2021 WHEAT, got %d %s", profile.WorstYear, profile.WorstYearCrop)
	}
}

func TestProfileParcel_MeanPercentAndBand(t *testing.T) {
	// P1 sits at 50% of its cohorts, P2 at 150%
	snap := mustSnapshot(t, []yield.Observation{
		{Parcel: "P1", Crop: "WHEAT", Year: 2021, Yield: 3},
		{Parcel: "P2", Crop: "WHEAT", Year: 2021, Yield: 9},
		{Parcel: "P1", Crop: "WHEAT", Year: 2022, Yield: 4},
		{Parcel: "P2", Crop: "WHEAT", Year: 2022, Yield: 12},
	})

	eng := NewEngine()
	p1, err := eng.ProfileParcel(snap, "P1")
	if err != nil {
		t.Fatalf("profile P1: %v", err)
	}
	if !p1.HasMeanPercent || !approx(p1.MeanPercent, 50) {
		t.Fatalf("expected P1 mean percent 50, got %v", p1.MeanPercent)
	}
	if p1.Band != yield.BandBelow {
		t.Fatalf("expected P1 below average, got %q", p1.Band)
	}

	p2, err := eng.ProfileParcel(snap, "P2")
	if err != nil {
		t.Fatalf("profile P2: %v", err)
	}
	if !p2.HasMeanPercent || !approx(p2.MeanPercent, 150) {
		t.Fatalf("expected P2 mean percent 150, got %v", p2.MeanPercent)
	}
	if p2.Band != yield.BandAbove {
		t.Fatalf("expected P2 above average, got %q", p2.Band)
	}
}

func TestProfileParcel_AllMissing(t *testing.T) {
	snap := mustSnapshot(t, []yield.Observation{
		{Parcel: "P1", Crop: "WHEAT", Year: 2021, Missing: true},
		{Parcel: "P1", Crop: "WHEAT", Year: 2022, Missing: true},
		{Parcel: "P2", Crop: "WHEAT", Year: 2021, Yield: 6},
	})

	profile, err := NewEngine().ProfileParcel(snap, "P1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.HasMeanYield || profile.HasCV || profile.HasMeanPercent {
		t.Fatalf("all statistics must stay undefined with no valid observations, got %+v", profile)
	}
	if profile.MissingCount != 2 {
		t.Fatalf("expected 2 missing, got %d", profile.MissingCount)
	}
}

func TestProfileParcel_UnknownParcel(t *testing.T) {
	snap := mustSnapshot(t, []yield.Observation{
		{Parcel: "P1", Crop: "WHEAT", Year: 2021, Yield: 6},
	})

	_, err := NewEngine().ProfileParcel(snap, "NOPE")
	if !errors.Is(err, core.ErrParcelNotFound) {
		t.Fatalf("expected ErrParcelNotFound, got %v", err)
	}
}

func TestParcelPerformanceEntities(t *testing.T) {
	snap := mustSnapshot(t, []yield.Observation{
		{Parcel: "P1", Crop: "WHEAT", Year: 2021, Yield: 3},
		{Parcel: "P2", Crop: "WHEAT", Year: 2021, Yield: 9},
		{Parcel: "P3", Crop: "WHEAT", Year: 2021, Missing: true},
	})

	normalized, err := NewEngine().Normalize(snap)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	entities := ParcelPerformanceEntities(normalized)
	if len(entities) != 3 {
		t.Fatalf("expected one entity per parcel, got %d", len(entities))
	}
	if entities[0].ID != "P1" || !entities[0].HasMetric || !approx(entities[0].Metric, 50) {
		t.Fatalf("unexpected P1 entity: %+v", entities[0])
	}
	if entities[1].ID != "P2" || !approx(entities[1].Metric, 150) {
		t.Fatalf("unexpected P2 entity: %+v", entities[1])
	}
	if entities[2].ID != "P3" || entities[2].HasMetric {
		t.Fatalf("P3 has no defined percent and must be unrankable, got %+v", entities[2])
	}
}

func TestCropPerformanceEntities(t *testing.T) {
	snap := mustSnapshot(t, []yield.Observation{
		{Parcel: "P1", Crop: "WHEAT", Year: 2021, Yield: 5},
		{Parcel: "P2", Crop: "WHEAT", Year: 2021, Yield: 7},
		{Parcel: "P1", Crop: "CORN", Year: 2021, Missing: true},
	})

	table, err := NewEngine().Aggregate(snap, yield.GroupByCrop, yield.Filters{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	entities := CropPerformanceEntities(table)
	if len(entities) != 2 {
		t.Fatalf("expected 2 crop entities, got %d", len(entities))
	}
	if entities[0].ID != "WHEAT" || !approx(entities[0].Metric, 6) {
		t.Fatalf("unexpected WHEAT entity: %+v", entities[0])
	}
	if entities[1].ID != "CORN" || entities[1].HasMetric {
		t.Fatalf("CORN has no valid observations and must be unrankable, got %+v", entities[1])
	}
}
