package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agroyield/app"
	"agroyield/domain/yield"
	"agroyield/internal/analysis"
	"agroyield/internal/testkit"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	snap, err := testkit.NewSnapshot(testkit.DefaultConfig())
	if err != nil {
		t.Fatalf("testkit: %v", err)
	}
	svc := app.NewAnalysisService(analysis.NewEngine(), analysis.DefaultAlpha, nil)
	return NewServer(svc, snap, nil)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHandleSnapshotInfo(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/api/snapshot", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var info struct {
		Observations int      `json:"observations"`
		Crops        []string `json:"crops"`
		Parcels      int      `json:"parcels"`
		YearMin      int      `json:"year_min"`
		YearMax      int      `json:"year_max"`
		Version      string   `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Observations != 108 || info.Parcels != 12 {
		t.Fatalf("unexpected snapshot info: %+v", info)
	}
	if len(info.Crops) != 3 || info.Crops[0] != "BARLEY" {
		t.Fatalf("expected sorted crops, got %v", info.Crops)
	}
	if info.YearMin != 2021 || info.YearMax != 2023 {
		t.Fatalf("unexpected year span: %+v", info)
	}
	if info.Version == "" {
		t.Fatal("expected a version tag")
	}
}

func TestHandleAggregate(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/api/aggregate", `{"group_key":"crop"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var table yield.AggregateTable
	if err := json.Unmarshal(rec.Body.Bytes(), &table); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if table.Key != yield.GroupByCrop || len(table.Order) != 3 {
		t.Fatalf("unexpected table: key=%q groups=%d", table.Key, len(table.Order))
	}
}

func TestHandleAggregate_BadRequests(t *testing.T) {
	srv := newTestServer(t)
	cases := map[string]string{
		"unknown group key": `{"group_key":"soil_type"}`,
		"missing group key": `{}`,
		"not json":          `{{{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/aggregate", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleCompare(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/api/compare", `{"crops":["WHEAT","CORN"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result yield.ComparisonResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Status != yield.ComparisonComputed {
		t.Fatalf("expected computed comparison, got %+v", result)
	}
	if result.Alpha != analysis.DefaultAlpha {
		t.Fatalf("expected the configured alpha, got %v", result.Alpha)
	}
	if len(result.Groups) != 2 {
		t.Fatalf("expected 2 group sample sizes, got %v", result.Groups)
	}
}

func TestHandleCompare_Validation(t *testing.T) {
	srv := newTestServer(t)

	// A single crop can never form a comparison
	rec := doJSON(t, srv, http.MethodPost, "/api/compare", `{"crops":["WHEAT"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for one crop, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/compare", `{"alpha":1.5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for alpha out of range, got %d", rec.Code)
	}
}

func TestHandleCompare_UnknownCropsInsufficient(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/api/compare", `{"crops":["SPELT","MILLET"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result yield.ComparisonResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Status != yield.ComparisonInsufficientData {
		t.Fatalf("expected insufficient-data variant, got %q", result.Status)
	}
}

func TestHandleRankParcels(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/api/rank/parcels", `{"direction":"desc","limit":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var ranking yield.Ranking
	if err := json.Unmarshal(rec.Body.Bytes(), &ranking); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ranking.Direction != yield.Descending || len(ranking.Entries) != 5 {
		t.Fatalf("unexpected ranking: %+v", ranking)
	}
	for i, e := range ranking.Entries {
		if e.Rank != i+1 {
			t.Fatalf("expected rank %d at position %d, got %d", i+1, i, e.Rank)
		}
	}
}

func TestHandleNormalize(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/api/normalize", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var normalized []yield.NormalizedObservation
	if err := json.Unmarshal(rec.Body.Bytes(), &normalized); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(normalized) != 108 {
		t.Fatalf("expected 108 entries, got %d", len(normalized))
	}
}

func TestHandleOverview(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/api/overview", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var ov app.Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &ov); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ov.ByCrop == nil || ov.ByYear == nil || ov.ByParcel == nil || ov.ByCropYear == nil {
		t.Fatal("overview must include every aggregate table")
	}
}

func TestHandleParcelProfile(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/parcels/P001/profile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var profile yield.ParcelProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.Parcel != "P001" || profile.Observations != 9 {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/parcels/NOPE/profile", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown parcel, got %d", rec.Code)
	}
}

func TestHandleExportNormalizedCSV(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/api/export/normalized.csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv, got %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "parcel,crop,year,yield,baseline,percent") {
		t.Fatalf("unexpected CSV body:\n%.120s", rec.Body.String())
	}
}

func TestHandleExportReport(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/api/export/report", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<table>") {
		t.Fatalf("expected an HTML report with tables:\n%.200s", rec.Body.String())
	}
}
