package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agroyield/adapters/export"
	"agroyield/domain/core"
	"agroyield/domain/yield"
	"agroyield/internal/analysis"
	apperrors "agroyield/internal/errors"
)

// aggregateRequest selects the grouping and filters for an aggregation call
type aggregateRequest struct {
	GroupKey string        `json:"group_key" validate:"required,oneof=parcel crop year crop_year parcel_crop"`
	Filters  yield.Filters `json:"filters"`
	// Groups optionally forces enumeration of zero-count groups
	Groups []string `json:"groups,omitempty"`
}

// compareRequest selects the crop groups for the variance-ratio test
type compareRequest struct {
	Crops     []string        `json:"crops" validate:"omitempty,min=2,dive,required"`
	YearRange yield.YearRange `json:"year_range"`
	Alpha     float64         `json:"alpha" validate:"omitempty,gt=0,lt=1"`
}

// rankRequest configures a parcel leaderboard
type rankRequest struct {
	Direction string `json:"direction" validate:"omitempty,oneof=asc desc"`
	Limit     int    `json:"limit" validate:"gte=0"`
}

func (s *Server) handleSnapshotInfo(w http.ResponseWriter, r *http.Request) {
	minYear, maxYear := s.snapshot.Years()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":           s.snapshot.ID(),
		"version":      s.snapshot.Version(),
		"captured_at":  s.snapshot.CapturedAt(),
		"observations": s.snapshot.Len(),
		"crops":        s.snapshot.Crops(),
		"parcels":      len(s.snapshot.Parcels()),
		"year_min":     minYear,
		"year_max":     maxYear,
	})
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var req aggregateRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	key, err := yield.ParseGroupKey(req.GroupKey)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}
	requested := make([]yield.GroupValue, 0, len(req.Groups))
	for _, g := range req.Groups {
		requested = append(requested, yield.GroupValue(g))
	}

	table, err := s.service.Engine().AggregateWithGroups(s.snapshot, key, req.Filters, requested)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, table)
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	normalized, err := s.service.Engine().Normalize(s.snapshot)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, normalized)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	crops := make([]yield.Crop, 0, len(req.Crops))
	for _, c := range req.Crops {
		crops = append(crops, yield.Crop(c))
	}
	alpha := req.Alpha
	if alpha == 0 {
		alpha = s.service.Alpha()
	}

	result, err := s.service.Engine().CompareCrops(s.snapshot, crops, req.YearRange, alpha)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRankParcels(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	direction, ok := yield.ParseRankDirection(req.Direction)
	if !ok {
		direction = yield.Descending
	}

	normalized, err := s.service.Engine().Normalize(s.snapshot)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	ranking := s.service.Engine().RankBy(analysis.ParcelPerformanceEntities(normalized), direction, req.Limit)
	s.respondJSON(w, http.StatusOK, ranking)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.service.Overview(r.Context(), s.snapshot)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, overview)
}

func (s *Server) handleParcelProfile(w http.ResponseWriter, r *http.Request) {
	parcel := yield.ParcelID(chi.URLParam(r, "id"))
	profile, err := s.service.Engine().ProfileParcel(s.snapshot, parcel)
	if err != nil {
		if core.IsNotFoundError(err) {
			s.respondError(w, http.StatusNotFound, err)
			return
		}
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	overview, err := s.service.Overview(r.Context(), s.snapshot)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	report := &export.Report{
		GeneratedAt:     core.Now(),
		SnapshotVersion: s.snapshot.Version(),
		Aggregates:      []*yield.AggregateTable{overview.ByCrop, overview.ByYear},
		Comparison:      overview.Comparison,
		Ranking:         overview.ParcelRanking,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.HTML()); err != nil {
		s.log.Error("failed to write report response: %v", err)
	}
}

func (s *Server) handleExportNormalizedCSV(w http.ResponseWriter, r *http.Request) {
	normalized, err := s.service.Engine().Normalize(s.snapshot)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="normalized.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := export.WriteNormalizedCSV(w, normalized); err != nil {
		s.log.Error("failed to stream normalized CSV: %v", err)
	}
}

// decodeAndValidate decodes a JSON body into dst and validates it, writing
// a 400 response on failure
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, apperrors.InvalidInput("request body is not valid JSON"))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, apperrors.WithCode(apperrors.CodeValidationError, err))
		return false
	}
	return true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, err error) {
	code := apperrors.GetCode(err)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		code = apperrors.CodeInternalError
	}
	s.respondJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  code,
	})
}
