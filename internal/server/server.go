// Package server exposes pipeline artifacts over HTTP for the
// dashboard: run history, the stats report, and model predictions.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/laborlens/jobmarket-cli/internal/config"
	"github.com/laborlens/jobmarket-cli/internal/feature"
	"github.com/laborlens/jobmarket-cli/internal/model"
	"github.com/laborlens/jobmarket-cli/internal/normalize"
	"github.com/laborlens/jobmarket-cli/internal/pipeline"
	"github.com/laborlens/jobmarket-cli/internal/salary"
	"github.com/laborlens/jobmarket-cli/internal/stats"
	"github.com/laborlens/jobmarket-cli/internal/store"
)

// Server serves the read-only dashboard API.
type Server struct {
	store store.Store
	paths pipeline.Paths
	locs  *normalize.LocationTable
}

func New(cfg config.Config, st store.Store) *Server {
	return &Server{
		store: st,
		paths: pipeline.NewPaths(cfg.Data),
		locs:  normalize.NewLocationTable(normalize.DefaultLocations),
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/latest", s.handleLatestRun)
		r.Get("/stats", s.handleStats)
		r.Post("/predict", s.handlePredict)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context(), store.RunFilter{Limit: 50})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.LatestRun(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "no runs recorded", "run the pipeline first")
		return
	}

	stages, err := s.store.ListStages(r.Context(), run.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run": run, "stages": stages})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	analysis, err := stats.LoadAnalysis(s.paths.Stats)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

type predictRequest struct {
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	Contract     string   `json:"contract"`
	Remote       string   `json:"remote"`
	Experience   string   `json:"experience"`
	ExpYears     *float64 `json:"experience_years"`
	Technologies []string `json:"technologies"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	m, err := salary.Load(s.paths.Model)
	if err != nil {
		s.fail(w, err)
		return
	}
	schema, err := feature.LoadSchema(s.paths.Schema)
	if err != nil {
		s.fail(w, err)
		return
	}

	rec, err := s.recordFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "use one of the canonical category values")
		return
	}
	prediction, err := m.Predict(rec, schema)
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"salary_annual_eur": prediction,
		"schema_version":    m.SchemaVersion,
	})
}

func (s *Server) recordFromRequest(req predictRequest) (model.JobRecord, error) {
	contract, ok := normalize.CanonicalContract(req.Contract)
	if !ok {
		return model.JobRecord{}, eris.Errorf("unrecognized contract type %q", req.Contract)
	}
	experience, ok := normalize.CanonicalExperience(req.Experience)
	if !ok {
		return model.JobRecord{}, eris.Errorf("unrecognized experience level %q", req.Experience)
	}

	rec := model.JobRecord{
		Title:        req.Title,
		Location:     req.Location,
		Contract:     contract,
		Remote:       model.RemoteMode(req.Remote),
		Experience:   experience,
		ExpYears:     req.ExpYears,
		Technologies: model.NewTechSet(req.Technologies...),
	}

	cat, mode := s.locs.Lookup(req.Location)
	rec.LocationCat = cat
	if rec.Remote == "" {
		rec.Remote = mode
	}
	return rec, nil
}

// fail maps domain errors onto HTTP statuses. Missing artifacts come
// back 404 with a hint naming the stage to run.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var missing *model.MissingArtifactError
	if errors.As(err, &missing) {
		writeError(w, http.StatusNotFound, "artifact not available", missing.Hint)
		return
	}

	var mismatch *model.SchemaMismatchError
	if errors.As(err, &mismatch) {
		writeError(w, http.StatusConflict, mismatch.Error(), "retrain the model against the current schema")
		return
	}

	zap.L().Error("server: request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error", "")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, hint string) {
	body := map[string]string{"error": msg}
	if hint != "" {
		body["hint"] = hint
	}
	writeJSON(w, status, body)
}
