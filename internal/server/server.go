package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"zipcaster/internal/constants"
	"zipcaster/internal/domain"
	"zipcaster/internal/middleware"
	"zipcaster/internal/repository"
	"zipcaster/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type BattleServer struct {
	battleSvc *service.BattleService
	importSvc *service.ImportService
	logger    zerolog.Logger
}

func NewBattleServer(battleSvc *service.BattleService, importSvc *service.ImportService, logger zerolog.Logger) *BattleServer {
	return &BattleServer{battleSvc: battleSvc, importSvc: importSvc, logger: logger}
}

type TransformRequest struct {
	Overview json.RawMessage   `json:"overview"`
	Details  []json.RawMessage `json:"details"`
}

type TransformResponse struct {
	Records  []domain.BattleRecord `json:"records"`
	Failures []string              `json:"failures"`
	Warnings []string              `json:"warnings"`
}

type ImportResponse struct {
	Runs  []repository.ImportRun `json:"runs"`
	Error string                 `json:"error,omitempty"`
}

type BattlesResponse struct {
	Battles []domain.BattleRecord `json:"battles"`
}

type RunsResponse struct {
	Runs []repository.ImportRun `json:"runs"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Handler returns the routed API wrapped in CORS and request-id middleware.
func (s *BattleServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/transform", s.Transform)
	mux.HandleFunc("POST /v1/import", s.Import)
	mux.HandleFunc("GET /v1/battles", s.ListBattles)
	mux.HandleFunc("GET /v1/battles/{id}", s.GetBattle)
	mux.HandleFunc("GET /v1/runs", s.ListRuns)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.RequestID(s.logger)(c.Handler(mux))
}

func (s *BattleServer) Transform(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBodyBytes)

	var req TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	details := make([][]byte, len(req.Details))
	for i, d := range req.Details {
		details[i] = d
	}
	var overview []byte
	if len(req.Overview) > 0 && string(req.Overview) != "null" {
		overview = req.Overview
	}

	res := s.battleSvc.Transform(overview, details)
	resp := TransformResponse{
		Records:  res.Records,
		Failures: errorStrings(res.Failures),
		Warnings: errorStrings(res.Warnings),
	}
	if resp.Records == nil {
		resp.Records = []domain.BattleRecord{}
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *BattleServer) Import(w http.ResponseWriter, r *http.Request) {
	runs, err := s.importSvc.Run(r.Context())
	resp := ImportResponse{Runs: runs}
	if resp.Runs == nil {
		resp.Runs = []repository.ImportRun{}
	}

	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		if len(runs) == 0 {
			status = http.StatusInternalServerError
		}
	}
	s.writeJSON(w, r, status, resp)
}

func (s *BattleServer) ListBattles(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.limit(w, r)
	if !ok {
		return
	}

	battles, err := s.battleSvc.List(r.Context(), limit)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to list battles")
		s.writeError(w, r, http.StatusInternalServerError, "failed to list battles")
		return
	}
	if battles == nil {
		battles = []domain.BattleRecord{}
	}
	s.writeJSON(w, r, http.StatusOK, BattlesResponse{Battles: battles})
}

func (s *BattleServer) GetBattle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	battle, err := s.battleSvc.Get(r.Context(), id)
	if errors.Is(err, repository.ErrBattleNotFound) {
		s.writeError(w, r, http.StatusNotFound, "battle not found")
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("battle_id", id).Msg("failed to get battle")
		s.writeError(w, r, http.StatusInternalServerError, "failed to get battle")
		return
	}
	s.writeJSON(w, r, http.StatusOK, battle)
}

func (s *BattleServer) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.limit(w, r)
	if !ok {
		return
	}

	runs, err := s.battleSvc.Runs(r.Context(), limit)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to list import runs")
		s.writeError(w, r, http.StatusInternalServerError, "failed to list import runs")
		return
	}
	if runs == nil {
		runs = []repository.ImportRun{}
	}
	s.writeJSON(w, r, http.StatusOK, RunsResponse{Runs: runs})
}

func (s *BattleServer) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "limit must be an integer")
		return 0, false
	}
	return n, true
}

func (s *BattleServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to write response")
	}
}

func (s *BattleServer) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, errorResponse{Error: msg, RequestID: middleware.GetRequestID(r.Context())})
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
