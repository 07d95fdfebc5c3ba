package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fzabel/revsynth/pkg/errors"
	pkgio "github.com/fzabel/revsynth/pkg/io"
	"github.com/fzabel/revsynth/pkg/store"
)

type healthResponse struct {
	Status string `json:"status"`
}

type listResponse struct {
	Templates []*store.Record `json:"templates"`
	Count     int             `json:"count"`
}

type statsResponse struct {
	*store.Stats
	ByWidthDepth []store.WidthDepthCount `json:"by_width_depth"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	width, err := intQuery(r, "width", 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	depth, err := intQuery(r, "depth", 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := intQuery(r, "limit", defaultListLimit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if limit == 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	records, err := s.store.List(r.Context(), store.Filter{
		Width: width,
		Depth: depth,
		Limit: limit,
	})
	if err != nil {
		s.logger.Error("list templates", "err", err)
		s.writeError(w, http.StatusInternalServerError,
			errors.Wrap(errors.ErrCodeStore, err, "listing templates failed"))
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Templates: records, Count: len(records)})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	if err := errors.ValidateHash(hash); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	rec, err := s.store.Get(r.Context(), hash)
	if err != nil {
		s.logger.Error("get template", "hash", hash, "err", err)
		s.writeError(w, http.StatusInternalServerError,
			errors.Wrap(errors.ErrCodeStore, err, "loading template failed"))
		return
	}
	if rec == nil {
		s.writeError(w, http.StatusNotFound,
			errors.New(errors.ErrCodeTemplateNotFound, "no template with hash %s", hash))
		return
	}

	c, err := rec.Circuit()
	if err != nil {
		s.logger.Error("rebuild circuit", "hash", hash, "err", err)
		s.writeError(w, http.StatusInternalServerError,
			errors.Wrap(errors.ErrCodeInternal, err, "stored template is corrupt"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := pkgio.WriteCircuit(c, w); err != nil {
		s.logger.Error("write circuit", "hash", hash, "err", err)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("store stats", "err", err)
		s.writeError(w, http.StatusInternalServerError,
			errors.Wrap(errors.ErrCodeStore, err, "computing store statistics failed"))
		return
	}

	rows, err := s.store.CountByWidthDepth(r.Context())
	if err != nil {
		s.logger.Error("width depth counts", "err", err)
		s.writeError(w, http.StatusInternalServerError,
			errors.Wrap(errors.ErrCodeStore, err, "computing store statistics failed"))
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{Stats: stats, ByWidthDepth: rows})
}

// intQuery parses a non-negative integer query parameter, returning def
// when the parameter is absent.
func intQuery(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a non-negative integer, got %q", name, s)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
}
