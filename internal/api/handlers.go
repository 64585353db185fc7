package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"SessionScreener/internal/activation"
	"SessionScreener/internal/catalog"
	"SessionScreener/internal/model"
	"SessionScreener/internal/recorder"
	"SessionScreener/internal/screener"
)

type conditionView struct {
	ID          int                `json:"id"`
	Description string             `json:"description"`
	Family      catalog.Family     `json:"family"`
	Comparator  catalog.Comparator `json:"comparator"`
	Inverse     catalog.Comparator `json:"inverse"`
	Mode        activation.Mode    `json:"mode"`
}

type setModeRequest struct {
	Mode string `json:"mode"`
}

type screeningRequest struct {
	Date     string   `json:"date"`
	Tickers  string   `json:"tickers"` // uploaded list text, e.g. "NASDAQ:AAPL, MSFT"
	Selected []string `json:"selected"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) conditionViews() []conditionView {
	snap := s.activation.Snapshot()
	defs := s.catalog.List()
	out := make([]conditionView, 0, len(defs))
	for _, d := range defs {
		out = append(out, conditionView{
			ID:          d.ID,
			Description: d.Description,
			Family:      d.Family,
			Comparator:  d.Comparator,
			Inverse:     d.Inverse(),
			Mode:        snap.Mode(d.ID),
		})
	}
	return out
}

func (s *Server) listConditions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.conditionViews())
}

func (s *Server) setCondition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid condition id: %w", err))
		return
	}
	var body setModeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}
	mode, err := activation.ParseMode(body.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch err := s.activation.Set(id, mode); {
	case errors.Is(err, catalog.ErrUnknownCondition):
		writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, activation.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, activation.ErrNotInvertible):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	def, _ := s.catalog.Get(id)
	writeJSON(w, http.StatusOK, conditionView{
		ID:          def.ID,
		Description: def.Description,
		Family:      def.Family,
		Comparator:  def.Comparator,
		Inverse:     def.Inverse(),
		Mode:        mode,
	})
}

func (s *Server) clearConditions(w http.ResponseWriter, _ *http.Request) {
	s.activation.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// buildRequest fills in the configured universe and the default date.
func (s *Server) buildRequest(body screeningRequest) (screener.Request, error) {
	req := screener.Request{
		Date:     screener.DefaultScreeningDate(s.now(), s.loc),
		Tickers:  s.universe.Tickers,
		Selected: s.universe.Selected,
	}
	if body.Date != "" {
		d, err := screener.ParseDate(body.Date)
		if err != nil {
			return req, err
		}
		req.Date = d
	}
	if body.Tickers != "" {
		tickers, err := screener.ParseTickerList(body.Tickers)
		if err != nil {
			return req, err
		}
		req.Tickers = tickers
		req.Selected = nil
	}
	if len(body.Selected) > 0 {
		req.Selected = body.Selected
	}
	return req, nil
}

func (s *Server) runScreening(w http.ResponseWriter, r *http.Request) {
	var body screeningRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
			return
		}
	}
	req, err := s.buildRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	run, err := s.pipeline.Execute(r.Context(), req)
	switch {
	case errors.Is(err, screener.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil && run == nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	case err != nil:
		log.Warn().Err(err).Str("run", run.ID).Msg("screening interrupted")
	}
	writeJSON(w, http.StatusOK, runView(run))
}

type runResponse struct {
	*model.Run
	Lines []string `json:"lines"`
}

func runView(run *model.Run) runResponse {
	lines := make([]string, len(run.Results))
	for i, res := range run.Results {
		lines[i] = res.String()
	}
	return runResponse{Run: run, Lines: lines}
}

func (s *Server) latestRun(w http.ResponseWriter, _ *http.Request) {
	run, err := s.pipeline.Latest()
	if errors.Is(err, recorder.ErrNoRuns) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runView(run))
}
