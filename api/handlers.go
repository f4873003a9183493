package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/gol-boards/model"
	"github.com/sheikhrachel/gol-boards/store"
	"github.com/sheikhrachel/gol-boards/utils"
	"github.com/sheikhrachel/gol-boards/validate"
)

type uploadRequest struct {
	Board [][]int `json:"board"`
}

type stateRequest struct {
	ID            string `json:"id"`
	Generations   int    `json:"generations"`
	MaxIterations *int   `json:"maxIterations"`
}

type boardResponse struct {
	ID          string      `json:"id"`
	State       *model.Grid `json:"state"`
	Generations *int        `json:"generations,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type summaryResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.LoggerFromContext(r.Context()).Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]summaryResponse, 0, len(summaries))
	for _, sum := range summaries {
		resp = append(resp, summaryResponse{ID: sum.ID, CreatedAt: sum.CreatedAt})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	grid, rec, err := s.loadBoard(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, boardResponse{ID: rec.ID, State: grid, CreatedAt: rec.CreatedAt})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validate.Board(req.Board, s.cfg.MaxBoardSize); err != nil {
		s.writeError(w, r, err)
		return
	}

	grid := model.FromMatrix(req.Board)
	state, err := json.Marshal(grid)
	if err != nil {
		s.writeError(w, r, errors.Wrap(err, "[handleUpload] failed to encode board"))
		return
	}

	rec, err := s.store.Create(r.Context(), string(state))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	utils.LoggerFromContext(r.Context()).Info("Board uploaded",
		"board_id", rec.ID, "rows", grid.Rows(), "cols", grid.Cols(), "hash", grid.Hash())
	writeJSON(w, http.StatusCreated, boardResponse{ID: rec.ID, State: grid, CreatedAt: rec.CreatedAt})
}

func (s *Server) handleNextState(w http.ResponseWriter, r *http.Request) {
	s.advanceBoard(w, r, "next-state", false, func(req stateRequest, g *model.Grid) (*model.Grid, int, error) {
		return s.engine.Step(g), 1, nil
	})
}

func (s *Server) handleFutureState(w http.ResponseWriter, r *http.Request) {
	s.advanceBoard(w, r, "future-state", true, func(req stateRequest, g *model.Grid) (*model.Grid, int, error) {
		return s.engine.Advance(g, req.Generations), req.Generations, nil
	})
}

func (s *Server) handleFinalState(w http.ResponseWriter, r *http.Request) {
	s.advanceBoard(w, r, "final-state", true, func(req stateRequest, g *model.Grid) (*model.Grid, int, error) {
		res, err := s.engine.Stabilize(g, *req.MaxIterations)
		return res.Grid, res.Generations, err
	})
}

// advanceBoard loads a stored board, runs op on it, persists and returns the result
func (s *Server) advanceBoard(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	reportGenerations bool,
	op func(req stateRequest, g *model.Grid) (*model.Grid, int, error),
) {
	var req stateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.validateStateRequest(operation, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	current, _, err := s.loadBoard(r.Context(), req.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	started := time.Now()
	next, generations, err := s.compute(r.Context(), func() (*model.Grid, int, error) {
		return op(req, current)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	stats := utils.NewStats()
	stats.Record(generations, next.CountLivingCells(), time.Since(started))
	utils.LoggerFromContext(r.Context()).Info("Board advanced",
		"board_id", req.ID, "operation", operation, "hash", next.Hash(), "stats", stats)

	state, err := json.Marshal(next)
	if err != nil {
		s.writeError(w, r, errors.Wrap(err, "[advanceBoard] failed to encode board"))
		return
	}
	rec, err := s.store.Update(r.Context(), req.ID, string(state))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := boardResponse{ID: rec.ID, State: next, CreatedAt: rec.CreatedAt}
	if reportGenerations {
		resp.Generations = &generations
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) validateStateRequest(operation string, req *stateRequest) error {
	if err := validate.ID(req.ID); err != nil {
		return err
	}

	switch operation {
	case "future-state":
		return validate.Generations(req.Generations, s.cfg.MaxGenerations)
	case "final-state":
		budget, err := validate.Iterations(req.MaxIterations, s.cfg.MaxIterations)
		if err != nil {
			return err
		}
		req.MaxIterations = &budget
	}
	return nil
}

// loadBoard fetches a stored board and decodes its state
func (s *Server) loadBoard(ctx context.Context, id string) (*model.Grid, store.Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, store.Record{}, err
	}

	var grid model.Grid
	if err = json.Unmarshal([]byte(rec.State), &grid); err != nil {
		return nil, store.Record{}, errors.Wrapf(err, "[loadBoard] corrupt state for board: %+v", id)
	}
	return &grid, rec, nil
}
