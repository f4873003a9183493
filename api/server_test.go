package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikhrachel/gol-boards/model"
	"github.com/sheikhrachel/gol-boards/store"
	"github.com/sheikhrachel/gol-boards/utils"
)

type testBoard struct {
	ID          string    `json:"id"`
	State       [][]int   `json:"state"`
	Generations *int      `json:"generations"`
	CreatedAt   time.Time `json:"createdAt"`
}

type testError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	Message string `json:"message"`
}

func newTestServer(t *testing.T, mutate ...func(*utils.Config)) (*Server, store.Store) {
	t.Helper()
	cfg := utils.DefaultConfig()
	cfg.MaxBoardSize = 10
	cfg.MaxGenerations = 100
	cfg.MaxIterations = 100
	for _, m := range mutate {
		m(&cfg)
	}
	require.NoError(t, cfg.Validate())

	st := store.NewMemory()
	logger := utils.NewLogger("error", "text", io.Discard)
	return NewServer(cfg, model.NewEngine(cfg.Rules()), st, logger), st
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func upload(t *testing.T, h http.Handler, board string) testBoard {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/boards/upload", `{"board": `+board+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[testBoard](t, rec)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestUploadAndGet(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	created := upload(t, h, `[[0,1,0],[0,1,0],[0,1,0]]`)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, [][]int{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}}, created.State)
	assert.False(t, created.CreatedAt.IsZero())

	rec := do(t, h, http.MethodGet, "/api/boards/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[testBoard](t, rec)
	assert.Equal(t, created.State, got.State)
	assert.Nil(t, got.Generations)
}

func TestUploadValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	cases := map[string]string{
		"not json":       `{"board":`,
		"missing board":  `{}`,
		"empty board":    `{"board": []}`,
		"empty row":      `{"board": [[]]}`,
		"ragged":         `{"board": [[0,1],[1]]}`,
		"bad cell":       `{"board": [[0,2]]}`,
		"fractional":     `{"board": [[0.5]]}`,
		"too many rows":  `{"board": [[0],[0],[0],[0],[0],[0],[0],[0],[0],[0],[0]]}`,
		"too many cols":  `{"board": [[0,0,0,0,0,0,0,0,0,0,0]]}`,
		"string payload": `"board"`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/boards/upload", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Validation error", decode[testError](t, rec).Error)
		})
	}
}

func TestUploadMaxSizeAccepted(t *testing.T) {
	srv, _ := newTestServer(t)

	row := `[0,0,0,0,0,0,0,0,0,1]`
	rows := make([]string, 10)
	for i := range rows {
		rows[i] = row
	}
	upload(t, srv.Handler(), "["+strings.Join(rows, ",")+"]")
}

func TestListBoards(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/boards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	first := upload(t, h, `[[1]]`)
	time.Sleep(2 * time.Millisecond)
	second := upload(t, h, `[[0]]`)

	rec = do(t, h, http.MethodGet, "/api/boards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]testBoard](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Nil(t, list[0].State)
}

func TestGetMissingBoard(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/boards/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Board not found", decode[testError](t, rec).Error)
}

func TestNextState(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()
	created := upload(t, h, `[[0,1,0],[0,1,0],[0,1,0]]`)

	rec := do(t, h, http.MethodPost, "/api/boards/next-state", `{"id": "`+created.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[testBoard](t, rec)
	assert.Equal(t, [][]int{{0, 0, 0}, {1, 1, 1}, {0, 0, 0}}, got.State)
	assert.Nil(t, got.Generations)

	// The stored board moved forward too
	stored, err := st.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `[[0,0,0],[1,1,1],[0,0,0]]`, stored.State)
}

func TestNextStateErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/boards/next-state", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/boards/next-state", `{"id": 5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/boards/next-state", `{"id": "missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFutureState(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	created := upload(t, h, `[[0,1,0],[0,1,0],[0,1,0]]`)

	rec := do(t, h, http.MethodPost, "/api/boards/future-state", `{"id": "`+created.ID+`", "generations": 2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[testBoard](t, rec)
	assert.Equal(t, [][]int{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}}, got.State)
	require.NotNil(t, got.Generations)
	assert.Equal(t, 2, *got.Generations)

	rec = do(t, h, http.MethodPost, "/api/boards/future-state", `{"id": "`+created.ID+`", "generations": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [][]int{{0, 0, 0}, {1, 1, 1}, {0, 0, 0}}, decode[testBoard](t, rec).State)
}

func TestFutureStateValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	created := upload(t, h, `[[1]]`)

	for _, body := range []string{
		`{"id": "` + created.ID + `"}`,
		`{"id": "` + created.ID + `", "generations": 0}`,
		`{"id": "` + created.ID + `", "generations": -1}`,
		`{"id": "` + created.ID + `", "generations": 101}`,
		`{"id": "` + created.ID + `", "generations": 1.5}`,
		`{"generations": 1}`,
	} {
		rec := do(t, h, http.MethodPost, "/api/boards/future-state", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := do(t, h, http.MethodPost, "/api/boards/future-state", `{"id": "`+created.ID+`", "generations": 100}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFinalState(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	t.Run("extinction", func(t *testing.T) {
		created := upload(t, h, `[[1]]`)
		rec := do(t, h, http.MethodPost, "/api/boards/final-state", `{"id": "`+created.ID+`"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode[testBoard](t, rec)
		assert.Equal(t, [][]int{{0}}, got.State)
		require.NotNil(t, got.Generations)
		assert.Equal(t, 1, *got.Generations)
	})

	t.Run("already empty reports zero generations", func(t *testing.T) {
		created := upload(t, h, `[[0,0]]`)
		rec := do(t, h, http.MethodPost, "/api/boards/final-state", `{"id": "`+created.ID+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[testBoard](t, rec)
		require.NotNil(t, got.Generations)
		assert.Equal(t, 0, *got.Generations)
	})

	t.Run("still life", func(t *testing.T) {
		created := upload(t, h, `[[1,1],[1,1]]`)
		rec := do(t, h, http.MethodPost, "/api/boards/final-state", `{"id": "`+created.ID+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, [][]int{{1, 1}, {1, 1}}, decode[testBoard](t, rec).State)
	})
}

func TestFinalStateDoesNotConverge(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()
	created := upload(t, h, `[[0,1,0],[0,1,0],[0,1,0]]`)

	rec := do(t, h, http.MethodPost, "/api/boards/final-state", `{"id": "`+created.ID+`", "maxIterations": 5}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[testError](t, rec)
	assert.Equal(t, "Board did not converge", body.Error)
	assert.Equal(t, "The board did not stabilize within 5 iterations", body.Message)

	// A failed search leaves the stored board untouched
	stored, err := st.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `[[0,1,0],[0,1,0],[0,1,0]]`, stored.State)

	rec = do(t, h, http.MethodPost, "/api/boards/final-state", `{"id": "`+created.ID+`"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "The board did not stabilize within 100 iterations", decode[testError](t, rec).Message)

	rec = do(t, h, http.MethodPost, "/api/boards/final-state", `{"id": "`+created.ID+`", "maxIterations": 101}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/boards/upload", "")
	// Falls through to the board lookup route
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv.Handler(), http.MethodDelete, "/api/boards", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestComputeBusy(t *testing.T) {
	srv, _ := newTestServer(t, func(c *utils.Config) {
		c.MaxConcurrentComputations = 1
		c.RequestTimeout = 20 * time.Millisecond
	})

	release := make(chan struct{})
	started := make(chan struct{})
	go srv.compute(context.Background(), func() (*model.Grid, int, error) {
		close(started)
		<-release
		return model.NewGrid(1, 1), 0, nil
	})
	<-started

	// The only slot is taken, the second computation times out waiting for it
	_, _, err := srv.compute(context.Background(), func() (*model.Grid, int, error) {
		return model.NewGrid(1, 1), 0, nil
	})
	assert.ErrorIs(t, err, errBusy)
	close(release)

	rec := httptest.NewRecorder()
	srv.writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestComputeTimeout(t *testing.T) {
	srv, _ := newTestServer(t, func(c *utils.Config) {
		c.RequestTimeout = 10 * time.Millisecond
	})

	release := make(chan struct{})
	defer close(release)
	_, _, err := srv.compute(context.Background(), func() (*model.Grid, int, error) {
		<-release
		return nil, 0, nil
	})
	assert.ErrorIs(t, err, errBusy)
}

func TestUnexpectedErrorIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := utils.NewLogger("error", "json", &logs)
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(utils.WithLogger(req.Context(), logger))
	srv.writeError(rec, req, io.ErrUnexpectedEOF)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode[testError](t, rec).Error)
	assert.Contains(t, logs.String(), "unexpected EOF")
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, func(c *utils.Config) {
		c.ListenAddr = "127.0.0.1:0"
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
