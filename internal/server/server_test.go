package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdrpinto/gridsearch"
	"github.com/pdrpinto/gridsearch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// testSession is a minimal Session over a real controller.
type testSession struct {
	controller *gridsearch.Controller
	mu         sync.Mutex
	tool       gridsearch.Role
	ctx        context.Context
}

func (s *testSession) Controller() *gridsearch.Controller { return s.controller }

func (s *testSession) Tool() gridsearch.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

func (s *testSession) SetTool(role gridsearch.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tool = role
	return nil
}

func (s *testSession) PaintAt(p gridsearch.Position) (bool, error) {
	return s.controller.Paint(p, s.Tool())
}

func (s *testSession) StartSearch() error {
	return s.controller.StartSearch(s.ctx)
}

func (s *testSession) ScatterWalls(sc gridsearch.Scatter, seed uint64) error {
	return errors.New("not supported")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, width, height int, options ...gridsearch.Option) (*Server, *testSession) {
	t.Helper()
	controller, err := gridsearch.New(width, height, append([]gridsearch.Option{gridsearch.WithLogger(quietLogger())}, options...)...)
	require.NoError(t, err)
	t.Cleanup(controller.Reset)

	session := &testSession{controller: controller, tool: gridsearch.RoleWall, ctx: context.Background()}
	srv := New(session, config.ServerConfig{Host: "127.0.0.1", AllowedOrigin: "*"}, quietLogger())
	t.Cleanup(srv.close)
	return srv, session
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
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

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, 3, 3)
	rec := do(t, srv.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestPaintAndGrid(t *testing.T) {
	srv, _ := newTestServer(t, 3, 2)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/paint", `{"x":1,"y":0,"role":"wall"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode[map[string]any](t, rec)["changed"])

	rec = do(t, h, http.MethodPost, "/api/paint", `{"x":1,"y":0,"role":"wall"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["changed"])

	rec = do(t, h, http.MethodPost, "/api/paint", `{"x":0,"y":1,"role":"start"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/grid", "")
	require.Equal(t, http.StatusOK, rec.Code)
	grid := decode[struct {
		Width  int                  `json:"width"`
		Height int                  `json:"height"`
		State  string               `json:"state"`
		Roles  []string             `json:"roles"`
		Start  *gridsearch.Position `json:"start"`
	}](t, rec)
	assert.Equal(t, 3, grid.Width)
	assert.Equal(t, 2, grid.Height)
	assert.Equal(t, "idle", grid.State)
	assert.Equal(t, []string{"empty", "wall", "empty", "start", "empty", "empty"}, grid.Roles)
	require.NotNil(t, grid.Start)
	assert.Equal(t, gridsearch.Position{X: 0, Y: 1}, *grid.Start)
}

func TestErrorStatus(t *testing.T) {
	srv, _ := newTestServer(t, 3, 3)
	h := srv.Handler()

	for name, tc := range map[string]struct {
		method, path, body string
		status             int
	}{
		"out of bounds":     {http.MethodPost, "/api/paint", `{"x":3,"y":0,"role":"wall"}`, http.StatusBadRequest},
		"unknown role":      {http.MethodPost, "/api/paint", `{"x":0,"y":0,"role":"lava"}`, http.StatusBadRequest},
		"missing role":      {http.MethodPost, "/api/paint", `{"x":0,"y":0}`, http.StatusBadRequest},
		"malformed body":    {http.MethodPost, "/api/paint", `{`, http.StatusBadRequest},
		"missing endpoints": {http.MethodPost, "/api/search/start", "", http.StatusUnprocessableEntity},
		"pause while idle":  {http.MethodPost, "/api/search/pause", "", http.StatusConflict},
		"resume while idle": {http.MethodPost, "/api/search/resume", "", http.StatusConflict},
		"negative speed":    {http.MethodPost, "/api/speed", `{"ms":-5}`, http.StatusBadRequest},
		"missing flag":      {http.MethodPost, "/api/turbo", `{}`, http.StatusBadRequest},
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[map[string]any](t, rec)["error"])
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&gridsearch.OutOfBoundsError{}))
	assert.Equal(t, http.StatusBadRequest, statusFor(gridsearch.ErrInvalidLayout))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(gridsearch.ErrMissingEndpoints))
	assert.Equal(t, http.StatusConflict, statusFor(&gridsearch.TransitionError{Op: "pause", State: gridsearch.StateIdle}))
	assert.Equal(t, http.StatusConflict, statusFor(gridsearch.ErrSearchActive))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestToolAndPaintAt(t *testing.T) {
	srv, session := newTestServer(t, 3, 3)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/tool", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "wall", decode[map[string]any](t, rec)["role"])

	rec = do(t, h, http.MethodPost, "/api/tool", `{"role":"goal"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, gridsearch.RoleGoal, session.Tool())

	rec = do(t, h, http.MethodPost, "/api/paint-at", `{"x":2,"y":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cell, err := session.controller.Cell(gridsearch.Position{X: 2, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, gridsearch.RoleGoal, cell.Role)
}

func TestSpeedAndTurbo(t *testing.T) {
	srv, session := newTestServer(t, 3, 3)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/speed", `{"ms":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodPost, "/api/speed", `{"ms":75}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/turbo", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	snap := session.controller.Snapshot()
	assert.Equal(t, 75*time.Millisecond, snap.StepDelay)
	assert.True(t, snap.Turbo)
}

func TestSearchLifecycle(t *testing.T) {
	srv, session := newTestServer(t, 10, 10, gridsearch.WithStepDelay(50*time.Millisecond), gridsearch.WithPollInterval(time.Millisecond))
	h := srv.Handler()

	do(t, h, http.MethodPost, "/api/paint", `{"x":0,"y":0,"role":"start"}`)
	do(t, h, http.MethodPost, "/api/paint", `{"x":9,"y":9,"role":"goal"}`)

	rec := do(t, h, http.MethodPost, "/api/search/start", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "running", decode[map[string]any](t, rec)["state"])

	rec = do(t, h, http.MethodPost, "/api/paint", `{"x":5,"y":5,"role":"wall"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/search/start", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/search/pause", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paused", decode[map[string]any](t, rec)["state"])

	do(t, h, http.MethodPost, "/api/turbo", `{"enabled":true}`)
	rec = do(t, h, http.MethodPost, "/api/search/resume", "")
	require.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, session.controller.Wait(ctx))

	rec = do(t, h, http.MethodGet, "/api/grid", "")
	grid := decode[struct {
		State string                `json:"state"`
		Path  []gridsearch.Position `json:"path"`
	}](t, rec)
	assert.Equal(t, "path_found", grid.State)
	assert.Len(t, grid.Path, 19)

	rec = do(t, h, http.MethodPost, "/api/search/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", decode[map[string]any](t, rec)["state"])
	assert.Equal(t, gridsearch.StateIdle, session.controller.State())
}

func TestCORS(t *testing.T) {
	controller, err := gridsearch.New(2, 2, gridsearch.WithLogger(quietLogger()))
	require.NoError(t, err)
	session := &testSession{controller: controller, ctx: context.Background()}
	srv := New(session, config.ServerConfig{AllowedOrigin: "http://localhost:3000"}, quietLogger())
	t.Cleanup(srv.close)

	rec := do(t, srv.Handler(), http.MethodOptions, "/api/paint", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, srv.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
