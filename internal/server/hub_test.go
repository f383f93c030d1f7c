package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pdrpinto/gridsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Type     string `json:"type"`
	Snapshot *struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		State  string `json:"state"`
	} `json:"snapshot"`
	Event *struct {
		Kind     string              `json:"kind"`
		Position gridsearch.Position `json:"position"`
		Role     string              `json:"role"`
		Outcome  string              `json:"outcome"`
	} `json:"event"`
}

func dial(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var f frame
	require.NoError(t, json.Unmarshal(data, &f), string(data))
	return f
}

func TestHub_SnapshotThenEvents(t *testing.T) {
	srv, session := newTestServer(t, 4, 3)
	ws := dial(t, srv)

	first := readFrame(t, ws)
	require.Equal(t, messageSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, 4, first.Snapshot.Width)
	assert.Equal(t, 3, first.Snapshot.Height)
	assert.Equal(t, "idle", first.Snapshot.State)
	assert.Equal(t, 1, srv.Hub().Clients())

	_, err := session.controller.Paint(gridsearch.Position{X: 2, Y: 1}, gridsearch.RoleWall)
	require.NoError(t, err)

	next := readFrame(t, ws)
	require.Equal(t, messageEvent, next.Type)
	require.NotNil(t, next.Event)
	assert.Equal(t, "cell_changed", next.Event.Kind)
	assert.Equal(t, gridsearch.Position{X: 2, Y: 1}, next.Event.Position)
	assert.Equal(t, "wall", next.Event.Role)
}

func TestHub_StreamsSearch(t *testing.T) {
	srv, session := newTestServer(t, 3, 3, gridsearch.WithTurbo(true))
	ws := dial(t, srv)
	readFrame(t, ws)

	c := session.controller
	_, err := c.Paint(gridsearch.Position{X: 0, Y: 0}, gridsearch.RoleStart)
	require.NoError(t, err)
	_, err = c.Paint(gridsearch.Position{X: 2, Y: 2}, gridsearch.RoleGoal)
	require.NoError(t, err)
	require.NoError(t, session.StartSearch())

	var kinds []string
	for {
		f := readFrame(t, ws)
		require.NotNil(t, f.Event)
		kinds = append(kinds, f.Event.Kind)
		if f.Event.Kind == "finished" {
			assert.Equal(t, "path_found", f.Event.Outcome)
			break
		}
	}
	assert.Equal(t, []string{"cell_changed", "cell_changed"}, kinds[:2])
	assert.Contains(t, kinds, "explored")
	assert.Contains(t, kinds, "path_cell")
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	srv, _ := newTestServer(t, 2, 2)
	ws := dial(t, srv)
	readFrame(t, ws)

	srv.Hub().Close()
	assert.Equal(t, 0, srv.Hub().Clients())

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived), "got %v", err)
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(func() gridsearch.Snapshot { return gridsearch.Snapshot{} }, "*", quietLogger())
	slow := &client{hub: hub, send: make(chan []byte, 1)}
	hub.mu.Lock()
	hub.clients[slow] = struct{}{}
	hub.mu.Unlock()

	hub.Observe(gridsearch.Event{Kind: gridsearch.EventReset})
	assert.Equal(t, 1, hub.Clients())

	hub.Observe(gridsearch.Event{Kind: gridsearch.EventReset})
	assert.Equal(t, 0, hub.Clients())
	_, open := <-slow.send
	assert.True(t, open, "queued frame is still delivered")
	_, open = <-slow.send
	assert.False(t, open)
}
