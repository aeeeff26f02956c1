package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/testutil"
)

func TestBroadcaster_PublishWithoutWatchers(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	broadcaster.Publish(model.Event{Type: model.EventMoveApplied, GameID: "game-1"})

	assert.Equal(t, 0, manager.HubCount(), "publishing must not create hubs")
}

func TestBroadcaster_PublishEncodesEvent(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("game-1")
	client := NewClient(hub, model.NoPlayer)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	broadcaster.Publish(model.Event{
		Type:    model.EventGameFinished,
		GameID:  "game-1",
		Payload: model.GameFinishedPayload{Status: model.GameStatus{State: model.GameStateFinished, Winner: 2}},
	})

	msg := receive(t, client)
	require.True(t, strings.HasPrefix(msg, "event: game_finished\ndata: "))

	var decoded struct {
		Type    string `json:"type"`
		GameID  string `json:"game_id"`
		Payload struct {
			Status model.GameStatus `json:"status"`
		} `json:"payload"`
	}
	data := strings.TrimSuffix(strings.TrimPrefix(msg, "event: game_finished\ndata: "), "\n\n")
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	assert.Equal(t, "game_finished", decoded.Type)
	assert.Equal(t, "game-1", decoded.GameID)
	assert.Equal(t, model.PlayerID(2), decoded.Payload.Status.Winner)
}

func TestServeSSE_StreamsEvents(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()
	hub := manager.GetOrCreateHub("game-1")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, hub, model.NoPlayer)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: {\"game_id\":\"game-1\"}\n", line)
	_, _ = reader.ReadString('\n')

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	hub.BroadcastEvent("move_applied", "{}")

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: move_applied\n", line)
}
