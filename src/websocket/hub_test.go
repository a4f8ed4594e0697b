package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalengine/src/model"
	"signalengine/src/position"
)

func TestHub_BroadcastNonBlocking(t *testing.T) {
	hub := NewHub()
	for i := 0; i < 1000; i++ {
		hub.Broadcast(MessageSummary, map[string]int{"i": i})
	}
	assert.Equal(t, int64(1000-256), hub.DroppedMessages())
}

func TestHub_StreamsToClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(Handler(hub, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.OnPositionEvent(ctx, position.Event{Kind: position.EventError})
	hub.OnExecution(ctx, model.ExecutionResult{Action: model.ActionExecuted, PositionID: "p-1"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, MessageExecution, msg.Type)
	assert.Equal(t, "EXECUTED", msg.Data["action"])
	assert.Equal(t, "p-1", msg.Data["position_id"])

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
