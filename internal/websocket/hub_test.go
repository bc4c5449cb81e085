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

	"go-file-tree/internal/event"
)

func TestHub_BroadcastsEventsToClients(t *testing.T) {
	bus := event.NewBus()
	hub := NewHub(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(Handler(hub, nil))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration is asynchronous; keep publishing until the client sees one.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	received := make(chan []byte, 1)
	go func() {
		_, message, err := conn.ReadMessage()
		if err == nil {
			received <- message
		}
	}()

	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case message := <-received:
			var got event.Event
			require.NoError(t, json.Unmarshal(message, &got))
			assert.Equal(t, event.TypeFolderCreated, got.Type)
			assert.NotEmpty(t, got.ID)
			return
		case <-ticker.C:
			bus.Publish(event.Event{Type: event.TypeFolderCreated, Payload: map[string]string{"id": "f1"}})
		case <-deadline:
			t.Fatal("no event received")
		}
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:5173"})

	allowed := httptest.NewRequest("GET", "/events", nil)
	allowed.Header.Set("Origin", "http://localhost:5173")
	assert.True(t, check(allowed))

	denied := httptest.NewRequest("GET", "/events", nil)
	denied.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(denied))

	noOrigin := httptest.NewRequest("GET", "/events", nil)
	assert.True(t, check(noOrigin))

	wildcard := originChecker([]string{"*"})
	assert.True(t, wildcard(denied))
}
