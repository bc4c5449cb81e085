//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"go-file-tree/internal/config"
	"go-file-tree/internal/database"
	"go-file-tree/internal/event"
	"go-file-tree/internal/handler"
	"go-file-tree/internal/metrics"
	"go-file-tree/internal/repository"
	"go-file-tree/internal/router"
	"go-file-tree/internal/service"
	"go-file-tree/internal/store"
	"go-file-tree/internal/websocket"
)

// newTreeStore returns the postgres store when TEST_DATABASE_URL is set,
// the memory store otherwise.
func newTreeStore(t *testing.T) (store.Store, handler.Pinger) {
	t.Helper()

	url := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if url == "" {
		return store.NewMemory(), nil
	}

	ctx := context.Background()
	db, err := database.New(ctx, url, database.PoolOptions{MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE files, folders`)
	require.NoError(t, err)

	return repository.NewTreeRepository(db.Pool), db
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	treeStore, pinger := newTreeStore(t)

	m := metrics.New()
	bus := event.NewBus()
	hub := websocket.NewHub(bus)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	treeService := service.NewTreeService(treeStore, bus, m)

	cfg := &config.Config{
		ServerPort:     "3001",
		RequestTimeout: 10 * time.Second,
		StoreDriver:    config.StoreDriverMemory,
		CORSOrigins:    []string{"*"},
		RateLimitRPM:   1000,
		LogFormat:      config.LogFormatPretty,
	}

	server := httptest.NewServer(router.New(cfg, router.Handlers{
		Folder: handler.NewFolderHandler(treeService),
		File:   handler.NewFileHandler(treeService),
		Health: handler.NewHealthHandler(pinger),
	}, m, hub))
	t.Cleanup(server.Close)

	return server
}

func dialEvents(t *testing.T, server *httptest.Server) *gorillaws.Conn {
	t.Helper()

	conn, _, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/events", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func mustNewRequest(t *testing.T, method string, url string, body []byte) *http.Request {
	t.Helper()

	var payloadReader *bytes.Reader
	if body == nil {
		payloadReader = bytes.NewReader([]byte{})
	} else {
		payloadReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, payloadReader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}

// doJSON sends body (marshalled unless nil) and decodes the response into out
// when out is non-nil. It returns the status code.
func doJSON(t *testing.T, method string, url string, body any, out any) int {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	resp, err := http.DefaultClient.Do(mustNewRequest(t, method, url, payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}
