// Package testserver assembles a full application stack on a temporary
// directory for integration tests.
package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"marginbook/internal/autosave"
	"marginbook/internal/jsonfile"
	"marginbook/internal/state"
	"marginbook/internal/store"
	"marginbook/internal/transport"

	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server *httptest.Server
	Store  *store.Service
	State  *state.Container
	Saver  *autosave.Saver
}

// New wires the file-backed document store, the mutation service, the
// autosave scheduler and the HTTP boundary on a per-test directory.
func New(t *testing.T) *TestServer {
	t.Helper()

	repo := jsonfile.New(filepath.Join(t.TempDir(), "db.json"))
	svc := store.NewService(repo, nil)

	doc, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	st := state.New(doc)
	saver := autosave.New(svc, st, nil, 25*time.Millisecond)
	handler := transport.NewHandler(svc, saver, st, nil)

	server := httptest.NewServer(transport.NewServer(handler))

	t.Cleanup(func() {
		server.Close()
		_ = repo.Close()
	})

	return &TestServer{Server: server, Store: svc, State: st, Saver: saver}
}

// Call posts one JSON-RPC request and decodes the envelope.
func (ts *TestServer) Call(t *testing.T, method string, params any) transport.Response {
	t.Helper()

	body, err := json.Marshal(transport.Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  mustRaw(t, params),
		ID:      1,
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.Server.URL+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out transport.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// Result decodes a successful response's result into dst.
func (ts *TestServer) Result(t *testing.T, resp transport.Response, dst any) {
	t.Helper()
	require.Nil(t, resp.Error, "rpc error: %+v", resp.Error)
	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func mustRaw(t *testing.T, params any) json.RawMessage {
	t.Helper()
	if params == nil {
		return nil
	}
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return raw
}
