package integration

import (
	"context"
	"testing"
	"time"

	"marginbook/internal/domain/client"
	"marginbook/internal/domain/document"
	"marginbook/internal/domain/project"
	"marginbook/internal/testserver"

	"github.com/stretchr/testify/require"
)

func TestClientProjectLifecycle(t *testing.T) {
	ts := testserver.New(t)

	var saved client.Client
	ts.Result(t, ts.Call(t, "upsertClient", map[string]any{"name": "Nordic Café"}), &saved)
	require.NotEmpty(t, saved.ID)

	var proj project.Project
	ts.Result(t, ts.Call(t, "upsertProject", map[string]any{
		"title":    "Holiday Product Shoot",
		"clientId": saved.ID,
		"status":   "active",
		"date":     "2025-01-05",
		"products": []map[string]any{
			{"id": "x1", "title": "Lighting Rental", "costPrice": 120, "sellingPrice": 220},
			{"id": "x2", "title": "Editing", "costPrice": 80, "sellingPrice": 160},
		},
	}), &proj)
	require.Equal(t, project.StatusActive, proj.Status)
	require.Len(t, proj.Products, 2)

	// the write went through to storage, not just memory
	stored, err := ts.Store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, stored.Clients, 1)
	require.Len(t, stored.Projects, 1)

	var removed struct {
		Removed int `json:"removed"`
	}
	ts.Result(t, ts.Call(t, "deleteProject", map[string]any{"id": proj.ID}), &removed)
	require.Equal(t, 1, removed.Removed)

	stored, err = ts.Store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Empty(t, stored.Projects)
}

func TestAutosave_PatchPersistsAfterSettling(t *testing.T) {
	ts := testserver.New(t)

	var patched struct {
		ID      string `json:"id"`
		Pending bool   `json:"pending"`
	}
	ts.Result(t, ts.Call(t, "patchProject", map[string]any{"title": "Dra"}), &patched)
	require.True(t, patched.Pending)

	ts.Result(t, ts.Call(t, "patchProject", map[string]any{
		"id": patched.ID, "title": "Draft shoot",
	}), &patched)

	require.Eventually(t, func() bool {
		return !ts.Saver.Pending(patched.ID)
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := ts.Store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, stored.Projects, 1)
	require.Equal(t, "Draft shoot", stored.Projects[0].Title, "latest patch wins")
}

func TestSnapshotExportImportAcrossServers(t *testing.T) {
	src := testserver.New(t)
	src.Result(t, src.Call(t, "upsertClient", map[string]any{"name": "Exported Co"}), new(client.Client))

	var exported struct {
		Payload string `json:"payload"`
	}
	src.Result(t, src.Call(t, "exportSnapshot", nil), &exported)
	require.NotEmpty(t, exported.Payload)

	dst := testserver.New(t)
	dst.Result(t, dst.Call(t, "upsertClient", map[string]any{"name": "Replaced Away"}), new(client.Client))

	var doc document.Document
	dst.Result(t, dst.Call(t, "replaceState", map[string]any{"payload": exported.Payload}), &doc)
	require.Len(t, doc.Clients, 1)
	require.Equal(t, "Exported Co", doc.Clients[0].Name)

	stored, err := dst.Store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, stored.Clients, 1)
	require.Equal(t, "Exported Co", stored.Clients[0].Name)
}

func TestMergeState_KeepsExistingRecords(t *testing.T) {
	ts := testserver.New(t)
	ts.Result(t, ts.Call(t, "upsertClient", map[string]any{"name": "Kept"}), new(client.Client))

	payload := `{"clients": [{"id": "m1", "name": "Merged In"}], "projects": []}`
	var res struct {
		Clients  int      `json:"clients"`
		Projects int      `json:"projects"`
		Failures []string `json:"failures"`
	}
	ts.Result(t, ts.Call(t, "mergeState", map[string]any{"payload": payload}), &res)
	require.Equal(t, 1, res.Clients)
	require.Empty(t, res.Failures)

	stored, err := ts.Store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, stored.Clients, 2)
}

func TestMalformedImportLeavesDocumentUntouched(t *testing.T) {
	ts := testserver.New(t)
	ts.Result(t, ts.Call(t, "upsertClient", map[string]any{"name": "Survivor"}), new(client.Client))

	resp := ts.Call(t, "replaceState", map[string]any{"payload": "{definitely not json"})
	require.NotNil(t, resp.Error)

	stored, err := ts.Store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, stored.Clients, 1)
	require.Equal(t, "Survivor", stored.Clients[0].Name)
}
