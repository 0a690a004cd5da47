package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"marginbook/internal/dashboard"
	"marginbook/internal/domain/client"
	"marginbook/internal/domain/document"
	"marginbook/internal/domain/project"
	"marginbook/internal/snapshot"
	"marginbook/internal/state"
	"marginbook/internal/store"
)

// ErrMethodUnknown marks a method name with no registered handler.
var ErrMethodUnknown = errors.New("method not found")

// ErrParams marks a params payload the method could not read.
var ErrParams = errors.New("invalid params")

// DocumentService is the persistence surface the boundary mutates
// through. Satisfied by *store.Service.
type DocumentService interface {
	Snapshot(ctx context.Context) (document.Document, error)
	UpsertClient(ctx context.Context, in store.ClientInput) (client.Client, error)
	UpsertProject(ctx context.Context, in store.ProjectInput) (project.Project, error)
	DeleteProject(ctx context.Context, id string) (int, error)
	Replace(ctx context.Context, doc document.Document) (document.Document, error)
	Merge(ctx context.Context, doc document.Document) (store.MergeResult, error)
}

// Autosaver debounces project patches. Satisfied by *autosave.Saver.
type Autosaver interface {
	Queue(in store.ProjectInput) string
	Pending(id string) bool
}

// Handler dispatches boundary methods. Reads come from the in-memory
// state container; durable writes go through the document service and
// are mirrored back into state so subsequent reads see them.
type Handler struct {
	svc    DocumentService
	saver  Autosaver
	state  *state.Container
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a method dispatcher.
func NewHandler(svc DocumentService, saver Autosaver, st *state.Container, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, saver: saver, state: st, logger: logger, now: time.Now}
}

// Handle routes one method call.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "getState":
		return h.state.Snapshot(), nil
	case "upsertClient":
		return h.upsertClient(ctx, params)
	case "upsertProject":
		return h.upsertProject(ctx, params)
	case "patchProject":
		return h.patchProject(params)
	case "autosavePending":
		return h.autosavePending(params)
	case "deleteProject":
		return h.deleteProject(ctx, params)
	case "replaceState":
		return h.replaceState(ctx, params)
	case "mergeState":
		return h.mergeState(ctx, params)
	case "exportSnapshot":
		return h.exportSnapshot()
	case "getDashboard":
		return h.getDashboard(params)
	default:
		return nil, fmt.Errorf("%w: %s", ErrMethodUnknown, method)
	}
}

func (h *Handler) upsertClient(ctx context.Context, params json.RawMessage) (any, error) {
	var in store.ClientInput
	if err := unmarshalParams(params, &in); err != nil {
		return nil, err
	}
	saved, err := h.svc.UpsertClient(ctx, in)
	if err != nil {
		return nil, err
	}
	h.state.PutClient(saved)
	return saved, nil
}

func (h *Handler) upsertProject(ctx context.Context, params json.RawMessage) (any, error) {
	var in store.ProjectInput
	if err := unmarshalParams(params, &in); err != nil {
		return nil, err
	}
	saved, err := h.svc.UpsertProject(ctx, in)
	if err != nil {
		return nil, err
	}
	h.state.PutProject(saved)
	return saved, nil
}

// patchProject queues a debounced write instead of persisting
// immediately. The response carries the id (minted if needed) so the
// client can keep patching the same record.
func (h *Handler) patchProject(params json.RawMessage) (any, error) {
	var in store.ProjectInput
	if err := unmarshalParams(params, &in); err != nil {
		return nil, err
	}
	id := h.saver.Queue(in)
	return map[string]any{"id": id, "pending": true}, nil
}

func (h *Handler) autosavePending(params json.RawMessage) (any, error) {
	var in struct {
		ID string `json:"id"`
	}
	if err := unmarshalParams(params, &in); err != nil {
		return nil, err
	}
	return map[string]any{"pending": h.saver.Pending(in.ID)}, nil
}

func (h *Handler) deleteProject(ctx context.Context, params json.RawMessage) (any, error) {
	var in struct {
		ID string `json:"id"`
	}
	if err := unmarshalParams(params, &in); err != nil {
		return nil, err
	}
	removed, err := h.svc.DeleteProject(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		h.state.RemoveProject(in.ID)
	}
	return map[string]any{"removed": removed}, nil
}

func (h *Handler) replaceState(ctx context.Context, params json.RawMessage) (any, error) {
	var in struct {
		Payload string `json:"payload"`
	}
	if err := unmarshalParams(params, &in); err != nil {
		return nil, err
	}
	doc, err := snapshot.ImportReplace(ctx, h.svc, []byte(in.Payload))
	if err != nil {
		return nil, err
	}
	h.state.Replace(doc)
	return doc, nil
}

func (h *Handler) mergeState(ctx context.Context, params json.RawMessage) (any, error) {
	var in struct {
		Payload string `json:"payload"`
	}
	if err := unmarshalParams(params, &in); err != nil {
		return nil, err
	}
	res, err := snapshot.ImportMerge(ctx, h.svc, []byte(in.Payload))
	if err != nil {
		return nil, err
	}

	// merge writes through the service; re-read for the merged whole
	doc, err := h.svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	h.state.Replace(doc)

	failures := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		failures = append(failures, e.Error())
	}
	return map[string]any{
		"clients":  res.Clients,
		"projects": res.Projects,
		"failures": failures,
	}, nil
}

func (h *Handler) exportSnapshot() (any, error) {
	payload, err := snapshot.Export(h.state.Snapshot(), h.now())
	if err != nil {
		return nil, err
	}
	return map[string]any{"payload": string(payload)}, nil
}

func (h *Handler) getDashboard(params json.RawMessage) (any, error) {
	var in struct {
		Window    string   `json:"window"`
		Year      int      `json:"year"`
		ClientIDs []string `json:"clientIds"`
	}
	if err := unmarshalParams(params, &in); err != nil {
		return nil, err
	}
	mode := dashboard.ThisMonth
	if in.Window != "" {
		var err error
		if mode, err = dashboard.ParseMode(in.Window); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParams, err)
		}
	}
	doc := h.state.Snapshot()
	report := dashboard.Aggregate(doc.Projects, dashboard.Query{
		Window:    dashboard.Window{Mode: mode, Year: in.Year},
		ClientIDs: in.ClientIDs,
	}, h.now())
	return report, nil
}

func unmarshalParams(params json.RawMessage, dst any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrParams, err)
	}
	return nil
}
