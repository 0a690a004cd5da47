// Package autosave coalesces rapid project edits into debounced writes.
// Every keystroke-level change is applied to the in-memory state
// immediately; persistence happens once per record after the edit burst
// settles. Scheduling is keyed by record id, and for each id the latest
// queued input wins.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"marginbook/internal/domain/project"
	"marginbook/internal/normalize"
	"marginbook/internal/state"
	"marginbook/internal/store"

	"github.com/google/uuid"
)

// DefaultInterval is the settle time between the last queued edit and
// the persisted write.
const DefaultInterval = 500 * time.Millisecond

// ProjectWriter persists one project. Satisfied by *store.Service.
type ProjectWriter interface {
	UpsertProject(ctx context.Context, in store.ProjectInput) (project.Project, error)
}

// Saver debounces project writes per record id.
type Saver struct {
	writer   ProjectWriter
	state    *state.Container
	logger   *slog.Logger
	interval time.Duration

	// OnError, when set, observes persistence failures after they are
	// logged. The optimistic in-memory record is kept either way.
	OnError func(id string, err error)

	mu      sync.Mutex
	pending map[string]*pendingWrite
}

type pendingWrite struct {
	timer *time.Timer
	input store.ProjectInput
}

// New creates a saver. A zero interval selects DefaultInterval.
func New(writer ProjectWriter, st *state.Container, logger *slog.Logger, interval time.Duration) *Saver {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Saver{
		writer:   writer,
		state:    st,
		logger:   logger,
		interval: interval,
		pending:  make(map[string]*pendingWrite),
	}
}

// Queue applies the edit to in-memory state immediately and schedules
// its persistence. Re-queueing the same id before the interval elapses
// replaces the pending input and restarts the clock, so a burst of
// edits produces exactly one write carrying the final values. Queue
// returns the id the write is scheduled under, minting one for new
// records so the caller can keep addressing the same pending entry.
func (s *Saver) Queue(in store.ProjectInput) string {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	optimistic := normalize.Project(project.Project{
		ID:        in.ID,
		Title:     in.Title,
		ClientID:  in.ClientID,
		Status:    project.Status(in.Status),
		Date:      in.Date,
		CreatedAt: in.CreatedAt,
		Image:     in.Image,
		Products:  in.Products,
	})
	s.state.PutProject(optimistic)

	s.mu.Lock()
	defer s.mu.Unlock()

	id := in.ID
	if pw, ok := s.pending[id]; ok {
		pw.input = in
		pw.timer.Reset(s.interval)
		return id
	}
	pw := &pendingWrite{input: in}
	pw.timer = time.AfterFunc(s.interval, func() { s.flush(id) })
	s.pending[id] = pw
	return id
}

// Pending reports whether a write for the given id is still scheduled.
func (s *Saver) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// PendingCount returns the number of records awaiting persistence.
func (s *Saver) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush persists every pending write immediately. Called on shutdown so
// a debounce window never swallows the last edits.
func (s *Saver) Flush(ctx context.Context) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.pending))
	for id, pw := range s.pending {
		pw.timer.Stop()
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.persist(ctx, id)
	}
}

// flush is the timer callback for one record.
func (s *Saver) flush(id string) {
	s.persist(context.Background(), id)
}

func (s *Saver) persist(ctx context.Context, id string) {
	s.mu.Lock()
	pw, ok := s.pending[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	in := pw.input
	s.mu.Unlock()

	saved, err := s.writer.UpsertProject(ctx, in)
	if err != nil {
		s.logger.Error("autosave failed", "id", id, "error", err)
		if s.OnError != nil {
			s.OnError(id, err)
		}
		return
	}

	// confirm the optimistic record with the authoritative one
	s.state.PutProject(saved)
	s.logger.Debug("autosave flushed", "id", id)
}
