// Package store owns every mutation of the persisted document. Each
// operation is a full read-modify-write cycle over the backing
// DocumentStore, serialized by an internal mutex so concurrent upserts
// cannot lose updates. Concurrency policy is last-write-wins per id.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"marginbook/internal/domain/client"
	"marginbook/internal/domain/document"
	"marginbook/internal/domain/project"
	"marginbook/internal/normalize"
	"marginbook/internal/repository"

	"github.com/google/uuid"
)

// Service handles document mutations.
type Service struct {
	repo   repository.DocumentStore
	logger *slog.Logger
	mu     sync.Mutex
}

// NewService creates a new store service.
func NewService(repo repository.DocumentStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ClientInput is a partial client payload. A nil Image means "not
// provided": the previously stored image is preserved rather than
// cleared, so a partial payload cannot wipe an image by accident.
type ClientInput struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Image     *string `json:"image"`
	CreatedAt string  `json:"createdAt"`
}

// ProjectInput is a partial project payload. Image follows the same
// nil-means-preserve rule as ClientInput. Products replace the stored
// sequence wholesale; nil becomes empty.
type ProjectInput struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	ClientID  *string           `json:"clientId"`
	Status    string            `json:"status"`
	Date      string            `json:"date"`
	CreatedAt string            `json:"createdAt"`
	Image     *string           `json:"image"`
	Products  []project.Product `json:"products"`
}

// Snapshot reloads the document from the backing store, picking up any
// external change, and returns it.
func (s *Service) Snapshot(ctx context.Context) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return document.Document{}, fmt.Errorf("load document: %w", err)
	}
	return doc, nil
}

// UpsertClient validates, completes and saves a client record.
// The only hard requirement in the whole system: a non-empty name after
// trimming. Validation failures mutate nothing.
func (s *Service) UpsertClient(ctx context.Context, in ClientInput) (client.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return client.Client{}, client.ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return client.Client{}, fmt.Errorf("load document: %w", err)
	}

	minted := in.ID == ""
	id := in.ID
	if minted {
		id = uuid.NewString()
	}

	now := document.Now()
	c := client.Client{
		ID:        id,
		Name:      name,
		UpdatedAt: now,
	}

	existing, found := doc.FindClient(id)
	switch {
	case in.Image != nil:
		c.Image = in.Image
	case found:
		c.Image = existing.Image
	}
	switch {
	case in.CreatedAt != "":
		c.CreatedAt = in.CreatedAt
	case found && existing.CreatedAt != "":
		c.CreatedAt = existing.CreatedAt
	default:
		c.CreatedAt = now
	}

	doc.Clients = upsertClientList(doc.Clients, c, minted)
	if err := s.repo.Save(ctx, doc); err != nil {
		return client.Client{}, fmt.Errorf("save document: %w", err)
	}

	s.logger.Debug("client upserted", "id", c.ID, "new", !found)
	return c, nil
}

// UpsertProject completes and saves a project record. Projects are
// expected to be created bare and filled in incrementally by autosave,
// so nothing is required: the title defaults instead of rejecting.
func (s *Service) UpsertProject(ctx context.Context, in ProjectInput) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return project.Project{}, fmt.Errorf("load document: %w", err)
	}

	minted := in.ID == ""
	id := in.ID
	if minted {
		id = uuid.NewString()
	}

	now := document.Now()
	p := project.Project{
		ID:        id,
		Title:     strings.TrimSpace(in.Title),
		Status:    project.ClampStatus(in.Status),
		Date:      in.Date,
		UpdatedAt: now,
		Products:  in.Products,
	}
	if p.Title == "" {
		p.Title = "Untitled Project"
	}
	if in.ClientID != nil && *in.ClientID != "" {
		p.ClientID = in.ClientID
	}
	if p.Date == "" {
		p.Date = now
	}
	if p.Products == nil {
		p.Products = []project.Product{}
	}

	existing, found := doc.FindProject(id)
	switch {
	case in.Image != nil:
		p.Image = in.Image
	case found:
		p.Image = existing.Image
	}
	switch {
	case in.CreatedAt != "":
		p.CreatedAt = in.CreatedAt
	case found && existing.CreatedAt != "":
		p.CreatedAt = existing.CreatedAt
	default:
		p.CreatedAt = now
	}

	doc.Projects = upsertProjectList(doc.Projects, p, minted)
	if err := s.repo.Save(ctx, doc); err != nil {
		return project.Project{}, fmt.Errorf("save document: %w", err)
	}

	s.logger.Debug("project upserted", "id", p.ID, "new", !found)
	return p, nil
}

// DeleteProject removes a project by id. A missing id is a true no-op:
// zero removed, nothing written, no error.
func (s *Service) DeleteProject(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load document: %w", err)
	}

	kept := doc.Projects[:0]
	for _, p := range doc.Projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	removed := len(doc.Projects) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	doc.Projects = kept
	if err := s.repo.Save(ctx, doc); err != nil {
		return 0, fmt.Errorf("save document: %w", err)
	}

	s.logger.Debug("project deleted", "id", id)
	return removed, nil
}

// Replace normalizes the given document and makes it authoritative,
// discarding whatever was stored before.
func (s *Service) Replace(ctx context.Context, doc document.Document) (document.Document, error) {
	norm := normalize.Apply(doc)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, norm); err != nil {
		return document.Document{}, fmt.Errorf("save document: %w", err)
	}

	s.logger.Info("document replaced", "clients", len(norm.Clients), "projects", len(norm.Projects))
	return norm, nil
}

// MergeResult reports the outcome of a best-effort merge.
type MergeResult struct {
	Clients  int
	Projects int
	Errors   []error
}

// Merge normalizes the given document and upserts every record
// individually. Matching ids are overwritten, fresh ids appended.
// Per-record failures are collected; the batch continues.
func (s *Service) Merge(ctx context.Context, doc document.Document) (MergeResult, error) {
	norm := normalize.Apply(doc)

	var res MergeResult
	for _, c := range norm.Clients {
		in := ClientInput{ID: c.ID, Name: c.Name, Image: c.Image, CreatedAt: c.CreatedAt}
		if _, err := s.UpsertClient(ctx, in); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("client %s: %w", c.ID, err))
			continue
		}
		res.Clients++
	}
	for _, p := range norm.Projects {
		in := ProjectInput{
			ID:        p.ID,
			Title:     p.Title,
			ClientID:  p.ClientID,
			Status:    string(p.Status),
			Date:      p.Date,
			CreatedAt: p.CreatedAt,
			Image:     p.Image,
			Products:  p.Products,
		}
		if _, err := s.UpsertProject(ctx, in); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("project %s: %w", p.ID, err))
			continue
		}
		res.Projects++
	}

	s.logger.Info("document merged",
		"clients", res.Clients, "projects", res.Projects, "failed", len(res.Errors))
	return res, nil
}

// upsertClientList replaces in place by id; otherwise minted ids go to
// the front of the collection and explicit fresh ids are appended
// (import-merge semantics).
func upsertClientList(list []client.Client, c client.Client, minted bool) []client.Client {
	for i := range list {
		if list[i].ID == c.ID {
			list[i] = c
			return list
		}
	}
	if minted {
		return append([]client.Client{c}, list...)
	}
	return append(list, c)
}

func upsertProjectList(list []project.Project, p project.Project, minted bool) []project.Project {
	for i := range list {
		if list[i].ID == p.ID {
			list[i] = p
			return list
		}
	}
	if minted {
		return append([]project.Project{p}, list...)
	}
	return append(list, p)
}
