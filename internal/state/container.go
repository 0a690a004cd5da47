// Package state holds the in-memory working copy of the document that
// the UI boundary reads from. Writes are applied here optimistically
// before they are confirmed by storage, and every change is broadcast
// to subscribers.
package state

import (
	"sync"

	"marginbook/internal/domain/client"
	"marginbook/internal/domain/document"
	"marginbook/internal/domain/project"
)

// Container is a concurrency-safe document holder with change
// notification. Reads return deep copies so callers can never alias
// the internal document.
type Container struct {
	mu     sync.RWMutex
	doc    document.Document
	subs   map[int]chan document.Document
	nextID int
}

// New creates a container seeded with the given document.
func New(doc document.Document) *Container {
	return &Container{
		doc:  doc.Clone(),
		subs: make(map[int]chan document.Document),
	}
}

// Snapshot returns a deep copy of the current document.
func (c *Container) Snapshot() document.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc.Clone()
}

// Replace swaps in an entirely new document.
func (c *Container) Replace(doc document.Document) {
	c.mu.Lock()
	c.doc = doc.Clone()
	c.broadcastLocked()
	c.mu.Unlock()
}

// PutClient inserts or overwrites a client by id. Fresh ids go to the
// front of the collection, matching how newly created records surface
// at the top of the UI.
func (c *Container) PutClient(rec client.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.doc.Clients {
		if c.doc.Clients[i].ID == rec.ID {
			c.doc.Clients[i] = rec
			c.broadcastLocked()
			return
		}
	}
	c.doc.Clients = append([]client.Client{rec}, c.doc.Clients...)
	c.broadcastLocked()
}

// PutProject inserts or overwrites a project by id, fresh ids first.
func (c *Container) PutProject(rec project.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.doc.Projects {
		if c.doc.Projects[i].ID == rec.ID {
			c.doc.Projects[i] = rec
			c.broadcastLocked()
			return
		}
	}
	c.doc.Projects = append([]project.Project{rec}, c.doc.Projects...)
	c.broadcastLocked()
}

// RemoveProject drops a project by id. Unknown ids are ignored.
func (c *Container) RemoveProject(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.doc.Projects[:0]
	for _, p := range c.doc.Projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(c.doc.Projects) {
		return
	}
	c.doc.Projects = kept
	c.broadcastLocked()
}

// Subscribe registers for change notifications. Each change delivers a
// deep copy of the new document on the returned channel; slow consumers
// miss intermediate states rather than blocking writers. The cancel
// function unregisters and closes the channel.
func (c *Container) Subscribe() (<-chan document.Document, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan document.Document, 1)
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (c *Container) broadcastLocked() {
	for _, ch := range c.subs {
		snap := c.doc.Clone()
		select {
		case ch <- snap:
		default:
			// drop the stale copy waiting in the buffer, then retry
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
