// Package document defines the persisted unit of the ledger: one JSON
// document holding every client and project, owned by a single process.
package document

import (
	"marginbook/internal/domain/client"
	"marginbook/internal/domain/project"
)

// Version is the only document schema version in existence.
const Version = 1

// Meta carries document metadata. ExportedAt is stamped on snapshot
// export only and never stored in the live document.
type Meta struct {
	Version    int    `json:"version"`
	ExportedAt string `json:"exportedAt,omitempty"`
}

// Document is the whole persisted unit.
type Document struct {
	Meta     Meta              `json:"meta"`
	Clients  []client.Client   `json:"clients"`
	Projects []project.Project `json:"projects"`
}

// Empty returns a well-formed document with no records. Collections are
// non-nil so the serialized shape always carries arrays.
func Empty() Document {
	return Document{
		Meta:     Meta{Version: Version},
		Clients:  []client.Client{},
		Projects: []project.Project{},
	}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	out.Clients = make([]client.Client, len(d.Clients))
	for i, c := range d.Clients {
		out.Clients[i] = c.Clone()
	}
	out.Projects = make([]project.Project, len(d.Projects))
	for i, p := range d.Projects {
		out.Projects[i] = p.Clone()
	}
	return out
}

// FindClient returns the client with the given id, if present.
func (d Document) FindClient(id string) (client.Client, bool) {
	for _, c := range d.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return client.Client{}, false
}

// FindProject returns the project with the given id, if present.
func (d Document) FindProject(id string) (project.Project, bool) {
	for _, p := range d.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return project.Project{}, false
}
