// Package normalize coerces arbitrary, partially-trusted input into the
// canonical document shape. It never fails: malformed values fall back
// to safe defaults instead of being rejected.
//
// Normalization runs in two layers. Decode turns the result of a
// lenient JSON decode (any) into typed records, dropping anything that
// is not a structured object. Apply canonicalizes typed records: mints
// missing ids, trims and defaults names, clamps statuses, and stamps
// updatedAt. Normalizing counts as a modification, so updatedAt always
// advances.
package normalize

import (
	"strconv"
	"strings"

	"marginbook/internal/domain/client"
	"marginbook/internal/domain/document"
	"marginbook/internal/domain/project"

	"github.com/google/uuid"
)

const (
	fallbackClientName   = "Unnamed Client"
	fallbackProjectTitle = "Untitled Project"
)

// Document decodes and canonicalizes a whole document in one step.
func Document(v any) document.Document {
	return Apply(Decode(v))
}

// Decode converts a lenient JSON decode result into the typed document
// shape without canonicalizing it. Array elements that are not JSON
// objects are dropped; field values of the wrong kind become zero
// values for Apply to default.
func Decode(v any) document.Document {
	doc := document.Empty()
	m, ok := v.(map[string]any)
	if !ok {
		return doc
	}
	doc.Clients = decodeClients(m["clients"])
	doc.Projects = decodeProjects(m["projects"])
	return doc
}

func decodeClients(v any) []client.Client {
	items, ok := v.([]any)
	if !ok {
		return []client.Client{}
	}
	out := make([]client.Client, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, decodeClient(m))
	}
	return out
}

func decodeClient(m map[string]any) client.Client {
	c := client.Client{
		Name:  coerceString(m["name"]),
		Image: stringPtr(m["image"]),
	}
	c.ID, _ = asString(m["id"])
	c.CreatedAt, _ = asString(m["createdAt"])
	c.UpdatedAt, _ = asString(m["updatedAt"])
	return c
}

func decodeProjects(v any) []project.Project {
	items, ok := v.([]any)
	if !ok {
		return []project.Project{}
	}
	out := make([]project.Project, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, decodeProject(m))
	}
	return out
}

func decodeProject(m map[string]any) project.Project {
	p := project.Project{
		Title:    coerceString(m["title"]),
		Status:   project.Status(coerceString(m["status"])),
		Image:    stringPtr(m["image"]),
		Products: decodeProducts(m["products"]),
	}
	p.ID, _ = asString(m["id"])
	p.Date, _ = asString(m["date"])
	p.CreatedAt, _ = asString(m["createdAt"])
	p.UpdatedAt, _ = asString(m["updatedAt"])
	if id, ok := asString(m["clientId"]); ok && id != "" {
		p.ClientID = &id
	}
	return p
}

// Products are passed through with no deep validation: each element
// only has to be a structured record. Missing product ids are not
// minted.
func decodeProducts(v any) []project.Product {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]project.Product, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p := project.Product{
			Title:        coerceString(m["title"]),
			CostPrice:    coerceNumber(m["costPrice"]),
			SellingPrice: coerceNumber(m["sellingPrice"]),
		}
		p.ID, _ = asString(m["id"])
		p.Date, _ = asString(m["date"])
		out = append(out, p)
	}
	return out
}

// Apply canonicalizes a typed document. meta.version is forced; any
// exportedAt stamp from an imported snapshot is discarded.
func Apply(doc document.Document) document.Document {
	out := document.Empty()
	out.Clients = make([]client.Client, 0, len(doc.Clients))
	for _, c := range doc.Clients {
		out.Clients = append(out.Clients, Client(c))
	}
	out.Projects = make([]project.Project, 0, len(doc.Projects))
	for _, p := range doc.Projects {
		out.Projects = append(out.Projects, Project(p))
	}
	return out
}

// Client canonicalizes a single client record.
func Client(c client.Client) client.Client {
	now := document.Now()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		c.Name = fallbackClientName
	}
	if c.CreatedAt == "" {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	return c
}

// Project canonicalizes a single project record.
func Project(p project.Project) project.Project {
	now := document.Now()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		p.Title = fallbackProjectTitle
	}
	p.Status = project.ClampStatus(string(p.Status))
	if p.ClientID != nil && *p.ClientID == "" {
		p.ClientID = nil
	}
	if p.Date == "" {
		p.Date = now
	}
	if p.CreatedAt == "" {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Products == nil {
		p.Products = []project.Product{}
	}
	return p
}

// asString keeps v only if it is already a string.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// stringPtr keeps v only if it is already a string; anything else is
// null. Never inferred from other fields.
func stringPtr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

// coerceString stringifies scalar values the way a loose UI payload
// would arrive; structured values fall through to empty so Apply can
// substitute the fallback literal.
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// coerceNumber reads a number from a JSON number or a numeric string;
// anything else counts as zero.
func coerceNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	case bool:
		if t {
			return 1
		}
	}
	return 0
}
