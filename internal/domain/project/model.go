package project

import "strings"

// Status is the workflow state of a project.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

var knownStatuses = []Status{StatusDraft, StatusActive, StatusCompleted, StatusCancelled}

// ClampStatus maps a raw status value onto the known set, ignoring
// case. Empty or unrecognized values clamp to Draft; status is never
// stored verbatim.
func ClampStatus(s string) Status {
	for _, known := range knownStatuses {
		if strings.EqualFold(s, string(known)) {
			return known
		}
	}
	return StatusDraft
}

// Product is a line item wholly owned by its parent project. Products
// carry no updatedAt and are replaced en masse when the project saves.
type Product struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	CostPrice    float64 `json:"costPrice"`
	SellingPrice float64 `json:"sellingPrice"`
	Date         string  `json:"date"`
}

// Project groups products under an optional client reference. Date is
// the business date used by the dashboard, distinct from the audit
// timestamps. ClientID is advisory: a dangling reference must not break
// any consumer.
type Project struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ClientID  *string   `json:"clientId"`
	Status    Status    `json:"status"`
	Date      string    `json:"date"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
	Image     *string   `json:"image"`
	Products  []Product `json:"products"`
}

// Clone returns a copy that shares no pointers or slices with the
// receiver.
func (p Project) Clone() Project {
	if p.ClientID != nil {
		id := *p.ClientID
		p.ClientID = &id
	}
	if p.Image != nil {
		img := *p.Image
		p.Image = &img
	}
	if p.Products != nil {
		products := make([]Product, len(p.Products))
		copy(products, p.Products)
		p.Products = products
	}
	return p
}
