package client

// Client is a customer entry in the ledger. Clients are append/update
// only: there is no delete operation, and projects reference them by a
// weak clientId that may dangle.
type Client struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Image     *string `json:"image"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// Clone returns a copy that shares no pointers with the receiver.
func (c Client) Clone() Client {
	if c.Image != nil {
		img := *c.Image
		c.Image = &img
	}
	return c
}
