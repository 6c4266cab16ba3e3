package models

// CartLine is one item in a session's cart with its accumulated quantity
type CartLine struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// CartSummary is a priced view of a cart
type CartSummary struct {
	SessionID string            `json:"sessionId"`
	Lines     []CartSummaryLine `json:"lines"`
	Total     float64           `json:"total"`
}

// CartSummaryLine is a cart line with unit price and line cost
type CartSummaryLine struct {
	Item      string  `json:"item"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Cost      float64 `json:"cost"`
}

// IsEmpty reports whether the summary has no lines
func (c *CartSummary) IsEmpty() bool {
	return len(c.Lines) == 0
}
