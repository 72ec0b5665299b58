package domain

import "time"

type TicketStatus string

const (
	TicketStatusCompleted TicketStatus = "COMPLETED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

func (s TicketStatus) String() string {
	return string(s)
}

// UnavailableReason explains why a requested line could not be fulfilled.
type UnavailableReason string

const (
	ReasonNotFound          UnavailableReason = "NOT_FOUND"
	ReasonInsufficientStock UnavailableReason = "INSUFFICIENT_STOCK"
)

// FulfilledLine is one purchased line on a ticket. Name and UnitPrice are
// snapshots taken at purchase time; later catalog changes never alter a
// recorded ticket.
type FulfilledLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// UnavailableLine records a requested line (or the remainder of one) that
// could not be fulfilled.
type UnavailableLine struct {
	ProductID         string            `json:"product_id"`
	Name              string            `json:"name"`
	RequestedQuantity int               `json:"requested_quantity"`
	AvailableQuantity int               `json:"available_quantity"`
	Reason            UnavailableReason `json:"reason"`
}

// Ticket is the immutable ledger record of one checkout attempt.
// Once created it is never mutated.
type Ticket struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	PurchaserID      string            `json:"purchaser_id"`
	PurchaserEmail   string            `json:"purchaser_email"`
	FulfilledLines   []FulfilledLine   `json:"fulfilled_lines"`
	UnavailableLines []UnavailableLine `json:"unavailable_lines"`
	Total            float64           `json:"total"`
	ItemCount        int               `json:"item_count"`
	Status           TicketStatus      `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
}

// LineItemRequest is a single requested cart line going into checkout.
// It is input only and never persisted.
type LineItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// SalesSummary holds ledger-wide aggregates.
type SalesSummary struct {
	TotalRevenue   float64 `json:"total_revenue"`
	TotalTickets   int64   `json:"total_tickets"`
	TotalItems     int64   `json:"total_items"`
	CompletedCount int64   `json:"completed_count"`
}

// ProductSales is one entry of the top-sellers aggregate.
type ProductSales struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	QuantitySold int64   `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
}

// SalesReport combines the summary with the top sellers.
type SalesReport struct {
	Summary     SalesSummary   `json:"summary"`
	TopProducts []ProductSales `json:"top_products"`
}
