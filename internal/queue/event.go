// Package queue defines the audit messages exchanged over the message
// broker and the background consumer that records them.
package queue

// Queue name for ledger audit events. All event types share one
// durable queue; consumers dispatch on the envelope type.
const LedgerQueueName = "ledger.events"

// Envelope wraps every published ledger event.
type Envelope struct {
	Type       string `json:"type"` // ticket.minted | ticket.validated | listing.sold
	OccurredAt string `json:"occurred_at"`

	TicketMinted    *TicketMinted    `json:"ticket_minted,omitempty"`
	TicketValidated *TicketValidated `json:"ticket_validated,omitempty"`
	ListingSold     *ListingSold     `json:"listing_sold,omitempty"`
}

// TicketMinted is published after a primary sale commits.
type TicketMinted struct {
	EventID   uint64   `json:"event_id"`
	EventName string   `json:"event_name"`
	BuyerID   uint64   `json:"buyer_id"`
	TicketIDs []uint64 `json:"ticket_ids"`
	PaidUnits int64    `json:"paid_units"`
}

// TicketValidated is published after a check-in commits.
type TicketValidated struct {
	TicketID uint64 `json:"ticket_id"`
	EventID  uint64 `json:"event_id"`
	OwnerID  uint64 `json:"owner_id"`
}

// ListingSold is published after a resale settlement commits.
type ListingSold struct {
	TicketID   uint64 `json:"ticket_id"`
	SellerID   uint64 `json:"seller_id"`
	BuyerID    uint64 `json:"buyer_id"`
	PriceUnits int64  `json:"price_units"`
}
