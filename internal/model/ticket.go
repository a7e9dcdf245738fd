package model

import "time"

// Ticket is a single-owner ownership record minted against an event.
// IDs are sequential across all events. The owner changes on transfer
// or resale settlement; the event binding is fixed at mint time. The
// used flag is monotonic: once a ticket has been checked in it can
// never be reset.
type Ticket struct {
	ID         uint64    // tickets.id (sequential, 1-based, global)
	EventID    uint64    // tickets.event_id (immutable after mint)
	OwnerID    uint64    // tickets.owner_id (current holder account)
	ApprovedID *uint64   // tickets.approved_id (delegate allowed to transfer, nullable)
	Used       bool      // tickets.used (monotonic false -> true)
	CreatedAt  time.Time // tickets.created_at
}
