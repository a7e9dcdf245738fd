package ledger

import (
	"context"

	"github.com/eventix/ticket-ledger/internal/model"
)

// Store runs ledger operations against persistent state. WithTx must
// provide the serialization guarantee every ledger operation relies on:
// the callback either commits in full or leaves no trace, and state
// read with the ForUpdate accessors is held exclusively until the
// transaction ends. The MySQL implementation lives in
// internal/repository; tests use an in-memory fake.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of state accessors available inside a transaction.
// ForUpdate variants take a row lock; plain getters are for reads that
// do not guard a mutation. Lock acquisition follows a fixed order
// (tickets, events, listings, accounts, custody) so concurrent
// settlements cannot deadlock.
type Tx interface {
	// Events. CreateEvent assigns the next sequential ID on the record.
	CreateEvent(ctx context.Context, ev *model.Event) error
	GetEvent(ctx context.Context, id uint64) (model.Event, error)
	GetEventForUpdate(ctx context.Context, id uint64) (model.Event, error)
	SetEventMinted(ctx context.Context, id uint64, minted uint32) error
	ListEvents(ctx context.Context) ([]model.Event, error)

	// Tickets. CreateTicket assigns the next global sequential ID.
	CreateTicket(ctx context.Context, t *model.Ticket) error
	GetTicket(ctx context.Context, id uint64) (model.Ticket, error)
	GetTicketForUpdate(ctx context.Context, id uint64) (model.Ticket, error)
	SetTicketOwner(ctx context.Context, id, ownerID uint64) error
	SetTicketApproved(ctx context.Context, id uint64, approvedID *uint64) error
	SetTicketUsed(ctx context.Context, id uint64) error
	ListTicketsByOwner(ctx context.Context, ownerID uint64) ([]model.Ticket, error)

	// Listings. GetListing returns the zero-value sentinel when the
	// ticket is not listed; it never reports absence as an error.
	GetListing(ctx context.Context, ticketID uint64) (model.Listing, error)
	GetListingForUpdate(ctx context.Context, ticketID uint64) (model.Listing, error)
	PutListing(ctx context.Context, l model.Listing) error
	DeleteListing(ctx context.Context, ticketID uint64) error

	// Accounts.
	GetAccount(ctx context.Context, id uint64) (model.Account, error)
	GetBalanceForUpdate(ctx context.Context, id uint64) (int64, error)
	AddBalance(ctx context.Context, id uint64, delta int64) error

	// Custody holds primary-sale proceeds pending admin withdrawal.
	GetCustodyForUpdate(ctx context.Context) (int64, error)
	SetCustody(ctx context.Context, balance int64) error
}
