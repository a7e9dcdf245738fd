package repository

import (
	"context"
	"database/sql"

	"github.com/eventix/ticket-ledger/internal/ledger"
	"github.com/eventix/ticket-ledger/internal/model"
)

// Store implements ledger.Store over MySQL. Each ledger operation runs
// in one database transaction; InnoDB row locks taken by the ForUpdate
// accessors serialize conflicting operations, giving the all-or-nothing
// semantics the ledger requires.
type Store struct {
	db       *sql.DB
	events   *EventRepo
	tickets  *TicketRepo
	listings *ListingRepo
	accounts *AccountRepo
	custody  *CustodyRepo
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		events:   NewEventRepo(db),
		tickets:  NewTicketRepo(db),
		listings: NewListingRepo(db),
		accounts: NewAccountRepo(db),
		custody:  NewCustodyRepo(db),
	}
}

// Accounts exposes the account repository for the auth layer, which
// operates outside ledger transactions.
func (s *Store) Accounts() *AccountRepo { return s.accounts }

// WithTx runs fn inside a transaction, committing on nil and rolling
// back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = dbTx.Rollback()
		}
	}()
	if err := fn(ctx, &storeTx{s: s, tx: dbTx}); err != nil {
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// storeTx adapts one *sql.Tx to the ledger.Tx accessor set.
type storeTx struct {
	s  *Store
	tx *sql.Tx
}

func (t *storeTx) CreateEvent(ctx context.Context, ev *model.Event) error {
	return t.s.events.CreateTx(ctx, t.tx, ev)
}

func (t *storeTx) GetEvent(ctx context.Context, id uint64) (model.Event, error) {
	return t.s.events.GetTx(ctx, t.tx, id)
}

func (t *storeTx) GetEventForUpdate(ctx context.Context, id uint64) (model.Event, error) {
	return t.s.events.GetForUpdateTx(ctx, t.tx, id)
}

func (t *storeTx) SetEventMinted(ctx context.Context, id uint64, minted uint32) error {
	return t.s.events.SetMintedTx(ctx, t.tx, id, minted)
}

func (t *storeTx) ListEvents(ctx context.Context) ([]model.Event, error) {
	return t.s.events.ListTx(ctx, t.tx)
}

func (t *storeTx) CreateTicket(ctx context.Context, tk *model.Ticket) error {
	return t.s.tickets.CreateTx(ctx, t.tx, tk)
}

func (t *storeTx) GetTicket(ctx context.Context, id uint64) (model.Ticket, error) {
	return t.s.tickets.GetTx(ctx, t.tx, id)
}

func (t *storeTx) GetTicketForUpdate(ctx context.Context, id uint64) (model.Ticket, error) {
	return t.s.tickets.GetForUpdateTx(ctx, t.tx, id)
}

func (t *storeTx) SetTicketOwner(ctx context.Context, id, ownerID uint64) error {
	return t.s.tickets.SetOwnerTx(ctx, t.tx, id, ownerID)
}

func (t *storeTx) SetTicketApproved(ctx context.Context, id uint64, approvedID *uint64) error {
	return t.s.tickets.SetApprovedTx(ctx, t.tx, id, approvedID)
}

func (t *storeTx) SetTicketUsed(ctx context.Context, id uint64) error {
	return t.s.tickets.SetUsedTx(ctx, t.tx, id)
}

func (t *storeTx) ListTicketsByOwner(ctx context.Context, ownerID uint64) ([]model.Ticket, error) {
	return t.s.tickets.ListByOwnerTx(ctx, t.tx, ownerID)
}

func (t *storeTx) GetListing(ctx context.Context, ticketID uint64) (model.Listing, error) {
	return t.s.listings.GetTx(ctx, t.tx, ticketID)
}

func (t *storeTx) GetListingForUpdate(ctx context.Context, ticketID uint64) (model.Listing, error) {
	return t.s.listings.GetForUpdateTx(ctx, t.tx, ticketID)
}

func (t *storeTx) PutListing(ctx context.Context, l model.Listing) error {
	return t.s.listings.PutTx(ctx, t.tx, l)
}

func (t *storeTx) DeleteListing(ctx context.Context, ticketID uint64) error {
	return t.s.listings.DeleteTx(ctx, t.tx, ticketID)
}

func (t *storeTx) GetAccount(ctx context.Context, id uint64) (model.Account, error) {
	return t.s.accounts.GetTx(ctx, t.tx, id)
}

func (t *storeTx) GetBalanceForUpdate(ctx context.Context, id uint64) (int64, error) {
	return t.s.accounts.GetBalanceForUpdateTx(ctx, t.tx, id)
}

func (t *storeTx) AddBalance(ctx context.Context, id uint64, delta int64) error {
	return t.s.accounts.AddBalanceTx(ctx, t.tx, id, delta)
}

func (t *storeTx) GetCustodyForUpdate(ctx context.Context) (int64, error) {
	return t.s.custody.GetForUpdateTx(ctx, t.tx)
}

func (t *storeTx) SetCustody(ctx context.Context, balance int64) error {
	return t.s.custody.SetTx(ctx, t.tx, balance)
}
