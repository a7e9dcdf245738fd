package ledger

import (
	"context"

	"github.com/eventix/ticket-ledger/internal/model"
)

// Registry tracks which account holds each ticket and enforces
// single-owner transfer semantics: only the current owner or an
// explicitly approved delegate may reassign ownership. The approval is
// an access-control entry on the ticket, cleared on every transfer.
type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry { return &Registry{store: store} }

// Transfer reassigns ownership of a ticket to another account. The
// caller must be the current owner or the approved delegate. The used
// flag is unaffected; any approval is cleared.
func (r *Registry) Transfer(ctx context.Context, callerID, ticketID, toID uint64) error {
	return r.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		t, err := tx.GetTicketForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if callerID != t.OwnerID && (t.ApprovedID == nil || *t.ApprovedID != callerID) {
			return ErrNotOwnerOrApproved
		}
		if _, err := tx.GetAccount(ctx, toID); err != nil {
			return err
		}
		if err := tx.SetTicketOwner(ctx, ticketID, toID); err != nil {
			return err
		}
		return tx.SetTicketApproved(ctx, ticketID, nil)
	})
}

// Approve grants a delegate permission to transfer the ticket. Only
// the owner may approve; a zero delegate clears the approval.
func (r *Registry) Approve(ctx context.Context, callerID, ticketID, delegateID uint64) error {
	return r.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		t, err := tx.GetTicketForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if callerID != t.OwnerID {
			return ErrNotOwner
		}
		if delegateID == 0 {
			return tx.SetTicketApproved(ctx, ticketID, nil)
		}
		if _, err := tx.GetAccount(ctx, delegateID); err != nil {
			return err
		}
		return tx.SetTicketApproved(ctx, ticketID, &delegateID)
	})
}

// GetTicket returns the ticket with the given identifier.
func (r *Registry) GetTicket(ctx context.Context, ticketID uint64) (model.Ticket, error) {
	var t model.Ticket
	err := r.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		t, err = tx.GetTicket(ctx, ticketID)
		return err
	})
	if err != nil {
		return model.Ticket{}, err
	}
	return t, nil
}

// ListByOwner returns all tickets currently held by an account.
func (r *Registry) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Ticket, error) {
	var ts []model.Ticket
	err := r.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		ts, err = tx.ListTicketsByOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ts, nil
}
