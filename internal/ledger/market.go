package ledger

import (
	"context"

	"github.com/eventix/ticket-ledger/internal/model"
)

// Market maintains resale listings and settles sales atomically:
// payment, ownership and listing clearance move in one transaction or
// not at all. Per-ticket state machine:
//
//	Unlisted -> Listed -> {Sold -> Unlisted | Delisted -> Unlisted}
//
// The market never touches custody; payment passes directly from buyer
// to seller. Used tickets cannot be listed or sold: a checked-in
// ticket has no remaining admission value to trade.
type Market struct {
	store Store
}

func NewMarket(store Store) *Market { return &Market{store: store} }

// ListTicket creates a listing for a ticket at the given price. The
// caller must own the ticket, the event must permit resale, the price
// must not exceed the event's resale cap, and the ticket must be
// unused. Relisting an already listed ticket replaces the price.
func (m *Market) ListTicket(ctx context.Context, callerID, ticketID uint64, priceUnits int64) (model.Listing, error) {
	if priceUnits < 0 {
		return model.Listing{}, ErrInvalidPrice
	}
	listing := model.Listing{TicketID: ticketID, SellerID: callerID, PriceUnits: priceUnits}
	err := m.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		t, err := tx.GetTicketForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if callerID != t.OwnerID {
			return ErrNotOwner
		}
		policy, err := ResalePolicyFor(ctx, tx, t)
		if err != nil {
			return err
		}
		if !policy.Allowed {
			return ErrResaleNotAllowed
		}
		if priceUnits > policy.CapUnits {
			return ErrExceedsCap
		}
		if t.Used {
			return ErrAlreadyUsed
		}
		return tx.PutListing(ctx, listing)
	})
	if err != nil {
		return model.Listing{}, err
	}
	return listing, nil
}

// DelistTicket clears a listing. Only the recorded seller may delist.
func (m *Market) DelistTicket(ctx context.Context, callerID, ticketID uint64) error {
	return m.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		l, err := tx.GetListingForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if !l.Active() {
			return ErrNotListed
		}
		if callerID != l.SellerID {
			return ErrNotSeller
		}
		return tx.DeleteListing(ctx, ticketID)
	})
}

// Settlement reports the outcome of a completed sale.
type Settlement struct {
	TicketID   uint64
	SellerID   uint64
	BuyerID    uint64
	PriceUnits int64
}

// BuyTicket settles an active listing: exactly the asking price moves
// from the buyer's account to the seller's, ownership transfers, and
// the listing clears, all in one transaction, so no partial state
// (ownership moved but funds not, or vice versa) is ever observable.
// Surplus in the declared payment stays with the buyer. The listing
// must still be backed by the seller's ownership of an unused ticket.
func (m *Market) BuyTicket(ctx context.Context, buyerID, ticketID uint64, paymentUnits int64) (Settlement, error) {
	var out Settlement
	err := m.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		t, err := tx.GetTicketForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		l, err := tx.GetListingForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if !l.Active() {
			return ErrNotListed
		}
		if paymentUnits < l.PriceUnits {
			return ErrInsufficientPayment
		}
		if l.SellerID != t.OwnerID {
			return ErrListingStale
		}
		if t.Used {
			return ErrAlreadyUsed
		}

		balance, err := tx.GetBalanceForUpdate(ctx, buyerID)
		if err != nil {
			return err
		}
		if balance < l.PriceUnits {
			return ErrInsufficientFunds
		}

		if err := tx.AddBalance(ctx, buyerID, -l.PriceUnits); err != nil {
			return err
		}
		if err := tx.AddBalance(ctx, l.SellerID, l.PriceUnits); err != nil {
			return err
		}
		if err := tx.SetTicketOwner(ctx, ticketID, buyerID); err != nil {
			return err
		}
		if err := tx.SetTicketApproved(ctx, ticketID, nil); err != nil {
			return err
		}
		if err := tx.DeleteListing(ctx, ticketID); err != nil {
			return err
		}
		out = Settlement{TicketID: ticketID, SellerID: l.SellerID, BuyerID: buyerID, PriceUnits: l.PriceUnits}
		return nil
	})
	if err != nil {
		return Settlement{}, err
	}
	return out, nil
}

// GetListing returns the listing for a ticket, or the unlisted
// sentinel (zero seller, zero price) when none is active. The ticket
// itself must exist.
func (m *Market) GetListing(ctx context.Context, ticketID uint64) (model.Listing, error) {
	var l model.Listing
	err := m.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetTicket(ctx, ticketID); err != nil {
			return err
		}
		var err error
		l, err = tx.GetListing(ctx, ticketID)
		return err
	})
	if err != nil {
		return model.Listing{}, err
	}
	l.TicketID = ticketID
	return l, nil
}
