package repository

import (
	"context"
	"database/sql"

	"github.com/eventix/ticket-ledger/internal/model"
)

// ListingRepo persists resale listings keyed by ticket ID. Absence of
// a row is the canonical unlisted state, so lookups return the zero
// value rather than an error when nothing is listed.
type ListingRepo struct {
	db *sql.DB
}

func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

// GetTx returns the listing for a ticket, or the unlisted sentinel.
func (r *ListingRepo) GetTx(ctx context.Context, tx *sql.Tx, ticketID uint64) (model.Listing, error) {
	return scanListing(tx.QueryRowContext(ctx,
		"SELECT ticket_id, seller_id, price_units FROM listings WHERE ticket_id = ?", ticketID))
}

// GetForUpdateTx returns the listing holding its row lock. Settlement
// and delisting lock the listing so a sale cannot race a delist.
func (r *ListingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, ticketID uint64) (model.Listing, error) {
	return scanListing(tx.QueryRowContext(ctx,
		"SELECT ticket_id, seller_id, price_units FROM listings WHERE ticket_id = ? FOR UPDATE", ticketID))
}

// PutTx inserts or replaces the listing for a ticket.
func (r *ListingRepo) PutTx(ctx context.Context, tx *sql.Tx, l model.Listing) error {
	const q = `INSERT INTO listings (ticket_id, seller_id, price_units) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE seller_id = VALUES(seller_id), price_units = VALUES(price_units)`
	_, err := tx.ExecContext(ctx, q, l.TicketID, l.SellerID, l.PriceUnits)
	return err
}

// DeleteTx clears the listing for a ticket. Deleting an absent row is
// a no-op, matching the sentinel semantics.
func (r *ListingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, ticketID uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM listings WHERE ticket_id = ?", ticketID)
	return err
}

func scanListing(row rowScanner) (model.Listing, error) {
	var l model.Listing
	err := row.Scan(&l.TicketID, &l.SellerID, &l.PriceUnits)
	if err == sql.ErrNoRows {
		return model.Listing{}, nil
	}
	if err != nil {
		return model.Listing{}, err
	}
	return l, nil
}
