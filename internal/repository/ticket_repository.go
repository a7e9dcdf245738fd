package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/eventix/ticket-ledger/internal/ledger"
	"github.com/eventix/ticket-ledger/internal/model"
)

// TicketRepo persists ownership records. Ticket IDs come from a single
// AUTO_INCREMENT sequence, so they are sequential across all events.
type TicketRepo struct {
	db *sql.DB
}

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = "id, event_id, owner_id, approved_id, used, created_at"

// CreateTx mints one ticket row and populates its generated ID.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO tickets (event_id, owner_id, used) VALUES (?, ?, FALSE)",
		t.EventID, t.OwnerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return tx.QueryRowContext(ctx, "SELECT created_at FROM tickets WHERE id = ?", t.ID).
		Scan(&t.CreatedAt)
}

// GetTx fetches a ticket without locking it.
func (r *TicketRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Ticket, error) {
	return scanTicket(tx.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE id = ?", id))
}

// GetForUpdateTx fetches a ticket holding its row lock. Every mutation
// of owner, approval or the used flag starts here.
func (r *TicketRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Ticket, error) {
	return scanTicket(tx.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE id = ? FOR UPDATE", id))
}

// SetOwnerTx reassigns ownership of a ticket.
func (r *TicketRepo) SetOwnerTx(ctx context.Context, tx *sql.Tx, id, ownerID uint64) error {
	_, err := tx.ExecContext(ctx, "UPDATE tickets SET owner_id = ? WHERE id = ?", ownerID, id)
	return err
}

// SetApprovedTx stores or clears the approved delegate.
func (r *TicketRepo) SetApprovedTx(ctx context.Context, tx *sql.Tx, id uint64, approvedID *uint64) error {
	_, err := tx.ExecContext(ctx, "UPDATE tickets SET approved_id = ? WHERE id = ?", approvedID, id)
	return err
}

// SetUsedTx marks a ticket used. The flag is never cleared.
func (r *TicketRepo) SetUsedTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, "UPDATE tickets SET used = TRUE WHERE id = ?", id)
	return err
}

// ListByOwnerTx returns all tickets held by an account, oldest first.
func (r *TicketRepo) ListByOwnerTx(ctx context.Context, tx *sql.Tx, ownerID uint64) ([]model.Ticket, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE owner_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ts := make([]model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, rows.Err()
}

func scanTicket(row rowScanner) (model.Ticket, error) {
	var t model.Ticket
	var approved sql.NullInt64
	var created time.Time
	err := row.Scan(&t.ID, &t.EventID, &t.OwnerID, &approved, &t.Used, &created)
	if err == sql.ErrNoRows {
		return model.Ticket{}, ledger.ErrUnknownTicket
	}
	if err != nil {
		return model.Ticket{}, err
	}
	if approved.Valid {
		id := uint64(approved.Int64)
		t.ApprovedID = &id
	}
	t.CreatedAt = created.UTC()
	return t, nil
}
