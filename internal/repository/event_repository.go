package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/eventix/ticket-ledger/internal/ledger"
	"github.com/eventix/ticket-ledger/internal/model"
)

// EventRepo persists catalog entries. Events are append-only; the only
// column ever updated after creation is the minted counter, and that
// update always happens under the row lock taken by GetForUpdateTx.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = "id, name, date, location, capacity, base_price_units, resale_allowed, resale_cap_units, minted, created_at"

// CreateTx inserts a new event and populates the generated ID and
// creation timestamp on the record.
func (r *EventRepo) CreateTx(ctx context.Context, tx *sql.Tx, ev *model.Event) error {
	const q = `INSERT INTO events (name, date, location, capacity, base_price_units, resale_allowed, resale_cap_units, minted)
	           VALUES (?, ?, ?, ?, ?, ?, ?, 0)`
	res, err := tx.ExecContext(ctx, q,
		ev.Name, ev.Date.UTC(), ev.Location, ev.Capacity,
		ev.BasePriceUnits, ev.ResaleAllowed, ev.ResaleCapUnits)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	return tx.QueryRowContext(ctx, "SELECT created_at FROM events WHERE id = ?", ev.ID).
		Scan(&ev.CreatedAt)
}

// GetTx fetches an event by ID without locking it.
func (r *EventRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Event, error) {
	return scanEvent(tx.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", id))
}

// GetForUpdateTx fetches an event by ID holding a row lock until the
// transaction ends. Minting must go through this so the capacity check
// and the counter increment cannot interleave with another purchase.
func (r *EventRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Event, error) {
	return scanEvent(tx.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ? FOR UPDATE", id))
}

// SetMintedTx stores the new minted counter for an event.
func (r *EventRepo) SetMintedTx(ctx context.Context, tx *sql.Tx, id uint64, minted uint32) error {
	_, err := tx.ExecContext(ctx, "UPDATE events SET minted = ? WHERE id = ?", minted, id)
	return err
}

// ListTx returns all events ordered by identifier.
func (r *EventRepo) ListTx(ctx context.Context, tx *sql.Tx) ([]model.Event, error) {
	rows, err := tx.QueryContext(ctx, "SELECT "+eventColumns+" FROM events ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	evs := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		evs = append(evs, ev)
	}
	return evs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (model.Event, error) {
	var ev model.Event
	var date, created time.Time
	err := row.Scan(&ev.ID, &ev.Name, &date, &ev.Location, &ev.Capacity,
		&ev.BasePriceUnits, &ev.ResaleAllowed, &ev.ResaleCapUnits, &ev.Minted, &created)
	if err == sql.ErrNoRows {
		return model.Event{}, ledger.ErrEventNotFound
	}
	if err != nil {
		return model.Event{}, err
	}
	ev.Date = date.UTC()
	ev.CreatedAt = created.UTC()
	return ev, nil
}
