// Package ledger implements the ticket-issuance and resale state
// machine: the event catalog, primary issuance with fund custody, the
// ownership registry and the price-capped resale market. Every
// operation runs inside a single store transaction, checks all of its
// preconditions before any side effect, and aborts whole on the first
// violated one.
package ledger

import (
	"context"
	"time"

	"github.com/eventix/ticket-ledger/internal/clock"
	"github.com/eventix/ticket-ledger/internal/model"
)

// Catalog creates and serves immutable event records. There is no
// update or delete: event terms are fixed at creation so that resale
// expectations of already-sold tickets cannot be changed mid-sale.
type Catalog struct {
	store Store
	clock clock.Clock
}

func NewCatalog(store Store, clk clock.Clock) *Catalog {
	return &Catalog{store: store, clock: clk}
}

// CreateEventInput carries the fixed terms of a new event. Amounts are
// in the smallest currency unit.
type CreateEventInput struct {
	Name           string
	Date           time.Time
	Location       string
	Capacity       uint32
	BasePriceUnits int64
	ResaleAllowed  bool
	ResaleCapUnits int64
}

// CreateEvent appends a new event with the next sequential identifier.
// The date must be strictly in the future and the capacity positive;
// prices must not be negative.
func (c *Catalog) CreateEvent(ctx context.Context, in CreateEventInput) (model.Event, error) {
	if !in.Date.After(c.clock.Now()) {
		return model.Event{}, ErrInvalidSchedule
	}
	if in.Capacity == 0 {
		return model.Event{}, ErrInvalidCapacity
	}
	if in.BasePriceUnits < 0 || in.ResaleCapUnits < 0 {
		return model.Event{}, ErrInvalidPrice
	}

	ev := model.Event{
		Name:           in.Name,
		Date:           in.Date.UTC(),
		Location:       in.Location,
		Capacity:       in.Capacity,
		BasePriceUnits: in.BasePriceUnits,
		ResaleAllowed:  in.ResaleAllowed,
		ResaleCapUnits: in.ResaleCapUnits,
	}
	err := c.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.CreateEvent(ctx, &ev)
	})
	if err != nil {
		return model.Event{}, wrapf(err, "create event")
	}
	return ev, nil
}

// GetEvent returns the event with the given identifier.
func (c *Catalog) GetEvent(ctx context.Context, id uint64) (model.Event, error) {
	var ev model.Event
	err := c.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		ev, err = tx.GetEvent(ctx, id)
		return err
	})
	if err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// ListEvents returns all events ordered by identifier.
func (c *Catalog) ListEvents(ctx context.Context) ([]model.Event, error) {
	var evs []model.Event
	err := c.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		evs, err = tx.ListEvents(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return evs, nil
}
