package model

import "time"

// Event is an immutable catalog entry describing a ticketed event.
// Rows are append-only: once created, the terms of an event (date,
// capacity, pricing, resale policy) never change, so tickets sold
// against it keep the resale expectations they were bought under.
//
// All monetary amounts are integers in the smallest currency unit.
type Event struct {
	ID             uint64    // events.id (sequential, 1-based)
	Name           string    // events.name
	Date           time.Time // events.date (UTC, strictly in the future at creation)
	Location       string    // events.location
	Capacity       uint32    // events.capacity (strict bound on minted tickets)
	BasePriceUnits int64     // events.base_price_units
	ResaleAllowed  bool      // events.resale_allowed
	ResaleCapUnits int64     // events.resale_cap_units (meaningful only when resale allowed)
	Minted         uint32    // events.minted (tickets issued so far, <= Capacity)
	CreatedAt      time.Time // events.created_at
}
