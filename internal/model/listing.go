package model

// Listing is an active resale offer keyed by ticket ID. The zero value
// (SellerID 0, PriceUnits 0) is the canonical "not listed" state; a
// lookup for an unlisted ticket returns it rather than an error.
// Listings are replaced whole or cleared, never partially updated.
type Listing struct {
	TicketID   uint64 // listings.ticket_id (primary key)
	SellerID   uint64 // listings.seller_id (account that created the listing)
	PriceUnits int64  // listings.price_units (asking price, <= event resale cap)
}

// Active reports whether the listing represents a live offer rather
// than the unlisted sentinel.
func (l Listing) Active() bool { return l.SellerID != 0 }
