package ledger

import (
	"context"
	"time"

	"github.com/eventix/ticket-ledger/internal/clock"
	"github.com/eventix/ticket-ledger/internal/model"
)

// purchaseCutoff is how long before the event date primary sales close.
const purchaseCutoff = time.Hour

// Issuance mints tickets against catalog entries, custodies the
// collected funds and exposes check-in plus admin withdrawal. The
// administrator identity is explicit configuration, not ambient state.
type Issuance struct {
	store   Store
	clock   clock.Clock
	adminID uint64
}

func NewIssuance(store Store, clk clock.Clock, adminID uint64) *Issuance {
	return &Issuance{store: store, clock: clk, adminID: adminID}
}

// BuyTicket mints quantity tickets for the event to the buyer.
// Preconditions are checked in a fixed order, each with its own
// failure: the event must exist, sales must not have closed (event
// started or within one hour of start), the declared payment must
// cover basePrice*quantity, and the purchase must not exceed capacity.
//
// Exactly basePrice*quantity moves from the buyer's account to
// custody; any surplus in the declared payment stays with the buyer,
// so the net debit never includes the surplus.
func (s *Issuance) BuyTicket(ctx context.Context, buyerID, eventID uint64, quantity uint32, paymentUnits int64) ([]model.Ticket, error) {
	if quantity == 0 {
		return nil, ErrInvalidQuantity
	}
	now := s.clock.Now()

	var minted []model.Ticket
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if !now.Before(ev.Date) {
			return ErrSalesClosed
		}
		if ev.Date.Sub(now) < purchaseCutoff {
			return ErrTooLateToPurchase
		}
		required, ok := totalPrice(ev.BasePriceUnits, quantity)
		if !ok || paymentUnits < required {
			return ErrInsufficientPayment
		}
		if uint64(ev.Minted)+uint64(quantity) > uint64(ev.Capacity) {
			return ErrSoldOut
		}

		balance, err := tx.GetBalanceForUpdate(ctx, buyerID)
		if err != nil {
			return err
		}
		if balance < required {
			return ErrInsufficientFunds
		}

		minted = make([]model.Ticket, 0, quantity)
		for i := uint32(0); i < quantity; i++ {
			t := model.Ticket{EventID: eventID, OwnerID: buyerID}
			if err := tx.CreateTicket(ctx, &t); err != nil {
				return err
			}
			minted = append(minted, t)
		}
		if err := tx.SetEventMinted(ctx, eventID, ev.Minted+quantity); err != nil {
			return err
		}
		if err := tx.AddBalance(ctx, buyerID, -required); err != nil {
			return err
		}
		custody, err := tx.GetCustodyForUpdate(ctx)
		if err != nil {
			return err
		}
		return tx.SetCustody(ctx, custody+required)
	})
	if err != nil {
		return nil, err
	}
	return minted, nil
}

// totalPrice multiplies a unit price by a quantity, reporting failure
// instead of wrapping on int64 overflow. No payment can cover a product
// that exceeds the representable range, so callers treat overflow as
// insufficient payment. quantity must be positive.
func totalPrice(price int64, quantity uint32) (int64, bool) {
	total := price * int64(quantity)
	if price != 0 && total/int64(quantity) != price {
		return 0, false
	}
	return total, true
}

// ValidateTicket marks a ticket used at check-in. Single-use by
// design: the first call succeeds, every later one fails, so a ticket
// cannot be presented twice at the gate.
func (s *Issuance) ValidateTicket(ctx context.Context, ticketID uint64) (model.Ticket, error) {
	var t model.Ticket
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		t, err = tx.GetTicketForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if t.Used {
			return ErrAlreadyUsed
		}
		if err := tx.SetTicketUsed(ctx, ticketID); err != nil {
			return err
		}
		t.Used = true
		return nil
	})
	if err != nil {
		return model.Ticket{}, err
	}
	return t, nil
}

// WithdrawFunds moves the entire custody balance to the administrator
// account and zeroes it. Only the configured administrator may call it.
func (s *Issuance) WithdrawFunds(ctx context.Context, callerID uint64) (int64, error) {
	if callerID != s.adminID {
		return 0, ErrUnauthorized
	}
	var amount int64
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		amount, err = tx.GetCustodyForUpdate(ctx)
		if err != nil {
			return err
		}
		if amount == 0 {
			return nil
		}
		if err := tx.AddBalance(ctx, s.adminID, amount); err != nil {
			return err
		}
		return tx.SetCustody(ctx, 0)
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

// CustodyBalance reports the funds currently held pending withdrawal.
func (s *Issuance) CustodyBalance(ctx context.Context) (int64, error) {
	var balance int64
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		balance, err = tx.GetCustodyForUpdate(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Deposit credits an account with native-currency units. It stands in
// for the on-ramp of the original design and is restricted to the
// administrator.
func (s *Issuance) Deposit(ctx context.Context, callerID, accountID uint64, amountUnits int64) (int64, error) {
	if callerID != s.adminID {
		return 0, ErrUnauthorized
	}
	if amountUnits <= 0 {
		return 0, ErrInvalidPrice
	}
	var balance int64
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		balance, err = tx.GetBalanceForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if err := tx.AddBalance(ctx, accountID, amountUnits); err != nil {
			return err
		}
		balance += amountUnits
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// ResalePolicy is the one cross-component query the resale market is
// allowed to make: the resale terms of the event a ticket belongs to.
type ResalePolicy struct {
	Allowed  bool
	CapUnits int64
}

// ResalePolicyFor resolves the resale policy for a ticket's event
// inside an existing transaction. It backs the market's policy reads
// so the coupling between the two stays one explicit query.
func ResalePolicyFor(ctx context.Context, tx Tx, ticket model.Ticket) (ResalePolicy, error) {
	ev, err := tx.GetEvent(ctx, ticket.EventID)
	if err != nil {
		return ResalePolicy{}, err
	}
	return ResalePolicy{Allowed: ev.ResaleAllowed, CapUnits: ev.ResaleCapUnits}, nil
}
