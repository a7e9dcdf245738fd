package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventix/ticket-ledger/internal/clock"
	"github.com/eventix/ticket-ledger/internal/model"
)

const adminID = uint64(1)

func testIssuance(store Store) *Issuance {
	return NewIssuance(store, clock.NewFixed(testNow), adminID)
}

func seedEvent(store *fakeStore, capacity uint32, price int64) uint64 {
	return store.addEvent(model.Event{
		Name:           "gig",
		Date:           testNow.Add(4 * time.Hour),
		Capacity:       capacity,
		BasePriceUnits: price,
	})
}

func TestBuyTicketMintsAndMovesFunds(t *testing.T) {
	store := newFakeStore()
	store.addAccount(adminID, 0)
	store.addAccount(7, 2000)
	evID := seedEvent(store, 10, 300)
	iss := testIssuance(store)

	minted, err := iss.BuyTicket(context.Background(), 7, evID, 3, 1000)
	require.NoError(t, err)
	require.Len(t, minted, 3)

	// Global sequential ticket IDs, all owned by the buyer.
	assert.Equal(t, uint64(1), minted[0].ID)
	assert.Equal(t, uint64(3), minted[2].ID)
	for _, tk := range minted {
		assert.Equal(t, uint64(7), tk.OwnerID)
		assert.Equal(t, evID, tk.EventID)
		assert.False(t, tk.Used)
	}

	// Exactly price*quantity is debited; the declared surplus stays.
	assert.Equal(t, int64(2000-900), store.balance(7))
	assert.Equal(t, int64(900), store.st.custody)
	assert.Equal(t, uint32(3), store.st.events[evID].Minted)
}

func TestBuyTicketZeroQuantity(t *testing.T) {
	store := newFakeStore()
	iss := testIssuance(store)

	_, err := iss.BuyTicket(context.Background(), 7, 1, 0, 100)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestBuyTicketUnknownEvent(t *testing.T) {
	store := newFakeStore()
	store.addAccount(7, 1000)
	iss := testIssuance(store)

	_, err := iss.BuyTicket(context.Background(), 7, 99, 1, 100)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestBuyTicketTimingWindows(t *testing.T) {
	cases := map[string]struct {
		date time.Time
		want error
	}{
		"event passed":       {testNow.Add(-time.Hour), ErrSalesClosed},
		"event starting now": {testNow, ErrSalesClosed},
		"under one hour":     {testNow.Add(30 * time.Minute), ErrTooLateToPurchase},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store := newFakeStore()
			store.addAccount(7, 1000)
			evID := store.addEvent(model.Event{Date: tc.date, Capacity: 10, BasePriceUnits: 100})
			iss := testIssuance(store)

			_, err := iss.BuyTicket(context.Background(), 7, evID, 1, 100)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// A started event with an underfunded payment fails on timing, not
// payment: preconditions are checked in a fixed order.
func TestBuyTicketTimingCheckedBeforePayment(t *testing.T) {
	store := newFakeStore()
	store.addAccount(7, 1000)
	evID := store.addEvent(model.Event{Date: testNow.Add(-time.Hour), Capacity: 10, BasePriceUnits: 100})
	iss := testIssuance(store)

	_, err := iss.BuyTicket(context.Background(), 7, evID, 1, 0)
	assert.ErrorIs(t, err, ErrSalesClosed)
}

func TestBuyTicketInsufficientPayment(t *testing.T) {
	store := newFakeStore()
	store.addAccount(7, 1000)
	evID := seedEvent(store, 10, 300)
	iss := testIssuance(store)

	_, err := iss.BuyTicket(context.Background(), 7, evID, 2, 599)
	assert.ErrorIs(t, err, ErrInsufficientPayment)
}

// A wei-scale price times a large quantity wraps int64 negative if
// multiplied naively, which would let a penniless buyer pass both the
// payment and balance checks and mint money. The purchase must fail
// and leave every balance untouched.
func TestBuyTicketPriceOverflowRejected(t *testing.T) {
	store := newFakeStore()
	store.addAccount(7, 0)
	evID := seedEvent(store, 100, 100_000_000_000_000_000)
	iss := testIssuance(store)

	_, err := iss.BuyTicket(context.Background(), 7, evID, 93, 0)
	assert.ErrorIs(t, err, ErrInsufficientPayment)

	assert.Equal(t, int64(0), store.balance(7))
	assert.Equal(t, int64(0), store.st.custody)
	assert.Equal(t, uint32(0), store.st.events[evID].Minted)
	ts, err := NewRegistry(store).ListByOwner(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, ts)
}

// Minted+quantity must not wrap uint32: on a free event a wrapped sum
// would slip past the capacity check and start minting billions of
// tickets.
func TestBuyTicketQuantityOverflowIsSoldOut(t *testing.T) {
	store := newFakeStore()
	store.addAccount(7, 0)
	evID := seedEvent(store, 10, 0)
	iss := testIssuance(store)
	ctx := context.Background()

	_, err := iss.BuyTicket(ctx, 7, evID, 2, 0)
	require.NoError(t, err)

	_, err = iss.BuyTicket(ctx, 7, evID, ^uint32(0), 0)
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.Equal(t, uint32(2), store.st.events[evID].Minted)
}

func TestBuyTicketSoldOut(t *testing.T) {
	store := newFakeStore()
	store.addAccount(7, 10000)
	evID := seedEvent(store, 3, 100)
	iss := testIssuance(store)
	ctx := context.Background()

	_, err := iss.BuyTicket(ctx, 7, evID, 2, 200)
	require.NoError(t, err)

	_, err = iss.BuyTicket(ctx, 7, evID, 2, 200)
	assert.ErrorIs(t, err, ErrSoldOut)

	// The failed purchase left no trace.
	assert.Equal(t, uint32(2), store.st.events[evID].Minted)
	assert.Equal(t, int64(10000-200), store.balance(7))

	// The remaining seat is still sellable.
	_, err = iss.BuyTicket(ctx, 7, evID, 1, 100)
	assert.NoError(t, err)
}

func TestBuyTicketInsufficientFunds(t *testing.T) {
	store := newFakeStore()
	store.addAccount(7, 50)
	evID := seedEvent(store, 10, 100)
	iss := testIssuance(store)

	_, err := iss.BuyTicket(context.Background(), 7, evID, 1, 100)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(50), store.balance(7))
	assert.Equal(t, int64(0), store.st.custody)
}

func TestBuyTicketUnknownBuyer(t *testing.T) {
	store := newFakeStore()
	evID := seedEvent(store, 10, 100)
	iss := testIssuance(store)

	_, err := iss.BuyTicket(context.Background(), 99, evID, 1, 100)
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestValidateTicketSingleUse(t *testing.T) {
	store := newFakeStore()
	store.addAccount(7, 0)
	evID := seedEvent(store, 10, 100)
	tkID := store.addTicket(evID, 7)
	iss := testIssuance(store)
	ctx := context.Background()

	tk, err := iss.ValidateTicket(ctx, tkID)
	require.NoError(t, err)
	assert.True(t, tk.Used)

	_, err = iss.ValidateTicket(ctx, tkID)
	assert.ErrorIs(t, err, ErrAlreadyUsed)

	// Ownership is untouched by check-in.
	assert.Equal(t, uint64(7), store.ticket(tkID).OwnerID)
}

func TestValidateTicketUnknown(t *testing.T) {
	iss := testIssuance(newFakeStore())

	_, err := iss.ValidateTicket(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUnknownTicket)
}

func TestWithdrawFundsAdminOnly(t *testing.T) {
	store := newFakeStore()
	store.addAccount(adminID, 0)
	store.st.custody = 500
	iss := testIssuance(store)

	_, err := iss.WithdrawFunds(context.Background(), 7)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int64(500), store.st.custody)
}

func TestWithdrawFundsMovesCustodyToAdmin(t *testing.T) {
	store := newFakeStore()
	store.addAccount(adminID, 100)
	store.st.custody = 500
	iss := testIssuance(store)
	ctx := context.Background()

	amount, err := iss.WithdrawFunds(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), amount)
	assert.Equal(t, int64(600), store.balance(adminID))
	assert.Equal(t, int64(0), store.st.custody)

	// A second withdrawal finds nothing.
	amount, err = iss.WithdrawFunds(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), amount)
	assert.Equal(t, int64(600), store.balance(adminID))
}

func TestDeposit(t *testing.T) {
	store := newFakeStore()
	store.addAccount(adminID, 0)
	store.addAccount(7, 100)
	iss := testIssuance(store)
	ctx := context.Background()

	balance, err := iss.Deposit(ctx, adminID, 7, 400)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)
	assert.Equal(t, int64(500), store.balance(7))

	_, err = iss.Deposit(ctx, 7, 7, 400)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = iss.Deposit(ctx, adminID, 7, 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = iss.Deposit(ctx, adminID, 99, 100)
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestCustodyBalance(t *testing.T) {
	store := newFakeStore()
	store.st.custody = 1234
	iss := testIssuance(store)

	balance, err := iss.CustodyBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1234), balance)
}
