package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventix/ticket-ledger/internal/model"
)

func registryFixture() (*fakeStore, *Registry, uint64) {
	store := newFakeStore()
	store.addAccount(10, 0)
	store.addAccount(20, 0)
	evID := store.addEvent(model.Event{Date: testNow.Add(4 * time.Hour), Capacity: 10})
	tkID := store.addTicket(evID, 10)
	return store, NewRegistry(store), tkID
}

func TestTransferByOwner(t *testing.T) {
	store, reg, tkID := registryFixture()

	require.NoError(t, reg.Transfer(context.Background(), 10, tkID, 20))
	assert.Equal(t, uint64(20), store.ticket(tkID).OwnerID)
}

func TestTransferByApprovedDelegate(t *testing.T) {
	store, reg, tkID := registryFixture()
	store.addAccount(30, 0)
	ctx := context.Background()

	require.NoError(t, reg.Approve(ctx, 10, tkID, 30))
	require.NoError(t, reg.Transfer(ctx, 30, tkID, 20))

	tk := store.ticket(tkID)
	assert.Equal(t, uint64(20), tk.OwnerID)
	// The approval does not survive the transfer.
	assert.Nil(t, tk.ApprovedID)
}

func TestTransferRejectsStrangers(t *testing.T) {
	_, reg, tkID := registryFixture()

	err := reg.Transfer(context.Background(), 20, tkID, 20)
	assert.ErrorIs(t, err, ErrNotOwnerOrApproved)
}

func TestTransferToUnknownAccount(t *testing.T) {
	store, reg, tkID := registryFixture()

	err := reg.Transfer(context.Background(), 10, tkID, 99)
	assert.ErrorIs(t, err, ErrUnknownAccount)
	assert.Equal(t, uint64(10), store.ticket(tkID).OwnerID)
}

func TestTransferKeepsUsedFlag(t *testing.T) {
	store, reg, tkID := registryFixture()
	tk := store.st.tickets[tkID]
	tk.Used = true
	store.st.tickets[tkID] = tk

	require.NoError(t, reg.Transfer(context.Background(), 10, tkID, 20))
	assert.True(t, store.ticket(tkID).Used)
}

func TestApprove(t *testing.T) {
	store, reg, tkID := registryFixture()
	store.addAccount(30, 0)
	ctx := context.Background()

	require.NoError(t, reg.Approve(ctx, 10, tkID, 30))
	require.NotNil(t, store.ticket(tkID).ApprovedID)
	assert.Equal(t, uint64(30), *store.ticket(tkID).ApprovedID)

	// Zero delegate clears the approval.
	require.NoError(t, reg.Approve(ctx, 10, tkID, 0))
	assert.Nil(t, store.ticket(tkID).ApprovedID)
}

func TestApproveOwnerOnly(t *testing.T) {
	_, reg, tkID := registryFixture()

	err := reg.Approve(context.Background(), 20, tkID, 20)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestApproveUnknownDelegate(t *testing.T) {
	store, reg, tkID := registryFixture()

	err := reg.Approve(context.Background(), 10, tkID, 99)
	assert.ErrorIs(t, err, ErrUnknownAccount)
	assert.Nil(t, store.ticket(tkID).ApprovedID)
}

func TestGetTicketAndListByOwner(t *testing.T) {
	store, reg, tkID := registryFixture()
	ctx := context.Background()

	tk, err := reg.GetTicket(ctx, tkID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), tk.OwnerID)

	_, err = reg.GetTicket(ctx, 404)
	assert.ErrorIs(t, err, ErrUnknownTicket)

	second := store.addTicket(tk.EventID, 10)
	ts, err := reg.ListByOwner(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, tkID, ts[0].ID)
	assert.Equal(t, second, ts[1].ID)

	ts, err = reg.ListByOwner(ctx, 20)
	require.NoError(t, err)
	assert.Empty(t, ts)
}
