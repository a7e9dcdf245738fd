package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/eventix/ticket-ledger/internal/model"
)

// fakeStore is an in-memory Store for tests. WithTx snapshots the
// whole state before running the callback and restores the snapshot on
// error, so tests exercise the same all-or-nothing semantics the MySQL
// store provides. A single mutex stands in for row locking.
type fakeStore struct {
	mu sync.Mutex
	st fakeState
}

type fakeState struct {
	events   map[uint64]model.Event
	tickets  map[uint64]model.Ticket
	listings map[uint64]model.Listing
	accounts map[uint64]model.Account
	custody  int64

	nextEventID  uint64
	nextTicketID uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{st: fakeState{
		events:   map[uint64]model.Event{},
		tickets:  map[uint64]model.Ticket{},
		listings: map[uint64]model.Listing{},
		accounts: map[uint64]model.Account{},
	}}
}

func (s *fakeStore) addAccount(id uint64, balance int64) {
	s.st.accounts[id] = model.Account{ID: id, BalanceUnits: balance}
}

func (s *fakeStore) addEvent(ev model.Event) uint64 {
	s.st.nextEventID++
	ev.ID = s.st.nextEventID
	s.st.events[ev.ID] = ev
	return ev.ID
}

func (s *fakeStore) addTicket(eventID, ownerID uint64) uint64 {
	s.st.nextTicketID++
	s.st.tickets[s.st.nextTicketID] = model.Ticket{
		ID: s.st.nextTicketID, EventID: eventID, OwnerID: ownerID,
	}
	return s.st.nextTicketID
}

func (s *fakeStore) balance(id uint64) int64 { return s.st.accounts[id].BalanceUnits }

func (s *fakeStore) ticket(id uint64) model.Ticket { return s.st.tickets[id] }

func (st fakeState) clone() fakeState {
	out := fakeState{
		events:       make(map[uint64]model.Event, len(st.events)),
		tickets:      make(map[uint64]model.Ticket, len(st.tickets)),
		listings:     make(map[uint64]model.Listing, len(st.listings)),
		accounts:     make(map[uint64]model.Account, len(st.accounts)),
		custody:      st.custody,
		nextEventID:  st.nextEventID,
		nextTicketID: st.nextTicketID,
	}
	for k, v := range st.events {
		out.events[k] = v
	}
	for k, v := range st.tickets {
		if v.ApprovedID != nil {
			id := *v.ApprovedID
			v.ApprovedID = &id
		}
		out.tickets[k] = v
	}
	for k, v := range st.listings {
		out.listings[k] = v
	}
	for k, v := range st.accounts {
		out.accounts[k] = v
	}
	return out
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(ctx, &fakeTx{st: &s.st}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

type fakeTx struct {
	st *fakeState
}

func (t *fakeTx) CreateEvent(ctx context.Context, ev *model.Event) error {
	t.st.nextEventID++
	ev.ID = t.st.nextEventID
	t.st.events[ev.ID] = *ev
	return nil
}

func (t *fakeTx) GetEvent(ctx context.Context, id uint64) (model.Event, error) {
	ev, ok := t.st.events[id]
	if !ok {
		return model.Event{}, ErrEventNotFound
	}
	return ev, nil
}

func (t *fakeTx) GetEventForUpdate(ctx context.Context, id uint64) (model.Event, error) {
	return t.GetEvent(ctx, id)
}

func (t *fakeTx) SetEventMinted(ctx context.Context, id uint64, minted uint32) error {
	ev, ok := t.st.events[id]
	if !ok {
		return ErrEventNotFound
	}
	ev.Minted = minted
	t.st.events[id] = ev
	return nil
}

func (t *fakeTx) ListEvents(ctx context.Context) ([]model.Event, error) {
	out := make([]model.Event, 0, len(t.st.events))
	for _, ev := range t.st.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *fakeTx) CreateTicket(ctx context.Context, tk *model.Ticket) error {
	t.st.nextTicketID++
	tk.ID = t.st.nextTicketID
	t.st.tickets[tk.ID] = *tk
	return nil
}

func (t *fakeTx) GetTicket(ctx context.Context, id uint64) (model.Ticket, error) {
	tk, ok := t.st.tickets[id]
	if !ok {
		return model.Ticket{}, ErrUnknownTicket
	}
	return tk, nil
}

func (t *fakeTx) GetTicketForUpdate(ctx context.Context, id uint64) (model.Ticket, error) {
	return t.GetTicket(ctx, id)
}

func (t *fakeTx) SetTicketOwner(ctx context.Context, id, ownerID uint64) error {
	tk, ok := t.st.tickets[id]
	if !ok {
		return ErrUnknownTicket
	}
	tk.OwnerID = ownerID
	t.st.tickets[id] = tk
	return nil
}

func (t *fakeTx) SetTicketApproved(ctx context.Context, id uint64, approvedID *uint64) error {
	tk, ok := t.st.tickets[id]
	if !ok {
		return ErrUnknownTicket
	}
	tk.ApprovedID = approvedID
	t.st.tickets[id] = tk
	return nil
}

func (t *fakeTx) SetTicketUsed(ctx context.Context, id uint64) error {
	tk, ok := t.st.tickets[id]
	if !ok {
		return ErrUnknownTicket
	}
	tk.Used = true
	t.st.tickets[id] = tk
	return nil
}

func (t *fakeTx) ListTicketsByOwner(ctx context.Context, ownerID uint64) ([]model.Ticket, error) {
	var out []model.Ticket
	for _, tk := range t.st.tickets {
		if tk.OwnerID == ownerID {
			out = append(out, tk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *fakeTx) GetListing(ctx context.Context, ticketID uint64) (model.Listing, error) {
	return t.st.listings[ticketID], nil
}

func (t *fakeTx) GetListingForUpdate(ctx context.Context, ticketID uint64) (model.Listing, error) {
	return t.st.listings[ticketID], nil
}

func (t *fakeTx) PutListing(ctx context.Context, l model.Listing) error {
	t.st.listings[l.TicketID] = l
	return nil
}

func (t *fakeTx) DeleteListing(ctx context.Context, ticketID uint64) error {
	delete(t.st.listings, ticketID)
	return nil
}

func (t *fakeTx) GetAccount(ctx context.Context, id uint64) (model.Account, error) {
	a, ok := t.st.accounts[id]
	if !ok {
		return model.Account{}, ErrUnknownAccount
	}
	return a, nil
}

func (t *fakeTx) GetBalanceForUpdate(ctx context.Context, id uint64) (int64, error) {
	a, ok := t.st.accounts[id]
	if !ok {
		return 0, ErrUnknownAccount
	}
	return a.BalanceUnits, nil
}

func (t *fakeTx) AddBalance(ctx context.Context, id uint64, delta int64) error {
	a, ok := t.st.accounts[id]
	if !ok {
		return ErrUnknownAccount
	}
	a.BalanceUnits += delta
	t.st.accounts[id] = a
	return nil
}

func (t *fakeTx) GetCustodyForUpdate(ctx context.Context) (int64, error) {
	return t.st.custody, nil
}

func (t *fakeTx) SetCustody(ctx context.Context, balance int64) error {
	t.st.custody = balance
	return nil
}
