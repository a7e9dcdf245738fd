package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventix/ticket-ledger/internal/ledger"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ledger.ErrInvalidCapacity, http.StatusBadRequest},
		{"unknown event is 404", ledger.ErrEventNotFound, http.StatusNotFound},
		{"unknown ticket is 404", ledger.ErrUnknownTicket, http.StatusNotFound},
		{"unknown account is 404", ledger.ErrUnknownAccount, http.StatusNotFound},
		{"authorization", ledger.ErrNotOwner, http.StatusForbidden},
		{"state conflict", ledger.ErrSoldOut, http.StatusConflict},
		{"timing", ledger.ErrTooLateToPurchase, http.StatusUnprocessableEntity},
		{"payment", ledger.ErrInsufficientFunds, http.StatusPaymentRequired},
		{"wrapped keeps its status", fmt.Errorf("buy: %w", ledger.ErrSalesClosed), http.StatusUnprocessableEntity},
		{"foreign error", errors.New("mysql gone away"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}
