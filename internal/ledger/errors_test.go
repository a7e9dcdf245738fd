package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  *Error
		kind Kind
	}{
		{ErrEventNotFound, KindValidation},
		{ErrNotOwner, KindAuthorization},
		{ErrSoldOut, KindStateConflict},
		{ErrSalesClosed, KindTiming},
		{ErrInsufficientFunds, KindPayment},
	}
	for _, tc := range cases {
		kind, ok := KindOf(tc.err)
		assert.True(t, ok)
		assert.Equal(t, tc.kind, kind)
	}
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("buy ticket: %w", ErrSoldOut)

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindStateConflict, kind)
	assert.ErrorIs(t, wrapped, ErrSoldOut)
}

func TestKindOfForeignError(t *testing.T) {
	_, ok := KindOf(fmt.Errorf("connection reset"))
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "timing", KindTiming.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
