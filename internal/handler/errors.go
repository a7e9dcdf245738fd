// Package handler contains the HTTP handlers. Business rules live in
// the ledger services; handlers bind input, invoke one ledger
// operation and translate its outcome to a response.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/eventix/ticket-ledger/internal/ledger"
)

// notFound covers ledger validation failures about identifiers that
// simply do not exist; those read better as 404 than 400.
var notFound = []*ledger.Error{
	ledger.ErrEventNotFound,
	ledger.ErrUnknownTicket,
	ledger.ErrUnknownAccount,
}

// StatusFor maps a ledger error kind to an HTTP status code.
func StatusFor(err error) int {
	kind, ok := ledger.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case ledger.KindValidation:
		for _, nf := range notFound {
			if errors.Is(err, nf) {
				return http.StatusNotFound
			}
		}
		return http.StatusBadRequest
	case ledger.KindAuthorization:
		return http.StatusForbidden
	case ledger.KindStateConflict:
		return http.StatusConflict
	case ledger.KindTiming:
		return http.StatusUnprocessableEntity
	case ledger.KindPayment:
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}

// writeError renders a ledger failure, hiding internals behind a
// generic message for anything that is not a ledger error.
func writeError(c echo.Context, err error) error {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.Path()).Error("ledger operation failed")
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
