package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventix/ticket-ledger/internal/config"
	"github.com/eventix/ticket-ledger/internal/ledger"
	"github.com/eventix/ticket-ledger/internal/middleware"
	"github.com/eventix/ticket-ledger/internal/repository"
)

// AccountHandler serves account profile and fund movement endpoints.
type AccountHandler struct {
	Cfg      config.Config
	Accounts *repository.AccountRepo
	Issuance *ledger.Issuance
}

func NewAccountHandler(cfg config.Config, accounts *repository.AccountRepo, iss *ledger.Issuance) *AccountHandler {
	return &AccountHandler{Cfg: cfg, Accounts: accounts, Issuance: iss}
}

// Me handles GET /v1/accounts/me.
func (h *AccountHandler) Me(c echo.Context) error {
	callerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acct, err := h.Accounts.GetByID(ctx, callerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":            acct.ID,
		"email":         acct.Email,
		"role":          acct.Role,
		"balance_units": acct.BalanceUnits,
	})
}

// Deposit handles POST /v1/accounts/:id/deposit. Admin only.
func (h *AccountHandler) Deposit(c echo.Context) error {
	callerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	accountID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account id"})
	}
	var req struct {
		AmountUnits int64 `json:"amount_units"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	balance, err := h.Issuance.Deposit(c.Request().Context(), callerID, accountID, req.AmountUnits)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"account_id": accountID, "balance_units": balance})
}

// Withdraw handles POST /v1/custody/withdraw. Admin only: moves
// the full custody balance into the admin account.
func (h *AccountHandler) Withdraw(c echo.Context) error {
	callerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	amount, err := h.Issuance.WithdrawFunds(c.Request().Context(), callerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"withdrawn_units": amount})
}

// Custody handles GET /v1/custody. Admin only.
func (h *AccountHandler) Custody(c echo.Context) error {
	balance, err := h.Issuance.CustodyBalance(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"balance_units": balance})
}
