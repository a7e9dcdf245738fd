package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventix/ticket-ledger/internal/config"
	"github.com/eventix/ticket-ledger/internal/ledger"
	"github.com/eventix/ticket-ledger/internal/middleware"
	"github.com/eventix/ticket-ledger/internal/model"
	"github.com/eventix/ticket-ledger/internal/queue"
	queue_publisher "github.com/eventix/ticket-ledger/internal/service"
)

// TicketHandler exposes primary issuance: buying, check-in, ownership
// transfer and ticket lookups.
type TicketHandler struct {
	Cfg      config.Config
	Issuance *ledger.Issuance
	Registry *ledger.Registry
	Catalog  *ledger.Catalog
}

func NewTicketHandler(cfg config.Config, iss *ledger.Issuance, reg *ledger.Registry, cat *ledger.Catalog) *TicketHandler {
	return &TicketHandler{Cfg: cfg, Issuance: iss, Registry: reg, Catalog: cat}
}

type ticketResp struct {
	ID         uint64  `json:"id"`
	EventID    uint64  `json:"event_id"`
	OwnerID    uint64  `json:"owner_id"`
	ApprovedID *uint64 `json:"approved_id,omitempty"`
	Used       bool    `json:"used"`
}

func toTicketResp(t model.Ticket) ticketResp {
	return ticketResp{ID: t.ID, EventID: t.EventID, OwnerID: t.OwnerID, ApprovedID: t.ApprovedID, Used: t.Used}
}

// Buy handles POST /v1/events/:id/tickets. The declared payment must
// cover base price times quantity; only the required amount is debited.
func (h *TicketHandler) Buy(c echo.Context) error {
	buyerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req struct {
		Quantity     uint32 `json:"quantity"`
		PaymentUnits int64  `json:"payment_units"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	minted, err := h.Issuance.BuyTicket(ctx, buyerID, eventID, req.Quantity, req.PaymentUnits)
	if err != nil {
		return writeError(c, err)
	}

	// Audit event after commit; never fails the purchase.
	ids := make([]uint64, 0, len(minted))
	for _, t := range minted {
		ids = append(ids, t.ID)
	}
	if ev, err := h.Catalog.GetEvent(ctx, eventID); err == nil {
		_ = queue_publisher.Publish(ctx, h.Cfg.AMQPURL, queue.Envelope{
			Type: "ticket.minted",
			TicketMinted: &queue.TicketMinted{
				EventID:   eventID,
				EventName: ev.Name,
				BuyerID:   buyerID,
				TicketIDs: ids,
				PaidUnits: ev.BasePriceUnits * int64(req.Quantity),
			},
		})
	}

	out := make([]ticketResp, 0, len(minted))
	for _, t := range minted {
		out = append(out, toTicketResp(t))
	}
	return c.JSON(http.StatusCreated, echo.Map{"tickets": out})
}

// Validate handles POST /v1/tickets/:id/validate (admin only): the
// one-time check-in at the gate.
func (h *TicketHandler) Validate(c echo.Context) error {
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ctx := c.Request().Context()
	t, err := h.Issuance.ValidateTicket(ctx, ticketID)
	if err != nil {
		return writeError(c, err)
	}

	_ = queue_publisher.Publish(ctx, h.Cfg.AMQPURL, queue.Envelope{
		Type: "ticket.validated",
		TicketValidated: &queue.TicketValidated{
			TicketID: t.ID, EventID: t.EventID, OwnerID: t.OwnerID,
		},
	})
	return c.JSON(http.StatusOK, echo.Map{
		"ticket_id":    t.ID,
		"used":         true,
		"validated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// Transfer handles POST /v1/tickets/:id/transfer.
func (h *TicketHandler) Transfer(c echo.Context) error {
	callerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var req struct {
		ToAccountID uint64 `json:"to_account_id"`
	}
	if err := c.Bind(&req); err != nil || req.ToAccountID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to_account_id required"})
	}
	if err := h.Registry.Transfer(c.Request().Context(), callerID, ticketID, req.ToAccountID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket_id": ticketID, "owner_id": req.ToAccountID})
}

// Approve handles POST /v1/tickets/:id/approve. A zero delegate
// clears the approval.
func (h *TicketHandler) Approve(c echo.Context) error {
	callerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var req struct {
		DelegateID uint64 `json:"delegate_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Registry.Approve(c.Request().Context(), callerID, ticketID, req.DelegateID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/tickets/:id (public lookup: owner, event, used
// flag).
func (h *TicketHandler) Get(c echo.Context) error {
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	t, err := h.Registry.GetTicket(c.Request().Context(), ticketID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toTicketResp(t))
}

// Mine handles GET /v1/me/tickets.
func (h *TicketHandler) Mine(c echo.Context) error {
	callerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ts, err := h.Registry.ListByOwner(c.Request().Context(), callerID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]ticketResp, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTicketResp(t))
	}
	return c.JSON(http.StatusOK, out)
}
