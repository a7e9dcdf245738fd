package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventix/ticket-ledger/internal/config"
	"github.com/eventix/ticket-ledger/internal/ledger"
	"github.com/eventix/ticket-ledger/internal/middleware"
	"github.com/eventix/ticket-ledger/internal/queue"
	queue_publisher "github.com/eventix/ticket-ledger/internal/service"
)

// MarketHandler exposes the resale market: listing, delisting, buying
// and the public listing lookup.
type MarketHandler struct {
	Cfg    config.Config
	Market *ledger.Market
}

func NewMarketHandler(cfg config.Config, m *ledger.Market) *MarketHandler {
	return &MarketHandler{Cfg: cfg, Market: m}
}

type listingResp struct {
	TicketID   uint64 `json:"ticket_id"`
	SellerID   uint64 `json:"seller_id"`
	PriceUnits int64  `json:"price_units"`
	Listed     bool   `json:"listed"`
}

// List handles POST /v1/tickets/:id/listing.
func (h *MarketHandler) List(c echo.Context) error {
	callerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var req struct {
		PriceUnits int64 `json:"price_units"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	l, err := h.Market.ListTicket(c.Request().Context(), callerID, ticketID, req.PriceUnits)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, listingResp{
		TicketID: l.TicketID, SellerID: l.SellerID, PriceUnits: l.PriceUnits, Listed: true,
	})
}

// Delist handles DELETE /v1/tickets/:id/listing.
func (h *MarketHandler) Delist(c echo.Context) error {
	callerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	if err := h.Market.DelistTicket(c.Request().Context(), callerID, ticketID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Buy handles POST /v1/tickets/:id/purchase: atomic settlement of an
// active listing.
func (h *MarketHandler) Buy(c echo.Context) error {
	buyerID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var req struct {
		PaymentUnits int64 `json:"payment_units"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	s, err := h.Market.BuyTicket(ctx, buyerID, ticketID, req.PaymentUnits)
	if err != nil {
		return writeError(c, err)
	}

	_ = queue_publisher.Publish(ctx, h.Cfg.AMQPURL, queue.Envelope{
		Type: "listing.sold",
		ListingSold: &queue.ListingSold{
			TicketID: s.TicketID, SellerID: s.SellerID, BuyerID: s.BuyerID, PriceUnits: s.PriceUnits,
		},
	})
	return c.JSON(http.StatusOK, echo.Map{
		"ticket_id":   s.TicketID,
		"seller_id":   s.SellerID,
		"buyer_id":    s.BuyerID,
		"price_units": s.PriceUnits,
	})
}

// GetListing handles GET /v1/tickets/:id/listing. An unlisted ticket
// yields the sentinel listing (zero seller, zero price).
func (h *MarketHandler) GetListing(c echo.Context) error {
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	l, err := h.Market.GetListing(c.Request().Context(), ticketID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, listingResp{
		TicketID: ticketID, SellerID: l.SellerID, PriceUnits: l.PriceUnits, Listed: l.Active(),
	})
}
