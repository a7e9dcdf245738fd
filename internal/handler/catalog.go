package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventix/ticket-ledger/internal/ledger"
	"github.com/eventix/ticket-ledger/internal/model"
)

// CatalogHandler exposes event creation (admin) and the public
// read-only catalog.
type CatalogHandler struct {
	Catalog *ledger.Catalog
}

func NewCatalogHandler(catalog *ledger.Catalog) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

type createEventReq struct {
	Name           string    `json:"name"`
	Date           time.Time `json:"date"`
	Location       string    `json:"location"`
	Capacity       uint32    `json:"capacity"`
	BasePriceUnits int64     `json:"base_price_units"`
	ResaleAllowed  bool      `json:"resale_allowed"`
	ResaleCapUnits int64     `json:"resale_cap_units"`
}

type eventResp struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	Date           string `json:"date"`
	Location       string `json:"location"`
	Capacity       uint32 `json:"capacity"`
	BasePriceUnits int64  `json:"base_price_units"`
	ResaleAllowed  bool   `json:"resale_allowed"`
	ResaleCapUnits int64  `json:"resale_cap_units"`
	Minted         uint32 `json:"minted"`
}

func toEventResp(ev model.Event) eventResp {
	return eventResp{
		ID:             ev.ID,
		Name:           ev.Name,
		Date:           ev.Date.UTC().Format(time.RFC3339),
		Location:       ev.Location,
		Capacity:       ev.Capacity,
		BasePriceUnits: ev.BasePriceUnits,
		ResaleAllowed:  ev.ResaleAllowed,
		ResaleCapUnits: ev.ResaleCapUnits,
		Minted:         ev.Minted,
	}
}

// CreateEvent handles POST /v1/events (admin only).
func (h *CatalogHandler) CreateEvent(c echo.Context) error {
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ev, err := h.Catalog.CreateEvent(c.Request().Context(), ledger.CreateEventInput{
		Name:           req.Name,
		Date:           req.Date,
		Location:       req.Location,
		Capacity:       req.Capacity,
		BasePriceUnits: req.BasePriceUnits,
		ResaleAllowed:  req.ResaleAllowed,
		ResaleCapUnits: req.ResaleCapUnits,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toEventResp(ev))
}

// GetEvent handles GET /v1/events/:id.
func (h *CatalogHandler) GetEvent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Catalog.GetEvent(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// ListEvents handles GET /v1/events.
func (h *CatalogHandler) ListEvents(c echo.Context) error {
	evs, err := h.Catalog.ListEvents(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]eventResp, 0, len(evs))
	for _, ev := range evs {
		out = append(out, toEventResp(ev))
	}
	return c.JSON(http.StatusOK, out)
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
