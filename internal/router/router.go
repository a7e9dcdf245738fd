package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/eventix/ticket-ledger/internal/handler"
	"github.com/eventix/ticket-ledger/internal/middleware"
	"github.com/eventix/ticket-ledger/internal/model"
)

// Handlers bundles every HTTP handler the router wires up.
type Handlers struct {
	Auth    *handler.AuthHandler
	Catalog *handler.CatalogHandler
	Ticket  *handler.TicketHandler
	Market  *handler.MarketHandler
	Account *handler.AccountHandler
}

// Register mounts all routes on the provided Echo instance.
//
// Route groups:
//   - /healthz and /v1/auth/* are open.
//   - Public reads are open and served through the redis read cache.
//   - /v1 trader operations require a valid access token.
//   - Admin operations additionally require the ADMIN role.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client, cacheTTL time.Duration, ratePerMin int) {
	e.Use(middleware.RateLimit(rdb, ratePerMin))

	e.GET("/healthz", handler.Health)

	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Unauthenticated browse endpoints. Responses are cached briefly so
	// listing pages do not hammer the database.
	pub := e.Group("/v1", middleware.CacheReads(rdb, cacheTTL))
	pub.GET("/events", h.Catalog.ListEvents)
	pub.GET("/events/:id", h.Catalog.GetEvent)
	pub.GET("/tickets/:id", h.Ticket.Get)
	pub.GET("/tickets/:id/listing", h.Market.GetListing)

	// Authenticated operations. Every account holds either the TRADER or
	// the ADMIN role; both may trade.
	trader := e.Group("/v1")
	trader.Use(middleware.JWTAuth(jwtSecret))
	trader.Use(middleware.RequireRole(model.RoleTrader, model.RoleAdmin))
	trader.GET("/me", h.Account.Me)
	trader.GET("/me/tickets", h.Ticket.Mine)
	trader.POST("/events/:id/tickets", h.Ticket.Buy)
	trader.POST("/tickets/:id/transfer", h.Ticket.Transfer)
	trader.POST("/tickets/:id/approve", h.Ticket.Approve)
	trader.POST("/tickets/:id/listing", h.Market.List)
	trader.DELETE("/tickets/:id/listing", h.Market.Delist)
	trader.POST("/tickets/:id/purchase", h.Market.Buy)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/events", h.Catalog.CreateEvent)
	admin.POST("/tickets/:id/validate", h.Ticket.Validate)
	admin.GET("/custody", h.Account.Custody)
	admin.POST("/custody/withdraw", h.Account.Withdraw)
	admin.POST("/accounts/:id/deposit", h.Account.Deposit)
}
