package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/eventix/ticket-ledger/internal/clock"
	"github.com/eventix/ticket-ledger/internal/config"
	"github.com/eventix/ticket-ledger/internal/database"
	"github.com/eventix/ticket-ledger/internal/handler"
	"github.com/eventix/ticket-ledger/internal/ledger"
	"github.com/eventix/ticket-ledger/internal/model"
	"github.com/eventix/ticket-ledger/internal/queue"
	"github.com/eventix/ticket-ledger/internal/repository"
	"github.com/eventix/ticket-ledger/internal/router"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.Env == "prod" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(logrus.InfoLevel)

	db, err := database.Open(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		logrus.WithError(err).Fatal("schema migration failed")
	}

	store := repository.NewStore(db)
	accounts := store.Accounts()
	tokens := repository.NewTokenRepo(db)

	adminID, err := seedAdmin(ctx, accounts, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("admin account setup failed")
	}

	clk := clock.NewSystem()
	catalog := ledger.NewCatalog(store, clk)
	issuance := ledger.NewIssuance(store, clk, adminID)
	registry := ledger.NewRegistry(store)
	market := ledger.NewMarket(store)

	rdb := config.NewRedisClient(cfg)

	if cfg.AMQPURL != "" {
		go queue.StartConsumer(cfg.AMQPURL)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	router.Register(e, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, accounts, tokens),
		Catalog: handler.NewCatalogHandler(catalog),
		Ticket:  handler.NewTicketHandler(cfg, issuance, registry, catalog),
		Market:  handler.NewMarketHandler(cfg, market),
		Account: handler.NewAccountHandler(cfg, accounts, issuance),
	}, cfg.JWTSecret, rdb, cfg.CacheTTL, cfg.RateLimit)

	addr := ":" + cfg.Port
	logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("ticket ledger listening")
	if err := e.Start(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

// seedAdmin ensures the configured administrator account exists and
// returns its ID. The account is created on first boot and reused on
// every boot after that.
func seedAdmin(ctx context.Context, accounts *repository.AccountRepo, cfg config.Config) (uint64, error) {
	acct, err := accounts.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return acct.ID, nil
	}
	if !errors.Is(err, ledger.ErrUnknownAccount) {
		return 0, err
	}
	id, err := accounts.Create(ctx, cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin, cfg.BcryptCost)
	if err != nil {
		return 0, err
	}
	logrus.WithField("account_id", id).Info("created admin account")
	return id, nil
}
