package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bukka/internal/assistant"
	"bukka/internal/auth"
	"bukka/internal/backend"
	"bukka/internal/checkout"
	"bukka/internal/config"
	"bukka/internal/contact"
	"bukka/internal/db"
	"bukka/internal/events"
	"bukka/internal/handler"
	"bukka/internal/logger"
	"bukka/internal/order"
	"bukka/internal/palette"
	"bukka/internal/payment"
	"bukka/internal/router"
	"bukka/internal/session"
	"bukka/internal/storage"
	"bukka/internal/tables"
)

func main() {
	// Amounts go to the browser as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// ───────────────────────── CONFIG ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("❌ logger: %v", err)
	}
	defer zl.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── DB ─────────────────────────
	var (
		tableRepo   tables.Repository  = tables.NewInMemoryRepository()
		contactRepo contact.Repository = contact.NewInMemoryRepository()
	)
	pool, err := db.Connect(ctx, cfg.DatabaseURL, zl)
	switch {
	case errors.Is(err, db.ErrNoDSN):
		zl.Warn("DATABASE_URL not set, table defaults and contact messages stay in memory")
	case err != nil:
		zl.Fatal("postgres connection failed", zap.Error(err))
	default:
		defer pool.Close()
		tableRepo = tables.NewPostgresRepository(pool)
		contactRepo = contact.NewPostgresRepository(pool)
	}

	// ───────────────────────── EVENTS ─────────────────────────
	var sink checkout.EventSink = events.Nop{}
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL, zl)
		if err != nil {
			zl.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		defer conn.Close()
		sink = events.NewPublisher(conn, zl)
	} else {
		zl.Warn("RABBITMQ_URL not set, order events are not published")
	}

	// ───────────────────────── STORAGE ─────────────────────────
	var colors handler.ColorResolver
	if cfg.R2.Enabled() {
		r2Client, err := storage.NewR2Client(ctx, cfg.R2)
		if err != nil {
			zl.Fatal("R2 init failed", zap.Error(err))
		}
		colors = palette.NewService(r2Client)
	}

	// ───────────────────────── BACKEND ─────────────────────────
	be := backend.New(cfg.BackendURL, cfg.BackendTimeout)

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		zl.Fatal("token issuer", zap.Error(err))
	}

	sessions := session.NewRegistry(
		session.Config{
			TTL:            cfg.SessionTTL,
			DeliveryFee:    cfg.DeliveryFee,
			ExpiryFallback: cfg.PaymentExpiryFallback,
		},
		checkout.Deps{
			Payments: payment.NewClient(be),
			Orders:   order.NewClient(be),
			Events:   sink,
			Logger:   zl,
		},
		tableRepo,
		zl,
	)

	r := router.NewRouter(router.Deps{
		Sessions:    sessions,
		Tokens:      tokens,
		Interpreter: assistant.NewClient(be),
		Colors:      colors,
		Contact:     contact.NewHandler(contact.NewService(contactRepo), zl),
		CORSOrigins: cfg.CORSOrigins,
		Logger:      zl,
	})

	// ───────────────────────── START ─────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("🚀 API running", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessions.Run(gctx, cfg.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		zl.Error("server stopped", zap.Error(err))
	}
	zl.Info("shutdown complete")
}
