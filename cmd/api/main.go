package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"optiondesk/internal/auth"
	"optiondesk/internal/chain"
	"optiondesk/internal/config"
	"optiondesk/internal/db"
	"optiondesk/internal/health"
	"optiondesk/internal/httpserver"
	"optiondesk/internal/pricing"
	"optiondesk/internal/quotes"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	startedAt := time.Now()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.LogLevel)
	if cfg.AppMode == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	ctx := context.Background()
	var pool *pgxpool.Pool
	var closeStore quotes.CloseStore = quotes.NewMemoryCloseStore()
	var snapshotStore chain.SnapshotStore = chain.NewMemorySnapshotStore()
	if cfg.DBDSN != "" {
		pool, err = db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal(err)
		}
		closeStore = quotes.NewPgCloseStore(pool)
		snapshotStore = chain.NewPgSnapshotStore(pool)
	} else {
		log.Warn("DB_DSN not set, closes and snapshots are kept in memory")
	}

	authSvc := auth.NewService(cfg.JWTIssuer, []byte(cfg.JWTSecret), cfg.JWTTTL)
	calcWS := pricing.NewCalculatorWS(authSvc, cfg.WebSocketOrigin, cfg.DefaultRiskFreeRate)
	limiter := httpserver.NewRateLimiter(10, 30)
	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandler:    auth.NewHandler(authSvc),
		AuthService:    authSvc,
		InternalToken:  auth.NewInternalToken(cfg.InternalToken, cfg.InternalTokenHash),
		PricingHandler: pricing.NewHandler(cfg.DefaultRiskFreeRate, calcWS),
		ChainHandler:   chain.NewHandler(chain.NewService(snapshotStore, cfg.DefaultRiskFreeRate)),
		QuotesHandler:  quotes.NewHandler(quotes.NewService(closeStore)),
		HealthHandler:  health.NewHandler(pool, startedAt, cfg.HTTPAddr, cfg.AppMode),
		RateLimiter:    limiter,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				limiter.Prune(3 * time.Minute)
			case <-pruneCtx.Done():
				return
			}
		}
	}()

	log.WithFields(log.Fields{
		"addr":      cfg.HTTPAddr,
		"mode":      cfg.AppMode,
		"risk_free": cfg.DefaultRiskFreeRate,
	}).Info("server listening")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
	log.Info("server stopped")
}
