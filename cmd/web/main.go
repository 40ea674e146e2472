// cmd/web/main.go
//
// Hosting-rotation service – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (.env via the config loader).
//
//  2. Optional Vault client when VAULT_ADDR is set; `vault:` URIs in the
//     YAML resolve through it.
//
//  3. Load and validate conf/global.yaml plus LUNCHROTA_ overrides.
//
//  4. Start daily rotating logger (tees to console when running in a TTY).
//
//  5. Open the MySQL pool and wire the rotation ledger, the attendance
//     reconciler, the mailer, and the cadence engine.
//
//  6. Serve the chi router plus Prometheus /metrics, and run the scheduler
//     loop that fires due cadence jobs.
//
//  7. SIGINT/SIGTERM drain the HTTP server and stop the scheduler.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/lunchrota/internal/cadence"
	"github.com/yanizio/lunchrota/internal/config"
	"github.com/yanizio/lunchrota/internal/database"
	"github.com/yanizio/lunchrota/internal/logger"
	"github.com/yanizio/lunchrota/internal/mailer"
	"github.com/yanizio/lunchrota/internal/middleware"
	"github.com/yanizio/lunchrota/internal/reconcile"
	"github.com/yanizio/lunchrota/internal/rotation"
	"github.com/yanizio/lunchrota/internal/server"
	"github.com/yanizio/lunchrota/internal/settings"
	"github.com/yanizio/lunchrota/internal/token"
	"github.com/yanizio/lunchrota/internal/vault"
	"github.com/yanizio/lunchrota/internal/web"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Secrets and config ──────────────────────────────────────────
	//
	var secrets *vault.Client
	if os.Getenv("VAULT_ADDR") != "" {
		var err error
		secrets, err = vault.New(ctx, log.Printf)
		if err != nil {
			log.Fatalf("vault client: %v", err)
		}
	}

	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer zlog.Sync()

	//
	// ── 2.  Database ────────────────────────────────────────────────────
	//
	dsn := fmt.Sprintf(cfg.Database.DSN, cfg.Database.Password)
	db, err := database.Open(dsn)
	if err != nil {
		zlog.Fatalw("connect database", "err", err)
	}
	defer db.Close()
	zlog.Infow("database online")

	//
	// ── 3.  Collaborators ───────────────────────────────────────────────
	//
	ledger := rotation.NewLedger(db)
	store := settings.NewStore(db)
	rec := reconcile.New(db)
	clock := cadence.SystemClock{}

	var mail mailer.Mailer
	if cfg.Mail.DryRun {
		mail = mailer.DryRun{}
		zlog.Infow("mailer in dry-run mode")
	} else {
		mail = mailer.NewBrevo(cfg.Mail.APIKey, cfg.Mail.Endpoint,
			mailer.Recipient{Email: cfg.Mail.FromEmail, Name: cfg.Mail.FromName})
	}

	engine := cadence.NewEngine(db, ledger, mail, token.CryptoSource{},
		clock, store, cfg.HTTP.BaseURL)

	//
	// ── 4.  HTTP handler stack ──────────────────────────────────────────
	//
	api := web.New(db, ledger, rec, engine, store, clock)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api.Routes())

	var handler http.Handler = mux
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(handler)
	}

	srv := server.New(cfg.HTTP.ListenAddr, handler)

	//
	// ── 5.  Serve and schedule ──────────────────────────────────────────
	//
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zlog.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		tick := time.NewTicker(time.Duration(cfg.Schedule.TickMinutes) * time.Minute)
		defer tick.Stop()
		engine.Tick(gctx) // catch up immediately on boot
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-tick.C:
				engine.Tick(gctx)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zlog.Fatalw("server exited", "err", err)
	}
	zlog.Infow("shutdown complete")
}
