// cardduel-store is the persistence adapter: the only process that talks to
// Postgres. It applies the schema, seeds the card catalogue and exposes the
// internal rpc surface to the peer services
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cardduel/internal/platform/config"
	"cardduel/internal/platform/logger"
	phttp "cardduel/internal/platform/net/http"
	"cardduel/internal/platform/net/middleware"
	"cardduel/internal/platform/store"
	"cardduel/internal/platform/trust"
	storehttp "cardduel/internal/services/storesvc/http"
	"cardduel/internal/services/storesvc/repo"
)

func main() {
	_ = godotenv.Load()
	logger.Init(logger.FromEnv())
	log := logger.Named("store")

	cfg := config.New().Prefix("STORE_")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "cardduel-store",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         cfg.MustString("PG_URL"),
			MaxConns:    int32(cfg.MayInt("PG_MAX_CONNS", 8)),
			LogSQL:      cfg.MayBool("PG_LOG_SQL", false),
			SlowQueryMs: cfg.MayInt("PG_SLOW_MS", 200),
		},
	}, store.WithLogger(*log))
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer func() { _ = st.Close(context.Background()) }()

	if err := repo.EnsureSchema(ctx, st.PG); err != nil {
		log.Fatal().Err(err).Msg("apply schema")
	}
	if err := repo.SeedCards(ctx, st.PG); err != nil {
		log.Fatal().Err(err).Msg("seed cards")
	}

	ring := trust.FromConfig(config.New(), "identity", "cards", "games", "reports")

	srv := phttp.NewServer(cfg.MayString("ADDR", ":8081"))
	r := srv.Router()
	r.Use(
		middleware.RequestUUID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.AccessLog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond}),
		middleware.NewMetrics("store", nil).Middleware(),
		middleware.Heartbeat("/health"),
	)
	r.Handle("/metrics", middleware.PromHandler())

	storehttp.Mount(r, storehttp.Deps{Run: st.PG, Ring: ring})

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("http server")
	}
}
