// cardduel-reports serves the leaderboard, per-player statistics, the
// ranking visibility toggle and the admin-gated audit log reads
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
	"cardduel/internal/platform/trust"
	"cardduel/internal/rpcclient"
	logsvc "cardduel/internal/services/logs/service"
	reporthttp "cardduel/internal/services/reports/http"
	"cardduel/internal/services/reports/service"
)

func main() {
	_ = godotenv.Load()
	logger.Init(logger.FromEnv())
	log := logger.Named("reports")

	root := config.New()
	cfg := root.Prefix("REPORTS_")

	ring := trust.FromConfig(root, "identity", "cards", "games", "reports")
	ownKey, _ := ring.Key("reports")

	storeClient := rpcclient.New(cfg.MustString("STORE_URL"), ownKey)
	identityClient := rpcclient.New(cfg.MustString("IDENTITY_URL"), ownKey)

	reports := service.New(
		rpcclient.NewLeaderboard(storeClient),
		rpcclient.NewVisibility(storeClient),
		service.Config{
			DefaultLimit: cfg.MayInt("DEFAULT_LIMIT", 0),
			HardLimit:    cfg.MayInt("HARD_LIMIT", 0),
			RecentGames:  cfg.MayInt("RECENT_GAMES", 0),
		},
	)
	logs := logsvc.New(
		rpcclient.NewLogReader(storeClient),
		rpcclient.NewRecorder(storeClient),
		logsvc.Config{
			DefaultLimit: cfg.MayInt("LOGS_DEFAULT_LIMIT", 0),
			HardLimit:    cfg.MayInt("LOGS_HARD_LIMIT", 0),
		},
		*log,
	)
	auth := rpcclient.NewAuth(identityClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := phttp.NewServer(cfg.MayString("ADDR", ":8085"))
	r := srv.Router()
	r.Use(
		middleware.RequestUUID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.AccessLog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond}),
		middleware.NewMetrics("reports", nil).Middleware(),
		middleware.Heartbeat("/health"),
	)
	r.Handle("/metrics", middleware.PromHandler())

	reporthttp.Mount(r, reports, logs, auth)

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
