// cardduel-games coordinates invitations, deck selection, the turn loop,
// tiebreakers and archival. Live rows and archives live behind the
// persistence adapter; decks are materialized by the cards service
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
	"cardduel/internal/services/games/archive"
	gamehttp "cardduel/internal/services/games/http"
	"cardduel/internal/services/games/service"
)

func main() {
	_ = godotenv.Load()
	logger.Init(logger.FromEnv())
	log := logger.Named("games")

	root := config.New()
	cfg := root.Prefix("GAMES_")

	ring := trust.FromConfig(root, "identity", "cards", "games", "reports")
	ownKey, _ := ring.Key("games")

	sealer, err := archive.NewSealer(cfg.MustKey32("HISTORY_KEY"))
	if err != nil {
		log.Fatal().Err(err).Msg("history key")
	}

	storeClient := rpcclient.New(cfg.MustString("STORE_URL"), ownKey)
	cardsClient := rpcclient.New(cfg.MustString("CARDS_URL"), ownKey)
	identityClient := rpcclient.New(cfg.MustString("IDENTITY_URL"), ownKey)

	svc := service.New(
		rpcclient.NewGameStore(storeClient),
		rpcclient.NewArchive(storeClient),
		rpcclient.NewDeckSource(cardsClient),
		rpcclient.NewRoster(storeClient),
		sealer,
		rpcclient.NewRecorder(storeClient),
		*log,
	)
	auth := rpcclient.NewAuth(identityClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := phttp.NewServer(cfg.MayString("ADDR", ":8084"))
	r := srv.Router()
	r.Use(
		middleware.RequestUUID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.AccessLog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond}),
		middleware.NewMetrics("games", nil).Middleware(),
		middleware.Heartbeat("/health"),
		middleware.BodyLimit(1<<20),
	)
	r.Handle("/metrics", middleware.PromHandler())

	gamehttp.Mount(r, svc, auth)

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
