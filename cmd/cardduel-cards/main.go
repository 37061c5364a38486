// cardduel-cards serves the card catalogue and the random draw surfaces.
// The catalogue is deterministic, so it lives in memory; at boot the service
// cross-checks it against the rows seeded by the persistence adapter
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
	"cardduel/internal/services/cards/catalog"
	cardhttp "cardduel/internal/services/cards/http"
	"cardduel/internal/services/cards/service"
)

func main() {
	_ = godotenv.Load()
	logger.Init(logger.FromEnv())
	log := logger.Named("cards")

	root := config.New()
	cfg := root.Prefix("CARDS_")

	ring := trust.FromConfig(root, "identity", "cards", "games", "reports")
	ownKey, _ := ring.Key("cards")

	cat := catalog.New(nil)
	svc := service.New(cat)

	identityClient := rpcclient.New(cfg.MustString("IDENTITY_URL"), ownKey)
	auth := rpcclient.NewAuth(identityClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// the seeded rows and the in-memory pool must agree on all 39 cards
	if storeURL := cfg.MayString("STORE_URL", ""); storeURL != "" {
		seeded := rpcclient.NewCatalog(rpcclient.New(storeURL, ownKey))
		verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := verifySeed(verifyCtx, cat, seeded); err != nil {
			log.Fatal().Err(err).Msg("catalogue does not match seeded rows")
		}
		cancel()
		log.Info().Msg("catalogue verified against store")
	}

	srv := phttp.NewServer(cfg.MayString("ADDR", ":8083"))
	r := srv.Router()
	r.Use(
		middleware.RequestUUID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.AccessLog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond}),
		middleware.NewMetrics("cards", nil).Middleware(),
		middleware.Heartbeat("/health"),
	)
	r.Handle("/metrics", middleware.PromHandler())

	cardhttp.MountPublic(r, svc, auth)
	cardhttp.MountPeer(r, svc, ring.Allow("games"))

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
