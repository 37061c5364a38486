// cardduel-identity serves registration, login, refresh and the peer token
// validation surface. Account and session rows live behind the persistence
// adapter's rpc surface
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
	identhttp "cardduel/internal/services/identity/http"
	"cardduel/internal/services/identity/service"
	"cardduel/internal/services/identity/token"
)

func main() {
	_ = godotenv.Load()
	logger.Init(logger.FromEnv())
	log := logger.Named("identity")

	root := config.New()
	cfg := root.Prefix("IDENTITY_")

	ring := trust.FromConfig(root, "identity", "cards", "games", "reports")
	ownKey, _ := ring.Key("identity")

	storeClient := rpcclient.New(cfg.MustString("STORE_URL"), ownKey)
	accounts := rpcclient.NewAccounts(storeClient)
	sessions := rpcclient.NewSessions(storeClient)
	audit := rpcclient.NewRecorder(storeClient)

	issuer := token.NewIssuer(
		cfg.MustString("JWT_SECRET"),
		cfg.MayDuration("ACCESS_TTL", 24*time.Hour),
	)

	svc := service.New(accounts, sessions, issuer, audit, service.Config{
		LockoutThreshold: cfg.MayInt("LOCKOUT_THRESHOLD", 0),
		LockoutDuration:  cfg.MayDuration("LOCKOUT_DURATION", 0),
		RefreshTTL:       cfg.MayDuration("REFRESH_TTL", 0),
		BcryptCost:       cfg.MayInt("BCRYPT_COST", 0),
	}, *log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := phttp.NewServer(cfg.MayString("ADDR", ":8082"))
	r := srv.Router()
	r.Use(
		middleware.RequestUUID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.AccessLog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond}),
		middleware.NewMetrics("identity", nil).Middleware(),
		middleware.Heartbeat("/health"),
		middleware.BodyLimit(1<<20),
	)
	r.Handle("/metrics", middleware.PromHandler())

	identhttp.Mount(r, svc, issuer)
	identhttp.MountPeer(r, svc, ring.Allow("cards", "games", "reports"))

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
