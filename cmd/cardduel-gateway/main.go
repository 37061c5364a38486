// cardduel-gateway is the public edge: it terminates TLS, applies CORS and
// routes each API prefix to the owning service
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
	"cardduel/internal/services/gateway"
)

func main() {
	_ = godotenv.Load()
	logger.Init(logger.FromEnv())
	log := logger.Named("gateway")

	root := config.New()
	cfg := root.Prefix("GATEWAY_")

	proxy, err := gateway.New(gateway.Backends{
		Identity: cfg.MustString("IDENTITY_URL"),
		Cards:    cfg.MustString("CARDS_URL"),
		Games:    cfg.MustString("GAMES_URL"),
		Reports:  cfg.MustString("REPORTS_URL"),
	}, root.MayString("GATEWAY_SERVICE_API_KEY", ""), *log)
	if err != nil {
		log.Fatal().Err(err).Msg("build proxy")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []phttp.Option
	if cert := cfg.MayString("TLS_CERT", ""); cert != "" {
		opts = append(opts, phttp.WithTLSFiles(cert, cfg.MustString("TLS_KEY")))
	}

	srv := phttp.NewServer(cfg.MayString("ADDR", ":8080"), opts...)
	r := srv.Router()
	r.Use(
		middleware.RequestUUID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.AccessLog(middleware.AccessLogOptions{Slow: time.Second}),
		middleware.NewMetrics("gateway", nil).Middleware(),
		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins:   cfg.MayCSV("CORS_ORIGINS", []string{"*"}),
			AllowCredentials: cfg.MayBool("CORS_CREDENTIALS", false),
			MaxAge:           300,
		}),
	)
	r.Handle("/metrics", middleware.PromHandler())

	gateway.MountDocs(r)
	gateway.Mount(r, proxy)

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
