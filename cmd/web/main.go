package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"hbnb_web/internal/adapters/hbnbapi"
	"hbnb_web/internal/adapters/observability"
	redisad "hbnb_web/internal/adapters/redis"
	"hbnb_web/internal/adapters/web"
	"hbnb_web/internal/app"
	"hbnb_web/internal/session"
	"hbnb_web/internal/shared"
)

func main() {
	ctx := context.Background()

	cfg, err := shared.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// deps
	api, err := hbnbapi.New(cfg.APIBase, cfg.APIRPS)
	if err != nil {
		log.Fatal().Err(err).Str("base", cfg.APIBase).Msg("backend client init failed")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	q := app.NewQueryService(api, cache, cfg.CacheTTL)
	c := app.NewCommandService(api, cache, cfg.ConfirmTTL)
	am := app.NewAmenityLoader(api, cache, cfg.CacheTTL)

	// http
	srv := web.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(web.NewHandlers(session.NewStore(), q, c, am))

	log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.APIBase).Msg("gateway listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
