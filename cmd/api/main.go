package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"stayfinder/internal/adapters/booking"
	server "stayfinder/internal/adapters/http_server"
	"stayfinder/internal/adapters/observability"
	openaiinf "stayfinder/internal/adapters/openai"
	redisad "stayfinder/internal/adapters/redis"
	"stayfinder/internal/app"
	"stayfinder/internal/domain"
	"stayfinder/internal/shared"
	mysqlrepo "stayfinder/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// external clients: absent credentials mean the deterministic
	// strategies serve everything
	var inf domain.InferenceClient
	if cfg.OpenAIKey != "" {
		c, err := openaiinf.New(cfg.OpenAIKey, cfg.OpenAIModel)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize inference client")
		}
		inf = c
	}
	var inv domain.InventoryClient
	if cfg.BookingKey != "" {
		c, err := booking.New(cfg.BookingBase, cfg.BookingKey, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize booking client")
		}
		inv = c
	}

	// deps
	store := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	svc := app.NewRecommendationService(
		app.NewExtractor(inf),
		app.NewProvider(inv),
		app.NewRanker(inf),
		store, cache, cfg.ParamsTTL,
	)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{R: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
