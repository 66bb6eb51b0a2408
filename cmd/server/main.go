package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mlorenzatti/turnero-campus/internal/app"
	"github.com/mlorenzatti/turnero-campus/internal/catalogo"
	"github.com/mlorenzatti/turnero-campus/internal/config"
	"github.com/mlorenzatti/turnero-campus/internal/db"
	"github.com/mlorenzatti/turnero-campus/internal/guarani"
	"github.com/mlorenzatti/turnero-campus/internal/jobs"
	"github.com/mlorenzatti/turnero-campus/internal/logging"
	"github.com/mlorenzatti/turnero-campus/internal/observability"
	"github.com/mlorenzatti/turnero-campus/internal/turnos"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no se pudo cargar .env, usamos las variables de entorno")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "turnero-campus")
	if err != nil {
		lg.Sugar.Warnw("sentry deshabilitado", "error", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Abrir(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Sugar.Fatalw("no se pudo conectar a la base", "error", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		lg.Sugar.Fatalw("migración fallida", "error", err)
	}

	store := db.New(database, cfg.Location)
	cliente := guarani.NewClient(cfg.GuaraniAPIURL, cfg.GuaraniTimeout)
	cache := guarani.NewCacheCarreras(cliente, cfg.CarrerasTTL, lg.Sugar)

	servicioCatalogo := catalogo.New(store, cache, lg.Sugar)
	servicioTurnos := turnos.New(store, store, store, lg.Sugar)
	api := app.NewAPI(servicioCatalogo, servicioTurnos, cfg.Location, lg.Sugar)

	runner := jobs.New(ctx)
	runner.Every(cfg.SyncInscripcionesInterval, "sync_inscripciones",
		jobs.SincronizarInscripciones(store, cliente, cfg.SyncInscripcionesInterval, lg.Sugar))

	app.StartHTTP(ctx, cfg.HTTPAddr, database, api)
	lg.Sugar.Infow("turnero levantado", "addr", cfg.HTTPAddr, "env", cfg.Env)

	<-ctx.Done()
	lg.Sugar.Info("apagando")
}
