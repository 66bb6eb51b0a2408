package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string
	Location    *time.Location

	// Guaraní (sistema registral externo)
	GuaraniAPIURL  string
	GuaraniTimeout time.Duration
	CarrerasTTL    time.Duration

	// Sincronización de inscripciones hacia la base local
	SyncInscripcionesInterval time.Duration
}

func Load() (*Config, error) {
	tz := getenv("TZ", "America/Argentina/Buenos_Aires")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	cfg := &Config{
		DatabaseURL:               mustEnv("DATABASE_URL"),
		HTTPAddr:                  getenv("HTTP_ADDR", ":8080"),
		LogLevel:                  getenv("LOG_LEVEL", "info"),
		Env:                       getenv("ENV", "dev"),
		SentryDSN:                 os.Getenv("SENTRY_DSN"),
		Location:                  loc,
		GuaraniAPIURL:             mustEnv("GUARANI_API_URL"),
		GuaraniTimeout:            duration("GUARANI_TIMEOUT", 10*time.Second),
		CarrerasTTL:               duration("CARRERAS_TTL", 12*time.Hour),
		SyncInscripcionesInterval: duration("SYNC_INSCRIPCIONES_INTERVAL", time.Hour),
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", k, err))
	}
	return d
}
