package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bbernstein/chargemap/internal/app"
	"github.com/bbernstein/chargemap/internal/config"
	"github.com/bbernstein/chargemap/internal/handler"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE"    description:"Path or s3:// URL of a YAML configuration file"`
	EnvFile    string `long:"env-file"         env:"ENV_FILE"       description:"Dotenv file to load before reading the environment" default:".env"`
	Addr       string `short:"a" long:"addr"   env:"LISTEN_ADDRESS" description:"Address to listen on"                                 default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"   env:"LISTEN_PORT"    description:"Port to listen on"                                    default:"8080"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// A missing .env is normal outside local development.
	envLoadErr := godotenv.Load(opts.EnvFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg.InitializeLogging()

	if envLoadErr != nil {
		log.Debug().Err(envLoadErr).Str("path", opts.EnvFile).Msg("No dotenv file loaded")
	}

	pipeline, err := app.NewPipeline(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build station pipeline")
	}

	router := handler.NewRouter(handler.NewStationsHandler(pipeline))

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Addr, opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().
		Str("addr", srv.Addr).
		Str("env", cfg.Environment).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
	log.Info().Msg("Web server stopped")
}
