package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bbernstein/chargemap/internal/app"
	"github.com/bbernstein/chargemap/internal/config"
	"github.com/bbernstein/chargemap/internal/locator"
	"github.com/bbernstein/chargemap/internal/models"
	"github.com/bbernstein/chargemap/internal/render"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Lat        float64 `long:"lat"         required:"true" description:"Latitude of the current position"`
	Lon        float64 `long:"lon"         required:"true" description:"Longitude of the current position"`
	ConfigFile string  `short:"c" long:"config" env:"CONFIG_FILE" description:"Path or s3:// URL of a YAML configuration file"`
	Links      bool    `short:"l" long:"links"  description:"Print map and search links under each station"`
	Verbose    bool    `short:"v" long:"verbose" description:"Enable debug logging"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 2
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var extra []config.Option
	if opts.Verbose {
		extra = append(extra, config.WithLogLevel("debug"))
	}
	cfg, err := config.Load(ctx, opts.ConfigFile, extra...)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}
	cfg.InitializeLogging()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	pipeline, err := app.NewPipeline(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build station pipeline")
		return 1
	}

	l := locator.New(locator.Deps{
		Location:   locator.FixedLocation(models.Coordinate{Lat: opts.Lat, Lon: opts.Lon}),
		Reverse:    pipeline.Reverse,
		Translator: pipeline.Translator,
		Stations:   pipeline.Stations,
		Resolver:   pipeline.Resolver,
		Renderer:   render.NewConsole(os.Stdout, opts.Links),
	})

	if _, err := l.Locate(ctx); err != nil {
		return 1
	}
	return 0
}
