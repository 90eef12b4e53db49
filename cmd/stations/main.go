package main

import (
	"context"
	"net/http"
	"os"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bbernstein/chargemap/internal/api"
	"github.com/bbernstein/chargemap/internal/app"
	"github.com/bbernstein/chargemap/internal/config"
	"github.com/bbernstein/chargemap/internal/handler"
	"github.com/rs/zerolog/log"
)

var (
	lambdaStart     = lambda.Start // Allow mocking of lambda.Start in tests
	stationsHandler *handler.StationsHandler
	setupOnce       sync.Once
	setupErr        error
)

func setup(ctx context.Context) {
	setupOnce.Do(func() {
		cfg, err := config.Load(ctx, os.Getenv("CONFIG_FILE"))
		if err != nil {
			setupErr = err
			return
		}
		cfg.InitializeLogging()

		log.Info().Str("env", cfg.Environment).Msg("Environment")

		pipeline, err := app.NewPipeline(cfg)
		if err != nil {
			setupErr = err
			return
		}
		stationsHandler = handler.NewStationsHandler(pipeline)
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	setup(ctx)
	if setupErr != nil {
		log.Error().Err(setupErr).Msg("Lambda setup failed")
		return api.Error("Service not configured", http.StatusInternalServerError)
	}
	return stationsHandler.HandleRequest(ctx, request)
}

func main() {
	lambdaStart(handleRequest)
}
