package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/damon-houk/payment-query-service/internal/bootstrap"
	"github.com/damon-houk/payment-query-service/internal/config"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/gateway"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, _ := cfg.Level()
	appLogger := logger.NewJSONLogger(os.Stdout, level)
	logger.SetDefaultLogger(appLogger)

	app, err := bootstrap.New(context.Background(), cfg, appLogger)
	if err != nil {
		log.Fatalf("failed to assemble service: %v", err)
	}

	processor := gateway.NewProcessor(app.Handler, gateway.WithLogger(appLogger))

	lambda.Start(processor.Handle)
}
