// Kafka entry point: replays the plans published by the generator
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ds124wfegd/ocrsynth/config"
	"github.com/ds124wfegd/ocrsynth/internal/appServer"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/processor"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.SetOutput(os.Stdout)

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}
	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	app, err := appServer.NewApp(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize app: %v", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	consumer := processor.NewRenderConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, app.Service, cfg.Generator.Workers)
	if err := consumer.Run(ctx); err != nil {
		logrus.Errorf("Render consumer failed: %v", err)
	}
}
