// Batch entry point: renders texts locally or publishes their plans to
// Kafka for the renderer to pick up.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ds124wfegd/ocrsynth/config"
	"github.com/ds124wfegd/ocrsynth/internal/appServer"
	"github.com/ds124wfegd/ocrsynth/internal/service"
	"github.com/sirupsen/logrus"
)

type options struct {
	textsFile string
	count     int
	start     uint64
	publish   bool
}

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

	opts := parseFlags(cfg.Generator)
	if err := run(cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "generator: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags lets the command line override the generator section of the
// config for one run.
func parseFlags(gc config.GeneratorConfig) options {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: go run ./cmd/generator [flags]\n")
		flag.PrintDefaults()
	}
	textsFile := flag.String("texts", gc.TextsFile, "File with one text per line")
	count := flag.Int("count", gc.Count, "Number of samples to generate")
	start := flag.Uint64("start", gc.Start, "Index of the first sample")
	publish := flag.Bool("publish", false, "Publish plans to Kafka instead of rendering locally")
	flag.Parse()

	return options{
		textsFile: *textsFile,
		count:     *count,
		start:     *start,
		publish:   *publish,
	}
}

func run(cfg *config.Config, opts options) error {
	f, err := os.Open(opts.textsFile)
	if err != nil {
		return fmt.Errorf("open texts: %w", err)
	}
	texts, err := readTexts(f, opts.count)
	f.Close()
	if err != nil {
		return err
	}

	app, err := appServer.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if opts.publish {
		return publish(ctx, app.Service, texts, opts.start)
	}

	report, err := app.Service.GenerateBatch(ctx, texts, opts.start)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		logrus.Warnf("%d of %d samples failed", report.Failed, report.Requested)
	}
	return nil
}

func publish(ctx context.Context, svc service.GeneratorService, texts []string, start uint64) error {
	published := 0
	for i, text := range texts {
		index := start + uint64(i)
		if _, err := svc.Publish(ctx, index, text); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logrus.WithError(err).WithField("index", index).Error("Failed to publish plan")
			continue
		}
		published++
	}
	logrus.WithFields(logrus.Fields{"requested": len(texts), "published": published}).Info("Plans published")
	return nil
}
