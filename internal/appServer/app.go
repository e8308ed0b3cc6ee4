package appServer

import (
	"context"
	"fmt"

	"github.com/ds124wfegd/ocrsynth/config"
	"github.com/ds124wfegd/ocrsynth/internal/database"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/assets"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/generator"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/health"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/kafka"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/storage"
	"github.com/ds124wfegd/ocrsynth/internal/service"
	"github.com/ds124wfegd/ocrsynth/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// App is the set of components every entry point shares: the server, the
// batch generator and the Kafka renderer.
type App struct {
	Service service.GeneratorService

	producer   kafka.Producer
	redis      *redis.Client
	stopWorker context.CancelFunc
	workerDone chan struct{}
}

func NewApp(cfg *config.Config) (*App, error) {
	fileStorage := storage.NewFileStorage(cfg.Storage.BasePath)

	library, err := assets.Load(fileStorage, cfg.Storage.FontDir, cfg.Storage.BackgroundDir)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}

	planner, err := generator.NewPlanner(cfg.Specification, cfg.Generator.Seed)
	if err != nil {
		return nil, fmt.Errorf("specification: %w", err)
	}

	app := &App{}
	tracker := health.NewTracker()

	if cfg.Redis.Enabled {
		app.redis = database.NewRedisClient(cfg.Redis)
		healthSync := worker.NewHealthSyncWorker(database.NewHealthRepository(app.redis), tracker, cfg.Redis.SyncInterval)
		if err := healthSync.Restore(context.Background()); err != nil {
			logrus.Errorf("Failed to restore resource health: %v. Starting fresh...", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		app.stopWorker = cancel
		app.workerDone = make(chan struct{})
		go func() {
			defer close(app.workerDone)
			healthSync.Start(ctx)
		}()
	} else {
		logrus.Warn("Redis disabled, resource health stays local to this process")
	}

	app.producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	repo := database.NewSampleRepository(fileStorage)
	app.Service = service.NewGeneratorService(repo, app.producer, planner, library, tracker, cfg.Generator.Workers)
	return app, nil
}

// Close stops the health sync (after its final store) and releases the
// connections.
func (a *App) Close() {
	if a.stopWorker != nil {
		a.stopWorker()
		<-a.workerDone
	}
	if err := a.producer.Close(); err != nil {
		logrus.Errorf("error closing producer: %s", err.Error())
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logrus.Errorf("error closing redis: %s", err.Error())
		}
	}
}
