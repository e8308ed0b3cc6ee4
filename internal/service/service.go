package service

import (
	"context"

	"github.com/ds124wfegd/ocrsynth/internal/database"
	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/assets"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/generator"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/health"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/kafka"
)

type GeneratorService interface {
	Generate(ctx context.Context, index uint64, text string) (*entity.Sample, error)
	GenerateBatch(ctx context.Context, texts []string, start uint64) (*entity.BatchReport, error)
	Publish(ctx context.Context, index uint64, text string) (*entity.RenderTask, error)
	Replay(ctx context.Context, plan map[string]any) (*entity.Sample, error)
	ProcessTask(ctx context.Context, task entity.RenderTask) (*entity.Sample, error)
	GetSample(id string) (*entity.Sample, error)
	DeleteSample(id string) error
	ImagePath(id string) string
	ResourceHealth() map[string]int
}

type generatorService struct {
	repo     database.SampleRepository
	producer kafka.Producer
	planner  *generator.Planner
	renderer *generator.Renderer
	library  *assets.Library
	tracker  *health.Tracker
	workers  int
}

func NewGeneratorService(
	repo database.SampleRepository,
	producer kafka.Producer,
	planner *generator.Planner,
	library *assets.Library,
	tracker *health.Tracker,
	workers int,
) GeneratorService {
	return &generatorService{
		repo:     repo,
		producer: producer,
		planner:  planner,
		renderer: generator.NewRenderer(library),
		library:  library,
		tracker:  tracker,
		workers:  max(1, workers),
	}
}
