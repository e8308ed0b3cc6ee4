package service

import (
	"context"
	"image/color"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ocrsynth/internal/database"
	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/assets"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/generator"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/health"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	mu   sync.Mutex
	sent []any
}

func (p *fakeProducer) SendMessage(_ context.Context, _ string, message any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, message)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

type fixture struct {
	svc      GeneratorService
	repo     database.SampleRepository
	storage  storage.FileStorage
	tracker  *health.Tracker
	producer *fakeProducer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := storage.NewFileStorage(t.TempDir())
	repo := database.NewSampleRepository(fs)

	lib := assets.NewLibrary()
	lib.AddBackground("paper.png", imaging.New(80, 40, color.NRGBA{R: 240, G: 236, B: 220, A: 255}))

	planner, err := generator.NewPlanner(generator.DefaultSpecification(), 99)
	require.NoError(t, err)

	tracker := health.NewTracker()
	producer := &fakeProducer{}
	return &fixture{
		svc:      NewGeneratorService(repo, producer, planner, lib, tracker, 3),
		repo:     repo,
		storage:  fs,
		tracker:  tracker,
		producer: producer,
	}
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)

	sample, err := f.svc.Generate(context.Background(), 1, "hello")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRendered, sample.Status)
	assert.Len(t, sample.Boxes, 5)
	assert.Equal(t, assets.DefaultFont, sample.Font)
	assert.Equal(t, "paper.png", sample.Background)
	assert.True(t, f.storage.Exists(f.svc.ImagePath(sample.ID)))

	stored, err := f.svc.GetSample(sample.ID)
	require.NoError(t, err)
	assert.Equal(t, sample.Boxes, stored.Boxes)

	assert.Equal(t, health.MaxHealth, f.tracker.Health(fontID(assets.DefaultFont)))
	assert.Contains(t, f.svc.ResourceHealth(), backgroundID("paper.png"))
}

func TestGenerateIsReproducible(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Generate(context.Background(), 5, "same unit")
	require.NoError(t, err)
	b, err := f.svc.Generate(context.Background(), 5, "same unit")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Plan, b.Plan)
	assert.Equal(t, a.Boxes, b.Boxes)
}

func TestGenerateWithoutHealthyBackground(t *testing.T) {
	f := newFixture(t)
	for range 6 {
		f.tracker.RecordFailure(backgroundID("paper.png"))
	}

	sample, err := f.svc.Generate(context.Background(), 2, "plain")
	require.NoError(t, err)
	assert.Empty(t, sample.Background)
	assert.Equal(t, entity.StatusRendered, sample.Status)
}

func TestGenerateWithoutHealthyFont(t *testing.T) {
	f := newFixture(t)
	for range 6 {
		f.tracker.RecordFailure(fontID(assets.DefaultFont))
	}

	_, err := f.svc.Generate(context.Background(), 2, "nope")
	assert.ErrorIs(t, err, entity.ErrResourceUnavailable)
}

func TestGenerateBatch(t *testing.T) {
	f := newFixture(t)
	texts := []string{"alpha", "beta", "gamma", "delta", "epsilon"}

	report, err := f.svc.GenerateBatch(context.Background(), texts, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Requested)
	assert.Equal(t, 5, report.Rendered)
	assert.Zero(t, report.Failed)
	assert.Len(t, report.SampleIDs, 5)

	// the i-th unit matches a sequential run of the same index
	sequential, err := f.svc.Generate(context.Background(), 102, "gamma")
	require.NoError(t, err)
	batched, err := f.svc.GetSample(report.SampleIDs[2])
	require.NoError(t, err)
	assert.Equal(t, sequential.Plan, batched.Plan)
	assert.Equal(t, sequential.Boxes, batched.Boxes)
}

func TestGenerateBatchCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.svc.GenerateBatch(ctx, []string{"a", "b"}, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Rendered)
}

func TestReplay(t *testing.T) {
	f := newFixture(t)

	original, err := f.svc.Generate(context.Background(), 8, "replay me")
	require.NoError(t, err)

	replayed, err := f.svc.Replay(context.Background(), original.Plan)
	require.NoError(t, err)
	assert.NotEqual(t, original.ID, replayed.ID)
	assert.Equal(t, original.Boxes, replayed.Boxes)
	assert.Equal(t, original.Width, replayed.Width)
	assert.Equal(t, original.Height, replayed.Height)
}

func TestPublishAndProcess(t *testing.T) {
	f := newFixture(t)

	task, err := f.svc.Publish(context.Background(), 4, "queued")
	require.NoError(t, err)
	require.Len(t, f.producer.sent, 1)
	assert.Equal(t, task, f.producer.sent[0])

	sample, err := f.svc.ProcessTask(context.Background(), *task)
	require.NoError(t, err)
	assert.Equal(t, task.SampleID, sample.ID)
	assert.Equal(t, uint64(4), sample.Index)

	direct, err := f.svc.Generate(context.Background(), 4, "queued")
	require.NoError(t, err)
	assert.Equal(t, direct.Boxes, sample.Boxes)
}

func TestProcessTaskFailureLowersHealth(t *testing.T) {
	f := newFixture(t)

	task, err := f.svc.Publish(context.Background(), 4, "queued")
	require.NoError(t, err)
	task.Plan["font"] = "missing.ttf"

	sample, err := f.svc.ProcessTask(context.Background(), *task)
	assert.ErrorIs(t, err, entity.ErrResourceUnavailable)
	require.NotNil(t, sample)
	assert.Equal(t, entity.StatusFailed, sample.Status)
	assert.Equal(t, health.DefaultHealth-health.FailurePenalty, f.tracker.Health(fontID("missing.ttf")))

	stored, err := f.svc.GetSample(task.SampleID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, stored.Status)
}

func TestProcessTaskRejectsBadPlan(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ProcessTask(context.Background(), entity.RenderTask{SampleID: "x", Plan: map[string]any{"version": 1.0}})
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestDeleteSample(t *testing.T) {
	f := newFixture(t)
	sample, err := f.svc.Generate(context.Background(), 1, "bye")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSample(sample.ID))
	_, err = f.svc.GetSample(sample.ID)
	assert.ErrorIs(t, err, entity.ErrSampleNotFound)
}
