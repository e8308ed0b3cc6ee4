package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"sync"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/generator"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/sampler"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Health records are keyed by resource kind so a font and a background
// with the same file name do not share a score.
func fontID(name string) string { return "font/" + name }
func backgroundID(name string) string { return "background/" + name }

func (s *generatorService) Generate(ctx context.Context, index uint64, text string) (*entity.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plan, err := s.plan(index, text)
	if err != nil {
		return nil, err
	}
	return s.renderAndSave(uuid.New().String(), index, plan)
}

// GenerateBatch renders texts[i] as unit start+i on a bounded pool. A
// failed unit is counted and logged; only cancellation stops the batch.
func (s *generatorService) GenerateBatch(ctx context.Context, texts []string, start uint64) (*entity.BatchReport, error) {
	report := &entity.BatchReport{Requested: len(texts)}
	ids := make([]string, len(texts))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, text := range texts {
		index := start + uint64(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sample, err := s.Generate(ctx, index, text)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				logrus.WithError(err).WithField("index", index).Error("Sample failed")
				return nil
			}
			report.Rendered++
			ids[i] = sample.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	for _, id := range ids {
		if id != "" {
			report.SampleIDs = append(report.SampleIDs, id)
		}
	}
	logrus.WithFields(logrus.Fields{
		"requested": report.Requested,
		"rendered":  report.Rendered,
		"failed":    report.Failed,
	}).Info("Batch finished")
	return report, nil
}

// Publish plans the unit and sends it to the render topic instead of
// rendering it here.
func (s *generatorService) Publish(ctx context.Context, index uint64, text string) (*entity.RenderTask, error) {
	plan, err := s.plan(index, text)
	if err != nil {
		return nil, err
	}
	m, err := plan.ToMap()
	if err != nil {
		return nil, err
	}
	task := &entity.RenderTask{SampleID: uuid.New().String(), Index: index, Plan: m}
	if err := s.producer.SendMessage(ctx, task.SampleID, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *generatorService) Replay(ctx context.Context, planMap map[string]any) (*entity.Sample, error) {
	return s.ProcessTask(ctx, entity.RenderTask{SampleID: uuid.New().String(), Plan: planMap})
}

func (s *generatorService) ProcessTask(ctx context.Context, task entity.RenderTask) (*entity.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plan, err := generator.PlanFromMap(task.Plan)
	if err != nil {
		return nil, err
	}
	return s.renderAndSave(task.SampleID, task.Index, plan)
}

func (s *generatorService) renderAndSave(id string, index uint64, plan generator.Plan) (*entity.Sample, error) {
	planMap, err := plan.ToMap()
	if err != nil {
		return nil, err
	}
	sample := &entity.Sample{
		ID:         id,
		Index:      index,
		Text:       plan.Text,
		Font:       plan.Font,
		Background: plan.Background,
		Plan:       planMap,
		Boxes:      entity.Boxes{},
	}

	img, boxes, renderErr := s.renderer.Render(plan)
	s.recordOutcome(plan, renderErr)

	var out image.Image
	if renderErr != nil {
		sample.Status = entity.StatusFailed
		sample.Error = renderErr.Error()
	} else {
		sample.Status = entity.StatusRendered
		sample.Width, sample.Height = img.Bounds().Dx(), img.Bounds().Dy()
		sample.Boxes = boxes
		out = img
	}

	if err := s.repo.Save(sample, out); err != nil {
		return nil, fmt.Errorf("save sample %s: %w", id, err)
	}
	if renderErr != nil {
		return sample, renderErr
	}
	return sample, nil
}

// recordOutcome feeds the render result back into resource health. Bad
// plans say nothing about the resources and are not counted.
func (s *generatorService) recordOutcome(plan generator.Plan, err error) {
	if errors.Is(err, entity.ErrInvalidArgument) {
		return
	}
	ids := []string{fontID(plan.Font)}
	if plan.Background != "" {
		ids = append(ids, backgroundID(plan.Background))
	}
	for _, id := range ids {
		if err != nil {
			s.tracker.RecordFailure(id)
		} else {
			s.tracker.RecordSuccess(id)
		}
	}
}

func (s *generatorService) GetSample(id string) (*entity.Sample, error) {
	return s.repo.FindByID(id)
}

func (s *generatorService) DeleteSample(id string) error {
	return s.repo.Delete(id)
}

func (s *generatorService) ImagePath(id string) string {
	return s.repo.ImagePath(id)
}

func (s *generatorService) ResourceHealth() map[string]int {
	return s.tracker.Snapshot()
}

// plan picks a font and a background for the index-th unit and samples
// its plan. Selection draws from the unit's own stream, so the choice does
// not depend on which worker runs it, only on the health seen so far.
func (s *generatorService) plan(index uint64, text string) (generator.Plan, error) {
	rng := sampler.NewRand(s.planner.Seed(index), sampler.SelectionStream)

	font, err := s.pick(rng, s.library.FontNames(), fontID)
	if err != nil {
		return generator.Plan{}, fmt.Errorf("select font: %w", err)
	}

	background, err := s.pick(rng, s.library.BackgroundNames(), backgroundID)
	switch {
	case errors.Is(err, errNoneLoaded):
		background = ""
	case errors.Is(err, entity.ErrResourceUnavailable):
		logrus.WithField("index", index).Warn("No healthy background, using transparent canvas")
		background = ""
	case err != nil:
		return generator.Plan{}, fmt.Errorf("select background: %w", err)
	}

	return s.planner.Plan(index, text, font, background)
}

var errNoneLoaded = fmt.Errorf("%w: none loaded", entity.ErrResourceUnavailable)

func (s *generatorService) pick(rng *rand.Rand, names []string, id func(string) string) (string, error) {
	if len(names) == 0 {
		return "", errNoneLoaded
	}
	ids := make([]string, len(names))
	byID := make(map[string]string, len(names))
	for i, n := range names {
		ids[i] = id(n)
		byID[ids[i]] = n
	}

	available := s.tracker.Available(ids)
	if len(available) == 0 {
		return "", fmt.Errorf("%w: all %d below health threshold", entity.ErrResourceUnavailable, len(ids))
	}
	chosen, err := s.tracker.Select(rng, available)
	if err != nil {
		return "", err
	}
	return byID[chosen], nil
}
