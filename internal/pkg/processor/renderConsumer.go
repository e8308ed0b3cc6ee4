// Package processor consumes render tasks from Kafka and hands them to a
// TaskHandler.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type TaskHandler interface {
	ProcessTask(ctx context.Context, task entity.RenderTask) (*entity.Sample, error)
}

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type RenderConsumer struct {
	reader  messageReader
	handler TaskHandler
	workers int
}

func NewRenderConsumer(brokers []string, topic, groupID string, handler TaskHandler, workers int) *RenderConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
	return newRenderConsumer(reader, handler, workers)
}

func newRenderConsumer(reader messageReader, handler TaskHandler, workers int) *RenderConsumer {
	return &RenderConsumer{reader: reader, handler: handler, workers: max(1, workers)}
}

// Run reads until ctx is cancelled, rendering at most workers tasks at a
// time. It waits for in-flight tasks before returning.
func (c *RenderConsumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	defer wg.Wait()

	logrus.WithField("workers", c.workers).Info("Render consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				logrus.Info("Render consumer stopped")
				return nil
			}
			logrus.WithError(err).Error("Error reading message from Kafka")
			continue
		}

		task, err := decodeTask(msg)
		if err != nil {
			logrus.WithError(err).WithField("offset", msg.Offset).Error("Skipping message")
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil
		}
		wg.Add(1)
		go func(t entity.RenderTask) {
			defer wg.Done()
			defer func() { <-sem }()
			c.handle(ctx, t)
		}(task)
	}
}

func (c *RenderConsumer) handle(ctx context.Context, task entity.RenderTask) {
	log := logrus.WithFields(logrus.Fields{"sample_id": task.SampleID, "index": task.Index})
	sample, err := c.handler.ProcessTask(ctx, task)
	if err != nil {
		log.WithError(err).Error("Render failed")
		return
	}
	log.WithField("boxes", len(sample.Boxes)).Info("Rendered sample")
}

func decodeTask(msg kafka.Message) (entity.RenderTask, error) {
	var task entity.RenderTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		return task, fmt.Errorf("%w: parse task: %v", entity.ErrInvalidArgument, err)
	}
	if task.SampleID == "" && len(msg.Key) > 0 {
		task.SampleID = string(msg.Key)
	}
	if task.SampleID == "" || task.Plan == nil {
		return task, fmt.Errorf("%w: task without sample id or plan", entity.ErrInvalidArgument)
	}
	return task, nil
}
