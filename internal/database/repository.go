package database

import (
	"context"
	"image"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// SampleRepository persists rendered samples: the PNG, the replayable
// plan, the boxes and the metadata record.
type SampleRepository interface {
	Save(sample *entity.Sample, img image.Image) error
	FindByID(id string) (*entity.Sample, error)
	Delete(id string) error
	ImagePath(id string) string
}

type fileSampleRepository struct {
	storage storage.FileStorage
}

// HealthRepository stores resource health scores shared between
// processes.
type HealthRepository interface {
	Load(ctx context.Context) (map[string]int, error)
	Store(ctx context.Context, scores map[string]int) error
}

type redisHealthRepository struct {
	client *redis.Client
	key    string
}
