package database

import (
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRepository(t *testing.T) {
	fs := storage.NewFileStorage(t.TempDir())
	repo := NewSampleRepository(fs)
	id := uuid.New().String()

	sample := &entity.Sample{
		ID:     id,
		Index:  4,
		Status: entity.StatusRendered,
		Text:   "ab",
		Font:   "goregular",
		Width:  20,
		Height: 10,
		Boxes: entity.Boxes{
			{Char: "a", X0: 1, Y0: 1, X1: 8, Y1: 9},
			{Char: "b", X0: 10, Y0: 1, X1: 18, Y1: 9},
		},
		Plan: map[string]any{"seed": 12.0},
	}
	require.NoError(t, repo.Save(sample, imaging.New(20, 10, color.White)))

	assert.True(t, fs.Exists(repo.ImagePath(id)))
	assert.True(t, fs.Exists("samples/"+id+"/plan.json"))
	assert.True(t, fs.Exists("samples/"+id+"/boxes.json"))

	got, err := repo.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, sample, got)

	require.NoError(t, repo.Delete(id))
	_, err = repo.FindByID(id)
	assert.ErrorIs(t, err, entity.ErrSampleNotFound)
	assert.ErrorIs(t, repo.Delete(id), entity.ErrSampleNotFound)
}

func TestSampleRepositoryFailedSample(t *testing.T) {
	fs := storage.NewFileStorage(t.TempDir())
	repo := NewSampleRepository(fs)
	id := uuid.New().String()

	sample := &entity.Sample{ID: id, Status: entity.StatusFailed, Error: "boom", Boxes: entity.Boxes{}}
	require.NoError(t, repo.Save(sample, nil))
	assert.False(t, fs.Exists(repo.ImagePath(id)))

	got, err := repo.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, "boom", got.Error)
}

func TestSampleRepositoryRejectsNonUUIDs(t *testing.T) {
	fs := storage.NewFileStorage(t.TempDir())
	repo := NewSampleRepository(fs)
	require.NoError(t, fs.Save("fonts/keep.ttf", strings.NewReader("x")))

	for _, id := range []string{"..", ".", "", "../fonts", "samples", "urn:uuid:" + uuid.New().String()} {
		t.Run(id, func(t *testing.T) {
			assert.ErrorIs(t, repo.Delete(id), entity.ErrInvalidArgument)
			_, err := repo.FindByID(id)
			assert.ErrorIs(t, err, entity.ErrInvalidArgument)
			assert.ErrorIs(t, repo.Save(&entity.Sample{ID: id}, nil), entity.ErrInvalidArgument)
		})
	}
	assert.True(t, fs.Exists("fonts/keep.ttf"))
}
