package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/storage"
	"github.com/google/uuid"
)

func NewSampleRepository(storage storage.FileStorage) SampleRepository {
	return &fileSampleRepository{storage: storage}
}

// checkID only lets canonical uuids through, the form the service issues.
// Anything else could name a path outside the sample's own directory.
func checkID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return fmt.Errorf("%w: sample id %q", entity.ErrInvalidArgument, id)
	}
	return nil
}

// Save writes the image first and the metadata last, so a sample that
// can be found always has its files. img may be nil for failed samples.
func (r *fileSampleRepository) Save(sample *entity.Sample, img image.Image) error {
	if err := checkID(sample.ID); err != nil {
		return err
	}
	if img != nil {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return fmt.Errorf("encode sample %s: %w", sample.ID, err)
		}
		if err := r.storage.Save(r.ImagePath(sample.ID), &buf); err != nil {
			return err
		}
	}

	if err := r.saveJSON(r.samplePath(sample.ID, "plan.json"), sample.Plan); err != nil {
		return err
	}
	if err := r.saveJSON(r.samplePath(sample.ID, "boxes.json"), sample.Boxes); err != nil {
		return err
	}
	return r.saveJSON(r.samplePath(sample.ID, "sample.json"), sample)
}

func (r *fileSampleRepository) saveJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.storage.Save(name, bytes.NewReader(data))
}

func (r *fileSampleRepository) FindByID(id string) (*entity.Sample, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	reader, err := r.storage.Get(r.samplePath(id, "sample.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entity.ErrSampleNotFound, id)
		}
		return nil, err
	}
	defer reader.Close()

	var sample entity.Sample
	if err := json.NewDecoder(reader).Decode(&sample); err != nil {
		return nil, err
	}
	return &sample, nil
}

func (r *fileSampleRepository) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := r.storage.Delete(path.Join("samples", id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", entity.ErrSampleNotFound, id)
		}
		return err
	}
	return nil
}

func (r *fileSampleRepository) ImagePath(id string) string {
	return r.samplePath(id, "image.png")
}

func (r *fileSampleRepository) samplePath(id, name string) string {
	return path.Join("samples", id, name)
}
