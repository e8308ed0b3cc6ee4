package generator

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/augment"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/sampler"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/textlayout"
	"github.com/go-viper/mapstructure/v2"
)

const PlanVersion = 1

// Plan holds every value needed to regenerate one image. Plans are
// built once by a Planner and never modified afterwards.
type Plan struct {
	Version    int               `json:"version"`
	Seed       uint64            `json:"seed"`
	Text       string            `json:"text"`
	Font       string            `json:"font"`
	Background string            `json:"background,omitempty"`
	Layout     textlayout.Params `json:"layout"`
	Augment    augment.Params    `json:"augment"`
}

func (p Plan) Validate() error {
	if p.Version != PlanVersion {
		return fmt.Errorf("%w: plan version %d, want %d", entity.ErrInvalidArgument, p.Version, PlanVersion)
	}
	if p.Seed > sampler.MaxSeed {
		return fmt.Errorf("%w: plan seed %d does not fit in 53 bits", entity.ErrInvalidArgument, p.Seed)
	}
	if p.Font == "" {
		return fmt.Errorf("%w: plan has no font", entity.ErrInvalidArgument)
	}
	if err := p.Layout.Validate(); err != nil {
		return err
	}
	return p.Augment.Validate()
}

// ToMap flattens the plan into plain data: maps, slices, strings, bools
// and float64 numbers.
func (p Plan) ToMap() (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	return m, nil
}

// PlanFromMap is the inverse of ToMap. Numbers may be float64, any Go
// integer type or json.Number. Unknown keys are rejected.
func PlanFromMap(m map[string]any) (Plan, error) {
	var p Plan
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		DecodeHook:  jsonNumberHook,
		Result:      &p,
	})
	if err != nil {
		return Plan{}, err
	}
	if err := dec.Decode(m); err != nil {
		return Plan{}, fmt.Errorf("%w: decode plan: %v", entity.ErrInvalidArgument, err)
	}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

func jsonNumberHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return n.Int64()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(n.String(), 10, 64)
	}
	return n.Float64()
}
