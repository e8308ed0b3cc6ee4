package textlayout

import (
	"fmt"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Font is a parsed font file. It is safe for concurrent use: every Layout
// call opens its own face.
type Font struct {
	Name string
	font *opentype.Font
}

func ParseFont(name string, data []byte) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse font %s: %v", entity.ErrRenderFailure, name, err)
	}
	return &Font{Name: name, font: f}, nil
}

// Face opens a face at size pixels.
func (f *Font) Face(size float64) (font.Face, error) {
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open face %s at %vpx: %v", entity.ErrRenderFailure, f.Name, size, err)
	}
	return face, nil
}
