// Package assets keeps the fonts and backgrounds renders refer to by
// name. Everything is loaded up front so rendering never touches disk.
package assets

import (
	"fmt"
	"image"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/storage"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/textlayout"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFont is always present so a fresh library can render.
const DefaultFont = "goregular"

var (
	fontExts       = map[string]bool{".ttf": true, ".otf": true}
	backgroundExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true}
)

type Library struct {
	mu          sync.RWMutex
	fonts       map[string]*textlayout.Font
	backgrounds map[string]image.Image
}

func NewLibrary() *Library {
	l := &Library{
		fonts:       make(map[string]*textlayout.Font),
		backgrounds: make(map[string]image.Image),
	}
	// the embedded font always parses
	_ = l.AddFont(DefaultFont, goregular.TTF)
	return l
}

// Load reads every font under fontDir and every background under bgDir.
// Files that fail to parse are logged and skipped.
func Load(fs storage.FileStorage, fontDir, bgDir string) (*Library, error) {
	l := NewLibrary()

	fonts, err := fs.List(fontDir)
	if err != nil {
		return nil, fmt.Errorf("list fonts: %w", err)
	}
	for _, name := range fonts {
		if !fontExts[strings.ToLower(path.Ext(name))] {
			continue
		}
		data, err := readAll(fs, path.Join(fontDir, name))
		if err == nil {
			err = l.AddFont(name, data)
		}
		if err != nil {
			logrus.WithError(err).WithField("font", name).Warn("Skipping font")
		}
	}

	backgrounds, err := fs.List(bgDir)
	if err != nil {
		return nil, fmt.Errorf("list backgrounds: %w", err)
	}
	for _, name := range backgrounds {
		if !backgroundExts[strings.ToLower(path.Ext(name))] {
			continue
		}
		if err := l.loadBackground(fs, path.Join(bgDir, name), name); err != nil {
			logrus.WithError(err).WithField("background", name).Warn("Skipping background")
		}
	}

	logrus.WithFields(logrus.Fields{
		"fonts":       len(l.FontNames()),
		"backgrounds": len(l.BackgroundNames()),
	}).Info("Assets loaded")
	return l, nil
}

func readAll(fs storage.FileStorage, name string) ([]byte, error) {
	r, err := fs.Get(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (l *Library) loadBackground(fs storage.FileStorage, file, name string) error {
	r, err := fs.Get(file)
	if err != nil {
		return err
	}
	defer r.Close()
	return l.DecodeBackground(name, r)
}

func (l *Library) AddFont(name string, data []byte) error {
	f, err := textlayout.ParseFont(name, data)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.fonts[name] = f
	l.mu.Unlock()
	return nil
}

func (l *Library) AddBackground(name string, img image.Image) {
	l.mu.Lock()
	l.backgrounds[name] = img
	l.mu.Unlock()
}

// DecodeBackground decodes any format imaging understands, honouring
// EXIF orientation.
func (l *Library) DecodeBackground(name string, r io.Reader) error {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%w: decode background %s: %v", entity.ErrRenderFailure, name, err)
	}
	l.AddBackground(name, imaging.Clone(img))
	return nil
}

func (l *Library) Font(name string) (*textlayout.Font, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f, ok := l.fonts[name]
	if !ok {
		return nil, fmt.Errorf("%w: font %q", entity.ErrResourceUnavailable, name)
	}
	return f, nil
}

func (l *Library) Background(name string) (image.Image, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	img, ok := l.backgrounds[name]
	if !ok {
		return nil, fmt.Errorf("%w: background %q", entity.ErrResourceUnavailable, name)
	}
	return img, nil
}

func (l *Library) FontNames() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.fonts)
}

func (l *Library) BackgroundNames() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.backgrounds)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
