package transport

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ds124wfegd/ocrsynth/internal/database"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/assets"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/generator"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/health"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/storage"
	"github.com/ds124wfegd/ocrsynth/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopProducer struct{}

func (nopProducer) SendMessage(context.Context, string, any) error { return nil }
func (nopProducer) Close() error { return nil }

func TestSampleRoutesRejectPathIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	fs := storage.NewFileStorage(dir)
	require.NoError(t, fs.Save("fonts/keep.ttf", strings.NewReader("x")))

	planner, err := generator.NewPlanner(generator.DefaultSpecification(), 1)
	require.NoError(t, err)
	svc := service.NewGeneratorService(database.NewSampleRepository(fs), nopProducer{}, planner, assets.NewLibrary(), health.NewTracker(), 1)
	router := InitRoutes(NewGeneratorHandler(svc, dir))

	for _, id := range []string{"..", ".", "not-a-uuid"} {
		w := do(router, http.MethodDelete, "/sample/"+id, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "delete %q", id)

		w = do(router, http.MethodGet, "/sample/"+id, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "get %q", id)
	}

	_, err = os.Stat(filepath.Join(dir, "fonts", "keep.ttf"))
	assert.NoError(t, err)

	w := do(router, http.MethodPost, "/generate", `{"text":"kept","index":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
}
