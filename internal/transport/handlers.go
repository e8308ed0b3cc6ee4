package transport

import (
	"errors"
	"net/http"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/service"
	"github.com/gin-gonic/gin"
)

type GeneratorHandler struct {
	service     service.GeneratorService
	storagePath string
}

// storagePath is the directory the sample repository writes under; image
// downloads are served from there.
func NewGeneratorHandler(service service.GeneratorService, storagePath string) *GeneratorHandler {
	return &GeneratorHandler{service: service, storagePath: storagePath}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrSampleNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrResourceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}
