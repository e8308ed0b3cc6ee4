package transport

import (
	"net/http"
	"path/filepath"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/gin-gonic/gin"
)

func (h *GeneratorHandler) Generate(c *gin.Context) {
	var req entity.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sample, err := h.service.Generate(c.Request.Context(), req.Index, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(sample))
}

func (h *GeneratorHandler) Replay(c *gin.Context) {
	var req entity.ReplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sample, err := h.service.Replay(c.Request.Context(), req.Plan)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(sample))
}

func (h *GeneratorHandler) GetSample(c *gin.Context) {
	sample, err := h.service.GetSample(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sample)
}

func (h *GeneratorHandler) GetSampleImage(c *gin.Context) {
	id := c.Param("id")
	sample, err := h.service.GetSample(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if sample.Status != entity.StatusRendered {
		c.JSON(http.StatusConflict, gin.H{"error": "sample has no image", "status": sample.Status})
		return
	}

	c.File(filepath.Join(h.storagePath, h.service.ImagePath(id)))
}

func (h *GeneratorHandler) DeleteSample(c *gin.Context) {
	if err := h.service.DeleteSample(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sample deleted successfully"})
}

func (h *GeneratorHandler) ResourceHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ResourceHealth())
}

func toResponse(s *entity.Sample) entity.SampleResponse {
	return entity.SampleResponse{
		ID:     s.ID,
		Status: s.Status,
		Width:  s.Width,
		Height: s.Height,
		Boxes:  s.Boxes,
	}
}
