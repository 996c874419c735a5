package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/services"
)

type AudioHandler struct {
	log          *logger.Logger
	audioService services.AudioService
}

func NewAudioHandler(log *logger.Logger, audioService services.AudioService) *AudioHandler {
	return &AudioHandler{
		log:          log.With("handler", "AudioHandler"),
		audioService: audioService,
	}
}

type resolveAudioRequest struct {
	Texts        []string `json:"texts" binding:"required,min=1"`
	LanguageCode string   `json:"language_code" binding:"required"`
}

// ResolveAudio resolves a batch of texts to playable URLs. Per-text failures
// are reported inline so one bad item does not sink the batch.
func (h *AudioHandler) ResolveAudio(c *gin.Context) {
	var req resolveAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	results := make([]services.AudioResult, 0, len(req.Texts))
	for _, text := range req.Texts {
		results = append(results, h.audioService.ResolveAudio(c.Request.Context(), text, req.LanguageCode))
	}
	RespondOK(c, gin.H{"results": results})
}
