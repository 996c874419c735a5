package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/services"
)

const defaultLeaderboardSize = 10

type LeaderboardHandler struct {
	log             *logger.Logger
	progressService services.ProgressService
}

func NewLeaderboardHandler(log *logger.Logger, progressService services.ProgressService) *LeaderboardHandler {
	return &LeaderboardHandler{
		log:             log.With("handler", "LeaderboardHandler"),
		progressService: progressService,
	}
}

func (h *LeaderboardHandler) GetTopUsers(c *gin.Context) {
	limit := defaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	users, err := h.progressService.GetTopUsers(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("GetTopUsers failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"leaderboard": users})
}
