package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/requestdata"
	"github.com/lingovia/lingovia-backend/internal/services"
)

type LessonHandler struct {
	log             *logger.Logger
	progressService services.ProgressService
}

func NewLessonHandler(log *logger.Logger, progressService services.ProgressService) *LessonHandler {
	return &LessonHandler{
		log:             log.With("handler", "LessonHandler"),
		progressService: progressService,
	}
}

// GetLesson serves both /me/lesson (active lesson) and /me/lesson/:id.
func (h *LessonHandler) GetLesson(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var lessonID *uuid.UUID
	if raw := c.Param("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_lesson_id", err)
			return
		}
		lessonID = &id
	}

	lesson, err := h.progressService.GetLesson(c.Request.Context(), rd.UserID, lessonID)
	if err != nil {
		h.log.Error("GetLesson failed", "error", err, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"lesson": lesson})
}

func (h *LessonHandler) GetLessonPercentage(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	pct, err := h.progressService.GetLessonPercentage(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("GetLessonPercentage failed", "error", err, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"percentage": pct})
}
