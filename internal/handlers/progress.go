package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/requestdata"
	"github.com/lingovia/lingovia-backend/internal/services"
)

type ProgressHandler struct {
	log             *logger.Logger
	progressService services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:             log.With("handler", "ProgressHandler"),
		progressService: progressService,
	}
}

func (h *ProgressHandler) GetUserProgress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	progress, err := h.progressService.GetUserProgress(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("GetUserProgress failed", "error", err, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user_progress": progress})
}

type setActiveCourseRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

func (h *ProgressHandler) SetActiveCourse(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req setActiveCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	progress, err := h.progressService.SetActiveCourse(c.Request.Context(), rd.UserID, req.CourseID)
	if err != nil {
		h.log.Error("SetActiveCourse failed", "error", err, "user_id", rd.UserID, "course_id", req.CourseID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user_progress": progress})
}

func (h *ProgressHandler) ListCourses(c *gin.Context) {
	courses, err := h.progressService.GetCourses(c.Request.Context())
	if err != nil {
		h.log.Error("ListCourses failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"courses": courses})
}

func (h *ProgressHandler) GetUnits(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	units, err := h.progressService.GetUnits(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("GetUnits failed", "error", err, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"units": units})
}

func (h *ProgressHandler) GetCourseProgress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	cp, err := h.progressService.GetCourseProgress(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("GetCourseProgress failed", "error", err, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"course_progress": cp})
}
