package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/requestdata"
	"github.com/lingovia/lingovia-backend/internal/services"
)

type EconomyHandler struct {
	log            *logger.Logger
	economyService services.EconomyService
}

func NewEconomyHandler(log *logger.Logger, economyService services.EconomyService) *EconomyHandler {
	return &EconomyHandler{
		log:            log.With("handler", "EconomyHandler"),
		economyService: economyService,
	}
}

func (h *EconomyHandler) CorrectAnswer(c *gin.Context) {
	h.applyAnswer(c, "CorrectAnswer", h.economyService.ApplyCorrectAnswer)
}

func (h *EconomyHandler) WrongAnswer(c *gin.Context) {
	h.applyAnswer(c, "WrongAnswer", h.economyService.ApplyWrongAnswer)
}

func (h *EconomyHandler) applyAnswer(
	c *gin.Context,
	op string,
	apply func(ctx context.Context, userID string, challengeID uuid.UUID) (*services.AttemptResult, error),
) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	challengeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_challenge_id", err)
		return
	}

	result, err := apply(c.Request.Context(), rd.UserID, challengeID)
	if err != nil {
		h.log.Error(op+" failed", "error", err, "user_id", rd.UserID, "challenge_id", challengeID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *EconomyHandler) RefillHearts(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	result, err := h.economyService.RefillHearts(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("RefillHearts failed", "error", err, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
