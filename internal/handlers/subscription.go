package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/requestdata"
	"github.com/lingovia/lingovia-backend/internal/services"
	"github.com/lingovia/lingovia-backend/internal/types"
)

type SubscriptionHandler struct {
	log                 *logger.Logger
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(log *logger.Logger, subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		log:                 log.With("handler", "SubscriptionHandler"),
		subscriptionService: subscriptionService,
	}
}

type purchaseSubscriptionRequest struct {
	Plan types.SubscriptionPlan `json:"plan" binding:"required"`
}

func (h *SubscriptionHandler) Purchase(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req purchaseSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	status, err := h.subscriptionService.Purchase(c.Request.Context(), rd.UserID, req.Plan)
	if err != nil {
		h.log.Error("Purchase failed", "error", err, "user_id", rd.UserID, "plan", req.Plan)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"subscription": status})
}

func (h *SubscriptionHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	status, err := h.subscriptionService.Get(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("Get subscription failed", "error", err, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"subscription": status})
}
