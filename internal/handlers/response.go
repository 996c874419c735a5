package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lingovia/lingovia-backend/internal/platform/apierr"
	"github.com/lingovia/lingovia-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError translates domain sentinels into their HTTP shape.
// Gating conflicts come back as 409 so clients can show the matching prompt.
func RespondServiceError(c *gin.Context, err error) {
	apiErr := mapServiceError(err)
	RespondError(c, apiErr.Status, apiErr.Code, err)
}

func mapServiceError(err error) *apierr.Error {
	switch {
	case errors.Is(err, services.ErrUserProgressNotFound),
		errors.Is(err, services.ErrChallengeNotFound),
		errors.Is(err, services.ErrCourseNotFound):
		return apierr.New(http.StatusNotFound, "NOT_FOUND", err)
	case errors.Is(err, services.ErrInsufficientHearts):
		return apierr.New(http.StatusConflict, "INSUFFICIENT_HEARTS", err)
	case errors.Is(err, services.ErrInsufficientPoints):
		return apierr.New(http.StatusConflict, "INSUFFICIENT_POINTS", err)
	case errors.Is(err, services.ErrHeartsAlreadyFull):
		return apierr.New(http.StatusConflict, "ALREADY_FULL", err)
	case errors.Is(err, services.ErrInvalidPlan):
		return apierr.New(http.StatusConflict, "INVALID_PLAN", err)
	default:
		return apierr.New(http.StatusInternalServerError, "INTERNAL", err)
	}
}
