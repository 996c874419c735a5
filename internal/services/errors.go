package services

import "errors"

// Gating errors are recoverable: handlers map them to a prompt (buy hearts,
// earn points) rather than a failure page.
var (
	ErrUserProgressNotFound = errors.New("user progress not found")
	ErrChallengeNotFound    = errors.New("challenge not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrInsufficientHearts   = errors.New("insufficient hearts")
	ErrInsufficientPoints   = errors.New("insufficient points")
	ErrHeartsAlreadyFull    = errors.New("hearts already full")
	ErrInvalidPlan          = errors.New("invalid subscription plan")
)
