package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/types"
)

func newEconomyService(db *gorm.DB) EconomyService {
	r := newTestRepos(db)
	return NewEconomyService(db, logger.NewNop(), r.progress, r.attempt, r.sub, r.option, nil)
}

func firstChallengeID(t *testing.T, db *gorm.DB, courseID uuid.UUID) uuid.UUID {
	t.Helper()
	units := courseTree(t, db, courseID)
	return units[0].Lessons[0].Challenges[0].ID
}

func TestApplyCorrectAnswerFirstCompletionAwardsPoints(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)
	challengeID := firstChallengeID(t, db, course.ID)

	svc := newEconomyService(db)
	result, err := svc.ApplyCorrectAnswer(context.Background(), "user-1", challengeID)
	if err != nil {
		t.Fatalf("ApplyCorrectAnswer: %v", err)
	}
	if result.Points != ChallengePointReward {
		t.Fatalf("points: want=%d got=%d", ChallengePointReward, result.Points)
	}
	if result.Hearts != types.MaxHearts {
		t.Fatalf("hearts: want=%d got=%d", types.MaxHearts, result.Hearts)
	}

	var attempts []*types.ChallengeAttempt
	if err := db.Where("user_id = ? AND challenge_id = ?", "user-1", challengeID).Find(&attempts).Error; err != nil {
		t.Fatalf("load attempts: %v", err)
	}
	if len(attempts) != 1 || !attempts[0].Completed {
		t.Fatalf("expected one completed attempt, got %+v", attempts)
	}
}

func TestApplyCorrectAnswerPracticeHealsHeart(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)
	challengeID := firstChallengeID(t, db, course.ID)
	completeChallenge(t, db, "user-1", challengeID)
	setBalances(t, db, "user-1", 3, 40)

	svc := newEconomyService(db)
	result, err := svc.ApplyCorrectAnswer(context.Background(), "user-1", challengeID)
	if err != nil {
		t.Fatalf("ApplyCorrectAnswer: %v", err)
	}
	if result.Hearts != 4 {
		t.Fatalf("hearts: want=4 got=%d", result.Hearts)
	}
	if result.Points != 40 {
		t.Fatalf("points should not change on practice: want=40 got=%d", result.Points)
	}
}

func TestApplyCorrectAnswerPracticeAtFullHearts(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)
	challengeID := firstChallengeID(t, db, course.ID)
	completeChallenge(t, db, "user-1", challengeID)

	svc := newEconomyService(db)
	result, err := svc.ApplyCorrectAnswer(context.Background(), "user-1", challengeID)
	if err != nil {
		t.Fatalf("ApplyCorrectAnswer: %v", err)
	}
	if result.Hearts != types.MaxHearts {
		t.Fatalf("hearts must stay capped: want=%d got=%d", types.MaxHearts, result.Hearts)
	}
}

func TestApplyCorrectAnswerBlockedAtZeroHearts(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)
	challengeID := firstChallengeID(t, db, course.ID)
	setBalances(t, db, "user-1", 0, 0)

	svc := newEconomyService(db)
	_, err := svc.ApplyCorrectAnswer(context.Background(), "user-1", challengeID)
	if !errors.Is(err, ErrInsufficientHearts) {
		t.Fatalf("want ErrInsufficientHearts, got %v", err)
	}

	// The rejected attempt must not leave an event behind.
	var count int64
	if err := db.Model(&types.ChallengeAttempt{}).Where("user_id = ?", "user-1").Count(&count).Error; err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 0 {
		t.Fatalf("attempt log: want=0 rows got=%d", count)
	}
}

func TestApplyCorrectAnswerZeroHeartsWithSubscription(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)
	challengeID := firstChallengeID(t, db, course.ID)
	setBalances(t, db, "user-1", 0, 0)

	expires := time.Now().Add(24 * time.Hour)
	sub := &types.UserSubscription{UserID: "user-1", Plan: types.PlanMonthly, PointsCost: 5000, ExpiresAt: &expires}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("seed subscription: %v", err)
	}

	svc := newEconomyService(db)
	result, err := svc.ApplyCorrectAnswer(context.Background(), "user-1", challengeID)
	if err != nil {
		t.Fatalf("ApplyCorrectAnswer: %v", err)
	}
	if result.Points != ChallengePointReward {
		t.Fatalf("points: want=%d got=%d", ChallengePointReward, result.Points)
	}
}

func TestApplyCorrectAnswerUnknownChallenge(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)

	svc := newEconomyService(db)
	_, err := svc.ApplyCorrectAnswer(context.Background(), "user-1", uuid.New())
	if !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("want ErrChallengeNotFound, got %v", err)
	}
}

func TestApplyCorrectAnswerMissingProgress(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	challengeID := firstChallengeID(t, db, course.ID)

	svc := newEconomyService(db)
	_, err := svc.ApplyCorrectAnswer(context.Background(), "ghost", challengeID)
	if !errors.Is(err, ErrUserProgressNotFound) {
		t.Fatalf("want ErrUserProgressNotFound, got %v", err)
	}
}

func TestApplyWrongAnswerDecrementsHeart(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)
	challengeID := firstChallengeID(t, db, course.ID)

	svc := newEconomyService(db)
	result, err := svc.ApplyWrongAnswer(context.Background(), "user-1", challengeID)
	if err != nil {
		t.Fatalf("ApplyWrongAnswer: %v", err)
	}
	if result.Hearts != types.MaxHearts-1 {
		t.Fatalf("hearts: want=%d got=%d", types.MaxHearts-1, result.Hearts)
	}

	// Wrong answers never enter the attempt log; an incomplete row would
	// poison the done projection forever.
	var count int64
	if err := db.Model(&types.ChallengeAttempt{}).Where("user_id = ?", "user-1").Count(&count).Error; err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 0 {
		t.Fatalf("attempt log: want=0 rows got=%d", count)
	}
}

func TestApplyWrongAnswerAtZeroHearts(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)
	challengeID := firstChallengeID(t, db, course.ID)
	setBalances(t, db, "user-1", 0, 0)

	svc := newEconomyService(db)
	_, err := svc.ApplyWrongAnswer(context.Background(), "user-1", challengeID)
	if !errors.Is(err, ErrInsufficientHearts) {
		t.Fatalf("want ErrInsufficientHearts, got %v", err)
	}
}

func TestApplyWrongAnswerSubscriberKeepsHearts(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)
	challengeID := firstChallengeID(t, db, course.ID)

	sub := &types.UserSubscription{UserID: "user-1", Plan: types.PlanLifetime, PointsCost: 99999}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("seed subscription: %v", err)
	}

	svc := newEconomyService(db)
	result, err := svc.ApplyWrongAnswer(context.Background(), "user-1", challengeID)
	if err != nil {
		t.Fatalf("ApplyWrongAnswer: %v", err)
	}
	if result.Hearts != types.MaxHearts {
		t.Fatalf("hearts: want=%d got=%d", types.MaxHearts, result.Hearts)
	}
}

func TestRefillHearts(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)
	setBalances(t, db, "user-1", 3, 25)

	svc := newEconomyService(db)
	result, err := svc.RefillHearts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("RefillHearts: %v", err)
	}
	if result.Hearts != 4 {
		t.Fatalf("hearts: want=4 got=%d", result.Hearts)
	}
	if result.Points != 25-PointsToRefillHeart {
		t.Fatalf("points: want=%d got=%d", 25-PointsToRefillHeart, result.Points)
	}
}

func TestRefillHeartsAlreadyFull(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)
	setBalances(t, db, "user-1", types.MaxHearts, 100)

	svc := newEconomyService(db)
	_, err := svc.RefillHearts(context.Background(), "user-1")
	if !errors.Is(err, ErrHeartsAlreadyFull) {
		t.Fatalf("want ErrHeartsAlreadyFull, got %v", err)
	}
}

func TestRefillHeartsInsufficientPoints(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)
	setBalances(t, db, "user-1", 2, PointsToRefillHeart-1)

	svc := newEconomyService(db)
	_, err := svc.RefillHearts(context.Background(), "user-1")
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("want ErrInsufficientPoints, got %v", err)
	}

	// Balance must be untouched on rejection.
	progress := getProgress(t, db, "user-1")
	if progress.Hearts != 2 || progress.Points != PointsToRefillHeart-1 {
		t.Fatalf("balances changed: hearts=%d points=%d", progress.Hearts, progress.Points)
	}
}

func TestRefillHeartsMissingProgress(t *testing.T) {
	db := newTestDB(t)
	svc := newEconomyService(db)
	_, err := svc.RefillHearts(context.Background(), "ghost")
	if !errors.Is(err, ErrUserProgressNotFound) {
		t.Fatalf("want ErrUserProgressNotFound, got %v", err)
	}
}
