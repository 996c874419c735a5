package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/repos"
	"github.com/lingovia/lingovia-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One in-memory sqlite database per connection; pin the pool so every
	// query sees the same database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&types.Course{},
		&types.Unit{},
		&types.Lesson{},
		&types.Challenge{},
		&types.ChallengeOption{},
		&types.UserProgress{},
		&types.ChallengeAttempt{},
		&types.UserSubscription{},
		&types.AudioCacheEntry{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testRepos struct {
	progress repos.UserProgressRepo
	course   repos.CourseRepo
	lesson   repos.LessonRepo
	attempt  repos.ChallengeAttemptRepo
	sub      repos.SubscriptionRepo
	option   repos.ChallengeOptionRepo
	audio    repos.AudioCacheRepo
}

func newTestRepos(db *gorm.DB) testRepos {
	log := logger.NewNop()
	return testRepos{
		progress: repos.NewUserProgressRepo(db, log),
		course:   repos.NewCourseRepo(db, log),
		lesson:   repos.NewLessonRepo(db, log),
		attempt:  repos.NewChallengeAttemptRepo(db, log),
		sub:      repos.NewSubscriptionRepo(db, log),
		option:   repos.NewChallengeOptionRepo(db, log),
		audio:    repos.NewAudioCacheRepo(db, log),
	}
}

// seedCourse builds a small spanish course: one unit, two lessons with two
// challenges each, every challenge with one correct option.
func seedCourse(t *testing.T, db *gorm.DB) *types.Course {
	t.Helper()

	course := &types.Course{
		Title:        "Spanish",
		ImgSrc:       "/es.svg",
		LanguageCode: "es",
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	unit := &types.Unit{
		CourseID:    course.ID,
		Title:       "Unit 1",
		Description: "Learn the basics",
		Order:       1,
	}
	if err := db.Create(unit).Error; err != nil {
		t.Fatalf("seed unit: %v", err)
	}

	words := [][]string{{"el hombre", "la mujer"}, {"la manzana", "el robot"}}
	for li, lessonWords := range words {
		lesson := &types.Lesson{
			UnitID:      unit.ID,
			Title:       fmt.Sprintf("Lesson %d", li+1),
			Description: "Nouns",
			Order:       li + 1,
		}
		if err := db.Create(lesson).Error; err != nil {
			t.Fatalf("seed lesson: %v", err)
		}
		for ci, word := range lessonWords {
			challenge := &types.Challenge{
				LessonID: lesson.ID,
				Type:     types.ChallengeTypeSelect,
				Question: `Which one of these is "` + word + `"?`,
				Order:    ci + 1,
			}
			if err := db.Create(challenge).Error; err != nil {
				t.Fatalf("seed challenge: %v", err)
			}
			option := &types.ChallengeOption{
				ChallengeID: challenge.ID,
				Text:        word,
				Correct:     true,
			}
			if err := db.Create(option).Error; err != nil {
				t.Fatalf("seed option: %v", err)
			}
		}
	}
	return course
}

// courseTree reloads the seeded course in display order.
func courseTree(t *testing.T, db *gorm.DB, courseID uuid.UUID) []*types.Unit {
	t.Helper()
	units, err := newTestRepos(db).course.GetUnitsDeep(context.Background(), nil, courseID)
	if err != nil {
		t.Fatalf("load course tree: %v", err)
	}
	return units
}

func seedProgress(t *testing.T, db *gorm.DB, userID string, courseID uuid.UUID) {
	t.Helper()
	row := &types.UserProgress{
		UserID:         userID,
		ActiveCourseID: &courseID,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("seed progress: %v", err)
	}
}

// setBalances bypasses the column defaults, which would otherwise swallow
// zero values on insert.
func setBalances(t *testing.T, db *gorm.DB, userID string, hearts, points int) {
	t.Helper()
	err := db.Model(&types.UserProgress{}).
		Where("user_id = ?", userID).
		UpdateColumns(map[string]interface{}{"hearts": hearts, "points": points}).Error
	if err != nil {
		t.Fatalf("set balances: %v", err)
	}
}

func getProgress(t *testing.T, db *gorm.DB, userID string) *types.UserProgress {
	t.Helper()
	var row types.UserProgress
	if err := db.Where("user_id = ?", userID).First(&row).Error; err != nil {
		t.Fatalf("load progress: %v", err)
	}
	return &row
}

// completeChallenge appends a completed attempt so the challenge counts as
// done for the user.
func completeChallenge(t *testing.T, db *gorm.DB, userID string, challengeID uuid.UUID) {
	t.Helper()
	row := &types.ChallengeAttempt{
		UserID:      userID,
		ChallengeID: challengeID,
		Completed:   true,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("seed attempt: %v", err)
	}
}
