package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/types"
)

func newProgressService(db *gorm.DB) ProgressService {
	r := newTestRepos(db)
	return NewProgressService(db, logger.NewNop(), r.progress, r.course, r.lesson, r.attempt, nil)
}

func TestGetUserProgressMissing(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	progress, err := svc.GetUserProgress(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetUserProgress: %v", err)
	}
	if progress != nil {
		t.Fatalf("want nil, got %+v", progress)
	}
}

func TestSetActiveCourseCreatesRow(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)

	svc := newProgressService(db)
	progress, err := svc.SetActiveCourse(context.Background(), "user-1", course.ID)
	if err != nil {
		t.Fatalf("SetActiveCourse: %v", err)
	}
	if progress.ActiveCourseID == nil || *progress.ActiveCourseID != course.ID {
		t.Fatalf("active course: %+v", progress.ActiveCourseID)
	}
	if progress.Hearts != types.DefaultHearts {
		t.Fatalf("hearts: want=%d got=%d", types.DefaultHearts, progress.Hearts)
	}
	if progress.Points != 0 {
		t.Fatalf("points: want=0 got=%d", progress.Points)
	}
}

func TestSetActiveCourseSwitchesExistingRow(t *testing.T) {
	db := newTestDB(t)
	first := seedCourse(t, db)
	second := &types.Course{Title: "French", ImgSrc: "/fr.svg", LanguageCode: "fr"}
	if err := db.Create(second).Error; err != nil {
		t.Fatalf("seed second course: %v", err)
	}
	seedProgress(t, db, "user-1", first.ID)
	setBalances(t, db, "user-1", 2, 70)

	svc := newProgressService(db)
	progress, err := svc.SetActiveCourse(context.Background(), "user-1", second.ID)
	if err != nil {
		t.Fatalf("SetActiveCourse: %v", err)
	}
	if progress.ActiveCourseID == nil || *progress.ActiveCourseID != second.ID {
		t.Fatalf("active course not switched: %+v", progress.ActiveCourseID)
	}
	// Switching courses keeps the learner's balances.
	if progress.Hearts != 2 || progress.Points != 70 {
		t.Fatalf("balances reset: hearts=%d points=%d", progress.Hearts, progress.Points)
	}
}

func TestSetActiveCourseUnknownCourse(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	_, err := svc.SetActiveCourse(context.Background(), "user-1", uuid.New())
	if !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("want ErrCourseNotFound, got %v", err)
	}
}

func TestGetUnitsCompletionFlags(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)

	units := courseTree(t, db, course.ID)
	for _, ch := range units[0].Lessons[0].Challenges {
		completeChallenge(t, db, "user-1", ch.ID)
	}

	svc := newProgressService(db)
	views, err := svc.GetUnits(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUnits: %v", err)
	}
	if len(views) != 1 || len(views[0].Lessons) != 2 {
		t.Fatalf("tree shape: %+v", views)
	}
	if !views[0].Lessons[0].Completed {
		t.Fatalf("lesson 1 should be completed")
	}
	if views[0].Lessons[1].Completed {
		t.Fatalf("lesson 2 should not be completed")
	}
}

func TestGetUnitsNoActiveCourse(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&types.UserProgress{UserID: "user-1"}).Error; err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	svc := newProgressService(db)
	views, err := svc.GetUnits(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUnits: %v", err)
	}
	if views != nil {
		t.Fatalf("want nil without an active course, got %+v", views)
	}
}

func TestGetCourseProgressPicksFirstIncompleteLesson(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)

	units := courseTree(t, db, course.ID)
	for _, ch := range units[0].Lessons[0].Challenges {
		completeChallenge(t, db, "user-1", ch.ID)
	}

	svc := newProgressService(db)
	cp, err := svc.GetCourseProgress(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetCourseProgress: %v", err)
	}
	if cp == nil || cp.ActiveLessonID == nil {
		t.Fatalf("want active lesson, got %+v", cp)
	}
	if *cp.ActiveLessonID != units[0].Lessons[1].ID {
		t.Fatalf("active lesson: want=%s got=%s", units[0].Lessons[1].ID, *cp.ActiveLessonID)
	}
}

func TestGetCourseProgressSkipsEmptyLessons(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)

	units := courseTree(t, db, course.ID)
	// An authored-but-empty lesson in front must not become the active one.
	empty := &types.Lesson{UnitID: units[0].ID, Title: "Intro", Description: "Placeholder", Order: 0}
	if err := db.Create(empty).Error; err != nil {
		t.Fatalf("seed empty lesson: %v", err)
	}

	svc := newProgressService(db)
	cp, err := svc.GetCourseProgress(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetCourseProgress: %v", err)
	}
	if cp == nil || cp.ActiveLessonID == nil {
		t.Fatalf("want active lesson, got %+v", cp)
	}
	if *cp.ActiveLessonID == empty.ID {
		t.Fatalf("empty lesson must be skipped")
	}
}

func TestGetCourseProgressCompleteCourse(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)

	units := courseTree(t, db, course.ID)
	for _, lesson := range units[0].Lessons {
		for _, ch := range lesson.Challenges {
			completeChallenge(t, db, "user-1", ch.ID)
		}
	}

	svc := newProgressService(db)
	cp, err := svc.GetCourseProgress(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetCourseProgress: %v", err)
	}
	if cp == nil {
		t.Fatalf("want a view for a finished course")
	}
	if cp.ActiveLessonID != nil {
		t.Fatalf("finished course has no active lesson, got %v", cp.ActiveLessonID)
	}
}

func TestGetLessonChallengeFlags(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)

	units := courseTree(t, db, course.ID)
	lesson := units[0].Lessons[0]
	completeChallenge(t, db, "user-1", lesson.Challenges[0].ID)

	svc := newProgressService(db)
	id := lesson.ID
	view, err := svc.GetLesson(context.Background(), "user-1", &id)
	if err != nil {
		t.Fatalf("GetLesson: %v", err)
	}
	if view == nil || len(view.Challenges) != 2 {
		t.Fatalf("lesson shape: %+v", view)
	}
	if view.LanguageCode != "es" {
		t.Fatalf("language: want=es got=%q", view.LanguageCode)
	}
	if !view.Challenges[0].Completed || view.Challenges[1].Completed {
		t.Fatalf("completion flags: %+v", view.Challenges)
	}
	if len(view.Challenges[0].Options) != 1 {
		t.Fatalf("options must be loaded: %+v", view.Challenges[0].Options)
	}
}

func TestGetLessonDefaultsToActive(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)

	svc := newProgressService(db)
	view, err := svc.GetLesson(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("GetLesson: %v", err)
	}
	units := courseTree(t, db, course.ID)
	if view == nil || view.ID != units[0].Lessons[0].ID {
		t.Fatalf("want first lesson, got %+v", view)
	}
}

func TestGetLessonUnknownID(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)

	svc := newProgressService(db)
	id := uuid.New()
	view, err := svc.GetLesson(context.Background(), "user-1", &id)
	if err != nil {
		t.Fatalf("GetLesson: %v", err)
	}
	if view != nil {
		t.Fatalf("want nil for unknown lesson, got %+v", view)
	}
}

func TestGetLessonPercentage(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedProgress(t, db, "user-1", course.ID)

	svc := newProgressService(db)
	pct, err := svc.GetLessonPercentage(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetLessonPercentage: %v", err)
	}
	if pct != 0 {
		t.Fatalf("fresh lesson: want=0 got=%d", pct)
	}

	units := courseTree(t, db, course.ID)
	completeChallenge(t, db, "user-1", units[0].Lessons[0].Challenges[0].ID)

	pct, err = svc.GetLessonPercentage(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetLessonPercentage: %v", err)
	}
	if pct != 50 {
		t.Fatalf("half done: want=50 got=%d", pct)
	}
}

func TestGetTopUsersOrdering(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	for i, userID := range []string{"bronze", "gold", "silver"} {
		seedProgress(t, db, userID, course.ID)
		setBalances(t, db, userID, 5, []int{10, 300, 200}[i])
	}

	svc := newProgressService(db)
	top, err := svc.GetTopUsers(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetTopUsers: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("limit: want=2 got=%d", len(top))
	}
	if top[0].UserID != "gold" || top[1].UserID != "silver" {
		t.Fatalf("ordering: %s, %s", top[0].UserID, top[1].UserID)
	}
}
