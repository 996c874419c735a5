package services

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lingovia/lingovia-backend/internal/cache"
	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/repos"
	"github.com/lingovia/lingovia-backend/internal/types"
)

// LessonSummary is a lesson as shown on the course map: ordering plus the
// derived completed flag.
type LessonSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	Completed bool      `json:"completed"`
}

type UnitView struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Order       int             `json:"order"`
	Lessons     []LessonSummary `json:"lessons"`
}

type ChallengeView struct {
	ID        uuid.UUID                `json:"id"`
	Type      types.ChallengeType      `json:"type"`
	Question  string                   `json:"question"`
	Order     int                      `json:"order"`
	Completed bool                     `json:"completed"`
	Options   []*types.ChallengeOption `json:"options"`
}

type LessonView struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Order        int             `json:"order"`
	LanguageCode string          `json:"language_code"`
	Challenges   []ChallengeView `json:"challenges"`
}

// CourseProgressView points at the first lesson, in unit/lesson order, with
// at least one not-yet-done challenge. A nil ActiveLessonID means the course
// is fully complete.
type CourseProgressView struct {
	ActiveLessonID    *uuid.UUID `json:"active_lesson_id,omitempty"`
	ActiveLessonTitle string     `json:"active_lesson_title,omitempty"`
	ActiveUnitID      *uuid.UUID `json:"active_unit_id,omitempty"`
}

type ProgressService interface {
	// GetUserProgress returns nil when the identity has no progress row yet.
	GetUserProgress(ctx context.Context, userID string) (*types.UserProgress, error)
	// SetActiveCourse lazily creates the progress row on first use.
	SetActiveCourse(ctx context.Context, userID string, courseID uuid.UUID) (*types.UserProgress, error)
	GetCourses(ctx context.Context) ([]*types.Course, error)
	GetUnits(ctx context.Context, userID string) ([]UnitView, error)
	GetCourseProgress(ctx context.Context, userID string) (*CourseProgressView, error)
	// GetLesson loads lessonID, or the active lesson when lessonID is nil.
	GetLesson(ctx context.Context, userID string, lessonID *uuid.UUID) (*LessonView, error)
	GetLessonPercentage(ctx context.Context, userID string) (int, error)
	GetTopUsers(ctx context.Context, limit int) ([]*types.UserProgress, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	progressRepo repos.UserProgressRepo
	courseRepo   repos.CourseRepo
	lessonRepo   repos.LessonRepo
	attemptRepo  repos.ChallengeAttemptRepo
	queryCache   cache.QueryCache
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	progressRepo repos.UserProgressRepo,
	courseRepo repos.CourseRepo,
	lessonRepo repos.LessonRepo,
	attemptRepo repos.ChallengeAttemptRepo,
	queryCache cache.QueryCache,
) ProgressService {
	if queryCache == nil {
		queryCache = cache.NewNoop()
	}
	return &progressService{
		db:           db,
		log:          log.With("service", "ProgressService"),
		progressRepo: progressRepo,
		courseRepo:   courseRepo,
		lessonRepo:   lessonRepo,
		attemptRepo:  attemptRepo,
		queryCache:   queryCache,
	}
}

func (s *progressService) GetUserProgress(ctx context.Context, userID string) (*types.UserProgress, error) {
	var cached types.UserProgress
	if hit, err := s.queryCache.GetJSON(ctx, cache.OpUserProgress, []string{userID}, &cached); err == nil && hit {
		return &cached, nil
	}

	row, err := s.progressRepo.GetWithActiveCourse(ctx, nil, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.queryCache.SetJSON(ctx, cache.OpUserProgress, []string{userID}, row); err != nil {
		s.log.Warn("query cache write failed", "op", cache.OpUserProgress, "error", err)
	}
	return row, nil
}

func (s *progressService) SetActiveCourse(ctx context.Context, userID string, courseID uuid.UUID) (*types.UserProgress, error) {
	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.progressRepo.GetByUserID(ctx, tx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			id := courseID
			return s.progressRepo.Create(ctx, tx, &types.UserProgress{
				UserID:         userID,
				UserName:       "User",
				UserImgSrc:     "/mascot.svg",
				ActiveCourseID: &id,
				Hearts:         types.DefaultHearts,
			})
		}
		if err != nil {
			return err
		}
		return s.progressRepo.SetActiveCourse(ctx, tx, userID, courseID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.queryCache.InvalidateUser(ctx, userID); err != nil {
		s.log.Warn("query cache invalidation failed", "user_id", userID, "error", err)
	}
	return s.progressRepo.GetWithActiveCourse(ctx, nil, userID)
}

func (s *progressService) GetCourses(ctx context.Context) ([]*types.Course, error) {
	return s.courseRepo.GetAll(ctx, nil)
}

func (s *progressService) GetUnits(ctx context.Context, userID string) ([]UnitView, error) {
	var cached []UnitView
	if hit, err := s.queryCache.GetJSON(ctx, cache.OpUnits, []string{userID}, &cached); err == nil && hit {
		return cached, nil
	}

	units, done, err := s.loadActiveCourseTree(ctx, userID)
	if err != nil || units == nil {
		return nil, err
	}

	views := make([]UnitView, 0, len(units))
	for _, unit := range units {
		uv := UnitView{
			ID:          unit.ID,
			Title:       unit.Title,
			Description: unit.Description,
			Order:       unit.Order,
			Lessons:     make([]LessonSummary, 0, len(unit.Lessons)),
		}
		for _, lesson := range unit.Lessons {
			uv.Lessons = append(uv.Lessons, LessonSummary{
				ID:        lesson.ID,
				Title:     lesson.Title,
				Order:     lesson.Order,
				Completed: lessonDone(lesson.Challenges, done),
			})
		}
		views = append(views, uv)
	}

	if err := s.queryCache.SetJSON(ctx, cache.OpUnits, []string{userID}, views); err != nil {
		s.log.Warn("query cache write failed", "op", cache.OpUnits, "error", err)
	}
	return views, nil
}

func (s *progressService) GetCourseProgress(ctx context.Context, userID string) (*CourseProgressView, error) {
	var cached CourseProgressView
	if hit, err := s.queryCache.GetJSON(ctx, cache.OpCourseProgress, []string{userID}, &cached); err == nil && hit {
		return &cached, nil
	}

	units, done, err := s.loadActiveCourseTree(ctx, userID)
	if err != nil || units == nil {
		return nil, err
	}

	view := &CourseProgressView{}
	for _, unit := range units {
		for _, lesson := range unit.Lessons {
			if len(lesson.Challenges) == 0 {
				continue // vacuously complete
			}
			if !lessonDone(lesson.Challenges, done) {
				id := lesson.ID
				unitID := unit.ID
				view.ActiveLessonID = &id
				view.ActiveLessonTitle = lesson.Title
				view.ActiveUnitID = &unitID
				if err := s.queryCache.SetJSON(ctx, cache.OpCourseProgress, []string{userID}, view); err != nil {
					s.log.Warn("query cache write failed", "op", cache.OpCourseProgress, "error", err)
				}
				return view, nil
			}
		}
	}

	// Every lesson done: the course is complete, no pending lesson.
	if err := s.queryCache.SetJSON(ctx, cache.OpCourseProgress, []string{userID}, view); err != nil {
		s.log.Warn("query cache write failed", "op", cache.OpCourseProgress, "error", err)
	}
	return view, nil
}

func (s *progressService) GetLesson(ctx context.Context, userID string, lessonID *uuid.UUID) (*LessonView, error) {
	if lessonID == nil {
		cp, err := s.GetCourseProgress(ctx, userID)
		if err != nil {
			return nil, err
		}
		if cp == nil || cp.ActiveLessonID == nil {
			return nil, nil
		}
		lessonID = cp.ActiveLessonID
	}

	lesson, err := s.lessonRepo.GetByIDDeep(ctx, nil, *lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(lesson.Challenges))
	for _, ch := range lesson.Challenges {
		ids = append(ids, ch.ID)
	}
	attempts, err := s.attemptRepo.GetByUserAndChallengeIDs(ctx, nil, userID, ids)
	if err != nil {
		return nil, err
	}
	done := doneByChallenge(attempts)

	view := &LessonView{
		ID:          lesson.ID,
		Title:       lesson.Title,
		Description: lesson.Description,
		Order:       lesson.Order,
		Challenges:  make([]ChallengeView, 0, len(lesson.Challenges)),
	}
	if lesson.Unit != nil && lesson.Unit.Course != nil {
		view.LanguageCode = lesson.Unit.Course.LanguageCode
	}
	for _, ch := range lesson.Challenges {
		view.Challenges = append(view.Challenges, ChallengeView{
			ID:        ch.ID,
			Type:      ch.Type,
			Question:  ch.Question,
			Order:     ch.Order,
			Completed: done[ch.ID],
			Options:   ch.Options,
		})
	}
	return view, nil
}

func (s *progressService) GetLessonPercentage(ctx context.Context, userID string) (int, error) {
	lesson, err := s.GetLesson(ctx, userID, nil)
	if err != nil {
		return 0, err
	}
	if lesson == nil {
		return 0, nil
	}
	if len(lesson.Challenges) == 0 {
		return 100, nil
	}
	completed := 0
	for _, ch := range lesson.Challenges {
		if ch.Completed {
			completed++
		}
	}
	pct := math.Round(float64(completed) / float64(len(lesson.Challenges)) * 100)
	return int(pct), nil
}

func (s *progressService) GetTopUsers(ctx context.Context, limit int) ([]*types.UserProgress, error) {
	return s.progressRepo.TopByPoints(ctx, nil, limit)
}

// loadActiveCourseTree resolves the user's active course and returns its
// ordered unit tree plus the per-challenge done map. A nil unit slice with a
// nil error means the user has no progress row or no active course.
func (s *progressService) loadActiveCourseTree(ctx context.Context, userID string) ([]*types.Unit, map[uuid.UUID]bool, error) {
	progress, err := s.progressRepo.GetByUserID(ctx, nil, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if progress.ActiveCourseID == nil {
		return nil, nil, nil
	}

	units, err := s.courseRepo.GetUnitsDeep(ctx, nil, *progress.ActiveCourseID)
	if err != nil {
		return nil, nil, err
	}

	var ids []uuid.UUID
	for _, unit := range units {
		for _, lesson := range unit.Lessons {
			for _, ch := range lesson.Challenges {
				ids = append(ids, ch.ID)
			}
		}
	}
	attempts, err := s.attemptRepo.GetByUserAndChallengeIDs(ctx, nil, userID, ids)
	if err != nil {
		return nil, nil, err
	}
	return units, doneByChallenge(attempts), nil
}
