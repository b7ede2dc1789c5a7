package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/models"
	"github.com/noah-isme/kidlearn-api/internal/observability"
	"github.com/noah-isme/kidlearn-api/internal/repository"
	"github.com/noah-isme/kidlearn-api/internal/scoring"
)

// ErrCourseNotFound indicates the course cannot be located.
var ErrCourseNotFound = errors.New("course not found")

// ErrLessonNotFound indicates the lesson cannot be located.
var ErrLessonNotFound = errors.New("lesson not found")

// LessonService covers the learner-facing course catalogue and the lesson
// quiz flow. Quiz XP is delta-credited against the previous best score, so
// retakes only ever add the improvement.
type LessonService interface {
	ListCourses(ctx context.Context, userID uint) ([]dto.CourseResponse, error)
	GetCourse(ctx context.Context, id, userID uint) (dto.CourseResponse, error)
	GetLesson(ctx context.Context, id, userID uint) (dto.LessonResponse, error)
	CompleteQuiz(ctx context.Context, userID, lessonID uint, payload dto.CompleteQuizRequest) (dto.QuizCompletionResponse, error)
}

type lessonService struct {
	courses   repository.CourseRepository
	users     repository.UserRepository
	progress  ProgressService
	prog      repository.ProgressRepository
	tx        repository.TxManager
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLessonService constructs the lesson service.
func NewLessonService(
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	progress ProgressService,
	progressRepo repository.ProgressRepository,
	tx repository.TxManager,
	validate *validator.Validate,
	logger zerolog.Logger,
) LessonService {
	return &lessonService{
		courses:   courseRepo,
		users:     userRepo,
		progress:  progress,
		prog:      progressRepo,
		tx:        tx,
		validator: validate,
		logger:    logger.With().Str("component", "lesson_service").Logger(),
		now:       time.Now,
	}
}

func (s *lessonService) ListCourses(ctx context.Context, userID uint) ([]dto.CourseResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	courses, err := s.courses.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		if !groupAdmits(course.Groups, user.Group) {
			continue
		}
		responses = append(responses, dto.NewCourseResponse(course))
	}
	return responses, nil
}

func (s *lessonService) GetCourse(ctx context.Context, id, userID uint) (dto.CourseResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrUserNotFound
		}
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	policy := itemAccessPolicy{Groups: course.Groups, ProOnly: course.ProOnly}
	if err := checkItemAccess(user, policy, "", s.now().UTC()); err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *lessonService) GetLesson(ctx context.Context, id, userID uint) (dto.LessonResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrUserNotFound
		}
		return dto.LessonResponse{}, err
	}

	lesson, err := s.courses.GetLesson(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}

	course, err := s.courses.GetCourse(ctx, lesson.CourseID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.LessonResponse{}, err
	}

	policy := itemAccessPolicy{Groups: course.Groups, ProOnly: course.ProOnly}
	if err := checkItemAccess(user, policy, "", s.now().UTC()); err != nil {
		return dto.LessonResponse{}, err
	}

	return dto.NewLessonResponse(lesson), nil
}

// CompleteQuiz grades a lesson quiz attempt. The best score per lesson is
// monotonic; XP equals the lesson reward scaled by the best percentage, and
// only the improvement over the previous best is credited.
func (s *lessonService) CompleteQuiz(ctx context.Context, userID, lessonID uint, payload dto.CompleteQuizRequest) (dto.QuizCompletionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizCompletionResponse{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizCompletionResponse{}, ErrUserNotFound
		}
		return dto.QuizCompletionResponse{}, err
	}

	lesson, err := s.courses.GetLesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizCompletionResponse{}, ErrLessonNotFound
		}
		return dto.QuizCompletionResponse{}, err
	}

	course, err := s.courses.GetCourse(ctx, lesson.CourseID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.QuizCompletionResponse{}, err
	}

	now := s.now().UTC()
	policy := itemAccessPolicy{Groups: course.Groups, ProOnly: course.ProOnly}
	if err := checkItemAccess(user, policy, "", now); err != nil {
		return dto.QuizCompletionResponse{}, err
	}

	result := scoring.ScoreMCQ(answerKey(lesson.Quiz), payload.Answers)

	var (
		bestScore int
		earned    int
	)
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		progress, previousBest, err := s.progress.RecordBestScore(ctx, userID, lesson.ID, result.Percentage, now)
		if err != nil {
			return err
		}
		bestScore = progress.BestScore

		earned = scoring.LessonXP(lesson.XPReward, bestScore) - scoring.LessonXP(lesson.XPReward, previousBest)
		if earned <= 0 {
			earned = 0
			return nil
		}
		return s.users.AddXP(ctx, userID, earned)
	})
	if err != nil {
		return dto.QuizCompletionResponse{}, err
	}

	if earned > 0 {
		observability.XPAwarded().WithLabelValues("lesson").Add(float64(earned))
	}

	if _, err := s.progress.TouchStreak(ctx, userID, now); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to touch streak")
	}
	if _, err := s.progress.UnlockAchievement(ctx, userID, models.AchievementFirstLesson); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to unlock first lesson achievement")
	}
	s.maybeCompleteCourse(ctx, userID, lesson.CourseID)

	return dto.QuizCompletionResponse{
		LessonID:   lesson.ID,
		Score:      result.Score,
		Percentage: result.Percentage,
		BestScore:  bestScore,
		Improved:   earned > 0,
		XPEarned:   earned,
	}, nil
}

// maybeCompleteCourse unlocks the course completion achievement once every
// lesson of the course has a solved progress row. Best effort; failures are
// logged and never fail the quiz attempt.
func (s *lessonService) maybeCompleteCourse(ctx context.Context, userID, courseID uint) {
	lessons, err := s.courses.ListLessons(ctx, courseID)
	if err != nil || len(lessons) == 0 {
		return
	}

	ids := make([]uint, 0, len(lessons))
	for _, lesson := range lessons {
		ids = append(ids, lesson.ID)
	}

	solved, err := s.prog.CountSolvedForItems(ctx, userID, models.ItemTypeLesson, ids)
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Uint("course_id", courseID).Msg("failed to count solved lessons")
		return
	}

	if solved == int64(len(ids)) {
		if _, err := s.progress.UnlockAchievement(ctx, userID, models.AchievementCourseComplete); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", userID).Uint("course_id", courseID).Msg("failed to unlock course completion")
		}
	}
}
