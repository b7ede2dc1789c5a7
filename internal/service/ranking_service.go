package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/models"
	"github.com/noah-isme/kidlearn-api/internal/observability"
	"github.com/noah-isme/kidlearn-api/internal/repository"
)

// RankingService assigns final ranks to graded assessments and publishes
// their results. Every ranking pass is a full recompute over the item's
// graded set, so re-running after late evaluations always converges.
type RankingService interface {
	AssignTestRanks(ctx context.Context, testID uint) (dto.RankAssignmentResponse, error)
	AssignContestRanks(ctx context.Context, contestID uint) (dto.RankAssignmentResponse, error)
	PublishTest(ctx context.Context, testID uint) (dto.PublishResponse, error)
	PublishContest(ctx context.Context, contestID uint) (dto.PublishResponse, error)
}

type rankingService struct {
	tests    repository.TestRepository
	contests repository.ContestRepository
	tx       repository.TxManager
	events   EventPublisher
	tracer   trace.Tracer
	logger   zerolog.Logger
}

// NewRankingService constructs the ranking service.
func NewRankingService(
	testRepo repository.TestRepository,
	contestRepo repository.ContestRepository,
	tx repository.TxManager,
	events EventPublisher,
	logger zerolog.Logger,
) RankingService {
	return &rankingService{
		tests:    testRepo,
		contests: contestRepo,
		tx:       tx,
		events:   events,
		tracer:   otel.Tracer("kidlearn/ranking"),
		logger:   logger.With().Str("component", "ranking_service").Logger(),
	}
}

// AssignTestRanks ranks every submission of a test by score descending with
// time taken as tie-breaker. Submissions arrive pre-ordered from the
// repository; rank is the 1-based position, so equal scores still receive
// distinct consecutive ranks.
func (s *rankingService) AssignTestRanks(ctx context.Context, testID uint) (dto.RankAssignmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ranking.assign_test_ranks",
		trace.WithAttributes(attribute.Int("test.id", int(testID))))
	defer span.End()
	started := time.Now()

	if _, err := s.tests.GetByID(ctx, testID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RankAssignmentResponse{}, ErrTestNotFound
		}
		return dto.RankAssignmentResponse{}, err
	}

	submissions, err := s.tests.ListSubmissions(ctx, testID)
	if err != nil {
		return dto.RankAssignmentResponse{}, err
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		for i := range submissions {
			rank := i + 1
			if submissions[i].Rank != nil && *submissions[i].Rank == rank {
				continue
			}
			submissions[i].Rank = &rank
			if err := s.tests.UpdateSubmission(ctx, &submissions[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dto.RankAssignmentResponse{}, err
	}

	observability.RankingRuns().WithLabelValues("test").Observe(time.Since(started).Seconds())
	span.SetAttributes(attribute.Int("ranked", len(submissions)))
	s.logger.Info().Uint("test_id", testID).Int("ranked", len(submissions)).Msg("test ranks assigned")

	return dto.RankAssignmentResponse{ItemType: models.ItemTypeTest, ItemID: testID, Ranked: len(submissions)}, nil
}

// AssignContestRanks ranks evaluated entries by marks descending. Entries
// still awaiting evaluation are skipped and keep a nil rank.
func (s *rankingService) AssignContestRanks(ctx context.Context, contestID uint) (dto.RankAssignmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ranking.assign_contest_ranks",
		trace.WithAttributes(attribute.Int("contest.id", int(contestID))))
	defer span.End()
	started := time.Now()

	if _, err := s.contests.GetByID(ctx, contestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RankAssignmentResponse{}, ErrContestNotFound
		}
		return dto.RankAssignmentResponse{}, err
	}

	entries, err := s.contests.ListEvaluatedEntries(ctx, contestID)
	if err != nil {
		return dto.RankAssignmentResponse{}, err
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		for i := range entries {
			rank := i + 1
			if entries[i].Rank != nil && *entries[i].Rank == rank {
				continue
			}
			entries[i].Rank = &rank
			if err := s.contests.UpdateEntry(ctx, &entries[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dto.RankAssignmentResponse{}, err
	}

	observability.RankingRuns().WithLabelValues("contest").Observe(time.Since(started).Seconds())
	span.SetAttributes(attribute.Int("ranked", len(entries)))
	s.logger.Info().Uint("contest_id", contestID).Int("ranked", len(entries)).Msg("contest ranks assigned")

	return dto.RankAssignmentResponse{ItemType: models.ItemTypeContest, ItemID: contestID, Ranked: len(entries)}, nil
}

// PublishTest assigns ranks and flips the published flag, after which every
// participant can see their score and rank. Publishing an already published
// test is a no-op acknowledgement.
func (s *rankingService) PublishTest(ctx context.Context, testID uint) (dto.PublishResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ranking.publish_test",
		trace.WithAttributes(attribute.Int("test.id", int(testID))))
	defer span.End()

	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PublishResponse{}, ErrTestNotFound
		}
		return dto.PublishResponse{}, err
	}

	if test.IsResultsPublished {
		submissions, err := s.tests.ListSubmissions(ctx, testID)
		if err != nil {
			return dto.PublishResponse{}, err
		}
		return dto.PublishResponse{ItemType: models.ItemTypeTest, ItemID: testID, Ranked: len(submissions), Published: true}, nil
	}

	ranked, err := s.AssignTestRanks(ctx, testID)
	if err != nil {
		return dto.PublishResponse{}, err
	}

	if err := s.tests.MarkPublished(ctx, testID); err != nil {
		return dto.PublishResponse{}, err
	}

	s.logger.Info().Uint("test_id", testID).Int("ranked", ranked.Ranked).Msg("test results published")
	if s.events != nil {
		s.events.Publish(ctx, Event{
			Subject: SubjectResultsPublished,
			Data: map[string]interface{}{
				"item_type": models.ItemTypeTest,
				"item_id":   testID,
				"ranked":    ranked.Ranked,
			},
		})
	}

	return dto.PublishResponse{ItemType: models.ItemTypeTest, ItemID: testID, Ranked: ranked.Ranked, Published: true}, nil
}

// PublishContest assigns ranks over evaluated entries and flips the
// published flag. Idempotent in the same way as PublishTest.
func (s *rankingService) PublishContest(ctx context.Context, contestID uint) (dto.PublishResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ranking.publish_contest",
		trace.WithAttributes(attribute.Int("contest.id", int(contestID))))
	defer span.End()

	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PublishResponse{}, ErrContestNotFound
		}
		return dto.PublishResponse{}, err
	}

	if contest.IsResultsPublished {
		entries, err := s.contests.ListEvaluatedEntries(ctx, contestID)
		if err != nil {
			return dto.PublishResponse{}, err
		}
		return dto.PublishResponse{ItemType: models.ItemTypeContest, ItemID: contestID, Ranked: len(entries), Published: true}, nil
	}

	ranked, err := s.AssignContestRanks(ctx, contestID)
	if err != nil {
		return dto.PublishResponse{}, err
	}

	if err := s.contests.MarkPublished(ctx, contestID); err != nil {
		return dto.PublishResponse{}, err
	}

	s.logger.Info().Uint("contest_id", contestID).Int("ranked", ranked.Ranked).Msg("contest results published")
	if s.events != nil {
		s.events.Publish(ctx, Event{
			Subject: SubjectResultsPublished,
			Data: map[string]interface{}{
				"item_type": models.ItemTypeContest,
				"item_id":   contestID,
				"ranked":    ranked.Ranked,
			},
		})
	}

	return dto.PublishResponse{ItemType: models.ItemTypeContest, ItemID: contestID, Ranked: ranked.Ranked, Published: true}, nil
}
