package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kidlearn-api/internal/config"
	"github.com/noah-isme/kidlearn-api/internal/database"
	"github.com/noah-isme/kidlearn-api/internal/handler"
	"github.com/noah-isme/kidlearn-api/internal/middleware"
	"github.com/noah-isme/kidlearn-api/internal/models"
	"github.com/noah-isme/kidlearn-api/internal/observability"
	"github.com/noah-isme/kidlearn-api/internal/repository"
	"github.com/noah-isme/kidlearn-api/internal/router"
	"github.com/noah-isme/kidlearn-api/internal/service"
	"github.com/noah-isme/kidlearn-api/pkg/ai"
	"github.com/noah-isme/kidlearn-api/pkg/judge"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Lesson{},
		&models.CodingChallenge{},
		&models.ChallengeTestCase{},
		&models.ChallengeSubmission{},
		&models.WeeklyTest{},
		&models.TestSubmission{},
		&models.Contest{},
		&models.ContestEntry{},
		&models.Progress{},
		&models.DailyStreak{},
		&models.Achievement{},
		&models.LeaderboardEntry{},
		&models.AccessCode{},
		&models.CodeRedemption{},
		&models.Referral{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	var judgeClient judge.Judge
	if cfg.JudgeURL != "" {
		judgeClient, err = judge.NewHTTPJudge(judge.HTTPConfig{
			BaseURL: cfg.JudgeURL,
			Timeout: cfg.JudgeTimeout,
			Logger:  logger,
		})
		if err != nil {
			log.Fatalf("failed to create judge client: %v", err)
		}
	} else {
		logger.Warn().Msg("judge url not configured, challenge submissions stay pending until graded via the admin callback")
	}

	var generator ai.Generator
	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey != "" {
		gen, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create lesson draft generator: %v", err)
		}
		generator = gen
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	observability.RegisterMetrics()

	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	submissionRepo := repository.NewChallengeSubmissionRepository(db)
	testRepo := repository.NewTestRepository(db)
	contestRepo := repository.NewContestRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	accessRepo := repository.NewAccessRepository(db)

	events := service.NewNATSEventPublisher(natsConn, logger)

	progressService := service.NewProgressService(progressRepo, engagementRepo, userRepo, events, logger)
	leaderboardService := service.NewLeaderboardService(leaderboardRepo, progressRepo, userRepo, redisClient, cfg.LeaderboardCacheTTL, cfg.LeaderboardLimit, logger)
	lessonService := service.NewLessonService(courseRepo, userRepo, progressService, progressRepo, txManager, validate, logger)
	challengeService := service.NewChallengeService(challengeRepo, userRepo, logger)
	submissionService := service.NewChallengeSubmissionService(submissionRepo, challengeRepo, userRepo, progressService, leaderboardService, txManager, judgeClient, events, validate, logger)
	testService := service.NewTestService(testRepo, userRepo, progressService, txManager, validate, logger)
	contestService := service.NewContestService(contestRepo, userRepo, validate, logger)
	rankingService := service.NewRankingService(testRepo, contestRepo, txManager, events, logger)
	profileService := service.NewProfileService(userRepo, progressRepo, engagementRepo, redisClient, logger)
	accessService := service.NewAccessService(accessRepo, userRepo, txManager, validate, cfg.ReferralXPBonus, logger)
	adminContentService := service.NewAdminContentService(courseRepo, challengeRepo, testRepo, contestRepo, progressRepo, generator, validate, logger)

	lessonHandler := handler.NewLessonHandler(lessonService, logger)
	challengeHandler := handler.NewChallengeHandler(challengeService, submissionService, logger)
	testHandler := handler.NewTestHandler(testService, logger)
	contestHandler := handler.NewContestHandler(contestService, logger)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService, logger)
	profileHandler := handler.NewProfileHandler(profileService, progressService, logger)
	accessHandler := handler.NewAccessHandler(accessService, profileService, logger)
	adminContentHandler := handler.NewAdminContentHandler(adminContentService, logger)
	adminGradingHandler := handler.NewAdminGradingHandler(contestService, rankingService, submissionService, accessService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	app.Get("/metrics", observability.MetricsHandler())
	router.Register(app, cfg, router.Dependencies{
		LessonHandler:       lessonHandler,
		ChallengeHandler:    challengeHandler,
		TestHandler:         testHandler,
		ContestHandler:      contestHandler,
		LeaderboardHandler:  leaderboardHandler,
		ProfileHandler:      profileHandler,
		AccessHandler:       accessHandler,
		AdminContentHandler: adminContentHandler,
		AdminGradingHandler: adminGradingHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
