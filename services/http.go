package services

import (
	"fmt"
	"net/http"
	"os"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog/log"

	docs "github.com/cognify-health/cognify_api/docs"
	"github.com/cognify-health/cognify_api/services/handlers"
	"github.com/cognify-health/cognify_api/shared"
)

type HttpService struct {
	context.DefaultService

	app  *fiber.App
	port int

	exerciseSvc   *ExerciseService
	contentSvc    *ContentService
	monitoringSvc *MonitoringService
	rateLimitSvc  *RateLimitService

	authMiddleware authProvider
}

// authProvider is the middleware slice the route table needs.
type authProvider interface {
	RequiredAuth() fiber.Handler
	OptionalAuth() fiber.Handler
}

const HTTP_SVC = "http_svc"
const DEFAULT_HTTP_PORT = 8000

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	svc.port = DEFAULT_HTTP_PORT
	if p := os.Getenv("HTTP_PORT"); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &svc.port); err != nil {
			return fmt.Errorf("invalid HTTP_PORT %q: %w", p, err)
		}
	}
	return svc.DefaultService.Configure(ctx)
}

// SetAuthMiddleware is called by the runtime after the middleware service is
// configured; the middleware package sits above services and cannot be
// imported from here.
func (svc *HttpService) SetAuthMiddleware(m authProvider) {
	svc.authMiddleware = m
}

func (svc *HttpService) Start() error {
	svc.exerciseSvc = svc.Service(EXERCISE_SVC).(*ExerciseService)
	svc.contentSvc = svc.Service(CONTENT_SVC).(*ContentService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)

	svc.app = fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	svc.app.Use(recover.New())
	svc.app.Use(cors.New())
	svc.app.Use(MonitoringMiddleware(svc.monitoringSvc))
	svc.app.Use(svc.rateLimitSvc.IPRateLimit())

	svc.registerRoutes()

	log.Info().Int("port", svc.port).Msg("HTTP server started")
	return svc.app.Listen(fmt.Sprintf(":%d", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

func (svc *HttpService) registerRoutes() {
	exerciseHandler := handlers.NewExerciseHandler(svc.exerciseSvc, svc.contentSvc)

	docs.SwaggerInfo.BasePath = ""
	svc.app.Get("/swagger/*", swagger.HandlerDefault)
	svc.app.Get("/health", func(c *fiber.Ctx) error {
		return shared.ResponseOK(c, nil)
	})

	api := svc.app.Group("/api/v1/exercises")
	if svc.authMiddleware != nil {
		api.Use(svc.authMiddleware.OptionalAuth())
	}

	api.Post("/pair-match", svc.rateLimitSvc.RateLimit("session_create"), exerciseHandler.CreatePairMatch)
	api.Post("/sequence", svc.rateLimitSvc.RateLimit("session_create"), exerciseHandler.CreateSequence)
	api.Post("/category-naming", svc.rateLimitSvc.RateLimit("session_create"), exerciseHandler.CreateCategoryNaming)
	api.Get("/categories", exerciseHandler.ListCategories)
	if svc.authMiddleware != nil {
		api.Get("/attempts", svc.authMiddleware.RequiredAuth(), exerciseHandler.ListAttempts)
	}

	api.Get("/:sessionId", exerciseHandler.GetSession)
	api.Post("/:sessionId/start", exerciseHandler.StartSession)
	api.Post("/:sessionId/pause", exerciseHandler.PauseSession)
	api.Post("/:sessionId/resume", exerciseHandler.ResumeSession)
	api.Post("/:sessionId/reset", exerciseHandler.ResetSession)

	events := svc.rateLimitSvc.RateLimit("session_event")
	api.Post("/:sessionId/flip", events, exerciseHandler.FlipCard)
	api.Post("/:sessionId/swap", events, exerciseHandler.SwapSteps)
	api.Post("/:sessionId/submit", events, exerciseHandler.SubmitOrder)
	api.Post("/:sessionId/entries", events, exerciseHandler.SubmitEntry)
	api.Get("/:sessionId/hint", exerciseHandler.GetHint)

	api.Post("/:sessionId/retry-submission", svc.rateLimitSvc.RateLimit("result_submit"), exerciseHandler.RetrySubmission)
}

// errorHandler maps AppError to its status and message, everything else to a
// plain 500.
func errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		log.Debug().Err(appErr.Err).Int("status", appErr.StatusCode).Str("path", c.Path()).Msg("Request failed")
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	return shared.ResponseJSON(c, http.StatusInternalServerError, "Internal Server Error", nil)
}
