package main

import (
	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/cognify-health/cognify_api/middleware"
	"github.com/cognify-health/cognify_api/services"
)

// @title Cognify Exercise API
// @version 1.0
// @description Cognitive exercise session engine: pair matching, sequence ordering and category naming with result submission.
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	authMiddleware := &middleware.AuthMiddleware{}
	httpSvc := &services.HttpService{}
	httpSvc.SetAuthMiddleware(authMiddleware)

	ctx, err := context.NewCtx(
		&services.SqlService{},
		&services.RedisService{},
		&services.JWTService{},
		&services.RateLimitService{},
		&services.MonitoringService{},
		&services.ContentService{},
		&services.CollectorService{},
		&services.ArchiveService{},
		&services.ExerciseService{},
		authMiddleware,

		httpSvc,
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
