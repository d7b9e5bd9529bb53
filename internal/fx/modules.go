package fx

import (
	"pingpong-tracker/internal/api"
	"pingpong-tracker/internal/auth"
	"pingpong-tracker/internal/config"
	"pingpong-tracker/internal/database"
	"pingpong-tracker/internal/logger"
	"pingpong-tracker/internal/repository"
	"pingpong-tracker/internal/server"
	"pingpong-tracker/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewAthleteRepository),
	fx.Provide(repository.NewMatchRepository),
	// auth
	fx.Provide(auth.NewVerifier),
	fx.Provide(auth.NewGate),
	// external collaborators
	fx.Provide(api.NewCoachClient),
	// svc
	fx.Provide(service.NewRosterService),
	fx.Provide(service.NewSettlementService),
	fx.Provide(service.NewStandingsService),
	// server
	fx.Provide(server.NewServer),
)
