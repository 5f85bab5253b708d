package fx

import (
	"pickleball-sim/internal/config"
	"pickleball-sim/internal/database"
	"pickleball-sim/internal/logger"
	"pickleball-sim/internal/repository"
	"pickleball-sim/internal/server"
	"pickleball-sim/internal/service"
	"pickleball-sim/internal/tuning"

	"go.uber.org/fx"
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(tuning.Load),
	// repos
	fx.Provide(repository.NewProfileRepository),
	fx.Provide(repository.NewRatingHistoryRepository),
	fx.Provide(repository.NewMatchRepository),
	// svc
	fx.Provide(service.NewRatingService),
	fx.Provide(service.NewSimulationService),
	// server
	fx.Provide(server.NewPickleballServer),
)
