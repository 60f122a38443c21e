package fx

import (
	"github.com/emersonmendes/warzone-4us/internal/api"
	"github.com/emersonmendes/warzone-4us/internal/auth"
	"github.com/emersonmendes/warzone-4us/internal/config"
	"github.com/emersonmendes/warzone-4us/internal/logger"
	"github.com/emersonmendes/warzone-4us/internal/penalty"
	"github.com/emersonmendes/warzone-4us/internal/ratelimit"
	"github.com/emersonmendes/warzone-4us/internal/server"
	"github.com/emersonmendes/warzone-4us/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	// shared state
	fx.Provide(ratelimit.NewGate),
	fx.Provide(auth.NewPool),
	fx.Provide(auth.NewSessionCache),
	fx.Provide(penalty.NewController),
	// upstream client
	fx.Provide(api.NewClient),
	fx.Provide(auth.NewLoginFlow),
	// svc
	fx.Provide(service.NewStatsService),
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewMatchDetailService),
	// server
	fx.Provide(server.New),
)
