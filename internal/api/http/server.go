package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/maitriconnect/maitri-api/internal/observability"
)

// ServerConfig controls the fiber instance.
type ServerConfig struct {
	Name      string
	BodyLimit int
	Timeout   time.Duration
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// NewApp builds a fiber app with the global middleware chain attached.
func NewApp(cfg ServerConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fiberCfg := fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger, cfg.Metrics),
	}
	if cfg.BodyLimit > 0 {
		fiberCfg.BodyLimit = cfg.BodyLimit
	}
	app := fiber.New(fiberCfg)
	RegisterMiddlewares(app, logger, cfg.Metrics, cfg.Timeout)
	return app
}
