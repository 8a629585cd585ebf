package api

import (
	"log/slog"

	"github.com/shaiso/Gantry/internal/orchestrator"
	"github.com/shaiso/Gantry/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	service *orchestrator.Service
	runRepo *repo.RunRepo
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Service *orchestrator.Service
	RunRepo *repo.RunRepo
	Logger  *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		service: cfg.Service,
		runRepo: cfg.RunRepo,
		logger:  cfg.Logger,
	}
}
