package handler

import (
	"github.com/rs/zerolog"

	"nexus/backend/internal/config"
	"nexus/backend/internal/peerhub"
)

// Handler wires HTTP routes to the hub.
type Handler struct {
	Hub *peerhub.HubService
	Cfg config.Config
	Log zerolog.Logger
}

func NewHandler(hub *peerhub.HubService, cfg config.Config, log zerolog.Logger) *Handler {
	return &Handler{Hub: hub, Cfg: cfg, Log: log}
}
