package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/internal/config"
	"github.com/temcen/tastematch/internal/services"
	"github.com/temcen/tastematch/internal/validation"
)

type Handlers struct {
	Health  *HealthHandler
	Profile *ProfileHandler
	Match   *MatchHandler
	Logs    *LogHandler
	Admin   *AdminHandler
}

func New(cfg *config.Config, logger *logrus.Logger, svc *services.Services, schemas *validation.SchemaValidator) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(logger, svc.Health),
		Profile: NewProfileHandler(logger, svc.Profiles, svc.Selector.Engine(), svc.Metrics),
		Match:   NewMatchHandler(logger, svc.Profiles, svc.Listings, svc.Matches, svc.Selector, &cfg.Matching, schemas),
		Logs:    NewLogHandler(logger, svc.Listings, svc.Profiles, schemas),
		Admin:   NewAdminHandler(logger, svc.Round, svc.Tracker, svc.Profiles),
	}
}
