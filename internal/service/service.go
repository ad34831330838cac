package service

import (
	"go.uber.org/zap"

	"github.com/Hajjjaj37/gestion-pole-Dia/config"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/repository"
)

// Service aggregates the business services.
type Service struct {
	Timetable TimetableService
	Export    ExportService
}

// NewService wires the services. locker serialises slot allocation; pass
// NewLocalLocker() when no Redis is configured.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	locker Locker,
	logger *zap.Logger,
) *Service {
	return &Service{
		Timetable: NewTimetableService(cfg, repo, locker, logger),
		Export:    NewExportService(repo, logger),
	}
}
