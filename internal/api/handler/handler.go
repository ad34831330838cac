package handler

import "github.com/Hajjjaj37/gestion-pole-Dia/internal/service"

// Handler aggregates the HTTP handlers.
type Handler struct {
	Timetable *TimetableHandler
	Export    *ExportHandler
}

// NewHandler creates the handler aggregate.
func NewHandler(svc *service.Service, maxUploadSize int64) *Handler {
	return &Handler{
		Timetable: NewTimetableHandler(svc.Timetable, maxUploadSize),
		Export:    NewExportHandler(svc.Export),
	}
}
