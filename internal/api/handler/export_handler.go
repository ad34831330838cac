package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Hajjjaj37/gestion-pole-Dia/internal/service"
	"github.com/Hajjjaj37/gestion-pole-Dia/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler timetable export endpoints.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportClass downloads the weekly timetable of a class as xlsx.
// GET /api/v1/timetable/classes/:classId/export
func (h *ExportHandler) ExportClass(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportClassTimetable(c.Request.Context(), c.Param("classId"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	var nf *service.ResourceNotFoundError
	switch {
	case errors.As(err, &nf):
		response.NotFound(c, 17001, nf.Error())
	case errors.Is(err, service.ErrExportNoSlots):
		response.NotFound(c, 17401, "class has no timetable to export")
	default:
		response.InternalError(c)
	}
}
