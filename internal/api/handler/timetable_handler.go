package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Hajjjaj37/gestion-pole-Dia/internal/dto"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/model"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/service"
	"github.com/Hajjjaj37/gestion-pole-Dia/pkg/response"
)

// TimetableHandler slot allocation endpoints.
type TimetableHandler struct {
	svc           service.TimetableService
	maxUploadSize int64
}

// NewTimetableHandler creates a TimetableHandler. maxUploadSize bounds import
// uploads in bytes.
func NewTimetableHandler(svc service.TimetableService, maxUploadSize int64) *TimetableHandler {
	return &TimetableHandler{svc: svc, maxUploadSize: maxUploadSize}
}

// ── single slot ──

// Create POST /api/v1/timetable/slots
func (h *TimetableHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 17000, err.Error())
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.Created(c, resp)
}

// Get GET /api/v1/timetable/slots/:id
func (h *TimetableHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Update PUT /api/v1/timetable/slots/:id
func (h *TimetableHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 17000, err.Error())
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete DELETE /api/v1/timetable/slots/:id
func (h *TimetableHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── listing ──

// List GET /api/v1/timetable/slots?day=&class_id=
func (h *TimetableHandler) List(c *gin.Context) {
	var req dto.SlotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 17000, err.Error())
		return
	}

	var day model.Weekday
	if req.Day != "" {
		d, err := model.ParseWeekday(req.Day)
		if err != nil {
			handleTimetableError(c, err)
			return
		}
		day = d
	}

	ctx := c.Request.Context()
	var (
		resp []dto.SlotResponse
		err  error
	)
	switch {
	case req.ClassID != "" && day != 0:
		resp, err = h.svc.ListByClassAndDay(ctx, req.ClassID, day)
	case req.ClassID != "":
		resp, err = h.svc.ListByClass(ctx, req.ClassID)
	case day != 0:
		resp, err = h.svc.ListByDay(ctx, day)
	default:
		resp, err = h.svc.ListAll(ctx)
	}
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// ListByDay GET /api/v1/timetable/days/:day
func (h *TimetableHandler) ListByDay(c *gin.Context) {
	day, err := model.ParseWeekday(c.Param("day"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	resp, err := h.svc.ListByDay(c.Request.Context(), day)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// ListByClassAndDay GET /api/v1/timetable/classes/:classId/days/:day
func (h *TimetableHandler) ListByClassAndDay(c *gin.Context) {
	day, err := model.ParseWeekday(c.Param("day"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	resp, err := h.svc.ListByClassAndDay(c.Request.Context(), c.Param("classId"), day)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// ── week ──

// CreateWeek POST /api/v1/timetable/classes/:classId/week
//
// Body is a JSON array of proposed assignments. Rejected rows are reported in
// warnings; the call still succeeds.
func (h *TimetableHandler) CreateWeek(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var rows []dto.ProposedAssignment
	if err := c.ShouldBindJSON(&rows); err != nil {
		response.BadRequest(c, 17000, err.Error())
		return
	}

	resp, err := h.svc.CreateWeek(c.Request.Context(), c.Param("classId"), rows, userID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.Created(c, resp)
}

// ImportWeek POST /api/v1/timetable/classes/:classId/import
//
// multipart/form-data with field "file" (csv, xlsx, xls or html). The format
// comes from the file extension unless the "format" field names it.
func (h *TimetableHandler) ImportWeek(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 17106, "upload a timetable file in the \"file\" field")
		return
	}
	defer file.Close()

	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		response.Error(c, http.StatusRequestEntityTooLarge, 17107, "uploaded file is too large")
		return
	}

	format := service.TableFormat(strings.ToLower(c.PostForm("format")))
	if format == "" {
		format, err = service.FormatFromFilename(header.Filename)
		if err != nil {
			handleTimetableError(c, err)
			return
		}
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, 17105, "uploaded file could not be read")
		return
	}

	resp, err := h.svc.ImportWeek(c.Request.Context(), c.Param("classId"), raw, format, userID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.Created(c, resp)
}

// ClearClass DELETE /api/v1/timetable/classes/:classId
func (h *TimetableHandler) ClearClass(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.ClearClass(c.Request.Context(), c.Param("classId"), userID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// handleTimetableError maps service errors to HTTP responses.
func handleTimetableError(c *gin.Context, err error) {
	var (
		nf       *service.ResourceNotFoundError
		conflict *service.SlotConflictError
	)
	switch {
	case errors.As(err, &nf):
		response.NotFound(c, 17001, nf.Error())
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 17002, "slot not found")
	case errors.As(err, &conflict):
		response.ErrorWithDetails(c, http.StatusConflict, 17003, "slot conflict", strings.Join(conflict.Axes, ","))
	case errors.Is(err, service.ErrAlreadyScheduled):
		response.Conflict(c, 17004, "class already has a timetable, clear it first")
	case errors.Is(err, service.ErrIncompleteWeek):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17005, "incomplete week", err.Error())
	case errors.Is(err, model.ErrInvalidDay):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17006, "invalid day", err.Error())
	case errors.Is(err, service.ErrSlotVersionConflict):
		response.Conflict(c, 17007, "slot was modified by another request, reload and retry")
	case errors.Is(err, service.ErrAllocationBusy):
		response.Error(c, http.StatusServiceUnavailable, 17008, "another allocation is in progress, retry later")
	case errors.Is(err, service.ErrImportEmpty):
		response.BadRequest(c, 17101, "import table has no data rows")
	case errors.Is(err, service.ErrImportBadHeader):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17102, "invalid import header", err.Error())
	case errors.Is(err, service.ErrImportTooManyRows):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17103, "import table too large", err.Error())
	case errors.Is(err, service.ErrImportUnsupportedFormat):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17104, "unsupported import format", err.Error())
	case errors.Is(err, service.ErrImportUnreadable):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17105, "import table could not be read", err.Error())
	default:
		response.InternalError(c)
	}
}
