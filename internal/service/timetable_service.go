package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hajjjaj37/gestion-pole-Dia/config"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/dto"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/model"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/repository"
	pkgerrors "github.com/Hajjjaj37/gestion-pole-Dia/pkg/errors"
)

// ── timetable errors ──

var (
	ErrResourceNotFound    = errors.New("referenced resource not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrSlotConflict        = errors.New("slot conflict")
	ErrAlreadyScheduled    = errors.New("class already has a timetable")
	ErrIncompleteWeek      = errors.New("week does not cover enough distinct days")
	ErrSlotVersionConflict = errors.New("slot was modified by another request, reload and retry")
	ErrAllocationBusy      = errors.New("another timetable allocation is in progress")

	ErrImportEmpty             = errors.New("import table has no data rows")
	ErrImportBadHeader         = errors.New("import table header is invalid")
	ErrImportTooManyRows       = errors.New("import table has too many rows")
	ErrImportUnsupportedFormat = errors.New("unsupported import format")
	ErrImportUnreadable        = errors.New("import table could not be read")
)

// ── TimetableService ──────────────────────────────────────
//
//   - Every write runs under the allocation lock and inside one transaction,
//     so the conflict checker sees rows committed earlier in the same batch.
//   - Batch rows are inserted in savepoints: a row rejected by the store's
//     unique indexes is dropped without undoing the rows before it.
//   - Precondition failures abort a batch before any row is written;
//     row failures become warnings.
// ─────────────────────────────────────────────────────────────

// TimetableService slot allocation engine.
type TimetableService interface {
	Create(ctx context.Context, req *dto.CreateSlotRequest, callerID string) (*dto.SlotResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSlotRequest, callerID string) (*dto.SlotResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SlotResponse, error)
	Delete(ctx context.Context, id string, callerID string) error

	ListAll(ctx context.Context) ([]dto.SlotResponse, error)
	ListByDay(ctx context.Context, day model.Weekday) ([]dto.SlotResponse, error)
	ListByClass(ctx context.Context, classID string) ([]dto.SlotResponse, error)
	ListByClassAndDay(ctx context.Context, classID string, day model.Weekday) ([]dto.SlotResponse, error)

	// CreateWeek allocates a whole week for a class from proposed assignments.
	CreateWeek(ctx context.Context, classID string, rows []dto.ProposedAssignment, callerID string) (*dto.WeekScheduleResponse, error)
	// ImportWeek allocates a week for a class from an uploaded table.
	ImportWeek(ctx context.Context, classID string, raw []byte, format TableFormat, callerID string) (*dto.WeekScheduleResponse, error)
	// ClearClass deletes every slot of a class so its week can be recreated.
	ClearClass(ctx context.Context, classID string, callerID string) (*dto.ClearClassResponse, error)
}

type timetableService struct {
	repo      *repository.Repository
	locker    Locker
	cfg       config.TimetableConfig
	importCfg config.ImportConfig
	logger    *zap.Logger
}

// NewTimetableService creates a TimetableService.
func NewTimetableService(cfg *config.Config, repo *repository.Repository, locker Locker, logger *zap.Logger) TimetableService {
	return &timetableService{
		repo:      repo,
		locker:    locker,
		cfg:       cfg.Timetable,
		importCfg: cfg.Import,
		logger:    logger,
	}
}

// ════════════════════════════════════════════════════════════
// Single slot
// ════════════════════════════════════════════════════════════

func (s *timetableService) Create(ctx context.Context, req *dto.CreateSlotRequest, callerID string) (*dto.SlotResponse, error) {
	day, err := model.ParseWeekday(req.Day)
	if err != nil {
		return nil, err
	}
	sessionNumber := req.SessionNumber
	if sessionNumber < 1 {
		sessionNumber = 1
	}

	p := proposal{
		Day:               day,
		SessionTemplateID: req.SessionTemplateID,
		TrainerID:         req.TrainerID,
		ModuleID:          req.ModuleID,
		ClassID:           req.ClassID,
		RoomID:            req.RoomID,
	}

	var created *model.Slot
	err = s.allocate(ctx, func(tx *repository.Repository) error {
		axes, err := conflictAxes(ctx, tx.Slot, p.probe(""))
		if err != nil {
			return err
		}
		if len(axes) > 0 {
			return &SlotConflictError{Axes: axes}
		}

		slot, err := buildSlot(ctx, tx.Directory, p, sessionNumber)
		if err != nil {
			return err
		}
		slot.CreatedBy = &callerID
		slot.UpdatedBy = &callerID

		if err := tx.Slot.Create(ctx, slot); err != nil {
			if errors.Is(err, pkgerrors.ErrDuplicateKey) {
				return &SlotConflictError{}
			}
			return err
		}
		created = slot
		return nil
	})
	if err != nil {
		s.logFailure("create slot", err)
		return nil, err
	}

	s.logger.Info("slot created",
		zap.String("slot_id", created.SlotID),
		zap.String("class_id", created.ClassID),
		zap.Stringer("day", created.DayOfWeek),
	)
	return toSlotResponse(created), nil
}

// Update replaces the supplied fields of a slot. The conflict checker only
// runs when strict updates are enabled; the store's unique indexes still
// reject a write that would double-book.
func (s *timetableService) Update(ctx context.Context, id string, req *dto.UpdateSlotRequest, callerID string) (*dto.SlotResponse, error) {
	var day *model.Weekday
	if req.Day != nil {
		d, err := model.ParseWeekday(*req.Day)
		if err != nil {
			return nil, err
		}
		day = &d
	}

	var updated *model.Slot
	err := s.allocate(ctx, func(tx *repository.Repository) error {
		slot, err := tx.Slot.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		if req.Version != nil && *req.Version != slot.Version {
			return ErrSlotVersionConflict
		}

		if day != nil {
			slot.DayOfWeek = *day
		}
		if req.SessionNumber != nil {
			slot.SessionNumber = *req.SessionNumber
		}
		if err := applyReferences(ctx, tx.Directory, slot, req); err != nil {
			return err
		}

		if s.cfg.StrictUpdate {
			axes, err := conflictAxes(ctx, tx.Slot, slotProbe{
				Day:               slot.DayOfWeek,
				SessionTemplateID: slot.SessionTemplateID,
				TrainerID:         slot.TrainerID,
				RoomID:            slot.RoomID,
				ClassID:           slot.ClassID,
				ExcludeSlotID:     slot.SlotID,
			})
			if err != nil {
				return err
			}
			if len(axes) > 0 {
				return &SlotConflictError{Axes: axes}
			}
		}

		slot.UpdatedBy = &callerID
		if err := tx.Slot.Update(ctx, slot); err != nil {
			switch {
			case errors.Is(err, pkgerrors.ErrOptimisticLock):
				return ErrSlotVersionConflict
			case errors.Is(err, pkgerrors.ErrDuplicateKey):
				return &SlotConflictError{}
			}
			return err
		}
		updated = slot
		return nil
	})
	if err != nil {
		s.logFailure("update slot", err)
		return nil, err
	}

	return toSlotResponse(updated), nil
}

// applyReferences resolves every reference present in req onto slot.
func applyReferences(ctx context.Context, dir repository.DirectoryRepository, slot *model.Slot, req *dto.UpdateSlotRequest) error {
	if req.SessionTemplateID != nil {
		v, err := resolve(ctx, model.ResourceSessionTemplate, *req.SessionTemplateID, dir.GetSessionTemplate)
		if err != nil {
			return err
		}
		slot.SessionTemplateID, slot.SessionTemplate = v.SessionTemplateID, v
	}
	if req.TrainerID != nil {
		v, err := resolve(ctx, model.ResourceTrainer, *req.TrainerID, dir.GetTrainer)
		if err != nil {
			return err
		}
		slot.TrainerID, slot.Trainer = v.TrainerID, v
	}
	if req.ModuleID != nil {
		v, err := resolve(ctx, model.ResourceModule, *req.ModuleID, dir.GetModule)
		if err != nil {
			return err
		}
		slot.ModuleID, slot.Module = v.ModuleID, v
	}
	if req.ClassID != nil {
		v, err := resolve(ctx, model.ResourceClass, *req.ClassID, dir.GetClass)
		if err != nil {
			return err
		}
		slot.ClassID, slot.Class = v.ClassID, v
	}
	if req.RoomID != nil {
		v, err := resolve(ctx, model.ResourceRoom, *req.RoomID, dir.GetRoom)
		if err != nil {
			return err
		}
		slot.RoomID, slot.Room = v.RoomID, v
	}
	return nil
}

func (s *timetableService) GetByID(ctx context.Context, id string) (*dto.SlotResponse, error) {
	slot, err := s.repo.Slot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("get slot failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSlotResponse(slot), nil
}

func (s *timetableService) Delete(ctx context.Context, id string, callerID string) error {
	err := s.allocate(ctx, func(tx *repository.Repository) error {
		if err := tx.Slot.Delete(ctx, id, callerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.logFailure("delete slot", err)
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// Listing
// ════════════════════════════════════════════════════════════

func (s *timetableService) ListAll(ctx context.Context) ([]dto.SlotResponse, error) {
	slots, err := s.repo.Slot.List(ctx)
	return s.toSlotList("list slots", slots, err)
}

func (s *timetableService) ListByDay(ctx context.Context, day model.Weekday) ([]dto.SlotResponse, error) {
	slots, err := s.repo.Slot.ListByDay(ctx, day)
	return s.toSlotList("list slots by day", slots, err)
}

func (s *timetableService) ListByClass(ctx context.Context, classID string) ([]dto.SlotResponse, error) {
	slots, err := s.repo.Slot.ListByClass(ctx, classID)
	return s.toSlotList("list slots by class", slots, err)
}

func (s *timetableService) ListByClassAndDay(ctx context.Context, classID string, day model.Weekday) ([]dto.SlotResponse, error) {
	slots, err := s.repo.Slot.ListByClassAndDay(ctx, classID, day)
	return s.toSlotList("list slots by class and day", slots, err)
}

func (s *timetableService) toSlotList(op string, slots []model.Slot, err error) ([]dto.SlotResponse, error) {
	if err != nil {
		s.logger.Error(op+" failed", zap.Error(err))
		return nil, err
	}
	result := make([]dto.SlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, *toSlotResponse(&slots[i]))
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// CreateWeek: weekly batch
// ════════════════════════════════════════════════════════════
//
//   1. parse days and group rows by day (a bad day fails the request)
//   2. class must exist and have no slots yet
//   3. at least min_week_days distinct days
//   4. a day with more than max_sessions_per_day rows is rejected whole
//   5. remaining rows in request order: class match → resolve → conflict → insert;
//      the session number is the row's position inside its day

func (s *timetableService) CreateWeek(ctx context.Context, classID string, rows []dto.ProposedAssignment, callerID string) (*dto.WeekScheduleResponse, error) {
	plan, err := planWeek(rows)
	if err != nil {
		return nil, err
	}

	result := newWeekResult()
	err = s.allocate(ctx, func(tx *repository.Repository) error {
		if err := checkClassPreconditions(ctx, tx, classID); err != nil {
			return err
		}
		if n := plan.DistinctDays(); n < s.cfg.MinWeekDays {
			return fmt.Errorf("%w: %d distinct days, at least %d required", ErrIncompleteWeek, n, s.cfg.MinWeekDays)
		}

		accepted, overloaded := plan.split(s.cfg.MaxSessionsPerDay)
		for _, g := range overloaded {
			result.warn("too many sessions for day %s (%d > %d)", g.Day, len(g.Rows), s.cfg.MaxSessionsPerDay)
		}

		for _, row := range accepted {
			day := row.Proposal.Day
			if row.Proposal.ClassID != classID {
				result.warn("row %d of %s does not match class %s", row.Position, day, classID)
				continue
			}

			slot, outcome, err := s.placeRow(ctx, tx, row.Proposal, row.Position, callerID)
			if err != nil {
				return err
			}
			switch outcome {
			case rowInvalid:
				result.warn("invalid entities for row %d of %s", row.Position, day)
			case rowConflict:
				result.warn("conflict for row %d of %s", row.Position, day)
			default:
				result.add(slot)
			}
		}
		return nil
	})
	if err != nil {
		s.logFailure("create week", err)
		return nil, err
	}

	s.logger.Info("weekly timetable created",
		zap.String("class_id", classID),
		zap.Int("created", len(result.Created)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result.response(), nil
}

// ════════════════════════════════════════════════════════════
// ImportWeek: tabular import
// ════════════════════════════════════════════════════════════
//
// Same class preconditions as CreateWeek, no completeness or per-day cap.
// A row's session number is its data row number in the file.

func (s *timetableService) ImportWeek(ctx context.Context, classID string, raw []byte, format TableFormat, callerID string) (*dto.WeekScheduleResponse, error) {
	rows, err := parseImportTable(raw, format, s.importCfg.MaxRows)
	if err != nil {
		return nil, err
	}

	result := newWeekResult()
	err = s.allocate(ctx, func(tx *repository.Repository) error {
		if err := checkClassPreconditions(ctx, tx, classID); err != nil {
			return err
		}

		for _, row := range rows {
			if row.Err != nil {
				result.warn("error at row %d: %v", row.Number, row.Err)
				continue
			}
			if row.ClassID != classID {
				result.warn("row %d does not match class %s", row.Number, classID)
				continue
			}

			slot, outcome, err := s.placeRow(ctx, tx, row.Proposal, row.Number, callerID)
			if err != nil {
				return err
			}
			switch outcome {
			case rowInvalid:
				result.warn("invalid entities for row %d", row.Number)
			case rowConflict:
				result.warn("conflict for row %d", row.Number)
			default:
				result.add(slot)
			}
		}
		return nil
	})
	if err != nil {
		s.logFailure("import week", err)
		return nil, err
	}

	s.logger.Info("weekly timetable imported",
		zap.String("class_id", classID),
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)),
		zap.Int("created", len(result.Created)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result.response(), nil
}

// ════════════════════════════════════════════════════════════
// ClearClass
// ════════════════════════════════════════════════════════════

func (s *timetableService) ClearClass(ctx context.Context, classID string, callerID string) (*dto.ClearClassResponse, error) {
	var deleted int64
	err := s.allocate(ctx, func(tx *repository.Repository) error {
		ok, err := tx.Directory.Exists(ctx, model.ResourceClass, classID)
		if err != nil {
			return err
		}
		if !ok {
			return &ResourceNotFoundError{Resource: model.ResourceClass, ID: classID}
		}
		deleted, err = tx.Slot.DeleteByClass(ctx, classID, callerID)
		return err
	})
	if err != nil {
		s.logFailure("clear class timetable", err)
		return nil, err
	}

	s.logger.Info("class timetable cleared", zap.String("class_id", classID), zap.Int64("deleted", deleted))
	return &dto.ClearClassResponse{ClassID: classID, Deleted: deleted}, nil
}

// ── helpers ──

// allocate runs fn under the allocation lock in one transaction.
func (s *timetableService) allocate(ctx context.Context, fn func(tx *repository.Repository) error) error {
	release, err := acquireLock(ctx, s.locker, allocationLockKey, s.cfg.LockTTL, s.cfg.LockWait, s.logger)
	if err != nil {
		return err
	}
	defer release()

	return s.repo.Transaction(ctx, fn)
}

func checkClassPreconditions(ctx context.Context, tx *repository.Repository, classID string) error {
	ok, err := tx.Directory.Exists(ctx, model.ResourceClass, classID)
	if err != nil {
		return err
	}
	if !ok {
		return &ResourceNotFoundError{Resource: model.ResourceClass, ID: classID}
	}

	scheduled, err := tx.Slot.ExistsByClass(ctx, classID)
	if err != nil {
		return err
	}
	if scheduled {
		return ErrAlreadyScheduled
	}
	return nil
}

type rowOutcome int

const (
	rowCreated rowOutcome = iota
	rowInvalid
	rowConflict
)

// placeRow resolves, conflict-checks and inserts one batch row. Only store
// failures are returned as errors.
func (s *timetableService) placeRow(ctx context.Context, tx *repository.Repository, p proposal, sessionNumber int, callerID string) (*model.Slot, rowOutcome, error) {
	slot, err := buildSlot(ctx, tx.Directory, p, sessionNumber)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return nil, rowInvalid, nil
		}
		return nil, 0, err
	}

	conflict, err := hasConflict(ctx, tx.Slot, p.probe(""))
	if err != nil {
		return nil, 0, err
	}
	if conflict {
		return nil, rowConflict, nil
	}

	slot.CreatedBy = &callerID
	slot.UpdatedBy = &callerID
	err = tx.Transaction(ctx, func(row *repository.Repository) error {
		return row.Slot.Create(ctx, slot)
	})
	if errors.Is(err, pkgerrors.ErrDuplicateKey) {
		return nil, rowConflict, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return slot, rowCreated, nil
}

// weekResult accumulates the outcome of a batch.
type weekResult struct {
	Created  []dto.SlotResponse
	Warnings []string
}

func newWeekResult() *weekResult {
	return &weekResult{Created: []dto.SlotResponse{}, Warnings: []string{}}
}

func (r *weekResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *weekResult) add(slot *model.Slot) {
	r.Created = append(r.Created, *toSlotResponse(slot))
}

func (r *weekResult) response() *dto.WeekScheduleResponse {
	return &dto.WeekScheduleResponse{
		Created:  r.Created,
		Warnings: r.Warnings,
		Complete: len(r.Warnings) == 0,
	}
}

var timetableBusinessErrors = []error{
	ErrResourceNotFound,
	ErrSlotNotFound,
	ErrSlotConflict,
	ErrAlreadyScheduled,
	ErrIncompleteWeek,
	ErrSlotVersionConflict,
	ErrAllocationBusy,
	model.ErrInvalidDay,
}

// logFailure logs errors that are not part of the API contract.
func (s *timetableService) logFailure(op string, err error) {
	for _, target := range timetableBusinessErrors {
		if errors.Is(err, target) {
			return
		}
	}
	s.logger.Error(op+" failed", zap.Error(err))
}

func toSlotResponse(slot *model.Slot) *dto.SlotResponse {
	resp := &dto.SlotResponse{
		ID:            slot.SlotID,
		Day:           slot.DayOfWeek.String(),
		SessionNumber: slot.SessionNumber,
		Version:       slot.Version,
		CreatedAt:     slot.CreatedAt,
		UpdatedAt:     slot.UpdatedAt,
	}

	if st := slot.SessionTemplate; st != nil {
		resp.SessionTemplate = &dto.SessionTemplateResponse{
			ID:        st.SessionTemplateID,
			Name:      st.Name,
			Period:    st.Period,
			Number:    st.Number,
			StartTime: st.StartTime,
			EndTime:   st.EndTime,
		}
	} else {
		resp.SessionTemplate = &dto.SessionTemplateResponse{ID: slot.SessionTemplateID}
	}
	if t := slot.Trainer; t != nil {
		resp.Trainer = &dto.TrainerResponse{
			ID:        t.TrainerID,
			LastName:  t.LastName,
			FirstName: t.FirstName,
			Email:     t.Email,
			Specialty: t.Specialty,
		}
	} else {
		resp.Trainer = &dto.TrainerResponse{ID: slot.TrainerID}
	}
	if m := slot.Module; m != nil {
		resp.Module = &dto.ModuleResponse{ID: m.ModuleID, Name: m.Name, DurationHours: m.DurationHours}
	} else {
		resp.Module = &dto.ModuleResponse{ID: slot.ModuleID}
	}
	if c := slot.Class; c != nil {
		resp.Class = &dto.ClassResponse{ID: c.ClassID, Name: c.Name}
	} else {
		resp.Class = &dto.ClassResponse{ID: slot.ClassID}
	}
	if r := slot.Room; r != nil {
		resp.Room = &dto.RoomResponse{ID: r.RoomID, Name: r.Name, Number: r.Number, Capacity: r.Capacity}
	} else {
		resp.Room = &dto.RoomResponse{ID: slot.RoomID}
	}

	return resp
}
