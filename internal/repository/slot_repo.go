package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Hajjjaj37/gestion-pole-Dia/internal/model"
	pkgerrors "github.com/Hajjjaj37/gestion-pole-Dia/pkg/errors"
)

// SlotRepository slot store.
//
// Reads skip soft-deleted rows. The three Exists*Conflict queries back the
// conflict checker; excludeSlotID may be empty.
type SlotRepository interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id string) (*model.Slot, error)
	Update(ctx context.Context, slot *model.Slot) error
	Delete(ctx context.Context, id string, deletedBy string) error
	DeleteByClass(ctx context.Context, classID string, deletedBy string) (int64, error)

	List(ctx context.Context) ([]model.Slot, error)
	ListByDay(ctx context.Context, day model.Weekday) ([]model.Slot, error)
	ListByClass(ctx context.Context, classID string) ([]model.Slot, error)
	ListByClassAndDay(ctx context.Context, classID string, day model.Weekday) ([]model.Slot, error)
	ExistsByClass(ctx context.Context, classID string) (bool, error)

	ExistsClassConflict(ctx context.Context, day model.Weekday, templateID, classID, excludeSlotID string) (bool, error)
	ExistsTrainerConflict(ctx context.Context, day model.Weekday, templateID, trainerID, excludeSlotID string) (bool, error)
	ExistsRoomConflict(ctx context.Context, day model.Weekday, templateID, roomID, excludeSlotID string) (bool, error)
}

type slotRepo struct {
	db *gorm.DB
}

// NewSlotRepo creates a SlotRepository.
func NewSlotRepo(db *gorm.DB) SlotRepository {
	return &slotRepo{db: db}
}

func (r *slotRepo) Create(ctx context.Context, slot *model.Slot) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(slot).Error
	return translateWriteError(err)
}

func (r *slotRepo) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	var slot model.Slot
	err := r.preloaded(ctx).
		Where("slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// Update writes every reference column guarded by the optimistic lock.
func (r *slotRepo) Update(ctx context.Context, slot *model.Slot) error {
	oldVersion := slot.Version
	result := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("slot_id = ? AND version = ?", slot.SlotID, oldVersion).
		Updates(map[string]interface{}{
			"day_of_week":         slot.DayOfWeek,
			"session_number":      slot.SessionNumber,
			"session_template_id": slot.SessionTemplateID,
			"trainer_id":          slot.TrainerID,
			"module_id":           slot.ModuleID,
			"class_id":            slot.ClassID,
			"room_id":             slot.RoomID,
			"updated_by":          slot.UpdatedBy,
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	slot.Version = oldVersion + 1
	return nil
}

func (r *slotRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("slot_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *slotRepo) DeleteByClass(ctx context.Context, classID string, deletedBy string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("class_id = ?", classID).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	return result.RowsAffected, result.Error
}

// ── listing ──

func (r *slotRepo) List(ctx context.Context) ([]model.Slot, error) {
	var slots []model.Slot
	err := r.preloaded(ctx).
		Order("class_id ASC, day_of_week ASC, session_number ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepo) ListByDay(ctx context.Context, day model.Weekday) ([]model.Slot, error) {
	var slots []model.Slot
	err := r.preloaded(ctx).
		Where("day_of_week = ?", day).
		Order("session_number ASC, class_id ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepo) ListByClass(ctx context.Context, classID string) ([]model.Slot, error) {
	var slots []model.Slot
	err := r.preloaded(ctx).
		Where("class_id = ?", classID).
		Order("day_of_week ASC, session_number ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepo) ListByClassAndDay(ctx context.Context, classID string, day model.Weekday) ([]model.Slot, error) {
	var slots []model.Slot
	err := r.preloaded(ctx).
		Where("class_id = ? AND day_of_week = ?", classID, day).
		Order("session_number ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepo) ExistsByClass(ctx context.Context, classID string) (bool, error) {
	return r.exists(r.db.WithContext(ctx).Where("class_id = ?", classID), "")
}

// ── conflict queries ──

func (r *slotRepo) ExistsClassConflict(ctx context.Context, day model.Weekday, templateID, classID, excludeSlotID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Where("day_of_week = ? AND session_template_id = ? AND class_id = ?", day, templateID, classID)
	return r.exists(q, excludeSlotID)
}

func (r *slotRepo) ExistsTrainerConflict(ctx context.Context, day model.Weekday, templateID, trainerID, excludeSlotID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Where("day_of_week = ? AND session_template_id = ? AND trainer_id = ?", day, templateID, trainerID)
	return r.exists(q, excludeSlotID)
}

func (r *slotRepo) ExistsRoomConflict(ctx context.Context, day model.Weekday, templateID, roomID, excludeSlotID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Where("day_of_week = ? AND session_template_id = ? AND room_id = ?", day, templateID, roomID)
	return r.exists(q, excludeSlotID)
}

func (r *slotRepo) exists(q *gorm.DB, excludeSlotID string) (bool, error) {
	if excludeSlotID != "" {
		q = q.Where("slot_id <> ?", excludeSlotID)
	}
	var count int64
	if err := q.Model(&model.Slot{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *slotRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("SessionTemplate").
		Preload("Trainer").
		Preload("Module").
		Preload("Class").
		Preload("Room")
}
