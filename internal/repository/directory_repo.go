package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Hajjjaj37/gestion-pole-Dia/internal/model"
)

// DirectoryRepository read-only access to the resources a slot references.
// Get* return gorm.ErrRecordNotFound for unknown identifiers.
type DirectoryRepository interface {
	Exists(ctx context.Context, kind model.ResourceKind, id string) (bool, error)
	GetTrainer(ctx context.Context, id string) (*model.Trainer, error)
	GetModule(ctx context.Context, id string) (*model.Module, error)
	GetRoom(ctx context.Context, id string) (*model.Room, error)
	GetClass(ctx context.Context, id string) (*model.Class, error)
	GetSessionTemplate(ctx context.Context, id string) (*model.SessionTemplate, error)
}

type directoryRepo struct {
	db *gorm.DB
}

// NewDirectoryRepo creates a DirectoryRepository.
func NewDirectoryRepo(db *gorm.DB) DirectoryRepository {
	return &directoryRepo{db: db}
}

func (r *directoryRepo) Exists(ctx context.Context, kind model.ResourceKind, id string) (bool, error) {
	var (
		target interface{}
		column string
	)
	switch kind {
	case model.ResourceTrainer:
		target, column = &model.Trainer{}, "trainer_id"
	case model.ResourceModule:
		target, column = &model.Module{}, "module_id"
	case model.ResourceRoom:
		target, column = &model.Room{}, "room_id"
	case model.ResourceClass:
		target, column = &model.Class{}, "class_id"
	case model.ResourceSessionTemplate:
		target, column = &model.SessionTemplate{}, "session_template_id"
	default:
		return false, fmt.Errorf("unknown resource kind %q", kind)
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(target).
		Where(column+" = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *directoryRepo) GetTrainer(ctx context.Context, id string) (*model.Trainer, error) {
	var t model.Trainer
	if err := r.db.WithContext(ctx).Where("trainer_id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *directoryRepo) GetModule(ctx context.Context, id string) (*model.Module, error) {
	var m model.Module
	if err := r.db.WithContext(ctx).Where("module_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *directoryRepo) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Where("room_id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *directoryRepo) GetClass(ctx context.Context, id string) (*model.Class, error) {
	var c model.Class
	if err := r.db.WithContext(ctx).Where("class_id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *directoryRepo) GetSessionTemplate(ctx context.Context, id string) (*model.SessionTemplate, error) {
	var st model.SessionTemplate
	if err := r.db.WithContext(ctx).Where("session_template_id = ?", id).First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}
