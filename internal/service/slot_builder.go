package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Hajjjaj37/gestion-pole-Dia/internal/dto"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/model"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/repository"
)

// ResourceNotFoundError names the reference that could not be resolved.
type ResourceNotFoundError struct {
	Resource model.ResourceKind
	ID       string
}

func (e *ResourceNotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s reference is missing", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *ResourceNotFoundError) Unwrap() error { return ErrResourceNotFound }

// proposal is a ProposedAssignment whose day has been parsed.
type proposal struct {
	Day               model.Weekday
	SessionTemplateID string
	TrainerID         string
	ModuleID          string
	ClassID           string
	RoomID            string
}

func newProposal(day model.Weekday, a dto.ProposedAssignment) proposal {
	return proposal{
		Day:               day,
		SessionTemplateID: a.SessionTemplateID,
		TrainerID:         a.TrainerID,
		ModuleID:          a.ModuleID,
		ClassID:           a.ClassID,
		RoomID:            a.RoomID,
	}
}

func (p proposal) probe(excludeSlotID string) slotProbe {
	return slotProbe{
		Day:               p.Day,
		SessionTemplateID: p.SessionTemplateID,
		TrainerID:         p.TrainerID,
		RoomID:            p.RoomID,
		ClassID:           p.ClassID,
		ExcludeSlotID:     excludeSlotID,
	}
}

// buildSlot resolves the five references of p and returns an unsaved slot.
// An unresolvable reference yields *ResourceNotFoundError; any other error is
// a directory failure.
func buildSlot(ctx context.Context, dir repository.DirectoryRepository, p proposal, sessionNumber int) (*model.Slot, error) {
	template, err := resolve(ctx, model.ResourceSessionTemplate, p.SessionTemplateID, dir.GetSessionTemplate)
	if err != nil {
		return nil, err
	}
	trainer, err := resolve(ctx, model.ResourceTrainer, p.TrainerID, dir.GetTrainer)
	if err != nil {
		return nil, err
	}
	module, err := resolve(ctx, model.ResourceModule, p.ModuleID, dir.GetModule)
	if err != nil {
		return nil, err
	}
	class, err := resolve(ctx, model.ResourceClass, p.ClassID, dir.GetClass)
	if err != nil {
		return nil, err
	}
	room, err := resolve(ctx, model.ResourceRoom, p.RoomID, dir.GetRoom)
	if err != nil {
		return nil, err
	}

	return &model.Slot{
		DayOfWeek:         p.Day,
		SessionNumber:     sessionNumber,
		SessionTemplateID: template.SessionTemplateID,
		TrainerID:         trainer.TrainerID,
		ModuleID:          module.ModuleID,
		ClassID:           class.ClassID,
		RoomID:            room.RoomID,
		SessionTemplate:   template,
		Trainer:           trainer,
		Module:            module,
		Class:             class,
		Room:              room,
	}, nil
}

func resolve[T any](ctx context.Context, kind model.ResourceKind, id string, get func(context.Context, string) (*T, error)) (*T, error) {
	if id == "" {
		return nil, &ResourceNotFoundError{Resource: kind}
	}
	v, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ResourceNotFoundError{Resource: kind, ID: id}
		}
		return nil, fmt.Errorf("lookup %s %q: %w", kind, id, err)
	}
	return v, nil
}
