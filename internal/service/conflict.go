package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Hajjjaj37/gestion-pole-Dia/internal/model"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/repository"
)

// Conflict axes.
const (
	AxisClass   = "class"
	AxisTrainer = "trainer"
	AxisRoom    = "room"
)

// SlotConflictError lists the axes on which a proposed slot collides.
type SlotConflictError struct {
	Axes []string
}

func (e *SlotConflictError) Error() string {
	if len(e.Axes) == 0 {
		return ErrSlotConflict.Error()
	}
	return fmt.Sprintf("%s on %s", ErrSlotConflict.Error(), strings.Join(e.Axes, ", "))
}

func (e *SlotConflictError) Unwrap() error { return ErrSlotConflict }

// slotProbe the (day, session template) occupation a write would take.
type slotProbe struct {
	Day               model.Weekday
	SessionTemplateID string
	TrainerID         string
	RoomID            string
	ClassID           string
	ExcludeSlotID     string
}

// hasConflict reports whether p collides with a committed slot on any axis.
// It must be called with the repository of the running transaction so rows
// written earlier in the same batch are seen.
func hasConflict(ctx context.Context, slots repository.SlotRepository, p slotProbe) (bool, error) {
	ok, err := slots.ExistsClassConflict(ctx, p.Day, p.SessionTemplateID, p.ClassID, p.ExcludeSlotID)
	if err != nil || ok {
		return ok, err
	}
	ok, err = slots.ExistsTrainerConflict(ctx, p.Day, p.SessionTemplateID, p.TrainerID, p.ExcludeSlotID)
	if err != nil || ok {
		return ok, err
	}
	return slots.ExistsRoomConflict(ctx, p.Day, p.SessionTemplateID, p.RoomID, p.ExcludeSlotID)
}

// conflictAxes evaluates all three axes. Empty result means no conflict.
func conflictAxes(ctx context.Context, slots repository.SlotRepository, p slotProbe) ([]string, error) {
	checks := []struct {
		axis  string
		exist func() (bool, error)
	}{
		{AxisClass, func() (bool, error) {
			return slots.ExistsClassConflict(ctx, p.Day, p.SessionTemplateID, p.ClassID, p.ExcludeSlotID)
		}},
		{AxisTrainer, func() (bool, error) {
			return slots.ExistsTrainerConflict(ctx, p.Day, p.SessionTemplateID, p.TrainerID, p.ExcludeSlotID)
		}},
		{AxisRoom, func() (bool, error) {
			return slots.ExistsRoomConflict(ctx, p.Day, p.SessionTemplateID, p.RoomID, p.ExcludeSlotID)
		}},
	}

	var axes []string
	for _, c := range checks {
		ok, err := c.exist()
		if err != nil {
			return nil, err
		}
		if ok {
			axes = append(axes, c.axis)
		}
	}
	return axes, nil
}
