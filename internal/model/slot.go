package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Slot is a row of timetable_slots: one weekly recurring session of a class.
//
// A (day, session template) pair may hold at most one slot per class, per
// trainer and per room; the three partial unique indexes enforce it in storage.
type Slot struct {
	SlotID            string  `gorm:"type:varchar(64);primaryKey" json:"slot_id"`
	DayOfWeek         Weekday `gorm:"type:smallint;not null;uniqueIndex:uk_slots_day_template_class,priority:1,where:deleted_at IS NULL;uniqueIndex:uk_slots_day_template_trainer,priority:1,where:deleted_at IS NULL;uniqueIndex:uk_slots_day_template_room,priority:1,where:deleted_at IS NULL" json:"day_of_week"`
	SessionNumber     int     `gorm:"type:smallint;not null"      json:"session_number"`
	SessionTemplateID string  `gorm:"type:varchar(64);not null;uniqueIndex:uk_slots_day_template_class,priority:2;uniqueIndex:uk_slots_day_template_trainer,priority:2;uniqueIndex:uk_slots_day_template_room,priority:2" json:"session_template_id"`
	TrainerID         string  `gorm:"type:varchar(64);not null;uniqueIndex:uk_slots_day_template_trainer,priority:3" json:"trainer_id"`
	ModuleID          string  `gorm:"type:varchar(64);not null"   json:"module_id"`
	ClassID           string  `gorm:"type:varchar(64);not null;index;uniqueIndex:uk_slots_day_template_class,priority:3" json:"class_id"`
	RoomID            string  `gorm:"type:varchar(64);not null;uniqueIndex:uk_slots_day_template_room,priority:3" json:"room_id"`
	VersionedModel

	// associations, resolved by the slot builder or preloaded on reads
	SessionTemplate *SessionTemplate `gorm:"foreignKey:SessionTemplateID;references:SessionTemplateID" json:"session_template,omitempty"`
	Trainer         *Trainer         `gorm:"foreignKey:TrainerID;references:TrainerID"                 json:"trainer,omitempty"`
	Module          *Module          `gorm:"foreignKey:ModuleID;references:ModuleID"                   json:"module,omitempty"`
	Class           *Class           `gorm:"foreignKey:ClassID;references:ClassID"                     json:"class,omitempty"`
	Room            *Room            `gorm:"foreignKey:RoomID;references:RoomID"                       json:"room,omitempty"`
}

func (Slot) TableName() string { return "timetable_slots" }

// BeforeCreate assigns the slot identifier and the first version.
func (s *Slot) BeforeCreate(_ *gorm.DB) error {
	if s.SlotID == "" {
		s.SlotID = uuid.NewString()
	}
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
