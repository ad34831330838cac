package model

import "time"

// ── Resource Directory records ──
//
// These tables are owned by the institute's administration modules. The
// timetable engine only reads them to validate and describe slot references.

// ResourceKind names the type of a referenced resource.
type ResourceKind string

const (
	ResourceTrainer         ResourceKind = "trainer"
	ResourceModule          ResourceKind = "module"
	ResourceRoom            ResourceKind = "room"
	ResourceClass           ResourceKind = "class"
	ResourceSessionTemplate ResourceKind = "session_template"
)

// Trainer is a row of trainers.
type Trainer struct {
	TrainerID string `gorm:"type:varchar(64);primaryKey" json:"trainer_id"`
	LastName  string `gorm:"type:varchar(100);not null"  json:"last_name"`
	FirstName string `gorm:"type:varchar(100);not null"  json:"first_name"`
	Email     string `gorm:"type:varchar(255);not null"  json:"email"`
	Specialty string `gorm:"type:varchar(100)"           json:"specialty"`
}

func (Trainer) TableName() string { return "trainers" }

// Module is a row of modules.
type Module struct {
	ModuleID      string `gorm:"type:varchar(64);primaryKey" json:"module_id"`
	Name          string `gorm:"type:varchar(150);not null"  json:"name"`
	Description   string `gorm:"type:text"                   json:"description"`
	DurationHours int    `gorm:"not null;default:0"          json:"duration_hours"`
}

func (Module) TableName() string { return "modules" }

// Room is a row of rooms.
type Room struct {
	RoomID      string `gorm:"type:varchar(64);primaryKey" json:"room_id"`
	Name        string `gorm:"type:varchar(100);not null"  json:"name"`
	Number      string `gorm:"type:varchar(30);not null"   json:"number"`
	Description string `gorm:"type:text"                   json:"description"`
	Capacity    int    `gorm:"not null;default:0"          json:"capacity"`
	Equipment   string `gorm:"type:text"                   json:"equipment"`
}

func (Room) TableName() string { return "rooms" }

// Class is a row of classes.
type Class struct {
	ClassID     string     `gorm:"type:varchar(64);primaryKey" json:"class_id"`
	Name        string     `gorm:"type:varchar(150);not null"  json:"name"`
	Description string     `gorm:"type:text"                   json:"description"`
	StartDate   *time.Time `gorm:"type:date"                   json:"start_date,omitempty"`
	EndDate     *time.Time `gorm:"type:date"                   json:"end_date,omitempty"`
}

func (Class) TableName() string { return "classes" }

// SessionTemplate is a row of session_templates: one ordinal time window of a teaching day.
type SessionTemplate struct {
	SessionTemplateID string `gorm:"type:varchar(64);primaryKey" json:"session_template_id"`
	Name              string `gorm:"type:varchar(50);not null"   json:"name"`   // "Séance 1"
	Period            string `gorm:"type:varchar(30);not null"   json:"period"` // morning | afternoon
	Number            int    `gorm:"type:smallint;not null"      json:"number"`
	StartTime         string `gorm:"type:varchar(5);not null"    json:"start_time"` // "08:00"
	EndTime           string `gorm:"type:varchar(5);not null"    json:"end_time"`
}

func (SessionTemplate) TableName() string { return "session_templates" }
