package dto

import "time"

// ── timetable responses ──

// SlotResponse one committed slot with its resolved references.
type SlotResponse struct {
	ID              string                   `json:"id"`
	Day             string                   `json:"day"`
	SessionNumber   int                      `json:"session_number"`
	SessionTemplate *SessionTemplateResponse `json:"session_template,omitempty"`
	Trainer         *TrainerResponse         `json:"trainer,omitempty"`
	Module          *ModuleResponse          `json:"module,omitempty"`
	Class           *ClassResponse           `json:"class,omitempty"`
	Room            *RoomResponse            `json:"room,omitempty"`
	Version         int                      `json:"version"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// SessionTemplateResponse brief session template.
type SessionTemplateResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Period    string `json:"period"`
	Number    int    `json:"number"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// TrainerResponse brief trainer.
type TrainerResponse struct {
	ID        string `json:"id"`
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Specialty string `json:"specialty,omitempty"`
}

// ModuleResponse brief module.
type ModuleResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DurationHours int    `json:"duration_hours"`
}

// ClassResponse brief class.
type ClassResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoomResponse brief room.
type RoomResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Number   string `json:"number"`
	Capacity int    `json:"capacity"`
}

// WeekScheduleResponse result of a weekly batch or an import.
// Complete is false whenever at least one row was rejected.
type WeekScheduleResponse struct {
	Created  []SlotResponse `json:"created"`
	Warnings []string       `json:"warnings"`
	Complete bool           `json:"complete"`
}

// ClearClassResponse DELETE /timetable/classes/:classId
type ClearClassResponse struct {
	ClassID string `json:"class_id"`
	Deleted int64  `json:"deleted"`
}
