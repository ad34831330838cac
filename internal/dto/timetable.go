package dto

// ── single slot ──

// CreateSlotRequest POST /timetable/slots
type CreateSlotRequest struct {
	Day               string `json:"day" binding:"required"`
	SessionNumber     int    `json:"session_number" binding:"omitempty,min=1"` // defaults to 1
	SessionTemplateID string `json:"session_template_id" binding:"required"`
	TrainerID         string `json:"trainer_id" binding:"required"`
	ModuleID          string `json:"module_id" binding:"required"`
	ClassID           string `json:"class_id" binding:"required"`
	RoomID            string `json:"room_id" binding:"required"`
}

// UpdateSlotRequest PUT /timetable/slots/:id. Omitted fields keep their value.
type UpdateSlotRequest struct {
	Day               *string `json:"day"`
	SessionNumber     *int    `json:"session_number" binding:"omitempty,min=1"`
	SessionTemplateID *string `json:"session_template_id"`
	TrainerID         *string `json:"trainer_id"`
	ModuleID          *string `json:"module_id"`
	ClassID           *string `json:"class_id"`
	RoomID            *string `json:"room_id"`
	Version           *int    `json:"version" binding:"omitempty,min=1"` // rejects the write when stale
}

// SlotListRequest GET /timetable/slots
type SlotListRequest struct {
	Day     string `form:"day"`
	ClassID string `form:"class_id"`
}

// ── week ──

// ProposedAssignment one row of a weekly batch or of an imported table.
type ProposedAssignment struct {
	Day               string `json:"day"`
	SessionTemplateID string `json:"session_template_id"`
	TrainerID         string `json:"trainer_id"`
	ModuleID          string `json:"module_id"`
	ClassID           string `json:"class_id"`
	RoomID            string `json:"room_id"`
}
