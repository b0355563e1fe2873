package api

type setupScheduleRequest struct {
	PillType        string `json:"pill_type"`
	PillStartDate   string `json:"pill_start_date"`
	ReminderTime    string `json:"reminder_time"`
	ReminderEnabled *bool  `json:"reminder_enabled"`
}

// updateScheduleRequest keeps pointers so an absent field differs from false.
type updateScheduleRequest struct {
	IsTaken         *bool   `json:"is_taken"`
	IsActive        *bool   `json:"is_active"`
	ReminderEnabled *bool   `json:"reminder_enabled"`
	ReminderTime    *string `json:"reminder_time"`
	PillType        *string `json:"pill_type"`
}

type startCycleRequest struct {
	CycleStartDate string `json:"cycle_start_date"`
	CycleLength    int    `json:"cycle_length"`
}
