package audit

import "time"

// Action describes what was done.
type Action string

const (
	ActionRecordUpdated    Action = "record_updated"
	ActionRecordDeleted    Action = "record_deleted"
	ActionSidebarReordered Action = "sidebar_reordered"
	ActionThemeChanged     Action = "theme_changed"
	ActionLogin            Action = "login"
	ActionLogout           Action = "logout"
)

// Entry is a single audit trail record.
type Entry struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	ActorID       string    `json:"actor_id"`
	ActorEmail    string    `json:"actor_email,omitempty"`
	Action        Action    `json:"action"`
	Collection    string    `json:"collection,omitempty"`
	RecordID      string    `json:"record_id,omitempty"`
	Summary       string    `json:"summary"`
	Detail        string    `json:"detail,omitempty"`
	PreviousValue string    `json:"previous_value,omitempty"`
	NewValue      string    `json:"new_value,omitempty"`
}
