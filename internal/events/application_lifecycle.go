package events

import "time"

const ApplicationLifecycleTopic = "hr.application.lifecycle.v1"

const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationCompleted = "application.completed"
	EventApplicationRejected  = "application.rejected"
	EventApplicationCancelled = "application.cancelled"
)

// ApplicationLifecycleEvent is published through the outbox whenever an
// application leaves the requester's hands or reaches a terminal state.
type ApplicationLifecycleEvent struct {
	EventType     string    `json:"event_type"`
	ApplicationID int64     `json:"application_id"`
	CompanyID     int64     `json:"company_id"`
	UserID        int64     `json:"user_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}
