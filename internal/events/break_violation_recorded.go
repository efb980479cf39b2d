package events

import "time"

const BreakViolationTopic = "ta.break.violation.v1"

type BreakViolationRecordedEvent struct {
	EventType         string    `json:"event_type"`
	ViolationID       string    `json:"violation_id"`
	CompanyID         string    `json:"company_id"`
	EmployeeID        string    `json:"employee_id"`
	ViolationType     string    `json:"violation_type"`
	ScheduledMinutes  int       `json:"scheduled_minutes"`
	ActualMinutes     int       `json:"actual_minutes"`
	DifferenceMinutes int       `json:"difference_minutes"`
	OccurredAt        time.Time `json:"occurred_at"`
}
