package events

import "time"

const ShiftSwapLifecycleTopic = "ta.shift_swap.lifecycle.v1"

type ShiftSwapCompletedEvent struct {
	EventType        string    `json:"event_type"`
	SwapID           string    `json:"swap_id"`
	CompanyID        string    `json:"company_id"`
	SwapType         string    `json:"swap_type"`
	RequesterID      string    `json:"requester_id"`
	TargetEmployeeID string    `json:"target_employee_id"`
	OccurredAt       time.Time `json:"occurred_at"`
}
