package punch

import "time"

type PunchResponse struct {
	ID               string   `json:"id"`
	EmployeeID       string   `json:"employee_id"`
	Type             string   `json:"type"`
	Timestamp        string   `json:"timestamp"`
	BreakType        *string  `json:"break_type,omitempty"`
	ScheduledMinutes *int     `json:"scheduled_minutes,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

func MapToResponse(p Punch) PunchResponse {
	return PunchResponse{
		ID:               p.ID.String(),
		EmployeeID:       p.EmployeeID.String(),
		Type:             p.Type,
		Timestamp:        p.Timestamp.Format(time.RFC3339),
		BreakType:        p.BreakType,
		ScheduledMinutes: p.ScheduledMinutes,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		Notes:            p.Notes,
	}
}

func MapToListResponse(punches []Punch) []PunchResponse {
	resp := make([]PunchResponse, len(punches))
	for i, p := range punches {
		resp[i] = MapToResponse(p)
	}
	return resp
}
