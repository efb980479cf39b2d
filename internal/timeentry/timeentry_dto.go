package timeentry

import "time"

type ClockInRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     *string  `json:"notes"`
}

type ClockOutRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     *string  `json:"notes"`
}

type TimeEntryResponse struct {
	ID                 string  `json:"id"`
	CompanyID          string  `json:"company_id"`
	EmployeeID         string  `json:"employee_id"`
	EntryDate          string  `json:"entry_date"`
	ClockIn            string  `json:"clock_in"`
	ClockOut           *string `json:"clock_out,omitempty"`
	BreakMinutes       int     `json:"break_minutes"`
	UnpaidBreakMinutes int     `json:"unpaid_break_minutes"`
	PaidBreakMinutes   int     `json:"paid_break_minutes"`
	TotalHours         float64 `json:"total_hours"`
	Status             string  `json:"status"`
	Notes              *string `json:"notes,omitempty"`
	ApprovedBy         *string `json:"approved_by,omitempty"`
	ApprovedAt         *string `json:"approved_at,omitempty"`
}

func mapToResponse(e TimeEntry) TimeEntryResponse {
	resp := TimeEntryResponse{
		ID:                 e.ID.String(),
		CompanyID:          e.CompanyID.String(),
		EmployeeID:         e.EmployeeID.String(),
		EntryDate:          e.EntryDate.Format("2006-01-02"),
		ClockIn:            e.ClockIn.Format(time.RFC3339),
		BreakMinutes:       e.BreakMinutes,
		UnpaidBreakMinutes: e.UnpaidBreakMinutes,
		PaidBreakMinutes:   e.PaidBreakMinutes,
		TotalHours:         e.TotalHours,
		Status:             e.Status,
		Notes:              e.Notes,
	}
	if e.ClockOut != nil {
		v := e.ClockOut.Format(time.RFC3339)
		resp.ClockOut = &v
	}
	if e.ApprovedBy != nil {
		v := e.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if e.ApprovedAt != nil {
		v := e.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapToListResponse(entries []TimeEntry) []TimeEntryResponse {
	resp := make([]TimeEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = mapToResponse(e)
	}
	return resp
}
