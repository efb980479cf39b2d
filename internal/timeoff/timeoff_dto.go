package timeoff

import "time"

type CreateTimeOffRequest struct {
	Type      string  `json:"type" binding:"required,oneof=vacation sick personal unpaid"`
	StartDate string  `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string  `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason    *string `json:"reason"`
}

type DecideTimeOffRequest struct {
	Approve bool    `json:"approve"`
	Notes   *string `json:"notes"`
}

type TimeOffResponse struct {
	ID             string  `json:"id"`
	CompanyID      string  `json:"company_id"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	Type           string  `json:"type"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	TotalDays      int     `json:"total_days"`
	Reason         *string `json:"reason,omitempty"`
	Status         string  `json:"status"`
	ResponderID    *string `json:"responder_id,omitempty"`
	ResponderNotes *string `json:"responder_notes,omitempty"`
	DecidedAt      *string `json:"decided_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func mapToResponse(r TimeOffRequest) TimeOffResponse {
	resp := TimeOffResponse{
		ID:             r.ID.String(),
		CompanyID:      r.CompanyID.String(),
		EmployeeID:     r.EmployeeID.String(),
		EmployeeName:   r.EmployeeName,
		Type:           r.Type,
		StartDate:      r.StartDate.Format("2006-01-02"),
		EndDate:        r.EndDate.Format("2006-01-02"),
		TotalDays:      r.TotalDays,
		Reason:         r.Reason,
		Status:         r.Status,
		ResponderNotes: r.ResponderNotes,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
	if r.ResponderID != nil {
		v := r.ResponderID.String()
		resp.ResponderID = &v
	}
	if r.DecidedAt != nil {
		v := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}

func mapToListResponse(requests []TimeOffRequest) []TimeOffResponse {
	resp := make([]TimeOffResponse, len(requests))
	for i, r := range requests {
		resp[i] = mapToResponse(r)
	}
	return resp
}
