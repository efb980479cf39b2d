package breakpolicy

import "time"

type StartBreakRequest struct {
	BreakType        string  `json:"break_type" binding:"required,oneof=paid unpaid"`
	ScheduledMinutes int     `json:"scheduled_minutes" binding:"required,min=1,max=480"`
	Notes            *string `json:"notes"`
}

type EndBreakRequest struct {
	Force bool    `json:"force"`
	Notes *string `json:"notes"`
}

type EndBreakResponse struct {
	ActualMinutes    int    `json:"actual_minutes"`
	BreakType        string `json:"break_type"`
	ViolationCreated bool   `json:"violation_created"`
}

type ActiveBreakResponse struct {
	PunchID          string `json:"punch_id"`
	BreakType        string `json:"break_type"`
	ScheduledMinutes int    `json:"scheduled_minutes"`
	StartedAt        string `json:"started_at"`
	ElapsedMinutes   int    `json:"elapsed_minutes"`
}

type ReviewViolationRequest struct {
	Status string  `json:"status" binding:"required,oneof=acknowledged excused warned"`
	Notes  *string `json:"notes"`
}

type ViolationResponse struct {
	ID                string  `json:"id"`
	CompanyID         string  `json:"company_id"`
	EmployeeID        string  `json:"employee_id"`
	ViolationType     string  `json:"violation_type"`
	ScheduledMinutes  int     `json:"scheduled_minutes"`
	ActualMinutes     int     `json:"actual_minutes"`
	DifferenceMinutes int     `json:"difference_minutes"`
	Status            string  `json:"status"`
	ReviewedBy        *string `json:"reviewed_by,omitempty"`
	ReviewedAt        *string `json:"reviewed_at,omitempty"`
	ReviewNotes       *string `json:"review_notes,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

func mapViolationToResponse(v BreakViolation) ViolationResponse {
	resp := ViolationResponse{
		ID:                v.ID.String(),
		CompanyID:         v.CompanyID.String(),
		EmployeeID:        v.EmployeeID.String(),
		ViolationType:     v.ViolationType,
		ScheduledMinutes:  v.ScheduledMinutes,
		ActualMinutes:     v.ActualMinutes,
		DifferenceMinutes: v.DifferenceMinutes,
		Status:            v.Status,
		ReviewNotes:       v.ReviewNotes,
		CreatedAt:         v.CreatedAt.Format(time.RFC3339),
	}
	if v.ReviewedBy != nil {
		s := v.ReviewedBy.String()
		resp.ReviewedBy = &s
	}
	if v.ReviewedAt != nil {
		s := v.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	return resp
}

func mapViolationsToListResponse(violations []BreakViolation) []ViolationResponse {
	resp := make([]ViolationResponse, len(violations))
	for i, v := range violations {
		resp[i] = mapViolationToResponse(v)
	}
	return resp
}
