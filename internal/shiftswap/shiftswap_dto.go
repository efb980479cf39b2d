package shiftswap

import "time"

type CreateSwapRequest struct {
	SwapType         string  `json:"swap_type" binding:"required,oneof=swap giveaway pickup"`
	RequesterShiftID string  `json:"requester_shift_id" binding:"omitempty,uuid"`
	TargetShiftID    *string `json:"target_shift_id" binding:"omitempty,uuid"`
	TargetEmployeeID *string `json:"target_employee_id" binding:"omitempty,uuid"`
	// PickupSwapID names the open giveaway being claimed; only meaningful
	// for swap_type pickup.
	PickupSwapID *string `json:"pickup_swap_id" binding:"omitempty,uuid"`
	Notes        *string `json:"notes"`
}

type RespondSwapRequest struct {
	Accept bool `json:"accept"`
}

type ManagerDecideRequest struct {
	Approve bool    `json:"approve"`
	Notes   *string `json:"notes"`
}

type ShiftSwapResponse struct {
	ID                 string  `json:"id"`
	CompanyID          string  `json:"company_id"`
	RequesterID        string  `json:"requester_id"`
	RequesterName      string  `json:"requester_name"`
	RequesterShiftID   string  `json:"requester_shift_id"`
	TargetEmployeeID   *string `json:"target_employee_id,omitempty"`
	TargetEmployeeName *string `json:"target_employee_name,omitempty"`
	TargetShiftID      *string `json:"target_shift_id,omitempty"`
	SwapType           string  `json:"swap_type"`
	Status             string  `json:"status"`
	Notes              *string `json:"notes,omitempty"`
	ManagerID          *string `json:"manager_id,omitempty"`
	ManagerNotes       *string `json:"manager_notes,omitempty"`
	DecidedAt          *string `json:"decided_at,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

func mapToResponse(s ShiftSwap) ShiftSwapResponse {
	resp := ShiftSwapResponse{
		ID:                 s.ID.String(),
		CompanyID:          s.CompanyID.String(),
		RequesterID:        s.RequesterID.String(),
		RequesterName:      s.RequesterName,
		RequesterShiftID:   s.RequesterShiftID.String(),
		TargetEmployeeName: s.TargetEmployeeName,
		SwapType:           s.SwapType,
		Status:             s.Status,
		Notes:              s.Notes,
		ManagerNotes:       s.ManagerNotes,
		CreatedAt:          s.CreatedAt.Format(time.RFC3339),
	}
	if s.TargetEmployeeID != nil {
		v := s.TargetEmployeeID.String()
		resp.TargetEmployeeID = &v
	}
	if s.TargetShiftID != nil {
		v := s.TargetShiftID.String()
		resp.TargetShiftID = &v
	}
	if s.ManagerID != nil {
		v := s.ManagerID.String()
		resp.ManagerID = &v
	}
	if s.DecidedAt != nil {
		v := s.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}

func mapToListResponse(swaps []ShiftSwap) []ShiftSwapResponse {
	resp := make([]ShiftSwapResponse, len(swaps))
	for i, s := range swaps {
		resp[i] = mapToResponse(s)
	}
	return resp
}
