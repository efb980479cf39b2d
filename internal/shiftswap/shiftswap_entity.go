package shiftswap

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SwapTypeSwap     = "swap"
	SwapTypeGiveaway = "giveaway"
	SwapTypePickup   = "pickup"
)

const (
	StatusPending         = "pending"
	StatusManagerPending  = "manager_pending"
	StatusManagerApproved = "manager_approved"
	StatusManagerRejected = "manager_rejected"
	StatusRejected        = "rejected"
	StatusCancelled       = "cancelled"
	StatusCompleted       = "completed"
)

type ShiftSwap struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID          uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	RequesterID        uuid.UUID      `gorm:"column:requester_id;type:uuid;not null;index"`
	RequesterName      string         `gorm:"column:requester_name;type:varchar(255);not null"`
	RequesterShiftID   uuid.UUID      `gorm:"column:requester_shift_id;type:uuid;not null"`
	TargetEmployeeID   *uuid.UUID     `gorm:"column:target_employee_id;type:uuid"`
	TargetEmployeeName *string        `gorm:"column:target_employee_name;type:varchar(255)"`
	TargetShiftID      *uuid.UUID     `gorm:"column:target_shift_id;type:uuid"`
	SwapType           string         `gorm:"column:swap_type;type:varchar(20);not null"`
	Status             string         `gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	Notes              *string        `gorm:"column:notes;type:text"`
	ManagerID          *uuid.UUID     `gorm:"column:manager_id;type:uuid"`
	ManagerNotes       *string        `gorm:"column:manager_notes;type:text"`
	DecidedAt          *time.Time     `gorm:"column:decided_at;type:timestamptz"`
	CreatedAt          time.Time      `gorm:"column:created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (ShiftSwap) TableName() string {
	return "shift_swaps"
}

func isValidSwapType(t string) bool {
	switch t {
	case SwapTypeSwap, SwapTypeGiveaway, SwapTypePickup:
		return true
	default:
		return false
	}
}

// isTerminalStatus reports whether a swap can never advance again. Active
// swaps block new swaps on the same shifts.
func isTerminalStatus(status string) bool {
	switch status {
	case StatusManagerRejected, StatusRejected, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// The machine is linear with two rejection exits; cancellation is only open
// to the requester before the manager approves.
func isAllowedStatusTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusManagerPending || to == StatusRejected || to == StatusCancelled
	case StatusManagerPending:
		return to == StatusManagerApproved || to == StatusManagerRejected || to == StatusCancelled
	case StatusManagerApproved:
		return to == StatusCompleted
	default:
		return false
	}
}
