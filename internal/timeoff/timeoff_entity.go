package timeoff

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeVacation = "vacation"
	TypeSick     = "sick"
	TypePersonal = "personal"
	TypeUnpaid   = "unpaid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// TimeOffRequest is a two-state approval workflow: pending moves once to
// approved or rejected and stays there.
type TimeOffRequest struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID     uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;index"`
	EmployeeName   string         `gorm:"column:employee_name;type:varchar(255);not null"`
	Type           string         `gorm:"column:type;type:varchar(20);not null"`
	StartDate      time.Time      `gorm:"column:start_date;type:date;not null"`
	EndDate        time.Time      `gorm:"column:end_date;type:date;not null"`
	TotalDays      int            `gorm:"column:total_days;not null"`
	Reason         *string        `gorm:"column:reason;type:text"`
	Status         string         `gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	ResponderID    *uuid.UUID     `gorm:"column:responder_id;type:uuid"`
	ResponderNotes *string        `gorm:"column:responder_notes;type:text"`
	DecidedAt      *time.Time     `gorm:"column:decided_at;type:timestamptz"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (TimeOffRequest) TableName() string {
	return "time_off_requests"
}

func isValidLeaveType(t string) bool {
	switch t {
	case TypeVacation, TypeSick, TypePersonal, TypeUnpaid:
		return true
	default:
		return false
	}
}
