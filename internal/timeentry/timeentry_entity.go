package timeentry

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive          = "active"
	StatusCompleted       = "completed"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
)

// TimeEntry is the mutable daily summary derived from an employee's punches.
// BreakMinutes is the unpaid total deducted from worked time;
// PaidBreakMinutes is tracked for display only. The database carries a
// partial unique index on (employee_id) WHERE status = 'active' so at most
// one entry per employee can be open, whatever this process believes.
type TimeEntry struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID          uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID         uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;index:idx_time_entries_employee_date"`
	EntryDate          time.Time      `gorm:"column:entry_date;type:date;not null;index:idx_time_entries_employee_date"`
	ClockIn            time.Time      `gorm:"column:clock_in;type:timestamptz;not null"`
	ClockOut           *time.Time     `gorm:"column:clock_out;type:timestamptz"`
	BreakMinutes       int            `gorm:"column:break_minutes;not null;default:0"`
	UnpaidBreakMinutes int            `gorm:"column:unpaid_break_minutes;not null;default:0"`
	PaidBreakMinutes   int            `gorm:"column:paid_break_minutes;not null;default:0"`
	TotalHours         float64        `gorm:"column:total_hours;type:numeric(6,2);not null;default:0"`
	Status             string         `gorm:"column:status;type:varchar(20);not null;default:'active'"`
	Notes              *string        `gorm:"column:notes;type:text"`
	ApprovedBy         *uuid.UUID     `gorm:"column:approved_by;type:uuid"`
	ApprovedAt         *time.Time     `gorm:"column:approved_at;type:timestamptz"`
	CreatedAt          time.Time      `gorm:"column:created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

// isAllowedStatusTransition is the only place entry lifecycle edges are
// defined. Anything not listed is rejected.
func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	switch currentStatus {
	case StatusActive:
		return targetStatus == StatusCompleted
	case StatusCompleted:
		return targetStatus == StatusPendingApproval
	case StatusPendingApproval:
		return targetStatus == StatusApproved
	default:
		return false
	}
}
