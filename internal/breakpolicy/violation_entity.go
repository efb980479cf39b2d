package breakpolicy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ViolationBreakTooLong  = "break_too_long"
	ViolationBreakTooShort = "break_too_short"
	ViolationMissedBreak   = "missed_break"
)

const (
	ViolationStatusPending      = "pending"
	ViolationStatusAcknowledged = "acknowledged"
	ViolationStatusExcused      = "excused"
	ViolationStatusWarned       = "warned"
)

// BreakViolation flags a break that ran past its scheduled duration beyond
// tolerance. break_too_short and missed_break are part of the taxonomy but
// only break_too_long is generated automatically.
type BreakViolation struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID         uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID        uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;index"`
	PunchID           uuid.UUID      `gorm:"column:punch_id;type:uuid;not null"`
	ViolationType     string         `gorm:"column:violation_type;type:varchar(30);not null"`
	ScheduledMinutes  int            `gorm:"column:scheduled_minutes;not null"`
	ActualMinutes     int            `gorm:"column:actual_minutes;not null"`
	DifferenceMinutes int            `gorm:"column:difference_minutes;not null"`
	Status            string         `gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	ReviewedBy        *uuid.UUID     `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt        *time.Time     `gorm:"column:reviewed_at;type:timestamptz"`
	ReviewNotes       *string        `gorm:"column:review_notes;type:text"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (BreakViolation) TableName() string {
	return "break_violations"
}

// A review moves pending to exactly one terminal status; terminal statuses
// accept no further transition.
func isAllowedReviewStatus(target string) bool {
	switch target {
	case ViolationStatusAcknowledged, ViolationStatusExcused, ViolationStatusWarned:
		return true
	default:
		return false
	}
}
