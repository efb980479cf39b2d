package punch

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeClockIn    = "clock_in"
	TypeClockOut   = "clock_out"
	TypeBreakStart = "break_start"
	TypeBreakEnd   = "break_end"
)

const (
	BreakTypePaid   = "paid"
	BreakTypeUnpaid = "unpaid"
)

// Punch is an immutable clock or break boundary event. Rows are only ever
// appended; derived state (time entries, violations) is recomputed from the
// timestamp ordering, never by editing a punch.
type Punch struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID        uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index:idx_punches_company_employee_ts"`
	EmployeeID       uuid.UUID  `gorm:"column:employee_id;type:uuid;not null;index:idx_punches_company_employee_ts"`
	Type             string     `gorm:"column:type;type:varchar(20);not null"`
	Timestamp        time.Time  `gorm:"column:timestamp;type:timestamptz;not null;index:idx_punches_company_employee_ts"`
	BreakType        *string    `gorm:"column:break_type;type:varchar(10)"`
	ScheduledMinutes *int       `gorm:"column:scheduled_minutes"`
	Latitude         *float64   `gorm:"column:latitude"`
	Longitude        *float64   `gorm:"column:longitude"`
	Notes            *string    `gorm:"column:notes;type:text"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
}

func (Punch) TableName() string {
	return "punches"
}
