package shiftswap

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shift is a scheduled block of work. EmployeeName is denormalized so
// schedule views and swap records do not join the employees table; swap
// execution keeps it in sync with EmployeeID.
type Shift struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID   uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;index"`
	EmployeeName string         `gorm:"column:employee_name;type:varchar(255);not null"`
	StartTime    time.Time      `gorm:"column:start_time;type:timestamptz;not null"`
	EndTime      time.Time      `gorm:"column:end_time;type:timestamptz;not null"`
	Position     *string        `gorm:"column:position;type:varchar(100)"`
	Notes        *string        `gorm:"column:notes;type:text"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Shift) TableName() string {
	return "shifts"
}
