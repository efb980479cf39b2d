package shiftswap

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=shift_repo.go -destination=mock/shift_repo_mock.go -package=mock
type ShiftRepository interface {
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Shift, error)
	FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]Shift, error)
	// Reassign moves a shift to a new owner inside the caller's transaction
	// so swap execution stays all-or-nothing.
	Reassign(ctx context.Context, tx *sql.Tx, shiftID string, employeeID uuid.UUID, employeeName string) error
}

type shiftRepository struct {
	db *gorm.DB
}

func NewShiftRepository(db *gorm.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

func (r *shiftRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Shift, error) {
	var s Shift
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shiftRepository) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]Shift, error) {
	var rows []Shift
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Order("start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *shiftRepository) Reassign(ctx context.Context, tx *sql.Tx, shiftID string, employeeID uuid.UUID, employeeName string) error {
	query := `
UPDATE shifts
SET
	employee_id = $2,
	employee_name = $3,
	updated_at = NOW()
WHERE id = $1
	AND deleted_at IS NULL
`
	res, err := tx.ExecContext(ctx, query, shiftID, employeeID, employeeName)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New("shift reassignment matched no row")
	}
	return nil
}
