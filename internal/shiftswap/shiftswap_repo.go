package shiftswap

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=shiftswap_repo.go -destination=mock/shiftswap_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, s *ShiftSwap) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*ShiftSwap, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]ShiftSwap, error)
	FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]ShiftSwap, error)
	HasActiveSwapForShift(ctx context.Context, companyID, shiftID string) (bool, error)

	AcceptIfPending(ctx context.Context, companyID, id string, targetID uuid.UUID, targetName string) (bool, error)
	RejectIfPending(ctx context.Context, companyID, id string) (bool, error)
	DecideIfManagerPending(ctx context.Context, companyID, id, status string, managerID uuid.UUID, notes *string, decidedAt time.Time) (bool, error)
	CancelIfCancellable(ctx context.Context, companyID, id string) (bool, error)
	// CompleteIfApproved runs inside the caller's transaction alongside the
	// shift reassignments.
	CompleteIfApproved(ctx context.Context, tx *sql.Tx, companyID, id string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *ShiftSwap) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*ShiftSwap, error) {
	var s ShiftSwap
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]ShiftSwap, error) {
	var rows []ShiftSwap
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]ShiftSwap, error) {
	var rows []ShiftSwap
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("requester_id = ? OR target_employee_id = ?", employeeID, employeeID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// HasActiveSwapForShift enforces the one-in-flight-swap-per-shift rule: a
// shift referenced on either side of a non-terminal swap cannot enter a new
// one.
func (r *repository) HasActiveSwapForShift(ctx context.Context, companyID, shiftID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ShiftSwap{}).
		Where("company_id = ?", companyID).
		Where("requester_shift_id = ? OR target_shift_id = ?", shiftID, shiftID).
		Where("status NOT IN ?", []string{
			StatusManagerRejected, StatusRejected, StatusCancelled, StatusCompleted,
		}).
		Count(&count).Error
	return count > 0, err
}

// AcceptIfPending is a conditional update from pending to manager_pending.
// It also binds the target on an open giveaway; COALESCE keeps an already
// bound target untouched.
func (r *repository) AcceptIfPending(ctx context.Context, companyID, id string, targetID uuid.UUID, targetName string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&ShiftSwap{}).
		Where("company_id = ?", companyID).
		Where("id = ?", id).
		Where("status = ?", StatusPending).
		Updates(map[string]any{
			"status":               StatusManagerPending,
			"target_employee_id":   gorm.Expr("COALESCE(target_employee_id, ?)", targetID),
			"target_employee_name": gorm.Expr("COALESCE(target_employee_name, ?)", targetName),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) RejectIfPending(ctx context.Context, companyID, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&ShiftSwap{}).
		Where("company_id = ?", companyID).
		Where("id = ?", id).
		Where("status = ?", StatusPending).
		Update("status", StatusRejected)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) DecideIfManagerPending(ctx context.Context, companyID, id, status string, managerID uuid.UUID, notes *string, decidedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&ShiftSwap{}).
		Where("company_id = ?", companyID).
		Where("id = ?", id).
		Where("status = ?", StatusManagerPending).
		Updates(map[string]any{
			"status":        status,
			"manager_id":    managerID,
			"manager_notes": notes,
			"decided_at":    decidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CancelIfCancellable(ctx context.Context, companyID, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&ShiftSwap{}).
		Where("company_id = ?", companyID).
		Where("id = ?", id).
		Where("status IN ?", []string{StatusPending, StatusManagerPending}).
		Update("status", StatusCancelled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CompleteIfApproved(ctx context.Context, tx *sql.Tx, companyID, id string) (bool, error) {
	query := `
UPDATE shift_swaps
SET
	status = $3,
	updated_at = NOW()
WHERE id = $1
	AND company_id = $2
	AND status = $4
	AND deleted_at IS NULL
`
	res, err := tx.ExecContext(ctx, query, id, companyID, StatusCompleted, StatusManagerApproved)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
