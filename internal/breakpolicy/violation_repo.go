package breakpolicy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=violation_repo.go -destination=mock/violation_repo_mock.go -package=mock
type ViolationRepository interface {
	Create(ctx context.Context, v *BreakViolation) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*BreakViolation, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]BreakViolation, error)
	FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]BreakViolation, error)
	ReviewIfPending(ctx context.Context, companyID, id, status string, reviewedBy uuid.UUID, reviewedAt time.Time, notes *string) (bool, error)
}

type violationRepository struct {
	db *gorm.DB
}

func NewViolationRepository(db *gorm.DB) ViolationRepository {
	return &violationRepository{db: db}
}

func (r *violationRepository) Create(ctx context.Context, v *BreakViolation) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *violationRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*BreakViolation, error) {
	var v BreakViolation
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *violationRepository) FindAllByCompany(ctx context.Context, companyID string) ([]BreakViolation, error) {
	var rows []BreakViolation
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *violationRepository) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]BreakViolation, error) {
	var rows []BreakViolation
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ReviewIfPending is a conditional update: the WHERE clause only matches a
// pending row, so a second reviewer loses the race instead of overwriting
// the first decision. Returns whether a row was transitioned.
func (r *violationRepository) ReviewIfPending(ctx context.Context, companyID, id, status string, reviewedBy uuid.UUID, reviewedAt time.Time, notes *string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&BreakViolation{}).
		Where("company_id = ?", companyID).
		Where("id = ?", id).
		Where("status = ?", ViolationStatusPending).
		Updates(map[string]any{
			"status":       status,
			"reviewed_by":  reviewedBy,
			"reviewed_at":  reviewedAt,
			"review_notes": notes,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
