package directory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmployeeRef is the denormalized slice of the employees table this service
// needs: display names for swap/time-off records and tenant membership
// checks. Employee management itself lives in the surrounding HR system.
type EmployeeRef struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid"`
	FullName  string    `gorm:"column:full_name"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}

//go:generate mockgen -source=directory_repo.go -destination=mock/directory_repo_mock.go -package=mock
type Repository interface {
	FindName(ctx context.Context, companyID, employeeID string) (string, error)
	BelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindName(ctx context.Context, companyID, employeeID string) (string, error) {
	var ref EmployeeRef
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&ref, "id = ?", employeeID).Error
	if err != nil {
		return "", err
	}
	return ref.FullName, nil
}

func (r *repository) BelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("company_id = ?", companyID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}
