package timeoff

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=timeoff_repo.go -destination=mock/timeoff_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, r *TimeOffRequest) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*TimeOffRequest, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]TimeOffRequest, error)
	FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]TimeOffRequest, error)
	HasOverlappingRequest(ctx context.Context, companyID, employeeID string, start, end time.Time) (bool, error)
	DecideIfPending(ctx context.Context, companyID, id, status string, responderID uuid.UUID, notes *string, decidedAt time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req *TimeOffRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*TimeOffRequest, error) {
	var req TimeOffRequest
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]TimeOffRequest, error) {
	var rows []TimeOffRequest
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]TimeOffRequest, error) {
	var rows []TimeOffRequest
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// HasOverlappingRequest counts pending or approved requests whose date range
// intersects the given one. Rejected requests do not block a retry.
func (r *repository) HasOverlappingRequest(ctx context.Context, companyID, employeeID string, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&TimeOffRequest{}).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count > 0, err
}

// DecideIfPending only matches a pending row, so concurrent deciders resolve
// to exactly one recorded decision.
func (r *repository) DecideIfPending(ctx context.Context, companyID, id, status string, responderID uuid.UUID, notes *string, decidedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&TimeOffRequest{}).
		Where("company_id = ?", companyID).
		Where("id = ?", id).
		Where("status = ?", StatusPending).
		Updates(map[string]any{
			"status":          status,
			"responder_id":    responderID,
			"responder_notes": notes,
			"decided_at":      decidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
