package punch

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=punch_repo.go -destination=mock/punch_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *Punch) error
	MostRecent(ctx context.Context, companyID, employeeID string) (*Punch, error)
	FindInRange(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]Punch, error)
	LatestOpenBreak(ctx context.Context, companyID, employeeID string) (*Punch, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository whose statements run on the given transaction,
// so punch appends commit or roll back together with the caller's other
// writes under the employee lock.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	db := r.db.Session(&gorm.Session{NewDB: true})
	db.Statement.ConnPool = tx
	return &repository{db: db}
}

// Create appends a punch. The ledger itself never rejects an append;
// sequence legality is the caller's concern via MostRecent.
func (r *repository) Create(ctx context.Context, p *Punch) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) MostRecent(ctx context.Context, companyID, employeeID string) (*Punch, error) {
	var p Punch
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Order("timestamp DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindInRange(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]Punch, error) {
	var rows []Punch
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp ASC").
		Find(&rows).Error
	return rows, err
}

// LatestOpenBreak returns the newest break_start with no break_end after it,
// or nil when the employee is not on break.
func (r *repository) LatestOpenBreak(ctx context.Context, companyID, employeeID string) (*Punch, error) {
	var p Punch
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("type = ?", TypeBreakStart).
		Where(`NOT EXISTS (
			SELECT 1 FROM punches later
			WHERE later.company_id = punches.company_id
			  AND later.employee_id = punches.employee_id
			  AND later.type = ?
			  AND later.timestamp >= punches.timestamp
		)`, TypeBreakEnd).
		Order("timestamp DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
