package lock

import (
	"context"
	"database/sql"
)

// Clock and break operations read "most recent punch" or "active entry"
// before writing, so two concurrent calls for one employee can lose an
// update or double-open a break. Every such read-modify-write acquires this
// advisory lock on its transaction first; the lock is released at commit or
// rollback. Different employees hash to different keys and never contend.

//go:generate mockgen -source=lock_repo.go -destination=mock/lock_repo_mock.go -package=mock
type Repository interface {
	AcquireEmployeeLock(ctx context.Context, tx *sql.Tx, companyID, employeeID string) error
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) AcquireEmployeeLock(ctx context.Context, tx *sql.Tx, companyID, employeeID string) error {
	_, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`,
		companyID, employeeID,
	)
	return err
}
