package timeentry

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"go-timeclock/internal/punch"
	"go-timeclock/internal/shared/lock"
	timeentryerrors "go-timeclock/internal/timeentry/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClosedBreak reports what folding an open break into the day cost.
type ClosedBreak struct {
	ActualMinutes    int
	BreakType        string
	ViolationCreated bool
}

// BreakCloser ends a dangling open break on clock-out. Implemented by the
// break policy engine; declared here so this package does not depend on it.
// The synthetic break_end punch is written on the caller's transaction.
type BreakCloser interface {
	CloseOpenBreak(ctx context.Context, tx *sql.Tx, companyID, employeeID string, now time.Time, notes string) (*ClosedBreak, error)
}

//go:generate mockgen -source=timeentry_service.go -destination=mock/timeentry_service_mock.go -package=mock
type Service interface {
	ClockIn(ctx context.Context, companyID, employeeID string, req ClockInRequest) (TimeEntryResponse, error)
	ClockOut(ctx context.Context, companyID, employeeID string, req ClockOutRequest) (*TimeEntryResponse, error)
	GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]TimeEntryResponse, error)
	GetByID(ctx context.Context, companyID, id string) (TimeEntryResponse, error)
	Submit(ctx context.Context, companyID, actorID, id string) (TimeEntryResponse, error)
	Approve(ctx context.Context, companyID, actorID, id string) (TimeEntryResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	punches punch.Repository
	locks   lock.Repository
	closer  BreakCloser
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	punches punch.Repository,
	locks lock.Repository,
	closer BreakCloser,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("timeentry.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("timeentry.service")
	}
	return &service{db: db, repo: repo, punches: punches, locks: locks, closer: closer, logger: l}
}

// ClockIn is idempotent: a second clock-in while an entry is active returns
// that entry unchanged.
func (s *service) ClockIn(ctx context.Context, companyID, employeeID string, req ClockInRequest) (TimeEntryResponse, error) {
	s.logger.Debug("clock in requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", employeeID),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("clock in begin tx failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	defer tx.Rollback()

	if err := s.locks.AcquireEmployeeLock(ctx, tx, companyID, employeeID); err != nil {
		s.logger.Error("clock in lock failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	qtx := s.repo.WithTx(tx)
	qpunches := s.punches.WithTx(tx)

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	existing, err := qtx.FindActiveByEmployee(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Error("clock in active lookup failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	if existing != nil {
		s.logger.Info("clock in no-op, entry already active",
			zap.String("employee_id", employeeID),
			zap.String("entry_id", existing.ID.String()),
		)
		return mapToResponse(*existing), nil
	}

	p := &punch.Punch{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		Type:       punch.TypeClockIn,
		Timestamp:  now,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Notes:      req.Notes,
	}
	if err := qpunches.Create(ctx, p); err != nil {
		s.logger.Error("clock in punch append failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	entry := &TimeEntry{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		EntryDate:  today,
		ClockIn:    now,
		Status:     StatusActive,
		Notes:      req.Notes,
	}
	if err := qtx.Create(ctx, entry); err != nil {
		// The partial unique index on active entries closes the race this
		// process lost: a concurrent clock-in already created the entry.
		// The lookup runs off-transaction; the failed insert aborted ours.
		if isActiveEntryConflict(err) {
			won, lookupErr := s.repo.FindActiveByEmployee(ctx, companyID, employeeID)
			if lookupErr == nil && won != nil {
				return mapToResponse(*won), nil
			}
		}
		s.logger.Error("clock in entry create failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("clock in commit failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	s.logger.Info("clock in success",
		zap.String("entry_id", entry.ID.String()),
		zap.String("employee_id", employeeID),
	)
	return mapToResponse(*entry), nil
}

// ClockOut returns (nil, nil) when no entry is active so the caller can
// distinguish "already clocked out" from success. An open break is ended
// first, exactly as a forced end-break at this instant would be.
func (s *service) ClockOut(ctx context.Context, companyID, employeeID string, req ClockOutRequest) (*TimeEntryResponse, error) {
	s.logger.Debug("clock out requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", employeeID),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, timeentryerrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, timeentryerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("clock out begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	if err := s.locks.AcquireEmployeeLock(ctx, tx, companyID, employeeID); err != nil {
		s.logger.Error("clock out lock failed", zap.Error(err))
		return nil, err
	}

	qtx := s.repo.WithTx(tx)
	qpunches := s.punches.WithTx(tx)

	entry, err := qtx.FindActiveByEmployee(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Error("clock out active lookup failed", zap.Error(err))
		return nil, err
	}
	if entry == nil {
		s.logger.Info("clock out no-op, no active entry",
			zap.String("employee_id", employeeID),
		)
		return nil, nil
	}

	now := time.Now().UTC()

	recent, err := qpunches.MostRecent(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Error("clock out recent punch lookup failed", zap.Error(err))
		return nil, err
	}
	if recent != nil && recent.Type == punch.TypeBreakStart {
		closed, err := s.closer.CloseOpenBreak(ctx, tx, companyID, employeeID, now, "auto-ended on clock out")
		if err != nil {
			s.logger.Error("clock out auto end break failed", zap.Error(err))
			return nil, err
		}
		if closed != nil {
			FoldBreak(entry, closed.BreakType, closed.ActualMinutes)
			s.logger.Info("open break auto-ended on clock out",
				zap.String("employee_id", employeeID),
				zap.Int("actual_minutes", closed.ActualMinutes),
				zap.String("break_type", closed.BreakType),
			)
		}
	}

	p := &punch.Punch{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		Type:       punch.TypeClockOut,
		Timestamp:  now,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Notes:      req.Notes,
	}
	if err := qpunches.Create(ctx, p); err != nil {
		s.logger.Error("clock out punch append failed", zap.Error(err))
		return nil, err
	}

	entry.ClockOut = &now
	entry.TotalHours = computeTotalHours(entry.ClockIn, now, entry.BreakMinutes)
	entry.Status = StatusCompleted
	if req.Notes != nil {
		entry.Notes = req.Notes
	}

	if err := qtx.Update(ctx, entry); err != nil {
		s.logger.Error("clock out entry update failed", zap.Error(err))
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("clock out commit failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("clock out success",
		zap.String("entry_id", entry.ID.String()),
		zap.String("employee_id", employeeID),
		zap.Float64("total_hours", entry.TotalHours),
	)
	resp := mapToResponse(*entry)
	return &resp, nil
}

func (s *service) GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]TimeEntryResponse, error) {
	var (
		rows []TimeEntry
		err  error
	)
	if canReadAll {
		rows, err = s.repo.FindAllByCompany(ctx, companyID)
	} else {
		if _, parseErr := uuid.Parse(actorID); parseErr != nil {
			return nil, timeentryerrors.ErrInvalidActorID
		}
		rows, err = s.repo.FindAllByCompanyAndEmployee(ctx, companyID, actorID)
	}
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (TimeEntryResponse, error) {
	e, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeEntryResponse{}, timeentryerrors.ErrEntryNotFound
		}
		return TimeEntryResponse{}, err
	}
	return mapToResponse(*e), nil
}

func (s *service) Submit(ctx context.Context, companyID, actorID, id string) (TimeEntryResponse, error) {
	return s.transitionStatus(ctx, companyID, actorID, id, StatusPendingApproval)
}

func (s *service) Approve(ctx context.Context, companyID, actorID, id string) (TimeEntryResponse, error) {
	return s.transitionStatus(ctx, companyID, actorID, id, StatusApproved)
}

func (s *service) transitionStatus(ctx context.Context, companyID, actorID, id, targetStatus string) (TimeEntryResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("transition entry begin tx failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeEntryResponse{}, timeentryerrors.ErrEntryNotFound
		}
		return TimeEntryResponse{}, err
	}
	if !isAllowedStatusTransition(e.Status, targetStatus) {
		s.logger.Warn("transition entry status invalid",
			zap.String("entry_id", id),
			zap.String("from_status", e.Status),
			zap.String("to_status", targetStatus),
		)
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidStatusTransition
	}

	e.Status = targetStatus
	if targetStatus == StatusApproved {
		now := time.Now().UTC()
		e.ApprovedBy = &actorUUID
		e.ApprovedAt = &now
	}

	if err := qtx.Update(ctx, e); err != nil {
		s.logger.Error("transition entry persist failed", zap.String("entry_id", id), zap.Error(err))
		return TimeEntryResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("transition entry commit failed", zap.String("entry_id", id), zap.Error(err))
		return TimeEntryResponse{}, err
	}
	s.logger.Info("transition entry status success",
		zap.String("entry_id", id),
		zap.String("status", targetStatus),
	)
	return mapToResponse(*e), nil
}

// FoldBreak applies an ended break to the day's totals: paid time is
// informational only, unpaid time is deducted from worked hours.
func FoldBreak(e *TimeEntry, breakType string, actualMinutes int) {
	if breakType == punch.BreakTypePaid {
		e.PaidBreakMinutes += actualMinutes
		return
	}
	e.UnpaidBreakMinutes += actualMinutes
	e.BreakMinutes += actualMinutes
}

// computeTotalHours floors at zero and rounds to two decimals.
func computeTotalHours(clockIn, clockOut time.Time, breakMinutes int) float64 {
	hours := clockOut.Sub(clockIn).Hours() - float64(breakMinutes)/60
	if hours < 0 {
		hours = 0
	}
	return math.Round(hours*100) / 100
}

func isActiveEntryConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
