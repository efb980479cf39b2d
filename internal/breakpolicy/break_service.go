package breakpolicy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"time"

	breakerrors "go-timeclock/internal/breakpolicy/errors"
	"go-timeclock/internal/events"
	"go-timeclock/internal/messaging/kafka"
	"go-timeclock/internal/punch"
	"go-timeclock/internal/shared/contextutil"
	"go-timeclock/internal/shared/lock"
	"go-timeclock/internal/timeentry"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// MinUnpaidBreakMinutes is the shortest legal unpaid meal break.
	MinUnpaidBreakMinutes = 30
	// BufferMinutes is the grace window applied on both boundaries: clock
	// drift and UI latency make exact comparisons unreliable.
	BufferMinutes = 2
)

//go:generate mockgen -source=break_service.go -destination=mock/break_service_mock.go -package=mock
type Service interface {
	StartBreak(ctx context.Context, companyID, employeeID string, req StartBreakRequest) (punch.PunchResponse, error)
	EndBreak(ctx context.Context, companyID, employeeID string, req EndBreakRequest) (EndBreakResponse, error)
	GetActiveBreak(ctx context.Context, companyID, employeeID string) (*ActiveBreakResponse, error)
	ReviewViolation(ctx context.Context, companyID, reviewerID, id string, req ReviewViolationRequest) (ViolationResponse, error)
	GetViolations(ctx context.Context, companyID, actorID string, canReadAll bool) ([]ViolationResponse, error)

	// CloseOpenBreak satisfies timeentry.BreakCloser for the clock-out path.
	CloseOpenBreak(ctx context.Context, tx *sql.Tx, companyID, employeeID string, now time.Time, notes string) (*timeentry.ClosedBreak, error)
}

type service struct {
	db         *sql.DB
	punches    punch.Repository
	entries    timeentry.Repository
	violations ViolationRepository
	outbox     kafka.OutboxRepository
	locks      lock.Repository
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	punches punch.Repository,
	entries timeentry.Repository,
	violations ViolationRepository,
	outbox kafka.OutboxRepository,
	locks lock.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("breakpolicy.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("breakpolicy.service")
	}
	return &service{
		db:         db,
		punches:    punches,
		entries:    entries,
		violations: violations,
		outbox:     outbox,
		locks:      locks,
		logger:     l,
	}
}

func (s *service) StartBreak(ctx context.Context, companyID, employeeID string, req StartBreakRequest) (punch.PunchResponse, error) {
	s.logger.Debug("start break requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", employeeID),
		zap.String("break_type", req.BreakType),
		zap.Int("scheduled_minutes", req.ScheduledMinutes),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return punch.PunchResponse{}, breakerrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return punch.PunchResponse{}, breakerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("start break begin tx failed", zap.Error(err))
		return punch.PunchResponse{}, err
	}
	defer tx.Rollback()

	if err := s.locks.AcquireEmployeeLock(ctx, tx, companyID, employeeID); err != nil {
		s.logger.Error("start break lock failed", zap.Error(err))
		return punch.PunchResponse{}, err
	}

	qpunches := s.punches.WithTx(tx)

	entry, err := s.entries.WithTx(tx).FindActiveByEmployee(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Error("start break entry lookup failed", zap.Error(err))
		return punch.PunchResponse{}, err
	}
	if entry == nil {
		return punch.PunchResponse{}, breakerrors.ErrNotClockedIn
	}

	open, err := qpunches.LatestOpenBreak(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Error("start break open lookup failed", zap.Error(err))
		return punch.PunchResponse{}, err
	}
	if open != nil {
		s.logger.Warn("start break rejected, already on break",
			zap.String("employee_id", employeeID),
		)
		return punch.PunchResponse{}, breakerrors.ErrAlreadyOnBreak
	}

	now := time.Now().UTC()
	breakType := req.BreakType
	scheduled := req.ScheduledMinutes
	p := &punch.Punch{
		ID:               uuid.New(),
		CompanyID:        companyUUID,
		EmployeeID:       employeeUUID,
		Type:             punch.TypeBreakStart,
		Timestamp:        now,
		BreakType:        &breakType,
		ScheduledMinutes: &scheduled,
		Notes:            req.Notes,
	}
	if err := qpunches.Create(ctx, p); err != nil {
		s.logger.Error("start break punch append failed", zap.Error(err))
		return punch.PunchResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("start break commit failed", zap.Error(err))
		return punch.PunchResponse{}, err
	}
	s.logger.Info("start break success",
		zap.String("employee_id", employeeID),
		zap.String("break_type", breakType),
	)
	return punch.MapToResponse(*p), nil
}

func (s *service) EndBreak(ctx context.Context, companyID, employeeID string, req EndBreakRequest) (EndBreakResponse, error) {
	s.logger.Debug("end break requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", employeeID),
		zap.Bool("force", req.Force),
	)

	if _, err := uuid.Parse(companyID); err != nil {
		return EndBreakResponse{}, breakerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return EndBreakResponse{}, breakerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("end break begin tx failed", zap.Error(err))
		return EndBreakResponse{}, err
	}
	defer tx.Rollback()

	if err := s.locks.AcquireEmployeeLock(ctx, tx, companyID, employeeID); err != nil {
		s.logger.Error("end break lock failed", zap.Error(err))
		return EndBreakResponse{}, err
	}

	qentries := s.entries.WithTx(tx)

	// No active entry means no open break either: StartBreak refuses to
	// open one outside a working day.
	entry, err := qentries.FindActiveByEmployee(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Error("end break entry lookup failed", zap.Error(err))
		return EndBreakResponse{}, err
	}
	if entry == nil {
		return EndBreakResponse{}, breakerrors.ErrNoActiveBreak
	}

	now := time.Now().UTC()
	closed, err := s.closeBreak(ctx, s.punches.WithTx(tx), companyID, employeeID, now, req.Notes, req.Force)
	if err != nil {
		return EndBreakResponse{}, err
	}

	timeentry.FoldBreak(entry, closed.BreakType, closed.ActualMinutes)
	if err := qentries.Update(ctx, entry); err != nil {
		s.logger.Error("end break entry update failed", zap.Error(err))
		return EndBreakResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("end break commit failed", zap.Error(err))
		return EndBreakResponse{}, err
	}
	s.logger.Info("end break success",
		zap.String("employee_id", employeeID),
		zap.Int("actual_minutes", closed.ActualMinutes),
		zap.String("break_type", closed.BreakType),
		zap.Bool("violation_created", closed.ViolationCreated),
	)
	return EndBreakResponse{
		ActualMinutes:    closed.ActualMinutes,
		BreakType:        closed.BreakType,
		ViolationCreated: closed.ViolationCreated,
	}, nil
}

// CloseOpenBreak ends a dangling open break during clock-out. It runs on the
// caller's transaction under the caller's employee lock, suppresses the
// minimum-duration guard (a clock-out must never be blocked by it), and
// leaves folding the minutes into the entry to the caller. Returns nil when
// no break is open.
func (s *service) CloseOpenBreak(ctx context.Context, tx *sql.Tx, companyID, employeeID string, now time.Time, notes string) (*timeentry.ClosedBreak, error) {
	punches := s.punches.WithTx(tx)
	open, err := punches.LatestOpenBreak(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, nil
	}
	return s.closeBreak(ctx, punches, companyID, employeeID, now, &notes, true)
}

// closeBreak is the shared end-break core: guard, overage detection, and the
// break_end append through the caller's tx-bound punch repository. Violation
// creation is best-effort and deliberately runs OFF the transaction: inside
// it, a failed insert would abort the tx and take the punch append down with
// it. A missing violation record is acceptable, a blocked clock action is
// not.
func (s *service) closeBreak(ctx context.Context, punches punch.Repository, companyID, employeeID string, now time.Time, notes *string, force bool) (*timeentry.ClosedBreak, error) {
	open, err := punches.LatestOpenBreak(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Error("end break open lookup failed", zap.Error(err))
		return nil, err
	}
	if open == nil {
		return nil, breakerrors.ErrNoActiveBreak
	}

	breakType := punch.BreakTypeUnpaid
	if open.BreakType != nil {
		breakType = *open.BreakType
	}
	scheduled := 0
	if open.ScheduledMinutes != nil {
		scheduled = *open.ScheduledMinutes
	}

	actualMinutes := int(math.Round(now.Sub(open.Timestamp).Minutes()))

	if breakType == punch.BreakTypeUnpaid && !force {
		threshold := MinUnpaidBreakMinutes - BufferMinutes
		if actualMinutes < threshold {
			remaining := threshold - actualMinutes
			s.logger.Warn("end break rejected, too short",
				zap.String("employee_id", employeeID),
				zap.Int("actual_minutes", actualMinutes),
				zap.Int("remaining_minutes", remaining),
			)
			return nil, breakerrors.BreakTooShort(remaining)
		}
	}

	violationCreated := false
	if actualMinutes > scheduled+BufferMinutes {
		violationCreated = s.recordOverageViolation(ctx, companyID, employeeID, open, scheduled, actualMinutes)
	}

	end := &punch.Punch{
		ID:               uuid.New(),
		CompanyID:        open.CompanyID,
		EmployeeID:       open.EmployeeID,
		Type:             punch.TypeBreakEnd,
		Timestamp:        now,
		BreakType:        &breakType,
		ScheduledMinutes: open.ScheduledMinutes,
		Notes:            notes,
	}
	if err := punches.Create(ctx, end); err != nil {
		s.logger.Error("end break punch append failed", zap.Error(err))
		return nil, err
	}

	return &timeentry.ClosedBreak{
		ActualMinutes:    actualMinutes,
		BreakType:        breakType,
		ViolationCreated: violationCreated,
	}, nil
}

// recordOverageViolation never fails the caller: attendance accuracy is not
// sacrificed for policy bookkeeping.
func (s *service) recordOverageViolation(ctx context.Context, companyID, employeeID string, open *punch.Punch, scheduled, actualMinutes int) bool {
	v := &BreakViolation{
		ID:                uuid.New(),
		CompanyID:         open.CompanyID,
		EmployeeID:        open.EmployeeID,
		PunchID:           open.ID,
		ViolationType:     ViolationBreakTooLong,
		ScheduledMinutes:  scheduled,
		ActualMinutes:     actualMinutes,
		DifferenceMinutes: actualMinutes - scheduled,
		Status:            ViolationStatusPending,
	}
	if err := s.violations.Create(ctx, v); err != nil {
		s.logger.Warn("break violation create failed, continuing",
			zap.String("employee_id", employeeID),
			zap.Int("actual_minutes", actualMinutes),
			zap.Int("scheduled_minutes", scheduled),
			zap.Error(err),
		)
		return false
	}

	payload, err := json.Marshal(events.BreakViolationRecordedEvent{
		EventType:         "break_violation.recorded",
		ViolationID:       v.ID.String(),
		CompanyID:         companyID,
		EmployeeID:        employeeID,
		ViolationType:     v.ViolationType,
		ScheduledMinutes:  v.ScheduledMinutes,
		ActualMinutes:     v.ActualMinutes,
		DifferenceMinutes: v.DifferenceMinutes,
		OccurredAt:        time.Now().UTC(),
	})
	if err == nil {
		outboxErr := s.outbox.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     contextutil.GetRequestID(ctx),
			AggregateType: "break_violation",
			AggregateID:   v.ID.String(),
			EventType:     "break_violation.recorded",
			Topic:         events.BreakViolationTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		})
		if outboxErr != nil {
			s.logger.Warn("break violation outbox write failed, continuing", zap.Error(outboxErr))
		}
	}

	s.logger.Info("break violation recorded",
		zap.String("violation_id", v.ID.String()),
		zap.String("employee_id", employeeID),
		zap.Int("difference_minutes", v.DifferenceMinutes),
	)
	return true
}

func (s *service) GetActiveBreak(ctx context.Context, companyID, employeeID string) (*ActiveBreakResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, breakerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, breakerrors.ErrInvalidEmployeeID
	}

	open, err := s.punches.LatestOpenBreak(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, nil
	}

	breakType := punch.BreakTypeUnpaid
	if open.BreakType != nil {
		breakType = *open.BreakType
	}
	scheduled := 0
	if open.ScheduledMinutes != nil {
		scheduled = *open.ScheduledMinutes
	}

	return &ActiveBreakResponse{
		PunchID:          open.ID.String(),
		BreakType:        breakType,
		ScheduledMinutes: scheduled,
		StartedAt:        open.Timestamp.Format(time.RFC3339),
		ElapsedMinutes:   int(math.Round(time.Now().UTC().Sub(open.Timestamp).Minutes())),
	}, nil
}

func (s *service) ReviewViolation(ctx context.Context, companyID, reviewerID, id string, req ReviewViolationRequest) (ViolationResponse, error) {
	reviewerUUID, err := uuid.Parse(reviewerID)
	if err != nil {
		return ViolationResponse{}, breakerrors.ErrInvalidReviewerID
	}
	if !isAllowedReviewStatus(req.Status) {
		return ViolationResponse{}, breakerrors.ErrInvalidReviewStatus
	}

	now := time.Now().UTC()
	transitioned, err := s.violations.ReviewIfPending(ctx, companyID, id, req.Status, reviewerUUID, now, req.Notes)
	if err != nil {
		s.logger.Error("review violation persist failed", zap.String("violation_id", id), zap.Error(err))
		return ViolationResponse{}, err
	}
	if !transitioned {
		// Either the violation does not exist or another reviewer got
		// there first; look it up to tell the two apart.
		existing, lookupErr := s.violations.FindByIDAndCompany(ctx, companyID, id)
		if lookupErr != nil {
			if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
				return ViolationResponse{}, breakerrors.ErrViolationNotFound
			}
			return ViolationResponse{}, lookupErr
		}
		s.logger.Warn("review violation rejected, already reviewed",
			zap.String("violation_id", id),
			zap.String("status", existing.Status),
		)
		return ViolationResponse{}, breakerrors.ErrViolationAlreadyReviewed
	}

	v, err := s.violations.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ViolationResponse{}, err
	}
	s.logger.Info("review violation success",
		zap.String("violation_id", id),
		zap.String("status", req.Status),
		zap.String("reviewed_by", reviewerID),
	)
	return mapViolationToResponse(*v), nil
}

func (s *service) GetViolations(ctx context.Context, companyID, actorID string, canReadAll bool) ([]ViolationResponse, error) {
	var (
		rows []BreakViolation
		err  error
	)
	if canReadAll {
		rows, err = s.violations.FindAllByCompany(ctx, companyID)
	} else {
		if _, parseErr := uuid.Parse(actorID); parseErr != nil {
			return nil, breakerrors.ErrInvalidEmployeeID
		}
		rows, err = s.violations.FindAllByCompanyAndEmployee(ctx, companyID, actorID)
	}
	if err != nil {
		return nil, err
	}
	return mapViolationsToListResponse(rows), nil
}
