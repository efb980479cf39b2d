package breakpolicy

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	breakerrors "go-timeclock/internal/breakpolicy/errors"
	"go-timeclock/internal/messaging/kafka"
	"go-timeclock/internal/punch"
	"go-timeclock/internal/shared/apperror"
	"go-timeclock/internal/timeentry"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakePunches struct {
	boundTx           *sql.Tx
	createFn          func(ctx context.Context, p *punch.Punch) error
	mostRecentFn      func(ctx context.Context, companyID, employeeID string) (*punch.Punch, error)
	findInRangeFn     func(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]punch.Punch, error)
	latestOpenBreakFn func(ctx context.Context, companyID, employeeID string) (*punch.Punch, error)
}

func (f *fakePunches) WithTx(tx *sql.Tx) punch.Repository { f.boundTx = tx; return f }

func (f *fakePunches) Create(ctx context.Context, p *punch.Punch) error { return f.createFn(ctx, p) }
func (f *fakePunches) MostRecent(ctx context.Context, companyID, employeeID string) (*punch.Punch, error) {
	return f.mostRecentFn(ctx, companyID, employeeID)
}
func (f *fakePunches) FindInRange(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]punch.Punch, error) {
	return f.findInRangeFn(ctx, companyID, employeeID, start, end)
}
func (f *fakePunches) LatestOpenBreak(ctx context.Context, companyID, employeeID string) (*punch.Punch, error) {
	return f.latestOpenBreakFn(ctx, companyID, employeeID)
}

type fakeEntries struct {
	boundTx      *sql.Tx
	findActiveFn func(ctx context.Context, companyID, employeeID string) (*timeentry.TimeEntry, error)
	updateFn     func(ctx context.Context, e *timeentry.TimeEntry) error
}

func (f *fakeEntries) WithTx(tx *sql.Tx) timeentry.Repository { f.boundTx = tx; return f }

func (f *fakeEntries) Create(ctx context.Context, e *timeentry.TimeEntry) error { return nil }
func (f *fakeEntries) FindActiveByEmployee(ctx context.Context, companyID, employeeID string) (*timeentry.TimeEntry, error) {
	return f.findActiveFn(ctx, companyID, employeeID)
}
func (f *fakeEntries) FindByIDAndCompany(ctx context.Context, companyID, id string) (*timeentry.TimeEntry, error) {
	return nil, nil
}
func (f *fakeEntries) FindAllByCompany(ctx context.Context, companyID string) ([]timeentry.TimeEntry, error) {
	return nil, nil
}
func (f *fakeEntries) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]timeentry.TimeEntry, error) {
	return nil, nil
}
func (f *fakeEntries) Update(ctx context.Context, e *timeentry.TimeEntry) error {
	return f.updateFn(ctx, e)
}

type fakeViolations struct {
	createFn          func(ctx context.Context, v *BreakViolation) error
	findByIDFn        func(ctx context.Context, companyID, id string) (*BreakViolation, error)
	reviewIfPendingFn func(ctx context.Context, companyID, id, status string, reviewedBy uuid.UUID, reviewedAt time.Time, notes *string) (bool, error)
}

func (f *fakeViolations) Create(ctx context.Context, v *BreakViolation) error {
	return f.createFn(ctx, v)
}
func (f *fakeViolations) FindByIDAndCompany(ctx context.Context, companyID, id string) (*BreakViolation, error) {
	return f.findByIDFn(ctx, companyID, id)
}
func (f *fakeViolations) FindAllByCompany(ctx context.Context, companyID string) ([]BreakViolation, error) {
	return nil, nil
}
func (f *fakeViolations) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]BreakViolation, error) {
	return nil, nil
}
func (f *fakeViolations) ReviewIfPending(ctx context.Context, companyID, id, status string, reviewedBy uuid.UUID, reviewedAt time.Time, notes *string) (bool, error) {
	return f.reviewIfPendingFn(ctx, companyID, id, status, reviewedBy, reviewedAt, notes)
}

type fakeOutbox struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, event)
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error                  { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type fakeLocks struct{}

func (fakeLocks) AcquireEmployeeLock(ctx context.Context, tx *sql.Tx, companyID, employeeID string) error {
	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func openBreakPunch(companyID, employeeID string, breakType string, scheduled int, startedAgo time.Duration) *punch.Punch {
	return &punch.Punch{
		ID:               uuid.New(),
		CompanyID:        uuid.MustParse(companyID),
		EmployeeID:       uuid.MustParse(employeeID),
		Type:             punch.TypeBreakStart,
		Timestamp:        time.Now().UTC().Add(-startedAgo),
		BreakType:        strPtr(breakType),
		ScheduledMinutes: intPtr(scheduled),
	}
}

func activeEntry(companyID, employeeID string) *timeentry.TimeEntry {
	return &timeentry.TimeEntry{
		ID:         uuid.New(),
		CompanyID:  uuid.MustParse(companyID),
		EmployeeID: uuid.MustParse(employeeID),
		ClockIn:    time.Now().UTC().Add(-4 * time.Hour),
		Status:     timeentry.StatusActive,
	}
}

func TestService_StartBreak_NotClockedIn(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	entries := &fakeEntries{
		findActiveFn: func(ctx context.Context, cid, eid string) (*timeentry.TimeEntry, error) { return nil, nil },
	}

	svc := NewService(db, &fakePunches{}, entries, &fakeViolations{}, &fakeOutbox{}, fakeLocks{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.StartBreak(context.Background(), uuid.New().String(), uuid.New().String(), StartBreakRequest{
		BreakType:        punch.BreakTypeUnpaid,
		ScheduledMinutes: 30,
	})
	assert.ErrorIs(t, err, breakerrors.ErrNotClockedIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_StartBreak_AlreadyOnBreak(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	entries := &fakeEntries{
		findActiveFn: func(ctx context.Context, cid, eid string) (*timeentry.TimeEntry, error) {
			return activeEntry(companyID, employeeID), nil
		},
	}
	punches := &fakePunches{
		latestOpenBreakFn: func(ctx context.Context, cid, eid string) (*punch.Punch, error) {
			return openBreakPunch(companyID, employeeID, punch.BreakTypeUnpaid, 30, 10*time.Minute), nil
		},
	}

	svc := NewService(db, punches, entries, &fakeViolations{}, &fakeOutbox{}, fakeLocks{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.StartBreak(context.Background(), companyID, employeeID, StartBreakRequest{
		BreakType:        punch.BreakTypeUnpaid,
		ScheduledMinutes: 30,
	})
	assert.ErrorIs(t, err, breakerrors.ErrAlreadyOnBreak)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_StartBreak_AppendsPunch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	var saved punch.Punch
	entries := &fakeEntries{
		findActiveFn: func(ctx context.Context, cid, eid string) (*timeentry.TimeEntry, error) {
			return activeEntry(companyID, employeeID), nil
		},
	}
	punches := &fakePunches{
		latestOpenBreakFn: func(ctx context.Context, cid, eid string) (*punch.Punch, error) { return nil, nil },
		createFn:          func(ctx context.Context, p *punch.Punch) error { saved = *p; return nil },
	}

	svc := NewService(db, punches, entries, &fakeViolations{}, &fakeOutbox{}, fakeLocks{})

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.StartBreak(context.Background(), companyID, employeeID, StartBreakRequest{
		BreakType:        punch.BreakTypeUnpaid,
		ScheduledMinutes: 30,
	})
	assert.NoError(t, err)
	assert.Equal(t, punch.TypeBreakStart, saved.Type)
	assert.Equal(t, punch.BreakTypeUnpaid, *saved.BreakType)
	assert.Equal(t, 30, *saved.ScheduledMinutes)
	assert.Equal(t, saved.ID.String(), resp.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_EndBreak_NotClockedIn(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	ledgerConsulted := false
	entries := &fakeEntries{
		findActiveFn: func(ctx context.Context, cid, eid string) (*timeentry.TimeEntry, error) { return nil, nil },
	}
	punches := &fakePunches{
		latestOpenBreakFn: func(ctx context.Context, cid, eid string) (*punch.Punch, error) {
			ledgerConsulted = true
			return nil, nil
		},
	}

	svc := NewService(db, punches, entries, &fakeViolations{}, &fakeOutbox{}, fakeLocks{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.EndBreak(context.Background(), uuid.New().String(), uuid.New().String(), EndBreakRequest{})

	// Without an active working day there can be no open break, so the
	// ledger is never consulted and the caller still gets ErrNoActiveBreak.
	assert.ErrorIs(t, err, breakerrors.ErrNoActiveBreak)
	assert.False(t, ledgerConsulted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_EndBreak_NoActiveBreak(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	entries := &fakeEntries{
		findActiveFn: func(ctx context.Context, cid, eid string) (*timeentry.TimeEntry, error) {
			return activeEntry(companyID, employeeID), nil
		},
	}
	punches := &fakePunches{
		latestOpenBreakFn: func(ctx context.Context, cid, eid string) (*punch.Punch, error) { return nil, nil },
	}

	svc := NewService(db, punches, entries, &fakeViolations{}, &fakeOutbox{}, fakeLocks{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.EndBreak(context.Background(), companyID, employeeID, EndBreakRequest{})
	assert.ErrorIs(t, err, breakerrors.ErrNoActiveBreak)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_EndBreak_TooShort(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	punchWritten := false
	entries := &fakeEntries{
		findActiveFn: func(ctx context.Context, cid, eid string) (*timeentry.TimeEntry, error) {
			return activeEntry(companyID, employeeID), nil
		},
	}
	punches := &fakePunches{
		latestOpenBreakFn: func(ctx context.Context, cid, eid string) (*punch.Punch, error) {
			return openBreakPunch(companyID, employeeID, punch.BreakTypeUnpaid, 30, 25*time.Minute), nil
		},
		createFn: func(ctx context.Context, p *punch.Punch) error { punchWritten = true; return nil },
	}

	svc := NewService(db, punches, entries, &fakeViolations{}, &fakeOutbox{}, fakeLocks{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.EndBreak(context.Background(), companyID, employeeID, EndBreakRequest{})
	assert.Error(t, err)
	assert.False(t, punchWritten)

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
	details, ok := appErr.Details.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, 3, details["remaining_minutes"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_EndBreak_ForceBypassesMinimum(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	var updated timeentry.TimeEntry
	violationCreated := false
	entries := &fakeEntries{
		findActiveFn: func(ctx context.Context, cid, eid string) (*timeentry.TimeEntry, error) {
			return activeEntry(companyID, employeeID), nil
		},
		updateFn: func(ctx context.Context, e *timeentry.TimeEntry) error { updated = *e; return nil },
	}
	punches := &fakePunches{
		latestOpenBreakFn: func(ctx context.Context, cid, eid string) (*punch.Punch, error) {
			return openBreakPunch(companyID, employeeID, punch.BreakTypeUnpaid, 30, 25*time.Minute), nil
		},
		createFn: func(ctx context.Context, p *punch.Punch) error { return nil },
	}
	violations := &fakeViolations{
		createFn: func(ctx context.Context, v *BreakViolation) error { violationCreated = true; return nil },
	}

	svc := NewService(db, punches, entries, violations, &fakeOutbox{}, fakeLocks{})

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.EndBreak(context.Background(), companyID, employeeID, EndBreakRequest{Force: true})
	assert.NoError(t, err)
	assert.Equal(t, 25, resp.ActualMinutes)
	assert.False(t, resp.ViolationCreated)
	assert.False(t, violationCreated)
	assert.Equal(t, 25, updated.BreakMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_EndBreak_OverageCreatesViolation(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	var saved BreakViolation
	entries := &fakeEntries{
		findActiveFn: func(ctx context.Context, cid, eid string) (*timeentry.TimeEntry, error) {
			return activeEntry(companyID, employeeID), nil
		},
		updateFn: func(ctx context.Context, e *timeentry.TimeEntry) error { return nil },
	}
	punches := &fakePunches{
		latestOpenBreakFn: func(ctx context.Context, cid, eid string) (*punch.Punch, error) {
			return openBreakPunch(companyID, employeeID, punch.BreakTypeUnpaid, 15, 48*time.Minute), nil
		},
		createFn: func(ctx context.Context, p *punch.Punch) error { return nil },
	}
	violations := &fakeViolations{
		createFn: func(ctx context.Context, v *BreakViolation) error { saved = *v; return nil },
	}

	svc := NewService(db, punches, entries, violations, &fakeOutbox{}, fakeLocks{})

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.EndBreak(context.Background(), companyID, employeeID, EndBreakRequest{})
	assert.NoError(t, err)
	assert.True(t, resp.ViolationCreated)
	assert.Equal(t, ViolationBreakTooLong, saved.ViolationType)
	assert.Equal(t, 15, saved.ScheduledMinutes)
	assert.Equal(t, 48, saved.ActualMinutes)
	assert.Equal(t, 33, saved.DifferenceMinutes)
	assert.Equal(t, ViolationStatusPending, saved.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_EndBreak_WithinBufferNoViolation(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	violationCreated := false
	var updated timeentry.TimeEntry
	entries := &fakeEntries{
		findActiveFn: func(ctx context.Context, cid, eid string) (*timeentry.TimeEntry, error) {
			return activeEntry(companyID, employeeID), nil
		},
		updateFn: func(ctx context.Context, e *timeentry.TimeEntry) error { updated = *e; return nil },
	}
	punches := &fakePunches{
		latestOpenBreakFn: func(ctx context.Context, cid, eid string) (*punch.Punch, error) {
			return openBreakPunch(companyID, employeeID, punch.BreakTypePaid, 15, 17*time.Minute), nil
		},
		createFn: func(ctx context.Context, p *punch.Punch) error { return nil },
	}
	violations := &fakeViolations{
		createFn: func(ctx context.Context, v *BreakViolation) error { violationCreated = true; return nil },
	}

	svc := NewService(db, punches, entries, violations, &fakeOutbox{}, fakeLocks{})

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.EndBreak(context.Background(), companyID, employeeID, EndBreakRequest{})
	assert.NoError(t, err)
	assert.False(t, violationCreated)
	assert.Equal(t, 17, resp.ActualMinutes)
	assert.Equal(t, 17, updated.PaidBreakMinutes)
	assert.Equal(t, 0, updated.BreakMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_EndBreak_ViolationFailureDoesNotBlock(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	entries := &fakeEntries{
		findActiveFn: func(ctx context.Context, cid, eid string) (*timeentry.TimeEntry, error) {
			return activeEntry(companyID, employeeID), nil
		},
		updateFn: func(ctx context.Context, e *timeentry.TimeEntry) error { return nil },
	}
	punches := &fakePunches{
		latestOpenBreakFn: func(ctx context.Context, cid, eid string) (*punch.Punch, error) {
			return openBreakPunch(companyID, employeeID, punch.BreakTypeUnpaid, 15, 48*time.Minute), nil
		},
		createFn: func(ctx context.Context, p *punch.Punch) error { return nil },
	}
	violations := &fakeViolations{
		createFn: func(ctx context.Context, v *BreakViolation) error { return errors.New("db down") },
	}

	svc := NewService(db, punches, entries, violations, &fakeOutbox{}, fakeLocks{})

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.EndBreak(context.Background(), companyID, employeeID, EndBreakRequest{})
	assert.NoError(t, err)
	assert.False(t, resp.ViolationCreated)
	assert.Equal(t, 48, resp.ActualMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_CloseOpenBreak_NoOpenBreak(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	punches := &fakePunches{
		latestOpenBreakFn: func(ctx context.Context, cid, eid string) (*punch.Punch, error) { return nil, nil },
	}

	svc := NewService(db, punches, &fakeEntries{}, &fakeViolations{}, &fakeOutbox{}, fakeLocks{})

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	closed, err := svc.CloseOpenBreak(context.Background(), tx, uuid.New().String(), uuid.New().String(), time.Now().UTC(), "auto-ended on clock out")
	assert.NoError(t, err)
	assert.Nil(t, closed)
	assert.NotNil(t, punches.boundTx)
}

func TestService_ReviewViolation_AlreadyReviewed(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	violationID := uuid.New().String()

	violations := &fakeViolations{
		reviewIfPendingFn: func(ctx context.Context, cid, id, status string, reviewedBy uuid.UUID, reviewedAt time.Time, notes *string) (bool, error) {
			return false, nil
		},
		findByIDFn: func(ctx context.Context, cid, id string) (*BreakViolation, error) {
			return &BreakViolation{ID: uuid.MustParse(violationID), Status: ViolationStatusExcused}, nil
		},
	}

	svc := NewService(db, &fakePunches{}, &fakeEntries{}, violations, &fakeOutbox{}, fakeLocks{})

	_, err := svc.ReviewViolation(context.Background(), companyID, uuid.New().String(), violationID, ReviewViolationRequest{
		Status: ViolationStatusWarned,
	})
	assert.ErrorIs(t, err, breakerrors.ErrViolationAlreadyReviewed)
}

func TestService_ReviewViolation_Success(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	reviewerID := uuid.New().String()
	violationID := uuid.New().String()

	var gotStatus string
	violations := &fakeViolations{
		reviewIfPendingFn: func(ctx context.Context, cid, id, status string, reviewedBy uuid.UUID, reviewedAt time.Time, notes *string) (bool, error) {
			gotStatus = status
			return true, nil
		},
		findByIDFn: func(ctx context.Context, cid, id string) (*BreakViolation, error) {
			reviewer := uuid.MustParse(reviewerID)
			now := time.Now().UTC()
			return &BreakViolation{
				ID:         uuid.MustParse(violationID),
				CompanyID:  uuid.MustParse(companyID),
				EmployeeID: uuid.New(),
				Status:     ViolationStatusAcknowledged,
				ReviewedBy: &reviewer,
				ReviewedAt: &now,
			}, nil
		},
	}

	svc := NewService(db, &fakePunches{}, &fakeEntries{}, violations, &fakeOutbox{}, fakeLocks{})

	resp, err := svc.ReviewViolation(context.Background(), companyID, reviewerID, violationID, ReviewViolationRequest{
		Status: ViolationStatusAcknowledged,
	})
	assert.NoError(t, err)
	assert.Equal(t, ViolationStatusAcknowledged, gotStatus)
	assert.Equal(t, ViolationStatusAcknowledged, resp.Status)
	assert.Equal(t, reviewerID, *resp.ReviewedBy)
}
