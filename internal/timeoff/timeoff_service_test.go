package timeoff

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-timeclock/internal/messaging/kafka"
	timeofferrors "go-timeclock/internal/timeoff/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeTimeOffRepo struct {
	createFn            func(ctx context.Context, r *TimeOffRequest) error
	findByIDFn          func(ctx context.Context, companyID, id string) (*TimeOffRequest, error)
	findAllByCompanyFn  func(ctx context.Context, companyID string) ([]TimeOffRequest, error)
	findAllByEmployeeFn func(ctx context.Context, companyID, employeeID string) ([]TimeOffRequest, error)
	hasOverlappingFn    func(ctx context.Context, companyID, employeeID string, start, end time.Time) (bool, error)
	decideIfPendingFn   func(ctx context.Context, companyID, id, status string, responderID uuid.UUID, notes *string, decidedAt time.Time) (bool, error)
}

func (f *fakeTimeOffRepo) Create(ctx context.Context, r *TimeOffRequest) error {
	return f.createFn(ctx, r)
}
func (f *fakeTimeOffRepo) FindByIDAndCompany(ctx context.Context, companyID, id string) (*TimeOffRequest, error) {
	return f.findByIDFn(ctx, companyID, id)
}
func (f *fakeTimeOffRepo) FindAllByCompany(ctx context.Context, companyID string) ([]TimeOffRequest, error) {
	return f.findAllByCompanyFn(ctx, companyID)
}
func (f *fakeTimeOffRepo) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]TimeOffRequest, error) {
	return f.findAllByEmployeeFn(ctx, companyID, employeeID)
}
func (f *fakeTimeOffRepo) HasOverlappingRequest(ctx context.Context, companyID, employeeID string, start, end time.Time) (bool, error) {
	return f.hasOverlappingFn(ctx, companyID, employeeID, start, end)
}
func (f *fakeTimeOffRepo) DecideIfPending(ctx context.Context, companyID, id, status string, responderID uuid.UUID, notes *string, decidedAt time.Time) (bool, error) {
	return f.decideIfPendingFn(ctx, companyID, id, status, responderID, notes, decidedAt)
}

type fakeDirectory struct {
	names map[string]string
}

func (f *fakeDirectory) FindName(ctx context.Context, companyID, employeeID string) (string, error) {
	name, ok := f.names[employeeID]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return name, nil
}
func (f *fakeDirectory) BelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	_, ok := f.names[employeeID]
	return ok, nil
}

type fakeOutbox struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error                  { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

func TestService_Create_CountsDaysInclusive(t *testing.T) {
	companyID := uuid.New().String()
	employeeUUID := uuid.New()

	var saved TimeOffRequest
	repo := &fakeTimeOffRepo{
		hasOverlappingFn: func(ctx context.Context, cid, eid string, start, end time.Time) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, r *TimeOffRequest) error { saved = *r; return nil },
	}
	dir := &fakeDirectory{names: map[string]string{employeeUUID.String(): "Citra"}}

	svc := NewService(repo, dir, &fakeOutbox{})

	resp, err := svc.Create(context.Background(), companyID, employeeUUID.String(), CreateTimeOffRequest{
		Type:      TypeVacation,
		StartDate: "2025-06-02",
		EndDate:   "2025-06-06",
	})
	assert.NoError(t, err)
	assert.Equal(t, 5, resp.TotalDays)
	assert.Equal(t, StatusPending, saved.Status)
	assert.Equal(t, "Citra", saved.EmployeeName)
}

func TestService_Create_SingleDayCountsOne(t *testing.T) {
	companyID := uuid.New().String()
	employeeUUID := uuid.New()

	repo := &fakeTimeOffRepo{
		hasOverlappingFn: func(ctx context.Context, cid, eid string, start, end time.Time) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, r *TimeOffRequest) error { return nil },
	}
	dir := &fakeDirectory{names: map[string]string{employeeUUID.String(): "Citra"}}

	svc := NewService(repo, dir, &fakeOutbox{})

	resp, err := svc.Create(context.Background(), companyID, employeeUUID.String(), CreateTimeOffRequest{
		Type:      TypeSick,
		StartDate: "2025-06-02",
		EndDate:   "2025-06-02",
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.TotalDays)
}

func TestService_Create_RejectsEndBeforeStart(t *testing.T) {
	svc := NewService(&fakeTimeOffRepo{}, &fakeDirectory{}, &fakeOutbox{})

	_, err := svc.Create(context.Background(), uuid.New().String(), uuid.New().String(), CreateTimeOffRequest{
		Type:      TypeVacation,
		StartDate: "2025-06-06",
		EndDate:   "2025-06-02",
	})
	assert.ErrorIs(t, err, timeofferrors.ErrInvalidDateRange)
}

func TestService_Create_RejectsOverlap(t *testing.T) {
	companyID := uuid.New().String()
	employeeUUID := uuid.New()

	repo := &fakeTimeOffRepo{
		hasOverlappingFn: func(ctx context.Context, cid, eid string, start, end time.Time) (bool, error) {
			return true, nil
		},
	}

	svc := NewService(repo, &fakeDirectory{}, &fakeOutbox{})

	_, err := svc.Create(context.Background(), companyID, employeeUUID.String(), CreateTimeOffRequest{
		Type:      TypeVacation,
		StartDate: "2025-06-02",
		EndDate:   "2025-06-06",
	})
	assert.ErrorIs(t, err, timeofferrors.ErrOverlappingRequest)
}

func TestService_Decide_ApproveRecordsResponderAndPublishes(t *testing.T) {
	companyID := uuid.New()
	responderUUID := uuid.New()
	requestID := uuid.New()

	var decidedStatus string
	var decidedBy uuid.UUID
	repo := &fakeTimeOffRepo{
		decideIfPendingFn: func(ctx context.Context, cid, id, status string, responderID uuid.UUID, notes *string, decidedAt time.Time) (bool, error) {
			decidedStatus = status
			decidedBy = responderID
			return true, nil
		},
		findByIDFn: func(ctx context.Context, cid, id string) (*TimeOffRequest, error) {
			return &TimeOffRequest{
				ID:          requestID,
				CompanyID:   companyID,
				EmployeeID:  uuid.New(),
				Status:      StatusApproved,
				ResponderID: &responderUUID,
			}, nil
		},
	}
	outbox := &fakeOutbox{}

	svc := NewService(repo, &fakeDirectory{}, outbox)

	resp, err := svc.Decide(context.Background(), companyID.String(), responderUUID.String(), requestID.String(), DecideTimeOffRequest{Approve: true})
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, resp.Status)
	assert.Equal(t, StatusApproved, decidedStatus)
	assert.Equal(t, responderUUID, decidedBy)
	assert.Len(t, outbox.events, 1)
	assert.Equal(t, "time_off.decided", outbox.events[0].EventType)
}

func TestService_Decide_RejectUsesRejectedStatus(t *testing.T) {
	companyID := uuid.New()
	requestID := uuid.New()

	var decidedStatus string
	repo := &fakeTimeOffRepo{
		decideIfPendingFn: func(ctx context.Context, cid, id, status string, responderID uuid.UUID, notes *string, decidedAt time.Time) (bool, error) {
			decidedStatus = status
			return true, nil
		},
		findByIDFn: func(ctx context.Context, cid, id string) (*TimeOffRequest, error) {
			return &TimeOffRequest{ID: requestID, CompanyID: companyID, Status: StatusRejected}, nil
		},
	}

	svc := NewService(repo, &fakeDirectory{}, &fakeOutbox{})

	_, err := svc.Decide(context.Background(), companyID.String(), uuid.New().String(), requestID.String(), DecideTimeOffRequest{Approve: false})
	assert.NoError(t, err)
	assert.Equal(t, StatusRejected, decidedStatus)
}

func TestService_Decide_AlreadyDecided(t *testing.T) {
	companyID := uuid.New()
	requestID := uuid.New()

	repo := &fakeTimeOffRepo{
		decideIfPendingFn: func(ctx context.Context, cid, id, status string, responderID uuid.UUID, notes *string, decidedAt time.Time) (bool, error) {
			return false, nil
		},
		findByIDFn: func(ctx context.Context, cid, id string) (*TimeOffRequest, error) {
			return &TimeOffRequest{ID: requestID, CompanyID: companyID, Status: StatusApproved}, nil
		},
	}

	svc := NewService(repo, &fakeDirectory{}, &fakeOutbox{})

	_, err := svc.Decide(context.Background(), companyID.String(), uuid.New().String(), requestID.String(), DecideTimeOffRequest{Approve: true})
	assert.ErrorIs(t, err, timeofferrors.ErrAlreadyDecided)
}

func TestService_Decide_NotFound(t *testing.T) {
	repo := &fakeTimeOffRepo{
		decideIfPendingFn: func(ctx context.Context, cid, id, status string, responderID uuid.UUID, notes *string, decidedAt time.Time) (bool, error) {
			return false, nil
		},
		findByIDFn: func(ctx context.Context, cid, id string) (*TimeOffRequest, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc := NewService(repo, &fakeDirectory{}, &fakeOutbox{})

	_, err := svc.Decide(context.Background(), uuid.New().String(), uuid.New().String(), uuid.New().String(), DecideTimeOffRequest{Approve: true})
	assert.ErrorIs(t, err, timeofferrors.ErrRequestNotFound)
}
