package shiftswap

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-timeclock/internal/messaging/kafka"
	shiftswaperrors "go-timeclock/internal/shiftswap/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeSwapRepo struct {
	createFn             func(ctx context.Context, s *ShiftSwap) error
	findByIDFn           func(ctx context.Context, companyID, id string) (*ShiftSwap, error)
	findAllByCompanyFn   func(ctx context.Context, companyID string) ([]ShiftSwap, error)
	findAllByEmployeeFn  func(ctx context.Context, companyID, employeeID string) ([]ShiftSwap, error)
	hasActiveFn          func(ctx context.Context, companyID, shiftID string) (bool, error)
	acceptIfPendingFn    func(ctx context.Context, companyID, id string, targetID uuid.UUID, targetName string) (bool, error)
	rejectIfPendingFn    func(ctx context.Context, companyID, id string) (bool, error)
	decideFn             func(ctx context.Context, companyID, id, status string, managerID uuid.UUID, notes *string, decidedAt time.Time) (bool, error)
	cancelFn             func(ctx context.Context, companyID, id string) (bool, error)
	completeIfApprovedFn func(ctx context.Context, tx *sql.Tx, companyID, id string) (bool, error)
}

func (f *fakeSwapRepo) Create(ctx context.Context, s *ShiftSwap) error { return f.createFn(ctx, s) }
func (f *fakeSwapRepo) FindByIDAndCompany(ctx context.Context, companyID, id string) (*ShiftSwap, error) {
	return f.findByIDFn(ctx, companyID, id)
}
func (f *fakeSwapRepo) FindAllByCompany(ctx context.Context, companyID string) ([]ShiftSwap, error) {
	return f.findAllByCompanyFn(ctx, companyID)
}
func (f *fakeSwapRepo) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]ShiftSwap, error) {
	return f.findAllByEmployeeFn(ctx, companyID, employeeID)
}
func (f *fakeSwapRepo) HasActiveSwapForShift(ctx context.Context, companyID, shiftID string) (bool, error) {
	return f.hasActiveFn(ctx, companyID, shiftID)
}
func (f *fakeSwapRepo) AcceptIfPending(ctx context.Context, companyID, id string, targetID uuid.UUID, targetName string) (bool, error) {
	return f.acceptIfPendingFn(ctx, companyID, id, targetID, targetName)
}
func (f *fakeSwapRepo) RejectIfPending(ctx context.Context, companyID, id string) (bool, error) {
	return f.rejectIfPendingFn(ctx, companyID, id)
}
func (f *fakeSwapRepo) DecideIfManagerPending(ctx context.Context, companyID, id, status string, managerID uuid.UUID, notes *string, decidedAt time.Time) (bool, error) {
	return f.decideFn(ctx, companyID, id, status, managerID, notes, decidedAt)
}
func (f *fakeSwapRepo) CancelIfCancellable(ctx context.Context, companyID, id string) (bool, error) {
	return f.cancelFn(ctx, companyID, id)
}
func (f *fakeSwapRepo) CompleteIfApproved(ctx context.Context, tx *sql.Tx, companyID, id string) (bool, error) {
	return f.completeIfApprovedFn(ctx, tx, companyID, id)
}

type fakeShiftRepo struct {
	findByIDFn func(ctx context.Context, companyID, id string) (*Shift, error)
	reassignFn func(ctx context.Context, tx *sql.Tx, shiftID string, employeeID uuid.UUID, employeeName string) error
}

func (f *fakeShiftRepo) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Shift, error) {
	return f.findByIDFn(ctx, companyID, id)
}
func (f *fakeShiftRepo) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]Shift, error) {
	return nil, nil
}
func (f *fakeShiftRepo) Reassign(ctx context.Context, tx *sql.Tx, shiftID string, employeeID uuid.UUID, employeeName string) error {
	return f.reassignFn(ctx, tx, shiftID, employeeID, employeeName)
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

func TestService_Create_Swap_RequiresOwnedShift(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	requesterID := uuid.New().String()
	otherID := uuid.New()
	shiftID := uuid.New()

	shifts := &fakeShiftRepo{
		findByIDFn: func(ctx context.Context, cid, id string) (*Shift, error) {
			return &Shift{ID: shiftID, EmployeeID: otherID, EmployeeName: "Someone Else"}, nil
		},
	}

	svc := NewService(db, &fakeSwapRepo{}, shifts, &fakeDirectory{}, &fakeOutbox{})

	_, err := svc.Create(context.Background(), companyID, requesterID, CreateSwapRequest{
		SwapType:         SwapTypeSwap,
		RequesterShiftID: shiftID.String(),
	})
	assert.ErrorIs(t, err, shiftswaperrors.ErrShiftNotOwned)
}

func TestService_Create_Swap_RejectsShiftInFlight(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	requesterUUID := uuid.New()
	shiftID := uuid.New()

	shifts := &fakeShiftRepo{
		findByIDFn: func(ctx context.Context, cid, id string) (*Shift, error) {
			return &Shift{ID: shiftID, EmployeeID: requesterUUID, EmployeeName: "Requester"}, nil
		},
	}
	repo := &fakeSwapRepo{
		hasActiveFn: func(ctx context.Context, cid, sid string) (bool, error) { return true, nil },
	}

	svc := NewService(db, repo, shifts, &fakeDirectory{}, &fakeOutbox{})

	_, err := svc.Create(context.Background(), companyID, requesterUUID.String(), CreateSwapRequest{
		SwapType:         SwapTypeSwap,
		RequesterShiftID: shiftID.String(),
	})
	assert.ErrorIs(t, err, shiftswaperrors.ErrShiftHasActiveSwap)
}

func TestService_Create_Swap_BindsTargetFromShift(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	requesterUUID := uuid.New()
	targetUUID := uuid.New()
	requesterShiftID := uuid.New()
	targetShiftID := uuid.New()

	shifts := &fakeShiftRepo{
		findByIDFn: func(ctx context.Context, cid, id string) (*Shift, error) {
			if id == requesterShiftID.String() {
				return &Shift{ID: requesterShiftID, EmployeeID: requesterUUID, EmployeeName: "Ana"}, nil
			}
			return &Shift{ID: targetShiftID, EmployeeID: targetUUID, EmployeeName: "Budi"}, nil
		},
	}
	var saved ShiftSwap
	repo := &fakeSwapRepo{
		hasActiveFn: func(ctx context.Context, cid, sid string) (bool, error) { return false, nil },
		createFn:    func(ctx context.Context, s *ShiftSwap) error { saved = *s; return nil },
	}
	dir := &fakeDirectory{names: map[string]string{requesterUUID.String(): "Ana"}}

	svc := NewService(db, repo, shifts, dir, &fakeOutbox{})

	target := targetShiftID.String()
	resp, err := svc.Create(context.Background(), companyID, requesterUUID.String(), CreateSwapRequest{
		SwapType:         SwapTypeSwap,
		RequesterShiftID: requesterShiftID.String(),
		TargetShiftID:    &target,
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Equal(t, targetUUID, *saved.TargetEmployeeID)
	assert.Equal(t, "Budi", *saved.TargetEmployeeName)
}

func TestService_Create_Pickup_ClaimsOpenGiveaway(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	ownerUUID := uuid.New()
	pickerUUID := uuid.New()
	giveawayID := uuid.New()

	giveaway := ShiftSwap{
		ID:               giveawayID,
		CompanyID:        uuid.MustParse(companyID),
		RequesterID:      ownerUUID,
		RequesterName:    "Owner",
		RequesterShiftID: uuid.New(),
		SwapType:         SwapTypeGiveaway,
		Status:           StatusPending,
	}

	var boundTarget uuid.UUID
	repo := &fakeSwapRepo{
		findByIDFn: func(ctx context.Context, cid, id string) (*ShiftSwap, error) {
			s := giveaway
			if boundTarget != uuid.Nil {
				s.Status = StatusManagerPending
				s.TargetEmployeeID = &boundTarget
			}
			return &s, nil
		},
		acceptIfPendingFn: func(ctx context.Context, cid, id string, targetID uuid.UUID, targetName string) (bool, error) {
			boundTarget = targetID
			return true, nil
		},
	}
	dir := &fakeDirectory{names: map[string]string{pickerUUID.String(): "Picker"}}

	svc := NewService(db, repo, &fakeShiftRepo{}, dir, &fakeOutbox{})

	pickup := giveawayID.String()
	resp, err := svc.Create(context.Background(), companyID, pickerUUID.String(), CreateSwapRequest{
		SwapType:     SwapTypePickup,
		PickupSwapID: &pickup,
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusManagerPending, resp.Status)
	assert.Equal(t, pickerUUID, boundTarget)
}

func TestService_Respond_OnlyTargetMayRespond(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	targetUUID := uuid.New()
	strangerID := uuid.New().String()

	repo := &fakeSwapRepo{
		findByIDFn: func(ctx context.Context, cid, id string) (*ShiftSwap, error) {
			return &ShiftSwap{
				ID:               uuid.New(),
				RequesterID:      uuid.New(),
				TargetEmployeeID: &targetUUID,
				SwapType:         SwapTypeSwap,
				Status:           StatusPending,
			}, nil
		},
	}

	svc := NewService(db, repo, &fakeShiftRepo{}, &fakeDirectory{}, &fakeOutbox{})

	_, err := svc.Respond(context.Background(), companyID, strangerID, uuid.New().String(), RespondSwapRequest{Accept: true})
	assert.ErrorIs(t, err, shiftswaperrors.ErrNotSwapTarget)
}

func TestService_ManagerDecide_LosesRace(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	swapID := uuid.New().String()

	repo := &fakeSwapRepo{
		decideFn: func(ctx context.Context, cid, id, status string, managerID uuid.UUID, notes *string, decidedAt time.Time) (bool, error) {
			return false, nil
		},
		findByIDFn: func(ctx context.Context, cid, id string) (*ShiftSwap, error) {
			return &ShiftSwap{ID: uuid.MustParse(swapID), Status: StatusManagerApproved}, nil
		},
	}

	svc := NewService(db, repo, &fakeShiftRepo{}, &fakeDirectory{}, &fakeOutbox{})

	_, err := svc.ManagerDecide(context.Background(), companyID, uuid.New().String(), swapID, ManagerDecideRequest{Approve: true})
	assert.ErrorIs(t, err, shiftswaperrors.ErrInvalidStatusTransition)
}

func TestService_Execute_SwapsBothShifts(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	requesterUUID := uuid.New()
	targetUUID := uuid.New()
	requesterShiftID := uuid.New()
	targetShiftID := uuid.New()
	swapID := uuid.New()

	targetName := "Budi"
	swap := ShiftSwap{
		ID:                 swapID,
		CompanyID:          uuid.MustParse(companyID),
		RequesterID:        requesterUUID,
		RequesterName:      "Ana",
		RequesterShiftID:   requesterShiftID,
		TargetEmployeeID:   &targetUUID,
		TargetEmployeeName: &targetName,
		TargetShiftID:      &targetShiftID,
		SwapType:           SwapTypeSwap,
		Status:             StatusManagerApproved,
	}

	reassigned := map[string]uuid.UUID{}
	repo := &fakeSwapRepo{
		findByIDFn: func(ctx context.Context, cid, id string) (*ShiftSwap, error) {
			s := swap
			if len(reassigned) == 2 {
				s.Status = StatusCompleted
			}
			return &s, nil
		},
		completeIfApprovedFn: func(ctx context.Context, tx *sql.Tx, cid, id string) (bool, error) {
			return true, nil
		},
	}
	shifts := &fakeShiftRepo{
		reassignFn: func(ctx context.Context, tx *sql.Tx, shiftID string, employeeID uuid.UUID, employeeName string) error {
			reassigned[shiftID] = employeeID
			return nil
		},
	}
	outbox := &fakeOutbox{}

	svc := NewService(db, repo, shifts, &fakeDirectory{}, outbox)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Execute(context.Background(), companyID, swapID.String())
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
	assert.Equal(t, targetUUID, reassigned[requesterShiftID.String()])
	assert.Equal(t, requesterUUID, reassigned[targetShiftID.String()])
	assert.Len(t, outbox.events, 1)
	assert.Equal(t, "shift_swap.completed", outbox.events[0].EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Execute_RejectedFromWrongStatus(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	swapID := uuid.New().String()

	repo := &fakeSwapRepo{
		findByIDFn: func(ctx context.Context, cid, id string) (*ShiftSwap, error) {
			return &ShiftSwap{ID: uuid.MustParse(swapID), Status: StatusPending}, nil
		},
	}

	svc := NewService(db, repo, &fakeShiftRepo{}, &fakeDirectory{}, &fakeOutbox{})

	_, err := svc.Execute(context.Background(), companyID, swapID)
	assert.ErrorIs(t, err, shiftswaperrors.ErrInvalidStatusTransition)
}

func TestService_Execute_ReassignFailureRollsBack(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	targetUUID := uuid.New()
	swapID := uuid.New()

	swap := ShiftSwap{
		ID:               swapID,
		CompanyID:        uuid.MustParse(companyID),
		RequesterID:      uuid.New(),
		RequesterShiftID: uuid.New(),
		TargetEmployeeID: &targetUUID,
		SwapType:         SwapTypeGiveaway,
		Status:           StatusManagerApproved,
	}

	repo := &fakeSwapRepo{
		findByIDFn: func(ctx context.Context, cid, id string) (*ShiftSwap, error) { s := swap; return &s, nil },
		completeIfApprovedFn: func(ctx context.Context, tx *sql.Tx, cid, id string) (bool, error) {
			return true, nil
		},
	}
	errReassign := errors.New("shift row gone")
	shifts := &fakeShiftRepo{
		reassignFn: func(ctx context.Context, tx *sql.Tx, shiftID string, employeeID uuid.UUID, employeeName string) error {
			return errReassign
		},
	}

	svc := NewService(db, repo, shifts, &fakeDirectory{}, &fakeOutbox{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Execute(context.Background(), companyID, swapID.String())
	assert.ErrorIs(t, err, errReassign)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Cancel_OnlyRequester(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New().String()
	requesterUUID := uuid.New()

	repo := &fakeSwapRepo{
		findByIDFn: func(ctx context.Context, cid, id string) (*ShiftSwap, error) {
			return &ShiftSwap{ID: uuid.New(), RequesterID: requesterUUID, Status: StatusPending}, nil
		},
	}

	svc := NewService(db, repo, &fakeShiftRepo{}, &fakeDirectory{}, &fakeOutbox{})

	_, err := svc.Cancel(context.Background(), companyID, uuid.New().String(), uuid.New().String())
	assert.ErrorIs(t, err, shiftswaperrors.ErrNotSwapRequester)
}
