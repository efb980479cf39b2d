package shiftswap

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-timeclock/internal/directory"
	"go-timeclock/internal/events"
	"go-timeclock/internal/messaging/kafka"
	"go-timeclock/internal/shared/contextutil"
	shiftswaperrors "go-timeclock/internal/shiftswap/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=shiftswap_service.go -destination=mock/shiftswap_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, requesterID string, req CreateSwapRequest) (ShiftSwapResponse, error)
	Respond(ctx context.Context, companyID, actorID, id string, req RespondSwapRequest) (ShiftSwapResponse, error)
	ManagerDecide(ctx context.Context, companyID, managerID, id string, req ManagerDecideRequest) (ShiftSwapResponse, error)
	Execute(ctx context.Context, companyID, id string) (ShiftSwapResponse, error)
	Cancel(ctx context.Context, companyID, actorID, id string) (ShiftSwapResponse, error)
	GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]ShiftSwapResponse, error)
	GetByID(ctx context.Context, companyID, id string) (ShiftSwapResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	shifts    ShiftRepository
	employees directory.Repository
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	shifts ShiftRepository,
	employees directory.Repository,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("shiftswap.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("shiftswap.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		shifts:    shifts,
		employees: employees,
		outbox:    outbox,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, companyID, requesterID string, req CreateSwapRequest) (ShiftSwapResponse, error) {
	s.logger.Debug("create swap requested",
		zap.String("company_id", companyID),
		zap.String("requester_id", requesterID),
		zap.String("swap_type", req.SwapType),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return ShiftSwapResponse{}, shiftswaperrors.ErrInvalidCompanyID
	}
	requesterUUID, err := uuid.Parse(requesterID)
	if err != nil {
		return ShiftSwapResponse{}, shiftswaperrors.ErrInvalidEmployeeID
	}
	if !isValidSwapType(req.SwapType) {
		return ShiftSwapResponse{}, shiftswaperrors.ErrInvalidSwapType
	}

	// A pickup does not open a new request; it claims an existing open
	// giveaway, which is the same transition as a target accepting.
	if req.SwapType == SwapTypePickup {
		return s.claimGiveaway(ctx, companyID, requesterID, req)
	}

	if req.RequesterShiftID == "" {
		return ShiftSwapResponse{}, shiftswaperrors.ErrShiftNotFound
	}
	requesterShift, err := s.shifts.FindByIDAndCompany(ctx, companyID, req.RequesterShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftSwapResponse{}, shiftswaperrors.ErrShiftNotFound
		}
		return ShiftSwapResponse{}, err
	}
	if requesterShift.EmployeeID != requesterUUID {
		return ShiftSwapResponse{}, shiftswaperrors.ErrShiftNotOwned
	}

	busy, err := s.repo.HasActiveSwapForShift(ctx, companyID, req.RequesterShiftID)
	if err != nil {
		return ShiftSwapResponse{}, err
	}
	if busy {
		s.logger.Warn("create swap rejected, shift already in flight",
			zap.String("shift_id", req.RequesterShiftID),
		)
		return ShiftSwapResponse{}, shiftswaperrors.ErrShiftHasActiveSwap
	}

	requesterName, err := s.employees.FindName(ctx, companyID, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftSwapResponse{}, shiftswaperrors.ErrEmployeeNotInCompany
		}
		return ShiftSwapResponse{}, err
	}

	swap := &ShiftSwap{
		ID:               uuid.New(),
		CompanyID:        companyUUID,
		RequesterID:      requesterUUID,
		RequesterName:    requesterName,
		RequesterShiftID: requesterShift.ID,
		SwapType:         req.SwapType,
		Status:           StatusPending,
		Notes:            req.Notes,
	}

	switch req.SwapType {
	case SwapTypeSwap:
		if req.TargetShiftID == nil {
			return ShiftSwapResponse{}, shiftswaperrors.ErrTargetShiftRequired
		}
		targetShift, err := s.shifts.FindByIDAndCompany(ctx, companyID, *req.TargetShiftID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ShiftSwapResponse{}, shiftswaperrors.ErrShiftNotFound
			}
			return ShiftSwapResponse{}, err
		}
		if targetShift.EmployeeID == requesterUUID {
			return ShiftSwapResponse{}, shiftswaperrors.ErrTargetSameEmployee
		}
		targetBusy, err := s.repo.HasActiveSwapForShift(ctx, companyID, *req.TargetShiftID)
		if err != nil {
			return ShiftSwapResponse{}, err
		}
		if targetBusy {
			return ShiftSwapResponse{}, shiftswaperrors.ErrShiftHasActiveSwap
		}
		targetID := targetShift.EmployeeID
		targetName := targetShift.EmployeeName
		swap.TargetShiftID = &targetShift.ID
		swap.TargetEmployeeID = &targetID
		swap.TargetEmployeeName = &targetName

	case SwapTypeGiveaway:
		if req.TargetEmployeeID != nil {
			ok, err := s.employees.BelongsToCompany(ctx, companyID, *req.TargetEmployeeID)
			if err != nil {
				return ShiftSwapResponse{}, err
			}
			if !ok {
				return ShiftSwapResponse{}, shiftswaperrors.ErrEmployeeNotInCompany
			}
			if *req.TargetEmployeeID == requesterID {
				return ShiftSwapResponse{}, shiftswaperrors.ErrTargetSameEmployee
			}
			targetUUID := uuid.MustParse(*req.TargetEmployeeID)
			targetName, err := s.employees.FindName(ctx, companyID, *req.TargetEmployeeID)
			if err != nil {
				return ShiftSwapResponse{}, err
			}
			swap.TargetEmployeeID = &targetUUID
			swap.TargetEmployeeName = &targetName
		}
	}

	if err := s.repo.Create(ctx, swap); err != nil {
		s.logger.Error("create swap persist failed", zap.Error(err))
		return ShiftSwapResponse{}, err
	}
	s.logger.Info("create swap success",
		zap.String("swap_id", swap.ID.String()),
		zap.String("swap_type", swap.SwapType),
		zap.String("requester_id", requesterID),
	)
	return mapToResponse(*swap), nil
}

// claimGiveaway binds the picker as target on an open giveaway and advances
// it to manager_pending. The conditional update means two pickers racing for
// the same giveaway resolve to exactly one winner.
func (s *service) claimGiveaway(ctx context.Context, companyID, pickerID string, req CreateSwapRequest) (ShiftSwapResponse, error) {
	if req.PickupSwapID == nil {
		return ShiftSwapResponse{}, shiftswaperrors.ErrSwapNotFound
	}

	swap, err := s.repo.FindByIDAndCompany(ctx, companyID, *req.PickupSwapID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftSwapResponse{}, shiftswaperrors.ErrSwapNotFound
		}
		return ShiftSwapResponse{}, err
	}
	if swap.SwapType != SwapTypeGiveaway || swap.Status != StatusPending || swap.TargetEmployeeID != nil {
		return ShiftSwapResponse{}, shiftswaperrors.ErrGiveawayNotOpen
	}
	if swap.RequesterID.String() == pickerID {
		return ShiftSwapResponse{}, shiftswaperrors.ErrTargetSameEmployee
	}

	return s.accept(ctx, companyID, pickerID, swap)
}

func (s *service) Respond(ctx context.Context, companyID, actorID, id string, req RespondSwapRequest) (ShiftSwapResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return ShiftSwapResponse{}, shiftswaperrors.ErrInvalidEmployeeID
	}

	swap, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftSwapResponse{}, shiftswaperrors.ErrSwapNotFound
		}
		return ShiftSwapResponse{}, err
	}
	if swap.Status != StatusPending {
		return ShiftSwapResponse{}, shiftswaperrors.ErrInvalidStatusTransition
	}
	if swap.TargetEmployeeID != nil && swap.TargetEmployeeID.String() != actorID {
		return ShiftSwapResponse{}, shiftswaperrors.ErrNotSwapTarget
	}
	if swap.RequesterID.String() == actorID {
		return ShiftSwapResponse{}, shiftswaperrors.ErrNotSwapTarget
	}

	if req.Accept {
		return s.accept(ctx, companyID, actorID, swap)
	}

	// Only a named target can decline; an open giveaway has nobody with
	// standing to reject it.
	if swap.TargetEmployeeID == nil {
		return ShiftSwapResponse{}, shiftswaperrors.ErrNotSwapTarget
	}
	transitioned, err := s.repo.RejectIfPending(ctx, companyID, id)
	if err != nil {
		s.logger.Error("reject swap persist failed", zap.String("swap_id", id), zap.Error(err))
		return ShiftSwapResponse{}, err
	}
	if !transitioned {
		return ShiftSwapResponse{}, shiftswaperrors.ErrInvalidStatusTransition
	}
	s.logger.Info("swap rejected by target", zap.String("swap_id", id))
	return s.GetByID(ctx, companyID, id)
}

func (s *service) accept(ctx context.Context, companyID, actorID string, swap *ShiftSwap) (ShiftSwapResponse, error) {
	actorUUID := uuid.MustParse(actorID)
	actorName, err := s.employees.FindName(ctx, companyID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftSwapResponse{}, shiftswaperrors.ErrEmployeeNotInCompany
		}
		return ShiftSwapResponse{}, err
	}

	transitioned, err := s.repo.AcceptIfPending(ctx, companyID, swap.ID.String(), actorUUID, actorName)
	if err != nil {
		s.logger.Error("accept swap persist failed", zap.String("swap_id", swap.ID.String()), zap.Error(err))
		return ShiftSwapResponse{}, err
	}
	if !transitioned {
		s.logger.Warn("accept swap lost the race", zap.String("swap_id", swap.ID.String()))
		return ShiftSwapResponse{}, shiftswaperrors.ErrInvalidStatusTransition
	}
	s.logger.Info("swap accepted",
		zap.String("swap_id", swap.ID.String()),
		zap.String("target_employee_id", actorID),
	)
	return s.GetByID(ctx, companyID, swap.ID.String())
}

func (s *service) ManagerDecide(ctx context.Context, companyID, managerID, id string, req ManagerDecideRequest) (ShiftSwapResponse, error) {
	managerUUID, err := uuid.Parse(managerID)
	if err != nil {
		return ShiftSwapResponse{}, shiftswaperrors.ErrInvalidEmployeeID
	}

	target := StatusManagerRejected
	if req.Approve {
		target = StatusManagerApproved
	}

	transitioned, err := s.repo.DecideIfManagerPending(ctx, companyID, id, target, managerUUID, req.Notes, time.Now().UTC())
	if err != nil {
		s.logger.Error("decide swap persist failed", zap.String("swap_id", id), zap.Error(err))
		return ShiftSwapResponse{}, err
	}
	if !transitioned {
		// Missing row or a decision already made; tell the two apart.
		if _, lookupErr := s.repo.FindByIDAndCompany(ctx, companyID, id); lookupErr != nil {
			if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
				return ShiftSwapResponse{}, shiftswaperrors.ErrSwapNotFound
			}
			return ShiftSwapResponse{}, lookupErr
		}
		return ShiftSwapResponse{}, shiftswaperrors.ErrInvalidStatusTransition
	}
	s.logger.Info("manager decided swap",
		zap.String("swap_id", id),
		zap.String("status", target),
		zap.String("manager_id", managerID),
	)
	return s.GetByID(ctx, companyID, id)
}

// Execute reassigns the shift(s) and marks the swap completed in a single
// transaction. Either everything commits or nothing does.
func (s *service) Execute(ctx context.Context, companyID, id string) (ShiftSwapResponse, error) {
	swap, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftSwapResponse{}, shiftswaperrors.ErrSwapNotFound
		}
		return ShiftSwapResponse{}, err
	}
	if swap.Status != StatusManagerApproved || swap.TargetEmployeeID == nil {
		return ShiftSwapResponse{}, shiftswaperrors.ErrInvalidStatusTransition
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("execute swap begin tx failed", zap.Error(err))
		return ShiftSwapResponse{}, err
	}
	defer tx.Rollback()

	// The conditional update is the real gate; the read above only shapes
	// the error for stale callers.
	transitioned, err := s.repo.CompleteIfApproved(ctx, tx, companyID, id)
	if err != nil {
		s.logger.Error("execute swap transition failed", zap.String("swap_id", id), zap.Error(err))
		return ShiftSwapResponse{}, err
	}
	if !transitioned {
		s.logger.Warn("execute swap lost the race", zap.String("swap_id", id))
		return ShiftSwapResponse{}, shiftswaperrors.ErrInvalidStatusTransition
	}

	targetID := *swap.TargetEmployeeID
	targetName := ""
	if swap.TargetEmployeeName != nil {
		targetName = *swap.TargetEmployeeName
	}

	if err := s.shifts.Reassign(ctx, tx, swap.RequesterShiftID.String(), targetID, targetName); err != nil {
		s.logger.Error("execute swap reassign failed",
			zap.String("swap_id", id),
			zap.String("shift_id", swap.RequesterShiftID.String()),
			zap.Error(err),
		)
		return ShiftSwapResponse{}, err
	}
	if swap.SwapType == SwapTypeSwap {
		if swap.TargetShiftID == nil {
			return ShiftSwapResponse{}, shiftswaperrors.ErrTargetShiftRequired
		}
		if err := s.shifts.Reassign(ctx, tx, swap.TargetShiftID.String(), swap.RequesterID, swap.RequesterName); err != nil {
			s.logger.Error("execute swap reassign failed",
				zap.String("swap_id", id),
				zap.String("shift_id", swap.TargetShiftID.String()),
				zap.Error(err),
			)
			return ShiftSwapResponse{}, err
		}
	}

	payload, err := json.Marshal(events.ShiftSwapCompletedEvent{
		EventType:        "shift_swap.completed",
		SwapID:           id,
		CompanyID:        companyID,
		SwapType:         swap.SwapType,
		RequesterID:      swap.RequesterID.String(),
		TargetEmployeeID: targetID.String(),
		OccurredAt:       time.Now().UTC(),
	})
	if err != nil {
		return ShiftSwapResponse{}, err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "shift_swap",
		AggregateID:   id,
		EventType:     "shift_swap.completed",
		Topic:         events.ShiftSwapLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("execute swap outbox write failed", zap.String("swap_id", id), zap.Error(err))
		return ShiftSwapResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("execute swap commit failed", zap.String("swap_id", id), zap.Error(err))
		return ShiftSwapResponse{}, err
	}
	s.logger.Info("execute swap success",
		zap.String("swap_id", id),
		zap.String("swap_type", swap.SwapType),
	)
	return s.GetByID(ctx, companyID, id)
}

func (s *service) Cancel(ctx context.Context, companyID, actorID, id string) (ShiftSwapResponse, error) {
	swap, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftSwapResponse{}, shiftswaperrors.ErrSwapNotFound
		}
		return ShiftSwapResponse{}, err
	}
	if swap.RequesterID.String() != actorID {
		return ShiftSwapResponse{}, shiftswaperrors.ErrNotSwapRequester
	}

	transitioned, err := s.repo.CancelIfCancellable(ctx, companyID, id)
	if err != nil {
		s.logger.Error("cancel swap persist failed", zap.String("swap_id", id), zap.Error(err))
		return ShiftSwapResponse{}, err
	}
	if !transitioned {
		return ShiftSwapResponse{}, shiftswaperrors.ErrInvalidStatusTransition
	}
	s.logger.Info("swap cancelled", zap.String("swap_id", id))
	return s.GetByID(ctx, companyID, id)
}

func (s *service) GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]ShiftSwapResponse, error) {
	var (
		rows []ShiftSwap
		err  error
	)
	if canReadAll {
		rows, err = s.repo.FindAllByCompany(ctx, companyID)
	} else {
		if _, parseErr := uuid.Parse(actorID); parseErr != nil {
			return nil, shiftswaperrors.ErrInvalidEmployeeID
		}
		rows, err = s.repo.FindAllByCompanyAndEmployee(ctx, companyID, actorID)
	}
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (ShiftSwapResponse, error) {
	swap, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftSwapResponse{}, shiftswaperrors.ErrSwapNotFound
		}
		return ShiftSwapResponse{}, err
	}
	return mapToResponse(*swap), nil
}
