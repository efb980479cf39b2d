package timeoff

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-timeclock/internal/directory"
	"go-timeclock/internal/events"
	"go-timeclock/internal/messaging/kafka"
	"go-timeclock/internal/shared/contextutil"
	timeofferrors "go-timeclock/internal/timeoff/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=timeoff_service.go -destination=mock/timeoff_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, employeeID string, req CreateTimeOffRequest) (TimeOffResponse, error)
	Decide(ctx context.Context, companyID, responderID, id string, req DecideTimeOffRequest) (TimeOffResponse, error)
	GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]TimeOffResponse, error)
	GetByID(ctx context.Context, companyID, id string) (TimeOffResponse, error)
}

type service struct {
	repo      Repository
	employees directory.Repository
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	repo Repository,
	employees directory.Repository,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("timeoff.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("timeoff.service")
	}
	return &service{repo: repo, employees: employees, outbox: outbox, logger: l}
}

func (s *service) Create(ctx context.Context, companyID, employeeID string, req CreateTimeOffRequest) (TimeOffResponse, error) {
	s.logger.Debug("create time off requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", employeeID),
		zap.String("type", req.Type),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return TimeOffResponse{}, timeofferrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return TimeOffResponse{}, timeofferrors.ErrInvalidEmployeeID
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return TimeOffResponse{}, timeofferrors.ErrInvalidDateRange
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return TimeOffResponse{}, timeofferrors.ErrInvalidDateRange
	}
	if end.Before(start) {
		return TimeOffResponse{}, timeofferrors.ErrInvalidDateRange
	}

	overlaps, err := s.repo.HasOverlappingRequest(ctx, companyID, employeeID, start, end)
	if err != nil {
		s.logger.Error("create time off overlap check failed", zap.Error(err))
		return TimeOffResponse{}, err
	}
	if overlaps {
		s.logger.Warn("create time off rejected, overlapping range",
			zap.String("employee_id", employeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return TimeOffResponse{}, timeofferrors.ErrOverlappingRequest
	}

	employeeName, err := s.employees.FindName(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeOffResponse{}, timeofferrors.ErrInvalidEmployeeID
		}
		return TimeOffResponse{}, err
	}

	// Inclusive day count; half days are out of scope.
	totalDays := int(end.Sub(start).Hours()/24) + 1

	r := &TimeOffRequest{
		ID:           uuid.New(),
		CompanyID:    companyUUID,
		EmployeeID:   employeeUUID,
		EmployeeName: employeeName,
		Type:         req.Type,
		StartDate:    start,
		EndDate:      end,
		TotalDays:    totalDays,
		Reason:       req.Reason,
		Status:       StatusPending,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		s.logger.Error("create time off persist failed", zap.Error(err))
		return TimeOffResponse{}, err
	}

	s.logger.Info("create time off success",
		zap.String("request_id", r.ID.String()),
		zap.String("employee_id", employeeID),
		zap.Int("total_days", totalDays),
	)
	return mapToResponse(*r), nil
}

func (s *service) Decide(ctx context.Context, companyID, responderID, id string, req DecideTimeOffRequest) (TimeOffResponse, error) {
	responderUUID, err := uuid.Parse(responderID)
	if err != nil {
		return TimeOffResponse{}, timeofferrors.ErrInvalidEmployeeID
	}

	target := StatusRejected
	if req.Approve {
		target = StatusApproved
	}

	transitioned, err := s.repo.DecideIfPending(ctx, companyID, id, target, responderUUID, req.Notes, time.Now().UTC())
	if err != nil {
		s.logger.Error("decide time off persist failed", zap.String("request_id", id), zap.Error(err))
		return TimeOffResponse{}, err
	}
	if !transitioned {
		existing, lookupErr := s.repo.FindByIDAndCompany(ctx, companyID, id)
		if lookupErr != nil {
			if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
				return TimeOffResponse{}, timeofferrors.ErrRequestNotFound
			}
			return TimeOffResponse{}, lookupErr
		}
		s.logger.Warn("decide time off rejected, already decided",
			zap.String("request_id", id),
			zap.String("status", existing.Status),
		)
		return TimeOffResponse{}, timeofferrors.ErrAlreadyDecided
	}

	r, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return TimeOffResponse{}, err
	}

	s.publishDecided(ctx, r)
	s.logger.Info("decide time off success",
		zap.String("request_id", id),
		zap.String("status", target),
		zap.String("responder_id", responderID),
	)
	return mapToResponse(*r), nil
}

// publishDecided is best-effort: the decision stands even when the
// notification pipeline is down.
func (s *service) publishDecided(ctx context.Context, r *TimeOffRequest) {
	payload, err := json.Marshal(events.TimeOffDecidedEvent{
		EventType:  "time_off.decided",
		RequestID:  r.ID.String(),
		CompanyID:  r.CompanyID.String(),
		EmployeeID: r.EmployeeID.String(),
		Status:     r.Status,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "time_off_request",
		AggregateID:   r.ID.String(),
		EventType:     "time_off.decided",
		Topic:         events.TimeOffLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Warn("time off outbox write failed, continuing", zap.Error(err))
	}
}

func (s *service) GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]TimeOffResponse, error) {
	var (
		rows []TimeOffRequest
		err  error
	)
	if canReadAll {
		rows, err = s.repo.FindAllByCompany(ctx, companyID)
	} else {
		if _, parseErr := uuid.Parse(actorID); parseErr != nil {
			return nil, timeofferrors.ErrInvalidEmployeeID
		}
		rows, err = s.repo.FindAllByCompanyAndEmployee(ctx, companyID, actorID)
	}
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (TimeOffResponse, error) {
	r, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeOffResponse{}, timeofferrors.ErrRequestNotFound
		}
		return TimeOffResponse{}, err
	}
	return mapToResponse(*r), nil
}
