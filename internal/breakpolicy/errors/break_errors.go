package breakerrors

import (
	"fmt"
	"net/http"

	"go-timeclock/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidReviewerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid reviewer id",
		http.StatusBadRequest,
	)
	ErrNotClockedIn = apperror.New(
		apperror.CodeInvalidState,
		"cannot start a break without an active time entry",
		http.StatusBadRequest,
	)
	ErrAlreadyOnBreak = apperror.New(
		apperror.CodeInvalidState,
		"a break is already in progress",
		http.StatusBadRequest,
	)
	ErrNoActiveBreak = apperror.New(
		apperror.CodeNotFound,
		"no active break to end",
		http.StatusNotFound,
	)
	ErrViolationNotFound = apperror.New(
		apperror.CodeNotFound,
		"break violation not found",
		http.StatusNotFound,
	)
	ErrViolationAlreadyReviewed = apperror.New(
		apperror.CodeConflict,
		"break violation has already been reviewed",
		http.StatusConflict,
	)
	ErrInvalidReviewStatus = apperror.New(
		apperror.CodeInvalidInput,
		"invalid review status",
		http.StatusBadRequest,
	)
)

// BreakTooShort carries the minutes still owed so the UI can display a
// countdown. Only a supervisor override (force) bypasses it.
func BreakTooShort(remainingMinutes int) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("break cannot be ended yet, %d minute(s) remaining", remainingMinutes),
		http.StatusBadRequest,
	).WithDetails(map[string]any{"remaining_minutes": remainingMinutes})
}
