package shiftswaperrors

import (
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
	ErrInvalidSwapType = apperror.New(
		apperror.CodeInvalidInput,
		"invalid swap type",
		http.StatusBadRequest,
	)
	ErrSwapNotFound = apperror.New(
		apperror.CodeNotFound,
		"shift swap not found",
		http.StatusNotFound,
	)
	ErrShiftNotFound = apperror.New(
		apperror.CodeNotFound,
		"shift not found",
		http.StatusNotFound,
	)
	ErrShiftNotOwned = apperror.New(
		apperror.CodeForbidden,
		"shift does not belong to the requester",
		http.StatusForbidden,
	)
	ErrTargetShiftRequired = apperror.New(
		apperror.CodeInvalidInput,
		"a target shift is required for a swap",
		http.StatusBadRequest,
	)
	ErrTargetSameEmployee = apperror.New(
		apperror.CodeInvalidInput,
		"cannot swap a shift with yourself",
		http.StatusBadRequest,
	)
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeNotFound,
		"target employee not found in this company",
		http.StatusNotFound,
	)
	ErrShiftHasActiveSwap = apperror.New(
		apperror.CodeConflict,
		"shift already has a swap in progress",
		http.StatusConflict,
	)
	ErrGiveawayNotOpen = apperror.New(
		apperror.CodeInvalidState,
		"giveaway is not open for pickup",
		http.StatusBadRequest,
	)
	ErrNotSwapTarget = apperror.New(
		apperror.CodeForbidden,
		"only the target employee may respond to this swap",
		http.StatusForbidden,
	)
	ErrNotSwapRequester = apperror.New(
		apperror.CodeForbidden,
		"only the requester may cancel this swap",
		http.StatusForbidden,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"shift swap status transition not allowed",
		http.StatusConflict,
	)
)
