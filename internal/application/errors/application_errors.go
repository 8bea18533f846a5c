package errors

import (
	"net/http"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
)

var (
	ErrInvalidAction = apperror.New(apperror.CodeInvalidInput, "unsupported task action", http.StatusBadRequest)

	ErrUnknownApplicationType = apperror.New(apperror.CodeInvalidInput, "unknown application type", http.StatusBadRequest)

	ErrTotalTimeExceeded  = apperror.New(apperror.CodeInvalidInput, "requested time exceeds the working hours of a day", http.StatusBadRequest)
	ErrAllDayTimeRange    = apperror.New(apperror.CodeInvalidInput, "requested time does not satisfy the all-day classification", http.StatusBadRequest)
	ErrMorningTimeRange   = apperror.New(apperror.CodeInvalidInput, "requested time does not satisfy the morning half-day classification", http.StatusBadRequest)
	ErrAfternoonTimeRange = apperror.New(apperror.CodeInvalidInput, "requested time does not satisfy the afternoon half-day classification", http.StatusBadRequest)
	ErrHourlyTimeRange    = apperror.New(apperror.CodeInvalidInput, "requested time does not satisfy the hourly classification", http.StatusBadRequest)

	ErrDuplicateApplication = apperror.New(apperror.CodeConflict, "an application of the same type and classification already exists for the requested day", http.StatusConflict)

	ErrApplicationNotFound     = apperror.New(apperror.CodeNotFound, "application not found", http.StatusNotFound)
	ErrApplicationTaskNotFound = apperror.New(apperror.CodeNotFound, "application task not found", http.StatusNotFound)
	ErrApprovalTaskNotFound    = apperror.New(apperror.CodeNotFound, "approval task not found", http.StatusNotFound)

	ErrTaskAlreadyProcessed = apperror.New(apperror.CodeInvalidState, "approval task has already been processed", http.StatusConflict)
	ErrNotEditable          = apperror.New(apperror.CodeInvalidState, "application can no longer be edited", http.StatusConflict)
	ErrNotDeletable         = apperror.New(apperror.CodeInvalidState, "application can no longer be deleted", http.StatusConflict)
	ErrNotCancellable       = apperror.New(apperror.CodeInvalidState, "only completed applications can be cancelled", http.StatusConflict)
)
