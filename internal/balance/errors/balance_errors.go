package errors

import (
	"net/http"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
)

var (
	ErrBalanceExceeded = apperror.New(apperror.CodeInvalidState, "remaining leave balance exceeded", http.StatusConflict)
	ErrBalanceNotFound = apperror.New(apperror.CodeNotFound, "leave balance not found", http.StatusNotFound)
)
