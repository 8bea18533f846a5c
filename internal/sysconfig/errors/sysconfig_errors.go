package errors

import (
	"net/http"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
)

var (
	ErrApprovalGroupNotFound = apperror.New(apperror.CodeNotFound, "approval group not found", http.StatusNotFound)
	ErrApprovalGroupEmpty    = apperror.New(apperror.CodeInvalidInput, "approval group has no approvers", http.StatusBadRequest)
	ErrApplicationTypeNotFound = apperror.New(apperror.CodeNotFound, "application type not found", http.StatusNotFound)
	ErrMalformedConfig         = apperror.New(apperror.CodeInternalError, "malformed system config value", http.StatusInternalServerError)
)
