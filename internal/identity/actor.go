package identity

import (
	"github.com/gin-gonic/gin"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
)

// Actor is the authenticated caller every workflow operation runs as.
// It is resolved once by the auth middleware and read from the gin context.
type Actor struct {
	UserID    int64
	CompanyID int64
	IsAdmin   bool
}

const (
	ContextUserIDKey    = "user_id"
	ContextCompanyIDKey = "company_id"
	ContextIsAdminKey   = "is_admin"
)

// FromGin rebuilds the Actor from the claims set by the auth middleware.
func FromGin(c *gin.Context) (Actor, error) {
	userID := c.GetInt64(ContextUserIDKey)
	companyID := c.GetInt64(ContextCompanyIDKey)
	if userID == 0 || companyID == 0 {
		return Actor{}, apperror.ErrUnauthorized
	}

	return Actor{
		UserID:    userID,
		CompanyID: companyID,
		IsAdmin:   c.GetBool(ContextIsAdminKey),
	}, nil
}
