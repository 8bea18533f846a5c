package user

import (
	"context"

	"gorm.io/gorm"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
	"github.com/k-obata-3/leave-connect-api/internal/tenant"
)

type Repository interface {
	FindByIDs(ctx context.Context, companyID int64, ids []int64) ([]User, error)
	FindByCompany(ctx context.Context, companyID int64) ([]User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByIDs(ctx context.Context, companyID int64, ids []int64) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []User
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch users", 500)
	}
	return users, nil
}

func (r *repository) FindByCompany(ctx context.Context, companyID int64) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch users", 500)
	}
	return users, nil
}
