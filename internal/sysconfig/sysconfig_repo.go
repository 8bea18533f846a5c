package sysconfig

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
	"github.com/k-obata-3/leave-connect-api/internal/tenant"
)

type Repository interface {
	FindByIDAndCompany(ctx context.Context, id, companyID int64) (*SystemConfig, error)
	FindEffectiveByKey(ctx context.Context, companyID int64, key string, asOf time.Time) ([]SystemConfig, error)
	FindByKey(ctx context.Context, companyID int64, key string) ([]SystemConfig, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByIDAndCompany(ctx context.Context, id, companyID int64) (*SystemConfig, error) {
	var cfg SystemConfig
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&cfg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch system config", 500)
	}
	return &cfg, nil
}

func (r *repository) FindEffectiveByKey(ctx context.Context, companyID int64, key string, asOf time.Time) ([]SystemConfig, error) {
	var configs []SystemConfig
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("key = ?", key).
		Where("(start_date IS NULL AND end_date IS NULL) OR (start_date <= ? AND end_date >= ?)", asOf, asOf).
		Order("id ASC").
		Find(&configs).Error
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch system configs", 500)
	}
	return configs, nil
}

func (r *repository) FindByKey(ctx context.Context, companyID int64, key string) ([]SystemConfig, error) {
	var configs []SystemConfig
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("key = ?", key).
		Order("id ASC").
		Find(&configs).Error
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch system configs", 500)
	}
	return configs, nil
}
