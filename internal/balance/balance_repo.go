package balance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	GetForUpdate(ctx context.Context, companyID, userID int64) (*UserBalance, error)
	UpdateConsumed(ctx context.Context, id int64, consumed decimal.Decimal) error
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *repository) execer() execer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const balanceColumns = `id, company_id, user_id, granted_days, carryover_days, consumed_days, created_at, updated_at`

func (r *repository) GetForUpdate(ctx context.Context, companyID, userID int64) (*UserBalance, error) {
	query := `SELECT ` + balanceColumns + `
		FROM user_balances
		WHERE company_id = $1 AND user_id = $2
		FOR UPDATE`
	return r.scanOne(r.execer().QueryRowContext(ctx, query, companyID, userID))
}

func (r *repository) UpdateConsumed(ctx context.Context, id int64, consumed decimal.Decimal) error {
	query := `UPDATE user_balances SET consumed_days = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.execer().ExecContext(ctx, query, consumed, id)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to update balance", 500)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to update balance", 500)
	}
	if rows == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *repository) scanOne(row *sql.Row) (*UserBalance, error) {
	var b UserBalance
	err := row.Scan(
		&b.ID,
		&b.CompanyID,
		&b.UserID,
		&b.GrantedDays,
		&b.CarryoverDays,
		&b.ConsumedDays,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch balance", 500)
	}
	return &b, nil
}
