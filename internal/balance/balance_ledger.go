package balance

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	balanceerrors "github.com/k-obata-3/leave-connect-api/internal/balance/errors"
)

// Ledger updates the leave balance inside a workflow transaction. The
// caller owns the transaction; Credit and Debit never commit or roll back.
type Ledger interface {
	// Credit consumes leave for an approved application. Fails when the
	// remaining balance cannot cover the day equivalent of totalTime.
	Credit(ctx context.Context, tx *sql.Tx, companyID, userID, totalTime int64) error
	// Debit returns previously consumed leave after a cancellation.
	// Consumed days never go below zero.
	Debit(ctx context.Context, tx *sql.Tx, companyID, userID, totalTime int64) error
}

type ledger struct {
	repo   Repository
	logger *zap.Logger
}

func NewLedger(repo Repository, logger ...*zap.Logger) Ledger {
	l := zap.L()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &ledger{repo: repo, logger: l.Named("balance_ledger")}
}

var (
	fullDay = decimal.NewFromInt(1)
	halfDay = decimal.RequireFromString("0.5")
	// 8 working hours to a day, so each hour is 0.125 days.
	hourFraction = decimal.RequireFromString("0.125")
)

// DayEquivalent converts requested hours to consumed days. 8 hours is a
// full day, 4 hours a half day, anything else counts per hour.
func DayEquivalent(totalTime int64) decimal.Decimal {
	switch totalTime {
	case 8:
		return fullDay
	case 4:
		return halfDay
	default:
		return hourFraction.Mul(decimal.NewFromInt(totalTime))
	}
}

func (l *ledger) Credit(ctx context.Context, tx *sql.Tx, companyID, userID, totalTime int64) error {
	equivalent := DayEquivalent(totalTime)

	b, err := l.repo.WithTx(tx).GetForUpdate(ctx, companyID, userID)
	if err != nil {
		return err
	}
	if b.Remaining().LessThan(equivalent) {
		l.logger.Warn("leave balance exceeded",
			zap.Int64("user_id", userID),
			zap.String("remaining", b.Remaining().String()),
			zap.String("requested", equivalent.String()))
		return balanceerrors.ErrBalanceExceeded
	}
	return l.repo.WithTx(tx).UpdateConsumed(ctx, b.ID, b.ConsumedDays.Add(equivalent))
}

func (l *ledger) Debit(ctx context.Context, tx *sql.Tx, companyID, userID, totalTime int64) error {
	equivalent := DayEquivalent(totalTime)

	b, err := l.repo.WithTx(tx).GetForUpdate(ctx, companyID, userID)
	if err != nil {
		return err
	}
	consumed := b.ConsumedDays.Sub(equivalent)
	if consumed.IsNegative() {
		consumed = decimal.Zero
	}
	return l.repo.WithTx(tx).UpdateConsumed(ctx, b.ID, consumed)
}
