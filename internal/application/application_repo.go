package application

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
	applicationerrors "github.com/k-obata-3/leave-connect-api/internal/application/errors"
)

// Repository is the write path of the workflow engine. Every method that
// reads before a write takes row locks, so callers must hold an open
// transaction via WithTx for anything beyond a single statement.
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateApplication(ctx context.Context, app *Application) (int64, error)
	GetApplicationForUpdate(ctx context.Context, id, companyID int64) (*Application, error)
	UpdateApplication(ctx context.Context, app *Application) error
	DeleteApplication(ctx context.Context, id int64) error

	CreateTask(ctx context.Context, task *Task) (int64, error)
	UpdateTask(ctx context.Context, task *Task) error

	GetEditableApplicationTaskForUpdate(ctx context.Context, applicationID int64) (*Task, error)
	GetActiveApplicationTaskForUpdate(ctx context.Context, applicationID, companyID int64) (*Task, error)
	GetDeletableApplicationTaskForUpdate(ctx context.Context, applicationID int64) (*Task, error)
	GetCompleteApplicationTaskForUpdate(ctx context.Context, applicationID int64) (*Task, error)
	ListActiveApprovalTasksForUpdate(ctx context.Context, applicationID int64) ([]Task, error)

	FindDuplicateApplicationTask(ctx context.Context, companyID, userID, appType, classification int64, dayStart, dayEnd time.Time) (*Task, error)
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

const applicationColumns = `id, company_id, user_id, type, classification, application_date,
	start_date, end_date, total_time, approval_group_id, remarks,
	version, created_by, updated_by, created_at, updated_at`

const taskColumns = `id, company_id, application_id, type, action, status,
	operation_user_id, operation_date, comment,
	version, created_by, updated_by, created_at, updated_at`

func (r *repository) CreateApplication(ctx context.Context, app *Application) (int64, error) {
	query := `INSERT INTO applications
		(company_id, user_id, type, classification, application_date, start_date, end_date,
		 total_time, approval_group_id, remarks, version, created_by, updated_by,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $11, NOW(), NOW())
		RETURNING id`
	var id int64
	err := r.execer().QueryRowContext(ctx, query,
		app.CompanyID, app.UserID, app.Type, app.Classification, app.ApplicationDate,
		app.StartDate, app.EndDate, app.TotalTime, app.ApprovalGroupID, app.Remarks,
		app.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeInternalError, "failed to create application", 500)
	}
	return id, nil
}

func (r *repository) GetApplicationForUpdate(ctx context.Context, id, companyID int64) (*Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications
		WHERE id = $1 AND company_id = $2
		FOR UPDATE`
	return r.scanApplication(r.execer().QueryRowContext(ctx, query, id, companyID))
}

func (r *repository) UpdateApplication(ctx context.Context, app *Application) error {
	query := `UPDATE applications SET
		type = $1, classification = $2, application_date = $3, start_date = $4,
		end_date = $5, total_time = $6, approval_group_id = $7, remarks = $8,
		version = version + 1, updated_by = $9, updated_at = NOW()
		WHERE id = $10`
	return r.exec(ctx, query,
		app.Type, app.Classification, app.ApplicationDate, app.StartDate,
		app.EndDate, app.TotalTime, app.ApprovalGroupID, app.Remarks,
		app.UpdatedBy, app.ID)
}

// DeleteApplication removes the application and every task hanging off it.
func (r *repository) DeleteApplication(ctx context.Context, id int64) error {
	if _, err := r.execer().ExecContext(ctx, `DELETE FROM tasks WHERE application_id = $1`, id); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to delete tasks", 500)
	}
	return r.exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
}

func (r *repository) CreateTask(ctx context.Context, task *Task) (int64, error) {
	query := `INSERT INTO tasks
		(company_id, application_id, type, action, status, operation_user_id,
		 operation_date, comment, version, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $9, NOW(), NOW())
		RETURNING id`
	var id int64
	err := r.execer().QueryRowContext(ctx, query,
		task.CompanyID, task.ApplicationID, task.Type, task.Action, task.Status,
		task.OperationUserID, task.OperationDate, task.Comment, task.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeInternalError, "failed to create task", 500)
	}
	return id, nil
}

func (r *repository) UpdateTask(ctx context.Context, task *Task) error {
	query := `UPDATE tasks SET
		action = $1, status = $2, operation_user_id = $3, operation_date = $4,
		comment = $5, version = version + 1, updated_by = $6, updated_at = NOW()
		WHERE id = $7`
	return r.exec(ctx, query,
		task.Action, task.Status, task.OperationUserID, task.OperationDate,
		task.Comment, task.UpdatedBy, task.ID)
}

// GetEditableApplicationTaskForUpdate locks the requester's task while it
// can still be reworked, which is only in the DRAFT or REJECT state.
func (r *repository) GetEditableApplicationTaskForUpdate(ctx context.Context, applicationID int64) (*Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE application_id = $1 AND type = $2 AND action IN ($3, $4) AND status = $5
		ORDER BY id DESC
		LIMIT 1
		FOR UPDATE`
	return r.scanTask(r.execer().QueryRowContext(ctx, query,
		applicationID, TaskTypeApplication, ActionDraft, ActionReject, StatusActive))
}

func (r *repository) GetActiveApplicationTaskForUpdate(ctx context.Context, applicationID, companyID int64) (*Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE application_id = $1 AND company_id = $2 AND type = $3 AND status = $4
		FOR UPDATE`
	return r.scanTask(r.execer().QueryRowContext(ctx, query,
		applicationID, companyID, TaskTypeApplication, StatusActive))
}

func (r *repository) GetDeletableApplicationTaskForUpdate(ctx context.Context, applicationID int64) (*Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE application_id = $1 AND type = $2 AND action IN ($3, $4, $5) AND status = $6
		FOR UPDATE`
	return r.scanTask(r.execer().QueryRowContext(ctx, query,
		applicationID, TaskTypeApplication, ActionDraft, ActionPending, ActionReject, StatusActive))
}

func (r *repository) GetCompleteApplicationTaskForUpdate(ctx context.Context, applicationID int64) (*Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE application_id = $1 AND type = $2 AND action = $3
		FOR UPDATE`
	return r.scanTask(r.execer().QueryRowContext(ctx, query,
		applicationID, TaskTypeApplication, ActionComplete))
}

func (r *repository) ListActiveApprovalTasksForUpdate(ctx context.Context, applicationID int64) ([]Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE application_id = $1 AND type = $2 AND status = $3
		ORDER BY id ASC
		FOR UPDATE`
	rows, err := r.execer().QueryContext(ctx, query, applicationID, TaskTypeApproval, StatusActive)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch approval tasks", 500)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := scanTaskColumns(rows, &t); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to scan approval task", 500)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch approval tasks", 500)
	}
	return tasks, nil
}

// FindDuplicateApplicationTask looks for another live application task of
// the same requester, type and classification starting on the same
// calendar day. The caller compares the returned application id against
// the one being saved.
func (r *repository) FindDuplicateApplicationTask(ctx context.Context, companyID, userID, appType, classification int64, dayStart, dayEnd time.Time) (*Task, error) {
	query := `SELECT ` + prefixedTaskColumns("t") + `
		FROM tasks t
		JOIN applications a ON a.id = t.application_id
		WHERE t.company_id = $1 AND t.operation_user_id = $2 AND t.type = $3
		  AND a.type = $4 AND a.classification = $5
		  AND t.action IN ($6, $7, $8, $9)
		  AND t.status IN ($10, $11)
		  AND a.start_date >= $12 AND a.start_date <= $13
		LIMIT 1`
	return r.scanTask(r.execer().QueryRowContext(ctx, query,
		companyID, userID, TaskTypeApplication,
		appType, classification,
		ActionDraft, ActionPending, ActionComplete, ActionReject,
		StatusActive, StatusClosed,
		dayStart, dayEnd))
}

func prefixedTaskColumns(alias string) string {
	return alias + `.id, ` + alias + `.company_id, ` + alias + `.application_id, ` +
		alias + `.type, ` + alias + `.action, ` + alias + `.status, ` +
		alias + `.operation_user_id, ` + alias + `.operation_date, ` + alias + `.comment, ` +
		alias + `.version, ` + alias + `.created_by, ` + alias + `.updated_by, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}

func (r *repository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.execer().ExecContext(ctx, query, args...)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "statement failed", 500)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "statement failed", 500)
	}
	if rows == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *repository) scanApplication(row *sql.Row) (*Application, error) {
	var app Application
	err := row.Scan(
		&app.ID, &app.CompanyID, &app.UserID, &app.Type, &app.Classification,
		&app.ApplicationDate, &app.StartDate, &app.EndDate, &app.TotalTime,
		&app.ApprovalGroupID, &app.Remarks,
		&app.Version, &app.CreatedBy, &app.UpdatedBy, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, applicationerrors.ErrApplicationNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch application", 500)
	}
	return &app, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskColumns(row rowScanner, t *Task) error {
	return row.Scan(
		&t.ID, &t.CompanyID, &t.ApplicationID, &t.Type, &t.Action, &t.Status,
		&t.OperationUserID, &t.OperationDate, &t.Comment,
		&t.Version, &t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *repository) scanTask(row *sql.Row) (*Task, error) {
	var t Task
	if err := scanTaskColumns(row, &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch task", 500)
	}
	return &t, nil
}
