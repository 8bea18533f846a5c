package application

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	applicationerrors "github.com/k-obata-3/leave-connect-api/internal/application/errors"
	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
	"github.com/k-obata-3/leave-connect-api/internal/tenant"
)

// TaskApplicationRow is a task joined with its application, used by the
// list endpoints.
type TaskApplicationRow struct {
	TaskID            int64      `gorm:"column:task_id"`
	ApplicationID     int64      `gorm:"column:application_id"`
	ApplicationUserID int64      `gorm:"column:application_user_id"`
	Type              int64      `gorm:"column:type"`
	Classification    int64      `gorm:"column:classification"`
	ApplicationDate   time.Time  `gorm:"column:application_date"`
	StartDate         time.Time  `gorm:"column:start_date"`
	EndDate           time.Time  `gorm:"column:end_date"`
	TotalTime         int64      `gorm:"column:total_time"`
	Action            TaskAction `gorm:"column:action"`
	Comment           string     `gorm:"column:comment"`
}

const taskApplicationSelect = `tasks.id AS task_id, applications.id AS application_id,
	applications.user_id AS application_user_id, applications.type AS type,
	applications.classification AS classification, applications.application_date AS application_date,
	applications.start_date AS start_date, applications.end_date AS end_date,
	applications.total_time AS total_time, tasks.action AS action, tasks.comment AS comment`

type ListFilter struct {
	CompanyID int64
	UserID    *int64
	Year      *int
	Actions   []TaskAction
	Limit     int
	Offset    int
}

type ApprovalListFilter struct {
	CompanyID   int64
	ApproverID  int64
	ApplicantID *int64
	Actions     []TaskAction
	Limit       int
	Offset      int
}

// QueryRepository is the read path. It never locks rows; everything that
// mutates goes through Repository inside a transaction.
type QueryRepository interface {
	FindApplication(ctx context.Context, id, companyID int64) (*Application, error)
	ListTasksByApplication(ctx context.Context, applicationID, companyID int64) ([]Task, error)
	GetTaskForUser(ctx context.Context, taskID, applicationID, userID int64) (*Task, error)
	ListApplicationTasks(ctx context.Context, f ListFilter) ([]TaskApplicationRow, int64, error)
	ListMonthTasks(ctx context.Context, companyID, userID int64, start, end time.Time) ([]TaskApplicationRow, error)
	ListApprovalTasks(ctx context.Context, f ApprovalListFilter) ([]TaskApplicationRow, int64, error)
	CountNotifications(ctx context.Context, companyID, userID int64) (*NotificationSummary, error)
}

type queryRepository struct {
	db *gorm.DB
}

func NewQueryRepository(db *gorm.DB) QueryRepository {
	return &queryRepository{db: db}
}

func (r *queryRepository) FindApplication(ctx context.Context, id, companyID int64) (*Application, error) {
	var app Application
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, applicationerrors.ErrApplicationNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch application", 500)
	}
	return &app, nil
}

// ListTasksByApplication returns the visible task history, which excludes
// NON_ACTIVE rows, in operation order.
func (r *queryRepository) ListTasksByApplication(ctx context.Context, applicationID, companyID int64) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("application_id = ?", applicationID).
		Where("status <> ?", StatusNonActive).
		Order("operation_date ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch tasks", 500)
	}
	return tasks, nil
}

func (r *queryRepository) GetTaskForUser(ctx context.Context, taskID, applicationID, userID int64) (*Task, error) {
	var t Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND application_id = ? AND operation_user_id = ?", taskID, applicationID, userID).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, applicationerrors.ErrApprovalTaskNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch task", 500)
	}
	return &t, nil
}

func (r *queryRepository) ListApplicationTasks(ctx context.Context, f ListFilter) ([]TaskApplicationRow, int64, error) {
	base := r.db.WithContext(ctx).
		Table("tasks").
		Joins("JOIN applications ON applications.id = tasks.application_id").
		Where("tasks.company_id = ?", f.CompanyID).
		Where("tasks.type = ?", TaskTypeApplication).
		Where("tasks.status IN ?", []TaskStatus{StatusActive, StatusClosed})

	if f.UserID != nil {
		base = base.Where("tasks.operation_user_id = ?", *f.UserID)
	}
	if f.Year != nil {
		yearStart := time.Date(*f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		base = base.Where("applications.start_date >= ? AND applications.start_date < ?",
			yearStart, yearStart.AddDate(1, 0, 0))
	}
	if len(f.Actions) > 0 {
		base = base.Where("tasks.action IN ?", f.Actions)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInternalError, "failed to count applications", 500)
	}

	var rows []TaskApplicationRow
	err := base.Select(taskApplicationSelect).
		Order("applications.start_date ASC").
		Limit(f.Limit).
		Offset(f.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch applications", 500)
	}
	return rows, total, nil
}

// ListMonthTasks feeds the calendar view. Cancelled applications are
// hidden there.
func (r *queryRepository) ListMonthTasks(ctx context.Context, companyID, userID int64, start, end time.Time) ([]TaskApplicationRow, error) {
	var rows []TaskApplicationRow
	err := r.db.WithContext(ctx).
		Table("tasks").
		Joins("JOIN applications ON applications.id = tasks.application_id").
		Where("tasks.company_id = ?", companyID).
		Where("tasks.operation_user_id = ?", userID).
		Where("tasks.type = ?", TaskTypeApplication).
		Where("tasks.status = ?", StatusActive).
		Where("tasks.action <> ?", ActionCancel).
		Where("applications.start_date >= ? AND applications.start_date <= ?", start, end).
		Select(taskApplicationSelect).
		Order("applications.start_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch month applications", 500)
	}
	return rows, nil
}

func (r *queryRepository) ListApprovalTasks(ctx context.Context, f ApprovalListFilter) ([]TaskApplicationRow, int64, error) {
	actions := f.Actions
	if len(actions) == 0 {
		actions = []TaskAction{ActionPending, ActionApproval, ActionReject}
	}

	base := r.db.WithContext(ctx).
		Table("tasks").
		Joins("JOIN applications ON applications.id = tasks.application_id").
		Where("tasks.company_id = ?", f.CompanyID).
		Where("tasks.operation_user_id = ?", f.ApproverID).
		Where("tasks.type = ?", TaskTypeApproval).
		Where("tasks.action IN ?", actions).
		Where("tasks.status IN ?", []TaskStatus{StatusActive, StatusClosed, StatusHistory})

	if f.ApplicantID != nil {
		base = base.Where("applications.user_id = ?", *f.ApplicantID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInternalError, "failed to count approval tasks", 500)
	}

	var rows []TaskApplicationRow
	err := base.Select(taskApplicationSelect).
		Order("applications.start_date ASC").
		Limit(f.Limit).
		Offset(f.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInternalError, "failed to fetch approval tasks", 500)
	}
	return rows, total, nil
}

func (r *queryRepository) CountNotifications(ctx context.Context, companyID, userID int64) (*NotificationSummary, error) {
	summary := &NotificationSummary{}

	applicationTasks := r.db.WithContext(ctx).
		Model(&Task{}).
		Scopes(tenant.Scope(companyID)).
		Where("operation_user_id = ?", userID).
		Where("type = ?", TaskTypeApplication).
		Where("status = ?", StatusActive)

	if err := applicationTasks.Session(&gorm.Session{}).
		Where("action = ?", ActionReject).
		Count(&summary.ActionRequiredApplicationCount).Error; err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to count notifications", 500)
	}
	if err := applicationTasks.Session(&gorm.Session{}).
		Where("action = ?", ActionPending).
		Count(&summary.ActiveApplicationCount).Error; err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to count notifications", 500)
	}
	if err := r.db.WithContext(ctx).
		Model(&Task{}).
		Scopes(tenant.Scope(companyID)).
		Where("operation_user_id = ?", userID).
		Where("type = ?", TaskTypeApproval).
		Where("action = ?", ActionPending).
		Count(&summary.ApprovalTaskCount).Error; err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to count notifications", 500)
	}
	return summary, nil
}
