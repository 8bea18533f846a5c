package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	applicationerrors "github.com/k-obata-3/leave-connect-api/internal/application/errors"
	"github.com/k-obata-3/leave-connect-api/internal/balance"
	"github.com/k-obata-3/leave-connect-api/internal/events"
	"github.com/k-obata-3/leave-connect-api/internal/identity"
	"github.com/k-obata-3/leave-connect-api/internal/messaging/kafka"
	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
	"github.com/k-obata-3/leave-connect-api/internal/shared/contextutil"
	"github.com/k-obata-3/leave-connect-api/internal/sysconfig"
	"github.com/k-obata-3/leave-connect-api/internal/user"
)

type Service interface {
	Submit(ctx context.Context, actor identity.Actor, req SubmitRequest) (int64, error)
	Approve(ctx context.Context, actor identity.Actor, req ApproveRequest) error
	Delete(ctx context.Context, actor identity.Actor, applicationID int64) error
	Cancel(ctx context.Context, actor identity.Actor, applicationID int64, comment string) error
	GetDetail(ctx context.Context, actor identity.Actor, q DetailQuery) (*DetailResponse, error)
	List(ctx context.Context, actor identity.Actor, q ListQuery) ([]ListItem, int64, error)
	ListMonth(ctx context.Context, actor identity.Actor, start, end time.Time) ([]MonthItem, error)
	ListApprovals(ctx context.Context, actor identity.Actor, q ApprovalListQuery) ([]ApprovalListItem, int64, error)
	NotificationCounts(ctx context.Context, actor identity.Actor) (*NotificationSummary, error)
}

type service struct {
	db              *sql.DB
	repo            Repository
	queries         QueryRepository
	users           user.Repository
	configs         sysconfig.Service
	ledger          balance.Ledger
	outbox          kafka.OutboxRepository
	paidHolidayType int64
	now             func() time.Time
	logger          *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	queries QueryRepository,
	users user.Repository,
	configs sysconfig.Service,
	ledger balance.Ledger,
	paidHolidayType int64,
	logger ...*zap.Logger,
) Service {
	l := zap.L()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &service{
		db:              db,
		repo:            repo,
		queries:         queries,
		users:           users,
		configs:         configs,
		ledger:          ledger,
		paidHolidayType: paidHolidayType,
		now:             time.Now,
		logger:          l.Named("application_service"),
	}
}

// NewServiceWithOutbox wires lifecycle event publication into the same
// transaction as the workflow transition.
func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	queries QueryRepository,
	users user.Repository,
	configs sysconfig.Service,
	ledger balance.Ledger,
	outbox kafka.OutboxRepository,
	paidHolidayType int64,
	logger ...*zap.Logger,
) Service {
	svc := NewService(db, repo, queries, users, configs, ledger, paidHolidayType, logger...).(*service)
	svc.outbox = outbox
	return svc
}

const maxWorkingHours = 9

func (s *service) Submit(ctx context.Context, actor identity.Actor, req SubmitRequest) (int64, error) {
	if req.Action != ActionDraft && req.Action != ActionPending {
		return 0, applicationerrors.ErrInvalidAction
	}
	if !req.EndDate.After(req.StartDate) {
		return 0, apperror.InvalidField("endDate")
	}

	now := s.now()
	types, err := s.configs.GetApplicationTypes(ctx, actor.CompanyID, now)
	if err != nil {
		return 0, err
	}
	format := types.Format(req.Type)
	if format == "" {
		return 0, applicationerrors.ErrUnknownApplicationType
	}
	if format == sysconfig.FormatTime {
		if err := validateTimeRange(types, req); err != nil {
			return 0, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeInternalError, "failed to begin transaction", 500)
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)

	// Same calendar day, same type and classification means a duplicate,
	// unless the hit is the application being edited.
	dayStart := startOfDay(req.StartDate)
	dayEnd := endOfDay(req.EndDate)
	duplicate, err := repo.FindDuplicateApplicationTask(ctx, actor.CompanyID, actor.UserID,
		req.Type, req.Classification, dayStart, dayEnd)
	if err != nil {
		return 0, err
	}
	if duplicate != nil && (req.ID == nil || duplicate.ApplicationID != *req.ID) {
		return 0, applicationerrors.ErrDuplicateApplication
	}

	applicationID, err := s.upsertApplication(ctx, repo, actor, req, now)
	if err != nil {
		return 0, err
	}

	appTask, err := repo.GetEditableApplicationTaskForUpdate(ctx, applicationID)
	if err != nil {
		return 0, err
	}

	// An edit with no editable task means the application is already in
	// flight or settled. Creating a fresh task here would leave two ACTIVE
	// application tasks on the same application.
	if appTask == nil && req.ID != nil {
		return 0, applicationerrors.ErrNotEditable
	}

	if appTask == nil || appTask.Action == ActionReject {
		newTask := &Task{
			CompanyID:       actor.CompanyID,
			ApplicationID:   applicationID,
			Type:            TaskTypeApplication,
			Action:          req.Action,
			Status:          StatusActive,
			OperationUserID: actor.UserID,
			OperationDate:   &now,
			Comment:         req.Comment,
			CreatedBy:       actor.UserID,
			UpdatedBy:       actor.UserID,
		}
		if _, err := repo.CreateTask(ctx, newTask); err != nil {
			return 0, err
		}
	} else {
		appTask.Action = req.Action
		appTask.Comment = req.Comment
		appTask.OperationDate = &now
		appTask.UpdatedBy = actor.UserID
		if err := repo.UpdateTask(ctx, appTask); err != nil {
			return 0, err
		}
	}

	if req.Action == ActionPending {
		// Resubmission after a rejection retires the previous generation.
		if appTask != nil && appTask.Action == ActionReject {
			appTask.Status = StatusHistory
			appTask.UpdatedBy = actor.UserID
			if err := repo.UpdateTask(ctx, appTask); err != nil {
				return 0, err
			}
			if err := s.retireActiveApprovalTasks(ctx, repo, actor, applicationID); err != nil {
				return 0, err
			}
		}

		if err := s.fanOutApprovalTasks(ctx, repo, actor, applicationID, req.ApprovalGroupID, now); err != nil {
			return 0, err
		}

		if err := s.writeLifecycleEvent(ctx, tx, events.EventApplicationSubmitted, applicationID, actor, now); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperror.Wrap(err, apperror.CodeInternalError, "failed to commit transaction", 500)
	}

	s.logger.Info("application saved",
		zap.Int64("application_id", applicationID),
		zap.Int64("user_id", actor.UserID),
		zap.String("action", req.Action.Label()))
	return applicationID, nil
}

func (s *service) upsertApplication(ctx context.Context, repo Repository, actor identity.Actor, req SubmitRequest, now time.Time) (int64, error) {
	if req.ID == nil {
		app := &Application{
			CompanyID:       actor.CompanyID,
			UserID:          actor.UserID,
			Type:            req.Type,
			Classification:  req.Classification,
			ApplicationDate: now,
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			TotalTime:       req.TotalTime,
			ApprovalGroupID: req.ApprovalGroupID,
			Remarks:         req.Remarks,
			CreatedBy:       actor.UserID,
			UpdatedBy:       actor.UserID,
		}
		return repo.CreateApplication(ctx, app)
	}

	app, err := repo.GetApplicationForUpdate(ctx, *req.ID, actor.CompanyID)
	if err != nil {
		return 0, err
	}
	if app.UserID != actor.UserID {
		return 0, apperror.ErrForbidden
	}

	app.Type = req.Type
	app.Classification = req.Classification
	app.StartDate = req.StartDate
	app.EndDate = req.EndDate
	app.TotalTime = req.TotalTime
	app.ApprovalGroupID = req.ApprovalGroupID
	app.Remarks = req.Remarks
	// A draft re-save keeps the original application date. Only an actual
	// submission stamps it.
	if req.Action == ActionPending {
		app.ApplicationDate = now
	}
	app.UpdatedBy = actor.UserID
	if err := repo.UpdateApplication(ctx, app); err != nil {
		return 0, err
	}
	return app.ID, nil
}

func (s *service) retireActiveApprovalTasks(ctx context.Context, repo Repository, actor identity.Actor, applicationID int64) error {
	tasks, err := repo.ListActiveApprovalTasksForUpdate(ctx, applicationID)
	if err != nil {
		return err
	}
	for i := range tasks {
		tasks[i].Status = StatusHistory
		tasks[i].UpdatedBy = actor.UserID
		if err := repo.UpdateTask(ctx, &tasks[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) fanOutApprovalTasks(ctx context.Context, repo Repository, actor identity.Actor, applicationID, approvalGroupID int64, now time.Time) error {
	group, err := s.configs.GetApprovalGroup(ctx, actor.CompanyID, approvalGroupID)
	if err != nil {
		return err
	}
	for _, approverID := range group.ApproverIDs {
		if approverID == actor.UserID {
			continue
		}
		task := &Task{
			CompanyID:       actor.CompanyID,
			ApplicationID:   applicationID,
			Type:            TaskTypeApproval,
			Action:          ActionPending,
			Status:          StatusActive,
			OperationUserID: approverID,
			OperationDate:   &now,
			CreatedBy:       actor.UserID,
			UpdatedBy:       actor.UserID,
		}
		if _, err := repo.CreateTask(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Approve(ctx context.Context, actor identity.Actor, req ApproveRequest) error {
	if req.Action != ActionApproval && req.Action != ActionReject {
		return applicationerrors.ErrInvalidAction
	}

	now := s.now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to begin transaction", 500)
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)

	appTask, err := repo.GetActiveApplicationTaskForUpdate(ctx, req.ApplicationID, actor.CompanyID)
	if err != nil {
		return err
	}
	if appTask == nil {
		return applicationerrors.ErrApplicationTaskNotFound
	}

	approvalTasks, err := repo.ListActiveApprovalTasksForUpdate(ctx, req.ApplicationID)
	if err != nil {
		return err
	}

	var own *Task
	var others []*Task
	for i := range approvalTasks {
		if approvalTasks[i].ID == req.TaskID && approvalTasks[i].OperationUserID == actor.UserID {
			own = &approvalTasks[i]
		} else {
			others = append(others, &approvalTasks[i])
		}
	}
	if own == nil {
		return applicationerrors.ErrApprovalTaskNotFound
	}
	if own.Action != ActionPending {
		return applicationerrors.ErrTaskAlreadyProcessed
	}

	activeOperators, err := s.activeOperatorSet(ctx, actor.CompanyID, others)
	if err != nil {
		return err
	}

	switch req.Action {
	case ActionApproval:
		// Unanimity over the remaining approvers. Deactivated approvers
		// can no longer act, so their votes are not waited on.
		allApproved := true
		for _, other := range others {
			if other.Action != ActionApproval && activeOperators[other.OperationUserID] {
				allApproved = false
				break
			}
		}
		if allApproved {
			if err := s.completeApplication(ctx, tx, repo, actor, appTask, own, others, activeOperators, req.Comment, now); err != nil {
				return err
			}
		} else {
			own.Action = ActionApproval
			own.Comment = req.Comment
			own.OperationDate = &now
			own.UpdatedBy = actor.UserID
			if err := repo.UpdateTask(ctx, own); err != nil {
				return err
			}
		}
	case ActionReject:
		if err := s.rejectApplication(ctx, tx, repo, actor, appTask, own, others, req.Comment, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to commit transaction", 500)
	}

	s.logger.Info("approval processed",
		zap.Int64("application_id", req.ApplicationID),
		zap.Int64("task_id", req.TaskID),
		zap.String("action", req.Action.Label()))
	return nil
}

func (s *service) activeOperatorSet(ctx context.Context, companyID int64, tasks []*Task) (map[int64]bool, error) {
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.OperationUserID)
	}
	operators, err := s.users.FindByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	active := make(map[int64]bool, len(operators))
	for i := range operators {
		active[operators[i].ID] = operators[i].IsActive()
	}
	return active, nil
}

func (s *service) completeApplication(
	ctx context.Context,
	tx *sql.Tx,
	repo Repository,
	actor identity.Actor,
	appTask, own *Task,
	others []*Task,
	activeOperators map[int64]bool,
	comment string,
	now time.Time,
) error {
	appTask.Action = ActionComplete
	appTask.Status = StatusClosed
	appTask.UpdatedBy = actor.UserID
	if err := repo.UpdateTask(ctx, appTask); err != nil {
		return err
	}

	own.Action = ActionApproval
	own.Status = StatusClosed
	own.Comment = comment
	own.OperationDate = &now
	own.UpdatedBy = actor.UserID
	if err := repo.UpdateTask(ctx, own); err != nil {
		return err
	}
	for _, other := range others {
		if !activeOperators[other.OperationUserID] {
			other.Action = ActionSystemCancel
			other.Status = StatusNonActive
		} else {
			other.Status = StatusClosed
		}
		other.UpdatedBy = actor.UserID
		if err := repo.UpdateTask(ctx, other); err != nil {
			return err
		}
	}

	app, err := repo.GetApplicationForUpdate(ctx, appTask.ApplicationID, actor.CompanyID)
	if err != nil {
		return err
	}
	if app.Type == s.paidHolidayType {
		if err := s.ledger.Credit(ctx, tx, app.CompanyID, app.UserID, app.TotalTime); err != nil {
			return err
		}
	}

	return s.writeLifecycleEvent(ctx, tx, events.EventApplicationCompleted, app.ID,
		identity.Actor{UserID: app.UserID, CompanyID: app.CompanyID}, now)
}

func (s *service) rejectApplication(
	ctx context.Context,
	tx *sql.Tx,
	repo Repository,
	actor identity.Actor,
	appTask, own *Task,
	others []*Task,
	comment string,
	now time.Time,
) error {
	own.Action = ActionReject
	own.Comment = comment
	own.OperationDate = &now
	own.UpdatedBy = actor.UserID
	if err := repo.UpdateTask(ctx, own); err != nil {
		return err
	}

	// The requester gets the application back. The task stays ACTIVE and
	// keeps its original operation date.
	appTask.Action = ActionReject
	appTask.UpdatedBy = actor.UserID
	if err := repo.UpdateTask(ctx, appTask); err != nil {
		return err
	}

	for _, other := range others {
		if other.Action == ActionPending {
			other.Action = ActionSystemCancel
			other.Status = StatusNonActive
			other.UpdatedBy = actor.UserID
			if err := repo.UpdateTask(ctx, other); err != nil {
				return err
			}
		}
	}

	return s.writeLifecycleEvent(ctx, tx, events.EventApplicationRejected, appTask.ApplicationID,
		identity.Actor{UserID: appTask.OperationUserID, CompanyID: actor.CompanyID}, now)
}

func (s *service) Delete(ctx context.Context, actor identity.Actor, applicationID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to begin transaction", 500)
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)

	app, err := repo.GetApplicationForUpdate(ctx, applicationID, actor.CompanyID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin && app.UserID != actor.UserID {
		return apperror.ErrForbidden
	}

	task, err := repo.GetDeletableApplicationTaskForUpdate(ctx, applicationID)
	if err != nil {
		return err
	}
	if task == nil {
		return applicationerrors.ErrNotDeletable
	}

	if err := repo.DeleteApplication(ctx, applicationID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to commit transaction", 500)
	}

	s.logger.Info("application deleted",
		zap.Int64("application_id", applicationID),
		zap.Int64("user_id", actor.UserID))
	return nil
}

func (s *service) Cancel(ctx context.Context, actor identity.Actor, applicationID int64, comment string) error {
	if !actor.IsAdmin {
		return apperror.ErrForbidden
	}

	now := s.now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to begin transaction", 500)
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)

	app, err := repo.GetApplicationForUpdate(ctx, applicationID, actor.CompanyID)
	if err != nil {
		return err
	}
	appTask, err := repo.GetCompleteApplicationTaskForUpdate(ctx, applicationID)
	if err != nil {
		return err
	}
	if appTask == nil {
		return applicationerrors.ErrNotCancellable
	}

	appTask.Action = ActionCancel
	appTask.UpdatedBy = actor.UserID
	if err := repo.UpdateTask(ctx, appTask); err != nil {
		return err
	}

	cancelTask := &Task{
		CompanyID:       actor.CompanyID,
		ApplicationID:   applicationID,
		Type:            TaskTypeApproval,
		Action:          ActionCancel,
		Status:          StatusClosed,
		OperationUserID: actor.UserID,
		OperationDate:   &now,
		Comment:         comment,
		CreatedBy:       actor.UserID,
		UpdatedBy:       actor.UserID,
	}
	if _, err := repo.CreateTask(ctx, cancelTask); err != nil {
		return err
	}

	if app.Type == s.paidHolidayType {
		if err := s.ledger.Debit(ctx, tx, app.CompanyID, app.UserID, app.TotalTime); err != nil {
			return err
		}
	}

	if err := s.writeLifecycleEvent(ctx, tx, events.EventApplicationCancelled, applicationID,
		identity.Actor{UserID: app.UserID, CompanyID: app.CompanyID}, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to commit transaction", 500)
	}

	s.logger.Info("application cancelled",
		zap.Int64("application_id", applicationID),
		zap.Int64("operator_id", actor.UserID))
	return nil
}

func (s *service) GetDetail(ctx context.Context, actor identity.Actor, q DetailQuery) (*DetailResponse, error) {
	if q.AdminFlow && !actor.IsAdmin {
		return nil, applicationerrors.ErrApplicationNotFound
	}

	var targetTask *Task
	if q.TaskID != nil {
		t, err := s.queries.GetTaskForUser(ctx, *q.TaskID, q.ApplicationID, actor.UserID)
		if err != nil {
			return nil, err
		}
		targetTask = t
	}

	app, err := s.queries.FindApplication(ctx, q.ApplicationID, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.queries.ListTasksByApplication(ctx, q.ApplicationID, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	var appTask *Task
	for i := range tasks {
		if tasks[i].Type == TaskTypeApplication &&
			(tasks[i].Status == StatusActive || tasks[i].Status == StatusClosed) {
			appTask = &tasks[i]
			break
		}
	}
	if appTask == nil {
		return nil, applicationerrors.ErrApplicationTaskNotFound
	}

	names, err := s.userNames(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	types, err := s.configs.GetApplicationTypes(ctx, actor.CompanyID, now)
	if err != nil {
		return nil, err
	}

	view := ApplicationView{
		ID:                  app.ID,
		ApplicationUserID:   app.UserID,
		ApplicationUserName: names[app.UserID],
		Type:                app.Type,
		TypeName:            types.TypeName(app.Type),
		Classification:      app.Classification,
		ClassificationName:  types.ClassificationName(app.Type, app.Classification),
		ApplicationDate:     app.ApplicationDate,
		StartDate:           app.StartDate,
		EndDate:             app.EndDate,
		TotalTime:           app.TotalTime,
		ApprovalGroupID:     app.ApprovalGroupID,
		Approvers:           []ApproverView{},
		Action:              appTask.Action,
		ActionName:          appTask.Action.Label(),
		Comment:             appTask.Comment,
		Remarks:             app.Remarks,
	}
	if group, err := s.configs.GetApprovalGroup(ctx, actor.CompanyID, app.ApprovalGroupID); err == nil {
		view.ApprovalGroupName = group.Name
		for _, approverID := range group.ApproverIDs {
			view.Approvers = append(view.Approvers, ApproverView{ID: approverID, Name: names[approverID]})
		}
	}

	taskViews := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if t.ID == appTask.ID {
			continue
		}
		actionName := t.Action.Label()
		if t.Type == TaskTypeApplication {
			actionName = TaskTypeApplication.Label()
		}
		operationDate := t.OperationDate
		if t.Action == ActionPending {
			operationDate = nil
		}
		taskViews = append(taskViews, TaskView{
			ID:            t.ID,
			Type:          t.Type,
			Action:        t.Action,
			ActionName:    actionName,
			Status:        t.Status,
			StatusName:    t.Status.Label(),
			Comment:       t.Comment,
			UserName:      names[t.OperationUserID],
			OperationDate: operationDate,
		})
	}

	isEdit := !q.AdminFlow && appTask.OperationUserID == actor.UserID &&
		(appTask.Action == ActionDraft || appTask.Action == ActionReject)
	ops := AvailableOperation{
		IsEdit:              isEdit,
		IsSave:              appTask.Action == ActionDraft,
		IsEditApprovalGroup: isEdit && appTask.Action != ActionReject,
		IsApproval:          targetTask != nil && targetTask.Action == ActionPending,
		IsDelete:            isEdit || (q.AdminFlow && appTask.Action != ActionComplete && appTask.Action != ActionCancel),
		IsCancel:            q.AdminFlow && appTask.Action == ActionComplete,
	}

	return &DetailResponse{
		Application:        view,
		ApprovalTasks:      taskViews,
		AvailableOperation: ops,
	}, nil
}

func (s *service) userNames(ctx context.Context, companyID int64) (map[int64]string, error) {
	users, err := s.users.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].FullName()
	}
	return names, nil
}

func (s *service) List(ctx context.Context, actor identity.Actor, q ListQuery) ([]ListItem, int64, error) {
	filter := ListFilter{
		CompanyID: actor.CompanyID,
		Year:      q.Year,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}

	// Only an admin browsing the management view may search other users.
	// Everyone else sees their own applications.
	if actor.IsAdmin && q.AdminFlow {
		filter.UserID = q.UserID
	} else {
		userID := actor.UserID
		filter.UserID = &userID
	}

	if q.Action != nil {
		filter.Actions = []TaskAction{*q.Action}
	} else if q.AdminFlow {
		filter.Actions = []TaskAction{ActionPending, ActionComplete, ActionReject, ActionCancel}
	}

	rows, total, err := s.queries.ListApplicationTasks(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	types, err := s.configs.GetApplicationTypes(ctx, actor.CompanyID, s.now())
	if err != nil {
		return nil, 0, err
	}

	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ListItem{
			ID:                 row.ApplicationID,
			ApplicationUserID:  row.ApplicationUserID,
			Type:               row.Type,
			TypeName:           types.TypeName(row.Type),
			Classification:     row.Classification,
			ClassificationName: types.ClassificationName(row.Type, row.Classification),
			ApplicationDate:    row.ApplicationDate,
			Action:             row.Action,
			ActionName:         row.Action.Label(),
			StartDate:          row.StartDate,
			EndDate:            row.EndDate,
			Comment:            row.Comment,
		})
	}
	return items, total, nil
}

func (s *service) ListMonth(ctx context.Context, actor identity.Actor, start, end time.Time) ([]MonthItem, error) {
	rows, err := s.queries.ListMonthTasks(ctx, actor.CompanyID, actor.UserID, start, end)
	if err != nil {
		return nil, err
	}

	types, err := s.configs.GetApplicationTypes(ctx, actor.CompanyID, s.now())
	if err != nil {
		return nil, err
	}

	items := make([]MonthItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, MonthItem{
			ID:                 row.ApplicationID,
			ApplicationUserID:  row.ApplicationUserID,
			Type:               row.Type,
			TypeName:           types.TypeName(row.Type),
			Classification:     row.Classification,
			ClassificationName: types.ClassificationName(row.Type, row.Classification),
			Action:             row.Action,
			ActionName:         row.Action.Label(),
			StartDate:          row.StartDate,
			EndDate:            row.EndDate,
		})
	}
	return items, nil
}

func (s *service) ListApprovals(ctx context.Context, actor identity.Actor, q ApprovalListQuery) ([]ApprovalListItem, int64, error) {
	filter := ApprovalListFilter{
		CompanyID:   actor.CompanyID,
		ApproverID:  actor.UserID,
		ApplicantID: q.ApplicantID,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
	if q.Action != nil {
		filter.Actions = []TaskAction{*q.Action}
	}

	rows, total, err := s.queries.ListApprovalTasks(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	names, err := s.userNames(ctx, actor.CompanyID)
	if err != nil {
		return nil, 0, err
	}
	types, err := s.configs.GetApplicationTypes(ctx, actor.CompanyID, s.now())
	if err != nil {
		return nil, 0, err
	}

	items := make([]ApprovalListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ApprovalListItem{
			TaskID:              row.TaskID,
			ApplicationID:       row.ApplicationID,
			ApplicationUserID:   row.ApplicationUserID,
			ApplicationUserName: names[row.ApplicationUserID],
			Type:                row.Type,
			TypeName:            types.TypeName(row.Type),
			Classification:      row.Classification,
			ClassificationName:  types.ClassificationName(row.Type, row.Classification),
			ApplicationDate:     row.ApplicationDate,
			Action:              row.Action,
			ActionName:          row.Action.Label(),
			StartDate:           row.StartDate,
			EndDate:             row.EndDate,
			Comment:             row.Comment,
		})
	}
	return items, total, nil
}

func (s *service) NotificationCounts(ctx context.Context, actor identity.Actor) (*NotificationSummary, error) {
	return s.queries.CountNotifications(ctx, actor.CompanyID, actor.UserID)
}

func (s *service) writeLifecycleEvent(ctx context.Context, tx *sql.Tx, eventType string, applicationID int64, actor identity.Actor, occurredAt time.Time) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.ApplicationLifecycleEvent{
		EventType:     eventType,
		ApplicationID: applicationID,
		CompanyID:     actor.CompanyID,
		UserID:        actor.UserID,
		OccurredAt:    occurredAt,
	})
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to encode lifecycle event", 500)
	}

	event := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "application",
		AggregateID:   strconv.FormatInt(applicationID, 10),
		EventType:     eventType,
		Topic:         events.ApplicationLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to write outbox event", 500)
	}
	return nil
}

// validateTimeRange enforces the classification rules for time-format
// application types. The elapsed window may include the one hour break,
// so a full day is exactly 9 hours.
func validateTimeRange(types sysconfig.ApplicationTypes, req SubmitRequest) error {
	elapsed := req.EndDate.Sub(req.StartDate)
	maxWorking := time.Duration(maxWorkingHours) * time.Hour
	if elapsed > maxWorking {
		return applicationerrors.ErrTotalTimeExceeded
	}

	const (
		noonHour        = 12
		shortHalfLength = 4
		longHalfLength  = 5
	)

	startHour := req.StartDate.Hour()
	endHour := req.EndDate.Hour()

	isAllDay := elapsed == maxWorking
	isMorningHalf := startHour < noonHour &&
		(startHour+shortHalfLength == endHour || startHour+longHalfLength == endHour)
	isAfternoonHalf := startHour >= noonHour && startHour+shortHalfLength == endHour

	switch req.Classification {
	case types.ClassificationCode(req.Type, sysconfig.ClassificationAllDays):
		if !isAllDay {
			return applicationerrors.ErrAllDayTimeRange
		}
	case types.ClassificationCode(req.Type, sysconfig.ClassificationHalfDaysAM):
		if !isMorningHalf {
			return applicationerrors.ErrMorningTimeRange
		}
	case types.ClassificationCode(req.Type, sysconfig.ClassificationHalfDaysPM):
		if !isAfternoonHalf {
			return applicationerrors.ErrAfternoonTimeRange
		}
	case types.ClassificationCode(req.Type, sysconfig.ClassificationTimeUnit):
		if isAllDay {
			return applicationerrors.ErrHourlyTimeRange
		}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}
