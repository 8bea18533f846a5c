package application_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/k-obata-3/leave-connect-api/internal/application"
	applicationerrors "github.com/k-obata-3/leave-connect-api/internal/application/errors"
	"github.com/k-obata-3/leave-connect-api/internal/identity"
	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
	"github.com/k-obata-3/leave-connect-api/internal/sysconfig"
	"github.com/k-obata-3/leave-connect-api/internal/user"
)

type fakeRepo struct {
	createApplicationFn        func(ctx context.Context, app *application.Application) (int64, error)
	getApplicationForUpdateFn  func(ctx context.Context, id, companyID int64) (*application.Application, error)
	updateApplicationFn        func(ctx context.Context, app *application.Application) error
	deleteApplicationFn        func(ctx context.Context, id int64) error
	createTaskFn               func(ctx context.Context, task *application.Task) (int64, error)
	updateTaskFn               func(ctx context.Context, task *application.Task) error
	getEditableTaskFn          func(ctx context.Context, applicationID int64) (*application.Task, error)
	getActiveTaskFn            func(ctx context.Context, applicationID, companyID int64) (*application.Task, error)
	getDeletableTaskFn         func(ctx context.Context, applicationID int64) (*application.Task, error)
	getCompleteTaskFn          func(ctx context.Context, applicationID int64) (*application.Task, error)
	listActiveApprovalTasksFn  func(ctx context.Context, applicationID int64) ([]application.Task, error)
	findDuplicateFn            func(ctx context.Context, companyID, userID, appType, classification int64, dayStart, dayEnd time.Time) (*application.Task, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) application.Repository { return f }

func (f *fakeRepo) CreateApplication(ctx context.Context, app *application.Application) (int64, error) {
	return f.createApplicationFn(ctx, app)
}

func (f *fakeRepo) GetApplicationForUpdate(ctx context.Context, id, companyID int64) (*application.Application, error) {
	return f.getApplicationForUpdateFn(ctx, id, companyID)
}

func (f *fakeRepo) UpdateApplication(ctx context.Context, app *application.Application) error {
	return f.updateApplicationFn(ctx, app)
}

func (f *fakeRepo) DeleteApplication(ctx context.Context, id int64) error {
	return f.deleteApplicationFn(ctx, id)
}

func (f *fakeRepo) CreateTask(ctx context.Context, task *application.Task) (int64, error) {
	return f.createTaskFn(ctx, task)
}

func (f *fakeRepo) UpdateTask(ctx context.Context, task *application.Task) error {
	return f.updateTaskFn(ctx, task)
}

func (f *fakeRepo) GetEditableApplicationTaskForUpdate(ctx context.Context, applicationID int64) (*application.Task, error) {
	return f.getEditableTaskFn(ctx, applicationID)
}

func (f *fakeRepo) GetActiveApplicationTaskForUpdate(ctx context.Context, applicationID, companyID int64) (*application.Task, error) {
	return f.getActiveTaskFn(ctx, applicationID, companyID)
}

func (f *fakeRepo) GetDeletableApplicationTaskForUpdate(ctx context.Context, applicationID int64) (*application.Task, error) {
	return f.getDeletableTaskFn(ctx, applicationID)
}

func (f *fakeRepo) GetCompleteApplicationTaskForUpdate(ctx context.Context, applicationID int64) (*application.Task, error) {
	return f.getCompleteTaskFn(ctx, applicationID)
}

func (f *fakeRepo) ListActiveApprovalTasksForUpdate(ctx context.Context, applicationID int64) ([]application.Task, error) {
	return f.listActiveApprovalTasksFn(ctx, applicationID)
}

func (f *fakeRepo) FindDuplicateApplicationTask(ctx context.Context, companyID, userID, appType, classification int64, dayStart, dayEnd time.Time) (*application.Task, error) {
	return f.findDuplicateFn(ctx, companyID, userID, appType, classification, dayStart, dayEnd)
}

type fakeUserRepo struct {
	findByIDsFn     func(ctx context.Context, companyID int64, ids []int64) ([]user.User, error)
	findByCompanyFn func(ctx context.Context, companyID int64) ([]user.User, error)
}

func (f *fakeUserRepo) FindByIDs(ctx context.Context, companyID int64, ids []int64) ([]user.User, error) {
	return f.findByIDsFn(ctx, companyID, ids)
}

func (f *fakeUserRepo) FindByCompany(ctx context.Context, companyID int64) ([]user.User, error) {
	return f.findByCompanyFn(ctx, companyID)
}

type fakeConfigService struct {
	getApprovalGroupFn func(ctx context.Context, companyID, groupID int64) (*sysconfig.ApprovalGroup, error)
	applicationTypes   sysconfig.ApplicationTypes
}

func (f *fakeConfigService) GetApprovalGroup(ctx context.Context, companyID, groupID int64) (*sysconfig.ApprovalGroup, error) {
	return f.getApprovalGroupFn(ctx, companyID, groupID)
}

func (f *fakeConfigService) ListApprovalGroups(ctx context.Context, companyID int64) ([]sysconfig.ApprovalGroup, error) {
	return nil, nil
}

func (f *fakeConfigService) GetApplicationTypes(ctx context.Context, companyID int64, asOf time.Time) (sysconfig.ApplicationTypes, error) {
	return f.applicationTypes, nil
}

func (f *fakeConfigService) GetApplicationType(ctx context.Context, companyID, typeCode int64, asOf time.Time) (*sysconfig.ApplicationType, error) {
	for i := range f.applicationTypes {
		if f.applicationTypes[i].Code == typeCode {
			return &f.applicationTypes[i], nil
		}
	}
	return nil, apperror.ErrNotFound
}

type fakeQueries struct {
	findApplicationFn        func(ctx context.Context, id, companyID int64) (*application.Application, error)
	listTasksByApplicationFn func(ctx context.Context, applicationID, companyID int64) ([]application.Task, error)
	getTaskForUserFn         func(ctx context.Context, taskID, applicationID, userID int64) (*application.Task, error)
	listApplicationTasksFn   func(ctx context.Context, f application.ListFilter) ([]application.TaskApplicationRow, int64, error)
	listMonthTasksFn         func(ctx context.Context, companyID, userID int64, start, end time.Time) ([]application.TaskApplicationRow, error)
	listApprovalTasksFn      func(ctx context.Context, f application.ApprovalListFilter) ([]application.TaskApplicationRow, int64, error)
	countNotificationsFn     func(ctx context.Context, companyID, userID int64) (*application.NotificationSummary, error)
}

func (f *fakeQueries) FindApplication(ctx context.Context, id, companyID int64) (*application.Application, error) {
	return f.findApplicationFn(ctx, id, companyID)
}

func (f *fakeQueries) ListTasksByApplication(ctx context.Context, applicationID, companyID int64) ([]application.Task, error) {
	return f.listTasksByApplicationFn(ctx, applicationID, companyID)
}

func (f *fakeQueries) GetTaskForUser(ctx context.Context, taskID, applicationID, userID int64) (*application.Task, error) {
	return f.getTaskForUserFn(ctx, taskID, applicationID, userID)
}

func (f *fakeQueries) ListApplicationTasks(ctx context.Context, filter application.ListFilter) ([]application.TaskApplicationRow, int64, error) {
	return f.listApplicationTasksFn(ctx, filter)
}

func (f *fakeQueries) ListMonthTasks(ctx context.Context, companyID, userID int64, start, end time.Time) ([]application.TaskApplicationRow, error) {
	return f.listMonthTasksFn(ctx, companyID, userID, start, end)
}

func (f *fakeQueries) ListApprovalTasks(ctx context.Context, filter application.ApprovalListFilter) ([]application.TaskApplicationRow, int64, error) {
	return f.listApprovalTasksFn(ctx, filter)
}

func (f *fakeQueries) CountNotifications(ctx context.Context, companyID, userID int64) (*application.NotificationSummary, error) {
	return f.countNotificationsFn(ctx, companyID, userID)
}

type fakeLedger struct {
	creditFn func(ctx context.Context, tx *sql.Tx, companyID, userID, totalTime int64) error
	debitFn  func(ctx context.Context, tx *sql.Tx, companyID, userID, totalTime int64) error
}

func (f *fakeLedger) Credit(ctx context.Context, tx *sql.Tx, companyID, userID, totalTime int64) error {
	if f.creditFn == nil {
		return nil
	}
	return f.creditFn(ctx, tx, companyID, userID, totalTime)
}

func (f *fakeLedger) Debit(ctx context.Context, tx *sql.Tx, companyID, userID, totalTime int64) error {
	if f.debitFn == nil {
		return nil
	}
	return f.debitFn(ctx, tx, companyID, userID, totalTime)
}

const paidHolidayType int64 = 0

func paidHolidayTypes() sysconfig.ApplicationTypes {
	return sysconfig.ApplicationTypes{
		{
			Code:   paidHolidayType,
			Name:   "Paid Holiday",
			Format: sysconfig.FormatTime,
			Classifications: []sysconfig.Classification{
				{Key: sysconfig.ClassificationAllDays, Code: 0, Name: "All day"},
				{Key: sysconfig.ClassificationHalfDaysAM, Code: 1, Name: "Morning"},
				{Key: sysconfig.ClassificationHalfDaysPM, Code: 2, Name: "Afternoon"},
				{Key: sysconfig.ClassificationTimeUnit, Code: 3, Name: "Hourly"},
			},
		},
		{
			Code:   1,
			Name:   "Compensatory Leave",
			Format: sysconfig.FormatDay,
		},
	}
}

type serviceFixture struct {
	db      *sql.DB
	mock    sqlmock.Sqlmock
	repo    *fakeRepo
	queries *fakeQueries
	users   *fakeUserRepo
	configs *fakeConfigService
	ledger  *fakeLedger
	service application.Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := &fakeRepo{
		findDuplicateFn: func(ctx context.Context, companyID, userID, appType, classification int64, dayStart, dayEnd time.Time) (*application.Task, error) {
			return nil, nil
		},
		getEditableTaskFn: func(ctx context.Context, applicationID int64) (*application.Task, error) {
			return nil, nil
		},
	}
	users := &fakeUserRepo{
		findByIDsFn: func(ctx context.Context, companyID int64, ids []int64) ([]user.User, error) {
			result := make([]user.User, 0, len(ids))
			for _, id := range ids {
				result = append(result, user.User{ID: id, CompanyID: companyID, Status: user.StatusActive})
			}
			return result, nil
		},
		findByCompanyFn: func(ctx context.Context, companyID int64) ([]user.User, error) {
			return []user.User{
				{ID: 2, CompanyID: companyID, LastName: "Sato", FirstName: "Ken", Status: user.StatusActive},
				{ID: 10, CompanyID: companyID, LastName: "Suzuki", FirstName: "Aoi", Status: user.StatusActive},
				{ID: 11, CompanyID: companyID, LastName: "Ito", FirstName: "Rin", Status: user.StatusActive},
			}, nil
		},
	}
	configs := &fakeConfigService{
		applicationTypes: paidHolidayTypes(),
		getApprovalGroupFn: func(ctx context.Context, companyID, groupID int64) (*sysconfig.ApprovalGroup, error) {
			return &sysconfig.ApprovalGroup{ID: groupID, Name: "Engineering", ApproverIDs: []int64{10, 11}}, nil
		},
	}
	ledger := &fakeLedger{}
	queries := &fakeQueries{}

	svc := application.NewService(db, repo, queries, users, configs, ledger, paidHolidayType)

	return &serviceFixture{
		db:      db,
		mock:    mock,
		repo:    repo,
		queries: queries,
		users:   users,
		configs: configs,
		ledger:  ledger,
		service: svc,
	}
}

func requester() identity.Actor {
	return identity.Actor{UserID: 2, CompanyID: 1}
}

func fullDaySubmit() application.SubmitRequest {
	return application.SubmitRequest{
		Type:            paidHolidayType,
		Classification:  0,
		StartDate:       time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC),
		TotalTime:       8,
		ApprovalGroupID: 5,
		Comment:         "family trip",
		Action:          application.ActionPending,
	}
}

func TestSubmit(t *testing.T) {
	t.Run("success pending submission fans out approval tasks", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		var createdApp *application.Application
		var createdTasks []application.Task
		f.repo.createApplicationFn = func(ctx context.Context, app *application.Application) (int64, error) {
			createdApp = app
			return 100, nil
		}
		f.repo.createTaskFn = func(ctx context.Context, task *application.Task) (int64, error) {
			createdTasks = append(createdTasks, *task)
			return int64(len(createdTasks)), nil
		}

		id, err := f.service.Submit(context.Background(), requester(), fullDaySubmit())

		assert.NoError(t, err)
		assert.Equal(t, int64(100), id)
		assert.NotNil(t, createdApp)
		assert.Equal(t, int64(1), createdApp.CompanyID)
		assert.Equal(t, int64(2), createdApp.UserID)

		// One application task plus one approval task per group member.
		assert.Len(t, createdTasks, 3)
		assert.Equal(t, application.TaskTypeApplication, createdTasks[0].Type)
		assert.Equal(t, application.ActionPending, createdTasks[0].Action)
		assert.Equal(t, application.StatusActive, createdTasks[0].Status)
		for _, task := range createdTasks[1:] {
			assert.Equal(t, application.TaskTypeApproval, task.Type)
			assert.Equal(t, application.ActionPending, task.Action)
			assert.Equal(t, application.StatusActive, task.Status)
		}
		assert.Equal(t, int64(10), createdTasks[1].OperationUserID)
		assert.Equal(t, int64(11), createdTasks[2].OperationUserID)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("success fan out skips the requester", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		f.configs.getApprovalGroupFn = func(ctx context.Context, companyID, groupID int64) (*sysconfig.ApprovalGroup, error) {
			return &sysconfig.ApprovalGroup{ID: groupID, Name: "Engineering", ApproverIDs: []int64{2, 10}}, nil
		}

		var approvalOperators []int64
		f.repo.createApplicationFn = func(ctx context.Context, app *application.Application) (int64, error) {
			return 100, nil
		}
		f.repo.createTaskFn = func(ctx context.Context, task *application.Task) (int64, error) {
			if task.Type == application.TaskTypeApproval {
				approvalOperators = append(approvalOperators, task.OperationUserID)
			}
			return 1, nil
		}

		_, err := f.service.Submit(context.Background(), requester(), fullDaySubmit())

		assert.NoError(t, err)
		assert.Equal(t, []int64{10}, approvalOperators)
	})

	t.Run("success draft save creates no approval tasks", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		var createdTasks []application.Task
		f.repo.createApplicationFn = func(ctx context.Context, app *application.Application) (int64, error) {
			return 100, nil
		}
		f.repo.createTaskFn = func(ctx context.Context, task *application.Task) (int64, error) {
			createdTasks = append(createdTasks, *task)
			return 1, nil
		}

		req := fullDaySubmit()
		req.Action = application.ActionDraft
		_, err := f.service.Submit(context.Background(), requester(), req)

		assert.NoError(t, err)
		assert.Len(t, createdTasks, 1)
		assert.Equal(t, application.ActionDraft, createdTasks[0].Action)
	})

	t.Run("success draft re-save keeps application date", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		originalDate := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
		appID := int64(100)
		var savedApp *application.Application
		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 2, ApplicationDate: originalDate}, nil
		}
		f.repo.updateApplicationFn = func(ctx context.Context, app *application.Application) error {
			savedApp = app
			return nil
		}
		f.repo.getEditableTaskFn = func(ctx context.Context, applicationID int64) (*application.Task, error) {
			return &application.Task{ID: 1, ApplicationID: applicationID, Type: application.TaskTypeApplication,
				Action: application.ActionDraft, Status: application.StatusActive, OperationUserID: 2}, nil
		}
		f.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error { return nil }

		req := fullDaySubmit()
		req.ID = &appID
		req.Action = application.ActionDraft
		_, err := f.service.Submit(context.Background(), requester(), req)

		assert.NoError(t, err)
		assert.True(t, savedApp.ApplicationDate.Equal(originalDate))
	})

	t.Run("success resubmission retires the rejected generation", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		appID := int64(100)
		rejectedTask := &application.Task{ID: 1, ApplicationID: appID, Type: application.TaskTypeApplication,
			Action: application.ActionReject, Status: application.StatusActive, OperationUserID: 2}
		oldApproval := application.Task{ID: 2, ApplicationID: appID, Type: application.TaskTypeApproval,
			Action: application.ActionReject, Status: application.StatusActive, OperationUserID: 10}

		var updatedTasks []application.Task
		var createdTasks []application.Task
		var savedApp *application.Application
		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 2,
				ApplicationDate: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}, nil
		}
		f.repo.updateApplicationFn = func(ctx context.Context, app *application.Application) error {
			savedApp = app
			return nil
		}
		f.repo.getEditableTaskFn = func(ctx context.Context, applicationID int64) (*application.Task, error) {
			return rejectedTask, nil
		}
		f.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error {
			updatedTasks = append(updatedTasks, *task)
			return nil
		}
		f.repo.createTaskFn = func(ctx context.Context, task *application.Task) (int64, error) {
			createdTasks = append(createdTasks, *task)
			return 3, nil
		}
		f.repo.listActiveApprovalTasksFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return []application.Task{oldApproval}, nil
		}

		req := fullDaySubmit()
		req.ID = &appID
		_, err := f.service.Submit(context.Background(), requester(), req)

		assert.NoError(t, err)
		// Submission stamps a fresh application date.
		assert.False(t, savedApp.ApplicationDate.Equal(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)))

		// New generation: fresh PENDING application task + approval tasks.
		assert.Equal(t, application.TaskTypeApplication, createdTasks[0].Type)
		assert.Equal(t, application.ActionPending, createdTasks[0].Action)

		// Old generation moved to HISTORY, action untouched.
		var historyCount int
		for _, task := range updatedTasks {
			if task.Status == application.StatusHistory {
				historyCount++
				assert.Equal(t, application.ActionReject, task.Action)
			}
		}
		assert.Equal(t, 2, historyCount)
	})

	t.Run("negative duplicate application on the same day", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		f.repo.findDuplicateFn = func(ctx context.Context, companyID, userID, appType, classification int64, dayStart, dayEnd time.Time) (*application.Task, error) {
			return &application.Task{ID: 9, ApplicationID: 999}, nil
		}

		_, err := f.service.Submit(context.Background(), requester(), fullDaySubmit())

		assert.ErrorIs(t, err, applicationerrors.ErrDuplicateApplication)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("success editing the duplicate hit itself", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		appID := int64(999)
		f.repo.findDuplicateFn = func(ctx context.Context, companyID, userID, appType, classification int64, dayStart, dayEnd time.Time) (*application.Task, error) {
			return &application.Task{ID: 9, ApplicationID: appID}, nil
		}
		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 2}, nil
		}
		f.repo.updateApplicationFn = func(ctx context.Context, app *application.Application) error { return nil }
		f.repo.getEditableTaskFn = func(ctx context.Context, applicationID int64) (*application.Task, error) {
			return &application.Task{ID: 1, Type: application.TaskTypeApplication,
				Action: application.ActionDraft, Status: application.StatusActive}, nil
		}
		f.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error { return nil }
		f.repo.createTaskFn = func(ctx context.Context, task *application.Task) (int64, error) { return 1, nil }

		req := fullDaySubmit()
		req.ID = &appID
		_, err := f.service.Submit(context.Background(), requester(), req)

		assert.NoError(t, err)
	})

	t.Run("negative time range exceeds a working day", func(t *testing.T) {
		f := newServiceFixture(t)

		req := fullDaySubmit()
		req.EndDate = req.StartDate.Add(10 * time.Hour)
		_, err := f.service.Submit(context.Background(), requester(), req)

		assert.ErrorIs(t, err, applicationerrors.ErrTotalTimeExceeded)
	})

	t.Run("negative all day classification needs the full window", func(t *testing.T) {
		f := newServiceFixture(t)

		req := fullDaySubmit()
		req.EndDate = req.StartDate.Add(8 * time.Hour)
		_, err := f.service.Submit(context.Background(), requester(), req)

		assert.ErrorIs(t, err, applicationerrors.ErrAllDayTimeRange)
	})

	t.Run("negative morning half day window", func(t *testing.T) {
		f := newServiceFixture(t)

		req := fullDaySubmit()
		req.Classification = 1
		req.StartDate = time.Date(2025, 6, 10, 13, 0, 0, 0, time.UTC)
		req.EndDate = time.Date(2025, 6, 10, 17, 0, 0, 0, time.UTC)
		_, err := f.service.Submit(context.Background(), requester(), req)

		assert.ErrorIs(t, err, applicationerrors.ErrMorningTimeRange)
	})

	t.Run("negative hourly classification must not span the full day", func(t *testing.T) {
		f := newServiceFixture(t)

		req := fullDaySubmit()
		req.Classification = 3
		_, err := f.service.Submit(context.Background(), requester(), req)

		assert.ErrorIs(t, err, applicationerrors.ErrHourlyTimeRange)
	})

	t.Run("success day format skips time validation", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		f.repo.createApplicationFn = func(ctx context.Context, app *application.Application) (int64, error) {
			return 100, nil
		}
		f.repo.createTaskFn = func(ctx context.Context, task *application.Task) (int64, error) { return 1, nil }

		req := fullDaySubmit()
		req.Type = 1
		req.EndDate = req.StartDate.Add(48 * time.Hour)
		_, err := f.service.Submit(context.Background(), requester(), req)

		assert.NoError(t, err)
	})

	t.Run("negative unknown application type", func(t *testing.T) {
		f := newServiceFixture(t)

		req := fullDaySubmit()
		req.Type = 42
		_, err := f.service.Submit(context.Background(), requester(), req)

		assert.ErrorIs(t, err, applicationerrors.ErrUnknownApplicationType)
	})

	t.Run("negative editing someone else's application", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		appID := int64(100)
		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 77}, nil
		}

		req := fullDaySubmit()
		req.ID = &appID
		_, err := f.service.Submit(context.Background(), requester(), req)

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("success records the actor in the audit columns", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		var createdApp *application.Application
		var createdTasks []application.Task
		f.repo.createApplicationFn = func(ctx context.Context, app *application.Application) (int64, error) {
			createdApp = app
			return 100, nil
		}
		f.repo.createTaskFn = func(ctx context.Context, task *application.Task) (int64, error) {
			createdTasks = append(createdTasks, *task)
			return int64(len(createdTasks)), nil
		}

		_, err := f.service.Submit(context.Background(), requester(), fullDaySubmit())

		assert.NoError(t, err)
		assert.Equal(t, int64(2), createdApp.CreatedBy)
		assert.Equal(t, int64(2), createdApp.UpdatedBy)
		// Approval tasks belong to the approvers yet are created by the
		// requester.
		for _, task := range createdTasks {
			assert.Equal(t, int64(2), task.CreatedBy)
			assert.Equal(t, int64(2), task.UpdatedBy)
		}
	})

	t.Run("negative editing an application already under approval", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		appID := int64(100)
		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 2}, nil
		}
		f.repo.updateApplicationFn = func(ctx context.Context, app *application.Application) error { return nil }
		// The requester's task is PENDING, so the editable lookup finds
		// nothing. A fresh task here would mean two ACTIVE ones.
		f.repo.getEditableTaskFn = func(ctx context.Context, applicationID int64) (*application.Task, error) {
			return nil, nil
		}
		f.repo.createTaskFn = func(ctx context.Context, task *application.Task) (int64, error) {
			t.Fatal("no task may be created for a non-editable application")
			return 0, nil
		}

		req := fullDaySubmit()
		req.ID = &appID
		_, err := f.service.Submit(context.Background(), requester(), req)

		assert.ErrorIs(t, err, applicationerrors.ErrNotEditable)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func approver(id int64) identity.Actor {
	return identity.Actor{UserID: id, CompanyID: 1}
}

func activeApplicationTask(appID int64) *application.Task {
	return &application.Task{ID: 1, CompanyID: 1, ApplicationID: appID, Type: application.TaskTypeApplication,
		Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 2}
}

func TestApprove(t *testing.T) {
	appID := int64(100)

	t.Run("success non-final approval updates only the actor's task", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		f.repo.getActiveTaskFn = func(ctx context.Context, applicationID, companyID int64) (*application.Task, error) {
			return activeApplicationTask(appID), nil
		}
		f.repo.listActiveApprovalTasksFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return []application.Task{
				{ID: 10, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 10},
				{ID: 11, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 11},
			}, nil
		}

		var updatedTasks []application.Task
		f.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error {
			updatedTasks = append(updatedTasks, *task)
			return nil
		}

		err := f.service.Approve(context.Background(), approver(10), application.ApproveRequest{
			ApplicationID: appID, TaskID: 10, Comment: "ok", Action: application.ActionApproval,
		})

		assert.NoError(t, err)
		assert.Len(t, updatedTasks, 1)
		assert.Equal(t, int64(10), updatedTasks[0].ID)
		assert.Equal(t, application.ActionApproval, updatedTasks[0].Action)
		assert.Equal(t, application.StatusActive, updatedTasks[0].Status)
	})

	t.Run("success final approval completes and credits the ledger", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		f.repo.getActiveTaskFn = func(ctx context.Context, applicationID, companyID int64) (*application.Task, error) {
			return activeApplicationTask(appID), nil
		}
		f.repo.listActiveApprovalTasksFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return []application.Task{
				{ID: 10, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionApproval, Status: application.StatusActive, OperationUserID: 10},
				{ID: 11, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 11},
			}, nil
		}
		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 2, Type: paidHolidayType, TotalTime: 8}, nil
		}

		updated := map[int64]application.Task{}
		f.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error {
			updated[task.ID] = *task
			return nil
		}

		var credited int64
		f.ledger.creditFn = func(ctx context.Context, tx *sql.Tx, companyID, userID, totalTime int64) error {
			credited = totalTime
			assert.Equal(t, int64(2), userID)
			return nil
		}

		err := f.service.Approve(context.Background(), approver(11), application.ApproveRequest{
			ApplicationID: appID, TaskID: 11, Comment: "lgtm", Action: application.ActionApproval,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(8), credited)

		assert.Equal(t, application.ActionComplete, updated[1].Action)
		assert.Equal(t, application.StatusClosed, updated[1].Status)
		assert.Equal(t, application.ActionApproval, updated[11].Action)
		assert.Equal(t, application.StatusClosed, updated[11].Status)
		assert.Equal(t, "lgtm", updated[11].Comment)
		assert.Equal(t, application.StatusClosed, updated[10].Status)

		// Every task touched by the completion is attributed to the final
		// approver, the requester's application task included.
		for id, task := range updated {
			assert.Equal(t, int64(11), task.UpdatedBy, "task %d", id)
		}
	})

	t.Run("success inactive approver is excluded and system cancelled", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		f.users.findByIDsFn = func(ctx context.Context, companyID int64, ids []int64) ([]user.User, error) {
			result := make([]user.User, 0, len(ids))
			for _, id := range ids {
				status := user.StatusActive
				if id == 11 {
					status = user.StatusInactive
				}
				result = append(result, user.User{ID: id, CompanyID: companyID, Status: status})
			}
			return result, nil
		}
		f.repo.getActiveTaskFn = func(ctx context.Context, applicationID, companyID int64) (*application.Task, error) {
			return activeApplicationTask(appID), nil
		}
		f.repo.listActiveApprovalTasksFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return []application.Task{
				{ID: 10, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 10},
				{ID: 11, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 11},
			}, nil
		}
		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 2, Type: 1, TotalTime: 8}, nil
		}

		updated := map[int64]application.Task{}
		f.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error {
			updated[task.ID] = *task
			return nil
		}

		// Approver 11 is deactivated, so 10's lone approval completes the
		// application even though 11 never acted.
		err := f.service.Approve(context.Background(), approver(10), application.ApproveRequest{
			ApplicationID: appID, TaskID: 10, Comment: "ok", Action: application.ActionApproval,
		})

		assert.NoError(t, err)
		assert.Equal(t, application.ActionComplete, updated[1].Action)
		assert.Equal(t, application.ActionSystemCancel, updated[11].Action)
		assert.Equal(t, application.StatusNonActive, updated[11].Status)
	})

	t.Run("negative insufficient balance aborts the whole approval", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		f.repo.getActiveTaskFn = func(ctx context.Context, applicationID, companyID int64) (*application.Task, error) {
			return activeApplicationTask(appID), nil
		}
		f.repo.listActiveApprovalTasksFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return []application.Task{
				{ID: 10, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 10},
			}, nil
		}
		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 2, Type: paidHolidayType, TotalTime: 8}, nil
		}
		f.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error { return nil }

		exceeded := apperror.New(apperror.CodeInvalidState, "remaining leave balance exceeded", 409)
		f.ledger.creditFn = func(ctx context.Context, tx *sql.Tx, companyID, userID, totalTime int64) error {
			return exceeded
		}

		err := f.service.Approve(context.Background(), approver(10), application.ApproveRequest{
			ApplicationID: appID, TaskID: 10, Comment: "ok", Action: application.ActionApproval,
		})

		assert.ErrorIs(t, err, exceeded)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("success rejection returns the application and cancels the rest", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		f.repo.getActiveTaskFn = func(ctx context.Context, applicationID, companyID int64) (*application.Task, error) {
			return activeApplicationTask(appID), nil
		}
		f.repo.listActiveApprovalTasksFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return []application.Task{
				{ID: 10, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 10},
				{ID: 11, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 11},
				{ID: 12, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionApproval, Status: application.StatusActive, OperationUserID: 12},
			}, nil
		}

		updated := map[int64]application.Task{}
		f.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error {
			updated[task.ID] = *task
			return nil
		}

		err := f.service.Approve(context.Background(), approver(10), application.ApproveRequest{
			ApplicationID: appID, TaskID: 10, Comment: "needs detail", Action: application.ActionReject,
		})

		assert.NoError(t, err)

		assert.Equal(t, application.ActionReject, updated[10].Action)
		assert.Equal(t, "needs detail", updated[10].Comment)

		// Application task handed back, still ACTIVE.
		assert.Equal(t, application.ActionReject, updated[1].Action)
		assert.Equal(t, application.StatusActive, updated[1].Status)

		// Pending sibling system-cancelled, already-approved one untouched.
		assert.Equal(t, application.ActionSystemCancel, updated[11].Action)
		assert.Equal(t, application.StatusNonActive, updated[11].Status)
		_, touched := updated[12]
		assert.False(t, touched)
	})

	t.Run("negative acting on someone else's task", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		f.repo.getActiveTaskFn = func(ctx context.Context, applicationID, companyID int64) (*application.Task, error) {
			return activeApplicationTask(appID), nil
		}
		f.repo.listActiveApprovalTasksFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return []application.Task{
				{ID: 10, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 10},
			}, nil
		}

		err := f.service.Approve(context.Background(), approver(99), application.ApproveRequest{
			ApplicationID: appID, TaskID: 10, Comment: "ok", Action: application.ActionApproval,
		})

		assert.ErrorIs(t, err, applicationerrors.ErrApprovalTaskNotFound)
	})

	t.Run("negative task already processed", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		f.repo.getActiveTaskFn = func(ctx context.Context, applicationID, companyID int64) (*application.Task, error) {
			return activeApplicationTask(appID), nil
		}
		f.repo.listActiveApprovalTasksFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return []application.Task{
				{ID: 10, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionApproval, Status: application.StatusActive, OperationUserID: 10},
				{ID: 11, ApplicationID: appID, Type: application.TaskTypeApproval, Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 11},
			}, nil
		}

		err := f.service.Approve(context.Background(), approver(10), application.ApproveRequest{
			ApplicationID: appID, TaskID: 10, Comment: "again", Action: application.ActionApproval,
		})

		assert.ErrorIs(t, err, applicationerrors.ErrTaskAlreadyProcessed)
	})

	t.Run("negative no active application task", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		f.repo.getActiveTaskFn = func(ctx context.Context, applicationID, companyID int64) (*application.Task, error) {
			return nil, nil
		}

		err := f.service.Approve(context.Background(), approver(10), application.ApproveRequest{
			ApplicationID: appID, TaskID: 10, Comment: "ok", Action: application.ActionApproval,
		})

		assert.ErrorIs(t, err, applicationerrors.ErrApplicationTaskNotFound)
	})

	t.Run("negative unsupported action", func(t *testing.T) {
		f := newServiceFixture(t)

		err := f.service.Approve(context.Background(), approver(10), application.ApproveRequest{
			ApplicationID: appID, TaskID: 10, Comment: "ok", Action: application.ActionCancel,
		})

		assert.ErrorIs(t, err, applicationerrors.ErrInvalidAction)
	})
}

func TestDelete(t *testing.T) {
	appID := int64(100)

	t.Run("success", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 2}, nil
		}
		f.repo.getDeletableTaskFn = func(ctx context.Context, applicationID int64) (*application.Task, error) {
			return &application.Task{ID: 1, ApplicationID: applicationID, Action: application.ActionDraft, Status: application.StatusActive}, nil
		}
		deleted := false
		f.repo.deleteApplicationFn = func(ctx context.Context, id int64) error {
			deleted = true
			return nil
		}

		err := f.service.Delete(context.Background(), requester(), appID)

		assert.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("negative completed application cannot be deleted", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 2}, nil
		}
		f.repo.getDeletableTaskFn = func(ctx context.Context, applicationID int64) (*application.Task, error) {
			return nil, nil
		}

		err := f.service.Delete(context.Background(), requester(), appID)

		assert.ErrorIs(t, err, applicationerrors.ErrNotDeletable)
	})

	t.Run("negative deleting someone else's application", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 77}, nil
		}

		err := f.service.Delete(context.Background(), requester(), appID)

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestCancel(t *testing.T) {
	appID := int64(100)
	admin := identity.Actor{UserID: 50, CompanyID: 1, IsAdmin: true}

	t.Run("success cancel debits the ledger and records who cancelled", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 2, Type: paidHolidayType, TotalTime: 8}, nil
		}
		completedAt := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)
		f.repo.getCompleteTaskFn = func(ctx context.Context, applicationID int64) (*application.Task, error) {
			return &application.Task{ID: 1, ApplicationID: applicationID, Type: application.TaskTypeApplication,
				Action: application.ActionComplete, Status: application.StatusClosed, OperationUserID: 2,
				OperationDate: &completedAt}, nil
		}

		var updatedTask *application.Task
		f.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error {
			updatedTask = task
			return nil
		}
		var cancelTask *application.Task
		f.repo.createTaskFn = func(ctx context.Context, task *application.Task) (int64, error) {
			cancelTask = task
			return 2, nil
		}
		var debited int64
		f.ledger.debitFn = func(ctx context.Context, tx *sql.Tx, companyID, userID, totalTime int64) error {
			debited = totalTime
			assert.Equal(t, int64(2), userID)
			return nil
		}

		err := f.service.Cancel(context.Background(), admin, appID, "entered by mistake")

		assert.NoError(t, err)
		assert.Equal(t, int64(8), debited)

		assert.Equal(t, application.ActionCancel, updatedTask.Action)
		assert.Equal(t, application.StatusClosed, updatedTask.Status)
		assert.Equal(t, int64(50), updatedTask.UpdatedBy)
		// The completion timestamp survives the cancel; only the appended
		// cancel task carries the cancel time.
		assert.True(t, updatedTask.OperationDate.Equal(completedAt))

		assert.Equal(t, application.TaskTypeApproval, cancelTask.Type)
		assert.Equal(t, application.ActionCancel, cancelTask.Action)
		assert.Equal(t, application.StatusClosed, cancelTask.Status)
		assert.Equal(t, int64(50), cancelTask.OperationUserID)
		assert.Equal(t, "entered by mistake", cancelTask.Comment)
		assert.Equal(t, int64(50), cancelTask.CreatedBy)
	})

	t.Run("success other leave types leave the ledger untouched", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 2, Type: 1, TotalTime: 8}, nil
		}
		f.repo.getCompleteTaskFn = func(ctx context.Context, applicationID int64) (*application.Task, error) {
			return &application.Task{ID: 1, ApplicationID: applicationID, Action: application.ActionComplete, Status: application.StatusClosed}, nil
		}
		f.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error { return nil }
		f.repo.createTaskFn = func(ctx context.Context, task *application.Task) (int64, error) { return 2, nil }
		f.ledger.debitFn = func(ctx context.Context, tx *sql.Tx, companyID, userID, totalTime int64) error {
			t.Fatal("ledger must not be touched for non paid-holiday types")
			return nil
		}

		err := f.service.Cancel(context.Background(), admin, appID, "schedule changed")

		assert.NoError(t, err)
	})

	t.Run("negative only completed applications can be cancelled", func(t *testing.T) {
		f := newServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		f.repo.getApplicationForUpdateFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: id, CompanyID: companyID, UserID: 2}, nil
		}
		f.repo.getCompleteTaskFn = func(ctx context.Context, applicationID int64) (*application.Task, error) {
			return nil, nil
		}

		err := f.service.Cancel(context.Background(), admin, appID, "oops")

		assert.ErrorIs(t, err, applicationerrors.ErrNotCancellable)
	})

	t.Run("negative non-admin cannot cancel", func(t *testing.T) {
		f := newServiceFixture(t)

		err := f.service.Cancel(context.Background(), requester(), appID, "oops")

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func detailFixture(f *serviceFixture, appTask application.Task, extra ...application.Task) {
	f.queries.findApplicationFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
		return &application.Application{
			ID: id, CompanyID: companyID, UserID: 2, Type: paidHolidayType, Classification: 0,
			StartDate: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC),
			TotalTime: 8, ApprovalGroupID: 5,
		}, nil
	}
	f.queries.listTasksByApplicationFn = func(ctx context.Context, applicationID, companyID int64) ([]application.Task, error) {
		return append([]application.Task{appTask}, extra...), nil
	}
}

func TestGetDetail(t *testing.T) {
	appID := int64(100)

	t.Run("success requester sees edit flags on a draft", func(t *testing.T) {
		f := newServiceFixture(t)
		detailFixture(f, application.Task{
			ID: 1, ApplicationID: appID, Type: application.TaskTypeApplication,
			Action: application.ActionDraft, Status: application.StatusActive, OperationUserID: 2,
		})

		detail, err := f.service.GetDetail(context.Background(), requester(), application.DetailQuery{ApplicationID: appID})

		assert.NoError(t, err)
		assert.Equal(t, "Paid Holiday", detail.Application.TypeName)
		assert.Equal(t, "All day", detail.Application.ClassificationName)
		assert.Equal(t, "Sato Ken", detail.Application.ApplicationUserName)
		assert.Equal(t, "Engineering", detail.Application.ApprovalGroupName)
		assert.Len(t, detail.Application.Approvers, 2)

		ops := detail.AvailableOperation
		assert.True(t, ops.IsEdit)
		assert.True(t, ops.IsSave)
		assert.True(t, ops.IsEditApprovalGroup)
		assert.True(t, ops.IsDelete)
		assert.False(t, ops.IsApproval)
		assert.False(t, ops.IsCancel)
	})

	t.Run("success rejected application is editable but the group is locked", func(t *testing.T) {
		f := newServiceFixture(t)
		detailFixture(f, application.Task{
			ID: 1, ApplicationID: appID, Type: application.TaskTypeApplication,
			Action: application.ActionReject, Status: application.StatusActive, OperationUserID: 2,
		})

		detail, err := f.service.GetDetail(context.Background(), requester(), application.DetailQuery{ApplicationID: appID})

		assert.NoError(t, err)
		ops := detail.AvailableOperation
		assert.True(t, ops.IsEdit)
		assert.False(t, ops.IsSave)
		assert.False(t, ops.IsEditApprovalGroup)
		assert.True(t, ops.IsDelete)
	})

	t.Run("success approver with a pending task can approve", func(t *testing.T) {
		f := newServiceFixture(t)
		taskID := int64(10)
		detailFixture(f,
			application.Task{ID: 1, ApplicationID: appID, Type: application.TaskTypeApplication,
				Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 2},
			application.Task{ID: taskID, ApplicationID: appID, Type: application.TaskTypeApproval,
				Action: application.ActionPending, Status: application.StatusActive, OperationUserID: 10},
		)
		f.queries.getTaskForUserFn = func(ctx context.Context, tid, aid, uid int64) (*application.Task, error) {
			return &application.Task{ID: tid, ApplicationID: aid, Type: application.TaskTypeApproval,
				Action: application.ActionPending, Status: application.StatusActive, OperationUserID: uid}, nil
		}

		detail, err := f.service.GetDetail(context.Background(), approver(10), application.DetailQuery{
			ApplicationID: appID, TaskID: &taskID,
		})

		assert.NoError(t, err)
		assert.True(t, detail.AvailableOperation.IsApproval)
		assert.False(t, detail.AvailableOperation.IsEdit)
		assert.Len(t, detail.ApprovalTasks, 1)
		assert.Equal(t, "Suzuki Aoi", detail.ApprovalTasks[0].UserName)
		// Pending tasks show no operation date yet.
		assert.Nil(t, detail.ApprovalTasks[0].OperationDate)
	})

	t.Run("success admin view of a completed application can cancel", func(t *testing.T) {
		f := newServiceFixture(t)
		detailFixture(f, application.Task{
			ID: 1, ApplicationID: appID, Type: application.TaskTypeApplication,
			Action: application.ActionComplete, Status: application.StatusClosed, OperationUserID: 2,
		})

		admin := identity.Actor{UserID: 50, CompanyID: 1, IsAdmin: true}
		detail, err := f.service.GetDetail(context.Background(), admin, application.DetailQuery{
			ApplicationID: appID, AdminFlow: true,
		})

		assert.NoError(t, err)
		ops := detail.AvailableOperation
		assert.True(t, ops.IsCancel)
		assert.False(t, ops.IsDelete)
		assert.False(t, ops.IsEdit)
	})

	t.Run("negative admin flow requires admin rights", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.GetDetail(context.Background(), requester(), application.DetailQuery{
			ApplicationID: appID, AdminFlow: true,
		})

		assert.ErrorIs(t, err, applicationerrors.ErrApplicationNotFound)
	})
}

func TestList(t *testing.T) {
	t.Run("success non-admin is pinned to their own applications", func(t *testing.T) {
		f := newServiceFixture(t)

		var captured application.ListFilter
		f.queries.listApplicationTasksFn = func(ctx context.Context, filter application.ListFilter) ([]application.TaskApplicationRow, int64, error) {
			captured = filter
			return []application.TaskApplicationRow{{
				TaskID: 1, ApplicationID: 100, ApplicationUserID: 2, Type: paidHolidayType,
				Action: application.ActionPending,
			}}, 1, nil
		}

		otherUser := int64(77)
		items, total, err := f.service.List(context.Background(), requester(), application.ListQuery{
			UserID: &otherUser, Limit: 20,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, items, 1)
		assert.Equal(t, "Paid Holiday", items[0].TypeName)
		// The requested user id is ignored outside the admin flow.
		assert.Equal(t, int64(2), *captured.UserID)
	})

	t.Run("success admin flow defaults to submitted-or-terminal actions", func(t *testing.T) {
		f := newServiceFixture(t)

		var captured application.ListFilter
		f.queries.listApplicationTasksFn = func(ctx context.Context, filter application.ListFilter) ([]application.TaskApplicationRow, int64, error) {
			captured = filter
			return nil, 0, nil
		}

		admin := identity.Actor{UserID: 50, CompanyID: 1, IsAdmin: true}
		_, _, err := f.service.List(context.Background(), admin, application.ListQuery{AdminFlow: true, Limit: 20})

		assert.NoError(t, err)
		assert.Nil(t, captured.UserID)
		assert.ElementsMatch(t, []application.TaskAction{
			application.ActionPending, application.ActionComplete,
			application.ActionReject, application.ActionCancel,
		}, captured.Actions)
	})
}

func TestNotificationCounts(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newServiceFixture(t)
		f.queries.countNotificationsFn = func(ctx context.Context, companyID, userID int64) (*application.NotificationSummary, error) {
			assert.Equal(t, int64(1), companyID)
			assert.Equal(t, int64(2), userID)
			return &application.NotificationSummary{ActionRequiredApplicationCount: 1, ApprovalTaskCount: 3, ActiveApplicationCount: 2}, nil
		}

		summary, err := f.service.NotificationCounts(context.Background(), requester())

		assert.NoError(t, err)
		assert.Equal(t, int64(3), summary.ApprovalTaskCount)
	})
}
