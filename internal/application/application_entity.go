package application

import "time"

// Application is the leave request itself. Workflow state lives on the
// tasks, not here; an application only records what was requested.
type Application struct {
	ID              int64     `json:"id"`
	CompanyID       int64     `json:"companyId"`
	UserID          int64     `json:"userId"`
	Type            int64     `json:"type"`
	Classification  int64     `json:"classification"`
	ApplicationDate time.Time `json:"applicationDate"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	TotalTime       int64     `json:"totalTime"`
	ApprovalGroupID int64     `json:"approvalGroupId"`
	Remarks         string    `json:"remarks"`
	Version         int64     `json:"version"`
	CreatedBy       int64     `json:"createdBy"`
	UpdatedBy       int64     `json:"updatedBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Application) TableName() string {
	return "applications"
}

// Task is one workflow step of an application. The requester holds a
// single application task, each approver holds an approval task. A
// rejected and resubmitted application keeps its old tasks as HISTORY
// rows and gets a fresh generation of ACTIVE ones.
type Task struct {
	ID              int64      `json:"id"`
	CompanyID       int64      `json:"companyId"`
	ApplicationID   int64      `json:"applicationId"`
	Type            TaskType   `json:"type"`
	Action          TaskAction `json:"action"`
	Status          TaskStatus `json:"status"`
	OperationUserID int64      `json:"operationUserId"`
	OperationDate   *time.Time `json:"operationDate"`
	Comment         string     `json:"comment"`
	Version         int64      `json:"version"`
	CreatedBy       int64      `json:"createdBy"`
	UpdatedBy       int64      `json:"updatedBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (Task) TableName() string {
	return "tasks"
}
