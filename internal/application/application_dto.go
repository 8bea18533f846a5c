package application

import "time"

// SubmitRequest carries a draft save or a submission. ID is nil for a
// brand new application and set when editing or resubmitting one.
type SubmitRequest struct {
	ID              *int64
	Type            int64
	Classification  int64
	StartDate       time.Time
	EndDate         time.Time
	TotalTime       int64
	ApprovalGroupID int64
	Comment         string
	Remarks         string
	Action          TaskAction
}

type ApproveRequest struct {
	ApplicationID int64
	TaskID        int64
	Comment       string
	Action        TaskAction
}

type DetailQuery struct {
	ApplicationID int64
	TaskID        *int64
	AdminFlow     bool
}

type ApproverView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ApplicationView struct {
	ID                  int64          `json:"id"`
	ApplicationUserID   int64          `json:"applicationUserId"`
	ApplicationUserName string         `json:"applicationUserName"`
	Type                int64          `json:"type"`
	TypeName            string         `json:"typeName"`
	Classification      int64          `json:"classification"`
	ClassificationName  string         `json:"classificationName"`
	ApplicationDate     time.Time      `json:"applicationDate"`
	StartDate           time.Time      `json:"startDate"`
	EndDate             time.Time      `json:"endDate"`
	TotalTime           int64          `json:"totalTime"`
	ApprovalGroupID     int64          `json:"approvalGroupId"`
	ApprovalGroupName   string         `json:"approvalGroupName"`
	Approvers           []ApproverView `json:"approvers"`
	Action              TaskAction     `json:"action"`
	ActionName          string         `json:"actionName"`
	Comment             string         `json:"comment"`
	Remarks             string         `json:"remarks"`
}

type TaskView struct {
	ID            int64      `json:"id"`
	Type          TaskType   `json:"type"`
	Action        TaskAction `json:"action"`
	ActionName    string     `json:"actionName"`
	Status        TaskStatus `json:"status"`
	StatusName    string     `json:"statusName"`
	Comment       string     `json:"comment"`
	UserName      string     `json:"userName"`
	OperationDate *time.Time `json:"operationDate"`
}

// AvailableOperation tells the client which actions the current viewer
// may take on the application.
type AvailableOperation struct {
	IsEdit              bool `json:"isEdit"`
	IsSave              bool `json:"isSave"`
	IsEditApprovalGroup bool `json:"isEditApprovalGroup"`
	IsApproval          bool `json:"isApproval"`
	IsDelete            bool `json:"isDelete"`
	IsCancel            bool `json:"isCancel"`
}

type DetailResponse struct {
	Application        ApplicationView    `json:"application"`
	ApprovalTasks      []TaskView         `json:"approvalTasks"`
	AvailableOperation AvailableOperation `json:"availableOperation"`
}

type ListQuery struct {
	AdminFlow bool
	UserID    *int64
	Year      *int
	Action    *TaskAction
	Limit     int
	Offset    int
}

type ListItem struct {
	ID                 int64      `json:"id"`
	ApplicationUserID  int64      `json:"applicationUserId"`
	Type               int64      `json:"type"`
	TypeName           string     `json:"typeName"`
	Classification     int64      `json:"classification"`
	ClassificationName string     `json:"classificationName"`
	ApplicationDate    time.Time  `json:"applicationDate"`
	Action             TaskAction `json:"action"`
	ActionName         string     `json:"actionName"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            time.Time  `json:"endDate"`
	Comment            string     `json:"comment"`
}

type MonthItem struct {
	ID                 int64      `json:"id"`
	ApplicationUserID  int64      `json:"applicationUserId"`
	Type               int64      `json:"type"`
	TypeName           string     `json:"typeName"`
	Classification     int64      `json:"classification"`
	ClassificationName string     `json:"classificationName"`
	Action             TaskAction `json:"action"`
	ActionName         string     `json:"actionName"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            time.Time  `json:"endDate"`
}

type ApprovalListQuery struct {
	ApplicantID *int64
	Action      *TaskAction
	Limit       int
	Offset      int
}

type ApprovalListItem struct {
	TaskID              int64      `json:"taskId"`
	ApplicationID       int64      `json:"applicationId"`
	ApplicationUserID   int64      `json:"applicationUserId"`
	ApplicationUserName string     `json:"applicationUserName"`
	Type                int64      `json:"type"`
	TypeName            string     `json:"typeName"`
	Classification      int64      `json:"classification"`
	ClassificationName  string     `json:"classificationName"`
	ApplicationDate     time.Time  `json:"applicationDate"`
	Action              TaskAction `json:"action"`
	ActionName          string     `json:"actionName"`
	StartDate           time.Time  `json:"startDate"`
	EndDate             time.Time  `json:"endDate"`
	Comment             string     `json:"comment"`
}

// NotificationSummary feeds the header badges: rejected applications the
// requester must act on, approvals waiting on the viewer, and the
// viewer's in-flight applications.
type NotificationSummary struct {
	ActionRequiredApplicationCount int64 `json:"actionRequiredApplicationCount"`
	ApprovalTaskCount              int64 `json:"approvalTaskCount"`
	ActiveApplicationCount         int64 `json:"activeApplicationCount"`
}
