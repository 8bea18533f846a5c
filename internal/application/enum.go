package application

// TaskType distinguishes the requester's own task from approver tasks.
type TaskType int64

const (
	TaskTypeApplication TaskType = 0
	TaskTypeApproval    TaskType = 1
)

// TaskAction is the last action recorded on a task.
type TaskAction int64

const (
	ActionDraft        TaskAction = 0
	ActionPending      TaskAction = 1
	ActionApproval     TaskAction = 2
	ActionComplete     TaskAction = 3
	ActionReject       TaskAction = 4
	ActionCancel       TaskAction = 5
	ActionSystemCancel TaskAction = 9
)

// TaskStatus tracks a task's place in its generation lifecycle.
type TaskStatus int64

const (
	StatusNonActive TaskStatus = 0
	StatusActive    TaskStatus = 1
	StatusHistory   TaskStatus = 2
	StatusClosed    TaskStatus = 3
)

var actionLabels = map[TaskAction]string{
	ActionDraft:        "draft",
	ActionPending:      "pending",
	ActionApproval:     "approved",
	ActionComplete:     "completed",
	ActionReject:       "rejected",
	ActionCancel:       "cancelled",
	ActionSystemCancel: "system cancelled",
}

func (a TaskAction) Label() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return "unknown"
}

var statusLabels = map[TaskStatus]string{
	StatusNonActive: "non active",
	StatusActive:    "active",
	StatusHistory:   "history",
	StatusClosed:    "closed",
}

func (s TaskStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "unknown"
}

func (t TaskType) Label() string {
	switch t {
	case TaskTypeApplication:
		return "application"
	case TaskTypeApproval:
		return "approval"
	}
	return "unknown"
}
