package application

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/k-obata-3/leave-connect-api/internal/identity"
	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
	"github.com/k-obata-3/leave-connect-api/internal/shared/response"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Handler{service: service, logger: l.Named("application_handler")}
}

type submitPayload struct {
	ID              *int64 `json:"id"`
	Type            int64  `json:"type"`
	Classification  int64  `json:"classification"`
	StartDate       string `json:"startDate" binding:"required"`
	StartTime       string `json:"startTime" binding:"required"`
	EndDate         string `json:"endDate" binding:"required"`
	EndTime         string `json:"endTime" binding:"required"`
	TotalTime       int64  `json:"totalTime" binding:"required"`
	ApprovalGroupID int64  `json:"approvalGroupId" binding:"required"`
	Comment         string `json:"comment"`
	Remarks         string `json:"remarks"`
	Action          int64  `json:"action"`
}

type approvePayload struct {
	ApplicationID int64  `json:"applicationId" binding:"required"`
	TaskID        int64  `json:"taskId" binding:"required"`
	Comment       string `json:"comment" binding:"required"`
	Action        int64  `json:"action" binding:"required"`
}

type cancelPayload struct {
	Comment string `json:"comment" binding:"required"`
}

func (h *Handler) Submit(c *gin.Context) {
	actor, err := identity.FromGin(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var payload submitPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, apperror.MapValidationError(err))
		return
	}

	startDate, err := parseDateTime(payload.StartDate, payload.StartTime)
	if err != nil {
		respondError(c, apperror.InvalidField("startDate"))
		return
	}
	endDate, err := parseDateTime(payload.EndDate, payload.EndTime)
	if err != nil {
		respondError(c, apperror.InvalidField("endDate"))
		return
	}

	id, err := h.service.Submit(c.Request.Context(), actor, SubmitRequest{
		ID:              payload.ID,
		Type:            payload.Type,
		Classification:  payload.Classification,
		StartDate:       startDate,
		EndDate:         endDate,
		TotalTime:       payload.TotalTime,
		ApprovalGroupID: payload.ApprovalGroupID,
		Comment:         payload.Comment,
		Remarks:         payload.Remarks,
		Action:          TaskAction(payload.Action),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id}, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	actor, err := identity.FromGin(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var payload approvePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, apperror.MapValidationError(err))
		return
	}

	err = h.service.Approve(c.Request.Context(), actor, ApproveRequest{
		ApplicationID: payload.ApplicationID,
		TaskID:        payload.TaskID,
		Comment:       payload.Comment,
		Action:        TaskAction(payload.Action),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{}, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	actor, err := identity.FromGin(c)
	if err != nil {
		respondError(c, err)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperror.InvalidField("id"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{}, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	actor, err := identity.FromGin(c)
	if err != nil {
		respondError(c, err)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperror.InvalidField("id"))
		return
	}

	var payload cancelPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, apperror.MapValidationError(err))
		return
	}

	if err := h.service.Cancel(c.Request.Context(), actor, id, payload.Comment); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{}, nil)
}

func (h *Handler) GetDetail(c *gin.Context) {
	actor, err := identity.FromGin(c)
	if err != nil {
		respondError(c, err)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperror.InvalidField("id"))
		return
	}

	q := DetailQuery{
		ApplicationID: id,
		AdminFlow:     c.Query("isAdminFlow") == "true",
	}
	if raw := c.Query("taskId"); raw != "" {
		taskID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, apperror.InvalidField("taskId"))
			return
		}
		q.TaskID = &taskID
	}

	detail, err := h.service.GetDetail(c.Request.Context(), actor, q)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail, nil)
}

func (h *Handler) List(c *gin.Context) {
	actor, err := identity.FromGin(c)
	if err != nil {
		respondError(c, err)
		return
	}

	limit, offset, err := parsePaging(c)
	if err != nil {
		respondError(c, err)
		return
	}

	q := ListQuery{
		AdminFlow: c.Query("isAdmin") == "true",
		Limit:     limit,
		Offset:    offset,
	}
	if raw := c.Query("userId"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, apperror.InvalidField("userId"))
			return
		}
		q.UserID = &userID
	}
	if raw := c.Query("searchYear"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperror.InvalidField("searchYear"))
			return
		}
		q.Year = &year
	}
	if raw := c.Query("searchAction"); raw != "" {
		action, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, apperror.InvalidField("searchAction"))
			return
		}
		taskAction := TaskAction(action)
		q.Action = &taskAction
	}

	items, total, err := h.service.List(c.Request.Context(), actor, q)
	if err != nil {
		respondError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, offset/max(limit, 1)+1, limit)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) ListMonth(c *gin.Context) {
	actor, err := identity.FromGin(c)
	if err != nil {
		respondError(c, err)
		return
	}

	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		respondError(c, apperror.InvalidField("start"))
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		respondError(c, apperror.InvalidField("end"))
		return
	}

	items, err := h.service.ListMonth(c.Request.Context(), actor, start, end.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, items, nil)
}

func (h *Handler) ListApprovals(c *gin.Context) {
	actor, err := identity.FromGin(c)
	if err != nil {
		respondError(c, err)
		return
	}

	limit, offset, err := parsePaging(c)
	if err != nil {
		respondError(c, err)
		return
	}

	q := ApprovalListQuery{Limit: limit, Offset: offset}
	if raw := c.Query("searchUserId"); raw != "" {
		applicantID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, apperror.InvalidField("searchUserId"))
			return
		}
		q.ApplicantID = &applicantID
	}
	if raw := c.Query("searchAction"); raw != "" {
		action, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, apperror.InvalidField("searchAction"))
			return
		}
		taskAction := TaskAction(action)
		q.Action = &taskAction
	}

	items, total, err := h.service.ListApprovals(c.Request.Context(), actor, q)
	if err != nil {
		respondError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, offset/max(limit, 1)+1, limit)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) Notifications(c *gin.Context) {
	actor, err := identity.FromGin(c)
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.service.NotificationCounts(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary, nil)
}

func respondError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func parsePaging(c *gin.Context) (limit, offset int, err error) {
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		return 0, 0, apperror.InvalidField("limit")
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, apperror.InvalidField("offset")
	}
	return limit, offset, nil
}

func parseDateTime(date, clock string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006/01/02 15:04:05", "2006/01/02 15:04"} {
		if t, err := time.Parse(layout, date+" "+clock); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperror.ErrInvalidInput
}
