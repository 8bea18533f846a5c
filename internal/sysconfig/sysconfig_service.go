package sysconfig

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	sysconfigerrors "github.com/k-obata-3/leave-connect-api/internal/sysconfig/errors"
)

type Service interface {
	GetApprovalGroup(ctx context.Context, companyID, groupID int64) (*ApprovalGroup, error)
	ListApprovalGroups(ctx context.Context, companyID int64) ([]ApprovalGroup, error)
	GetApplicationTypes(ctx context.Context, companyID int64, asOf time.Time) (ApplicationTypes, error)
	GetApplicationType(ctx context.Context, companyID, typeCode int64, asOf time.Time) (*ApplicationType, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &service{repo: repo, logger: l.Named("sysconfig_service")}
}

func (s *service) GetApprovalGroup(ctx context.Context, companyID, groupID int64) (*ApprovalGroup, error) {
	cfg, err := s.repo.FindByIDAndCompany(ctx, groupID, companyID)
	if err != nil {
		return nil, err
	}
	if cfg.Key != KeyApprovalGroup {
		return nil, sysconfigerrors.ErrApprovalGroupNotFound
	}
	group, err := parseApprovalGroup(cfg)
	if err != nil {
		s.logger.Error("malformed approval group config",
			zap.Int64("config_id", cfg.ID),
			zap.Error(err))
		return nil, sysconfigerrors.ErrMalformedConfig
	}
	return group, nil
}

func (s *service) ListApprovalGroups(ctx context.Context, companyID int64) ([]ApprovalGroup, error) {
	configs, err := s.repo.FindByKey(ctx, companyID, KeyApprovalGroup)
	if err != nil {
		return nil, err
	}
	groups := make([]ApprovalGroup, 0, len(configs))
	for i := range configs {
		group, err := parseApprovalGroup(&configs[i])
		if err != nil {
			s.logger.Error("malformed approval group config",
				zap.Int64("config_id", configs[i].ID),
				zap.Error(err))
			continue
		}
		groups = append(groups, *group)
	}
	return groups, nil
}

func (s *service) GetApplicationTypes(ctx context.Context, companyID int64, asOf time.Time) (ApplicationTypes, error) {
	configs, err := s.repo.FindEffectiveByKey(ctx, companyID, KeyApplicationType, asOf)
	if err != nil {
		return nil, err
	}
	types := make(ApplicationTypes, 0, len(configs))
	for i := range configs {
		var t ApplicationType
		if err := json.Unmarshal([]byte(configs[i].Value), &t); err != nil {
			s.logger.Error("malformed application type config",
				zap.Int64("config_id", configs[i].ID),
				zap.Error(err))
			return nil, sysconfigerrors.ErrMalformedConfig
		}
		types = append(types, t)
	}
	return types, nil
}

func (s *service) GetApplicationType(ctx context.Context, companyID, typeCode int64, asOf time.Time) (*ApplicationType, error) {
	types, err := s.GetApplicationTypes(ctx, companyID, asOf)
	if err != nil {
		return nil, err
	}
	for i := range types {
		if types[i].Code == typeCode {
			return &types[i], nil
		}
	}
	return nil, sysconfigerrors.ErrApplicationTypeNotFound
}

// parseApprovalGroup flattens the five sparse approver slots into an
// ordered id list. Empty slots are skipped, slot order is preserved.
func parseApprovalGroup(cfg *SystemConfig) (*ApprovalGroup, error) {
	var value approvalGroupValue
	if err := json.Unmarshal([]byte(cfg.Value), &value); err != nil {
		return nil, err
	}
	slots := []string{value.Approver1, value.Approver2, value.Approver3, value.Approver4, value.Approver5}
	ids := make([]int64, 0, len(slots))
	for _, slot := range slots {
		if slot == "" {
			continue
		}
		id, err := strconv.ParseInt(slot, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return &ApprovalGroup{
		ID:          cfg.ID,
		Name:        value.GroupName,
		ApproverIDs: ids,
	}, nil
}
