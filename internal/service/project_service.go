package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "sitelog/contracts/mq"
	"sitelog/internal/importer"
	"sitelog/internal/model"
	"sitelog/internal/repository"
	"sitelog/internal/schedule"
	"sitelog/pkg/logger"
	"sitelog/pkg/metrics"
	"sitelog/pkg/trace"
)

// maxScheduleDays 工期与单笔展延的上限（100 年）
const maxScheduleDays = 36500

// ProjectStore 由 *repository.ProjectRepository 实现
type ProjectStore interface {
	Create(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id int) (*model.Project, error)
	List(ctx context.Context, status string) ([]model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id int) error
	ReplaceSchedule(ctx context.Context, id int, points []model.SchedulePointRecord, ev *repository.Event) error
	MutateExtensions(ctx context.Context, id int, mutate repository.ExtensionMutation) ([]model.Extension, error)
}

// ProjectInput 创建与部分更新共用；nil 表示不修改
type ProjectInput struct {
	Name             *string  `json:"name"`
	Location         *string  `json:"location"`
	Contractor       *string  `json:"contractor"`
	Supervisor       *string  `json:"supervisor"`
	StartDate        *string  `json:"start_date"`
	ContractDuration *int     `json:"contract_duration"`
	ContractAmount   *float64 `json:"contract_amount"`
	Status           *string  `json:"status"`
}

// ExtensionInput 新增展延
type ExtensionInput struct {
	Days      int    `json:"days"`
	Date      string `json:"date"`
	DocNumber string `json:"doc_number"`
	Reason    string `json:"reason"`
}

type ProjectService struct {
	store  ProjectStore
	logger *zap.Logger
	now    func() time.Time
}

func NewProjectService(store ProjectStore, logger *zap.Logger) *ProjectService {
	return &ProjectService{store: store, logger: logger, now: time.Now}
}

func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*model.Project, error) {
	p := &model.Project{Status: model.ProjectStatusActive}
	if err := applyProjectInput(p, in); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, invalid("name is required")
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id int) (*model.Project, error) {
	return s.store.GetByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context, status string) ([]model.Project, error) {
	if status != "" && !validProjectStatus(status) {
		return nil, invalid("unknown status %q", status)
	}
	return s.store.List(ctx, status)
}

// Update 部分更新；StartDate 传空字符串表示清除开工日
func (s *ProjectService) Update(ctx context.Context, id int, in ProjectInput) (*model.Project, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyProjectInput(p, in); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, invalid("name is required")
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, id int) error {
	return s.store.Delete(ctx, id)
}

// ImportSchedule 解析 CSV 并整体替换计划进度
func (s *ProjectService) ImportSchedule(ctx context.Context, projectID int, r io.Reader) (*importer.Result, error) {
	res, err := importer.ParseCSV(r)
	if err != nil {
		metrics.IncrementScheduleImport("failed")
		if errors.Is(err, importer.ErrNoRows) {
			return nil, invalid("%v", err)
		}
		return nil, invalid("cannot read schedule file: %v", err)
	}

	if err := s.replaceSchedule(ctx, projectID, res.Points, res.Skipped); err != nil {
		metrics.IncrementScheduleImport("failed")
		return nil, err
	}
	metrics.IncrementScheduleImport("success")

	logger.WithTrace(ctx, s.logger).Info("Schedule imported",
		zap.Int("project_id", projectID),
		zap.Int("points", len(res.Points)),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// SetSchedule JSON 方式替换计划进度；日期必须可解析，进度必须在 0-100 之间
func (s *ProjectService) SetSchedule(ctx context.Context, projectID int, points []model.SchedulePointRecord) ([]model.SchedulePointRecord, error) {
	normalized := make([]model.SchedulePointRecord, 0, len(points))
	for i, pt := range points {
		date := schedule.ParseDate(pt.Date)
		if date.IsZero() {
			return nil, invalid("point %d: bad date %q", i, pt.Date)
		}
		if pt.Progress < 0 || pt.Progress > 100 {
			return nil, invalid("point %d: progress %v out of range", i, pt.Progress)
		}
		normalized = append(normalized, model.SchedulePointRecord{Date: date.String(), Progress: pt.Progress})
	}
	if err := s.replaceSchedule(ctx, projectID, normalized, 0); err != nil {
		return nil, err
	}
	return normalized, nil
}

func (s *ProjectService) replaceSchedule(ctx context.Context, projectID int, points []model.SchedulePointRecord, skipped int) error {
	ev := &repository.Event{
		RoutingKey: mqcontracts.RoutingKeyScheduleImported,
		Payload: mqcontracts.ScheduleImportedPayload{
			ProjectID:  projectID,
			Points:     len(points),
			Skipped:    skipped,
			ImportedAt: s.now(),
			TraceID:    trace.FromContext(ctx),
		},
	}
	return s.store.ReplaceSchedule(ctx, projectID, points, ev)
}

// AddExtension 追加一笔展延，返回新增的记录
func (s *ProjectService) AddExtension(ctx context.Context, projectID int, in ExtensionInput) (*model.Extension, error) {
	if in.Days <= 0 {
		return nil, invalid("days must be positive")
	}
	if in.Days > maxScheduleDays {
		return nil, invalid("days must be <= %d", maxScheduleDays)
	}
	ext := model.Extension{
		ID:        uuid.NewString(),
		Days:      in.Days,
		DocNumber: strings.TrimSpace(in.DocNumber),
		Reason:    strings.TrimSpace(in.Reason),
	}
	if strings.TrimSpace(in.Date) != "" {
		d := schedule.ParseDate(in.Date)
		if d.IsZero() {
			return nil, invalid("bad date %q", in.Date)
		}
		ext.Date = d.String()
	}

	_, err := s.store.MutateExtensions(ctx, projectID, func(current []model.Extension) ([]model.Extension, *repository.Event, error) {
		next := append(append([]model.Extension{}, current...), ext)
		return next, s.extensionEvent(ctx, mqcontracts.RoutingKeyExtensionAdded, projectID, ext, next), nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithTrace(ctx, s.logger).Info("Extension added",
		zap.Int("project_id", projectID),
		zap.String("extension_id", ext.ID),
		zap.Int("days", ext.Days),
	)
	return &ext, nil
}

func (s *ProjectService) RemoveExtension(ctx context.Context, projectID int, extID string) error {
	_, err := s.store.MutateExtensions(ctx, projectID, func(current []model.Extension) ([]model.Extension, *repository.Event, error) {
		next := make([]model.Extension, 0, len(current))
		var removed *model.Extension
		for i := range current {
			if current[i].ID == extID && removed == nil {
				removed = &current[i]
				continue
			}
			next = append(next, current[i])
		}
		if removed == nil {
			return nil, nil, fmt.Errorf("extension %s: %w", extID, ErrNotFound)
		}
		return next, s.extensionEvent(ctx, mqcontracts.RoutingKeyExtensionRemoved, projectID, *removed, next), nil
	})
	return err
}

func (s *ProjectService) extensionEvent(ctx context.Context, key string, projectID int, ext model.Extension, all []model.Extension) *repository.Event {
	total := 0
	for _, e := range all {
		total += e.Days
	}
	return &repository.Event{
		RoutingKey: key,
		Payload: mqcontracts.ExtensionChangedPayload{
			ProjectID:    projectID,
			ExtensionID:  ext.ID,
			Days:         ext.Days,
			TotalExtDays: total,
			TraceID:      trace.FromContext(ctx),
		},
	}
}

func applyProjectInput(p *model.Project, in ProjectInput) error {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.Contractor != nil {
		p.Contractor = strings.TrimSpace(*in.Contractor)
	}
	if in.Supervisor != nil {
		p.Supervisor = strings.TrimSpace(*in.Supervisor)
	}
	if in.StartDate != nil {
		if strings.TrimSpace(*in.StartDate) == "" {
			p.StartDate = nil
		} else {
			d := schedule.ParseDate(*in.StartDate)
			if d.IsZero() {
				return invalid("bad start_date %q", *in.StartDate)
			}
			s := d.String()
			p.StartDate = &s
		}
	}
	if in.ContractDuration != nil {
		if *in.ContractDuration < 0 {
			return invalid("contract_duration must not be negative")
		}
		if *in.ContractDuration > maxScheduleDays {
			return invalid("contract_duration must be <= %d", maxScheduleDays)
		}
		v := *in.ContractDuration
		p.ContractDuration = &v
	}
	if in.ContractAmount != nil {
		if *in.ContractAmount < 0 {
			return invalid("contract_amount must not be negative")
		}
		v := *in.ContractAmount
		p.ContractAmount = &v
	}
	if in.Status != nil {
		if !validProjectStatus(*in.Status) {
			return invalid("unknown status %q", *in.Status)
		}
		p.Status = *in.Status
	}
	return nil
}

func validProjectStatus(s string) bool {
	switch s {
	case model.ProjectStatusActive, model.ProjectStatusSuspended, model.ProjectStatusClosed:
		return true
	}
	return false
}
