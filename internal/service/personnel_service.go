package service

import (
	"context"
	"strings"

	"sitelog/internal/model"
)

// PersonnelStore 由 *repository.PersonnelRepository 实现
type PersonnelStore interface {
	Create(ctx context.Context, p *model.Personnel) error
	GetByID(ctx context.Context, id int) (*model.Personnel, error)
	ListByProject(ctx context.Context, projectID int, activeOnly bool) ([]model.Personnel, error)
	Update(ctx context.Context, p *model.Personnel) error
	Delete(ctx context.Context, id int) error
}

type PersonnelInput struct {
	Name      *string `json:"name"`
	Role      *string `json:"role"`
	Phone     *string `json:"phone"`
	Company   *string `json:"company"`
	LicenseNo *string `json:"license_no"`
	PhotoURL  *string `json:"photo_url"`
	Active    *bool   `json:"active"`
}

type PersonnelService struct {
	store    PersonnelStore
	projects ProjectGetter
}

func NewPersonnelService(store PersonnelStore, projects ProjectGetter) *PersonnelService {
	return &PersonnelService{store: store, projects: projects}
}

func (s *PersonnelService) Create(ctx context.Context, projectID int, in PersonnelInput) (*model.Personnel, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	p := &model.Personnel{ProjectID: projectID, Active: true}
	applyPersonnelInput(p, in)
	if p.Name == "" {
		return nil, invalid("name is required")
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PersonnelService) ListByProject(ctx context.Context, projectID int, activeOnly bool) ([]model.Personnel, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListByProject(ctx, projectID, activeOnly)
}

func (s *PersonnelService) Update(ctx context.Context, id int, in PersonnelInput) (*model.Personnel, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPersonnelInput(p, in)
	if p.Name == "" {
		return nil, invalid("name is required")
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PersonnelService) Delete(ctx context.Context, id int) error {
	return s.store.Delete(ctx, id)
}

func applyPersonnelInput(p *model.Personnel, in PersonnelInput) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.Name, in.Name)
	set(&p.Role, in.Role)
	set(&p.Phone, in.Phone)
	set(&p.Company, in.Company)
	set(&p.LicenseNo, in.LicenseNo)
	set(&p.PhotoURL, in.PhotoURL)
	if in.Active != nil {
		p.Active = *in.Active
	}
}
