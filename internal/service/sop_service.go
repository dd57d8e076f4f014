package service

import (
	"context"
	"net/url"
	"strings"

	"sitelog/internal/model"
)

// SOPStore 由 *repository.SOPRepository 实现
type SOPStore interface {
	Create(ctx context.Context, d *model.SOPDocument) error
	GetByID(ctx context.Context, id int) (*model.SOPDocument, error)
	List(ctx context.Context, category string) ([]model.SOPDocument, error)
	Delete(ctx context.Context, id int) error
}

type SOPService struct {
	store SOPStore
}

func NewSOPService(store SOPStore) *SOPService {
	return &SOPService{store: store}
}

// Create 文件本体不经过本服务，file_url 必须是 http(s) 绝对地址
func (s *SOPService) Create(ctx context.Context, d *model.SOPDocument) (*model.SOPDocument, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Category = strings.TrimSpace(d.Category)
	if d.Title == "" {
		return nil, invalid("title is required")
	}
	if d.FileURL != "" {
		u, err := url.Parse(d.FileURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, invalid("file_url must be an absolute http(s) url")
		}
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *SOPService) Get(ctx context.Context, id int) (*model.SOPDocument, error) {
	return s.store.GetByID(ctx, id)
}

func (s *SOPService) List(ctx context.Context, category string) ([]model.SOPDocument, error) {
	return s.store.List(ctx, strings.TrimSpace(category))
}

func (s *SOPService) Delete(ctx context.Context, id int) error {
	return s.store.Delete(ctx, id)
}
