package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sitelog/internal/model"
	"sitelog/internal/repository"
)

type fakeProjects struct {
	mu     sync.Mutex
	nextID int
	items  map[int]*model.Project
	events []*repository.Event
}

func newFakeProjects(ps ...*model.Project) *fakeProjects {
	f := &fakeProjects{items: map[int]*model.Project{}}
	for _, p := range ps {
		if p.ID > f.nextID {
			f.nextID = p.ID
		}
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProjects) Create(ctx context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.items[p.ID] = &cp
	return nil
}

func (f *fakeProjects) GetByID(ctx context.Context, id int) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", id, model.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) List(ctx context.Context, status string) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Project{}
	for _, p := range f.items {
		if status == "" || p.Status == status {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProjects) Update(ctx context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[p.ID]; !ok {
		return model.ErrNotFound
	}
	cp := *p
	f.items[p.ID] = &cp
	return nil
}

func (f *fakeProjects) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return model.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeProjects) ReplaceSchedule(ctx context.Context, id int, points []model.SchedulePointRecord, ev *repository.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return fmt.Errorf("project %d: %w", id, model.ErrNotFound)
	}
	p.ScheduleData = points
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeProjects) MutateExtensions(ctx context.Context, id int, mutate repository.ExtensionMutation) ([]model.Extension, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", id, model.ErrNotFound)
	}
	next, ev, err := mutate(p.Extensions)
	if err != nil {
		return nil, err
	}
	p.Extensions = next
	f.events = append(f.events, ev)
	return next, nil
}

type fakeLogs struct {
	mu     sync.Mutex
	nextID int
	items  []model.DailyLog
	events []*repository.Event
}

func (f *fakeLogs) Create(ctx context.Context, l *model.DailyLog, event func(*model.DailyLog) *repository.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l.ID = f.nextID
	f.items = append(f.items, *l)
	if event != nil {
		f.events = append(f.events, event(l))
	}
	return nil
}

func (f *fakeLogs) GetByID(ctx context.Context, id int) (*model.DailyLog, error) {
	for _, l := range f.items {
		if l.ID == id {
			cp := l
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

// ListByProject 与仓库一致：日期倒序，同日按写入倒序
func (f *fakeLogs) ListByProject(ctx context.Context, projectID int, limit int) ([]model.DailyLog, error) {
	out := []model.DailyLog{}
	for _, l := range f.items {
		if l.ProjectID == projectID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLogs) Delete(ctx context.Context, id int) error {
	for i, l := range f.items {
		if l.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

type fakeDeduper struct {
	held     map[string]bool
	released []string
}

func (d *fakeDeduper) AcquireOnce(ctx context.Context, key string) bool {
	if d.held == nil {
		d.held = map[string]bool{}
	}
	if d.held[key] {
		return false
	}
	d.held[key] = true
	return true
}

func (d *fakeDeduper) Release(ctx context.Context, key string) {
	delete(d.held, key)
	d.released = append(d.released, key)
}

type fakePublisher struct {
	err  error
	keys []string
	msgs []any
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, routingKey string, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	p.msgs = append(p.msgs, payload)
	return nil
}

type fakeAlerts struct {
	items []model.ProgressAlert
}

func (f *fakeAlerts) Insert(ctx context.Context, a *model.ProgressAlert) (bool, error) {
	for _, x := range f.items {
		if x.ProjectID == a.ProjectID && x.Kind == a.Kind && x.Date == a.Date {
			return false, nil
		}
	}
	a.ID = len(f.items) + 1
	f.items = append(f.items, *a)
	return true, nil
}

func (f *fakeAlerts) ListByProject(ctx context.Context, projectID int, limit int) ([]model.ProgressAlert, error) {
	return f.items, nil
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }
