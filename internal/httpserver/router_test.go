package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitelog/internal/handler"
	"sitelog/internal/model"
	"sitelog/internal/repository"
	"sitelog/internal/service"
	"sitelog/pkg/outbox"
	"sitelog/pkg/trace"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memProjects struct {
	items  map[int]*model.Project
	events []*repository.Event
}

func (m *memProjects) Create(ctx context.Context, p *model.Project) error {
	p.ID = len(m.items) + 1
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memProjects) GetByID(ctx context.Context, id int) (*model.Project, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", id, model.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memProjects) List(ctx context.Context, status string) ([]model.Project, error) {
	out := []model.Project{}
	for _, p := range m.items {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProjects) Update(ctx context.Context, p *model.Project) error {
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memProjects) Delete(ctx context.Context, id int) error {
	delete(m.items, id)
	return nil
}

func (m *memProjects) ReplaceSchedule(ctx context.Context, id int, points []model.SchedulePointRecord, ev *repository.Event) error {
	p, ok := m.items[id]
	if !ok {
		return model.ErrNotFound
	}
	p.ScheduleData = points
	m.events = append(m.events, ev)
	return nil
}

func (m *memProjects) MutateExtensions(ctx context.Context, id int, mutate repository.ExtensionMutation) ([]model.Extension, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	next, ev, err := mutate(p.Extensions)
	if err != nil {
		return nil, err
	}
	p.Extensions = next
	m.events = append(m.events, ev)
	return next, nil
}

type memLogs struct {
	items []model.DailyLog
}

func (m *memLogs) Create(ctx context.Context, l *model.DailyLog, event func(*model.DailyLog) *repository.Event) error {
	l.ID = len(m.items) + 1
	m.items = append([]model.DailyLog{*l}, m.items...)
	return nil
}

func (m *memLogs) GetByID(ctx context.Context, id int) (*model.DailyLog, error) {
	for _, l := range m.items {
		if l.ID == id {
			cp := l
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *memLogs) ListByProject(ctx context.Context, projectID int, limit int) ([]model.DailyLog, error) {
	out := []model.DailyLog{}
	for _, l := range m.items {
		if l.ProjectID == projectID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLogs) Delete(ctx context.Context, id int) error { return nil }

type noAlerts struct{}

func (noAlerts) ListByProject(ctx context.Context, projectID int, limit int) ([]model.ProgressAlert, error) {
	return []model.ProgressAlert{}, nil
}

type emptyOutbox struct{}

func (emptyOutbox) GetEventByID(ctx context.Context, id int64) (*outbox.Event, error) {
	return nil, outbox.ErrEventNotFound
}
func (emptyOutbox) GetFailedEvents(ctx context.Context, limit int) ([]*outbox.Event, error) {
	return nil, nil
}
func (emptyOutbox) MarkAsSent(ctx context.Context, id int64) error { return nil }
func (emptyOutbox) MarkAsFailed(ctx context.Context, id int64, maxRetries int) error { return nil }

type nopPublisher struct{}

func (nopPublisher) PublishWithContext(ctx context.Context, routingKey string, payload any) error {
	return nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

type stubConn bool

func (c stubConn) IsConnected() bool { return bool(c) }

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func newTestRouter(t *testing.T, db Pinger) (*gin.Engine, *memProjects) {
	t.Helper()
	logger := zap.NewNop()
	projects := &memProjects{items: map[int]*model.Project{
		1: {
			ID:               1,
			Name:             "Bridge",
			Status:           model.ProjectStatusActive,
			StartDate:        strp("2026-01-01"),
			ContractDuration: intp(30),
			Extensions:       []model.Extension{{ID: "e1", Days: 10}},
			ScheduleData:     []model.SchedulePointRecord{{Date: "2026-01-21", Progress: 50}},
		},
	}}
	logs := &memLogs{items: []model.DailyLog{
		{ID: 1, ProjectID: 1, Date: "2026-01-11", ActualProgress: strp("20")},
	}}

	clock := func() time.Time { return time.Date(2026, 1, 11, 9, 0, 0, 0, time.UTC) }
	progress := service.NewProgressService(projects, logs, logger).WithClock(clock, time.UTC)

	h := Handlers{
		Projects:  handler.NewProjectHandler(service.NewProjectService(projects, logger), logger),
		Progress:  handler.NewProgressHandler(progress, noAlerts{}, logger),
		Logs:      handler.NewDailyLogHandler(service.NewDailyLogService(logs, projects, logger), logger),
		Personnel: handler.NewPersonnelHandler(service.NewPersonnelService(nil, projects), logger),
		SOPs:      handler.NewSOPHandler(service.NewSOPService(nil), logger),
		Admin:     handler.NewAdminHandler(outbox.NewReplayService(emptyOutbox{}, nopPublisher{}), logger),
	}
	return NewRouter(h, logger, db, stubConn(true)), projects
}

func do(r http.Handler, method, path, role string, body string, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if role != "" {
		req.Header.Set(handler.HeaderUserRole, role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndReadiness(t *testing.T) {
	r, _ := newTestRouter(t, stubPinger{})
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "", "", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/readyz", "", "", "").Code)

	down, _ := newTestRouter(t, stubPinger{err: errors.New("connection refused")})
	w := do(down, http.MethodGet, "/readyz", "", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "db_not_ready")
}

func TestImportSchedule_RequiresAdmin(t *testing.T) {
	r, projects := newTestRouter(t, nil)
	csv := "date,progress\n2026-01-10,20%\n2026/01/20,60\nbad,1\n"

	for _, role := range []string{"", "viewer", "engineer"} {
		w := do(r, http.MethodPost, "/projects/1/schedule/import", role, csv, "text/csv")
		assert.Equal(t, http.StatusForbidden, w.Code, "role %q", role)
	}

	w := do(r, http.MethodPost, "/projects/1/schedule/import", "admin", csv, "text/csv")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Imported)
	assert.Equal(t, 1, body.Skipped)
	assert.Len(t, projects.items[1].ScheduleData, 2)
}

func TestProgressEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/projects/1/progress", "", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 25.0, body["planned_progress"])
	assert.Equal(t, 20.0, body["actual_progress"])
	assert.Equal(t, -5.0, body["variance"])
	assert.Equal(t, 29.0, body["remaining_days"])
	assert.Equal(t, "behind_schedule", body["status"])
	assert.Equal(t, "2026-02-09", body["planned_completion"])
	assert.NotEmpty(t, w.Header().Get(trace.HeaderName))
}

func TestErrorMapping(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/projects/99/progress", "", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/projects/abc", "", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/projects/1/scurve?steps=400", "", "", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/admin/outbox/7/replay", "admin", "", "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/admin/outbox/7/replay", "engineer", "", "").Code)
}

func TestSCurveEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/projects/1/scurve?steps=4", "", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Labels  []string   `json:"labels"`
		Planned []float64  `json:"plannedSeries"`
		Actual  []*float64 `json:"actualSeries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Labels, 5)
	assert.Len(t, body.Planned, 5)
	assert.Len(t, body.Actual, 5)
	assert.Nil(t, body.Actual[4])
}

func TestCreateDailyLog_EngineerAllowed(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	payload := `{"date":"2026/01/12","weather":"晴","actual_progress":"22.5"}`

	assert.Equal(t, http.StatusForbidden,
		do(r, http.MethodPost, "/projects/1/logs", "viewer", payload, "application/json").Code)

	w := do(r, http.MethodPost, "/projects/1/logs", "engineer", payload, "application/json")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var l model.DailyLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &l))
	assert.Equal(t, "2026-01-12", l.Date)
	require.NotNil(t, l.ActualProgress)
	assert.Equal(t, "22.5", *l.ActualProgress)
}
