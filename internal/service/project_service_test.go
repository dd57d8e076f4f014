package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "sitelog/contracts/mq"
	"sitelog/internal/model"
	"sitelog/pkg/trace"
)

func TestProjectService_CreateValidates(t *testing.T) {
	svc := NewProjectService(newFakeProjects(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, ProjectInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, ProjectInput{Name: strp("A"), StartDate: strp("someday")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, ProjectInput{Name: strp("A"), ContractDuration: intp(-1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, ProjectInput{Name: strp("A"), ContractDuration: intp(maxScheduleDays + 1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	p, err := svc.Create(ctx, ProjectInput{Name: strp(" Bridge "), StartDate: strp("2026/1/5"), ContractDuration: intp(120)})
	require.NoError(t, err)
	assert.Equal(t, "Bridge", p.Name)
	assert.Equal(t, "2026-01-05", *p.StartDate)
	assert.Equal(t, model.ProjectStatusActive, p.Status)
}

func TestProjectService_UpdateIsPartial(t *testing.T) {
	store := newFakeProjects(&model.Project{ID: 1, Name: "Old", Location: "Site A", StartDate: strp("2026-01-01"), Status: "active"})
	svc := NewProjectService(store, zap.NewNop())

	p, err := svc.Update(context.Background(), 1, ProjectInput{Name: strp("New"), Status: strp("suspended")})
	require.NoError(t, err)
	assert.Equal(t, "New", p.Name)
	assert.Equal(t, "Site A", p.Location)
	assert.Equal(t, "suspended", p.Status)

	p, err = svc.Update(context.Background(), 1, ProjectInput{StartDate: strp("")})
	require.NoError(t, err)
	assert.Nil(t, p.StartDate)

	_, err = svc.Update(context.Background(), 1, ProjectInput{Status: strp("archived")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(context.Background(), 9, ProjectInput{Name: strp("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectService_ImportSchedule(t *testing.T) {
	store := newFakeProjects(&model.Project{ID: 1, Name: "P"})
	svc := NewProjectService(store, zap.NewNop())
	ctx := trace.WithContext(context.Background(), "trace-1")

	res, err := svc.ImportSchedule(ctx, 1, strings.NewReader("progress,date\n20,2026-01-10\n60%,2026/01/20\nx,bad\n"))
	require.NoError(t, err)
	assert.Len(t, res.Points, 2)
	assert.Equal(t, 1, res.Skipped)

	p, _ := store.GetByID(ctx, 1)
	assert.Equal(t, []model.SchedulePointRecord{{Date: "2026-01-10", Progress: 20}, {Date: "2026-01-20", Progress: 60}}, p.ScheduleData)

	require.Len(t, store.events, 1)
	assert.Equal(t, mqcontracts.RoutingKeyScheduleImported, store.events[0].RoutingKey)
	payload := store.events[0].Payload.(mqcontracts.ScheduleImportedPayload)
	assert.Equal(t, 2, payload.Points)
	assert.Equal(t, "trace-1", payload.TraceID)

	_, err = svc.ImportSchedule(ctx, 1, strings.NewReader("\n\n"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ImportSchedule(ctx, 2, strings.NewReader("2026-01-10,20\n"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectService_SetScheduleRejectsBadPoints(t *testing.T) {
	store := newFakeProjects(&model.Project{ID: 1, Name: "P"})
	svc := NewProjectService(store, zap.NewNop())

	_, err := svc.SetSchedule(context.Background(), 1, []model.SchedulePointRecord{{Date: "bad", Progress: 10}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SetSchedule(context.Background(), 1, []model.SchedulePointRecord{{Date: "2026-01-01", Progress: 120}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := svc.SetSchedule(context.Background(), 1, []model.SchedulePointRecord{{Date: "2026/2/1", Progress: 10}})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", got[0].Date)
}

func TestProjectService_Extensions(t *testing.T) {
	store := newFakeProjects(&model.Project{ID: 1, Name: "P", Extensions: []model.Extension{{ID: "a", Days: 3}}})
	svc := NewProjectService(store, zap.NewNop())
	ctx := context.Background()

	_, err := svc.AddExtension(ctx, 1, ExtensionInput{Days: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddExtension(ctx, 1, ExtensionInput{Days: 5, Date: "not-a-date"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddExtension(ctx, 1, ExtensionInput{Days: maxScheduleDays + 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	ext, err := svc.AddExtension(ctx, 1, ExtensionInput{Days: 10, Date: "2026/03/01", DocNumber: "DOC-7", Reason: "rain"})
	require.NoError(t, err)
	assert.NotEmpty(t, ext.ID)
	assert.Equal(t, "2026-03-01", ext.Date)

	p, _ := store.GetByID(ctx, 1)
	require.Len(t, p.Extensions, 2)
	added := store.events[len(store.events)-1].Payload.(mqcontracts.ExtensionChangedPayload)
	assert.Equal(t, 13, added.TotalExtDays)

	require.NoError(t, svc.RemoveExtension(ctx, 1, "a"))
	p, _ = store.GetByID(ctx, 1)
	assert.Equal(t, []model.Extension{*ext}, p.Extensions)
	assert.Equal(t, mqcontracts.RoutingKeyExtensionRemoved, store.events[len(store.events)-1].RoutingKey)

	assert.ErrorIs(t, svc.RemoveExtension(ctx, 1, "missing"), ErrNotFound)
	_, err = svc.AddExtension(ctx, 42, ExtensionInput{Days: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}
