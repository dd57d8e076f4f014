package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "sitelog/contracts/mq"
	"sitelog/internal/model"
)

func TestDailyLogService_Create(t *testing.T) {
	logs := &fakeLogs{}
	svc := NewDailyLogService(logs, newFakeProjects(&model.Project{ID: 1, Name: "P"}), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, DailyLogInput{Date: "yesterday"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, 2, DailyLogInput{Date: "2026-01-05"})
	assert.ErrorIs(t, err, ErrNotFound)

	l, err := svc.Create(ctx, 1, DailyLogInput{Date: "2026/1/5", ActualProgress: strp(" 12.5 "), WorkerCount: 8})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05", l.Date)
	assert.Equal(t, "12.5", *l.ActualProgress)

	require.Len(t, logs.events, 1)
	assert.Equal(t, mqcontracts.RoutingKeyDailyLogCreated, logs.events[0].RoutingKey)
	payload := logs.events[0].Payload.(mqcontracts.DailyLogCreatedPayload)
	assert.Equal(t, l.ID, payload.LogID)
	assert.Equal(t, 1, payload.ProjectID)
}

func TestDailyLogService_BlankProgressIsAbsent(t *testing.T) {
	svc := NewDailyLogService(&fakeLogs{}, newFakeProjects(&model.Project{ID: 1}), zap.NewNop())
	l, err := svc.Create(context.Background(), 1, DailyLogInput{Date: "2026-01-05", ActualProgress: strp("  ")})
	require.NoError(t, err)
	assert.Nil(t, l.ActualProgress)
}

func TestDailyLogService_ListNewestFirst(t *testing.T) {
	logs := &fakeLogs{}
	svc := NewDailyLogService(logs, newFakeProjects(&model.Project{ID: 1}), zap.NewNop())
	ctx := context.Background()
	for _, d := range []string{"2026-01-03", "2026-01-05", "2026-01-04"} {
		_, err := svc.Create(ctx, 1, DailyLogInput{Date: d})
		require.NoError(t, err)
	}

	got, err := svc.ListByProject(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2026-01-05", got[0].Date)
	assert.Equal(t, "2026-01-03", got[2].Date)

	_, err = svc.ListByProject(ctx, 99, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
