package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "sitelog/contracts/mq"
	"sitelog/internal/model"
	"sitelog/pkg/util"
)

type stubEvaluator struct {
	calls []int
	alert *mqcontracts.ProgressAlertPayload
	err   error
}

func (s *stubEvaluator) Evaluate(ctx context.Context, projectID int) (*mqcontracts.ProgressAlertPayload, error) {
	s.calls = append(s.calls, projectID)
	return s.alert, s.err
}

type stubPersister struct {
	got []mqcontracts.ProgressAlertPayload
	err error
}

func (s *stubPersister) Persist(ctx context.Context, p mqcontracts.ProgressAlertPayload) (*model.ProgressAlert, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.got = append(s.got, p)
	return &model.ProgressAlert{ID: len(s.got), ProjectID: p.ProjectID, Kind: p.Kind}, nil
}

func retryable(err error) bool {
	ok, _ := util.IsRetryableError(err)
	return ok
}

func TestProgressEventHandler(t *testing.T) {
	ev := &stubEvaluator{}
	h := NewProgressEventHandler(ev, zap.NewNop())

	// 任意进度事件都带 project_id
	raw, _ := json.Marshal(mqcontracts.DailyLogCreatedPayload{LogID: 9, ProjectID: 4, Date: "2026-01-05"})
	require.NoError(t, h.Handle(context.Background(), raw))
	raw, _ = json.Marshal(mqcontracts.ExtensionChangedPayload{ProjectID: 5, ExtensionID: "x", Days: 3})
	require.NoError(t, h.Handle(context.Background(), raw))
	assert.Equal(t, []int{4, 5}, ev.calls)
}

func TestProgressEventHandler_ErrorClassification(t *testing.T) {
	ctx := context.Background()

	err := NewProgressEventHandler(&stubEvaluator{}, zap.NewNop()).Handle(ctx, json.RawMessage(`{bad`))
	require.Error(t, err)
	assert.False(t, retryable(err))

	err = NewProgressEventHandler(&stubEvaluator{}, zap.NewNop()).Handle(ctx, json.RawMessage(`{"project_id":0}`))
	assert.False(t, retryable(err))

	gone := &stubEvaluator{err: fmt.Errorf("project 4: %w", model.ErrNotFound)}
	err = NewProgressEventHandler(gone, zap.NewNop()).Handle(ctx, json.RawMessage(`{"project_id":4}`))
	assert.False(t, retryable(err))

	flaky := &stubEvaluator{err: errors.New("connection refused")}
	err = NewProgressEventHandler(flaky, zap.NewNop()).Handle(ctx, json.RawMessage(`{"project_id":4}`))
	assert.True(t, retryable(err))
}

func TestProgressAlertHandler(t *testing.T) {
	store := &stubPersister{}
	h := NewProgressAlertHandler(store, zap.NewNop())

	actual := 20.0
	raw, _ := json.Marshal(mqcontracts.ProgressAlertPayload{
		ProjectID:       1,
		Kind:            model.AlertKindBehindSchedule,
		PlannedProgress: 25,
		ActualProgress:  &actual,
		Date:            "2026-01-11",
	})
	require.NoError(t, h.Handle(context.Background(), raw))
	require.Len(t, store.got, 1)
	assert.Equal(t, 20.0, *store.got[0].ActualProgress)

	bad := &stubPersister{err: fmt.Errorf("%w: malformed alert payload", model.ErrInvalidInput)}
	err := NewProgressAlertHandler(bad, zap.NewNop()).Handle(context.Background(), raw)
	assert.False(t, retryable(err))
}
