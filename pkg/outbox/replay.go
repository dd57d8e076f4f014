package outbox

import (
	"context"
	"fmt"
)

// ReplayStore 重放需要的存储操作，由 *Repository 实现
type ReplayStore interface {
	GetEventByID(ctx context.Context, eventID int64) (*Event, error)
	GetFailedEvents(ctx context.Context, limit int) ([]*Event, error)
	MarkAsSent(ctx context.Context, eventID int64) error
	MarkAsFailed(ctx context.Context, eventID int64, maxRetries int) error
}

type ReplayService struct {
	store      ReplayStore
	publisher  Publisher
	maxRetries int
}

func NewReplayService(store ReplayStore, publisher Publisher) *ReplayService {
	return &ReplayService{store: store, publisher: publisher, maxRetries: 5}
}

// ReplayEvent 立即重新发布指定事件，不论当前状态
func (s *ReplayService) ReplayEvent(ctx context.Context, eventID int64) (*Event, error) {
	event, err := s.store.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := publishEvent(ctx, s.publisher, event); err != nil {
		if markErr := s.store.MarkAsFailed(ctx, eventID, s.maxRetries); markErr != nil {
			return nil, fmt.Errorf("failed to publish and mark as failed: %w (mark error: %v)", err, markErr)
		}
		return nil, err
	}

	if err := s.store.MarkAsSent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("failed to mark as sent: %w", err)
	}
	event.Status = StatusSent
	return event, nil
}

// ReplayFailedEvents 重放最近的 failed 事件，返回成功数量
func (s *ReplayService) ReplayFailedEvents(ctx context.Context, limit int) (int, error) {
	events, err := s.store.GetFailedEvents(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get failed events: %w", err)
	}

	ok := 0
	for _, event := range events {
		if _, err := s.ReplayEvent(ctx, event.ID); err != nil {
			continue
		}
		ok++
	}
	return ok, nil
}
