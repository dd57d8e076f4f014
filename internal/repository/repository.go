package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sitelog/internal/model"
	"sitelog/pkg/outbox"
)

// Event 与业务写入在同一事务中落入 outbox 的事件
type Event struct {
	RoutingKey string
	Payload    any
}

// notFound 把 pgx.ErrNoRows 转成 model.ErrNotFound
func notFound(err error, what string, id int) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, model.ErrNotFound)
	}
	return err
}

// inTx 执行 fn 并提交；fn 返回错误时回滚
func inTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func emit(ctx context.Context, tx pgx.Tx, aggregateType string, aggregateID int, ev *Event) error {
	if ev == nil || ev.RoutingKey == "" {
		return nil
	}
	_, err := outbox.InsertEventInTx(ctx, tx, aggregateType, int64(aggregateID), ev.RoutingKey, ev.Payload)
	return err
}
