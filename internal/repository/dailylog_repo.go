package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"sitelog/internal/model"
	"sitelog/pkg/otel"
)

type DailyLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDailyLogRepository(db *pgxpool.Pool, logger *zap.Logger) *DailyLogRepository {
	return &DailyLogRepository{db: db, logger: logger}
}

const dailyLogColumns = `
        id, project_id, to_char(log_date, 'YYYY-MM-DD'), weather, temperature, work_items,
        worker_count, machinery, notes, actual_progress, reporter, photo_urls, created_at`

func scanDailyLog(row pgx.Row) (*model.DailyLog, error) {
	var l model.DailyLog
	err := row.Scan(
		&l.ID,
		&l.ProjectID,
		&l.Date,
		&l.Weather,
		&l.Temperature,
		&l.WorkItems,
		&l.WorkerCount,
		&l.Machinery,
		&l.Notes,
		&l.ActualProgress,
		&l.Reporter,
		&l.PhotoURLs,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create 写入日志；event 在拿到 ID 之后构造，与日志同事务落入 outbox
func (r *DailyLogRepository) Create(ctx context.Context, l *model.DailyLog, event func(*model.DailyLog) *Event) error {
	if l.PhotoURLs == nil {
		l.PhotoURLs = []string{}
	}
	query := `
        INSERT INTO daily_logs (project_id, log_date, weather, temperature, work_items, worker_count,
                                machinery, notes, actual_progress, reporter, photo_urls)
        VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at
    `
	err := otel.Traced(ctx, "daily_log.insert", query, func(ctx context.Context) error {
		return inTx(ctx, r.db, func(tx pgx.Tx) error {
			err := tx.QueryRow(ctx, query,
				l.ProjectID,
				l.Date,
				l.Weather,
				l.Temperature,
				l.WorkItems,
				l.WorkerCount,
				l.Machinery,
				l.Notes,
				l.ActualProgress,
				l.Reporter,
				l.PhotoURLs,
			).Scan(&l.ID, &l.CreatedAt)
			if err != nil {
				return err
			}
			if event == nil {
				return nil
			}
			return emit(ctx, tx, "daily_log", l.ID, event(l))
		})
	})
	if err != nil {
		r.logger.Error("Failed to insert daily log", zap.Int("project_id", l.ProjectID), zap.Error(err))
		return err
	}

	r.logger.Info("Daily log inserted",
		zap.Int("log_id", l.ID),
		zap.Int("project_id", l.ProjectID),
		zap.String("date", l.Date),
	)
	return nil
}

func (r *DailyLogRepository) GetByID(ctx context.Context, id int) (*model.DailyLog, error) {
	query := `SELECT ` + dailyLogColumns + ` FROM daily_logs WHERE id = $1`

	var l *model.DailyLog
	err := otel.Traced(ctx, "daily_log.get", query, func(ctx context.Context) error {
		var err error
		l, err = scanDailyLog(r.db.QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		return nil, notFound(err, "daily log", id)
	}
	return l, nil
}

// ListByProject 新到旧；同一天按写入时间倒序。limit <= 0 表示不限
func (r *DailyLogRepository) ListByProject(ctx context.Context, projectID int, limit int) ([]model.DailyLog, error) {
	query := `
        SELECT ` + dailyLogColumns + `
        FROM daily_logs
        WHERE project_id = $1
        ORDER BY log_date DESC, created_at DESC, id DESC
        LIMIT NULLIF($2, 0)
    `
	if limit < 0 {
		limit = 0
	}

	logs := []model.DailyLog{}
	err := otel.Traced(ctx, "daily_log.list", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, projectID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			l, err := scanDailyLog(rows)
			if err != nil {
				return err
			}
			logs = append(logs, *l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *DailyLogRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM daily_logs WHERE id = $1`
	return otel.Traced(ctx, "daily_log.delete", query, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return notFound(pgx.ErrNoRows, "daily log", id)
		}
		return nil
	})
}
