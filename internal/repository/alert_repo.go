package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"sitelog/internal/model"
	"sitelog/pkg/otel"
)

type AlertRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAlertRepository(db *pgxpool.Pool, logger *zap.Logger) *AlertRepository {
	return &AlertRepository{db: db, logger: logger}
}

// Insert 同一工程同一天同一类型只保留一条；重复投递时 created=false
func (r *AlertRepository) Insert(ctx context.Context, a *model.ProgressAlert) (created bool, err error) {
	query := `
        INSERT INTO progress_alerts (project_id, kind, alert_date, planned_progress, actual_progress,
                                     remaining_days, message)
        VALUES ($1, $2, $3::date, $4, $5, $6, $7)
        ON CONFLICT (project_id, kind, alert_date) DO NOTHING
        RETURNING id, created_at
    `
	err = otel.Traced(ctx, "progress_alert.insert", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query,
			a.ProjectID, a.Kind, a.Date, a.PlannedProgress, a.ActualProgress, a.RemainingDays, a.Message,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		if rows.Next() {
			created = true
			if err := rows.Scan(&a.ID, &a.CreatedAt); err != nil {
				return err
			}
		}
		return rows.Err()
	})
	if err != nil {
		r.logger.Error("Failed to insert progress alert", zap.Int("project_id", a.ProjectID), zap.Error(err))
		return false, err
	}
	return created, nil
}

// ListByProject 新到旧
func (r *AlertRepository) ListByProject(ctx context.Context, projectID int, limit int) ([]model.ProgressAlert, error) {
	query := `
        SELECT id, project_id, kind, to_char(alert_date, 'YYYY-MM-DD'), planned_progress, actual_progress,
               remaining_days, message, created_at
        FROM progress_alerts
        WHERE project_id = $1
        ORDER BY alert_date DESC, id DESC
        LIMIT NULLIF($2, 0)
    `
	if limit < 0 {
		limit = 0
	}
	out := []model.ProgressAlert{}
	err := otel.Traced(ctx, "progress_alert.list", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, projectID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var a model.ProgressAlert
			if err := rows.Scan(&a.ID, &a.ProjectID, &a.Kind, &a.Date, &a.PlannedProgress, &a.ActualProgress,
				&a.RemainingDays, &a.Message, &a.CreatedAt); err != nil {
				return err
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
