package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"sitelog/internal/model"
	"sitelog/pkg/otel"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

const projectColumns = `
        id, name, location, contractor, supervisor,
        to_char(start_date, 'YYYY-MM-DD'), contract_duration, contract_amount::float8, status,
        extensions, schedule_data, created_at, updated_at`

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	var extensions, schedule []byte
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Location,
		&p.Contractor,
		&p.Supervisor,
		&p.StartDate,
		&p.ContractDuration,
		&p.ContractAmount,
		&p.Status,
		&extensions,
		&schedule,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(extensions, &p.Extensions); err != nil {
		return nil, fmt.Errorf("project %d: bad extensions column: %w", p.ID, err)
	}
	if err := json.Unmarshal(schedule, &p.ScheduleData); err != nil {
		return nil, fmt.Errorf("project %d: bad schedule_data column: %w", p.ID, err)
	}
	return &p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *model.Project) error {
	query := `
        INSERT INTO projects (name, location, contractor, supervisor, start_date,
                              contract_duration, contract_amount, status)
        VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8)
        RETURNING id, created_at, updated_at
    `
	err := otel.Traced(ctx, "project.insert", query, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query,
			p.Name,
			p.Location,
			p.Contractor,
			p.Supervisor,
			p.StartDate,
			p.ContractDuration,
			p.ContractAmount,
			p.Status,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	})
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return err
	}
	if p.Extensions == nil {
		p.Extensions = []model.Extension{}
	}
	if p.ScheduleData == nil {
		p.ScheduleData = []model.SchedulePointRecord{}
	}

	r.logger.Info("Project inserted", zap.Int("project_id", p.ID))
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var p *model.Project
	err := otel.Traced(ctx, "project.get", query, func(ctx context.Context) error {
		var err error
		p, err = scanProject(r.db.QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		return nil, notFound(err, "project", id)
	}
	return p, nil
}

// List status 为空时返回全部
func (r *ProjectRepository) List(ctx context.Context, status string) ([]model.Project, error) {
	query := `
        SELECT ` + projectColumns + `
        FROM projects
        WHERE ($1 = '' OR status = $1)
        ORDER BY created_at DESC, id DESC
    `
	projects := []model.Project{}
	err := otel.Traced(ctx, "project.list", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, status)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			p, err := scanProject(rows)
			if err != nil {
				return err
			}
			projects = append(projects, *p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Update 只更新主档字段，展延与计划进度走各自的方法
func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	query := `
        UPDATE projects
        SET name = $2, location = $3, contractor = $4, supervisor = $5, start_date = $6::date,
            contract_duration = $7, contract_amount = $8, status = $9, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	err := otel.Traced(ctx, "project.update", query, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query,
			p.ID,
			p.Name,
			p.Location,
			p.Contractor,
			p.Supervisor,
			p.StartDate,
			p.ContractDuration,
			p.ContractAmount,
			p.Status,
		).Scan(&p.UpdatedAt)
	})
	return notFound(err, "project", p.ID)
}

func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM projects WHERE id = $1`
	return otel.Traced(ctx, "project.delete", query, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return notFound(pgx.ErrNoRows, "project", id)
		}
		return nil
	})
}

// ReplaceSchedule 整体替换计划进度，并在同一事务中写入 outbox 事件
func (r *ProjectRepository) ReplaceSchedule(ctx context.Context, id int, points []model.SchedulePointRecord, ev *Event) error {
	if points == nil {
		points = []model.SchedulePointRecord{}
	}
	body, err := json.Marshal(points)
	if err != nil {
		return err
	}

	query := `UPDATE projects SET schedule_data = $2, updated_at = NOW() WHERE id = $1`
	return otel.Traced(ctx, "project.replace_schedule", query, func(ctx context.Context) error {
		return inTx(ctx, r.db, func(tx pgx.Tx) error {
			tag, err := tx.Exec(ctx, query, id, body)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return notFound(pgx.ErrNoRows, "project", id)
			}
			return emit(ctx, tx, "project", id, ev)
		})
	})
}

// ExtensionMutation 在行锁内修改展延列表，返回新列表和要写入 outbox 的事件
type ExtensionMutation func(current []model.Extension) ([]model.Extension, *Event, error)

// MutateExtensions 以 SELECT ... FOR UPDATE 串行化并发的展延修改
func (r *ProjectRepository) MutateExtensions(ctx context.Context, id int, mutate ExtensionMutation) ([]model.Extension, error) {
	var result []model.Extension
	query := `SELECT extensions FROM projects WHERE id = $1 FOR UPDATE`

	err := otel.Traced(ctx, "project.mutate_extensions", query, func(ctx context.Context) error {
		return inTx(ctx, r.db, func(tx pgx.Tx) error {
			var raw []byte
			if err := tx.QueryRow(ctx, query, id).Scan(&raw); err != nil {
				return notFound(err, "project", id)
			}
			var current []model.Extension
			if err := json.Unmarshal(raw, &current); err != nil {
				return fmt.Errorf("project %d: bad extensions column: %w", id, err)
			}

			next, ev, err := mutate(current)
			if err != nil {
				return err
			}
			if next == nil {
				next = []model.Extension{}
			}
			body, err := json.Marshal(next)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `UPDATE projects SET extensions = $2, updated_at = NOW() WHERE id = $1`, id, body); err != nil {
				return err
			}
			if err := emit(ctx, tx, "project", id, ev); err != nil {
				return err
			}
			result = next
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
