package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sitelog/internal/model"
	"sitelog/pkg/otel"
)

type PersonnelRepository struct {
	db *pgxpool.Pool
}

func NewPersonnelRepository(db *pgxpool.Pool) *PersonnelRepository {
	return &PersonnelRepository{db: db}
}

const personnelColumns = `id, project_id, name, role, phone, company, license_no, photo_url, active, created_at`

func scanPersonnel(row pgx.Row) (*model.Personnel, error) {
	var p model.Personnel
	if err := row.Scan(
		&p.ID,
		&p.ProjectID,
		&p.Name,
		&p.Role,
		&p.Phone,
		&p.Company,
		&p.LicenseNo,
		&p.PhotoURL,
		&p.Active,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PersonnelRepository) Create(ctx context.Context, p *model.Personnel) error {
	query := `
        INSERT INTO personnel (project_id, name, role, phone, company, license_no, photo_url, active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at
    `
	return otel.Traced(ctx, "personnel.insert", query, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query,
			p.ProjectID, p.Name, p.Role, p.Phone, p.Company, p.LicenseNo, p.PhotoURL, p.Active,
		).Scan(&p.ID, &p.CreatedAt)
	})
}

func (r *PersonnelRepository) GetByID(ctx context.Context, id int) (*model.Personnel, error) {
	query := `SELECT ` + personnelColumns + ` FROM personnel WHERE id = $1`
	var p *model.Personnel
	err := otel.Traced(ctx, "personnel.get", query, func(ctx context.Context) error {
		var err error
		p, err = scanPersonnel(r.db.QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		return nil, notFound(err, "personnel", id)
	}
	return p, nil
}

func (r *PersonnelRepository) ListByProject(ctx context.Context, projectID int, activeOnly bool) ([]model.Personnel, error) {
	query := `
        SELECT ` + personnelColumns + `
        FROM personnel
        WHERE project_id = $1 AND (NOT $2 OR active)
        ORDER BY name, id
    `
	out := []model.Personnel{}
	err := otel.Traced(ctx, "personnel.list", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, projectID, activeOnly)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			p, err := scanPersonnel(rows)
			if err != nil {
				return err
			}
			out = append(out, *p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PersonnelRepository) Update(ctx context.Context, p *model.Personnel) error {
	query := `
        UPDATE personnel
        SET name = $2, role = $3, phone = $4, company = $5, license_no = $6, photo_url = $7, active = $8
        WHERE id = $1
    `
	return otel.Traced(ctx, "personnel.update", query, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Role, p.Phone, p.Company, p.LicenseNo, p.PhotoURL, p.Active)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return notFound(pgx.ErrNoRows, "personnel", p.ID)
		}
		return nil
	})
}

func (r *PersonnelRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM personnel WHERE id = $1`
	return otel.Traced(ctx, "personnel.delete", query, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return notFound(pgx.ErrNoRows, "personnel", id)
		}
		return nil
	})
}
