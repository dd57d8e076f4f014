package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sitelog/internal/model"
	"sitelog/pkg/otel"
)

type SOPRepository struct {
	db *pgxpool.Pool
}

func NewSOPRepository(db *pgxpool.Pool) *SOPRepository {
	return &SOPRepository{db: db}
}

const sopColumns = `id, title, category, version, file_url, description, created_at`

func scanSOP(row pgx.Row) (*model.SOPDocument, error) {
	var d model.SOPDocument
	if err := row.Scan(&d.ID, &d.Title, &d.Category, &d.Version, &d.FileURL, &d.Description, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *SOPRepository) Create(ctx context.Context, d *model.SOPDocument) error {
	query := `
        INSERT INTO sop_documents (title, category, version, file_url, description)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	return otel.Traced(ctx, "sop.insert", query, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query, d.Title, d.Category, d.Version, d.FileURL, d.Description).
			Scan(&d.ID, &d.CreatedAt)
	})
}

func (r *SOPRepository) GetByID(ctx context.Context, id int) (*model.SOPDocument, error) {
	query := `SELECT ` + sopColumns + ` FROM sop_documents WHERE id = $1`
	var d *model.SOPDocument
	err := otel.Traced(ctx, "sop.get", query, func(ctx context.Context) error {
		var err error
		d, err = scanSOP(r.db.QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		return nil, notFound(err, "sop document", id)
	}
	return d, nil
}

// List category 为空时返回全部
func (r *SOPRepository) List(ctx context.Context, category string) ([]model.SOPDocument, error) {
	query := `
        SELECT ` + sopColumns + `
        FROM sop_documents
        WHERE ($1 = '' OR category = $1)
        ORDER BY category, title, id
    `
	out := []model.SOPDocument{}
	err := otel.Traced(ctx, "sop.list", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, category)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			d, err := scanSOP(rows)
			if err != nil {
				return err
			}
			out = append(out, *d)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SOPRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM sop_documents WHERE id = $1`
	return otel.Traced(ctx, "sop.delete", query, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return notFound(pgx.ErrNoRows, "sop document", id)
		}
		return nil
	})
}
