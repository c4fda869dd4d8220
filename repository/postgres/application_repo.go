package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/followups/domain"
	"github.com/fastygo/followups/repository"
)

type applicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository returns a read-only view of the applications table.
func NewApplicationRepository(pool *pgxpool.Pool) repository.ApplicationRepository {
	return &applicationRepository{pool: pool}
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	const query = `SELECT id::text, tenant_id::text FROM applications WHERE id = $1`

	var app domain.Application
	if err := r.pool.QueryRow(ctx, query, id).Scan(&app.ID, &app.TenantID); err != nil {
		if isMissing(err) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}
