package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itsnaaur/OpenLine/internal/models"
	"github.com/itsnaaur/OpenLine/internal/repository"
)

type AdminRepo struct{ db *pgxpool.Pool }

func NewAdminRepo(db *pgxpool.Pool) repository.AdminRepository { return &AdminRepo{db: db} }

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, string, error) {
	var a models.Admin
	var ph string
	err := r.db.QueryRow(ctx, `
		SELECT id, email, name, active, password_h, created_at, updated_at
		FROM admins WHERE email=$1`, email).
		Scan(&a.ID, &a.Email, &a.Name, &a.Active, &ph, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", nil
		}
		return nil, "", err
	}
	return &a, ph, nil
}

func (r *AdminRepo) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	var a models.Admin
	err := r.db.QueryRow(ctx, `
		SELECT id, email, name, active, created_at, updated_at
		FROM admins WHERE id=$1`, id).
		Scan(&a.ID, &a.Email, &a.Name, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
