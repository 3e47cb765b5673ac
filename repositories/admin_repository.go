package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hexisle/island-conquest/models"
)

var ErrAdminNotFound = errors.New("admin user not found")

type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}

type postgresAdminRepository struct {
	db *sql.DB
}

func NewPostgresAdminRepository(db *sql.DB) AdminRepository {
	return &postgresAdminRepository{db: db}
}

func (r *postgresAdminRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	query := `SELECT id, email, password_hash, created_at FROM admin_users WHERE email = $1`

	a := &models.AdminUser{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return a, nil
}
