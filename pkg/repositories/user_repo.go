package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/database"
	"github.com/meridianlabs/backoffice/pkg/models"
)

// UserFilter narrows List results. Zero values mean "no filter".
type UserFilter struct {
	Role   pkg.UserRole
	Status pkg.UserStatus
	Page   int
	Size   int
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int, error)
	Update(ctx context.Context, user models.User) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status pkg.UserStatus) error
}

type UserRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, u models.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Name, u.Role, u.Status, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, email, name, role, status, created_at, updated_at
		FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepositoryImpl) List(ctx context.Context, f UserFilter) ([]models.User, int, error) {
	page, size := normalizePage(f.Page, f.Size)
	offset := (page - 1) * size

	rows, err := r.db.Query(ctx, `
		SELECT id, email, name, role, status, created_at, updated_at
		FROM users
		WHERE ($1 = '' OR role = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		string(f.Role), string(f.Status), size, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM users
		WHERE ($1 = '' OR role = $1)
		  AND ($2 = '' OR status = $2)`,
		string(f.Role), string(f.Status),
	).Scan(&total)
	return users, total, err
}

func (r *UserRepositoryImpl) Update(ctx context.Context, u models.User) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET email = $1, name = $2, role = $3, updated_at = $4 WHERE id = $5`,
		u.Email, u.Name, u.Role, time.Now(), u.ID,
	)
	return err
}

func (r *UserRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status pkg.UserStatus) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	return err
}
