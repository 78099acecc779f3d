package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
	feed repository.ChangeFeed
}

func NewUserRepository(pool *pgxpool.Pool, feed repository.ChangeFeed) *UserRepository {
	return &UserRepository{pool: pool, feed: feed}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, role, phone_number, id_number, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.FullName, string(u.Role), u.PhoneNumber, u.IDNumber, u.IsAdmin)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}
	r.notify(ctx)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *UserRepository) get(ctx context.Context, where string, arg any) (*entity.User, error) {
	u := &entity.User{}
	var role string

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, role, phone_number, id_number, is_admin, created_at, updated_at
		FROM users `+where, arg)

	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &role,
		&u.PhoneNumber, &u.IDNumber, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Role = entity.Role(role)
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, full_name = $3, role = $4,
		    phone_number = $5, id_number = $6, is_admin = $7, updated_at = $8
		WHERE id = $9
	`, u.Email, u.Password, u.FullName, string(u.Role), u.PhoneNumber, u.IDNumber,
		u.IsAdmin, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	r.notify(ctx)
	return nil
}

func (r *UserRepository) notify(ctx context.Context) {
	if r.feed != nil {
		_ = r.feed.Publish(ctx, repository.CollectionUsers)
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)
