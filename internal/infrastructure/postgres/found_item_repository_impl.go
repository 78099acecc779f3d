package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/domain/repository"
)

// FoundItemRepository stores found-item reports in Postgres and signals
// every successful write on the change feed.
type FoundItemRepository struct {
	pool *pgxpool.Pool
	feed repository.ChangeFeed
}

func NewFoundItemRepository(pool *pgxpool.Pool, feed repository.ChangeFeed) *FoundItemRepository {
	return &FoundItemRepository{pool: pool, feed: feed}
}

func (r *FoundItemRepository) Create(ctx context.Context, item *entity.FoundItem) (string, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO found_items (type, location, found_date, image, status, finder_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, item.Type.Value, string(item.Location), item.FoundDate, item.Image, string(item.Status), item.FinderID)

	if err := row.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return "", err
	}
	r.notify(ctx)
	return item.ID, nil
}

func (r *FoundItemRepository) Update(ctx context.Context, item *entity.FoundItem) error {
	item.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE found_items
		SET type = $1, location = $2, found_date = $3, image = $4, status = $5, updated_at = $6
		WHERE id = $7
	`, item.Type.Value, string(item.Location), item.FoundDate, item.Image, string(item.Status), item.UpdatedAt, item.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	r.notify(ctx)
	return nil
}

func (r *FoundItemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM found_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	r.notify(ctx)
	return nil
}

func (r *FoundItemRepository) List(ctx context.Context) ([]entity.FoundItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, type, location, found_date, image, status, finder_id, created_at, updated_at
		FROM found_items
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.FoundItem
	for rows.Next() {
		var it entity.FoundItem
		var typeValue, location, status string
		if err := rows.Scan(&it.ID, &typeValue, &location, &it.FoundDate, &it.Image,
			&status, &it.FinderID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		it.Type = entity.ItemTypeByValue(typeValue)
		it.Location = entity.Location(location)
		it.Status = entity.FoundStatus(status)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *FoundItemRepository) notify(ctx context.Context) {
	if r.feed != nil {
		_ = r.feed.Publish(ctx, repository.CollectionFoundItems)
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

var _ repository.FoundItemRepository = (*FoundItemRepository)(nil)
