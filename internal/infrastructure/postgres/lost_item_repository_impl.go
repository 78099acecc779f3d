package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/domain/repository"
)

// LostItemRepository stores lost-item reports in Postgres and signals
// every successful write on the change feed. The 1..2 locations cap is
// validated here and backed by a CHECK constraint in the schema.
type LostItemRepository struct {
	pool *pgxpool.Pool
	feed repository.ChangeFeed
}

func NewLostItemRepository(pool *pgxpool.Pool, feed repository.ChangeFeed) *LostItemRepository {
	return &LostItemRepository{pool: pool, feed: feed}
}

func (r *LostItemRepository) Create(ctx context.Context, item *entity.LostItem) (string, error) {
	if !entity.ValidateLostLocations(item.Locations) {
		return "", fmt.Errorf("lost item must name 1 to %d locations: %w", entity.MaxLostItemLocations, repository.ErrConflict)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO lost_items (type, locations, lost_date, description, image_url, status, seeker_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, item.Type.Value, locationStrings(item.Locations), item.LostDate, item.Description,
		item.ImageURL, string(item.Status), item.SeekerID)

	if err := row.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return "", err
	}
	r.notify(ctx)
	return item.ID, nil
}

func (r *LostItemRepository) Update(ctx context.Context, item *entity.LostItem) error {
	if !entity.ValidateLostLocations(item.Locations) {
		return fmt.Errorf("lost item must name 1 to %d locations: %w", entity.MaxLostItemLocations, repository.ErrConflict)
	}
	item.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE lost_items
		SET type = $1, locations = $2, lost_date = $3, description = $4,
		    image_url = $5, status = $6, updated_at = $7
		WHERE id = $8
	`, item.Type.Value, locationStrings(item.Locations), item.LostDate, item.Description,
		item.ImageURL, string(item.Status), item.UpdatedAt, item.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	r.notify(ctx)
	return nil
}

func (r *LostItemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM lost_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	r.notify(ctx)
	return nil
}

func (r *LostItemRepository) List(ctx context.Context) ([]entity.LostItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, type, locations, lost_date, description, image_url, status, seeker_id, created_at, updated_at
		FROM lost_items
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.LostItem
	for rows.Next() {
		var it entity.LostItem
		var typeValue, status string
		var locations []string
		if err := rows.Scan(&it.ID, &typeValue, &locations, &it.LostDate, &it.Description,
			&it.ImageURL, &status, &it.SeekerID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		it.Type = entity.ItemTypeByValue(typeValue)
		it.Locations = toLocations(locations)
		it.Status = entity.LostStatus(status)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *LostItemRepository) notify(ctx context.Context) {
	if r.feed != nil {
		_ = r.feed.Publish(ctx, repository.CollectionLostItems)
	}
}

func locationStrings(locations []entity.Location) []string {
	out := make([]string, len(locations))
	for i, l := range locations {
		out[i] = string(l)
	}
	return out
}

func toLocations(values []string) []entity.Location {
	out := make([]entity.Location, len(values))
	for i, v := range values {
		out[i] = entity.Location(v)
	}
	return out
}

var _ repository.LostItemRepository = (*LostItemRepository)(nil)
