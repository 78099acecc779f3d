package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/domain/repository"
)

// MatchRepository stores lost/found associations in Postgres.
type MatchRepository struct {
	pool *pgxpool.Pool
	feed repository.ChangeFeed
}

func NewMatchRepository(pool *pgxpool.Pool, feed repository.ChangeFeed) *MatchRepository {
	return &MatchRepository{pool: pool, feed: feed}
}

// Confirm runs the full match transition in one transaction: lock both
// reports, check they are still open, insert the match, flip both
// statuses. A failure at any step rolls everything back, so a match record
// can never exist alongside un-flipped report statuses.
func (r *MatchRepository) Confirm(ctx context.Context, lostItemID, foundItemID string) (*entity.Match, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var lostStatus string
	err = tx.QueryRow(ctx,
		`SELECT status FROM lost_items WHERE id = $1 FOR UPDATE`, lostItemID,
	).Scan(&lostStatus)
	if isNoRows(err) {
		return nil, fmt.Errorf("lost item %s: %w", lostItemID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if entity.LostStatus(lostStatus) != entity.LostStatusSearching {
		return nil, fmt.Errorf("lost item %s is %s, not %s: %w",
			lostItemID, lostStatus, entity.LostStatusSearching, repository.ErrConflict)
	}

	var foundStatus string
	err = tx.QueryRow(ctx,
		`SELECT status FROM found_items WHERE id = $1 FOR UPDATE`, foundItemID,
	).Scan(&foundStatus)
	if isNoRows(err) {
		return nil, fmt.Errorf("found item %s: %w", foundItemID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if entity.FoundStatus(foundStatus) != entity.FoundStatusPending {
		return nil, fmt.Errorf("found item %s is %s, not %s: %w",
			foundItemID, foundStatus, entity.FoundStatusPending, repository.ErrConflict)
	}

	match := &entity.Match{
		LostItemID:  lostItemID,
		FoundItemID: foundItemID,
		Status:      entity.MatchStatusPending,
		MatchDate:   time.Now().UTC(),
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO matches (lost_item_id, found_item_id, status, match_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, match.LostItemID, match.FoundItemID, string(match.Status), match.MatchDate).Scan(&match.ID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE lost_items SET status = $1, updated_at = now() WHERE id = $2`,
		string(entity.LostStatusMatched), lostItemID,
	); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE found_items SET status = $1, updated_at = now() WHERE id = $2`,
		string(entity.FoundStatusMatched), foundItemID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.notify(ctx, repository.CollectionMatches)
	r.notify(ctx, repository.CollectionLostItems)
	r.notify(ctx, repository.CollectionFoundItems)
	return match, nil
}

func (r *MatchRepository) UpdateStatus(ctx context.Context, id string, status entity.MatchStatus) error {
	res, err := r.pool.Exec(ctx,
		`UPDATE matches SET status = $1 WHERE id = $2`, string(status), id,
	)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	r.notify(ctx, repository.CollectionMatches)
	return nil
}

func (r *MatchRepository) List(ctx context.Context) ([]entity.Match, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lost_item_id, found_item_id, status, match_date
		FROM matches
		ORDER BY match_date
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []entity.Match
	for rows.Next() {
		var m entity.Match
		var status string
		if err := rows.Scan(&m.ID, &m.LostItemID, &m.FoundItemID, &status, &m.MatchDate); err != nil {
			return nil, err
		}
		m.Status = entity.MatchStatus(status)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *MatchRepository) notify(ctx context.Context, collection string) {
	if r.feed != nil {
		_ = r.feed.Publish(ctx, collection)
	}
}

var _ repository.MatchRepository = (*MatchRepository)(nil)
