package repository

import (
	"context"
	"errors"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
)

// ErrNotFound is returned when a write targets a row that does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a lifecycle precondition fails, e.g.
// confirming a match against a report that is no longer open.
var ErrConflict = errors.New("conflict")

// Collection names used by the change feed. Subscribers re-read the whole
// collection on every event, so the event payload is just the name.
const (
	CollectionLostItems  = "lost_items"
	CollectionFoundItems = "found_items"
	CollectionMatches    = "matches"
	CollectionUsers      = "users"
)

// LostItemRepository persists lost-item reports.
type LostItemRepository interface {
	Create(ctx context.Context, item *entity.LostItem) (string, error)
	Update(ctx context.Context, item *entity.LostItem) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]entity.LostItem, error)
}

// FoundItemRepository persists found-item reports.
type FoundItemRepository interface {
	Create(ctx context.Context, item *entity.FoundItem) (string, error)
	Update(ctx context.Context, item *entity.FoundItem) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]entity.FoundItem, error)
}

// MatchRepository persists lost/found associations. Confirm runs the whole
// match transition (insert match, flip both report statuses) as a single
// transaction: either all three writes land or none do.
type MatchRepository interface {
	Confirm(ctx context.Context, lostItemID, foundItemID string) (*entity.Match, error)
	UpdateStatus(ctx context.Context, id string, status entity.MatchStatus) error
	List(ctx context.Context) ([]entity.Match, error)
}

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
