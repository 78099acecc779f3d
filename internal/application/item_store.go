package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/domain/repository"
)

// ErrNotFound is returned when an update or delete targets an id that is
// absent from the current local cache. Lookups are cache-only, never a
// backend read.
var ErrNotFound = repository.ErrNotFound

// User-facing messages surfaced through Err(). The structured error still
// flows back to the immediate caller.
const (
	msgLoadFailed   = "Error al cargar los objetos"
	msgSaveFailed   = "Error al guardar el objeto"
	msgDeleteFailed = "Error al eliminar el objeto"
	msgNotFound     = "El objeto no existe"
	msgMatchFailed  = "Error al confirmar la coincidencia"
)

// LostItemInput carries the fields of a lost-item report form.
type LostItemInput struct {
	Type        string
	Locations   []entity.Location
	LostDate    time.Time
	Description string
	ImageURL    string
	SeekerID    string
}

// FoundItemInput carries the fields of a found-item report form.
type FoundItemInput struct {
	Type      string
	Location  entity.Location
	FoundDate time.Time
	Image     string
	FinderID  string
}

// LostItemPatch is a partial update; nil fields are left untouched. A nil
// Locations slice keeps the current zones.
type LostItemPatch struct {
	Type        *string
	Locations   []entity.Location
	LostDate    *time.Time
	Description *string
	ImageURL    *string
	Status      *entity.LostStatus
}

// FoundItemPatch is a partial update; nil fields are left untouched.
type FoundItemPatch struct {
	Type      *string
	Location  *entity.Location
	FoundDate *time.Time
	Image     *string
	Status    *entity.FoundStatus
}

// ItemStore is the in-process source of truth for lost items, found items,
// and matches. Mutating calls write through to the backing store and
// return only a confirmation of the write; the caches are updated
// exclusively by snapshot deliveries from the change feed, so a caller who
// mutates and immediately reads a getter may observe stale data until the
// next delivery. Use AwaitSync when read-after-write consistency matters.
type ItemStore struct {
	lostRepo  repository.LostItemRepository
	foundRepo repository.FoundItemRepository
	matchRepo repository.MatchRepository
	feed      repository.ChangeFeed
	lifecycle *MatchLifecycle
	index     *ReportIndex
	logger    *logrus.Logger

	mu         sync.RWMutex
	lostItems  []entity.LostItem
	foundItems []entity.FoundItem
	matches    []entity.Match
	pending    int
	errMsg     string
	version    uint64
	syncCh     chan struct{}
}

func NewItemStore(
	lostRepo repository.LostItemRepository,
	foundRepo repository.FoundItemRepository,
	matchRepo repository.MatchRepository,
	feed repository.ChangeFeed,
	lifecycle *MatchLifecycle,
	index *ReportIndex,
	logger *logrus.Logger,
) *ItemStore {
	return &ItemStore{
		lostRepo:  lostRepo,
		foundRepo: foundRepo,
		matchRepo: matchRepo,
		feed:      feed,
		lifecycle: lifecycle,
		index:     index,
		logger:    logger,
		syncCh:    make(chan struct{}),
	}
}

// Initialize opens one feed subscription per collection and starts the
// watcher goroutines that keep the caches synced. It returns a composite
// teardown that closes all three subscriptions; the owner MUST call it on
// shutdown or the subscriptions leak. Tearing down the first set of
// subscriptions from an earlier Initialize cannot corrupt the cache: every
// delivery replaces the collection wholesale, so duplicate watchers are
// redundant, never additive.
func (s *ItemStore) Initialize(ctx context.Context) (func(), error) {
	sources := []struct {
		collection string
		reload     func(context.Context) error
	}{
		{repository.CollectionLostItems, s.reloadLost},
		{repository.CollectionFoundItems, s.reloadFound},
		{repository.CollectionMatches, s.reloadMatches},
	}

	s.mu.Lock()
	s.pending = len(sources)
	s.mu.Unlock()

	done := make(chan struct{})
	var wg sync.WaitGroup
	cancels := make([]func(), 0, len(sources))

	for _, src := range sources {
		ticks, cancel, err := s.feed.Subscribe(ctx, src.collection)
		if err != nil {
			for _, c := range cancels {
				c()
			}
			close(done)
			s.fail(msgLoadFailed, err)
			return nil, fmt.Errorf("subscribing to %s: %w", src.collection, err)
		}
		cancels = append(cancels, cancel)
		wg.Add(1)
		go s.watch(ctx, src.collection, src.reload, ticks, done, &wg)
	}

	var once sync.Once
	teardown := func() {
		once.Do(func() {
			close(done)
			for _, c := range cancels {
				c()
			}
			wg.Wait()
		})
	}
	return teardown, nil
}

func (s *ItemStore) watch(ctx context.Context, collection string, reload func(context.Context) error, ticks <-chan struct{}, done <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	// Eager initial snapshot; afterwards only the feed drives reloads.
	s.deliver(ctx, collection, reload)
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			s.deliver(ctx, collection, reload)
		}
	}
}

// deliver applies one snapshot. It always wakes AwaitSync waiters, even on
// a failed reload, so callers blocked on a predicate can observe Err().
func (s *ItemStore) deliver(ctx context.Context, collection string, reload func(context.Context) error) {
	err := reload(ctx)

	s.mu.Lock()
	if s.pending > 0 {
		s.pending--
	}
	if err != nil {
		s.errMsg = msgLoadFailed
	} else {
		s.version++
	}
	close(s.syncCh)
	s.syncCh = make(chan struct{})
	s.mu.Unlock()

	if err != nil && s.logger != nil {
		s.logger.WithError(err).WithField("collection", collection).Error("snapshot reload failed")
	}
}

func (s *ItemStore) reloadLost(ctx context.Context) error {
	items, err := s.lostRepo.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lostItems = items
	s.mu.Unlock()
	return nil
}

func (s *ItemStore) reloadFound(ctx context.Context) error {
	items, err := s.foundRepo.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.foundItems = items
	s.mu.Unlock()
	return nil
}

func (s *ItemStore) reloadMatches(ctx context.Context) error {
	matches, err := s.matchRepo.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.matches = matches
	s.mu.Unlock()
	return nil
}

// Loading reports whether any collection is still waiting for its first
// snapshot since the last Initialize.
func (s *ItemStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

// Err returns the current user-facing error message, empty when the last
// operation succeeded.
func (s *ItemStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// AwaitSync blocks until a snapshot delivery makes pred return true, or
// ctx expires. Meant for callers (and tests) that need read-after-write
// consistency instead of ad-hoc polling.
func (s *ItemStore) AwaitSync(ctx context.Context, pred func() bool) error {
	for {
		s.mu.RLock()
		ch := s.syncCh
		s.mu.RUnlock()

		if pred() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// AddLostItem persists a new lost report with status searching and returns
// the backend-allocated id. The cache is not updated here; the new report
// appears on the next snapshot delivery.
func (s *ItemStore) AddLostItem(ctx context.Context, in LostItemInput) (string, error) {
	item := &entity.LostItem{
		Type:        entity.ItemTypeByValue(in.Type),
		Locations:   in.Locations,
		LostDate:    in.LostDate,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Status:      entity.LostStatusSearching,
		SeekerID:    in.SeekerID,
	}
	id, err := s.lostRepo.Create(ctx, item)
	if err != nil {
		s.fail(msgSaveFailed, err)
		return "", fmt.Errorf("creating lost item: %w", err)
	}
	s.clearErr()
	_ = s.index.IndexLost(ctx, item)
	return id, nil
}

// AddFoundItem persists a new found report with status pending and returns
// the backend-allocated id.
func (s *ItemStore) AddFoundItem(ctx context.Context, in FoundItemInput) (string, error) {
	item := &entity.FoundItem{
		Type:      entity.ItemTypeByValue(in.Type),
		Location:  in.Location,
		FoundDate: in.FoundDate,
		Image:     in.Image,
		Status:    entity.FoundStatusPending,
		FinderID:  in.FinderID,
	}
	id, err := s.foundRepo.Create(ctx, item)
	if err != nil {
		s.fail(msgSaveFailed, err)
		return "", fmt.Errorf("creating found item: %w", err)
	}
	s.clearErr()
	_ = s.index.IndexFound(ctx, item)
	return id, nil
}

// UpdateLostItem merges the patch onto the cached report and writes the
// merged row back. Racing updates on the same id are not serialized; the
// backend's last write wins.
func (s *ItemStore) UpdateLostItem(ctx context.Context, id string, patch LostItemPatch) error {
	current := s.LostItemByID(id)
	if current == nil {
		s.fail(msgNotFound, ErrNotFound)
		return fmt.Errorf("lost item %s: %w", id, ErrNotFound)
	}

	merged := *current
	if patch.Type != nil {
		merged.Type = entity.ItemTypeByValue(*patch.Type)
	}
	if patch.Locations != nil {
		merged.Locations = patch.Locations
	}
	if patch.LostDate != nil {
		merged.LostDate = *patch.LostDate
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		merged.ImageURL = *patch.ImageURL
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}

	if err := s.lostRepo.Update(ctx, &merged); err != nil {
		s.fail(msgSaveFailed, err)
		return fmt.Errorf("updating lost item %s: %w", id, err)
	}
	s.clearErr()
	_ = s.index.IndexLost(ctx, &merged)
	return nil
}

// UpdateFoundItem merges the patch onto the cached report and writes the
// merged row back.
func (s *ItemStore) UpdateFoundItem(ctx context.Context, id string, patch FoundItemPatch) error {
	current := s.FoundItemByID(id)
	if current == nil {
		s.fail(msgNotFound, ErrNotFound)
		return fmt.Errorf("found item %s: %w", id, ErrNotFound)
	}

	merged := *current
	if patch.Type != nil {
		merged.Type = entity.ItemTypeByValue(*patch.Type)
	}
	if patch.Location != nil {
		merged.Location = *patch.Location
	}
	if patch.FoundDate != nil {
		merged.FoundDate = *patch.FoundDate
	}
	if patch.Image != nil {
		merged.Image = *patch.Image
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}

	if err := s.foundRepo.Update(ctx, &merged); err != nil {
		s.fail(msgSaveFailed, err)
		return fmt.Errorf("updating found item %s: %w", id, err)
	}
	s.clearErr()
	_ = s.index.IndexFound(ctx, &merged)
	return nil
}

// DeleteLostItem hard-deletes the backing record. No tombstone.
func (s *ItemStore) DeleteLostItem(ctx context.Context, id string) error {
	if s.LostItemByID(id) == nil {
		s.fail(msgNotFound, ErrNotFound)
		return fmt.Errorf("lost item %s: %w", id, ErrNotFound)
	}
	if err := s.lostRepo.Delete(ctx, id); err != nil {
		s.fail(msgDeleteFailed, err)
		return fmt.Errorf("deleting lost item %s: %w", id, err)
	}
	s.clearErr()
	_ = s.index.RemoveLost(ctx, id)
	return nil
}

// DeleteFoundItem hard-deletes the backing record.
func (s *ItemStore) DeleteFoundItem(ctx context.Context, id string) error {
	if s.FoundItemByID(id) == nil {
		s.fail(msgNotFound, ErrNotFound)
		return fmt.Errorf("found item %s: %w", id, ErrNotFound)
	}
	if err := s.foundRepo.Delete(ctx, id); err != nil {
		s.fail(msgDeleteFailed, err)
		return fmt.Errorf("deleting found item %s: %w", id, err)
	}
	s.clearErr()
	_ = s.index.RemoveFound(ctx, id)
	return nil
}

// ConfirmMatch runs the match lifecycle for a lost/found pair. Both ids
// must be present in the cache; the transition itself re-checks both rows
// transactionally against the backing store.
func (s *ItemStore) ConfirmMatch(ctx context.Context, lostItemID, foundItemID string) (*entity.Match, error) {
	lost := s.LostItemByID(lostItemID)
	if lost == nil {
		s.fail(msgNotFound, ErrNotFound)
		return nil, fmt.Errorf("lost item %s: %w", lostItemID, ErrNotFound)
	}
	found := s.FoundItemByID(foundItemID)
	if found == nil {
		s.fail(msgNotFound, ErrNotFound)
		return nil, fmt.Errorf("found item %s: %w", foundItemID, ErrNotFound)
	}

	match, err := s.lifecycle.Confirm(ctx, lost, found)
	if err != nil {
		s.fail(msgMatchFailed, err)
		return nil, fmt.Errorf("confirming match: %w", err)
	}
	s.clearErr()

	lost.Status = entity.LostStatusMatched
	found.Status = entity.FoundStatusMatched
	_ = s.index.IndexLost(ctx, lost)
	_ = s.index.IndexFound(ctx, found)
	return match, nil
}

// LostItems returns a copy of the cached lost reports.
func (s *ItemStore) LostItems() []entity.LostItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.LostItem, len(s.lostItems))
	copy(out, s.lostItems)
	return out
}

// FoundItems returns a copy of the cached found reports.
func (s *ItemStore) FoundItems() []entity.FoundItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.FoundItem, len(s.foundItems))
	copy(out, s.foundItems)
	return out
}

// LostItemByID returns a copy of the cached report, or nil when absent.
func (s *ItemStore) LostItemByID(id string) *entity.LostItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.lostItems {
		if it.ID == id {
			item := it
			return &item
		}
	}
	return nil
}

// FoundItemByID returns a copy of the cached report, or nil when absent.
func (s *ItemStore) FoundItemByID(id string) *entity.FoundItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.foundItems {
		if it.ID == id {
			item := it
			return &item
		}
	}
	return nil
}

// LostItemsByUser filters the cache by seeker. No I/O.
func (s *ItemStore) LostItemsByUser(userID string) []entity.LostItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.LostItem
	for _, it := range s.lostItems {
		if it.SeekerID == userID {
			out = append(out, it)
		}
	}
	return out
}

// FoundItemsByUser filters the cache by finder. No I/O.
func (s *ItemStore) FoundItemsByUser(userID string) []entity.FoundItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.FoundItem
	for _, it := range s.foundItems {
		if it.FinderID == userID {
			out = append(out, it)
		}
	}
	return out
}

// AllMatches returns a copy of every cached match.
func (s *ItemStore) AllMatches() []entity.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Match, len(s.matches))
	copy(out, s.matches)
	return out
}

// MatchesByLostItemID filters the cached matches. No I/O.
func (s *ItemStore) MatchesByLostItemID(lostItemID string) []entity.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.Match
	for _, m := range s.matches {
		if m.LostItemID == lostItemID {
			out = append(out, m)
		}
	}
	return out
}

// MatchByFoundItemID returns the cached match referencing a found report,
// or nil. A found report participates in at most one match.
func (s *ItemStore) MatchByFoundItemID(foundItemID string) *entity.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.matches {
		if m.FoundItemID == foundItemID {
			match := m
			return &match
		}
	}
	return nil
}

// Matches returns the found-item candidates for a lost report, straight
// from the cache. An id absent from the cache yields no candidates rather
// than an error.
func (s *ItemStore) Matches(lostItemID string) []entity.FoundItem {
	lost := s.LostItemByID(lostItemID)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return CandidateMatches(lost, s.foundItems)
}

func (s *ItemStore) fail(msg string, err error) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
	if s.logger != nil {
		s.logger.WithError(err).Error(msg)
	}
}

func (s *ItemStore) clearErr() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}
