package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostudea/lostudea-api/internal/application"
	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/domain/repository"
	"github.com/lostudea/lostudea-api/internal/interface/middleware"
	"github.com/lostudea/lostudea-api/pkg/validation"
)

// stubBackend is a minimal in-memory stand-in for postgres plus the Redis
// change feed, just enough to drive the handlers end to end.
type stubBackend struct {
	mu      sync.Mutex
	seq     int
	lost    []entity.LostItem
	found   []entity.FoundItem
	matches []entity.Match
	users   map[string]entity.User
	subs    map[string][]chan struct{}
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		users: map[string]entity.User{},
		subs:  map[string][]chan struct{}{},
	}
}

// Real ids come from Postgres as UUIDs and some request bindings check
// that, so the stub allocates UUIDs too.
func (b *stubBackend) nextID() string {
	b.seq++
	return uuid.NewString()
}

func (b *stubBackend) Publish(_ context.Context, collection string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (b *stubBackend) Subscribe(_ context.Context, collection string) (<-chan struct{}, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{}, 1)
	b.subs[collection] = append(b.subs[collection], ch)
	return ch, func() {}, nil
}

type stubLostRepo struct{ b *stubBackend }

func (r stubLostRepo) Create(ctx context.Context, item *entity.LostItem) (string, error) {
	if !entity.ValidateLostLocations(item.Locations) {
		return "", repository.ErrConflict
	}
	r.b.mu.Lock()
	item.ID = r.b.nextID()
	r.b.lost = append(r.b.lost, *item)
	r.b.mu.Unlock()
	_ = r.b.Publish(ctx, repository.CollectionLostItems)
	return item.ID, nil
}

func (r stubLostRepo) Update(ctx context.Context, item *entity.LostItem) error {
	r.b.mu.Lock()
	for i := range r.b.lost {
		if r.b.lost[i].ID == item.ID {
			r.b.lost[i] = *item
			r.b.mu.Unlock()
			_ = r.b.Publish(ctx, repository.CollectionLostItems)
			return nil
		}
	}
	r.b.mu.Unlock()
	return repository.ErrNotFound
}

func (r stubLostRepo) Delete(ctx context.Context, id string) error {
	r.b.mu.Lock()
	for i := range r.b.lost {
		if r.b.lost[i].ID == id {
			r.b.lost = append(r.b.lost[:i], r.b.lost[i+1:]...)
			r.b.mu.Unlock()
			_ = r.b.Publish(ctx, repository.CollectionLostItems)
			return nil
		}
	}
	r.b.mu.Unlock()
	return repository.ErrNotFound
}

func (r stubLostRepo) List(context.Context) ([]entity.LostItem, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	out := make([]entity.LostItem, len(r.b.lost))
	copy(out, r.b.lost)
	return out, nil
}

type stubFoundRepo struct{ b *stubBackend }

func (r stubFoundRepo) Create(ctx context.Context, item *entity.FoundItem) (string, error) {
	r.b.mu.Lock()
	item.ID = r.b.nextID()
	r.b.found = append(r.b.found, *item)
	r.b.mu.Unlock()
	_ = r.b.Publish(ctx, repository.CollectionFoundItems)
	return item.ID, nil
}

func (r stubFoundRepo) Update(ctx context.Context, item *entity.FoundItem) error {
	r.b.mu.Lock()
	for i := range r.b.found {
		if r.b.found[i].ID == item.ID {
			r.b.found[i] = *item
			r.b.mu.Unlock()
			_ = r.b.Publish(ctx, repository.CollectionFoundItems)
			return nil
		}
	}
	r.b.mu.Unlock()
	return repository.ErrNotFound
}

func (r stubFoundRepo) Delete(ctx context.Context, id string) error {
	r.b.mu.Lock()
	for i := range r.b.found {
		if r.b.found[i].ID == id {
			r.b.found = append(r.b.found[:i], r.b.found[i+1:]...)
			r.b.mu.Unlock()
			_ = r.b.Publish(ctx, repository.CollectionFoundItems)
			return nil
		}
	}
	r.b.mu.Unlock()
	return repository.ErrNotFound
}

func (r stubFoundRepo) List(context.Context) ([]entity.FoundItem, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	out := make([]entity.FoundItem, len(r.b.found))
	copy(out, r.b.found)
	return out, nil
}

type stubMatchRepo struct{ b *stubBackend }

func (r stubMatchRepo) Confirm(ctx context.Context, lostItemID, foundItemID string) (*entity.Match, error) {
	r.b.mu.Lock()
	var lost *entity.LostItem
	for i := range r.b.lost {
		if r.b.lost[i].ID == lostItemID {
			lost = &r.b.lost[i]
		}
	}
	var found *entity.FoundItem
	for i := range r.b.found {
		if r.b.found[i].ID == foundItemID {
			found = &r.b.found[i]
		}
	}
	if lost == nil || found == nil {
		r.b.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	if lost.Status != entity.LostStatusSearching || found.Status != entity.FoundStatusPending {
		r.b.mu.Unlock()
		return nil, repository.ErrConflict
	}
	match := entity.Match{
		ID:          r.b.nextID(),
		LostItemID:  lostItemID,
		FoundItemID: foundItemID,
		Status:      entity.MatchStatusPending,
		MatchDate:   time.Now().UTC(),
	}
	r.b.matches = append(r.b.matches, match)
	lost.Status = entity.LostStatusMatched
	found.Status = entity.FoundStatusMatched
	r.b.mu.Unlock()

	_ = r.b.Publish(ctx, repository.CollectionMatches)
	_ = r.b.Publish(ctx, repository.CollectionLostItems)
	_ = r.b.Publish(ctx, repository.CollectionFoundItems)
	return &match, nil
}

func (r stubMatchRepo) UpdateStatus(ctx context.Context, id string, status entity.MatchStatus) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	for i := range r.b.matches {
		if r.b.matches[i].ID == id {
			r.b.matches[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r stubMatchRepo) List(context.Context) ([]entity.Match, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	out := make([]entity.Match, len(r.b.matches))
	copy(out, r.b.matches)
	return out, nil
}

type stubUserRepo struct{ b *stubBackend }

func (r stubUserRepo) Create(_ context.Context, u *entity.User) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", len(r.b.users)+1)
	}
	r.b.users[u.ID] = *u
	return nil
}

func (r stubUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	u, ok := r.b.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r stubUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	for _, u := range r.b.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r stubUserRepo) Update(_ context.Context, u *entity.User) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if _, ok := r.b.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	r.b.users[u.ID] = *u
	return nil
}

// asUser replaces the auth middleware in tests: it injects the identity
// the way middleware.Auth would after validating a session.
func asUser(userID string, isAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserIDKey, userID)
		c.Set(middleware.CtxIsAdminKey, isAdmin)
		c.Next()
	}
}

type testEnv struct {
	router  *gin.Engine
	store   *application.ItemStore
	backend *stubBackend
	user    string
	admin   bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	b := newStubBackend()
	lifecycle := application.NewMatchLifecycle(stubMatchRepo{b}, stubUserRepo{b}, nil, nil)
	store := application.NewItemStore(stubLostRepo{b}, stubFoundRepo{b}, stubMatchRepo{b}, b, lifecycle, nil, nil)
	userSvc := application.NewUserService(stubUserRepo{b}, nil, nil, nil)

	teardown, err := store.Initialize(context.Background())
	require.NoError(t, err)
	t.Cleanup(teardown)
	awaitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, store.AwaitSync(awaitCtx, func() bool { return !store.Loading() }))

	env := &testEnv{store: store, backend: b}

	h := NewReportHandler(store, userSvc, application.NewImageUploader(nil, ""), application.NewReportIndex(nil, "", "", nil), nil)
	r := gin.New()
	auth := r.Group("/api", func(c *gin.Context) {
		asUser(env.user, env.admin)(c)
	})
	auth.POST("/reports/lost", h.CreateLost)
	auth.GET("/reports/lost", h.ListLost)
	auth.GET("/reports/lost/:id/candidates", h.Candidates)
	auth.POST("/reports/lost/:id/confirm", h.ConfirmMatch)
	auth.POST("/reports/found", h.CreateFound)
	auth.GET("/reports/found", h.ListFound)
	r.GET("/api/catalogs", h.Catalogs)
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) await(t *testing.T, pred func() bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.store.AwaitSync(ctx, pred))
}

func TestCatalogsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/catalogs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			ItemTypes []entity.ItemType `json:"item_types"`
			Locations []string          `json:"locations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.ItemTypes, 16)
	assert.Len(t, resp.Data.Locations, 30)
}

func TestCreateLostRequiresSeeker(t *testing.T) {
	env := newTestEnv(t)
	finder := entity.NewFinder("andres@udea.edu.co", "Andrés Ríos")
	require.NoError(t, stubUserRepo{env.backend}.Create(context.Background(), finder))
	env.user = finder.ID

	payload := gin.H{
		"type":        "celular",
		"locations":   []string{string(entity.LocationBloque18)},
		"lost_date":   time.Now().Format(time.RFC3339),
		"description": "Celular negro",
	}
	w := env.do(t, http.MethodPost, "/api/reports/lost", payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// After completing registration the same request goes through.
	require.True(t, finder.PromoteToSeeker("+573001112233", "1036945210"))
	require.NoError(t, stubUserRepo{env.backend}.Update(context.Background(), finder))

	w = env.do(t, http.MethodPost, "/api/reports/lost", payload)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestReportAndMatchFlow(t *testing.T) {
	env := newTestEnv(t)
	seeker := entity.NewSeeker("laura@udea.edu.co", "Laura Gómez", "+573001112233", "1036945210")
	require.NoError(t, stubUserRepo{env.backend}.Create(context.Background(), seeker))
	env.user = seeker.ID

	w := env.do(t, http.MethodPost, "/api/reports/found", gin.H{
		"type":       "celular",
		"location":   string(entity.LocationBloque19),
		"found_date": time.Now().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	foundID := created.Data.ID

	w = env.do(t, http.MethodPost, "/api/reports/lost", gin.H{
		"type":        "celular",
		"locations":   []string{string(entity.LocationBloque18), string(entity.LocationBloque19)},
		"lost_date":   time.Now().Format(time.RFC3339),
		"description": "Celular negro con forro azul",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	lostID := created.Data.ID

	env.await(t, func() bool {
		return env.store.LostItemByID(lostID) != nil && env.store.FoundItemByID(foundID) != nil
	})

	w = env.do(t, http.MethodGet, "/api/reports/lost/"+lostID+"/candidates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var candidates struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &candidates))
	require.Len(t, candidates.Data, 1)
	assert.Equal(t, foundID, candidates.Data[0].ID)

	w = env.do(t, http.MethodPost, "/api/reports/lost/"+lostID+"/confirm", gin.H{
		"found_item_id": foundID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// The matched report is no longer a candidate anywhere.
	env.await(t, func() bool {
		f := env.store.FoundItemByID(foundID)
		return f != nil && f.Status == entity.FoundStatusMatched
	})
	w = env.do(t, http.MethodGet, "/api/reports/found", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	assert.Empty(t, pending.Data)

	// Confirming again conflicts.
	w = env.do(t, http.MethodPost, "/api/reports/lost/"+lostID+"/confirm", gin.H{
		"found_item_id": foundID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestConfirmRejectsForeignReport(t *testing.T) {
	env := newTestEnv(t)
	owner := entity.NewSeeker("laura@udea.edu.co", "Laura Gómez", "+573001112233", "1036945210")
	require.NoError(t, stubUserRepo{env.backend}.Create(context.Background(), owner))
	env.user = owner.ID

	w := env.do(t, http.MethodPost, "/api/reports/lost", gin.H{
		"type":        "llaves",
		"locations":   []string{string(entity.LocationBloque8)},
		"lost_date":   time.Now().Format(time.RFC3339),
		"description": "Llaves con llavero rojo",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	lostID := created.Data.ID
	env.await(t, func() bool { return env.store.LostItemByID(lostID) != nil })

	env.user = "someone-else"
	w = env.do(t, http.MethodGet, "/api/reports/lost/"+lostID+"/candidates", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
