package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/domain/repository"
)

func awaitUser(t *testing.T, store *UserStore, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestUserStoreLoadsAndFollowsProfileEdits(t *testing.T) {
	feed := newMemFeed()
	users := newMemUserRepo()
	u := entity.NewSeeker("laura@udea.edu.co", "Laura Gómez", "+573001112233", "1036945210")
	require.NoError(t, users.Create(context.Background(), u))

	store := NewUserStore(users, feed, nil)
	teardown, err := store.Initialize(context.Background(), u.ID)
	require.NoError(t, err)
	defer teardown()

	awaitUser(t, store, func() bool { return store.CurrentUser() != nil })
	assert.Equal(t, "Laura Gómez", store.CurrentUser().FullName)
	assert.False(t, store.Loading())
	assert.Empty(t, store.Err())

	// A profile edit elsewhere shows up after the feed tick.
	edited := *u
	edited.FullName = "Laura Gómez Restrepo"
	require.NoError(t, users.Update(context.Background(), &edited))
	require.NoError(t, feed.Publish(context.Background(), repository.CollectionUsers))

	awaitUser(t, store, func() bool {
		return store.CurrentUser().FullName == "Laura Gómez Restrepo"
	})
}

func TestUserStoreMissingUserSurfacesMessage(t *testing.T) {
	feed := newMemFeed()
	store := NewUserStore(newMemUserRepo(), feed, nil)

	teardown, err := store.Initialize(context.Background(), "missing")
	require.NoError(t, err)
	defer teardown()

	awaitUser(t, store, func() bool { return store.Err() != "" })
	assert.Equal(t, "Error al cargar la información del usuario", store.Err())
	assert.Nil(t, store.CurrentUser())
}

func TestUserStoreSetUserPrimesCache(t *testing.T) {
	store := NewUserStore(newMemUserRepo(), newMemFeed(), nil)
	store.SetUser(entity.NewFinder("andres@udea.edu.co", "Andrés Ríos"))

	got := store.CurrentUser()
	require.NotNil(t, got)
	assert.Equal(t, "Andrés Ríos", got.FullName)
	assert.False(t, store.Loading())
}
