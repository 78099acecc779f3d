package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/domain/repository"
	"github.com/lostudea/lostudea-api/pkg/mailer"
)

type failingMailQueue struct{}

func (failingMailQueue) PublishJSON(context.Context, any) error {
	return errors.New("queue down")
}

func lifecycleFixture(t *testing.T, mail MailQueue) (*MatchLifecycle, *memBackend, string, string) {
	t.Helper()
	b := newMemBackend()
	users := newMemUserRepo()
	require.NoError(t, users.Create(context.Background(), &entity.User{
		ID:       "seeker-1",
		Email:    "laura@udea.edu.co",
		FullName: "Laura Gómez",
		Role:     entity.RoleSeeker,
	}))

	b.lost = append(b.lost, entity.LostItem{
		ID:       "lost-1",
		Type:     entity.ItemTypeByValue("celular"),
		Status:   entity.LostStatusSearching,
		SeekerID: "seeker-1",
	})
	b.found = append(b.found, entity.FoundItem{
		ID:       "found-1",
		Type:     entity.ItemTypeByValue("celular"),
		Location: entity.LocationBloque18,
		Status:   entity.FoundStatusPending,
		FinderID: "finder-1",
	})

	return NewMatchLifecycle(memMatchRepo{b}, users, mail, nil), b, "lost-1", "found-1"
}

func TestLifecycleConfirmEnqueuesSeekerEmail(t *testing.T) {
	mail := &memMailQueue{}
	lc, b, lostID, foundID := lifecycleFixture(t, mail)

	match, err := lc.Confirm(context.Background(), &b.lost[0], &b.found[0])
	require.NoError(t, err)
	assert.Equal(t, lostID, match.LostItemID)
	assert.Equal(t, foundID, match.FoundItemID)
	assert.Equal(t, entity.MatchStatusPending, match.Status)
	assert.WithinDuration(t, time.Now(), match.MatchDate, time.Minute)

	require.Len(t, mail.jobs, 1)
	job, ok := mail.jobs[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "laura@udea.edu.co", job.To)
	assert.Equal(t, mailer.TemplateMatchFound, job.Template)
	assert.Equal(t, "Laura Gómez", job.Data["FullName"])
	assert.Equal(t, "Celular", job.Data["ItemType"])
	assert.Equal(t, string(entity.LocationBloque18), job.Data["Location"])
}

func TestLifecycleConfirmSurvivesQueueFailure(t *testing.T) {
	lc, b, _, _ := lifecycleFixture(t, failingMailQueue{})

	match, err := lc.Confirm(context.Background(), &b.lost[0], &b.found[0])
	require.NoError(t, err)
	assert.NotNil(t, match)
}

func TestLifecycleConfirmWithoutQueue(t *testing.T) {
	lc, b, _, _ := lifecycleFixture(t, nil)

	match, err := lc.Confirm(context.Background(), &b.lost[0], &b.found[0])
	require.NoError(t, err)
	assert.NotNil(t, match)
}

func TestLifecycleConfirmPropagatesConflict(t *testing.T) {
	lc, b, _, _ := lifecycleFixture(t, nil)
	b.found[0].Status = entity.FoundStatusMatched

	_, err := lc.Confirm(context.Background(), &b.lost[0], &b.found[0])
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestLifecycleAdvance(t *testing.T) {
	mail := &memMailQueue{}
	lc, b, _, _ := lifecycleFixture(t, mail)

	match, err := lc.Confirm(context.Background(), &b.lost[0], &b.found[0])
	require.NoError(t, err)

	require.NoError(t, lc.Advance(context.Background(), match.ID, entity.MatchStatusVerified))
	assert.Equal(t, entity.MatchStatusVerified, b.matches[0].Status)

	assert.ErrorIs(t, lc.Advance(context.Background(), "missing", entity.MatchStatusCompleted), repository.ErrNotFound)
}

func TestLifecycleNotifyDelivered(t *testing.T) {
	mail := &memMailQueue{}
	lc, _, _, _ := lifecycleFixture(t, mail)

	lc.NotifyDelivered(context.Background(), "seeker-1", "Celular")
	require.Len(t, mail.jobs, 1)
	job := mail.jobs[0].(mailer.EmailJob)
	assert.Equal(t, mailer.TemplateItemDelivered, job.Template)
	assert.Equal(t, "laura@udea.edu.co", job.To)

	// Unknown seeker: skipped, no panic, nothing enqueued.
	lc.NotifyDelivered(context.Background(), "missing", "Celular")
	assert.Len(t, mail.jobs, 1)
}
