package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
)

func foundOf(id, typeValue string, status entity.FoundStatus) entity.FoundItem {
	return entity.FoundItem{
		ID:        id,
		Type:      entity.ItemTypeByValue(typeValue),
		Location:  entity.LocationBloque8,
		FoundDate: time.Now(),
		Status:    status,
	}
}

func TestCandidateMatchesFiltersByTypeAndStatus(t *testing.T) {
	lost := &entity.LostItem{
		ID:     "lost-1",
		Type:   entity.ItemTypeByValue("mochila"),
		Status: entity.LostStatusSearching,
	}
	pool := []entity.FoundItem{
		foundOf("f1", "mochila", entity.FoundStatusPending),
		foundOf("f2", "llaves", entity.FoundStatusPending),
		foundOf("f3", "mochila", entity.FoundStatusMatched),
		foundOf("f4", "mochila", entity.FoundStatusPending),
		foundOf("f5", "mochila", entity.FoundStatusDelivered),
	}

	got := CandidateMatches(lost, pool)
	require.Len(t, got, 2)
	assert.Equal(t, "f1", got[0].ID)
	assert.Equal(t, "f4", got[1].ID)
}

func TestCandidateMatchesIgnoresEverythingButType(t *testing.T) {
	// Same type in a different zone on a different day is still a
	// candidate; the rule is type equality and nothing else.
	lost := &entity.LostItem{
		ID:        "lost-1",
		Type:      entity.ItemTypeByValue("celular"),
		Locations: []entity.Location{entity.LocationBloque18},
		LostDate:  time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
	far := foundOf("f1", "celular", entity.FoundStatusPending)
	far.Location = entity.LocationBloque29
	far.FoundDate = time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)

	got := CandidateMatches(lost, []entity.FoundItem{far})
	assert.Len(t, got, 1)
}

func TestCandidateMatchesUnknownTypeStillCompares(t *testing.T) {
	lost := &entity.LostItem{Type: entity.ItemTypeByValue("patineta")}
	pool := []entity.FoundItem{
		foundOf("f1", "patineta", entity.FoundStatusPending),
		foundOf("f2", "otro", entity.FoundStatusPending),
	}
	got := CandidateMatches(lost, pool)
	require.Len(t, got, 1)
	assert.Equal(t, "f1", got[0].ID)
}

func TestCandidateMatchesNilAndEmpty(t *testing.T) {
	assert.Nil(t, CandidateMatches(nil, []entity.FoundItem{foundOf("f1", "otro", entity.FoundStatusPending)}))
	assert.Empty(t, CandidateMatches(&entity.LostItem{Type: entity.ItemTypeByValue("otro")}, nil))
}
