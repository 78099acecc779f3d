package application

import (
	"github.com/lostudea/lostudea-api/internal/domain/entity"
)

// CandidateMatches returns every found item that might be the same
// physical object as the lost item: same item-type value and still waiting
// for its owner. A nil lost item yields no candidates.
//
// This is deliberately the simplest possible join: one equality predicate
// plus a status filter. No scoring, no location or date proximity, no
// fuzzy matching on descriptions. Candidates come back in pool order.
func CandidateMatches(lost *entity.LostItem, pool []entity.FoundItem) []entity.FoundItem {
	if lost == nil {
		return nil
	}
	var candidates []entity.FoundItem
	for _, f := range pool {
		if f.Type.Equal(lost.Type) && f.Status == entity.FoundStatusPending {
			candidates = append(candidates, f)
		}
	}
	return candidates
}
