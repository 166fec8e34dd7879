package taste

import (
	"sort"

	"github.com/temcen/tastematch/pkg/models"
)

// UserSet is a set of user IDs. The zero value is an empty, read-only set.
type UserSet map[string]struct{}

func NewUserSet(ids ...string) UserSet {
	s := make(UserSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s UserSet) Add(id string) {
	s[id] = struct{}{}
}

func (s UserSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Selector picks the best candidates for a user.
type Selector struct {
	engine *Engine
}

func NewSelector(engine *Engine) *Selector {
	if engine == nil {
		engine = DefaultEngine()
	}
	return &Selector{engine: engine}
}

func (s *Selector) Engine() *Engine {
	return s.engine
}

// SelectMatches scores every eligible candidate that is not forUser and not
// in history, keeps scores >= minimumScore, and returns at most limit
// matches by score desc then user ID asc. Duplicate candidate IDs are
// scored once.
func (s *Selector) SelectMatches(forUser *models.TasteProfile, candidates []*models.TasteProfile, history UserSet, minimumScore float64, limit int) ([]models.RankedMatch, error) {
	if err := ValidateSelection(minimumScore, limit); err != nil {
		return nil, err
	}

	matches := []models.RankedMatch{}
	if !forUser.Eligible() {
		return matches, nil
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		if !candidate.Eligible() || candidate.UserID == forUser.UserID || history.Contains(candidate.UserID) {
			continue
		}
		if _, dup := seen[candidate.UserID]; dup {
			continue
		}
		seen[candidate.UserID] = struct{}{}

		result := s.engine.Compare(forUser, candidate)
		if result.OverallScore < minimumScore {
			continue
		}
		matches = append(matches, models.RankedMatch{
			UserID: candidate.UserID,
			Score:  result.OverallScore,
			Result: result,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].UserID < matches[j].UserID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
