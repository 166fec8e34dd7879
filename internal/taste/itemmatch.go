package taste

import (
	"strings"

	"github.com/temcen/tastematch/pkg/models"
)

// ItemKeyRule derives an identity key for a record. Records of two users
// with equal keys under the same rule are treated as the same item.
type ItemKeyRule struct {
	Name string
	Key  func(models.LogRecord) (string, bool)
}

var (
	ByItemID = ItemKeyRule{
		Name: "item_id",
		Key: func(r models.LogRecord) (string, bool) {
			k := strings.TrimSpace(r.ItemID)
			return k, k != ""
		},
	}

	ByUniversalTrackID = ItemKeyRule{
		Name: "universal_track_id",
		Key: func(r models.LogRecord) (string, bool) {
			k := strings.TrimSpace(r.UniversalTrackID)
			return k, k != ""
		},
	}

	ByTitleAndArtist = ItemKeyRule{
		Name: "title_artist",
		Key: func(r models.LogRecord) (string, bool) {
			title := foldKey(r.Title)
			if title == "" {
				return "", false
			}
			return title + "\x1f" + foldKey(r.ArtistName), true
		},
	}
)

// RecordPair is one item both users logged.
type RecordPair struct {
	A    models.LogRecord
	B    models.LogRecord
	Rule string
}

// ItemMatcher pairs records across two users. Rules are tried in order and
// a record takes part in at most one pair.
type ItemMatcher struct {
	rules []ItemKeyRule
}

func NewItemMatcher(rules ...ItemKeyRule) *ItemMatcher {
	return &ItemMatcher{rules: rules}
}

func DefaultItemMatcher() *ItemMatcher {
	return NewItemMatcher(ByItemID, ByUniversalTrackID, ByTitleAndArtist)
}

// Pair matches records one-to-one. Within a rule, the n-th unpaired record
// of a with key k pairs with the n-th unpaired record of b with key k, so
// Pair(a, b) and Pair(b, a) produce mirrored pairs.
func (m *ItemMatcher) Pair(a, b []models.LogRecord) []RecordPair {
	usedA := make([]bool, len(a))
	usedB := make([]bool, len(b))
	var pairs []RecordPair

	for _, rule := range m.rules {
		index := make(map[string][]int)
		for j, record := range b {
			if usedB[j] {
				continue
			}
			if key, ok := rule.Key(record); ok {
				index[key] = append(index[key], j)
			}
		}
		if len(index) == 0 {
			continue
		}

		for i, record := range a {
			if usedA[i] {
				continue
			}
			key, ok := rule.Key(record)
			if !ok {
				continue
			}
			queue := index[key]
			if len(queue) == 0 {
				continue
			}
			j := queue[0]
			index[key] = queue[1:]
			usedA[i], usedB[j] = true, true
			pairs = append(pairs, RecordPair{A: record, B: b[j], Rule: rule.Name})
		}
	}

	return pairs
}
