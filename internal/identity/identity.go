// Package identity maps an external feed's per-player record onto an internal
// player. The index is a short-lived cache: it is built once per sync pass
// from the tournament's field and discarded with the batch.
package identity

import (
	"sort"

	"github.com/google/uuid"

	"github.com/fairwayleague/engine/internal/names"
)

// MatchStatus tags the outcome of a resolution attempt
type MatchStatus string

const (
	StatusMatched   MatchStatus = "matched"
	StatusAmbiguous MatchStatus = "ambiguous"
	StatusUnmatched MatchStatus = "unmatched"
)

// Entry is one internal player registered in the index.
type Entry struct {
	PlayerID           uuid.UUID
	TournamentPlayerID uuid.UUID
	DisplayName        string
	ExternalIDs        map[string]string // external system -> external id
}

// Match is the resolution result. Two internal players can normalize to the
// same key (true homonyms); rather than silently picking whichever was
// registered last, the index reports Ambiguous with the candidate player IDs
// so the caller can require external-ID disambiguation.
type Match struct {
	Status             MatchStatus
	PlayerID           uuid.UUID
	TournamentPlayerID uuid.UUID
	Key                string
	Candidates         []uuid.UUID
}

// Index resolves external records against one tournament's field.
type Index struct {
	byKey        map[string][]Entry
	byExternalID map[string]Entry
}

// NewIndex builds the lookup maps from the tournament field, registering every
// entry under all of its alternate keys (nickname forms, joined tokens,
// reversed order).
func NewIndex(entries []Entry) *Index {
	idx := &Index{
		byKey:        make(map[string][]Entry),
		byExternalID: make(map[string]Entry),
	}
	for _, e := range entries {
		for _, key := range names.AlternateKeys(e.DisplayName) {
			if idx.contains(key, e.PlayerID) {
				continue
			}
			idx.byKey[key] = append(idx.byKey[key], e)
		}
		for system, id := range e.ExternalIDs {
			if id != "" {
				idx.byExternalID[externalKey(system, id)] = e
			}
		}
	}
	return idx
}

func (idx *Index) contains(key string, playerID uuid.UUID) bool {
	for _, e := range idx.byKey[key] {
		if e.PlayerID == playerID {
			return true
		}
	}
	return false
}

func externalKey(system, id string) string {
	return system + ":" + id
}

// Resolve maps an external record to an internal player. A previously
// persisted external ID wins outright; otherwise the record's name is tried
// under each of its alternate keys in order, first hit wins. Resolve never
// fails the batch: an unresolvable record comes back as Unmatched.
func (idx *Index) Resolve(name, system, externalID string) Match {
	if externalID != "" {
		if e, ok := idx.byExternalID[externalKey(system, externalID)]; ok {
			return Match{
				Status:             StatusMatched,
				PlayerID:           e.PlayerID,
				TournamentPlayerID: e.TournamentPlayerID,
				Key:                externalKey(system, externalID),
			}
		}
	}

	for _, key := range names.AlternateKeys(name) {
		entries := idx.byKey[key]
		switch len(entries) {
		case 0:
			continue
		case 1:
			return Match{
				Status:             StatusMatched,
				PlayerID:           entries[0].PlayerID,
				TournamentPlayerID: entries[0].TournamentPlayerID,
				Key:                key,
			}
		default:
			candidates := make([]uuid.UUID, 0, len(entries))
			for _, e := range entries {
				candidates = append(candidates, e.PlayerID)
			}
			sort.Slice(candidates, func(i, j int) bool {
				return candidates[i].String() < candidates[j].String()
			})
			return Match{Status: StatusAmbiguous, Key: key, Candidates: candidates}
		}
	}

	return Match{Status: StatusUnmatched}
}
