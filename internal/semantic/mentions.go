package semantic

import (
	"regexp"
	"sort"

	"github.com/ajitpratap0/relgraph/internal/models"
)

// Mention confidence by match kind: canonical names are more reliable
// than aliases.
const (
	nameConfidence  = 0.9
	aliasConfidence = 0.8
)

// EntityMention is an occurrence of an entity in a document, located by
// byte offsets. Mentions are transient: produced during mining, never
// persisted.
type EntityMention struct {
	EntityID    string
	EntityType  models.EntityType
	SurfaceForm string
	StartPos    int
	EndPos      int
	Confidence  float64
}

// overlaps reports whether two mentions share any byte range.
func (m EntityMention) overlaps(other EntityMention) bool {
	return m.StartPos < other.EndPos && other.StartPos < m.EndPos
}

// detectMentions scans text for every entity's name and aliases,
// case-insensitively and word-boundary aware.
func detectMentions(text string, entities []models.Entity) []EntityMention {
	var mentions []EntityMention
	for i := range entities {
		e := entities[i]
		if e.Validate() != nil {
			continue
		}
		mentions = append(mentions, findSurface(text, e, e.GetName(), nameConfidence)...)
		for _, alias := range e.Aliases {
			mentions = append(mentions, findSurface(text, e, alias, aliasConfidence)...)
		}
	}
	return mentions
}

func findSurface(text string, e models.Entity, surface string, confidence float64) []EntityMention {
	if len(surface) < 2 {
		return nil
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(surface) + `\b`)
	if err != nil {
		return nil
	}
	var mentions []EntityMention
	for _, loc := range re.FindAllStringIndex(text, -1) {
		mentions = append(mentions, EntityMention{
			EntityID:    e.ID,
			EntityType:  e.Type,
			SurfaceForm: text[loc[0]:loc[1]],
			StartPos:    loc[0],
			EndPos:      loc[1],
			Confidence:  confidence,
		})
	}
	return mentions
}

// dedupeMentions selects a non-overlapping mention set by greedy
// interval scheduling: highest confidence first, then earliest start,
// then longest surface. The result is ordered by start position.
func dedupeMentions(mentions []EntityMention) []EntityMention {
	sorted := make([]EntityMention, len(mentions))
	copy(sorted, mentions)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		if sorted[i].StartPos != sorted[j].StartPos {
			return sorted[i].StartPos < sorted[j].StartPos
		}
		return sorted[i].EndPos-sorted[i].StartPos > sorted[j].EndPos-sorted[j].StartPos
	})

	var kept []EntityMention
	for _, m := range sorted {
		conflict := false
		for _, k := range kept {
			if m.overlaps(k) {
				conflict = true
				break
			}
		}
		if !conflict {
			kept = append(kept, m)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].StartPos < kept[j].StartPos })
	return kept
}
