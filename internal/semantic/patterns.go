package semantic

import (
	"regexp"

	"github.com/ajitpratap0/relgraph/internal/models"
)

// Pattern maps a phrase appearing between two entity mentions to a
// relationship kind. Patterns are tried in order; the first match wins.
type Pattern struct {
	Expr       *regexp.Regexp
	Type       models.RelationshipType
	Direction  models.Direction
	Confidence float64
}

// DefaultPatterns returns the built-in verb/phrase pattern list,
// ordered from most to least specific. Construct once and share; the
// miner never mutates it.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{regexp.MustCompile(`(?i)\bis\s+managed\s+by\b`), models.RelationManagedBy, models.Unidirectional, 0.85},
		{regexp.MustCompile(`(?i)\bis\s+responsible\s+for\b`), models.RelationResponsibleFor, models.Unidirectional, 0.8},
		{regexp.MustCompile(`(?i)\bresponsible\s+for\b`), models.RelationResponsibleFor, models.Unidirectional, 0.75},
		{regexp.MustCompile(`(?i)\bcollaborates?\s+with\b`), models.RelationCollaborates, models.Bidirectional, 0.8},
		{regexp.MustCompile(`(?i)\bworks?\s+with\b`), models.RelationWorksWith, models.Bidirectional, 0.8},
		{regexp.MustCompile(`(?i)\bbelongs\s+to\b`), models.RelationBelongsTo, models.Unidirectional, 0.8},
		{regexp.MustCompile(`(?i)\bis\s+assigned\s+to\b`), models.RelationAssignedTo, models.Unidirectional, 0.8},
		{regexp.MustCompile(`(?i)\bmanages\b`), models.RelationManages, models.Unidirectional, 0.85},
		{regexp.MustCompile(`(?i)\bowns\b`), models.RelationOwns, models.Unidirectional, 0.85},
		{regexp.MustCompile(`(?i)\b(?:impacts?|affects?)\b`), models.RelationImpacts, models.Unidirectional, 0.75},
	}
}

// hedgeRe matches hedging language that weakens a claim.
var hedgeRe = regexp.MustCompile(`(?i)\b(?:might|may|could|possibly|perhaps|seems?|appears?|probably|likely)\b`)

// hedgePenalty is the confidence multiplier applied when the matched
// sentence hedges.
const hedgePenalty = 0.6

// matchPattern returns the first pattern matching the text between two
// mentions, or nil.
func matchPattern(patterns []Pattern, between string) *Pattern {
	for i := range patterns {
		if patterns[i].Expr.MatchString(between) {
			return &patterns[i]
		}
	}
	return nil
}
