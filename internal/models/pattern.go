package models

// PatternType classifies a structural graph pattern.
type PatternType string

const (
	PatternHub       PatternType = "hub"
	PatternTriangle  PatternType = "triangle"
	PatternCommunity PatternType = "community"
)

// ValidPatternTypes is the set of all valid pattern types.
var ValidPatternTypes = []PatternType{
	PatternHub,
	PatternTriangle,
	PatternCommunity,
}

// IsValid returns true if the pattern type is recognized.
func (pt PatternType) IsValid() bool {
	for i := range ValidPatternTypes {
		if pt == ValidPatternTypes[i] {
			return true
		}
	}
	return false
}

// GraphPattern is a structural pattern over the discovered relationship
// set. Patterns are descriptive outputs: created fresh from a snapshot
// of relationships and never mutated or fed back into discovery.
type GraphPattern struct {
	ID                 string             `json:"id"`
	Type               PatternType        `json:"type"`
	EntityIDs          []string           `json:"entity_ids"`
	CentralityScores   map[string]float64 `json:"centrality_scores,omitempty"`
	Density            float64            `json:"density,omitempty"`
	SupportingEvidence []string           `json:"supporting_evidence,omitempty"`
}

// GetCentralEntity returns the entity ID with the maximum centrality
// score, or "" when no scores are present. Ties break toward the
// lexicographically smaller ID so the answer is deterministic.
func (p GraphPattern) GetCentralEntity() string {
	best := ""
	bestScore := -1.0
	for id, score := range p.CentralityScores {
		if score > bestScore || (score == bestScore && (best == "" || id < best)) {
			best = id
			bestScore = score
		}
	}
	return best
}

// CollaborationPattern groups entities linked by collaboration-kind
// edges, with an aggregate strength in [0,1].
type CollaborationPattern struct {
	ID                    string   `json:"id"`
	EntityIDs             []string `json:"entity_ids"`
	CollaborationStrength float64  `json:"collaboration_strength"`
	SupportingEvidence    []string `json:"supporting_evidence,omitempty"`
}
