package models

import "fmt"

// RelationshipType classifies the kind of relationship between entities.
type RelationshipType string

// Explicit kinds come from rule-based foreign-key matching.
const (
	RelationBelongsTo  RelationshipType = "BELONGS_TO"
	RelationManagedBy  RelationshipType = "MANAGED_BY"
	RelationAssignedTo RelationshipType = "ASSIGNED_TO"
	RelationOwns       RelationshipType = "OWNS"
)

// Inferred kinds come from temporal correlation and semantic mining.
const (
	RelationManages        RelationshipType = "MANAGES"
	RelationImpacts        RelationshipType = "IMPACTS"
	RelationCorrelatesWith RelationshipType = "CORRELATES_WITH"
	RelationInfluencedBy   RelationshipType = "INFLUENCED_BY"
	RelationWorksWith      RelationshipType = "WORKS_WITH"
	RelationCollaborates   RelationshipType = "COLLABORATES_WITH"
	RelationResponsibleFor RelationshipType = "RESPONSIBLE_FOR"
)

// Multi-hop kinds come from path discovery over explicit edges.
const (
	RelationConnectedVia      RelationshipType = "CONNECTED_VIA"
	RelationIndirectlyAffects RelationshipType = "INDIRECTLY_AFFECTS"
)

// ValidRelationshipTypes is the set of all valid relationship types.
var ValidRelationshipTypes = []RelationshipType{
	RelationBelongsTo,
	RelationManagedBy,
	RelationAssignedTo,
	RelationOwns,
	RelationManages,
	RelationImpacts,
	RelationCorrelatesWith,
	RelationInfluencedBy,
	RelationWorksWith,
	RelationCollaborates,
	RelationResponsibleFor,
	RelationConnectedVia,
	RelationIndirectlyAffects,
}

// IsValid returns true if the relationship type is recognized.
func (rt RelationshipType) IsValid() bool {
	for i := range ValidRelationshipTypes {
		if rt == ValidRelationshipTypes[i] {
			return true
		}
	}
	return false
}

// Direction states whether a relationship holds one way or both ways.
type Direction string

const (
	Unidirectional Direction = "unidirectional"
	Bidirectional  Direction = "bidirectional"
)

// Strength is a coarse bucket derived from confidence.
type Strength string

const (
	StrengthWeak     Strength = "weak"
	StrengthModerate Strength = "moderate"
	StrengthStrong   Strength = "strong"
)

// StrengthFromConfidence buckets a confidence score.
func StrengthFromConfidence(confidence float64) Strength {
	switch {
	case confidence >= 0.8:
		return StrengthStrong
	case confidence >= 0.5:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// TemporalAspect places a relationship in time.
type TemporalAspect string

const (
	AspectPast    TemporalAspect = "past"
	AspectPresent TemporalAspect = "present"
	AspectFuture  TemporalAspect = "future"
	AspectOngoing TemporalAspect = "ongoing"
)

// Relationship is a typed edge between two entities. Endpoints and path
// members are entity IDs, never live references; the caller resolves
// them against its EntityIndex.
//
// Invariant: when Path is non-empty, Path[0] == SourceID and
// Path[len(Path)-1] == TargetID, and len(Path) >= 3.
type Relationship struct {
	ID             string               `json:"id"`
	SourceID       string               `json:"source_id"`
	TargetID       string               `json:"target_id"`
	Type           RelationshipType     `json:"type"`
	Direction      Direction            `json:"direction"`
	Strength       Strength             `json:"strength"`
	Confidence     float64              `json:"confidence"`
	Evidence       []string             `json:"evidence,omitempty"`
	TemporalAspect TemporalAspect       `json:"temporal_aspect,omitempty"`
	Path           []string             `json:"path,omitempty"`
	Metadata       map[string]AttrValue `json:"metadata,omitempty"`
}

// PathLength returns the number of entities on the path, 0 for direct
// relationships.
func (r Relationship) PathLength() int { return len(r.Path) }

// ValidatePath checks the path invariant.
func (r Relationship) ValidatePath() error {
	if len(r.Path) == 0 {
		return nil
	}
	if len(r.Path) < 3 {
		return fmt.Errorf("relationship %s: path must have 0 or >=3 entities, got %d", r.ID, len(r.Path))
	}
	if r.Path[0] != r.SourceID {
		return fmt.Errorf("relationship %s: path start %q != source %q", r.ID, r.Path[0], r.SourceID)
	}
	if r.Path[len(r.Path)-1] != r.TargetID {
		return fmt.Errorf("relationship %s: path end %q != target %q", r.ID, r.Path[len(r.Path)-1], r.TargetID)
	}
	return nil
}

// DiscoveryContext filters discovered relationships before they are
// handed to the caller. All three filters apply conjunctively.
type DiscoveryContext struct {
	MinConfidence float64                   `json:"min_confidence"`
	ExcludeTypes  map[RelationshipType]bool `json:"exclude_types,omitempty"`
	FocusEntities map[string]bool           `json:"focus_entities,omitempty"`
}

// ShouldInclude reports whether a relationship passes every filter.
// When FocusEntities is non-empty, at least one endpoint must be a
// focus entity.
func (c DiscoveryContext) ShouldInclude(r Relationship) bool {
	if r.Confidence < c.MinConfidence {
		return false
	}
	if c.ExcludeTypes[r.Type] {
		return false
	}
	if len(c.FocusEntities) > 0 && !c.FocusEntities[r.SourceID] && !c.FocusEntities[r.TargetID] {
		return false
	}
	return true
}
