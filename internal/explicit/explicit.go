// Package explicit builds relationships from declarative foreign-key
// rules over entity attributes. Its output is the edge set the
// multi-hop discoverer traverses.
package explicit

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/ajitpratap0/relgraph/internal/models"
)

// Rule declares that entities of SourceType carrying Field in their
// attributes reference an entity of TargetType by ID.
type Rule struct {
	SourceType    models.EntityType       `json:"source_type"`
	Field         string                  `json:"field"`
	TargetType    models.EntityType       `json:"target_type"`
	Relationship  models.RelationshipType `json:"relationship"`
	Bidirectional bool                    `json:"bidirectional"`
	Confidence    float64                 `json:"confidence"`
}

// Matches reports whether the rule applies to the entity: the types
// agree and the foreign-key field is present in the attribute map.
func (r Rule) Matches(e models.Entity) bool {
	if e.Type != r.SourceType {
		return false
	}
	_, ok := e.Attributes[r.Field]
	return ok
}

// DefaultRules returns the built-in rule set. Construct once at startup
// and pass by reference; the builder never mutates it.
func DefaultRules() []Rule {
	return []Rule{
		{SourceType: models.EntityTypeCustomer, Field: "subscription_id", TargetType: models.EntityTypeSubscription, Relationship: models.RelationOwns, Confidence: 0.95},
		{SourceType: models.EntityTypeCustomer, Field: "project_id", TargetType: models.EntityTypeProject, Relationship: models.RelationOwns, Confidence: 0.9},
		{SourceType: models.EntityTypeSubscription, Field: "customer_id", TargetType: models.EntityTypeCustomer, Relationship: models.RelationBelongsTo, Confidence: 0.95},
		{SourceType: models.EntityTypeProject, Field: "team_id", TargetType: models.EntityTypeTeam, Relationship: models.RelationAssignedTo, Confidence: 0.9},
		{SourceType: models.EntityTypeProject, Field: "customer_id", TargetType: models.EntityTypeCustomer, Relationship: models.RelationBelongsTo, Confidence: 0.9},
		{SourceType: models.EntityTypeTeam, Field: "manager_id", TargetType: models.EntityTypePerson, Relationship: models.RelationManagedBy, Confidence: 0.9},
		{SourceType: models.EntityTypePerson, Field: "team_id", TargetType: models.EntityTypeTeam, Relationship: models.RelationBelongsTo, Confidence: 0.9},
		{SourceType: models.EntityTypeRisk, Field: "customer_id", TargetType: models.EntityTypeCustomer, Relationship: models.RelationImpacts, Confidence: 0.9},
		{SourceType: models.EntityTypeObjective, Field: "owner_id", TargetType: models.EntityTypePerson, Relationship: models.RelationManagedBy, Confidence: 0.9},
	}
}

// Builder emits explicit relationships by matching rules against an
// entity snapshot.
type Builder struct {
	rules  []Rule
	logger *slog.Logger
}

// NewBuilder creates a Builder over the given rule set.
func NewBuilder(rules []Rule, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{rules: rules, logger: logger}
}

// Rules returns the builder's rule set.
func (b *Builder) Rules() []Rule { return b.rules }

// Build resolves every rule match against the entity index and returns
// the resulting relationships. Foreign keys that do not resolve are
// silently skipped: partial ingestion is the normal case, not an error.
func (b *Builder) Build(entities []models.Entity) []models.Relationship {
	idx, skipped := models.NewEntityIndex(entities)
	if skipped > 0 {
		b.logger.Warn("explicit: skipped malformed entities", "count", skipped)
	}

	var rels []models.Relationship
	for i := range entities {
		e := entities[i]
		if e.Validate() != nil {
			continue
		}
		for _, rule := range b.rules {
			if !rule.Matches(e) {
				continue
			}
			targetID := e.Attributes[rule.Field].AsString()
			target, ok := idx[targetID]
			if !ok || target.Type != rule.TargetType {
				// Unresolvable reference: skip, never surface.
				continue
			}
			direction := models.Unidirectional
			if rule.Bidirectional {
				direction = models.Bidirectional
			}
			rels = append(rels, models.Relationship{
				ID:         uuid.NewString(),
				SourceID:   e.ID,
				TargetID:   target.ID,
				Type:       rule.Relationship,
				Direction:  direction,
				Strength:   models.StrengthStrong,
				Confidence: rule.Confidence,
				Evidence:   []string{rule.Field + " reference"},
			})
		}
	}

	b.logger.Debug("explicit: built relationships", "entities", len(entities), "relationships", len(rels))
	return rels
}
