package models

import "fmt"

// EntityType classifies the kind of business entity.
type EntityType string

const (
	EntityTypeCustomer     EntityType = "customer"
	EntityTypeTeam         EntityType = "team"
	EntityTypeProject      EntityType = "project"
	EntityTypeRisk         EntityType = "risk"
	EntityTypePerson       EntityType = "person"
	EntityTypeSubscription EntityType = "subscription"
	EntityTypeObjective    EntityType = "objective"
)

// ValidEntityTypes is the set of all valid entity types.
var ValidEntityTypes = []EntityType{
	EntityTypeCustomer,
	EntityTypeTeam,
	EntityTypeProject,
	EntityTypeRisk,
	EntityTypePerson,
	EntityTypeSubscription,
	EntityTypeObjective,
}

// IsValid returns true if the entity type is recognized.
func (et EntityType) IsValid() bool {
	for i := range ValidEntityTypes {
		if et == ValidEntityTypes[i] {
			return true
		}
	}
	return false
}

// Entity represents a typed business object. Entities are produced by an
// external extractor and treated as immutable for the duration of a
// discovery run. Entities reference each other only by ID, never by
// pointer; discoverers build an id→entity index per run.
type Entity struct {
	ID         string               `json:"id"`
	Type       EntityType           `json:"type"`
	Attributes map[string]AttrValue `json:"attributes,omitempty"`
	Aliases    []string             `json:"aliases,omitempty"`
}

// GetName returns the entity's display name: the "name" attribute, then
// the "title" attribute, falling back to the ID.
func (e Entity) GetName() string {
	if v, ok := e.Attributes["name"]; ok && v.Kind() == KindString && v.AsString() != "" {
		return v.AsString()
	}
	if v, ok := e.Attributes["title"]; ok && v.Kind() == KindString && v.AsString() != "" {
		return v.AsString()
	}
	return e.ID
}

// Validate checks the structural requirements on an entity. A failing
// entity is skipped by discoverers; it never aborts a whole run.
func (e Entity) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entity: missing id")
	}
	if e.Type == "" {
		return fmt.Errorf("entity %q: missing type", e.ID)
	}
	return nil
}

// EntityIndex is an id→entity lookup built once per discovery run.
type EntityIndex map[string]Entity

// NewEntityIndex builds the lookup table, skipping (and counting)
// malformed entities.
func NewEntityIndex(entities []Entity) (EntityIndex, int) {
	idx := make(EntityIndex, len(entities))
	skipped := 0
	for i := range entities {
		if err := entities[i].Validate(); err != nil {
			skipped++
			continue
		}
		idx[entities[i].ID] = entities[i]
	}
	return idx, skipped
}
