package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/relgraph/internal/explicit"
	"github.com/ajitpratap0/relgraph/internal/graphpattern"
	"github.com/ajitpratap0/relgraph/internal/models"
	"github.com/ajitpratap0/relgraph/internal/multihop"
	"github.com/ajitpratap0/relgraph/internal/semantic"
	"github.com/ajitpratap0/relgraph/internal/temporal"
)

func newTestEngine() *Engine {
	return NewEngine(
		explicit.NewBuilder(explicit.DefaultRules(), nil),
		multihop.NewDiscoverer(multihop.DefaultMaxHops, nil),
		temporal.NewAnalyzer(10, 5, 0.5, 0.5, nil),
		semantic.NewMiner(semantic.DefaultPatterns(), 0, nil),
		nil,
	)
}

func snapshotEntities() []models.Entity {
	return []models.Entity{
		{ID: "cust-1", Type: models.EntityTypeCustomer, Attributes: map[string]models.AttrValue{
			"name":       models.String("TechCorp"),
			"project_id": models.String("proj-1"),
		}},
		{ID: "proj-1", Type: models.EntityTypeProject, Attributes: map[string]models.AttrValue{
			"name":    models.String("Migration"),
			"team_id": models.String("team-1"),
		}},
		{ID: "team-1", Type: models.EntityTypeTeam, Attributes: map[string]models.AttrValue{
			"name": models.String("Cloud Squad"),
		}},
		{ID: "p1", Type: models.EntityTypePerson, Attributes: map[string]models.AttrValue{
			"name": models.String("Alice Johnson"),
		}},
	}
}

func TestDiscover_AllStrategies(t *testing.T) {
	in := Input{
		Entities: snapshotEntities(),
		Documents: []semantic.Document{
			{ID: "doc-1", Text: "Alice Johnson manages the Cloud Squad."},
		},
	}

	res, err := newTestEngine().Discover(context.Background(), in, models.DiscoveryContext{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Explicit)
	assert.Equal(t, 1, res.MultiHop)
	assert.Equal(t, 0, res.Temporal)
	assert.Equal(t, 1, res.Semantic)
	assert.Equal(t, 0, res.Deduplicated)
	assert.Len(t, res.Relationships, 4)

	types := map[models.RelationshipType]int{}
	for _, r := range res.Relationships {
		types[r.Type]++
	}
	assert.Equal(t, 1, types[models.RelationOwns])
	assert.Equal(t, 1, types[models.RelationAssignedTo])
	assert.Equal(t, 1, types[models.RelationConnectedVia])
	assert.Equal(t, 1, types[models.RelationManages])
}

func TestDiscover_MalformedEntitiesDoNotAbort(t *testing.T) {
	in := Input{
		Entities: append(snapshotEntities(), models.Entity{ID: "", Type: models.EntityTypeTeam}),
	}

	res, err := newTestEngine().Discover(context.Background(), in, models.DiscoveryContext{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Explicit)
}

func TestDiscover_AppliesContextFilters(t *testing.T) {
	in := Input{Entities: snapshotEntities()}

	res, err := newTestEngine().Discover(context.Background(), in, models.DiscoveryContext{
		MinConfidence: 0.85,
	})
	require.NoError(t, err)

	// the 0.81-confidence multi-hop path is filtered out
	for _, r := range res.Relationships {
		assert.GreaterOrEqual(t, r.Confidence, 0.85)
	}
	assert.Len(t, res.Relationships, 2)
}

func TestDiscover_ExcludeTypes(t *testing.T) {
	in := Input{Entities: snapshotEntities()}

	res, err := newTestEngine().Discover(context.Background(), in, models.DiscoveryContext{
		ExcludeTypes: map[models.RelationshipType]bool{models.RelationConnectedVia: true},
	})
	require.NoError(t, err)

	for _, r := range res.Relationships {
		assert.NotEqual(t, models.RelationConnectedVia, r.Type)
	}
}

func TestDiscover_FocusEntities(t *testing.T) {
	in := Input{Entities: snapshotEntities()}

	res, err := newTestEngine().Discover(context.Background(), in, models.DiscoveryContext{
		FocusEntities: map[string]bool{"proj-1": true},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Relationships)

	for _, r := range res.Relationships {
		assert.True(t, r.SourceID == "proj-1" || r.TargetID == "proj-1")
	}
}

func TestDiscover_TemporalStrategyRuns(t *testing.T) {
	vals := []float64{2, 9, 4, 7, 1, 8, 3, 6, 0, 5, 11, 2, 9, 4, 7, 1, 8, 3, 6, 12}
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var events []models.Event
	for i := range vals {
		v := vals[i]
		events = append(events,
			models.Event{EntityID: "cust-1", EventType: "tickets", Timestamp: epoch.AddDate(0, 0, i), Value: &v},
			models.Event{EntityID: "team-1", EventType: "load", Timestamp: epoch.AddDate(0, 0, i), Value: &v},
		)
	}

	in := Input{Entities: snapshotEntities(), Events: events}
	res, err := newTestEngine().Discover(context.Background(), in, models.DiscoveryContext{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Temporal)
}

// --- dedup tests ---

func relWithConf(source, target string, rt models.RelationshipType, conf float64) models.Relationship {
	return models.Relationship{
		ID:         source + "-" + target + "-" + string(rt),
		SourceID:   source,
		TargetID:   target,
		Type:       rt,
		Confidence: conf,
	}
}

func TestDedup_KeepsHigherConfidence(t *testing.T) {
	rels := []models.Relationship{
		relWithConf("a", "b", models.RelationOwns, 0.6),
		relWithConf("a", "b", models.RelationOwns, 0.9),
		relWithConf("a", "b", models.RelationImpacts, 0.5),
	}

	out := Dedup(rels)
	require.Len(t, out, 2)
	assert.Equal(t, 0.9, out[0].Confidence)
	assert.Equal(t, models.RelationOwns, out[0].Type)
	assert.Equal(t, models.RelationImpacts, out[1].Type)
}

func TestDedup_PreservesFirstSeenOrder(t *testing.T) {
	rels := []models.Relationship{
		relWithConf("a", "b", models.RelationOwns, 0.9),
		relWithConf("c", "d", models.RelationImpacts, 0.5),
		relWithConf("a", "b", models.RelationOwns, 0.6),
	}

	out := Dedup(rels)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].SourceID)
	assert.Equal(t, "c", out[1].SourceID)
}

func TestDedup_Idempotent(t *testing.T) {
	rels := []models.Relationship{
		relWithConf("a", "b", models.RelationOwns, 0.6),
		relWithConf("a", "b", models.RelationOwns, 0.9),
		relWithConf("b", "a", models.RelationOwns, 0.7),
	}

	once := Dedup(rels)
	twice := Dedup(once)
	assert.Equal(t, once, twice)
}

func TestDedup_DirectionSensitiveKeys(t *testing.T) {
	rels := []models.Relationship{
		relWithConf("a", "b", models.RelationOwns, 0.6),
		relWithConf("b", "a", models.RelationOwns, 0.9),
	}
	assert.Len(t, Dedup(rels), 2)
}

func TestFilter(t *testing.T) {
	rels := []models.Relationship{
		relWithConf("a", "b", models.RelationOwns, 0.9),
		relWithConf("a", "b", models.RelationImpacts, 0.3),
	}

	out := Filter(rels, models.DiscoveryContext{MinConfidence: 0.5})
	require.Len(t, out, 1)
	assert.Equal(t, models.RelationOwns, out[0].Type)
}

func TestPatterns(t *testing.T) {
	engine := newTestEngine()
	rec := graphpattern.NewRecognizer(graphpattern.DefaultHubCentralityThreshold, graphpattern.DefaultMinCommunitySize, nil)

	entities := snapshotEntities()
	rels := []models.Relationship{
		relWithConf("cust-1", "proj-1", models.RelationOwns, 0.9),
		relWithConf("proj-1", "team-1", models.RelationAssignedTo, 0.9),
		relWithConf("team-1", "cust-1", models.RelationConnectedVia, 0.8),
	}

	patterns := engine.Patterns(rec, entities, rels)
	var triangles int
	for _, p := range patterns {
		if p.Type == models.PatternTriangle {
			triangles++
		}
	}
	assert.Equal(t, 1, triangles)
}
