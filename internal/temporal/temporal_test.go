package temporal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/relgraph/internal/models"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// signalValues is a fixed aperiodic sequence; only an exact alignment
// of the two series reproduces it, so the lag scan has a unique peak.
func signalValues(n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i%5)*3 + float64(i%7)
	}
	return vals
}

func eventsAt(entityID string, startDay int, values []float64) []models.Event {
	evs := make([]models.Event, len(values))
	for i := range values {
		v := values[i]
		evs[i] = models.Event{
			EntityID:  entityID,
			EventType: "metric",
			Timestamp: epoch.AddDate(0, 0, startDay+i),
			Value:     &v,
		}
	}
	return evs
}

func twoEntities() []models.Entity {
	return []models.Entity{
		{ID: "e1", Type: models.EntityTypeCustomer, Attributes: map[string]models.AttrValue{"name": models.String("Acme")}},
		{ID: "e2", Type: models.EntityTypeTeam, Attributes: map[string]models.AttrValue{"name": models.String("Support")}},
	}
}

func TestAnalyze_RecoversSevenDayLag(t *testing.T) {
	vals := signalValues(30)
	events := append(eventsAt("e1", 0, vals), eventsAt("e2", 7, vals)...)

	a := NewAnalyzer(10, 5, 0.5, 0.5, nil)
	correlations := a.Analyze(twoEntities(), events)
	require.Len(t, correlations, 1)

	tc := correlations[0]
	assert.Equal(t, "e1", tc.Entity1)
	assert.Equal(t, "e2", tc.Entity2)
	assert.Equal(t, 7, tc.OptimalLagDays)
	assert.InDelta(t, 1.0, tc.CorrelationCoefficient, 1e-9)
	assert.Equal(t, 60, tc.EventsAnalyzed)
	assert.Greater(t, tc.CausalityScore, 0.5)
	assert.Equal(t, 1.0, tc.Confidence)
}

func TestAnalyze_ZeroLagIdenticalSeries(t *testing.T) {
	vals := signalValues(30)
	events := append(eventsAt("e1", 0, vals), eventsAt("e2", 0, vals)...)

	a := NewAnalyzer(10, 5, 0.5, 0.5, nil)
	correlations := a.Analyze(twoEntities(), events)
	require.Len(t, correlations, 1)

	tc := correlations[0]
	assert.Equal(t, 0, tc.OptimalLagDays)
	assert.InDelta(t, 1.0, tc.CorrelationCoefficient, 1e-9)
}

func TestAnalyze_SkipsEntitiesWithTooFewEvents(t *testing.T) {
	vals := signalValues(30)
	events := append(eventsAt("e1", 0, vals), eventsAt("e2", 7, signalValues(4))...)

	a := NewAnalyzer(10, 5, 0.5, 0.5, nil)
	assert.Empty(t, a.Analyze(twoEntities(), events))
}

func TestAnalyze_SkipsEventsForUnknownEntities(t *testing.T) {
	vals := signalValues(30)
	events := append(eventsAt("e1", 0, vals), eventsAt("ghost", 7, vals)...)

	a := NewAnalyzer(10, 5, 0.5, 0.5, nil)
	assert.Empty(t, a.Analyze(twoEntities(), events))
}

func TestAnalyze_ConstantSeriesYieldsNothing(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 5.0
	}
	events := append(eventsAt("e1", 0, flat), eventsAt("e2", 0, flat)...)

	// zero-variance correlation is NaN at every lag
	a := NewAnalyzer(10, 5, 0.5, 0.5, nil)
	assert.Empty(t, a.Analyze(twoEntities(), events))
}

func TestRelationships_PositiveLagMeansInfluencedBy(t *testing.T) {
	vals := signalValues(30)
	events := append(eventsAt("e1", 0, vals), eventsAt("e2", 7, vals)...)

	a := NewAnalyzer(10, 5, 0.5, 0.5, nil)
	rels := a.Relationships(a.Analyze(twoEntities(), events))
	require.Len(t, rels, 1)

	r := rels[0]
	// e2's series follows e1's, so e2 is influenced by e1
	assert.Equal(t, "e2", r.SourceID)
	assert.Equal(t, "e1", r.TargetID)
	assert.Equal(t, models.RelationInfluencedBy, r.Type)
	assert.Equal(t, models.Unidirectional, r.Direction)
	assert.Equal(t, models.AspectOngoing, r.TemporalAspect)
	assert.NotEmpty(t, r.ID)
	require.Len(t, r.Evidence, 1)
	assert.Contains(t, r.Evidence[0], "lag +7 days")
}

func TestRelationships_ZeroLagMeansCorrelatesWith(t *testing.T) {
	vals := signalValues(30)
	events := append(eventsAt("e1", 0, vals), eventsAt("e2", 0, vals)...)

	a := NewAnalyzer(10, 5, 0.5, 0.5, nil)
	rels := a.Relationships(a.Analyze(twoEntities(), events))
	require.Len(t, rels, 1)

	assert.Equal(t, models.RelationCorrelatesWith, rels[0].Type)
	assert.Equal(t, models.Bidirectional, rels[0].Direction)
	assert.Equal(t, "e1", rels[0].SourceID)
	assert.Equal(t, "e2", rels[0].TargetID)
}

func TestRelationships_FiltersInsignificantCorrelations(t *testing.T) {
	a := NewAnalyzer(10, 5, 0.5, 0.5, nil)
	rels := a.Relationships([]models.TemporalCorrelation{
		{Entity1: "e1", Entity2: "e2", CorrelationCoefficient: 0.4, CausalityScore: 0.9, Confidence: 0.8},
		{Entity1: "e1", Entity2: "e2", CorrelationCoefficient: 0.9, CausalityScore: 0.4, Confidence: 0.8},
	})
	assert.Empty(t, rels)
}

func TestRelationships_NegativeCorrelationStillSignificant(t *testing.T) {
	a := NewAnalyzer(10, 5, 0.5, 0.5, nil)
	rels := a.Relationships([]models.TemporalCorrelation{
		{Entity1: "e1", Entity2: "e2", CorrelationCoefficient: -0.9, OptimalLagDays: 0, CausalityScore: 0.7, Confidence: 0.8},
	})
	require.Len(t, rels, 1)
	assert.Equal(t, models.RelationCorrelatesWith, rels[0].Type)
}

func TestBucketDaily_SumsAndCountsOccurrences(t *testing.T) {
	v := 2.5
	day := epoch.Add(3 * time.Hour)
	events := []models.Event{
		{EntityID: "e1", Timestamp: day, Value: &v},
		{EntityID: "e1", Timestamp: day.Add(6 * time.Hour), Value: &v},
		// valueless event counts as 1.0
		{EntityID: "e1", Timestamp: day.Add(9 * time.Hour)},
		{EntityID: "e1", Timestamp: day.AddDate(0, 0, 1), Value: &v},
	}

	s := bucketDaily(events)
	require.Len(t, s, 2)
	var got []float64
	for _, val := range s {
		got = append(got, val)
	}
	assert.ElementsMatch(t, []float64{6.0, 2.5}, got)
}

func TestLaggedPearson_RequiresMinimumOverlap(t *testing.T) {
	s1 := series{0: 1, 1: 2}
	s2 := series{0: 1, 1: 2}
	_, _, ok := laggedPearson(s1, s2, 0)
	assert.False(t, ok)

	s1[2] = 4
	s2[2] = 4
	r, n, ok := laggedPearson(s1, s2, 0)
	require.True(t, ok)
	assert.Equal(t, 3, n)
	assert.InDelta(t, 1.0, r, 1e-9)
}

func TestSampleConfidence_Saturates(t *testing.T) {
	assert.InDelta(t, 0.2, sampleConfidence(0), 1e-9)
	assert.InDelta(t, 0.6, sampleConfidence(25), 1e-9)
	assert.Equal(t, 1.0, sampleConfidence(50))
	assert.Equal(t, 1.0, sampleConfidence(500))
}

func TestCausalityScore_WeakComponentCapsScore(t *testing.T) {
	a := NewAnalyzer(10, 5, 0.5, 0.5, nil)
	s := make(series)

	// zero magnitude yields zero regardless of the other components
	assert.Equal(t, 0.0, a.causalityScore(0, 0, 50, s, s))

	// perfect correlation at lag zero with a saturated sample
	score := a.causalityScore(1.0, 0, 50, s, s)
	want := math.Pow(lagScoreZero, weightLag)
	assert.InDelta(t, want, score, 1e-9)
}
