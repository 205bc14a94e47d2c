// Package temporal correlates entity event streams to find lagged
// statistical relationships between entities.
package temporal

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/ajitpratap0/relgraph/internal/models"
)

const (
	// DefaultLagWindowDays bounds the lag search to ±30 days.
	DefaultLagWindowDays = 30

	// DefaultMinEvents is how many events an entity needs before it is
	// eligible for correlation.
	DefaultMinEvents = 10

	// DefaultMinCorrelation and DefaultMinCausality are the default
	// significance thresholds. Both are heuristic tunables.
	DefaultMinCorrelation = 0.5
	DefaultMinCausality   = 0.5

	// minOverlap is the minimum number of paired observations required
	// to compute a correlation at a given lag.
	minOverlap = 3

	// saturationEvents is where the sample-size factors stop growing.
	saturationEvents = 50
)

// causality score component weights; geometric combination means any
// single weak component caps the final score.
const (
	weightMagnitude  = 0.5
	weightLag        = 0.25
	weightSample     = 0.25
	lagScoreZero     = 0.5
	lagScoreStable   = 1.0
	lagScoreUnstable = 0.3
)

// Analyzer correlates per-entity daily event series across a bounded
// lag window.
type Analyzer struct {
	lagWindowDays  int
	minEvents      int
	minCorrelation float64
	minCausality   float64
	logger         *slog.Logger
}

// NewAnalyzer creates an Analyzer. Non-positive bounds fall back to the
// package defaults.
func NewAnalyzer(lagWindowDays, minEvents int, minCorrelation, minCausality float64, logger *slog.Logger) *Analyzer {
	if lagWindowDays <= 0 {
		lagWindowDays = DefaultLagWindowDays
	}
	if minEvents <= 0 {
		minEvents = DefaultMinEvents
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		lagWindowDays:  lagWindowDays,
		minEvents:      minEvents,
		minCorrelation: minCorrelation,
		minCausality:   minCausality,
		logger:         logger,
	}
}

// series maps a day ordinal (days since Unix epoch) to an aggregated
// value. Days without events are absent, never zero-filled.
type series map[int]float64

// Analyze computes a TemporalCorrelation for every entity pair where
// both sides have at least the minimum number of events. Pairs with too
// few events are silently skipped: insufficient data is not an error.
func (a *Analyzer) Analyze(entities []models.Entity, events []models.Event) []models.TemporalCorrelation {
	idx, skipped := models.NewEntityIndex(entities)
	if skipped > 0 {
		a.logger.Warn("temporal: skipped malformed entities", "count", skipped)
	}

	byEntity := make(map[string][]models.Event)
	for i := range events {
		ev := events[i]
		if ev.Validate() != nil {
			continue
		}
		if _, ok := idx[ev.EntityID]; !ok {
			continue
		}
		byEntity[ev.EntityID] = append(byEntity[ev.EntityID], ev)
	}

	var eligible []string
	for id, evs := range byEntity {
		if len(evs) >= a.minEvents {
			eligible = append(eligible, id)
		}
	}
	sort.Strings(eligible)

	var out []models.TemporalCorrelation
	for i := 0; i < len(eligible); i++ {
		for j := i + 1; j < len(eligible); j++ {
			tc, ok := a.correlate(eligible[i], eligible[j], byEntity[eligible[i]], byEntity[eligible[j]])
			if ok {
				out = append(out, tc)
			}
		}
	}

	a.logger.Debug("temporal: analyzed pairs", "eligible_entities", len(eligible), "correlations", len(out))
	return out
}

// Relationships converts significant correlations into relationship
// values: CORRELATES_WITH (symmetric) at lag zero, INFLUENCED_BY when a
// lag exists — the source is the later series, the target the earlier
// one that leads it.
func (a *Analyzer) Relationships(correlations []models.TemporalCorrelation) []models.Relationship {
	var rels []models.Relationship
	for _, tc := range correlations {
		if !tc.IsSignificant(a.minCorrelation, a.minCausality) {
			continue
		}
		r := models.Relationship{
			ID:             uuid.NewString(),
			Confidence:     tc.Confidence,
			Strength:       models.StrengthFromConfidence(tc.Confidence),
			TemporalAspect: models.AspectOngoing,
			Evidence: []string{
				formatCorrelationEvidence(tc),
			},
		}
		switch {
		case tc.OptimalLagDays == 0:
			r.SourceID = tc.Entity1
			r.TargetID = tc.Entity2
			r.Type = models.RelationCorrelatesWith
			r.Direction = models.Bidirectional
		case tc.OptimalLagDays > 0:
			// entity2 follows entity1
			r.SourceID = tc.Entity2
			r.TargetID = tc.Entity1
			r.Type = models.RelationInfluencedBy
			r.Direction = models.Unidirectional
		default:
			r.SourceID = tc.Entity1
			r.TargetID = tc.Entity2
			r.Type = models.RelationInfluencedBy
			r.Direction = models.Unidirectional
		}
		rels = append(rels, r)
	}
	return rels
}

// correlate scans every lag in the window and keeps the lag maximizing
// absolute Pearson correlation.
func (a *Analyzer) correlate(id1, id2 string, evs1, evs2 []models.Event) (models.TemporalCorrelation, bool) {
	s1 := bucketDaily(evs1)
	s2 := bucketDaily(evs2)

	bestLag := 0
	bestCorr := 0.0
	bestN := 0
	found := false
	for lag := -a.lagWindowDays; lag <= a.lagWindowDays; lag++ {
		r, n, ok := laggedPearson(s1, s2, lag)
		if !ok {
			continue
		}
		if !found || math.Abs(r) > math.Abs(bestCorr) {
			found = true
			bestLag = lag
			bestCorr = r
			bestN = n
		}
	}
	if !found {
		return models.TemporalCorrelation{}, false
	}

	events := len(evs1) + len(evs2)
	tc := models.TemporalCorrelation{
		Entity1:                id1,
		Entity2:                id2,
		CorrelationCoefficient: bestCorr,
		OptimalLagDays:         bestLag,
		CausalityScore:         a.causalityScore(bestCorr, bestLag, bestN, s1, s2),
		Confidence:             sampleConfidence(events),
		EventsAnalyzed:         events,
	}
	return tc, true
}

// causalityScore combines correlation magnitude, lag stability, and
// sample size as a weighted geometric mean.
func (a *Analyzer) causalityScore(corr float64, lag, n int, s1, s2 series) float64 {
	magnitude := math.Abs(corr)

	lagScore := lagScoreZero
	if lag != 0 {
		if lagSignStable(s1, s2, lag, a.lagWindowDays) {
			lagScore = lagScoreStable
		} else {
			lagScore = lagScoreUnstable
		}
	}

	sample := math.Min(1.0, float64(n)/float64(saturationEvents))

	if magnitude == 0 || sample == 0 {
		return 0
	}
	return math.Pow(magnitude, weightMagnitude) *
		math.Pow(lagScore, weightLag) *
		math.Pow(sample, weightSample)
}

// lagSignStable re-runs the lag scan on the first and second half of
// the overlap span and checks that the best lag keeps its sign in both.
func lagSignStable(s1, s2 series, lag, window int) bool {
	days := make([]int, 0, len(s1))
	for d := range s1 {
		days = append(days, d)
	}
	if len(days) < 2*minOverlap {
		return false
	}
	sort.Ints(days)
	mid := days[len(days)/2]

	firstHalf := make(series)
	secondHalf := make(series)
	for d, v := range s1 {
		if d < mid {
			firstHalf[d] = v
		} else {
			secondHalf[d] = v
		}
	}

	sign := func(x int) int {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		default:
			return 0
		}
	}

	l1, ok1 := bestLag(firstHalf, s2, window)
	l2, ok2 := bestLag(secondHalf, s2, window)
	return ok1 && ok2 && sign(l1) == sign(lag) && sign(l2) == sign(lag)
}

// bestLag returns the lag with the highest absolute correlation.
func bestLag(s1, s2 series, window int) (int, bool) {
	best := 0
	bestAbs := -1.0
	found := false
	for lag := -window; lag <= window; lag++ {
		r, _, ok := laggedPearson(s1, s2, lag)
		if ok && math.Abs(r) > bestAbs {
			found = true
			best = lag
			bestAbs = math.Abs(r)
		}
	}
	return best, found
}

// laggedPearson pairs s1[d] with s2[d+lag] for every day present in
// both and returns the Pearson correlation over the paired values.
// Missing days are gaps, not zeros.
func laggedPearson(s1, s2 series, lag int) (float64, int, bool) {
	var xs, ys []float64
	for d, v1 := range s1 {
		if v2, ok := s2[d+lag]; ok {
			xs = append(xs, v1)
			ys = append(ys, v2)
		}
	}
	if len(xs) < minOverlap {
		return 0, 0, false
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		// zero-variance series
		return 0, 0, false
	}
	return r, len(xs), true
}

// bucketDaily sums event values per day. An event without a numeric
// value counts as an occurrence of 1.0.
func bucketDaily(events []models.Event) series {
	s := make(series, len(events))
	for i := range events {
		day := int(events[i].Timestamp.UTC().Truncate(24*time.Hour).Unix() / 86400)
		v := 1.0
		if events[i].Value != nil {
			v = *events[i].Value
		}
		s[day] += v
	}
	return s
}

// sampleConfidence grows with the number of events analyzed and
// saturates past saturationEvents.
func sampleConfidence(events int) float64 {
	return math.Min(1.0, 0.2+0.8*float64(events)/float64(saturationEvents))
}

func formatCorrelationEvidence(tc models.TemporalCorrelation) string {
	return fmt.Sprintf("correlation %.2f at lag %+d days over %d events (causality %.2f)",
		tc.CorrelationCoefficient, tc.OptimalLagDays, tc.EventsAnalyzed, tc.CausalityScore)
}
