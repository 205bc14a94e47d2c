package models

import (
	"fmt"
	"math"
	"time"
)

// Event is a timestamped observation attached to an entity. Events are
// consumed only by the temporal analyzer and are immutable per run.
type Event struct {
	EntityID  string               `json:"entity_id"`
	EventType string               `json:"event_type"`
	Timestamp time.Time            `json:"timestamp"`
	Value     *float64             `json:"value,omitempty"`
	Metadata  map[string]AttrValue `json:"metadata,omitempty"`
}

// Validate checks the structural requirements on an event.
func (e Event) Validate() error {
	if e.EntityID == "" {
		return fmt.Errorf("event: missing entity_id")
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("event for %q: missing timestamp", e.EntityID)
	}
	return nil
}

// TemporalCorrelation is the result of correlating two entities' event
// time series across a lag window. A positive OptimalLagDays means
// Entity2's series follows Entity1's; negative means Entity2 leads.
type TemporalCorrelation struct {
	Entity1                string  `json:"entity1"`
	Entity2                string  `json:"entity2"`
	CorrelationCoefficient float64 `json:"correlation_coefficient"`
	OptimalLagDays         int     `json:"optimal_lag_days"`
	CausalityScore         float64 `json:"causality_score"`
	Confidence             float64 `json:"confidence"`
	EventsAnalyzed         int     `json:"events_analyzed"`
}

// IsCausal reports whether the causality score clears the threshold.
func (tc TemporalCorrelation) IsCausal(threshold float64) bool {
	return tc.CausalityScore >= threshold
}

// IsSignificant reports whether both the correlation magnitude and the
// causality score clear their thresholds.
func (tc TemporalCorrelation) IsSignificant(minCorrelation, minCausality float64) bool {
	return math.Abs(tc.CorrelationCoefficient) >= minCorrelation && tc.CausalityScore >= minCausality
}
