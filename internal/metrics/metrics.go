// Package metrics provides application-level counters using stdlib expvar.
// Counters are automatically exported on the /debug/vars HTTP endpoint
// when net/http/pprof is imported in the main binary.
package metrics

import "expvar"

// Operation counters.
var (
	DiscoverTotal = expvar.NewInt("relgraph_discover_total")
	ExplicitTotal = expvar.NewInt("relgraph_explicit_rels_total")
	MultiHopTotal = expvar.NewInt("relgraph_multihop_rels_total")
	TemporalTotal = expvar.NewInt("relgraph_temporal_rels_total")
	SemanticTotal = expvar.NewInt("relgraph_semantic_rels_total")
	PatternsTotal = expvar.NewInt("relgraph_patterns_total")
	ExtractTotal  = expvar.NewInt("relgraph_extract_total")
	DedupDropped  = expvar.NewInt("relgraph_dedup_dropped_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
