// Package discovery orchestrates the four relationship discovery
// strategies over a shared immutable input snapshot.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/relgraph/internal/explicit"
	"github.com/ajitpratap0/relgraph/internal/graphpattern"
	"github.com/ajitpratap0/relgraph/internal/metrics"
	"github.com/ajitpratap0/relgraph/internal/models"
	"github.com/ajitpratap0/relgraph/internal/multihop"
	"github.com/ajitpratap0/relgraph/internal/semantic"
	"github.com/ajitpratap0/relgraph/internal/temporal"
)

// Input is the snapshot a discovery run operates on. The engine never
// mutates it.
type Input struct {
	Entities  []models.Entity     `json:"entities"`
	Events    []models.Event      `json:"events,omitempty"`
	Documents []semantic.Document `json:"documents,omitempty"`
}

// Result carries the merged, deduplicated, filtered relationship set
// together with per-strategy counts.
type Result struct {
	Relationships []models.Relationship `json:"relationships"`
	Explicit      int                   `json:"explicit"`
	MultiHop      int                   `json:"multi_hop"`
	Temporal      int                   `json:"temporal"`
	Semantic      int                   `json:"semantic"`
	Deduplicated  int                   `json:"deduplicated"`
}

// Engine wires the four strategies together. Strategies share no
// mutable state, so they run in parallel over the same snapshot.
type Engine struct {
	builder    *explicit.Builder
	discoverer *multihop.Discoverer
	analyzer   *temporal.Analyzer
	miner      *semantic.Miner
	logger     *slog.Logger
}

// NewEngine creates an Engine from already-configured strategy
// components.
func NewEngine(b *explicit.Builder, d *multihop.Discoverer, a *temporal.Analyzer, m *semantic.Miner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{builder: b, discoverer: d, analyzer: a, miner: m, logger: logger}
}

// Discover runs every strategy, concatenates their outputs, removes
// duplicates, and applies the discovery context filters. The explicit
// pass runs first because the multi-hop discoverer traverses its
// output; temporal and semantic run concurrently alongside them.
func (e *Engine) Discover(ctx context.Context, in Input, dctx models.DiscoveryContext) (Result, error) {
	metrics.Inc(metrics.DiscoverTotal)

	var res Result
	var mu sync.Mutex
	add := func(rels []models.Relationship, counter *int) {
		mu.Lock()
		res.Relationships = append(res.Relationships, rels...)
		*counter = len(rels)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		explicitRels := e.builder.Build(in.Entities)
		add(explicitRels, &res.Explicit)
		metrics.ExplicitTotal.Add(int64(len(explicitRels)))

		multiRels := e.discoverer.Discover(in.Entities, explicitRels)
		add(multiRels, &res.MultiHop)
		metrics.MultiHopTotal.Add(int64(len(multiRels)))
		return nil
	})

	g.Go(func() error {
		if len(in.Events) == 0 {
			return nil
		}
		correlations := e.analyzer.Analyze(in.Entities, in.Events)
		rels := e.analyzer.Relationships(correlations)
		add(rels, &res.Temporal)
		metrics.TemporalTotal.Add(int64(len(rels)))
		return nil
	})

	g.Go(func() error {
		if len(in.Documents) == 0 {
			return nil
		}
		rels, err := e.miner.MineDocuments(gctx, in.Documents, in.Entities)
		if err != nil {
			return fmt.Errorf("mining documents: %w", err)
		}
		add(rels, &res.Semantic)
		metrics.SemanticTotal.Add(int64(len(rels)))
		return nil
	})

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	before := len(res.Relationships)
	res.Relationships = Dedup(res.Relationships)
	res.Deduplicated = before - len(res.Relationships)
	metrics.DedupDropped.Add(int64(res.Deduplicated))

	res.Relationships = Filter(res.Relationships, dctx)

	e.logger.Info("discovery run complete",
		"entities", len(in.Entities),
		"explicit", res.Explicit,
		"multi_hop", res.MultiHop,
		"temporal", res.Temporal,
		"semantic", res.Semantic,
		"deduplicated", res.Deduplicated,
		"returned", len(res.Relationships))
	return res, nil
}

// Patterns runs the pattern recognizer over an already-discovered
// relationship set.
func (e *Engine) Patterns(rec *graphpattern.Recognizer, entities []models.Entity, rels []models.Relationship) []models.GraphPattern {
	metrics.Inc(metrics.PatternsTotal)
	return rec.Recognize(entities, rels)
}

// Dedup collapses relationships sharing (source, target, type), keeping
// the higher-confidence instance. It is idempotent and preserves the
// first-seen order of surviving keys.
func Dedup(rels []models.Relationship) []models.Relationship {
	type key struct {
		source, target string
		relType        models.RelationshipType
	}
	best := make(map[key]int, len(rels))
	var order []key
	for i := range rels {
		k := key{rels[i].SourceID, rels[i].TargetID, rels[i].Type}
		if j, ok := best[k]; ok {
			if rels[i].Confidence > rels[j].Confidence {
				best[k] = i
			}
			continue
		}
		best[k] = i
		order = append(order, k)
	}
	out := make([]models.Relationship, 0, len(order))
	for _, k := range order {
		out = append(out, rels[best[k]])
	}
	return out
}

// Filter applies a discovery context to a relationship list.
func Filter(rels []models.Relationship, dctx models.DiscoveryContext) []models.Relationship {
	out := make([]models.Relationship, 0, len(rels))
	for i := range rels {
		if dctx.ShouldInclude(rels[i]) {
			out = append(out, rels[i])
		}
	}
	return out
}
