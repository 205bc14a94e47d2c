// Package graphpattern detects structural patterns — hubs, triangles,
// and communities — over a discovered relationship set. Patterns are
// descriptive outputs only and never feed back into discovery.
package graphpattern

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/ajitpratap0/relgraph/internal/models"
)

const (
	// DefaultHubCentralityThreshold is the normalized degree above
	// which an entity counts as a hub. Heuristic tunable.
	DefaultHubCentralityThreshold = 0.5

	// DefaultMinCommunitySize is the smallest connected component
	// reported as a community.
	DefaultMinCommunitySize = 3
)

// Recognizer computes structural patterns over an undirected adjacency
// view of the relationships.
type Recognizer struct {
	hubThreshold     float64
	minCommunitySize int
	logger           *slog.Logger
}

// NewRecognizer creates a Recognizer. Out-of-range options fall back to
// the package defaults.
func NewRecognizer(hubThreshold float64, minCommunitySize int, logger *slog.Logger) *Recognizer {
	if hubThreshold <= 0 || hubThreshold > 1 {
		hubThreshold = DefaultHubCentralityThreshold
	}
	if minCommunitySize < 2 {
		minCommunitySize = DefaultMinCommunitySize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{hubThreshold: hubThreshold, minCommunitySize: minCommunitySize, logger: logger}
}

// Recognize returns all hub, triangle, and community patterns found in
// the relationship set. Direction is ignored: every edge is
// traversable both ways for structural analysis.
func (r *Recognizer) Recognize(entities []models.Entity, relationships []models.Relationship) []models.GraphPattern {
	idx, skipped := models.NewEntityIndex(entities)
	if skipped > 0 {
		r.logger.Warn("graphpattern: skipped malformed entities", "count", skipped)
	}

	adj := buildUndirected(relationships, idx)
	centrality := degreeCentrality(adj, len(idx))

	var patterns []models.GraphPattern
	patterns = append(patterns, r.hubs(adj, centrality, idx)...)
	patterns = append(patterns, r.triangles(adj)...)
	patterns = append(patterns, r.communities(adj)...)

	r.logger.Debug("graphpattern: recognized patterns",
		"entities", len(idx), "relationships", len(relationships), "patterns", len(patterns))
	return patterns
}

// Collaborations groups entities connected by collaboration-kind edges
// (WORKS_WITH, COLLABORATES_WITH). The strength of a group is the mean
// confidence of its collaboration edges.
func (r *Recognizer) Collaborations(entities []models.Entity, relationships []models.Relationship) []models.CollaborationPattern {
	idx, _ := models.NewEntityIndex(entities)

	var collab []models.Relationship
	for i := range relationships {
		t := relationships[i].Type
		if t == models.RelationWorksWith || t == models.RelationCollaborates {
			collab = append(collab, relationships[i])
		}
	}
	adj := buildUndirected(collab, idx)

	var out []models.CollaborationPattern
	for _, comp := range components(adj) {
		if len(comp) < 2 {
			continue
		}
		member := make(map[string]bool, len(comp))
		for _, id := range comp {
			member[id] = true
		}
		var sum float64
		var n int
		var evidence []string
		for i := range collab {
			if member[collab[i].SourceID] && member[collab[i].TargetID] {
				sum += collab[i].Confidence
				n++
				evidence = append(evidence, collab[i].Evidence...)
			}
		}
		if n == 0 {
			continue
		}
		out = append(out, models.CollaborationPattern{
			ID:                    uuid.NewString(),
			EntityIDs:             comp,
			CollaborationStrength: sum / float64(n),
			SupportingEvidence:    evidence,
		})
	}
	return out
}

// hubs reports every entity whose normalized degree clears the
// threshold, together with its direct neighbors.
func (r *Recognizer) hubs(adj map[string]map[string]bool, centrality map[string]float64, idx models.EntityIndex) []models.GraphPattern {
	var patterns []models.GraphPattern
	for id, score := range centrality {
		if score < r.hubThreshold {
			continue
		}
		members := []string{id}
		scores := map[string]float64{id: score}
		for peer := range adj[id] {
			members = append(members, peer)
			scores[peer] = centrality[peer]
		}
		sort.Strings(members[1:])
		patterns = append(patterns, models.GraphPattern{
			ID:               uuid.NewString(),
			Type:             models.PatternHub,
			EntityIDs:        members,
			CentralityScores: scores,
			SupportingEvidence: []string{
				fmt.Sprintf("%s connects %d entities (centrality %.2f)", idx[id].GetName(), len(adj[id]), score),
			},
		})
	}
	return patterns
}

// triangles reports every fully mutually connected 3-entity subset.
func (r *Recognizer) triangles(adj map[string]map[string]bool) []models.GraphPattern {
	var patterns []models.GraphPattern
	seen := make(map[string]bool)
	for u, peers := range adj {
		var ps []string
		for p := range peers {
			ps = append(ps, p)
		}
		sort.Strings(ps)
		for i := 0; i < len(ps); i++ {
			for j := i + 1; j < len(ps); j++ {
				if !adj[ps[i]][ps[j]] {
					continue
				}
				tri := []string{u, ps[i], ps[j]}
				sort.Strings(tri)
				key := tri[0] + "|" + tri[1] + "|" + tri[2]
				if seen[key] {
					continue
				}
				seen[key] = true
				patterns = append(patterns, models.GraphPattern{
					ID:        uuid.NewString(),
					Type:      models.PatternTriangle,
					EntityIDs: tri,
					SupportingEvidence: []string{
						fmt.Sprintf("mutual connection among %s, %s, %s", tri[0], tri[1], tri[2]),
					},
				})
			}
		}
	}
	return patterns
}

// communities reports connected components at or above the minimum
// size, annotated with edge density.
func (r *Recognizer) communities(adj map[string]map[string]bool) []models.GraphPattern {
	var patterns []models.GraphPattern
	for _, comp := range components(adj) {
		if len(comp) < r.minCommunitySize {
			continue
		}
		edges := 0
		for _, id := range comp {
			edges += len(adj[id])
		}
		edges /= 2
		possible := len(comp) * (len(comp) - 1) / 2
		density := 0.0
		if possible > 0 {
			density = float64(edges) / float64(possible)
		}
		patterns = append(patterns, models.GraphPattern{
			ID:        uuid.NewString(),
			Type:      models.PatternCommunity,
			EntityIDs: comp,
			Density:   density,
			SupportingEvidence: []string{
				fmt.Sprintf("component of %d entities, %d edges, density %.2f", len(comp), edges, density),
			},
		})
	}
	return patterns
}

// components returns the connected components as sorted id slices,
// ordered by their smallest member.
func components(adj map[string]map[string]bool) [][]string {
	visited := make(map[string]bool, len(adj))
	var out [][]string

	var nodes []string
	for id := range adj {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)

	for _, start := range nodes {
		if visited[start] {
			continue
		}
		var comp []string
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			comp = append(comp, u)
			for peer := range adj[u] {
				if !visited[peer] {
					visited[peer] = true
					queue = append(queue, peer)
				}
			}
		}
		sort.Strings(comp)
		out = append(out, comp)
	}
	return out
}

// degreeCentrality is degree normalized by the maximum possible degree.
func degreeCentrality(adj map[string]map[string]bool, totalEntities int) map[string]float64 {
	scores := make(map[string]float64, len(adj))
	if totalEntities < 2 {
		return scores
	}
	for id, peers := range adj {
		scores[id] = float64(len(peers)) / float64(totalEntities-1)
	}
	return scores
}

// buildUndirected builds a symmetric adjacency view, dropping
// self-loops and edges touching unknown entities.
func buildUndirected(relationships []models.Relationship, idx models.EntityIndex) map[string]map[string]bool {
	adj := make(map[string]map[string]bool)
	link := func(a, b string) {
		if adj[a] == nil {
			adj[a] = make(map[string]bool)
		}
		adj[a][b] = true
	}
	for i := range relationships {
		r := relationships[i]
		if r.SourceID == r.TargetID {
			continue
		}
		if _, ok := idx[r.SourceID]; !ok {
			continue
		}
		if _, ok := idx[r.TargetID]; !ok {
			continue
		}
		link(r.SourceID, r.TargetID)
		link(r.TargetID, r.SourceID)
	}
	return adj
}
