// Package multihop discovers indirect relationships by bounded
// breadth-first search over the explicit edge set.
package multihop

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ajitpratap0/relgraph/internal/models"
)

// DefaultMaxHops bounds the search depth when the caller does not
// supply one. The hop bound keeps pairwise search polynomial.
const DefaultMaxHops = 3

// edge is one traversable hop in the adjacency view.
type edge struct {
	to         string
	confidence float64
}

// candidate is the best path found so far for an ordered entity pair.
type candidate struct {
	path       []string
	confidence float64
}

// Discoverer finds paths between entity pairs that are not directly
// connected.
type Discoverer struct {
	maxHops int
	logger  *slog.Logger
}

// NewDiscoverer creates a Discoverer with the given hop bound.
// maxHops <= 0 disables the search entirely.
func NewDiscoverer(maxHops int, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{maxHops: maxHops, logger: logger}
}

// Discover runs bounded BFS from every entity and emits one
// relationship per connected-but-not-adjacent entity pair, carrying the
// full node path. Shorter paths win; among equal-length paths the one
// with the higher confidence product wins. Confidence is the product of
// the traversed edges' confidences, so it never exceeds the weakest
// edge on the path.
func (d *Discoverer) Discover(entities []models.Entity, explicitRels []models.Relationship) []models.Relationship {
	if d.maxHops <= 0 {
		return nil
	}

	idx, skipped := models.NewEntityIndex(entities)
	if skipped > 0 {
		d.logger.Warn("multihop: skipped malformed entities", "count", skipped)
	}

	adj, direct := buildAdjacency(explicitRels, idx)

	// best candidate per ordered (source, target) pair
	candidates := make(map[[2]string]candidate)

	for sourceID := range adj {
		dist, conf, parent := d.search(sourceID, adj)
		for targetID, dd := range dist {
			if targetID == sourceID || dd < 2 {
				continue
			}
			if direct[pairKey(sourceID, targetID)] {
				continue
			}
			path := reconstruct(sourceID, targetID, parent)
			candidates[[2]string{sourceID, targetID}] = candidate{path: path, confidence: conf[targetID]}
		}
	}

	// Collapse mirror pairs: a bidirectional edge chain yields both A→B
	// and B→A; keep the better one so each pair appears once.
	var rels []models.Relationship
	for key, cand := range candidates {
		mirror := [2]string{key[1], key[0]}
		if m, ok := candidates[mirror]; ok {
			if better(m.path, m.confidence, cand.path, cand.confidence) ||
				(equivalent(m, cand) && key[1] < key[0]) {
				continue
			}
		}
		rels = append(rels, d.toRelationship(key[0], key[1], cand.path, cand.confidence, idx))
	}

	d.logger.Debug("multihop: discovered paths", "entities", len(entities), "relationships", len(rels))
	return rels
}

// search is a level-synchronous BFS that tracks, per node, the minimal
// hop distance and the best confidence product at that distance. Parent
// pointers always decrease distance, so reconstructed paths cannot
// revisit a node.
func (d *Discoverer) search(source string, adj map[string][]edge) (map[string]int, map[string]float64, map[string]string) {
	dist := map[string]int{source: 0}
	conf := map[string]float64{source: 1.0}
	parent := map[string]string{}

	frontier := []string{source}
	for depth := 1; depth <= d.maxHops && len(frontier) > 0; depth++ {
		var next []string
		for _, u := range frontier {
			for _, e := range adj[u] {
				prev, seen := dist[e.to]
				c := conf[u] * e.confidence
				switch {
				case !seen:
					dist[e.to] = depth
					conf[e.to] = c
					parent[e.to] = u
					next = append(next, e.to)
				case prev == depth && c > conf[e.to]:
					conf[e.to] = c
					parent[e.to] = u
				}
			}
		}
		frontier = next
	}
	return dist, conf, parent
}

func (d *Discoverer) toRelationship(sourceID, targetID string, path []string, confidence float64, idx models.EntityIndex) models.Relationship {
	relType := models.RelationConnectedVia
	hops := len(path) - 1
	if hops > 2 && passesThroughCritical(path, idx) {
		relType = models.RelationIndirectlyAffects
	}

	names := make([]string, 0, len(path))
	for _, id := range path {
		names = append(names, idx[id].GetName())
	}

	return models.Relationship{
		ID:         uuid.NewString(),
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       relType,
		Direction:  models.Unidirectional,
		Strength:   models.StrengthFromConfidence(confidence),
		Confidence: confidence,
		Evidence:   []string{fmt.Sprintf("%d-hop path: %s", hops, strings.Join(names, " -> "))},
		Path:       path,
	}
}

// passesThroughCritical reports whether any intermediate node is a risk
// or objective entity.
func passesThroughCritical(path []string, idx models.EntityIndex) bool {
	for _, id := range path[1 : len(path)-1] {
		t := idx[id].Type
		if t == models.EntityTypeRisk || t == models.EntityTypeObjective {
			return true
		}
	}
	return false
}

// buildAdjacency converts explicit relationships into a traversal view,
// keeping the max-confidence edge per direction. Bidirectional edges
// are traversable both ways; unidirectional edges only forward.
// Relationships referencing unknown entities are ignored.
func buildAdjacency(rels []models.Relationship, idx models.EntityIndex) (map[string][]edge, map[string]bool) {
	type dirKey struct{ from, to string }
	bestEdge := make(map[dirKey]edge)
	direct := make(map[string]bool)

	add := func(from, to string, r models.Relationship) {
		k := dirKey{from, to}
		if cur, ok := bestEdge[k]; !ok || r.Confidence > cur.confidence {
			bestEdge[k] = edge{to: to, confidence: r.Confidence}
		}
	}

	for i := range rels {
		r := rels[i]
		if _, ok := idx[r.SourceID]; !ok {
			continue
		}
		if _, ok := idx[r.TargetID]; !ok {
			continue
		}
		add(r.SourceID, r.TargetID, r)
		if r.Direction == models.Bidirectional {
			add(r.TargetID, r.SourceID, r)
		}
		direct[pairKey(r.SourceID, r.TargetID)] = true
	}

	adj := make(map[string][]edge)
	for k, e := range bestEdge {
		adj[k.from] = append(adj[k.from], e)
	}
	return adj, direct
}

// pairKey is order-independent: a direct edge in either direction makes
// the pair "directly connected".
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

func reconstruct(source, target string, parent map[string]string) []string {
	var rev []string
	for at := target; ; {
		rev = append(rev, at)
		if at == source {
			break
		}
		at = parent[at]
	}
	path := make([]string, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}

// better reports whether path a (with confidence ca) beats path b:
// shorter first, then higher confidence.
func better(a []string, ca float64, b []string, cb float64) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return ca > cb
}

func equivalent(a, b candidate) bool {
	return len(a.path) == len(b.path) && a.confidence == b.confidence
}
