// Package semantic mines relationships out of unstructured text by
// locating entity mentions and applying verb/phrase patterns to the
// text between them.
package semantic

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/relgraph/internal/models"
	"github.com/ajitpratap0/relgraph/pkg/textutil"
)

const (
	// DefaultMaxTextLength truncates pathologically long documents
	// before mining to bound cost.
	DefaultMaxTextLength = 50000

	// maxPairGap is the widest byte gap between two mentions that is
	// still considered for pattern matching.
	maxPairGap = 150

	// mineConcurrency bounds parallel per-document mining.
	mineConcurrency = 4
)

// Document is one unit of text to mine, with optional provenance
// metadata that is copied onto every relationship mined from it.
type Document struct {
	ID       string                      `json:"id"`
	Text     string                      `json:"text"`
	Metadata map[string]models.AttrValue `json:"metadata,omitempty"`
}

// Miner extracts relationships from text.
type Miner struct {
	patterns      []Pattern
	maxTextLength int
	logger        *slog.Logger
}

// NewMiner creates a Miner over the given pattern list. A non-positive
// maxTextLength falls back to the default.
func NewMiner(patterns []Pattern, maxTextLength int, logger *slog.Logger) *Miner {
	if maxTextLength <= 0 {
		maxTextLength = DefaultMaxTextLength
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{patterns: patterns, maxTextLength: maxTextLength, logger: logger}
}

// Mine runs mention detection and pattern extraction over a single
// text. A text with no recognizable mentions yields an empty result,
// not an error. Document metadata, when supplied, is copied onto each
// relationship under "document_"-prefixed keys.
func (m *Miner) Mine(text string, entities []models.Entity, docMeta map[string]models.AttrValue) []models.Relationship {
	text = textutil.Truncate(text, m.maxTextLength)

	mentions := dedupeMentions(detectMentions(text, entities))
	if len(mentions) < 2 {
		return nil
	}

	var rels []models.Relationship
	for i := 0; i+1 < len(mentions); i++ {
		m1, m2 := mentions[i], mentions[i+1]
		if m1.EntityID == m2.EntityID {
			continue
		}
		if m2.StartPos-m1.EndPos > maxPairGap {
			continue
		}

		between := text[m1.EndPos:m2.StartPos]
		pat := matchPattern(m.patterns, between)
		if pat == nil {
			continue
		}

		sentence := textutil.Sentence(text, m1.StartPos, m2.EndPos)
		confidence := pat.Confidence * m1.Confidence * m2.Confidence
		if hedgeRe.MatchString(sentence) {
			confidence *= hedgePenalty
		}

		rel := models.Relationship{
			ID:         uuid.NewString(),
			SourceID:   m1.EntityID,
			TargetID:   m2.EntityID,
			Type:       pat.Type,
			Direction:  pat.Direction,
			Strength:   models.StrengthFromConfidence(confidence),
			Confidence: confidence,
			Evidence:   []string{sentence},
		}
		if len(docMeta) > 0 {
			rel.Metadata = make(map[string]models.AttrValue, len(docMeta))
			for k, v := range docMeta {
				rel.Metadata["document_"+k] = v
			}
		}
		rels = append(rels, rel)
	}

	m.logger.Debug("semantic: mined text", "mentions", len(mentions), "relationships", len(rels))
	return rels
}

// MineDocuments is the batch form: each document is mined independently
// and in parallel, and every resulting relationship is tagged with the
// document's id. A document with an empty id is skipped and logged; it
// never aborts the batch.
func (m *Miner) MineDocuments(ctx context.Context, docs []Document, entities []models.Entity) ([]models.Relationship, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(mineConcurrency)

	var mu sync.Mutex
	var all []models.Relationship

	for i := range docs {
		doc := docs[i]
		if doc.ID == "" {
			m.logger.Warn("semantic: skipping document without id")
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			meta := make(map[string]models.AttrValue, len(doc.Metadata)+1)
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			meta["id"] = models.String(doc.ID)

			rels := m.Mine(doc.Text, entities, meta)

			mu.Lock()
			all = append(all, rels...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}
