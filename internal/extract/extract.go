// Package extract identifies business entities in free text using
// Claude. It is the upstream collaborator that feeds the discovery
// engine; the engine itself never performs network I/O.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/ajitpratap0/relgraph/internal/metrics"
	"github.com/ajitpratap0/relgraph/internal/models"
	"github.com/ajitpratap0/relgraph/pkg/xmlutil"
)

// extractionPromptTemplate is the prompt used to identify entities.
// User content is injected via an XML tag to prevent prompt injection.
const extractionPromptTemplate = `You are an entity extraction system for a business knowledge graph. Analyze the text and identify named entities.

For each entity provide:
- name: The canonical name of the entity
- type: One of "customer", "team", "project", "risk", "person", "subscription", "objective"
  - customer: A named customer or client organization
  - team: A named team or department
  - project: A named project, product, or initiative
  - risk: A named risk, issue, or threat
  - person: A named individual
  - subscription: A named subscription, plan, or contract
  - objective: A named goal, objective, or key result
- aliases: Alternative names or abbreviations (may be empty)
- attributes: A flat JSON object of scalar attributes mentioned in the text (may be empty)

Return a JSON array of entities. If no notable entities are found, return [].

<content>%s</content>

Extract entities as JSON array:`

// capturedEntity is the raw JSON shape returned by Claude.
type capturedEntity struct {
	Name       string                      `json:"name"`
	Type       string                      `json:"type"`
	Aliases    []string                    `json:"aliases"`
	Attributes map[string]models.AttrValue `json:"attributes"`
}

// Extractor identifies entities in text using Claude.
type Extractor struct {
	client *anthropic.Client
	model  string
	logger *slog.Logger
}

// NewExtractor creates an extractor backed by the Claude API.
func NewExtractor(apiKey, model string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Extractor{
		client: &c,
		model:  model,
		logger: logger,
	}
}

// Extract identifies entities in the given content. On API error it
// logs a warning and returns (nil, nil) for graceful degradation.
func (e *Extractor) Extract(ctx context.Context, content string) ([]models.Entity, error) {
	metrics.Inc(metrics.ExtractTotal)
	prompt := fmt.Sprintf(extractionPromptTemplate, xmlutil.Escape(content))

	resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
		System: []anthropic.TextBlockParam{
			{Text: "You are a precise entity extraction system. Output only valid JSON."},
		},
	})
	if err != nil {
		e.logger.Warn("extract: Claude API error, skipping", "error", err)
		return nil, nil
	}

	var responseText string
	for i := range resp.Content {
		if resp.Content[i].Type == "text" {
			responseText = resp.Content[i].Text
			break
		}
	}

	if responseText == "" {
		e.logger.Warn("extract: empty response from Claude")
		return nil, nil
	}

	e.logger.Debug("extract: response", "response", responseText)

	entities, err := e.parseEntities(responseText)
	if err != nil {
		return nil, err
	}

	e.logger.Info("extracted entities", "count", len(entities))
	return entities, nil
}

// parseEntities converts Claude's JSON response into entities, skipping
// any entry with an unrecognized type.
func (e *Extractor) parseEntities(responseText string) ([]models.Entity, error) {
	var raw []capturedEntity
	if jsonErr := json.Unmarshal([]byte(responseText), &raw); jsonErr != nil {
		return nil, fmt.Errorf("extract: parsing response: %w (raw: %s)", jsonErr, responseText)
	}

	entities := make([]models.Entity, 0, len(raw))
	for i := range raw {
		et := models.EntityType(raw[i].Type)
		if !et.IsValid() {
			e.logger.Warn("extract: unknown entity type, skipping",
				"type", raw[i].Type, "name", raw[i].Name)
			continue
		}
		attrs := raw[i].Attributes
		if attrs == nil {
			attrs = make(map[string]models.AttrValue, 1)
		}
		if _, ok := attrs["name"]; !ok {
			attrs["name"] = models.String(raw[i].Name)
		}
		entities = append(entities, models.Entity{
			ID:         uuid.New().String(),
			Type:       et,
			Attributes: attrs,
			Aliases:    raw[i].Aliases,
		})
	}
	return entities, nil
}
