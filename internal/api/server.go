package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ajitpratap0/relgraph/internal/discovery"
	"github.com/ajitpratap0/relgraph/internal/explicit"
	"github.com/ajitpratap0/relgraph/internal/graphpattern"
	"github.com/ajitpratap0/relgraph/internal/models"
	"github.com/ajitpratap0/relgraph/internal/semantic"
)

// maxBodyBytes limits request bodies; entity/event snapshots can be
// large but bounded.
const maxBodyBytes = 8 << 20

// Server is an HTTP API server that exposes discovery operations.
type Server struct {
	engine     *discovery.Engine
	recognizer *graphpattern.Recognizer
	miner      *semantic.Miner
	rules      []explicit.Rule
	logger     *slog.Logger
	authToken  string // empty = no auth required
}

// NewServer creates a new Server with the given dependencies.
func NewServer(engine *discovery.Engine, rec *graphpattern.Recognizer, miner *semantic.Miner, rules []explicit.Rule, logger *slog.Logger, authToken string) *Server {
	return &Server{
		engine:     engine,
		recognizer: rec,
		miner:      miner,
		rules:      rules,
		logger:     logger,
		authToken:  authToken,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check — no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("POST /v1/discover", s.auth(s.handleDiscover))
	mux.HandleFunc("POST /v1/mine", s.auth(s.handleMine))
	mux.HandleFunc("POST /v1/patterns", s.auth(s.handlePatterns))
	mux.HandleFunc("GET /v1/rules", s.auth(s.handleRules))

	return mux
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// discoverRequest is the body accepted by POST /v1/discover.
type discoverRequest struct {
	Entities      []models.Entity     `json:"entities"`
	Events        []models.Event      `json:"events"`
	Documents     []semantic.Document `json:"documents"`
	MinConfidence float64             `json:"min_confidence"`
	ExcludeTypes  []string            `json:"exclude_types"`
	FocusEntities []string            `json:"focus_entities"`
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Entities) == 0 {
		s.writeError(w, http.StatusBadRequest, "entities are required")
		return
	}

	dctx := buildContext(req.MinConfidence, req.ExcludeTypes, req.FocusEntities)

	result, err := s.engine.Discover(r.Context(), discovery.Input{
		Entities:  req.Entities,
		Events:    req.Events,
		Documents: req.Documents,
	}, dctx)
	if err != nil {
		s.logger.Error("discovery failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "discovery failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// mineRequest is the body accepted by POST /v1/mine.
type mineRequest struct {
	Text      string                      `json:"text"`
	Entities  []models.Entity             `json:"entities"`
	Metadata  map[string]models.AttrValue `json:"metadata"`
	Documents []semantic.Document         `json:"documents"`
}

// mineResponse is returned by POST /v1/mine.
type mineResponse struct {
	Relationships []models.Relationship `json:"relationships"`
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req mineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Text == "" && len(req.Documents) == 0 {
		s.writeError(w, http.StatusBadRequest, "text or documents are required")
		return
	}
	if len(req.Entities) == 0 {
		s.writeError(w, http.StatusBadRequest, "entities are required")
		return
	}

	var rels []models.Relationship
	if req.Text != "" {
		rels = append(rels, s.miner.Mine(req.Text, req.Entities, req.Metadata)...)
	}
	if len(req.Documents) > 0 {
		docRels, err := s.miner.MineDocuments(r.Context(), req.Documents, req.Entities)
		if err != nil {
			s.logger.Error("document mining failed", "error", err)
			s.writeError(w, http.StatusInternalServerError, "document mining failed")
			return
		}
		rels = append(rels, docRels...)
	}

	s.writeJSON(w, http.StatusOK, mineResponse{Relationships: discovery.Dedup(rels)})
}

// patternsRequest is the body accepted by POST /v1/patterns.
type patternsRequest struct {
	Entities      []models.Entity       `json:"entities"`
	Relationships []models.Relationship `json:"relationships"`
}

// patternsResponse is returned by POST /v1/patterns.
type patternsResponse struct {
	Patterns       []models.GraphPattern         `json:"patterns"`
	Collaborations []models.CollaborationPattern `json:"collaborations"`
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req patternsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Entities) == 0 {
		s.writeError(w, http.StatusBadRequest, "entities are required")
		return
	}

	s.writeJSON(w, http.StatusOK, patternsResponse{
		Patterns:       s.recognizer.Recognize(req.Entities, req.Relationships),
		Collaborations: s.recognizer.Collaborations(req.Entities, req.Relationships),
	})
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]explicit.Rule{"rules": s.rules})
}

// --- helpers ---

// buildContext converts request filter fields into a DiscoveryContext.
func buildContext(minConfidence float64, excludeTypes, focusEntities []string) models.DiscoveryContext {
	dctx := models.DiscoveryContext{MinConfidence: minConfidence}
	if len(excludeTypes) > 0 {
		dctx.ExcludeTypes = make(map[models.RelationshipType]bool, len(excludeTypes))
		for _, t := range excludeTypes {
			dctx.ExcludeTypes[models.RelationshipType(t)] = true
		}
	}
	if len(focusEntities) > 0 {
		dctx.FocusEntities = make(map[string]bool, len(focusEntities))
		for _, id := range focusEntities {
			dctx.FocusEntities[id] = true
		}
	}
	return dctx
}

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
