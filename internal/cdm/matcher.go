package cdm

import (
	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// Weights and thresholds of the default scoring heuristic. The repository
// has no authoritative scoring formula, so the whole strategy sits behind
// the Scorer interface and these values are construction-time tunables.
const (
	// DefaultThreshold is the minimum combined score for an advisory match.
	DefaultThreshold = 0.65

	// nameWeight and attributeWeight combine the two signals for entities
	// that declare attributes. Attribute-less entities score on name alone.
	nameWeight      = 0.6
	attributeWeight = 0.4

	// fieldMappingThreshold is the minimum similarity for mapping a source
	// attribute onto a canonical attribute.
	fieldMappingThreshold = 0.75
)

// Scorer computes a match score in [0, 1] between a diagram entity and a
// canonical template, along with the attribute field mapping the score is
// based on. Implementations must be deterministic and must not modify the
// entity.
type Scorer interface {
	Score(entity mdv.Entity, tpl Template) (float64, map[string]string)
}

// Matcher implements mdv.Matcher against the package registry.
type Matcher struct {
	registry  []Template
	scorer    Scorer
	threshold float64
	logger    mdv.Logger
}

// Option is a functional option for configuring a Matcher.
type Option func(*Matcher)

// WithThreshold overrides the acceptance threshold.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.threshold = threshold
	}
}

// WithScorer replaces the default scoring heuristic.
func WithScorer(scorer Scorer) Option {
	return func(m *Matcher) {
		m.scorer = scorer
	}
}

// WithRegistry replaces the canonical template registry. Used by tests.
func WithRegistry(registry []Template) Option {
	return func(m *Matcher) {
		m.registry = registry
	}
}

// NewMatcher creates a Matcher with the built-in registry and scoring
// heuristic. Panics if logger is nil.
func NewMatcher(logger mdv.Logger, opts ...Option) *Matcher {
	if logger == nil {
		panic("logger cannot be nil")
	}
	m := &Matcher{
		registry:  Registry(),
		scorer:    heuristicScorer{},
		threshold: DefaultThreshold,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DetectCanonicalEntities returns at most one advisory match per source
// entity. Entities are processed in input order and templates in registry
// declaration order; a later template must score strictly higher to win,
// which makes ties resolve to the earlier template.
func (m *Matcher) DetectCanonicalEntities(entities []mdv.Entity) []mdv.CDMMatch {
	var matches []mdv.CDMMatch

	for _, entity := range entities {
		bestScore := 0.0
		bestIdx := -1
		var bestMapping map[string]string

		for i, tpl := range m.registry {
			score, mapping := m.scorer.Score(entity, tpl)
			if score > bestScore {
				bestScore = score
				bestIdx = i
				bestMapping = mapping
			}
		}

		if bestIdx < 0 || bestScore < m.threshold {
			continue
		}

		tpl := m.registry[bestIdx]
		m.logger.Verbose("entity %q matches canonical %q (score %.2f)", entity.Name, tpl.LogicalName, bestScore)
		matches = append(matches, mdv.CDMMatch{
			EntityName:   entity.Name,
			LogicalName:  tpl.LogicalName,
			DisplayName:  tpl.DisplayName,
			Score:        bestScore,
			FieldMapping: bestMapping,
		})
	}

	return matches
}

// heuristicScorer is the default Scorer: weighted name similarity plus
// attribute overlap.
type heuristicScorer struct{}

func (heuristicScorer) Score(entity mdv.Entity, tpl Template) (float64, map[string]string) {
	nameScore := nameSimilarity(entity.Name, tpl)

	if len(entity.Attributes) == 0 {
		return nameScore, nil
	}

	mapping := fieldMapping(entity, tpl)
	attrScore := float64(len(mapping)) / float64(len(entity.Attributes))

	return nameWeight*nameScore + attributeWeight*attrScore, mapping
}

// fieldMapping aligns source attributes with canonical attributes. Each
// canonical attribute is consumed by at most one source attribute, assigned
// greedily in declaration order.
func fieldMapping(entity mdv.Entity, tpl Template) map[string]string {
	mapping := make(map[string]string)
	used := make(map[string]bool, len(tpl.Attributes))

	for _, attr := range entity.Attributes {
		normalized := normalizeName(attr.Name)

		bestScore := 0.0
		best := ""
		for _, candidate := range tpl.Attributes {
			if used[candidate] {
				continue
			}
			if s := similarity(normalized, candidate); s > bestScore {
				bestScore = s
				best = candidate
			}
		}

		if best != "" && bestScore >= fieldMappingThreshold {
			mapping[attr.Name] = best
			used[best] = true
		}
	}

	if len(mapping) == 0 {
		return nil
	}
	return mapping
}

var _ mdv.Matcher = (*Matcher)(nil)
