package memory

import (
	"math"

	"github.com/lazypower/engram/internal/model"
)

// CategoryRule holds the decay parameters for one category.
type CategoryRule struct {
	HalfLifeDays float64
	Floor        float64
}

// PolicyConfig is the immutable configuration for decay and reinforcement.
type PolicyConfig struct {
	Categories map[model.Category]CategoryRule
	// ProtectedTags suppress decay entirely for records carrying any of them.
	ProtectedTags []string
	// DecayWriteThreshold is the minimum importance drop worth persisting.
	DecayWriteThreshold float64
	// ReinforceStep is added to the pending accumulator on each access.
	ReinforceStep float64
	// ReinforceThreshold is the accumulated value at which the boost commits.
	ReinforceThreshold float64
}

// DefaultPolicyConfig returns the stock category table and constants.
// Long-lived knowledge (facts, preferences) outlives operational chatter.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Categories: map[model.Category]CategoryRule{
			model.CategoryGeneral:      {HalfLifeDays: 30, Floor: 1},
			model.CategoryFact:         {HalfLifeDays: 90, Floor: 3},
			model.CategoryPreference:   {HalfLifeDays: 120, Floor: 3},
			model.CategoryConversation: {HalfLifeDays: 14, Floor: 1},
			model.CategoryTask:         {HalfLifeDays: 7, Floor: 1},
			model.CategoryEphemeral:    {HalfLifeDays: 1, Floor: 1},
		},
		ProtectedTags:       []string{"core", "identity", "pinned"},
		DecayWriteThreshold: 0.5,
		ReinforceStep:       0.1,
		ReinforceThreshold:  0.5,
	}
}

// Policy applies time decay and access reinforcement to importance scores.
// Pure functions over an immutable config; no state beyond it.
type Policy struct {
	cfg       PolicyConfig
	protected map[string]bool
}

// NewPolicy builds a Policy from cfg. Zero-valued constants fall back to
// the defaults so a partially filled config stays usable.
func NewPolicy(cfg PolicyConfig) *Policy {
	def := DefaultPolicyConfig()
	if cfg.Categories == nil {
		cfg.Categories = def.Categories
	}
	if cfg.ProtectedTags == nil {
		cfg.ProtectedTags = def.ProtectedTags
	}
	if cfg.DecayWriteThreshold == 0 {
		cfg.DecayWriteThreshold = def.DecayWriteThreshold
	}
	if cfg.ReinforceStep == 0 {
		cfg.ReinforceStep = def.ReinforceStep
	}
	if cfg.ReinforceThreshold == 0 {
		cfg.ReinforceThreshold = def.ReinforceThreshold
	}

	protected := make(map[string]bool, len(cfg.ProtectedTags))
	for _, t := range cfg.ProtectedTags {
		protected[t] = true
	}
	return &Policy{cfg: cfg, protected: protected}
}

// rule returns the category's parameters, falling back to the default
// category for unknown values.
func (p *Policy) rule(c model.Category) CategoryRule {
	if r, ok := p.cfg.Categories[c]; ok {
		return r
	}
	return p.cfg.Categories[model.DefaultCategory]
}

// Decay returns the importance after daysIdle days without access.
// Half-life decay, rounded to the nearest 0.5, clamped to the category
// floor. Zero or negative idle time never amplifies: importance is
// returned unchanged.
func (p *Policy) Decay(importance, daysIdle float64, category model.Category) float64 {
	if daysIdle <= 0 {
		return importance
	}

	r := p.rule(category)
	decayed := importance * math.Pow(0.5, daysIdle/r.HalfLifeDays)
	decayed = roundHalf(decayed)
	if decayed < r.Floor {
		decayed = r.Floor
	}
	if decayed < model.MinImportance {
		decayed = model.MinImportance
	}
	return decayed
}

// ShouldWriteDecay reports whether a decay delta is large enough to persist.
// Anti-churn: negligible drops are recomputed on the next touch instead of
// rewriting the snapshot.
func (p *Policy) ShouldWriteDecay(old, new float64) bool {
	return old-new >= p.cfg.DecayWriteThreshold
}

// Protected reports whether any tag suppresses decay for its record.
func (p *Policy) Protected(tags []string) bool {
	for _, t := range tags {
		if p.protected[t] {
			return true
		}
	}
	return false
}

// Reinforce credits one access. The pending accumulator grows by the step;
// once it reaches the threshold the full accumulated boost commits to
// importance (capped at the maximum, rounded to the nearest 0.5) and the
// accumulator resets. Bounds write amplification to one commit per
// threshold/step accesses.
func (p *Policy) Reinforce(importance, pending float64) (newImportance, newPending float64, commit bool) {
	pending += p.cfg.ReinforceStep
	if pending < p.cfg.ReinforceThreshold {
		return importance, pending, false
	}

	boosted := importance + pending
	if boosted > model.MaxImportance {
		boosted = model.MaxImportance
	}
	return roundHalf(boosted), 0, true
}

// roundHalf rounds to the nearest 0.5.
func roundHalf(x float64) float64 {
	return math.Round(x*2) / 2
}
