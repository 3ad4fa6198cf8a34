package rules

import (
	"fmt"

	"github.com/cloudmap/cloudmap/internal/models"
)

// DefaultRuleRegistry is a simple, ordered, in-memory registry keyed by
// category. Rules are returned in registration order.
// Register panics on duplicate categories to catch wiring mistakes at startup.
type DefaultRuleRegistry struct {
	rules []Rule
	index map[models.Category]Rule
}

// NewDefaultRuleRegistry returns an empty registry ready for rule registration.
func NewDefaultRuleRegistry() *DefaultRuleRegistry {
	return &DefaultRuleRegistry{
		index: make(map[models.Category]Rule),
	}
}

// Register adds rule to the registry. Panics if the rule's category is
// already taken.
func (r *DefaultRuleRegistry) Register(rule Rule) {
	if existing, exists := r.index[rule.Category()]; exists {
		panic(fmt.Sprintf("duplicate rule for category %q: %s and %s", rule.Category(), existing.ID(), rule.ID()))
	}
	r.rules = append(r.rules, rule)
	r.index[rule.Category()] = rule
}

// All returns all registered rules in registration order.
func (r *DefaultRuleRegistry) All() []Rule {
	return r.rules
}

// Lookup returns the rule registered for category.
func (r *DefaultRuleRegistry) Lookup(category models.Category) (Rule, bool) {
	rule, ok := r.index[category]
	return rule, ok
}

// Select returns the rules registered for categories, in registration order
// and without duplicates. An empty categories slice selects every rule.
// A category with no registered rule is an error.
func (r *DefaultRuleRegistry) Select(categories []models.Category) ([]Rule, error) {
	if len(categories) == 0 {
		return r.All(), nil
	}
	wanted := make(map[models.Category]bool, len(categories))
	for _, c := range categories {
		if _, ok := r.index[c]; !ok {
			return nil, fmt.Errorf("%w: %q has no registered rule", models.ErrUnknownCategory, c)
		}
		wanted[c] = true
	}
	var selected []Rule
	for _, rule := range r.rules {
		if wanted[rule.Category()] {
			selected = append(selected, rule)
		}
	}
	return selected, nil
}
