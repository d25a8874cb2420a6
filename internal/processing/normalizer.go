package processing

// Normalizer composes cleaning rules into one text transformation. The
// default rule order is URL removal, email removal, then whitespace
// collapse, which makes the composed function idempotent: applying it
// to its own output changes nothing, and surviving characters keep
// their relative order.
type Normalizer struct {
	rules   []CleaningRule
	enabled map[string]bool
}

// RuleResult records whether one rule changed the text.
type RuleResult struct {
	Rule    string `json:"rule"`
	Changed bool   `json:"changed"`
}

// NewNormalizer creates a normalizer with the default rules enabled.
func NewNormalizer() *Normalizer {
	n := &Normalizer{enabled: make(map[string]bool)}
	n.AddRule(&URLRemovalRule{})
	n.AddRule(&EmailRemovalRule{})
	n.AddRule(&WhitespaceCollapseRule{})
	return n
}

// AddRule appends a rule to the chain and enables it.
func (n *Normalizer) AddRule(rule CleaningRule) {
	n.rules = append(n.rules, rule)
	n.enabled[rule.Name()] = true
}

// EnableRule enables a rule by name.
func (n *Normalizer) EnableRule(name string) {
	n.enabled[name] = true
}

// DisableRule disables a rule by name without removing it.
func (n *Normalizer) DisableRule(name string) {
	n.enabled[name] = false
}

// Normalize runs all enabled rules in order.
func (n *Normalizer) Normalize(text string) string {
	for _, rule := range n.rules {
		if !n.enabled[rule.Name()] {
			continue
		}
		text = rule.Apply(text)
	}
	return text
}

// NormalizeDetailed runs all enabled rules in order and reports which
// rules changed the text.
func (n *Normalizer) NormalizeDetailed(text string) (string, []RuleResult) {
	results := make([]RuleResult, 0, len(n.rules))
	for _, rule := range n.rules {
		if !n.enabled[rule.Name()] {
			continue
		}
		before := text
		text = rule.Apply(text)
		results = append(results, RuleResult{Rule: rule.Name(), Changed: text != before})
	}
	return text, results
}
