package validator

// Registry holds input rules in evaluation order. The first failing rule wins.
type Registry struct {
	rules []Rule
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns the clinical input length rules.
func DefaultRegistry(minLen, maxLen int) *Registry {
	r := NewRegistry()
	r.Register(minLengthRule{min: minLen})
	r.Register(maxLengthRule{max: maxLen})
	return r
}

// Register appends a rule to the end of the chain.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// All returns the rules in evaluation order.
func (r *Registry) All() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}
