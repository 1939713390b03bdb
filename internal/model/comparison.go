package model

// ValueGroup is a set of adapters that reported the same value for a field.
type ValueGroup struct {
	Value    string   `json:"value"`
	Adapters []string `json:"adapters"`
}

// FieldComparison partitions the adapters for one canonical field.
// Adapters that reported the field as Unknown or Unsupported are listed
// separately and never count toward agreement or disagreement.
type FieldComparison struct {
	Field       string       `json:"field"`
	Groups      []ValueGroup `json:"groups,omitempty"`
	Absent      []string     `json:"absent,omitempty"`
	Unsupported []string     `json:"unsupported,omitempty"`
}

// Agreed reports whether every adapter that answered gave the same value.
func (f FieldComparison) Agreed() bool {
	return len(f.Groups) <= 1
}

// Disagreements returns the competing groups, or nil when the field agreed.
func (f FieldComparison) Disagreements() []ValueGroup {
	if f.Agreed() {
		return nil
	}
	return f.Groups
}

// FailedAdapter is an adapter that has no canonical record for the input.
type FailedAdapter struct {
	AdapterID string      `json:"adapterId"`
	Kind      FailureKind `json:"kind"`
	Message   string      `json:"message,omitempty"`
}

// ComparisonResult is the cross-engine view of one input string.
type ComparisonResult struct {
	Input  string            `json:"input"`
	Fields []FieldComparison `json:"fields"`
	Failed []FailedAdapter   `json:"failed,omitempty"`
}

// Field returns the comparison of one canonical field by dotted path.
func (c ComparisonResult) Field(path string) (FieldComparison, bool) {
	for _, f := range c.Fields {
		if f.Field == path {
			return f, true
		}
	}
	return FieldComparison{}, false
}

// Conflicts returns the fields on which answering adapters disagreed.
func (c ComparisonResult) Conflicts() []FieldComparison {
	var out []FieldComparison
	for _, f := range c.Fields {
		if !f.Agreed() {
			out = append(out, f)
		}
	}
	return out
}
