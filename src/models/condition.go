package models

// Condition is a rule predicate. A node with And or Or combines its
// children; otherwise it is a leaf comparing Field with Value using Op.
type Condition struct {
	Field string      `json:"field,omitempty"`
	Op    string      `json:"op,omitempty"`
	Value any         `json:"value,omitempty"`
	And   []Condition `json:"and,omitempty"`
	Or    []Condition `json:"or,omitempty"`
}

// IsGroup reports whether c combines other conditions.
func (c Condition) IsGroup() bool {
	return len(c.And) > 0 || len(c.Or) > 0
}
