package catalog

// Comparator is the relational symbol a condition is built around.
type Comparator string

const (
	GreaterEqual Comparator = "≥"
	LessEqual    Comparator = "≤"
	Equal        Comparator = "="
	NotEqual     Comparator = "≠"
	Greater      Comparator = ">"
	Less         Comparator = "<"
	Unknown      Comparator = "?"
)

var inversions = map[Comparator]Comparator{
	GreaterEqual: Less,
	Less:         GreaterEqual,
	LessEqual:    Greater,
	Greater:      LessEqual,
	Equal:        NotEqual,
	NotEqual:     Equal,
}

// Inverse returns the algebraic negation. Unknown has none and maps to itself.
func (c Comparator) Inverse() Comparator {
	if inv, ok := inversions[c]; ok {
		return inv
	}
	return Unknown
}

// Invertible reports whether the comparator has a defined inverse.
func (c Comparator) Invertible() bool {
	_, ok := inversions[c]
	return ok
}

// Apply evaluates a <c> b. Unknown never holds.
func (c Comparator) Apply(a, b float64) bool {
	switch c {
	case GreaterEqual:
		return a >= b
	case LessEqual:
		return a <= b
	case Equal:
		return a == b
	case NotEqual:
		return a != b
	case Greater:
		return a > b
	case Less:
		return a < b
	default:
		return false
	}
}

func (c Comparator) String() string { return string(c) }
