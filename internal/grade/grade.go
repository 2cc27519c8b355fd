package grade

import "fmt"

// Grade is a respondent's desire level for a question, ordered from the most
// restrictive (Never) to the most permissive (Need).
type Grade int

const (
	Never    Grade = iota // Hard limit
	NoDesire              // Would rather not
	Maybe                 // Open to it
	Yes                   // Wants it
	Need                  // Must have
)

// Unknown is the label used when a numeric grade falls outside the scale.
const Unknown = "N/A"

var labels = [...]string{
	Never:    "Never",
	NoDesire: "No desire",
	Maybe:    "Maybe",
	Yes:      "Yes",
	Need:     "Need",
}

// All returns every grade in ascending order.
func All() []Grade {
	return []Grade{Never, NoDesire, Maybe, Yes, Need}
}

// Valid reports whether g is one of the five grades.
func (g Grade) Valid() bool {
	return g >= Never && g <= Need
}

// Label returns the display label, which is also the value persisted locally.
func (g Grade) Label() string {
	if !g.Valid() {
		return Unknown
	}
	return labels[g]
}

func (g Grade) String() string {
	return g.Label()
}

// Ordinal returns the wire value of g. The mapping is part of the backend
// contract: Never=0, NoDesire=1, Maybe=2, Yes=3, Need=4.
func (g Grade) Ordinal() int {
	return int(g)
}

// FromOrdinal decodes a wire value.
func FromOrdinal(n int) (Grade, error) {
	g := Grade(n)
	if !g.Valid() {
		return 0, fmt.Errorf("grade ordinal %d out of range 0..%d", n, int(Need))
	}
	return g, nil
}

// LabelOf decodes a wire value straight to its label, falling back to Unknown.
func LabelOf(n int) string {
	g, err := FromOrdinal(n)
	if err != nil {
		return Unknown
	}
	return g.Label()
}

// ParseLabel maps a persisted label back to its grade.
func ParseLabel(s string) (Grade, bool) {
	for i, l := range labels {
		if l == s {
			return Grade(i), true
		}
	}
	return 0, false
}
