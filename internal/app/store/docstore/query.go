package docstore

import "fmt"

// Op is a comparison operator in a Cond.
type Op int

const (
	Eq  Op = iota // field == value
	Gte           // field >= value
	Lt            // field < value
)

func (o Op) String() string {
	switch o {
	case Eq:
		return "=="
	case Gte:
		return ">="
	case Lt:
		return "<"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Cond is one condition on a field. Conditions in a Query are ANDed.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Query describes an ordered, optionally filtered scan of a collection.
type Query struct {
	Where []Cond

	// OrderBy is the sort field; "" orders by document id.
	OrderBy    string
	Descending bool

	// StartAfter, when non-nil, skips documents whose OrderBy value is not
	// strictly after it in the sort direction.
	StartAfter any

	// Limit caps the result; 0 means no cap.
	Limit int

	// Index, when set, requires the scan to use that named index. A backend
	// without it fails with ErrIndexMissing instead of scanning.
	Index string
}

// Equal returns the condition field == v.
func Equal(field string, v any) []Cond {
	return []Cond{{Field: field, Op: Eq, Value: v}}
}

// Prefix returns the range conditions matching strings on field that start
// with p: [p, p+HighSentinel).
func Prefix(field, p string) []Cond {
	return []Cond{
		{Field: field, Op: Gte, Value: p},
		{Field: field, Op: Lt, Value: p + HighSentinel},
	}
}
