package normalize

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/influencerhub/internal/domain/opt"
)

// SanitizeForPersist returns v with every opt.Absent removed, at any depth.
// Map keys holding Absent are dropped; Absent elements are dropped from
// sequences. Concrete values ("" , 0, false, nil) are kept as they are.
// The input is not modified.
func SanitizeForPersist(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return sanitizeMap(t)
	case primitive.M:
		return primitive.M(sanitizeMap(t))
	case []any:
		return sanitizeSlice(t)
	case primitive.A:
		return primitive.A(sanitizeSlice(t))
	default:
		return v
	}
}

// SanitizeDoc is SanitizeForPersist for a top-level document.
func SanitizeDoc(d map[string]any) map[string]any {
	if d == nil {
		return nil
	}
	return sanitizeMap(d)
}

func sanitizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, val := range m {
		if opt.IsAbsent(val) {
			continue
		}
		out[k] = SanitizeForPersist(val)
	}
	return out
}

func sanitizeSlice(s []any) []any {
	out := make([]any, 0, len(s))
	for _, val := range s {
		if opt.IsAbsent(val) {
			continue
		}
		out = append(out, SanitizeForPersist(val))
	}
	return out
}
