package normalize_test

import (
	"reflect"
	"testing"

	"github.com/dalemusser/influencerhub/internal/app/system/normalize"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/influencerhub/internal/domain/opt"
)

func TestSanitizeForPersist(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{
			name: "nested map",
			in: map[string]any{
				"a": 1,
				"b": opt.Absent,
				"c": map[string]any{"d": opt.Absent, "e": 2},
			},
			want: map[string]any{
				"a": 1,
				"c": map[string]any{"e": 2},
			},
		},
		{
			name: "sequence elements",
			in:   []any{1, opt.Absent, map[string]any{"x": opt.Absent}, "y"},
			want: []any{1, map[string]any{}, "y"},
		},
		{
			name: "concrete zero values kept",
			in:   map[string]any{"s": "", "n": 0, "b": false, "nil": nil},
			want: map[string]any{"s": "", "n": 0, "b": false, "nil": nil},
		},
		{
			name: "scalar passes through",
			in:   "plain",
			want: "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize.SanitizeForPersist(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SanitizeForPersist() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSanitizeForPersist_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{"a": opt.Absent, "b": map[string]any{"c": opt.Absent}}
	_ = normalize.SanitizeForPersist(in)
	if !opt.IsAbsent(in["a"]) {
		t.Error("input top-level key was modified")
	}
	if !opt.IsAbsent(in["b"].(map[string]any)["c"]) {
		t.Error("input nested key was modified")
	}
}

func TestSanitizeDoc_InputDocumentHasNoAbsent(t *testing.T) {
	in := models.InfluencerInput{
		Email:   opt.Some("a@b.co"),
		Handles: opt.Some(models.HandlesInput{Instagram: opt.Some("@a")}),
	}
	doc := normalize.SanitizeDoc(in.Doc())

	want := map[string]any{
		"email":   "a@b.co",
		"handles": map[string]any{"instagram": "@a"},
	}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("SanitizeDoc() = %#v, want %#v", doc, want)
	}
	if !noAbsent(doc) {
		t.Error("absent marker survived sanitize")
	}
}

func noAbsent(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		for _, x := range t {
			if !noAbsent(x) {
				return false
			}
		}
	case []any:
		for _, x := range t {
			if !noAbsent(x) {
				return false
			}
		}
	default:
		return !opt.IsAbsent(v)
	}
	return true
}
