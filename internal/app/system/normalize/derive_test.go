package normalize_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/dalemusser/influencerhub/internal/app/system/normalize"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/influencerhub/internal/domain/opt"
)

func TestDeriveFields_NameAndEmail(t *testing.T) {
	n := normalize.Normalizer{}
	d := n.DeriveFields(models.InfluencerInput{
		Email: opt.Some("Jane@X.com"),
		Name:  opt.Some("José Núñez"),
	})

	if got, _ := d.EmailLower.Get(); got != "jane@x.com" {
		t.Errorf("EmailLower = %q, want %q", got, "jane@x.com")
	}
	if got, _ := d.NameLower.Get(); got != "josé núñez" {
		t.Errorf("NameLower = %q, want %q", got, "josé núñez")
	}
	if got, _ := d.SearchName.Get(); got != "jose nunez" {
		t.Errorf("SearchName = %q, want %q", got, "jose nunez")
	}
	kw, ok := d.Keywords.Get()
	if !ok {
		t.Fatal("Keywords not set")
	}
	want := []string{"jose", "nunez", "j", "jo", "jos", "n", "nu", "nun", "nune"}
	if !reflect.DeepEqual(kw, want) {
		t.Errorf("Keywords = %v, want %v", kw, want)
	}
	if d.HandleLower.Present() {
		t.Error("HandleLower should be absent without handles")
	}
}

func TestDeriveFields_AbsentSourcesProduceNothing(t *testing.T) {
	d := normalize.Normalizer{}.DeriveFields(models.InfluencerInput{
		Country: opt.Some("CR"),
	})
	if len(d.Doc()) != 0 {
		t.Errorf("Doc() = %v, want empty", d.Doc())
	}
}

// Presence is judged by key: an empty name or email still derives.
func TestDeriveFields_EmptyStringsStillDerive(t *testing.T) {
	d := normalize.Normalizer{}.DeriveFields(models.InfluencerInput{
		Email: opt.Some(""),
		Name:  opt.Some(""),
	})

	doc := d.Doc()
	for _, f := range []string{models.FieldEmailLower, models.FieldNameLower, models.FieldSearchName} {
		v, ok := doc[f]
		if !ok {
			t.Errorf("%s missing", f)
			continue
		}
		if v != "" {
			t.Errorf("%s = %q, want empty string", f, v)
		}
	}
	kw, ok := doc[models.FieldKeywords].([]string)
	if !ok {
		t.Fatalf("keywords = %#v, want []string", doc[models.FieldKeywords])
	}
	if kw == nil || len(kw) != 0 {
		t.Errorf("keywords = %#v, want empty non-nil list", kw)
	}
}

func TestDeriveFields_Handles(t *testing.T) {
	tests := []struct {
		name    string
		handles models.HandlesInput
		want    string
		present bool
	}{
		{
			name:    "instagram wins",
			handles: models.HandlesInput{Instagram: opt.Some("@Jane"), TikTok: opt.Some("@other")},
			want:    "jane", present: true,
		},
		{
			name:    "blank instagram falls through to tiktok",
			handles: models.HandlesInput{Instagram: opt.Some("  "), TikTok: opt.Some("@TikJane")},
			want:    "tikjane", present: true,
		},
		{
			name:    "youtube last",
			handles: models.HandlesInput{YouTube: opt.Some("JaneTube")},
			want:    "janetube", present: true,
		},
		{
			name:    "none qualify",
			handles: models.HandlesInput{Instagram: opt.Some("")},
			present: false,
		},
		{
			name:    "empty handles",
			handles: models.HandlesInput{},
			present: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := normalize.Normalizer{}.DeriveFields(models.InfluencerInput{Handles: opt.Some(tt.handles)})
			got, ok := d.HandleLower.Get()
			if ok != tt.present {
				t.Fatalf("HandleLower present = %v, want %v", ok, tt.present)
			}
			if got != tt.want {
				t.Errorf("HandleLower = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveFields_SearchNameShape(t *testing.T) {
	names := []string{
		"José Núñez",
		"  María   del  Carmen ",
		"ÉLODIE\tBÉRANGÈRE",
		"Zoë  O'Brien-Smith",
		"Ñandú",
		"Crème Brûlée",
		"a",
		"",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			d := normalize.Normalizer{}.DeriveFields(models.InfluencerInput{Name: opt.Some(name)})
			sn, ok := d.SearchName.Get()
			if !ok {
				t.Fatal("SearchName not set")
			}
			if sn != strings.ToLower(sn) {
				t.Errorf("SearchName %q is not lowercase", sn)
			}
			for _, r := range norm.NFD.String(sn) {
				if unicode.Is(unicode.Mn, r) {
					t.Errorf("SearchName %q contains combining mark %U", sn, r)
				}
			}
			if strings.Contains(sn, "  ") {
				t.Errorf("SearchName %q contains consecutive spaces", sn)
			}
			if sn != strings.TrimSpace(sn) {
				t.Errorf("SearchName %q is not trimmed", sn)
			}
		})
	}
}

func TestDeriveFields_Idempotent(t *testing.T) {
	n := normalize.Normalizer{}
	in := models.InfluencerInput{
		Email:   opt.Some("  Jane@X.COM"),
		Name:    opt.Some("José  Núñez"),
		Handles: opt.Some(models.HandlesInput{TikTok: opt.Some("@Jane")}),
	}

	first := n.DeriveFields(in)
	second := n.DeriveFields(in)
	if !reflect.DeepEqual(first.Doc(), second.Doc()) {
		t.Fatalf("derive not stable:\n%v\n%v", first.Doc(), second.Doc())
	}

	// Deriving again from already-normalized values yields the same lookup keys.
	sn, _ := first.SearchName.Get()
	again := n.DeriveFields(models.InfluencerInput{Name: opt.Some(sn)})
	if got, _ := again.SearchName.Get(); got != sn {
		t.Errorf("SearchName(SearchName(x)) = %q, want %q", got, sn)
	}
	kw1, _ := first.Keywords.Get()
	kw2, _ := again.Keywords.Get()
	if !reflect.DeepEqual(kw1, kw2) {
		t.Errorf("keywords differ: %v vs %v", kw1, kw2)
	}
}

func TestKeywords_Cap(t *testing.T) {
	var parts []string
	for i := 0; i < 60; i++ {
		parts = append(parts, fmt.Sprintf("token%02dabcdefgh", i))
	}
	name := strings.Join(parts, " ")

	tests := []struct {
		name string
		n    normalize.Normalizer
		cap  int
	}{
		{"default", normalize.Normalizer{}, normalize.DefaultKeywordCap},
		{"configured", normalize.New(25, 4), 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.n.DeriveFields(models.InfluencerInput{Name: opt.Some(name)})
			kw, _ := d.Keywords.Get()
			if len(kw) > tt.cap {
				t.Errorf("len(keywords) = %d, exceeds cap %d", len(kw), tt.cap)
			}
			if len(kw) != tt.cap {
				t.Errorf("len(keywords) = %d, want cap %d for a long name", len(kw), tt.cap)
			}
		})
	}
}

func TestKeywords_PrefixLen(t *testing.T) {
	kw := normalize.New(0, 3).Keywords("núñez")
	want := []string{"núñez", "n", "nú", "núñ"}
	if !reflect.DeepEqual(kw, want) {
		t.Errorf("Keywords = %v, want %v", kw, want)
	}
}

func TestKeywords_Dedup(t *testing.T) {
	kw := normalize.Normalizer{}.Keywords("ana ana an")
	want := []string{"ana", "an", "a"}
	if !reflect.DeepEqual(kw, want) {
		t.Errorf("Keywords = %v, want %v", kw, want)
	}
}
