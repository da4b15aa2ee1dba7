package normalize

import (
	"strings"

	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/influencerhub/internal/domain/opt"
)

// Defaults for the keyword knobs.
const (
	DefaultKeywordCap = 100
	DefaultPrefixLen  = 8
)

// Normalizer derives lookup fields from raw record input.
// The zero value uses the defaults.
type Normalizer struct {
	KeywordCap int // max entries in keywords
	PrefixLen  int // longest prefix generated per token, in runes
}

// New returns a Normalizer; non-positive values fall back to the defaults.
func New(keywordCap, prefixLen int) Normalizer {
	return Normalizer{KeywordCap: keywordCap, PrefixLen: prefixLen}
}

func (n Normalizer) keywordCap() int {
	if n.KeywordCap <= 0 {
		return DefaultKeywordCap
	}
	return n.KeywordCap
}

func (n Normalizer) prefixLen() int {
	if n.PrefixLen <= 0 {
		return DefaultPrefixLen
	}
	return n.PrefixLen
}

// DeriveFields computes the derived fields for whatever source fields raw
// carries. Presence is judged by key, not by value: an empty-string name
// still yields empty-string derivatives. Fields without a source are None.
func (n Normalizer) DeriveFields(raw models.InfluencerInput) models.Derived {
	var d models.Derived

	if email, ok := raw.Email.Get(); ok {
		d.EmailLower = opt.Some(strings.ToLower(email))
	}

	if name, ok := raw.Name.Get(); ok {
		sn := SearchName(name)
		d.NameLower = opt.Some(Lower(name))
		d.SearchName = opt.Some(sn)
		d.Keywords = opt.Some(n.Keywords(sn))
	}

	if h, ok := raw.Handles.Get(); ok {
		if handle := pickHandle(h); handle != "" {
			d.HandleLower = opt.Some(handle)
		}
	}

	return d
}

// Keywords builds the keyword set for an already normalized search name:
// unique tokens first, then every prefix (1..PrefixLen runes) of each token,
// deduplicated and capped at KeywordCap. Never nil.
func (n Normalizer) Keywords(searchName string) []string {
	limit := n.keywordCap()
	maxPrefix := n.prefixLen()

	out := make([]string, 0, 16)
	seen := make(map[string]struct{})
	add := func(s string) bool {
		if len(out) >= limit {
			return false
		}
		if _, dup := seen[s]; dup {
			return true
		}
		seen[s] = struct{}{}
		out = append(out, s)
		return true
	}

	tokens := strings.Fields(searchName)
	for _, tok := range tokens {
		if !add(tok) {
			return out
		}
	}
	for _, tok := range tokens {
		rs := []rune(tok)
		for i := 1; i <= len(rs) && i <= maxPrefix; i++ {
			if !add(string(rs[:i])) {
				return out
			}
		}
	}
	return out
}

// pickHandle returns the first non-blank handle in priority order,
// canonicalized, or "".
func pickHandle(h models.HandlesInput) string {
	for _, v := range []opt.Value[string]{h.Instagram, h.TikTok, h.YouTube} {
		if s, ok := v.Get(); ok {
			if c := Handle(s); c != "" {
				return c
			}
		}
	}
	return ""
}
