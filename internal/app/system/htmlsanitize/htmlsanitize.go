// Package htmlsanitize cleans operator-entered free text before it is stored.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/influencerhub/internal/domain/opt"
	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
)

func policies() {
	strict = bluemonday.StrictPolicy()
	ugc = bluemonday.UGCPolicy()
}

// Sanitize keeps safe formatting markup and removes scripts, event handlers
// and unsafe URLs. Used for notes the dashboard renders as rich text.
func Sanitize(s string) string {
	once.Do(policies)
	return ugc.Sanitize(s)
}

// PlainText removes all markup and returns unescaped text.
func PlainText(s string) string {
	once.Do(policies)
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

func apply(v opt.Value[string], f func(string) string) opt.Value[string] {
	if s, ok := v.Get(); ok {
		return opt.Some(f(s))
	}
	return v
}

// CleanInput sanitizes the free-text fields of in that are present.
func CleanInput(in models.InfluencerInput) models.InfluencerInput {
	in.Address = apply(in.Address, PlainText)
	in.InvoiceNote = apply(in.InvoiceNote, PlainText)
	in.CampaignNote = apply(in.CampaignNote, Sanitize)
	return in
}
