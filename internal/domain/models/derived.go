package models

import "github.com/dalemusser/influencerhub/internal/domain/opt"

// Derived holds the write-time lookup fields computed from a record's
// source fields. A None field is not written.
type Derived struct {
	EmailLower  opt.Value[string]
	NameLower   opt.Value[string]
	SearchName  opt.Value[string]
	Keywords    opt.Value[[]string]
	HandleLower opt.Value[string]
}

// Doc returns the derived fields keyed by stored field name. None fields
// are omitted outright rather than marked absent.
func (d Derived) Doc() map[string]any {
	out := make(map[string]any, 5)
	if v, ok := d.EmailLower.Get(); ok {
		out[FieldEmailLower] = v
	}
	if v, ok := d.NameLower.Get(); ok {
		out[FieldNameLower] = v
	}
	if v, ok := d.SearchName.Get(); ok {
		out[FieldSearchName] = v
	}
	if v, ok := d.Keywords.Get(); ok {
		out[FieldKeywords] = v
	}
	if v, ok := d.HandleLower.Get(); ok {
		out[FieldHandleLower] = v
	}
	return out
}
