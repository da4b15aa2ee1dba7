// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/influencerhub/internal/app/store/audit"
	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	influencerstore "github.com/dalemusser/influencerhub/internal/app/store/influencers"
	operatorstore "github.com/dalemusser/influencerhub/internal/app/store/operators"
)

/*
EnsureAll is called at startup. Each collection's ensure is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

Search tiers hint their index by name. A tier whose index is absent is
skipped rather than failing the search, so a missing index here degrades
search quality without breaking it.
*/
func EnsureAll(ctx context.Context, db docstore.Store) error {
	var problems []string

	for _, set := range All() {
		if err := db.Collection(set.Collection).EnsureIndexes(ctx, set.Specs); err != nil {
			problems = append(problems, set.Collection+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Set is the declared index set of one collection.
type Set struct {
	Collection string
	Specs      []docstore.IndexSpec
}

// All returns every declared index set.
func All() []Set {
	return []Set{
		{Collection: influencerstore.Collection, Specs: Influencers()},
		{Collection: operatorstore.Collection, Specs: Operators()},
		{Collection: audit.Collection, Specs: AuditEvents()},
	}
}

// Influencers backs listing (email order) and every search tier.
func Influencers() []docstore.IndexSpec {
	return []docstore.IndexSpec{
		{Name: influencerstore.IndexEmail, Field: "email"},
		{Name: influencerstore.IndexEmailLower, Field: "emailLower"},
		{Name: influencerstore.IndexSearchName, Field: "search_name"},
		{Name: influencerstore.IndexNameLower, Field: "nameLower"},
		{Name: influencerstore.IndexHandleLower, Field: "handleLower"},
		// Legacy records carry only the raw name.
		{Name: influencerstore.IndexName, Field: "name"},
	}
}

// Operators enforces one account per email.
func Operators() []docstore.IndexSpec {
	return []docstore.IndexSpec{
		{Name: operatorstore.IndexEmail, Field: "email", Unique: true},
	}
}

// AuditEvents supports filtering the trail by event type.
func AuditEvents() []docstore.IndexSpec {
	return []docstore.IndexSpec{
		{Name: audit.IndexEventType, Field: "event_type"},
	}
}
