package memory

import (
	"context"
	"fmt"

	"seqcode/domain/core"
	"seqcode/domain/record"
)

// RelatedRecords indexes records by entity name and record id.
type RelatedRecords map[string]map[string]record.Record

// LookupResolver resolves parent placeholders against an in-memory record
// set. The HTTP surface builds one per request from records the host inlines
// alongside the target.
type LookupResolver struct {
	records RelatedRecords
}

// NewLookupResolver creates a resolver over the given related records
func NewLookupResolver(records RelatedRecords) *LookupResolver {
	if records == nil {
		records = make(RelatedRecords)
	}
	return &LookupResolver{records: records}
}

// RelatedValue follows a lookup attribute on the record to a related record
// and returns the named attribute on it.
func (r *LookupResolver) RelatedValue(ctx context.Context, rec record.Record, lookupAttribute, attributeName string) (core.Value, error) {
	v, ok := rec.Get(lookupAttribute)
	if !ok {
		// The record does not carry the lookup; nothing to resolve.
		return core.Value{}, nil
	}

	ref, ok := v.AsReference()
	if !ok {
		return core.Value{}, core.NewTemplateError(fmt.Sprintf("%s is not a lookup value", lookupAttribute))
	}

	byID, ok := r.records[ref.Entity]
	if !ok {
		return core.Value{}, fmt.Errorf("%w: %s %s", core.ErrRecordNotFound, ref.Entity, ref.ID)
	}
	related, ok := byID[ref.ID]
	if !ok {
		return core.Value{}, fmt.Errorf("%w: %s %s", core.ErrRecordNotFound, ref.Entity, ref.ID)
	}

	out, _ := related.Get(attributeName)
	return out, nil
}
