// Package storeutil holds the pieces every store backend shares: ID
// generation, the put-side encode path, and the filter-in-Go query over a
// backend-supplied candidate collector.
package storeutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/types"
)

// NewID generates a UUID v7 so key order tracks creation order, with a v4
// fallback if v7 generation fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// EncodePut assigns a key if the record has none, stamps timestamps on
// Stamped records, and encodes the record for storage.
func EncodePut(rec types.Record) (types.Key, []byte, error) {
	key := rec.Key()
	if key.ID == "" {
		key.Kind = rec.Kind()
		key.ID = NewID()
		rec.SetKey(key)
	}
	if !key.Valid() {
		return types.Key{}, nil, types.ErrInvalidKey
	}
	if s, ok := rec.(types.Stamped); ok {
		s.StampTimes(time.Now().UTC())
	}
	data, err := content.Encode(rec)
	if err != nil {
		return types.Key{}, nil, err
	}
	return key, data, nil
}

// Collect produces the unfiltered candidate records of one kind under one
// ancestor, in key order.
type Collect func(kind string, ancestor types.Key) ([]types.Record, error)

// filter is one Field == value condition.
type filter struct {
	field string
	value any
}

// Query implements types.Query by filtering a collected candidate set
// through Record.Match. Backends only supply the collector.
type Query struct {
	kind     string
	ancestor types.Key
	filters  []filter
	collect  Collect
}

var _ types.Query = (*Query)(nil)

// NewQuery builds a query over kind/ancestor backed by the collector.
func NewQuery(kind string, ancestor types.Key, collect Collect) *Query {
	return &Query{kind: kind, ancestor: ancestor, collect: collect}
}

// Filter returns a narrowed query; the receiver stays usable.
func (q *Query) Filter(field string, value any) types.Query {
	return &Query{
		kind:     q.kind,
		ancestor: q.ancestor,
		filters:  append(append([]filter(nil), q.filters...), filter{field, value}),
		collect:  q.collect,
	}
}

// Fetch returns up to limit matches in key order.
func (q *Query) Fetch(limit int) ([]types.Record, error) {
	recs, err := q.collect(q.kind, q.ancestor)
	if err != nil {
		return nil, err
	}
	out := make([]types.Record, 0, len(recs))
	for _, rec := range recs {
		if !q.matches(rec) {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of matches, capped at limit.
func (q *Query) Count(limit int) (int, error) {
	recs, err := q.Fetch(limit)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

func (q *Query) matches(rec types.Record) bool {
	for _, f := range q.filters {
		if !rec.Match(f.field, f.value) {
			return false
		}
	}
	return true
}

// GroupTracker charges entity groups against a transaction's ceiling.
type GroupTracker struct {
	groups map[string]bool
	limit  int
}

// NewGroupTracker builds a tracker with the given ceiling.
func NewGroupTracker(limit int) *GroupTracker {
	return &GroupTracker{groups: make(map[string]bool), limit: limit}
}

// Charge registers a group, failing with ErrAtomicGroupLimit once the
// ceiling is crossed.
func (g *GroupTracker) Charge(group string) error {
	if group == "" {
		return nil
	}
	if !g.groups[group] {
		g.groups[group] = true
		if len(g.groups) > g.limit {
			return types.ErrAtomicGroupLimit
		}
	}
	return nil
}

// ChargeKeys charges every valid key's group.
func (g *GroupTracker) ChargeKeys(keys []types.Key) error {
	for _, k := range keys {
		if !k.Valid() {
			continue
		}
		if err := g.Charge(k.Group()); err != nil {
			return err
		}
	}
	return nil
}
