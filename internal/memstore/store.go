// Package memstore implements the Store contract with an in-process map.
// It is the default backend for tests and throwaway runs, and its
// transaction view is the reference for what RunAtomic promises: buffered
// writes, all-or-nothing commit, and the entity-group ceiling.
package memstore

import (
	"sort"
	"sync"

	"github.com/mrdunk/routeticker/internal/storeutil"
	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/types"
)

// Store keeps encoded records keyed by their store key. Records are stored
// in their wire form so that readers always get fresh instances and no
// caller can mutate shared state behind the store's back.
type Store struct {
	mu        sync.Mutex
	recs      map[types.Key][]byte
	maxGroups int
	closed    bool
}

var _ types.Store = (*Store)(nil)

// New builds an empty store with the given atomic-group ceiling; ceiling <= 0
// selects the default.
func New(maxGroups int) *Store {
	if maxGroups <= 0 {
		maxGroups = types.DefaultMaxGroups
	}
	return &Store{
		recs:      make(map[types.Key][]byte),
		maxGroups: maxGroups,
	}
}

// Open builds a store from config. The memory backend ignores DataDir.
func Open(cfg types.Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(cfg.EffectiveMaxGroups()), nil
}

// Close discards all records. Further operations fail with ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = nil
	s.closed = true
	return nil
}

// MaxAtomicGroups returns the entity-group ceiling per atomic operation.
func (s *Store) MaxAtomicGroups() int { return s.maxGroups }

// Get fetches one record.
func (s *Store) Get(key types.Key) (types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, types.ErrStoreClosed
	}
	return getFrom(s.recs, nil, key)
}

// Put persists one record, assigning an ID if needed.
func (s *Store) Put(rec types.Record) (types.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.Key{}, types.ErrStoreClosed
	}
	key, data, err := storeutil.EncodePut(rec)
	if err != nil {
		return types.Key{}, err
	}
	s.recs[key] = data
	return key, nil
}

// MultiGet fetches several records positionally, nil entries for misses.
func (s *Store) MultiGet(keys []types.Key) ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, types.ErrStoreClosed
	}
	return multiGetFrom(s.recs, nil, keys)
}

// Query starts a query over one kind under one ancestor.
func (s *Store) Query(kind string, ancestor types.Key) types.Query {
	return storeutil.NewQuery(kind, ancestor, s.collect)
}

func (s *Store) collect(kind string, ancestor types.Key) ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, types.ErrStoreClosed
	}
	return collectFrom(s.recs, nil, kind, ancestor)
}

// RunAtomic executes fn against a buffered transaction view. The whole
// store is locked for the duration, so a committed transaction is
// linearizable as a unit.
func (s *Store) RunAtomic(fn func(tx types.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}
	t := &txn{
		base:      s.recs,
		writes:    make(map[types.Key][]byte),
		groups:    storeutil.NewGroupTracker(s.maxGroups),
		maxGroups: s.maxGroups,
	}
	if err := fn(t); err != nil {
		return err
	}
	for k, data := range t.writes {
		s.recs[k] = data
	}
	return nil
}

// txn is the transaction view handed to RunAtomic callbacks. Reads see the
// base map through a write overlay; writes stay buffered until commit.
// Every touched key charges its entity group against the ceiling.
type txn struct {
	base      map[types.Key][]byte
	writes    map[types.Key][]byte
	groups    *storeutil.GroupTracker
	maxGroups int
}

var _ types.Store = (*txn)(nil)

func (t *txn) MaxAtomicGroups() int { return t.maxGroups }

func (t *txn) Get(key types.Key) (types.Record, error) {
	if !key.Valid() {
		return nil, types.ErrInvalidKey
	}
	if err := t.groups.Charge(key.Group()); err != nil {
		return nil, err
	}
	return getFrom(t.base, t.writes, key)
}

func (t *txn) Put(rec types.Record) (types.Key, error) {
	key, data, err := storeutil.EncodePut(rec)
	if err != nil {
		return types.Key{}, err
	}
	if err := t.groups.Charge(key.Group()); err != nil {
		return types.Key{}, err
	}
	t.writes[key] = data
	return key, nil
}

func (t *txn) MultiGet(keys []types.Key) ([]types.Record, error) {
	if err := t.groups.ChargeKeys(keys); err != nil {
		return nil, err
	}
	return multiGetFrom(t.base, t.writes, keys)
}

func (t *txn) Query(kind string, ancestor types.Key) types.Query {
	return storeutil.NewQuery(kind, ancestor, t.collect)
}

func (t *txn) collect(kind string, ancestor types.Key) ([]types.Record, error) {
	if !ancestor.IsZero() {
		if err := t.groups.Charge(ancestor.Group()); err != nil {
			return nil, err
		}
	}
	return collectFrom(t.base, t.writes, kind, ancestor)
}

// RunAtomic on a transaction joins the surrounding transaction rather than
// opening a nested one.
func (t *txn) RunAtomic(fn func(tx types.Store) error) error {
	return fn(t)
}

// getFrom reads key through an optional write overlay.
func getFrom(base, overlay map[types.Key][]byte, key types.Key) (types.Record, error) {
	if !key.Valid() {
		return nil, types.ErrInvalidKey
	}
	data, ok := overlay[key]
	if !ok {
		data, ok = base[key]
	}
	if !ok {
		return nil, types.ErrNotFound
	}
	return content.Decode(key.Kind, key, data)
}

func multiGetFrom(base, overlay map[types.Key][]byte, keys []types.Key) ([]types.Record, error) {
	out := make([]types.Record, len(keys))
	for i, k := range keys {
		if !k.Valid() {
			continue
		}
		rec, err := getFrom(base, overlay, k)
		if err == types.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}

// collectFrom decodes all records of kind under ancestor, in key order.
func collectFrom(base, overlay map[types.Key][]byte, kind string, ancestor types.Key) ([]types.Record, error) {
	seen := make(map[types.Key]bool)
	var keys []types.Key
	add := func(k types.Key) {
		if seen[k] {
			return
		}
		seen[k] = true
		if k.Kind != kind {
			return
		}
		if k.Ancestor != ancestor.ID {
			return
		}
		keys = append(keys, k)
	}
	for k := range overlay {
		add(k)
	}
	for k := range base {
		add(k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].ID < keys[j].ID })

	out := make([]types.Record, 0, len(keys))
	for _, k := range keys {
		rec, err := getFrom(base, overlay, k)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
