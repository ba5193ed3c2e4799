// Package badgerstore implements the Store contract on BadgerDB. Records
// are stored under "<kind>/<ancestor>/<id>" keys, so an ancestor query is a
// single prefix scan, and lexicographic key order matches creation order.
package badgerstore

import (
	"fmt"
	"strings"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/mrdunk/routeticker/internal/storeutil"
	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/types"
)

// Store is a Badger-backed record store.
type Store struct {
	mu        sync.Mutex
	db        *badger.DB
	maxGroups int
	log       *zap.Logger
	closed    bool
}

var _ types.Store = (*Store)(nil)

// Open opens (or creates) a Badger database under Config.DataDir. The
// logger may be nil.
func Open(cfg types.Config, log *zap.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	opts := badger.DefaultOptions(cfg.DataDir).
		WithLogger(badgerLogger{log.Named("badger")})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", cfg.DataDir, err)
	}
	log.Info("badger store opened", zap.String("dir", cfg.DataDir))
	return &Store{
		db:        db,
		maxGroups: cfg.EffectiveMaxGroups(),
		log:       log,
	}, nil
}

// Close releases the database. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Info("badger store closed")
	return s.db.Close()
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
	var rec types.Record
	err := s.db.View(func(bt *badger.Txn) error {
		var err error
		rec, err = getFrom(bt, key)
		return err
	})
	return rec, err
}

// Put persists one record, assigning an ID if needed.
func (s *Store) Put(rec types.Record) (types.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.Key{}, types.ErrStoreClosed
	}
	var key types.Key
	err := s.db.Update(func(bt *badger.Txn) error {
		var err error
		key, err = putInto(bt, rec)
		return err
	})
	return key, err
}

// MultiGet fetches several records positionally, nil entries for misses.
func (s *Store) MultiGet(keys []types.Key) ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, types.ErrStoreClosed
	}
	var recs []types.Record
	err := s.db.View(func(bt *badger.Txn) error {
		var err error
		recs, err = multiGetFrom(bt, keys)
		return err
	})
	return recs, err
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
	var recs []types.Record
	err := s.db.View(func(bt *badger.Txn) error {
		var err error
		recs, err = collectFrom(bt, kind, ancestor)
		return err
	})
	return recs, err
}

// RunAtomic maps the callback onto one Badger read-write transaction, with
// the entity-group ceiling charged on top.
func (s *Store) RunAtomic(fn func(tx types.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}
	return s.db.Update(func(bt *badger.Txn) error {
		return fn(&txn{
			bt:        bt,
			groups:    storeutil.NewGroupTracker(s.maxGroups),
			maxGroups: s.maxGroups,
		})
	})
}

// txn is the transaction view handed to RunAtomic callbacks.
type txn struct {
	bt        *badger.Txn
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
	return getFrom(t.bt, key)
}

func (t *txn) Put(rec types.Record) (types.Key, error) {
	if err := t.groups.Charge(rec.Key().Group()); err != nil {
		return types.Key{}, err
	}
	key, err := putInto(t.bt, rec)
	if err != nil {
		return types.Key{}, err
	}
	return key, t.groups.Charge(key.Group())
}

func (t *txn) MultiGet(keys []types.Key) ([]types.Record, error) {
	if err := t.groups.ChargeKeys(keys); err != nil {
		return nil, err
	}
	return multiGetFrom(t.bt, keys)
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
	return collectFrom(t.bt, kind, ancestor)
}

// RunAtomic on a transaction joins the surrounding transaction.
func (t *txn) RunAtomic(fn func(tx types.Store) error) error {
	return fn(t)
}

// storageKey renders a record key as "<kind>/<ancestor>/<id>". IDs are
// UUIDs, so the separators never collide.
func storageKey(key types.Key) []byte {
	return []byte(key.Kind + "/" + key.Ancestor + "/" + key.ID)
}

func getFrom(bt *badger.Txn, key types.Key) (types.Record, error) {
	if !key.Valid() {
		return nil, types.ErrInvalidKey
	}
	item, err := bt.Get(storageKey(key))
	if err == badger.ErrKeyNotFound {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	var rec types.Record
	err = item.Value(func(data []byte) error {
		var derr error
		rec, derr = content.Decode(key.Kind, key, data)
		return derr
	})
	return rec, err
}

func putInto(bt *badger.Txn, rec types.Record) (types.Key, error) {
	key, data, err := storeutil.EncodePut(rec)
	if err != nil {
		return types.Key{}, err
	}
	if err := bt.Set(storageKey(key), data); err != nil {
		return types.Key{}, fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

func multiGetFrom(bt *badger.Txn, keys []types.Key) ([]types.Record, error) {
	out := make([]types.Record, len(keys))
	for i, k := range keys {
		if !k.Valid() {
			continue
		}
		rec, err := getFrom(bt, k)
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

func collectFrom(bt *badger.Txn, kind string, ancestor types.Key) ([]types.Record, error) {
	prefix := []byte(kind + "/" + ancestor.ID + "/")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := bt.NewIterator(opts)
	defer it.Close()

	var out []types.Record
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		id := strings.TrimPrefix(string(item.Key()), string(prefix))
		key := types.Key{Kind: kind, Ancestor: ancestor.ID, ID: id}
		err := item.Value(func(data []byte) error {
			rec, derr := content.Decode(kind, key, data)
			if derr != nil {
				return derr
			}
			out = append(out, rec)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// badgerLogger adapts a zap logger to Badger's Logger interface.
type badgerLogger struct {
	log *zap.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
