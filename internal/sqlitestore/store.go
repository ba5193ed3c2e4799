// Package sqlitestore implements the Store contract on SQLite. It is the
// persistent backend for single-host deployments: records live in one
// generic table as JSON payloads, and RunAtomic maps onto an immediate
// SQLite transaction with the entity-group ceiling enforced on top.
package sqlitestore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mrdunk/routeticker/internal/storeutil"
	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/types"
)

// dbFileName is the database file created under Config.DataDir.
const dbFileName = "routeticker.db"

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// the read/write helpers serve both paths.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store is a SQLite-backed record store.
type Store struct {
	mu        sync.Mutex
	db        *sql.DB
	maxGroups int
	log       *zap.Logger
	closed    bool
}

var _ types.Store = (*Store)(nil)

// Open creates DataDir if needed, opens (or creates) the database, and
// applies the schema. The logger may be nil.
func Open(cfg types.Config, log *zap.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(cfg.DataDir, dbFileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single connection keeps transactions serialized, matching the
	// one-operation-at-a-time store model the engine assumes.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.Info("sqlite store opened", zap.String("path", path))
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
	s.log.Info("sqlite store closed")
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
	return getFrom(s.db, key)
}

// Put persists one record, assigning an ID if needed.
func (s *Store) Put(rec types.Record) (types.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.Key{}, types.ErrStoreClosed
	}
	return putInto(s.db, rec)
}

// MultiGet fetches several records positionally, nil entries for misses.
func (s *Store) MultiGet(keys []types.Key) ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, types.ErrStoreClosed
	}
	return multiGetFrom(s.db, keys)
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
	return collectFrom(s.db, kind, ancestor)
}

// RunAtomic maps the callback onto one SQLite transaction. The group
// ceiling is charged in the transaction view; breaching it rolls the whole
// transaction back.
func (s *Store) RunAtomic(fn func(tx types.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}
	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	t := &txn{
		q:         dbTx,
		groups:    storeutil.NewGroupTracker(s.maxGroups),
		maxGroups: s.maxGroups,
	}
	if err := fn(t); err != nil {
		if rbErr := dbTx.Rollback(); rbErr != nil {
			s.log.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// txn is the transaction view handed to RunAtomic callbacks.
type txn struct {
	q         *sql.Tx
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
	return getFrom(t.q, key)
}

func (t *txn) Put(rec types.Record) (types.Key, error) {
	if err := t.groups.Charge(rec.Key().Group()); err != nil {
		return types.Key{}, err
	}
	key, err := putInto(t.q, rec)
	if err != nil {
		return types.Key{}, err
	}
	// A fresh top-level record only learns its group from the assigned ID.
	return key, t.groups.Charge(key.Group())
}

func (t *txn) MultiGet(keys []types.Key) ([]types.Record, error) {
	if err := t.groups.ChargeKeys(keys); err != nil {
		return nil, err
	}
	return multiGetFrom(t.q, keys)
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
	return collectFrom(t.q, kind, ancestor)
}

// RunAtomic on a transaction joins the surrounding transaction.
func (t *txn) RunAtomic(fn func(tx types.Store) error) error {
	return fn(t)
}

func getFrom(q querier, key types.Key) (types.Record, error) {
	if !key.Valid() {
		return nil, types.ErrInvalidKey
	}
	var data string
	err := q.QueryRow(
		"SELECT data FROM records WHERE kind = ? AND ancestor = ? AND id = ?",
		key.Kind, key.Ancestor, key.ID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return content.Decode(key.Kind, key, []byte(data))
}

func putInto(q querier, rec types.Record) (types.Key, error) {
	key, data, err := storeutil.EncodePut(rec)
	if err != nil {
		return types.Key{}, err
	}
	_, err = q.Exec(
		`INSERT INTO records (kind, ancestor, id, grp, data) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (kind, ancestor, id) DO UPDATE SET data = excluded.data`,
		key.Kind, key.Ancestor, key.ID, key.Group(), string(data),
	)
	if err != nil {
		return types.Key{}, fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

func multiGetFrom(q querier, keys []types.Key) ([]types.Record, error) {
	out := make([]types.Record, len(keys))
	for i, k := range keys {
		if !k.Valid() {
			continue
		}
		rec, err := getFrom(q, k)
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

func collectFrom(q querier, kind string, ancestor types.Key) ([]types.Record, error) {
	rows, err := q.Query(
		"SELECT id, data FROM records WHERE kind = ? AND ancestor = ? ORDER BY id",
		kind, ancestor.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s under %s: %w", kind, ancestor, err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		key := types.Key{Kind: kind, Ancestor: ancestor.ID, ID: id}
		rec, err := content.Decode(kind, key, []byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
