package types

import "errors"

// Store is the transactional persistence capability the tree engine is
// written against. Backends under internal/ implement it; the in-memory
// backend doubles as the transaction view handed to RunAtomic callbacks in
// every backend.
type Store interface {
	// Get fetches the record at key. Returns ErrNotFound if absent and
	// ErrInvalidKey if the key does not name a fetchable record.
	Get(key Key) (Record, error)

	// Put persists the record, assigning a fresh ID (UUID v7) if the
	// record's key has none, and stamping timestamps on Stamped records.
	// Returns the key the record was stored under.
	Put(rec Record) (Key, error)

	// MultiGet fetches several records at once. The result has the same
	// length and order as keys, with nil entries for misses.
	MultiGet(keys []Key) ([]Record, error)

	// Query starts a query over records of the given kind scoped to the
	// ancestor container. A zero ancestor scopes to top-level records of
	// the kind.
	Query(kind string, ancestor Key) Query

	// RunAtomic executes fn against a transactional view of the store.
	// Every operation fn issues commits or aborts as a unit. The
	// transaction fails with ErrAtomicGroupLimit as soon as more than
	// MaxAtomicGroups distinct entity groups participate.
	RunAtomic(fn func(tx Store) error) error

	// MaxAtomicGroups returns the ceiling on distinct entity groups per
	// atomic operation. Callers working on more groups must use the
	// non-atomic paths instead.
	MaxAtomicGroups() int
}

// Query is a lazily-executed filter over one kind under one ancestor.
// Filter calls chain; Count and Fetch execute.
type Query interface {
	// Filter narrows the query to records whose named field equals value,
	// as judged by Record.Match.
	Filter(field string, value any) Query

	// Count returns the number of matches, capped at limit.
	Count(limit int) (int, error)

	// Fetch returns up to limit matching records in key order. Key IDs are
	// UUID v7, so key order is creation order.
	Fetch(limit int) ([]Record, error)
}

// Store operation errors.
var (
	// ErrNotFound reports an absent record. Lookup paths in the engine
	// treat it as a soft miss, not a failure.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidKey reports a key that cannot name a record (zero, or
	// missing kind/ID).
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidRecord reports a record the store cannot persist or
	// decode.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrAtomicGroupLimit aborts a transaction that touched more distinct
	// entity groups than the store permits.
	ErrAtomicGroupLimit = errors.New("too many entity groups in atomic operation")

	// ErrStoreClosed reports use of a store after Close.
	ErrStoreClosed = errors.New("store is closed")
)

// Engine operation errors surfaced to callers.
var (
	// ErrKeyNotResolved reports a lookup with no usable key.
	ErrKeyNotResolved = errors.New("no key to resolve")

	// ErrInvalidParent reports a create whose parent reference does not
	// resolve to a container.
	ErrInvalidParent = errors.New("parent does not resolve to a container")
)
