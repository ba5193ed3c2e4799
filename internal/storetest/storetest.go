// Package storetest is a conformance suite for Store implementations.
// Every backend under internal/ runs the same suite, so the tree engine can
// treat backends as interchangeable.
package storetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/types"
)

// Factory builds a fresh, empty store for one subtest. Cleanup is the
// caller's business (use t.Cleanup in the factory).
type Factory func(t *testing.T) types.Store

// Run exercises the Store contract against the given factory.
func Run(t *testing.T, open Factory) {
	t.Run("PutAssignsKey", func(t *testing.T) { testPutAssignsKey(t, open(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, open(t)) })
	t.Run("PutStampsTimes", func(t *testing.T) { testPutStampsTimes(t, open(t)) })
	t.Run("MultiGetPositional", func(t *testing.T) { testMultiGetPositional(t, open(t)) })
	t.Run("QueryAncestorScope", func(t *testing.T) { testQueryAncestorScope(t, open(t)) })
	t.Run("QueryFilters", func(t *testing.T) { testQueryFilters(t, open(t)) })
	t.Run("QueryKeyOrder", func(t *testing.T) { testQueryKeyOrder(t, open(t)) })
	t.Run("AtomicCommit", func(t *testing.T) { testAtomicCommit(t, open(t)) })
	t.Run("AtomicAbort", func(t *testing.T) { testAtomicAbort(t, open(t)) })
	t.Run("AtomicGroupCeiling", func(t *testing.T) { testAtomicGroupCeiling(t, open(t)) })
}

func mustContainer(t *testing.T, ct content.ContentType) *content.Container {
	t.Helper()
	c, err := content.NewContainer(ct)
	require.NoError(t, err)
	return c
}

func putContainer(t *testing.T, s types.Store, ct content.ContentType) types.Key {
	t.Helper()
	key, err := s.Put(mustContainer(t, ct))
	require.NoError(t, err)
	return key
}

// putName stores a fresh name attribute under the given container key.
func putName(t *testing.T, s types.Store, parent types.Key, text string, author types.UserRef, active bool) types.Key {
	t.Helper()
	a := content.NewName(text)
	require.NoError(t, a.SetAuthor(author))
	require.NoError(t, a.SetActive(active))
	a.SetKey(types.Key{Kind: content.KindName, Ancestor: parent.ID})
	key, err := s.Put(a)
	require.NoError(t, err)
	return key
}

func testPutAssignsKey(t *testing.T, s types.Store) {
	key := putContainer(t, s, content.TypeArea)
	require.Equal(t, types.KindContainer, key.Kind)
	require.NotEmpty(t, key.ID)

	rec, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, key, rec.Key())
	require.Equal(t, content.TypeArea, rec.(*content.Container).ContentType())
}

func testGetMissing(t *testing.T, s types.Store) {
	_, err := s.Get(types.Key{Kind: types.KindContainer, ID: "no-such"})
	require.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.Get(types.Key{})
	require.ErrorIs(t, err, types.ErrInvalidKey)
}

func testPutStampsTimes(t *testing.T, s types.Store) {
	parent := putContainer(t, s, content.TypeCrag)
	key := putName(t, s, parent, "first", types.UserRef{ID: "1"}, false)

	rec, err := s.Get(key)
	require.NoError(t, err)
	a := rec.(*content.AttribName)
	require.False(t, a.Created().IsZero(), "created must be stamped on first put")
	require.False(t, a.Modified().IsZero())

	created := a.Created()
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, a.SetText("second"))
	_, err = s.Put(a)
	require.NoError(t, err)

	rec, err = s.Get(key)
	require.NoError(t, err)
	a = rec.(*content.AttribName)
	require.Equal(t, created.UnixNano(), a.Created().UnixNano(), "created must not move")
	require.True(t, a.Modified().After(created), "modified must advance")
}

func testMultiGetPositional(t *testing.T, s types.Store) {
	k1 := putContainer(t, s, content.TypeArea)
	k2 := putContainer(t, s, content.TypeCrag)
	missing := types.Key{Kind: types.KindContainer, ID: "gone"}

	recs, err := s.MultiGet([]types.Key{k1, missing, {}, k2})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	require.Equal(t, k1, recs[0].Key())
	require.Nil(t, recs[1], "miss must be a nil entry")
	require.Nil(t, recs[2], "invalid key must be a nil entry")
	require.Equal(t, k2, recs[3].Key())
}

func testQueryAncestorScope(t *testing.T, s types.Store) {
	p1 := putContainer(t, s, content.TypeArea)
	p2 := putContainer(t, s, content.TypeArea)
	alice := types.UserRef{ID: "1"}
	putName(t, s, p1, "one", alice, false)
	putName(t, s, p1, "two", alice, false)
	putName(t, s, p2, "other", alice, false)

	n, err := s.Query(content.KindName, p1).Count(10)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	recs, err := s.Query(content.KindName, p2).Fetch(10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "other", recs[0].(*content.AttribName).Text())

	// Descriptions under p1: none.
	n, err = s.Query(content.KindDescription, p1).Count(10)
	require.NoError(t, err)
	require.Zero(t, n)
}

func testQueryFilters(t *testing.T, s types.Store) {
	p := putContainer(t, s, content.TypeCrag)
	alice := types.UserRef{ID: "1", Email: "alice@example.com"}
	bob := types.UserRef{ID: "2", Email: "bob@example.com"}
	putName(t, s, p, "by alice", alice, false)
	activeKey := putName(t, s, p, "by bob", bob, true)

	recs, err := s.Query(content.KindName, p).Filter("author", alice).Fetch(10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "by alice", recs[0].(*content.AttribName).Text())

	recs, err = s.Query(content.KindName, p).Filter("active", true).Fetch(10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, activeKey, recs[0].Key())

	// Count respects its cap.
	n, err := s.Query(content.KindName, p).Count(1)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func testQueryKeyOrder(t *testing.T, s types.Store) {
	p := putContainer(t, s, content.TypeClimb)
	u := types.UserRef{ID: "1"}
	want := []string{"a", "b", "c"}
	for _, text := range want {
		putName(t, s, p, text, u, false)
	}
	recs, err := s.Query(content.KindName, p).Fetch(10)
	require.NoError(t, err)
	require.Len(t, recs, len(want))
	for i, rec := range recs {
		require.Equal(t, want[i], rec.(*content.AttribName).Text(), "key order must be creation order")
	}
}

func testAtomicCommit(t *testing.T, s types.Store) {
	var childKey types.Key
	parent := putContainer(t, s, content.TypeArea)

	err := s.RunAtomic(func(tx types.Store) error {
		child := mustContainer(t, content.TypeCrag)
		if err := child.SetMenuParent(parent); err != nil {
			return err
		}
		k, err := tx.Put(child)
		if err != nil {
			return err
		}
		childKey = k

		rec, err := tx.Get(parent)
		if err != nil {
			return err
		}
		p := rec.(*content.Container)
		if err := p.AppendMenuChild(k); err != nil {
			return err
		}
		_, err = tx.Put(p)
		return err
	})
	require.NoError(t, err)

	rec, err := s.Get(parent)
	require.NoError(t, err)
	require.True(t, rec.(*content.Container).HasMenuChild(childKey))

	_, err = s.Get(childKey)
	require.NoError(t, err)
}

func testAtomicAbort(t *testing.T, s types.Store) {
	parent := putContainer(t, s, content.TypeArea)
	var childKey types.Key
	boom := require.New(t)

	err := s.RunAtomic(func(tx types.Store) error {
		child := mustContainer(t, content.TypeCrag)
		k, err := tx.Put(child)
		if err != nil {
			return err
		}
		childKey = k

		rec, err := tx.Get(parent)
		if err != nil {
			return err
		}
		p := rec.(*content.Container)
		if err := p.AppendMenuChild(k); err != nil {
			return err
		}
		if _, err := tx.Put(p); err != nil {
			return err
		}
		return types.ErrInvalidParent // force an abort after both writes
	})
	boom.Error(err)

	// Neither write is visible.
	_, err = s.Get(childKey)
	boom.ErrorIs(err, types.ErrNotFound)
	rec, err := s.Get(parent)
	boom.NoError(err)
	boom.Empty(rec.(*content.Container).MenuChildren())
}

func testAtomicGroupCeiling(t *testing.T, s types.Store) {
	limit := s.MaxAtomicGroups()
	require.Positive(t, limit)

	keys := make([]types.Key, limit+1)
	for i := range keys {
		keys[i] = putContainer(t, s, content.TypeArea)
	}

	// Touching exactly the ceiling still commits.
	err := s.RunAtomic(func(tx types.Store) error {
		for _, k := range keys[:limit] {
			if _, err := tx.Get(k); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	// One group past the ceiling aborts the whole operation.
	var sawLimit bool
	err = s.RunAtomic(func(tx types.Store) error {
		for _, k := range keys {
			if _, err := tx.Get(k); err != nil {
				sawLimit = true
				return err
			}
		}
		return nil
	})
	require.ErrorIs(t, err, types.ErrAtomicGroupLimit)
	require.True(t, sawLimit)
}
