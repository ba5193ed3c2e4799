// Package element is the tree engine: it builds, looks up, and mutates
// content-tree nodes against a Store, enforcing the tree invariants and
// keeping every multi-record mutation inside one atomic operation.
package element

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/types"
)

// siblingLimit bounds how many same-kind attribute instances one container
// is expected to carry. The exclusivity rewrite and the summary counts fetch
// up to this many.
const siblingLimit = 1000

// Engine performs tree operations against a store on behalf of the user the
// identity provider reports.
type Engine struct {
	store types.Store
	ident types.Identity
	log   *zap.Logger
}

// New builds an engine. The logger may be nil.
func New(store types.Store, ident types.Identity, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, ident: ident, log: log}
}

// Filter narrows lookups. Nil Active means "either"; an empty ContentTypes
// set means "any type".
type Filter struct {
	Active       *bool
	ContentTypes []content.ContentType
}

func (f Filter) matches(c *content.Container) bool {
	if f.Active != nil && c.Active() != *f.Active {
		return false
	}
	if len(f.ContentTypes) > 0 {
		hit := false
		for _, ct := range f.ContentTypes {
			if c.ContentType() == ct {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// Lookup fetches the container at key. An absent or filtered-out record is
// a soft miss: the returned Element reports Found() == false and the error
// is nil. A zero key fails with ErrKeyNotResolved.
func (e *Engine) Lookup(key types.Key, f Filter) (*Element, error) {
	if key.IsZero() {
		return nil, types.ErrKeyNotResolved
	}
	if !key.Valid() {
		e.log.Warn("lookup with unusable key", zap.String("key", key.String()))
		return &Element{eng: e}, nil
	}
	rec, err := e.store.Get(key)
	if err == types.ErrNotFound {
		return &Element{eng: e}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", key, err)
	}
	c, ok := rec.(*content.Container)
	if !ok || !f.matches(c) {
		return &Element{eng: e}, nil
	}
	return &Element{eng: e, key: key, container: c}, nil
}

// LookupMany fetches several containers at once. Input keys are
// de-duplicated and invalid entries dropped; the result holds only the
// records that exist and pass the filter. When the distinct keys fit under
// the store's atomic-group ceiling, the fetch runs atomically; above the
// ceiling it falls back to a plain, best-effort batch fetch.
func (e *Engine) LookupMany(keys []types.Key, f Filter) (*Element, error) {
	distinct := make([]types.Key, 0, len(keys))
	seen := make(map[types.Key]bool, len(keys))
	for _, k := range keys {
		if !k.Valid() || seen[k] {
			continue
		}
		seen[k] = true
		distinct = append(distinct, k)
	}

	var recs []types.Record
	var err error
	if len(distinct) <= e.store.MaxAtomicGroups() {
		err = e.store.RunAtomic(func(tx types.Store) error {
			var terr error
			recs, terr = tx.MultiGet(distinct)
			return terr
		})
	} else {
		recs, err = e.store.MultiGet(distinct)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %d keys: %w", len(distinct), err)
	}

	el := &Element{eng: e}
	for i, rec := range recs {
		if rec == nil {
			continue
		}
		c, ok := rec.(*content.Container)
		if !ok || !f.matches(c) {
			continue
		}
		el.keys = append(el.keys, distinct[i])
		el.records = append(el.records, c)
	}
	return el, nil
}

// Create makes a new container. TypeRoot bootstraps the well-known root and
// ignores parent and active; any other type creates a child under parent.
// With no authenticated caller the operation is refused softly: nothing is
// written and the returned Element is unkeyed.
func (e *Engine) Create(ct content.ContentType, parent types.Key, active bool) (*Element, error) {
	user, ok := e.ident.CurrentUser()
	if !ok {
		e.log.Warn("create refused: no authenticated user",
			zap.Stringer("content_type", ct))
		return &Element{eng: e}, nil
	}
	if ct == content.TypeRoot {
		return e.bootstrapRoot(user)
	}
	return e.createChild(ct, parent, active)
}

// bootstrapRoot creates the root container and its "root" name attribute in
// one atomic operation. Idempotent: an existing root is returned unchanged,
// even to non-administrators. Creation itself is admin-only and refused
// softly otherwise.
func (e *Engine) bootstrapRoot(user types.UserRef) (*Element, error) {
	el := &Element{eng: e}
	err := e.store.RunAtomic(func(tx types.Store) error {
		rec, err := tx.Get(types.RootKey)
		if err == nil {
			if c, ok := rec.(*content.Container); ok {
				el.key = types.RootKey
				el.container = c
				return nil
			}
			return fmt.Errorf("%w: root record is not a container", types.ErrInvalidRecord)
		}
		if err != types.ErrNotFound {
			return err
		}
		if !e.ident.IsAdmin(user) {
			e.log.Warn("root bootstrap refused: caller is not an administrator",
				zap.String("user", user.ID))
			return nil
		}

		root, err := content.NewContainer(content.TypeRoot)
		if err != nil {
			return err
		}
		if err := root.SetActive(true); err != nil {
			return err
		}
		root.SetKey(types.RootKey)
		if _, err := tx.Put(root); err != nil {
			return err
		}

		name := content.NewName("root")
		if err := name.SetAuthor(user); err != nil {
			return err
		}
		name.SetKey(types.Key{Kind: content.KindName, Ancestor: types.RootKey.ID})
		nameKey, err := tx.Put(name)
		if err != nil {
			return err
		}

		if err := root.AppendAttribute(nameKey); err != nil {
			return err
		}
		if _, err := tx.Put(root); err != nil {
			return err
		}
		el.key = types.RootKey
		el.container = root
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap root: %w", err)
	}
	return el, nil
}

// createChild creates a container under parent and links it into the
// parent's menu, both in one atomic operation. The parent is re-fetched
// inside the transaction so concurrent child creations never lose each
// other's menu entries.
func (e *Engine) createChild(ct content.ContentType, parent types.Key, active bool) (*Element, error) {
	if !parent.Valid() {
		return nil, types.ErrInvalidParent
	}
	el := &Element{eng: e}
	err := e.store.RunAtomic(func(tx types.Store) error {
		rec, err := tx.Get(parent)
		if err == types.ErrNotFound || err == types.ErrInvalidKey {
			return types.ErrInvalidParent
		}
		if err != nil {
			return err
		}
		p, ok := rec.(*content.Container)
		if !ok {
			return types.ErrInvalidParent
		}

		child, err := content.NewContainer(ct)
		if err != nil {
			return err
		}
		if err := child.SetActive(active); err != nil {
			return err
		}
		if err := child.SetMenuParent(parent); err != nil {
			return err
		}
		childKey, err := tx.Put(child)
		if err != nil {
			return err
		}

		if !p.HasMenuChild(childKey) {
			if err := p.AppendMenuChild(childKey); err != nil {
				return err
			}
			if err := p.SetActive(true); err != nil {
				return err
			}
			if _, err := tx.Put(p); err != nil {
				return err
			}
		}
		el.key = childKey
		el.container = child
		return nil
	})
	if err == types.ErrInvalidParent {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("create %s under %s: %w", ct, parent, err)
	}
	return el, nil
}

// SetAttribActive marks the attribute at key as the displayed instance of
// its kind: in one atomic operation every same-kind sibling under the same
// container is rewritten so that exactly the given key is active.
func (e *Engine) SetAttribActive(key types.Key) error {
	if !key.Valid() || key.Ancestor == "" {
		return types.ErrInvalidKey
	}
	if !content.IsAttribKind(key.Kind) {
		return fmt.Errorf("%w: %q is not an attribute kind", types.ErrInvalidKey, key.Kind)
	}
	container := types.Key{Kind: types.KindContainer, ID: key.Ancestor}
	err := e.store.RunAtomic(func(tx types.Store) error {
		recs, err := tx.Query(key.Kind, container).Fetch(siblingLimit)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			a, ok := rec.(content.Attrib)
			if !ok {
				return fmt.Errorf("%w: %s is not an attribute", types.ErrInvalidRecord, rec.Key())
			}
			if err := a.SetActive(a.Key() == key); err != nil {
				return err
			}
			if _, err := tx.Put(a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set active %s: %w", key, err)
	}
	return nil
}

// currentUser is the auth gate shared by the mutating element operations.
func (e *Engine) currentUser() (types.UserRef, bool) {
	return e.ident.CurrentUser()
}
