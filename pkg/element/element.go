package element

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/types"
)

// deepFetchLimit bounds how many instances a deep summary pulls per kind.
const deepFetchLimit = 100

// Element is a transient, process-local view of one looked-up or created
// container (single view), or of a batch lookup's matches (multi view).
// Exactly one view is populated. The attribute cache is lazily built by the
// summary operations and is never authoritative for writes.
type Element struct {
	eng *Engine

	// single view
	key       types.Key
	container *content.Container

	// multi view
	keys    []types.Key
	records []*content.Container

	attribs []attribEntry
}

// attribEntry is one kind's slot in the attribute cache. A placeholder
// (populated == false) records that the kind exists on the container but has
// not been fetched; a populated entry holds instances, possibly with nil
// slots standing in for not-yet-fetched siblings.
type attribEntry struct {
	kind      string
	instances []content.Attrib
	populated bool
}

// full reports whether every sibling slot holds a fetched instance.
func (en *attribEntry) full() bool {
	if !en.populated || len(en.instances) == 0 {
		return false
	}
	for _, a := range en.instances {
		if a == nil {
			return false
		}
	}
	return true
}

// Found reports whether the single-view lookup or create resolved a
// container.
func (el *Element) Found() bool { return el.container != nil }

// Key returns the single-view container key, zero when nothing resolved.
func (el *Element) Key() types.Key { return el.key }

// Container returns the single-view container, nil when nothing resolved.
func (el *Element) Container() *content.Container { return el.container }

// Keys returns the multi-view keys of the records that matched.
func (el *Element) Keys() []types.Key { return el.keys }

// Records returns the multi-view containers that matched.
func (el *Element) Records() []*content.Container { return el.records }

// MenuChildren returns the container's ordered child keys.
func (el *Element) MenuChildren() []types.Key {
	if el.container == nil {
		return nil
	}
	return el.container.MenuChildren()
}

// MenuParent returns the container's parent key, ok=false on the root and
// on an unresolved element.
func (el *Element) MenuParent() (types.Key, bool) {
	if el.container == nil {
		return types.Key{}, false
	}
	return el.container.MenuParent()
}

// Attribs returns the cached instances for a kind and whether the kind has
// been populated. Nil entries stand in for siblings not yet fetched.
func (el *Element) Attribs(kind string) ([]content.Attrib, bool) {
	for i := range el.attribs {
		if el.attribs[i].kind == kind {
			return el.attribs[i].instances, el.attribs[i].populated
		}
	}
	return nil, false
}

// AddAttrib attaches an attribute to the element's container with upsert
// semantics keyed by (container, kind, author): an existing instance by the
// same caller is updated in place, otherwise the submitted instance is
// stored as new. The query, the write, and the container-link update run as
// one atomic operation. With no authenticated caller the operation is
// refused softly and the input comes back unmodified.
func (el *Element) AddAttrib(a content.Attrib) (content.Attrib, error) {
	user, ok := el.eng.currentUser()
	if !ok {
		el.eng.log.Warn("addAttrib refused: no authenticated user",
			zap.String("kind", a.Kind()))
		return a, nil
	}
	if el.container == nil || !el.key.Valid() {
		return nil, types.ErrKeyNotResolved
	}

	var stored content.Attrib
	var fresh *content.Container
	err := el.eng.store.RunAtomic(func(tx types.Store) error {
		existing, err := tx.Query(a.Kind(), el.key).Filter("author", user).Fetch(1)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			prior, ok := existing[0].(content.Attrib)
			if !ok {
				return fmt.Errorf("%w: %s is not an attribute", types.ErrInvalidRecord, existing[0].Key())
			}
			if err := prior.Populate(a); err != nil {
				return err
			}
			if _, err := tx.Put(prior); err != nil {
				return err
			}
			stored = prior
		} else {
			if err := a.SetAuthor(user); err != nil {
				return err
			}
			a.SetKey(types.Key{Kind: a.Kind(), Ancestor: el.key.ID})
			if _, err := tx.Put(a); err != nil {
				return err
			}
			stored = a
		}

		// Re-fetch the container so a stale in-memory copy never drives
		// the link update.
		rec, err := tx.Get(el.key)
		if err != nil {
			return err
		}
		c, ok := rec.(*content.Container)
		if !ok {
			return fmt.Errorf("%w: %s is not a container", types.ErrInvalidRecord, el.key)
		}
		if !c.HasAttribute(stored.Key()) {
			if err := c.AppendAttribute(stored.Key()); err != nil {
				return err
			}
			if _, err := tx.Put(c); err != nil {
				return err
			}
		}
		fresh = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add %s to %s: %w", a.Kind(), el.key, err)
	}

	// Swap the cached container only now that the transaction committed.
	el.container = fresh
	el.cacheAttrib(stored)
	return stored, nil
}

// cacheAttrib folds a freshly stored attribute into the cache without
// disturbing other kinds' entries or their order.
func (el *Element) cacheAttrib(a content.Attrib) {
	kind := a.Kind()
	for i := range el.attribs {
		en := &el.attribs[i]
		if en.kind != kind {
			continue
		}
		if !en.populated {
			en.instances = []content.Attrib{a}
			en.populated = true
			return
		}
		for j, prior := range en.instances {
			if prior != nil && prior.Key() == a.Key() {
				en.instances[j] = a
				return
			}
		}
		en.instances = append(en.instances, a)
		return
	}
	el.attribs = append(el.attribs, attribEntry{kind: kind})
}

// AttribKinds seeds the attribute cache from the container's attribute key
// list, keeping any previously cached kinds, and returns the kinds in cache
// order.
func (el *Element) AttribKinds() ([]string, error) {
	if el.container == nil {
		return nil, types.ErrKeyNotResolved
	}
	for _, k := range el.container.Attributes() {
		if !content.IsAttribKind(k.Kind) {
			el.eng.log.Warn("skipping attribute of unknown kind",
				zap.String("key", k.String()))
			continue
		}
		if !el.hasKind(k.Kind) {
			el.attribs = append(el.attribs, attribEntry{kind: k.Kind})
		}
	}
	kinds := make([]string, len(el.attribs))
	for i := range el.attribs {
		kinds[i] = el.attribs[i].kind
	}
	return kinds, nil
}

func (el *Element) hasKind(kind string) bool {
	for i := range el.attribs {
		if el.attribs[i].kind == kind {
			return true
		}
	}
	return false
}

// AttribShallow populates one kind's cache entry with its active instance,
// padded with nil slots up to the sibling count. A kind whose entry is
// already fully populated is left alone. A registered kind with no
// instances attached gets an empty populated entry, so Attribs reports it
// as fetched rather than unknown.
func (el *Element) AttribShallow(kind string) error {
	if _, err := el.AttribKinds(); err != nil {
		return err
	}
	for i := range el.attribs {
		if el.attribs[i].kind != kind {
			continue
		}
		if el.attribs[i].full() {
			return nil
		}
		instances, err := el.fetchShallow(kind)
		if err != nil {
			return err
		}
		el.attribs[i].instances = instances
		el.attribs[i].populated = true
		return nil
	}
	if content.IsAttribKind(kind) {
		el.attribs = append(el.attribs, attribEntry{kind: kind, populated: true})
	}
	return nil
}

// AttribShallowAll populates every known kind's entry the way AttribShallow
// does, replacing prior entries.
func (el *Element) AttribShallowAll() error {
	kinds, err := el.AttribKinds()
	if err != nil {
		return err
	}
	for _, kind := range kinds {
		instances, err := el.fetchShallow(kind)
		if err != nil {
			return err
		}
		for i := range el.attribs {
			if el.attribs[i].kind == kind {
				el.attribs[i].instances = instances
				el.attribs[i].populated = true
				break
			}
		}
	}
	return nil
}

// AttribDeep replaces one kind's entry with every instance of the kind,
// active or not. Other kinds' entries pass through unchanged.
func (el *Element) AttribDeep(kind string) error {
	if _, err := el.AttribKinds(); err != nil {
		return err
	}
	var instances []content.Attrib
	err := el.eng.store.RunAtomic(func(tx types.Store) error {
		recs, err := tx.Query(kind, el.key).Fetch(deepFetchLimit)
		if err != nil {
			return err
		}
		instances = make([]content.Attrib, 0, len(recs))
		for _, rec := range recs {
			a, ok := rec.(content.Attrib)
			if !ok {
				return fmt.Errorf("%w: %s is not an attribute", types.ErrInvalidRecord, rec.Key())
			}
			instances = append(instances, a)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deep fetch %s under %s: %w", kind, el.key, err)
	}
	for i := range el.attribs {
		if el.attribs[i].kind == kind {
			el.attribs[i].instances = instances
			el.attribs[i].populated = true
			return nil
		}
	}
	el.attribs = append(el.attribs, attribEntry{kind: kind, instances: instances, populated: true})
	return nil
}

// fetchShallow reads one kind's active instance and sibling count in a
// single atomic operation, so the summary observes a consistent sibling
// set, and returns the active instance nil-padded to the count.
func (el *Element) fetchShallow(kind string) ([]content.Attrib, error) {
	var instances []content.Attrib
	err := el.eng.store.RunAtomic(func(tx types.Store) error {
		count, err := tx.Query(kind, el.key).Count(siblingLimit)
		if err != nil {
			return err
		}
		active, err := tx.Query(kind, el.key).Filter("active", true).Fetch(1)
		if err != nil {
			return err
		}
		instances = make([]content.Attrib, count)
		if len(active) > 0 {
			a, ok := active[0].(content.Attrib)
			if !ok {
				return fmt.Errorf("%w: %s is not an attribute", types.ErrInvalidRecord, active[0].Key())
			}
			instances[0] = a
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("shallow fetch %s under %s: %w", kind, el.key, err)
	}
	return instances, nil
}
