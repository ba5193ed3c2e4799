package integration

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/element"
	"github.com/mrdunk/routeticker/pkg/types"
)

// TestGuidebookLifecycle builds a small guidebook tree on every backend:
// bootstrap, area/crag/climb creation, named and described nodes, active
// attribute selection, and the summary views a front end would render from.
func TestGuidebookLifecycle(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, t.TempDir())
			e, ident := newEngine(t, s)

			// Bootstrap, twice: the second call must return the same root.
			root, err := e.Create(content.TypeRoot, types.Key{}, false)
			require.NoError(t, err)
			require.Equal(t, types.RootKey, root.Key())
			again, err := e.Create(content.TypeRoot, types.Key{}, false)
			require.NoError(t, err)
			require.Equal(t, root.Key(), again.Key())
			require.Len(t, again.Container().Attributes(), 1, "bootstrap must stay idempotent")

			// Build root -> area -> crag -> climb.
			area, err := e.Create(content.TypeArea, root.Key(), false)
			require.NoError(t, err)
			crag, err := e.Create(content.TypeCrag, area.Key(), false)
			require.NoError(t, err)
			climb, err := e.Create(content.TypeClimb, crag.Key(), false)
			require.NoError(t, err)

			parent, ok := climb.MenuParent()
			require.True(t, ok)
			assert.Equal(t, crag.Key(), parent)

			// Creating a child switches the parent on.
			freshArea, err := e.Lookup(area.Key(), element.Filter{})
			require.NoError(t, err)
			assert.True(t, freshArea.Container().Active())
			assert.Equal(t, []types.Key{crag.Key()}, freshArea.MenuChildren())

			// Name and describe the crag as the admin.
			name, err := crag.AddAttrib(content.NewName("Stanage Edge"))
			require.NoError(t, err)
			_, err = crag.AddAttrib(content.NewDescription("Gritstone escarpment."))
			require.NoError(t, err)
			require.Len(t, crag.Container().Attributes(), 2)

			// A second author adds a competing name.
			ident.User = types.UserRef{ID: "2", Email: "visitor@example.com"}
			rival, err := crag.AddAttrib(content.NewName("Stanage"))
			require.NoError(t, err)
			require.NotEqual(t, name.Key(), rival.Key())

			// Pick the admin's name as the displayed one.
			require.NoError(t, e.SetAttribActive(name.Key()))

			// A fresh lookup renders the displayed name from the summaries.
			view, err := e.Lookup(crag.Key(), element.Filter{})
			require.NoError(t, err)
			require.True(t, view.Found())
			require.NoError(t, view.AttribShallowAll())

			names, populated := view.Attribs(content.KindName)
			require.True(t, populated)
			require.Len(t, names, 2, "one slot per name instance")
			var active content.Attrib
			for _, a := range names {
				if a != nil {
					require.Nil(t, active, "shallow view holds only the active instance")
					active = a
				}
			}
			require.NotNil(t, active)
			assert.Equal(t, name.Key(), active.Key())
			assert.Equal(t, "Stanage Edge", active.(*content.AttribName).Text())

			// Deep view exposes both names.
			require.NoError(t, view.AttribDeep(content.KindName))
			names, _ = view.Attribs(content.KindName)
			require.Len(t, names, 2)
			for _, a := range names {
				require.NotNil(t, a)
			}
		})
	}
}

// TestMenuNavigation walks the tree the way the front end builds menus:
// batch child lookups with activity and type filters.
func TestMenuNavigation(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, t.TempDir())
			e, _ := newEngine(t, s)

			root, err := e.Create(content.TypeRoot, types.Key{}, false)
			require.NoError(t, err)

			// Enough children to push the batch path past the atomic
			// ceiling: visible crags and one hidden area.
			n := s.MaxAtomicGroups() + 3
			for i := 0; i < n; i++ {
				_, err := e.Create(content.TypeCrag, root.Key(), true)
				require.NoError(t, err)
			}
			hidden, err := e.Create(content.TypeArea, root.Key(), false)
			require.NoError(t, err)

			fresh, err := e.Lookup(root.Key(), element.Filter{})
			require.NoError(t, err)
			children := fresh.MenuChildren()
			require.Len(t, children, n+1)

			visible := true
			menu, err := e.LookupMany(children, element.Filter{Active: &visible})
			require.NoError(t, err)
			assert.Len(t, menu.Records(), n, "hidden node must not appear in the menu")
			for _, k := range menu.Keys() {
				assert.NotEqual(t, hidden.Key(), k)
			}

			areas, err := e.LookupMany(children, element.Filter{
				ContentTypes: []content.ContentType{content.TypeArea},
			})
			require.NoError(t, err)
			require.Len(t, areas.Records(), 1)
			assert.Equal(t, hidden.Key(), areas.Keys()[0])
		})
	}
}

// TestAttributeUpsertPerUser checks the one-instance-per-author rule across
// backends: re-submitting by the same author edits in place.
func TestAttributeUpsertPerUser(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, t.TempDir())
			e, ident := newEngine(t, s)

			root, err := e.Create(content.TypeRoot, types.Key{}, false)
			require.NoError(t, err)
			climb, err := e.Create(content.TypeClimb, root.Key(), false)
			require.NoError(t, err)

			for i := 0; i < 3; i++ {
				ident.User = types.UserRef{ID: fmt.Sprintf("author-%d", i)}
				_, err := climb.AddAttrib(content.NewName(fmt.Sprintf("draft %d", i)))
				require.NoError(t, err)
			}
			require.Len(t, climb.Container().Attributes(), 3)

			// Author 1 revises: no new instance appears.
			ident.User = types.UserRef{ID: "author-1"}
			revised, err := climb.AddAttrib(content.NewName("final"))
			require.NoError(t, err)
			require.Len(t, climb.Container().Attributes(), 3)

			rec, err := s.Get(revised.Key())
			require.NoError(t, err)
			got := rec.(*content.AttribName)
			assert.Equal(t, "final", got.Text())
			assert.Equal(t, types.UserRef{ID: "author-1"}, got.Author())
			assert.Equal(t, revised.Created().UnixNano(), got.Created().UnixNano())
		})
	}
}
