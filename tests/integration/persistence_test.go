package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/element"
	"github.com/mrdunk/routeticker/pkg/types"
)

// TestReopenPreservesTree closes and reopens each persistent backend and
// checks the tree survives: node links, attribute links, and the active
// name all come back.
func TestReopenPreservesTree(t *testing.T) {
	for _, b := range backends {
		if b.name == "memory" {
			continue
		}
		t.Run(b.name, func(t *testing.T) {
			dir := t.TempDir()

			var cragKey, nameKey types.Key
			{
				s := b.open(t, dir)
				e, _ := newEngine(t, s)

				root, err := e.Create(content.TypeRoot, types.Key{}, false)
				require.NoError(t, err)
				crag, err := e.Create(content.TypeCrag, root.Key(), true)
				require.NoError(t, err)
				cragKey = crag.Key()

				name, err := crag.AddAttrib(content.NewName("Froggatt"))
				require.NoError(t, err)
				nameKey = name.Key()
				require.NoError(t, e.SetAttribActive(nameKey))

				if c, ok := s.(interface{ Close() error }); ok {
					require.NoError(t, c.Close())
				}
			}

			s := b.open(t, dir)
			e, _ := newEngine(t, s)

			root, err := e.Lookup(types.RootKey, element.Filter{})
			require.NoError(t, err)
			require.True(t, root.Found())
			assert.Equal(t, []types.Key{cragKey}, root.MenuChildren())

			crag, err := e.Lookup(cragKey, element.Filter{})
			require.NoError(t, err)
			require.True(t, crag.Found())
			assert.True(t, crag.Container().Active())
			assert.True(t, crag.Container().HasAttribute(nameKey))

			require.NoError(t, crag.AttribShallow(content.KindName))
			names, populated := crag.Attribs(content.KindName)
			require.True(t, populated)
			require.Len(t, names, 1)
			require.NotNil(t, names[0])
			assert.Equal(t, "Froggatt", names[0].(*content.AttribName).Text())
			assert.True(t, names[0].Active())
		})
	}
}
