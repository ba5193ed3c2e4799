// Package integration exercises the full stack end to end: the tree engine
// over every store backend, through the same paths the CLI drives.
package integration

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mrdunk/routeticker/internal/badgerstore"
	"github.com/mrdunk/routeticker/internal/memstore"
	"github.com/mrdunk/routeticker/internal/sqlitestore"
	"github.com/mrdunk/routeticker/pkg/element"
	"github.com/mrdunk/routeticker/pkg/types"
)

// adminUser is the administrator every suite bootstraps as.
var adminUser = types.UserRef{ID: "1", Email: "admin@example.com"}

// backend names a store implementation and how to open it against a
// directory.
type backend struct {
	name string
	open func(t *testing.T, dir string) types.Store
}

// backends lists every store implementation the suites run against.
var backends = []backend{
	{
		name: "memory",
		open: func(t *testing.T, dir string) types.Store {
			s, err := memstore.Open(types.Config{Backend: types.BackendMemory, DataDir: dir})
			if err != nil {
				t.Fatalf("open memory store: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	},
	{
		name: "sqlite",
		open: func(t *testing.T, dir string) types.Store {
			s, err := sqlitestore.Open(types.Config{Backend: types.BackendSQLite, DataDir: dir}, zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("open sqlite store: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	},
	{
		name: "badger",
		open: func(t *testing.T, dir string) types.Store {
			s, err := badgerstore.Open(types.Config{Backend: types.BackendBadger, DataDir: dir}, zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("open badger store: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	},
}

// newEngine builds an engine over the given store acting as the admin, and
// returns the identity so tests can switch users.
func newEngine(t *testing.T, s types.Store) (*element.Engine, *types.StaticIdentity) {
	t.Helper()
	ident := &types.StaticIdentity{User: adminUser, Admin: true}
	return element.New(s, ident, zaptest.NewLogger(t)), ident
}
