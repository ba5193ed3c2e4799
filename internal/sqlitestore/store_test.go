package sqlitestore

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mrdunk/routeticker/internal/storetest"
	"github.com/mrdunk/routeticker/pkg/content"
	"github.com/mrdunk/routeticker/pkg/types"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) types.Store {
		s, err := Open(types.Config{
			Backend: types.BackendSQLite,
			DataDir: t.TempDir(),
		}, zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestOpenValidatesConfig(t *testing.T) {
	if _, err := Open(types.Config{Backend: types.BackendSQLite}, nil); err == nil {
		t.Fatal("expected error for missing data dir")
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	s, err := Open(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	c, err := content.NewContainer(content.TypeRoot)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	key, err := s.Put(c)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s2.Close()
	if _, err := s2.Get(key); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
}

func TestClosedStoreFails(t *testing.T) {
	s, err := Open(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := s.Get(types.RootKey); err != types.ErrStoreClosed {
		t.Fatalf("got %v, want ErrStoreClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
