package sqlitekv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/radieske/sports-games-client/internal/kvs"
	"github.com/radieske/sports-games-client/internal/kvs/kvstest"
	"github.com/radieske/sports-games-client/pkg/contracts/storagekeys"
)

func openTemp(t *testing.T, path string) *Backend {
	t.Helper()
	b, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open sqlite backend: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestConformance(t *testing.T) {
	kvstest.Run(t, func(t *testing.T) kvs.Backend {
		return openTemp(t, filepath.Join(t.TempDir(), "kv.db"))
	})
}

func TestValuesSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store := kvs.New(first, nil)
	if err := store.Store(ctx, storagekeys.FavoriteTeams, []string{"Kansas City Privates"}); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := kvs.New(openTemp(t, path), nil)
	var teams []string
	found, err := reopened.Get(ctx, storagekeys.FavoriteTeams, &teams)
	if err != nil || !found {
		t.Fatalf("get after reopen: found=%v err=%v", found, err)
	}
	if len(teams) != 1 || teams[0] != "Kansas City Privates" {
		t.Fatalf("teams = %v", teams)
	}
}
