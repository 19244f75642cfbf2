// Package kvstest contém a suíte de conformidade compartilhada pelos backends.
package kvstest

import (
	"bytes"
	"context"
	"testing"

	"github.com/radieske/sports-games-client/internal/kvs"
)

// Run executa a suíte contra backends novos e vazios criados por newBackend
func Run(t *testing.T, newBackend func(t *testing.T) kvs.Backend) {
	t.Helper()

	t.Run("get missing", func(t *testing.T) {
		b := newBackend(t)
		_, found, err := b.Get(context.Background(), "missing")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if found {
			t.Fatal("expected missing key")
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		mustSet(t, b, "k", `"first"`)
		mustSet(t, b, "k", `"second"`)
		v, found, err := b.Get(ctx, "k")
		if err != nil || !found {
			t.Fatalf("get: found=%v err=%v", found, err)
		}
		if !bytes.Equal(v, []byte(`"second"`)) {
			t.Fatalf("value = %s, want \"second\"", v)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		mustSet(t, b, "k", `1`)
		for i := 0; i < 2; i++ {
			if err := b.Delete(ctx, "k"); err != nil {
				t.Fatalf("delete #%d: %v", i+1, err)
			}
			if _, found, _ := b.Get(ctx, "k"); found {
				t.Fatalf("key still present after delete #%d", i+1)
			}
		}
	})

	t.Run("multi get keeps order", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		if err := b.MultiSet(ctx, []kvs.RawPair{
			{Key: "k3", Value: []byte(`3`)},
			{Key: "k1", Value: []byte(`1`)},
		}); err != nil {
			t.Fatalf("multi set: %v", err)
		}
		got, err := b.MultiGet(ctx, []string{"k1", "k2", "k3"})
		if err != nil {
			t.Fatalf("multi get: %v", err)
		}
		want := [][]byte{[]byte(`1`), nil, []byte(`3`)}
		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if !bytes.Equal(got[i], want[i]) {
				t.Fatalf("entry %d = %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("clear removes everything", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		mustSet(t, b, "a", `1`)
		mustSet(t, b, "b", `2`)
		if err := b.Clear(ctx); err != nil {
			t.Fatalf("clear: %v", err)
		}
		got, err := b.MultiGet(ctx, []string{"a", "b"})
		if err != nil {
			t.Fatalf("multi get: %v", err)
		}
		if got[0] != nil || got[1] != nil {
			t.Fatalf("values after clear = %q", got)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := newBackend(t).Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}

func mustSet(t *testing.T, b kvs.Backend, key, value string) {
	t.Helper()
	if err := b.Set(context.Background(), key, []byte(value)); err != nil {
		t.Fatalf("set %s: %v", key, err)
	}
}
