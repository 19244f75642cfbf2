package logger

import "testing"

func TestNewBuildsForEachEnv(t *testing.T) {
	for _, env := range []string{"local", "prod"} {
		l, err := New("games-client", env)
		if err != nil {
			t.Fatalf("New(%q): %v", env, err)
		}
		_ = l.Sync()
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
