package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/radieske/sports-games-client/internal/games-api/http"
	"github.com/radieske/sports-games-client/internal/games-api/repo"
	"github.com/radieske/sports-games-client/internal/games-client/remote"
	"github.com/radieske/sports-games-client/internal/games-client/session"
	"github.com/radieske/sports-games-client/internal/games-client/storage"
	"github.com/radieske/sports-games-client/internal/games-client/viewmodel"
	"github.com/radieske/sports-games-client/internal/shared/config"
	"github.com/radieske/sports-games-client/pkg/contracts/games"
)

func testApp(t *testing.T) *app {
	t.Helper()
	api := &httpapi.API{Repo: repo.NewMemoryRepo(
		games.GameDraft{HomeTeam: "A", AwayTeam: "B", Status: games.StatusScheduled},
		games.GameDraft{HomeTeam: "C", AwayTeam: "D", Status: games.StatusCompleted},
	)}
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)

	cfg := config.Config{KVSBackend: storage.BackendMemory, GamesAPIBaseURL: srv.URL + "/api", HTTPTimeout: time.Second}
	store, err := storage.Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	client := remote.New(cfg.GamesAPIBaseURL, cfg.HTTPTimeout, nil)
	return &app{
		cfg:     cfg,
		log:     zap.NewNop(),
		store:   store,
		client:  client,
		vm:      viewmodel.New(client, nil, viewmodel.WithStore(store)),
		session: session.NewManager(store, nil, nil, nil),
	}
}

func TestRunListAndCreate(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	if err := a.run(ctx, "list", []string{"completed"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if st := a.vm.State(); len(st.Items) != 1 || st.ActiveFilter != "completed" {
		t.Fatalf("state after list = %+v", st)
	}

	if err := a.run(ctx, "create", []string{"-home", "E", "-away", "F", "-status", "completed"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if st := a.vm.State(); len(st.Items) != 2 {
		t.Fatalf("state after create = %+v", st)
	}

	if err := a.run(ctx, "bogus", nil); err != errUsage {
		t.Fatalf("unknown command err = %v", err)
	}
}

func TestRunPrefs(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	if err := a.run(ctx, "prefs", []string{"favorites", "Lakers, Celtics,"}); err != nil {
		t.Fatal(err)
	}
	if err := a.run(ctx, "prefs", []string{"theme", "dark"}); err != nil {
		t.Fatal(err)
	}
	teams, _ := a.session.FavoriteTeams(ctx)
	if strings.Join(teams, "|") != "Lakers|Celtics" {
		t.Fatalf("favorites = %v", teams)
	}
	if th, _ := a.session.Theme(ctx); th != session.ThemeDark {
		t.Fatalf("theme = %q", th)
	}
	if err := a.run(ctx, "prefs", []string{"theme"}); err != errUsage {
		t.Fatalf("err = %v, want usage", err)
	}
}

func TestPrintGames(t *testing.T) {
	id := int64(7)
	var buf bytes.Buffer
	printGames(&buf, viewmodel.State{Items: []games.Game{{ID: &id, League: "NBA", HomeTeam: "A", AwayTeam: "B", Status: "live", OddsHome: 1.5, OddsAway: 2.25}}})

	out := buf.String()
	for _, want := range []string{"filter: all", "last sync: never", "games: 1", "NBA", "1.50 / 2.25"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFilterArg(t *testing.T) {
	if filterArg(nil) != games.AllStatuses || filterArg([]string{"all"}) != games.AllStatuses {
		t.Fatal("empty/all should mean no filter")
	}
	if filterArg([]string{"live"}) != "live" {
		t.Fatal("status not passed through")
	}
}
