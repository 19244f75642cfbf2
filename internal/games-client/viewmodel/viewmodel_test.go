package viewmodel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/radieske/sports-games-client/internal/kvs"
	"github.com/radieske/sports-games-client/pkg/contracts/games"
	"github.com/radieske/sports-games-client/pkg/contracts/storagekeys"
)

func int64p(v int64) *int64 { return &v }

var (
	scheduledGame = games.Game{ID: int64p(1), HomeTeam: "A", AwayTeam: "B", Status: games.StatusScheduled, OddsHome: 1.8, OddsAway: 2.1}
	completedGame = games.Game{ID: int64p(2), HomeTeam: "C", AwayTeam: "D", Status: games.StatusCompleted, OddsHome: 1.5, OddsAway: 2.6}
	completed     = games.StatusFilter(games.StatusCompleted)
)

// fakeSource delega para funções configuráveis e registra os filtros pedidos
type fakeSource struct {
	mu      sync.Mutex
	filters []games.StatusFilter
	creates int

	listFn   func(ctx context.Context, f games.StatusFilter) ([]games.Game, error)
	createFn func(ctx context.Context, d games.GameDraft) (games.Game, error)
}

func (f *fakeSource) ListGames(ctx context.Context, filter games.StatusFilter) ([]games.Game, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	var out []games.Game
	for _, g := range []games.Game{scheduledGame, completedGame} {
		if filter.Matches(g) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeSource) CreateGame(ctx context.Context, d games.GameDraft) (games.Game, error) {
	f.mu.Lock()
	f.creates++
	f.mu.Unlock()
	if f.createFn != nil {
		return f.createFn(ctx, d)
	}
	return d.WithID(99), nil
}

func (f *fakeSource) requested() []games.StatusFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]games.StatusFilter(nil), f.filters...)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func ids(items []games.Game) []int64 {
	out := make([]int64, len(items))
	for i, g := range items {
		out[i] = g.IDValue()
	}
	return out
}

func TestLoadAppliesResult(t *testing.T) {
	rec := &recordingNotifier{}
	vm := New(&fakeSource{}, rec)

	if err := vm.Load(context.Background(), completed); err != nil {
		t.Fatalf("load: %v", err)
	}

	st := vm.State()
	if st.IsLoading {
		t.Fatal("still loading after settle")
	}
	if st.ActiveFilter != completed {
		t.Fatalf("filter = %q, want completed", st.ActiveFilter)
	}
	if len(st.Items) != 1 || st.Items[0].IDValue() != 2 {
		t.Fatalf("items = %v, want [2]", ids(st.Items))
	}
	if st.LastSync.IsZero() {
		t.Fatal("last sync not set")
	}
	if len(rec.all()) != 0 {
		t.Fatalf("unexpected notices: %v", rec.all())
	}
}

func TestLoadFailureKeepsItems(t *testing.T) {
	rec := &recordingNotifier{}
	src := &fakeSource{}
	vm := New(src, rec)
	_ = vm.Load(context.Background(), games.AllStatuses)

	src.listFn = func(context.Context, games.StatusFilter) ([]games.Game, error) {
		return nil, errors.New("GET failed: 503")
	}
	if err := vm.Load(context.Background(), completed); err == nil {
		t.Fatal("expected error")
	}

	st := vm.State()
	if st.IsLoading {
		t.Fatal("still loading after failure")
	}
	if len(st.Items) != 2 {
		t.Fatalf("items = %v, want previous list", ids(st.Items))
	}
	if st.ActiveFilter != games.AllStatuses {
		t.Fatalf("filter changed on failure: %q", st.ActiveFilter)
	}
	notices := rec.all()
	if len(notices) != 1 || notices[0].Message != "GET failed: 503" {
		t.Fatalf("notices = %v", notices)
	}
}

func TestRefreshReusesActiveFilter(t *testing.T) {
	src := &fakeSource{}
	vm := New(src, nil)
	ctx := context.Background()

	_ = vm.Load(ctx, completed)
	if err := vm.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	got := src.requested()
	if len(got) != 2 || got[1] != completed {
		t.Fatalf("requested filters = %v", got)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{}
	src.listFn = func(_ context.Context, f games.StatusFilter) ([]games.Game, error) {
		if f.IsAll() {
			close(started)
			<-release
			return []games.Game{scheduledGame, completedGame}, nil
		}
		return []games.Game{completedGame}, nil
	}
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	vm := New(src, nil, WithMetrics(m))
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() { slow <- vm.Load(ctx, games.AllStatuses) }()
	<-started

	if err := vm.Load(ctx, completed); err != nil {
		t.Fatalf("fast load: %v", err)
	}
	if !vm.State().IsLoading {
		t.Fatal("slow request still outstanding, expected loading")
	}

	close(release)
	if err := <-slow; err != nil {
		t.Fatalf("slow load: %v", err)
	}

	st := vm.State()
	if st.ActiveFilter != completed {
		t.Fatalf("filter = %q, want the most recent intent", st.ActiveFilter)
	}
	if len(st.Items) != 1 || st.Items[0].IDValue() != 2 {
		t.Fatalf("items = %v, want [2]", ids(st.Items))
	}
	if st.IsLoading {
		t.Fatal("still loading after both settled")
	}
	if got := counterValue(t, m.StaleDiscarded); got != 1 {
		t.Fatalf("stale discarded = %v, want 1", got)
	}
	if got := counterValue(t, m.Intents.WithLabelValues("load")); got != 2 {
		t.Fatalf("load intents = %v, want 2", got)
	}
}

func TestInOrderCompletionAppliesLatest(t *testing.T) {
	firstDone := make(chan struct{})
	src := &fakeSource{}
	src.listFn = func(_ context.Context, f games.StatusFilter) ([]games.Game, error) {
		if f.IsAll() {
			defer close(firstDone)
			return []games.Game{scheduledGame, completedGame}, nil
		}
		<-firstDone
		return []games.Game{completedGame}, nil
	}
	vm := New(src, nil)
	ctx := context.Background()

	newer := make(chan error, 1)
	older := make(chan error, 1)
	go func() { older <- vm.Load(ctx, games.AllStatuses) }()
	<-firstDone
	go func() { newer <- vm.Load(ctx, completed) }()
	<-older
	<-newer

	if st := vm.State(); st.ActiveFilter != completed || len(st.Items) != 1 {
		t.Fatalf("state = %+v, want completed list", st)
	}
}

func TestSupersededFailureIsNotSurfaced(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{}
	src.listFn = func(_ context.Context, f games.StatusFilter) ([]games.Game, error) {
		if f.IsAll() {
			close(started)
			<-release
			return nil, errors.New("GET failed: 500")
		}
		return []games.Game{completedGame}, nil
	}
	rec := &recordingNotifier{}
	vm := New(src, rec)
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() { slow <- vm.Load(ctx, games.AllStatuses) }()
	<-started
	_ = vm.Load(ctx, completed)
	close(release)
	<-slow

	if n := rec.all(); len(n) != 0 {
		t.Fatalf("notices = %v, want none for superseded request", n)
	}
	if st := vm.State(); st.ActiveFilter != completed || st.IsLoading {
		t.Fatalf("state = %+v", st)
	}
}

func TestCreateReloadsWithActiveFilter(t *testing.T) {
	src := &fakeSource{}
	var created []games.Game
	src.createFn = func(_ context.Context, d games.GameDraft) (games.Game, error) {
		g := d.WithID(42)
		created = append(created, g)
		return g, nil
	}
	src.listFn = func(_ context.Context, f games.StatusFilter) ([]games.Game, error) {
		out := []games.Game{}
		for _, g := range append([]games.Game{scheduledGame}, created...) {
			if f.Matches(g) {
				out = append(out, g)
			}
		}
		return out, nil
	}
	vm := New(src, nil)
	ctx := context.Background()
	filter := games.StatusFilter(games.StatusScheduled)
	_ = vm.Load(ctx, filter)

	draft := games.GameDraft{League: "NFL", HomeTeam: "X", AwayTeam: "Y", Status: games.StatusScheduled, OddsHome: 1.8, OddsAway: 2.1}
	got, err := vm.Create(ctx, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.IDValue() != 42 {
		t.Fatalf("created id = %d", got.IDValue())
	}

	req := src.requested()
	if len(req) != 2 || req[1] != filter {
		t.Fatalf("requested filters = %v, want reload with %q", req, filter)
	}
	st := vm.State()
	if st.IsLoading {
		t.Fatal("still loading after create")
	}
	found := false
	for _, g := range st.Items {
		if g.IDValue() == 42 && g.Draft() == draft {
			found = true
		}
	}
	if !found {
		t.Fatalf("items = %v, want created game 42", ids(st.Items))
	}
}

func TestCreateFailureKeepsItems(t *testing.T) {
	rec := &recordingNotifier{}
	src := &fakeSource{}
	vm := New(src, rec)
	ctx := context.Background()
	_ = vm.Load(ctx, games.AllStatuses)

	src.createFn = func(context.Context, games.GameDraft) (games.Game, error) {
		return games.Game{}, errors.New("POST failed: 500")
	}
	if _, err := vm.Create(ctx, games.GameDraft{HomeTeam: "X", AwayTeam: "Y"}); err == nil {
		t.Fatal("expected error")
	}

	st := vm.State()
	if st.IsLoading || len(st.Items) != 2 {
		t.Fatalf("state = %+v", st)
	}
	if len(src.requested()) != 1 {
		t.Fatal("failed create must not reload")
	}
	if n := rec.all(); len(n) != 1 || n[0].Message != "POST failed: 500" {
		t.Fatalf("notices = %v", n)
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	rec := &recordingNotifier{}
	src := &fakeSource{}
	vm := New(src, rec)

	_, err := vm.Create(context.Background(), games.GameDraft{HomeTeam: "X"})
	if !errors.Is(err, games.ErrInvalidDraft) {
		t.Fatalf("error = %v, want ErrInvalidDraft", err)
	}
	if src.creates != 0 {
		t.Fatal("invalid draft reached the server")
	}
	if n := rec.all(); len(n) != 1 || n[0].Title != "Invalid game" {
		t.Fatalf("notices = %v", n)
	}
	if vm.State().IsLoading {
		t.Fatal("loading after rejected draft")
	}
}

func TestSubscribeReceivesFinalState(t *testing.T) {
	vm := New(&fakeSource{}, nil)
	ch, cancel := vm.Subscribe()
	defer cancel()

	initial := <-ch
	if initial.IsLoading || len(initial.Items) != 0 {
		t.Fatalf("initial state = %+v", initial)
	}

	_ = vm.Load(context.Background(), games.AllStatuses)

	select {
	case st := <-ch:
		if st.IsLoading || len(st.Items) != 2 {
			t.Fatalf("published state = %+v", st)
		}
	case <-time.After(time.Second):
		t.Fatal("no state published")
	}
}

func TestStateIsACopy(t *testing.T) {
	vm := New(&fakeSource{}, nil)
	_ = vm.Load(context.Background(), games.AllStatuses)

	st := vm.State()
	st.Items[0].HomeTeam = "mutated"
	if vm.State().Items[0].HomeTeam == "mutated" {
		t.Fatal("State() exposed internal slice")
	}
}

func TestLoadWritesCacheAndRestore(t *testing.T) {
	ctx := context.Background()
	store := kvs.New(kvs.NewMemoryBackend(), nil)
	fixed := time.Date(2025, time.November, 10, 13, 0, 0, 0, time.UTC)

	vm := New(&fakeSource{}, nil, WithStore(store), WithClock(func() time.Time { return fixed }))
	if err := vm.Load(ctx, completed); err != nil {
		t.Fatalf("load: %v", err)
	}

	var lastSync time.Time
	if found, err := store.Get(ctx, storagekeys.LastSync, &lastSync); err != nil || !found {
		t.Fatalf("last sync: found=%v err=%v", found, err)
	}
	if !lastSync.Equal(fixed) {
		t.Fatalf("last sync = %v, want %v", lastSync, fixed)
	}

	restarted := New(&fakeSource{}, nil, WithStore(store))
	if err := restarted.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	st := restarted.State()
	if st.ActiveFilter != completed || len(st.Items) != 1 || st.Items[0].IDValue() != 2 {
		t.Fatalf("restored state = %+v", st)
	}
	if !st.LastSync.Equal(fixed) {
		t.Fatalf("restored last sync = %v", st.LastSync)
	}
}

func TestRestoreDoesNotOverrideAppliedLoad(t *testing.T) {
	ctx := context.Background()
	store := kvs.New(kvs.NewMemoryBackend(), nil)
	_ = store.Store(ctx, storagekeys.CachedGames, cachedGames{Filter: completed, Items: []games.Game{completedGame}})

	vm := New(&fakeSource{}, nil, WithStore(store))
	_ = vm.Load(ctx, games.AllStatuses)
	if err := vm.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if st := vm.State(); st.ActiveFilter != games.AllStatuses || len(st.Items) != 2 {
		t.Fatalf("state = %+v, want fresh remote list", st)
	}
}

func TestRestoreWithoutCache(t *testing.T) {
	vm := New(&fakeSource{}, nil, WithStore(kvs.New(kvs.NewMemoryBackend(), nil)))
	if err := vm.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(vm.State().Items) != 0 {
		t.Fatal("expected empty state")
	}
}

func TestOlderResponseDiscardedAfterNewerFailure(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{}
	src.listFn = func(_ context.Context, f games.StatusFilter) ([]games.Game, error) {
		if f.IsAll() {
			close(started)
			<-release
			return []games.Game{scheduledGame, completedGame}, nil
		}
		return nil, errors.New("GET failed: 500")
	}
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	rec := &recordingNotifier{}
	vm := New(src, rec, WithMetrics(m))
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() { slow <- vm.Load(ctx, games.AllStatuses) }()
	<-started

	if err := vm.Load(ctx, completed); err == nil {
		t.Fatal("expected newer load to fail")
	}
	close(release)
	<-slow

	st := vm.State()
	if st.ActiveFilter != games.AllStatuses || len(st.Items) != 0 {
		t.Fatalf("state = %+v, want pre-intent state (no filter, no items)", st)
	}
	if st.IsLoading {
		t.Fatal("still loading after both settled")
	}
	if n := rec.all(); len(n) != 1 {
		t.Fatalf("notices = %v, want the newer failure only", n)
	}
	if got := counterValue(t, m.StaleDiscarded); got != 1 {
		t.Fatalf("stale discarded = %v, want 1", got)
	}
}

func TestOlderLoadDiscardedAfterFailedCreate(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{}
	vm := New(src, &recordingNotifier{}, WithMetrics(NewMetrics(prometheus.NewRegistry())))

	if err := vm.Load(ctx, completed); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	before := vm.State()

	src.listFn = func(_ context.Context, f games.StatusFilter) ([]games.Game, error) {
		close(started)
		<-release
		return []games.Game{scheduledGame, completedGame}, nil
	}
	src.createFn = func(context.Context, games.GameDraft) (games.Game, error) {
		return games.Game{}, errors.New("POST failed: 500")
	}

	slow := make(chan error, 1)
	go func() { slow <- vm.Load(ctx, games.AllStatuses) }()
	<-started

	if _, err := vm.Create(ctx, games.GameDraft{HomeTeam: "X", AwayTeam: "Y"}); err == nil {
		t.Fatal("expected create to fail")
	}
	close(release)
	<-slow

	st := vm.State()
	if st.ActiveFilter != before.ActiveFilter || len(st.Items) != len(before.Items) || st.Items[0].IDValue() != 2 {
		t.Fatalf("state = %+v, want unchanged %+v", st, before)
	}
	if st.IsLoading {
		t.Fatal("still loading after both settled")
	}
	if got := counterValue(t, vm.metrics.StaleDiscarded); got != 1 {
		t.Fatalf("stale discarded = %v, want 1", got)
	}
}

func TestRestoreAfterFailedLoad(t *testing.T) {
	ctx := context.Background()
	store := kvs.New(kvs.NewMemoryBackend(), nil)
	_ = store.Store(ctx, storagekeys.CachedGames, cachedGames{Filter: completed, Items: []games.Game{completedGame}})

	src := &fakeSource{listFn: func(context.Context, games.StatusFilter) ([]games.Game, error) {
		return nil, errors.New("GET failed: 503")
	}}
	vm := New(src, nil, WithStore(store))
	_ = vm.Load(ctx, games.AllStatuses)

	if err := vm.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if st := vm.State(); len(st.Items) != 1 || st.ActiveFilter != completed {
		t.Fatalf("state = %+v, want cached list", st)
	}
}
