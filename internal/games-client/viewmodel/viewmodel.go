// Package viewmodel mantém o estado da tela de jogos e concilia as
// respostas do serviço remoto com a última intent do usuário.
//
// Cada intent recebe um número de sequência crescente ao ser emitida.
// Uma listagem concluída só é aplicada se nenhuma intent mais nova já
// tiver terminado, com sucesso ou falha; caso contrário é descartada como
// obsoleta. Nada é
// cancelado: as requisições terminam por conta própria.
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-games-client/internal/kvs"
	"github.com/radieske/sports-games-client/internal/shared/logger"
	"github.com/radieske/sports-games-client/pkg/contracts/games"
	"github.com/radieske/sports-games-client/pkg/contracts/storagekeys"
)

// GamesSource é o serviço remoto de jogos (remote.Client em produção)
type GamesSource interface {
	ListGames(ctx context.Context, filter games.StatusFilter) ([]games.Game, error)
	CreateGame(ctx context.Context, draft games.GameDraft) (games.Game, error)
}

type ViewModel struct {
	src      GamesSource
	notifier Notifier
	store    *kvs.Store // opcional; sem store não há cache local
	log      *zap.Logger
	metrics  *Metrics
	now      func() time.Time

	mu       sync.Mutex
	state    State
	issued   uint64 // última sequência emitida
	applied  uint64 // última sequência concluída (aplicada ou falha)
	synced   bool   // alguma listagem remota já foi aplicada
	inflight int
	subs     map[int]chan State
	nextSub  int
}

type Option func(*ViewModel)

// WithStore liga o cache local da lista (CachedGames/LastSync)
func WithStore(s *kvs.Store) Option { return func(vm *ViewModel) { vm.store = s } }

func WithLogger(l *zap.Logger) Option { return func(vm *ViewModel) { vm.log = logger.OrNop(l) } }

func WithMetrics(m *Metrics) Option { return func(vm *ViewModel) { vm.metrics = m } }

func WithClock(now func() time.Time) Option { return func(vm *ViewModel) { vm.now = now } }

func New(src GamesSource, notifier Notifier, opts ...Option) *ViewModel {
	vm := &ViewModel{
		src:      src,
		notifier: notifier,
		log:      zap.NewNop(),
		now:      time.Now,
		subs:     make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// State devolve uma cópia do estado atual
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state.clone()
}

// Subscribe devolve um canal com o estado mais recente a cada transição.
// O canal guarda só o último valor: leitores lentos perdem intermediários,
// nunca o final.
func (vm *ViewModel) Subscribe() (<-chan State, func()) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	id := vm.nextSub
	vm.nextSub++
	ch := make(chan State, 1)
	ch <- vm.state.clone()
	vm.subs[id] = ch

	return ch, func() {
		vm.mu.Lock()
		defer vm.mu.Unlock()
		if c, ok := vm.subs[id]; ok {
			delete(vm.subs, id)
			close(c)
		}
	}
}

// Restore preenche a lista com o último cache gravado, enquanto nenhuma
// listagem remota foi aplicada
func (vm *ViewModel) Restore(ctx context.Context) error {
	if vm.store == nil {
		return nil
	}
	entries, err := vm.store.GetMultiple(ctx, []string{storagekeys.CachedGames, storagekeys.LastSync})
	if err != nil {
		return err
	}

	var cached cachedGames
	found, err := entries[0].Decode(&cached)
	if err != nil || !found {
		return err
	}
	var lastSync time.Time
	if _, err := entries[1].Decode(&lastSync); err != nil {
		vm.log.Warn("last sync unreadable", zap.Error(err))
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.synced {
		return nil
	}
	vm.state.Items = cached.Items
	vm.state.ActiveFilter = cached.Filter
	vm.state.LastSync = lastSync
	vm.publishLocked()
	vm.log.Debug("games restored from cache", zap.Int("items", len(cached.Items)))
	return nil
}

// Load lista os jogos com filter. Em falha a lista atual é preservada e
// o erro é avisado ao usuário.
func (vm *ViewModel) Load(ctx context.Context, filter games.StatusFilter) error {
	vm.countIntent("load")
	seq := vm.begin()
	return vm.fetch(ctx, seq, filter)
}

// Refresh repete a listagem com o filtro ativo
func (vm *ViewModel) Refresh(ctx context.Context) error {
	vm.countIntent("refresh")
	vm.mu.Lock()
	filter := vm.state.ActiveFilter
	vm.mu.Unlock()

	seq := vm.begin()
	return vm.fetch(ctx, seq, filter)
}

// Create envia o draft e, se o servidor aceitar, recarrega a lista com o
// filtro ativo. A posição do jogo criado é decidida pelo servidor.
// Se só a recarga falhar, devolve o jogo criado junto com o erro.
func (vm *ViewModel) Create(ctx context.Context, draft games.GameDraft) (games.Game, error) {
	vm.countIntent("create")
	if err := draft.Validate(); err != nil {
		vm.notify(err)
		return games.Game{}, err
	}

	createSeq := vm.begin()
	created, err := vm.src.CreateGame(ctx, draft)
	if err != nil {
		vm.mu.Lock()
		vm.inflight--
		vm.markCompletedLocked(createSeq)
		vm.state.IsLoading = vm.inflight > 0
		vm.publishLocked()
		vm.mu.Unlock()

		vm.log.Warn("create game failed", zap.Error(err))
		vm.notify(err)
		return games.Game{}, err
	}

	// passa o "loading" da criação direto para a recarga, sem piscar
	vm.mu.Lock()
	vm.inflight--
	vm.issued++
	seq := vm.issued
	vm.inflight++
	filter := vm.state.ActiveFilter
	vm.mu.Unlock()

	vm.log.Info("game created", zap.Int64("id", created.IDValue()))
	if err := vm.fetch(ctx, seq, filter); err != nil {
		return created, fmt.Errorf("resync after create: %w", err)
	}
	return created, nil
}

// begin emite uma nova sequência e marca a tela como carregando
func (vm *ViewModel) begin() uint64 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.issued++
	vm.inflight++
	vm.state.IsLoading = true
	vm.publishLocked()
	return vm.issued
}

func (vm *ViewModel) fetch(ctx context.Context, seq uint64, filter games.StatusFilter) error {
	items, err := vm.src.ListGames(ctx, filter)

	vm.mu.Lock()
	vm.inflight--
	applied := false
	superseded := seq < vm.issued
	switch {
	case err == nil && seq > vm.applied:
		vm.applied = seq
		vm.synced = true
		vm.state.Items = items
		vm.state.ActiveFilter = filter
		vm.state.LastSync = vm.now().UTC()
		applied = true
	case err == nil:
		vm.countStale()
		vm.log.Debug("stale games response discarded", zap.Uint64("seq", seq), zap.Uint64("applied", vm.applied))
	default:
		vm.markCompletedLocked(seq)
	}
	vm.state.IsLoading = vm.inflight > 0
	snapshot := vm.state.clone()
	vm.publishLocked()
	vm.mu.Unlock()

	if err != nil {
		if superseded {
			vm.log.Debug("superseded games request failed", zap.Uint64("seq", seq), zap.Error(err))
			return err
		}
		vm.log.Warn("load games failed", zap.String("filter", string(filter)), zap.Error(err))
		vm.notify(err)
		return err
	}
	if applied {
		vm.persist(ctx, snapshot)
	}
	return nil
}

// markCompletedLocked avança a marca de aplicação para uma intent que
// terminou em falha: o estado fica como estava, mas respostas mais antigas
// passam a ser obsoletas. Chamar com vm.mu travado.
func (vm *ViewModel) markCompletedLocked(seq uint64) {
	if seq > vm.applied {
		vm.applied = seq
	}
}

// persist grava a lista aplicada no cache local; falha só é logada
func (vm *ViewModel) persist(ctx context.Context, s State) {
	if vm.store == nil {
		return
	}
	err := vm.store.StoreMultiple(context.WithoutCancel(ctx), []kvs.Pair{
		{Key: storagekeys.CachedGames, Value: cachedGames{Filter: s.ActiveFilter, Items: s.Items}},
		{Key: storagekeys.LastSync, Value: s.LastSync},
	})
	if err != nil {
		vm.log.Warn("games cache not written", zap.Error(err))
	}
}

func (vm *ViewModel) notify(err error) {
	if vm.notifier == nil {
		return
	}
	title := "Error"
	if errors.Is(err, games.ErrInvalidDraft) {
		title = "Invalid game"
	}
	vm.notifier.Notify(Notice{Title: title, Message: err.Error()})
}

// publishLocked entrega o estado a cada assinante, substituindo o valor
// ainda não lido. Chamar com vm.mu travado.
func (vm *ViewModel) publishLocked() {
	for _, ch := range vm.subs {
		select {
		case <-ch:
		default:
		}
		ch <- vm.state.clone()
	}
}

func (vm *ViewModel) countIntent(intent string) {
	if vm.metrics != nil {
		vm.metrics.Intents.WithLabelValues(intent).Inc()
	}
}

func (vm *ViewModel) countStale() {
	if vm.metrics != nil {
		vm.metrics.StaleDiscarded.Inc()
	}
}
