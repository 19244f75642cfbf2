package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sports-games-client/internal/games-client/remote"
	"github.com/radieske/sports-games-client/internal/games-client/session"
	"github.com/radieske/sports-games-client/internal/games-client/storage"
	"github.com/radieske/sports-games-client/internal/games-client/viewmodel"
	"github.com/radieske/sports-games-client/internal/kvs"
	"github.com/radieske/sports-games-client/internal/shared/config"
	"github.com/radieske/sports-games-client/internal/shared/logger"
)

const usage = `usage: games-client <command> [args]

commands:
  list [status]        lista jogos (scheduled, live, completed; vazio = todos)
  refresh              repete a listagem com o último filtro
  create [flags]       cria um jogo e recarrega a lista
  watch [status]       lista e acompanha o feed ao vivo até Ctrl+C
  greet [name]         testa a conexão com o backend
  whoami               mostra a sessão gravada
  logout               remove a sessão gravada
  prefs [sub]          preferências: show | theme <t> | favorites <a,b> | onboarded
  reset                apaga todo o armazenamento local
`

// app reúne as dependências montadas para um comando
type app struct {
	cfg     config.Config
	log     *zap.Logger
	store   *kvs.Store
	client  *remote.Client
	vm      *viewmodel.ViewModel
	session *session.Manager
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, cfg, log)
	if err != nil {
		log.Fatal("setup failed", zap.Error(err))
	}
	defer a.store.Close()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		// falhas de rede já foram avisadas pelo Notifier
		os.Exit(1)
	}
}

func setup(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open kvs: %w", err)
	}

	client := remote.New(cfg.GamesAPIBaseURL, cfg.HTTPTimeout, log)
	client.OnResult = remote.NewMetrics(prometheus.DefaultRegisterer).Observe

	vm := viewmodel.New(client, viewmodel.NotifierFunc(printNotice),
		viewmodel.WithStore(store),
		viewmodel.WithLogger(log),
		viewmodel.WithMetrics(viewmodel.NewMetrics(prometheus.DefaultRegisterer)),
	)

	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		client:  client,
		vm:      vm,
		session: session.NewManager(store, nil, nil, log),
	}, nil
}

func printNotice(n viewmodel.Notice) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", n.Title, n.Message)
}
