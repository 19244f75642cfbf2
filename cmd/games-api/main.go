package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	gamescache "github.com/radieske/sports-games-client/internal/games-api/cache"
	httpapi "github.com/radieske/sports-games-client/internal/games-api/http"
	"github.com/radieske/sports-games-client/internal/games-api/producer"
	"github.com/radieske/sports-games-client/internal/games-api/repo"
	"github.com/radieske/sports-games-client/internal/games-api/ws"
	"github.com/radieske/sports-games-client/internal/shared/cache"
	"github.com/radieske/sports-games-client/internal/shared/config"
	"github.com/radieske/sports-games-client/internal/shared/db"
	"github.com/radieske/sports-games-client/internal/shared/kafka"
	"github.com/radieske/sports-games-client/internal/shared/logger"
	"github.com/radieske/sports-games-client/internal/shared/metrics"
	"github.com/radieske/sports-games-client/pkg/contracts/games"
)

// seed usado pelo repositório em memória
var seed = []games.GameDraft{
	{League: "NBA", HomeTeam: "Lakers", AwayTeam: "Celtics", StartTime: "2025-11-10T20:00:00Z", Status: games.StatusScheduled, OddsHome: 1.9, OddsAway: 1.95},
	{League: "NFL", HomeTeam: "Chiefs", AwayTeam: "Bills", StartTime: "2025-11-09T18:00:00Z", Status: games.StatusLive, OddsHome: 1.7, OddsAway: 2.2},
	{League: "MLB", HomeTeam: "Yankees", AwayTeam: "Dodgers", StartTime: "2025-11-01T23:00:00Z", Status: games.StatusCompleted, OddsHome: 2.05, OddsAway: 1.8},
}

func main() {
	// carrega config
	cfg := config.LoadFor("games-api")

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// repositório de jogos
	var gamesRepo repo.Repo
	switch cfg.GamesRepo {
	case "postgres":
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		pgRepo, err := repo.NewPostgresRepo(ctx, pg)
		if err != nil {
			log.Fatal("failed to prepare games schema", zap.Error(err))
		}
		gamesRepo = pgRepo
		log.Info("postgres connected")
	default:
		gamesRepo = repo.NewMemoryRepo(seed...)
	}

	// hub WebSocket; com Redis os anúncios passam pelo Pub/Sub para
	// alcançar clientes de todas as instâncias
	hub := ws.NewHub(nil, log)
	announcers := []httpapi.Announcer{}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn("redis unavailable, broadcasting locally", zap.Error(err))
			rdb = nil
		}
	}
	if rdb != nil {
		defer rdb.Close()
		gamesRepo = gamescache.New(gamesRepo, rdb, 30*time.Second, log)
		ws.StartRedisSubscriber(ctx, rdb, hub)
		announcers = append(announcers, &ws.RedisRelay{Client: rdb})
		log.Info("redis connected")
	} else {
		announcers = append(announcers, hub)
	}

	// publica game_created no Kafka
	if cfg.KafkaEnabled {
		writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicGamesCreated)
		defer writer.Close()
		announcers = append(announcers, producer.NewKafkaPublisher(writer, cfg.TopicGamesCreated))
		log.Info("kafka writer ready", zap.String("topic", cfg.TopicGamesCreated))
	}

	wsClients := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "games_api_ws_clients",
		Help: "conexões WebSocket abertas",
	}, func() float64 { return float64(hub.Clients()) })
	prometheus.MustRegister(wsClients)

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := gamesRepo.Ping(ctx); err != nil {
			return fmt.Errorf("games repo: %w", err)
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}, log)

	api := &httpapi.API{Repo: gamesRepo, Announcers: announcers, WS: hub.HandleWS, Log: log}
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
	}()

	log.Info("games-api listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server failed", zap.Error(err))
	}
	log.Info("games-api stopped")
}
