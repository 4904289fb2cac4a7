package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	bhttp "github.com/radieske/wager-settlement-poc/internal/bet-service/http"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/odds"
	kpub "github.com/radieske/wager-settlement-poc/internal/bet-service/producer"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/repo"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/selection"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/settlement"
	"github.com/radieske/wager-settlement-poc/internal/ledger"
	"github.com/radieske/wager-settlement-poc/internal/shared/cache"
	"github.com/radieske/wager-settlement-poc/internal/shared/config"
	"github.com/radieske/wager-settlement-poc/internal/shared/db"
	skafka "github.com/radieske/wager-settlement-poc/internal/shared/kafka"
	"github.com/radieske/wager-settlement-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de cotações do provedor)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// Kafka writers
	placedWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer placedWriter.Close()
	settledWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()

	// deps
	led := ledger.NewPostgres(pg, cfg.Currency)
	repository := repo.NewPostgres(pg, led)
	norm := selection.NewNormalizer(cfg.MaxSelections)
	ov := odds.NewValidator(rdb, 0.05)
	publ := kpub.NewKafkaPublisher(placedWriter, settledWriter)
	proc := settlement.NewProcessor(log, repository, publ)

	// HTTP público
	api := bhttp.NewServer(log, repository, norm, proc, ov, publ)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pg.PingContext(r.Context()); err != nil {
			http.Error(w, "pg", http.StatusServiceUnavailable)
			return
		}
		if err := rdb.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "redis", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, metricsMux)
	}()

	log.Info("bet-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
