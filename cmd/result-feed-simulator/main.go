package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-poc/internal/shared/cache"
	"github.com/radieske/wager-settlement-poc/internal/shared/config"
	skafka "github.com/radieske/wager-settlement-poc/internal/shared/kafka"
	"github.com/radieske/wager-settlement-poc/internal/shared/logger"
	"github.com/radieske/wager-settlement-poc/internal/shared/metrics"
	"github.com/radieske/wager-settlement-poc/pkg/contracts/events"
)

// Partida do catálogo simulado; depois de alguns ciclos de odds ela
// "termina" e o placar final vai para o tópico de resultados.
type match struct {
	eventID    string
	home, away string
	ticksLeft  int
	finished   bool
}

var (
	// Catálogo fixo de partidas simuladas
	catalog = []*match{
		{eventID: "MATCH_001", home: "Flamengo", away: "Palmeiras", ticksLeft: 6},
		{eventID: "MATCH_002", home: "Grêmio", away: "Internacional", ticksLeft: 9},
		{eventID: "MATCH_003", home: "Corinthians", away: "Santos", ticksLeft: 12},
		{eventID: "MATCH_004", home: "São Paulo", away: "Vasco", ticksLeft: 15},
	}

	// Métricas Prometheus do feed simulado
	resultsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_results_published_total",
		Help: "Placares finais publicados",
	})
	oddsRefreshed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_odds_refreshed_total",
		Help: "Chaves de odds atualizadas no cache",
	})
)

// gera número aleatório entre min e max
func rnd(min, max float64) float64 {
	return (rand.Float64() * (max - min)) + min
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(resultsPublished, oddsRefreshed)

	// Redis: mantém as chaves de odds que o bet-service confere no placeBet
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// Kafka: tópico de resultados finais consumido pelo settlement-worker
	writer := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicEventResults)
	defer writer.Close()

	// Servidor de métricas/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	log.Info("result-feed-simulator started", zap.String("publish", cfg.TopicEventResults))

	ctx := context.Background()
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	// A cada ciclo: atualiza odds das partidas em andamento e publica o
	// placar final das que terminaram
	for range ticker.C {
		for _, m := range catalog {
			if m.finished {
				continue
			}

			if m.ticksLeft > 0 {
				refreshOdds(ctx, rdb, m)
				m.ticksLeft--
				continue
			}

			res := events.EventResult{
				EventID:    m.eventID,
				HomeTeam:   m.home,
				AwayTeam:   m.away,
				GoalsHome:  rand.Intn(5),
				GoalsAway:  rand.Intn(5),
				FinishedAt: time.Now(),
				Source:     "result-feed-simulator",
			}
			b, _ := json.Marshal(res)
			if err := skafka.WriteJSON(ctx, writer, m.eventID, b); err != nil {
				log.Warn("publish result", zap.String("eventId", m.eventID), zap.Error(err))
				continue
			}
			m.finished = true
			resultsPublished.Inc()
			log.Info("final score published",
				zap.String("eventId", m.eventID),
				zap.Int("goals_home", res.GoalsHome),
				zap.Int("goals_away", res.GoalsAway),
			)
		}
	}
}

// refreshOdds grava as cotações correntes da partida no cache, no mesmo
// formato de chave que o validador do bet-service espera.
func refreshOdds(ctx context.Context, rdb *redis.Client, m *match) {
	odds := map[string]float64{
		"home": rnd(1.40, 3.50),
		"draw": rnd(2.50, 4.50),
		"away": rnd(2.00, 5.00),
	}
	for outcome, price := range odds {
		key := fmt.Sprintf("odds:%s:1x2:%s", m.eventID, outcome)
		val := fmt.Sprintf("%.2f", price)
		if err := rdb.Set(ctx, key, val, time.Minute).Err(); err != nil {
			continue
		}
		oddsRefreshed.Inc()
	}
}
