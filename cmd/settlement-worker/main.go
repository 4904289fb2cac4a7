package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	kpub "github.com/radieske/wager-settlement-poc/internal/bet-service/producer"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/repo"
	"github.com/radieske/wager-settlement-poc/internal/bet-service/settlement"
	"github.com/radieske/wager-settlement-poc/internal/ledger"
	"github.com/radieske/wager-settlement-poc/internal/shared/config"
	"github.com/radieske/wager-settlement-poc/internal/shared/db"
	skafka "github.com/radieske/wager-settlement-poc/internal/shared/kafka"
	"github.com/radieske/wager-settlement-poc/internal/shared/logger"
	"github.com/radieske/wager-settlement-poc/internal/shared/metrics"
	ev "github.com/radieske/wager-settlement-poc/pkg/contracts/events"
)

// Métricas do worker de liquidação
var (
	resultsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_results_processed_total",
		Help: "Resultados finais processados",
	})
	resultsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_results_failed_total",
		Help: "Resultados enviados para a DLQ após esgotar retries",
	})
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(resultsProcessed, resultsFailed)

	// Conexão com banco de dados Postgres para liquidação das apostas
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: consome o feed externo de resultados finais
	reader := skafka.NewReader(cfg.KafkaBrokers, cfg.TopicEventResults, "settlement-worker")
	defer reader.Close()

	// Kafka producer: publica eventos bet_settled e, se preciso, DLQ
	settledWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()

	var dlqWriter *skafka.Writer
	if cfg.TopicEventResultsDLQ != "" {
		dlqWriter = skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicEventResultsDLQ)
		defer dlqWriter.Close()
	}

	led := ledger.NewPostgres(pg, cfg.Currency)
	repository := repo.NewPostgres(pg, led)
	// o worker não publica bet_placed; o publisher só precisa do writer de settled
	publ := kpub.NewKafkaPublisher(nil, settledWriter)
	proc := settlement.NewProcessor(log, repository, publ)

	// Servidor de métricas Prometheus e healthcheck
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicEventResults),
		zap.String("publish", cfg.TopicBetSettled),
	)

	ctx := context.Background()

	// Loop principal: consome resultados finais e liquida as apostas afetadas
	for {
		_, raw, err := skafka.ReadNext(ctx, reader)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		var res ev.EventResult
		if jerr := json.Unmarshal(raw, &res); jerr != nil {
			log.Error("unmarshal event_result", zap.Error(jerr))
			continue
		}

		if err := processOne(ctx, log, proc, dlqWriter, &res, raw); err != nil {
			log.Error("process result", zap.String("eventId", res.EventID), zap.Error(err))
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne liquida todas as apostas pendentes de um evento:
// 1. Aplica o placar final às pernas do evento
// 2. Reavalia e executa as transições terminais (crédito incluso)
// 3. Após esgotar os retries, envia o resultado para a DLQ
// A liquidação é idempotente; reprocessar o mesmo resultado é seguro.
func processOne(
	ctx context.Context,
	log *zap.Logger,
	proc *settlement.Processor,
	dlqWriter *skafka.Writer,
	res *ev.EventResult,
	raw []byte,
) error {
	err := proc.ProcessResult(ctx, *res)
	if err != nil {
		// Retry simples: tenta até 3 vezes antes de enviar para DLQ
		const retries = 3
		for i := 0; i < retries; i++ {
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			if err = proc.ProcessResult(ctx, *res); err == nil {
				break
			}
		}
		if err != nil {
			if dlqWriter != nil {
				_ = skafka.WriteJSON(ctx, dlqWriter, res.EventID, raw)
			}
			resultsFailed.Inc()
			return err
		}
	}

	resultsProcessed.Inc()
	log.Info("result processed",
		zap.String("eventId", res.EventID),
		zap.Int("goals_home", res.GoalsHome),
		zap.Int("goals_away", res.GoalsAway),
	)
	return nil
}
