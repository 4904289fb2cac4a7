package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/wager-settlement-poc/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do ciclo de vida da aposta.
type KafkaPublisher struct {
	Placed  *kafka.Writer
	Settled *kafka.Writer
}

func NewKafkaPublisher(placed, settled *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Placed: placed, Settled: settled}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.Placed.WriteMessages(ctx, kafka.Message{Key: []byte(e.BetID), Value: b})
}

func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	b, _ := json.Marshal(e)
	return p.Settled.WriteMessages(ctx, kafka.Message{Key: []byte(e.BetID), Value: b})
}
