package repository

import (
	"context"
	"time"

	"Monexa/internal/domain/models"
	"Monexa/internal/domain/repository"
	pkgkafka "Monexa/pkg/kafka"
)

// KafkaSnapshotPublisher implements SnapshotPublisher for Kafka.
type KafkaSnapshotPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSnapshotPublisher creates Kafka publisher.
func NewKafkaSnapshotPublisher(producer *pkgkafka.Producer, topic string) repository.SnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic}
}

// snapshotEvent is the wire payload, keyed by symbol.
type snapshotEvent struct {
	Symbol            string    `json:"symbol"`
	Name              string    `json:"name"`
	Currency          string    `json:"currency"`
	CurrentPrice      float64   `json:"current_price"`
	PriceChangePct    float64   `json:"price_change_pct"`
	High52W           float64   `json:"high_52w"`
	Low52W            float64   `json:"low_52w"`
	AvgVolume         float64   `json:"avg_volume"`
	ExpectedReturnPct float64   `json:"expected_return_pct"`
	Sector            string    `json:"sector,omitempty"`
	Industry          string    `json:"industry,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toEvent(m models.TickerMetrics) snapshotEvent {
	return snapshotEvent{
		Symbol:            m.Symbol,
		Name:              m.Name,
		Currency:          m.Currency,
		CurrentPrice:      m.CurrentPrice,
		PriceChangePct:    m.PriceChangePct,
		High52W:           m.High52W,
		Low52W:            m.Low52W,
		AvgVolume:         m.AvgVolume,
		ExpectedReturnPct: m.ExpectedReturnPct,
		Sector:            m.Sector,
		Industry:          m.Industry,
		UpdatedAt:         m.UpdatedAt,
	}
}

func (p *KafkaSnapshotPublisher) Publish(ctx context.Context, m models.TickerMetrics) error {
	return p.producer.Publish(ctx, p.topic, []byte(m.Symbol), toEvent(m))
}

func (p *KafkaSnapshotPublisher) PublishBatch(ctx context.Context, ms []models.TickerMetrics) error {
	if len(ms) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(ms))
	for i, m := range ms {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(m.Symbol),
			Value: toEvent(m),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSnapshotPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopSnapshotPublisher drops every snapshot. Used when no brokers are configured.
type NopSnapshotPublisher struct{}

func (NopSnapshotPublisher) Publish(context.Context, models.TickerMetrics) error        { return nil }
func (NopSnapshotPublisher) PublishBatch(context.Context, []models.TickerMetrics) error { return nil }
func (NopSnapshotPublisher) Close() error                                               { return nil }
