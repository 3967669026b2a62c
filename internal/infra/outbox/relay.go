// Package outbox публикует события из таблицы outbox в Kafka
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// EventRepository хранилище событий outbox
type EventRepository interface {
	FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []int64, at time.Time) error
}

// TxManager менеджер транзакций
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MessageWriter отправка сообщений в брокер (*kafka.Writer)
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// MetricsRecorder учёт опубликованных событий
type MetricsRecorder interface {
	RecordOutboxPublished(eventType string, count int)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Config параметры relay
type Config struct {
	PollEvery   time.Duration
	BatchSize   int
	TopicPrefix string
}

// Relay периодически забирает неопубликованные события и пишет их в Kafka.
// Выборка, отправка и отметка о публикации идут в одной транзакции:
// при ошибке отправки события останутся неопубликованными (at-least-once)
type Relay struct {
	repo      EventRepository
	txManager TxManager
	writer    MessageWriter
	metrics   MetricsRecorder
	clock     TimeProvider
	logger    Logger
	cfg       Config
}

// NewRelay создает relay
func NewRelay(
	repo EventRepository,
	txManager TxManager,
	writer MessageWriter,
	metrics MetricsRecorder,
	clock TimeProvider,
	logger Logger,
	cfg Config,
) *Relay {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Relay{
		repo:      repo,
		txManager: txManager,
		writer:    writer,
		metrics:   metrics,
		clock:     clock,
		logger:    logger,
		cfg:       cfg,
	}
}

// NewKafkaWriter создает writer без фиксированного топика: топик задаётся в сообщении
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// Run публикует события до отмены контекста
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("Outbox relay started (poll=%s, batch=%d)", r.cfg.PollEvery, r.cfg.BatchSize)

	ticker := time.NewTicker(r.cfg.PollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.PublishBatch(ctx); err != nil {
				r.logger.Error("Outbox relay: publish failed: %v", err)
			}
		}
	}
}

// PublishBatch публикует одну пачку событий и возвращает их количество
func (r *Relay) PublishBatch(ctx context.Context) (int, error) {
	published := make(map[domain.EventType]int)
	total := 0

	err := r.txManager.Do(ctx, func(ctx context.Context) error {
		events, err := r.repo.FetchUnpublished(ctx, r.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		messages := make([]kafka.Message, 0, len(events))
		ids := make([]int64, 0, len(events))
		for _, event := range events {
			messages = append(messages, r.toMessage(event))
			ids = append(ids, event.ID)
			published[event.EventType]++
		}

		if err := r.writer.WriteMessages(ctx, messages...); err != nil {
			return fmt.Errorf("write %d messages: %w", len(messages), err)
		}

		total = len(events)
		return r.repo.MarkPublished(ctx, ids, r.clock.Now())
	})
	if err != nil {
		return 0, err
	}

	for eventType, count := range published {
		r.metrics.RecordOutboxPublished(string(eventType), count)
	}
	return total, nil
}

func (r *Relay) toMessage(event *domain.OutboxEvent) kafka.Message {
	return kafka.Message{
		Topic: r.cfg.TopicPrefix + string(event.EventType),
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
		},
		Time: event.CreatedAt,
	}
}
