package output

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/chrisdamba/expcheck/internal/models"
	"go.uber.org/zap"
)

// Publisher announces the result of a run to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, run models.ValidationRun) error
	Close() error
}

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewKafkaPublisher(cfg *models.Config, logger *zap.Logger) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // Must be true for SyncProducer
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	saramaConfig.Net.DialTimeout = timeout
	saramaConfig.Net.ReadTimeout = timeout
	saramaConfig.Net.WriteTimeout = timeout

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	logger.Info("kafka producer created", zap.Strings("brokers", cfg.KafkaBrokerList))
	return NewKafkaPublisherWithProducer(producer, cfg.KafkaTopic, logger), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish sends run as a JSON message keyed by the run id.
func (k *KafkaPublisher) Publish(ctx context.Context, run models.ValidationRun) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := json.Marshal(run)
	if err != nil {
		return err
	}

	partition, offset, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(run.ID),
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", k.topic, err)
	}
	k.logger.Debug("validation event published",
		zap.String("topic", k.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

func (k *KafkaPublisher) Close() error {
	if k.producer == nil {
		return nil
	}
	err := k.producer.Close()
	k.producer = nil
	return err
}
