package services

import (
	"encoding/json"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

// AuditEvent records a back-office mutation for the audit trail.
type AuditEvent struct {
	Action    string    `json:"action"` // e.g. "product.create", "user.ban"
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entityId"`
	TraceID   string    `json:"traceId"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditPublisher streams audit events. Publishing is best effort and must
// never block or fail a request.
type AuditPublisher interface {
	Publish(event AuditEvent)
	Close()
}

type kafkaAuditPublisher struct {
	logger   *zap.Logger
	producer *kafka.Producer
	topic    string
}

// NewAuditPublisher creates a Kafka-backed publisher, or a no-op one when
// brokers is empty (local development, tests).
func NewAuditPublisher(logger *zap.Logger, brokers, topic string) (AuditPublisher, error) {
	if brokers == "" {
		logger.Warn("audit trail disabled: no kafka brokers configured")
		return nopAuditPublisher{}, nil
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"acks":               "all",
		"enable.idempotence": "true",
		"retries":            "1",
	})
	if err != nil {
		return nil, err
	}
	logger.Info("audit publisher created", zap.String("brokers", brokers), zap.String("topic", topic))
	go handleDeliveryReports(logger, p)
	return &kafkaAuditPublisher{logger: logger, producer: p, topic: topic}, nil
}

func (k *kafkaAuditPublisher) Publish(event AuditEvent) {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		k.logger.Error("failed to encode audit event", zap.Error(err))
		return
	}

	// Key by entity id so events for one entity stay ordered per partition.
	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.EntityID),
		Value:          msgBytes,
	}, nil)
	if err != nil {
		k.logger.Error("failed to publish audit event", zap.String("action", event.Action), zap.Error(err))
	}
}

func (k *kafkaAuditPublisher) Close() {
	k.producer.Close()
}

func handleDeliveryReports(logger *zap.Logger, p *kafka.Producer) {
	for e := range p.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				logger.Error("failed to deliver audit event", zap.Error(ev.TopicPartition.Error))
			}
		}
	}
}

type nopAuditPublisher struct{}

func (nopAuditPublisher) Publish(AuditEvent) {}
func (nopAuditPublisher) Close()             {}
