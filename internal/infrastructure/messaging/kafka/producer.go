package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/application/discovery"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/config"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/mapping"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// Producer writes discovery events to Kafka.  It satisfies both the mapping
// context's Publisher port and the importer's ImportPublisher port.
type Producer struct {
	writer *kafkago.Writer
	prefix string
	logger logging.Logger
}

var (
	_ mapping.Publisher         = (*Producer)(nil)
	_ discovery.ImportPublisher = (*Producer)(nil)
)

// NewProducer creates a Producer.  Returns nil (and no error) when no
// brokers are configured so callers can wire the absence of eventing as a
// nil port.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 50 * time.Millisecond
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
		RequiredAcks: kafkago.RequireOne,
	}
	return &Producer{writer: writer, prefix: cfg.TopicPrefix, logger: logger}
}

// Close flushes and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

func (p *Producer) topic(suffix string) string {
	if p.prefix == "" {
		return suffix
	}
	return p.prefix + "." + suffix
}

func (p *Producer) publish(ctx context.Context, topicSuffix, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeSerialization, "failed to encode event")
	}
	msg := kafkago.Message{
		Topic: p.topic(topicSuffix),
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeExternal, "failed to write event").
			WithDetail(msg.Topic)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Event payloads
// ─────────────────────────────────────────────────────────────────────────────

type requestImportedEvent struct {
	CaseID   common.CaseID `json:"case_id"`
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	At       time.Time     `json:"at"`
}

type mappingEvent struct {
	MappingID  common.ID            `json:"mapping_id"`
	DocumentID common.ID            `json:"document_id"`
	RequestID  common.ID            `json:"request_id"`
	Source     dtypes.MappingSource `json:"source"`
	Status     dtypes.MappingStatus `json:"status"`
	Confidence int                  `json:"confidence"`
	At         time.Time            `json:"at"`
}

type coverageEvent struct {
	RequestID  common.ID            `json:"request_id"`
	Percentage int                  `json:"percentage"`
	Status     dtypes.RequestStatus `json:"status"`
	At         time.Time            `json:"at"`
}

// RequestsImported implements discovery.ImportPublisher.
func (p *Producer) RequestsImported(ctx context.Context, caseID common.CaseID, imported, failed int) error {
	return p.publish(ctx, TopicRequestImported, string(caseID), requestImportedEvent{
		CaseID:   caseID,
		Imported: imported,
		Failed:   failed,
		At:       time.Now().UTC(),
	})
}

// MappingCreated implements mapping.Publisher.
func (p *Producer) MappingCreated(ctx context.Context, m *mapping.Mapping) error {
	return p.publish(ctx, TopicMappingCreated, string(m.RequestID), mappingEventFrom(m))
}

// MappingReviewed implements mapping.Publisher.
func (p *Producer) MappingReviewed(ctx context.Context, m *mapping.Mapping) error {
	return p.publish(ctx, TopicMappingReviewed, string(m.RequestID), mappingEventFrom(m))
}

// CoverageRecomputed implements mapping.Publisher.
func (p *Producer) CoverageRecomputed(ctx context.Context, requestID common.ID, percentage int, status dtypes.RequestStatus) error {
	return p.publish(ctx, TopicCoverageRecomputed, string(requestID), coverageEvent{
		RequestID:  requestID,
		Percentage: percentage,
		Status:     status,
		At:         time.Now().UTC(),
	})
}

func mappingEventFrom(m *mapping.Mapping) mappingEvent {
	return mappingEvent{
		MappingID:  m.ID,
		DocumentID: m.DocumentID,
		RequestID:  m.RequestID,
		Source:     m.Source,
		Status:     m.Status,
		Confidence: m.Confidence,
		At:         time.Now().UTC(),
	}
}
