package usecase

import (
	"context"
	"encoding/json"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/service/upstream"
	pkgkafka "SignalDesk/pkg/kafka"
)

// KafkaRecordsHandler consumes raw signal records from a Kafka topic and
// feeds them through the pipeline. Deployments that publish to the bus get
// push-driven refreshes between polls.
type KafkaRecordsHandler struct {
	topic    string
	pipeline *SignalPipeline
	metrics  drepo.Metrics
}

func NewKafkaRecordsHandler(topic string, pipeline *SignalPipeline, metrics drepo.Metrics) *KafkaRecordsHandler {
	return &KafkaRecordsHandler{topic: topic, pipeline: pipeline, metrics: metrics}
}

func (h *KafkaRecordsHandler) Topic() string { return h.topic }

// Handle accepts either a bare record or the {status, payload} envelope.
func (h *KafkaRecordsHandler) Handle(ctx context.Context, b []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("consumer_unmarshal")
		}
		return err
	}
	raw, err := upstream.Unwrap(doc)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("consumer_envelope")
		}
		return err
	}
	if snap := h.pipeline.Ingest(ctx, raw); snap.Err != nil {
		// Fatal normalization errors already produced a placeholder snapshot;
		// the message itself was consumed successfully.
		return nil
	}
	if h.metrics != nil {
		h.metrics.RecordRefresh("kafka", rawAsset(raw))
	}
	return nil
}

func rawAsset(raw models.RawSignal) string {
	for _, k := range []string{"asset", "symbol", "pair"} {
		if s, ok := raw[k].(string); ok && s != "" {
			return s
		}
	}
	return "unknown"
}

var _ pkgkafka.MessageHandler = (*KafkaRecordsHandler)(nil)
