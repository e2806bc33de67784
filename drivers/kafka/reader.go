package kafka

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/surrealdb/surreal-sync/errs"
)

// ReaderConfig configures the managed consumer-group reader this
// adapter consumes from, adapted down from the teacher's
// pkg/kafka.ReaderConfig to this adapter's single-topic shape: one
// Adapter is one coordinator-driven peek/advance stream, never a
// multi-reader fan-out.
type ReaderConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// ReaderManager owns the lifecycle of the kafka-go Reader this
// adapter consumes from, grounded on the teacher's
// pkg/kafka.ReaderManager/CreateReaders split between "configuration"
// and "live client" - minus the teacher's per-partition reader
// fan-out and CustomGroupBalancer, which exist there to let multiple
// concurrent readers split one consumer group's partitions among
// themselves. This system's Incremental loop is a single sequential
// peek-process-advance stream per adapter (§5), so the broker's own
// consumer-group rebalancing already does that job for the one reader
// CreateReaders opens.
type ReaderManager struct {
	config ReaderConfig
	reader *kafkago.Reader
}

// NewReaderManager mirrors the teacher's constructor of the same name.
func NewReaderManager(config ReaderConfig) *ReaderManager {
	return &ReaderManager{config: config}
}

// CreateReaders opens the consumer-group reader for the configured
// topic. Named after the teacher's CreateReaders for the same reason
// it exists there: it's the one call site that turns a ReaderConfig
// into a live broker connection.
func (rm *ReaderManager) CreateReaders(ctx context.Context) error {
	rm.reader = kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  rm.config.Brokers,
		Topic:    rm.config.Topic,
		GroupID:  rm.config.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return nil
}

// Reader returns the managed reader, or nil if CreateReaders hasn't
// run yet.
func (rm *ReaderManager) Reader() *kafkago.Reader {
	return rm.reader
}

func (rm *ReaderManager) Close() error {
	if rm.reader == nil {
		return nil
	}
	if err := rm.reader.Close(); err != nil {
		return errs.New(errs.Connectivity, "kafka.reader.close", err)
	}
	return nil
}
