package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/surrealdb/surreal-sync/checkpoint"
	"github.com/surrealdb/surreal-sync/drivers"
	"github.com/surrealdb/surreal-sync/drivers/kafka"
	"github.com/surrealdb/surreal-sync/drivers/mongodb"
	"github.com/surrealdb/surreal-sync/drivers/mysql"
	"github.com/surrealdb/surreal-sync/drivers/neo4j"
	"github.com/surrealdb/surreal-sync/drivers/postgres"
	"github.com/surrealdb/surreal-sync/errs"
	"github.com/surrealdb/surreal-sync/types"
)

// kafkaProtoFile, kafkaMessageType and kafkaTopic are Kafka-only flags;
// every other backend is fully described by the universal --source-*
// flags, so they don't warrant their own file.
var (
	kafkaProtoFile   string
	kafkaMessageType string
	kafkaTopic       string
	kafkaGroupID     string
	kafkaIDField     string
	kafkaIDStrategy  string
)

// parseKafkaIDStrategy turns the --kafka-id-strategy flag into the
// adapter's IDStrategy, per §4.2.6's "two independent id strategies
// (exactly one is active)".
func parseKafkaIDStrategy(s string) (kafka.IDStrategy, error) {
	switch s {
	case "", string(kafka.IDFromFieldExtraction):
		return kafka.IDFromFieldExtraction, nil
	case string(kafka.IDFromMessageKey):
		return kafka.IDFromMessageKey, nil
	default:
		return "", errs.New(errs.Configuration, "kafka.id_strategy",
			fmt.Errorf("unknown --kafka-id-strategy %q (want %q or %q)", s, kafka.IDFromFieldExtraction, kafka.IDFromMessageKey))
	}
}

// connectAdapter builds the named source's drivers.Adapter from the
// universal --source-* flags plus any backend-specific flags already
// parsed into package vars. parseCheckpoint is returned alongside so
// --incremental-from/--incremental-to can be decoded into that
// backend's concrete checkpoint type.
func connectAdapter(ctx context.Context, source string) (drivers.Adapter, func(string) (types.Checkpoint, error), error) {
	uri := envOr("source_uri", sourceURI)
	database := envOr("source_database", sourceDatabase)
	username := envOr("source_username", sourceUsername)
	password := envOr("source_password", sourcePassword)
	tables := splitCSV(sourceTables)

	switch source {
	case "mongodb":
		a, err := mongodb.Connect(ctx, mongodb.Options{URI: uri, Database: database, Collections: tables})
		return a, parseCheckpointJSON[mongodb.ResumeCheckpoint], err

	case "mysql":
		a, err := mysql.Connect(ctx, mysql.Options{Addr: uri, User: username, Password: password, Database: database, Tables: tables})
		return a, parseCheckpointJSON[mysql.SequenceCheckpoint], err

	case "postgres", "postgresql":
		a, err := postgres.Connect(ctx, postgres.Options{DSN: uri, Slot: sourceSlot, Tables: tables})
		return a, parseCheckpointJSON[postgres.LSNCheckpoint], err

	case "neo4j":
		tz := envOr("neo4j_timezone", neo4jTimezone)
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, nil, errs.New(errs.Configuration, "neo4j.timezone", err)
		}
		a, err := neo4j.Connect(ctx, neo4j.Options{URI: uri, Username: username, Password: password, Database: database, Timezone: loc})
		return a, parseCheckpointJSON[neo4j.TimestampCheckpoint], err

	case "kafka":
		strategy, err := parseKafkaIDStrategy(envOr("kafka_id_strategy", kafkaIDStrategy))
		if err != nil {
			return nil, nil, err
		}
		a, err := kafka.Connect(ctx, kafka.Options{
			Brokers:     []string{uri},
			Topic:       kafkaTopic,
			GroupID:     kafkaGroupID,
			ProtoFile:   kafkaProtoFile,
			MessageType: kafkaMessageType,
			Strategy:    strategy,
			IDField:     kafkaIDField,
		})
		return a, parseCheckpointJSON[kafka.OffsetsCheckpoint], err

	default:
		return nil, nil, errs.New(errs.Configuration, "source.connect", fmt.Errorf("unknown source %q", source))
	}
}

// parseCheckpointJSON is generic over the concrete checkpoint types so
// each backend's --incremental-from/--incremental-to flag decodes
// straight into the type its adapter expects, matching how it comes
// back out of the checkpoint store's Envelope.Checkpoint payload.
func parseCheckpointJSON[T types.Checkpoint](raw string) (types.Checkpoint, error) {
	var cp T
	if err := json.Unmarshal([]byte(raw), &cp); err != nil {
		return nil, errs.New(errs.Configuration, "checkpoint.parse", err)
	}
	return cp, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveFrom decodes --incremental-from if given, otherwise resumes
// from the last persisted cp_t1 (FullSyncStart) for tag - never cp_t2,
// so the (t1, t2] window a full dump may have captured inconsistently
// gets replayed by the incremental pass.
func resolveFrom(store *checkpoint.Store, tag, flagValue string, parse func(string) (types.Checkpoint, error)) (types.Checkpoint, error) {
	if flagValue != "" {
		return parse(flagValue)
	}
	env, err := store.LoadPhase(tag, checkpoint.FullSyncStart)
	if err != nil {
		return nil, errs.New(errs.Configuration, "checkpoint.load", err)
	}
	if env == nil {
		return nil, errs.New(errs.Configuration, "checkpoint.load",
			fmt.Errorf("no persisted cp_t1 checkpoint for %q and --incremental-from not given", tag))
	}
	return parse(string(env.Checkpoint))
}
