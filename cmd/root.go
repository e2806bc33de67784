// Package cmd wires the CLI grammar from spec §6: `from <source>
// full|incremental`, the legacy `sync`/`csv`/`jsonl` aliases, and
// `teardown`, following the teacher's protocol/root.go style of
// package-level persistent flags registered in init() plus
// viper.BindEnv for the documented environment variables.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/surrealdb/surreal-sync/drivers/kafka"
	"github.com/surrealdb/surreal-sync/utils/logger"
	"github.com/surrealdb/surreal-sync/utils/safego"
)

var (
	toNamespace      string
	toDatabase       string
	surrealEndpoint  string
	surrealUsername  string
	surrealPassword  string
	batchSize        int
	dryRun           bool
	emitCheckpoints  bool
	checkpointDir    string
	incrementalFrom  string
	incrementalTo    string
	timeoutFlag      string

	sourceURI      string
	sourceDatabase string
	sourceUsername string
	sourcePassword string
	sourceTables   string // comma-separated; empty means "discover at connect time"
	sourceSlot     string // PostgreSQL replication slot name
	neo4jTimezone  string

	commands = []*cobra.Command{}
)

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:           "surreal-sync",
	Short:         "Sync a source database into SurrealDB",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return cmd.Help()
	},
}

func init() {
	logger.Init()

	commands = append(commands, fromCmd, syncCmd, csvCmd, jsonlCmd, teardownCmd)
	RootCmd.AddCommand(commands...)

	RootCmd.PersistentFlags().StringVar(&toNamespace, "to-namespace", "", "(Required) Target SurrealDB namespace")
	RootCmd.PersistentFlags().StringVar(&toDatabase, "to-database", "", "(Required) Target SurrealDB database")
	RootCmd.PersistentFlags().StringVar(&surrealEndpoint, "surreal-endpoint", "http://localhost:8000", "SurrealDB endpoint (http://, ws://, wss://)")
	RootCmd.PersistentFlags().StringVar(&surrealUsername, "surreal-username", "", "SurrealDB username")
	RootCmd.PersistentFlags().StringVar(&surrealPassword, "surreal-password", "", "SurrealDB password")
	RootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", 500, "Number of changes requested per source peek/batch")
	RootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Discard batches instead of writing to SurrealDB")
	RootCmd.PersistentFlags().BoolVar(&emitCheckpoints, "emit-checkpoints", false, "Persist checkpoints to --checkpoint-dir as the run proceeds")
	RootCmd.PersistentFlags().StringVar(&checkpointDir, "checkpoint-dir", ".surreal-sync-checkpoints", "Directory checkpoints are read from and written to")
	RootCmd.PersistentFlags().StringVar(&incrementalFrom, "incremental-from", "", "Checkpoint to resume incremental sync from (defaults to the last persisted FullSyncStart checkpoint, cp_t1)")
	RootCmd.PersistentFlags().StringVar(&incrementalTo, "incremental-to", "", "Checkpoint to stop incremental sync at, inclusive")
	RootCmd.PersistentFlags().StringVar(&timeoutFlag, "timeout", "", "Wall-clock deadline for incremental sync (e.g. 30s, 5m, 1h)")

	RootCmd.PersistentFlags().StringVar(&sourceURI, "source-uri", "", "Source connection URI/DSN/address")
	RootCmd.PersistentFlags().StringVar(&sourceDatabase, "source-database", "", "Source database/schema name")
	RootCmd.PersistentFlags().StringVar(&sourceUsername, "source-username", "", "Source username")
	RootCmd.PersistentFlags().StringVar(&sourcePassword, "source-password", "", "Source password")
	RootCmd.PersistentFlags().StringVar(&sourceTables, "source-tables", "", "Comma-separated tables/collections to capture (default: discover all)")
	RootCmd.PersistentFlags().StringVar(&sourceSlot, "source-slot", "surreal_sync", "PostgreSQL replication slot name")
	RootCmd.PersistentFlags().StringVar(&neo4jTimezone, "neo4j-timezone", "UTC", "IANA timezone Neo4j checkpoint timestamps (cp_t1/cp_t2) are taken in")

	RootCmd.PersistentFlags().StringVar(&kafkaTopic, "kafka-topic", "", "Kafka topic to consume")
	RootCmd.PersistentFlags().StringVar(&kafkaGroupID, "kafka-group-id", "surreal-sync", "Kafka consumer group id")
	RootCmd.PersistentFlags().StringVar(&kafkaProtoFile, "kafka-proto-file", "", "Path to the .proto file describing message payloads")
	RootCmd.PersistentFlags().StringVar(&kafkaMessageType, "kafka-message-type", "", "Protobuf message type to decode each payload as")
	RootCmd.PersistentFlags().StringVar(&kafkaIDField, "kafka-id-field", "id", "Decoded message field used as the record id")
	RootCmd.PersistentFlags().StringVar(&kafkaIDStrategy, "kafka-id-strategy", string(kafka.IDFromFieldExtraction), "Record id strategy: field_extraction or message_key")

	viper.SetEnvPrefix("")
	_ = viper.BindEnv("source_uri", "SOURCE_URI")
	_ = viper.BindEnv("source_database", "SOURCE_DATABASE")
	_ = viper.BindEnv("source_username", "SOURCE_USERNAME")
	_ = viper.BindEnv("source_password", "SOURCE_PASSWORD")
	_ = viper.BindEnv("neo4j_timezone", "NEO4J_TIMEZONE")
	_ = viper.BindEnv("kafka_id_strategy", "KAFKA_ID_STRATEGY")
	_ = viper.BindEnv("surreal_endpoint", "SURREAL_ENDPOINT")
	_ = viper.BindEnv("surreal_username", "SURREAL_USERNAME")
	_ = viper.BindEnv("surreal_password", "SURREAL_PASSWORD")

	_ = viper.BindPFlag("source_uri", RootCmd.PersistentFlags().Lookup("source-uri"))
	_ = viper.BindPFlag("source_database", RootCmd.PersistentFlags().Lookup("source-database"))
	_ = viper.BindPFlag("source_username", RootCmd.PersistentFlags().Lookup("source-username"))
	_ = viper.BindPFlag("source_password", RootCmd.PersistentFlags().Lookup("source-password"))
	_ = viper.BindPFlag("neo4j_timezone", RootCmd.PersistentFlags().Lookup("neo4j-timezone"))
	_ = viper.BindPFlag("surreal_endpoint", RootCmd.PersistentFlags().Lookup("surreal-endpoint"))
	_ = viper.BindPFlag("surreal_username", RootCmd.PersistentFlags().Lookup("surreal-username"))
	_ = viper.BindPFlag("surreal_password", RootCmd.PersistentFlags().Lookup("surreal-password"))
}

// Execute runs the root command, exiting the process with a non-zero
// status on any Configuration/CaptureSetup/Conversion/TargetWrite
// failure per §6's exit-code contract. Cancellation is graceful and
// exits 0 (handled inside each subcommand's RunE).
func Execute() {
	defer safego.Recovery(true)

	if err := RootCmd.Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func envOr(key, flagValue string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return flagValue
}
