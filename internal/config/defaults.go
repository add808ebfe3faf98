// Package config provides configuration loading, defaults, and validation for
// the CombiRx-Discovery platform.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultGRPCPort   = 9090
	DefaultServerMode = "debug"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "combirx"
	DefaultDBMaxConns = 25

	DefaultNeo4jURI = "neo4j://localhost:7687"

	DefaultRedisAddr = "localhost:6379"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "combirx-workers"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "combirx-artifacts"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerConcurrency = 2

	// Reference-protocol engine defaults.
	DefaultPopulationSize        = 100
	DefaultNOffsprings           = 20
	DefaultAttributeInitProb     = 0.3
	DefaultAttributeMutationProb = 0.1
	DefaultCrossoverProb         = 0.7
	DefaultMutationProb          = 0.3
	DefaultNGenerations          = 2500
	DefaultEvalWorkers           = 16
	DefaultPermutations          = 100
	DefaultDegreeBins            = 20
	DefaultNeighborhoodOrder     = 1
	DefaultCoverageCacheSize     = 4096
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.GRPCPort == 0 {
		cfg.Server.GRPCPort = DefaultGRPCPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	// ── Neo4j ─────────────────────────────────────────────────────────────────
	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = DefaultNeo4jURI
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 24 * time.Hour
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "combirx"
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = 1 * time.Hour
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.HeartbeatInterval == 0 {
		cfg.Worker.HeartbeatInterval = 30 * time.Second
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	ApplyEngineDefaults(&cfg.Engine)
}

// ApplyEngineDefaults fills zero-value engine parameters with the
// reference-protocol defaults.  It is also used by the application layer to
// complete per-run parameter overrides.
func ApplyEngineDefaults(e *EngineConfig) {
	if e == nil {
		return
	}
	if e.PopulationSize == 0 {
		e.PopulationSize = DefaultPopulationSize
	}
	if e.NOffsprings == 0 {
		e.NOffsprings = DefaultNOffsprings
	}
	if e.AttributeInitProb == 0 {
		e.AttributeInitProb = DefaultAttributeInitProb
	}
	if e.AttributeMutationProb == 0 {
		e.AttributeMutationProb = DefaultAttributeMutationProb
	}
	if e.CrossoverProb == 0 {
		e.CrossoverProb = DefaultCrossoverProb
	}
	if e.MutationProb == 0 {
		e.MutationProb = DefaultMutationProb
	}
	if e.NGenerations == 0 {
		e.NGenerations = DefaultNGenerations
	}
	if e.EvalWorkers == 0 {
		e.EvalWorkers = DefaultEvalWorkers
	}
	if e.Permutations == 0 {
		e.Permutations = DefaultPermutations
	}
	if e.DegreeBins == 0 {
		e.DegreeBins = DefaultDegreeBins
	}
	if e.NeighborhoodOrder == 0 {
		e.NeighborhoodOrder = DefaultNeighborhoodOrder
	}
	if e.CoverageCacheSize == 0 {
		e.CoverageCacheSize = DefaultCoverageCacheSize
	}
}

//Personal.AI order the ending
