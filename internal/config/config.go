// Package config defines all configuration structures for the
// CombiRx-Discovery platform.  No I/O or parsing logic lives here — only
// plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the run store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// Neo4jConfig holds connection parameters for the knowledge graph that
// stores the interactome, node ranks, and drug-target associations.
type Neo4jConfig struct {
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
	Database              string        `mapstructure:"database"`
}

// RedisConfig holds Redis connection parameters for the run status cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Apache Kafka producer/consumer parameters for the
// asynchronous run queue.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	AutoOffsetReset string        `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	ProducerRetries int           `mapstructure:"producer_retries"`
	BatchSize       int           `mapstructure:"batch_size"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters for
// result artifacts.
type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// WorkerConfig holds background-worker execution parameters.
type WorkerConfig struct {
	Concurrency       int           `mapstructure:"concurrency"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// EngineConfig holds the evolutionary-search parameters.  The numeric
// defaults mirror the reference protocol; per-run overrides arrive in the
// RunRequest and replace only the fields the caller sets.
type EngineConfig struct {
	PopulationSize        int     `mapstructure:"population_size"`
	NOffsprings           int     `mapstructure:"n_offsprings"`
	AttributeInitProb     float64 `mapstructure:"attribute_init_prob"`
	AttributeMutationProb float64 `mapstructure:"attribute_mutation_prob"`
	CrossoverProb         float64 `mapstructure:"crossover_prob"`
	MutationProb          float64 `mapstructure:"mutation_prob"`
	NGenerations          int     `mapstructure:"n_generations"`

	// EvalWorkers is the fixed size of the parallel fitness-evaluation pool.
	EvalWorkers int `mapstructure:"eval_workers"`

	// Permutations is the number of degree-matched random target sets drawn
	// by the coverage significance test.
	Permutations int `mapstructure:"permutations"`

	// DegreeBins is the number of equal-frequency degree bins used by the
	// permutation sampler.
	DegreeBins int `mapstructure:"degree_bins"`

	// NeighborhoodOrder is the closed-neighborhood order of the coverage
	// score (1 = direct neighbors).
	NeighborhoodOrder int `mapstructure:"neighborhood_order"`

	// CoverageCacheSize bounds the evaluator's memo of coverage p-values
	// keyed by target set.  Zero disables memoization.
	CoverageCacheSize int `mapstructure:"coverage_cache_size"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform.
// Every infrastructure component and application service reads its settings
// from the relevant sub-struct.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Neo4j    Neo4jConfig    `mapstructure:"neo4j"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Log      LogConfig      `mapstructure:"log"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return c.Engine.Validate()
}

// Validate checks the engine parameters.  Probabilities must be valid and
// the crossover/mutation split must leave room for reproduction draws
// (cxpb + mutpb ≤ 1, the varOr invariant).
func (e *EngineConfig) Validate() error {
	if e.PopulationSize < 1 {
		return fmt.Errorf("config: engine.population_size must be ≥ 1, got %d", e.PopulationSize)
	}
	if e.NOffsprings < 1 {
		return fmt.Errorf("config: engine.n_offsprings must be ≥ 1, got %d", e.NOffsprings)
	}
	if e.NGenerations < 0 {
		return fmt.Errorf("config: engine.n_generations must be ≥ 0, got %d", e.NGenerations)
	}
	for _, p := range []struct {
		name string
		val  float64
	}{
		{"attribute_init_prob", e.AttributeInitProb},
		{"attribute_mutation_prob", e.AttributeMutationProb},
		{"crossover_prob", e.CrossoverProb},
		{"mutation_prob", e.MutationProb},
	} {
		if p.val < 0 || p.val > 1 {
			return fmt.Errorf("config: engine.%s %v is out of range [0, 1]", p.name, p.val)
		}
	}
	if e.CrossoverProb+e.MutationProb > 1 {
		return fmt.Errorf("config: engine.crossover_prob + engine.mutation_prob must be ≤ 1, got %v",
			e.CrossoverProb+e.MutationProb)
	}
	if e.EvalWorkers < 1 {
		return fmt.Errorf("config: engine.eval_workers must be ≥ 1, got %d", e.EvalWorkers)
	}
	if e.Permutations < 2 {
		return fmt.Errorf("config: engine.permutations must be ≥ 2, got %d", e.Permutations)
	}
	if e.DegreeBins < 1 {
		return fmt.Errorf("config: engine.degree_bins must be ≥ 1, got %d", e.DegreeBins)
	}
	if e.NeighborhoodOrder < 0 {
		return fmt.Errorf("config: engine.neighborhood_order must be ≥ 0, got %d", e.NeighborhoodOrder)
	}
	return nil
}

//Personal.AI order the ending
