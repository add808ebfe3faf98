package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultDBName, cfg.Database.DBName)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultMinIOBucket, cfg.MinIO.Bucket)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)

	// Reference-protocol engine parameters.
	assert.Equal(t, 100, cfg.Engine.PopulationSize)
	assert.Equal(t, 20, cfg.Engine.NOffsprings)
	assert.Equal(t, 0.3, cfg.Engine.AttributeInitProb)
	assert.Equal(t, 0.1, cfg.Engine.AttributeMutationProb)
	assert.Equal(t, 0.7, cfg.Engine.CrossoverProb)
	assert.Equal(t, 0.3, cfg.Engine.MutationProb)
	assert.Equal(t, 2500, cfg.Engine.NGenerations)
	assert.Equal(t, 16, cfg.Engine.EvalWorkers)
	assert.Equal(t, 100, cfg.Engine.Permutations)
	assert.Equal(t, 20, cfg.Engine.DegreeBins)
	assert.Equal(t, 1, cfg.Engine.NeighborhoodOrder)
}

func TestApplyDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Engine.PopulationSize = 42
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 42, cfg.Engine.PopulationSize)
}

func TestApplyDefaults_NilSafe(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { ApplyDefaults(nil) })
	assert.NotPanics(t, func() { ApplyEngineDefaults(nil) })
}

//Personal.AI order the ending
