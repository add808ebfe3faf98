package repositories

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	driver "github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/neo4j"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// NetworkRepository reads and seeds the reference interaction network.
// Gene nodes carry a `symbol` and an optional `rank`; drugs connect to
// their targets through [:TARGETS] and genes to each other through
// [:INTERACTS_WITH].
type NetworkRepository interface {
	LoadEdges(ctx context.Context) ([]discovery.EdgeRecord, error)
	LoadRanks(ctx context.Context) ([]discovery.RankRecord, error)
	LoadTargets(ctx context.Context) ([]discovery.TargetRecord, error)
	ImportEdges(ctx context.Context, edges []discovery.EdgeRecord) error
	ImportRanks(ctx context.Context, ranks []discovery.RankRecord) error
	ImportTargets(ctx context.Context, targets []discovery.TargetRecord) error
}

type neo4jNetworkRepo struct {
	driver driver.DriverInterface
	log    logging.Logger
}

func NewNeo4jNetworkRepo(d driver.DriverInterface, log logging.Logger) NetworkRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &neo4jNetworkRepo{
		driver: d,
		log:    log,
	}
}

func (r *neo4jNetworkRepo) LoadEdges(ctx context.Context) ([]discovery.EdgeRecord, error) {
	query := `
		MATCH (a:Gene)-[:INTERACTS_WITH]->(b:Gene)
		RETURN a.symbol AS gene1, b.symbol AS gene2
	`
	result, err := r.driver.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		return driver.CollectRecords(ctx, res, func(rec *neo4j.Record) (discovery.EdgeRecord, error) {
			gene1, err := recordString(rec, "gene1")
			if err != nil {
				return discovery.EdgeRecord{}, err
			}
			gene2, err := recordString(rec, "gene2")
			if err != nil {
				return discovery.EdgeRecord{}, err
			}
			return discovery.EdgeRecord{Gene1: gene1, Gene2: gene2}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	edges, _ := result.([]discovery.EdgeRecord)
	r.log.Debug("loaded interaction network", logging.Int("edges", len(edges)))
	return edges, nil
}

func (r *neo4jNetworkRepo) LoadRanks(ctx context.Context) ([]discovery.RankRecord, error) {
	query := `
		MATCH (g:Gene)
		WHERE g.rank IS NOT NULL
		RETURN g.symbol AS gene, g.rank AS rank
	`
	result, err := r.driver.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		return driver.CollectRecords(ctx, res, func(rec *neo4j.Record) (discovery.RankRecord, error) {
			gene, err := recordString(rec, "gene")
			if err != nil {
				return discovery.RankRecord{}, err
			}
			rank, err := recordFloat(rec, "rank")
			if err != nil {
				return discovery.RankRecord{}, err
			}
			return discovery.RankRecord{Gene: gene, Rank: rank}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	ranks, _ := result.([]discovery.RankRecord)
	r.log.Debug("loaded node ranks", logging.Int("genes", len(ranks)))
	return ranks, nil
}

func (r *neo4jNetworkRepo) LoadTargets(ctx context.Context) ([]discovery.TargetRecord, error) {
	query := `
		MATCH (d:Drug)-[:TARGETS]->(g:Gene)
		RETURN d.name AS drug, g.symbol AS gene
	`
	result, err := r.driver.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		return driver.CollectRecords(ctx, res, func(rec *neo4j.Record) (discovery.TargetRecord, error) {
			drug, err := recordString(rec, "drug")
			if err != nil {
				return discovery.TargetRecord{}, err
			}
			gene, err := recordString(rec, "gene")
			if err != nil {
				return discovery.TargetRecord{}, err
			}
			return discovery.TargetRecord{Drug: drug, Gene: gene}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	targets, _ := result.([]discovery.TargetRecord)
	r.log.Debug("loaded drug targets", logging.Int("associations", len(targets)))
	return targets, nil
}

func (r *neo4jNetworkRepo) ImportEdges(ctx context.Context, edges []discovery.EdgeRecord) error {
	if len(edges) == 0 {
		return nil
	}
	query := `
		UNWIND $batch AS row
		MERGE (a:Gene {symbol: row.gene1})
		MERGE (b:Gene {symbol: row.gene2})
		MERGE (a)-[:INTERACTS_WITH]->(b)
	`
	batch := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		batch = append(batch, map[string]any{"gene1": e.Gene1, "gene2": e.Gene2})
	}
	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		_, err := tx.Run(ctx, query, map[string]any{"batch": batch})
		return nil, err
	})
	if err == nil {
		r.log.Info("imported interaction network", logging.Int("edges", len(edges)))
	}
	return err
}

func (r *neo4jNetworkRepo) ImportRanks(ctx context.Context, ranks []discovery.RankRecord) error {
	if len(ranks) == 0 {
		return nil
	}
	query := `
		UNWIND $batch AS row
		MERGE (g:Gene {symbol: row.gene})
		SET g.rank = row.rank
	`
	batch := make([]map[string]any, 0, len(ranks))
	for _, rec := range ranks {
		batch = append(batch, map[string]any{"gene": rec.Gene, "rank": rec.Rank})
	}
	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		_, err := tx.Run(ctx, query, map[string]any{"batch": batch})
		return nil, err
	})
	if err == nil {
		r.log.Info("imported node ranks", logging.Int("genes", len(ranks)))
	}
	return err
}

func (r *neo4jNetworkRepo) ImportTargets(ctx context.Context, targets []discovery.TargetRecord) error {
	if len(targets) == 0 {
		return nil
	}
	query := `
		UNWIND $batch AS row
		MERGE (d:Drug {name: row.drug})
		MERGE (g:Gene {symbol: row.gene})
		MERGE (d)-[:TARGETS]->(g)
	`
	batch := make([]map[string]any, 0, len(targets))
	for _, t := range targets {
		batch = append(batch, map[string]any{"drug": t.Drug, "gene": t.Gene})
	}
	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		_, err := tx.Run(ctx, query, map[string]any{"batch": batch})
		return nil, err
	})
	if err == nil {
		r.log.Info("imported drug targets", logging.Int("associations", len(targets)))
	}
	return err
}

func recordString(rec *neo4j.Record, key string) (string, error) {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return "", appErrors.New(appErrors.ErrCodeDatabaseError, "missing column "+key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", appErrors.Newf(appErrors.ErrCodeDatabaseError, "column %s is not a string", key)
	}
	return s, nil
}

func recordFloat(rec *neo4j.Record, key string) (float64, error) {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return 0, appErrors.New(appErrors.ErrCodeDatabaseError, "missing column "+key)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, appErrors.Newf(appErrors.ErrCodeDatabaseError, "column %s is not numeric", key)
	}
}

//Personal.AI order the ending
