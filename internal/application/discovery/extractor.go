package discovery

import (
	"github.com/turtacn/CombiRx-Discovery/internal/domain/drug"
	"github.com/turtacn/CombiRx-Discovery/internal/domain/evolution"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/common"
	types "github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

func fitnessValues(o evolution.Objectives) types.FitnessValues {
	return types.FitnessValues{
		SmilesDistance:       o.Smiles,
		MoaDistance:          o.Moa,
		ShortestPathDistance: o.Path,
		Coverage:             o.CoveragePValue,
		NDrugs:               o.NDrugs,
	}
}

// ExtractResult converts a finished engine run into the wire-level result:
// archive members become named drug combinations, the final population keeps
// its raw selection vectors, and the logbook maps row for row.
func ExtractResult(runID common.ID, index *drug.Index, out *evolution.Output) *types.RunResult {
	result := &types.RunResult{
		RunID:      runID,
		DrugNames:  index.Names(),
		Population: make([]types.IndividualResult, 0, len(out.Population)),
		Log:        make([]types.GenerationRecord, 0, len(out.Log)),
		Solutions:  make([]types.Solution, 0, len(out.Archive)),
	}

	for _, ind := range out.Population {
		bits := make([]bool, len(ind.Bits))
		copy(bits, ind.Bits)
		fit, _ := ind.Fitness()
		result.Population = append(result.Population, types.IndividualResult{
			Bits:    bits,
			Fitness: fitnessValues(fit),
		})
	}

	for _, ind := range out.Archive {
		fit, _ := ind.Fitness()
		result.Solutions = append(result.Solutions, types.Solution{
			Drugs:   index.Selected(ind.Bits),
			Fitness: fitnessValues(fit),
		})
	}

	for _, entry := range out.Log {
		result.Log = append(result.Log, types.GenerationRecord{
			Gen:         entry.Gen,
			NEvals:      entry.NEvals,
			AvgSmiles:   entry.AvgSmiles,
			AvgMoa:      entry.AvgMoa,
			AvgPaths:    entry.AvgPath,
			AvgCoverage: entry.AvgCoverage,
			AvgNDrugs:   entry.AvgNDrugs,
		})
	}

	return result
}

//Personal.AI order the ending
