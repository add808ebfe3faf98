package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/CombiRx-Discovery/internal/application/discovery"
	"github.com/turtacn/CombiRx-Discovery/internal/config"
	types "github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// RunFlags holds the run command flags: the six dataset files, optional
// parameter overrides, and the output destination.
type RunFlags struct {
	SmilesFile  string
	MoaFile     string
	GraphFile   string
	NetworkFile string
	RankFile    string
	TargetsFile string

	ParamsFile string

	PopulationSize int
	PopulationSet  bool
	NGenerations   int
	GenerationsSet bool
	Seed           int64
	SeedSet        bool

	OutputFile string
}

// NewRunCommand creates the run subcommand, which executes a discovery
// search locally from JSON dataset files.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &RunFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a discovery run from local dataset files",
		Long: "Executes a complete evolutionary search against datasets stored as JSON\n" +
			"files and writes the result, including the Pareto-optimal combinations,\n" +
			"to a file or stdout.",
		Example: `  combirx run \
    --smiles smiles.json --moa moa.json --graph graph.json \
    --network ppi.json --rank rank.json --targets targets.json \
    --generations 500 --seed 42 -o result.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.PopulationSet = cmd.Flags().Changed("population")
			flags.GenerationsSet = cmd.Flags().Changed("generations")
			flags.SeedSet = cmd.Flags().Changed("seed")
			return runDiscovery(cmd, rootOpts, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.SmilesFile, "smiles", "", "SMILES distance listing (JSON) [required]")
	f.StringVar(&flags.MoaFile, "moa", "", "mechanism-of-action distance listing (JSON) [required]")
	f.StringVar(&flags.GraphFile, "graph", "", "graph distance listing (JSON) [required]")
	f.StringVar(&flags.NetworkFile, "network", "", "protein interaction network edges (JSON) [required]")
	f.StringVar(&flags.RankFile, "rank", "", "network node ranks (JSON) [required]")
	f.StringVar(&flags.TargetsFile, "targets", "", "drug-target associations (JSON) [required]")
	f.StringVar(&flags.ParamsFile, "params", "", "engine parameters (JSON, optional)")
	f.IntVar(&flags.PopulationSize, "population", 0, "population size override")
	f.IntVar(&flags.NGenerations, "generations", 0, "generation count override")
	f.Int64Var(&flags.Seed, "seed", 0, "random seed for a reproducible run")
	f.StringVarP(&flags.OutputFile, "output", "o", "", "result file path (default: stdout)")

	for _, name := range []string{"smiles", "moa", "graph", "network", "rank", "targets"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runDiscovery(cmd *cobra.Command, rootOpts *RootOptions, flags *RunFlags) error {
	req, err := loadRunRequest(flags)
	if err != nil {
		return err
	}

	engineCfg := config.EngineConfig{}
	config.ApplyEngineDefaults(&engineCfg)

	svc, err := discovery.NewService(
		newMemoryRunStore(),
		newMemoryArtifactRepo(),
		nil, nil, nil,
		engineCfg,
		newCLILogger(rootOpts),
	)
	if err != nil {
		return err
	}

	result, err := svc.ExecuteRun(cmd.Context(), req)
	if err != nil {
		return err
	}

	return writeResult(cmd, flags.OutputFile, result)
}

// loadRunRequest assembles a RunRequest from the dataset files and flag
// overrides.  Overrides win over the params file.
func loadRunRequest(flags *RunFlags) (*types.RunRequest, error) {
	req := &types.RunRequest{}

	if err := readJSONFile(flags.SmilesFile, &req.SmilesDistances); err != nil {
		return nil, err
	}
	if err := readJSONFile(flags.MoaFile, &req.MoaDistances); err != nil {
		return nil, err
	}
	if err := readJSONFile(flags.GraphFile, &req.GraphDistances); err != nil {
		return nil, err
	}
	if err := readJSONFile(flags.NetworkFile, &req.PPINetwork); err != nil {
		return nil, err
	}
	if err := readJSONFile(flags.RankFile, &req.GraphRank); err != nil {
		return nil, err
	}
	if err := readJSONFile(flags.TargetsFile, &req.DrugTargets); err != nil {
		return nil, err
	}

	if flags.ParamsFile != "" {
		if err := readJSONFile(flags.ParamsFile, &req.Parameters); err != nil {
			return nil, err
		}
	}
	if flags.PopulationSet {
		req.Parameters.PopulationSize = types.Int(flags.PopulationSize)
	}
	if flags.GenerationsSet {
		req.Parameters.NGenerations = types.Int(flags.NGenerations)
	}
	if flags.SeedSet {
		req.Parameters.Seed = types.Int64(flags.Seed)
	}

	return req, nil
}

func readJSONFile(path string, dest interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeResult(cmd *cobra.Command, path string, result *types.RunResult) error {
	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return nil
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d solutions to %s\n", len(result.Solutions), path)
	return nil
}

//Personal.AI order the ending
