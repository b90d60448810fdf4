package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"forecastbonus/adapters/excel"
	"forecastbonus/adapters/fileio"
	"forecastbonus/domain/experiment"
	"forecastbonus/internal/config"
	"forecastbonus/internal/container"
	"forecastbonus/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "forecastbonus",
		Short:         "Score forecasting study exports and compute participant bonuses",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newScoreCmd(),
		newEarningsCmd(),
		newRoundCmd(),
		newAccuracyCmd(),
		newOverviewCmd(),
		newPayoutCmd(),
		newSimulateCmd(),
	)
	return rootCmd
}

func newContainer() (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <file>",
		Short: "Print the bonus round and score of every task",
		Long: `Score every assignment in an export file. Each task draws its bonus round
from a stream seeded by the assignment identifier, so the output is reproducible.

Example: forecastbonus score export.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			assignments, err := fileio.LoadAssignments(args[0])
			if err != nil {
				return err
			}

			type taskScore struct {
				experiment.ScoreResult
				TaskIndex int `json:"taskIndex"`
			}
			type assignmentScore struct {
				AssignmentID string      `json:"assignmentId"`
				Tasks        []taskScore `json:"tasks"`
				TotalScore   int         `json:"totalScore"`
			}

			var out []assignmentScore
			for _, a := range assignments {
				row := assignmentScore{AssignmentID: a.ID().String()}
				for taskN := range a.Tasks {
					result, err := c.Scoring.TotalTaskScore(taskN, a)
					if err != nil {
						return fmt.Errorf("assignment %s: %w", a.ID(), err)
					}
					row.Tasks = append(row.Tasks, taskScore{ScoreResult: result, TaskIndex: taskN})
					row.TotalScore += result.TotalScore
				}
				out = append(out, row)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newEarningsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "earnings <file>",
		Short: "Print per-task bonuses and total earnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			assignments, err := fileio.LoadAssignments(args[0])
			if err != nil {
				return err
			}

			var out []interface{}
			for _, a := range assignments {
				breakdown, err := c.Scoring.Breakdown(a)
				if err != nil {
					return fmt.Errorf("assignment %s: %w", a.ID(), err)
				}
				out = append(out, breakdown)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newRoundCmd() *cobra.Command {
	var taskN, roundN, index int

	cmd := &cobra.Command{
		Use:   "round <file>",
		Short: "Score every horizon of one round without bonus selection",
		Long: `Score every horizon of one round of one task.

Example: forecastbonus round export.json --task 0 --round 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			assignments, err := fileio.LoadAssignments(args[0])
			if err != nil {
				return err
			}
			if index < 0 || index >= len(assignments) {
				return fmt.Errorf("assignment index %d out of range (file holds %d)", index, len(assignments))
			}
			a := assignments[index]
			task, err := a.Task(taskN)
			if err != nil {
				return err
			}

			scores, err := c.Scoring.GetScore(roundN, a.PredictionsFor(taskN), a.ValuesFor(taskN), task)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"assignmentId": a.ID(),
				"taskIndex":    taskN,
				"roundN":       roundN,
				"testing":      task.IsTestingRound(roundN),
				"scores":       scores,
			})
		},
	}

	cmd.Flags().IntVar(&taskN, "task", 0, "Task index")
	cmd.Flags().IntVar(&roundN, "round", 0, "Round index")
	cmd.Flags().IntVar(&index, "assignment", 0, "Position of the assignment in the file")

	return cmd
}

func newAccuracyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accuracy <file>",
		Short: "Summarize forecast errors over all testing rounds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			assignments, err := fileio.LoadAssignments(args[0])
			if err != nil {
				return err
			}

			out := make(map[string]interface{}, len(assignments))
			for _, a := range assignments {
				tasks, err := c.Analyzer.ForAssignment(a)
				if err != nil {
					return fmt.Errorf("assignment %s: %w", a.ID(), err)
				}
				out[a.ID().String()] = tasks
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newOverviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview <file>",
		Short: "Describe the study configured in an export file",
		Long: `Describe the study from the task list of the first assignment: predictions
per round, total rounds, estimated duration and the maximum achievable bonus.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments, err := fileio.LoadAssignments(args[0])
			if err != nil {
				return err
			}
			if len(assignments) == 0 {
				return fmt.Errorf("%s holds no assignments", args[0])
			}
			overview, err := experiment.NewOverview(assignments[0].Tasks)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), overview)
		},
	}
}

func newPayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payout [file]",
		Short: "Compute payouts for a file, or for every stored assignment",
		Long: `Compute payouts concurrently. With a file argument the assignments in the
file are scored; without one every assignment in DATABASE_URL is scored and
its payout recorded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if len(args) == 1 {
				assignments, err := fileio.LoadAssignments(args[0])
				if err != nil {
					return err
				}
				payouts, err := c.Payouts.ComputeBatch(ctx, assignments)
				if err != nil {
					return err
				}
				summary, err := c.Payouts.Summarize(payouts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"payouts": payouts,
					"summary": summary,
				})
			}

			if !c.Config.Database.Enabled() {
				return fmt.Errorf("DATABASE_URL is required without a file argument")
			}
			if err := c.Connect(ctx); err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			summary, err := c.Payouts.ProcessAll(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func newSimulateCmd() *cobra.Command {
	var seed uint64
	var participants int
	var out string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a synthetic study and summarize its payouts",
		Long: `Generate participants whose realized values follow an AR(1) process and
whose forecasts scatter around them, then score them.

Example: forecastbonus simulate --seed 7 --participants 50 --out study.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}

			genConfig := testkit.DefaultStudyConfig()
			genConfig.Seed = seed
			genConfig.Participants = participants

			assignments, err := testkit.NewStudyGenerator(genConfig).GenerateAssignments()
			if err != nil {
				return err
			}

			if out != "" {
				if err := writeAssignments(out, assignments); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d assignments to %s\n", len(assignments), out)
			}

			payouts, err := c.Payouts.ComputeBatch(cmd.Context(), assignments)
			if err != nil {
				return err
			}
			summary, err := c.Payouts.Summarize(payouts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed for deterministic generation")
	cmd.Flags().IntVar(&participants, "participants", 10, "Number of participants")
	cmd.Flags().StringVar(&out, "out", "", "Write the generated study to a .json, .xlsx or .csv file")

	return cmd
}

func writeAssignments(path string, assignments []*experiment.Assignment) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return printJSON(f, assignments)
	case ".xlsx", ".csv":
		return excel.WriteAssignments(path, assignments)
	default:
		return fmt.Errorf("unsupported output extension %q", filepath.Ext(path))
	}
}
