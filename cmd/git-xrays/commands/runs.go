package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jogendra123/git-xrays/internal/domain"
	"github.com/jogendra123/git-xrays/internal/store"
)

// NewRunsCommand builds the `runs` command group: list and compare
// stored analysis snapshots without re-running the pipelines.
func NewRunsCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List or compare stored analysis runs",
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Run-store database path (default ~/.git-xrays/runs.db)")

	cmd.AddCommand(newRunsListCommand(&dbPath))
	cmd.AddCommand(newRunsCompareCommand(&dbPath))

	return cmd
}

func newRunsListCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <repo-path>",
		Short: "List stored runs for a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveDBPathFlag(*dbPath)
			if err != nil {
				return err
			}

			s, err := store.Open(path)
			if err != nil {
				return fmt.Errorf("%w: open run store: %v", domain.ErrStore, err)
			}
			defer s.Close()

			runs, err := s.ListRuns(args[0])
			if err != nil {
				return fmt.Errorf("%w: list runs: %v", domain.ErrStore, err)
			}

			for _, r := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tfiles=%d\tcommits=%d\n", r.RunID, r.StartedAt.Format("2006-01-02T15:04:05Z07:00"), r.TotalFiles, r.TotalCommits)
			}

			return nil
		},
	}
}

func newRunsCompareCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <run-a> <run-b>",
		Short: "Compare two stored runs table-by-table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveDBPathFlag(*dbPath)
			if err != nil {
				return err
			}

			s, err := store.Open(path)
			if err != nil {
				return fmt.Errorf("%w: open run store: %v", domain.ErrStore, err)
			}
			defer s.Close()

			comparison, err := s.Compare(args[0], args[1])
			if err != nil {
				return fmt.Errorf("%w: compare runs: %v", domain.ErrStore, err)
			}

			for _, table := range comparison.Tables {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", table.Table)

				for _, row := range table.Rows {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-40s %-10s delta=%.4f\n", row.Key, row.Status, row.Delta)
				}
			}

			return nil
		},
	}
}

func resolveDBPathFlag(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	ac := &AnalyzeCommand{}

	return ac.resolveDBPath(nil)
}
