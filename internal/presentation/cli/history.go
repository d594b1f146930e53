package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibbank/fraudml/internal/application/dto"
	"github.com/bibbank/fraudml/internal/application/usecase"
)

func (a *app) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent evaluation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			repo, closeRepo, err := a.evaluationRuns(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()
			if repo == nil {
				return errDatabaseNotConfigured
			}

			runs, err := usecase.NewListEvaluationRuns(repo).Execute(cmd.Context(), dto.ListEvaluationRunsRequest{Limit: limit})
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Fprintln(a.out(cmd), "No evaluation runs found.")
				return nil
			}

			fmt.Fprintf(a.out(cmd), "Recent evaluation runs (%d):\n\n", len(runs))
			for _, r := range runs {
				verdict := "PASS"
				if !r.Passed {
					verdict = "FAIL"
				}
				fmt.Fprintf(a.out(cmd), "  %s  %s  %s  %s=%.4f  rows=%d\n",
					r.EvaluatedAt.Format("2006-01-02 15:04"),
					r.ID.String()[:8],
					verdict,
					r.GateMetric,
					r.GateValue,
					r.HeldOutRows,
				)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 10, "number of runs to show")

	return cmd
}
