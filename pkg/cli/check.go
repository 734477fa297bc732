package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cephmedic/cephmedic/pkg/checks"
)

var failOnWarning bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Collect metadata and evaluate the built-in checks against it",
	Long: `Run a full collection over the inventory and then evaluate the built-in
checks against the snapshot.

E-coded findings are errors and make the command exit non-zero; W-coded
findings are warnings and are reported without failing the command unless
--fail-on-warning is set.

Examples:

  cephmedic check --inventory hosts.yaml --ssh-user cephadm
  cephmedic check -i hosts.yaml -f table`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		outcome, err := runCollection(cmd.Context())
		if err != nil {
			return err
		}

		findings := checks.Run(outcome.Store)

		if err := writeResult(cmd.Context(), map[string]any{
			"run_id":   outcome.RunID,
			"outcome":  outcome.Kind(),
			"failed":   outcome.Failed,
			"findings": findings,
		}); err != nil {
			return err
		}

		errs, warns := 0, 0
		for _, f := range findings {
			if f.Severity == checks.SeverityError {
				errs++
			} else {
				warns++
			}
		}
		if errs > 0 || (failOnWarning && warns > 0) {
			return fmt.Errorf("%d error and %d warning findings", errs, warns)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addCollectionFlags(checkCmd)
	checkCmd.Flags().BoolVar(&failOnWarning, "fail-on-warning", false, "exit non-zero on warning findings as well")
}
