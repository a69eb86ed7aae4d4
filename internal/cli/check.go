package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cmerrors "github.com/matzehuels/conceptmap/pkg/errors"
)

func (c *CLI) checkCommand() *cobra.Command {
	var (
		file   string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report dangling references and dependency cycles",
		Long: `Compute the ancestors of every concept and report each dependency that
names an unknown concept and each dependency cycle. Dangling references
fail the command; cycles fail it only with --strict.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(cmd.Context(), file)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report := g.Check()

			edges := 0
			for _, n := range g.Nodes() {
				edges += len(n.Dependencies())
			}
			printStats(out, g.Len(), edges)

			for _, d := range report.Dangling {
				printError(out, "%s depends on unknown concept %s", d.NodeID, d.MissingID)
			}
			for _, w := range report.Cycles {
				printWarning(out, "%s", w.Error())
			}
			for _, n := range g.Nodes() {
				for _, r := range n.Record().Resources {
					if r.URL == "" {
						continue
					}
					if err := cmerrors.ValidateURL(r.URL); err != nil {
						printWarning(out, "%s: resource %q: %s", n.ID, r.Title, cmerrors.UserMessage(err))
					}
				}
			}
			if report.OK() {
				printSuccess(out, "No problems found")
				return nil
			}

			if len(report.Dangling) > 0 || (strict && len(report.Cycles) > 0) {
				return fmt.Errorf("check failed: %d dangling references, %d cycles", len(report.Dangling), len(report.Cycles))
			}
			return nil
		},
	}
	addFileFlag(cmd, &file)
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on dependency cycles")
	return cmd
}
