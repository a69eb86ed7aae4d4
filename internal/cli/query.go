package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/concept"
	cmerrors "github.com/matzehuels/conceptmap/pkg/errors"
)

func (c *CLI) ancestorsCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "ancestors <concept> [candidate]",
		Short: "List every concept a concept builds on",
		Long: `List every concept reachable by following dependencies backwards from
<concept>. With a candidate, report only whether it is among them.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSetQuery(cmd, file, args, "Ancestors", (*concept.Graph).Ancestors, (*concept.Graph).IsAncestor)
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

func (c *CLI) uniqueCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "unique <concept> [dependency]",
		Short: "List the direct dependencies not implied by any other",
		Long: `List the dependencies of <concept> that are not already ancestors of
another of its dependencies. These are the edges drawn by
"export --unique-only". With a dependency, report only whether it is unique.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSetQuery(cmd, file, args, "Unique dependencies", (*concept.Graph).UniqueDependencies, (*concept.Graph).IsUniqueDependency)
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

func (c *CLI) runSetQuery(
	cmd *cobra.Command,
	file string,
	args []string,
	title string,
	set func(*concept.Graph, string) (concept.Set, error),
	member func(*concept.Graph, string, string) (bool, error),
) error {
	id, err := conceptArg(args, 0)
	if err != nil {
		return err
	}
	g, err := c.loadGraph(cmd.Context(), file)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 2 {
		other, err := conceptArg(args, 1)
		if err != nil {
			return err
		}
		ok, err := member(g, id, other)
		if err != nil {
			return cmerrors.FromGraph(err)
		}
		fmt.Fprintln(out, ok)
		return nil
	}

	ids, err := set(g, id)
	if err != nil {
		return cmerrors.FromGraph(err)
	}
	printList(out, fmt.Sprintf("%s of %s", title, id), ids.Sorted())
	return nil
}

func (c *CLI) pathCommand() *cobra.Command {
	var (
		file    string
		learned []string
	)
	cmd := &cobra.Command{
		Use:   "path <concept>",
		Short: "List what is left to learn before a concept",
		Long: `List <concept> and its ancestors, prerequisites first, skipping
concepts given with --learned.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := conceptArg(args, 0)
			if err != nil {
				return err
			}
			g, err := c.loadGraph(cmd.Context(), file)
			if err != nil {
				return err
			}
			ids, err := g.Unlearned(id, concept.NewSet(learned...))
			if err != nil {
				return cmerrors.FromGraph(err)
			}
			out := cmd.OutOrStdout()
			printList(out, "Study path to "+id, ids)
			if len(ids) > 0 {
				printDetail(out, "%s", strings.Join(ids, " "+iconArrow+" "))
			}
			return nil
		},
	}
	addFileFlag(cmd, &file)
	cmd.Flags().StringSliceVar(&learned, "learned", nil, "concepts already learned (comma-separated)")
	return cmd
}
