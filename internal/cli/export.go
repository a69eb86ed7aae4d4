package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/concept"
	cmerrors "github.com/matzehuels/conceptmap/pkg/errors"
	pkgio "github.com/matzehuels/conceptmap/pkg/io"
	"github.com/matzehuels/conceptmap/pkg/render/nodelink"
)

const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatJSON = "json"
	formatTOML = "toml"
)

type exportOpts struct {
	file       string
	output     string
	format     string
	key        string
	learned    []string
	uniqueOnly bool
	wrap       int
	noCache    bool
}

func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a map as DOT, SVG, JSON, or TOML",
		Long: `Write the map as a Graphviz node-link diagram (dot, svg) or as a data file
(json, toml). The format defaults to the extension of --output, or dot
when writing to stdout.

SVG output is cached by DOT source, so re-exporting an unchanged map skips
layout.`,
		Example: `  conceptmap export -f calculus.toml --unique-only -o calculus.svg
  conceptmap export -f calculus.json --key limits --learned sets,functions
  conceptmap export -f calculus.json -o calculus.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, opts)
		},
	}
	addFileFlag(cmd, &opts.file)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: dot, svg, json, toml")
	cmd.Flags().BoolVar(&opts.uniqueOnly, "unique-only", false, "draw only unique-dependency edges")
	cmd.Flags().StringVar(&opts.key, "key", "", "concept to outline")
	cmd.Flags().StringSliceVar(&opts.learned, "learned", nil, "concepts to grey out (comma-separated)")
	cmd.Flags().IntVar(&opts.wrap, "wrap", nodelink.DefaultWrapWidth, "label wrap width, negative to disable")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render SVG without the cache")
	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, opts exportOpts) error {
	format, err := exportFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	g, err := c.loadGraph(ctx, opts.file)
	if err != nil {
		return err
	}
	if opts.key != "" {
		if _, err := g.Get(opts.key); err != nil {
			return cmerrors.FromGraph(err)
		}
	}

	var buf bytes.Buffer
	switch format {
	case formatJSON:
		err = pkgio.WriteJSON(g, &buf)
	case formatTOML:
		err = pkgio.WriteTOML(g, &buf)
	default:
		var dot string
		dot, err = nodelink.ToDOT(g, nodelink.Options{
			UniqueOnly: opts.uniqueOnly,
			KeyNode:    opts.key,
			Learned:    concept.NewSet(opts.learned...),
			WrapWidth:  opts.wrap,
		})
		if err != nil {
			return cmerrors.FromGraph(err)
		}
		if format == formatDOT {
			buf.WriteString(dot)
			break
		}
		err = c.renderSVG(cmd, dot, opts.noCache, &buf)
	}
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess(cmd.ErrOrStderr(), "Exported %d concepts", g.Len())
	printFile(cmd.ErrOrStderr(), opts.output)
	return nil
}

func (c *CLI) renderSVG(cmd *cobra.Command, dot string, noCache bool, buf *bytes.Buffer) error {
	ctx := cmd.Context()
	store, err := c.openCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	svg, cached, err := nodelink.NewRenderer(store, nil, c.cacheTTL()).SVG(ctx, dot)
	if err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	loggerFromContext(ctx).Debug("rendered svg", "cached", cached, "bytes", len(svg))
	buf.Write(svg)
	return nil
}

// exportFormat resolves the output format from the flag or the output
// file's extension.
func exportFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "" || format == "gv" {
			format = formatDOT
		}
	}
	switch format {
	case formatDOT, formatSVG, formatJSON, formatTOML:
		return format, nil
	}
	return "", cmerrors.New(cmerrors.ErrCodeInvalidFormat, "unsupported export format %q (want dot, svg, json, or toml)", format)
}
