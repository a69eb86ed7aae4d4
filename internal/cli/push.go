package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cmerrors "github.com/matzehuels/conceptmap/pkg/errors"
	pkgio "github.com/matzehuels/conceptmap/pkg/io"
	"github.com/matzehuels/conceptmap/pkg/store/mongostore"
)

func (c *CLI) pushCommand() *cobra.Command {
	var mongoURI string
	cmd := &cobra.Command{
		Use:   "push <file>",
		Short: "Store a data file in MongoDB",
		Long: `Validate a data file and make the configured MongoDB collection hold
exactly its concepts. Concepts missing from the file are removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if mongoURI != "" {
				c.cfg.Mongo.URI = mongoURI
			}
			if c.cfg.Mongo.URI == "" {
				return cmerrors.New(cmerrors.ErrCodeInvalidInput, "no MongoDB configured: pass --mongo or set mongo.uri")
			}

			// Importing first rejects files that would not load back.
			g, err := pkgio.ImportFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := mongostore.Open(ctx, c.mongoConfig())
			if err != nil {
				return fmt.Errorf("open mongo: %w", err)
			}
			defer store.Close(context.WithoutCancel(ctx))

			prog := newProgress(loggerFromContext(ctx))
			written, err := store.Replace(ctx, g.Records())
			if err != nil {
				return err
			}
			prog.done("Replaced collection")

			out := cmd.OutOrStdout()
			printSuccess(out, "Pushed %d concepts (%d written)", g.Len(), written)
			printDetail(out, "%s.%s", c.cfg.Mongo.Database, c.cfg.Mongo.Collection)
			return nil
		},
	}
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI (default from config)")
	return cmd
}
