package io

import (
	"fmt"
	"os"

	"github.com/matzehuels/conceptmap/pkg/concept"
	cmerrors "github.com/matzehuels/conceptmap/pkg/errors"
)

// ExportFile writes g to path in the format given by its extension.
// This is a convenience wrapper around [WriteJSON] and [WriteTOML].
func ExportFile(g *concept.Graph, path string) error {
	format, err := cmerrors.ValidateDataFile(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if format == "toml" {
		return WriteTOML(g, f)
	}
	return WriteJSON(g, f)
}
