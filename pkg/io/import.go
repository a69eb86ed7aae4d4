package io

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/matzehuels/conceptmap/pkg/concept"
	cmerrors "github.com/matzehuels/conceptmap/pkg/errors"
)

// ReadFile reads the concept records stored at path. The format is chosen
// by extension: .json or .toml.
//
// A missing file yields FILE_NOT_FOUND and an unknown extension
// INVALID_FORMAT; decode failures carry INVALID_FORMAT with the path.
func ReadFile(path string) ([]concept.Record, error) {
	format, err := cmerrors.ValidateDataFile(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, cmerrors.Wrap(cmerrors.ErrCodeFileNotFound, err, "no such file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var recs []concept.Record
	switch format {
	case "toml":
		recs, err = ReadTOML(f)
	default:
		recs, err = ReadJSON(f)
	}
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrCodeInvalidFormat, err, "cannot parse %s", path)
	}
	return recs, nil
}

// ImportFile reads path with [ReadFile] and loads the records into a new
// graph. Invalid records (empty or duplicate ids, misdirected edges) yield
// INVALID_RECORD. Dangling references are not detected here; they surface
// on the first query that reaches them or through [concept.Graph.Check].
func ImportFile(path string) (*concept.Graph, error) {
	recs, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	g := concept.NewGraph()
	if err := g.Load(recs); err != nil {
		return nil, cmerrors.FromGraph(fmt.Errorf("%s: %w", path, err))
	}
	return g, nil
}
