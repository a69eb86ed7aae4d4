package io

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/conceptmap/pkg/concept"
)

type tomlDocument struct {
	Nodes []NodeRecord `toml:"node"`
}

// ReadTOML decodes concept records from a document of [[node]] tables.
// Unknown keys are rejected so that typos in hand-written maps surface.
func ReadTOML(r io.Reader) ([]concept.Record, error) {
	var doc tomlDocument
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode: unknown key %q", undecoded[0].String())
	}
	return ToRecords(doc.Nodes), nil
}

// WriteTOML encodes every node of g as [[node]] tables.
func WriteTOML(g *concept.Graph, w io.Writer) error {
	doc := tomlDocument{Nodes: FromRecords(g.Records())}
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
