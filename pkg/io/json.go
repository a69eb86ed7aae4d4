package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/matzehuels/conceptmap/pkg/concept"
)

type document struct {
	Nodes json.RawMessage `json:"nodes"`
}

type canonical struct {
	Nodes []NodeRecord `json:"nodes"`
}

// ReadJSON decodes concept records from r.
//
// The input is an object whose "nodes" member is either an array of node
// records or an object mapping ids to node records. A top-level array of
// node records is accepted as well. ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]concept.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("decode: empty input")
	}

	raw := data
	if data[0] == '{' {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		raw = bytes.TrimSpace(doc.Nodes)
		if len(raw) == 0 {
			return nil, fmt.Errorf("decode: missing \"nodes\"")
		}
	}

	nodes, err := decodeNodes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToRecords(nodes), nil
}

func decodeNodes(raw []byte) ([]NodeRecord, error) {
	switch raw[0] {
	case '[':
		var nodes []NodeRecord
		if err := json.Unmarshal(raw, &nodes); err != nil {
			return nil, err
		}
		return nodes, nil
	case '{':
		var keyed map[string]NodeRecord
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, err
		}
		nodes := make([]NodeRecord, 0, len(keyed))
		for _, id := range slices.Sorted(maps.Keys(keyed)) {
			n := keyed[id]
			if n.ID == "" {
				n.ID = id
			} else if n.ID != id {
				return nil, fmt.Errorf("node keyed %q has id %q", id, n.ID)
			}
			nodes = append(nodes, n)
		}
		return nodes, nil
	default:
		return nil, fmt.Errorf("\"nodes\" must be an array or an object")
	}
}

// WriteJSON encodes every node of g, in insertion order, as the canonical
// {"nodes": [...]} document. The output can be re-imported with [ReadJSON].
func WriteJSON(g *concept.Graph, w io.Writer) error {
	return writeJSON(g.Records(), w)
}

func writeJSON(recs []concept.Record, w io.Writer) error {
	out := canonical{Nodes: FromRecords(recs)}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
