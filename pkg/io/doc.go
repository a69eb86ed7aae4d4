// Package io reads and writes concept data files.
//
// # Overview
//
// Concept data is a list of node records. Each record carries text fields,
// comprehension questions, learning resources, and two edge collections:
// dependencies (edges that end at the node) and outlinks (edges that start
// at it). Only dependencies take part in ancestry queries.
//
// # JSON Format
//
// The canonical form holds a "nodes" array:
//
//	{
//	  "nodes": [
//	    {"id": "sets"},
//	    {"id": "functions", "dependencies": [{"from": "sets", "reason": "domain and range"}]}
//	  ]
//	}
//
// The reader also accepts "nodes" as an object keyed by id, and the edge
// field names "from_tag" and "to_tag" in place of "from" and "to". Object
// form nodes are loaded in id order. An edge's missing "to" defaults to the
// enclosing node for dependencies; a missing "from" defaults to it for
// outlinks. A resource's "free" flag may be a boolean or 0/1.
//
// # TOML Format
//
// Hand-written maps are easier in TOML. Each node is a [[node]] table;
// depends_on is shorthand for reason-less dependencies:
//
//	[[node]]
//	id = "functions"
//	depends_on = ["sets"]
//
//	[[node]]
//	id = "limits"
//
//	  [[node.dependency]]
//	  from = "functions"
//	  reason = "limits are taken of functions"
//
// # Import
//
// [ImportFile] picks the format from the file extension and returns a loaded
// [concept.Graph]. [ReadJSON] and [ReadTOML] decode from any io.Reader and
// return records, so callers can load them into an existing graph.
//
// # Export
//
// [WriteJSON] and [WriteTOML] emit the canonical forms. Export of a graph
// read from either format re-imports to the same records.
package io
