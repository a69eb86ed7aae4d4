package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/conceptmap/pkg/concept"
)

// NodeRecord is the serialized form of a concept node. It is shared by the
// file formats and the document store.
type NodeRecord struct {
	ID           string           `json:"id" toml:"id" bson:"_id"`
	Title        string           `json:"title,omitempty" toml:"title,omitempty" bson:"title,omitempty"`
	Summary      string           `json:"summary,omitempty" toml:"summary,omitempty" bson:"summary,omitempty"`
	Pointers     string           `json:"pointers,omitempty" toml:"pointers,omitempty" bson:"pointers,omitempty"`
	DependsOn    []string         `json:"depends_on,omitempty" toml:"depends_on,omitempty" bson:"-"`
	Dependencies []EdgeRecord     `json:"dependencies,omitempty" toml:"dependency,omitempty" bson:"dependencies,omitempty"`
	Outlinks     []EdgeRecord     `json:"outlinks,omitempty" toml:"outlink,omitempty" bson:"outlinks,omitempty"`
	Questions    []QuestionRecord `json:"questions,omitempty" toml:"question,omitempty" bson:"questions,omitempty"`
	Resources    []ResourceRecord `json:"resources,omitempty" toml:"resource,omitempty" bson:"resources,omitempty"`
}

// EdgeRecord is the serialized form of a directed edge.
type EdgeRecord struct {
	ID     string `json:"id,omitempty" toml:"id,omitempty" bson:"id,omitempty"`
	From   string `json:"from,omitempty" toml:"from,omitempty" bson:"from"`
	To     string `json:"to,omitempty" toml:"to,omitempty" bson:"to"`
	Reason string `json:"reason,omitempty" toml:"reason,omitempty" bson:"reason,omitempty"`
}

// UnmarshalJSON accepts the from_tag/to_tag spelling as well.
func (e *EdgeRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string `json:"id"`
		From    string `json:"from"`
		To      string `json:"to"`
		FromTag string `json:"from_tag"`
		ToTag   string `json:"to_tag"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = EdgeRecord{ID: raw.ID, From: raw.From, To: raw.To, Reason: raw.Reason}
	if e.From == "" {
		e.From = raw.FromTag
	}
	if e.To == "" {
		e.To = raw.ToTag
	}
	return nil
}

// QuestionRecord is the serialized form of a comprehension question.
type QuestionRecord struct {
	Text string `json:"text" toml:"text" bson:"text"`
}

// ResourceRecord is the serialized form of a learning resource.
type ResourceRecord struct {
	Title        string   `json:"title,omitempty" toml:"title,omitempty" bson:"title,omitempty"`
	Location     string   `json:"location,omitempty" toml:"location,omitempty" bson:"location,omitempty"`
	URL          string   `json:"url,omitempty" toml:"url,omitempty" bson:"url,omitempty"`
	ResourceType string   `json:"resource_type,omitempty" toml:"resource_type,omitempty" bson:"resource_type,omitempty"`
	Free         Flag     `json:"free,omitempty" toml:"free,omitempty" bson:"free,omitempty"`
	Edition      string   `json:"edition,omitempty" toml:"edition,omitempty" bson:"edition,omitempty"`
	Authors      []string `json:"authors,omitempty" toml:"authors,omitempty" bson:"authors,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" toml:"dependencies,omitempty" bson:"dependencies,omitempty"`
	Mark         []string `json:"mark,omitempty" toml:"mark,omitempty" bson:"mark,omitempty"`
	Extra        []string `json:"extra,omitempty" toml:"extra,omitempty" bson:"extra,omitempty"`
	Note         []string `json:"note,omitempty" toml:"note,omitempty" bson:"note,omitempty"`
}

// Flag is a boolean that also decodes from the JSON numbers 0 and 1.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*f = false
		return nil
	}
	if b, err := strconv.ParseBool(string(data)); err == nil {
		*f = Flag(b)
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("free: want boolean or number, got %s", data)
	}
	*f = n != 0
	return nil
}

// ToRecord converts the serialized form into a concept record. Missing edge
// endpoints default to the node id; depends_on entries become dependencies
// after the explicit ones.
func (n NodeRecord) ToRecord() concept.Record {
	rec := concept.Record{
		ID:       n.ID,
		Title:    n.Title,
		Summary:  n.Summary,
		Pointers: n.Pointers,
	}
	for _, e := range n.Dependencies {
		to := e.To
		if to == "" {
			to = n.ID
		}
		rec.Dependencies = append(rec.Dependencies, concept.NewEdge(e.From, to, e.Reason, e.ID))
	}
	for _, from := range n.DependsOn {
		rec.Dependencies = append(rec.Dependencies, concept.NewEdge(from, n.ID, "", ""))
	}
	for _, e := range n.Outlinks {
		from := e.From
		if from == "" {
			from = n.ID
		}
		rec.Outlinks = append(rec.Outlinks, concept.NewEdge(from, e.To, e.Reason, e.ID))
	}
	for _, q := range n.Questions {
		rec.Questions = append(rec.Questions, concept.Question{Text: q.Text})
	}
	for _, r := range n.Resources {
		rec.Resources = append(rec.Resources, concept.NormalizeResource(concept.Resource{
			Title:        r.Title,
			Location:     r.Location,
			URL:          r.URL,
			ResourceType: r.ResourceType,
			Free:         bool(r.Free),
			Edition:      r.Edition,
			Authors:      r.Authors,
			Dependencies: r.Dependencies,
			Mark:         r.Mark,
			Extra:        r.Extra,
			Note:         r.Note,
		}))
	}
	return rec
}

// FromRecord converts a concept record into its serialized form. Edge ids
// are written only when they differ from the derived from+to id.
func FromRecord(rec concept.Record) NodeRecord {
	n := NodeRecord{
		ID:       rec.ID,
		Title:    rec.Title,
		Summary:  rec.Summary,
		Pointers: rec.Pointers,
	}
	for _, e := range rec.Dependencies {
		n.Dependencies = append(n.Dependencies, fromEdge(e))
	}
	for _, e := range rec.Outlinks {
		n.Outlinks = append(n.Outlinks, fromEdge(e))
	}
	for _, q := range rec.Questions {
		n.Questions = append(n.Questions, QuestionRecord{Text: q.Text})
	}
	for _, r := range rec.Resources {
		n.Resources = append(n.Resources, ResourceRecord{
			Title:        r.Title,
			Location:     r.Location,
			URL:          r.URL,
			ResourceType: r.ResourceType,
			Free:         Flag(r.Free),
			Edition:      r.Edition,
			Authors:      nonEmpty(r.Authors),
			Dependencies: nonEmpty(r.Dependencies),
			Mark:         nonEmpty(r.Mark),
			Extra:        nonEmpty(r.Extra),
			Note:         nonEmpty(r.Note),
		})
	}
	return n
}

func fromEdge(e concept.DirectedEdge) EdgeRecord {
	out := EdgeRecord{From: e.From, To: e.To, Reason: e.Reason}
	if e.ID != e.From+e.To {
		out.ID = e.ID
	}
	return out
}

func nonEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

// ToRecords converts serialized nodes into concept records.
func ToRecords(nodes []NodeRecord) []concept.Record {
	recs := make([]concept.Record, len(nodes))
	for i, n := range nodes {
		recs[i] = n.ToRecord()
	}
	return recs
}

// FromRecords converts concept records into serialized nodes.
func FromRecords(recs []concept.Record) []NodeRecord {
	nodes := make([]NodeRecord, len(recs))
	for i, r := range recs {
		nodes[i] = FromRecord(r)
	}
	return nodes
}
