package mongostore

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/conceptmap/pkg/concept"
)

func TestDocumentBSON(t *testing.T) {
	recs := []concept.Record{
		{ID: "sets", Title: "Sets"},
		{
			ID:           "functions",
			Dependencies: []concept.DirectedEdge{concept.NewEdge("sets", "functions", "domain", "")},
			Resources:    []concept.Resource{concept.NormalizeResource(concept.Resource{Title: "Book", Free: true})},
		},
	}

	docs := toDocuments(recs)
	if docs[1].Seq != 1 {
		t.Errorf("Seq = %d, want 1", docs[1].Seq)
	}

	raw, err := bson.Marshal(docs[1])
	if err != nil {
		t.Fatalf("bson.Marshal() error: %v", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("bson.Unmarshal() error: %v", err)
	}
	if m["_id"] != "functions" {
		t.Errorf("_id = %v, want functions", m["_id"])
	}
	if _, ok := m["seq"]; !ok {
		t.Error("seq field missing")
	}
	if _, ok := m["depends_on"]; ok {
		t.Error("depends_on shorthand must not be stored")
	}

	var back document
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatalf("bson.Unmarshal(document) error: %v", err)
	}
	got := fromDocuments([]document{back})
	if !reflect.DeepEqual(got[0], recs[1]) {
		t.Errorf("round trip:\n got %+v\nwant %+v", got[0], recs[1])
	}
}

func TestFromDocumentsKeepsOrder(t *testing.T) {
	docs := toDocuments([]concept.Record{{ID: "b"}, {ID: "a"}, {ID: "c"}})
	recs := fromDocuments(docs)
	for i, want := range []string{"b", "a", "c"} {
		if recs[i].ID != want {
			t.Errorf("recs[%d] = %q, want %q", i, recs[i].ID, want)
		}
	}
}
