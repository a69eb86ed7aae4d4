// Package mongostore keeps concept records in a MongoDB collection.
//
// Each node is one document keyed by its id, with a sequence number that
// preserves the map's insertion order:
//
//	{"_id": "functions", "seq": 1, "dependencies": [{"from": "sets", "to": "functions"}]}
//
// The server loads a map from here instead of a file with --mongo; the push
// command writes a file's records into a collection.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/conceptmap/pkg/concept"
	pkgio "github.com/matzehuels/conceptmap/pkg/io"
)

// Config selects the collection that holds a map.
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration // per operation; 10s when zero
}

// Store reads and writes concept records.
type Store struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

// document is the stored form of one node.
type document struct {
	Seq              int `bson:"seq"`
	pkgio.NodeRecord `bson:",inline"`
}

// Open connects to MongoDB and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{
		client:  client,
		coll:    client.Database(cfg.Database).Collection(cfg.Collection),
		timeout: cfg.Timeout,
	}, nil
}

// Load returns every record in the collection in insertion order.
func (s *Store) Load(ctx context.Context) ([]concept.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return fromDocuments(docs), nil
}

// LoadGraph loads the collection into a new graph.
func (s *Store) LoadGraph(ctx context.Context) (*concept.Graph, error) {
	recs, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	g := concept.NewGraph()
	if err := g.Load(recs); err != nil {
		return nil, err
	}
	return g, nil
}

// Replace makes the collection hold exactly recs. Existing documents are
// upserted by id and documents for ids not in recs are removed.
func (s *Store) Replace(ctx context.Context, recs []concept.Record) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	docs := toDocuments(recs)
	ids := make(bson.A, len(docs))
	models := make([]mongo.WriteModel, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.ID}).
			SetReplacement(d).
			SetUpsert(true)
	}

	var written int64
	if len(models) > 0 {
		res, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
		if err != nil {
			return 0, fmt.Errorf("write: %w", err)
		}
		written = res.UpsertedCount + res.ModifiedCount
	}
	if _, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}}); err != nil {
		return written, fmt.Errorf("prune: %w", err)
	}
	return written, nil
}

// Close disconnects from the server.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDocuments(recs []concept.Record) []document {
	docs := make([]document, len(recs))
	for i, r := range recs {
		docs[i] = document{Seq: i, NodeRecord: pkgio.FromRecord(r)}
	}
	return docs
}

func fromDocuments(docs []document) []concept.Record {
	recs := make([]concept.Record, len(docs))
	for i, d := range docs {
		recs[i] = d.ToRecord()
	}
	return recs
}
