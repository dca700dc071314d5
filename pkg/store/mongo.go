package store

import (
	"context"
	goerrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/pattern"
)

// Default MongoDB locations.
const (
	DefaultMongoDatabase   = "seamline"
	DefaultMongoCollection = "patterns"
)

// MongoStore keeps one document per pattern, keyed by name. The spec is
// stored as its JSON text, with summary fields alongside it for listing.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDoc struct {
	Name       string    `bson:"_id"`
	Revision   string    `bson:"revision"`
	UpdatedAt  time.Time `bson:"updated_at"`
	Panels     int       `bson:"panels"`
	Parameters int       `bson:"parameters"`
	Spec       string    `bson:"spec,omitempty"`
}

// NewMongoStore connects to uri and uses the given database and collection.
// Empty names select [DefaultMongoDatabase] and [DefaultMongoCollection].
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}
	return NewMongoStoreFromClient(client, database, collection), nil
}

// NewMongoStoreFromClient wraps a connected client. The store disconnects it
// on [MongoStore.Close].
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}
}

// Put implements [Store].
func (ms *MongoStore) Put(ctx context.Context, name string, s *pattern.Spec) (Document, error) {
	if err := errors.ValidateStoreName(name); err != nil {
		return Document{}, err
	}
	data, err := encodeSpec(s)
	if err != nil {
		return Document{}, err
	}
	// Mongo stores milliseconds.
	doc := Document{Name: name, Revision: newRevision(), UpdatedAt: time.Now().UTC().Truncate(time.Millisecond), Spec: s}
	md := toMongoDoc(doc, data)

	_, err = ms.coll.ReplaceOne(ctx, bson.M{"_id": name}, md, options.Replace().SetUpsert(true))
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInternal, err, "store pattern %q", name)
	}
	return doc, nil
}

// Get implements [Store].
func (ms *MongoStore) Get(ctx context.Context, name string) (Document, error) {
	if err := errors.ValidateStoreName(name); err != nil {
		return Document{}, err
	}
	var md mongoDoc
	err := ms.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&md)
	if goerrors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, notFound(name)
	}
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInternal, err, "load pattern %q", name)
	}
	s, err := decodeSpec(name, []byte(md.Spec))
	if err != nil {
		return Document{}, err
	}
	return Document{Name: md.Name, Revision: md.Revision, UpdatedAt: md.UpdatedAt, Spec: s}, nil
}

// List implements [Store]. Specs are not decoded.
func (ms *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"spec": 0})
	cur, err := ms.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list patterns")
	}
	var docs []mongoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list patterns")
	}
	out := make([]Summary, len(docs))
	for i, md := range docs {
		out[i] = md.summary()
	}
	return out, nil
}

// Delete implements [Store].
func (ms *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateStoreName(name); err != nil {
		return err
	}
	res, err := ms.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete pattern %q", name)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

// Close disconnects the client.
func (ms *MongoStore) Close(ctx context.Context) error {
	return ms.client.Disconnect(ctx)
}

func toMongoDoc(d Document, spec []byte) mongoDoc {
	sum := Summarize(d)
	return mongoDoc{
		Name:       d.Name,
		Revision:   d.Revision,
		UpdatedAt:  d.UpdatedAt,
		Panels:     sum.Panels,
		Parameters: sum.Parameters,
		Spec:       string(spec),
	}
}

func (md mongoDoc) summary() Summary {
	return Summary{
		Name:       md.Name,
		Revision:   md.Revision,
		UpdatedAt:  md.UpdatedAt,
		Panels:     md.Panels,
		Parameters: md.Parameters,
	}
}

var _ Store = (*MongoStore)(nil)
