package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lingua-quiz-service/internal/docstore"
	"lingua-quiz-service/internal/domain"
)

// Store implements docstore.Store on a MongoDB database. Documents are
// keyed by a caller-supplied string _id.
type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Connect dials MongoDB and returns a Store plus a disconnect func.
func Connect(ctx context.Context, uri, database string) (*Store, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return New(client.Database(database)), client.Disconnect, nil
}

func (s *Store) Get(ctx context.Context, collection, id string, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &domain.NotFoundError{Entity: "document", ID: id}
	}
	if err != nil {
		return &domain.PersistenceError{Op: "get " + collection, Err: err}
	}
	return nil
}

func (s *Store) GetAll(ctx context.Context, collection string, out any) error {
	return s.Query(ctx, collection, nil, out)
}

func (s *Store) Query(ctx context.Context, collection string, filter map[string]any, out any) error {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}
	cursor, err := s.db.Collection(collection).Find(ctx, query)
	if err != nil {
		return &domain.PersistenceError{Op: "query " + collection, Err: err}
	}
	if err := cursor.All(ctx, out); err != nil {
		return &domain.PersistenceError{Op: "decode " + collection, Err: err}
	}
	return nil
}

func (s *Store) Set(ctx context.Context, collection, id string, doc any) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, opts)
	if err != nil {
		return &domain.PersistenceError{Op: "set " + collection, Err: err}
	}
	return nil
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	update := bson.M{"$set": bson.M(fields)}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return &domain.PersistenceError{Op: "update " + collection, Err: err}
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Entity: "document", ID: id}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return &domain.PersistenceError{Op: "delete " + collection, Err: err}
	}
	if res.DeletedCount == 0 {
		return &domain.NotFoundError{Entity: "document", ID: id}
	}
	return nil
}

// BatchWrite groups operations per collection and submits each group as
// one ordered bulk write, the store's atomic batch primitive.
func (s *Store) BatchWrite(ctx context.Context, ops []docstore.Op) error {
	grouped := make(map[string][]mongo.WriteModel)
	order := make([]string, 0)
	for _, op := range ops {
		var model mongo.WriteModel
		switch op.Action {
		case docstore.ActionSet:
			model = mongo.NewReplaceOneModel().
				SetFilter(bson.M{"_id": op.ID}).
				SetReplacement(op.Doc).
				SetUpsert(true)
		case docstore.ActionUpdate:
			model = mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": op.ID}).
				SetUpdate(bson.M{"$set": bson.M(op.Fields)})
		case docstore.ActionDelete:
			model = mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": op.ID})
		default:
			return &domain.ValidationError{Reason: "unknown batch action"}
		}
		if _, ok := grouped[op.Collection]; !ok {
			order = append(order, op.Collection)
		}
		grouped[op.Collection] = append(grouped[op.Collection], model)
	}

	for _, collection := range order {
		opts := options.BulkWrite().SetOrdered(true)
		if _, err := s.db.Collection(collection).BulkWrite(ctx, grouped[collection], opts); err != nil {
			return &domain.PersistenceError{Op: "batch write " + collection, Err: err}
		}
	}
	return nil
}
