package memory

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"lingua-quiz-service/internal/docstore"
	"lingua-quiz-service/internal/domain"
)

// Store is an in-memory docstore.Store. Documents are held as canonical
// BSON bytes so reads decode through the same tags as the MongoDB path.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func New() *Store {
	return &Store{collections: make(map[string]map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, collection, id string, out any) error {
	if err := ctx.Err(); err != nil {
		return &domain.PersistenceError{Op: "get " + collection, Err: err}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.collections[collection][id]
	if !ok {
		return &domain.NotFoundError{Entity: "document", ID: id}
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return &domain.PersistenceError{Op: "decode " + collection, Err: err}
	}
	return nil
}

func (s *Store) GetAll(ctx context.Context, collection string, out any) error {
	return s.Query(ctx, collection, nil, out)
}

func (s *Store) Query(ctx context.Context, collection string, filter map[string]any, out any) error {
	if err := ctx.Err(); err != nil {
		return &domain.PersistenceError{Op: "query " + collection, Err: err}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	slicev := reflect.ValueOf(out)
	if slicev.Kind() != reflect.Pointer || slicev.Elem().Kind() != reflect.Slice {
		return &domain.PersistenceError{Op: "query " + collection, Err: errNotSlice}
	}
	elems := slicev.Elem()
	elems.SetLen(0)

	for _, id := range s.sortedIDs(collection) {
		raw := s.collections[collection][id]
		if !matches(raw, filter) {
			continue
		}
		elem := reflect.New(elems.Type().Elem())
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return &domain.PersistenceError{Op: "decode " + collection, Err: err}
		}
		elems.Set(reflect.Append(elems, elem.Elem()))
	}
	return nil
}

func (s *Store) Set(ctx context.Context, collection, id string, doc any) error {
	if err := ctx.Err(); err != nil {
		return &domain.PersistenceError{Op: "set " + collection, Err: err}
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return &domain.PersistenceError{Op: "encode " + collection, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(collection, id, raw)
	return nil
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return &domain.PersistenceError{Op: "update " + collection, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(collection, id, fields)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return &domain.PersistenceError{Op: "delete " + collection, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return &domain.NotFoundError{Entity: "document", ID: id}
	}
	delete(s.collections[collection], id)
	return nil
}

// BatchWrite applies all operations or none: updates and deletes are
// verified against current state before anything is committed.
func (s *Store) BatchWrite(ctx context.Context, ops []docstore.Op) error {
	if err := ctx.Err(); err != nil {
		return &domain.PersistenceError{Op: "batch write", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		if op.Action == docstore.ActionSet {
			continue
		}
		if _, ok := s.collections[op.Collection][op.ID]; !ok {
			return &domain.NotFoundError{Entity: "document", ID: op.ID}
		}
	}

	for _, op := range ops {
		switch op.Action {
		case docstore.ActionSet:
			raw, err := bson.Marshal(op.Doc)
			if err != nil {
				return &domain.PersistenceError{Op: "encode " + op.Collection, Err: err}
			}
			s.setLocked(op.Collection, op.ID, raw)
		case docstore.ActionUpdate:
			if err := s.updateLocked(op.Collection, op.ID, op.Fields); err != nil {
				return err
			}
		case docstore.ActionDelete:
			delete(s.collections[op.Collection], op.ID)
		}
	}
	return nil
}

func (s *Store) setLocked(collection, id string, raw []byte) {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string][]byte)
	}
	s.collections[collection][id] = raw
}

func (s *Store) updateLocked(collection, id string, fields map[string]any) error {
	raw, ok := s.collections[collection][id]
	if !ok {
		return &domain.NotFoundError{Entity: "document", ID: id}
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return &domain.PersistenceError{Op: "decode " + collection, Err: err}
	}
	for k, v := range fields {
		doc[k] = normalize(v)
	}
	updated, err := bson.Marshal(doc)
	if err != nil {
		return &domain.PersistenceError{Op: "encode " + collection, Err: err}
	}
	s.collections[collection][id] = updated
	return nil
}

func (s *Store) sortedIDs(collection string) []string {
	ids := make([]string, 0, len(s.collections[collection]))
	for id := range s.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// matches compares filter entries against the stored document by BSON
// field name, normalizing both sides through a BSON round trip.
func matches(raw []byte, filter map[string]any) bool {
	if len(filter) == 0 {
		return true
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return false
	}
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, normalize(want)) {
			return false
		}
	}
	return true
}

func normalize(v any) any {
	raw, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return v
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return v
	}
	return m["v"]
}

var errNotSlice = &domain.ValidationError{Reason: "out must be a pointer to a slice"}
