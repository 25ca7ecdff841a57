// Package docstore defines the document database surface the service
// depends on. Implementations exist for MongoDB and for in-memory use;
// anything that can do keyed document CRUD plus atomic batches fits.
package docstore

import "context"

// Action selects the write kind inside a batch.
type Action int

const (
	ActionSet Action = iota
	ActionUpdate
	ActionDelete
)

// Op is one entry of an atomic batch write.
type Op struct {
	Collection string
	ID         string
	Doc        any            // used by ActionSet
	Fields     map[string]any // used by ActionUpdate
	Action     Action
}

// Store is a generic CRUD + batch-write document database keyed by
// collection name and document id. Reads decode into out, which must be
// a pointer (a pointer to a slice for GetAll/Query). Missing documents
// are reported as domain.ErrDocumentNotFound via a NotFoundError; all
// other failures are PersistenceErrors carrying the underlying cause.
type Store interface {
	Get(ctx context.Context, collection, id string, out any) error
	GetAll(ctx context.Context, collection string, out any) error
	Query(ctx context.Context, collection string, filter map[string]any, out any) error
	Set(ctx context.Context, collection, id string, doc any) error
	UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	BatchWrite(ctx context.Context, ops []Op) error
}
