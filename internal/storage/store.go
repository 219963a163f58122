// Package storage is the persistence gateway: a document store keyed by
// (collection, id) with an all-or-nothing batch primitive. Implementations
// exist for PostgreSQL and SQLite (via gorm) and for an in-process map, all
// behind the same interface; the backend is selected once at startup.
package storage

import (
	"context"
	"encoding/json"
	"errors"
)

// Collections consumed by the application.
const (
	CollectionProducts  = "products"
	CollectionCustomers = "customers"
	CollectionInvoices  = "invoices"
	CollectionExpenses  = "expenses"
	CollectionSettings  = "settings"
)

// SettingsID is the id of the single settings record.
const SettingsID = "general"

// ErrNotFound is returned by GetOne for an absent document and by batch
// update operations targeting one.
var ErrNotFound = errors.New("storage: document not found")

// Document is a raw stored record. Typed mapping happens at the callers via
// Decode/DecodeAll, keeping the gateway schema-agnostic.
type Document struct {
	ID   string
	Data json.RawMessage
}

// OpKind discriminates batch operations.
type OpKind int

const (
	// OpSet writes a full document, creating or replacing it.
	OpSet OpKind = iota
	// OpUpdate merges fields into an existing document; it fails the whole
	// batch when the document is absent.
	OpUpdate
	// OpIncrement atomically adds a delta to a numeric field, creating the
	// document with just that field when absent.
	OpIncrement
)

// BatchOp is one write inside an atomic batch.
type BatchOp struct {
	Kind       OpKind
	Collection string
	ID         string

	Doc    any            // OpSet
	Fields map[string]any // OpUpdate
	Field  string         // OpIncrement
	Delta  int            // OpIncrement
}

// SetOp builds an OpSet operation.
func SetOp(collection, id string, doc any) BatchOp {
	return BatchOp{Kind: OpSet, Collection: collection, ID: id, Doc: doc}
}

// UpdateOp builds an OpUpdate operation.
func UpdateOp(collection, id string, fields map[string]any) BatchOp {
	return BatchOp{Kind: OpUpdate, Collection: collection, ID: id, Fields: fields}
}

// IncrementOp builds an OpIncrement operation.
func IncrementOp(collection, id, field string, delta int) BatchOp {
	return BatchOp{Kind: OpIncrement, Collection: collection, ID: id, Field: field, Delta: delta}
}

// Store is the persistence gateway contract. All writes done through
// RunBatch commit together or not at all; that primitive is what the ledger
// relies on for invoice creation and cancellation.
type Store interface {
	ListAll(ctx context.Context, collection string) ([]Document, error)
	GetOne(ctx context.Context, collection, id string) (Document, error)
	Upsert(ctx context.Context, collection, id string, doc any) error
	Delete(ctx context.Context, collection, id string) error
	RunBatch(ctx context.Context, ops []BatchOp) error
	Close() error
}

// Decode unmarshals a document into a typed record.
func Decode[T any](d Document) (T, error) {
	var out T
	err := json.Unmarshal(d.Data, &out)
	return out, err
}

// DecodeAll unmarshals a list of documents into typed records.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		rec, err := Decode[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
