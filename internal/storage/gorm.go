package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// document is the single table backing every collection: one JSON body per
// (collection, doc_id) pair. Keeping the schema collection-agnostic means
// new record types need no migration.
type document struct {
	Collection string `gorm:"primaryKey;size:64"`
	DocID      string `gorm:"primaryKey;size:64"`
	Data       string `gorm:"type:text;not null"`
}

func (document) TableName() string { return "documents" }

// GormStore implements Store over a relational database through gorm.
// PostgreSQL serves as the remote backend and SQLite as the durable local
// one; RunBatch maps onto a database transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection and ensures the documents
// table exists.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("migrate documents table: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) ListAll(ctx context.Context, collection string) ([]Document, error) {
	var rows []document
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("doc_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	docs := make([]Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, Document{ID: r.DocID, Data: json.RawMessage(r.Data)})
	}
	return docs, nil
}

func (s *GormStore) GetOne(ctx context.Context, collection, id string) (Document, error) {
	var row document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return Document{ID: row.DocID, Data: json.RawMessage(row.Data)}, nil
}

func (s *GormStore) Upsert(ctx context.Context, collection, id string, doc any) error {
	return upsertTx(s.db.WithContext(ctx), collection, id, doc)
}

func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&document{}).Error
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// RunBatch executes all operations inside one database transaction; any
// failure rolls the whole batch back.
func (s *GormStore) RunBatch(ctx context.Context, ops []BatchOp) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			var err error
			switch op.Kind {
			case OpSet:
				err = upsertTx(tx, op.Collection, op.ID, op.Doc)
			case OpUpdate:
				err = updateTx(tx, op.Collection, op.ID, op.Fields)
			case OpIncrement:
				err = incrementTx(tx, op.Collection, op.ID, op.Field, op.Delta)
			default:
				err = fmt.Errorf("unknown batch op kind %d", op.Kind)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func upsertTx(tx *gorm.DB, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	row := document{Collection: collection, DocID: id, Data: string(data)}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

// updateTx merges fields into an existing document. The batch transaction
// makes the read-merge-write safe; absence fails the whole batch.
func updateTx(tx *gorm.DB, collection, id string, fields map[string]any) error {
	var row document
	err := tx.Where("collection = ? AND doc_id = ?", collection, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(row.Data), &doc); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	for k, v := range fields {
		doc[k] = v
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	err = tx.Model(&document{}).
		Where("collection = ? AND doc_id = ?", collection, id).
		Update("data", string(data)).Error
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

// incrementTx adds delta to a numeric JSON field in a single statement so
// concurrent increments cannot lose updates. An absent document is created
// with only the incremented field, mirroring a set-with-merge.
func incrementTx(tx *gorm.DB, collection, id, field string, delta int) error {
	var err error
	switch tx.Dialector.Name() {
	case "postgres":
		err = tx.Exec(`
			INSERT INTO documents (collection, doc_id, data)
			VALUES (?, ?, jsonb_build_object(?::text, ?::numeric)::text)
			ON CONFLICT (collection, doc_id) DO UPDATE SET
				data = jsonb_set(
					documents.data::jsonb,
					ARRAY[?::text],
					to_jsonb(COALESCE((documents.data::jsonb ->> ?)::numeric, 0) + ?::numeric)
				)::text`,
			collection, id, field, delta, field, field, delta).Error
	case "sqlite":
		path := "$." + field
		err = tx.Exec(`
			INSERT INTO documents (collection, doc_id, data)
			VALUES (?, ?, json_object(?, ?))
			ON CONFLICT (collection, doc_id) DO UPDATE SET
				data = json_set(documents.data, ?, COALESCE(json_extract(documents.data, ?), 0) + ?)`,
			collection, id, field, delta, path, path, delta).Error
	default:
		err = fmt.Errorf("dialect %q does not support atomic increments", tx.Dialector.Name())
	}
	if err != nil {
		return fmt.Errorf("increment %s/%s.%s: %w", collection, id, field, err)
	}
	return nil
}
