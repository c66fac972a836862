package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Config holds the connection settings for the postgres-backed store.
type Config struct {
	User     string `env:"USER"`
	Host     string `env:"HOST"`
	Port     string `env:"PORT"`
	Password string `env:"PASSWORD"`
	Database string `env:"DBNAME"`
}

type documentRow struct {
	Collection string `gorm:"column:collection;primaryKey"`
	ID         string `gorm:"column:id;primaryKey"`
	Data       []byte `gorm:"column:data"`
}

func (documentRow) TableName() string { return "documents" }

// GormStore persists documents as (collection, id, json) rows. Postgres in
// production, sqlite in unit tests; predicates are evaluated in Go on the
// decoded documents so both dialects behave identically.
// TODO: push equality filters down as jsonb operators on the postgres dialect.
type GormStore struct {
	db *gorm.DB

	// serializes InsertUnique's check-then-insert within this process; the
	// partial unique indexes from the migration cover the cross-process case
	// for usernames and the single admin record.
	insertMu sync.Mutex
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// OpenPostgres dials postgres and returns a gorm handle for NewGormStore.
func OpenPostgres(config Config, withDebug bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable", config.Host, config.User, config.Password, config.Database, config.Port)),
		&gorm.Config{
			NamingStrategy: schema.NamingStrategy{
				SingularTable: true,
			},
			TranslateError: true,
		})
	if err != nil {
		return nil, err
	}

	if withDebug {
		db = db.Debug()
	}
	return db, nil
}

// AutoMigrate creates the documents table on dialects without a migration
// runner, such as the sqlite handles used in tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&documentRow{})
}

func (s *GormStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	docs, err := s.loadCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if matchDocument(doc, filter) {
			return doc, nil
		}
	}
	return nil, ErrNoDocument
}

func (s *GormStore) FindMany(ctx context.Context, collection string, filter Filter, opts *FindOptions) ([]Document, error) {
	docs, err := s.loadCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	var out []Document
	for _, doc := range docs {
		if filter == nil || matchDocument(doc, filter) {
			out = append(out, doc)
		}
	}
	if opts != nil && opts.SortField != "" {
		sortDocuments(out, opts.SortField, opts.SortDesc)
	}
	return out, nil
}

func (s *GormStore) InsertOne(ctx context.Context, collection string, doc Document) (string, error) {
	return s.insert(s.db.WithContext(ctx), collection, doc)
}

func (s *GormStore) InsertUnique(ctx context.Context, collection string, doc Document, field string) (string, error) {
	s.insertMu.Lock()
	defer s.insertMu.Unlock()

	var id string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.loadCollectionTx(tx, collection)
		if err != nil {
			return err
		}
		for _, d := range existing {
			if equalValues(d[field], doc[field]) {
				return ErrConflict
			}
		}
		id, err = s.insert(tx, collection, doc)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *GormStore) insert(tx *gorm.DB, collection string, doc Document) (string, error) {
	stored := cloneDocument(doc)
	id, ok := stored[IDField].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		stored[IDField] = id
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return "", errors.Wrap(err, "encode document")
	}
	row := documentRow{Collection: collection, ID: id, Data: data}
	if err := tx.Create(&row).Error; err != nil {
		// Unique-index violations from the migration's partial indexes
		// (username, single admin) surface here when another process wins
		// the race that the in-process mutex cannot see.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", ErrConflict
		}
		return "", err
	}
	return id, nil
}

func (s *GormStore) UpdateOne(ctx context.Context, collection string, filter Filter, set Document) (int64, error) {
	docs, err := s.loadCollection(ctx, collection)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		if !matchDocument(doc, filter) {
			continue
		}
		for k, v := range set {
			doc[k] = v
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return 0, errors.Wrap(err, "encode document")
		}
		id, _ := doc[IDField].(string)
		err = s.db.WithContext(ctx).
			Model(&documentRow{}).
			Where("collection = ? AND id = ?", collection, id).
			Update("data", data).
			Error
		if err != nil {
			return 0, err
		}
		return 1, nil
	}
	return 0, nil
}

func (s *GormStore) DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error) {
	docs, err := s.loadCollection(ctx, collection)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		if !matchDocument(doc, filter) {
			continue
		}
		id, _ := doc[IDField].(string)
		result := s.db.WithContext(ctx).
			Where("collection = ? AND id = ?", collection, id).
			Delete(&documentRow{})
		if result.Error != nil {
			return 0, result.Error
		}
		return result.RowsAffected, nil
	}
	return 0, nil
}

func (s *GormStore) Aggregate(ctx context.Context, collection string, agg Aggregation) ([]GroupResult, error) {
	docs, err := s.loadCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	return runAggregation(docs, agg), nil
}

func (s *GormStore) loadCollection(ctx context.Context, collection string) ([]Document, error) {
	return s.loadCollectionTx(s.db.WithContext(ctx), collection)
}

func (s *GormStore) loadCollectionTx(tx *gorm.DB, collection string) ([]Document, error) {
	var rows []documentRow
	if err := tx.Where("collection = ?", collection).Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		var doc Document
		if err := json.Unmarshal(row.Data, &doc); err != nil {
			return nil, errors.Wrapf(err, "decode document %s/%s", collection, row.ID)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
