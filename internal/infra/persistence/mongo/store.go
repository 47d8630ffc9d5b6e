// Package mongo persists saves as one document per slot in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"quantumassembler/internal/infra/persistence/snapshot"
	"quantumassembler/pkg/domain"
)

var _ domain.SaveStore = (*Store)(nil)

const (
	defaultDatabase   = "quantum_assembler"
	defaultCollection = "saves"
	defaultSlot       = "default"
	connectTimeout    = 3 * time.Second
)

// Config selects the server and the document a store reads and writes.
type Config struct {
	URI      string
	Database string
	Slot     string
}

func (c Config) withDefaults() Config {
	if c.Database == "" {
		c.Database = defaultDatabase
	}
	if c.Slot == "" {
		c.Slot = defaultSlot
	}
	return c
}

// saveDoc holds every bucket payload of one save slot.
type saveDoc struct {
	ID      string            `bson:"_id"`
	Buckets map[string][]byte `bson:"buckets"`
	Updated time.Time         `bson:"updated_at"`
}

// Store is a MongoDB-backed save store.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	slot   string
}

// Open connects to cfg.URI and pings the server before returning.
func Open(ctx context.Context, cfg Config, l *zap.Logger) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongodb uri is empty")
	}
	if l == nil {
		l = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	l.Info("open mongodb success", zap.String("database", cfg.Database), zap.String("slot", cfg.Slot))
	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(defaultCollection),
		slot:   cfg.Slot,
	}, nil
}

// Load fetches the slot document. A missing document is not an error.
func (s *Store) Load(ctx context.Context) (domain.SaveState, bool, error) {
	var doc saveDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.slot}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.SaveState{}, false, nil
	}
	if err != nil {
		return domain.SaveState{}, false, fmt.Errorf("find save %s: %w", s.slot, err)
	}
	return snapshot.Decode(doc.Buckets)
}

// Save replaces the slot document, creating it when absent.
func (s *Store) Save(ctx context.Context, state domain.SaveState) error {
	doc, err := newSaveDoc(s.slot, state)
	if err != nil {
		return err
	}
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("replace save %s: %w", s.slot, err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func newSaveDoc(slot string, state domain.SaveState) (saveDoc, error) {
	payloads, err := snapshot.Encode(state)
	if err != nil {
		return saveDoc{}, err
	}
	return saveDoc{ID: slot, Buckets: payloads, Updated: state.SavedAt}, nil
}
