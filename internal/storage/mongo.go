package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"torrentbot/pkg/logx"
)

const (
	defaultMongoDatabase   = "torrentbot"
	defaultMongoCollection = "settings"
)

type mongoStore struct {
	client  *mongo.Client
	col     *mongo.Collection
	key     string
	timeout time.Duration
	log     logx.Logger
}

// mongoDoc stores the JSON text as-is so arbitrary documents round-trip
// without BSON type coercion.
type mongoDoc struct {
	Doc       string `bson:"doc"`
	UpdatedAt int64  `bson:"updatedAt"`
}

func openMongo(ctx context.Context, cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("mongo uri is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultNetTimeout
	}
	dbName := strings.TrimSpace(cfg.Database)
	if dbName == "" {
		dbName = defaultMongoDatabase
	}
	colName := strings.TrimSpace(cfg.Collection)
	if colName == "" {
		colName = defaultMongoCollection
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.URL).SetTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &mongoStore{
		client:  client,
		col:     client.Database(dbName).Collection(colName),
		key:     cfg.Key,
		timeout: timeout,
		log:     log,
	}, nil
}

func (s *mongoStore) Exists(ctx context.Context) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"_id": s.key})
	if err != nil {
		return false, fmt.Errorf("mongo count: %w", err)
	}
	return n > 0, nil
}

func (s *mongoStore) Load(ctx context.Context) (Preferences, error) {
	var doc mongoDoc
	err := s.col.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	return validate([]byte(doc.Doc))
}

func (s *mongoStore) Save(ctx context.Context, p Preferences) error {
	data, err := normalize(p)
	if err != nil {
		return err
	}
	_, err = s.col.UpdateOne(
		ctx,
		bson.M{"_id": s.key},
		bson.M{"$set": mongoDoc{Doc: string(data), UpdatedAt: time.Now().UnixMilli()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo upsert: %w", err)
	}
	s.log.Debug("preferences saved", logx.Int("bytes", len(data)))
	return nil
}

func (s *mongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
