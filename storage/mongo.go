package storage

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/models"
)

const mongoConnectTimeout = 10 * time.Second

type documentInserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// reportDocument is what lands in the collection. Artifact bodies stay out;
// only their names are recorded.
type reportDocument struct {
	Report    *models.PageReport `bson:"report"`
	Artifacts []artifactRef      `bson:"artifacts"`
	CreatedAt time.Time          `bson:"created_at"`
}

type artifactRef struct {
	Name        string `json:"name" bson:"name"`
	ContentType string `json:"contentType" bson:"content_type"`
	Size        int    `json:"size" bson:"size"`
}

// MongoStore records each report in a MongoDB collection
type MongoStore struct {
	client *mongo.Client
	coll   documentInserter
	now    func() time.Time
}

// NewMongoStore connects and pings before returning
func NewMongoStore(ctx context.Context, cfg config.MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, eris.New("mongo: uri is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, eris.Wrap(err, "mongo: connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, eris.Wrap(err, "mongo: ping")
	}

	zap.L().Info("connected to mongodb", zap.String("database", cfg.Database), zap.String("collection", cfg.Collection))
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		now:    time.Now,
	}, nil
}

func (s *MongoStore) Name() string { return "mongo" }

func (s *MongoStore) Put(ctx context.Context, report *models.PageReport, artifacts []Artifact) error {
	refs := make([]artifactRef, len(artifacts))
	for i, a := range artifacts {
		refs[i] = artifactRef{Name: a.Name, ContentType: a.ContentType, Size: len(a.Data)}
	}

	res, err := s.coll.InsertOne(ctx, reportDocument{
		Report:    report,
		Artifacts: refs,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return eris.Wrap(err, "mongo: insert report")
	}
	zap.L().Info("stored report", zap.Any("id", res.InsertedID))
	return nil
}

// Close disconnects the client
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
