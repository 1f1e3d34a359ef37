package screenersource

import (
	"context"
	"errors"
	"time"

	"screener-service/internal/app/contracts"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// screenerDocument stores a screener definition as an embedded document.
type screenerDocument struct {
	ScreenerType string    `bson:"screener_type"`
	Definition   bson.Raw  `bson:"definition"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type mongoSource struct {
	Collection *mongo.Collection
}

func NewMongoSource(db *mongo.Client, dbName, collection string) contracts.ScreenerSource {
	return &mongoSource{
		Collection: db.Database(dbName).Collection(collection),
	}
}

func (s *mongoSource) Name() string {
	return constvars.ScreenerSourceMongo
}

func (s *mongoSource) Fetch(ctx context.Context, screenerType string) ([]byte, error) {
	var doc screenerDocument
	err := s.Collection.FindOne(ctx, bson.M{"screener_type": screenerType}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(screenerType, s.Name())
	}
	if err != nil {
		return nil, exceptions.ErrMongoDBFindScreener(err, screenerType)
	}

	raw, err := bson.MarshalExtJSON(doc.Definition, false, false)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindScreener(err, screenerType)
	}
	return raw, nil
}

func (s *mongoSource) List(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"screener_type": 1}).SetSort(bson.M{"screener_type": 1})
	cursor, err := s.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindScreener(err, "*")
	}
	var docs []screenerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, exceptions.ErrMongoDBFindScreener(err, "*")
	}
	types := make([]string, 0, len(docs))
	for _, d := range docs {
		types = append(types, d.ScreenerType)
	}
	return types, nil
}
