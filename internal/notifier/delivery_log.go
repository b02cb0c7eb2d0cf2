package notifier

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const deliveriesCollection = "deliveries"

// deliveryRetention bounds how long delivery records are kept.
const deliveryRetention = 90 * 24 * time.Hour

// Delivery is one attempted send.
type Delivery struct {
	Kind      string    `bson:"kind"`
	Recipient string    `bson:"recipient"`
	Subject   string    `bson:"subject"`
	Source    string    `bson:"source"`
	Success   bool      `bson:"success"`
	Error     string    `bson:"error,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// DeliveryLog records send attempts.
type DeliveryLog interface {
	Record(ctx context.Context, d Delivery) error
}

type nopLog struct{}

func (nopLog) Record(context.Context, Delivery) error { return nil }

// MongoLog stores deliveries in MongoDB with a TTL index on created_at.
type MongoLog struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoLog(ctx context.Context, uri, dbName string) (*MongoLog, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	coll := client.Database(dbName).Collection(deliveriesCollection)
	_, err = coll.Indexes().CreateOne(cctx, mongo.IndexModel{
		Keys:    bson.M{"created_at": 1},
		Options: options.Index().SetExpireAfterSeconds(int32(deliveryRetention.Seconds())),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("creating ttl index: %w", err)
	}
	return &MongoLog{client: client, coll: coll}, nil
}

func (l *MongoLog) Record(ctx context.Context, d Delivery) error {
	_, err := l.coll.InsertOne(ctx, d)
	return err
}

func (l *MongoLog) Close(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}
