package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayusman/mudra/internal/event"
)

// eventsCollection is the single collection holding recognition events.
const eventsCollection = "events"

type eventDoc struct {
	ID         string    `bson:"_id"`
	Gesture    string    `bson:"gesture"`
	Expression string    `bson:"expression"`
	Confidence float64   `bson:"confidence"`
	Timestamp  time.Time `bson:"timestamp"`
}

func (d eventDoc) toEvent() event.Event {
	return event.Event{
		ID:         d.ID,
		Gesture:    d.Gesture,
		Expression: d.Expression,
		Confidence: d.Confidence,
		Timestamp:  d.Timestamp.UTC(),
	}
}

// mongoBackend implements Backend on a MongoDB collection.
type mongoBackend struct {
	client *mongo.Client
	events *mongo.Collection
}

// NewMongoBackend connects a MongoDB backend. Connection establishment is
// lazy in the driver, so an unreachable server does not fail here; the
// resilient store's initial probe decides the starting state.
func NewMongoBackend(ctx context.Context, uri, database string) (Backend, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	return &mongoBackend{
		client: client,
		events: client.Database(database).Collection(eventsCollection),
	}, nil
}

func (b *mongoBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, nil)
}

func (b *mongoBackend) Insert(ctx context.Context, ev event.Event) error {
	doc := eventDoc{
		ID:         ev.ID,
		Gesture:    ev.Gesture,
		Expression: ev.Expression,
		Confidence: ev.Confidence,
		Timestamp:  ev.Timestamp,
	}
	_, err := b.events.InsertOne(ctx, doc)
	return err
}

func (b *mongoBackend) Find(ctx context.Context, q Query) ([]event.Event, error) {
	filter := bson.M{}
	if q.Gesture != "" {
		filter["gesture"] = q.Gesture
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))

	cursor, err := b.events.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []event.Event
	for cursor.Next(ctx) {
		var doc eventDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		events = append(events, doc.toEvent())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (b *mongoBackend) FindByID(ctx context.Context, id string) (event.Event, error) {
	var doc eventDoc
	err := b.events.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return event.Event{}, ErrNotFound
		}
		return event.Event{}, err
	}
	return doc.toEvent(), nil
}

func (b *mongoBackend) DeleteAll(ctx context.Context) (int64, error) {
	result, err := b.events.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (b *mongoBackend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}
