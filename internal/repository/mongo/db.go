// Package mongo implements the repository interfaces on MongoDB. Documents
// keep numeric ids, allocated from a counters collection, so both backends
// expose the same API.
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"mjnutrafit/coaching-api/internal/repository"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

const (
	usersCollection    = "users"
	plansCollection    = "plans"
	progressCollection = "progress_logs"
	feedbackCollection = "feedbacks"
	countersCollection = "counters"
)

// ConnectDB establishes a connection to MongoDB and verifies it with a ping.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The initial connect can succeed while the server is unresponsive.
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = DisconnectDB(client)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// New bundles mongo-backed repositories sharing db. Close disconnects client.
func New(client *mongo.Client, db *mongo.Database, log *logrus.Logger) *repository.Store {
	ids := &sequence{collection: db.Collection(countersCollection)}
	users := &userRepository{collection: db.Collection(usersCollection), ids: ids}
	plans := &planRepository{collection: db.Collection(plansCollection), ids: ids, users: users}
	feedback := &feedbackRepository{collection: db.Collection(feedbackCollection), ids: ids, users: users}
	progress := &progressRepository{
		collection: db.Collection(progressCollection),
		ids:        ids,
		users:      users,
		plans:      plans,
		feedback:   feedback,
	}
	return &repository.Store{
		Users:    users,
		Plans:    plans,
		Progress: progress,
		Feedback: feedback,
		Reports:  &reportRepository{users: users, plans: plans, progress: progress},
		Migrate: func(ctx context.Context) error {
			return EnsureIndexes(ctx, db, log)
		},
		Close: func() error {
			return DisconnectDB(client)
		},
	}
}

// EnsureIndexes creates the indexes every collection relies on. Failures are
// logged per collection and the first one is returned.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *logrus.Logger) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}}},
		},
		plansCollection: {
			{Keys: bson.D{{Key: "coachId", Value: 1}, {Key: "clientId", Value: 1}}},
			{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "isActive", Value: 1}}},
		},
		progressCollection: {
			{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "weekStartDate", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		feedbackCollection: {
			{Keys: bson.D{{Key: "progressLogId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	var firstErr error
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			if log != nil {
				log.WithError(err).WithField("collection", name).Warn("failed to create indexes")
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// sequence hands out monotonically increasing ids per collection.
type sequence struct {
	collection *mongo.Collection
}

func (s *sequence) next(ctx context.Context, name string) (uint, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return uint(doc.Seq), nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicateKey
	}
	return err
}

// findAll runs filter and decodes every document into out.
func findAll(ctx context.Context, coll *mongo.Collection, filter any, out any, opts ...*options.FindOptions) error {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, out); err != nil {
		return err
	}
	return cursor.Err()
}

func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}, {Key: "_id", Value: -1}})
}
