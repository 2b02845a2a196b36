package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elimuhq/elimu/core"
)

// Collection names.
const (
	colStudents  = "students"
	colAdmins    = "admins"
	colCourses   = "courses"
	colSessions  = "sessions"
	colResources = "resources"
	colGallery   = "gallery"
)

// Open connects to the configured MongoDB deployment and pings it.
func Open(conf *core.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Mongo.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Mongo.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "mongo ping timeout")
	}
	return client.Database(conf.Mongo.Name), nil
}

// EnsureIndexes creates the indexes the application relies on.
// Email uniqueness is enforced here, per collection, not in application code.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	uniqueEmail := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection(colStudents).Indexes().CreateOne(ctx, uniqueEmail); err != nil {
		return errors.Wrap(err, "creating students email index")
	}
	if _, err := db.Collection(colAdmins).Indexes().CreateOne(ctx, uniqueEmail); err != nil {
		return errors.Wrap(err, "creating admins email index")
	}
	courseRef := mongo.IndexModel{Keys: bson.D{{Key: "course_id", Value: 1}}}
	if _, err := db.Collection(colSessions).Indexes().CreateOne(ctx, courseRef); err != nil {
		return errors.Wrap(err, "creating sessions course index")
	}
	if _, err := db.Collection(colResources).Indexes().CreateOne(ctx, courseRef); err != nil {
		return errors.Wrap(err, "creating resources course index")
	}
	return nil
}
