package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elimuhq/elimu/core/course"
)

type courseRepository struct {
	col *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) course.CourseRepository {
	return &courseRepository{col: db.Collection(colCourses)}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = primitive.NewObjectID().Hex()
	if _, err := repo.col.InsertOne(ctx, crs); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	cur, err := repo.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	defer cur.Close(ctx)

	courses := make([]course.Course, 0)
	if err = cur.All(ctx, &courses); err != nil {
		return nil, errors.Wrap(err, "decoding courses")
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var crs course.Course
	if err := repo.col.FindOne(ctx, bson.M{"_id": id}).Decode(&crs); err != nil {
		if err == mongo.ErrNoDocuments {
			return course.Course{}, course.ErrCourseNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course by ID")
	}
	return crs, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	update := bson.M{"$set": bson.M{
		"title":       crs.Title,
		"description": crs.Description,
		"category":    crs.Category,
		"updated_at":  crs.UpdatedAt,
	}}
	res := repo.col.FindOneAndUpdate(
		ctx, bson.M{"_id": crs.ID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated course.Course
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return course.Course{}, course.ErrCourseNotFound
		}
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	return updated, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	if _, err := repo.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

type sessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) course.SessionRepository {
	return &sessionRepository{col: db.Collection(colSessions)}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, sess course.LiveSession) (course.LiveSession, error) {
	sess.ID = primitive.NewObjectID().Hex()
	if _, err := repo.col.InsertOne(ctx, sess); err != nil {
		return course.LiveSession{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

func (repo *sessionRepository) QueryAllSessions(ctx context.Context) ([]course.LiveSession, error) {
	return repo.query(ctx, bson.M{})
}

func (repo *sessionRepository) QuerySessionsByCourse(ctx context.Context, courseID string) ([]course.LiveSession, error) {
	return repo.query(ctx, bson.M{"course_id": courseID})
}

func (repo *sessionRepository) query(ctx context.Context, filter bson.M) ([]course.LiveSession, error) {
	cur, err := repo.col.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	defer cur.Close(ctx)

	sessions := make([]course.LiveSession, 0)
	if err = cur.All(ctx, &sessions); err != nil {
		return nil, errors.Wrap(err, "decoding sessions")
	}
	return sessions, nil
}

func (repo *sessionRepository) GetSessionByID(ctx context.Context, id string) (course.LiveSession, error) {
	var sess course.LiveSession
	if err := repo.col.FindOne(ctx, bson.M{"_id": id}).Decode(&sess); err != nil {
		if err == mongo.ErrNoDocuments {
			return course.LiveSession{}, course.ErrSessionNotFound
		}
		return course.LiveSession{}, errors.Wrap(err, "finding session by ID")
	}
	return sess, nil
}

func (repo *sessionRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := repo.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}
