package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elimuhq/elimu/core/identity"
)

type studentRepository struct {
	col *mongo.Collection
}

func NewStudentRepository(db *mongo.Database) identity.StudentRepository {
	return &studentRepository{col: db.Collection(colStudents)}
}

func (repo *studentRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	err := repo.col.FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		return identity.ErrEmailExists
	}
	if err == mongo.ErrNoDocuments {
		return nil
	}
	return errors.Wrap(err, "checking student email")
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std identity.Student) (identity.Student, error) {
	std.ID = primitive.NewObjectID().Hex()
	if _, err := repo.col.InsertOne(ctx, std); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return identity.Student{}, identity.ErrEmailExists
		}
		return identity.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (identity.Student, error) {
	var std identity.Student
	if err := repo.col.FindOne(ctx, bson.M{"_id": id}).Decode(&std); err != nil {
		if err == mongo.ErrNoDocuments {
			return identity.Student{}, identity.ErrNotFound
		}
		return identity.Student{}, errors.Wrap(err, "finding student by ID")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByEmail(ctx context.Context, email string) (identity.Student, error) {
	var std identity.Student
	if err := repo.col.FindOne(ctx, bson.M{"email": email}).Decode(&std); err != nil {
		if err == mongo.ErrNoDocuments {
			return identity.Student{}, identity.ErrNotFound
		}
		return identity.Student{}, errors.Wrap(err, "finding student by email")
	}
	return std, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std identity.Student) (identity.Student, error) {
	// the hash is persisted verbatim; the service decides when to re-derive it
	update := bson.M{"$set": bson.M{
		"full_name":     std.FullName,
		"password_hash": std.PasswordHash,
		"last_login":    std.LastLogin,
	}}
	res := repo.col.FindOneAndUpdate(
		ctx, bson.M{"_id": std.ID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated identity.Student
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return identity.Student{}, identity.ErrNotFound
		}
		return identity.Student{}, errors.Wrap(err, "updating student")
	}
	return updated, nil
}

func (repo *studentRepository) AppendEnrollment(ctx context.Context, studentID string, e identity.Enrollment) (identity.Student, error) {
	res := repo.col.FindOneAndUpdate(
		ctx, bson.M{"_id": studentID},
		bson.M{"$push": bson.M{"enrollments": e}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated identity.Student
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return identity.Student{}, identity.ErrNotFound
		}
		return identity.Student{}, errors.Wrap(err, "appending enrollment")
	}
	return updated, nil
}

type adminRepository struct {
	col *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) identity.AdminRepository {
	return &adminRepository{col: db.Collection(colAdmins)}
}

func (repo *adminRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	err := repo.col.FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		return identity.ErrEmailExists
	}
	if err == mongo.ErrNoDocuments {
		return nil
	}
	return errors.Wrap(err, "checking admin email")
}

func (repo *adminRepository) CreateAdmin(ctx context.Context, adm identity.Admin) (identity.Admin, error) {
	adm.ID = primitive.NewObjectID().Hex()
	if _, err := repo.col.InsertOne(ctx, adm); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return identity.Admin{}, identity.ErrEmailExists
		}
		return identity.Admin{}, errors.Wrap(err, "inserting admin")
	}
	return adm, nil
}

func (repo *adminRepository) QueryAllAdmins(ctx context.Context) ([]identity.Admin, error) {
	cur, err := repo.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "querying admins")
	}
	defer cur.Close(ctx)

	admins := make([]identity.Admin, 0)
	if err = cur.All(ctx, &admins); err != nil {
		return nil, errors.Wrap(err, "decoding admins")
	}
	return admins, nil
}

func (repo *adminRepository) GetAdminByID(ctx context.Context, id string) (identity.Admin, error) {
	var adm identity.Admin
	if err := repo.col.FindOne(ctx, bson.M{"_id": id}).Decode(&adm); err != nil {
		if err == mongo.ErrNoDocuments {
			return identity.Admin{}, identity.ErrNotFound
		}
		return identity.Admin{}, errors.Wrap(err, "finding admin by ID")
	}
	return adm, nil
}

func (repo *adminRepository) GetAdminByEmail(ctx context.Context, email string) (identity.Admin, error) {
	var adm identity.Admin
	if err := repo.col.FindOne(ctx, bson.M{"email": email}).Decode(&adm); err != nil {
		if err == mongo.ErrNoDocuments {
			return identity.Admin{}, identity.ErrNotFound
		}
		return identity.Admin{}, errors.Wrap(err, "finding admin by email")
	}
	return adm, nil
}

func (repo *adminRepository) UpdateAdmin(ctx context.Context, adm identity.Admin) (identity.Admin, error) {
	update := bson.M{"$set": bson.M{
		"full_name":     adm.FullName,
		"password_hash": adm.PasswordHash,
		"role":          adm.Role,
		"last_login":    adm.LastLogin,
	}}
	res := repo.col.FindOneAndUpdate(
		ctx, bson.M{"_id": adm.ID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated identity.Admin
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return identity.Admin{}, identity.ErrNotFound
		}
		return identity.Admin{}, errors.Wrap(err, "updating admin")
	}
	return updated, nil
}

func (repo *adminRepository) AppendCourseRef(ctx context.Context, adminID, courseID string) error {
	res, err := repo.col.UpdateOne(
		ctx, bson.M{"_id": adminID},
		bson.M{"$push": bson.M{"course_ids": courseID}},
	)
	if err != nil {
		return errors.Wrap(err, "appending course ref")
	}
	if res.MatchedCount == 0 {
		return identity.ErrNotFound
	}
	return nil
}

func (repo *adminRepository) DeleteAdmin(ctx context.Context, id string) error {
	if _, err := repo.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(err, "deleting admin")
	}
	return nil
}
