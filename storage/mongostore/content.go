package mongostore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/elimuhq/elimu/core/content"
)

type resourceRepository struct {
	col *mongo.Collection
}

func NewResourceRepository(db *mongo.Database) content.ResourceRepository {
	return &resourceRepository{col: db.Collection(colResources)}
}

func (repo *resourceRepository) CreateResource(ctx context.Context, res content.Resource) (content.Resource, error) {
	res.ID = primitive.NewObjectID().Hex()
	if _, err := repo.col.InsertOne(ctx, res); err != nil {
		return content.Resource{}, errors.Wrap(err, "inserting resource")
	}
	return res, nil
}

func (repo *resourceRepository) QueryResourcesByCourse(ctx context.Context, courseID string) ([]content.Resource, error) {
	cur, err := repo.col.Find(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}
	defer cur.Close(ctx)

	resources := make([]content.Resource, 0)
	if err = cur.All(ctx, &resources); err != nil {
		return nil, errors.Wrap(err, "decoding resources")
	}
	return resources, nil
}

func (repo *resourceRepository) GetResourceByID(ctx context.Context, id string) (content.Resource, error) {
	var res content.Resource
	if err := repo.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res); err != nil {
		if err == mongo.ErrNoDocuments {
			return content.Resource{}, content.ErrResourceNotFound
		}
		return content.Resource{}, errors.Wrap(err, "finding resource by ID")
	}
	return res, nil
}

func (repo *resourceRepository) DeleteResource(ctx context.Context, id string) error {
	if _, err := repo.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	return nil
}

type galleryRepository struct {
	col *mongo.Collection
}

func NewGalleryRepository(db *mongo.Database) content.GalleryRepository {
	return &galleryRepository{col: db.Collection(colGallery)}
}

func (repo *galleryRepository) CreateImage(ctx context.Context, img content.GalleryImage) (content.GalleryImage, error) {
	img.ID = primitive.NewObjectID().Hex()
	if _, err := repo.col.InsertOne(ctx, img); err != nil {
		return content.GalleryImage{}, errors.Wrap(err, "inserting image")
	}
	return img, nil
}

func (repo *galleryRepository) QueryAllImages(ctx context.Context) ([]content.GalleryImage, error) {
	cur, err := repo.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "querying gallery")
	}
	defer cur.Close(ctx)

	images := make([]content.GalleryImage, 0)
	if err = cur.All(ctx, &images); err != nil {
		return nil, errors.Wrap(err, "decoding gallery")
	}
	return images, nil
}

func (repo *galleryRepository) GetImageByID(ctx context.Context, id string) (content.GalleryImage, error) {
	var img content.GalleryImage
	if err := repo.col.FindOne(ctx, bson.M{"_id": id}).Decode(&img); err != nil {
		if err == mongo.ErrNoDocuments {
			return content.GalleryImage{}, content.ErrImageNotFound
		}
		return content.GalleryImage{}, errors.Wrap(err, "finding image by ID")
	}
	return img, nil
}

func (repo *galleryRepository) DeleteImage(ctx context.Context, id string) error {
	if _, err := repo.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(err, "deleting image")
	}
	return nil
}
