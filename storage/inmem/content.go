package inmem

import (
	"context"

	"github.com/google/uuid"

	"github.com/elimuhq/elimu/core/content"
)

type resourceRepository struct {
	db *DB
}

func NewResourceRepository(db *DB) content.ResourceRepository {
	return &resourceRepository{db: db}
}

func (repo *resourceRepository) CreateResource(_ context.Context, res content.Resource) (content.Resource, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	res.ID = uuid.New().String()
	repo.db.files[res.ID] = &res
	return res, nil
}

func (repo *resourceRepository) QueryResourcesByCourse(_ context.Context, courseID string) ([]content.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	resources := make([]content.Resource, 0)
	for _, res := range repo.db.files {
		if res.CourseID == courseID {
			resources = append(resources, *res)
		}
	}
	return resources, nil
}

func (repo *resourceRepository) GetResourceByID(_ context.Context, id string) (content.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if res, ok := repo.db.files[id]; ok {
		return *res, nil
	}
	return content.Resource{}, content.ErrResourceNotFound
}

func (repo *resourceRepository) DeleteResource(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.files, id)
	return nil
}

type galleryRepository struct {
	db *DB
}

func NewGalleryRepository(db *DB) content.GalleryRepository {
	return &galleryRepository{db: db}
}

func (repo *galleryRepository) CreateImage(_ context.Context, img content.GalleryImage) (content.GalleryImage, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	img.ID = uuid.New().String()
	repo.db.images[img.ID] = &img
	return img, nil
}

func (repo *galleryRepository) QueryAllImages(_ context.Context) ([]content.GalleryImage, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	images := make([]content.GalleryImage, 0, len(repo.db.images))
	for _, img := range repo.db.images {
		images = append(images, *img)
	}
	return images, nil
}

func (repo *galleryRepository) GetImageByID(_ context.Context, id string) (content.GalleryImage, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if img, ok := repo.db.images[id]; ok {
		return *img, nil
	}
	return content.GalleryImage{}, content.ErrImageNotFound
}

func (repo *galleryRepository) DeleteImage(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.images, id)
	return nil
}
