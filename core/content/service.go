package content

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"

	"github.com/elimuhq/elimu/core/course"
	"github.com/elimuhq/elimu/core/identity"
)

var (
	// errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrImageNotFound    = errors.New("image not found")
	ErrNotEnrolled      = errors.New("an approved enrollment is required to access this course's resources")
)

type (
	ResourceRepository interface {
		CreateResource(ctx context.Context, r Resource) (Resource, error)
		QueryResourcesByCourse(ctx context.Context, courseID string) ([]Resource, error)
		GetResourceByID(ctx context.Context, id string) (Resource, error)
		DeleteResource(ctx context.Context, id string) error
	}

	GalleryRepository interface {
		CreateImage(ctx context.Context, img GalleryImage) (GalleryImage, error)
		QueryAllImages(ctx context.Context) ([]GalleryImage, error)
		GetImageByID(ctx context.Context, id string) (GalleryImage, error)
		DeleteImage(ctx context.Context, id string) error
	}

	Service struct {
		resources ResourceRepository
		gallery   GalleryRepository
		courses   course.CourseRepository
		students  identity.StudentRepository
	}
)

func NewService(resources ResourceRepository, gallery GalleryRepository, courses course.CourseRepository, students identity.StudentRepository) *Service {
	return &Service{
		resources: resources,
		gallery:   gallery,
		courses:   courses,
		students:  students,
	}
}

// QueryCourseResources lists a course's resources for the given identity.
// Non-admins need an enrollment entry whose status is Approved; Pending and
// Denied entries grant nothing.
func (svc *Service) QueryCourseResources(ctx context.Context, ident identity.Identity, courseID string) ([]Resource, error) {
	if _, err := svc.courses.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}

	if !ident.IsAdmin() {
		std, err := svc.students.GetStudentByID(ctx, ident.ID)
		if err != nil {
			return nil, err
		}
		var approved bool
		for _, e := range std.Enrollments {
			if e.CourseID == courseID && e.Approved() {
				approved = true
				break
			}
		}
		if !approved {
			return nil, ErrNotEnrolled
		}
	}
	return svc.resources.QueryResourcesByCourse(ctx, courseID)
}

func (svc *Service) AddResource(ctx context.Context, nr NewResource, uploadedBy string) (Resource, error) {
	if _, err := svc.courses.GetCourseByID(ctx, nr.CourseID); err != nil {
		return Resource{}, err
	}
	return svc.resources.CreateResource(ctx, Resource{
		CourseID:   nr.CourseID,
		Name:       nr.Name,
		MIME:       nr.MIME,
		Data:       base64.StdEncoding.EncodeToString(nr.Data),
		UploadedBy: uploadedBy,
		CreatedAt:  time.Now().UTC(),
	})
}

func (svc *Service) DeleteResource(ctx context.Context, id string) error {
	if _, err := svc.resources.GetResourceByID(ctx, id); err != nil {
		return err
	}
	return svc.resources.DeleteResource(ctx, id)
}

// Gallery

func (svc *Service) QueryGallery(ctx context.Context) ([]GalleryImage, error) {
	return svc.gallery.QueryAllImages(ctx)
}

func (svc *Service) AddImage(ctx context.Context, ni NewGalleryImage) (GalleryImage, error) {
	return svc.gallery.CreateImage(ctx, GalleryImage{
		Title:     ni.Title,
		MIME:      ni.MIME,
		Data:      base64.StdEncoding.EncodeToString(ni.Data),
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) DeleteImage(ctx context.Context, id string) error {
	if _, err := svc.gallery.GetImageByID(ctx, id); err != nil {
		return err
	}
	return svc.gallery.DeleteImage(ctx, id)
}
