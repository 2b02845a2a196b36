package content

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/elimuhq/elimu/core"
)

// Resource is a distributable course file. Data holds the base64-encoded
// payload: uploads arrive as multipart form files and are stored inline in the
// document store rather than on disk.
type Resource struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	CourseID   string    `json:"course_id" bson:"course_id"`
	Name       string    `json:"name" bson:"name"`
	MIME       string    `json:"mime" bson:"mime"`
	Data       string    `json:"data" bson:"data"` // base64
	UploadedBy string    `json:"uploaded_by" bson:"uploaded_by"` // admin ID
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`   // UTC
}

type GalleryImage struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Title     string    `json:"title" bson:"title"`
	MIME      string    `json:"mime" bson:"mime"`
	Data      string    `json:"data" bson:"data"` // base64
	CreatedAt time.Time `json:"created_at" bson:"created_at"` // UTC
}

// NewResource contains information needed to store a new Resource.
// Data carries the raw file bytes; the service base64-encodes them.
type NewResource struct {
	CourseID string `json:"course_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	MIME     string `json:"mime" validate:"required"`
	Data     []byte `json:"-" validate:"required"`
}

func (nr *NewResource) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	return validate.Struct(nr)
}

// NewGalleryImage contains information needed to store a new GalleryImage.
type NewGalleryImage struct {
	Title string `json:"title" validate:"required"`
	MIME  string `json:"mime" validate:"required"`
	Data  []byte `json:"-" validate:"required"`
}

func (ni *NewGalleryImage) Validate(validate *validator.Validate) error {
	ni.Title = core.CleanString(ni.Title)
	return validate.Struct(ni)
}
