package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/elimuhq/elimu/core"
)

type Course struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Category    string    `json:"category" bson:"category"`
	CreatedBy   string    `json:"created_by" bson:"created_by"` // admin ID
	CreatedAt   time.Time `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"` // UTC
}

// LiveSession is a scheduled class slot. MeetingURL points at a third-party
// video room embedded by the frontend; there is no realtime transport here.
type LiveSession struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	CourseID    string    `json:"course_id" bson:"course_id"`
	Title       string    `json:"title" bson:"title"`
	StartsAt    time.Time `json:"starts_at" bson:"starts_at"` // UTC
	DurationMin int       `json:"duration_min" bson:"duration_min"`
	MeetingURL  string    `json:"meeting_url" bson:"meeting_url"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Category = core.CleanString(nc.Category)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanString(uc.Title)
	uc.Description = core.CleanString(uc.Description)
	uc.Category = core.CleanString(uc.Category)
	return validate.Struct(uc)
}

// NewLiveSession contains information needed to schedule a new LiveSession.
type NewLiveSession struct {
	CourseID    string    `json:"course_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	DurationMin int       `json:"duration_min" validate:"required,min=1"`
	MeetingURL  string    `json:"meeting_url" validate:"required,url"`
}

func (ns *NewLiveSession) Validate(validate *validator.Validate) error {
	ns.Title = core.CleanString(ns.Title)
	ns.MeetingURL = core.CleanString(ns.MeetingURL)
	return validate.Struct(ns)
}
