package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/elimuhq/elimu/core"
	"github.com/elimuhq/elimu/core/identity"
)

var (
	// errors
	ErrCourseNotFound  = errors.New("course not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
)

type (
	CourseRepository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error
	}

	SessionRepository interface {
		CreateSession(ctx context.Context, s LiveSession) (LiveSession, error)
		QueryAllSessions(ctx context.Context) ([]LiveSession, error)
		QuerySessionsByCourse(ctx context.Context, courseID string) ([]LiveSession, error)
		GetSessionByID(ctx context.Context, id string) (LiveSession, error)
		DeleteSession(ctx context.Context, id string) error
	}

	Service struct {
		courses  CourseRepository
		sessions SessionRepository
		students identity.StudentRepository
		admins   identity.AdminRepository
	}
)

func NewService(courses CourseRepository, sessions SessionRepository, students identity.StudentRepository, admins identity.AdminRepository) *Service {
	return &Service{
		courses:  courses,
		sessions: sessions,
		students: students,
		admins:   admins,
	}
}

// Create adds a course to the catalog and records it on the creating admin's
// course list. The two writes are separate single-document operations.
func (svc *Service) Create(ctx context.Context, nc NewCourse, createdBy string) (Course, error) {
	now := time.Now().UTC()
	crs, err := svc.courses.CreateCourse(ctx, Course{
		Title:       nc.Title,
		Description: nc.Description,
		Category:    nc.Category,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Course{}, err
	}
	if createdBy != "" {
		if err := svc.admins.AppendCourseRef(ctx, createdBy, crs.ID); err != nil {
			return Course{}, errors.Wrap(err, "recording course on admin")
		}
	}
	return crs, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.courses.QueryAllCourses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.courses.GetCourseByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.courses.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if uc.Title != "" {
		crs.Title = uc.Title
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	if uc.Category != "" {
		crs.Category = uc.Category
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.courses.UpdateCourse(ctx, crs)
}

// Delete removes the course only. Enrollment entries referencing it are left
// in place; readers must tolerate dangling course references.
func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.courses.GetCourseByID(ctx, id); err != nil {
		return err
	}
	return svc.courses.DeleteCourse(ctx, id)
}

// Enroll appends an Approved enrollment entry for the student.
//
// The course-exists check and the enrollment append are two independent
// round trips: a concurrent course deletion in between can leave a dangling
// entry behind. Accepted risk; single-document writes only.
func (svc *Service) Enroll(ctx context.Context, studentID, courseID string) ([]identity.Enrollment, error) {
	if _, err := svc.courses.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}

	std, err := svc.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	// match on course id only: an existing Pending/Denied entry still blocks
	// a second enrollment, it is never overwritten
	if std.EnrolledIn(courseID) {
		return nil, core.NewValidationError(ErrAlreadyEnrolled)
	}

	std, err = svc.students.AppendEnrollment(ctx, studentID, identity.Enrollment{
		CourseID:   courseID,
		Status:     identity.EnrollmentApproved,
		EnrolledAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "appending enrollment")
	}
	return std.Enrollments, nil
}

// Sessions

func (svc *Service) ScheduleSession(ctx context.Context, ns NewLiveSession) (LiveSession, error) {
	if _, err := svc.courses.GetCourseByID(ctx, ns.CourseID); err != nil {
		return LiveSession{}, err
	}
	return svc.sessions.CreateSession(ctx, LiveSession{
		CourseID:    ns.CourseID,
		Title:       ns.Title,
		StartsAt:    ns.StartsAt.UTC(),
		DurationMin: ns.DurationMin,
		MeetingURL:  ns.MeetingURL,
	})
}

func (svc *Service) QuerySessions(ctx context.Context, courseID string) ([]LiveSession, error) {
	if courseID != "" {
		return svc.sessions.QuerySessionsByCourse(ctx, courseID)
	}
	return svc.sessions.QueryAllSessions(ctx)
}

func (svc *Service) DeleteSession(ctx context.Context, id string) error {
	if _, err := svc.sessions.GetSessionByID(ctx, id); err != nil {
		return err
	}
	return svc.sessions.DeleteSession(ctx, id)
}
