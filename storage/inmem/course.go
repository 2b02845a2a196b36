package inmem

import (
	"context"

	"github.com/google/uuid"

	"github.com/elimuhq/elimu/core/course"
)

type courseRepository struct {
	db *DB
}

func NewCourseRepository(db *DB) course.CourseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(_ context.Context) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, *crs)
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrCourseNotFound
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrCourseNotFound
	}
	orig.Title = crs.Title
	orig.Description = crs.Description
	orig.Category = crs.Category
	orig.UpdatedAt = crs.UpdatedAt
	return *orig, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.courses, id)
	return nil
}

type sessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) course.SessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) CreateSession(_ context.Context, sess course.LiveSession) (course.LiveSession, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sess.ID = uuid.New().String()
	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *sessionRepository) QueryAllSessions(_ context.Context) ([]course.LiveSession, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sessions := make([]course.LiveSession, 0, len(repo.db.sessions))
	for _, sess := range repo.db.sessions {
		sessions = append(sessions, *sess)
	}
	return sessions, nil
}

func (repo *sessionRepository) QuerySessionsByCourse(_ context.Context, courseID string) ([]course.LiveSession, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sessions := make([]course.LiveSession, 0)
	for _, sess := range repo.db.sessions {
		if sess.CourseID == courseID {
			sessions = append(sessions, *sess)
		}
	}
	return sessions, nil
}

func (repo *sessionRepository) GetSessionByID(_ context.Context, id string) (course.LiveSession, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sess, ok := repo.db.sessions[id]; ok {
		return *sess, nil
	}
	return course.LiveSession{}, course.ErrSessionNotFound
}

func (repo *sessionRepository) DeleteSession(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.sessions, id)
	return nil
}
