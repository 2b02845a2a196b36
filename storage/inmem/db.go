package inmem

import (
	"sync"

	"github.com/elimuhq/elimu/core/content"
	"github.com/elimuhq/elimu/core/course"
	"github.com/elimuhq/elimu/core/identity"
)

// DB is an in-memory document store used by tests and local development.
type DB struct {
	mutex sync.RWMutex

	students map[string]*identity.Student
	admins   map[string]*identity.Admin
	courses  map[string]*course.Course
	sessions map[string]*course.LiveSession
	files    map[string]*content.Resource
	images   map[string]*content.GalleryImage
}

func NewDB() *DB {
	return &DB{
		students: make(map[string]*identity.Student),
		admins:   make(map[string]*identity.Admin),
		courses:  make(map[string]*course.Course),
		sessions: make(map[string]*course.LiveSession),
		files:    make(map[string]*content.Resource),
		images:   make(map[string]*content.GalleryImage),
	}
}

// Reset drops all stored documents.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.students = make(map[string]*identity.Student)
	db.admins = make(map[string]*identity.Admin)
	db.courses = make(map[string]*course.Course)
	db.sessions = make(map[string]*course.LiveSession)
	db.files = make(map[string]*content.Resource)
	db.images = make(map[string]*content.GalleryImage)
}
