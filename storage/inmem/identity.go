package inmem

import (
	"context"

	"github.com/google/uuid"

	"github.com/elimuhq/elimu/core/identity"
)

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) identity.StudentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckEmailUniqueness(_ context.Context, email string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.db.students {
		if std.Email == email {
			return identity.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, std identity.Student) (identity.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, s := range repo.db.students {
		if s.Email == std.Email {
			return identity.Student{}, identity.ErrEmailExists
		}
	}
	std.ID = uuid.New().String()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (identity.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return identity.Student{}, identity.ErrNotFound
}

func (repo *studentRepository) GetStudentByEmail(_ context.Context, email string) (identity.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.db.students {
		if std.Email == email {
			return *std, nil
		}
	}
	return identity.Student{}, identity.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std identity.Student) (identity.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.students[std.ID]
	if !ok {
		return identity.Student{}, identity.ErrNotFound
	}
	// the hash is stored verbatim; re-deriving it belongs to the service layer
	orig.FullName = std.FullName
	orig.PasswordHash = std.PasswordHash
	orig.LastLogin = std.LastLogin
	return *orig, nil
}

func (repo *studentRepository) AppendEnrollment(_ context.Context, studentID string, e identity.Enrollment) (identity.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std, ok := repo.db.students[studentID]
	if !ok {
		return identity.Student{}, identity.ErrNotFound
	}
	std.Enrollments = append(std.Enrollments, e)
	return *std, nil
}

type adminRepository struct {
	db *DB
}

func NewAdminRepository(db *DB) identity.AdminRepository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) CheckEmailUniqueness(_ context.Context, email string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, adm := range repo.db.admins {
		if adm.Email == email {
			return identity.ErrEmailExists
		}
	}
	return nil
}

func (repo *adminRepository) CreateAdmin(_ context.Context, adm identity.Admin) (identity.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, a := range repo.db.admins {
		if a.Email == adm.Email {
			return identity.Admin{}, identity.ErrEmailExists
		}
	}
	adm.ID = uuid.New().String()
	repo.db.admins[adm.ID] = &adm
	return adm, nil
}

func (repo *adminRepository) QueryAllAdmins(_ context.Context) ([]identity.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	admins := make([]identity.Admin, 0, len(repo.db.admins))
	for _, adm := range repo.db.admins {
		admins = append(admins, *adm)
	}
	return admins, nil
}

func (repo *adminRepository) GetAdminByID(_ context.Context, id string) (identity.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if adm, ok := repo.db.admins[id]; ok {
		return *adm, nil
	}
	return identity.Admin{}, identity.ErrNotFound
}

func (repo *adminRepository) GetAdminByEmail(_ context.Context, email string) (identity.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, adm := range repo.db.admins {
		if adm.Email == email {
			return *adm, nil
		}
	}
	return identity.Admin{}, identity.ErrNotFound
}

func (repo *adminRepository) UpdateAdmin(_ context.Context, adm identity.Admin) (identity.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.admins[adm.ID]
	if !ok {
		return identity.Admin{}, identity.ErrNotFound
	}
	orig.FullName = adm.FullName
	orig.PasswordHash = adm.PasswordHash
	orig.Role = adm.Role
	orig.LastLogin = adm.LastLogin
	return *orig, nil
}

func (repo *adminRepository) AppendCourseRef(_ context.Context, adminID, courseID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	adm, ok := repo.db.admins[adminID]
	if !ok {
		return identity.ErrNotFound
	}
	adm.CourseIDs = append(adm.CourseIDs, courseID)
	return nil
}

func (repo *adminRepository) DeleteAdmin(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.admins, id)
	return nil
}
