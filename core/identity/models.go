package identity

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/elimuhq/elimu/core"
)

// Roles. Canonical casing is lowercase; "Admin"/"Student" still occur on
// records written before the casing was settled, so privileged checks must go
// through IsPrivilegedRole rather than comparing strings directly.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

var AllRoles = []string{RoleAdmin, RoleStudent}

// NormalizeRole maps any historical casing of a role tag to its canonical form.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// IsPrivilegedRole reports whether role is the admin tag, in any casing.
func IsPrivilegedRole(role string) bool {
	return strings.EqualFold(role, RoleAdmin)
}

// Kind discriminates the two identity collections.
type Kind string

const (
	KindStudent Kind = "student"
	KindAdmin   Kind = "admin"
)

type EnrollmentStatus string

const (
	EnrollmentApproved EnrollmentStatus = "approved"
	// Pending and Denied exist on the wire and in older documents but no
	// current write path produces them; resource gating only honours Approved.
	EnrollmentPending EnrollmentStatus = "pending"
	EnrollmentDenied  EnrollmentStatus = "denied"
)

// Enrollment is a student's claim of access to one course.
type Enrollment struct {
	CourseID   string           `json:"course_id" bson:"course_id"`
	Status     EnrollmentStatus `json:"status" bson:"status"`
	EnrolledAt time.Time        `json:"enrolled_at" bson:"enrolled_at"` // UTC
}

func (e Enrollment) Approved() bool { return e.Status == EnrollmentApproved }

// Student is a self-registered learner account.
type Student struct {
	ID           string       `json:"id" bson:"_id,omitempty"`
	FullName     string       `json:"full_name" bson:"full_name"`
	Email        string       `json:"email" bson:"email"` // unique, lowercase
	PasswordHash []byte       `json:"-" bson:"password_hash"`
	Enrollments  []Enrollment `json:"enrollments" bson:"enrollments"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"` // UTC
	LastLogin    time.Time    `json:"last_login" bson:"last_login"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// EnrolledIn reports whether the student holds an entry for courseID,
// regardless of its approval status.
func (s *Student) EnrolledIn(courseID string) bool {
	for _, e := range s.Enrollments {
		if e.CourseID == courseID {
			return true
		}
	}
	return false
}

// Admin is an operator account, provisioned by another admin.
type Admin struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	FullName     string    `json:"full_name" bson:"full_name"`
	Email        string    `json:"email" bson:"email"` // unique, lowercase
	PasswordHash []byte    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"` // defaults to RoleAdmin unless explicitly downgraded
	CourseIDs    []string  `json:"course_ids" bson:"course_ids"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"` // UTC
	LastLogin    time.Time `json:"last_login" bson:"last_login"` // UTC
}

func (a *Admin) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// Identity is the normalized request-scoped view over both collections.
// It is only ever produced by Service.Resolve and Service.Authenticate so that
// the resolution order and role precedence live in one place.
type Identity struct {
	Kind        Kind         `json:"kind"`
	ID          string       `json:"id"`
	FullName    string       `json:"full_name"`
	Email       string       `json:"email"`
	Role        string       `json:"role"` // canonical lowercase
	Enrollments []Enrollment `json:"enrollments,omitempty"`
}

func (i Identity) IsAdmin() bool { return IsPrivilegedRole(i.Role) }

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc *Service) error {
	ns.FullName = core.CleanString(ns.FullName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkStudentEmailUniqueness(ns.Email)
}

// UpdateStudent defines what information may be provided to modify an existing
// Student. An empty Password means "keep the current one": the stored hash is
// only re-derived when Password is set (see Service.UpdateStudent).
type UpdateStudent struct {
	FullName        string `json:"full_name"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.FullName = core.CleanString(us.FullName)
	return validate.Struct(us)
}

// NewAdmin contains information needed to provision a new Admin.
// Provisioned passwords follow the looser operator policy (min 6 chars).
type NewAdmin struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,allroles"`
}

func (na *NewAdmin) Validate(validate *validator.Validate, svc *Service) error {
	na.FullName = core.CleanString(na.FullName)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Role = NormalizeRole(na.Role)

	if err := validate.Struct(na); err != nil {
		return err
	}
	return svc.checkAdminEmailUniqueness(na.Email)
}

// AdminPassword carries an operator password reset.
type AdminPassword struct {
	Password string `json:"password" validate:"required,min=6"`
}

func (ap *AdminPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(ap)
}
