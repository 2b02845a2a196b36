package identity

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/elimuhq/elimu/core"
)

var (
	// errors
	ErrNotFound           = errors.New("identity not found")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	// StudentRepository persists the learner collection. Implementations store
	// PasswordHash verbatim; deriving it from a plaintext is the service's job.
	StudentRepository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByEmail(ctx context.Context, email string) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		// AppendEnrollment appends e to the student's enrollment list as a
		// single-document write.
		AppendEnrollment(ctx context.Context, studentID string, e Enrollment) (Student, error)
	}

	// AdminRepository persists the operator collection.
	AdminRepository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateAdmin(ctx context.Context, a Admin) (Admin, error)
		QueryAllAdmins(ctx context.Context) ([]Admin, error)
		GetAdminByID(ctx context.Context, id string) (Admin, error)
		GetAdminByEmail(ctx context.Context, email string) (Admin, error)
		UpdateAdmin(ctx context.Context, a Admin) (Admin, error)
		AppendCourseRef(ctx context.Context, adminID, courseID string) error
		DeleteAdmin(ctx context.Context, id string) error
	}

	Service struct {
		students StudentRepository
		admins   AdminRepository
		mailSvc  core.EmailService
		conf     *core.Config
	}
)

func NewService(students StudentRepository, admins AdminRepository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		students: students,
		admins:   admins,
		mailSvc:  mailSvc,
		conf:     conf,
	}
}

func (svc *Service) checkStudentEmailUniqueness(email string) error {
	if err := svc.students.CheckEmailUniqueness(context.Background(), email); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) checkAdminEmailUniqueness(email string) error {
	if err := svc.admins.CheckEmailUniqueness(context.Background(), email); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a new Student with a freshly derived password hash.
func (svc *Service) Register(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		FullName:    ns.FullName,
		Email:       core.CleanString(ns.Email, true /* lower */),
		Enrollments: []Enrollment{},
		CreatedAt:   now,
	}
	if err := std.SetPassword(ns.Password); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}
	std, err := svc.students.CreateStudent(ctx, std)
	if err != nil {
		// a concurrent registration can win between the uniqueness precheck
		// and the insert; the loser still sees an invalid email, not a crash
		if errors.Cause(err) == ErrEmailExists {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Student{}, err
	}
	return std, nil
}

// CreateAdmin provisions a new operator account. Role defaults to the
// privileged tag unless explicitly downgraded.
func (svc *Service) CreateAdmin(ctx context.Context, na NewAdmin) (Admin, error) {
	role := na.Role
	if role == "" {
		role = RoleAdmin
	}
	adm := Admin{
		FullName:  na.FullName,
		Email:     core.CleanString(na.Email, true /* lower */),
		Role:      role,
		CourseIDs: []string{},
		CreatedAt: time.Now().UTC(),
	}
	if err := adm.SetPassword(na.Password); err != nil {
		return Admin{}, errors.Wrap(err, "hashing password")
	}
	adm, err := svc.admins.CreateAdmin(ctx, adm)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return Admin{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Admin{}, err
	}
	svc.sendAccountProvisionedMail(adm)
	return adm, nil
}

// Authenticate verifies the given credentials against both collections,
// students first. Failures are uniform: a wrong password and an unknown email
// both come back as ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Identity, error) {
	email = core.CleanString(email, true /* lower */)

	std, err := svc.students.GetStudentByEmail(ctx, email)
	if err == nil {
		if err = std.CheckPassword(pwd); err != nil {
			return Identity{}, ErrInvalidCredentials
		}
		std.LastLogin = time.Now().UTC()
		if std, err = svc.students.UpdateStudent(ctx, std); err != nil {
			return Identity{}, errors.Wrap(err, "setting lastLogin")
		}
		return studentIdentity(std, ""), nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Identity{}, errors.Wrap(err, "finding student by email")
	}

	adm, err := svc.admins.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, errors.Wrap(err, "finding admin by email")
	}
	if err = adm.CheckPassword(pwd); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	adm.LastLogin = time.Now().UTC()
	if adm, err = svc.admins.UpdateAdmin(ctx, adm); err != nil {
		return Identity{}, errors.Wrap(err, "setting lastLogin")
	}
	return adminIdentity(adm, ""), nil
}

// Resolve locates the identity behind a verified token subject and normalizes
// its role. Lookup order is fixed: students first, then admins. A role carried
// in the token wins over the stored one; without either, admin-collection hits
// default to the privileged tag.
func (svc *Service) Resolve(ctx context.Context, subjectID, tokenRole string) (Identity, error) {
	std, err := svc.students.GetStudentByID(ctx, subjectID)
	if err == nil {
		return studentIdentity(std, tokenRole), nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Identity{}, errors.Wrap(err, "finding student by ID")
	}

	adm, err := svc.admins.GetAdminByID(ctx, subjectID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Identity{}, ErrNotFound
		}
		return Identity{}, errors.Wrap(err, "finding admin by ID")
	}
	return adminIdentity(adm, tokenRole), nil
}

func studentIdentity(std Student, tokenRole string) Identity {
	role := NormalizeRole(tokenRole)
	if role == "" {
		role = RoleStudent
	}
	return Identity{
		Kind:        KindStudent,
		ID:          std.ID,
		FullName:    std.FullName,
		Email:       std.Email,
		Role:        role,
		Enrollments: std.Enrollments,
	}
}

func adminIdentity(adm Admin, tokenRole string) Identity {
	role := NormalizeRole(tokenRole)
	if role == "" {
		role = NormalizeRole(adm.Role)
	}
	if role == "" {
		role = RoleAdmin
	}
	return Identity{
		Kind:     KindAdmin,
		ID:       adm.ID,
		FullName: adm.FullName,
		Email:    adm.Email,
		Role:     role,
	}
}

func (svc *Service) GetStudentByID(ctx context.Context, id string) (Student, error) {
	return svc.students.GetStudentByID(ctx, id)
}

// UpdateStudent applies us to the stored record. The password hash is only
// re-derived when us.Password is set: re-hashing an already-hashed value on an
// unrelated write would lock the account out permanently.
func (svc *Service) UpdateStudent(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std, err := svc.students.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if us.FullName != "" {
		std.FullName = us.FullName
	}
	if us.Password != "" {
		if err := std.SetPassword(us.Password); err != nil {
			return Student{}, errors.Wrap(err, "hashing password")
		}
	}
	return svc.students.UpdateStudent(ctx, std)
}

func (svc *Service) QueryAdmins(ctx context.Context) ([]Admin, error) {
	return svc.admins.QueryAllAdmins(ctx)
}

func (svc *Service) GetAdminByID(ctx context.Context, id string) (Admin, error) {
	return svc.admins.GetAdminByID(ctx, id)
}

// ResetAdminPassword replaces the operator's secret. This is the one admin
// write path that re-derives the hash; every other update persists it as-is.
func (svc *Service) ResetAdminPassword(ctx context.Context, id, pwd string) (Admin, error) {
	adm, err := svc.admins.GetAdminByID(ctx, id)
	if err != nil {
		return Admin{}, err
	}
	if err = adm.SetPassword(pwd); err != nil {
		return Admin{}, errors.Wrap(err, "hashing password")
	}
	adm, err = svc.admins.UpdateAdmin(ctx, adm)
	if err != nil {
		return Admin{}, err
	}
	svc.sendPasswordResetMail(adm)
	return adm, nil
}

func (svc *Service) DeleteAdmin(ctx context.Context, id string) error {
	if _, err := svc.admins.GetAdminByID(ctx, id); err != nil {
		return err
	}
	return svc.admins.DeleteAdmin(ctx, id)
}

func (svc *Service) sendAccountProvisionedMail(adm Admin) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: adm.FullName, Address: adm.Email}},
		Subject: "Your operator account",
		Body: fmt.Sprintf(
			"Hi %s,\n\nAn operator account has been created for you on %s.\n"+
				"Sign in at %s with this email address and the password you were given.\n",
			adm.FullName, svc.conf.AppName, svc.conf.FrontendBaseURL,
		),
	})
}

func (svc *Service) sendPasswordResetMail(adm Admin) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: adm.FullName, Address: adm.Email}},
		Subject: "Your password was reset",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour %s operator password was reset by an administrator.\n"+
				"If you did not expect this, contact your administrator immediately.\n",
			adm.FullName, svc.conf.AppName,
		),
	})
}
