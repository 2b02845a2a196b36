// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elimuhq/elimu/core/course"
	"github.com/elimuhq/elimu/core/identity"
)

// CreateStudent persists a learner with a usable password.
func CreateStudent(t *testing.T, repo identity.StudentRepository, fullName, email, pwd string) identity.Student {
	t.Helper()

	std := identity.Student{
		FullName:  fullName,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, std.SetPassword(pwd))

	std, err := repo.CreateStudent(context.Background(), std)
	require.NoError(t, err)
	return std
}

// CreateAdmin persists an operator account. An empty role is stored as-is so
// tests can exercise records written before roles were mandatory.
func CreateAdmin(t *testing.T, repo identity.AdminRepository, fullName, email, pwd, role string) identity.Admin {
	t.Helper()

	adm := identity.Admin{
		FullName:  fullName,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, adm.SetPassword(pwd))

	adm, err := repo.CreateAdmin(context.Background(), adm)
	require.NoError(t, err)
	return adm
}

// CreateCourse persists a course.
func CreateCourse(t *testing.T, repo course.CourseRepository, title, createdBy string) course.Course {
	t.Helper()

	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Title:     title,
		Category:  "general",
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return crs
}
