package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimuhq/elimu/core/identity"
	"github.com/elimuhq/elimu/testutil"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateStudent(t, env.studentRepo, "Taken Name", "taken@test.com", "G00dPwd!123")

	tests := []httpTest{
		{
			name:   "valid registration returns a token",
			method: http.MethodPost, path: "/api/auth/register",
			body: identity.NewStudent{
				FullName: "Awa Diop", Email: "awa@test.com",
				Password: "G00dPwd!123", PasswordConfirm: "G00dPwd!123",
			},
			wantCode: http.StatusCreated,
			extra: func(t *testing.T, body []byte) {
				var resp AuthResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, identity.KindStudent, resp.User.Kind)
				assert.Equal(t, identity.RoleStudent, resp.User.Role)
			},
		},
		{
			name:   "password confirmation must match",
			method: http.MethodPost, path: "/api/auth/register",
			body: identity.NewStudent{
				FullName: "Awa Diop", Email: "awa2@test.com",
				Password: "G00dPwd!123", PasswordConfirm: "Different!123",
			},
			wantCode: http.StatusBadRequest,
			wantContains: []string{"error"},
		},
		{
			name:   "weak password is rejected",
			method: http.MethodPost, path: "/api/auth/register",
			body: identity.NewStudent{
				FullName: "Awa Diop", Email: "awa3@test.com",
				Password: "short1!", PasswordConfirm: "short1!",
			},
			wantCode:     http.StatusBadRequest,
			wantContains: []string{"at least 8 characters"},
		},
		{
			name:   "duplicate email is a 400, not a 409",
			method: http.MethodPost, path: "/api/auth/register",
			body: identity.NewStudent{
				FullName: "Someone Else", Email: "taken@test.com",
				Password: "G00dPwd!123", PasswordConfirm: "G00dPwd!123",
			},
			wantCode:     http.StatusBadRequest,
			wantContains: []string{"already exists"},
		},
	}
	for _, tt := range tests {
		tt.run(t, env.server)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	std := testutil.CreateStudent(t, env.studentRepo, "Awa Diop", "awa@test.com", "G00dPwd!123")
	testutil.CreateAdmin(t, env.adminRepo, "Root Op", "root@test.com", "secret", identity.RoleAdmin)

	tests := []httpTest{
		{
			name:   "student login",
			method: http.MethodPost, path: "/api/auth/login",
			body:     LoginRequest{Email: "awa@test.com", Password: "G00dPwd!123"},
			wantCode: http.StatusOK,
			extra: func(t *testing.T, body []byte) {
				var resp AuthResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, std.ID, resp.User.ID)
				assert.Equal(t, identity.RoleStudent, resp.User.Role)

				// login touches last_login
				fresh, err := env.studentRepo.GetStudentByID(context.Background(), std.ID)
				require.NoError(t, err)
				assert.False(t, fresh.LastLogin.IsZero())
			},
		},
		{
			name:   "email lookup is case-insensitive",
			method: http.MethodPost, path: "/api/auth/login",
			body:     LoginRequest{Email: "AWA@test.com", Password: "G00dPwd!123"},
			wantCode: http.StatusOK,
		},
		{
			name:   "admin login falls back to the operator collection",
			method: http.MethodPost, path: "/api/auth/login",
			body:     LoginRequest{Email: "root@test.com", Password: "secret"},
			wantCode: http.StatusOK,
			extra: func(t *testing.T, body []byte) {
				var resp AuthResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, identity.KindAdmin, resp.User.Kind)
				assert.Equal(t, identity.RoleAdmin, resp.User.Role)
			},
		},
		{
			name:   "wrong password",
			method: http.MethodPost, path: "/api/auth/login",
			body:         LoginRequest{Email: "awa@test.com", Password: "nope"},
			wantCode:     http.StatusUnauthorized,
			wantContains: []string{"invalid credentials"},
		},
		{
			name:   "unknown email fails identically to a wrong password",
			method: http.MethodPost, path: "/api/auth/login",
			body:         LoginRequest{Email: "ghost@test.com", Password: "whatever"},
			wantCode:     http.StatusUnauthorized,
			wantContains: []string{"invalid credentials"},
		},
	}
	for _, tt := range tests {
		tt.run(t, env.server)
	}
}

func TestAuthenticationGate(t *testing.T) {
	env := newTestEnv(t)
	std := testutil.CreateStudent(t, env.studentRepo, "Awa Diop", "awa@test.com", "G00dPwd!123")

	tests := []httpTest{
		{
			name:   "no token",
			method: http.MethodGet, path: "/api/auth/me",
			wantCode:     http.StatusUnauthorized,
			wantContains: []string{"error"},
		},
		{
			name:   "garbage token",
			method: http.MethodGet, path: "/api/auth/me",
			token:    "not.a.token",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			method: http.MethodGet, path: "/api/auth/me",
			token:    env.expiredTokenFor(t, std.ID),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "token for a deleted record",
			method: http.MethodGet, path: "/api/auth/me",
			token:    env.tokenFor(t, "gone-id", "gone@test.com", identity.RoleStudent),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "valid token",
			method: http.MethodGet, path: "/api/auth/me",
			token:    env.tokenFor(t, std.ID, std.Email, identity.RoleStudent),
			wantCode: http.StatusOK,
			extra: func(t *testing.T, body []byte) {
				var ident identity.Identity
				require.NoError(t, json.Unmarshal(body, &ident))
				assert.Equal(t, std.ID, ident.ID)
				assert.Equal(t, identity.KindStudent, ident.Kind)
			},
		},
	}
	for _, tt := range tests {
		tt.run(t, env.server)
	}
}

func TestAdminGate(t *testing.T) {
	env := newTestEnv(t)
	std := testutil.CreateStudent(t, env.studentRepo, "Awa Diop", "awa@test.com", "G00dPwd!123")
	adm := testutil.CreateAdmin(t, env.adminRepo, "Root Op", "root@test.com", "secret", identity.RoleAdmin)
	legacy := testutil.CreateAdmin(t, env.adminRepo, "Legacy Op", "legacy@test.com", "secret", "")

	tests := []httpTest{
		{
			name:   "student tokens are rejected",
			method: http.MethodGet, path: "/api/auth/admins",
			token:        env.tokenFor(t, std.ID, std.Email, identity.RoleStudent),
			wantCode:     http.StatusForbidden,
			wantContains: []string{"permission denied"},
		},
		{
			name:   "admin tokens pass",
			method: http.MethodGet, path: "/api/auth/admins",
			token:    env.tokenFor(t, adm.ID, adm.Email, identity.RoleAdmin),
			wantCode: http.StatusOK,
		},
		{
			name:   "role casing in the token does not matter",
			method: http.MethodGet, path: "/api/auth/admins",
			token:    env.tokenFor(t, adm.ID, adm.Email, "ADMIN"),
			wantCode: http.StatusOK,
		},
		{
			name:   "operator records without a role tag default to admin",
			method: http.MethodGet, path: "/api/auth/admins",
			token:    env.tokenFor(t, legacy.ID, legacy.Email, ""),
			wantCode: http.StatusOK,
		},
		{
			// the role claim is trusted over the stored record
			name:   "token role outranks the record role",
			method: http.MethodGet, path: "/api/auth/admins",
			token:    env.tokenFor(t, std.ID, std.Email, identity.RoleAdmin),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.run(t, env.server)
	}
}

func TestRegisterAdmin(t *testing.T) {
	env := newTestEnv(t)
	std := testutil.CreateStudent(t, env.studentRepo, "Awa Diop", "awa@test.com", "G00dPwd!123")
	adm := testutil.CreateAdmin(t, env.adminRepo, "Root Op", "root@test.com", "secret", identity.RoleAdmin)

	countAdmins := func(t *testing.T) int {
		admins, err := env.adminRepo.QueryAllAdmins(context.Background())
		require.NoError(t, err)
		return len(admins)
	}
	before := countAdmins(t)

	tests := []httpTest{
		{
			name:   "students cannot provision operators",
			method: http.MethodPost, path: "/api/auth/register-admin",
			token: env.tokenFor(t, std.ID, std.Email, identity.RoleStudent),
			body: identity.NewAdmin{
				FullName: "New Op", Email: "newop@test.com", Password: "secret",
			},
			wantCode: http.StatusForbidden,
			extra: func(t *testing.T, _ []byte) {
				assert.Equal(t, before, countAdmins(t), "rejected request must not create a record")
			},
		},
		{
			name:   "operator passwords only need 6 characters",
			method: http.MethodPost, path: "/api/auth/register-admin",
			token: env.tokenFor(t, adm.ID, adm.Email, identity.RoleAdmin),
			body: identity.NewAdmin{
				FullName: "New Op", Email: "newop@test.com", Password: "abc123",
			},
			wantCode: http.StatusCreated,
			extra: func(t *testing.T, body []byte) {
				var created identity.Admin
				require.NoError(t, json.Unmarshal(body, &created))
				assert.Equal(t, identity.RoleAdmin, created.Role)
				assert.Empty(t, created.PasswordHash, "hash must not serialize")
			},
		},
		{
			name:   "too-short operator password",
			method: http.MethodPost, path: "/api/auth/register-admin",
			token: env.tokenFor(t, adm.ID, adm.Email, identity.RoleAdmin),
			body: identity.NewAdmin{
				FullName: "Other Op", Email: "otherop@test.com", Password: "abc12",
			},
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		tt.run(t, env.server)
	}
}

func TestResetAdminPassword(t *testing.T) {
	env := newTestEnv(t)
	adm := testutil.CreateAdmin(t, env.adminRepo, "Root Op", "root@test.com", "secret", identity.RoleAdmin)
	target := testutil.CreateAdmin(t, env.adminRepo, "Other Op", "other@test.com", "oldpwd", identity.RoleAdmin)
	token := env.tokenFor(t, adm.ID, adm.Email, identity.RoleAdmin)

	tests := []httpTest{
		{
			name:   "below the 6 character floor",
			method: http.MethodPut, path: "/api/auth/admins/" + target.ID + "/password",
			token:    token,
			body:     identity.AdminPassword{Password: "abc12"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "reset rewrites the stored hash",
			method: http.MethodPut, path: "/api/auth/admins/" + target.ID + "/password",
			token:    token,
			body:     identity.AdminPassword{Password: "newpwd"},
			wantCode: http.StatusOK,
			extra: func(t *testing.T, _ []byte) {
				fresh, err := env.adminRepo.GetAdminByID(context.Background(), target.ID)
				require.NoError(t, err)
				assert.NoError(t, fresh.CheckPassword("newpwd"))
				assert.Error(t, fresh.CheckPassword("oldpwd"))
			},
		},
		{
			name:   "unknown operator",
			method: http.MethodPut, path: "/api/auth/admins/missing/password",
			token:    token,
			body:     identity.AdminPassword{Password: "newpwd"},
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		tt.run(t, env.server)
	}
}

func TestDeleteAdmin(t *testing.T) {
	env := newTestEnv(t)
	adm := testutil.CreateAdmin(t, env.adminRepo, "Root Op", "root@test.com", "secret", identity.RoleAdmin)
	other := testutil.CreateAdmin(t, env.adminRepo, "Other Op", "other@test.com", "secret", identity.RoleAdmin)
	token := env.tokenFor(t, adm.ID, adm.Email, identity.RoleAdmin)

	tests := []httpTest{
		{
			name:   "self-deletion is refused",
			method: http.MethodDelete, path: "/api/auth/admins/" + adm.ID,
			token:        token,
			wantCode:     http.StatusBadRequest,
			wantContains: []string{"cannot delete own account"},
		},
		{
			name:   "deleting another operator",
			method: http.MethodDelete, path: "/api/auth/admins/" + other.ID,
			token:    token,
			wantCode: http.StatusOK,
			extra: func(t *testing.T, _ []byte) {
				_, err := env.adminRepo.GetAdminByID(context.Background(), other.ID)
				assert.Error(t, err)
			},
		},
		{
			name:   "deleting a missing operator",
			method: http.MethodDelete, path: "/api/auth/admins/" + other.ID,
			token:    token,
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		tt.run(t, env.server)
	}
}

func TestUpdateProfileKeepsPassword(t *testing.T) {
	env := newTestEnv(t)
	std := testutil.CreateStudent(t, env.studentRepo, "Awa Diop", "awa@test.com", "G00dPwd!123")
	token := env.tokenFor(t, std.ID, std.Email, identity.RoleStudent)

	httpTest{
		name:   "renaming without a password leaves credentials intact",
		method: http.MethodPut, path: "/api/auth/me",
		token:    token,
		body:     identity.UpdateStudent{FullName: "Awa D."},
		wantCode: http.StatusOK,
	}.run(t, env.server)

	fresh, err := env.studentRepo.GetStudentByID(context.Background(), std.ID)
	require.NoError(t, err)
	assert.Equal(t, "Awa D.", fresh.FullName)
	assert.Equal(t, std.PasswordHash, fresh.PasswordHash, "hash must not be re-derived")
	assert.NoError(t, fresh.CheckPassword("G00dPwd!123"))
}

func TestTokenFailureResponsesUniform(t *testing.T) {
	env := newTestEnv(t)
	std := testutil.CreateStudent(t, env.studentRepo, "Awa Diop", "awa@test.com", "G00dPwd!123")

	wrongKey := func() string {
		claims := env.tokenSvc.GetClaims(identity.Identity{ID: std.ID, Email: std.Email, Role: identity.RoleStudent})
		ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-signing-key"))
		require.NoError(t, err)
		return ss
	}()

	fetch := func(token string) (int, string) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, req)
		return rec.Code, rec.Body.String()
	}

	expiredCode, expiredBody := fetch(env.expiredTokenFor(t, std.ID))
	malformedCode, malformedBody := fetch("not.a.token")
	forgedCode, forgedBody := fetch(wrongKey)

	assert.Equal(t, http.StatusUnauthorized, expiredCode)
	assert.Equal(t, http.StatusUnauthorized, malformedCode)
	assert.Equal(t, http.StatusUnauthorized, forgedCode)

	// the reason a token was rejected must never reach the client
	assert.Equal(t, expiredBody, malformedBody)
	assert.Equal(t, expiredBody, forgedBody)
	assert.NotContains(t, expiredBody, "expired by")
	assert.NotContains(t, malformedBody, "invalid character")
}

func TestTokenServiceVerify(t *testing.T) {
	env := newTestEnv(t)
	defer func() { jwt.TimeFunc = time.Now }()

	ident := identity.Identity{ID: "std-1", Email: "awa@test.com", Role: identity.RoleStudent}
	claims := env.tokenSvc.GetClaims(ident)
	token, err := env.tokenSvc.Generate(claims)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		got, err := env.tokenSvc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, ident.ID, got.UserID)
		assert.Equal(t, ident.ID, got.Subject)
		assert.Equal(t, ident.Email, got.Email)
		assert.Equal(t, ident.Role, got.Role)
		assert.Equal(t, claims.IssuedAt+int64((7*24*time.Hour).Seconds()), got.ExpiresAt)
	})

	t.Run("valid until exactly the expiry instant", func(t *testing.T) {
		jwt.TimeFunc = func() time.Time { return time.Unix(claims.ExpiresAt, 0) }
		_, err := env.tokenSvc.Verify(token)
		assert.NoError(t, err)

		jwt.TimeFunc = func() time.Time { return time.Unix(claims.ExpiresAt+1, 0) }
		_, err = env.tokenSvc.Verify(token)
		assert.Equal(t, errUnauthorized, err)
	})

	t.Run("all failures are indistinguishable", func(t *testing.T) {
		jwt.TimeFunc = time.Now

		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-signing-key"))
		require.NoError(t, err)
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		for name, ss := range map[string]string{
			"malformed": "not.a.token",
			"expired":   env.expiredTokenFor(t, ident.ID),
			"forged":    forged,
			"unsigned":  unsigned,
		} {
			got, err := env.tokenSvc.Verify(ss)
			assert.Nil(t, got, name)
			assert.Equal(t, errUnauthorized, err, name)
		}
	})
}
