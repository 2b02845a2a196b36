package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-playground/locales/en"

	"github.com/elimuhq/elimu/core"
	"github.com/elimuhq/elimu/core/chat"
	"github.com/elimuhq/elimu/core/content"
	"github.com/elimuhq/elimu/core/course"
	"github.com/elimuhq/elimu/core/identity"
	emailsvc "github.com/elimuhq/elimu/services/email"
	"github.com/elimuhq/elimu/storage/inmem"
)

type fakeChatService struct {
	reply string
	err   error
}

var _ chat.Service = (*fakeChatService)(nil)

func (svc *fakeChatService) Complete(_ context.Context, _ string) (string, error) {
	return svc.reply, svc.err
}

type testEnv struct {
	conf     *core.Config
	db       *inmem.DB
	server   Server
	tokenSvc *TokenService

	studentRepo  identity.StudentRepository
	adminRepo    identity.AdminRepository
	courseRepo   course.CourseRepository
	sessionRepo  course.SessionRepository
	resourceRepo content.ResourceRepository
	galleryRepo  content.GalleryRepository

	identitySvc *identity.Service
	chatSvc     *fakeChatService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conf := core.NewTestConfig()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator(enLocale.Locale())
	validate := validator.New()
	core.InitValidators(validate, translator)
	identity.InitValidators(validate, translator)

	db := inmem.NewDB()
	env := &testEnv{
		conf:         conf,
		db:           db,
		studentRepo:  inmem.NewStudentRepository(db),
		adminRepo:    inmem.NewAdminRepository(db),
		courseRepo:   inmem.NewCourseRepository(db),
		sessionRepo:  inmem.NewSessionRepository(db),
		resourceRepo: inmem.NewResourceRepository(db),
		galleryRepo:  inmem.NewGalleryRepository(db),
		chatSvc:      &fakeChatService{reply: "hello"},
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	env.identitySvc = identity.NewService(env.studentRepo, env.adminRepo, mailSvc, conf)
	courseSvc := course.NewService(env.courseRepo, env.sessionRepo, env.studentRepo, env.adminRepo)
	contentSvc := content.NewService(env.resourceRepo, env.galleryRepo, env.courseRepo, env.studentRepo)

	env.server = NewServer("127.0.0.1:0", Deps{
		Conf:        conf,
		Logger:      nopLogger{},
		IdentitySvc: env.identitySvc,
		CourseSvc:   courseSvc,
		ContentSvc:  contentSvc,
		ChatSvc:     env.chatSvc,
		Validate:    validate,
		Translator:  translator,
	})
	env.tokenSvc = NewTokenService(conf)
	return env
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// tokenFor signs a token with the given subject and role, the way the login
// endpoint would.
func (env *testEnv) tokenFor(t *testing.T, subjectID, email, role string) string {
	t.Helper()
	token, err := env.tokenSvc.Generate(env.tokenSvc.GetClaims(identity.Identity{
		ID:    subjectID,
		Email: email,
		Role:  role,
	}))
	require.NoError(t, err)
	return token
}

// expiredTokenFor signs a token whose validity window is already over.
func (env *testEnv) expiredTokenFor(t *testing.T, subjectID string) string {
	t.Helper()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   subjectID,
			IssuedAt:  time.Now().Add(-14 * 24 * time.Hour).Unix(),
			ExpiresAt: time.Now().Add(-7 * 24 * time.Hour).Unix(),
		},
		UserID: subjectID,
	}
	token, err := env.tokenSvc.Generate(claims)
	require.NoError(t, err)
	return token
}

type httpTest struct {
	name   string
	method string
	path   string
	body   interface{} // marshalled to JSON when non-nil
	token  string

	wantCode     int
	wantContains []string
	extra        func(t *testing.T, body []byte)
}

func (tt httpTest) run(t *testing.T, handler http.Handler) {
	t.Run(tt.name, func(t *testing.T) {
		var body io.Reader
		if tt.body != nil {
			data, err := json.Marshal(tt.body)
			require.NoError(t, err)
			body = bytes.NewReader(data)
		}
		req := httptest.NewRequest(tt.method, tt.path, body)
		if tt.body != nil {
			req.Header.Set(echoHeaderContentType, "application/json")
		}
		if tt.token != "" {
			req.Header.Set("Authorization", "Bearer "+tt.token)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		respBody, err := ioutil.ReadAll(rec.Result().Body)
		require.NoError(t, err)
		assert.Equal(t, tt.wantCode, rec.Code, "body: %s", respBody)
		for _, want := range tt.wantContains {
			assert.Contains(t, string(respBody), want)
		}
		if tt.extra != nil {
			tt.extra(t, respBody)
		}
	})
}

const echoHeaderContentType = "Content-Type"

// multipartBody builds a multipart form with the given fields and one file
// part named "file".
func multipartBody(t *testing.T, fields map[string]string, filename string, fileData []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(fileData)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}
