package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/elimuhq/elimu/core"
	"github.com/elimuhq/elimu/core/chat"
	"github.com/elimuhq/elimu/core/content"
	"github.com/elimuhq/elimu/core/course"
	"github.com/elimuhq/elimu/core/identity"
)

// Deps bundles everything the API server needs to run.
type Deps struct {
	Conf        *core.Config
	Logger      core.Logger
	IdentitySvc *identity.Service
	CourseSvc   *course.Service
	ContentSvc  *content.Service
	ChatSvc     chat.Service
	Validate    *validator.Validate
	Translator  ut.Translator
}

type Server interface {
	http.Handler
	Start()
	Shutdown(ctx context.Context) error
	Close() error
	Errors() <-chan error
	ShutdownSignal() <-chan os.Signal
}

type server struct {
	addr     string
	deps     Deps
	app      *echo.Echo
	tokenSvc *TokenService

	errCh  chan error
	shutCh chan os.Signal
}

var _ Server = (*server)(nil)

func NewServer(addr string, deps Deps) Server {
	s := &server{
		addr:     addr,
		deps:     deps,
		app:      echo.New(),
		tokenSvc: NewTokenService(deps.Conf),
		errCh:    make(chan error, 1),
		shutCh:   make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Debug = conf.Debug
	s.app.HideBanner = true
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.app, s.deps.Logger, s.deps.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	if !conf.Debug {
		s.app.Use(middleware.Recover())
	}

	jwt := middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey: []byte(conf.SecretKey),
		ContextKey: claimsContextKey,
		Claims:     &Claims{},
	})
	resolve := resolveIdentityMiddleware(s.deps.IdentitySvc)

	api := s.app.Group("/api")
	registerAuthAPI(api, jwt, resolve, s.deps.IdentitySvc, s.tokenSvc, s.deps.Validate)
	registerCourseAPI(api, jwt, resolve, s.deps.CourseSvc, s.deps.Validate)
	registerContentAPI(api, jwt, resolve, s.deps.ContentSvc, s.deps.Validate)
	registerChatAPI(api, jwt, resolve, s.deps.ChatSvc, s.deps.Validate)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func (s *server) Start() {
	signal.Notify(s.shutCh, os.Interrupt, syscall.SIGTERM)
	s.errCh <- s.app.Start(s.addr)
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errCh
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutCh
}

// signalShutdown lets the error handler request a graceful stop when an
// unrecoverable error surfaces.
func (s *server) signalShutdown() {
	s.shutCh <- syscall.SIGTERM
}
